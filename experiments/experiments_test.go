package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mado/experiments/metrics"
	"mado/searcher"
)

func TestExperimentDefinitions(t *testing.T) {
	t.Run("throughput pairs every config with itself", func(t *testing.T) {
		exp := Throughput(TimeBudget)
		require.Len(t, exp.MatchUps, len(exp.Configs))
		for _, m := range exp.MatchUps {
			require.Equal(t, m[0], m[1])
		}
	})

	t.Run("strength and playouts play against a baseline", func(t *testing.T) {
		for _, exp := range []Experiment{Strength(TimeBudget), Playouts(TimeBudget, 2)} {
			require.Len(t, exp.Configs, len(exp.MatchUps)+1, "Configs should include the baseline")
			for _, m := range exp.MatchUps {
				require.Equal(t, 0, m[0].ID)
			}
		}
	})
}

func TestRunnerRun(t *testing.T) {
	a := metrics.AgentConfig{ID: 1, Goroutines: 1, Episodes: 5}
	b := metrics.AgentConfig{ID: 2, Goroutines: 2, Episodes: 5, Playouts: 2}
	exp := Experiment{
		Name:     "unit",
		Configs:  []metrics.AgentConfig{a, b},
		MatchUps: [][2]metrics.AgentConfig{{a, b}},
	}
	r := Runner{Radius: 4, Games: 2, Parallel: 2, OutputDir: t.TempDir(), SampleEvery: 4, Seed: 1}

	results, err := r.Run(context.Background(), exp)
	require.NoError(t, err)

	t.Run("agents alternate colours", func(t *testing.T) {
		require.Len(t, results.Games, 2)
		require.Equal(t, 1, results.Games[0].AgentA)
		require.Equal(t, 2, results.Games[0].AgentB)
		require.Equal(t, 2, results.Games[1].AgentA)
		require.Equal(t, 1, results.Games[1].AgentB)
	})

	t.Run("every game is played out and recorded", func(t *testing.T) {
		moves := 0
		for _, g := range results.Games {
			require.True(t, g.Result.Terminal())
			moves += g.TotalMoves
		}
		require.Len(t, results.Moves, moves)
		for _, m := range results.Moves {
			require.Contains(t, []int{1, 2}, m.Agent)
			require.Zero(t, m.Episodes%5, "Episodes are a multiple of the per-worker budget")
		}
		require.NotEmpty(t, results.Samples)
	})

	t.Run("records are written to disk", func(t *testing.T) {
		require.DirExists(t, results.Dir)
		for _, file := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv", "position_samples.csv"} {
			info, err := os.Stat(filepath.Join(results.Dir, file))
			require.NoError(t, err)
			require.Positive(t, info.Size())
		}
	})
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := metrics.AgentConfig{ID: 1, Goroutines: 1, Duration: time.Millisecond}
	r := Runner{Radius: 4, Games: 1}

	_, err := r.Run(ctx, Experiment{Name: "cancelled", MatchUps: [][2]metrics.AgentConfig{{a, a}}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryShare(t *testing.T) {
	t.Run("default fraction is split between concurrent agents", func(t *testing.T) {
		r := Runner{Parallel: 2}
		require.InDelta(t, searcher.DefaultMemoryFraction/4, r.memoryShare(), 1e-12)
	})

	t.Run("configured fraction is split between concurrent agents", func(t *testing.T) {
		r := Runner{Parallel: 4, MemoryFraction: 0.8}
		require.InDelta(t, 0.1, r.memoryShare(), 1e-12)
	})

	t.Run("agents are capped by their share", func(t *testing.T) {
		r := Runner{Parallel: 3, MemoryFraction: 0.6}
		config := metrics.AgentConfig{ID: 1, Goroutines: 1, Episodes: 5}
		want := searcher.NewMCTS(1, searcher.WithEpisodes(5), searcher.WithMemoryFraction(0.1))
		require.Equal(t, want.MaxNodes(), r.createMCTS(config, 1).MaxNodes())

		whole := searcher.NewMCTS(1, searcher.WithEpisodes(5), searcher.WithMemoryFraction(0.6))
		require.Less(t, r.createMCTS(config, 1).MaxNodes(), whole.MaxNodes())
	})
}
