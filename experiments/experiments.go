package experiments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mado/engine"
	"mado/experiments/metrics"
	"mado/game"
	"mado/searcher"
	"mado/searcher/agent"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 10 * time.Millisecond
)

// Experiment is a set of agent configurations and the pairs that play each other.
// The first config of a matchup plays PlayerA in odd games and PlayerB in even ones.
type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps [][2]metrics.AgentConfig
}

func parallelConfigs(budget time.Duration) []metrics.AgentConfig {
	return []metrics.AgentConfig{
		{ID: 1, Goroutines: 1, Duration: budget},
		{ID: 2, Goroutines: 2, Duration: budget},
		{ID: 3, Goroutines: 4, Duration: budget},
		{ID: 4, Goroutines: 8, Duration: budget},
		{ID: 5, Goroutines: 16, Duration: budget},
		{ID: 6, Goroutines: 32, Duration: budget},
	}
}

// Throughput pairs each configuration with itself for the same playing strength
// and similar game length, so only search throughput differs between matchups.
func Throughput(budget time.Duration) Experiment {
	configs := parallelConfigs(budget)
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}
	return Experiment{Name: "parallelization_to_throughput", Configs: configs, MatchUps: matchUps}
}

// Strength pairs each configuration against the sequential baseline.
func Strength(budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: budget}
	configs := parallelConfigs(budget)
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{Name: "parallelization_to_strength", Configs: append(configs, baseline), MatchUps: matchUps}
}

// Playouts pairs agents averaging several playouts per episode against the
// single-playout baseline.
func Playouts(budget time.Duration, goroutines int) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: goroutines, Duration: budget, Playouts: 1}
	configs := []metrics.AgentConfig{
		{ID: 1, Goroutines: goroutines, Duration: budget, Playouts: 1}, // Baseline equivalent
		{ID: 2, Goroutines: goroutines, Duration: budget, Playouts: 2},
		{ID: 3, Goroutines: goroutines, Duration: budget, Playouts: 4},
		{ID: 4, Goroutines: goroutines, Duration: budget, Playouts: 8},
	}
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{Name: "playouts", Configs: append(configs, baseline), MatchUps: matchUps}
}

// Runner plays experiments and stores their records.
type Runner struct {
	Radius      int
	Games       int // Per match up
	Parallel    int // Games played at once
	OutputDir   string
	SampleEvery int
	Seed        uint64
	Options     []searcher.Option // Applied to every agent before its own config
	// MemoryFraction is the share of physical memory for all searches running at
	// once. Each agent gets an equal part of it. Zero means the searcher default.
	MemoryFraction float64
}

type Results struct {
	Dir     string
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
	Samples []metrics.SampleRecord
}

type gameResult struct {
	record  metrics.GameRecord
	moves   []metrics.MoveRecord
	samples []metrics.SampleRecord
}

func (r Runner) Run(ctx context.Context, exp Experiment) (Results, error) {
	games := r.Games
	if games <= 0 {
		games = NumGames
	}
	results := make([]gameResult, len(exp.MatchUps)*games)

	log.Info().Msgf("starting %s experiment...", exp.Name)

	var mu sync.Mutex
	completed := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallel, 1))
	for mi, matchup := range exp.MatchUps {
		for i := 0; i < games; i++ {
			id := mi*games + i + 1
			g.Go(func() error {
				results[id-1] = r.runGame(gctx, id, matchup, i%2 == 1)

				mu.Lock()
				completed++
				log.Info().Msgf("completed matchup %d of %d game %d of %d (%d/%d) with result: %v",
					mi+1, len(exp.MatchUps), i+1, games, completed, len(results), results[id-1].record.Result)
				mu.Unlock()
				return gctx.Err()
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Results{}, fmt.Errorf("failed to run %s experiment: %w", exp.Name, err)
	}

	log.Info().Msgf("completed %s experiment", exp.Name)

	var out Results
	for _, res := range results {
		out.Games = append(out.Games, res.record)
		out.Moves = append(out.Moves, res.moves...)
		out.Samples = append(out.Samples, res.samples...)
	}

	if r.OutputDir == "" {
		return out, nil
	}
	dir, err := r.store(exp, out)
	if err != nil {
		return Results{}, err
	}
	out.Dir = dir
	return out, nil
}

// runGame plays one game of a matchup. swap gives the second config PlayerA.
func (r Runner) runGame(ctx context.Context, id int, matchup [2]metrics.AgentConfig, swap bool) gameResult {
	configs := matchup
	if swap {
		configs[0], configs[1] = configs[1], configs[0]
	}
	seed := r.Seed + uint64(id)*2
	agents := []agent.Agent{
		agent.NewEvaluationAgent(r.createMCTS(configs[0], seed)),
		agent.NewEvaluationAgent(r.createMCTS(configs[1], seed+1)),
	}
	e := engine.NewLocalEngine(agents, r.Radius, engine.WithSampling(r.SampleEvery))
	ctx = log.With().Int("game", id).Logger().WithContext(ctx)

	_, gameMetric, moveMetrics := e.Run(ctx)

	res := gameResult{record: metrics.GameRecord{
		ID:         id,
		AgentA:     configs[0].ID,
		AgentB:     configs[1].ID,
		GameMetric: gameMetric,
	}}
	for _, mm := range moveMetrics {
		agentID := configs[0].ID
		if mm.Player == game.PlayerB {
			agentID = configs[1].ID
		}
		res.moves = append(res.moves, metrics.MoveRecord{Game: id, Agent: agentID, MoveMetric: mm})
	}
	for _, s := range e.Samples() {
		res.samples = append(res.samples, metrics.SampleRecord{Game: id, PositionSample: s})
	}
	return res
}

func (r Runner) createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := append([]searcher.Option{}, r.Options...)

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Playouts > 0 {
		options = append(options, searcher.WithPlayouts(config.Playouts))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	if r.Seed != 0 {
		options = append(options, searcher.WithSeed(seed))
	}

	options = append(options, searcher.WithMemoryFraction(r.memoryShare()), searcher.WithMetrics())
	return searcher.NewMCTS(config.Goroutines, options...)
}

// memoryShare splits the memory fraction between the two agents of every game
// played at once.
func (r Runner) memoryShare() float64 {
	fraction := r.MemoryFraction
	if fraction <= 0 {
		fraction = searcher.DefaultMemoryFraction
	}
	return fraction / float64(2*max(r.Parallel, 1))
}

func (r Runner) store(exp Experiment, out Results) (string, error) {
	writer, err := metrics.NewWriter(r.OutputDir, exp.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err = writer.WriteAgentConfigs(exp.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err = writer.WriteGameRecords(out.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err = writer.WriteMoveRecords(out.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	if len(out.Samples) > 0 {
		if err = writer.WriteSampleRecords(out.Samples); err != nil {
			return "", fmt.Errorf("failed to write position samples: %w", err)
		}
		log.Info().Msg("stored position samples")
	}
	return writer.Dir(), nil
}
