package agent

import (
	"context"
	"math"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"

	"mado/experiments/metrics"
	"mado/game"
	"mado/searcher"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Moves are
// sampled in proportion to visits^(1/temperature).
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		panic("temperature must be positive")
	}
	return &trainingAgent{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric) {
	policy, metric := a.mcts.Simulate(ctx, position)
	if len(policy) == 0 {
		return position.LegalMoves()[0], metric
	}
	policy = adjustTemperature(policy, a.temperature)
	return sample(policy, a.rng.Float64()), metric
}

func adjustTemperature(policy map[game.Move]float64, temperature float64) map[game.Move]float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make(map[game.Move]float64, len(policy))
	for move, visit := range policy {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[move] = prob
	}
	// Normalize
	for move := range adjusted {
		adjusted[move] /= sum
	}
	return adjusted
}

// sample walks the moves in a fixed order so that the same draw picks the same move.
func sample(policy map[game.Move]float64, sampled float64) game.Move {
	moves := lo.Keys(policy)
	slices.Sort(moves)

	cumulative := 0.0
	for _, move := range moves {
		cumulative += policy[move]
		if sampled < cumulative {
			return move
		}
	}
	return moves[len(moves)-1] // Fallback in case of rounding errors
}
