package agent

import (
	"context"

	"mado/experiments/metrics"
	"mado/game"
	"mado/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric) {
	policy, metric := a.mcts.Simulate(ctx, position)
	if len(policy) == 0 {
		return position.LegalMoves()[0], metric
	}
	return findMax(policy), metric
}

// findMax returns the most visited move, preferring the lower move on ties so the
// choice does not depend on map order.
func findMax(policy map[game.Move]float64) game.Move {
	maxMove := game.NoMove
	maxVisit := -1.0
	for move, visit := range policy {
		if visit > maxVisit || (visit == maxVisit && move.Less(maxMove)) {
			maxVisit = visit
			maxMove = move
		}
	}
	return maxMove
}
