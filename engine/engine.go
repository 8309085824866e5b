package engine

import (
	"context"

	"mado/experiments/metrics"
	"mado/game"
)

// MaxMoves bounds a game; every game ends well before it since each move either
// adds a stone or advances the slide counter.
const MaxMoves = 10000

type Engine interface {
	// Run plays a game until it ends, MaxMoves is reached or ctx is cancelled
	Run(ctx context.Context) (result game.Status, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
