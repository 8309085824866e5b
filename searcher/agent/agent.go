package agent

import (
	"context"

	"mado/experiments/metrics"
	"mado/game"
)

type Agent interface {
	// FindMove returns the chosen move and performance metrics (if collected) from the simulation process
	FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric)
}
