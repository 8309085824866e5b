package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mado/experiments/metrics"
	"mado/game"
	"mado/searcher/agent"
)

type Option func(e *LocalEngine)

// WithSampling records the position after every n-th move.
func WithSampling(n int) Option {
	return func(e *LocalEngine) {
		if n > 0 {
			e.sampleEvery = n
		}
	}
}

// LocalEngine plays two agents against each other in process. The first agent
// plays PlayerA, who moves first.
type LocalEngine struct {
	Position    game.Position
	Agents      [2]agent.Agent
	sampleEvery int
	samples     []metrics.PositionSample
}

func NewLocalEngine(agents []agent.Agent, radius int, options ...Option) *LocalEngine {
	if len(agents) != 2 {
		panic(fmt.Sprintf("need exactly two agents, got %d", len(agents)))
	}
	e := &LocalEngine{
		Position: game.NewPosition(radius),
		Agents:   [2]agent.Agent{agents[0], agents[1]},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Samples returns the positions recorded by the last Run.
func (e *LocalEngine) Samples() []metrics.PositionSample {
	return e.samples
}

// Run executes the entire game loop until the game ends.
func (e *LocalEngine) Run(ctx context.Context) (game.Status, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.Position.ToMove(),
		StartTime:      time.Now(),
	}
	e.samples = nil

	log.Info().Msgf("player %v is starting", e.Position.ToMove())

	step := 1
	var moveMetrics []metrics.MoveMetric
	for !e.Position.Status().Terminal() && step <= MaxMoves && ctx.Err() == nil {
		player := e.Position.ToMove()
		move, searchMetric := e.Agents[player-game.PlayerA].FindMove(ctx, e.Position)
		if !e.Position.IsLegal(move) {
			panic(fmt.Sprintf("agent for player %v chose illegal move %v", player, move))
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         move,
			SearchMetric: searchMetric,
		})

		e.Position.Play(move)
		if e.sampleEvery > 0 && step%e.sampleEvery == 0 {
			e.samples = append(e.samples, metrics.PositionSample{
				Step:   step,
				Hash:   e.Position.Hash(),
				Pieces: e.Position.Pieces(),
				Slides: e.Position.Slides(),
				Board:  e.Position.String(),
			})
		}
		step++
	}

	if e.Position.Status().Terminal() {
		log.Info().Msgf("game ended after %d moves: %v", step-1, e.Position.Status())
	} else {
		log.Warn().Msgf("game stopped after %d moves without a result", step-1)
	}

	gameMetric.Result = e.Position.Status()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step - 1
	return e.Position.Status(), gameMetric, moveMetrics
}
