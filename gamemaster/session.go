package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"mado/experiments/metrics"
	"mado/game"
	"mado/searcher"
)

// Supported board radii.
const (
	MinRadius = 4
	MaxRadius = 8
)

var (
	ErrUnsupportedRadius = errors.New("unsupported board radius")
	ErrIllegalMove       = errors.New("illegal move")
	ErrGameOver          = errors.New("game is over")
	ErrCorruptSnapshot   = errors.New("corrupt snapshot")
)

// Budget limits agent searches from now on. Zero fields keep the session's
// current value for that field.
type Budget struct {
	Episodes int
	Duration time.Duration
}

// Session is one game between a human and the search agent. All state changes go
// through ApplyHumanMove, including the agent's own moves.
type Session struct {
	position game.Position
	human    game.Cell
	history  []game.Move
	mcts     *searcher.MCTS
}

// NewGame starts a session on an empty board. The search options must include an
// episode or duration budget.
func NewGame(radius int, goroutines int, options ...searcher.Option) (*Session, error) {
	if radius < MinRadius || radius > MaxRadius {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrUnsupportedRadius, radius, MinRadius, MaxRadius)
	}
	return &Session{
		position: game.NewPosition(radius),
		human:    game.PlayerA,
		mcts:     searcher.NewMCTS(goroutines, options...),
	}, nil
}

func (s *Session) Position() game.Position {
	return s.position
}

func (s *Session) Status() game.Status {
	return s.position.Status()
}

// HumanPlayer returns the colour played by the human. PlayerA moves first.
func (s *Session) HumanPlayer() game.Cell {
	return s.human
}

func (s *Session) SetHumanPlayer(player game.Cell) {
	if player != game.PlayerA && player != game.PlayerB {
		panic(fmt.Sprintf("invalid human player %v", player))
	}
	s.human = player
}

// History returns the moves played so far.
func (s *Session) History() []game.Move {
	return append([]game.Move(nil), s.history...)
}

// AvailableMoves returns the legal moves of the player to move, empty once the
// game is over.
func (s *Session) AvailableMoves() []game.Move {
	return s.position.LegalMoves()
}

// ApplyHumanMove validates move against the legal moves and plays it.
func (s *Session) ApplyHumanMove(move game.Move) (game.Status, error) {
	if s.position.Status().Terminal() {
		return s.position.Status(), fmt.Errorf("failed to apply %v: %w", move, ErrGameOver)
	}
	if !lo.Contains(s.position.LegalMoves(), move) {
		return s.position.Status(), fmt.Errorf("failed to apply %v: %w", move, ErrIllegalMove)
	}
	status := s.position.Play(move)
	s.history = append(s.history, move)
	return status, nil
}

// ComputeAgentMove searches the current position and returns the agent's move
// without playing it.
func (s *Session) ComputeAgentMove(ctx context.Context, budget Budget) (game.Move, metrics.SearchMetric, error) {
	if s.position.Status().Terminal() {
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("failed to compute agent move: %w", ErrGameOver)
	}
	if budget.Episodes > 0 || budget.Duration > 0 {
		episodes, duration := s.mcts.Budget()
		if budget.Episodes > 0 {
			episodes = budget.Episodes
		}
		if budget.Duration > 0 {
			duration = budget.Duration
		}
		s.mcts.SetBudget(episodes, duration)
	}
	move, metric := s.mcts.FindMove(ctx, s.position)
	return move, metric, nil
}
