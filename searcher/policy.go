package searcher

import (
	"math"

	"mado/game"
)

// Hyperparameters for MCTS

const Exploration = 2.0 // Exploration constant c in sqrt(c*ln(N)/n)

const (
	Win  = 1.0 // Reward for winning outcome
	Draw = 0.5
	Loss = 0.0
)

type uct struct {
	numerator float64
}

func newUCT(exploration float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: exploration * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + sqrt(c*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

// rewardA scores a finished game for PlayerA.
func rewardA(status game.Status) float64 {
	switch status {
	case game.WinA:
		return Win
	case game.WinB:
		return Loss
	}
	return Draw
}
