package game

// Cell is the content of one board cell. PlayerA and PlayerB double as player identities.
type Cell uint8

const (
	Vacant Cell = iota
	PlayerA
	PlayerB
)

// Opponent returns the other player. It returns Vacant for Vacant.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	}
	return Vacant
}

func (c Cell) String() string {
	switch c {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	}
	return "."
}

// Status classifies a position. Exactly one value applies at any time.
type Status uint8

const (
	Ongoing Status = iota
	Draw
	WinA
	WinB
)

func winFor(player Cell) Status {
	if player == PlayerA {
		return WinA
	}
	return WinB
}

func (s Status) Terminal() bool {
	return s != Ongoing
}

// Winner returns the winning player, or Vacant for draws and ongoing games.
func (s Status) Winner() Cell {
	switch s {
	case WinA:
		return PlayerA
	case WinB:
		return PlayerB
	}
	return Vacant
}

func (s Status) String() string {
	switch s {
	case Draw:
		return "draw"
	case WinA:
		return "A wins"
	case WinB:
		return "B wins"
	}
	return "ongoing"
}
