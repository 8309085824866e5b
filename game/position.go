package game

import (
	"fmt"
	"strings"

	"mado/hexgrid"
)

// DrawSlides is the number of consecutive slides that ends the game in a draw.
const DrawSlides = 6

// Position is the full game state on one board. It is a value type: assigning it
// copies the board, so every search path can mutate its own copy.
type Position struct {
	grid   *hexgrid.Grid
	cells  [hexgrid.MaxCells]Cell
	toMove Cell
	slides int
	pieces int
	moves  int
	hash   uint64
	status Status
}

// NewPosition returns an empty board of the given radius with PlayerA to move.
func NewPosition(radius int) Position {
	p := Position{
		grid:   hexgrid.For(radius),
		toMove: PlayerA,
	}
	p.hash = p.ComputeHash()
	return p
}

// FromCells builds an ongoing position from raw board contents.
// cells must hold exactly one value per board cell.
func FromCells(radius int, cells []Cell, toMove Cell, slides int) (Position, error) {
	p := NewPosition(radius)
	if len(cells) != p.grid.Size() {
		return Position{}, fmt.Errorf("expected %d cells for radius %d, got %d", p.grid.Size(), radius, len(cells))
	}
	if toMove != PlayerA && toMove != PlayerB {
		return Position{}, fmt.Errorf("invalid player to move %d", toMove)
	}
	if slides < 0 || slides >= DrawSlides {
		return Position{}, fmt.Errorf("slide count %d outside [0, %d)", slides, DrawSlides)
	}
	for i, c := range cells {
		if c > PlayerB {
			return Position{}, fmt.Errorf("invalid cell value %d at %d", c, i)
		}
		p.cells[i] = c
		if c != Vacant {
			p.pieces++
		}
	}
	p.toMove = toMove
	p.slides = slides
	p.hash = p.ComputeHash()
	return p, nil
}

// Clone returns an independent copy of p.
func (p *Position) Clone() Position {
	return *p
}

func (p *Position) Grid() *hexgrid.Grid {
	return p.grid
}

func (p *Position) Radius() int {
	return p.grid.Radius()
}

func (p *Position) Cell(i int) Cell {
	return p.cells[i]
}

// Cells returns a copy of the board contents in index order.
func (p *Position) Cells() []Cell {
	out := make([]Cell, p.grid.Size())
	copy(out, p.cells[:p.grid.Size()])
	return out
}

// ToMove returns the player whose turn it is.
func (p *Position) ToMove() Cell {
	return p.toMove
}

// JustMoved returns the player who made the last move.
func (p *Position) JustMoved() Cell {
	return p.toMove.Opponent()
}

func (p *Position) Slides() int {
	return p.slides
}

func (p *Position) Pieces() int {
	return p.pieces
}

func (p *Position) MovesPlayed() int {
	return p.moves
}

func (p *Position) Hash() uint64 {
	return p.hash
}

func (p *Position) Status() Status {
	return p.status
}

// LegalMoves returns every legal move of the player to move.
func (p *Position) LegalMoves() []Move {
	return p.AppendMoves(nil)
}

// AppendMoves appends the legal moves to buf and returns it. Cells are visited in
// index order: a vacant cell yields a placement, an own stone yields one slide per
// vacant neighbour in neighbour-table order. Terminal positions have no moves.
func (p *Position) AppendMoves(buf []Move) []Move {
	if p.status.Terminal() {
		return buf
	}
	for i := 0; i < p.grid.Size(); i++ {
		switch p.cells[i] {
		case Vacant:
			buf = append(buf, Place(i))
		case p.toMove:
			for _, n := range p.grid.Neighbors(i) {
				if p.cells[n] == Vacant {
					buf = append(buf, Slide(i, n))
				}
			}
		}
	}
	return buf
}

// IsLegal reports whether m can be played in p.
func (p *Position) IsLegal(m Move) bool {
	if p.status.Terminal() || m.To() >= p.grid.Size() || p.cells[m.To()] != Vacant {
		return false
	}
	from, ok := m.From()
	if !ok {
		return true
	}
	if from >= p.grid.Size() || p.cells[from] != p.toMove {
		return false
	}
	for _, n := range p.grid.Neighbors(from) {
		if n == m.To() {
			return true
		}
	}
	return false
}

// apply commits m and keeps the hash in step with every field it touches.
// Illegal moves are programming errors and panic.
func (p *Position) apply(m Move) {
	to := m.To()
	if to >= p.grid.Size() || p.cells[to] != Vacant {
		panic(fmt.Sprintf("illegal move %v: destination not vacant", m))
	}
	mover := p.toMove
	oldSlides := p.slides

	if from, ok := m.From(); ok {
		if from >= p.grid.Size() || p.cells[from] != mover {
			panic(fmt.Sprintf("illegal move %v: origin not owned by %v", m, mover))
		}
		p.cells[from] = Vacant
		p.hash ^= cellKeys[mover][from]
		p.slides++
	} else {
		p.pieces++
		p.slides = 0
	}
	p.cells[to] = mover
	p.hash ^= cellKeys[mover][to]

	if p.slides != oldSlides {
		p.hash ^= slideKeys[oldSlides] ^ slideKeys[p.slides]
	}
	p.hash ^= turnKey
	p.toMove = mover.Opponent()
	p.moves++
}

// String renders the board one row per line, indented so the hexagon shape shows.
func (p *Position) String() string {
	var sb strings.Builder
	radius := p.grid.Radius()
	for r := -radius; r <= radius; r++ {
		sb.WriteString(strings.Repeat(" ", abs(r)))
		first := true
		for q := -radius; q <= radius; q++ {
			c := hexgrid.Coord{Q: q, R: r}
			if !p.grid.Contains(c) {
				continue
			}
			if !first {
				sb.WriteByte(' ')
			}
			first = false
			sb.WriteString(p.cells[p.grid.Index(c)].String())
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "to move: %v, slides: %d, status: %v\n", p.toMove, p.slides, p.status)
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
