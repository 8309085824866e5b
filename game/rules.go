package game

import "fmt"

// Rand is the source of randomness used for random moves.
type Rand interface {
	Intn(n int) int
}

// Play applies m for the player to move and evaluates the outcome.
//
// Six consecutive slides draw the game. Otherwise the destination stone and its
// occupied neighbours are tested for being surrounded, i.e. every on-board neighbour
// occupied by either colour. A surrounded stone of the mover loses the game for the
// mover even when the same move also surrounds an opponent stone; a surrounded
// opponent stone wins it. A full board with no capture is a draw.
func (p *Position) Play(m Move) Status {
	if p.status.Terminal() {
		panic(fmt.Sprintf("cannot play %v: game already over (%v)", m, p.status))
	}
	mover := p.toMove
	p.apply(m)
	p.status = p.evaluate(m.To(), mover)
	return p.status
}

func (p *Position) evaluate(to int, mover Cell) Status {
	if p.slides >= DrawSlides {
		return Draw
	}

	selfSurrounded := p.surrounded(to)
	captured := false
	for _, n := range p.grid.Neighbors(to) {
		owner := p.cells[n]
		if owner == Vacant || !p.surrounded(n) {
			continue
		}
		if owner == mover {
			selfSurrounded = true
		} else {
			captured = true
		}
	}

	switch {
	case selfSurrounded:
		return winFor(mover.Opponent())
	case captured:
		return winFor(mover)
	case p.pieces == p.grid.Size():
		return Draw
	}
	return Ongoing
}

// surrounded reports whether every on-board neighbour of i is occupied.
func (p *Position) surrounded(i int) bool {
	for _, n := range p.grid.Neighbors(i) {
		if p.cells[n] == Vacant {
			return false
		}
	}
	return true
}

// RandomMove draws uniformly from the legal moves, using buf as scratch space.
// It returns NoMove when the position is terminal.
func (p *Position) RandomMove(rng Rand, buf []Move) (Move, []Move) {
	buf = p.AppendMoves(buf[:0])
	if len(buf) == 0 {
		return NoMove, buf
	}
	return buf[rng.Intn(len(buf))], buf
}

// Rollout plays uniformly random moves on p until the game ends and returns the result.
func (p *Position) Rollout(rng Rand, buf []Move) (Status, []Move) {
	var m Move
	for !p.status.Terminal() {
		m, buf = p.RandomMove(rng, buf)
		if m == NoMove {
			p.status = Draw
			break
		}
		p.Play(m)
	}
	return p.status, buf
}
