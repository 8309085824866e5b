package game

import "mado/hexgrid"

// Zobrist keys are drawn from a fixed splitmix64 stream so hashes are stable across runs.
const (
	zobristSeed uint64 = 0x9e3779b97f4a7c15
	// initialHash is the hash of an empty board before slide and turn keys are mixed in.
	initialHash uint64 = 0x6a09e667f3bcc909
)

var (
	cellKeys  [3][hexgrid.MaxCells]uint64
	slideKeys [DrawSlides + 1]uint64
	turnKey   uint64
)

func init() {
	rng := splitmix64{state: zobristSeed}
	for _, player := range []Cell{PlayerA, PlayerB} {
		for i := range cellKeys[player] {
			cellKeys[player][i] = rng.next()
		}
	}
	for i := range slideKeys {
		slideKeys[i] = rng.next()
	}
	turnKey = rng.next()
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	return mix64(s.state)
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// ComputeHash recomputes the hash of p from scratch. Play maintains the same value incrementally.
func (p *Position) ComputeHash() uint64 {
	h := initialHash ^ slideKeys[p.slides]
	if p.toMove == PlayerB {
		h ^= turnKey
	}
	for i := 0; i < p.grid.Size(); i++ {
		if c := p.cells[i]; c != Vacant {
			h ^= cellKeys[c][i]
		}
	}
	return h
}
