package game

import "mado/hexgrid"

// at returns the index of (q, r) on a board of the given radius.
func at(radius, q, r int) int {
	return hexgrid.For(radius).Index(hexgrid.Coord{Q: q, R: r})
}

// board returns the cells of an empty board with the listed stones set.
func board(radius int, stones map[hexgrid.Coord]Cell) []Cell {
	g := hexgrid.For(radius)
	cells := make([]Cell, g.Size())
	for c, v := range stones {
		cells[g.Index(c)] = v
	}
	return cells
}
