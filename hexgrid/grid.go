// Package hexgrid maps axial hex coordinates on a hexagonal board of fixed radius
// to a dense index and precomputes the six-neighbour adjacency table.
//
// A coordinate (q, r) is on the board when |q| <= radius, |r| <= radius and
// |q+r| <= radius. Cells are numbered row by row (r ascending, then q ascending),
// so a board of radius R has 1 + 3R(R+1) cells.
package hexgrid

import (
	"fmt"
	"sync"
)

const (
	MinRadius = 1
	MaxRadius = 8
	// MaxCells is the cell count of a MaxRadius board.
	MaxCells = 1 + 3*MaxRadius*(MaxRadius+1)
)

// Coord is an axial hex coordinate centred on the middle cell.
type Coord struct {
	Q, R int
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

func (c Coord) Add(d Coord) Coord {
	return Coord{Q: c.Q + d.Q, R: c.R + d.R}
}

// Directions lists the neighbour offsets clockwise starting north.
// Neighbour tables follow this order.
var Directions = [6]Coord{
	{Q: 0, R: -1}, // north
	{Q: 1, R: -1}, // north-east
	{Q: 1, R: 0},  // south-east
	{Q: 0, R: 1},  // south
	{Q: -1, R: 1}, // south-west
	{Q: -1, R: 0}, // north-west
}

// Grid is the immutable addressing table of one board radius.
type Grid struct {
	radius    int
	size      int
	rowStart  []int
	coords    []Coord
	neighbors [][]int
}

// Size returns the number of cells for a board of the given radius.
func Size(radius int) int {
	return 1 + 3*radius*(radius+1)
}

type gridStore struct {
	mu    sync.Mutex
	grids map[int]*Grid
}

var grids = &gridStore{grids: make(map[int]*Grid)}

// For returns the shared grid of the given radius, building it on first use.
// It panics if the radius is outside [MinRadius, MaxRadius].
func For(radius int) *Grid {
	if radius < MinRadius || radius > MaxRadius {
		panic(fmt.Sprintf("hexgrid: radius %d outside [%d, %d]", radius, MinRadius, MaxRadius))
	}
	grids.mu.Lock()
	defer grids.mu.Unlock()
	if g, ok := grids.grids[radius]; ok {
		return g
	}
	g := build(radius)
	grids.grids[radius] = g
	return g
}

func build(radius int) *Grid {
	g := &Grid{
		radius:   radius,
		size:     Size(radius),
		rowStart: make([]int, 2*radius+1),
	}
	g.coords = make([]Coord, 0, g.size)
	for r := -radius; r <= radius; r++ {
		g.rowStart[r+radius] = len(g.coords)
		for q := g.rowMin(r); q <= g.rowMax(r); q++ {
			g.coords = append(g.coords, Coord{Q: q, R: r})
		}
	}

	g.neighbors = make([][]int, g.size)
	for i, c := range g.coords {
		adj := make([]int, 0, len(Directions))
		for _, d := range Directions {
			n := c.Add(d)
			if g.Contains(n) {
				adj = append(adj, g.Index(n))
			}
		}
		g.neighbors[i] = adj
	}
	return g
}

func (g *Grid) rowMin(r int) int {
	return max(-g.radius, -r-g.radius)
}

func (g *Grid) rowMax(r int) int {
	return min(g.radius, g.radius-r)
}

func (g *Grid) Radius() int {
	return g.radius
}

func (g *Grid) Size() int {
	return g.size
}

// Contains reports whether c lies on the board.
func (g *Grid) Contains(c Coord) bool {
	return abs(c.Q) <= g.radius && abs(c.R) <= g.radius && abs(c.Q+c.R) <= g.radius
}

// Index returns the dense index of c. It panics if c is off the board.
func (g *Grid) Index(c Coord) int {
	if !g.Contains(c) {
		panic(fmt.Sprintf("hexgrid: coordinate %+v outside radius %d", c, g.radius))
	}
	return g.rowStart[c.R+g.radius] + c.Q - g.rowMin(c.R)
}

// Coord returns the coordinate of index i. It panics if i is out of range.
func (g *Grid) Coord(i int) Coord {
	if i < 0 || i >= g.size {
		panic(fmt.Sprintf("hexgrid: index %d outside [0, %d)", i, g.size))
	}
	return g.coords[i]
}

// Neighbors returns the on-board neighbours of index i, clockwise from north.
// The returned slice is shared and must not be modified.
func (g *Grid) Neighbors(i int) []int {
	return g.neighbors[i]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
