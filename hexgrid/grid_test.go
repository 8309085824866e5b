package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGridSize(t *testing.T) {
	for radius := MinRadius; radius <= MaxRadius; radius++ {
		g := For(radius)
		require.Equal(t, 1+3*radius*(radius+1), g.Size(), "radius %d", radius)
	}
	require.Equal(t, 217, MaxCells)
}

func TestGridBijection(t *testing.T) {
	t.Run("every valid coordinate round-trips", func(t *testing.T) {
		for radius := MinRadius; radius <= MaxRadius; radius++ {
			g := For(radius)
			seen := make(map[int]bool)
			for q := -radius; q <= radius; q++ {
				for r := -radius; r <= radius; r++ {
					c := Coord{Q: q, R: r}
					if !g.Contains(c) {
						continue
					}
					i := g.Index(c)
					require.GreaterOrEqual(t, i, 0)
					require.Less(t, i, g.Size())
					require.False(t, seen[i], "index %d assigned twice", i)
					seen[i] = true
					require.Equal(t, c, g.Coord(i))
				}
			}
			require.Len(t, seen, g.Size())
		}
	})

	t.Run("every index round-trips", func(t *testing.T) {
		g := For(4)
		for i := 0; i < g.Size(); i++ {
			require.Equal(t, i, g.Index(g.Coord(i)))
		}
	})

	t.Run("centre and corners", func(t *testing.T) {
		g := For(4)
		require.Equal(t, 0, g.Index(Coord{Q: 0, R: -4}))
		require.Equal(t, g.Size()/2, g.Index(Coord{Q: 0, R: 0}))
		require.Equal(t, g.Size()-1, g.Index(Coord{Q: 0, R: 4}))
	})
}

func TestGridContractViolations(t *testing.T) {
	g := For(4)

	t.Run("panics on an off-board coordinate", func(t *testing.T) {
		require.Panics(t, func() { g.Index(Coord{Q: 5, R: 0}) })
		require.Panics(t, func() { g.Index(Coord{Q: 3, R: 2}) })
	})

	t.Run("panics on an out of range index", func(t *testing.T) {
		require.Panics(t, func() { g.Coord(-1) })
		require.Panics(t, func() { g.Coord(g.Size()) })
	})

	t.Run("panics on an unsupported radius", func(t *testing.T) {
		require.Panics(t, func() { For(0) })
		require.Panics(t, func() { For(MaxRadius + 1) })
	})
}

func TestGridNeighbors(t *testing.T) {
	g := For(4)

	t.Run("neighbour relation is symmetric", func(t *testing.T) {
		for i := 0; i < g.Size(); i++ {
			for _, j := range g.Neighbors(i) {
				require.Contains(t, g.Neighbors(j), i, "%d -> %d has no way back", i, j)
			}
		}
	})

	t.Run("interior cells have six neighbours and corners three", func(t *testing.T) {
		require.Len(t, g.Neighbors(g.Index(Coord{})), 6)
		require.Len(t, g.Neighbors(g.Index(Coord{Q: 0, R: -4})), 3)
		require.Len(t, g.Neighbors(g.Index(Coord{Q: 4, R: -4})), 3)
		require.Len(t, g.Neighbors(g.Index(Coord{Q: 1, R: -4})), 4)
	})

	t.Run("order is clockwise from north", func(t *testing.T) {
		centre := Coord{}
		want := make([]int, 0, 6)
		for _, d := range Directions {
			want = append(want, g.Index(centre.Add(d)))
		}
		require.Equal(t, want, g.Neighbors(g.Index(centre)))
	})

	t.Run("grids are shared per radius", func(t *testing.T) {
		require.Same(t, For(4), For(4))
	})
}
