package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"mado/game"
)

func TestGetOrCreateChild(t *testing.T) {
	t.Run("transposed move orders share one node", func(t *testing.T) {
		root := game.NewPosition(4)
		tree := NewTree(root, 0)

		walk := func(moves ...game.Move) NodeID {
			id := tree.Root()
			pos := root
			for _, m := range moves {
				pos.Play(m)
				_, id = tree.GetOrCreateChild(id, m, &pos)
			}
			return id
		}
		first := walk(game.Place(1), game.Place(2), game.Place(3), game.Place(4))
		second := walk(game.Place(3), game.Place(4), game.Place(1), game.Place(2))

		require.Equal(t, first, second, "Both move orders should reach the same node")
		require.Len(t, tree.Parents(first), 2, "Shared node should have one arc per parent")
		require.Equal(t, 8, tree.NodeCount())
		require.Equal(t, 8, tree.ArcCount())
		requireConsistent(t, tree)
	})

	t.Run("same move twice reuses the arc", func(t *testing.T) {
		root := game.NewPosition(4)
		tree := NewTree(root, 0)
		child := play(root, game.Place(10))

		arc1, node1 := tree.GetOrCreateChild(tree.Root(), game.Place(10), &child)
		arc2, node2 := tree.GetOrCreateChild(tree.Root(), game.Place(10), &child)

		require.Equal(t, arc1, arc2)
		require.Equal(t, node1, node2)
		require.Equal(t, 1, tree.ArcCount())
	})

	t.Run("linked move is no longer untried", func(t *testing.T) {
		root := game.NewPosition(4)
		tree := NewTree(root, 0)
		before := tree.Untried(tree.Root())
		child := play(root, game.Place(10))

		tree.GetOrCreateChild(tree.Root(), game.Place(10), &child)
		require.Equal(t, before-1, tree.Untried(tree.Root()))
		require.NotContains(t, tree.nodes[tree.Root()].untried, game.Place(10))

		tree.GetOrCreateChild(tree.Root(), game.Place(10), &child)
		require.Equal(t, before-1, tree.Untried(tree.Root()), "Reusing the arc should not remove another move")
		requireConsistent(t, tree)
	})

	t.Run("new node takes the position's moves and mover", func(t *testing.T) {
		root := game.NewPosition(4)
		tree := NewTree(root, 0)
		child := play(root, game.Place(10))

		_, id := tree.GetOrCreateChild(tree.Root(), game.Place(10), &child)

		require.Equal(t, game.PlayerA, tree.nodes[id].player)
		require.Equal(t, len(child.LegalMoves()), tree.Untried(id))
		visits, score := tree.Stats(id)
		require.Zero(t, visits)
		require.Zero(t, score)
	})
}

// expandRoot links every given root move and sets each child's statistics.
func expandRoot(t *testing.T, tree *Tree, root game.Position, rootVisits int64, stats map[game.Move][2]float64) map[ArcID]game.Move {
	t.Helper()
	arcs := make(map[ArcID]game.Move)
	for m, s := range stats {
		pos := play(root, m)
		a, id := tree.GetOrCreateChild(tree.Root(), m, &pos)
		tree.nodes[id].visits = int64(s[0])
		tree.nodes[id].score = s[1]
		arcs[a] = m
	}
	tree.nodes[tree.Root()].visits = rootVisits
	return arcs
}

func TestSelectChildUCT(t *testing.T) {
	root := game.NewPosition(4)

	t.Run("selects the child with the highest score", func(t *testing.T) {
		tree := NewTree(root, 0)
		expandRoot(t, tree, root, 30, map[game.Move][2]float64{
			game.Place(0): {10, 2},
			game.Place(1): {10, 8},
			game.Place(2): {10, 5},
		})
		rng := rand.New(rand.NewSource(1))

		arc := tree.SelectChildUCT(tree.Root(), Exploration, rng)
		require.Equal(t, game.Place(1), tree.Arc(arc).Move)
	})

	t.Run("rarely visited child is explored", func(t *testing.T) {
		tree := NewTree(root, 0)
		expandRoot(t, tree, root, 1001, map[game.Move][2]float64{
			game.Place(0): {1000, 600},
			game.Place(1): {1, 0},
		})
		rng := rand.New(rand.NewSource(1))

		arc := tree.SelectChildUCT(tree.Root(), Exploration, rng)
		require.Equal(t, game.Place(1), tree.Arc(arc).Move)
	})

	t.Run("ties are broken uniformly", func(t *testing.T) {
		tree := NewTree(root, 0)
		arcs := expandRoot(t, tree, root, 30, map[game.Move][2]float64{
			game.Place(0): {10, 5},
			game.Place(1): {10, 5},
			game.Place(2): {10, 5},
		})
		rng := rand.New(rand.NewSource(42))

		const trials = 3000
		counts := make(map[game.Move]int)
		for i := 0; i < trials; i++ {
			counts[arcs[tree.SelectChildUCT(tree.Root(), Exploration, rng)]]++
		}

		require.Len(t, counts, 3, "Every tied child should be selected")
		for m, n := range counts {
			require.InDelta(t, trials/3, n, 150, "Move %v selected %d times", m, n)
		}
	})

	t.Run("panics on a node without children", func(t *testing.T) {
		tree := NewTree(root, 0)
		require.Panics(t, func() {
			tree.SelectChildUCT(tree.Root(), Exploration, rand.New(rand.NewSource(1)))
		})
	})

	t.Run("panics on an unvisited parent", func(t *testing.T) {
		tree := NewTree(root, 0)
		expandRoot(t, tree, root, 0, map[game.Move][2]float64{game.Place(0): {1, 1}})
		require.Panics(t, func() {
			tree.SelectChildUCT(tree.Root(), Exploration, rand.New(rand.NewSource(1)))
		})
	})
}

func TestBestMoveAndPolicy(t *testing.T) {
	root := game.NewPosition(4)
	tree := NewTree(root, 0)
	expandRoot(t, tree, root, 30, map[game.Move][2]float64{
		game.Place(0): {5, 5},
		game.Place(1): {20, 9},
		game.Place(2): {5, 0},
	})

	t.Run("best move is the most visited, not the best scoring", func(t *testing.T) {
		require.Equal(t, game.Place(1), tree.BestMove())
	})

	t.Run("policy reports visits per root move", func(t *testing.T) {
		require.Equal(t, map[game.Move]float64{
			game.Place(0): 5,
			game.Place(1): 20,
			game.Place(2): 5,
		}, tree.Policy())
	})

	t.Run("best move panics on an unexpanded root", func(t *testing.T) {
		require.Panics(t, func() { NewTree(root, 0).BestMove() })
	})
}

func TestIterationBookkeeping(t *testing.T) {
	root := game.NewPosition(4)
	tree := growTree(root, 500, 3)

	visits, _ := tree.Stats(tree.Root())
	require.EqualValues(t, 500, visits, "Every iteration should visit the root once")
	require.Zero(t, tree.Untried(tree.Root()), "Root moves should all be expanded")
	require.Len(t, tree.Children(tree.Root()), len(root.LegalMoves()))
	requireConsistent(t, tree)

	for id := range tree.nodes {
		visits, score := tree.Stats(NodeID(id))
		require.GreaterOrEqual(t, visits, int64(1), "Every node is visited when created")
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, float64(visits))
	}
}

func TestClone(t *testing.T) {
	tree := growTree(game.NewPosition(4), 200, 5)
	clone := tree.Clone()
	requireSameStats(t, tree, clone)

	newWorker(clone, 6).iterate(game.NewPosition(4))
	visits, _ := tree.Stats(tree.Root())
	require.EqualValues(t, 200, visits, "Growing the clone should leave the source tree alone")
}
