package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"mado/experiments/metrics"
	"mado/game"
	"mado/hexgrid"
)

func at(radius, q, r int) int {
	return hexgrid.For(radius).Index(hexgrid.Coord{Q: q, R: r})
}

func newWorker(tree *Tree, seed uint64) *worker {
	return &worker{
		tree:        tree,
		rng:         rand.New(rand.NewSource(seed)),
		exploration: Exploration,
		playouts:    1,
		metrics:     metrics.NewDummyCollector(),
	}
}

// growTree runs a single-threaded search from pos for the given number of episodes.
func growTree(pos game.Position, episodes int, seed uint64) *Tree {
	tree := NewTree(pos, 0)
	w := newWorker(tree, seed)
	for i := 0; i < episodes; i++ {
		w.iterate(pos)
	}
	return tree
}

// play returns a copy of pos after moves.
func play(pos game.Position, moves ...game.Move) game.Position {
	for _, m := range moves {
		pos.Play(m)
	}
	return pos
}

func requireSameStats(t *testing.T, want, got *Tree) {
	t.Helper()
	require.Equal(t, want.NodeCount(), got.NodeCount())
	require.Equal(t, want.ArcCount(), got.ArcCount())
	require.Equal(t, want.RootHash(), got.RootHash())
	for id := range want.nodes {
		other, ok := got.Lookup(want.Hash(NodeID(id)))
		require.True(t, ok, "Node %d should exist in both trees", id)

		wantVisits, wantScore := want.Stats(NodeID(id))
		gotVisits, gotScore := got.Stats(other)
		require.Equal(t, wantVisits, gotVisits)
		require.InDelta(t, wantScore, gotScore, 1e-9)
		require.Equal(t, want.Untried(NodeID(id)), got.Untried(other))
		require.Len(t, got.Children(other), len(want.Children(NodeID(id))))
	}
}

// requireConsistent checks the arena invariants every tree must hold.
func requireConsistent(t *testing.T, tree *Tree) {
	t.Helper()
	require.Len(t, tree.index, tree.NodeCount(), "Every node should be indexed exactly once")
	for hash, id := range tree.index {
		require.Equal(t, hash, tree.Hash(id))
	}
	for id := range tree.nodes {
		expanded := make(map[game.Move]bool)
		for _, a := range tree.Children(NodeID(id)) {
			arc := tree.Arc(a)
			require.Equal(t, NodeID(id), arc.Parent)
			require.Contains(t, tree.Parents(arc.Child), a)
			require.False(t, expanded[arc.Move], "Move %v should have a single arc", arc.Move)
			expanded[arc.Move] = true
		}
		for _, m := range tree.nodes[id].untried {
			require.False(t, expanded[m], "Move %v is both expanded and untried", m)
		}
	}

	// Every node is reachable from the root
	seen := map[NodeID]bool{tree.Root(): true}
	queue := []NodeID{tree.Root()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, a := range tree.Children(id) {
			if child := tree.Arc(a).Child; !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	require.Len(t, seen, tree.NodeCount())
}
