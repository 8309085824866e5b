package searcher

import (
	"fmt"

	"mado/game"
)

// Merge combines two trees grown from the same root position into a new tree.
// The larger tree is copied and the smaller one is folded into it breadth-first:
// nodes are matched by hash and their visits and scores are summed, and nodes or
// arcs missing from the copy are added. Neither input is modified.
func Merge(a, b *Tree) *Tree {
	if a.RootHash() != b.RootHash() {
		panic(fmt.Sprintf("cannot merge trees with different roots %x and %x", a.RootHash(), b.RootHash()))
	}
	if b.NodeCount() > a.NodeCount() {
		a, b = b, a
	}

	merged := a.Clone()
	mapping := map[NodeID]NodeID{b.root: merged.root}
	queue := []NodeID{b.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		src := &b.nodes[id]
		dst := mapping[id]
		merged.nodes[dst].visits += src.visits
		merged.nodes[dst].score += src.score

		for _, arc := range src.out {
			move := b.arcs[arc].Move
			child := b.arcs[arc].Child
			target, seen := mapping[child]
			if !seen {
				var ok bool
				if target, ok = merged.index[b.nodes[child].hash]; !ok {
					target = merged.copyNode(&b.nodes[child])
					// Stats are added when the child itself is dequeued
					merged.nodes[target].visits = 0
					merged.nodes[target].score = 0
				}
				mapping[child] = target
				queue = append(queue, child)
			}
			if !merged.hasArc(dst, move) {
				merged.link(dst, target, move)
			}
		}
	}
	return merged
}

func (t *Tree) hasArc(parent NodeID, move game.Move) bool {
	for _, a := range t.nodes[parent].out {
		if t.arcs[a].Move == move {
			return true
		}
	}
	return false
}
