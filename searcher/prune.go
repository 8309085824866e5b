package searcher

import "mado/game"

// Prune extracts the part of t reachable from the node of pos into a new tree
// rooted there. It returns nil when t has no node for pos. t itself is left untouched.
func (t *Tree) Prune(pos *game.Position) *Tree {
	start, ok := t.index[pos.Hash()]
	if !ok {
		return nil
	}

	pruned := &Tree{
		index:    make(map[uint64]NodeID),
		maxNodes: t.maxNodes,
	}
	mapping := map[NodeID]NodeID{start: pruned.copyNode(&t.nodes[start])}
	pruned.root = mapping[start]

	// Breadth-first so that every arc is copied once its parent exists
	queue := []NodeID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, a := range t.nodes[id].out {
			arc := t.arcs[a]
			child, seen := mapping[arc.Child]
			if !seen {
				child = pruned.copyNode(&t.nodes[arc.Child])
				mapping[arc.Child] = child
				queue = append(queue, arc.Child)
			}
			pruned.addArc(mapping[id], child, arc.Move)
		}
	}
	return pruned
}

// copyNode adds a copy of n without its arcs.
func (t *Tree) copyNode(n *node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		hash:    n.hash,
		player:  n.player,
		status:  n.status,
		untried: append([]game.Move(nil), n.untried...),
		visits:  n.visits,
		score:   n.score,
	})
	t.index[n.hash] = id
	return id
}
