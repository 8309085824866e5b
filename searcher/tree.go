package searcher

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"mado/game"
)

type NodeID int32
type ArcID int32

// Arc links a parent position to the position reached by playing Move.
type Arc struct {
	Parent NodeID
	Child  NodeID
	Move   game.Move
}

type node struct {
	hash    uint64
	player  game.Cell // Player who moved into this position
	status  game.Status
	untried []game.Move
	out     []ArcID
	in      []ArcID
	visits  int64
	score   float64
}

// Tree is an append-only arena of positions joined by arcs. Positions reached by
// different move orders share a node through the transposition index, so the tree
// is really a DAG. IDs stay valid for the lifetime of the tree.
//
// A Tree is not safe for concurrent use; each worker owns its own.
type Tree struct {
	nodes    []node
	arcs     []Arc
	index    map[uint64]NodeID
	root     NodeID
	maxNodes int
}

// NewTree returns a tree holding only root. maxNodes caps the number of nodes;
// zero means unlimited.
func NewTree(root game.Position, maxNodes int) *Tree {
	t := &Tree{
		index:    make(map[uint64]NodeID),
		maxNodes: maxNodes,
	}
	t.root = t.addNode(&root)
	return t
}

func (t *Tree) addNode(pos *game.Position) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		hash:    pos.Hash(),
		player:  pos.JustMoved(),
		status:  pos.Status(),
		untried: pos.LegalMoves(),
	})
	t.index[pos.Hash()] = id
	return id
}

func (t *Tree) addArc(parent, child NodeID, move game.Move) ArcID {
	id := ArcID(len(t.arcs))
	t.arcs = append(t.arcs, Arc{Parent: parent, Child: child, Move: move})
	t.nodes[parent].out = append(t.nodes[parent].out, id)
	t.nodes[child].in = append(t.nodes[child].in, id)
	return id
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) RootHash() uint64 {
	return t.nodes[t.root].hash
}

func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

func (t *Tree) ArcCount() int {
	return len(t.arcs)
}

// Full reports whether the node ceiling has been reached.
func (t *Tree) Full() bool {
	return t.maxNodes > 0 && len(t.nodes) >= t.maxNodes
}

// Lookup finds the node for a position hash.
func (t *Tree) Lookup(hash uint64) (NodeID, bool) {
	id, ok := t.index[hash]
	return id, ok
}

func (t *Tree) Arc(id ArcID) Arc {
	return t.arcs[id]
}

// Children returns the outgoing arcs of id. The slice must not be modified.
func (t *Tree) Children(id NodeID) []ArcID {
	return t.nodes[id].out
}

// Parents returns the incoming arcs of id. The slice must not be modified.
func (t *Tree) Parents(id NodeID) []ArcID {
	return t.nodes[id].in
}

// Stats returns the visit count and accumulated score of id. The score is from the
// perspective of the player who moved into the node.
func (t *Tree) Stats(id NodeID) (visits int64, score float64) {
	n := &t.nodes[id]
	return n.visits, n.score
}

func (t *Tree) Hash(id NodeID) uint64 {
	return t.nodes[id].hash
}

// Untried returns the number of moves of id that have not been expanded yet.
func (t *Tree) Untried(id NodeID) int {
	return len(t.nodes[id].untried)
}

// GetOrCreateChild links parent to the node of pos, which must be the position
// reached by playing move from parent. An existing node with the same hash is
// shared rather than duplicated, and an existing arc for the same move is reused.
// A newly linked move is no longer untried at parent.
func (t *Tree) GetOrCreateChild(parent NodeID, move game.Move, pos *game.Position) (ArcID, NodeID) {
	child, ok := t.index[pos.Hash()]
	if !ok {
		child = t.addNode(pos)
		return t.link(parent, child, move), child
	}
	for _, a := range t.nodes[parent].out {
		if t.arcs[a].Move == move {
			if t.arcs[a].Child != child {
				panic(fmt.Sprintf("move %v from node %d leads to two different positions", move, parent))
			}
			return a, child
		}
	}
	return t.link(parent, child, move), child
}

// link adds an arc for an expanded move.
func (t *Tree) link(parent, child NodeID, move game.Move) ArcID {
	t.removeUntried(parent, move)
	return t.addArc(parent, child, move)
}

// popUntried removes a uniformly drawn untried move from id.
func (t *Tree) popUntried(id NodeID, rng game.Rand) game.Move {
	moves := t.nodes[id].untried
	i := rng.Intn(len(moves))
	move := moves[i]
	last := len(moves) - 1
	moves[i] = moves[last]
	t.nodes[id].untried = moves[:last]
	return move
}

func (t *Tree) removeUntried(id NodeID, move game.Move) {
	moves := t.nodes[id].untried
	for i, m := range moves {
		if m == move {
			last := len(moves) - 1
			moves[i] = moves[last]
			t.nodes[id].untried = moves[:last]
			return
		}
	}
}

// SelectChildUCT returns the outgoing arc of parent whose child has the highest
// UCT score. Ties are broken uniformly at random.
func (t *Tree) SelectChildUCT(parent NodeID, exploration float64, rng game.Rand) ArcID {
	p := &t.nodes[parent]
	if len(p.out) == 0 {
		panic(fmt.Sprintf("node %d has no children", parent))
	}

	policy := newUCT(exploration, float64(p.visits))
	best := ArcID(-1)
	bestScore := math.Inf(-1)
	ties := 0
	for _, a := range p.out {
		c := &t.nodes[t.arcs[a].Child]
		score := policy.evaluate(c.score, float64(c.visits))
		switch {
		case score > bestScore:
			best, bestScore, ties = a, score, 1
		case score == bestScore:
			ties++
			if rng.Intn(ties) == 0 {
				best = a
			}
		}
	}
	return best
}

// backup adds one visit and the playout reward to every node on path. forA is the
// mean reward for PlayerA; PlayerB receives its complement.
func (t *Tree) backup(path []NodeID, forA float64) {
	for _, id := range path {
		n := &t.nodes[id]
		n.visits++
		if n.player == game.PlayerA {
			n.score += forA
		} else {
			n.score += 1 - forA
		}
	}
}

// Policy returns the visit count of each expanded root move.
func (t *Tree) Policy() map[game.Move]float64 {
	out := t.nodes[t.root].out
	policy := make(map[game.Move]float64, len(out))
	for _, a := range out {
		arc := t.arcs[a]
		policy[arc.Move] = float64(t.nodes[arc.Child].visits)
	}
	return policy
}

// BestMove returns the root move leading to the most visited child.
func (t *Tree) BestMove() game.Move {
	out := t.nodes[t.root].out
	if len(out) == 0 {
		panic("root has no children")
	}
	best := lo.MaxBy(out, func(a, b ArcID) bool {
		return t.nodes[t.arcs[a].Child].visits > t.nodes[t.arcs[b].Child].visits
	})
	return t.arcs[best].Move
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:    make([]node, len(t.nodes)),
		arcs:     append([]Arc(nil), t.arcs...),
		index:    make(map[uint64]NodeID, len(t.index)),
		root:     t.root,
		maxNodes: t.maxNodes,
	}
	for i, n := range t.nodes {
		n.untried = append([]game.Move(nil), n.untried...)
		n.out = append([]ArcID(nil), n.out...)
		n.in = append([]ArcID(nil), n.in...)
		c.nodes[i] = n
	}
	for h, id := range t.index {
		c.index[h] = id
	}
	return c
}
