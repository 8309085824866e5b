package searcher

import (
	"errors"
	"fmt"

	"mado/game"
)

var ErrInvalidSnapshot = errors.New("invalid tree snapshot")

// Snapshot is a flat, encodable copy of a Tree. Node and arc positions in the
// slices are their IDs.
type Snapshot struct {
	Root     int32
	MaxNodes int
	Nodes    []NodeRecord
	Arcs     []ArcRecord
}

type NodeRecord struct {
	Hash    uint64
	Player  game.Cell
	Status  game.Status
	Untried []game.Move
	Visits  int64
	Score   float64
}

type ArcRecord struct {
	Parent int32
	Child  int32
	Move   game.Move
}

func (t *Tree) Snapshot() Snapshot {
	s := Snapshot{
		Root:     int32(t.root),
		MaxNodes: t.maxNodes,
		Nodes:    make([]NodeRecord, len(t.nodes)),
		Arcs:     make([]ArcRecord, len(t.arcs)),
	}
	for i, n := range t.nodes {
		s.Nodes[i] = NodeRecord{
			Hash:    n.hash,
			Player:  n.player,
			Status:  n.status,
			Untried: append([]game.Move(nil), n.untried...),
			Visits:  n.visits,
			Score:   n.score,
		}
	}
	for i, a := range t.arcs {
		s.Arcs[i] = ArcRecord{Parent: int32(a.Parent), Child: int32(a.Child), Move: a.Move}
	}
	return s
}

// Restore rebuilds a tree from a snapshot, rejecting dangling arcs and duplicate
// hashes.
func Restore(s Snapshot) (*Tree, error) {
	if s.Root < 0 || int(s.Root) >= len(s.Nodes) {
		return nil, fmt.Errorf("%w: root %d out of %d nodes", ErrInvalidSnapshot, s.Root, len(s.Nodes))
	}
	t := &Tree{
		nodes:    make([]node, len(s.Nodes)),
		arcs:     make([]Arc, 0, len(s.Arcs)),
		index:    make(map[uint64]NodeID, len(s.Nodes)),
		root:     NodeID(s.Root),
		maxNodes: s.MaxNodes,
	}
	for i, r := range s.Nodes {
		if _, dup := t.index[r.Hash]; dup {
			return nil, fmt.Errorf("%w: duplicate node hash %x", ErrInvalidSnapshot, r.Hash)
		}
		t.nodes[i] = node{
			hash:    r.Hash,
			player:  r.Player,
			status:  r.Status,
			untried: append([]game.Move(nil), r.Untried...),
			visits:  r.Visits,
			score:   r.Score,
		}
		t.index[r.Hash] = NodeID(i)
	}
	for _, a := range s.Arcs {
		if a.Parent < 0 || int(a.Parent) >= len(s.Nodes) || a.Child < 0 || int(a.Child) >= len(s.Nodes) {
			return nil, fmt.Errorf("%w: arc %d->%d out of %d nodes", ErrInvalidSnapshot, a.Parent, a.Child, len(s.Nodes))
		}
		t.addArc(NodeID(a.Parent), NodeID(a.Child), a.Move)
	}
	return t, nil
}

// Snapshot returns the kept tree, or nil when there is none.
func (m *MCTS) Snapshot() *Snapshot {
	if m.tree == nil {
		return nil
	}
	s := m.tree.Snapshot()
	return &s
}

// Restore replaces the kept tree. A nil snapshot discards it.
func (m *MCTS) Restore(s *Snapshot) error {
	if s == nil {
		m.tree = nil
		return nil
	}
	t, err := Restore(*s)
	if err != nil {
		return err
	}
	m.tree = t
	return nil
}
