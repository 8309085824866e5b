package gamemaster

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"mado/game"
	"mado/searcher"
)

const snapshotVersion = 1

type payload struct {
	Version  int
	Position []byte
	Human    game.Cell
	History  []game.Move
	Tree     *searcher.Snapshot
}

type envelope struct {
	Payload  []byte
	Checksum uint64
}

// Save writes the session, including the kept search tree, to w.
func (s *Session) Save(w io.Writer) error {
	position, err := s.position.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode position: %w", err)
	}

	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(payload{
		Version:  snapshotVersion,
		Position: position,
		Human:    s.human,
		History:  s.history,
		Tree:     s.mcts.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = gob.NewEncoder(w).Encode(envelope{Payload: buf.Bytes(), Checksum: xxhash.Sum64(buf.Bytes())})
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load reads a session written by Save. The search options play the same role as
// in NewGame.
func Load(r io.Reader, goroutines int, options ...searcher.Option) (*Session, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if xxhash.Sum64(env.Payload) != env.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if p.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptSnapshot, p.Version)
	}

	var position game.Position
	if err := position.UnmarshalBinary(p.Position); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if position.Radius() < MinRadius || position.Radius() > MaxRadius {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRadius, position.Radius())
	}
	if p.Human != game.PlayerA && p.Human != game.PlayerB {
		return nil, fmt.Errorf("%w: invalid human player %d", ErrCorruptSnapshot, p.Human)
	}

	mcts := searcher.NewMCTS(goroutines, options...)
	if err := mcts.Restore(p.Tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &Session{
		position: position,
		human:    p.Human,
		history:  p.History,
		mcts:     mcts,
	}, nil
}
