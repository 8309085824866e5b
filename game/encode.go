package game

import (
	"encoding/binary"
	"errors"
	"fmt"

	"mado/hexgrid"
)

const encodingVersion = 1

// header: version, radius, to move, slides, status, moves (uint32 LE).
const headerLen = 9

var ErrInvalidEncoding = errors.New("invalid position encoding")

// MarshalBinary encodes the board, slide count, player to move, status and move count.
func (p *Position) MarshalBinary() ([]byte, error) {
	size := p.grid.Size()
	buf := make([]byte, headerLen+size)
	buf[0] = encodingVersion
	buf[1] = byte(p.grid.Radius())
	buf[2] = byte(p.toMove)
	buf[3] = byte(p.slides)
	buf[4] = byte(p.status)
	binary.LittleEndian.PutUint32(buf[5:9], uint32(p.moves))
	for i := 0; i < size; i++ {
		buf[headerLen+i] = byte(p.cells[i])
	}
	return buf, nil
}

// UnmarshalBinary restores a position written by MarshalBinary. Piece count and hash
// are recomputed from the board.
func (p *Position) UnmarshalBinary(data []byte) error {
	if len(data) < headerLen {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidEncoding, len(data))
	}
	if data[0] != encodingVersion {
		return fmt.Errorf("%w: unknown version %d", ErrInvalidEncoding, data[0])
	}
	radius := int(data[1])
	if radius < hexgrid.MinRadius || radius > hexgrid.MaxRadius {
		return fmt.Errorf("%w: radius %d", ErrInvalidEncoding, radius)
	}
	size := hexgrid.Size(radius)
	if len(data) != headerLen+size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEncoding, headerLen+size, len(data))
	}
	status := Status(data[4])
	if status > WinB {
		return fmt.Errorf("%w: status %d", ErrInvalidEncoding, status)
	}
	slides := int(data[3])
	if slides > DrawSlides {
		return fmt.Errorf("%w: slide count %d", ErrInvalidEncoding, slides)
	}

	cells := make([]Cell, size)
	for i := range cells {
		cells[i] = Cell(data[headerLen+i])
	}
	// FromCells rejects a draw-level slide count; restore it after construction.
	restored, err := FromCells(radius, cells, Cell(data[2]), min(slides, DrawSlides-1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	full := restored.pieces == restored.grid.Size()
	switch {
	case slides == DrawSlides && status != Draw:
		return fmt.Errorf("%w: %d slides with status %v", ErrInvalidEncoding, slides, status)
	case status == Ongoing && full:
		return fmt.Errorf("%w: full board with status %v", ErrInvalidEncoding, status)
	case status == Draw && slides < DrawSlides && !full:
		return fmt.Errorf("%w: draw with %d slides on a board with vacant cells", ErrInvalidEncoding, slides)
	}
	restored.slides = slides
	restored.status = status
	restored.moves = int(binary.LittleEndian.Uint32(data[5:9]))
	restored.hash = restored.ComputeHash()
	*p = restored
	return nil
}
