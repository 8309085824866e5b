package game

import "fmt"

// Move packs a destination cell in the low byte and an origin cell in the high byte.
// Placements carry the placementFrom sentinel as origin. Moves compare bit-wise.
type Move uint16

const placementFrom = 0xFF

// NoMove is never produced by move generation.
const NoMove Move = 0xFFFF

func Place(to int) Move {
	return Move(placementFrom<<8 | to&0xFF)
}

func Slide(from, to int) Move {
	return Move((from&0xFF)<<8 | to&0xFF)
}

func (m Move) To() int {
	return int(m & 0xFF)
}

// From returns the origin cell of a slide. ok is false for placements.
func (m Move) From() (from int, ok bool) {
	from = int(m >> 8)
	if from == placementFrom {
		return 0, false
	}
	return from, true
}

func (m Move) IsPlacement() bool {
	return m>>8 == placementFrom
}

// Less orders moves by their packed value.
func (m Move) Less(o Move) bool {
	return m < o
}

func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	if from, ok := m.From(); ok {
		return fmt.Sprintf("%d>%d", from, m.To())
	}
	return fmt.Sprintf("@%d", m.To())
}
