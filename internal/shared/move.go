package shared

import "fmt"

// JumpDistance is the exact backwards step allowed by the jump rule.
const JumpDistance = 10

// Move is a candidate placement of Card onto the pile PileID whose top is Top.
type Move struct {
	Card      Card      `json:"card"`
	PileID    string    `json:"pile"`
	Top       Card      `json:"top"`
	Direction Direction `json:"-"`
}

// Increment returns the signed cost of the move. Lower is always better and a
// jump always costs -JumpDistance.
func (m Move) Increment() int {
	return Increment(m.Card, m.Top, m.Direction)
}

// IsValid checks the move against the pile top it was built for.
func (m Move) IsValid() bool {
	return IsValid(m.Card, m.Top, m.Direction)
}

func (m Move) String() string {
	return fmt.Sprintf("(Card: %d, Pile: %s, Inc: %d)", m.Card, m.PileID, m.Increment())
}

// Increment is the cost of playing card on top of a pile counting in dir.
func Increment(card, top Card, dir Direction) int {
	diff := int(card) - int(top)
	if dir == Descending {
		return -diff
	}
	return diff
}

// IsValid applies the direction rule and the exact ±10 jump exception.
// A card equal to the top is never playable.
func IsValid(card, top Card, dir Direction) bool {
	diff := int(card) - int(top)
	if diff == 0 {
		return false
	}
	switch dir {
	case Ascending:
		return diff > 0 || diff == -JumpDistance
	case Descending:
		return diff < 0 || diff == JumpDistance
	}
	return false
}

// TotalIncrement sums the cost of a move sequence.
func TotalIncrement(moves []Move) int {
	total := 0
	for _, m := range moves {
		total += m.Increment()
	}
	return total
}
