package shared

import (
	"math"
	"strconv"
)

// Card represents a single numbered card. Two cards are equal iff their values are.
type Card int

// ValueRange is the inclusive range of card values in a deck.
type ValueRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// MaxValueRangeLen caps the number of cards a deck may hold.
const MaxValueRangeLen = 10000

// DefaultValueRange is the standard 98-card deck.
var DefaultValueRange = ValueRange{Min: 2, Max: 99}

// Len returns the number of distinct values in the range.
func (r ValueRange) Len() int {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min + 1
}

// Valid reports whether the range holds between 1 and MaxValueRangeLen values
// and leaves room for the pile boundaries below and above it.
func (r ValueRange) Valid() bool {
	if r.Min <= 0 || r.Max < r.Min || r.Max == math.MaxInt {
		return false
	}
	return r.Max-r.Min < MaxValueRangeLen
}

// Value returns the integer value of the card.
func (c Card) Value() int {
	return int(c)
}

func (c Card) String() string {
	return strconv.Itoa(int(c))
}

// Values converts cards to plain integers, mostly for events and logs.
func Values(cards []Card) []int {
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = int(c)
	}
	return values
}
