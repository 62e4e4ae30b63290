package shared

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidStrategy is returned for an unknown strategy name.
var ErrInvalidStrategy = errors.New("invalid player strategy")

// Strategy selects the moves a player commits to for a turn.
type Strategy string

const (
	// Greedy repeatedly plays the cheapest single move.
	Greedy Strategy = "greedy"
	// Optimized searches every ordered sequence up to the quota and plays the
	// cheapest one.
	Optimized Strategy = "optimized"
)

// ParseStrategy resolves a strategy by name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case Greedy, Optimized:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
}

// ChooseMoves returns up to n moves to play from hand, in order. piles is never
// modified. An empty result means no card can be played at all.
func (s Strategy) ChooseMoves(hand []Card, piles Piles, n int) []Move {
	if n <= 0 || len(hand) == 0 {
		return nil
	}
	switch s {
	case Optimized:
		return optimizedMoves(hand, piles, n)
	default:
		return greedyMoves(hand, piles, n)
	}
}

// FirstPassMoves lists every legal move for the hand against the current pile
// tops. Hand order is the outer loop, pile order the inner one.
func FirstPassMoves(hand []Card, piles Piles) []Move {
	var moves []Move
	for _, card := range hand {
		for _, pile := range piles {
			if pile.Accepts(card) {
				moves = append(moves, pile.MoveFor(card))
			}
		}
	}
	return moves
}

// BestSingleMove returns the cheapest legal move. Ties go to the first move in
// FirstPassMoves order.
func BestSingleMove(hand []Card, piles Piles) (Move, bool) {
	var best Move
	found := false
	for _, m := range FirstPassMoves(hand, piles) {
		if !found || m.Increment() < best.Increment() {
			best = m
			found = true
		}
	}
	return best, found
}

// ValidSequences lists every ordered sequence of exactly n moves that can be
// played from hand. Each move is checked against the piles as left by the
// moves before it, and no card is used twice.
func ValidSequences(hand []Card, piles Piles, n int) [][]Move {
	var sequences [][]Move
	walkSequences(hand, piles, n, nil, func(seq []Move) {
		sequences = append(sequences, seq)
	})
	return sequences
}

func walkSequences(hand []Card, piles Piles, depth int, prefix []Move, visit func([]Move)) {
	if depth == 0 {
		seq := make([]Move, len(prefix))
		copy(seq, prefix)
		visit(seq)
		return
	}
	for _, m := range FirstPassMoves(hand, piles) {
		scratch := piles.Clone()
		pile, _ := scratch.Get(m.PileID)
		pile.Push(m.Card)
		walkSequences(withoutCard(hand, m.Card), scratch, depth-1, append(prefix, m), visit)
	}
}

func greedyMoves(hand []Card, piles Piles, n int) []Move {
	scratch := piles.Clone()
	remaining := slices.Clone(hand)
	var moves []Move
	for len(moves) < n {
		m, ok := BestSingleMove(remaining, scratch)
		if !ok {
			break
		}
		pile, _ := scratch.Get(m.PileID)
		pile.Push(m.Card)
		remaining = withoutCard(remaining, m.Card)
		moves = append(moves, m)
	}
	return moves
}

// optimizedMoves picks the cheapest full-quota sequence, falling back to
// shorter sequences only when the quota cannot be met.
func optimizedMoves(hand []Card, piles Piles, n int) []Move {
	for depth := min(n, len(hand)); depth > 0; depth-- {
		var best []Move
		bestCost := 0
		for _, seq := range ValidSequences(hand, piles, depth) {
			if cost := TotalIncrement(seq); best == nil || cost < bestCost {
				best, bestCost = seq, cost
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// withoutCard returns a copy of hand without card.
func withoutCard(hand []Card, card Card) []Card {
	rest := make([]Card, 0, len(hand))
	for _, c := range hand {
		if c != card {
			rest = append(rest, c)
		}
	}
	return rest
}
