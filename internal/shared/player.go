package shared

import (
	"fmt"
	"slices"
	"strings"
)

// Player represents a player at the table.
type Player struct {
	ID       int      // Seat number, also the turn order
	Hand     []Card   // Cards currently held by the player
	Strategy Strategy // Fixed for the player's lifetime
}

// NewPlayer creates a new player with an empty hand.
func NewPlayer(id int, strategy Strategy) *Player {
	return &Player{
		ID:       id,
		Hand:     []Card{},
		Strategy: strategy,
	}
}

// AddCard adds a card to the player's hand.
func (p *Player) AddCard(card Card) {
	p.Hand = append(p.Hand, card)
}

// RemoveCard removes a card from the player's hand.
func (p *Player) RemoveCard(card Card) bool {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HasCard reports whether the card is in the player's hand.
func (p *Player) HasCard(card Card) bool {
	return slices.Contains(p.Hand, card)
}

// DrawCards draws n cards from the front of the deck.
func (p *Player) DrawCards(deck *Deck, n int) error {
	for range n {
		card, err := deck.Draw()
		if err != nil {
			return fmt.Errorf("player %d: %w", p.ID, err)
		}
		p.AddCard(card)
	}
	return nil
}

// Replenish draws up to n cards, taking only what the deck still holds.
// It returns the number of cards drawn.
func (p *Player) Replenish(deck *Deck, n int) int {
	drawn := deck.DrawUpTo(n)
	p.Hand = append(p.Hand, drawn...)
	return len(drawn)
}

// ChooseMoves asks the player's strategy for up to n moves against piles.
func (p *Player) ChooseMoves(piles Piles, n int) []Move {
	return p.Strategy.ChooseMoves(p.Hand, piles, n)
}

// SortedHand returns a sorted copy of the hand.
func (p *Player) SortedHand() []Card {
	hand := slices.Clone(p.Hand)
	slices.Sort(hand)
	return hand
}

func (p *Player) String() string {
	values := make([]string, len(p.Hand))
	for i, c := range p.Hand {
		values[i] = c.String()
	}
	return fmt.Sprintf("Player %d: [%s]", p.ID, strings.Join(values, ", "))
}
