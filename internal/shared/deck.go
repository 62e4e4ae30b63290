package shared

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
var ErrEmptyDeck = errors.New("draw from empty deck")

// Deck represents the draw pile. Cards are drawn from the front.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a deck holding every value of r exactly once, in ascending order.
// A nil seed makes shuffles non-deterministic.
func NewDeck(r ValueRange, seed *uint64) *Deck {
	cards := make([]Card, 0, r.Len())
	for v := r.Min; v <= r.Max; v++ {
		cards = append(cards, Card(v))
	}
	return &Deck{cards: cards, rng: newRand(seed)}
}

// NewDeckFromCards creates a deck with an explicit draw order.
func NewDeckFromCards(cards []Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c, rng: newRand(nil)}
}

func newRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the front card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return 0, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// DrawUpTo draws at most n cards. Running out part way through is the normal
// end of the game, so it returns fewer cards instead of failing.
func (d *Deck) DrawUpTo(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return nil
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn
}

// Len returns the number of cards left to draw.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in draw order.
func (d *Deck) Cards() []Card {
	c := make([]Card, len(d.cards))
	copy(c, d.cards)
	return c
}
