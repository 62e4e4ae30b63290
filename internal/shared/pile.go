package shared

// Direction is the way a pile counts.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Standard pile identifiers, in the order strategies scan them.
const (
	PileP1Up   = "p1_up"
	PileP2Up   = "p2_up"
	PileP1Down = "p1_down"
	PileP2Down = "p2_down"
)

// Pile is one of the play stacks. It always holds at least its boundary card.
type Pile struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
	cards     []Card
}

// NewPile creates a pile whose first card is the given boundary.
func NewPile(id string, dir Direction, boundary Card) *Pile {
	return &Pile{ID: id, Direction: dir, cards: []Card{boundary}}
}

// NewPileFromCards creates a pile holding cards, bottom first. Used to set up
// mid-game positions; cards must not be empty.
func NewPileFromCards(id string, dir Direction, cards ...Card) *Pile {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Pile{ID: id, Direction: dir, cards: c}
}

// Top returns the card that legality is computed against.
func (p *Pile) Top() Card {
	return p.cards[len(p.cards)-1]
}

// Push places card on top of the pile. Legality is the caller's concern.
func (p *Pile) Push(card Card) {
	p.cards = append(p.cards, card)
}

// Cards returns a copy of the pile, bottom first.
func (p *Pile) Cards() []Card {
	c := make([]Card, len(p.cards))
	copy(c, p.cards)
	return c
}

// Len returns the number of cards on the pile, boundary included.
func (p *Pile) Len() int {
	return len(p.cards)
}

// Accepts reports whether card may legally be played on this pile.
func (p *Pile) Accepts(card Card) bool {
	return IsValid(card, p.Top(), p.Direction)
}

// Increment returns the signed cost of playing card on this pile.
func (p *Pile) Increment(card Card) int {
	return Increment(card, p.Top(), p.Direction)
}

// MoveFor builds the candidate move of card onto this pile.
func (p *Pile) MoveFor(card Card) Move {
	return Move{Card: card, PileID: p.ID, Top: p.Top(), Direction: p.Direction}
}

// Piles is an ordered set of piles. The order is the scan order used for
// deterministic tie-breaking.
type Piles []*Pile

// NewStandardPiles builds the two ascending and two descending piles of a game
// played with cards from r.
func NewStandardPiles(r ValueRange) Piles {
	low, high := Card(r.Min-1), Card(r.Max+1)
	return Piles{
		NewPile(PileP1Up, Ascending, low),
		NewPile(PileP2Up, Ascending, low),
		NewPile(PileP1Down, Descending, high),
		NewPile(PileP2Down, Descending, high),
	}
}

// Get returns the pile with the given id.
func (ps Piles) Get(id string) (*Pile, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Clone returns a scratch copy that can be mutated without touching ps.
func (ps Piles) Clone() Piles {
	c := make(Piles, len(ps))
	for i, p := range ps {
		c[i] = NewPileFromCards(p.ID, p.Direction, p.cards...)
	}
	return c
}

// Tops maps each pile id to its top card.
func (ps Piles) Tops() map[string]Card {
	tops := make(map[string]Card, len(ps))
	for _, p := range ps {
		tops[p.ID] = p.Top()
	}
	return tops
}

// Contents maps each pile id to a copy of its cards.
func (ps Piles) Contents() map[string][]Card {
	contents := make(map[string][]Card, len(ps))
	for _, p := range ps {
		contents[p.ID] = p.Cards()
	}
	return contents
}
