package game

import (
	"fmt"
	"slices"

	"the-game/internal/shared"

	"github.com/google/uuid"
)

// GameState represents the current state of the game.
type GameState string

const (
	Uninitialized GameState = "Uninitialized" // Constructed, first player not resolved yet
	InProgress    GameState = "InProgress"    // Turns are being played
	Won           GameState = "Won"           // Deck and every hand emptied
	Lost          GameState = "Lost"          // The active player had no legal move
)

// FirstMoveSelection is the policy that picks the starting player.
type FirstMoveSelection string

const (
	// FirstPlayer always starts with player 0.
	FirstPlayer FirstMoveSelection = "first_player"
	// OptimizedFirstMove starts with the player holding the cheapest opening move.
	OptimizedFirstMove FirstMoveSelection = "optimized"
)

func (s FirstMoveSelection) valid() bool {
	return s == FirstPlayer || s == OptimizedFirstMove
}

// Config describes a table before the deal.
type Config struct {
	PlayerCount        int
	HandSize           int
	Seed               *uint64           // nil shuffles non-deterministically
	ValueRange         shared.ValueRange // zero value means shared.DefaultValueRange
	FirstMoveSelection FirstMoveSelection
	// Strategies holds one strategy per player, or a single strategy shared by
	// every player. Empty means greedy for everyone.
	Strategies []shared.Strategy
	// Deck overrides the generated deck, keeping its draw order until Setup shuffles it.
	Deck *shared.Deck
}

// Game represents the turn state machine of one game. It is not safe for
// concurrent use; independent games share nothing.
type Game struct {
	ID                 string
	Players            []*shared.Player // Index is the player id and the turn order
	Piles              shared.Piles
	Deck               *shared.Deck
	HandSize           int
	FirstMoveSelection FirstMoveSelection
	GameState          GameState
	activePlayer       int // -1 until resolved
	turn               int
	dealt              bool
}

// NewGame initializes a new game instance.
func NewGame(cfg Config) (*Game, error) {
	if cfg.PlayerCount < 1 {
		return nil, fmt.Errorf("%w: %d players", ErrInvalidConfig, cfg.PlayerCount)
	}
	if cfg.HandSize < 1 {
		return nil, fmt.Errorf("%w: hand size %d", ErrInvalidConfig, cfg.HandSize)
	}
	valueRange := cfg.ValueRange
	if valueRange == (shared.ValueRange{}) {
		valueRange = shared.DefaultValueRange
	}
	if !valueRange.Valid() {
		return nil, fmt.Errorf("%w: value range %d..%d", ErrInvalidConfig, valueRange.Min, valueRange.Max)
	}

	strategies, err := expandStrategies(cfg.Strategies, cfg.PlayerCount)
	if err != nil {
		return nil, err
	}
	players := make([]*shared.Player, cfg.PlayerCount)
	for i := range players {
		players[i] = shared.NewPlayer(i, strategies[i])
	}

	deck := cfg.Deck
	if deck == nil {
		deck = shared.NewDeck(valueRange, cfg.Seed)
	}
	selection := cfg.FirstMoveSelection
	if selection == "" {
		selection = FirstPlayer
	}

	return &Game{
		ID:                 uuid.New().String(),
		Players:            players,
		Piles:              shared.NewStandardPiles(valueRange),
		Deck:               deck,
		HandSize:           cfg.HandSize,
		FirstMoveSelection: selection,
		GameState:          Uninitialized,
		activePlayer:       -1,
	}, nil
}

func expandStrategies(strategies []shared.Strategy, n int) ([]shared.Strategy, error) {
	switch len(strategies) {
	case 0:
		strategies = []shared.Strategy{shared.Greedy}
		fallthrough
	case 1:
		all := make([]shared.Strategy, n)
		for i := range all {
			all[i] = strategies[0]
		}
		strategies = all
	case n:
		strategies = slices.Clone(strategies)
	default:
		return nil, fmt.Errorf("%w: %d strategies for %d players", ErrInvalidConfig, len(strategies), n)
	}
	for i, s := range strategies {
		parsed, err := shared.ParseStrategy(string(s))
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i, err)
		}
		strategies[i] = parsed
	}
	return strategies, nil
}

// Setup shuffles the deck, deals the opening hands and resolves the first player.
func (g *Game) Setup() error {
	if g.GameState != Uninitialized {
		return fmt.Errorf("setup: %w", ErrAlreadyDealt)
	}
	if !g.FirstMoveSelection.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, g.FirstMoveSelection)
	}
	g.Deck.Shuffle()
	if err := g.DealCards(); err != nil {
		return err
	}
	return g.ResolveFirstPlayer()
}

// DealCards deals HandSize cards to every player, one card per player per round.
func (g *Game) DealCards() error {
	if g.dealt {
		return ErrAlreadyDealt
	}
	needed := g.HandSize * len(g.Players)
	if g.Deck.Len() < needed {
		return fmt.Errorf("%w: need %d, deck has %d", ErrNotEnoughCards, needed, g.Deck.Len())
	}
	for range g.HandSize {
		for _, player := range g.Players {
			if err := player.DrawCards(g.Deck, 1); err != nil {
				return err
			}
		}
	}
	g.dealt = true
	return nil
}

// ResolveFirstPlayer applies the first move selection policy and starts the game.
func (g *Game) ResolveFirstPlayer() error {
	if !g.dealt {
		return ErrNotDealt
	}
	if g.GameState != Uninitialized {
		return fmt.Errorf("resolve first player: %w", ErrAlreadyDealt)
	}
	switch g.FirstMoveSelection {
	case FirstPlayer:
		g.activePlayer = 0
	case OptimizedFirstMove:
		g.activePlayer = g.bestOpeningPlayer()
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, g.FirstMoveSelection)
	}
	g.GameState = InProgress
	return nil
}

// bestOpeningPlayer returns the player with the cheapest single move, lowest
// id on ties. If nobody can move, player 0 starts and loses on the first turn.
func (g *Game) bestOpeningPlayer() int {
	bestPlayer, bestIncrement := 0, 0
	found := false
	for _, player := range g.Players {
		m, ok := shared.BestSingleMove(player.Hand, g.Piles)
		if !ok {
			continue
		}
		if !found || m.Increment() < bestIncrement {
			bestPlayer, bestIncrement = player.ID, m.Increment()
			found = true
		}
	}
	return bestPlayer
}

// CardsToPlayThisTurn is the quota for the current turn: 2 while the deck has
// cards, 1 once it is empty.
func (g *Game) CardsToPlayThisTurn() int {
	if g.Deck.Len() > 0 {
		return 2
	}
	return 1
}

// MakeMove plays exactly one turn for the active player and returns the moves
// applied. A *NoLegalMoveError ends the game as a loss.
func (g *Game) MakeMove() ([]shared.Move, error) {
	switch g.GameState {
	case Uninitialized:
		return nil, ErrNotStarted
	case Won, Lost:
		return nil, ErrGameOver
	}

	player := g.Players[g.activePlayer]
	quota := g.CardsToPlayThisTurn()
	moves := player.ChooseMoves(g.Piles, quota)
	if len(moves) == 0 {
		g.GameState = Lost
		return nil, &NoLegalMoveError{
			PlayerID:       player.ID,
			Quota:          quota,
			CardsRemaining: g.CardsRemaining(),
		}
	}

	for _, m := range moves {
		pile, ok := g.Piles.Get(m.PileID)
		if !ok || !pile.Accepts(m.Card) || !player.RemoveCard(m.Card) {
			g.GameState = Lost
			return nil, fmt.Errorf("player %d: %w: %s", player.ID, ErrIllegalMove, m)
		}
		pile.Push(m.Card)
	}
	player.Replenish(g.Deck, len(moves))
	g.turn++

	if g.IsWon() {
		g.GameState = Won
		return moves, nil
	}
	g.advance()
	return moves, nil
}

// advance hands the turn to the next player in seat order. Players whose hand
// is empty are out of cards for good (the deck is empty too) and are passed over.
func (g *Game) advance() {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		next := (g.activePlayer + step) % n
		if len(g.Players[next].Hand) > 0 {
			g.activePlayer = next
			return
		}
	}
}

// IsWon reports whether the deck and every hand are empty.
func (g *Game) IsWon() bool {
	if g.Deck.Len() > 0 {
		return false
	}
	for _, player := range g.Players {
		if len(player.Hand) > 0 {
			return false
		}
	}
	return true
}

// IsOver reports whether the game reached a terminal state.
func (g *Game) IsOver() bool {
	return g.GameState == Won || g.GameState == Lost
}

// --- Observers ---

// State returns the current state of the game.
func (g *Game) State() GameState {
	return g.GameState
}

// ActivePlayerID returns the player whose turn it is, false before setup.
func (g *Game) ActivePlayerID() (int, bool) {
	return g.activePlayer, g.activePlayer >= 0
}

// Turn returns the number of completed turns.
func (g *Game) Turn() int {
	return g.turn
}

// DeckSize returns the number of undrawn cards.
func (g *Game) DeckSize() int {
	return g.Deck.Len()
}

// Hand returns a copy of a player's hand.
func (g *Game) Hand(playerID int) ([]shared.Card, bool) {
	if playerID < 0 || playerID >= len(g.Players) {
		return nil, false
	}
	return slices.Clone(g.Players[playerID].Hand), true
}

// Hands returns every player's hand, sorted.
func (g *Game) Hands() map[int][]shared.Card {
	hands := make(map[int][]shared.Card, len(g.Players))
	for _, player := range g.Players {
		hands[player.ID] = player.SortedHand()
	}
	return hands
}

// PileCards returns a copy of a pile, bottom first.
func (g *Game) PileCards(pileID string) ([]shared.Card, bool) {
	pile, ok := g.Piles.Get(pileID)
	if !ok {
		return nil, false
	}
	return pile.Cards(), true
}

// CardsRemaining counts the cards still in the deck or in hands.
func (g *Game) CardsRemaining() int {
	remaining := g.Deck.Len()
	for _, player := range g.Players {
		remaining += len(player.Hand)
	}
	return remaining
}
