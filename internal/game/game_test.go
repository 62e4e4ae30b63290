package game

import (
	"errors"
	"math"
	"testing"

	"the-game/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openingDeck deals [10 75 94 35 21] to player 0 and [2 88 87 55 23] to player 1.
func openingDeck() *shared.Deck {
	return shared.NewDeckFromCards([]shared.Card{10, 2, 75, 88, 94, 87, 35, 55, 21, 23, 3, 4, 5, 6})
}

func newDealtGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	g, err := NewGame(cfg)
	require.NoError(t, err)
	require.NoError(t, g.DealCards())
	return g
}

func TestNewGame_Defaults(t *testing.T) {
	g, err := NewGame(Config{PlayerCount: 3, HandSize: 6})
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, Uninitialized, g.GameState)
	assert.Equal(t, FirstPlayer, g.FirstMoveSelection)
	assert.Equal(t, 98, g.DeckSize())
	require.Len(t, g.Players, 3)
	for i, p := range g.Players {
		assert.Equal(t, i, p.ID)
		assert.Equal(t, shared.Greedy, p.Strategy)
		assert.Empty(t, p.Hand)
	}
	_, ok := g.ActivePlayerID()
	assert.False(t, ok)
	assert.Equal(t, map[string]shared.Card{
		shared.PileP1Up:   1,
		shared.PileP2Up:   1,
		shared.PileP1Down: 100,
		shared.PileP2Down: 100,
	}, g.Piles.Tops())
}

func TestNewGame_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no players", Config{PlayerCount: 0, HandSize: 6}, ErrInvalidConfig},
		{"no cards", Config{PlayerCount: 2, HandSize: 0}, ErrInvalidConfig},
		{"bad range", Config{PlayerCount: 2, HandSize: 2, ValueRange: shared.ValueRange{Min: 10, Max: 5}}, ErrInvalidConfig},
		{"huge range", Config{PlayerCount: 2, HandSize: 2, ValueRange: shared.ValueRange{Min: 1, Max: math.MaxInt}}, ErrInvalidConfig},
		{"range over deck cap", Config{PlayerCount: 2, HandSize: 2, ValueRange: shared.ValueRange{Min: 2, Max: 1_000_000_000}}, ErrInvalidConfig},
		{"strategy count", Config{PlayerCount: 3, HandSize: 2, Strategies: []shared.Strategy{shared.Greedy, shared.Optimized}}, ErrInvalidConfig},
		{"unknown strategy", Config{PlayerCount: 1, HandSize: 2, Strategies: []shared.Strategy{"random"}}, shared.ErrInvalidStrategy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewGame_PerPlayerStrategies(t *testing.T) {
	strategies := []shared.Strategy{"Greedy", shared.Optimized}
	g, err := NewGame(Config{PlayerCount: 2, HandSize: 2, Strategies: strategies})
	require.NoError(t, err)

	assert.Equal(t, shared.Greedy, g.Players[0].Strategy)
	assert.Equal(t, shared.Optimized, g.Players[1].Strategy)
	assert.Equal(t, shared.Strategy("Greedy"), strategies[0], "caller's slice is left alone")
}

func TestDealCards_RoundRobin(t *testing.T) {
	g := newDealtGame(t, Config{PlayerCount: 2, HandSize: 5, Deck: openingDeck()})

	assert.Equal(t, []shared.Card{10, 75, 94, 35, 21}, g.Players[0].Hand)
	assert.Equal(t, []shared.Card{2, 88, 87, 55, 23}, g.Players[1].Hand)
	assert.Equal(t, 4, g.DeckSize())

	assert.ErrorIs(t, g.DealCards(), ErrAlreadyDealt)
}

func TestDealCards_NotEnoughCards(t *testing.T) {
	g, err := NewGame(Config{PlayerCount: 10, HandSize: 10})
	require.NoError(t, err)

	assert.ErrorIs(t, g.DealCards(), ErrNotEnoughCards)
	assert.Equal(t, 98, g.DeckSize(), "a failed deal draws nothing")
}

func TestSetup(t *testing.T) {
	seed := uint64(7)
	g, err := NewGame(Config{PlayerCount: 4, HandSize: 6, Seed: &seed})
	require.NoError(t, err)
	require.NoError(t, g.Setup())

	assert.Equal(t, InProgress, g.GameState)
	assert.Equal(t, 98-24, g.DeckSize())
	for _, p := range g.Players {
		assert.Len(t, p.Hand, 6)
	}
	active, ok := g.ActivePlayerID()
	require.True(t, ok)
	assert.Equal(t, 0, active)

	assert.ErrorIs(t, g.Setup(), ErrAlreadyDealt)
}

func TestResolveFirstPlayer_Errors(t *testing.T) {
	g, err := NewGame(Config{PlayerCount: 2, HandSize: 5, Deck: openingDeck()})
	require.NoError(t, err)
	assert.ErrorIs(t, g.ResolveFirstPlayer(), ErrNotDealt)

	g = newDealtGame(t, Config{PlayerCount: 2, HandSize: 5, Deck: openingDeck(), FirstMoveSelection: "random"})
	assert.ErrorIs(t, g.ResolveFirstPlayer(), ErrInvalidPolicy)
	assert.Equal(t, Uninitialized, g.GameState)
}

func TestSetup_InvalidPolicyLeavesDeckUntouched(t *testing.T) {
	g, err := NewGame(Config{PlayerCount: 3, HandSize: 6, FirstMoveSelection: "last_player"})
	require.NoError(t, err)
	before := g.Deck.Cards()

	assert.ErrorIs(t, g.Setup(), ErrInvalidPolicy)
	assert.Equal(t, before, g.Deck.Cards())
	for _, p := range g.Players {
		assert.Empty(t, p.Hand)
	}
	assert.Equal(t, Uninitialized, g.State())

	assert.ErrorIs(t, g.Setup(), ErrInvalidPolicy, "retrying reports the same problem")
}

func TestResolveFirstPlayer_Optimized(t *testing.T) {
	g := newDealtGame(t, Config{PlayerCount: 2, HandSize: 5, Deck: openingDeck(), FirstMoveSelection: OptimizedFirstMove})
	require.NoError(t, g.ResolveFirstPlayer())

	// Player 1 opens with 2 on an ascending pile for an increment of 1.
	active, ok := g.ActivePlayerID()
	require.True(t, ok)
	assert.Equal(t, 1, active)
}

func TestResolveFirstPlayer_OptimizedTieGoesToLowestID(t *testing.T) {
	deck := shared.NewDeckFromCards([]shared.Card{50, 3, 2, 60, 70})
	g := newDealtGame(t, Config{PlayerCount: 3, HandSize: 1, Deck: deck, FirstMoveSelection: OptimizedFirstMove})
	require.NoError(t, g.ResolveFirstPlayer())

	// 2 costs 1, 3 costs 2.
	active, _ := g.ActivePlayerID()
	assert.Equal(t, 2, active)

	// 2 going up and 99 going down both cost 1.
	deck = shared.NewDeckFromCards([]shared.Card{2, 99, 50})
	g = newDealtGame(t, Config{PlayerCount: 2, HandSize: 1, Deck: deck, FirstMoveSelection: OptimizedFirstMove})
	require.NoError(t, g.ResolveFirstPlayer())
	active, _ = g.ActivePlayerID()
	assert.Equal(t, 0, active)
}

func TestMakeMove_OpeningTurn(t *testing.T) {
	for _, s := range []shared.Strategy{shared.Greedy, shared.Optimized} {
		t.Run(string(s), func(t *testing.T) {
			g := newDealtGame(t, Config{
				PlayerCount: 2,
				HandSize:    5,
				Deck:        openingDeck(),
				Strategies:  []shared.Strategy{s},
			})
			require.NoError(t, g.ResolveFirstPlayer())
			require.Equal(t, 2, g.CardsToPlayThisTurn())

			moves, err := g.MakeMove()
			require.NoError(t, err)
			require.Len(t, moves, 2)
			assert.Equal(t, 15, shared.TotalIncrement(moves))

			up, _ := g.PileCards(shared.PileP1Up)
			down, _ := g.PileCards(shared.PileP1Down)
			assert.Equal(t, []shared.Card{1, 10}, up)
			assert.Equal(t, []shared.Card{100, 94}, down)

			hand, ok := g.Hand(0)
			require.True(t, ok)
			assert.Equal(t, []shared.Card{75, 35, 21, 3, 4}, hand)
			assert.Equal(t, 2, g.DeckSize())

			active, _ := g.ActivePlayerID()
			assert.Equal(t, 1, active)
			assert.Equal(t, 1, g.Turn())
			assert.Equal(t, InProgress, g.GameState)
		})
	}
}

func TestMakeMove_NoLegalMove(t *testing.T) {
	deck := shared.NewDeckFromCards([]shared.Card{50, 55, 43, 60})
	g := newDealtGame(t, Config{PlayerCount: 1, HandSize: 3, Deck: deck})
	g.Piles = shared.Piles{
		shared.NewPileFromCards(shared.PileP1Up, shared.Ascending, 1, 70),
		shared.NewPileFromCards(shared.PileP1Down, shared.Descending, 100, 20),
	}
	require.NoError(t, g.ResolveFirstPlayer())

	moves, err := g.MakeMove()
	assert.Empty(t, moves)
	require.ErrorIs(t, err, ErrNoLegalMove)

	var stuck *NoLegalMoveError
	require.True(t, errors.As(err, &stuck))
	assert.Equal(t, 0, stuck.PlayerID)
	assert.Equal(t, 2, stuck.Quota)
	assert.Equal(t, 4, stuck.CardsRemaining)

	assert.Equal(t, Lost, g.State())
	assert.True(t, g.IsOver())
	assert.False(t, g.IsWon())
	assert.Equal(t, 0, g.Turn())

	_, err = g.MakeMove()
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestMakeMove_Win(t *testing.T) {
	g := newDealtGame(t, Config{PlayerCount: 1, HandSize: 1, Deck: shared.NewDeckFromCards([]shared.Card{50})})
	require.NoError(t, g.ResolveFirstPlayer())
	assert.Equal(t, 1, g.CardsToPlayThisTurn())

	moves, err := g.MakeMove()
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, Won, g.GameState)
	assert.True(t, g.IsWon())
	assert.Equal(t, 0, g.CardsRemaining())
	assert.Equal(t, 1, g.Turn())

	_, err = g.MakeMove()
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestMakeMove_QuotaDropsWhenDeckRunsOut(t *testing.T) {
	deck := shared.NewDeckFromCards([]shared.Card{10, 11, 12, 13})
	g := newDealtGame(t, Config{PlayerCount: 1, HandSize: 3, Deck: deck})
	require.NoError(t, g.ResolveFirstPlayer())

	require.Equal(t, 2, g.CardsToPlayThisTurn())
	moves, err := g.MakeMove()
	require.NoError(t, err)
	require.Len(t, moves, 2)
	// Two cards played, only one left to draw.
	assert.Equal(t, 0, g.DeckSize())
	assert.Equal(t, []shared.Card{12, 13}, g.Players[0].Hand)

	assert.Equal(t, 1, g.CardsToPlayThisTurn())
	moves, err = g.MakeMove()
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, shared.Card(12), moves[0].Card)

	assert.Equal(t, 1, g.CardsToPlayThisTurn())
	_, err = g.MakeMove()
	require.NoError(t, err)
	assert.Equal(t, Won, g.State())
	assert.Equal(t, 3, g.Turn())
}

func TestMakeMove_NotStarted(t *testing.T) {
	g, err := NewGame(Config{PlayerCount: 2, HandSize: 2})
	require.NoError(t, err)
	_, err = g.MakeMove()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestMakeMove_SkipsEmptyHands(t *testing.T) {
	g := newDealtGame(t, Config{PlayerCount: 2, HandSize: 1, Deck: shared.NewDeckFromCards([]shared.Card{10, 20, 21})})
	g.Deck = shared.NewDeckFromCards(nil)
	g.Players[1].Hand = []shared.Card{20, 21}
	require.NoError(t, g.ResolveFirstPlayer())

	_, err := g.MakeMove()
	require.NoError(t, err)
	assert.Empty(t, g.Players[0].Hand)
	active, _ := g.ActivePlayerID()
	assert.Equal(t, 1, active)

	_, err = g.MakeMove()
	require.NoError(t, err)
	active, _ = g.ActivePlayerID()
	assert.Equal(t, 1, active, "player 0 has no cards left and is passed over")

	_, err = g.MakeMove()
	require.NoError(t, err)
	assert.Equal(t, Won, g.GameState)
	assert.Equal(t, 3, g.Turn())
}

func TestHands_Sorted(t *testing.T) {
	g := newDealtGame(t, Config{PlayerCount: 2, HandSize: 5, Deck: openingDeck()})
	assert.Equal(t, map[int][]shared.Card{
		0: {10, 21, 35, 75, 94},
		1: {2, 23, 55, 87, 88},
	}, g.Hands())

	_, ok := g.Hand(2)
	assert.False(t, ok)
	_, ok = g.PileCards("p9_up")
	assert.False(t, ok)
}

// playOut runs a seeded game to completion and checks the table after every turn.
func playOut(t *testing.T, seed uint64, strategy shared.Strategy, players, handSize int) *Game {
	t.Helper()
	g, err := NewGame(Config{
		PlayerCount:        players,
		HandSize:           handSize,
		Seed:               &seed,
		Strategies:         []shared.Strategy{strategy},
		FirstMoveSelection: OptimizedFirstMove,
	})
	require.NoError(t, err)
	require.NoError(t, g.Setup())

	total := shared.DefaultValueRange.Len()
	for !g.IsOver() {
		quota := g.CardsToPlayThisTurn()
		moves, err := g.MakeMove()
		if err != nil {
			require.ErrorIs(t, err, ErrNoLegalMove)
			break
		}
		require.NotEmpty(t, moves)
		require.LessOrEqual(t, len(moves), quota)
		require.LessOrEqual(t, g.Turn(), total, "every turn plays at least one card")

		played := 0
		for _, pile := range g.Piles {
			cards := pile.Cards()
			played += len(cards) - 1
			for i := 1; i < len(cards); i++ {
				require.True(t, shared.IsValid(cards[i], cards[i-1], pile.Direction),
					"pile %s: %d on %d", pile.ID, cards[i], cards[i-1])
			}
		}
		require.Equal(t, total, played+g.CardsRemaining(), "cards are conserved")
	}
	return g
}

func TestPlayOut_Terminates(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		for _, s := range []shared.Strategy{shared.Greedy, shared.Optimized} {
			g := playOut(t, seed, s, 3, 6)
			assert.True(t, g.IsOver())
			assert.Equal(t, g.GameState == Won, g.CardsRemaining() == 0)
		}
	}
}

func TestPlayOut_SeededGamesRepeat(t *testing.T) {
	a := playOut(t, 99, shared.Optimized, 2, 7)
	b := playOut(t, 99, shared.Optimized, 2, 7)

	assert.Equal(t, a.GameState, b.GameState)
	assert.Equal(t, a.Turn(), b.Turn())
	assert.Equal(t, a.Hands(), b.Hands())
	assert.Equal(t, a.Piles.Contents(), b.Piles.Contents())
}
