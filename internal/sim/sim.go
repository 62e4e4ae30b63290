// Package sim drives batches of independent games and reports what happened
// through injected sinks and an optional result store.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"the-game/internal/database"
	"the-game/internal/game"
	"the-game/internal/protocol"
	"the-game/internal/shared"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const progressEvery = 100

// Config describes a batch of games played with the same table settings.
type Config struct {
	Games              int               `json:"games"`
	Players            int               `json:"players"`
	HandSize           int               `json:"hand_size"`
	Strategy           string            `json:"strategy"`
	FirstMoveSelection string            `json:"first_move_selection"`
	Seed               *uint64           `json:"seed,omitempty"`
	Workers            int               `json:"workers"`
	MaxTurns           int               `json:"max_turns"` // 0 means no cap
	ValueRange         shared.ValueRange `json:"value_range"`
}

// Validate rejects configurations that would fail every game, so they are
// reported before anything runs.
func (c Config) Validate() error {
	if c.Games < 1 {
		return fmt.Errorf("%w: games must be positive, got %d", game.ErrInvalidConfig, c.Games)
	}
	if c.Workers < 0 || c.MaxTurns < 0 {
		return fmt.Errorf("%w: workers and max turns must not be negative", game.ErrInvalidConfig)
	}
	if _, err := shared.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	switch game.FirstMoveSelection(c.FirstMoveSelection) {
	case game.FirstPlayer, game.OptimizedFirstMove:
	default:
		return fmt.Errorf("%w: %q", game.ErrInvalidPolicy, c.FirstMoveSelection)
	}
	valueRange := c.valueRange()
	if !valueRange.Valid() {
		return fmt.Errorf("%w: value range %d..%d", game.ErrInvalidConfig, valueRange.Min, valueRange.Max)
	}
	if c.Players < 1 || c.HandSize < 1 || c.Players*c.HandSize > valueRange.Len() {
		return fmt.Errorf("%w: cannot deal %d cards to %d players from %d cards",
			game.ErrInvalidConfig, c.HandSize, c.Players, valueRange.Len())
	}
	return nil
}

func (c Config) valueRange() shared.ValueRange {
	if c.ValueRange == (shared.ValueRange{}) {
		return shared.DefaultValueRange
	}
	return c.ValueRange
}

func (c Config) parameters() protocol.GameParameters {
	return protocol.GameParameters{
		PlayerStyle:        c.Strategy,
		NPlayers:           c.Players,
		NCards:             c.HandSize,
		FirstMoveSelection: c.FirstMoveSelection,
		ValueRange:         c.valueRange(),
	}
}

// ResultStore persists game outcomes. *database.Service implements it.
type ResultStore interface {
	Insert(result database.GameResult) error
}

// Outcome is the result of one game.
type Outcome struct {
	GameID               string
	Won                  bool
	Reason               string
	CardsRemaining       int
	CardsInDeckRemaining int
	Turns                int
}

// Summary aggregates a run.
type Summary struct {
	RunID             string  `json:"run_id"`
	Games             int     `json:"games"`
	Won               int     `json:"won"`
	Lost              int     `json:"lost"`
	WinRate           float64 `json:"win_rate"`
	AvgCardsRemaining float64 `json:"avg_cards_remaining"`
}

// Runner plays one batch of games.
type Runner struct {
	RunID  string
	cfg    Config
	sink   EventSink
	store  ResultStore
	logger logrus.FieldLogger
}

// NewRunner validates cfg and prepares a run. sink and store may be nil.
func NewRunner(cfg Config, sink EventSink, store ResultStore, logger logrus.FieldLogger) (*Runner, error) {
	if cfg.Strategy == "" {
		cfg.Strategy = string(shared.Optimized)
	}
	if cfg.FirstMoveSelection == "" {
		cfg.FirstMoveSelection = string(game.OptimizedFirstMove)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := shared.ParseStrategy(cfg.Strategy)
	cfg.Strategy = string(strategy)
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if sink == nil {
		sink = discardSink{}
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	runID := uuid.NewString()
	return &Runner{
		RunID:  runID,
		cfg:    cfg,
		sink:   sink,
		store:  store,
		logger: logger.WithField("run_id", runID),
	}, nil
}

// Config returns the validated configuration of the run.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run plays every game, at most Workers at a time. Losses are outcomes, not
// errors; an error means the run itself failed or ctx was cancelled.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.publish(protocol.TypeRunStarted, protocol.RunStartedPayload{
		RunID:      r.RunID,
		Games:      r.cfg.Games,
		Parameters: r.cfg.parameters(),
	})
	r.logger.WithFields(logrus.Fields{
		"games":   r.cfg.Games,
		"workers": r.cfg.Workers,
		"style":   r.cfg.Strategy,
	}).Info("Simulation started")

	outcomes := make([]Outcome, 0, r.cfg.Games)
	var mu sync.Mutex
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := 0; i < r.cfg.Games; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, err := r.PlayGame(gctx, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			if n := completed.Add(1); n%progressEvery == 0 {
				r.logger.Infof("Completed %d of %d", n, r.cfg.Games)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := summarize(r.RunID, outcomes)
	r.publish(protocol.TypeRunFinished, protocol.RunFinishedPayload{
		RunID:             summary.RunID,
		Games:             summary.Games,
		Won:               summary.Won,
		Lost:              summary.Lost,
		WinRate:           summary.WinRate,
		AvgCardsRemaining: summary.AvgCardsRemaining,
	})
	entry := r.logger.WithFields(logrus.Fields{
		"games":    summary.Games,
		"won":      summary.Won,
		"win_rate": summary.WinRate,
	})
	if err != nil {
		entry.WithError(err).Error("Simulation stopped")
		return summary, err
	}
	entry.Info("Simulation finished")
	return summary, nil
}

func summarize(runID string, outcomes []Outcome) Summary {
	s := Summary{RunID: runID, Games: len(outcomes)}
	remaining := 0
	for _, o := range outcomes {
		if o.Won {
			s.Won++
		} else {
			s.Lost++
		}
		remaining += o.CardsRemaining
	}
	if s.Games > 0 {
		s.WinRate = float64(s.Won) / float64(s.Games)
		s.AvgCardsRemaining = float64(remaining) / float64(s.Games)
	}
	return s
}

func (r *Runner) seedFor(gameNumber int) *uint64 {
	if r.cfg.Seed == nil {
		return nil
	}
	seed := *r.cfg.Seed + uint64(gameNumber)
	return &seed
}

// PlayGame plays game number gameNumber of the run to completion.
func (r *Runner) PlayGame(ctx context.Context, gameNumber int) (Outcome, error) {
	strategy, err := shared.ParseStrategy(r.cfg.Strategy)
	if err != nil {
		return Outcome{}, err
	}
	g, err := game.NewGame(game.Config{
		PlayerCount:        r.cfg.Players,
		HandSize:           r.cfg.HandSize,
		Seed:               r.seedFor(gameNumber),
		ValueRange:         r.cfg.valueRange(),
		FirstMoveSelection: game.FirstMoveSelection(r.cfg.FirstMoveSelection),
		Strategies:         []shared.Strategy{strategy},
	})
	if err != nil {
		return Outcome{}, err
	}
	if err := g.Setup(); err != nil {
		return Outcome{}, err
	}

	first, _ := g.ActivePlayerID()
	r.publish(protocol.TypeStartGame, protocol.StartGamePayload{
		RunID:         r.RunID,
		GameID:        g.ID,
		GameNumber:    gameNumber,
		Parameters:    r.cfg.parameters(),
		StartingCards: handValues(g.Hands()),
		FirstPlayer:   first,
	})

	reason := protocol.ReasonWon
	for !g.IsWon() {
		if err := ctx.Err(); err != nil {
			r.publishGameOver(outcomeOf(g, protocol.ReasonCancelled))
			return Outcome{}, err
		}
		if r.cfg.MaxTurns > 0 && g.Turn() >= r.cfg.MaxTurns {
			reason = protocol.ReasonTurnLimit
			break
		}
		playerID, _ := g.ActivePlayerID()
		moves, err := g.MakeMove()
		if errors.Is(err, game.ErrNoLegalMove) {
			reason = protocol.ReasonNoLegalMove
			break
		}
		if err != nil {
			return Outcome{}, err
		}
		hand, _ := g.Hand(playerID)
		r.publish(protocol.TypeTurn, protocol.TurnPayload{
			RunID:    r.RunID,
			GameID:   g.ID,
			Turn:     g.Turn(),
			PlayerID: playerID,
			Moves:    protocol.NewMoveInfos(moves),
			Hand:     shared.Values(hand),
			DeckSize: g.DeckSize(),
			PileTops: pileTops(g.Piles),
		})
	}

	outcome := outcomeOf(g, reason)
	r.publishGameOver(outcome)

	if r.store != nil {
		if err := r.store.Insert(r.result(outcome)); err != nil {
			return outcome, fmt.Errorf("save result: %w", err)
		}
	}
	return outcome, nil
}

func outcomeOf(g *game.Game, reason string) Outcome {
	return Outcome{
		GameID:               g.ID,
		Won:                  g.IsWon(),
		Reason:               reason,
		CardsRemaining:       g.CardsRemaining(),
		CardsInDeckRemaining: g.DeckSize(),
		Turns:                g.Turn(),
	}
}

func (r *Runner) publishGameOver(o Outcome) {
	r.publish(protocol.TypeGameOver, protocol.GameOverPayload{
		RunID:                r.RunID,
		GameID:               o.GameID,
		GameWon:              o.Won,
		Reason:               o.Reason,
		CardsRemaining:       o.CardsRemaining,
		CardsInDeckRemaining: o.CardsInDeckRemaining,
		Turns:                o.Turns,
	})
}

func (r *Runner) result(o Outcome) database.GameResult {
	return database.GameResult{
		ID:                   o.GameID,
		RunID:                r.RunID,
		CreatedAt:            time.Now().UTC().Format(time.RFC3339Nano),
		PlayerStyle:          r.cfg.Strategy,
		FirstMoveSelection:   r.cfg.FirstMoveSelection,
		NPlayers:             r.cfg.Players,
		NCards:               r.cfg.HandSize,
		Won:                  o.Won,
		Reason:               o.Reason,
		CardsRemaining:       o.CardsRemaining,
		CardsInDeckRemaining: o.CardsInDeckRemaining,
		Turns:                o.Turns,
	}
}

func (r *Runner) publish(eventType string, payload interface{}) {
	r.sink.Publish(protocol.Event{Type: eventType, RunID: r.RunID, Payload: payload})
}

func handValues(hands map[int][]shared.Card) map[int][]int {
	values := make(map[int][]int, len(hands))
	for id, hand := range hands {
		values[id] = shared.Values(hand)
	}
	return values
}

func pileTops(piles shared.Piles) map[string]int {
	tops := make(map[string]int, len(piles))
	for id, top := range piles.Tops() {
		tops[id] = top.Value()
	}
	return tops
}
