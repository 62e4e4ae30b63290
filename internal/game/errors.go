package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLegalMove means the active player could not play a single card.
	// The game is lost.
	ErrNoLegalMove = errors.New("no legal move")
	// ErrInvalidPolicy is returned by setup for an unknown first move selection.
	ErrInvalidPolicy = errors.New("invalid first move selection")
	// ErrInvalidConfig is returned by NewGame for impossible table sizes.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrNotEnoughCards means the deck cannot cover the opening deal.
	ErrNotEnoughCards = errors.New("not enough cards to deal")
	ErrAlreadyDealt   = errors.New("cards already dealt")
	ErrNotDealt       = errors.New("cards not dealt")
	ErrNotStarted     = errors.New("game not started")
	ErrGameOver       = errors.New("game is over")
	// ErrIllegalMove means a strategy proposed a move the piles reject.
	ErrIllegalMove = errors.New("illegal move")
)

// NoLegalMoveError carries the position in which the active player got stuck.
// It matches ErrNoLegalMove with errors.Is.
type NoLegalMoveError struct {
	PlayerID       int
	Quota          int
	CardsRemaining int
}

func (e *NoLegalMoveError) Error() string {
	return fmt.Sprintf("player %d: %s (quota %d, %d cards remaining)", e.PlayerID, ErrNoLegalMove, e.Quota, e.CardsRemaining)
}

func (e *NoLegalMoveError) Is(target error) bool {
	return target == ErrNoLegalMove
}
