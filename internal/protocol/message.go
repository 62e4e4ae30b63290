package protocol

import (
	"encoding/json"

	"the-game/internal/shared"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "start_game", "turn")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, allows flexible structures
}

// Event types published while simulations run.
const (
	TypeRunStarted  = "run_started"
	TypeStartGame   = "start_game"
	TypeTurn        = "turn"
	TypeGameOver    = "game_over"
	TypeRunFinished = "run_finished"
)

// Game over reasons.
const (
	ReasonWon         = "won"
	ReasonNoLegalMove = "no_legal_move"
	ReasonTurnLimit   = "turn_limit"
	ReasonCancelled   = "cancelled"
)

// Event is one observation of a running simulation, before serialization.
type Event struct {
	Type    string
	RunID   string
	Payload interface{}
}

// Message encodes the event as a wire message.
func (e Event) Message() ([]byte, error) {
	return NewMessage(e.Type, e.Payload)
}

// --- Client -> Server Payload Structs ---

// WatchPayload narrows a watcher's stream to one run. An empty RunID watches all runs.
type WatchPayload struct {
	RunID string `json:"run_id"`
}

// --- Server -> Client Payload Structs ---

type GameParameters struct {
	PlayerStyle        string            `json:"player_style"`
	NPlayers           int               `json:"n_players"`
	NCards             int               `json:"n_cards"`
	FirstMoveSelection string            `json:"first_move_selection"`
	ValueRange         shared.ValueRange `json:"value_range"`
}

type RunStartedPayload struct {
	RunID      string         `json:"run_id"`
	Games      int            `json:"games"`
	Parameters GameParameters `json:"game_parameters"`
}

type StartGamePayload struct {
	RunID         string         `json:"run_id"`
	GameID        string         `json:"game_id"`
	GameNumber    int            `json:"game_number"`
	Parameters    GameParameters `json:"game_parameters"`
	StartingCards map[int][]int  `json:"starting_cards"`
	FirstPlayer   int            `json:"first_player"`
}

type MoveInfo struct {
	Card      int    `json:"card"`
	Pile      string `json:"pile"`
	Top       int    `json:"top"`
	Increment int    `json:"increment"`
}

type TurnPayload struct {
	RunID    string         `json:"run_id"`
	GameID   string         `json:"game_id"`
	Turn     int            `json:"turn"`
	PlayerID int            `json:"player_id"`
	Moves    []MoveInfo     `json:"moves"`
	Hand     []int          `json:"hand"`
	DeckSize int            `json:"deck_size"`
	PileTops map[string]int `json:"pile_tops"`
}

type GameOverPayload struct {
	RunID                string `json:"run_id"`
	GameID               string `json:"game_id"`
	GameWon              bool   `json:"game_won"`
	Reason               string `json:"reason"`
	CardsRemaining       int    `json:"cards_remaining"`
	CardsInDeckRemaining int    `json:"cards_in_deck_remaining"`
	Turns                int    `json:"turns"`
}

type RunFinishedPayload struct {
	RunID             string  `json:"run_id"`
	Games             int     `json:"games"`
	Won               int     `json:"won"`
	Lost              int     `json:"lost"`
	WinRate           float64 `json:"win_rate"`
	AvgCardsRemaining float64 `json:"avg_cards_remaining"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMoveInfos converts applied moves for the wire.
func NewMoveInfos(moves []shared.Move) []MoveInfo {
	infos := make([]MoveInfo, len(moves))
	for i, m := range moves {
		infos[i] = MoveInfo{
			Card:      m.Card.Value(),
			Pile:      m.PileID,
			Top:       m.Top.Value(),
			Increment: m.Increment(),
		}
	}
	return infos
}

// Helper function to create a JSON message
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	// Handle nil payload specifically
	if payload == nil {
		msg := Message{
			Type:    msgType,
			Payload: nil,
		}
		return json.Marshal(msg)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
	return json.Marshal(msg)
}
