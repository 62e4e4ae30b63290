package database

// GameResult is the outcome of one simulated game.
type GameResult struct {
	ID                   string `json:"id"`
	RunID                string `json:"run_id"`
	CreatedAt            string `json:"created_at"`
	PlayerStyle          string `json:"player_style"`
	FirstMoveSelection   string `json:"first_move_selection"`
	NPlayers             int    `json:"n_players"`
	NCards               int    `json:"n_cards"`
	Won                  bool   `json:"won"`
	Reason               string `json:"reason"`
	CardsRemaining       int    `json:"cards_remaining"`
	CardsInDeckRemaining int    `json:"cards_in_deck_remaining"`
	Turns                int    `json:"turns"`
}

// StrategyStats aggregates results for one table configuration.
type StrategyStats struct {
	PlayerStyle        string  `json:"player_style"`
	FirstMoveSelection string  `json:"first_move_selection"`
	NPlayers           int     `json:"n_players"`
	Games              int     `json:"games"`
	Won                int     `json:"won"`
	WinRate            float64 `json:"win_rate"`
	AvgCardsRemaining  float64 `json:"avg_cards_remaining"`
}
