package domain

import "time"

// GameRecord is a finished game as it is archived.
type GameRecord struct {
	GameID          string    `json:"game_id"`
	GameName        string    `json:"game"`
	Player1ID       string    `json:"player1_id"`
	Player1Name     string    `json:"player1_name"`
	Player2ID       string    `json:"player2_id"`
	Player2Name     string    `json:"player2_name"`
	WinnerID        string    `json:"winner_id,omitempty"` // empty for draws
	WinnerName      string    `json:"winner_name,omitempty"`
	Reason          string    `json:"reason"`
	TotalMoves      int       `json:"total_moves"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Board           [][]int   `json:"board"`
}
