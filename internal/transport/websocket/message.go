package websocket

import "github.com/iamasit07/connect4-bot/internal/service/game"

// Client message types.
const (
	TypeInit             = "init"
	TypeChallenge        = "challenge"
	TypeRespondChallenge = "respond_challenge"
	TypeMakeMove         = "make_move"
	TypeAbandon          = "abandon"
)

// Server message types.
const (
	TypeReady             = "ready"
	TypeChallengeReceived = "challenge_received"
	TypeChallengeDeclined = "challenge_declined"
	TypeGameStart         = "game_start"
	TypeMoveMade          = "move_made"
	TypeGameOver          = "game_over"
	TypeError             = "error"
)

type ClientMessage struct {
	Type        string `json:"type"`
	PlayerID    string `json:"player_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Opponent    string `json:"opponent,omitempty"`
	Game        string `json:"game,omitempty"`
	ChallengeID string `json:"challenge_id,omitempty"`
	Accept      bool   `json:"accept,omitempty"`
	Column      int    `json:"column,omitempty"` // 1-based
}

type ServerMessage struct {
	Type        string       `json:"type"`
	Message     string       `json:"message,omitempty"`
	PlayerID    string       `json:"player_id,omitempty"`
	ChallengeID string       `json:"challenge_id,omitempty"`
	From        *game.Player `json:"from,omitempty"`
	Game        string       `json:"game,omitempty"`
	GameID      string       `json:"game_id,omitempty"`
	YourPlayer  int          `json:"your_player,omitempty"`
	Column      int          `json:"column,omitempty"`
	Board       [][]int      `json:"board,omitempty"`
	Rendered    string       `json:"rendered,omitempty"`
	NextPlayer  *game.Player `json:"next_player,omitempty"`
	Winner      *game.Player `json:"winner,omitempty"`
	State       game.State   `json:"state,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}
