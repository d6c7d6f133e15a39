package uid

import "github.com/google/uuid"

// NewGameID returns an identifier for a session that has no
// platform handle of its own (WebSocket and local games).
func NewGameID() string {
	return "game-" + uuid.NewString()
}

// NewChallengeID returns an identifier for a challenge issued outside Discord.
func NewChallengeID() string {
	return "ch-" + uuid.NewString()
}
