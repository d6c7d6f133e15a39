package game

import (
	"errors"
	"sync"
	"time"

	"github.com/iamasit07/connect4-bot/internal/domain"
)

// State is where a session sits in its lifecycle. Every state except
// StateAwaitingMove is terminal.
type State string

const (
	StateAwaitingMove State = "awaiting_move"
	StateWon          State = "won"
	StateDrawn        State = "drawn"
	StateAbandoned    State = "abandoned"
)

const (
	EndReasonLine      = "line_complete"
	EndReasonDraw      = "draw"
	EndReasonAbandoned = "abandoned"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrPlayerBusy      = errors.New("player is already in a game")
	ErrSelfChallenge   = errors.New("cannot play against yourself")
)

// Player is the transport's identity for a participant. The session layer
// only compares IDs.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is one live game. Players[0] holds marker 1 (the challenger) and
// Players[1] marker 2 (the challenged player, who moves first).
type Session struct {
	ID         string
	Game       domain.Game
	Players    [2]Player
	Board      domain.Board
	Turn       domain.Marker
	State      State
	Winner     domain.Marker
	Reason     string
	MoveCount  int
	CreatedAt  time.Time
	LastMoveAt time.Time
	FinishedAt time.Time
	mu         sync.Mutex
}

func newSession(id string, g domain.Game, challenger, challenged Player, now time.Time) *Session {
	return &Session{
		ID:         id,
		Game:       g,
		Players:    [2]Player{challenger, challenged},
		Board:      g.NewBoard(),
		Turn:       domain.Player2,
		State:      StateAwaitingMove,
		Winner:     domain.NoWinner,
		CreatedAt:  now,
		LastMoveAt: now,
	}
}

// markerFor maps a player ID to its marker.
func (s *Session) markerFor(playerID string) (domain.Marker, bool) {
	switch playerID {
	case s.Players[0].ID:
		return domain.Player1, true
	case s.Players[1].ID:
		return domain.Player2, true
	}
	return domain.Empty, false
}

func (s *Session) finished() bool {
	return s.State != StateAwaitingMove
}

// Snapshot returns a copy of the session that is safe to read without
// holding the session lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:         s.ID,
		Game:       s.Game,
		GameName:   s.Game.Name(),
		Players:    s.Players,
		Board:      s.Board.Copy(),
		Turn:       s.Turn,
		State:      s.State,
		Winner:     s.Winner,
		Reason:     s.Reason,
		MoveCount:  s.MoveCount,
		CreatedAt:  s.CreatedAt,
		LastMoveAt: s.LastMoveAt,
		FinishedAt: s.FinishedAt,
	}
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID         string        `json:"id"`
	Game       domain.Game   `json:"-"`
	GameName   string        `json:"game"`
	Players    [2]Player     `json:"players"`
	Board      domain.Board  `json:"board"`
	Turn       domain.Marker `json:"turn"`
	State      State         `json:"state"`
	Winner     domain.Marker `json:"winner"`
	Reason     string        `json:"reason,omitempty"`
	MoveCount  int           `json:"move_count"`
	CreatedAt  time.Time     `json:"created_at"`
	LastMoveAt time.Time     `json:"last_move_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Player returns the participant holding marker m.
func (s Snapshot) Player(m domain.Marker) Player {
	if m == domain.Player1 {
		return s.Players[0]
	}
	return s.Players[1]
}

// CurrentPlayer is the participant whose move is awaited.
func (s Snapshot) CurrentPlayer() Player {
	return s.Player(s.Turn)
}

func (s Snapshot) Finished() bool {
	return s.State != StateAwaitingMove
}

// WinningPlayer returns the winner, if the game has one.
func (s Snapshot) WinningPlayer() (Player, bool) {
	if !s.Winner.Valid() {
		return Player{}, false
	}
	return s.Player(s.Winner), true
}

func (s Snapshot) Render(symbols domain.Symbols) string {
	return s.Game.Render(s.Board, symbols)
}

// Record converts a finished snapshot into its archived form.
func (s Snapshot) Record() domain.GameRecord {
	rec := domain.GameRecord{
		GameID:          s.ID,
		GameName:        s.GameName,
		Player1ID:       s.Players[0].ID,
		Player1Name:     s.Players[0].Name,
		Player2ID:       s.Players[1].ID,
		Player2Name:     s.Players[1].Name,
		Reason:          s.Reason,
		TotalMoves:      s.MoveCount,
		DurationSeconds: int(s.FinishedAt.Sub(s.CreatedAt).Seconds()),
		CreatedAt:       s.CreatedAt,
		FinishedAt:      s.FinishedAt,
		Board:           s.Board.Ints(),
	}
	if winner, ok := s.WinningPlayer(); ok {
		rec.WinnerID = winner.ID
		rec.WinnerName = winner.Name
	}
	return rec
}
