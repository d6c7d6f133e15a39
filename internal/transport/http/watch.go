package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/service/game"
)

type WatchHandler struct {
	Sessions *game.Manager
}

func NewWatchHandler(sessions *game.Manager) *WatchHandler {
	return &WatchHandler{Sessions: sessions}
}

type liveGameResponse struct {
	GameID     string      `json:"game_id"`
	Game       string      `json:"game"`
	Player1    game.Player `json:"player1"`
	Player2    game.Player `json:"player2"`
	Turn       game.Player `json:"turn"`
	State      game.State  `json:"state"`
	MoveCount  int         `json:"move_count"`
	StartedAt  time.Time   `json:"started_at"`
	LastMoveAt time.Time   `json:"last_move_at"`
	Board      [][]int     `json:"board,omitempty"`
	Rendered   string      `json:"rendered,omitempty"`
}

func toLiveGame(s game.Snapshot) liveGameResponse {
	return liveGameResponse{
		GameID:     s.ID,
		Game:       s.GameName,
		Player1:    s.Players[0],
		Player2:    s.Players[1],
		Turn:       s.CurrentPlayer(),
		State:      s.State,
		MoveCount:  s.MoveCount,
		StartedAt:  s.CreatedAt,
		LastMoveAt: s.LastMoveAt,
	}
}

// GetLiveGames lists every game in progress, oldest first.
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	sessions := h.Sessions.List()

	response := make([]liveGameResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, toLiveGame(s))
	}
	c.JSON(http.StatusOK, response)
}

// GetLiveGame returns one game with its board.
func (h *WatchHandler) GetLiveGame(c *gin.Context) {
	session, exists := h.Sessions.Get(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	snap := session.Snapshot()
	response := toLiveGame(snap)
	response.Board = snap.Board.Ints()
	response.Rendered = snap.Render(domain.TextSymbols)
	c.JSON(http.StatusOK, response)
}
