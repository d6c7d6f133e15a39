package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryStore reads archived games.
type HistoryStore interface {
	GetGame(ctx context.Context, gameID string) (*domain.GameRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.GameRecord, error)
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.GameRecord, error)
}

type HistoryHandler struct {
	Games  HistoryStore
	logger zerolog.Logger
}

// NewHistoryHandler wraps games, which may be nil when no archive is
// configured.
func NewHistoryHandler(games HistoryStore, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{Games: games, logger: logger}
}

type gameHistoryItem struct {
	ID              string    `json:"id"`
	Game            string    `json:"game"`
	Player1         string    `json:"player1"`
	Player2         string    `json:"player2"`
	Winner          string    `json:"winner,omitempty"`
	Opponent        string    `json:"opponent,omitempty"`
	Result          string    `json:"result,omitempty"` // win, loss or draw for ?player=
	EndReason       string    `json:"end_reason"`
	MovesCount      int       `json:"moves_count"`
	DurationSeconds int       `json:"duration_seconds"`
	FinishedAt      time.Time `json:"finished_at"`
}

func toHistoryItem(rec domain.GameRecord, playerID string) gameHistoryItem {
	item := gameHistoryItem{
		ID:              rec.GameID,
		Game:            rec.GameName,
		Player1:         rec.Player1Name,
		Player2:         rec.Player2Name,
		Winner:          rec.WinnerName,
		EndReason:       rec.Reason,
		MovesCount:      rec.TotalMoves,
		DurationSeconds: rec.DurationSeconds,
		FinishedAt:      rec.FinishedAt,
	}
	if playerID == "" {
		return item
	}

	if rec.Player1ID == playerID {
		item.Opponent = rec.Player2Name
	} else {
		item.Opponent = rec.Player1Name
	}
	switch rec.WinnerID {
	case "":
		item.Result = "draw"
	case playerID:
		item.Result = "win"
	default:
		item.Result = "loss"
	}
	return item
}

// GetHistory lists finished games, newest first, optionally for one player.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.Games == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game archive is not configured"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	playerID := c.Query("player")
	var (
		records []domain.GameRecord
		err     error
	)
	if playerID != "" {
		records, err = h.Games.ListByPlayer(c.Request.Context(), playerID, limit)
	} else {
		records, err = h.Games.ListRecent(c.Request.Context(), limit)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("fetch history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	history := make([]gameHistoryItem, 0, len(records))
	for _, rec := range records {
		history = append(history, toHistoryItem(rec, playerID))
	}
	c.JSON(http.StatusOK, history)
}

// GetGameDetails returns one archived game including its final board.
func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	if h.Games == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game archive is not configured"})
		return
	}

	rec, err := h.Games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error().Err(err).Str("game", c.Param("id")).Msg("fetch archived game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch game"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
