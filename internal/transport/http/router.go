package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/iamasit07/connect4-bot/internal/transport/http/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Sessions       *game.Manager
	History        HistoryStore // nil disables the archive endpoints
	WebSocket      http.HandlerFunc
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds the status API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger.With().Str("component", "http").Logger()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORSMiddleware(cfg.AllowedOrigins, logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "live_games": cfg.Sessions.Len()})
	})

	watch := NewWatchHandler(cfg.Sessions)
	history := NewHistoryHandler(cfg.History, logger)

	api := r.Group("/api")
	api.GET("/games", watch.GetLiveGames)
	api.GET("/games/:id", watch.GetLiveGame)
	api.GET("/history", history.GetHistory)
	api.GET("/history/:id", history.GetGameDetails)

	if cfg.WebSocket != nil {
		r.GET("/ws", gin.WrapF(cfg.WebSocket))
	}
	return r
}
