package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-bot/internal/config"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/logging"
	"github.com/iamasit07/connect4-bot/internal/repository/redis"
	"github.com/iamasit07/connect4-bot/internal/repository/sqldb"
	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/iamasit07/connect4-bot/internal/service/cleanup"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/iamasit07/connect4-bot/internal/transport/discord"
	httptransport "github.com/iamasit07/connect4-bot/internal/transport/http"
	"github.com/iamasit07/connect4-bot/internal/transport/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	NoDiscord bool `help:"Run only the HTTP/WebSocket server"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Env)
	if err != nil {
		return err
	}
	if !c.NoDiscord {
		if err := cfg.RequireDiscord(); err != nil {
			return err
		}
	}
	if c.NoDiscord && !cfg.HTTPEnabled {
		return errors.New("nothing to run: Discord disabled and HTTP_ENABLED=false")
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := quartz.NewReal()
	registry := domain.DefaultRegistry()

	var archiver game.Archiver
	var history httptransport.HistoryStore
	if cfg.ArchiveEnabled() {
		db, err := sqldb.Open(cfg.ArchiveDriver, cfg.DatabaseURL, sqldb.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqldb.RunMigrations(ctx, db); err != nil {
			return err
		}
		repo := sqldb.NewGameRepo(db, cfg.ArchiveDriver)
		archiver, history = repo, repo
		logger.Info().Str("driver", cfg.ArchiveDriver).Msg("game archive enabled")
	}

	store, memStore := challengeStore(ctx, cfg, clock, logger)

	manager := game.NewManager(registry, clock, logger)
	dispatcher := game.NewDispatcher(manager, archiver, clock, logger)
	challenges := challenge.NewService(store, registry, cfg.ChallengeTTL, clock, logger)

	// only the in-memory store needs sweeping, Redis expires keys itself
	var challengeReaper cleanup.ChallengeReaper
	if memStore != nil {
		challengeReaper = memStore
	}
	worker := cleanup.NewWorker(manager, challengeReaper, cfg.CleanupInterval, cfg.SessionIdleTimeout, clock, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(ctx) })

	if cfg.HTTPEnabled {
		g.Go(func() error {
			return serveHTTP(ctx, cfg, manager, history, dispatcher, challenges, logger)
		})
	}

	if !c.NoDiscord {
		session, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("create discord session: %w", err)
		}
		bot := discord.NewBot(session, dispatcher, challenges, discord.Options{
			Prefix:                cfg.CommandPrefix,
			BotChannelName:        cfg.BotChannelName,
			ChallengesChannelName: cfg.ChallengesChannelName,
			CategoryName:          cfg.CategoryName,
			ChannelDeleteDelay:    cfg.ChannelDeleteDelay,
		}, clock, logger)
		g.Go(func() error { return discord.Serve(ctx, session, bot) })
	}

	err = g.Wait()
	dispatcher.Wait()
	logger.Info().Msg("shut down")
	return err
}

// challengeStore prefers Redis and falls back to memory when it is not
// configured or not reachable.
func challengeStore(ctx context.Context, cfg *config.Config, clock quartz.Clock, logger zerolog.Logger) (challenge.Store, *challenge.MemoryStore) {
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, logger)
		if err == nil {
			return redis.NewChallengeStore(client), nil
		}
		logger.Warn().Err(err).Msg("redis unavailable, keeping challenges in memory")
	}
	mem := challenge.NewMemoryStore(clock)
	return mem, mem
}

func serveHTTP(ctx context.Context, cfg *config.Config, manager *game.Manager, history httptransport.HistoryStore,
	dispatcher *game.Dispatcher, challenges *challenge.Service, logger zerolog.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	ws := websocket.NewHandler(websocket.NewConnectionManager(), dispatcher, challenges, logger)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:       manager,
		History:        history,
		WebSocket:      ws.HandleWebSocket,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

