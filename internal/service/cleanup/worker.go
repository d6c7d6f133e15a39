package cleanup

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// SessionReaper drops sessions idle for longer than the given duration.
type SessionReaper interface {
	CleanupStale(idle time.Duration) int
}

// ChallengeReaper drops expired challenges. Stores that expire entries on
// their own (Redis) do not need one.
type ChallengeReaper interface {
	Cleanup() int
}

type Worker struct {
	sessions    SessionReaper
	challenges  ChallengeReaper
	interval    time.Duration
	idleTimeout time.Duration
	clock       quartz.Clock
	logger      zerolog.Logger
}

// NewWorker builds the cleanup worker. challenges may be nil.
func NewWorker(sessions SessionReaper, challenges ChallengeReaper, interval, idleTimeout time.Duration, clock quartz.Clock, logger zerolog.Logger) *Worker {
	return &Worker{
		sessions:    sessions,
		challenges:  challenges,
		interval:    interval,
		idleTimeout: idleTimeout,
		clock:       clock,
		logger:      logger.With().Str("component", "cleanup").Logger(),
	}
}

// Run cleans up once immediately and then every interval until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("background worker started")
	w.runCleanup()

	waiter := w.clock.TickerFunc(ctx, w.interval, func() error {
		w.runCleanup()
		return nil
	}, "cleanup")

	err := waiter.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *Worker) runCleanup() {
	sessions := w.sessions.CleanupStale(w.idleTimeout)

	challenges := 0
	if w.challenges != nil {
		challenges = w.challenges.Cleanup()
	}

	if sessions > 0 || challenges > 0 {
		w.logger.Info().
			Int("sessions", sessions).
			Int("challenges", challenges).
			Msg("cleanup removed stale entries")
	} else {
		w.logger.Debug().Msg("cleanup found nothing to remove")
	}
}
