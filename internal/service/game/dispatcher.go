package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/rs/zerolog"
)

// Archiver stores finished games. Errors are logged, never surfaced to
// players.
type Archiver interface {
	SaveGame(ctx context.Context, record domain.GameRecord) error
}

const archiveTimeout = 10 * time.Second

// Event is an input for Dispatch.
type Event interface {
	sessionID() string
}

// StartEvent opens a session for an accepted challenge.
type StartEvent struct {
	SessionID  string
	Game       string
	Challenger Player
	Challenged Player
}

// MoveEvent is a player's chosen move, 0-based.
type MoveEvent struct {
	SessionID string
	PlayerID  string
	Move      int
}

// AbandonEvent ends the session in favour of the other player.
type AbandonEvent struct {
	SessionID string
	PlayerID  string
}

func (e StartEvent) sessionID() string   { return e.SessionID }
func (e MoveEvent) sessionID() string    { return e.SessionID }
func (e AbandonEvent) sessionID() string { return e.SessionID }

type OutcomeKind string

const (
	OutcomeStarted   OutcomeKind = "started"
	OutcomeMoved     OutcomeKind = "moved"
	OutcomeAbandoned OutcomeKind = "abandoned"
	// OutcomeIgnored is an input from someone who may not act right now.
	OutcomeIgnored OutcomeKind = "ignored"
	// OutcomeRejected is an input from the turn holder that cannot be applied.
	OutcomeRejected OutcomeKind = "rejected"
)

type Reason string

const (
	ReasonNone        Reason = ""
	ReasonNotYourTurn Reason = "not_your_turn"
	ReasonNotAPlayer  Reason = "not_a_player"
	ReasonIllegalMove Reason = "illegal_move"
	ReasonGameOver    Reason = "game_over"
)

// Outcome is the result of one dispatched event together with the session
// state after it.
type Outcome struct {
	Kind    OutcomeKind
	Reason  Reason
	Session Snapshot
}

// Accepted reports whether the event changed the session.
func (o Outcome) Accepted() bool {
	return o.Kind == OutcomeStarted || o.Kind == OutcomeMoved || o.Kind == OutcomeAbandoned
}

// Dispatcher drives sessions: every transport funnels its inputs through
// Dispatch. Finished sessions are archived and removed from the manager.
type Dispatcher struct {
	manager  *Manager
	archiver Archiver
	clock    quartz.Clock
	logger   zerolog.Logger
	pending  sync.WaitGroup
}

// NewDispatcher wires a dispatcher. archiver may be nil.
func NewDispatcher(manager *Manager, archiver Archiver, clock quartz.Clock, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		archiver: archiver,
		clock:    clock,
		logger:   logger.With().Str("component", "game").Logger(),
	}
}

func (d *Dispatcher) Manager() *Manager {
	return d.manager
}

// Dispatch applies one event. Expected refusals (wrong player, full column,
// finished game) come back as an Outcome; errors are reserved for unknown
// sessions and failed session creation.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	switch e := ev.(type) {
	case StartEvent:
		return d.start(e)
	case MoveEvent:
		return d.move(ctx, e)
	case AbandonEvent:
		return d.abandon(ctx, e)
	default:
		return Outcome{}, fmt.Errorf("unsupported event %T", ev)
	}
}

func (d *Dispatcher) start(e StartEvent) (Outcome, error) {
	session, err := d.manager.Create(e.SessionID, e.Game, e.Challenger, e.Challenged)
	if err != nil {
		return Outcome{}, fmt.Errorf("start session %s: %w", e.SessionID, err)
	}
	return Outcome{Kind: OutcomeStarted, Session: session.Snapshot()}, nil
}

func (d *Dispatcher) move(ctx context.Context, e MoveEvent) (Outcome, error) {
	session, exists := d.manager.Get(e.SessionID)
	if !exists {
		return Outcome{}, fmt.Errorf("%w: %s", ErrSessionNotFound, e.SessionID)
	}

	session.mu.Lock()

	if session.finished() {
		snap := session.snapshotLocked()
		session.mu.Unlock()
		return Outcome{Kind: OutcomeRejected, Reason: ReasonGameOver, Session: snap}, nil
	}

	marker, isPlayer := session.markerFor(e.PlayerID)
	if !isPlayer {
		snap := session.snapshotLocked()
		session.mu.Unlock()
		return Outcome{Kind: OutcomeIgnored, Reason: ReasonNotAPlayer, Session: snap}, nil
	}
	if marker != session.Turn {
		snap := session.snapshotLocked()
		session.mu.Unlock()
		return Outcome{Kind: OutcomeIgnored, Reason: ReasonNotYourTurn, Session: snap}, nil
	}

	if !session.Game.ApplyMove(session.Board, marker, e.Move) {
		snap := session.snapshotLocked()
		session.mu.Unlock()
		d.logger.Debug().Str("session", e.SessionID).Int("move", e.Move).Msg("illegal move")
		return Outcome{Kind: OutcomeRejected, Reason: ReasonIllegalMove, Session: snap}, nil
	}

	now := d.clock.Now()
	session.MoveCount++
	session.LastMoveAt = now

	if winner := session.Game.CheckWin(session.Board); winner != domain.NoWinner {
		session.State = StateWon
		session.Winner = winner
		session.Reason = EndReasonLine
		session.FinishedAt = now
	} else if session.Game.IsFull(session.Board) {
		session.State = StateDrawn
		session.Reason = EndReasonDraw
		session.FinishedAt = now
	} else {
		session.Turn = marker.Opponent()
	}

	snap := session.snapshotLocked()
	session.mu.Unlock()

	if snap.Finished() {
		d.finish(ctx, snap)
	}
	return Outcome{Kind: OutcomeMoved, Session: snap}, nil
}

func (d *Dispatcher) abandon(ctx context.Context, e AbandonEvent) (Outcome, error) {
	session, exists := d.manager.Get(e.SessionID)
	if !exists {
		return Outcome{}, fmt.Errorf("%w: %s", ErrSessionNotFound, e.SessionID)
	}

	session.mu.Lock()

	if session.finished() {
		snap := session.snapshotLocked()
		session.mu.Unlock()
		return Outcome{Kind: OutcomeRejected, Reason: ReasonGameOver, Session: snap}, nil
	}

	marker, isPlayer := session.markerFor(e.PlayerID)
	if !isPlayer {
		snap := session.snapshotLocked()
		session.mu.Unlock()
		return Outcome{Kind: OutcomeIgnored, Reason: ReasonNotAPlayer, Session: snap}, nil
	}

	session.State = StateAbandoned
	session.Winner = marker.Opponent()
	session.Reason = EndReasonAbandoned
	session.FinishedAt = d.clock.Now()

	snap := session.snapshotLocked()
	session.mu.Unlock()

	d.finish(ctx, snap)
	return Outcome{Kind: OutcomeAbandoned, Session: snap}, nil
}

// finish archives a terminal session in the background and drops it from the
// manager.
func (d *Dispatcher) finish(ctx context.Context, snap Snapshot) {
	event := d.logger.Info().
		Str("session", snap.ID).
		Str("game", snap.GameName).
		Str("state", string(snap.State)).
		Int("moves", snap.MoveCount)
	if winner, ok := snap.WinningPlayer(); ok {
		event = event.Str("winner", winner.Name)
	}
	event.Msg("game finished")

	if err := d.manager.Remove(snap.ID); err != nil {
		d.logger.Warn().Err(err).Str("session", snap.ID).Msg("remove finished session")
	}

	if d.archiver == nil {
		return
	}

	record := snap.Record()
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()

		if err := d.archiver.SaveGame(ctx, record); err != nil {
			d.logger.Error().Err(err).Str("session", record.GameID).Msg("archive game")
			return
		}
		d.logger.Debug().Str("session", record.GameID).Msg("game archived")
	}()
}

// Wait blocks until background archive writes have completed.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}
