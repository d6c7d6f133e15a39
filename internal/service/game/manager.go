package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/rs/zerolog"
)

// Manager is the session store: session ID → session, plus a player → session
// index so a player sits in at most one live game.
type Manager struct {
	sessions        map[string]*Session
	playerToSession map[string]string
	staleHooks      []func(Snapshot)
	mu              sync.RWMutex
	registry        *domain.Registry
	clock           quartz.Clock
	logger          zerolog.Logger
}

func NewManager(registry *domain.Registry, clock quartz.Clock, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions:        make(map[string]*Session),
		playerToSession: make(map[string]string),
		registry:        registry,
		clock:           clock,
		logger:          logger.With().Str("component", "session").Logger(),
	}
}

func (m *Manager) Registry() *domain.Registry {
	return m.registry
}

// Create inserts a new session for an accepted challenge.
func (m *Manager) Create(id, gameName string, challenger, challenged Player) (*Session, error) {
	if challenger.ID == challenged.ID {
		return nil, ErrSelfChallenge
	}
	g, err := m.registry.Lookup(gameName)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	for _, p := range []Player{challenger, challenged} {
		if other, busy := m.playerToSession[p.ID]; busy {
			return nil, fmt.Errorf("%w: %s is playing in %s", ErrPlayerBusy, p.Name, other)
		}
	}

	session := newSession(id, g, challenger, challenged, m.clock.Now())
	m.sessions[id] = session
	m.playerToSession[challenger.ID] = id
	m.playerToSession[challenged.ID] = id

	m.logger.Info().
		Str("session", id).
		Str("game", g.Name()).
		Str("challenger", challenger.Name).
		Str("challenged", challenged.Name).
		Msg("session created")
	return session, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	return session, exists
}

func (m *Manager) GetByPlayer(playerID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.playerToSession[playerID]
	if !exists {
		return nil, false
	}
	session, exists := m.sessions[id]
	return session, exists
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.removeLocked(id)
}

// removeLocked removes the session from both maps. Caller holds m.mu.
func (m *Manager) removeLocked(id string) error {
	session, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	for _, p := range session.Players {
		if m.playerToSession[p.ID] == id {
			delete(m.playerToSession, p.ID)
		}
	}
	delete(m.sessions, id)

	m.logger.Debug().Str("session", id).Msg("session removed")
	return nil
}

// List returns snapshots of all live sessions, oldest first.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snaps = append(snaps, s.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].ID < snaps[j].ID
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	return snaps
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// OnStale registers fn to be called with the final snapshot of every session
// CleanupStale removes. Hooks run after the manager lock is released.
func (m *Manager) OnStale(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleHooks = append(m.staleHooks, fn)
}

// CleanupStale drops sessions with no move for longer than idle and returns
// how many were removed.
func (m *Manager) CleanupStale(idle time.Duration) int {
	now := m.clock.Now()

	m.mu.Lock()
	var removed []Snapshot
	for id, session := range m.sessions {
		session.mu.Lock()
		stale := now.Sub(session.LastMoveAt) > idle
		snap := session.snapshotLocked()
		session.mu.Unlock()

		if stale {
			_ = m.removeLocked(id)
			removed = append(removed, snap)
		}
	}
	hooks := append([]func(Snapshot){}, m.staleHooks...)
	m.mu.Unlock()

	if len(removed) == 0 {
		return 0
	}
	m.logger.Info().Int("removed", len(removed)).Msg("removed stale sessions")
	for _, snap := range removed {
		for _, fn := range hooks {
			fn(snap)
		}
	}
	return len(removed)
}
