package challenge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
)

type memoryEntry struct {
	challenge Challenge
	expiresAt time.Time
}

// MemoryStore is the in-process Store. Entries expire by the injected clock.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   quartz.Clock
}

func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

func (m *MemoryStore) Put(_ context.Context, c Challenge, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[c.ID] = memoryEntry{challenge: c, expiresAt: m.clock.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Challenge, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok || !m.clock.Now().Before(entry.expiresAt) {
		return Challenge{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, id)
	}
	return entry.challenge, nil
}

func (m *MemoryStore) Take(_ context.Context, id string) (Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok || !m.clock.Now().Before(entry.expiresAt) {
		return Challenge{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, id)
	}
	delete(m.entries, id)
	return entry.challenge, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Cleanup drops expired entries and returns how many were removed.
func (m *MemoryStore) Cleanup() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, id)
			count++
		}
	}
	return count
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
