package game

import (
	"context"
	"sync"
	"testing"

	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	alice = Player{ID: "u-alice", Name: "alice"}
	bob   = Player{ID: "u-bob", Name: "bob"}
	carol = Player{ID: "u-carol", Name: "carol"}
)

type fakeArchiver struct {
	mu      sync.Mutex
	records []domain.GameRecord
	err     error
}

func (f *fakeArchiver) SaveGame(_ context.Context, rec domain.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeArchiver) saved() []domain.GameRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.GameRecord(nil), f.records...)
}

type harness struct {
	clock    *quartz.Mock
	archiver *fakeArchiver
	manager  *Manager
	disp     *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := quartz.NewMock(t)
	archiver := &fakeArchiver{}
	manager := NewManager(domain.DefaultRegistry(), clock, zerolog.Nop())
	return &harness{
		clock:    clock,
		archiver: archiver,
		manager:  manager,
		disp:     NewDispatcher(manager, archiver, clock, zerolog.Nop()),
	}
}

// start opens a game where alice challenged bob.
func (h *harness) start(t *testing.T, id, gameName string) Outcome {
	t.Helper()
	out, err := h.disp.Dispatch(context.Background(), StartEvent{
		SessionID:  id,
		Game:       gameName,
		Challenger: alice,
		Challenged: bob,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, out.Kind)
	return out
}

func (h *harness) move(t *testing.T, id string, p Player, move int) Outcome {
	t.Helper()
	out, err := h.disp.Dispatch(context.Background(), MoveEvent{SessionID: id, PlayerID: p.ID, Move: move})
	require.NoError(t, err)
	return out
}
