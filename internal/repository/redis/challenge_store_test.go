package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeStoreRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := Connect(ctx, mr.Addr(), "", 0, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	store := NewChallengeStore(client)
	c := challenge.Challenge{
		ID:         "msg-1",
		Game:       "connect4",
		Challenger: game.Player{ID: "1", Name: "alice"},
		Challenged: game.Player{ID: "2", Name: "bob"},
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, c, time.Minute))

	got, err := store.Get(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, c.Challenged, got.Challenged)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, mr.Exists("challenge:msg-1"))

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "msg-1")
	assert.True(t, errors.Is(err, challenge.ErrChallengeNotFound))
}

func TestChallengeStoreDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := Connect(ctx, mr.Addr(), "", 0, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	store := NewChallengeStore(client)
	require.NoError(t, store.Put(ctx, challenge.Challenge{ID: "x"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "x"))

	_, err = store.Get(ctx, "x")
	assert.True(t, errors.Is(err, challenge.ErrChallengeNotFound))
}

func TestChallengeStoreTakeIsOneShot(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := Connect(ctx, mr.Addr(), "", 0, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	store := NewChallengeStore(client)
	c := challenge.Challenge{ID: "msg-2", Game: "tictactoe", Challenger: game.Player{ID: "1"}, Challenged: game.Player{ID: "2"}}
	require.NoError(t, store.Put(ctx, c, time.Minute))

	got, err := store.Take(ctx, "msg-2")
	require.NoError(t, err)
	assert.Equal(t, "tictactoe", got.Game)
	assert.False(t, mr.Exists("challenge:msg-2"))

	_, err = store.Take(ctx, "msg-2")
	assert.True(t, errors.Is(err, challenge.ErrChallengeNotFound))
}

func TestConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), addr, "", 0, zerolog.Nop())
	assert.Error(t, err)
}
