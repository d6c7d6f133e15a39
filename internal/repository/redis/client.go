package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect opens a client and pings it. On failure the client is closed and
// the error returned; callers fall back to the in-memory stores.
func Connect(ctx context.Context, addr, password string, db int, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	logger.Info().Str("component", "redis").Str("addr", addr).Msg("connected")
	return client, nil
}
