package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "challenge:"

// ChallengeStore keeps pending challenges as JSON values; Redis key expiry
// enforces the TTL.
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Put(ctx context.Context, c challenge.Challenge, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	return s.client.Set(ctx, challengeKeyPrefix+c.ID, data, ttl).Err()
}

func (s *ChallengeStore) Get(ctx context.Context, id string) (challenge.Challenge, error) {
	return s.read(id, s.client.Get(ctx, challengeKeyPrefix+id))
}

// Take uses GETDEL so two concurrent answers cannot both claim the challenge.
func (s *ChallengeStore) Take(ctx context.Context, id string) (challenge.Challenge, error) {
	return s.read(id, s.client.GetDel(ctx, challengeKeyPrefix+id))
}

func (s *ChallengeStore) read(id string, cmd *redis.StringCmd) (challenge.Challenge, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return challenge.Challenge{}, fmt.Errorf("%w: %s", challenge.ErrChallengeNotFound, id)
	}
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("get challenge %s: %w", id, err)
	}

	var c challenge.Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return challenge.Challenge{}, fmt.Errorf("unmarshal challenge %s: %w", id, err)
	}
	return c, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, challengeKeyPrefix+id).Err()
}
