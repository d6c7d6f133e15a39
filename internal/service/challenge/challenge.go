package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/rs/zerolog"
)

var ErrChallengeNotFound = errors.New("challenge not found")

// Challenge is an invitation waiting for the challenged player's answer.
type Challenge struct {
	ID         string      `json:"id"`
	Game       string      `json:"game"`
	Challenger game.Player `json:"challenger"`
	Challenged game.Player `json:"challenged"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Involves reports whether userID is one of the two parties.
func (c Challenge) Involves(userID string) bool {
	return c.Challenger.ID == userID || c.Challenged.ID == userID
}

// Store keeps pending challenges until they are answered or expire.
type Store interface {
	Put(ctx context.Context, c Challenge, ttl time.Duration) error
	Get(ctx context.Context, id string) (Challenge, error)
	// Take removes and returns the challenge in one step. Of two concurrent
	// calls for the same id, at most one succeeds.
	Take(ctx context.Context, id string) (Challenge, error)
	Delete(ctx context.Context, id string) error
}

type Result string

const (
	ResultAccepted Result = "accepted"
	ResultDeclined Result = "declined"
	ResultIgnored  Result = "ignored"
)

type Service struct {
	store    Store
	registry *domain.Registry
	ttl      time.Duration
	clock    quartz.Clock
	logger   zerolog.Logger
}

func NewService(store Store, registry *domain.Registry, ttl time.Duration, clock quartz.Clock, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		registry: registry,
		ttl:      ttl,
		clock:    clock,
		logger:   logger.With().Str("component", "challenge").Logger(),
	}
}

// Issue records a new challenge under id.
func (s *Service) Issue(ctx context.Context, id, gameName string, challenger, challenged game.Player) (Challenge, error) {
	if challenger.ID == challenged.ID {
		return Challenge{}, game.ErrSelfChallenge
	}
	if _, err := s.registry.Lookup(gameName); err != nil {
		return Challenge{}, err
	}

	c := Challenge{
		ID:         id,
		Game:       gameName,
		Challenger: challenger,
		Challenged: challenged,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.store.Put(ctx, c, s.ttl); err != nil {
		return Challenge{}, fmt.Errorf("store challenge %s: %w", id, err)
	}

	s.logger.Info().
		Str("challenge", id).
		Str("game", gameName).
		Str("challenger", challenger.Name).
		Str("challenged", challenged.Name).
		Msg("challenge issued")
	return c, nil
}

// Respond applies userID's answer. Only the challenged player can accept;
// either party can decline. Answers from anyone else, and an accept from the
// challenger, are ignored and leave the challenge pending. When two answers
// race, only the one that takes the challenge out of the store counts; the
// other gets ErrChallengeNotFound.
func (s *Service) Respond(ctx context.Context, id, userID string, accept bool) (Result, Challenge, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return ResultIgnored, Challenge{}, err
	}

	if !c.Involves(userID) {
		return ResultIgnored, c, nil
	}
	if accept && userID != c.Challenged.ID {
		return ResultIgnored, c, nil
	}

	c, err = s.store.Take(ctx, id)
	if err != nil {
		if errors.Is(err, ErrChallengeNotFound) {
			return ResultIgnored, Challenge{}, err
		}
		return ResultIgnored, Challenge{}, fmt.Errorf("take challenge %s: %w", id, err)
	}

	result := ResultDeclined
	if accept {
		result = ResultAccepted
	}
	s.logger.Info().Str("challenge", id).Str("result", string(result)).Msg("challenge answered")
	return result, c, nil
}
