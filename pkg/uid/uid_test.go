package uid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameID(t *testing.T) {
	id := NewGameID()
	require.True(t, strings.HasPrefix(id, "game-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "game-"))
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewGameID())
}

func TestNewChallengeID(t *testing.T) {
	id := NewChallengeID()
	require.True(t, strings.HasPrefix(id, "ch-"))
	assert.NotEqual(t, id, NewChallengeID())
}
