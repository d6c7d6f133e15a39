package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyBoard(t *testing.T) {
	out := Render(NewBoard(), DiscordSymbols)

	require.True(t, strings.HasSuffix(out, "\n"))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, Rows)
	for _, line := range lines {
		assert.Equal(t, strings.Repeat(DiscordSymbols.Empty, Columns), line)
	}
}

func TestRenderIsRowMajorTopFirst(t *testing.T) {
	board := NewBoard()
	ApplyMove(board, Player1, 0)
	ApplyMove(board, Player2, 0)
	ApplyMove(board, Player1, 6)

	out := Render(board, TextSymbols)
	assert.Equal(t, ".......\n"+
		".......\n"+
		".......\n"+
		".......\n"+
		"O......\n"+
		"X.....X\n", out)
}

func TestSymbolsFor(t *testing.T) {
	assert.Equal(t, ":small_blue_diamond:", DiscordSymbols.For(Player1))
	assert.Equal(t, ":small_orange_diamond:", DiscordSymbols.For(Player2))
	assert.Equal(t, ":white_medium_small_square:", DiscordSymbols.For(Empty))
}
