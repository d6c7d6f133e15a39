package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// boardFrom builds a board from rows of '.', 'X' (player 1) and 'O' (player 2).
func boardFrom(t *testing.T, rows ...string) Board {
	t.Helper()
	board := NewGrid(len(rows), len(rows[0]))
	for r, line := range rows {
		require.Len(t, line, len(rows[0]), "row %d", r)
		for c, ch := range line {
			switch ch {
			case 'X':
				board[r][c] = Player1
			case 'O':
				board[r][c] = Player2
			case '.':
			default:
				t.Fatalf("unexpected cell %q at %d,%d", ch, r, c)
			}
		}
	}
	return board
}

// requireGravity asserts that no column has an empty cell below a filled one.
func requireGravity(t *testing.T, board Board) {
	t.Helper()
	for c := 0; c < board.Cols(); c++ {
		filled := false
		for r := 0; r < board.Rows(); r++ {
			if board[r][c] != Empty {
				filled = true
			} else {
				require.False(t, filled, "gap below a piece in column %d at row %d", c, r)
			}
		}
	}
}
