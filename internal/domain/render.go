package domain

import "strings"

// Symbols is the display token set used when rendering a board.
type Symbols struct {
	Empty   string
	Player1 string
	Player2 string
}

var (
	// DiscordSymbols are the emoji shortcodes used in chat messages.
	DiscordSymbols = Symbols{
		Empty:   ":white_medium_small_square:",
		Player1: ":small_blue_diamond:",
		Player2: ":small_orange_diamond:",
	}

	TextSymbols = Symbols{Empty: ".", Player1: "X", Player2: "O"}
)

func (s Symbols) For(m Marker) string {
	switch m {
	case Player1:
		return s.Player1
	case Player2:
		return s.Player2
	default:
		return s.Empty
	}
}

// Render draws the board one line per row, top row first. Every line,
// including the last, ends with a newline.
func Render(board Board, symbols Symbols) string {
	var sb strings.Builder
	for r := 0; r < board.Rows(); r++ {
		for c := 0; c < board.Cols(); c++ {
			sb.WriteString(symbols.For(board[r][c]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
