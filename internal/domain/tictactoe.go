package domain

const tttSize = 3

// TicTacToe is the 3x3 game. Moves 0-8 address cells row-major, with no
// gravity.
type TicTacToe struct{}

func (TicTacToe) Name() string   { return "tictactoe" }
func (TicTacToe) Title() string  { return "Tic-Tac-Toe" }
func (TicTacToe) MoveCount() int { return tttSize * tttSize }

func (TicTacToe) NewBoard() Board { return NewGrid(tttSize, tttSize) }

func (TicTacToe) ApplyMove(board Board, player Marker, move int) bool {
	if !player.Valid() || move < 0 || move >= tttSize*tttSize {
		return false
	}
	row, col := move/tttSize, move%tttSize
	if board[row][col] != Empty {
		return false
	}
	board[row][col] = player
	return true
}

func (TicTacToe) CheckWin(board Board) Marker { return findLine(board, tttSize) }

func (TicTacToe) IsFull(board Board) bool {
	for _, row := range board {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}
	return true
}

func (TicTacToe) Render(board Board, symbols Symbols) string {
	return Render(board, symbols)
}
