package domain

// Connect4 is the 6x7 gravity game: a move is a column.
type Connect4 struct{}

func (Connect4) Name() string   { return "connect4" }
func (Connect4) Title() string  { return "Connect4" }
func (Connect4) MoveCount() int { return Columns }

func (Connect4) NewBoard() Board { return NewBoard() }

func (Connect4) ApplyMove(board Board, player Marker, move int) bool {
	return ApplyMove(board, player, move)
}

func (Connect4) CheckWin(board Board) Marker { return CheckWin(board) }

func (Connect4) IsFull(board Board) bool { return IsBoardFull(board) }

func (Connect4) Render(board Board, symbols Symbols) string {
	return Render(board, symbols)
}
