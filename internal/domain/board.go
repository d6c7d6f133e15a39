package domain

// Board is a row-major grid of markers. Row 0 is the top row.
type Board [][]Marker

// NewGrid allocates an empty rows x cols board.
func NewGrid(rows, cols int) Board {
	board := make(Board, rows)
	for i := range board {
		board[i] = make([]Marker, cols)
	}
	return board
}

// NewBoard returns a fresh, empty Connect Four board. Every call returns
// an independent copy.
func NewBoard() Board {
	return NewGrid(Rows, Columns)
}

func (b Board) Rows() int {
	return len(b)
}

func (b Board) Cols() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Copy creates a deep copy of the board.
func (b Board) Copy() Board {
	newBoard := make(Board, len(b))
	for i := range b {
		newBoard[i] = make([]Marker, len(b[i]))
		copy(newBoard[i], b[i])
	}
	return newBoard
}

// Ints converts the board to plain ints for storage and JSON.
func (b Board) Ints() [][]int {
	out := make([][]int, len(b))
	for i := range b {
		out[i] = make([]int, len(b[i]))
		for j := range b[i] {
			out[i][j] = int(b[i][j])
		}
	}
	return out
}

func (b Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.Rows() && col >= 0 && col < b.Cols()
}

// IsColumnFull reports whether the top cell of column is taken.
// Out-of-range columns count as full.
func IsColumnFull(board Board, column int) bool {
	if column < 0 || column >= board.Cols() {
		return true
	}
	return board[0][column] != Empty
}

// DropRow returns the row a piece dropped into column would land in,
// or -1 when the column is full or out of range.
func DropRow(board Board, column int) int {
	if IsColumnFull(board, column) {
		return -1
	}
	for row := board.Rows() - 1; row >= 0; row-- {
		if board[row][column] == Empty {
			return row
		}
	}
	return -1
}

// ApplyMove drops player's piece into column, landing in the lowest empty
// row. A full column, an out-of-range column or an invalid marker leaves the
// board untouched and returns false. It does not check whose turn it is.
func ApplyMove(board Board, player Marker, column int) bool {
	if !player.Valid() {
		return false
	}
	row := DropRow(board, column)
	if row < 0 {
		return false
	}
	board[row][column] = player
	return true
}

// IsBoardFull reports whether no column accepts another piece.
func IsBoardFull(board Board) bool {
	for c := 0; c < board.Cols(); c++ {
		if board[0][c] == Empty {
			return false
		}
	}
	return true
}

// ValidMoves lists the columns that still accept a piece.
func ValidMoves(board Board) []int {
	validMoves := []int{}
	for col := 0; col < board.Cols(); col++ {
		if !IsColumnFull(board, col) {
			validMoves = append(validMoves, col)
		}
	}
	return validMoves
}
