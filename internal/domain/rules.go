package domain

// direction is a (row, col) step between consecutive cells of a line.
type direction struct {
	dRow, dCol int
}

// Scan order for CheckWin. Down-left lines are walked from their lower end,
// so the step is up-right.
var lineDirections = []direction{
	{1, 0},  // vertical, downward
	{0, 1},  // horizontal, rightward
	{1, 1},  // diagonal, down-right
	{-1, 1}, // diagonal, down-left
}

// CheckWin scans the whole board for four equal non-empty markers in a line
// and returns the owner, or NoWinner. Orientations are checked in the order
// vertical, horizontal, down-right, down-left; within each, start cells are
// visited row-major. A full board with no line also yields NoWinner: draws are
// not reported here.
func CheckWin(board Board) Marker {
	return findLine(board, ToWin)
}

func findLine(board Board, length int) Marker {
	for _, d := range lineDirections {
		for r := 0; r < board.Rows(); r++ {
			for c := 0; c < board.Cols(); c++ {
				if m := lineAt(board, r, c, d, length); m != Empty {
					return m
				}
			}
		}
	}
	return NoWinner
}

// lineAt returns the marker owning the length-cell line starting at (row,
// col) in direction d, or Empty when the line is broken or leaves the board.
func lineAt(board Board, row, col int, d direction, length int) Marker {
	endRow, endCol := row+d.dRow*(length-1), col+d.dCol*(length-1)
	if !board.inBounds(row, col) || !board.inBounds(endRow, endCol) {
		return Empty
	}
	first := board[row][col]
	if first == Empty {
		return Empty
	}
	for i := 1; i < length; i++ {
		if board[row+d.dRow*i][col+d.dCol*i] != first {
			return Empty
		}
	}
	return first
}

// CountDiskInDirection counts consecutive player cells walking away from
// (row, col), not counting the start cell.
func CountDiskInDirection(board Board, row, column, deltaRow, deltaCol int, player Marker) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for board.inBounds(r, c) && board[r][c] == player {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}

// CheckWinAt is the local variant of CheckWin: it only looks at lines through
// (row, column). For a board reached by legal play, calling it on the last
// placed cell agrees with CheckWin.
func CheckWinAt(board Board, row, column int) Marker {
	if !board.inBounds(row, column) {
		return NoWinner
	}
	player := board[row][column]
	if player == Empty {
		return NoWinner
	}
	for _, d := range lineDirections {
		count := 1 +
			CountDiskInDirection(board, row, column, d.dRow, d.dCol, player) +
			CountDiskInDirection(board, row, column, -d.dRow, -d.dCol, player)
		if count >= ToWin {
			return player
		}
	}
	return NoWinner
}
