package domain

// Marker identifies which player occupies a cell.
type Marker int

const (
	Empty   Marker = 0
	Player1 Marker = 1
	Player2 Marker = 2
)

// NoWinner is what CheckWin reports when no line is complete.
const NoWinner = Empty

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// Valid reports whether m is one of the two player markers.
func (m Marker) Valid() bool {
	return m == Player1 || m == Player2
}

// Opponent returns the other player's marker.
func (m Marker) Opponent() Marker {
	if m == Player1 {
		return Player2
	}
	return Player1
}

// basic errors that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove Error = "invalid move"
	ErrColumnFull  Error = "column is full"
	ErrUnknownGame Error = "unknown game"
)
