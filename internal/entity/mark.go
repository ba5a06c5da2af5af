package entity

// Mark is the symbol a player puts on a cell. EmptyCell marks a free cell.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

// Opponent returns the mark that moves after m.
func (m Mark) Opponent() Mark {
	if m == PlayerX {
		return PlayerO
	}
	return PlayerX
}

type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusOngoing       Status = "ongoing"
	StatusFinished      Status = "finished"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 10
)
