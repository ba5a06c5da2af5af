package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
)

// Session is one N-in-a-row game from initialization to termination.
type Session struct {
	ID         string `json:"id"`
	Size       int    `json:"size"`
	Board      []Mark `json:"board"`
	Turn       Mark   `json:"turn"`
	Status     Status `json:"status"`
	Winner     Mark   `json:"winner"`
	WinningRow []int  `json:"winning_row,omitempty"`

	rows [][]int
}

func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		Turn:   PlayerX,
		Status: StatusUninitialized,
	}
}

// Initialize starts a game on a size x size board with X to move.
// An active game is never reset implicitly, it has to be terminated first.
func (that *Session) Initialize(size int) ([]Event, error) {
	if that.IsRunning() {
		return nil, apperror.ErrSessionActive
	}

	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", apperror.ErrInvalidSize, size, MinBoardSize, MaxBoardSize)
	}

	that.Size = size
	that.rows = GenerateWinnableRows(size)
	that.Board = make([]Mark, size*size)
	that.Turn = PlayerX
	that.Winner = EmptyCell
	that.WinningRow = nil
	that.Status = StatusOngoing

	return []Event{TurnChanged(that.Turn)}, nil
}

// ApplyMove puts the current player's mark on cell and evaluates the board.
// A rejected move leaves the session untouched.
func (that *Session) ApplyMove(cell int) ([]Event, error) {
	if err := that.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	if cell < 0 || cell >= len(that.Board) {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOutOfRange, cell)
	}

	if that.Board[cell] != EmptyCell {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = that.Turn

	events := []Event{MarkPlaced(cell, that.Turn)}

	return append(events, that.UpdateGameState()), nil
}

// Terminate drops the game whatever state it is in.
func (that *Session) Terminate() []Event {
	that.Size = 0
	that.rows = nil
	that.Board = nil
	that.Turn = PlayerX
	that.Winner = EmptyCell
	that.WinningRow = nil
	that.Status = StatusUninitialized

	return []Event{Cleared()}
}

// DetermineGameResult returns the winner and the first complete row in canonical
// order, PlayerTie for a full board, or EmptyCell while the game goes on.
func (that *Session) DetermineGameResult() (Mark, []int) {
	for _, row := range that.Rows() {
		if winner := rowOwner(that.Board, row); winner != EmptyCell {
			return winner, row
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that.Board {
		if cell == EmptyCell {
			return EmptyCell, nil
		}
	}

	return PlayerTie, nil
}

// UpdateGameState finishes the game or passes the turn, and returns the matching event.
func (that *Session) UpdateGameState() Event {
	switch winner, row := that.DetermineGameResult(); winner {
	// one player wins
	case PlayerX, PlayerO:
		that.Winner = winner
		that.WinningRow = append([]int(nil), row...)
		that.Status = StatusFinished

		return Win(winner, row)
	// tie
	case PlayerTie:
		that.Winner = PlayerTie
		that.Status = StatusFinished

		return Draw()
	// game continue
	default:
		that.Turn = that.Turn.Opponent()

		return TurnChanged(that.Turn)
	}
}

func (that *Session) ConfirmOngoingState() error {
	if that.IsRunning() {
		return nil
	}

	return fmt.Errorf("%w: status %s", apperror.ErrGameNotRunning, that.Status)
}

func (that *Session) IsRunning() bool {
	return that.Status == StatusOngoing
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Session) IsDraw() bool {
	return that.IsFinished() && that.Winner == PlayerTie
}

// Rows returns the winnable rows of the current board. Sessions decoded from
// storage regenerate them on first use.
func (that *Session) Rows() [][]int {
	if that.rows == nil && that.Size > 0 {
		that.rows = GenerateWinnableRows(that.Size)
	}
	return that.rows
}

// StatusText is the line shown to the players.
func (that *Session) StatusText() string {
	switch {
	case that.IsRunning():
		return turnText(that.Turn)
	case that.IsDraw():
		return drawText
	case that.IsFinished():
		return wonText(that.Winner)
	default:
		return ""
	}
}

// CountMarks returns how many cells each player holds.
func (that *Session) CountMarks() (int, int) {
	var x, o int
	for _, cell := range that.Board {
		switch cell {
		case PlayerX:
			x++
		case PlayerO:
			o++
		}
	}
	return x, o
}

// Clone returns a deep copy that shares nothing with the session.
func (that *Session) Clone() *Session {
	clone := *that
	clone.Board = append([]Mark(nil), that.Board...)
	clone.WinningRow = append([]int(nil), that.WinningRow...)
	clone.rows = nil

	return &clone
}

// UnmarshalJSON rejects boards that do not match the declared size or hold
// anything but X, O and empty cells.
func (that *Session) UnmarshalJSON(data []byte) error {
	type plain Session

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if len(decoded.Board) != decoded.Size*decoded.Size {
		return fmt.Errorf("session %s: board has %d cells for size %d", decoded.ID, len(decoded.Board), decoded.Size)
	}

	for idx, mark := range decoded.Board {
		switch mark {
		case EmptyCell, PlayerX, PlayerO:
		default:
			return fmt.Errorf("session %s: unknown mark %q in cell %d", decoded.ID, mark, idx)
		}
	}

	*that = Session(decoded)

	return nil
}

func rowOwner(board []Mark, row []int) Mark {
	first := board[row[0]]
	if first == EmptyCell {
		return EmptyCell
	}

	for _, idx := range row[1:] {
		if board[idx] != first {
			return EmptyCell
		}
	}

	return first
}
