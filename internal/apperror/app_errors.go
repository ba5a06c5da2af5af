package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize     = errors.New("invalid board size")
	ErrSessionActive   = errors.New("session is already in progress")
	ErrSessionNotFound = errors.New("session not found")

	ErrInvalidMove    = errors.New("invalid move")
	ErrCellOccupied   = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrCellOutOfRange = fmt.Errorf("%w: cell index out of range", ErrInvalidMove)
	ErrGameNotRunning = fmt.Errorf("%w: game is not running", ErrInvalidMove)
)
