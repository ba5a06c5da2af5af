package entity

import "fmt"

type EventKind string

const (
	EventMarkPlaced  EventKind = "mark_placed"
	EventTurnChanged EventKind = "turn_changed"
	EventWin         EventKind = "win"
	EventDraw        EventKind = "draw"
	EventCleared     EventKind = "cleared"
)

// Event is a render command for whatever draws the board.
type Event struct {
	Kind   EventKind `json:"kind"`
	Cell   *int      `json:"cell,omitempty"`
	Mark   Mark      `json:"mark,omitempty"`
	Cells  []int     `json:"cells,omitempty"`
	Status string    `json:"status,omitempty"`
}

func MarkPlaced(cell int, mark Mark) Event {
	return Event{Kind: EventMarkPlaced, Cell: &cell, Mark: mark}
}

func TurnChanged(mark Mark) Event {
	return Event{Kind: EventTurnChanged, Mark: mark, Status: turnText(mark)}
}

// Win carries the cells to highlight and the winner.
func Win(mark Mark, row []int) Event {
	cells := make([]int, len(row))
	copy(cells, row)

	return Event{Kind: EventWin, Mark: mark, Cells: cells, Status: wonText(mark)}
}

func Draw() Event {
	return Event{Kind: EventDraw, Status: drawText}
}

func Cleared() Event {
	return Event{Kind: EventCleared}
}

const drawText = "--- It's a Draw!!! ---"

func turnText(mark Mark) string {
	return fmt.Sprintf("--- Player %s's Turn ---", mark)
}

func wonText(mark Mark) string {
	return fmt.Sprintf("--- Player %s Won!!! ---", mark)
}
