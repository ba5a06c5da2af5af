package terminal

import (
	"context"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

const winColor = "1"

type view struct {
	sessionID string
	size      int
	cells     []entity.Mark
	winning   map[int]struct{}
	status    string
}

// Renderer draws one session on a terminal from the events of the game manager.
type Renderer struct {
	out *termenv.Output

	mu   sync.Mutex
	view view
}

func NewRenderer(out *termenv.Output) *Renderer {
	return &Renderer{out: out}
}

// Follow points the renderer at a fresh size x size board of sessionID.
func (that *Renderer) Follow(sessionID string, size int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.view = view{
		sessionID: sessionID,
		size:      size,
		cells:     make([]entity.Mark, size*size),
		winning:   make(map[int]struct{}),
	}
}

// Render applies events of the followed session and redraws it. Other sessions are ignored.
func (that *Renderer) Render(_ context.Context, sessionID string, events []entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if sessionID != that.view.sessionID {
		return
	}

	for _, event := range events {
		that.apply(event)
	}

	that.draw()
}

func (that *Renderer) apply(event entity.Event) {
	switch event.Kind {
	case entity.EventMarkPlaced:
		if event.Cell != nil && *event.Cell < len(that.view.cells) {
			that.view.cells[*event.Cell] = event.Mark
		}
	case entity.EventWin:
		for _, cell := range event.Cells {
			that.view.winning[cell] = struct{}{}
		}
		that.view.status = event.Status
	case entity.EventTurnChanged, entity.EventDraw:
		that.view.status = event.Status
	case entity.EventCleared:
		that.view = view{sessionID: that.view.sessionID}
	}
}

func (that *Renderer) draw() {
	if that.view.size == 0 {
		return
	}

	var sb strings.Builder

	for row := 0; row < that.view.size; row++ {
		cells := make([]string, that.view.size)
		for col := range cells {
			idx := row*that.view.size + col
			cells[col] = that.cell(idx)
		}

		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}

	sb.WriteString(that.view.status)
	sb.WriteString("\n")

	_, _ = that.out.WriteString(sb.String())
}

func (that *Renderer) cell(idx int) string {
	text := "."
	if mark := that.view.cells[idx]; mark != entity.EmptyCell {
		text = string(mark)
	}

	if _, ok := that.view.winning[idx]; ok {
		return that.out.String(text).Foreground(that.out.Color(winColor)).Bold().String()
	}

	return text
}

// Message prints a line that is not part of the board.
func (that *Renderer) Message(text string) {
	_, _ = that.out.WriteString(text + "\n")
}

// Error prints text in the highlight color.
func (that *Renderer) Error(text string) {
	that.Message(that.out.String(text).Foreground(that.out.Color(winColor)).String())
}
