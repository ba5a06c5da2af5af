package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// Renderer is a UI collaborator: it draws marks, highlights winning cells and
// shows the status line of a session. Render runs while the session is locked
// and must not call back into the GameManager for that session.
type Renderer interface {
	Render(ctx context.Context, sessionID string, events []entity.Event)
}

// GameManager is the input boundary between the UI layers and the game sessions.
// Events for one session are applied one at a time.
type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	locks       *sessionLocks
	newID       func() string

	renderersMu sync.RWMutex
	renderers   []Renderer
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		sessionRepo: sessionRepo,
		locks:       newSessionLocks(),
		newID:       uuid.NewString,
	}
}

// Subscribe registers a renderer that receives the events of every session.
func (that *GameManager) Subscribe(renderer Renderer) {
	that.renderersMu.Lock()
	defer that.renderersMu.Unlock()

	that.renderers = append(that.renderers, renderer)
}

// Start creates a session and initializes a size x size game in it.
func (that *GameManager) Start(ctx context.Context, size int) (*entity.Session, []entity.Event, error) {
	session := entity.NewSession(that.newID())

	events, err := session.Initialize(size)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session started", "sessionID", session.ID, "size", size)
	that.render(ctx, session.ID, events)

	return session, events, nil
}

// Restart begins a new game in an existing session that is not in progress.
func (that *GameManager) Restart(ctx context.Context, id string, size int) (*entity.Session, []entity.Event, error) {
	unlock := that.locks.Lock(id)
	defer unlock()

	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	events, err := session.Initialize(size)
	if err != nil {
		return session, nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	if err = that.updateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	that.logger.Info("session restarted", "sessionID", id, "size", size)
	that.render(ctx, id, events)

	return session, events, nil
}

// HandleCellSelected applies the move of the player to act on cell. A rejected
// move returns the unchanged session together with the error.
func (that *GameManager) HandleCellSelected(ctx context.Context, id string, cell int) (*entity.Session, []entity.Event, error) {
	log := that.logger.With("method", "HandleCellSelected", "sessionID", id)

	unlock := that.locks.Lock(id)
	defer unlock()

	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	events, err := session.ApplyMove(cell)
	if err != nil {
		log.Debug("move rejected", "cell", cell, "error", err)
		return session, nil, fmt.Errorf("failed to apply move: %w", err)
	}

	if err = that.updateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	if session.IsFinished() {
		log.Info("game finished", "winner", session.Winner, "row", session.WinningRow)
	}

	that.render(ctx, id, events)

	return session, events, nil
}

// Terminate ends the session and forgets it. Unknown sessions are already terminated.
func (that *GameManager) Terminate(ctx context.Context, id string) ([]entity.Event, error) {
	unlock := that.locks.Lock(id)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	events := session.Terminate()

	if err = that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session terminated", "sessionID", id)
	that.render(ctx, id, events)

	return events, nil
}

func (that *GameManager) Get(ctx context.Context, id string) (*entity.Session, error) {
	return that.getSessionByID(ctx, id)
}

func (that *GameManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *GameManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *GameManager) render(ctx context.Context, id string, events []entity.Event) {
	that.renderersMu.RLock()
	renderers := append([]Renderer(nil), that.renderers...)
	that.renderersMu.RUnlock()

	for _, renderer := range renderers {
		renderer.Render(ctx, id, events)
	}
}
