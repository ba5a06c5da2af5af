package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

type gameManager interface {
	Start(ctx context.Context, size int) (*entity.Session, []entity.Event, error)
	Restart(ctx context.Context, id string, size int) (*entity.Session, []entity.Event, error)
	HandleCellSelected(ctx context.Context, id string, cell int) (*entity.Session, []entity.Event, error)
	Terminate(ctx context.Context, id string) ([]entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
}

type sizeRequest struct {
	Size *int `json:"size"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type sessionResponse struct {
	Session    *entity.Session `json:"session"`
	StatusText string          `json:"status_text"`
	Events     []entity.Event  `json:"events,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger *slog.Logger
	games  gameManager
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Size == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "size is required"})
		return
	}

	session, events, err := that.games.Start(r.Context(), *req.Size)
	if err != nil {
		that.writeError(w, "createSession", err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(session, events))
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.games.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "getSession", err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(session, nil))
}

func (that *handlers) restartSession(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Size == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "size is required"})
		return
	}

	session, events, err := that.games.Restart(r.Context(), chi.URLParam(r, "id"), *req.Size)
	if err != nil {
		that.writeError(w, "restartSession", err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(session, events))
}

func (that *handlers) selectCell(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	session, events, err := that.games.HandleCellSelected(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, "selectCell", err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(session, events))
}

func (that *handlers) terminateSession(w http.ResponseWriter, r *http.Request) {
	if _, err := that.games.Terminate(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "terminateSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, status, errorResponse{Error: "Internal Server Error"})
		return
	}

	that.logger.Debug("request rejected", "method", method, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidSize), errors.Is(err, apperror.ErrCellOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidMove), errors.Is(err, apperror.ErrSessionActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newSessionResponse(session *entity.Session, events []entity.Event) sessionResponse {
	return sessionResponse{
		Session:    session,
		StatusText: session.StatusText(),
		Events:     events,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
