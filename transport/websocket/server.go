package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

const (
	actionNew     = "game:new"
	actionTurn    = "game:turn"
	actionState   = "game:state"
	actionRestart = "game:restart"
	actionLeave   = "game:leave"
	actionEvents  = "game:events"
	actionError   = "error"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	Start(ctx context.Context, size int) (*entity.Session, []entity.Event, error)
	Restart(ctx context.Context, id string, size int) (*entity.Session, []entity.Event, error)
	HandleCellSelected(ctx context.Context, id string, cell int) (*entity.Session, []entity.Event, error)
	Terminate(ctx context.Context, id string) ([]entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
}

type Server struct {
	logger   *slog.Logger
	games    gameManager
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, c *client, msg *Message) error

	// clients that joined a session, by session ID
	groupsMu sync.RWMutex
	groups   map[string]map[*client]struct{}
}

func New(logger *slog.Logger, games gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]func(context.Context, *client, *Message) error),
		groups:   make(map[string]map[*client]struct{}),
	}

	server.handlers[actionNew] = server.handleNewGame
	server.handlers[actionTurn] = server.handleGameTurn
	server.handlers[actionState] = server.handleGameState
	server.handlers[actionRestart] = server.handleRestart
	server.handlers[actionLeave] = server.handleGameLeave

	return server
}

// Handler returns the http handler serving the /ws endpoint.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)
	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Render queues the events of a session for every connection that joined it.
// It never waits on a connection, a client that falls behind is dropped.
func (that *Server) Render(_ context.Context, sessionID string, events []entity.Event) {
	log := that.logger.With("method", "Render", "sessionID", sessionID)

	for _, c := range that.members(sessionID) {
		if err := c.send(actionEvents, Payload{SessionID: sessionID, Events: events}); err != nil {
			log.Error("failed to send events", "error", err)
		}
	}
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	go c.writePump()

	defer c.close()
	defer that.handleDisconnect(c)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(req.Context(), c); err != nil {
		log.Info("connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, reqBody, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			_ = that.sendErrorResponse(c, actionError, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			_ = that.sendErrorResponse(c, message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) join(sessionID string, c *client) {
	that.groupsMu.Lock()
	defer that.groupsMu.Unlock()

	group, ok := that.groups[sessionID]
	if !ok {
		group = make(map[*client]struct{})
		that.groups[sessionID] = group
	}
	group[c] = struct{}{}
}

func (that *Server) dropSession(sessionID string) {
	that.groupsMu.Lock()
	defer that.groupsMu.Unlock()

	delete(that.groups, sessionID)
}

func (that *Server) members(sessionID string) []*client {
	that.groupsMu.RLock()
	defer that.groupsMu.RUnlock()

	out := make([]*client, 0, len(that.groups[sessionID]))
	for c := range that.groups[sessionID] {
		out = append(out, c)
	}
	return out
}

func (that *Server) handleDisconnect(c *client) {
	that.groupsMu.Lock()
	defer that.groupsMu.Unlock()

	for sessionID, group := range that.groups {
		delete(group, c)
		if len(group) == 0 {
			delete(that.groups, sessionID)
		}
	}
}
