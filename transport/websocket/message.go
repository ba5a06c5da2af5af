package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

const writeWait = 10 * time.Second

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	SessionID  string          `json:"session_id,omitempty"`
	Size       *int            `json:"size,omitempty"`
	Cell       *int            `json:"cell,omitempty"`
	Session    *entity.Session `json:"session,omitempty"`
	StatusText string          `json:"status_text,omitempty"`
	Events     []entity.Event  `json:"events,omitempty"`
	Error      string          `json:"error,omitempty"`
}

const outboxSize = 64

var (
	errClientClosed = errors.New("client is closed")
	errSlowClient   = errors.New("client is not reading its messages")
)

// client is one websocket connection. Only writePump writes to conn, every
// other goroutine queues messages through send.
type client struct {
	conn   *websocket.Conn
	outbox chan Message

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		outbox: make(chan Message, outboxSize),
		done:   make(chan struct{}),
	}
}

// send queues a message without blocking. A client whose outbox is full is
// disconnected.
func (that *client) send(action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	select {
	case <-that.done:
		return errClientClosed
	default:
	}

	select {
	case that.outbox <- Message{Action: action, Payload: body}:
		return nil
	default:
		that.close()
		return errSlowClient
	}
}

// writePump - writes queued messages until the client is closed.
func (that *client) writePump() {
	for {
		select {
		case <-that.done:
			return
		case msg := <-that.outbox:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				that.close()
				return
			}

			if err := that.conn.WriteJSON(msg); err != nil {
				that.close()
				return
			}
		}
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

func sessionPayload(session *entity.Session, events []entity.Event) Payload {
	return Payload{
		SessionID:  session.ID,
		Session:    session,
		StatusText: session.StatusText(),
		Events:     events,
	}
}
