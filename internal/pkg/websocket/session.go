package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
)

// defaultQueueSize bounds the per-session outbound queue. A full queue
// means the peer is too slow; messages for it are dropped.
const defaultQueueSize = 32

// Session is one live connection for a driver or rider. Writes to the
// transport are serialized by a single writer goroutine so concurrent
// senders never block on a slow peer.
type Session struct {
	ID          string
	Role        string
	ConnectedAt time.Time

	conn      *websocket.Conn
	out       chan models.WSMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession wraps an upgraded connection and starts its writer.
func NewSession(id, role string, conn *websocket.Conn) *Session {
	s := &Session{
		ID:          id,
		Role:        role,
		ConnectedAt: time.Now(),
		conn:        conn,
		out:         make(chan models.WSMessage, defaultQueueSize),
		done:        make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *Session) writeLoop() {
	for {
		select {
		case msg := <-s.out:
			if err := s.conn.WriteJSON(msg); err != nil {
				logger.Warn("websocket write failed",
					logger.String("session_id", s.ID),
					logger.Err(err))
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Enqueue hands a message to the writer without blocking. It returns
// false when the session is closed or its queue is full.
func (s *Session) Enqueue(event string, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal outbound payload",
			logger.String("event", event),
			logger.Err(err))
		return false
	}

	msg := models.WSMessage{Event: event, Data: data}
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- msg:
		return true
	default:
		logger.Warn("outbound queue full, dropping message",
			logger.String("session_id", s.ID),
			logger.String("event", event))
		return false
	}
}

// Close terminates the writer and the underlying connection. Safe to
// call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
