package websocket

import (
	"sync"

	"github.com/ridewave/dispatch/internal/pkg/logger"
)

// Registry maps user IDs to their current session. It is the single
// authority for reachability: the store's cached connection id may lag,
// the registry never does.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register installs a session for its ID, supplanting and closing any
// prior one. Reconnects therefore always win.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	old := r.sessions[s.ID]
	r.sessions[s.ID] = s
	r.mu.Unlock()

	if old != nil && old != s {
		old.Close()
	}
	logger.Debug("session registered",
		logger.String("session_id", s.ID),
		logger.String("role", s.Role))
}

// Unregister removes the session only if it is still the current one,
// so a stale disconnect cannot evict a fresh reconnect.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()
	current, ok := r.sessions[s.ID]
	if ok && current == s {
		delete(r.sessions, s.ID)
	}
	r.mu.Unlock()

	s.Close()
}

// Lookup returns the current session for an ID.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of connected sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Send delivers an event to the session registered for id. Delivery is
// best-effort: an absent session or a full outbound queue yields false.
func (r *Registry) Send(id string, event string, payload interface{}) bool {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	return s.Enqueue(event, payload)
}
