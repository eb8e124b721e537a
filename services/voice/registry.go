package voice

import (
	"errors"
	"sync"
	"time"
)

// ErrCapacity means the registry has reached its live-session bound.
var ErrCapacity = errors.New("live session capacity reached")

// LiveSessionInfo is the admin-facing snapshot of one live session.
type LiveSessionInfo struct {
	SessionID     string    `json:"sessionId"`
	RoomName      string    `json:"roomName"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	State         string    `json:"state"`
	StartedAt     time.Time `json:"startedAt"`
	CostUSD       float64   `json:"costUsd"`
}

// Registry tracks live sessions and bounds their number. Sessions are removed
// only after they reach the closed state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	capacity int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{sessions: make(map[string]*Session), capacity: capacity}
}

// Add registers a session, rejecting when at capacity.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capacity > 0 && len(r.sessions) >= r.capacity {
		return ErrCapacity
	}
	r.sessions[s.ID] = s
	return nil
}

// Get returns a live session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove deregisters a session after its Run loop returns.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot lists the live sessions for admin reporting.
func (r *Registry) Snapshot() []LiveSessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LiveSessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, LiveSessionInfo{
			SessionID:     s.ID,
			RoomName:      s.RoomName,
			ContactNumber: s.ContactNumber(),
			State:         s.State(),
			StartedAt:     s.StartedAt,
			CostUSD:       s.Meter().Snapshot().TotalUSD,
		})
	}
	return out
}
