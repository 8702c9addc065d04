package enroll

import (
	"errors"
	"sync"
)

// ErrSessionActive reports that the user already has an enrollment in
// progress; the second invocation is rejected, not queued.
var ErrSessionActive = errors.New("enrollment already in progress")

// Registry tracks the one active session allowed per user. Add is an
// atomic insert-if-absent; Remove runs on every terminal transition.
type Registry struct {
	mu     sync.Mutex
	active map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*Session)}
}

func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[s.UserID]; ok {
		return ErrSessionActive
	}
	r.active[s.UserID] = s
	return nil
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, userID)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
