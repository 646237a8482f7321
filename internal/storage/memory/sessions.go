package memory

import (
	"context"
	"sync"

	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
)

// SessionRepository implements sessions.Repository in-memory.
type SessionRepository struct {
	mu    sync.RWMutex
	store map[string]sessions.Session
}

// NewSessionRepository constructs repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{store: make(map[string]sessions.Session)}
}

func (r *SessionRepository) Update(_ context.Context, userID, action string) (sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := sessions.Session{UserID: userID, LastAction: action}
	r.store[userID] = session
	return session, nil
}

func (r *SessionRepository) Find(_ context.Context, userID string) (sessions.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.store[userID]
	if !ok {
		return sessions.Session{}, sessions.ErrNotFound
	}
	return session, nil
}

// Health reports the in-memory store as always reachable.
func (r *SessionRepository) Health(context.Context) error {
	return nil
}

var _ sessions.Repository = (*SessionRepository)(nil)
