package sessions

import (
	"context"
	"errors"
	"strings"
)

// Domain-level errors for sessions.
var (
	ErrNotImplemented = errors.New("sessions repository: not implemented")
	ErrNotFound       = errors.New("session not found")

	// ErrStoreUnavailable marks failures reaching the backing store, as
	// opposed to an operation the store rejected.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Session tracks the last action a user performed.
type Session struct {
	UserID     string
	LastAction string
}

// Repository abstracts persistence for sessions. Operations carry a context
// because the DynamoDB backend requires one.
type Repository interface {
	Update(ctx context.Context, userID, action string) (Session, error)
	Find(ctx context.Context, userID string) (Session, error)
}

// NullRepository stub implementation returning ErrNotImplemented.
type NullRepository struct{}

func (NullRepository) Update(context.Context, string, string) (Session, error) {
	return Session{}, ErrNotImplemented
}

func (NullRepository) Find(context.Context, string) (Session, error) {
	return Session{}, ErrNotImplemented
}

// Service exposes business operations over sessions.
type Service interface {
	Record(ctx context.Context, input RecordInput) (Session, error)
	Get(ctx context.Context, userID string) (Session, error)
}

// RecordInput defines data required to record a session action.
type RecordInput struct {
	UserID string
	Action string
}

// NewService builds a session service with the given repository.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type service struct {
	repo Repository
}

// Record upserts the last action for a user and returns the stored value.
func (s *service) Record(ctx context.Context, input RecordInput) (Session, error) {
	userID := strings.TrimSpace(input.UserID)
	action := strings.TrimSpace(input.Action)
	if userID == "" {
		return Session{}, errors.New("user id is required")
	}
	if action == "" {
		return Session{}, errors.New("action is required")
	}

	return s.repo.Update(ctx, userID, action)
}

// Get returns the session last recorded for a user.
func (s *service) Get(ctx context.Context, userID string) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, errors.New("user id is required")
	}
	return s.repo.Find(ctx, userID)
}
