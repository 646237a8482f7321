// Package events publishes session activity to a message queue so downstream
// consumers can react to user actions.
package events

import (
	"context"
	"time"
)

// SessionEvent is the message emitted after a session action is recorded.
type SessionEvent struct {
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers session events to a queue.
type Publisher interface {
	Publish(ctx context.Context, event SessionEvent) error
}

// NullPublisher discards events. Used when no queue is configured.
type NullPublisher struct{}

func (NullPublisher) Publish(context.Context, SessionEvent) error { return nil }

var _ Publisher = NullPublisher{}
