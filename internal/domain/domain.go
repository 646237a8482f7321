package domain

import (
	"context"

	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
	"github.com/jpcadena/aws-session-management/internal/events"
)

// Check is a named probe against an external dependency, reported by the
// health endpoint.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Container wires domain services together with the event publisher and the
// dependency checks of the configured backends.
type Container struct {
	Sessions sessions.Service
	Events   events.Publisher
	Checks   []Check
}

// Options configures the domain container.
type Options struct {
	SessionRepo sessions.Repository
	Publisher   events.Publisher
	Checks      []Check
}

// New constructs a domain container with provided dependencies.
func New(opts Options) Container {
	sessionRepo := opts.SessionRepo
	if sessionRepo == nil {
		sessionRepo = sessions.NullRepository{}
	}

	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NullPublisher{}
	}

	return Container{
		Sessions: sessions.NewService(sessionRepo),
		Events:   publisher,
		Checks:   opts.Checks,
	}
}
