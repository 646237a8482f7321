package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
)

// SessionRepository persists sessions in Postgres.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository constructs a postgres-backed session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Update(ctx context.Context, userID, action string) (sessions.Session, error) {
	const upsert = `
        INSERT INTO sessions (user_id, last_action, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id) DO UPDATE
           SET last_action = EXCLUDED.last_action,
               updated_at = now()
        RETURNING user_id, last_action
    `
	var s sessions.Session
	err := r.db.QueryRowContext(ctx, upsert, userID, action).Scan(&s.UserID, &s.LastAction)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("upsert session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Find(ctx context.Context, userID string) (sessions.Session, error) {
	const query = `
        SELECT user_id, last_action
          FROM sessions
         WHERE user_id = $1
    `
	var s sessions.Session
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &s.LastAction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrNotFound
		}
		return sessions.Session{}, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

// Health verifies the database connection is alive.
func (r *SessionRepository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

var _ sessions.Repository = (*SessionRepository)(nil)
