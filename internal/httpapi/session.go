package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/jpcadena/aws-session-management/internal/config"
	"github.com/jpcadena/aws-session-management/internal/domain"
	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
	"github.com/jpcadena/aws-session-management/internal/events"
)

// SessionRequest mirrors the session creation payload.
type SessionRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

// Normalize trims surrounding whitespace.
func (s *SessionRequest) Normalize() {
	s.UserID = strings.TrimSpace(s.UserID)
	s.Action = strings.TrimSpace(s.Action)
}

// Validate ensures required fields are present.
func (s *SessionRequest) Validate() error {
	if s.UserID == "" {
		return errRequiredField("user_id")
	}
	if s.Action == "" {
		return errRequiredField("action")
	}
	return nil
}

// SessionResponse is the stored session state returned to clients.
type SessionResponse struct {
	UserID     string `json:"user_id"`
	LastAction string `json:"last_action"`
}

// eventPublishTimeout bounds the fire-and-forget publish so a slow queue
// never holds up request handling.
const eventPublishTimeout = 5 * time.Second

func registerSessionRoutes(mux *http.ServeMux, logger *slog.Logger, services domain.Container) {
	mux.HandleFunc(config.APIPrefix+"/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleSessionRecord(w, r, logger, services)
	})

	mux.HandleFunc(config.APIPrefix+"/session/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		userID := strings.TrimPrefix(r.URL.Path, config.APIPrefix+"/session/")
		if userID == "" || strings.Contains(userID, "/") {
			respondError(w, http.StatusBadRequest, "missing or invalid user id")
			return
		}

		session, err := services.Sessions.Get(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, sessions.ErrNotImplemented):
				respondError(w, http.StatusNotImplemented, "get session not yet implemented")
			case errors.Is(err, sessions.ErrNotFound):
				respondError(w, http.StatusNotFound, "session not found")
			case errors.Is(err, sessions.ErrStoreUnavailable):
				logger.Error("session store unreachable", "err", err)
				respondError(w, http.StatusServiceUnavailable, "Failed to access the session store.")
			default:
				logger.Error("get session failed", "err", err)
				respondError(w, http.StatusInternalServerError, "Failed to read the session.")
			}
			return
		}

		respondJSON(w, http.StatusOK, SessionResponse{
			UserID:     session.UserID,
			LastAction: session.LastAction,
		})
	})
}

func handleSessionRecord(w http.ResponseWriter, r *http.Request, logger *slog.Logger, services domain.Container) {
	var payload SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	payload.Normalize()
	if err := payload.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := services.Sessions.Record(r.Context(), sessions.RecordInput{
		UserID: payload.UserID,
		Action: payload.Action,
	})
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrNotImplemented):
			respondError(w, http.StatusNotImplemented, "record session not yet implemented")
		case errors.Is(err, sessions.ErrStoreUnavailable):
			logger.Error("session store unreachable", "err", err)
			respondError(w, http.StatusServiceUnavailable, "Failed to access the session store.")
		default:
			logger.Error("record session failed", "err", err)
			respondError(w, http.StatusInternalServerError, "Failed to update the session.")
		}
		return
	}

	emitSessionEvent(logger, services.Events, session)

	respondJSON(w, http.StatusCreated, SessionResponse{
		UserID:     session.UserID,
		LastAction: session.LastAction,
	})
}

// emitSessionEvent publishes the recorded action in the background. Delivery
// is best effort: failures are logged, never surfaced to the client.
func emitSessionEvent(logger *slog.Logger, publisher events.Publisher, session sessions.Session) {
	event := events.SessionEvent{
		UserID:     session.UserID,
		Action:     session.LastAction,
		OccurredAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()

		if err := publisher.Publish(ctx, event); err != nil {
			logger.Error("session event publish failed", "user_id", event.UserID, "err", err)
		}
	}()
}

func errRequiredField(field string) error {
	return &validationError{field: field}
}

type validationError struct {
	field string
}

func (v *validationError) Error() string {
	return v.field + " is required"
}
