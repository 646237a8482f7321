package sessions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
	memstore "github.com/jpcadena/aws-session-management/internal/storage/memory"
)

func TestServiceRecordAndGet(t *testing.T) {
	repo := memstore.NewSessionRepository()
	svc := sessions.NewService(repo)
	ctx := context.Background()

	session, err := svc.Record(ctx, sessions.RecordInput{
		UserID: "some_uuid",
		Action: "some_action",
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if session.UserID != "some_uuid" {
		t.Fatalf("expected user id to round-trip, got %q", session.UserID)
	}
	if session.LastAction != "some_action" {
		t.Fatalf("expected last action to be stored, got %q", session.LastAction)
	}

	got, err := svc.Get(ctx, "some_uuid")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.LastAction != "some_action" {
		t.Fatalf("expected stored action, got %q", got.LastAction)
	}
}

func TestServiceRecordOverwritesLastAction(t *testing.T) {
	repo := memstore.NewSessionRepository()
	svc := sessions.NewService(repo)
	ctx := context.Background()

	if _, err := svc.Record(ctx, sessions.RecordInput{UserID: "u1", Action: "login"}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	session, err := svc.Record(ctx, sessions.RecordInput{UserID: "u1", Action: "logout"})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if session.LastAction != "logout" {
		t.Fatalf("expected latest action, got %q", session.LastAction)
	}
}

func TestServiceRecordTrimsInput(t *testing.T) {
	repo := memstore.NewSessionRepository()
	svc := sessions.NewService(repo)

	session, err := svc.Record(context.Background(), sessions.RecordInput{
		UserID: "  u1  ",
		Action: "  login  ",
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if session.UserID != "u1" || session.LastAction != "login" {
		t.Fatalf("expected trimmed values, got %+v", session)
	}
}

func TestServiceRecordValidation(t *testing.T) {
	svc := sessions.NewService(memstore.NewSessionRepository())
	ctx := context.Background()

	if _, err := svc.Record(ctx, sessions.RecordInput{Action: "login"}); err == nil {
		t.Fatalf("expected error for missing user id")
	}
	if _, err := svc.Record(ctx, sessions.RecordInput{UserID: "u1"}); err == nil {
		t.Fatalf("expected error for missing action")
	}
}

func TestServiceGetUnknownUser(t *testing.T) {
	svc := sessions.NewService(memstore.NewSessionRepository())

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNullRepository(t *testing.T) {
	svc := sessions.NewService(sessions.NullRepository{})

	_, err := svc.Record(context.Background(), sessions.RecordInput{UserID: "u1", Action: "login"})
	if !errors.Is(err, sessions.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
