package users_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cinetrack/internal/database"
	"cinetrack/services/users"
)

type recordingNotifier struct {
	emails []string
	codes  []string
}

func (n *recordingNotifier) SendVerification(email, username, code string) {
	n.emails = append(n.emails, email)
	n.codes = append(n.codes, code)
}

func setupService(t *testing.T) (*users.Service, *recordingNotifier) {
	t.Helper()

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "catalog.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	notifier := &recordingNotifier{}
	return users.NewService(db.Users, notifier), notifier
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, notifier := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "viewer@example.com", "viewer", "long-enough-password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected created user to have id")
	}
	if user.Verified {
		t.Fatalf("expected new account to start unverified")
	}
	if len(notifier.emails) != 1 || notifier.emails[0] != "viewer@example.com" {
		t.Fatalf("expected one verification mail, got %v", notifier.emails)
	}

	authed, err := svc.Authenticate(ctx, "Viewer@Example.com", "long-enough-password")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected same account back")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "viewer@example.com", "viewer", "long-enough-password"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "viewer@example.com", "other", "another-password")
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	cases := []struct {
		name, email, username, password string
	}{
		{"bad email", "not-an-email", "viewer", "long-enough-password"},
		{"empty username", "viewer@example.com", "", "long-enough-password"},
		{"short password", "viewer@example.com", "viewer", "short"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.email, tc.username, tc.password); !errors.Is(err, users.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "viewer@example.com", "viewer", "long-enough-password"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "viewer@example.com", "wrong-password"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestVerifyFlow(t *testing.T) {
	svc, notifier := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "viewer@example.com", "viewer", "long-enough-password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Verify(ctx, user.ID, "wrong-code"); !errors.Is(err, users.ErrInvalidInput) {
		t.Fatalf("expected code mismatch, got %v", err)
	}

	if err := svc.Verify(ctx, user.ID, notifier.codes[0]); err != nil {
		t.Fatalf("verify: %v", err)
	}

	verified, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !verified.Verified {
		t.Fatalf("expected account to be verified")
	}

	// verifying twice is harmless
	if err := svc.Verify(ctx, user.ID, "anything"); err != nil {
		t.Fatalf("second verify: %v", err)
	}
}

func TestRegisterWorksWithoutNotifier(t *testing.T) {
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "catalog.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	svc := users.NewService(db.Users, nil)
	if _, err := svc.Register(context.Background(), "viewer@example.com", "viewer", "long-enough-password"); err != nil {
		t.Fatalf("register: %v", err)
	}
}
