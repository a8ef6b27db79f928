package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasktrack/cmd/internal/ids"
)

// runStoreContract exercises the behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and lookup", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

		in := mustCreateInput(t, "alice", "alice@example.com", now)
		u, err := s.CreateUser(ctx, in)
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if u.ID != in.ID || u.Username != "alice" || u.Email != "alice@example.com" {
			t.Fatalf("unexpected user: %+v", u)
		}
		if !u.CreatedAt.Equal(now) {
			t.Fatalf("created_at=%v want %v", u.CreatedAt, now)
		}

		got, err := s.GetUserByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUserByID: %v", err)
		}
		if got.ID != u.ID || got.Username != u.Username || got.Email != u.Email || !got.CreatedAt.Equal(now) {
			t.Fatalf("GetUserByID mismatch: %+v vs %+v", got, u)
		}

		ua, err := s.GetUserAuthByEmail(ctx, "  alice@example.com ")
		if err != nil {
			t.Fatalf("GetUserAuthByEmail: %v", err)
		}
		if ua.User.ID != u.ID || ua.PasswordHash != in.PasswordHash {
			t.Fatalf("GetUserAuthByEmail mismatch: %+v", ua)
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.CreateUser(ctx, mustCreateInput(t, "bob", "bob@example.com", time.Time{})); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		_, err := s.CreateUser(ctx, mustCreateInput(t, "bob", "other@example.com", time.Time{}))
		assertConflict(t, err, "username")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.CreateUser(ctx, mustCreateInput(t, "carol", "carol@example.com", time.Time{})); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		_, err := s.CreateUser(ctx, mustCreateInput(t, "carol2", "carol@example.com", time.Time{}))
		assertConflict(t, err, "email")
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.CreateUser(ctx, mustCreateInput(t, "dave", "dave@example.com", time.Time{})); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if _, err := s.CreateUser(ctx, mustCreateInput(t, "Dave", "Dave@example.com", time.Time{})); err != nil {
			t.Fatalf("expected distinct-case user to be accepted, got %v", err)
		}
		if _, err := s.GetUserAuthByEmail(ctx, "DAVE@example.com"); !IsNotFound(err) {
			t.Fatalf("expected not found for different-case email, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		missing, err := ids.NewULID(time.Now())
		if err != nil {
			t.Fatalf("ulid: %v", err)
		}
		if _, err := s.GetUserByID(ctx, missing); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := s.GetUserAuthByEmail(ctx, "nobody@example.com"); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("rejects incomplete input", func(t *testing.T) {
		s := newStore(t)
		in := mustCreateInput(t, "erin", "erin@example.com", time.Time{})
		in.PasswordHash = ""
		if _, err := s.CreateUser(context.Background(), in); !IsInvalidInput(err) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := s.GetUserByID(ctx, "x"); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func mustCreateInput(t *testing.T, username, email string, now time.Time) CreateUserInput {
	t.Helper()
	id, err := ids.NewULID(time.Now())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	return CreateUserInput{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2U",
		Now:          now,
	}
}

func assertConflict(t *testing.T, err error, field string) {
	t.Helper()
	var ce ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.Field != field {
		t.Fatalf("conflict field=%q want %q", ce.Field, field)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected errors.Is(err, ErrConflict)")
	}
}
