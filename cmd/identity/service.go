package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktrack/cmd/internal/ids"
	"tasktrack/cmd/security/password"
)

// dummyPassword is hashed once so unknown-email logins pay the same verify cost.
const dummyPassword = "dummy-password-for-timing-only"

// PasswordHasher is satisfied by password.Config.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(encoded, plain string) (bool, error)
}

// Service implements registration, credential checks and user lookups.
type Service struct {
	store     Store
	hasher    PasswordHasher
	dummyHash string
}

// NewService constructs a Service. It hashes a throwaway password up front
// so that Authenticate can verify against it for unknown emails.
func NewService(store Store, hasher PasswordHasher) (*Service, error) {
	if store == nil || hasher == nil {
		return nil, OpError{Op: "identity.NewService", Kind: ErrInvalidInput, Msg: "nil dependency"}
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	return &Service{store: store, hasher: hasher, dummyHash: dummy}, nil
}

// Register validates input, hashes the password and persists a new user.
// Duplicate username or email yields ConflictError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	const op = "identity.Register"

	if s == nil || s.store == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	in = in.cleaned()
	if err := validateRegister(op, in); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort):
			return User{}, invalid(op, "password is too short")
		case errors.Is(err, password.ErrPasswordTooLong):
			return User{}, invalid(op, "password is too long")
		case errors.Is(err, password.ErrWeakPassword):
			return User{}, invalid(op, "password is too weak")
		default:
			return User{}, err
		}
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, err
	}

	return s.store.CreateUser(ctx, CreateUserInput{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Now:          now,
	})
}

// Authenticate checks an email/password pair.
// Unknown email and wrong password both return ErrInvalidCredentials and do
// the same amount of hashing work.
func (s *Service) Authenticate(ctx context.Context, email, plain string) (User, error) {
	const op = "identity.Authenticate"

	if s == nil || s.store == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email = CleanEmail(email)
	if email == "" || plain == "" {
		_, _ = s.hasher.Verify(s.dummyHash, plain)
		return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}

	ua, err := s.store.GetUserAuthByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			_, _ = s.hasher.Verify(s.dummyHash, plain)
			return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
		}
		return User{}, err
	}

	ok, err := s.hasher.Verify(ua.PasswordHash, plain)
	if err != nil {
		return User{}, fmt.Errorf("%s: stored hash for user %s: %w", op, ua.User.ID, err)
	}
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}
	return ua.User, nil
}

// GetUser returns the user with id, or NotFoundError.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUser"

	if s == nil || s.store == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, userNotFound(op)
	}
	return s.store.GetUserByID(ctx, id)
}
