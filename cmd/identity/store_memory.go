package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemoryStore keeps users in process memory. It backs local runs and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	users      map[string]UserAuth // id -> user
	byUsername map[string]string   // username -> id
	byEmail    map[string]string   // email -> id
}

// NewInMemoryStore constructs an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:      make(map[string]UserAuth),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// CreateUser inserts a user, enforcing username and email uniqueness.
func (s *InMemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := checkCreateInput(op, in); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[in.Username]; ok {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	if _, ok := s.byEmail[in.Email]; ok {
		return User{}, ConflictError{Op: op, Field: "email"}
	}
	if _, ok := s.users[in.ID]; ok {
		return User{}, ConflictError{Op: op, Field: "id"}
	}

	u := User{ID: in.ID, Username: in.Username, Email: in.Email, CreatedAt: now}
	s.users[in.ID] = UserAuth{User: u, PasswordHash: in.PasswordHash}
	s.byUsername[in.Username] = in.ID
	s.byEmail[in.Email] = in.ID
	return u, nil
}

// GetUserByID returns the user with id.
func (s *InMemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if s == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ua, ok := s.users[strings.TrimSpace(id)]
	if !ok {
		return User{}, userNotFound(op)
	}
	return ua.User, nil
}

// GetUserAuthByEmail returns the user and password hash for email.
func (s *InMemoryStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	if s == nil {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[CleanEmail(email)]
	if !ok {
		return UserAuth{}, userNotFound(op)
	}
	return s.users[id], nil
}

// DeleteUser removes a user. Outstanding tokens for it stop resolving.
func (s *InMemoryStore) DeleteUser(ctx context.Context, id string) error {
	const op = "identity.DeleteUser"

	if s == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ua, ok := s.users[id]
	if !ok {
		return userNotFound(op)
	}
	delete(s.users, id)
	delete(s.byUsername, ua.User.Username)
	delete(s.byEmail, ua.User.Email)
	return nil
}

// Ping reports readiness (always ready).
func (s *InMemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func checkCreateInput(op string, in CreateUserInput) error {
	switch {
	case strings.TrimSpace(in.ID) == "":
		return invalid(op, "missing id")
	case strings.TrimSpace(in.Username) == "":
		return invalid(op, "missing username")
	case strings.TrimSpace(in.Email) == "":
		return invalid(op, "missing email")
	case strings.TrimSpace(in.PasswordHash) == "":
		return invalid(op, "missing password hash")
	}
	return nil
}
