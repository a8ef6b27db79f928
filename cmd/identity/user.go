package identity

import (
	"context"
	"time"
)

// User is the public view of an account.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// UserAuth pairs a user with its stored password hash. It only travels
// between the store and credential checks.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput is a normalized insert payload. PasswordHash is already encoded.
type CreateUserInput struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Now          time.Time
}

// Store is the user persistence boundary.
//
// CreateUser must enforce username and email uniqueness atomically and report
// a violation as ConflictError. Lookups return NotFoundError for missing users.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)
}
