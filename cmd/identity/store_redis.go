package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by the Redis stores.
const DefaultRedisPrefix = "tasktrack:"

// createUserLua inserts a user hash plus its two unique index keys, or returns
// the name of the field that already exists. Running as one script makes the
// uniqueness check and the insert atomic.
const createUserLua = `
if redis.call("EXISTS", KEYS[2]) == 1 then
  return "username"
end
if redis.call("EXISTS", KEYS[3]) == 1 then
  return "email"
end
if redis.call("EXISTS", KEYS[1]) == 1 then
  return "id"
end
redis.call("HSET", KEYS[1],
  "id", ARGV[1],
  "username", ARGV[2],
  "email", ARGV[3],
  "created_at", ARGV[4],
  "password_hash", ARGV[5])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[1])
return "ok"
`

// RedisStore implements user persistence over Redis.
//
// Layout:
//   - <prefix>user:<id>                hash (id, username, email, created_at, password_hash)
//   - <prefix>user:username:<username> string -> id
//   - <prefix>user:email:<email>       string -> id
//
// The client is owned by the caller; this store must NOT close it.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	create *redis.Script
}

// NewRedisStore constructs a RedisStore. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(rdb *redis.Client, prefix string) (*RedisStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("identity: nil redis client")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
		create: redis.NewScript(createUserLua),
	}, nil
}

func (s *RedisStore) userKey(id string) string     { return s.prefix + "user:" + id }
func (s *RedisStore) usernameKey(u string) string  { return s.prefix + "user:username:" + u }
func (s *RedisStore) emailKey(email string) string { return s.prefix + "user:email:" + email }

// CreateUser atomically checks uniqueness and inserts the user.
func (s *RedisStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.rdb == nil {
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
	now = now.UTC()

	res, err := s.create.Run(ctx, s.rdb,
		[]string{s.userKey(in.ID), s.usernameKey(in.Username), s.emailKey(in.Email)},
		in.ID, in.Username, in.Email, now.Format(time.RFC3339Nano), in.PasswordHash,
	).Text()
	if err != nil {
		return User{}, fmt.Errorf("%s: redis: %w", op, err)
	}
	switch res {
	case "ok":
	case "username", "email", "id":
		return User{}, ConflictError{Op: op, Field: res}
	default:
		return User{}, fmt.Errorf("%s: unexpected script result %q", op, res)
	}

	return User{ID: in.ID, Username: in.Username, Email: in.Email, CreatedAt: now}, nil
}

// GetUserByID returns the user with id.
func (s *RedisStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if s == nil || s.rdb == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	ua, err := s.load(ctx, op, strings.TrimSpace(id))
	if err != nil {
		return User{}, err
	}
	return ua.User, nil
}

// GetUserAuthByEmail returns the user and password hash for email.
func (s *RedisStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	if s == nil || s.rdb == nil {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	id, err := s.rdb.Get(ctx, s.emailKey(CleanEmail(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return UserAuth{}, userNotFound(op)
		}
		return UserAuth{}, fmt.Errorf("%s: redis: %w", op, err)
	}
	return s.load(ctx, op, id)
}

// Ping checks Redis reachability.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("identity: nil redis client")
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) load(ctx context.Context, op, id string) (UserAuth, error) {
	if id == "" {
		return UserAuth{}, userNotFound(op)
	}
	m, err := s.rdb.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return UserAuth{}, fmt.Errorf("%s: redis: %w", op, err)
	}
	if len(m) == 0 {
		return UserAuth{}, userNotFound(op)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
	if err != nil {
		return UserAuth{}, fmt.Errorf("%s: corrupt created_at for user %s: %w", op, id, err)
	}
	return UserAuth{
		User: User{
			ID:        m["id"],
			Username:  m["username"],
			Email:     m["email"],
			CreatedAt: createdAt.UTC(),
		},
		PasswordHash: m["password_hash"],
	}, nil
}
