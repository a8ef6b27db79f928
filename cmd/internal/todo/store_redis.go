package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "tasktrack:"

const createTaskLua = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return "exists"
end
redis.call("HSET", KEYS[1], "owner", ARGV[1], "doc", ARGV[2])
redis.call("ZADD", KEYS[2], ARGV[3], ARGV[4])
return "ok"
`

const deleteTaskLua = `
local owner = redis.call("HGET", KEYS[1], "owner")
if not owner then
  return "missing"
end
if owner ~= ARGV[1] then
  return "forbidden"
end
redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], ARGV[2])
return "ok"
`

// RedisStore persists tasks in Redis.
//
// Layout:
//   - <prefix>task:<id>           hash (owner, doc) where doc is the task as JSON
//   - <prefix>tasks:owner:<owner> sorted set of task ids scored by created_at (unix ms)
//
// The client is owned by the caller; this store must NOT close it.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	create *redis.Script
	remove *redis.Script
}

// NewRedisStore constructs a RedisStore. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(rdb *redis.Client, prefix string) (*RedisStore, error) {
	if rdb == nil {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
		create: redis.NewScript(createTaskLua),
		remove: redis.NewScript(deleteTaskLua),
	}, nil
}

func (s *RedisStore) taskKey(id string) string     { return s.prefix + "task:" + id }
func (s *RedisStore) ownerKey(owner string) string { return s.prefix + "tasks:owner:" + owner }

type redisTask struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func encodeTask(t Task) ([]byte, error) {
	return json.Marshal(redisTask{
		ID:          t.ID,
		Owner:       t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	})
}

func decodeTask(raw string) (Task, error) {
	var r redisTask
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Task{}, err
	}
	return Task{
		ID:          r.ID,
		OwnerID:     r.Owner,
		Title:       r.Title,
		Description: r.Description,
		Priority:    Priority(r.Priority),
		DueDate:     utcPtr(r.DueDate),
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

// Create stores t and indexes it under its owner in one script.
func (s *RedisStore) Create(ctx context.Context, t Task) (Task, error) {
	const op = "todo.Create"

	if s == nil || s.rdb == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	if err := checkRecord(op, t); err != nil {
		return Task{}, err
	}

	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	doc, err := encodeTask(t)
	if err != nil {
		return Task{}, fmt.Errorf("%s: encode: %w", op, err)
	}

	res, err := s.create.Run(ctx, s.rdb,
		[]string{s.taskKey(t.ID), s.ownerKey(t.OwnerID)},
		t.OwnerID, string(doc), t.CreatedAt.UnixMilli(), t.ID,
	).Text()
	if err != nil {
		return Task{}, fmt.Errorf("%s: redis: %w", op, err)
	}
	switch res {
	case "ok":
		return cloneTask(t), nil
	case "exists":
		return Task{}, invalid(op, "duplicate id")
	default:
		return Task{}, fmt.Errorf("%s: unexpected script result %q", op, res)
	}
}

// Get fetches a task by id regardless of owner.
func (s *RedisStore) Get(ctx context.Context, id string) (Task, error) {
	const op = "todo.Get"

	if s == nil || s.rdb == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	raw, err := s.rdb.HGet(ctx, s.taskKey(strings.TrimSpace(id)), "doc").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Task{}, notFound(op)
		}
		return Task{}, fmt.Errorf("%s: redis: %w", op, err)
	}
	t, err := decodeTask(raw)
	if err != nil {
		return Task{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	return t, nil
}

// List returns ownerID's tasks matching f, newest first.
func (s *RedisStore) List(ctx context.Context, ownerID string, f ListFilter) ([]Task, error) {
	const op = "todo.List"

	if s == nil || s.rdb == nil {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.rdb.ZRevRange(ctx, s.ownerKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: redis: %w", op, err)
	}
	out := make([]Task, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGet(ctx, s.taskKey(id), "doc")
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: redis: %w", op, err)
	}

	for _, cmd := range cmds {
		raw, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			// Index entry outlived its document; skip it.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: redis: %w", op, err)
		}
		t, err := decodeTask(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		if t.OwnerID == ownerID && f.match(t) {
			out = append(out, t)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Update applies the patch under WATCH. A concurrent write or delete
// between the read and the write fails the call with redis.TxFailedErr.
func (s *RedisStore) Update(ctx context.Context, in UpdateRecord) (Task, error) {
	const op = "todo.Update"

	if s == nil || s.rdb == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	key := s.taskKey(in.ID)

	var out Task
	txf := func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, "owner", "doc").Result()
		if err != nil {
			return err
		}
		owner, _ := vals[0].(string)
		raw, _ := vals[1].(string)
		if owner == "" || raw == "" {
			return notFound(op)
		}
		if owner != in.OwnerID {
			return forbidden(op)
		}
		cur, err := decodeTask(raw)
		if err != nil {
			return fmt.Errorf("%s: decode: %w", op, err)
		}
		next := in.Patch.apply(cur, now.UTC())
		doc, err := encodeTask(next)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "doc", string(doc))
			return nil
		})
		if err != nil {
			return err
		}
		out = next
		return nil
	}

	err := s.rdb.Watch(ctx, txf, key)
	if err == nil {
		return out, nil
	}
	var oe OpError
	if errors.As(err, &oe) {
		return Task{}, err
	}
	if errors.Is(err, redis.TxFailedErr) {
		return Task{}, fmt.Errorf("%s: concurrent write to %s: %w", op, in.ID, err)
	}
	return Task{}, fmt.Errorf("%s: redis: %w", op, err)
}

// Delete removes the task and its owner index entry when the owner matches.
func (s *RedisStore) Delete(ctx context.Context, id, ownerID string) error {
	const op = "todo.Delete"

	if s == nil || s.rdb == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.remove.Run(ctx, s.rdb,
		[]string{s.taskKey(id), s.ownerKey(ownerID)},
		ownerID, id,
	).Text()
	if err != nil {
		return fmt.Errorf("%s: redis: %w", op, err)
	}
	switch res {
	case "ok":
		return nil
	case "missing":
		return notFound(op)
	case "forbidden":
		return forbidden(op)
	default:
		return fmt.Errorf("%s: unexpected script result %q", op, res)
	}
}

// Ping checks Redis reachability.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return ErrInvalidInput
	}
	return s.rdb.Ping(ctx).Err()
}
