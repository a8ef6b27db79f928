package app

import (
	"context"
	"errors"
	"fmt"

	"tasktrack/cmd/identity"
	"tasktrack/cmd/internal/todo"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// userStore is what the identity service needs plus a readiness probe.
type userStore interface {
	identity.Store
	Pinger
}

// backend bundles the user and task stores for one persistence choice and
// owns the underlying connections.
type backend struct {
	kind  StoreKind
	users userStore
	tasks todo.Store

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// openBackend opens the stores selected by cfg.Store.
func openBackend(ctx context.Context, cfg Config, log Logger) (*backend, error) {
	switch cfg.Store {
	case StorePostgres:
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
		if err != nil {
			pool.Close()
			return nil, err
		}
		tasks, err := todo.NewPostgresStore(pool, todo.WithSchema(cfg.DBSchema))
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("store.open", "kind", cfg.Store, "schema", cfg.DBSchema, "auto_migrate", cfg.AutoMigrate)
		return &backend{kind: cfg.Store, users: users, tasks: tasks, pool: pool}, nil

	case StoreRedis:
		rdb, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users, err := identity.NewRedisStore(rdb, cfg.RedisPrefix)
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		tasks, err := todo.NewRedisStore(rdb, cfg.RedisPrefix)
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		log.Info("store.open", "kind", cfg.Store, "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return &backend{kind: cfg.Store, users: users, tasks: tasks, rdb: rdb}, nil

	case StoreMemory:
		log.Warn("store.open", "kind", cfg.Store, "note", "data is lost on restart")
		return &backend{
			kind:  cfg.Store,
			users: identity.NewInMemoryStore(),
			tasks: todo.NewInMemoryStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Ping checks both stores.
func (b *backend) Ping(ctx context.Context) error {
	if b == nil {
		return errors.New("store not configured")
	}
	if err := b.users.Ping(ctx); err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if err := b.tasks.Ping(ctx); err != nil {
		return fmt.Errorf("tasks: %w", err)
	}
	return nil
}

// Close releases the connections. The stores never close what they are given.
func (b *backend) Close() error {
	if b == nil {
		return nil
	}
	var err error
	if b.pool != nil {
		b.pool.Close()
	}
	if b.rdb != nil {
		err = b.rdb.Close()
	}
	return err
}
