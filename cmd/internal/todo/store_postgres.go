package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktrack/cmd/internal/dbschema"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var taskColumns = []string{
	"id", "owner_id", "title", "description", "priority", "due_date", "completed", "created_at", "updated_at",
}

// PostgresStore persists tasks in PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
	sb     sq.StatementBuilderType
}

// StoreOption configures PostgresStore.
type StoreOption func(*PostgresStore) error

// WithSchema sets the DB schema used by the store (default dbschema.DefaultSchema).
func WithSchema(schema string) StoreOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if !dbschema.ValidIdent(schema) {
			return ErrInvalidInput
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...StoreOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: dbschema.DefaultSchema,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, ErrInvalidInput
	}
	return st, nil
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "tasks"}.Sanitize()
}

// Create inserts a new task row.
func (s *PostgresStore) Create(ctx context.Context, t Task) (Task, error) {
	const op = "todo.Create"

	if s == nil || s.pool == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	if err := checkRecord(op, t); err != nil {
		return Task{}, err
	}

	// Postgres keeps microseconds; truncate so the returned value matches what a read returns.
	t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Microsecond)
	t.UpdatedAt = t.UpdatedAt.UTC().Truncate(time.Microsecond)
	t.DueDate = truncPtr(t.DueDate)

	query, args, err := s.sb.Insert(s.table()).
		Columns(taskColumns...).
		Values(t.ID, t.OwnerID, t.Title, t.Description, string(t.Priority), t.DueDate, t.Completed, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		return Task{}, fmt.Errorf("%s: build query: %w", op, err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Get fetches a task by id regardless of owner.
func (s *PostgresStore) Get(ctx context.Context, id string) (Task, error) {
	const op = "todo.Get"

	if s == nil || s.pool == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	query, args, err := s.sb.Select(taskColumns...).
		From(s.table()).
		Where(sq.Eq{"id": strings.TrimSpace(id)}).
		ToSql()
	if err != nil {
		return Task{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	t, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, notFound(op)
		}
		return Task{}, err
	}
	return t, nil
}

// List returns ownerID's tasks matching f, newest first.
func (s *PostgresStore) List(ctx context.Context, ownerID string, f ListFilter) ([]Task, error) {
	const op = "todo.List"

	if s == nil || s.pool == nil {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	where := sq.Eq{"owner_id": ownerID}
	if f.Completed != nil {
		where["completed"] = *f.Completed
	}
	if f.Priority != nil {
		where["priority"] = string(*f.Priority)
	}

	query, args, err := s.sb.Select(taskColumns...).
		From(s.table()).
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the patched columns in a single statement conditioned on id
// and owner.
func (s *PostgresStore) Update(ctx context.Context, in UpdateRecord) (Task, error) {
	const op = "todo.Update"

	if s == nil || s.pool == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	ub := s.sb.Update(s.table()).
		SetMap(patchColumns(in.Patch)).
		Set("updated_at", now.UTC().Truncate(time.Microsecond)).
		Where(sq.Eq{"id": in.ID, "owner_id": in.OwnerID}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", "))

	query, args, err := ub.ToSql()
	if err != nil {
		return Task{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	t, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Task{}, err
	}
	return Task{}, s.missOrForbidden(ctx, op, in.ID)
}

// Delete removes the task when both id and owner match.
func (s *PostgresStore) Delete(ctx context.Context, id, ownerID string) error {
	const op = "todo.Delete"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	query, args, err := s.sb.Delete(s.table()).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.missOrForbidden(ctx, op, id)
}

// Ping checks database reachability.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return ErrInvalidInput
	}
	return s.pool.Ping(ctx)
}

// missOrForbidden distinguishes a missing row from an owner mismatch after a
// conditioned write matched nothing.
func (s *PostgresStore) missOrForbidden(ctx context.Context, op, id string) error {
	_, err := s.Get(ctx, id)
	switch {
	case err == nil:
		return forbidden(op)
	case IsNotFound(err):
		return notFound(op)
	default:
		return err
	}
}

func patchColumns(p Patch) map[string]any {
	cols := make(map[string]any)
	if p.Title.Set {
		cols["title"] = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			cols["description"] = nil
		} else {
			cols["description"] = p.Description.Value
		}
	}
	if p.Priority.Set {
		cols["priority"] = string(p.Priority.Value)
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			cols["due_date"] = nil
		} else {
			cols["due_date"] = p.DueDate.Value.UTC().Truncate(time.Microsecond)
		}
	}
	if p.Completed.Set {
		cols["completed"] = p.Completed.Value
	}
	return cols
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		t    Task
		prio string
	)
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&prio,
		&t.DueDate,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return Task{}, err
	}
	t.Priority = Priority(prio)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	t.DueDate = utcPtr(t.DueDate)
	return t, nil
}

func truncPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC().Truncate(time.Microsecond)
	return &u
}
