package todo

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is a mutex-guarded Store for tests and single-process runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[string]Task)}
}

// Create inserts t. The id must be unused.
func (s *InMemoryStore) Create(ctx context.Context, t Task) (Task, error) {
	const op = "todo.Create"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	if err := checkRecord(op, t); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return Task{}, invalid(op, "duplicate id")
	}
	t = cloneTask(t)
	s.tasks[t.ID] = t
	return cloneTask(t), nil
}

// Get returns the task with id regardless of owner.
func (s *InMemoryStore) Get(ctx context.Context, id string) (Task, error) {
	const op = "todo.Get"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[strings.TrimSpace(id)]
	if !ok {
		return Task{}, notFound(op)
	}
	return cloneTask(t), nil
}

// List returns ownerID's tasks that match f, newest first.
func (s *InMemoryStore) List(ctx context.Context, ownerID string, f ListFilter) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID && f.match(t) {
			out = append(out, cloneTask(t))
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

// Update applies in.Patch when both id and owner match.
func (s *InMemoryStore) Update(ctx context.Context, in UpdateRecord) (Task, error) {
	const op = "todo.Update"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[in.ID]
	if !ok {
		return Task{}, notFound(op)
	}
	if t.OwnerID != in.OwnerID {
		return Task{}, forbidden(op)
	}
	t = in.Patch.apply(t, in.Now)
	s.tasks[t.ID] = t
	return cloneTask(t), nil
}

// Delete removes the task when both id and owner match.
func (s *InMemoryStore) Delete(ctx context.Context, id, ownerID string) error {
	const op = "todo.Delete"

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return notFound(op)
	}
	if t.OwnerID != ownerID {
		return forbidden(op)
	}
	delete(s.tasks, id)
	return nil
}

// Ping always succeeds unless ctx is done.
func (s *InMemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func checkRecord(op string, t Task) error {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.OwnerID) == "" {
		return invalid(op, "id and owner are required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return invalid(op, "title is required")
	}
	if _, ok := ParsePriority(string(t.Priority)); !ok {
		return invalid(op, "invalid priority")
	}
	return nil
}

// cloneTask copies pointer fields so callers cannot alias stored state.
func cloneTask(t Task) Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

func sortNewestFirst(ts []Task) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID > ts[j].ID
	})
}
