package todo

import (
	"context"
	"strings"
	"time"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a client string to a Priority. Matching is case-insensitive.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	default:
		return "", false
	}
}

// Task is one item on a user's list.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Field is a patch value that tells "absent" apart from "explicitly cleared".
// The zero value means the field was not supplied.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Value returns a Field holding v.
func Value[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// Null returns a Field that clears the stored value.
func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }

// CreateInput describes a new task.
type CreateInput struct {
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
	Now         time.Time
}

// Patch lists the fields to change. Title, Priority and Completed cannot be
// cleared; a Null for them is rejected.
type Patch struct {
	Title       Field[string]
	Description Field[string]
	Priority    Field[Priority]
	DueDate     Field[time.Time]
	Completed   Field[bool]
	Now         time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Priority.Set && !p.DueDate.Set && !p.Completed.Set
}

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	Completed *bool
	Priority  *Priority
}

func (f ListFilter) match(t Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// UpdateRecord is a validated patch bound to a task and its expected owner.
type UpdateRecord struct {
	ID      string
	OwnerID string
	Patch   Patch
	Now     time.Time
}

// Store is the persistence boundary for tasks.
//
// Update and Delete must apply only when both id and owner match, and report
// ErrNotFound for a missing id and ErrForbidden for an owner mismatch.
type Store interface {
	Create(ctx context.Context, t Task) (Task, error)
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, ownerID string, f ListFilter) ([]Task, error)
	Update(ctx context.Context, in UpdateRecord) (Task, error)
	Delete(ctx context.Context, id, ownerID string) error
	Ping(ctx context.Context) error
}

// apply returns t with the patch fields written and UpdatedAt set to now.
// The patch must already be validated.
func (p Patch) apply(t Task, now time.Time) Task {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			t.Description = nil
		} else {
			d := p.Description.Value
			t.Description = &d
		}
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			t.DueDate = nil
		} else {
			d := p.DueDate.Value
			t.DueDate = &d
		}
	}
	if p.Completed.Set {
		t.Completed = p.Completed.Value
	}
	t.UpdatedAt = now
	return t
}
