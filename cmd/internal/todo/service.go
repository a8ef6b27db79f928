package todo

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"tasktrack/cmd/internal/ids"
)

const (
	defaultMaxTitleLen       = 200
	defaultMaxDescriptionLen = 2000
)

// Service applies validation and the ownership guard on top of a Store.
type Service struct {
	store          Store
	maxTitle       int
	maxDescription int
}

// Option configures the Service.
type Option func(*Service) error

// WithMaxTitleLen sets the maximum title length in characters.
func WithMaxTitleLen(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return ErrInvalidInput
		}
		s.maxTitle = n
		return nil
	}
}

// WithMaxDescriptionLen sets the maximum description length in characters.
func WithMaxDescriptionLen(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return ErrInvalidInput
		}
		s.maxDescription = n
		return nil
	}
}

// NewService constructs a Service with safe defaults.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrInvalidInput
	}
	s := &Service{
		store:          store,
		maxTitle:       defaultMaxTitleLen,
		maxDescription: defaultMaxDescriptionLen,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// List returns the owner's tasks, newest first.
func (s *Service) List(ctx context.Context, ownerID string, f ListFilter) ([]Task, error) {
	const op = "todo.List"

	if s == nil || s.store == nil {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, invalid(op, "owner is required")
	}
	if f.Priority != nil {
		if _, ok := ParsePriority(string(*f.Priority)); !ok {
			return nil, invalid(op, "priority must be one of low, medium, high")
		}
	}

	out, err := s.store.List(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Task{}
	}
	return out, nil
}

// Create validates the input and stores a new task owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Task, error) {
	const op = "todo.Create"

	if s == nil || s.store == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Task{}, invalid(op, "owner is required")
	}

	title, err := s.checkTitle(op, in.Title)
	if err != nil {
		return Task{}, err
	}
	var desc *string
	if in.Description != nil {
		desc, err = s.checkDescription(op, *in.Description)
		if err != nil {
			return Task{}, err
		}
	}
	prio := PriorityMedium
	if strings.TrimSpace(string(in.Priority)) != "" {
		p, ok := ParsePriority(string(in.Priority))
		if !ok {
			return Task{}, invalid(op, "priority must be one of low, medium, high")
		}
		prio = p
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC()

	id, err := ids.NewULID(now)
	if err != nil {
		return Task{}, err
	}

	return s.store.Create(ctx, Task{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
		Priority:    prio,
		DueDate:     utcPtr(in.DueDate),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Update applies patch to the task. A missing task yields ErrNotFound and a
// task owned by someone else yields ErrForbidden, both before the patch is
// validated.
func (s *Service) Update(ctx context.Context, taskID, ownerID string, patch Patch) (Task, error) {
	const op = "todo.Update"

	if s == nil || s.store == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	id, err := s.guard(ctx, op, taskID, ownerID)
	if err != nil {
		return Task{}, err
	}

	patch, err = s.checkPatch(op, patch)
	if err != nil {
		return Task{}, err
	}

	now := patch.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return s.store.Update(ctx, UpdateRecord{
		ID:      id,
		OwnerID: strings.TrimSpace(ownerID),
		Patch:   patch,
		Now:     now.UTC(),
	})
}

// Delete removes the task with the same NotFound/Forbidden ordering as Update.
func (s *Service) Delete(ctx context.Context, taskID, ownerID string) error {
	const op = "todo.Delete"

	if s == nil || s.store == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := s.guard(ctx, op, taskID, ownerID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, id, strings.TrimSpace(ownerID))
}

// Authorize reports ErrNotFound or ErrForbidden exactly as Update and Delete
// would, without changing anything.
func (s *Service) Authorize(ctx context.Context, taskID, ownerID string) error {
	const op = "todo.Authorize"

	if s == nil || s.store == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil service"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.guard(ctx, op, taskID, ownerID)
	return err
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	if s == nil || s.store == nil {
		return ErrInvalidInput
	}
	return s.store.Ping(ctx)
}

// guard resolves taskID and checks that ownerID owns it.
// Malformed ids cannot exist, so they report ErrNotFound.
func (s *Service) guard(ctx context.Context, op, taskID, ownerID string) (string, error) {
	id := ids.Canonical(taskID)
	if id == "" {
		return "", notFound(op)
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if t.OwnerID != strings.TrimSpace(ownerID) {
		return "", forbidden(op)
	}
	return id, nil
}

func (s *Service) checkTitle(op, raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", invalid(op, "title is required")
	}
	if utf8.RuneCountInString(title) > s.maxTitle {
		return "", invalid(op, "title is too long")
	}
	return title, nil
}

// checkDescription trims the description; an empty result clears it.
func (s *Service) checkDescription(op, raw string) (*string, error) {
	d := strings.TrimSpace(raw)
	if d == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(d) > s.maxDescription {
		return nil, invalid(op, "description is too long")
	}
	return &d, nil
}

func (s *Service) checkPatch(op string, p Patch) (Patch, error) {
	if p.Title.Set {
		if p.Title.Null {
			return Patch{}, invalid(op, "title is required")
		}
		title, err := s.checkTitle(op, p.Title.Value)
		if err != nil {
			return Patch{}, err
		}
		p.Title.Value = title
	}
	if p.Description.Set && !p.Description.Null {
		d, err := s.checkDescription(op, p.Description.Value)
		if err != nil {
			return Patch{}, err
		}
		if d == nil {
			p.Description = Null[string]()
		} else {
			p.Description.Value = *d
		}
	}
	if p.Priority.Set {
		if p.Priority.Null {
			return Patch{}, invalid(op, "priority must be one of low, medium, high")
		}
		prio, ok := ParsePriority(string(p.Priority.Value))
		if !ok {
			return Patch{}, invalid(op, "priority must be one of low, medium, high")
		}
		p.Priority.Value = prio
	}
	if p.DueDate.Set && !p.DueDate.Null {
		p.DueDate.Value = p.DueDate.Value.UTC()
	}
	if p.Completed.Set && p.Completed.Null {
		return Patch{}, invalid(op, "completed must be true or false")
	}
	return p, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
