package todo

import (
	"context"
	"testing"
	"time"

	"tasktrack/cmd/internal/ids"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is a fresh store plus three owner ids that exist in it.
type fixture struct {
	store   Store
	a, b, c string
}

// runStoreContract exercises the behavior every Store implementation shares.
func runStoreContract(t *testing.T, setup func(t *testing.T) fixture) {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("create then get", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()

		desc := "two litres"
		due := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
		in := newRecord(t, f.a, "Buy milk", base)
		in.Description = &desc
		in.DueDate = &due

		created, err := s.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, in.ID, created.ID)

		got, err := s.Get(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, f.a, got.OwnerID)
		assert.Equal(t, "Buy milk", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, desc, *got.Description)
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(due))
		assert.Equal(t, PriorityMedium, got.Priority)
		assert.False(t, got.Completed)
		assert.True(t, got.CreatedAt.Equal(base))
		assert.True(t, got.UpdatedAt.Equal(base))
	})

	t.Run("get missing", func(t *testing.T) {
		f := setup(t)
		s := f.store
		_, err := s.Get(context.Background(), mustID(t))
		assert.True(t, IsNotFound(err), "got %v", err)
	})

	t.Run("list is owner scoped and newest first", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()

		first := newRecord(t, f.a, "first", base)
		second := newRecord(t, f.a, "second", base.Add(time.Minute))
		other := newRecord(t, f.b, "not yours", base.Add(2*time.Minute))
		for _, r := range []Task{first, second, other} {
			_, err := s.Create(ctx, r)
			require.NoError(t, err)
		}

		got, err := s.List(ctx, f.a, ListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)

		empty, err := s.List(ctx, f.c, ListFilter{})
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("list filters", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()

		low := newRecord(t, f.a, "low", base)
		low.Priority = PriorityLow
		done := newRecord(t, f.a, "done", base.Add(time.Second))
		done.Completed = true
		for _, r := range []Task{low, done} {
			_, err := s.Create(ctx, r)
			require.NoError(t, err)
		}

		yes := true
		got, err := s.List(ctx, f.a, ListFilter{Completed: &yes})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, done.ID, got[0].ID)

		p := PriorityLow
		got, err = s.List(ctx, f.a, ListFilter{Priority: &p})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, low.ID, got[0].ID)
	})

	t.Run("update applies only provided fields", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()

		desc := "old"
		rec := newRecord(t, f.a, "Buy milk", base)
		rec.Description = &desc
		_, err := s.Create(ctx, rec)
		require.NoError(t, err)

		later := base.Add(time.Hour)
		got, err := s.Update(ctx, UpdateRecord{
			ID:      rec.ID,
			OwnerID: f.a,
			Patch:   Patch{Completed: Value(true), Description: Null[string]()},
			Now:     later,
		})
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Nil(t, got.Description)
		assert.Equal(t, "Buy milk", got.Title)
		assert.True(t, got.UpdatedAt.Equal(later))
		assert.True(t, got.CreatedAt.Equal(base))

		reread, err := s.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, reread.Completed)
		assert.Nil(t, reread.Description)
	})

	t.Run("update and delete check owner", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()

		rec := newRecord(t, f.a, "mine", base)
		_, err := s.Create(ctx, rec)
		require.NoError(t, err)

		_, err = s.Update(ctx, UpdateRecord{ID: rec.ID, OwnerID: f.b, Patch: Patch{Title: Value("hijack")}, Now: base})
		assert.True(t, IsForbidden(err), "got %v", err)

		err = s.Delete(ctx, rec.ID, f.b)
		assert.True(t, IsForbidden(err), "got %v", err)

		got, err := s.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Title)
	})

	t.Run("update and delete missing", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()
		id := mustID(t)

		_, err := s.Update(ctx, UpdateRecord{ID: id, OwnerID: f.a, Patch: Patch{Completed: Value(true)}, Now: base})
		assert.True(t, IsNotFound(err), "got %v", err)
		assert.True(t, IsNotFound(s.Delete(ctx, id, f.a)))
	})

	t.Run("delete removes from list", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx := context.Background()

		rec := newRecord(t, f.a, "gone soon", base)
		_, err := s.Create(ctx, rec)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, rec.ID, f.a))

		_, err = s.Get(ctx, rec.ID)
		assert.True(t, IsNotFound(err))
		list, err := s.List(ctx, f.a, ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.True(t, IsNotFound(s.Delete(ctx, rec.ID, f.a)))
	})

	t.Run("canceled context", func(t *testing.T) {
		f := setup(t)
		s := f.store
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Create(ctx, newRecord(t, f.a, "x", base))
		assert.ErrorIs(t, err, context.Canceled)
		_, err = s.List(ctx, f.a, ListFilter{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func mustID(t *testing.T) string {
	t.Helper()
	id, err := ids.NewULID(time.Now())
	require.NoError(t, err)
	return id
}

func newRecord(t *testing.T, owner, title string, at time.Time) Task {
	t.Helper()
	id, err := ids.NewULID(at)
	require.NoError(t, err)
	return Task{
		ID:        id,
		OwnerID:   owner,
		Title:     title,
		Priority:  PriorityMedium,
		CreatedAt: at,
		UpdatedAt: at,
	}
}
