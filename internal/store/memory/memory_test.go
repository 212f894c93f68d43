package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/store"
)

var _ store.Store = (*Store)(nil)

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New(engine.RawRecord{ID: "seed", Name: "Seed", Date: "2000-01-01", Type: "birthday"})

	created, err := s.Create(ctx, engine.RawRecord{ID: "ignored", Name: "Ana", Date: "2000-02-02", Type: "birthday"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "ignored", created.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "seed", list[0].ID)
	assert.Equal(t, created.ID, list[1].ID)

	created.Name = "Ana Maria"
	require.NoError(t, s.Update(ctx, created))
	list, _ = s.List(ctx)
	assert.Equal(t, "Ana Maria", list[1].Name)

	require.NoError(t, s.Delete(ctx, "seed"))
	list, _ = s.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.Update(ctx, engine.RawRecord{ID: "missing"})
	assert.True(t, store.IsType(err, store.ErrNotFound))

	err = s.Delete(ctx, "missing")
	assert.True(t, store.IsType(err, store.ErrNotFound))
}

func TestStore_ListIsACopy(t *testing.T) {
	s := New(engine.RawRecord{Name: "A"})
	list, _ := s.List(context.Background())
	list[0].Name = "changed"

	again, _ := s.List(context.Background())
	assert.Equal(t, "A", again[0].Name)
	assert.NotEmpty(t, again[0].ID, "seed gets an id")
}

func TestStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Create(ctx, engine.RawRecord{Name: "x"})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.List(ctx)
		}()
	}
	wg.Wait()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
