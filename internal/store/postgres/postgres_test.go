package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/store"
)

var _ store.Store = (*Store)(nil)

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, config.ErrPostgresDSNEmpty, err.Error())
}

func TestConnect_BadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPostgresDSN)
}

// TestStore_Integration runs against a real database when
// REMINDERS_TEST_POSTGRES_DSN is set.
func TestStore_Integration(t *testing.T) {
	dsn := os.Getenv(config.EnvTestPostgres)
	if dsn == "" {
		t.Skip(config.EnvTestPostgres + " not set")
	}
	ctx := context.Background()

	s, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.Ready(ctx))
	require.NoError(t, s.EnsureSchema(ctx))
	_, err = s.Pool.Exec(ctx, "truncate reminders")
	require.NoError(t, err)

	a, err := s.Create(ctx, engine.RawRecord{Name: "Ana", Date: "2000-01-28", Type: "birthday"})
	require.NoError(t, err)
	b, err := s.Create(ctx, engine.RawRecord{Name: "Ben", Date: "2010-06-05", Type: "anniversary", Phone: "+1 555"})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	b.Reference = "wedding"
	require.NoError(t, s.Update(ctx, b))
	require.NoError(t, s.Delete(ctx, a.ID))

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "wedding", list[0].Reference)

	assert.True(t, store.IsType(s.Delete(ctx, a.ID), store.ErrNotFound))
	assert.True(t, store.IsType(s.Update(ctx, a), store.ErrNotFound))
}
