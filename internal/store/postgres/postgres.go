// Package postgres stores reminder records in a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/store"
)

const schema = `
create table if not exists reminders (
	id         text primary key,
	name       text not null,
	reference  text not null default '',
	phone      text not null default '',
	date       text not null,
	type       text not null,
	created_at timestamptz not null default now()
)`

// Store is a store.Store backed by a pgx connection pool.
type Store struct {
	Pool *pgxpool.Pool
}

// Connect opens a pool for dsn.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New(config.ErrPostgresDSNEmpty)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPostgresDSN, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPostgresPool, err)
	}
	return &Store{Pool: pool}, nil
}

// Close releases the pool. Queries still in flight fail.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// Ready pings the database.
func (s *Store) Ready(ctx context.Context) error {
	var one int
	if err := s.Pool.QueryRow(ctx, "select 1").Scan(&one); err != nil {
		return unavailable(config.ErrPostgresPing, err)
	}
	return nil
}

// EnsureSchema creates the reminders table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return unavailable(config.ErrStoreWrite, err)
	}
	slog.Info(config.MsgSchemaReady,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyBackend, config.BackendPostgres)
	return nil
}

// List returns every record in insertion order.
func (s *Store) List(ctx context.Context) ([]engine.RawRecord, error) {
	rows, err := s.Pool.Query(ctx,
		`select id, name, reference, phone, date, type from reminders order by created_at, id`)
	if err != nil {
		return nil, unavailable(config.ErrStoreList, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (engine.RawRecord, error) {
		var r engine.RawRecord
		err := row.Scan(&r.ID, &r.Name, &r.Reference, &r.Phone, &r.Date, &r.Type)
		return r, err
	})
	if err != nil {
		return nil, unavailable(config.ErrStoreList, err)
	}
	if records == nil {
		records = []engine.RawRecord{}
	}
	return records, nil
}

// Create inserts rec under a fresh UUID and returns it with the id set.
func (s *Store) Create(ctx context.Context, rec engine.RawRecord) (engine.RawRecord, error) {
	rec.ID = uuid.NewString()
	_, err := s.Pool.Exec(ctx,
		`insert into reminders (id, name, reference, phone, date, type) values ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Name, rec.Reference, rec.Phone, rec.Date, rec.Type)
	if err != nil {
		return engine.RawRecord{}, unavailable(config.ErrStoreWrite, err)
	}
	return rec, nil
}

// Update rewrites the editable columns of rec.ID.
func (s *Store) Update(ctx context.Context, rec engine.RawRecord) error {
	tag, err := s.Pool.Exec(ctx,
		`update reminders set name = $2, reference = $3, phone = $4, date = $5, type = $6 where id = $1`,
		rec.ID, rec.Name, rec.Reference, rec.Phone, rec.Date, rec.Type)
	if err != nil {
		return unavailable(config.ErrStoreWrite, err)
	}
	if tag.RowsAffected() == 0 {
		return store.NewError(store.ErrNotFound, config.ErrNotFound, nil)
	}
	return nil
}

// Delete removes the row with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `delete from reminders where id = $1`, id)
	if err != nil {
		return unavailable(config.ErrStoreWrite, err)
	}
	if tag.RowsAffected() == 0 {
		return store.NewError(store.ErrNotFound, config.ErrNotFound, nil)
	}
	return nil
}

func unavailable(msg string, err error) error {
	// Cancellation is the caller's doing, not an outage.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return store.NewError(store.ErrUnavailable, msg, err)
}
