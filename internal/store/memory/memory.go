// Package memory is an in-process Store used for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/store"
)

// Store keeps records in insertion order.
type Store struct {
	mu      sync.RWMutex
	records []engine.RawRecord
}

// New returns a store seeded with records. Seeds without an id get one.
func New(seed ...engine.RawRecord) *Store {
	s := &Store{}
	for _, rec := range seed {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		s.records = append(s.records, rec)
	}
	return s
}

// List returns a copy of the records.
func (s *Store) List(ctx context.Context) ([]engine.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

// Create appends rec under a new id.
func (s *Store) Create(ctx context.Context, rec engine.RawRecord) (engine.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return engine.RawRecord{}, err
	}
	rec.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return rec, nil
}

// Update replaces the record with rec.ID in place.
func (s *Store) Update(ctx context.Context, rec engine.RawRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(rec.ID)
	if i < 0 {
		return store.NewError(store.ErrNotFound, config.ErrNotFound, nil)
	}
	s.records[i] = rec
	return nil
}

// Delete removes the record with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return store.NewError(store.ErrNotFound, config.ErrNotFound, nil)
	}
	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

// index must be called with the lock held.
func (s *Store) index(id string) int {
	return slices.IndexFunc(s.records, func(r engine.RawRecord) bool { return r.ID == id })
}
