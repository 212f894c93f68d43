// Package tracker owns the application state: it loads records from the
// store, keeps the assembled list current and regenerates the feed.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/store"
)

// InvalidRecordError is returned by writes that fail validation.
type InvalidRecordError struct {
	Fields []store.FieldError
}

func (e *InvalidRecordError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return config.ErrInvalidRecord + ": " + strings.Join(parts, "; ")
}

// ImportResult summarizes an import batch.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	Store     store.Store
	Clock     engine.Clock
	Generator *engine.Generator

	// OnRefresh receives the regenerated iCalendar feed after each refresh.
	OnRefresh func(ics []byte)

	refreshMu sync.Mutex // serializes store reads with state swaps
	mu        sync.RWMutex
	state     engine.State
}

// New wires a Tracker with a real clock.
func New(st store.Store, gen *engine.Generator) *Tracker {
	return &Tracker{Store: st, Clock: engine.RealClock{}, Generator: gen}
}

// Refresh reloads every record and recomputes the list for today.
// On failure the previous list is kept.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompTracker)

	records, err := t.Store.List(ctx)
	if err != nil {
		log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
		return fmt.Errorf("%s: %w", config.ErrRefresh, err)
	}

	now := t.Clock.Now()

	t.mu.Lock()
	t.state = t.state.WithRecords(records, now)
	events := t.state.Events
	t.mu.Unlock()

	log.Info(config.MsgRefreshed,
		config.LogKeyTotal, len(records),
		config.LogKeyKept, len(events),
		config.LogKeyToday, now.Format(config.DateFormatCanonical))

	if t.Generator != nil && t.OnRefresh != nil {
		ics, err := t.Generator.Calendar(events, now)
		if err != nil {
			log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
			return fmt.Errorf("%s: %w", config.ErrRefresh, err)
		}
		t.OnRefresh(ics)
	}
	return nil
}

// Snapshot returns the current state, recomputing it first when it was
// built on another calendar day.
func (t *Tracker) Snapshot(ctx context.Context) (engine.State, error) {
	t.mu.RLock()
	st := t.state
	t.mu.RUnlock()

	if !st.Stale(t.Clock.Now()) {
		return st, nil
	}

	slog.Debug(config.MsgStaleState, config.LogKeyComponent, config.CompTracker)
	if err := t.Refresh(ctx); err != nil {
		return st, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state, nil
}

// Visible returns the list narrowed by f. The stored filter is untouched.
func (t *Tracker) Visible(ctx context.Context, f engine.Filter) ([]engine.Event, error) {
	st, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return st.WithFilter(f).Visible(), nil
}

// Events returns the full sorted list.
func (t *Tracker) Events(ctx context.Context) ([]engine.Event, error) {
	st, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return st.Events, nil
}

// Now reads the tracker clock.
func (t *Tracker) Now() time.Time {
	return t.Clock.Now()
}

// Create validates rec, stores it and refreshes.
func (t *Tracker) Create(ctx context.Context, rec engine.RawRecord) (engine.RawRecord, error) {
	rec = store.Prepare(rec)
	if errs := store.Validate(rec); len(errs) > 0 {
		return engine.RawRecord{}, &InvalidRecordError{Fields: errs}
	}

	created, err := t.Store.Create(ctx, rec)
	if err != nil {
		return engine.RawRecord{}, fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	t.refreshAfterWrite(ctx)
	return created, nil
}

// Update replaces the editable fields of the record rec.ID.
func (t *Tracker) Update(ctx context.Context, rec engine.RawRecord) error {
	rec = store.Prepare(rec)
	if errs := store.Validate(rec); len(errs) > 0 {
		return &InvalidRecordError{Fields: errs}
	}

	if err := t.Store.Update(ctx, rec); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	t.refreshAfterWrite(ctx)
	return nil
}

// Delete removes a record and refreshes.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	t.refreshAfterWrite(ctx)
	return nil
}

// Import stores the records that are valid and not already present.
// Two records are the same when name, date and kind match ignoring case.
func (t *Tracker) Import(ctx context.Context, records []engine.RawRecord) (ImportResult, error) {
	existing, err := t.Store.List(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%s: %w", config.ErrStoreList, err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[identity(store.Prepare(rec))] = struct{}{}
	}

	var res ImportResult
	for _, rec := range records {
		rec = store.Prepare(rec)
		if len(store.Validate(rec)) > 0 {
			res.Skipped++
			continue
		}
		key := identity(rec)
		if _, dup := seen[key]; dup {
			res.Skipped++
			continue
		}
		if _, err := t.Store.Create(ctx, rec); err != nil {
			return res, fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
		}
		seen[key] = struct{}{}
		res.Created++
	}

	slog.Info(config.MsgImported,
		config.LogKeyComponent, config.CompTracker,
		config.LogKeyCreated, res.Created,
		config.LogKeySkipped, res.Skipped)

	if res.Created > 0 {
		t.refreshAfterWrite(ctx)
	}
	return res, nil
}

// refreshAfterWrite refreshes after a successful write. The write already
// happened, so a failed reload is logged (by Refresh) rather than returned.
func (t *Tracker) refreshAfterWrite(ctx context.Context) {
	_ = t.Refresh(ctx)
}

func identity(rec engine.RawRecord) string {
	return strings.ToLower(rec.Name) + "|" + rec.Date + "|" + strings.ToLower(rec.Type)
}
