package engine

import (
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
)

// State is the application state: the canonical sorted list, the active
// filter and the calendar day the list was computed for.
// Methods return a new State and never mutate the receiver's slice.
type State struct {
	Events []Event
	Filter Filter
	Day    string
}

// WithRecords rebuilds the list from raw records as of now.
func (s State) WithRecords(records []RawRecord, now time.Time) State {
	s.Events = Assemble(records, now)
	s.Day = now.Format(config.DateFormatCanonical)
	return s
}

// WithFilter replaces the active filter.
func (s State) WithFilter(f Filter) State {
	s.Filter = f
	return s
}

// Visible returns the filtered view of the list.
func (s State) Visible() []Event {
	return s.Filter.Apply(s.Events)
}

// Stale reports whether the list was computed on another calendar day
// (or never), in which case days remaining are no longer valid.
func (s State) Stale(now time.Time) bool {
	return s.Day == "" || s.Day != now.Format(config.DateFormatCanonical)
}
