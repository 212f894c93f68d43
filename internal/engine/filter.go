package engine

import (
	"strings"

	"github.com/tartampluch/go-reminders/internal/config"
)

// Filter narrows an assembled list for display.
// The zero value matches everything.
type Filter struct {
	// Kind is "", "all", a fixed kind (matched case-insensitively)
	// or a custom label (matched exactly).
	Kind string

	// Query is a case-insensitive substring of the name or the note.
	Query string
}

// IsFixedKind reports whether kind is one of the built-in kinds.
func IsFixedKind(kind string) bool {
	return strings.EqualFold(kind, config.KindBirthday) || strings.EqualFold(kind, config.KindAnniversary)
}

// Matches reports whether e passes both the kind and the text filter.
func (f Filter) Matches(e Event) bool {
	return f.matchesKind(e.Kind) && f.matchesQuery(e)
}

func (f Filter) matchesKind(kind string) bool {
	want := strings.TrimSpace(f.Kind)
	if want == "" || strings.EqualFold(want, config.KindAll) {
		return true
	}
	if IsFixedKind(want) {
		return strings.EqualFold(want, kind)
	}
	return want == kind
}

func (f Filter) matchesQuery(e Event) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Note), q)
}

// Apply returns the matching events in their original order.
// The input slice is never modified.
func (f Filter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
