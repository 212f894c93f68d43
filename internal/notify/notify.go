// Package notify decides which reminders deserve a notification.
package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
)

// Texts renders notification strings. *message.Greeter implements it.
type Texts interface {
	Notification(days int, kind, name string) (title, body string)
}

// Notification is one message to show to the user.
type Notification struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	DaysRemaining int    `json:"daysRemaining"`
}

// Notifier emits at most one notification per record, calendar day and
// days-remaining value. Nothing is emitted, or remembered, while disabled.
type Notifier struct {
	Texts Texts

	mu      sync.Mutex
	enabled bool
	sent    map[string]struct{}
	day     string
}

// New returns a Notifier in the given state.
func New(texts Texts, enabled bool) *Notifier {
	return &Notifier{Texts: texts, enabled: enabled, sent: make(map[string]struct{})}
}

// Enabled reports the user preference.
func (n *Notifier) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// SetEnabled changes the user preference.
func (n *Notifier) SetEnabled(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.enabled != on {
		slog.Info(config.MsgNotifyToggled,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyEnabled, on)
	}
	n.enabled = on
}

// Due returns the notifications not yet emitted for events due today or
// tomorrow, and marks them as emitted.
func (n *Notifier) Due(events []engine.Event, now time.Time) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := []Notification{}
	if !n.enabled {
		return out
	}

	today := now.Format(config.DateFormatCanonical)
	if n.day != today {
		// Keys embed the day, so older ones can never match again.
		n.sent = make(map[string]struct{})
		n.day = today
	}

	for _, e := range events {
		if e.DaysRemaining < 0 || e.DaysRemaining > config.NotifyMaxDays {
			continue
		}
		key := dedupKey(e.ID, today, e.DaysRemaining)
		if _, done := n.sent[key]; done {
			continue
		}
		n.sent[key] = struct{}{}

		title, body := n.render(e)
		out = append(out, Notification{ID: e.ID, Title: title, Body: body, DaysRemaining: e.DaysRemaining})
	}

	if len(out) > 0 {
		slog.Info(config.MsgNotifyDue,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyCount, len(out),
			config.LogKeyToday, today)
	}
	return out
}

func (n *Notifier) render(e engine.Event) (string, string) {
	if n.Texts != nil {
		return n.Texts.Notification(e.DaysRemaining, e.Kind, e.Name)
	}
	if e.DaysRemaining == 0 {
		return e.Name, fmt.Sprintf(config.FallbackNotifyToday, e.Kind, e.Name)
	}
	return e.Name, fmt.Sprintf(config.FallbackNotifyTomorrow, e.Kind, e.Name)
}

func dedupKey(id, day string, days int) string {
	return strings.Join([]string{id, day, fmt.Sprint(days)}, "|")
}
