package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-reminders/internal/config"
)

// Generator renders an assembled list as an iCalendar feed that
// calendar clients can subscribe to.
type Generator struct {
	// FormatSummary allows the message layer to inject localized strings.
	FormatSummary func(name, kind string) string

	// ReminderTrigger is an ISO8601 duration (e.g. "-P1D"). Empty disables alarms.
	ReminderTrigger string
}

// Calendar encodes one yearly recurring all-day event per entry, starting
// at its next occurrence.
func (g *Generator) Calendar(events []Event, now time.Time) ([]byte, error) {
	if len(events) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, e := range events {
		event, err := g.event(e)
		if err != nil {
			slog.Debug(config.MsgRecordDropped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyRecordID, e.ID,
				config.LogKeyError, err)
			continue
		}
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)

		if e.DaysRemaining == 0 {
			today++
			slog.Info(config.MsgEventToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, e.Name,
				config.LogKeyKind, e.Kind)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(events)),
			slog.Int(config.LogKeyToday, today),
		),
	)
	return buf.Bytes(), nil
}

func (g *Generator) event(e Event) (*ical.Event, error) {
	_, month, day, err := ParseCanonical(e.Date)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf(config.FallbackSummary, e.Name, e.Kind)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(e.Name, e.Kind)
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, e.ID, config.ICalDomain))
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropCategories, e.Kind)
	if e.Note != "" {
		event.Props.SetText(config.PropDescription, e.Note)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(e.NextOccurrence)
	event.Props.Set(dtStartProp)

	event.Props.SetRecurrenceRule(yearlyRule(month, day))

	if g.ReminderTrigger != "" {
		addAlarm(event, g.ReminderTrigger, summary)
	}
	return event, nil
}

// yearlyRule repeats every year on month/day. Feb 29 uses the last day of
// February so common years get Feb 28.
func yearlyRule(month time.Month, day int) *rrule.ROption {
	monthDay := day
	if month == time.February && day == 29 {
		monthDay = -1
	}
	return &rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(month)},
		Bymonthday: []int{monthDay},
	}
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
