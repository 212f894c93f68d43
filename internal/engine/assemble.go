package engine

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/mo"
	"github.com/tartampluch/go-reminders/internal/config"
)

var errFieldEmpty = errors.New("required field is empty")

// Assemble validates raw records, annotates them with their next
// occurrence relative to now, and sorts them by days remaining.
// Invalid records are dropped and logged; the result is never nil.
func Assemble(records []RawRecord, now time.Time) []Event {
	events := make([]Event, 0, len(records))
	dropped := 0

	for _, raw := range records {
		res := assembleOne(raw, now)
		if res.IsError() {
			dropped++
			logDrop(raw, res.Error())
			continue
		}
		events = append(events, res.MustGet())
	}

	slog.Debug(config.MsgAssembled,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyTotal, len(records),
		config.LogKeyKept, len(events),
		config.LogKeyDropped, dropped,
	)

	return SortByProximity(events)
}

// assembleOne turns one raw record into an Event or a *RecordError.
func assembleOne(raw RawRecord, now time.Time) mo.Result[Event] {
	r := raw.Trimmed()

	for _, f := range []struct{ name, value string }{
		{config.FieldName, r.Name},
		{config.FieldDate, r.Date},
		{config.FieldType, r.Type},
	} {
		if f.value == "" {
			return mo.Err[Event](&RecordError{Kind: ValidationError, RecordID: r.ID, Field: f.name, Err: errFieldEmpty})
		}
	}

	date := NormalizeDate(r.Date)
	if !IsCanonical(date) {
		return mo.Err[Event](&RecordError{Kind: ParseError, RecordID: r.ID, Field: config.FieldDate, Err: errors.New(config.ErrDateParse)})
	}

	occ, err := NextOccurrence(date, now)
	if err != nil {
		var re *RecordError
		if errors.As(err, &re) {
			re.RecordID = r.ID
		}
		return mo.Err[Event](err)
	}

	return mo.Ok(Event{
		ID:             r.ID,
		Name:           r.Name,
		Phone:          r.Phone,
		Date:           date,
		Kind:           r.Type,
		Note:           r.Reference,
		NextOccurrence: occ.Date,
		DaysRemaining:  occ.DaysRemaining,
	})
}

// SortByProximity returns a copy ordered by DaysRemaining.
// Ties keep their input order.
func SortByProximity(events []Event) []Event {
	out := slices.Clone(events)
	if out == nil {
		out = []Event{}
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		return a.DaysRemaining - b.DaysRemaining
	})
	return out
}

func logDrop(raw RawRecord, err error) {
	attrs := []any{
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRecordID, raw.ID,
		config.LogKeyError, err,
	}
	var re *RecordError
	if errors.As(err, &re) {
		attrs = append(attrs, config.LogKeyKind, string(re.Kind), config.LogKeyField, re.Field)
	}
	slog.Debug(config.MsgRecordDropped, attrs...)
}
