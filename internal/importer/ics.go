package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
)

// DecodeICS reads an iCalendar export (for example a birthdays calendar).
// Each VEVENT becomes a record dated on its DTSTART day, named after its
// SUMMARY and typed by its first CATEGORIES value.
func DecodeICS(r io.Reader) ([]engine.RawRecord, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalParse, err)
	}

	var records []engine.RawRecord
	for _, ev := range cal.Events() {
		rec, ok := recordFromEvent(ev)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromEvent(ev *ics.VEvent) (engine.RawRecord, bool) {
	start := ev.GetProperty(ics.ComponentPropertyDtStart)
	if start == nil {
		return engine.RawRecord{}, false
	}

	// DTSTART is either a DATE (YYYYMMDD) or a DATE-TIME (YYYYMMDDTHHMMSS[Z]).
	// The calendar day is read as written.
	raw := strings.TrimSpace(start.Value)
	if len(raw) < config.ICalDateLen {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyValue, start.Value)
		return engine.RawRecord{}, false
	}
	digits := raw[:config.ICalDateLen]
	date := digits[0:4] + "-" + digits[4:6] + "-" + digits[6:8]
	if !engine.IsCanonical(date) {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyValue, start.Value)
		return engine.RawRecord{}, false
	}

	rec := engine.RawRecord{
		Name: config.FallbackName,
		Date: date,
		Type: config.DefaultImportKind,
	}
	if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		rec.Name = strings.TrimSpace(p.Value)
	}
	if p := ev.GetProperty(ics.ComponentPropertyDescription); p != nil {
		rec.Reference = strings.TrimSpace(p.Value)
	}
	if p := ev.GetProperty(ics.ComponentPropertyCategories); p != nil {
		if first, _, _ := strings.Cut(p.Value, ","); strings.TrimSpace(first) != "" {
			rec.Type = strings.TrimSpace(first)
		}
	}
	return rec, true
}
