package store

import (
	"fmt"
	"unicode/utf8"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
)

// FieldError represents a single field's validation error.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// Prepare trims every field and normalizes the date to YYYY-MM-DD when it
// can. It never fails; Validate reports what is still wrong.
func Prepare(rec engine.RawRecord) engine.RawRecord {
	rec = rec.Trimmed()
	rec.Date = engine.NormalizeDate(rec.Date)
	return rec
}

// Validate checks a prepared record before it is written. A record that
// passes here is guaranteed to be kept by the assembler.
func Validate(rec engine.RawRecord) []FieldError {
	var errs []FieldError

	required := []struct{ field, value string }{
		{config.FieldName, rec.Name},
		{config.FieldDate, rec.Date},
		{config.FieldType, rec.Type},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, FieldError{f.field, "required"})
		}
	}

	lengths := []struct{ field, value string }{
		{config.FieldName, rec.Name},
		{config.FieldType, rec.Type},
		{config.FieldPhone, rec.Phone},
		{config.FieldReference, rec.Reference},
	}
	for _, f := range lengths {
		if utf8.RuneCountInString(f.value) > config.MaxFieldLen {
			errs = append(errs, FieldError{f.field, fmt.Sprintf("max length %d", config.MaxFieldLen)})
		}
	}

	if rec.Date != "" {
		if !engine.IsCanonical(rec.Date) {
			errs = append(errs, FieldError{config.FieldDate, "unrecognized date format"})
		} else if _, _, _, err := engine.ParseCanonical(rec.Date); err != nil {
			errs = append(errs, FieldError{config.FieldDate, "not a calendar date"})
		}
	}

	return errs
}
