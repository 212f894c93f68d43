package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-reminders/internal/config"
)

// ErrorKind classifies why a record was dropped by the assembler.
type ErrorKind string

const (
	// ParseError: the date could not be normalized to YYYY-MM-DD.
	ParseError ErrorKind = "parse"
	// ValidationError: a required field is empty.
	ValidationError ErrorKind = "validation"
	// ComputationError: the canonical date has bad components.
	ComputationError ErrorKind = "computation"
)

var (
	// ErrInvalidDate is wrapped by every calculator failure.
	ErrInvalidDate = errors.New(config.ErrDateInvalid)

	// ErrNotACollection is returned when a record payload is not a JSON array.
	ErrNotACollection = errors.New(config.ErrNotCollection)
)

// RecordError describes a record that cannot appear in the list.
type RecordError struct {
	Kind     ErrorKind
	RecordID string
	Field    string
	Err      error
}

func (e *RecordError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("%s error on record %q (%s): %v", e.Kind, e.RecordID, e.Field, e.Err)
	}
	return fmt.Sprintf("%s error (%s): %v", e.Kind, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
