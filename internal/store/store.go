// Package store persists reminder records. The tracker only talks to the
// Store interface; backends live in sub-packages.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tartampluch/go-reminders/internal/engine"
)

// Store is the persistence boundary. Records are returned raw; the engine
// validates and annotates them.
type Store interface {
	// List returns every stored record in storage order.
	List(ctx context.Context) ([]engine.RawRecord, error)

	// Create persists rec and returns it with its assigned id.
	Create(ctx context.Context, rec engine.RawRecord) (engine.RawRecord, error)

	// Update replaces the editable fields of the record with rec.ID.
	Update(ctx context.Context, rec engine.RawRecord) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}

// ErrorType classifies storage failures.
type ErrorType string

const (
	ErrNotFound     ErrorType = "not_found"
	ErrInvalidInput ErrorType = "invalid_input"
	ErrUnavailable  ErrorType = "unavailable"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error.
func NewError(t ErrorType, msg string, err error) *Error {
	return &Error{Type: t, Message: msg, Err: err}
}

// IsType reports whether err is a storage error of type t.
func IsType(err error, t ErrorType) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == t
}
