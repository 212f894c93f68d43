package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
)

// RawRecord is a record exactly as the storage service returns it.
// Spreadsheet cells are loosely typed, so every field is coerced to text
// when decoding (numbers, booleans and null are accepted).
type RawRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	Type      string `json:"type"`
}

// UnmarshalJSON decodes a record whose fields may be any JSON scalar.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var cells struct {
		ID        cell `json:"id"`
		Name      cell `json:"name"`
		Reference cell `json:"reference"`
		Phone     cell `json:"phone"`
		Date      cell `json:"date"`
		Type      cell `json:"type"`
	}
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	*r = RawRecord{
		ID:        string(cells.ID),
		Name:      string(cells.Name),
		Reference: string(cells.Reference),
		Phone:     string(cells.Phone),
		Date:      string(cells.Date),
		Type:      string(cells.Type),
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r RawRecord) Trimmed() RawRecord {
	return RawRecord{
		ID:        strings.TrimSpace(r.ID),
		Name:      strings.TrimSpace(r.Name),
		Reference: strings.TrimSpace(r.Reference),
		Phone:     strings.TrimSpace(r.Phone),
		Date:      strings.TrimSpace(r.Date),
		Type:      strings.TrimSpace(r.Type),
	}
}

// cell is a single spreadsheet value coerced to a string.
type cell string

func (c *cell) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch x := v.(type) {
	case nil:
		*c = ""
	case string:
		*c = cell(x)
	case json.Number:
		*c = cell(x.String())
	case bool:
		*c = cell(fmt.Sprint(x))
	default:
		return fmt.Errorf("%s: %s", config.ErrCellType, data)
	}
	return nil
}

// Event is a validated record annotated with its next occurrence.
// NextOccurrence and DaysRemaining are derived and never persisted.
type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Date           string    `json:"date"` // canonical YYYY-MM-DD
	Kind           string    `json:"type"`
	Note           string    `json:"reference"`
	NextOccurrence time.Time `json:"-"`
	DaysRemaining  int       `json:"daysRemaining"`
}

// MarshalJSON renders NextOccurrence as a calendar date.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return json.Marshal(struct {
		plain
		NextOccurrence string `json:"nextOccurrence"`
	}{
		plain:          plain(e),
		NextOccurrence: e.NextOccurrence.Format(config.DateFormatCanonical),
	})
}

// Occurrence is the result of the recurrence calculation.
type Occurrence struct {
	// Date is local midnight of the next (or current) anniversary.
	Date time.Time

	// DaysRemaining counts whole days from today; 0 means today.
	DaysRemaining int
}
