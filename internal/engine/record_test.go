package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecord_UnmarshalLooseCells(t *testing.T) {
	payload := `{"id": 42, "name": "Sam", "reference": null, "phone": 33612345678, "date": "2000-01-28T00:00:00.000Z", "type": "birthday", "extra": [1]}`

	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, "Sam", rec.Name)
	assert.Equal(t, "", rec.Reference)
	assert.Equal(t, "33612345678", rec.Phone, "large numbers keep every digit")
	assert.Equal(t, "2000-01-28T00:00:00.000Z", rec.Date)
	assert.Equal(t, "birthday", rec.Type)
}

func TestRawRecord_UnmarshalBool(t *testing.T) {
	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(`{"name": true}`), &rec))
	assert.Equal(t, "true", rec.Name)
}

func TestRawRecord_UnmarshalRejectsNested(t *testing.T) {
	var rec RawRecord
	err := json.Unmarshal([]byte(`{"name": {"first": "Sam"}}`), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cell value")
}

func TestEvent_MarshalJSON(t *testing.T) {
	e := Event{
		ID:             "a",
		Name:           "Sam",
		Phone:          "+1 555",
		Date:           "2024-03-10",
		Kind:           "birthday",
		Note:           "neighbour",
		NextOccurrence: time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local),
		DaysRemaining:  1,
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2025-03-10", got["nextOccurrence"])
	assert.Equal(t, float64(1), got["daysRemaining"])
	assert.Equal(t, "birthday", got["type"])
	assert.Equal(t, "neighbour", got["reference"])
	assert.False(t, strings.Contains(string(data), "NextOccurrence"))
}
