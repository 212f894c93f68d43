package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecords(t *testing.T) {
	payload := `[
		{"id": "a", "name": "Sam", "date": "2024-03-10", "type": "birthday"},
		"not an object",
		{"id": "b", "name": {"nested": true}},
		{"id": 7, "name": "Kim", "date": "10/03/2000", "type": "anniversary"}
	]`

	records, err := DecodeRecords([]byte(payload))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "7", records[1].ID)
}

func TestDecodeRecords_NotACollection(t *testing.T) {
	for _, payload := range []string{"", "null", `{"data": []}`, `"text"`, "42"} {
		t.Run(payload, func(t *testing.T) {
			_, err := DecodeRecords([]byte(payload))
			assert.ErrorIs(t, err, ErrNotACollection)
		})
	}
}

func TestDecodeRecords_EmptyArray(t *testing.T) {
	records, err := DecodeRecords([]byte(" [ ] "))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDecodeRecords_Malformed(t *testing.T) {
	_, err := DecodeRecords([]byte(`[{"id": "a"`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotACollection)
}
