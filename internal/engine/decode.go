package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-reminders/internal/config"
)

// DecodeRecords reads a JSON array of raw records.
// A payload that is not an array (including null) fails with ErrNotACollection.
// Elements that cannot be decoded are skipped, like invalid records later on.
func DecodeRecords(data []byte) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotACollection
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRecordDecode, err)
	}

	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		var rec RawRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			slog.Debug(config.MsgRecordSkipped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyCount, i,
				config.LogKeyError, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
