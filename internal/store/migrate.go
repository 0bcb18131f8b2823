package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
)

// maxEpochMillis bounds a valid date: 100,000,000 days either side of the epoch.
const maxEpochMillis = 8.64e15

// MigrateLastModified normalizes a raw lastModified value.
//
// Older data stored the field as epoch milliseconds; those become the
// textual timestamp for the same instant. Strings pass through as-is, so
// applying the migration twice changes nothing. A missing or null value
// yields "". Numbers beyond ±8.64e15 ms are not dates and are an error.
func MigrateLastModified(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("lastModified: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("lastModified: want string or number, got %s", raw)
	}
	f, err := n.Float64()
	if err != nil {
		return "", fmt.Errorf("lastModified: %w", err)
	}
	if f > maxEpochMillis || f < -maxEpochMillis {
		return "", fmt.Errorf("lastModified: %s is outside the representable date range", raw)
	}
	ms, err := n.Int64()
	if err != nil {
		ms = int64(f)
	}
	return model.FormatTimestamp(time.UnixMilli(ms)), nil
}
