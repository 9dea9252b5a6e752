package ingestion

import (
	"encoding/json"
	"strings"
	"time"
)

// Keys checked, in order, when picking a human-readable message out of a
// record. Diagnostic settings are not consistent about casing, and raw
// text payloads end up under "_raw".
var messageKeys = []string{"resultDescription", "ResultDescription", "message", "Message", "_raw"}

// Keys checked, in order, for a record's own event timestamp.
var timeKeys = []string{"time", "Time", "timestamp", "Timestamp"}

// Layouts tried, in order, when parsing a record timestamp. Layouts
// without a zone are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// PickMessage returns the first non-blank string field of the record,
// falling back to a compact JSON rendering of the whole record.
func PickMessage(record Record) string {
	for _, key := range messageKeys {
		if value, ok := record[key].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	serialized, err := json.Marshal(record)
	if err != nil {
		return ""
	}
	return string(serialized)
}

// RecordTime extracts a record's own event timestamp, in UTC. The second
// return is false when no candidate field is present or parseable; the
// caller is expected to fall back to the invocation's processing time.
func RecordTime(record Record) (time.Time, bool) {
	for _, key := range timeKeys {
		value, ok := record[key].(string)
		if !ok || value == "" {
			continue
		}
		if parsed, ok := parseTimestamp(value); ok {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
