package ingestion

import (
	"encoding/json"
)

// NormalizeRecords turns one raw batch payload into a flat list of records.
//
// Diagnostic batches arrive in a handful of shapes:
//  1. [ { "records": [ ... ] }, ... ]
//  2. { "records": [ ... ] }
//  3. { ... } (a single record)
//  4. non-JSON text
//
// Payloads we cannot make sense of become a single record holding the
// original text under "_raw"; normalization itself never fails.
func NormalizeRecords(payload []byte) []Record {
	var parsed interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return []Record{rawRecord(payload)}
	}

	switch value := parsed.(type) {
	case []interface{}:
		out := []Record{}
		for _, item := range value {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if inner, ok := entry["records"].([]interface{}); ok {
				out = append(out, mappingsOf(inner)...)
				continue
			}
			out = append(out, Record(entry))
		}
		return out
	case map[string]interface{}:
		if inner, ok := value["records"].([]interface{}); ok {
			return mappingsOf(inner)
		}
		return []Record{Record(value)}
	default:
		// Scalar or null JSON, nothing record-like in it.
		return []Record{rawRecord(payload)}
	}
}

// mappingsOf keeps the mapping elements of a records array and silently
// drops the rest.
func mappingsOf(items []interface{}) []Record {
	records := []Record{}
	for _, item := range items {
		if entry, ok := item.(map[string]interface{}); ok {
			records = append(records, Record(entry))
		}
	}
	return records
}

func rawRecord(payload []byte) Record {
	return Record{"_raw": string(payload)}
}
