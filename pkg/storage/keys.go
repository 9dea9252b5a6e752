package storage

import (
	"fmt"
	"time"
)

// BatchObjectKey builds the object key for one group written by the batch
// strategy:
//
//	y=2026/m=01/d=15/h=09/m=00/p=3/part-o12345-o12345.ndjson.gz
//
// The key is a pure function of the group's hour bucket and the delivery
// metadata, so a redelivered batch overwrites the object it wrote before.
// Without an offset the key falls back to a timestamp and redeliveries
// create fresh objects instead.
func BatchObjectKey(bucket time.Time, partitionID string, offset string, now time.Time) string {
	partition := partitionID
	if partition == "" {
		partition = "unknown"
	}

	marker := offset
	if marker == "" {
		now = now.UTC()
		marker = now.Format("20060102150405") + fmt.Sprintf("%06d", now.Nanosecond()/1000)
	}

	return fmt.Sprintf("%s/m=00/p=%s/part-o%s-o%s.ndjson.gz",
		bucket.UTC().Format("y=2006/m=01/d=02/h=15"), partition, marker, marker)
}

// AppendObjectKey builds the daily object key the append strategy grows:
//
//	2026/01/15/console.ndjson
//	2026/01/15/p3/console.ndjson
//
// The per-partition folder keeps parallel receivers off each other's blobs.
func AppendObjectKey(bucket time.Time, partitionID string, basename string, shardByPartition bool) string {
	day := bucket.UTC().Format("2006/01/02")
	if shardByPartition && partitionID != "" {
		return fmt.Sprintf("%s/p%s/%s", day, partitionID, basename)
	}
	return fmt.Sprintf("%s/%s", day, basename)
}
