// Package storage persists routed log groups to Azure Blob Storage.
//
// Two write strategies exist: batch writes one gzip-compressed NDJSON
// block blob per group and overwrites it on redelivery, append grows daily
// NDJSON append blobs with each delivery. Both derive their object keys
// deterministically from the delivery metadata so a redelivered batch
// replaces or extends the same objects instead of duplicating data.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Strategy selects how routed groups are persisted.
type Strategy string

const (
	// StrategyBatch writes one compressed block blob per group.
	StrategyBatch Strategy = "batch"
	// StrategyAppend appends NDJSON lines to daily append blobs.
	StrategyAppend Strategy = "append"
)

// ParseStrategy validates a configured write strategy, defaulting to batch
// when the value is empty.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyBatch:
		return StrategyBatch, nil
	case StrategyAppend:
		return StrategyAppend, nil
	}
	return "", fmt.Errorf("unknown write strategy %q", value)
}

// BlobStore is the storage surface the writer needs. Implementations must
// treat an already existing container or append blob as success so retried
// deliveries stay idempotent.
type BlobStore interface {
	EnsureContainer(ctx context.Context, container string) error
	UploadBlockBlob(ctx context.Context, container string, key string, data []byte, contentType string, contentEncoding string) error
	CreateAppendBlob(ctx context.Context, container string, key string) error
	AppendBlock(ctx context.Context, container string, key string, chunk []byte) error
	ListObjects(ctx context.Context, container string, prefix string) ([]string, error)
}

// WriterConfig carries the write behaviour of one ingestor instance.
type WriterConfig struct {
	Strategy Strategy
	// AppendBasename is the file name appended to under the daily folder.
	AppendBasename string
	// ShardByPartition adds a per-partition folder to append keys so
	// parallel receivers never append to the same blob.
	ShardByPartition bool
	// ChunkBytes caps the size of a single append operation.
	ChunkBytes int
}
