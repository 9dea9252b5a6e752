package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/entropyworks/loghose/pkg/ingestion"
	"github.com/entropyworks/loghose/pkg/metrics"
)

const defaultAppendBasename = "console.ndjson"

// Writer persists routed groups using the configured strategy.
//
// All caches live per call: nothing carries over between delivery
// attempts, so every attempt derives the same containers and object keys
// from its input alone.
type Writer struct {
	logContext logrus.FieldLogger
	store      BlobStore
	config     WriterConfig
}

func NewWriter(logContext logrus.FieldLogger, store BlobStore, config WriterConfig) *Writer {
	if config.Strategy == "" {
		config.Strategy = StrategyBatch
	}
	if config.AppendBasename == "" {
		config.AppendBasename = defaultAppendBasename
	}
	if config.ChunkBytes <= 0 || config.ChunkBytes > azblob.AppendBlobMaxAppendBlockBytes {
		config.ChunkBytes = azblob.AppendBlobMaxAppendBlockBytes
	}

	return &Writer{
		logContext: logContext,
		store:      store,
		config:     config,
	}
}

// WriteGroups writes every group, continuing past individual failures so
// one bad tenant cannot hold back the rest of the batch. The returned
// error aggregates the tenants that failed; written and failed always add
// up to the number of groups.
func (w *Writer) WriteGroups(ctx context.Context, groups []*ingestion.Group, delivery ingestion.Delivery, now time.Time) (ingestion.WriteReport, error) {
	report := ingestion.WriteReport{}
	ensured := map[string]bool{}
	created := map[string]bool{}
	var failed []string

	for _, group := range groups {
		if err := w.writeGroup(ctx, group, delivery, now, ensured, created); err != nil {
			w.logContext.WithFields(logrus.Fields{
				"error":     err,
				"tenant":    group.Tenant,
				"container": group.Container,
			}).Error("writing group")
			metrics.GroupWriteFailures.Inc()
			report.Failed++
			failed = append(failed, group.Tenant)
			continue
		}
		metrics.GroupsWritten.WithLabelValues(string(w.config.Strategy)).Inc()
		report.Written++
	}

	if len(failed) > 0 {
		return report, fmt.Errorf("failed to write %d of %d group(s): %s", len(failed), len(groups), strings.Join(failed, ", "))
	}
	return report, nil
}

func (w *Writer) writeGroup(ctx context.Context, group *ingestion.Group, delivery ingestion.Delivery, now time.Time, ensured map[string]bool, created map[string]bool) error {
	if !ensured[group.Container] {
		if err := w.store.EnsureContainer(ctx, group.Container); err != nil {
			return err
		}
		metrics.ContainersEnsured.Inc()
		ensured[group.Container] = true
	}

	lines, err := encodeLines(group.Records)
	if err != nil {
		return err
	}

	if w.config.Strategy == StrategyAppend {
		return w.appendGroup(ctx, group, delivery, lines, created)
	}
	return w.uploadGroup(ctx, group, delivery, now, lines)
}

func (w *Writer) uploadGroup(ctx context.Context, group *ingestion.Group, delivery ingestion.Delivery, now time.Time, lines []byte) error {
	key := BatchObjectKey(group.Bucket, delivery.PartitionID, delivery.Offset, now)

	compressed, err := compress(lines)
	if err != nil {
		return err
	}

	return w.store.UploadBlockBlob(ctx, group.Container, key, compressed, "application/x-ndjson", "gzip")
}

func (w *Writer) appendGroup(ctx context.Context, group *ingestion.Group, delivery ingestion.Delivery, lines []byte, created map[string]bool) error {
	key := AppendObjectKey(group.Bucket, delivery.PartitionID, w.config.AppendBasename, w.config.ShardByPartition)

	target := group.Container + "/" + key
	if !created[target] {
		if err := w.store.CreateAppendBlob(ctx, group.Container, key); err != nil {
			return err
		}
		created[target] = true
	}

	for _, chunk := range splitChunks(lines, w.config.ChunkBytes) {
		if err := w.store.AppendBlock(ctx, group.Container, key, chunk); err != nil {
			return err
		}
	}
	return nil
}

func encodeLines(records []ingestion.Envelope) ([]byte, error) {
	var buffer bytes.Buffer
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		buffer.Write(line)
		buffer.WriteByte('\n')
	}
	return buffer.Bytes(), nil
}

// compress gzips the buffer with a zeroed header, so identical input gives
// identical bytes and a retried upload replaces the blob with an exact
// copy.
func compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// splitChunks cuts the NDJSON buffer into append-sized chunks, breaking at
// line boundaries so records never straddle two append operations. A
// single line larger than the limit is split anyway rather than dropped.
func splitChunks(lines []byte, limit int) [][]byte {
	if len(lines) == 0 {
		return nil
	}
	if len(lines) <= limit {
		return [][]byte{lines}
	}

	var chunks [][]byte
	rest := lines
	for len(rest) > limit {
		cut := bytes.LastIndexByte(rest[:limit], '\n')
		if cut == -1 {
			cut = limit - 1
		}
		chunks = append(chunks, rest[:cut+1])
		rest = rest[cut+1:]
	}
	if len(rest) > 0 {
		chunks = append(chunks, rest)
	}
	return chunks
}
