package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/entropyworks/loghose/pkg/metrics"
)

// Summary describes one delivery attempt end to end.
type Summary struct {
	Invocation string `json:"invocation"`
	Records    int    `json:"records"`
	Groups     int    `json:"groups"`
	Written    int    `json:"written"`
	Failed     int    `json:"failed"`
}

// Pipeline ties payload normalization, routing and writing together for a
// single delivery attempt.
type Pipeline struct {
	logContext logrus.FieldLogger
	router     *Router
	writer     GroupWriter
	now        func() time.Time
}

func NewPipeline(logContext logrus.FieldLogger, router *Router, writer GroupWriter) *Pipeline {
	return &Pipeline{
		logContext: logContext,
		router:     router,
		writer:     writer,
		now:        time.Now,
	}
}

// Process handles one raw batch: normalize the payload, route the records
// into tenant groups and hand the groups to the writer. Processing the same
// batch again produces the same object keys and contents, so redelivery by
// the broker is safe.
//
// The returned error reflects write failures only; malformed payloads never
// fail, they degrade to raw records.
func (p *Pipeline) Process(ctx context.Context, batch Batch) (Summary, error) {
	invocation := uuid.New().String()
	now := p.now().UTC()

	logContext := p.logContext.WithFields(logrus.Fields{
		"invocation": invocation,
	})

	records := NormalizeRecords(batch.Body)
	delivery := DeliveryFromMetadata(batch.Metadata)
	groups := p.router.Route(records, delivery, now)

	metrics.Batches.Inc()
	metrics.Records.Add(float64(len(records)))

	report, err := p.writer.WriteGroups(ctx, groups, delivery, now)

	summary := Summary{
		Invocation: invocation,
		Records:    len(records),
		Groups:     len(groups),
		Written:    report.Written,
		Failed:     report.Failed,
	}

	logContext.WithFields(logrus.Fields{
		"records":   summary.Records,
		"groups":    summary.Groups,
		"written":   summary.Written,
		"failed":    summary.Failed,
		"partition": delivery.PartitionID,
		"offset":    delivery.Offset,
	}).Info("processed batch")

	return summary, err
}
