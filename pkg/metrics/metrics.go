package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "loghose"
	subsystem = "ingest"
)

var (
	// Batches counts raw batches pulled off the wire, whatever the outcome.
	Batches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "batches_total",
		Help:      "Number of raw batches processed.",
	})

	// Records counts records after payload normalization.
	Records = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_total",
		Help:      "Number of records extracted from raw batches.",
	})

	// GroupsWritten counts tenant groups successfully persisted, by write
	// strategy.
	GroupsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "groups_written_total",
		Help:      "Number of tenant groups written to object storage.",
	}, []string{"strategy"})

	// GroupWriteFailures counts tenant groups that could not be persisted.
	GroupWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "group_write_failures_total",
		Help:      "Number of tenant groups that failed to write.",
	})

	// ContainersEnsured counts container ensure calls issued to storage.
	ContainersEnsured = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "containers_ensured_total",
		Help:      "Number of container ensure calls issued to object storage.",
	})
)
