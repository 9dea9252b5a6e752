package ingestion

import (
	"context"
	"time"
)

// Record is one normalized log entry as delivered in a batch payload.
type Record map[string]interface{}

// Batch is one raw payload plus the delivery metadata the transport handed
// us alongside it. The metadata shape varies between transports and
// transport versions, so it stays an untyped map until the delivery
// adapter has picked it apart.
type Batch struct {
	Body     []byte
	Metadata map[string]interface{}
}

// Delivery is the best-effort view of a batch's delivery metadata. Empty
// fields mean the transport did not provide the value.
type Delivery struct {
	PartitionID    string
	Offset         string
	SequenceNumber string
}

// Envelope is the NDJSON line written to storage for one record.
type Envelope struct {
	TimeUTC        string  `json:"time_utc"`
	FQDN           string  `json:"fqdn"`
	PartitionID    *string `json:"partition_id"`
	Offset         *string `json:"offset"`
	SequenceNumber *string `json:"sequence_number"`
	Message        string  `json:"message"`
	Record         Record  `json:"record,omitempty"`
}

// Group is the unit of durability: every envelope sharing a tenant and an
// hour bucket within one invocation, destined for exactly one storage
// object (batch strategy) or one daily append target (append strategy).
type Group struct {
	Tenant    string
	Container string
	Bucket    time.Time
	Records   []Envelope
}

// WriteReport summarises what a GroupWriter managed to persist.
type WriteReport struct {
	Written int
	Failed  int
}

type GroupWriter interface {
	WriteGroups(ctx context.Context, groups []*Group, delivery Delivery, now time.Time) (WriteReport, error)
}
