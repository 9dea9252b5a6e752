package listeners

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/stan.go"
	"github.com/sirupsen/logrus"

	"github.com/entropyworks/loghose/pkg/ingestion"
)

// SetupStan connects to the NATS Streaming server, failing hard when the
// log is unreachable since the ingestor cannot run without its source.
func SetupStan(logContext logrus.FieldLogger, natsServer string, clusterID string, clientID string) stan.Conn {
	opts := []nats.Option{nats.Name("loghose-ingestor")}
	logContext = logContext.WithFields(logrus.Fields{
		"context":    "loghose-ingestor",
		"cluster_id": clusterID,
		"client_id":  clientID,
	})

	logContext.Info("Connecting to NATS Server...")
	nc, err := nats.Connect(natsServer, opts...)

	if err != nil {
		panic(err)
	}

	logContext.Info("Connecting to NATS Streaming Server...")
	sc, err := stan.Connect(clusterID, clientID,
		stan.NatsConn(nc),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			logContext.Fatalf("Connection lost, reason: %v", reason)
		}),
		stan.Pings(10, 5),
	)

	if err != nil {
		logContext.Fatalf("Can't connect: %v.\nMake sure a NATS Streaming Server is running at: %s", err, nc.Opts.Url)
	}

	return sc
}

// ListenToStan feeds the pipeline from a durable, manually acknowledged
// subscription. A message is acknowledged only after the writer succeeded,
// so the streaming server redelivers anything a crashed or failing
// ingestor left behind.
func ListenToStan(ctx context.Context, logContext logrus.FieldLogger, sc stan.Conn, topic string, durableName string, pipeline *ingestion.Pipeline) (stan.Subscription, error) {
	logContext = logContext.WithFields(logrus.Fields{
		"topic":   topic,
		"durable": durableName,
	})

	handle := func(msg *stan.Msg) {
		batch := ingestion.Batch{
			Body: msg.Data,
			Metadata: map[string]interface{}{
				"sequence_number": msg.Sequence,
			},
		}

		if _, err := pipeline.Process(ctx, batch); err != nil {
			logContext.WithFields(logrus.Fields{
				"error":    err,
				"sequence": msg.Sequence,
			}).Error("batch not acknowledged")
			return
		}

		if err := msg.Ack(); err != nil {
			logContext.WithFields(logrus.Fields{
				"error":    err,
				"sequence": msg.Sequence,
			}).Error("acknowledging message")
		}
	}

	return sc.Subscribe(
		topic,
		handle,
		stan.DurableName(durableName),
		stan.SetManualAckMode(),
		stan.MaxInflight(1),
		stan.DeliverAllAvailable(),
	)
}
