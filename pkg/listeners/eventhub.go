package listeners

import (
	"context"

	eventhub "github.com/Azure/azure-event-hubs-go/v3"
	"github.com/Azure/azure-event-hubs-go/v3/persist"
	"github.com/sirupsen/logrus"

	"github.com/entropyworks/loghose/pkg/ingestion"
)

// EventHubConfig carries the connection details for one event hub.
type EventHubConfig struct {
	ConnectionString string
	ConsumerGroup    string
	// CheckpointDir persists partition offsets to disk. When empty the
	// receivers start from the latest offset instead.
	CheckpointDir string
}

// ListenToEventHub receives from every partition of the hub and runs each
// event through the pipeline. A write failure stops that partition's
// receiver without checkpointing, so the event is delivered again after a
// restart; the writer's deterministic object keys make the redelivery
// harmless.
func ListenToEventHub(ctx context.Context, logContext logrus.FieldLogger, config EventHubConfig, pipeline *ingestion.Pipeline) (*eventhub.Hub, error) {
	var options []eventhub.HubOption
	if config.CheckpointDir != "" {
		persister, err := persist.NewFilePersister(config.CheckpointDir)
		if err != nil {
			return nil, err
		}
		options = append(options, eventhub.HubWithOffsetPersistence(persister))
	}

	hub, err := eventhub.NewHubFromConnectionString(config.ConnectionString, options...)
	if err != nil {
		return nil, err
	}

	info, err := hub.GetRuntimeInformation(ctx)
	if err != nil {
		return nil, err
	}

	consumerGroup := config.ConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "$Default"
	}

	for _, partitionID := range info.PartitionIDs {
		partitionID := partitionID

		handler := func(ctx context.Context, event *eventhub.Event) error {
			_, err := pipeline.Process(ctx, ingestion.Batch{
				Body:     event.Data,
				Metadata: deliveryMetadata(partitionID, event),
			})
			return err
		}

		receiveOptions := []eventhub.ReceiveOption{
			eventhub.ReceiveWithConsumerGroup(consumerGroup),
		}
		if config.CheckpointDir == "" {
			receiveOptions = append(receiveOptions, eventhub.ReceiveWithLatestOffset())
		}

		if _, err := hub.Receive(ctx, partitionID, handler, receiveOptions...); err != nil {
			hub.Close(ctx)
			return nil, err
		}

		logContext.WithFields(logrus.Fields{
			"partition":      partitionID,
			"consumer_group": consumerGroup,
		}).Info("receiving from partition")
	}

	return hub, nil
}

// deliveryMetadata flattens the broker's system properties into the shape
// the delivery adapter reads. The receiving partition is authoritative;
// the event's own system properties only carry offset and sequence.
func deliveryMetadata(partitionID string, event *eventhub.Event) map[string]interface{} {
	systemProperties := map[string]interface{}{}
	if event.SystemProperties != nil {
		if event.SystemProperties.Offset != nil {
			systemProperties["offset"] = *event.SystemProperties.Offset
		}
		if event.SystemProperties.SequenceNumber != nil {
			systemProperties["sequence_number"] = *event.SystemProperties.SequenceNumber
		}
	}

	return map[string]interface{}{
		"PartitionId":      partitionID,
		"SystemProperties": systemProperties,
	}
}
