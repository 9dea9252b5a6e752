package ingestor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	pkgCmd "github.com/entropyworks/loghose/pkg/cmd"
	"github.com/entropyworks/loghose/pkg/ingestion"
)

var replayCMD = &cobra.Command{
	Use:   "replay [file]",
	Short: "Replay one raw batch through the pipeline",
	Long: `
Reads a raw payload from a file (or stdin when the file is "-") and runs it
through the same normalize, route and write path the listeners use. Passing
the original offset and partition keeps the object keys identical to the
original delivery, so the replay overwrites instead of duplicating.

	LOG_STORAGE_CONNECTION="..." \
	go run main.go ingestor replay --partition-id 0 --offset 12345 batch.json
	`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetOutput(os.Stdout)

		logContext := logrus.StandardLogger()

		body, err := readPayload(args[0])
		if err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
				"file":  args[0],
			}).Fatal("reading payload")
		}

		metadata := map[string]interface{}{}
		if partitionID, _ := cmd.Flags().GetString("partition-id"); partitionID != "" {
			metadata["PartitionId"] = partitionID
		}
		if offset, _ := cmd.Flags().GetString("offset"); offset != "" {
			metadata["offset"] = offset
		}
		if sequenceNumber, _ := cmd.Flags().GetString("sequence-number"); sequenceNumber != "" {
			metadata["sequence_number"] = sequenceNumber
		}

		pipeline, _, _ := buildPipeline(logContext)

		summary, err := pipeline.Process(context.Background(), ingestion.Batch{
			Body:     body,
			Metadata: metadata,
		})
		if err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
			}).Fatal("replaying batch")
		}

		output, _ := json.Marshal(summary)
		fmt.Println(string(output))
	},
}

func readPayload(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func init() {
	RootCmd.AddCommand(replayCMD)

	replayCMD.Flags().String("partition-id", "", "Partition the batch originally came from")
	replayCMD.Flags().String("offset", "", "Broker offset of the batch, keeps object keys stable")
	replayCMD.Flags().String("sequence-number", "", "Broker sequence number of the batch")
	pkgCmd.SetupStringConfiguration(replayCMD, "ingestor.storage.strategy", "strategy", "WRITE_STRATEGY", "batch", "Write strategy (batch or append)")
}
