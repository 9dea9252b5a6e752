package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/entropyworks/loghose/pkg/ingestion"
)

var normalizeCMD = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Print the records extracted from a raw payload",
	Long: `
Reads a raw payload from a file (or stdin when the file is "-") and prints
the normalized records as NDJSON, exactly as the ingestor sees them.

	cat batch.json | go run main.go tools normalize -
	`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var payload []byte
		var err error
		if args[0] == "-" {
			payload, err = io.ReadAll(os.Stdin)
		} else {
			payload, err = os.ReadFile(args[0])
		}
		if err != nil {
			log.Fatal(err)
		}

		for _, record := range ingestion.NormalizeRecords(payload) {
			line, err := json.Marshal(record)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(string(line))
		}
	},
}
