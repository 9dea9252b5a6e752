package ingestor

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "ingestor",
	Short: "Diagnostic log ingestor",
	Long:  ``,
}
