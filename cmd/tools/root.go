package tools

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "tools",
	Short: "Ingestor tools",
	Long: `

Small helpers to inspect what the ingestor would do with a given input`,
}

func init() {
	RootCmd.AddCommand(containerNameCMD)
	RootCmd.AddCommand(normalizeCMD)
}
