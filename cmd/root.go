package cmd

import (
	"github.com/entropyworks/loghose/cmd/ingestor"
	"github.com/entropyworks/loghose/cmd/tools"
	"github.com/spf13/cobra"

	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "loghose",
	Short: "Loghose",
	Long:  `Entry point to the services and tools that move diagnostic logs into per-tenant object storage`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	viper.AutomaticEnv()
	rootCmd.AddCommand(ingestor.RootCmd)
	rootCmd.AddCommand(tools.RootCmd)
}
