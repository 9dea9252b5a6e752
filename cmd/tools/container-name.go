package tools

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entropyworks/loghose/pkg/cmd"
	"github.com/entropyworks/loghose/pkg/ingestion"
)

var containerNameCMD = &cobra.Command{
	Use:   "container-name [fqdn]",
	Short: "Print the container name derived for a tenant",
	Long: `
Prints the container a tenant's records land in, applying the same
normalization the ingestor uses.

	go run main.go tools container-name example.com
	`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prefix := viper.GetString("tools.containername.prefix")
		fmt.Println(ingestion.ContainerNameFor(prefix, args[0]))
	},
}

func init() {
	cmd.SetupStringConfiguration(containerNameCMD, "tools.containername.prefix", "prefix", "LOG_CONTAINER_PREFIX", "logs-", "Container name prefix")
}
