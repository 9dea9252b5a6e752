package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SetupStringConfiguration wires one setting through viper and cobra in one
// go: default value, environment variable, command line flag.
func SetupStringConfiguration(cmd *cobra.Command, key, flag, envVarName, defaultValue, description string) {
	viper.SetDefault(key, defaultValue)
	viper.BindEnv(key, envVarName)
	cmd.PersistentFlags().String(flag, defaultValue, description)
	viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
}
