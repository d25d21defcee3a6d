// Package commands implements the CLI commands for colonnade server management.
package commands

import (
	"github.com/colonnadedb/colonnade/cmd/colonnade/commands/config"
	"github.com/spf13/cobra"
)

// Build-time version information, overridden via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// cfgFile holds the global --config flag.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "colonnade",
	Short: "Colonnade - Table-oriented key-value store",
	Long: `Colonnade is a single-node table-oriented key-value store. Clients talk
to it over a compact binary protocol with typed error codes; tables are
served from an in-memory or badger-backed engine.

Use "colonnade [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/colonnade/config.yaml)")

	rootCmd.AddCommand(
		versionCmd,
		startCmd,
		initCmd,
		stopCmd,
		statusCmd,
		logsCmd,
		config.Cmd,
		completionCmd,
	)

	// Ship our own completion command instead of cobra's default.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
