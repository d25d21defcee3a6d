// Package config implements the config subcommand tree: inspecting,
// validating, and editing the server configuration file.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand, registered by the root command.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect and manage Colonnade configuration files. Create one first with
'colonnade init'.

Subcommands:
  show          Print the effective configuration
  validate      Check a configuration file
  edit          Open the configuration in an editor
  schema        Emit the configuration JSON schema
  set-password  Set the native protocol password hash`,
}

func init() {
	Cmd.AddCommand(showCmd, validateCmd, editCmd, schemaCmd, setPasswordCmd)
}
