// Package profile implements profile management subcommands for colsh.
package profile

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/output"
)

// Cmd is the profile subcommand.
var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage connection profiles",
	Long: `Manage named connection profiles for multiple Colonnade nodes.

Profiles save a host, port, username, and rendering preferences so you can
switch between nodes without retyping flags. The selected profile is applied
whenever colsh starts; explicit flags always win. Passwords are never stored.

Subcommands:
  list     List all configured profiles
  current  Show the selected profile
  set      Create or update a profile
  use      Switch to a different profile
  rename   Rename a profile
  delete   Delete a profile`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(deleteCmd)
}

// printOutput renders data in the format selected by the inherited --output
// flag. Table format shows emptyMsg when there is nothing to list; JSON and
// YAML marshal the data as-is.
func printOutput(cmd *cobra.Command, w io.Writer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	formatStr, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, table)
	}
}
