package profile

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/profile"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different profile",
	Long: `Switch to a different connection profile.

The selected profile is applied whenever colsh starts without explicit
connection flags.

Examples:
  # Switch to the profile named "production"
  colsh profile use production`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileUse,
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := profile.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if err := store.Use(name); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return fmt.Errorf("profile '%s' not found\n\n"+
				"List available profiles:\n"+
				"  colsh profile list", name)
		}
		return fmt.Errorf("failed to switch profile: %w", err)
	}

	fmt.Printf("Switched to profile: %s\n", name)
	return nil
}
