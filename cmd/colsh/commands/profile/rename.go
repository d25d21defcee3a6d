package profile

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/profile"
)

var renameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a profile",
	Long: `Rename an existing connection profile.

Examples:
  # Rename profile from "default" to "production"
  colsh profile rename default production`,
	Args: cobra.ExactArgs(2),
	RunE: runProfileRename,
}

func runProfileRename(cmd *cobra.Command, args []string) error {
	oldName := args[0]
	newName := args[1]

	store, err := profile.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if err := store.Rename(oldName, newName); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return fmt.Errorf("profile '%s' not found", oldName)
		}
		return fmt.Errorf("failed to rename profile: %w", err)
	}

	fmt.Printf("Profile renamed: %s -> %s\n", oldName, newName)
	return nil
}
