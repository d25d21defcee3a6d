package profile

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/profile"
	"github.com/colonnadedb/colonnade/internal/cli/prompt"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Long: `Delete a connection profile.

If the profile is currently selected, the selection is cleared.

Examples:
  # Delete the profile named "staging"
  colsh profile delete staging

  # Delete without confirmation
  colsh profile delete staging --force`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := profile.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if _, err := store.Get(name); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return fmt.Errorf("profile '%s' not found", name)
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}

	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete profile '%s'?", name), deleteForce)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := store.Delete(name); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	fmt.Printf("Profile deleted: %s\n", name)
	return nil
}
