package profile

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/output"
	"github.com/colonnadedb/colonnade/internal/cli/profile"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the selected profile",
	Long: `Display information about the currently selected profile.

Examples:
  # Show the selected profile
  colsh profile current

  # Show as JSON
  colsh profile current -o json`,
	RunE: runProfileCurrent,
}

func runProfileCurrent(cmd *cobra.Command, args []string) error {
	store, err := profile.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	name := store.GetCurrentName()
	if name == "" {
		return fmt.Errorf("no profile selected\n\n" +
			"Create one first:\n" +
			"  colsh profile set local --host 127.0.0.1")
	}

	p, err := store.Get(name)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	info := ProfileInfo{
		Name:        name,
		Current:     true,
		Address:     p.Addr(),
		Username:    p.Username,
		Consistency: p.Consistency,
	}

	formatStr, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	default:
		fmt.Printf("Current profile: %s\n", name)
		fmt.Printf("  Address:     %s\n", p.Addr())
		if p.Username != "" {
			fmt.Printf("  User:        %s\n", p.Username)
		}
		if p.Consistency != "" {
			fmt.Printf("  Consistency: %s\n", p.Consistency)
		}
		if p.Output != "" {
			fmt.Printf("  Output:      %s\n", p.Output)
		}
	}

	return nil
}
