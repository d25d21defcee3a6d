package profile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/output"
	"github.com/colonnadedb/colonnade/internal/cli/profile"
	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

var setFlags struct {
	host        string
	port        int
	username    string
	consistency string
	output      string
	use         bool
}

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or update a profile",
	Long: `Create a new connection profile or update an existing one.

Only the flags you pass are stored; setting an existing profile again
replaces it entirely. Passwords are never stored - colsh prompts when the
node requires one.

Examples:
  # A local node
  colsh profile set local --host 127.0.0.1

  # A remote node with authentication, selected immediately
  colsh profile set production --host db.example.com --username colonnade --use`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSet,
}

func init() {
	setCmd.Flags().StringVar(&setFlags.host, "host", "", "Server host (required)")
	setCmd.Flags().IntVar(&setFlags.port, "port", 0, "Native protocol port (default 9052)")
	setCmd.Flags().StringVarP(&setFlags.username, "username", "u", "", "Username for authentication")
	setCmd.Flags().StringVar(&setFlags.consistency, "consistency", "", "Consistency level attached to queries")
	setCmd.Flags().StringVar(&setFlags.output, "format", "", "Preferred output format (table|json|yaml)")
	setCmd.Flags().BoolVar(&setFlags.use, "use", false, "Select this profile after saving")

	_ = setCmd.MarkFlagRequired("host")
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	if setFlags.consistency != "" {
		if _, err := native.ParseConsistency(setFlags.consistency); err != nil {
			return err
		}
	}
	if setFlags.output != "" {
		if _, err := output.ParseFormat(setFlags.output); err != nil {
			return err
		}
	}

	store, err := profile.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	p := &profile.Profile{
		Host:        setFlags.host,
		Port:        setFlags.port,
		Username:    setFlags.username,
		Consistency: setFlags.consistency,
		Output:      setFlags.output,
	}
	if err := store.Set(name, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if setFlags.use && store.GetCurrentName() != name {
		if err := store.Use(name); err != nil {
			return fmt.Errorf("failed to select profile: %w", err)
		}
	}

	fmt.Printf("Profile saved: %s (%s)\n", name, p.Addr())
	if store.GetCurrentName() == name {
		fmt.Println("This profile is selected and will be applied when colsh starts.")
	}
	return nil
}
