package profile

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/cli/profile"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all configured connection profiles.

Shows the profile name, node address, and username for each saved profile.
The selected profile is marked with an asterisk (*).

Examples:
  # List profiles as table
  colsh profile list

  # List as JSON
  colsh profile list -o json`,
	RunE: runProfileList,
}

// ProfileInfo represents profile information for output.
type ProfileInfo struct {
	Name        string `json:"name" yaml:"name"`
	Current     bool   `json:"current" yaml:"current"`
	Address     string `json:"address" yaml:"address"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	Consistency string `json:"consistency,omitempty" yaml:"consistency,omitempty"`
}

// ProfileList is a list of profiles for table rendering.
type ProfileList []ProfileInfo

// Headers implements TableRenderer.
func (pl ProfileList) Headers() []string {
	return []string{"", "NAME", "ADDRESS", "USER", "CONSISTENCY"}
}

// Rows implements TableRenderer.
func (pl ProfileList) Rows() [][]string {
	rows := make([][]string, 0, len(pl))
	for _, p := range pl {
		current := ""
		if p.Current {
			current = "*"
		}
		rows = append(rows, []string{current, p.Name, p.Address, p.Username, p.Consistency})
	}
	return rows
}

func runProfileList(cmd *cobra.Command, args []string) error {
	store, err := profile.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	names := store.List()
	currentName := store.GetCurrentName()

	profiles := make(ProfileList, 0, len(names))
	for _, name := range names {
		p, err := store.Get(name)
		if err != nil {
			continue
		}

		profiles = append(profiles, ProfileInfo{
			Name:        name,
			Current:     name == currentName,
			Address:     p.Addr(),
			Username:    p.Username,
			Consistency: p.Consistency,
		})
	}

	return printOutput(cmd, os.Stdout, profiles, len(profiles) == 0,
		"No profiles configured. Use 'colsh profile set <name> --host <host>' to create one.", profiles)
}
