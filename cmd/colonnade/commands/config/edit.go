package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in editor",
	Long: `Open the configuration file in your editor.

Uses $VISUAL, then $EDITOR, then vi. After the editor exits the file is
re-validated so syntax errors surface immediately instead of at the next
server start.

Examples:
  colonnade config edit
  colonnade config edit --config /etc/colonnade/config.yaml`,
	RunE: runConfigEdit,
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("configuration file not found: %s\n\nCreate it first with:\n  colonnade init", configPath)
	}

	editor := preferredEditor()
	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor %s: %w", editor, err)
	}

	if _, err := config.MustLoad(configPath); err != nil {
		return fmt.Errorf("saved config does not validate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration OK")
	return nil
}

// preferredEditor picks $VISUAL, then $EDITOR, then vi.
func preferredEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "vi"
}
