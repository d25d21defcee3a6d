package config

import (
	"fmt"
	"os"

	"github.com/colonnadedb/colonnade/internal/auth"
	"github.com/colonnadedb/colonnade/internal/cli/prompt"
	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/spf13/cobra"
)

var (
	setPasswordValue    string
	setPasswordUsername string
)

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Set the native protocol password hash",
	Long: `Set the password clients must present on the native protocol.

The password is bcrypt-hashed and stored in the configuration file; the
plaintext is never written to disk. Authentication is only enforced when
'auth.enabled' is set to true in the configuration.

Note: this command rewrites the configuration file with the effective
configuration, so comments in the file are not preserved.

Examples:
  # Set password interactively
  colonnade config set-password

  # Set password with flag (less secure)
  colonnade config set-password --password secret

  # Change the expected username as well
  colonnade config set-password --username operator`,
	RunE: runSetPassword,
}

func init() {
	setPasswordCmd.Flags().StringVarP(&setPasswordValue, "password", "p", "", "New password (prompts if not provided)")
	setPasswordCmd.Flags().StringVarP(&setPasswordUsername, "username", "u", "", "Username clients must authenticate as (default: keep current)")
}

func runSetPassword(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	// The hash has to land in a file; require one instead of silently
	// materializing a config from defaults.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("configuration file not found: %s\n\nCreate one first with 'colonnade init'", configPath)
	}

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Get password interactively if not provided
	password := setPasswordValue
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("New password", "Confirm password", 8)
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cfg.Auth.PasswordHash = hash
	if setPasswordUsername != "" {
		cfg.Auth.Username = setPasswordUsername
	}

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Password hash updated for user '%s'\n", cfg.Auth.Username)
	if !cfg.Auth.Enabled {
		fmt.Println("\nAuthentication is currently disabled. Enable it by setting")
		fmt.Println("'auth.enabled: true' in the configuration and restarting the server.")
	}

	return nil
}
