package config

import (
	"fmt"

	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the Colonnade configuration file.

Checks for syntax errors, missing required fields, and invalid values, and
warns about settings that load fine but are probably unintended.

Examples:
  # Validate default config
  colonnade config validate

  # Validate specific config file
  colonnade config validate --config /etc/colonnade/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	fmt.Fprintln(out, "Validation: OK")

	if warnings := lintConfig(cfg); len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	fmt.Fprintf(out, "\nConfiguration summary:\n")
	fmt.Fprintf(out, "  Storage engine:  %s\n", cfg.Storage.Engine)
	fmt.Fprintf(out, "  Native port:     %d\n", cfg.Server.Port)
	fmt.Fprintf(out, "  Admin port:      %d\n", cfg.Admin.Port)
	fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}

// lintConfig flags valid settings that rarely make sense outside development.
func lintConfig(cfg *config.Config) []string {
	var warnings []string
	if !cfg.Admin.HasJWTSecret() {
		warnings = append(warnings, "JWT secret not configured - the admin API will refuse to start")
	}
	if cfg.Storage.Engine == "memory" {
		warnings = append(warnings, "Storage engine 'memory' is not persistent - data is lost on restart")
	}
	if !cfg.Auth.Enabled {
		warnings = append(warnings, "Client authentication is disabled - any client can connect")
	}
	return warnings
}
