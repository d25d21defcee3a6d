package commands

import (
	"fmt"

	"github.com/colonnadedb/colonnade/internal/admin"
	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample Colonnade configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/colonnade/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  colonnade init

  # Initialize with custom path
  colonnade init --config /etc/colonnade/config.yaml

  # Force overwrite existing config
  colonnade init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()

	var err error
	if configPath == "" {
		configPath, err = config.InitConfig(initForce)
	} else {
		err = config.InitConfigToPath(configPath, initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `Configuration file created at: %s

Next steps:
  1. Edit the configuration file to customize your setup
  2. Start the server with: colonnade start
  3. Or specify custom config: colonnade start --config %s

Security note:
  A random JWT secret has been generated for development use.
  For production, generate a secure secret and use an environment variable:
    # 64-character hex string, 32 bytes of entropy
    export %s=$(openssl rand -hex 32)

  Client authentication is disabled by default. To require it, set a
  password with 'colonnade config set-password' and enable 'auth.enabled'.
`, configPath, configPath, admin.EnvAdminSecret)
	return nil
}
