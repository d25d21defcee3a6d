// Package commands implements the colsh interactive shell.
package commands

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	profilecmd "github.com/colonnadedb/colonnade/cmd/colsh/commands/profile"
	"github.com/colonnadedb/colonnade/internal/cli/output"
	"github.com/colonnadedb/colonnade/internal/cli/profile"
	"github.com/colonnadedb/colonnade/internal/cli/prompt"
	"github.com/colonnadedb/colonnade/pkg/client"
	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// Build-time version information, overridden via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var flags struct {
	host           string
	port           int
	username       string
	password       string
	execute        string
	file           string
	consistency    string
	timeout        time.Duration
	connectTimeout time.Duration
	profile        string
	output         string
	noColor        bool
}

// rootCmd is the shell itself: running colsh without a subcommand connects
// to a node and starts the REPL.
var rootCmd = &cobra.Command{
	Use:   "colsh",
	Short: "Interactive shell for Colonnade",
	Long: `colsh is the command-line shell for Colonnade.

Without arguments it connects to a node over the native protocol and starts
an interactive session. Statements are terminated with ';' and may span
multiple lines. Use --execute for one-off statements or --file to run a
script non-interactively.

Use "colsh [command] --help" for more information about a command.`,
	Example: `  # Interactive session against a local node
  colsh

  # Run a single statement
  colsh -e "SELECT * FROM users WHERE key = 'alice';"

  # Run a script against a remote node with authentication
  colsh --host db.example.com -u colonnade -f schema.col`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runShell,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&flags.host, "host", "127.0.0.1", "Server host to connect to")
	rootCmd.Flags().IntVar(&flags.port, "port", native.DefaultPort, "Native protocol port")
	rootCmd.Flags().StringVarP(&flags.username, "username", "u", "", "Username for authentication")
	rootCmd.Flags().StringVarP(&flags.password, "password", "p", "", "Password for authentication (prompted when omitted)")
	rootCmd.Flags().StringVarP(&flags.execute, "execute", "e", "", "Execute the given statements and exit")
	rootCmd.Flags().StringVarP(&flags.file, "file", "f", "", "Execute statements from a file and exit")
	rootCmd.Flags().StringVar(&flags.consistency, "consistency", "ONE", "Consistency level attached to queries")
	rootCmd.Flags().DurationVar(&flags.timeout, "timeout", client.DefaultRequestTimeout, "Request timeout")
	rootCmd.Flags().DurationVar(&flags.connectTimeout, "connect-timeout", client.DefaultDialTimeout, "Connection timeout")
	rootCmd.Flags().StringVar(&flags.profile, "profile", "", "Connection profile to use (see 'colsh profile')")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(profilecmd.Cmd)

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// applyProfile overlays stored profile values onto connection flags the
// user did not set explicitly. Profiles are optional: with no --profile and
// no selected profile this is a no-op.
func applyProfile(cmd *cobra.Command) error {
	store, err := profile.NewStore()
	if err != nil {
		if flags.profile == "" {
			return nil
		}
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	name := flags.profile
	if name == "" {
		name = store.GetCurrentName()
		if name == "" {
			return nil
		}
	}

	p, err := store.Get(name)
	if err != nil {
		if flags.profile == "" {
			return nil
		}
		return fmt.Errorf("profile '%s' not found\n\n"+
			"List available profiles:\n"+
			"  colsh profile list", name)
	}

	f := cmd.Flags()
	if !f.Changed("host") && p.Host != "" {
		flags.host = p.Host
	}
	if !f.Changed("port") && p.Port != 0 {
		flags.port = p.Port
	}
	if !f.Changed("username") && p.Username != "" {
		flags.username = p.Username
	}
	if !f.Changed("consistency") && p.Consistency != "" {
		flags.consistency = p.Consistency
	}
	if !f.Changed("output") && p.Output != "" {
		flags.output = p.Output
	}
	return nil
}

func runShell(cmd *cobra.Command, args []string) error {
	if err := applyProfile(cmd); err != nil {
		return err
	}

	format, err := output.ParseFormat(flags.output)
	if err != nil {
		return err
	}

	consistency, err := native.ParseConsistency(flags.consistency)
	if err != nil {
		return err
	}

	password := flags.password
	if flags.username != "" && password == "" {
		password, err = prompt.Password("Password")
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
	}

	addr := net.JoinHostPort(flags.host, strconv.Itoa(flags.port))
	conn, err := client.Dial(addr, client.Options{
		Username:       flags.username,
		Password:       password,
		Consistency:    consistency,
		DialTimeout:    flags.connectTimeout,
		RequestTimeout: flags.timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	sh := &shell{
		client:  conn,
		printer: output.NewPrinter(os.Stdout, format, !flags.noColor),
		addr:    addr,
	}

	switch {
	case flags.execute != "":
		return sh.runScript(strings.NewReader(flags.execute))
	case flags.file != "":
		f, err := os.Open(flags.file)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer func() { _ = f.Close() }()
		return sh.runScript(f)
	default:
		return sh.runInteractive()
	}
}
