package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	stopPidFile string
	stopForce   bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Colonnade server",
	Long: `Stop a running Colonnade server.

The default SIGTERM asks the node to shut down gracefully: it stops accepting
connections, waits for in-flight requests, and closes the storage engine.
--force sends SIGKILL instead and skips all of that.

Examples:
  colonnade stop
  colonnade stop --pid-file /var/run/colonnade.pid
  colonnade stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "PID file to read (default: $XDG_STATE_HOME/colonnade/colonnade.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Send SIGKILL instead of SIGTERM")
}

func runStop(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	pidPath := resolvePidFile(stopPidFile)

	pid, err := readPidFile(pidPath)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("PID file not found: %s\n\nIs the server running?", pidPath)
	case err != nil:
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	sig, name := syscall.SIGTERM, "SIGTERM"
	if stopForce {
		sig, name = syscall.SIGKILL, "SIGKILL"
	}

	fmt.Fprintf(out, "Sending %s to process %d...\n", name, pid)
	if err := process.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			fmt.Fprintln(out, "Server already stopped")
			_ = os.Remove(pidPath)
			return nil
		}
		return fmt.Errorf("failed to send signal: %w", err)
	}

	if stopForce {
		fmt.Fprintln(out, "Server terminated")
		return nil
	}
	fmt.Fprintln(out, "Shutdown signal sent. Server will stop gracefully.")
	return nil
}
