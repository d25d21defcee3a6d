package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/colonnadedb/colonnade/internal/cli/health"
	"github.com/colonnadedb/colonnade/internal/cli/output"
	"github.com/colonnadedb/colonnade/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var (
	statusOutput    string
	statusPidFile   string
	statusAdminPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the Colonnade server.

This command checks the server health by calling the admin health endpoint
and displays the node lifecycle state, uptime, and connection count.

Examples:
  # Check status (uses default settings)
  colonnade status

  # Check status with custom admin port
  colonnade status --admin-port 9080

  # Output as JSON
  colonnade status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/colonnade/colonnade.pid)")
	statusCmd.Flags().IntVar(&statusAdminPort, "admin-port", 8080, "Admin API port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running     bool   `json:"running" yaml:"running"`
	PID         int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message     string `json:"message" yaml:"message"`
	StartedAt   string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime      string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Healthy     bool   `json:"healthy" yaml:"healthy"`
	State       string `json:"state,omitempty" yaml:"state,omitempty"`
	Connections int32  `json:"active_connections,omitempty" yaml:"active_connections,omitempty"`
	ClusterName string `json:"cluster_name,omitempty" yaml:"cluster_name,omitempty"`
	HostID      string `json:"host_id,omitempty" yaml:"host_id,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := ServerStatus{
		Running: false,
		Healthy: false,
		Message: "Server is not running",
	}

	if pid, err := readPidFile(resolvePidFile(statusPidFile)); err == nil && processAlive(pid) {
		status.Running = true
		status.PID = pid
	}

	// Check health endpoint (works for both daemon and foreground mode)
	healthURL := fmt.Sprintf("http://localhost:%d/healthz", statusAdminPort)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(healthURL)
	if err == nil {
		defer func() { _ = resp.Body.Close() }()

		var healthResp health.Response
		if err := json.NewDecoder(resp.Body).Decode(&healthResp); err == nil {
			status.Running = true
			status.Healthy = healthResp.Status == "healthy"
			status.StartedAt = healthResp.Data.StartedAt
			status.Uptime = healthResp.Data.Uptime
			if status.Healthy {
				status.Message = "Server is running and healthy"
			} else {
				status.Message = fmt.Sprintf("Server is running but unhealthy: %s", healthResp.Error)
			}
		} else {
			status.Running = true
			status.Message = "Server is running but health response invalid"
		}

		// Fetch the native transport state snapshot
		fetchNodeStatus(client, &status)
	} else if status.Running {
		// PID file says running but health check failed
		status.Message = "Server process exists but health check failed"
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}

	return nil
}

// fetchNodeStatus enriches the status with the native transport snapshot
// from GET /v1/status. Failures are ignored: the health check already
// established that the server is up.
func fetchNodeStatus(client *http.Client, status *ServerStatus) {
	statusURL := fmt.Sprintf("http://localhost:%d/v1/status", statusAdminPort)

	resp, err := client.Get(statusURL)
	if err != nil {
		return
	}
	defer func() { _ = resp.Body.Close() }()

	var nodeResp struct {
		Status string `json:"status"`
		Data   struct {
			State             string `json:"state"`
			ActiveConnections int32  `json:"active_connections"`
			HostID            string `json:"host_id"`
			ClusterName       string `json:"cluster_name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&nodeResp); err != nil {
		return
	}

	status.State = nodeResp.Data.State
	status.Connections = nodeResp.Data.ActiveConnections
	status.HostID = nodeResp.Data.HostID
	status.ClusterName = nodeResp.Data.ClusterName
}

func printStatusTable(status ServerStatus) {
	fmt.Println()
	fmt.Println("Colonnade Server Status")
	fmt.Println("=======================")
	fmt.Println()

	if status.Running {
		switch {
		case status.Healthy && status.State == "draining":
			fmt.Printf("  Status:      \033[33m● Running (draining)\033[0m\n")
		case status.Healthy:
			fmt.Printf("  Status:      \033[32m● Running\033[0m\n")
		default:
			fmt.Printf("  Status:      \033[33m● Running (unhealthy)\033[0m\n")
		}
		fmt.Printf("  PID:         %d\n", status.PID)
		if status.State != "" {
			fmt.Printf("  State:       %s\n", status.State)
		}
		if status.ClusterName != "" {
			fmt.Printf("  Cluster:     %s\n", status.ClusterName)
		}
		if status.HostID != "" {
			fmt.Printf("  Host ID:     %s\n", status.HostID)
		}
		if status.StartedAt != "" {
			fmt.Printf("  Started:     %s\n", timeutil.FormatTime(status.StartedAt))
		}
		if status.Uptime != "" {
			fmt.Printf("  Uptime:      %s\n", timeutil.FormatUptime(status.Uptime))
		}
		if status.Connections > 0 {
			fmt.Printf("  Connections: %d\n", status.Connections)
		}
	} else {
		fmt.Printf("  Status:      \033[31m○ Stopped\033[0m\n")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
