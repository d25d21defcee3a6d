package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/colonnadedb/colonnade/internal/admin"
	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/internal/query"
	"github.com/colonnadedb/colonnade/internal/server"
	"github.com/colonnadedb/colonnade/internal/telemetry"
	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/colonnadedb/colonnade/pkg/metrics"
	"github.com/colonnadedb/colonnade/pkg/metrics/prometheus"
	"github.com/colonnadedb/colonnade/pkg/storage"
	"github.com/colonnadedb/colonnade/pkg/storage/badger"
	"github.com/colonnadedb/colonnade/pkg/storage/memory"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Colonnade server",
	Long: `Start the Colonnade server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/colonnade/config.yaml.

Examples:
  # Start in background (default)
  colonnade start

  # Start in foreground
  colonnade start --foreground

  # Start with custom config file
  colonnade start --config /etc/colonnade/config.yaml

  # Start with environment variable overrides
  COLONNADE_LOGGING_LEVEL=DEBUG colonnade start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/colonnade/colonnade.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/colonnade/colonnade.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "colonnade",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "colonnade",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("Colonnade - A table-oriented key-value store")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics (if enabled)
	var metricsServer *metrics.HTTPServer
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewHTTPServer(cfg.Metrics.Port)
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Open the storage engine
	store, badgerStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage engine: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Storage engine close error", "error", err)
		}
	}()

	// Host identity is regenerated on every boot; nothing in the wire
	// protocol requires it to be stable across restarts.
	hostID := uuid.NewString()

	listenAddress := cfg.Server.BindAddress
	if listenAddress == "" {
		listenAddress = "0.0.0.0"
	}

	executor := query.NewExecutor(store, query.Options{
		ReadTimeout:  cfg.Server.ReadRequestTimeout,
		WriteTimeout: cfg.Server.WriteRequestTimeout,
		Local: query.LocalInfo{
			HostID:         hostID,
			ClusterName:    cfg.ClusterName,
			ReleaseVersion: Version,
			ListenAddress:  listenAddress,
		},
	})

	// Configure authentication for the native transport
	var authenticator server.Authenticator
	if cfg.Auth.Enabled {
		authenticator = server.NewPasswordAuthenticator(cfg.Auth.Username, cfg.Auth.PasswordHash)
		logger.Info("Password authentication enabled", "username", cfg.Auth.Username)
	} else {
		logger.Info("Authentication disabled")
	}

	// Create the native transport server
	srv := server.New(server.Config{
		BindAddress:     cfg.Server.BindAddress,
		Port:            cfg.Server.Port,
		MaxConnections:  cfg.Server.MaxConnections,
		MaxInFlight:     cfg.Server.MaxInFlight,
		MaxFrameSize:    uint32(cfg.Server.MaxFrameSize),
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, executor, authenticator, prometheus.NewServerMetrics())
	logger.Info("Native transport configured", "port", cfg.Server.Port, "cluster_name", cfg.ClusterName, "host_id", hostID)

	// Create the admin API server
	adminServer, err := admin.NewServer(cfg.Admin, srv, store, admin.NodeInfo{
		HostID:         hostID,
		ClusterName:    cfg.ClusterName,
		ReleaseVersion: Version,
	}, admin.Credentials{
		Username:     cfg.Auth.Username,
		PasswordHash: cfg.Auth.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin server: %w", err)
	}
	logger.Info("Admin API configured", "port", cfg.Admin.Port)

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	// Watch the config file for live log level changes
	if path := configWatchPath(); path != "" {
		go func() {
			if err := config.Watch(ctx, path, func(updated *config.Config) {
				logger.SetLevel(updated.Logging.Level)
			}); err != nil {
				logger.Warn("Config watcher stopped", "error", err)
			}
		}()
	}

	// Publish badger engine gauges while the server runs
	if badgerStore != nil && cfg.Metrics.Enabled {
		go pollStorageMetrics(ctx, badgerStore, prometheus.NewBadgerMetrics())
	}

	// Start servers in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- serveAll(ctx, srv, adminServer, metricsServer)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for servers to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// openStore opens the configured storage engine. The second return value is
// the concrete badger handle when that engine is selected, used by the
// metrics poller; it is nil for the memory engine.
func openStore(cfg *config.Config) (storage.Store, *badger.BadgerStore, error) {
	switch cfg.Storage.Engine {
	case "badger":
		bs, err := badger.NewBadgerStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Storage engine ready", "engine", "badger", "path", cfg.Storage.Path)
		return bs, bs, nil
	default:
		logger.Info("Storage engine ready", "engine", "memory")
		return memory.NewMemoryStore(), nil, nil
	}
}

// serveAll runs the native, admin, and metrics servers until the context is
// cancelled or one of them fails. A failure in any server shuts the others
// down; the first error is returned.
func serveAll(ctx context.Context, srv *server.Server, adminServer *admin.Server, metricsServer *metrics.HTTPServer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	nativeDone := make(chan error, 1)
	go func() { nativeDone <- srv.Serve(ctx) }()

	adminDone := make(chan error, 1)
	go func() { adminDone <- adminServer.Start(ctx) }()

	var metricsDone chan error
	if metricsServer != nil {
		metricsDone = make(chan error, 1)
		go func() { metricsDone <- metricsServer.Start(ctx) }()
	}

	// The node accepts connections as soon as the listener is up but answers
	// queries with IsBootstrapping until marked ready.
	go func() {
		select {
		case <-srv.ListenerReady:
			srv.MarkReady()
		case <-ctx.Done():
		}
	}()

	remaining := 2
	if metricsDone != nil {
		remaining = 3
	}

	var firstErr error
	for remaining > 0 {
		var err error
		select {
		case err = <-nativeDone:
			nativeDone = nil
		case err = <-adminDone:
			adminDone = nil
		case err = <-metricsDone:
			metricsDone = nil
		}
		remaining--

		if err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	return firstErr
}

// storageMetricsInterval is how often badger engine gauges are refreshed.
const storageMetricsInterval = 15 * time.Second

// pollStorageMetrics periodically publishes badger engine gauges until the
// context is cancelled.
func pollStorageMetrics(ctx context.Context, store *badger.BadgerStore, m metrics.StorageMetrics) {
	ticker := time.NewTicker(storageMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			block, index := store.CacheHitRatios()
			m.RecordCacheHitRatio("block", block)
			m.RecordCacheHitRatio("index", index)
			m.RecordDiskSize(store.DiskSize())
		}
	}
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// configWatchPath returns the config file to watch for live reloads, or ""
// when the server is running on defaults with no file on disk.
func configWatchPath() string {
	if f := GetConfigFile(); f != "" {
		return f
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return ""
}

// startDaemon starts the server as a background daemon process.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := resolvePidFile(pidFile)

	if pid, err := readPidFile(pidPath); err == nil {
		if processAlive(pid) {
			return fmt.Errorf("colonnade is already running (PID %d)\nUse 'colonnade stop' to stop the running instance", pid)
		}
		// Stale PID file left by a crashed process
		_ = os.Remove(pidPath)
	} else if !os.IsNotExist(err) {
		// Unreadable or garbage PID file, clear it
		_ = os.Remove(pidPath)
	}

	// Set default log file if not specified
	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	// Get the executable path
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	// Build arguments for the daemon process
	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	// Create the daemon process
	cmd := exec.Command(executable, daemonArgs...)

	// Open log file for stdout/stderr
	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle

	// Detach from parent process
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	// Start the daemon
	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	_ = logFileHandle.Close()

	fmt.Printf("Colonnade started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'colonnade stop' to stop the server")
	fmt.Println("Use 'colonnade status' to check server status")

	return nil
}
