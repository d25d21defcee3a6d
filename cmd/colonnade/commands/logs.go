package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail server logs",
	Long: `Display and optionally follow the Colonnade server logs.

This command reads the log file specified in the configuration. When the
server logs to stdout (the default) and runs as a daemon, the daemon log
file in the state directory is used instead.

Examples:
  # Show last 100 lines (default)
  colonnade logs

  # Show last 50 lines
  colonnade logs -n 50

  # Follow logs in real-time
  colonnade logs -f

  # Show logs since a specific time
  colonnade logs --since "2026-01-15T10:00:00Z"

  # Combine options
  colonnade logs -f -n 20`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := resolveLogFile(cfg.Logging.Output)
	if err != nil {
		return err
	}

	var since time.Time
	if logsSince != "" {
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	if err := printTail(os.Stdout, logFile, logsLines, since); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}
	return followLogs(logFile)
}

// resolveLogFile maps the configured log output to a readable file. Daemon
// mode redirects stdout to the state directory log file, so stdout/stderr
// configurations fall back to that file when it exists.
func resolveLogFile(output string) (string, error) {
	if output == "stdout" || output == "stderr" {
		daemonLog := GetDefaultLogFile()
		if _, err := os.Stat(daemonLog); err == nil {
			return daemonLog, nil
		}
		return "", fmt.Errorf("server is configured to log to %s, not a file\nConfigure 'logging.output' in config to a file path, or start the server with 'colonnade start' (daemon mode) to use this command", output)
	}
	if _, err := os.Stat(output); os.IsNotExist(err) {
		return "", fmt.Errorf("log file not found: %s\nThe server may not have started yet or is logging elsewhere", output)
	}
	return output, nil
}

// printTail writes the last n lines of the log file, skipping lines stamped
// before since. The window is kept in a ring so large files are not held in
// memory.
func printTail(w io.Writer, logFile string, n int, since time.Time) error {
	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, n)
	count := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if stamp := lineTimestamp(line); !stamp.IsZero() && stamp.Before(since) {
				continue
			}
		}
		ring[count%n] = line
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	start := 0
	if count > n {
		start = count - n
	}
	for i := start; i < count; i++ {
		fmt.Fprintln(w, ring[i%n])
	}
	return nil
}

// followLogs streams appended lines until interrupted. Log rotation shows
// up as a remove or rename event and ends the stream with an error telling
// the operator to rerun.
func followLogs(logFile string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(logFile); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of log file: %w", err)
	}
	reader := bufio.NewReader(file)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", logFile)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Op&fsnotify.Write != 0:
				printNewLines(reader)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				return fmt.Errorf("log file was rotated or removed; rerun 'colonnade logs -f'")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// printNewLines drains complete lines appended since the last read.
func printNewLines(reader *bufio.Reader) {
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fmt.Print(line)
	}
}

// textStampLayout matches the prefix the text log handler writes.
const textStampLayout = "2006-01-02 15:04:05"

// lineTimestamp pulls the timestamp off a log line: the leading wall-clock
// stamp for text format, the "time" key for JSON format. Returns the zero
// time when neither parses.
func lineTimestamp(line string) time.Time {
	if len(line) >= len(textStampLayout) {
		if t, err := time.ParseInLocation(textStampLayout, line[:len(textStampLayout)], time.Local); err == nil {
			return t
		}
	}

	const timeKey = `"time":"`
	if i := strings.Index(line, timeKey); i >= 0 {
		rest := line[i+len(timeKey):]
		if j := strings.IndexByte(rest, '"'); j > 0 {
			if t, err := time.Parse(time.RFC3339Nano, rest[:j]); err == nil {
				return t
			}
		}
	}

	return time.Time{}
}
