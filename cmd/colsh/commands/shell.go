package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/colonnadedb/colonnade/internal/cli/output"
	"github.com/colonnadedb/colonnade/pkg/client"
	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

const (
	shellPrompt        = "colsh> "
	continuationPrompt = "   ... "
)

// shell executes statements over one client connection and renders results.
type shell struct {
	client  *client.Client
	printer *output.Printer
	addr    string
}

// runScript executes statements from r in order, stopping at the first
// failure.
func (s *shell) runScript(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read statements: %w", err)
	}
	for _, stmt := range splitStatements(string(data)) {
		if err := s.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// runInteractive runs the read-eval-print loop until EXIT or EOF.
func (s *shell) runInteractive() error {
	s.printBanner()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// ^C drops the statement being typed.
			buf.Reset()
			rl.SetPrompt(shellPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			handled, exit := s.handleMeta(trimmed)
			if exit {
				return nil
			}
			if handled {
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		if !statementComplete(buf.String()) {
			rl.SetPrompt(continuationPrompt)
			continue
		}

		input := buf.String()
		buf.Reset()
		rl.SetPrompt(shellPrompt)

		for _, stmt := range splitStatements(input) {
			if err := s.execute(stmt); err != nil {
				if !recoverable(err) {
					return fmt.Errorf("connection lost: %w", err)
				}
				s.printer.Error(err.Error())
			}
		}
	}
}

// handleMeta intercepts shell-only commands, which are recognized with or
// without a trailing ';'. It reports whether the line was consumed and
// whether the shell should exit.
func (s *shell) handleMeta(line string) (handled, exit bool) {
	word := strings.TrimSuffix(line, ";")
	switch strings.ToUpper(strings.TrimSpace(word)) {
	case "EXIT", "QUIT":
		return true, true
	case "HELP":
		s.printHelp()
		return true, false
	}
	return false, false
}

// execute runs one statement and renders its result.
func (s *shell) execute(stmt string) error {
	res, err := s.client.Query(context.Background(), stmt)
	if err != nil {
		return err
	}
	return s.render(res)
}

// render writes a result in the configured output format. Void results
// print nothing, matching the quiet success of DDL and writes.
func (s *shell) render(res *client.Result) error {
	if res.Void() {
		return nil
	}

	if s.printer.Format() == output.FormatTable {
		table := output.NewTableData(res.Columns...)
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = string(cell)
			}
			table.AddRow(cells...)
		}
		if err := s.printer.Print(table); err != nil {
			return err
		}
		s.printer.Printf("\n(%d rows)\n", len(res.Rows))
		return nil
	}

	rows := make([]map[string]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		m := make(map[string]string, len(res.Columns))
		for i, col := range res.Columns {
			if i < len(row) {
				m[col] = string(row[i])
			}
		}
		rows = append(rows, m)
	}
	return s.printer.Print(rows)
}

// printBanner greets with the node identity pulled from system.local.
func (s *shell) printBanner() {
	cluster, release := s.nodeIdentity()
	if cluster != "" {
		s.printer.Printf("Connected to %s at %s\n", cluster, s.addr)
	} else {
		s.printer.Printf("Connected to %s\n", s.addr)
	}
	if release != "" {
		s.printer.Printf("[colsh %s | Colonnade %s | Native protocol v1]\n", Version, release)
	} else {
		s.printer.Printf("[colsh %s | Native protocol v1]\n", Version)
	}
	s.printer.Println("Use HELP for help, EXIT to quit.")
}

// nodeIdentity reads the cluster name and server version from system.local.
// Failures are tolerated; the banner just omits what it could not fetch.
func (s *shell) nodeIdentity() (cluster, release string) {
	res, err := s.client.Query(context.Background(), "SELECT * FROM system.local")
	if err != nil || len(res.Rows) != 1 {
		return "", ""
	}
	for i, col := range res.Columns {
		if i >= len(res.Rows[0]) {
			break
		}
		switch col {
		case "cluster_name":
			cluster = string(res.Rows[0][i])
		case "release_version":
			release = string(res.Rows[0][i])
		}
	}
	return cluster, release
}

func (s *shell) printHelp() {
	s.printer.Println(`Statements are terminated with ';' and may span multiple lines.

  CREATE TABLE <table> [WITH default_ttl = <seconds>]
  DROP TABLE <table>
  TRUNCATE [TABLE] <table>
  INSERT INTO <table> (key, value) VALUES ('<key>', '<value>')
  SELECT * FROM <table> [WHERE key = '<key>'] [LIMIT <n>]
  SELECT value FROM <table> WHERE key = '<key>'
  DELETE FROM <table> WHERE key = '<key>'
  DESCRIBE TABLES

Shell commands:
  HELP          Show this help
  EXIT, QUIT    Leave the shell (also Ctrl-D)`)
}

// recoverable reports whether the connection survived err. Server-reported
// errors and unknown error codes leave it usable; transport failures close
// it and the shell has nothing left to talk to.
func recoverable(err error) bool {
	var serverErr *client.ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var unknown *native.UnknownCodeError
	return errors.As(err, &unknown)
}

// historyFile returns the REPL history path under the state directory,
// creating the directory on the way. An empty return disables history.
func historyFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	dir = filepath.Join(dir, "colonnade")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "colsh_history")
}

// splitStatements cuts input into statements on ';', treating ';' inside
// single-quoted strings as literal. Pieces are trimmed and empty ones
// dropped, so a trailing terminator yields no phantom statement.
func splitStatements(input string) []string {
	var (
		stmts    []string
		start    int
		inString bool
	)
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '\'':
			// A doubled quote inside a string toggles off and back on,
			// which reads the same as an escaped quote here.
			inString = !inString
		case ';':
			if !inString {
				if stmt := strings.TrimSpace(input[start:i]); stmt != "" {
					stmts = append(stmts, stmt)
				}
				start = i + 1
			}
		}
	}
	if stmt := strings.TrimSpace(input[start:]); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}

// statementComplete reports whether buffered input ends with a terminating
// ';' outside any string literal. Incomplete input keeps the REPL reading
// continuation lines.
func statementComplete(input string) bool {
	inString := false
	terminated := false
	for i := 0; i < len(input); i++ {
		switch c := input[i]; c {
		case '\'':
			inString = !inString
			terminated = false
		case ';':
			if !inString {
				terminated = true
			}
		case ' ', '\t', '\n', '\r':
			// Trailing whitespace keeps the terminator in effect.
		default:
			terminated = false
		}
	}
	return terminated && !inString
}
