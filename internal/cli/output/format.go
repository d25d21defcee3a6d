// Package output renders command results as tables, JSON, or YAML. It backs
// the --output flag shared by colsh and the colonnade CLI.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func (f Format) String() string {
	return string(f)
}

// formatNames maps accepted --output values to formats. Empty means table;
// "yml" is an alias for YAML.
var formatNames = map[string]Format{
	"":      FormatTable,
	"table": FormatTable,
	"json":  FormatJSON,
	"yaml":  FormatYAML,
	"yml":   FormatYAML,
}

// ParseFormat resolves a --output flag value.
func ParseFormat(s string) (Format, error) {
	f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
	return f, nil
}

// Printer writes results in one configured format. The interactive shell
// holds a single Printer for the whole session so every statement renders
// the same way.
type Printer struct {
	w      io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer. color enables ANSI escapes on diagnostics.
func NewPrinter(w io.Writer, format Format, color bool) *Printer {
	return &Printer{w: w, format: format, color: color}
}

// Format returns the configured output format.
func (p *Printer) Format() Format {
	return p.format
}

// Print renders data in the configured format. Table output requires data
// to implement TableRenderer; data that does not falls back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.w, data)
	case FormatYAML:
		return PrintYAML(p.w, data)
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return PrintTable(p.w, renderer)
		}
		return PrintJSON(p.w, data)
	}
	return fmt.Errorf("unknown format: %s", p.format)
}

// Println writes a line of plain text.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.w, args...)
}

// Printf writes formatted plain text.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Error writes a diagnostic line, in red when color is enabled. The shell
// uses it for server-reported statement failures.
func (p *Printer) Error(msg string) {
	if !p.color {
		_, _ = fmt.Fprintln(p.w, msg)
		return
	}
	_, _ = fmt.Fprintf(p.w, "\033[31m%s\033[0m\n", msg)
}
