// Package logger is the process-wide structured logger. It fronts log/slog
// with a package-level API so any component can log without threading a
// logger through constructors, and re-renders as colored text on terminals
// or JSON for collectors.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Config is the logging section of the server configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	// levelVar gates every handler built here; SetLevel adjusts it in
	// place without a handler rebuild.
	levelVar = new(slog.LevelVar)

	mu       sync.RWMutex
	slogger  *slog.Logger
	output   io.Writer = os.Stdout
	useColor           = true
	format             = "text"
)

func init() {
	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	rebuild()
}

// rebuild swaps in a handler reflecting the current output, format, and
// color settings.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: levelVar}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = newTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init applies the logging configuration. Output may be "stdout", "stderr",
// or a file path; files are appended to and never colored.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var w io.Writer
		var color bool

		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w, color = os.Stdout, isTerminal(os.Stdout.Fd())
		case "stderr":
			w, color = os.Stderr, isTerminal(os.Stderr.Fd())
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("open log file %q: %w", cfg.Output, err)
			}
			w, color = f, false
		}

		mu.Lock()
		output = w
		useColor = color
		mu.Unlock()
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	rebuild()
	return nil
}

// InitWithWriter points the logger at an arbitrary writer. Tests use it to
// capture output.
func InitWithWriter(w io.Writer, level, logFormat string, color bool) {
	mu.Lock()
	output = w
	useColor = color
	mu.Unlock()

	if level != "" {
		SetLevel(level)
	}
	if logFormat != "" {
		SetFormat(logFormat)
	}
	rebuild()
}

// SetLevel adjusts the minimum level. Unknown names are ignored.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		levelVar.Set(slog.LevelDebug)
	case "INFO":
		levelVar.Set(slog.LevelInfo)
	case "WARN":
		levelVar.Set(slog.LevelWarn)
	case "ERROR":
		levelVar.Set(slog.LevelError)
	}
}

// SetFormat switches between "text" and "json" output. Unknown names are
// ignored.
func SetFormat(f string) {
	f = strings.ToLower(f)
	if f != "text" && f != "json" {
		return
	}
	mu.Lock()
	format = f
	mu.Unlock()
	rebuild()
}

func getLogger() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

// Debug logs at debug level. Fields are alternating key/value pairs, as in
// Debug("frame read", "opcode", op, "stream", id).
func Debug(msg string, args ...any) {
	emit(slog.LevelDebug, msg, args)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	emit(slog.LevelInfo, msg, args)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	emit(slog.LevelWarn, msg, args)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	emit(slog.LevelError, msg, args)
}

// emit is the common path. The level gate runs first so a suppressed level
// costs one comparison.
func emit(level slog.Level, msg string, args []any) {
	if level < levelVar.Level() {
		return
	}
	getLogger().Log(context.Background(), level, msg, args...)
}

// DebugCtx logs at debug level, prepending the connection and request
// fields carried by ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelDebug, msg, args)
}

// InfoCtx logs at info level with context fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelInfo, msg, args)
}

// WarnCtx logs at warn level with context fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with context fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelError, msg, args)
}

func emitCtx(ctx context.Context, level slog.Level, msg string, args []any) {
	if level < levelVar.Level() {
		return
	}
	getLogger().Log(ctx, level, msg, appendContextFields(ctx, args)...)
}

// appendContextFields prepends the LogContext fields so they lead every
// line for a connection.
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	ctxArgs := make([]any, 0, 12+len(args))
	if lc.TraceID != "" {
		ctxArgs = append(ctxArgs, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		ctxArgs = append(ctxArgs, KeySpanID, lc.SpanID)
	}
	if lc.ConnID != "" {
		ctxArgs = append(ctxArgs, KeyConnID, lc.ConnID)
	}
	if lc.ClientAddr != "" {
		ctxArgs = append(ctxArgs, KeyClientAddr, lc.ClientAddr)
	}
	if lc.Opcode != "" {
		ctxArgs = append(ctxArgs, KeyOpcode, lc.Opcode)
		ctxArgs = append(ctxArgs, KeyStream, lc.Stream)
	}
	return append(ctxArgs, args...)
}

// With returns a slog.Logger carrying pre-bound fields, for components that
// log many lines with the same identity.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// Duration converts the time since start to fractional milliseconds, the
// unit used by the duration_ms field.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
