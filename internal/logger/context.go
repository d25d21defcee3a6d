package logger

import (
	"context"
	"time"
)

// contextKey keeps the LogContext value private to this package.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext carries the connection and request fields the slog handlers
// attach to every record emitted while serving a frame.
type LogContext struct {
	// Connection-scoped, set once on accept.
	ConnID     string
	ClientAddr string

	// Request-scoped, reset per frame.
	Opcode string
	Stream int16

	// Trace correlation, filled in when telemetry is active.
	TraceID string
	SpanID  string

	// StartTime anchors DurationMs.
	StartTime time.Time
}

// WithContext stores lc in ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext stored in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext starts the logging context for a freshly accepted connection.
func NewLogContext(connID, clientAddr string) *LogContext {
	return &LogContext{
		ConnID:     connID,
		ClientAddr: clientAddr,
		StartTime:  time.Now(),
	}
}

// Clone returns a shallow copy; a nil receiver clones to nil.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithRequest returns a copy scoped to one frame, restarting the duration
// clock.
func (lc *LogContext) WithRequest(opcode string, stream int16) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Opcode = opcode
		clone.Stream = stream
		clone.StartTime = time.Now()
	}
	return clone
}

// WithTrace returns a copy carrying the trace and span ids.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the time elapsed since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return time.Since(lc.StartTime).Seconds() * 1000
}
