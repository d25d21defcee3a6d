package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so logs can be
// aggregated and queried by field.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Native Protocol
	// ========================================================================
	KeyProtocol    = "protocol"    // Protocol surface: native, admin
	KeyOpcode      = "opcode"      // Frame opcode name: STARTUP, QUERY, ERROR, etc.
	KeyStream      = "stream"      // Frame stream id
	KeyConsistency = "consistency" // Requested consistency level
	KeyStatement   = "statement"   // Statement text (debug level only)

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientAddr = "client_addr" // Client remote address
	KeyConnID     = "conn_id"     // Server-assigned connection UUID
	KeyUsername   = "username"    // Authenticated username
	KeyAuth       = "auth"        // Authentication mechanism

	// ========================================================================
	// Server Lifecycle
	// ========================================================================
	KeyState       = "state"        // Server state: starting, ready, draining
	KeyPort        = "port"         // Listening port
	KeyBindAddress = "bind_address" // Listening bind address
	KeyActive      = "active"       // Active connection count
	KeyInFlight    = "in_flight"    // In-flight request count

	// ========================================================================
	// Storage
	// ========================================================================
	KeyTable  = "table"  // Table name
	KeyEngine = "engine" // Storage engine: memory, badger
	KeyPath   = "path"   // Filesystem path (data dir, config file)
	KeyRows   = "rows"   // Row count in a result or scan
	KeyTTL    = "ttl"    // Row or table time-to-live

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Wire error code name
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Protocol returns a slog.Attr for the serving surface (native, admin)
func Protocol(proto string) slog.Attr {
	return slog.String(KeyProtocol, proto)
}

// Opcode returns a slog.Attr for a frame opcode name
func Opcode(name string) slog.Attr {
	return slog.String(KeyOpcode, name)
}

// Stream returns a slog.Attr for a frame stream id
func Stream(id int16) slog.Attr {
	return slog.Int(KeyStream, int(id))
}

// ClientAddr returns a slog.Attr for the client remote address
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// ConnID returns a slog.Attr for the server-assigned connection id
func ConnID(id string) slog.Attr {
	return slog.String(KeyConnID, id)
}

// Table returns a slog.Attr for a table name
func Table(name string) slog.Attr {
	return slog.String(KeyTable, name)
}

// Engine returns a slog.Attr for the storage engine name
func Engine(name string) slog.Attr {
	return slog.String(KeyEngine, name)
}

// DurationMs returns a slog.Attr for operation duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error message
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a wire error code name
func ErrorCode(name string) slog.Attr {
	return slog.String(KeyErrorCode, name)
}
