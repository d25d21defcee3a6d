package metrics

import (
	"time"
)

// ServerMetrics provides observability for the native protocol server.
//
// Implementations collect metrics about connection lifecycle, frame traffic,
// request latency, and error rates. This interface is optional - pass nil to
// disable metrics collection with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	srv := server.New(cfg, executor, authenticator, prometheus.NewServerMetrics())
//
//	// Without metrics (pass nil for zero overhead)
//	srv := server.New(cfg, executor, authenticator, nil)
type ServerMetrics interface {
	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed increments the force-closed connections counter.
	// Called when connections are forcibly closed after the shutdown timeout.
	RecordConnectionForceClosed()

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordFrame counts one received request frame by opcode name.
	RecordFrame(opcode string)

	// RecordRequest records a completed request with its opcode, duration,
	// and outcome. errorCode is the wire error code name when the request
	// failed (e.g. "ReadTimeout"), empty on success.
	RecordRequest(opcode string, duration time.Duration, errorCode string)

	// RecordRequestStart increments the in-flight request gauge.
	RecordRequestStart()

	// RecordRequestEnd decrements the in-flight request gauge.
	RecordRequestEnd()
}
