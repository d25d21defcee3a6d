// Package prometheus provides Prometheus-backed implementations of the
// metrics interfaces in pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colonnadedb/colonnade/pkg/metrics"
)

// serverMetrics is the Prometheus implementation of metrics.ServerMetrics.
type serverMetrics struct {
	connectionsAccepted    prometheus.Counter
	connectionsClosed      prometheus.Counter
	connectionsForceClosed prometheus.Counter
	activeConnections      prometheus.Gauge
	framesReceived         *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	requestErrors          *prometheus.CounterVec
	requestsInFlight       prometheus.Gauge
}

// NewServerMetrics creates a Prometheus-backed ServerMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// callers may pass directly to the server for zero overhead.
func NewServerMetrics() metrics.ServerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &serverMetrics{
		connectionsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "colonnade_connections_accepted_total",
			Help: "Total number of accepted native protocol connections",
		}),
		connectionsClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "colonnade_connections_closed_total",
			Help: "Total number of closed native protocol connections",
		}),
		connectionsForceClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "colonnade_connections_force_closed_total",
			Help: "Total number of connections force-closed during shutdown",
		}),
		activeConnections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "colonnade_active_connections",
			Help: "Current number of active native protocol connections",
		}),
		framesReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "colonnade_frames_received_total",
				Help: "Total number of request frames received by opcode",
			},
			[]string{"opcode"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "colonnade_request_duration_seconds",
				Help:    "Request processing duration by opcode",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"opcode"},
		),
		requestErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "colonnade_request_errors_total",
				Help: "Total number of error responses by wire error code",
			},
			[]string{"code"},
		),
		requestsInFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "colonnade_requests_in_flight",
			Help: "Current number of requests being processed",
		}),
	}
}

func (m *serverMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsAccepted.Inc()
}

func (m *serverMetrics) RecordConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsClosed.Inc()
}

func (m *serverMetrics) RecordConnectionForceClosed() {
	if m == nil {
		return
	}
	m.connectionsForceClosed.Inc()
}

func (m *serverMetrics) SetActiveConnections(count int32) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(count))
}

func (m *serverMetrics) RecordFrame(opcode string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(opcode).Inc()
}

func (m *serverMetrics) RecordRequest(opcode string, duration time.Duration, errorCode string) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(opcode).Observe(duration.Seconds())
	if errorCode != "" {
		m.requestErrors.WithLabelValues(errorCode).Inc()
	}
}

func (m *serverMetrics) RecordRequestStart() {
	if m == nil {
		return
	}
	m.requestsInFlight.Inc()
}

func (m *serverMetrics) RecordRequestEnd() {
	if m == nil {
		return
	}
	m.requestsInFlight.Dec()
}
