package handlers

import (
	"net/http"
	"time"

	"github.com/colonnadedb/colonnade/internal/server"
)

// HealthHandler handles the health probe endpoints.
//
// Probes are unauthenticated. Liveness answers as long as the HTTP server is
// responsive; readiness additionally requires the native server to be in the
// ready state, so load balancers stop routing to starting or draining nodes.
type HealthHandler struct {
	node      Node
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(node Node) *HealthHandler {
	return &HealthHandler{
		node:      node,
		startTime: time.Now(),
	}
}

// Liveness handles GET /healthz. Returns 200 OK while the process runs.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"service":    "colonnade",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /readyz. Returns 200 only while the native server
// accepts queries; starting and draining nodes answer 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	state := h.node.Status().State
	if state != server.StateReady {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("native server is "+state.String()))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"state": state.String(),
	}))
}
