package handlers

import (
	"net/http"
	"time"

	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/internal/server"
)

// Node is the subset of the native server the admin API operates on.
type Node interface {
	// Status returns a point-in-time snapshot of the server.
	Status() server.Status

	// Drain transitions the node to draining. Draining is one-way.
	Drain()
}

// NodeHandler handles node lifecycle endpoints.
type NodeHandler struct {
	node           Node
	hostID         string
	clusterName    string
	releaseVersion string
}

// NewNodeHandler creates a new node handler.
//
// hostID, clusterName and releaseVersion are reported verbatim in the
// status payload; they mirror the virtual system.local table.
func NewNodeHandler(node Node, hostID, clusterName, releaseVersion string) *NodeHandler {
	return &NodeHandler{
		node:           node,
		hostID:         hostID,
		clusterName:    clusterName,
		releaseVersion: releaseVersion,
	}
}

// StatusResponse is the payload for GET /v1/status.
type StatusResponse struct {
	State             string `json:"state"`
	Uptime            string `json:"uptime"`
	UptimeSec         int64  `json:"uptime_sec"`
	ActiveConnections int32  `json:"active_connections"`
	HostID            string `json:"host_id"`
	ClusterName       string `json:"cluster_name"`
	ReleaseVersion    string `json:"release_version"`
}

// Status handles GET /v1/status - native server state snapshot.
func (h *NodeHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.node.Status()
	writeJSON(w, http.StatusOK, okResponse(StatusResponse{
		State:             status.State.String(),
		Uptime:            status.Uptime.Round(time.Second).String(),
		UptimeSec:         int64(status.Uptime.Seconds()),
		ActiveConnections: status.ActiveConnections,
		HostID:            h.hostID,
		ClusterName:       h.clusterName,
		ReleaseVersion:    h.releaseVersion,
	}))
}

// Drain handles POST /v1/drain - reject new queries, keep connections open.
//
// Drain only flips the lifecycle state: connected clients stay connected and
// handshakes still complete, but QUERY requests answer Unavailable until the
// operator stops the process.
func (h *NodeHandler) Drain(w http.ResponseWriter, r *http.Request) {
	logger.Info("Drain requested via admin API", "remote_addr", r.RemoteAddr)
	h.node.Drain()

	status := h.node.Status()
	writeJSON(w, http.StatusOK, okResponse(map[string]interface{}{
		"state":              status.State.String(),
		"active_connections": status.ActiveConnections,
	}))
}
