package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colonnadedb/colonnade/internal/server"
)

// stubNode is a Node with canned status, recording Drain calls.
type stubNode struct {
	status  server.Status
	drained bool
}

func (n *stubNode) Status() server.Status { return n.status }
func (n *stubNode) Drain() {
	n.drained = true
	n.status.State = server.StateDraining
}

func TestNodeHandler_Status(t *testing.T) {
	node := &stubNode{status: server.Status{
		State:             server.StateReady,
		Uptime:            90 * time.Second,
		ActiveConnections: 3,
	}}
	h := NewNodeHandler(node, "host-1", "Test Cluster", "1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var envelope struct {
		Status string         `json:"status"`
		Data   StatusResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if envelope.Status != "ok" {
		t.Errorf("expected envelope status ok, got %q", envelope.Status)
	}
	if envelope.Data.State != "ready" {
		t.Errorf("expected state ready, got %q", envelope.Data.State)
	}
	if envelope.Data.UptimeSec != 90 {
		t.Errorf("expected uptime_sec 90, got %d", envelope.Data.UptimeSec)
	}
	if envelope.Data.ActiveConnections != 3 {
		t.Errorf("expected 3 active connections, got %d", envelope.Data.ActiveConnections)
	}
	if envelope.Data.HostID != "host-1" {
		t.Errorf("expected host id host-1, got %q", envelope.Data.HostID)
	}
	if envelope.Data.ClusterName != "Test Cluster" {
		t.Errorf("expected cluster name, got %q", envelope.Data.ClusterName)
	}
	if envelope.Data.ReleaseVersion != "1.0.0" {
		t.Errorf("expected release version, got %q", envelope.Data.ReleaseVersion)
	}
}

func TestNodeHandler_Drain(t *testing.T) {
	node := &stubNode{status: server.Status{State: server.StateReady}}
	h := NewNodeHandler(node, "host-1", "Test Cluster", "1.0.0")

	req := httptest.NewRequest(http.MethodPost, "/v1/drain", nil)
	rr := httptest.NewRecorder()
	h.Drain(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !node.drained {
		t.Error("expected Drain to be called on the node")
	}

	var envelope struct {
		Data struct {
			State string `json:"state"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data.State != "draining" {
		t.Errorf("expected state draining, got %q", envelope.Data.State)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(&stubNode{status: server.Status{State: server.StateReady}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.Liveness(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Service string `json:"service"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", envelope.Status)
	}
	if envelope.Data.Service != "colonnade" {
		t.Errorf("expected service colonnade, got %q", envelope.Data.Service)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		state    server.State
		wantCode int
	}{
		{"ready", server.StateReady, http.StatusOK},
		{"starting", server.StateStarting, http.StatusServiceUnavailable},
		{"draining", server.StateDraining, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&stubNode{status: server.Status{State: tt.state}})

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rr := httptest.NewRecorder()
			h.Readiness(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("state %s: expected status %d, got %d", tt.state, tt.wantCode, rr.Code)
			}
		})
	}
}
