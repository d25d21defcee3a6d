package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/colonnadedb/colonnade/internal/auth"
	"github.com/colonnadedb/colonnade/internal/query"
	"github.com/colonnadedb/colonnade/internal/server"
	"github.com/colonnadedb/colonnade/pkg/storage"
	"github.com/colonnadedb/colonnade/pkg/storage/memory"
)

const testAdminPassword = "colonnade-admin-pw"

// testSetup creates a native server, a memory store and an admin Config.
func testSetup(t *testing.T, port int) (*server.Server, storage.Store, Config, Credentials) {
	t.Helper()

	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	executor := query.NewExecutor(store, query.Options{})
	native := server.New(server.Config{}, executor, nil, nil)

	cfg := Config{
		Port:         port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		JWT: JWTConfig{
			Secret:               "test-secret-key-for-testing-only-32chars",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
		},
	}

	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	creds := Credentials{Username: "admin", PasswordHash: hash}

	return native, store, cfg, creds
}

// startServer starts the admin server in the background and waits for it to
// come up. The returned cancel stops it.
func startServer(t *testing.T, srv *Server) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = srv.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)
	return cancel
}

// login fetches an access token from the login endpoint.
func login(t *testing.T, port int, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(
		fmt.Sprintf("http://localhost:%d/v1/auth/login", port),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login failed with status %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatal("Expected non-empty access token")
	}
	return envelope.Data.AccessToken
}

func TestAdminServer_Lifecycle(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 18090)

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Expected nil on graceful shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shutdown in time")
	}
}

func TestAdminServer_Readiness(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 18095)

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	cancel := startServer(t, srv)
	defer cancel()

	readyURL := fmt.Sprintf("http://localhost:%d/readyz", cfg.Port)

	// The native server is still starting.
	resp, err := http.Get(readyURL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d while starting, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}

	native.MarkReady()

	resp, err = http.Get(readyURL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d when ready, got %d", http.StatusOK, resp.StatusCode)
	}

	native.Drain()

	resp, err = http.Get(readyURL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d while draining, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestAdminServer_Port(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 9999)

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if srv.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", srv.Port())
	}
}

func TestAdminServer_DefaultConfig(t *testing.T) {
	native, store, _, creds := testSetup(t, 0)

	cfg := Config{
		// Port and timeouts not set - should use defaults
		JWT: JWTConfig{
			Secret: "test-secret-key-for-testing-only-32chars",
		},
	}

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	// After ApplyDefaults, port should be 8080
	if srv.Port() != 8080 {
		t.Errorf("Expected default port 8080, got %d", srv.Port())
	}
}

func TestAdminServer_InvalidJWTSecret(t *testing.T) {
	native, store, _, creds := testSetup(t, 0)

	cfg := Config{
		JWT: JWTConfig{
			Secret: "short", // Too short, should fail
		},
	}

	_, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err == nil {
		t.Fatal("Expected error for invalid JWT secret, got nil")
	}
}

func TestAdminServer_RootRedirectsToHealth(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 18091)

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	cancel := startServer(t, srv)
	defer cancel()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("Expected status %d, got %d", http.StatusTemporaryRedirect, resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location != "/healthz" {
		t.Errorf("Expected redirect to '/healthz', got '%s'", location)
	}
}

func TestAdminServer_StatusEndpoint(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 18092)

	info := NodeInfo{
		HostID:         "7c9f2d1e-test-host",
		ClusterName:    "Test Cluster",
		ReleaseVersion: "1.0.0-test",
	}
	srv, err := NewServer(cfg, native, store, info, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	cancel := startServer(t, srv)
	defer cancel()

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/v1/status", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			State       string `json:"state"`
			HostID      string `json:"host_id"`
			ClusterName string `json:"cluster_name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if envelope.Status != "ok" {
		t.Errorf("Expected envelope status 'ok', got %q", envelope.Status)
	}
	// The native server was never marked ready.
	if envelope.Data.State != "starting" {
		t.Errorf("Expected state 'starting', got %q", envelope.Data.State)
	}
	if envelope.Data.HostID != info.HostID {
		t.Errorf("Expected host id %q, got %q", info.HostID, envelope.Data.HostID)
	}
	if envelope.Data.ClusterName != info.ClusterName {
		t.Errorf("Expected cluster name %q, got %q", info.ClusterName, envelope.Data.ClusterName)
	}
}

func TestAdminServer_LoginAndDrain(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 18093)

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	cancel := startServer(t, srv)
	defer cancel()

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)

	// Drain without a token is rejected.
	resp, err := http.Post(baseURL+"/v1/drain", "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status %d without token, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	// Login with a wrong password is rejected.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, err = http.Post(baseURL+"/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status %d for bad password, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	// Login and drain.
	token := login(t, cfg.Port, "admin", testAdminPassword)

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/v1/drain", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	if got := native.State(); got != server.StateDraining {
		t.Errorf("Expected native server to be draining, got %v", got)
	}
}

func TestAdminServer_TableEndpoints(t *testing.T) {
	native, store, cfg, creds := testSetup(t, 18094)

	srv, err := NewServer(cfg, native, store, NodeInfo{}, creds)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	cancel := startServer(t, srv)
	defer cancel()

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	ctx := context.Background()

	if err := store.CreateTable(ctx, "users", storage.TableOptions{}); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	// Listing is public.
	resp, err := http.Get(baseURL + "/v1/tables")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	var listEnvelope struct {
		Data struct {
			Tables []struct {
				Name string `json:"name"`
			} `json:"tables"`
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listEnvelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	_ = resp.Body.Close()

	if listEnvelope.Data.Count != 1 || len(listEnvelope.Data.Tables) != 1 {
		t.Fatalf("Expected a single table, got %+v", listEnvelope.Data)
	}
	if listEnvelope.Data.Tables[0].Name != "users" {
		t.Errorf("Expected table 'users', got %q", listEnvelope.Data.Tables[0].Name)
	}

	token := login(t, cfg.Port, "admin", testAdminPassword)

	// Truncate a missing table is a 404.
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/v1/tables/missing/truncate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status %d for missing table, got %d", http.StatusNotFound, resp.StatusCode)
	}

	// Drop the table.
	req, _ = http.NewRequest(http.MethodDelete, baseURL+"/v1/tables/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	tables, err := store.Tables(ctx)
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("Expected no tables after drop, got %d", len(tables))
	}
}
