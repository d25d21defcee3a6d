package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/colonnadedb/colonnade/internal/logger"
)

// HTTPServer serves the Prometheus exposition endpoint on its own port.
type HTTPServer struct {
	server       *http.Server
	port         int
	shutdownOnce sync.Once
}

// NewHTTPServer creates a metrics HTTP server exposing /metrics on the given
// port. Call InitRegistry before starting it; otherwise the endpoint serves
// 404.
func NewHTTPServer(port int) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	return &HTTPServer{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		port: port,
	}
}

// Start serves the metrics endpoint and blocks until the context is cancelled
// or the listener fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Metrics endpoint listening", "port", s.port, "path", "/metrics")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// Stop shuts the metrics server down. Safe to call more than once.
func (s *HTTPServer) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("metrics server shutdown error: %w", err)
		} else {
			logger.Info("Metrics server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server listens on.
func (s *HTTPServer) Port() int {
	return s.port
}
