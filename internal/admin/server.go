package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/colonnadedb/colonnade/internal/admin/auth"
	"github.com/colonnadedb/colonnade/internal/admin/handlers"
	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/pkg/storage"
)

// Server is the admin API HTTP server.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer builds the admin HTTP server around a fresh router. It does not
// listen yet; call Start.
//
// The JWT secret comes from config.JWT.Secret or the COLONNADE_ADMIN_SECRET
// environment variable and must be at least 32 characters.
func NewServer(config Config, node handlers.Node, store storage.Store, info NodeInfo, creds Credentials) (*Server, error) {
	config.ApplyDefaults()

	jwtSecret := config.GetJWTSecret()
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters; set via %s env var or config", EnvAdminSecret)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               jwtSecret,
		Issuer:               "colonnade",
		AccessTokenDuration:  config.JWT.AccessTokenDuration,
		RefreshTokenDuration: config.JWT.RefreshTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &Server{
		config: config,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewRouter(node, store, info, creds, jwtService),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}, nil
}

// Start runs the server until ctx is cancelled or the listener fails. On
// cancellation it drains in-flight requests for up to five seconds before
// returning; a clean drain returns nil.
func (s *Server) Start(ctx context.Context) error {
	failed := make(chan error, 1)
	go func() {
		logger.Info("Admin API listening", "port", s.config.Port)
		logger.Debug("Admin API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/healthz", s.config.Port),
			"status", fmt.Sprintf("http://localhost:%d/v1/status", s.config.Port),
		)
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("admin API server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Admin API shutdown signal received")
	// Drain on a fresh context: the cancelled one would abort Shutdown
	// before any request finishes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop shuts the server down gracefully. Safe to call more than once, and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Debug("Admin API shutdown initiated")
		if err = s.server.Shutdown(ctx); err != nil {
			logger.Error("Admin API shutdown error", "error", err)
			err = fmt.Errorf("admin API shutdown error: %w", err)
			return
		}
		logger.Info("Admin API stopped gracefully")
	})
	return err
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.config.Port
}
