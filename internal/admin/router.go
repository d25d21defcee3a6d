// Package admin implements the HTTP admin API.
//
// The admin API is the operator surface of a colonnade node: health and
// status probes, drain, and table management. It runs on its own port next
// to the native transport and authenticates mutating endpoints with JWT
// bearer tokens issued by the login endpoint.
package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/colonnadedb/colonnade/internal/admin/auth"
	"github.com/colonnadedb/colonnade/internal/admin/handlers"
	adminMiddleware "github.com/colonnadedb/colonnade/internal/admin/middleware"
	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/pkg/storage"
)

// NodeInfo identifies the node in status payloads. It mirrors the virtual
// system.local table served over the native protocol.
type NodeInfo struct {
	HostID         string
	ClusterName    string
	ReleaseVersion string
}

// Credentials is the admin identity validated by the login endpoint.
type Credentials struct {
	Username     string
	PasswordHash string
}

// NewRouter builds the chi router for the admin API. Probes and read-only
// lookups are open; drain and table mutations sit behind JWT bearer auth
// issued by POST /v1/auth/login.
func NewRouter(node handlers.Node, store storage.Store, info NodeInfo, creds Credentials, jwtService *auth.JWTService) http.Handler {
	healthHandler := handlers.NewHealthHandler(node)
	nodeHandler := handlers.NewNodeHandler(node, info.HostID, info.ClusterName, info.ReleaseVersion)
	tableHandler := handlers.NewTableHandler(store)
	authHandler := handlers.NewAuthHandler(creds.Username, creds.PasswordHash, jwtService)

	r := chi.NewRouter()
	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		requestLogger,
		chimiddleware.Recoverer,
		chimiddleware.Timeout(30*time.Second),
	)

	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/readyz", healthHandler.Readiness)

	// Convenience for anyone curling the bare port.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/healthz", http.StatusTemporaryRedirect)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", nodeHandler.Status)
		r.Get("/tables", tableHandler.List)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware.JWTAuth(jwtService))

			r.Post("/drain", nodeHandler.Drain)
			r.Delete("/tables/{table}", tableHandler.Drop)
			r.Post("/tables/{table}/truncate", tableHandler.Truncate)
		})
	})

	return r
}

func isProbePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

// requestLogger records each admin request once it completes, with the
// status and byte count captured by a wrapped response writer. Probe
// endpoints log at DEBUG so a tight liveness poll does not flood the log.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logFn := logger.Info
		if isProbePath(r.URL.Path) {
			logFn = logger.Debug
		}
		logFn("Admin API request completed",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
