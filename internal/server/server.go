// Package server implements the Colonnade native protocol server.
//
// The server owns the TCP lifecycle: listener management, connection
// limiting, graceful drain with a shutdown timeout, and forced closure of
// stragglers. Each accepted connection runs a per-connection state machine
// (see conn.go) that drives the STARTUP handshake, optional authentication,
// and QUERY dispatch against the query executor.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/internal/query"
	"github.com/colonnadedb/colonnade/pkg/metrics"
	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// State is the node lifecycle state. It gates QUERY dispatch: a starting
// node answers IsBootstrapping, a draining node answers Unavailable.
type State int32

const (
	// StateStarting is the initial state. The listener may already accept
	// connections and handshakes, but queries are rejected until MarkReady.
	StateStarting State = iota

	// StateReady is the normal serving state.
	StateReady

	// StateDraining rejects new queries while letting connections finish.
	// Entered via Drain() or as the first step of shutdown.
	StateDraining
)

// String returns the lowercase state name used in logs and the admin API.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateDraining:
		return "draining"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Config holds the native server configuration.
type Config struct {
	// BindAddress is the IP address to bind to.
	// Empty string or "0.0.0.0" binds to all interfaces.
	BindAddress string

	// Port is the TCP port to listen on.
	Port int

	// MaxConnections limits the number of concurrent client connections.
	// 0 means unlimited.
	MaxConnections int

	// MaxInFlight limits the number of queries executing concurrently
	// across all connections. Excess queries are rejected with Overloaded.
	// 0 means unlimited.
	MaxInFlight int

	// MaxFrameSize is the largest frame body accepted from a client.
	// 0 means native.DefaultMaxFrameSize.
	MaxFrameSize uint32

	// IdleTimeout closes connections with no traffic for this duration.
	// 0 disables the idle deadline.
	IdleTimeout time.Duration

	// ShutdownTimeout is the maximum duration to wait for active
	// connections to complete during graceful shutdown.
	ShutdownTimeout time.Duration
}

func (c Config) maxFrameSize() uint32 {
	if c.MaxFrameSize == 0 {
		return native.DefaultMaxFrameSize
	}
	return c.MaxFrameSize
}

// Status is a point-in-time snapshot of the server, served by the admin API.
type Status struct {
	State             State
	Uptime            time.Duration
	ActiveConnections int32
}

// Server is the native protocol TCP server.
//
// Thread safety:
// All exported methods are safe for concurrent use. The shutdown mechanism
// uses sync.Once so Stop() remains idempotent when called multiple times.
type Server struct {
	config   Config
	executor *query.Executor

	// auth validates AUTH_RESPONSE tokens. nil disables authentication:
	// STARTUP is answered with READY directly.
	auth Authenticator

	// metrics is an optional recorder for connection and request metrics.
	// If nil, no metrics are collected (zero overhead).
	metrics metrics.ServerMetrics

	// listener is closed during shutdown to stop accepting new connections.
	listener   net.Listener
	listenerMu sync.RWMutex

	// ListenerReady is closed when the listener is ready to accept
	// connections. Used by tests and the daemon to synchronize startup.
	ListenerReady chan struct{}

	state     atomic.Int32
	startedAt time.Time

	// activeConns tracks serve goroutines for graceful shutdown.
	activeConns sync.WaitGroup

	shutdownOnce sync.Once

	// shutdown signals that shutdown has been initiated. Closed by
	// initiateShutdown(), monitored by the accept loop and connections.
	shutdown chan struct{}

	connCount atomic.Int32

	// connSemaphore limits concurrent connections when MaxConnections > 0.
	// A slot is acquired before Accept and released when the connection's
	// goroutine exits. nil when unlimited.
	connSemaphore chan struct{}

	// inFlight limits concurrently executing queries when MaxInFlight > 0.
	// nil when unlimited.
	inFlight chan struct{}

	// shutdownCtx is cancelled during shutdown to abort in-flight requests.
	shutdownCtx    context.Context
	cancelRequests context.CancelFunc

	// conns maps connection id → net.Conn for deadline interruption and
	// forced closure during shutdown.
	conns sync.Map
}

// New creates a Server in the starting state. Call Serve to start accepting
// connections and MarkReady once the node can execute queries.
//
// authenticator may be nil to disable authentication; m may be nil to
// disable metrics.
func New(cfg Config, executor *query.Executor, authenticator Authenticator, m metrics.ServerMetrics) *Server {
	var connSemaphore chan struct{}
	if cfg.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, cfg.MaxConnections)
		logger.Debug("Connection limit", "max_connections", cfg.MaxConnections)
	} else {
		logger.Debug("Connection limit", "max_connections", "unlimited")
	}

	var inFlight chan struct{}
	if cfg.MaxInFlight > 0 {
		inFlight = make(chan struct{}, cfg.MaxInFlight)
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &Server{
		config:         cfg,
		executor:       executor,
		auth:           authenticator,
		metrics:        m,
		ListenerReady:  make(chan struct{}),
		shutdown:       make(chan struct{}),
		connSemaphore:  connSemaphore,
		inFlight:       inFlight,
		shutdownCtx:    shutdownCtx,
		cancelRequests: cancelRequests,
	}
}

// Serve runs the TCP accept loop until ctx is cancelled or Stop is called.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the listener fails to start or shutdown was not graceful
func (s *Server) Serve(ctx context.Context) error {
	listenAddr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.Port)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to create listener on %s: %w", listenAddr, err)
	}

	s.listenerMu.Lock()
	s.listener = listener
	s.startedAt = time.Now()
	s.listenerMu.Unlock()
	close(s.ListenerReady)

	logger.Info("Native server listening",
		"address", listener.Addr().String(),
		"state", s.State().String())

	// Monitor context cancellation in a separate goroutine.
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", "error", ctx.Err())
		s.initiateShutdown()
	}()

	for {
		// Acquire a connection slot before accepting.
		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			case <-s.shutdown:
				return s.gracefulShutdown()
			}
		}

		tcpConn, err := s.listener.Accept()
		if err != nil {
			if s.connSemaphore != nil {
				<-s.connSemaphore
			}

			// Closed listener is the expected error during shutdown.
			select {
			case <-s.shutdown:
				return s.gracefulShutdown()
			default:
				logger.Debug("Error accepting connection", "error", err)
				continue
			}
		}

		// Disable Nagle's algorithm: frames are small and latency-bound.
		if tcp, ok := tcpConn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug("Failed to set TCP_NODELAY", "error", err)
			}
		}

		c := newConn(s, tcpConn)

		s.activeConns.Add(1)
		s.connCount.Add(1)
		s.conns.Store(c.id, tcpConn)

		currentConns := s.connCount.Load()
		if s.metrics != nil {
			s.metrics.RecordConnectionAccepted()
			s.metrics.SetActiveConnections(currentConns)
		}

		logger.Debug("Connection accepted",
			"conn_id", c.id,
			"client_addr", tcpConn.RemoteAddr().String(),
			"active", currentConns)

		go func(c *conn) {
			defer func() {
				s.conns.Delete(c.id)
				s.activeConns.Done()
				s.connCount.Add(-1)
				if s.connSemaphore != nil {
					<-s.connSemaphore
				}

				if s.metrics != nil {
					s.metrics.RecordConnectionClosed()
					s.metrics.SetActiveConnections(s.connCount.Load())
				}

				logger.Debug("Connection closed",
					"conn_id", c.id,
					"active", s.connCount.Load())
			}()

			c.serve(s.shutdownCtx)
		}(c)
	}
}

// MarkReady transitions the node from starting to ready. Queries received
// before this point are rejected with IsBootstrapping. Calling MarkReady on
// a draining node is a no-op.
func (s *Server) MarkReady() {
	if s.state.CompareAndSwap(int32(StateStarting), int32(StateReady)) {
		logger.Info("Node ready", "state", StateReady.String())
	}
}

// Drain transitions the node to draining. Existing connections stay open and
// handshakes still complete, but queries are rejected with Unavailable until
// the process stops. Draining is one-way.
func (s *Server) Drain() {
	prev := State(s.state.Swap(int32(StateDraining)))
	if prev != StateDraining {
		logger.Info("Node draining", "active", s.connCount.Load())
	}
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Status returns a snapshot for the admin API.
func (s *Server) Status() Status {
	s.listenerMu.RLock()
	startedAt := s.startedAt
	s.listenerMu.RUnlock()

	var uptime time.Duration
	if !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}
	return Status{
		State:             s.State(),
		Uptime:            uptime,
		ActiveConnections: s.connCount.Load(),
	}
}

// GetListenerAddr returns the address the server is listening on. It blocks
// until the listener is ready, making it safe for tests that start Serve in
// a goroutine with port 0.
func (s *Server) GetListenerAddr() string {
	<-s.ListenerReady

	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// acquireInFlight takes a query execution slot without blocking. The caller
// must releaseInFlight when the query completes.
func (s *Server) acquireInFlight() bool {
	if s.inFlight == nil {
		return true
	}
	select {
	case s.inFlight <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) releaseInFlight() {
	if s.inFlight != nil {
		<-s.inFlight
	}
}

// initiateShutdown signals the server to begin graceful shutdown.
//
// Shutdown sequence:
//  1. Enter draining so late queries get a clean rejection
//  2. Close the shutdown channel (signals the accept loop to stop)
//  3. Close the listener (stops accepting new connections)
//  4. Interrupt blocking reads on all active connections
//  5. Cancel shutdownCtx (aborts in-flight query execution)
//
// Safe to call multiple times and from multiple goroutines.
func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Debug("Shutdown initiated")

		s.Drain()
		close(s.shutdown)

		s.listenerMu.Lock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("Error closing listener", "error", err)
			}
		}
		s.listenerMu.Unlock()

		s.interruptBlockingReads()
		s.cancelRequests()
	})
}

// interruptBlockingReads sets a short deadline on all active connections to
// unblock pending frame reads during shutdown.
func (s *Server) interruptBlockingReads() {
	deadline := time.Now().Add(100 * time.Millisecond)

	s.conns.Range(func(key, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			if err := conn.SetReadDeadline(deadline); err != nil {
				logger.Debug("Error setting shutdown deadline on connection",
					"conn_id", key, "error", err)
			}
		}
		return true
	})
}

// gracefulShutdown waits for active connections to complete or timeout.
//
// Returns:
//   - nil if all connections completed gracefully
//   - error if the shutdown timeout was exceeded (connections force-closed)
func (s *Server) gracefulShutdown() error {
	activeCount := s.connCount.Load()
	logger.Info("Graceful shutdown: waiting for active connections",
		"active", activeCount, "timeout", s.config.ShutdownTimeout)

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Graceful shutdown complete: all connections closed")
		return nil

	case <-time.After(s.config.ShutdownTimeout):
		remaining := s.connCount.Load()
		logger.Warn("Shutdown timeout exceeded - forcing closure",
			"active", remaining, "timeout", s.config.ShutdownTimeout)

		s.forceCloseConnections()

		return fmt.Errorf("shutdown timeout: %d connections force-closed", remaining)
	}
}

// forceCloseConnections closes all remaining TCP connections.
func (s *Server) forceCloseConnections() {
	closedCount := 0
	s.conns.Range(func(key, value any) bool {
		conn := value.(net.Conn)
		if err := conn.Close(); err != nil {
			logger.Debug("Error force-closing connection", "conn_id", key, "error", err)
		} else {
			closedCount++
			if s.metrics != nil {
				s.metrics.RecordConnectionForceClosed()
			}
		}
		return true
	})

	if closedCount > 0 {
		logger.Info("Force-closed connections", "count", closedCount)
	}
}

// Stop initiates graceful shutdown and waits for active connections.
//
// When ctx is nil the wait is bounded by the configured ShutdownTimeout;
// otherwise Stop returns with the context error as soon as ctx is done.
// Safe to call multiple times and concurrently with Serve.
func (s *Server) Stop(ctx context.Context) error {
	s.initiateShutdown()

	if ctx == nil {
		return s.gracefulShutdown()
	}

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Graceful shutdown complete: all connections closed")
		return nil

	case <-ctx.Done():
		remaining := s.connCount.Load()
		logger.Warn("Shutdown context cancelled", "active", remaining, "error", ctx.Err())
		return ctx.Err()
	}
}

func newConnID() string {
	return uuid.NewString()
}
