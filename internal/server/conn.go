package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/internal/query"
	"github.com/colonnadedb/colonnade/internal/telemetry"
	"github.com/colonnadedb/colonnade/pkg/bufpool"
	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// connState tracks the per-connection handshake.
type connState int

const (
	// connNew means no STARTUP has been seen. Only STARTUP and OPTIONS are
	// legal; QUERY is a protocol error.
	connNew connState = iota

	// connAuthPending means STARTUP was answered with AUTHENTICATE and the
	// server is waiting for AUTH_RESPONSE. QUERY is rejected Unauthorized.
	connAuthPending

	// connReady means the handshake is complete and QUERY is accepted.
	connReady
)

// conn is one client connection. Frames are read and answered strictly in
// order: the native protocol correlates responses by stream id, and v1
// clients keep a single request in flight, so there is nothing to gain from
// per-connection parallelism.
type conn struct {
	id           string
	server       *Server
	netConn      net.Conn
	state        connState
	username     string
	clientAddr   string
	maxFrameSize uint32
	logCtx       *logger.LogContext
}

func newConn(s *Server, nc net.Conn) *conn {
	id := newConnID()
	addr := nc.RemoteAddr().String()
	return &conn{
		id:           id,
		server:       s,
		netConn:      nc,
		clientAddr:   addr,
		maxFrameSize: s.config.maxFrameSize(),
		logCtx:       logger.NewLogContext(id, addr),
	}
}

// serve reads frames until the connection closes. It implements panic
// recovery so a single misbehaving connection cannot crash the server.
//
// The connection is closed when:
//   - The context is cancelled (server shutdown)
//   - An idle timeout occurs
//   - The client violates framing (bad version byte, oversized frame)
//   - Authentication fails
//   - The client closes the connection
//
// Context cancellation is checked at the top of each loop iteration so
// shutdown is observed between requests, not only on read errors.
func (c *conn) serve(ctx context.Context) {
	defer c.handleClose()

	logger.Debug("New connection", "conn_id", c.id, "client_addr", c.clientAddr)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Connection closed due to context cancellation", "conn_id", c.id)
			return
		case <-c.server.shutdown:
			logger.Debug("Connection closed due to server shutdown", "conn_id", c.id)
			return
		default:
		}

		if c.server.config.IdleTimeout > 0 {
			if err := c.netConn.SetDeadline(time.Now().Add(c.server.config.IdleTimeout)); err != nil {
				logger.Warn("Failed to set deadline", "conn_id", c.id, "error", err)
			}
		}

		frame, err := c.readFrame()
		if err != nil {
			c.handleReadError(err)
			return
		}

		keep := c.handleFrame(ctx, frame)
		bufpool.Put(frame.Body)
		if !keep {
			return
		}
	}
}

// readFrame reads one frame into a pooled body buffer. The buffer goes back
// to the pool once the frame is handled; nothing decoded from a request may
// alias it past that point.
func (c *conn) readFrame() (*native.Frame, error) {
	h, err := native.ReadHeader(c.netConn, c.maxFrameSize)
	if err != nil {
		return nil, err
	}

	body := bufpool.GetUint32(h.Length)
	if _, err := io.ReadFull(c.netConn, body); err != nil {
		bufpool.Put(body)
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return &native.Frame{Header: h, Body: body}, nil
}

// handleReadError logs a failed frame read and, for framing violations,
// sends a final ProtocolError before the connection closes. The stream id
// cannot be trusted once framing is broken, so that ERROR goes out on
// stream 0.
func (c *conn) handleReadError(err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.Debug("Connection closed by client", "conn_id", c.id, "client_addr", c.clientAddr)

	case errors.Is(err, native.ErrInvalidVersion), errors.Is(err, native.ErrFrameTooLarge):
		code, msg := WireError(protocolViolation("%v", err), c.clientAddr, "")
		c.writeError(0, code, msg)

	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			logger.Debug("Connection timed out", "conn_id", c.id, "client_addr", c.clientAddr)
		} else {
			logger.Debug("Error reading frame", "conn_id", c.id, "client_addr", c.clientAddr, "error", err)
		}
	}
}

// handleFrame dispatches one frame and writes the response. Returns false
// when the connection must close.
func (c *conn) handleFrame(ctx context.Context, f *native.Frame) bool {
	start := time.Now()
	opName := native.OpcodeName(f.Header.Op)
	stream := f.Header.Stream

	if m := c.server.metrics; m != nil {
		m.RecordFrame(opName)
		m.RecordRequestStart()
	}

	reqCtx, span := telemetry.StartRequestSpan(ctx, opName,
		telemetry.ConnID(c.id),
		telemetry.ClientAddr(c.clientAddr),
		telemetry.Stream(stream))
	defer span.End()

	lc := c.logCtx.WithRequest(opName, stream).
		WithTrace(telemetry.TraceID(reqCtx), telemetry.SpanID(reqCtx))
	reqCtx = logger.WithContext(reqCtx, lc)

	resp, closeAfter := c.dispatch(reqCtx, f)

	errCode := ""
	if e, ok := resp.(*native.Error); ok {
		errCode = e.Code.String()
		span.SetAttributes(telemetry.ErrorCode(errCode))
	}
	if m := c.server.metrics; m != nil {
		m.RecordRequestEnd()
		m.RecordRequest(opName, time.Since(start), errCode)
	}

	if err := native.WriteMessage(c.netConn, stream, resp); err != nil {
		logger.Debug("Error writing response", "conn_id", c.id, "opcode", opName, "error", err)
		return false
	}

	logger.DebugCtx(reqCtx, "Request served",
		"duration_ms", logger.Duration(start), "error_code", errCode)

	return !closeAfter
}

// dispatch routes a frame through the handshake state machine and returns
// the response message plus whether the connection must close after it is
// written. Panics in statement handling become ServerError responses.
func (c *conn) dispatch(ctx context.Context, f *native.Frame) (resp native.Message, closeAfter bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in request handler",
				"conn_id", c.id,
				"client_addr", c.clientAddr,
				"opcode", f.Header.Op.String(),
				"error", r,
				"stack", string(debug.Stack()))
			resp = &native.Error{
				Code:    native.CodeServerError,
				Message: fmt.Sprintf("unexpected server error: %v", r),
			}
			closeAfter = false
		}
	}()

	opName := native.OpcodeName(f.Header.Op)

	if f.Header.Response() {
		return c.errorFor(protocolViolation("response frame %s received from client", opName), opName), true
	}
	if !f.Header.Op.IsRequest() {
		return c.errorFor(protocolViolation("opcode %s is not a request", opName), opName), true
	}

	msg, err := native.DecodeBody(f.Header.Op, f.Body)
	if err != nil {
		// Framing is still intact after a malformed body, the connection
		// survives.
		return c.errorFor(protocolViolation("malformed %s body: %v", opName, err), opName), false
	}

	switch req := msg.(type) {
	case *native.Options:
		return c.handleOptions(), false
	case *native.Startup:
		return c.handleStartup(req)
	case *native.AuthResponse:
		return c.handleAuthResponse(ctx, req)
	case *native.Query:
		return c.handleQuery(ctx, req), false
	default:
		return c.errorFor(protocolViolation("unexpected message %s", opName), opName), true
	}
}

// errorFor maps an error to its ERROR response through the wire mapping.
func (c *conn) errorFor(err error, opName string) *native.Error {
	code, msg := WireError(err, c.clientAddr, opName)
	return &native.Error{Code: code, Message: msg}
}

// handleOptions answers SUPPORTED. Legal in any state, including before
// STARTUP.
func (c *conn) handleOptions() native.Message {
	return &native.Supported{Options: map[string][]string{
		native.OptionNativeVersion: {native.NativeVersion},
		native.OptionCompression:   {},
	}}
}

// handleStartup validates the client's protocol options and either completes
// the handshake with READY or demands credentials with AUTHENTICATE.
func (c *conn) handleStartup(req *native.Startup) (native.Message, bool) {
	if c.state != connNew {
		return c.errorFor(protocolViolation("duplicate STARTUP"), "STARTUP"), true
	}
	if v, ok := req.Options[native.OptionNativeVersion]; ok && v != native.NativeVersion {
		return c.errorFor(protocolViolation("unsupported native version %q", v), "STARTUP"), true
	}
	if compression, ok := req.Options[native.OptionCompression]; ok && compression != "" {
		return c.errorFor(protocolViolation("unsupported compression %q", compression), "STARTUP"), true
	}

	if c.server.auth != nil {
		c.state = connAuthPending
		return &native.Authenticate{Class: c.server.auth.Class()}, false
	}

	c.state = connReady
	return &native.Ready{}, false
}

// handleAuthResponse validates credentials. A rejected token is answered
// with an Unauthorized ERROR and the connection closes.
func (c *conn) handleAuthResponse(ctx context.Context, req *native.AuthResponse) (native.Message, bool) {
	if c.state != connAuthPending {
		return c.errorFor(protocolViolation("AUTH_RESPONSE outside authentication exchange"), "AUTH_RESPONSE"), true
	}

	username, err := c.server.auth.Authenticate(ctx, req.Token)
	if err != nil {
		return c.errorFor(err, "AUTH_RESPONSE"), true
	}

	c.state = connReady
	c.username = username
	telemetry.SetAttributes(ctx, telemetry.Username(username))
	logger.Info("Client authenticated",
		"conn_id", c.id, "client_addr", c.clientAddr, "username", username)
	return &native.AuthSuccess{}, false
}

// handleQuery runs one statement. Rejections happen in a fixed order:
// handshake state, node lifecycle state, in-flight capacity, then the
// statement itself.
func (c *conn) handleQuery(ctx context.Context, req *native.Query) native.Message {
	switch c.state {
	case connNew:
		return c.errorFor(protocolViolation("QUERY before STARTUP"), "QUERY")
	case connAuthPending:
		return c.errorFor(errAuthRequired, "QUERY")
	}

	switch c.server.State() {
	case StateStarting:
		return c.errorFor(errNotReady, "QUERY")
	case StateDraining:
		return c.errorFor(errDraining, "QUERY")
	}

	if !c.server.acquireInFlight() {
		return c.errorFor(errOverloaded, "QUERY")
	}
	defer c.server.releaseInFlight()

	telemetry.SetAttributes(ctx, telemetry.ConsistencyLevel(req.Consistency.String()))

	stmt, err := query.Parse(req.Statement)
	if err != nil {
		return c.errorFor(err, "QUERY")
	}

	result, err := c.server.executor.Execute(ctx, stmt)
	if err != nil {
		return c.errorFor(err, "QUERY")
	}

	if result.Void() {
		return &native.VoidResult{}
	}
	return &native.RowsResult{Columns: result.Columns, Rows: result.Rows}
}

// writeError sends a bare ERROR frame outside the normal dispatch path.
func (c *conn) writeError(stream int16, code native.ErrorCode, message string) {
	if err := native.WriteMessage(c.netConn, stream, &native.Error{Code: code, Message: message}); err != nil {
		logger.Debug("Error writing ERROR frame", "conn_id", c.id, "error", err)
	}
}

// handleClose recovers panics from the serve loop and closes the socket.
func (c *conn) handleClose() {
	if r := recover(); r != nil {
		logger.Error("Panic in connection handler",
			"conn_id", c.id,
			"client_addr", c.clientAddr,
			"error", r,
			"stack", string(debug.Stack()))
	}
	_ = c.netConn.Close()
}
