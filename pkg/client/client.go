// Package client provides a native protocol client for colonnade.
//
// A Client owns one TCP connection and keeps a single request in flight at a
// time, which matches protocol v1: responses carry the stream id of the
// request they answer, and the server processes a connection's frames in
// order. Concurrent callers serialize on the connection; open several
// clients for parallelism.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// Default timeouts applied when Options leaves them zero.
const (
	DefaultDialTimeout    = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Options configures Dial.
type Options struct {
	// Username and Password answer an AUTHENTICATE challenge. Leaving
	// Username empty makes Dial fail against servers that require
	// authentication.
	Username string
	Password string

	// Consistency is attached to every QUERY. Zero means ONE.
	Consistency native.Consistency

	// DialTimeout bounds the TCP connect plus the handshake exchanges.
	DialTimeout time.Duration

	// RequestTimeout bounds each request round-trip. A context deadline
	// shorter than this wins.
	RequestTimeout time.Duration

	// MaxFrameSize bounds response bodies. Zero means
	// native.DefaultMaxFrameSize.
	MaxFrameSize uint32
}

func (o Options) withDefaults() Options {
	if o.Consistency == 0 {
		o.Consistency = native.ConsistencyOne
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.MaxFrameSize == 0 {
		o.MaxFrameSize = native.DefaultMaxFrameSize
	}
	return o
}

// Result is a statement outcome. A Result with no Columns is void: the
// statement succeeded and returned nothing.
type Result struct {
	Columns []string
	Rows    [][][]byte
}

// Void reports whether the result carries no row set.
func (r *Result) Void() bool {
	return len(r.Columns) == 0
}

// Client is a colonnade native protocol client.
type Client struct {
	opts Options

	mu         sync.Mutex
	conn       net.Conn
	nextStream int16
	closed     bool
}

// Dial connects to a colonnade node and performs the startup handshake.
// The returned client is ready for Query.
func Dial(addr string, opts Options) (*Client, error) {
	opts = opts.withDefaults()

	conn, err := net.DialTimeout("tcp", addr, opts.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	c := &Client{opts: opts, conn: conn}
	if err := c.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// handshake drives STARTUP to READY, answering an AUTHENTICATE challenge
// with the configured credentials. The whole exchange shares one dial
// deadline.
func (c *Client) handshake() error {
	deadline := time.Now().Add(c.opts.DialTimeout)

	resp, err := c.roundTrip(deadline, &native.Startup{
		Options: map[string]string{native.OptionNativeVersion: native.NativeVersion},
	})
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	switch msg := resp.(type) {
	case *native.Ready:
		return nil

	case *native.Authenticate:
		if c.opts.Username == "" {
			return fmt.Errorf("server requires %s credentials and none were configured", msg.Class)
		}
		token := []byte(c.opts.Username + "\x00" + c.opts.Password)
		authResp, err := c.roundTrip(deadline, &native.AuthResponse{Token: token})
		if err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		if _, ok := authResp.(*native.AuthSuccess); !ok {
			return fmt.Errorf("authenticate: unexpected %s response", authResp.Opcode())
		}
		return nil

	default:
		return fmt.Errorf("startup: unexpected %s response", resp.Opcode())
	}
}

// Query runs one statement and returns its result.
//
// Server-reported failures are returned as *ServerError. An ERROR frame
// carrying a wire code outside the protocol registry is returned as an error
// wrapping *native.UnknownCodeError; the connection stays usable.
func (c *Client) Query(ctx context.Context, statement string) (*Result, error) {
	resp, err := c.roundTrip(c.deadline(ctx), &native.Query{
		Statement:   statement,
		Consistency: c.opts.Consistency,
	})
	if err != nil {
		return nil, err
	}

	switch msg := resp.(type) {
	case *native.VoidResult:
		return &Result{}, nil
	case *native.RowsResult:
		return &Result{Columns: msg.Columns, Rows: msg.Rows}, nil
	default:
		return nil, fmt.Errorf("query: unexpected %s response", resp.Opcode())
	}
}

// Options asks the server for its supported protocol options.
func (c *Client) Options(ctx context.Context) (map[string][]string, error) {
	resp, err := c.roundTrip(c.deadline(ctx), &native.Options{})
	if err != nil {
		return nil, err
	}
	supported, ok := resp.(*native.Supported)
	if !ok {
		return nil, fmt.Errorf("options: unexpected %s response", resp.Opcode())
	}
	return supported.Options, nil
}

// Close closes the connection. Close is idempotent; subsequent requests
// fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// deadline combines the request timeout with the context deadline, whichever
// is sooner. Cancellation is honored at request boundaries; an in-flight
// read is bounded by the deadline rather than interrupted.
func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.opts.RequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

// roundTrip sends one request and reads its response, holding the client
// lock for the whole exchange. Transport failures and stream desyncs close
// the connection; protocol-level failures (ERROR responses, unknown error
// codes) leave it usable.
func (c *Client) roundTrip(deadline time.Time, req native.Message) (native.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	stream := c.nextStream
	c.nextStream++
	if c.nextStream < 0 {
		// Negative streams are reserved for server events.
		c.nextStream = 0
	}

	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, c.fail(fmt.Errorf("set deadline: %w", err))
	}
	if err := native.WriteMessage(c.conn, stream, req); err != nil {
		return nil, c.fail(fmt.Errorf("write %s: %w", req.Opcode(), err))
	}

	frame, err := native.ReadFrame(c.conn, c.opts.MaxFrameSize)
	if err != nil {
		return nil, c.fail(fmt.Errorf("read response: %w", err))
	}
	if !frame.Header.Response() {
		return nil, c.fail(fmt.Errorf("received request-direction frame %s", frame.Header.Op))
	}
	if frame.Header.Stream != stream {
		return nil, c.fail(fmt.Errorf("stream mismatch: sent %d, received %d", stream, frame.Header.Stream))
	}

	msg, err := native.DecodeBody(frame.Header.Op, frame.Body)
	if err != nil {
		var unknown *native.UnknownCodeError
		if errors.As(err, &unknown) {
			// The frame was well-formed, only the code is unassigned.
			// Surface it without giving up the connection.
			return nil, fmt.Errorf("stream %d: %w", stream, err)
		}
		return nil, c.fail(fmt.Errorf("decode %s response: %w", frame.Header.Op, err))
	}

	if e, ok := msg.(*native.Error); ok {
		return nil, &ServerError{Code: e.Code, Message: e.Message}
	}
	return msg, nil
}

// fail closes the connection after an unrecoverable transport error. The
// caller's error is returned unchanged.
func (c *Client) fail(err error) error {
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
	}
	return err
}
