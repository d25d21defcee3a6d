package native

import (
	"fmt"
	"io"
)

// Startup option keys and the protocol version value this implementation
// speaks.
const (
	OptionNativeVersion = "NATIVE_VERSION"
	OptionCompression   = "COMPRESSION"

	// NativeVersion is the [string] value clients must send for
	// OptionNativeVersion in v1.
	NativeVersion = "1.0.0"
)

// RESULT body kinds.
const (
	resultKindVoid uint32 = 0x0001
	resultKindRows uint32 = 0x0002
)

// Message is a decoded frame body. Implementations are the request and
// response types below; each is carried by exactly one opcode.
type Message interface {
	Opcode() Opcode
}

// Startup opens a connection: the client announces its protocol options.
type Startup struct {
	Options map[string]string
}

func (*Startup) Opcode() Opcode { return OpStartup }

// Ready tells the client the connection is usable without authentication.
type Ready struct{}

func (*Ready) Opcode() Opcode { return OpReady }

// Authenticate demands credentials before the connection becomes usable.
type Authenticate struct {
	// Class names the authenticator so clients can pick a credential
	// scheme.
	Class string
}

func (*Authenticate) Opcode() Opcode { return OpAuthenticate }

// AuthResponse carries client credentials. In v1 the token is
// username\x00password.
type AuthResponse struct {
	Token []byte
}

func (*AuthResponse) Opcode() Opcode { return OpAuthResponse }

// AuthSuccess completes authentication. The token is null in v1.
type AuthSuccess struct {
	Token []byte
}

func (*AuthSuccess) Opcode() Opcode { return OpAuthSuccess }

// Options asks the server which protocol options it supports. Valid before
// STARTUP.
type Options struct{}

func (*Options) Opcode() Opcode { return OpOptions }

// Supported lists the server's protocol options and accepted values.
type Supported struct {
	Options map[string][]string
}

func (*Supported) Opcode() Opcode { return OpSupported }

// Query submits one statement.
type Query struct {
	Statement   string
	Consistency Consistency
}

func (*Query) Opcode() Opcode { return OpQuery }

// VoidResult reports success with nothing to return.
type VoidResult struct{}

func (*VoidResult) Opcode() Opcode { return OpResult }

// RowsResult returns a rectangular result set. Cells are opaque bytes; a nil
// cell is a null value.
type RowsResult struct {
	Columns []string
	Rows    [][][]byte
}

func (*RowsResult) Opcode() Opcode { return OpResult }

// Error reports a failed request. Code is the registry constant written as a
// 32-bit integer at the start of the body; Message is human-readable context
// and carries no machine semantics.
type Error struct {
	Code    ErrorCode
	Message string
}

func (*Error) Opcode() Opcode { return OpError }

// Error implements the error interface so a decoded ERROR frame can travel
// through error returns unchanged.
func (e *Error) Error() string {
	return fmt.Sprintf("server error [%s] %s", e.Code, e.Message)
}

// EncodeBody serializes a message body. The frame header is written
// separately; see WriteMessage.
func EncodeBody(m Message) ([]byte, error) {
	w := newWriter(64)
	switch msg := m.(type) {
	case *Startup:
		if err := w.StringMap(msg.Options); err != nil {
			return nil, fmt.Errorf("encode STARTUP: %w", err)
		}
	case *Ready, *Options:
		// Empty bodies.
	case *VoidResult:
		w.Int(resultKindVoid)
	case *Authenticate:
		if err := w.String(msg.Class); err != nil {
			return nil, fmt.Errorf("encode AUTHENTICATE: %w", err)
		}
	case *AuthResponse:
		w.Bytes(msg.Token)
	case *AuthSuccess:
		w.Bytes(msg.Token)
	case *Supported:
		if err := w.StringMultimap(msg.Options); err != nil {
			return nil, fmt.Errorf("encode SUPPORTED: %w", err)
		}
	case *Query:
		w.LongString(msg.Statement)
		w.Consistency(msg.Consistency)
	case *RowsResult:
		if err := encodeRows(w, msg); err != nil {
			return nil, err
		}
	case *Error:
		w.Int(uint32(msg.Code))
		if err := w.String(msg.Message); err != nil {
			return nil, fmt.Errorf("encode ERROR: %w", err)
		}
	default:
		return nil, fmt.Errorf("encode: unsupported message type %T", m)
	}
	return w.Buffer(), nil
}

func encodeRows(w *writer, msg *RowsResult) error {
	w.Int(resultKindRows)
	w.Int(uint32(len(msg.Columns)))
	for _, col := range msg.Columns {
		if err := w.String(col); err != nil {
			return fmt.Errorf("encode RESULT column: %w", err)
		}
	}
	w.Int(uint32(len(msg.Rows)))
	for _, row := range msg.Rows {
		if len(row) != len(msg.Columns) {
			return fmt.Errorf("encode RESULT: row has %d cells, want %d", len(row), len(msg.Columns))
		}
		for _, cell := range row {
			w.Bytes(cell)
		}
	}
	return nil
}

// DecodeBody deserializes a frame body for the given opcode. Trailing bytes
// after a well-formed body are rejected.
func DecodeBody(op Opcode, body []byte) (Message, error) {
	r := newReader(body)
	msg, err := decodeBody(op, r)
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("decode %s: %d trailing bytes", op, r.remaining())
	}
	return msg, nil
}

func decodeBody(op Opcode, r *reader) (Message, error) {
	switch op {
	case OpStartup:
		opts, err := r.StringMap()
		if err != nil {
			return nil, fmt.Errorf("decode STARTUP: %w", err)
		}
		return &Startup{Options: opts}, nil
	case OpReady:
		return &Ready{}, nil
	case OpAuthenticate:
		class, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("decode AUTHENTICATE: %w", err)
		}
		return &Authenticate{Class: class}, nil
	case OpAuthResponse:
		token, err := r.Bytes()
		if err != nil {
			return nil, fmt.Errorf("decode AUTH_RESPONSE: %w", err)
		}
		return &AuthResponse{Token: token}, nil
	case OpAuthSuccess:
		token, err := r.Bytes()
		if err != nil {
			return nil, fmt.Errorf("decode AUTH_SUCCESS: %w", err)
		}
		return &AuthSuccess{Token: token}, nil
	case OpOptions:
		return &Options{}, nil
	case OpSupported:
		opts, err := r.StringMultimap()
		if err != nil {
			return nil, fmt.Errorf("decode SUPPORTED: %w", err)
		}
		return &Supported{Options: opts}, nil
	case OpQuery:
		stmt, err := r.LongString()
		if err != nil {
			return nil, fmt.Errorf("decode QUERY: %w", err)
		}
		cons, err := r.Consistency()
		if err != nil {
			return nil, fmt.Errorf("decode QUERY: %w", err)
		}
		return &Query{Statement: stmt, Consistency: cons}, nil
	case OpResult:
		return decodeResult(r)
	case OpError:
		return decodeError(r)
	default:
		return nil, fmt.Errorf("decode: unknown opcode %s", op)
	}
}

func decodeResult(r *reader) (Message, error) {
	kind, err := r.Int()
	if err != nil {
		return nil, fmt.Errorf("decode RESULT kind: %w", err)
	}
	switch kind {
	case resultKindVoid:
		return &VoidResult{}, nil
	case resultKindRows:
		return decodeRows(r)
	default:
		return nil, fmt.Errorf("decode RESULT: unknown kind 0x%04X", kind)
	}
}

func decodeRows(r *reader) (Message, error) {
	colCount, err := r.Int()
	if err != nil {
		return nil, fmt.Errorf("decode RESULT columns: %w", err)
	}
	// Each column name needs at least its 2-byte length prefix.
	if int(colCount) > r.remaining()/2+1 {
		return nil, fmt.Errorf("decode RESULT: column count %d exceeds body", colCount)
	}
	columns := make([]string, 0, colCount)
	for i := uint32(0); i < colCount; i++ {
		col, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("decode RESULT column %d: %w", i, err)
		}
		columns = append(columns, col)
	}

	rowCount, err := r.Int()
	if err != nil {
		return nil, fmt.Errorf("decode RESULT rows: %w", err)
	}
	// Each cell needs at least its 4-byte length prefix.
	if colCount > 0 && int(rowCount) > r.remaining()/(4*int(colCount))+1 {
		return nil, fmt.Errorf("decode RESULT: row count %d exceeds body", rowCount)
	}
	rows := make([][][]byte, 0, rowCount)
	for i := uint32(0); i < rowCount; i++ {
		row := make([][]byte, 0, colCount)
		for j := uint32(0); j < colCount; j++ {
			cell, err := r.Bytes()
			if err != nil {
				return nil, fmt.Errorf("decode RESULT row %d cell %d: %w", i, j, err)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return &RowsResult{Columns: columns, Rows: rows}, nil
}

// decodeError resolves the wire code through the registry. An unassigned
// code is surfaced as *UnknownCodeError with the message text attached;
// whether that aborts the connection is the caller's policy, not decided
// here.
func decodeError(r *reader) (Message, error) {
	raw, err := r.Int()
	if err != nil {
		return nil, fmt.Errorf("decode ERROR code: %w", err)
	}
	text, err := r.String()
	if err != nil {
		return nil, fmt.Errorf("decode ERROR message: %w", err)
	}
	code, err := ErrorCodeFromWire(raw)
	if err != nil {
		return nil, fmt.Errorf("decode ERROR (message %q): %w", text, err)
	}
	return &Error{Code: code, Message: text}, nil
}

// WriteMessage frames and writes a message. The direction bit is derived
// from the opcode: request opcodes are written as client frames, the rest as
// server frames.
func WriteMessage(w io.Writer, stream int16, m Message) error {
	body, err := EncodeBody(m)
	if err != nil {
		return err
	}
	version := VersionResponse
	if m.Opcode().IsRequest() {
		version = VersionRequest
	}
	h := Header{
		Version: version,
		Stream:  stream,
		Op:      m.Opcode(),
	}
	return WriteFrame(w, h, body)
}
