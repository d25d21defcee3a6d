// Package native implements version 1 of the colonnade native protocol: the
// binary client-server format used to submit statements to a colonnade node
// and receive results and errors.
//
// Every message is carried in a frame: a fixed 9-byte header followed by an
// opcode-specific body.
//
// # Frame Header (9 bytes)
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│ Offset │ Size │ Field   │ Description                            │
//	├────────┼──────┼─────────┼────────────────────────────────────────┤
//	│   0    │  1   │ Version │ protocol version, high bit = direction │
//	│   1    │  1   │ Flags   │ frame flags (none assigned in v1)      │
//	│   2    │  2   │ Stream  │ request correlation id (big-endian)    │
//	│   4    │  1   │ Opcode  │ message kind, see opcode.go            │
//	│   5    │  4   │ Length  │ body length in bytes (big-endian)      │
//	└────────┴──────┴─────────┴────────────────────────────────────────┘
//
// Version is 0x01 for client-to-server frames and 0x81 for server-to-client
// frames. Stream is chosen by the client and echoed verbatim in the matching
// response; negative values are reserved for server-initiated events and are
// unused in v1.
//
// # Message Flow
//
// A connection follows this flow:
//
//  1. Client: STARTUP (protocol options)
//  2. Server: READY, or AUTHENTICATE when authentication is required
//  3. Client: AUTH_RESPONSE (credentials, when step 2 was AUTHENTICATE)
//  4. Server: AUTH_SUCCESS, or ERROR with the Unauthorized code
//  5. Client: QUERY ... Server: RESULT or ERROR, repeated
//
// OPTIONS/SUPPORTED may be exchanged at any point, including before STARTUP.
// Every failure is reported as an ERROR frame whose body begins with a
// 32-bit error code; see errcode.go for the code registry.
package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the fixed size of the frame header in bytes.
const HeaderSize = 9

// Version bytes for protocol v1. The high bit carries the frame direction.
const (
	VersionRequest  byte = 0x01
	VersionResponse byte = 0x81

	directionBit    byte = 0x80
	protocolVersion byte = 0x01
)

// DefaultMaxFrameSize bounds the body length accepted from a peer. A frame
// announcing a larger body is rejected before any of it is read.
const DefaultMaxFrameSize = 16 << 20

// DefaultPort is the TCP port the native transport listens on when no port
// is configured.
const DefaultPort = 9052

var (
	ErrInvalidVersion = errors.New("native: unsupported protocol version")
	ErrFrameTooLarge  = errors.New("native: frame exceeds maximum size")
)

// Header is the decoded frame header.
type Header struct {
	Version byte
	Flags   byte
	Stream  int16
	Op      Opcode
	Length  uint32
}

// Response reports whether the header's direction bit marks a
// server-to-client frame.
func (h Header) Response() bool {
	return h.Version&directionBit != 0
}

// ProtocolVersion returns the version number with the direction bit cleared.
func (h Header) ProtocolVersion() byte {
	return h.Version &^ directionBit
}

// Frame is a complete protocol frame: header plus raw body.
type Frame struct {
	Header Header
	Body   []byte
}

// ParseHeader decodes a frame header from exactly HeaderSize bytes. The
// version byte is validated; flags and opcode are returned as-is for the
// session layer to judge.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("short header: need %d bytes, have %d", HeaderSize, len(b))
	}
	h := Header{
		Version: b[0],
		Flags:   b[1],
		Stream:  int16(binary.BigEndian.Uint16(b[2:4])),
		Op:      Opcode(b[4]),
		Length:  binary.BigEndian.Uint32(b[5:9]),
	}
	if h.ProtocolVersion() != protocolVersion {
		return Header{}, fmt.Errorf("%w: 0x%02X", ErrInvalidVersion, h.Version)
	}
	return h, nil
}

// EncodeHeader writes h into a HeaderSize byte array.
func EncodeHeader(h Header) [HeaderSize]byte {
	var b [HeaderSize]byte
	b[0] = h.Version
	b[1] = h.Flags
	binary.BigEndian.PutUint16(b[2:4], uint16(h.Stream))
	b[4] = byte(h.Op)
	binary.BigEndian.PutUint32(b[5:9], h.Length)
	return b
}

// ReadHeader reads and validates one frame header from r. Bodies longer
// than maxFrameSize are rejected with ErrFrameTooLarge before any body byte
// is read; pass 0 to bound with DefaultMaxFrameSize.
func ReadHeader(r io.Reader, maxFrameSize uint32) (Header, error) {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Header{}, fmt.Errorf("read frame header: %w", err)
	}
	h, err := ParseHeader(hdr[:])
	if err != nil {
		return Header{}, err
	}
	if h.Length > maxFrameSize {
		return Header{}, fmt.Errorf("%w: body %d bytes, limit %d", ErrFrameTooLarge, h.Length, maxFrameSize)
	}
	return h, nil
}

// ReadFrame reads one complete frame from r, allocating the body. Callers
// that manage body buffers themselves read a header with ReadHeader and
// pull Length bytes on their own.
func ReadFrame(r io.Reader, maxFrameSize uint32) (*Frame, error) {
	h, err := ReadHeader(r, maxFrameSize)
	if err != nil {
		return nil, err
	}

	body := make([]byte, h.Length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return &Frame{Header: h, Body: body}, nil
}

// WriteFrame writes one complete frame to w. The header's Length field is
// taken from the body, not from h.
func WriteFrame(w io.Writer, h Header, body []byte) error {
	h.Length = uint32(len(body))
	hdr := EncodeHeader(h)
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}
