package native

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestParseHeader(t *testing.T) {
	// QUERY frame: version 0x01, no flags, stream 7, body 16 bytes.
	raw := []byte{0x01, 0x00, 0x00, 0x07, 0x07, 0x00, 0x00, 0x00, 0x10}

	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader = %v", err)
	}

	if h.Version != VersionRequest {
		t.Errorf("Version = 0x%02X, want 0x%02X", h.Version, VersionRequest)
	}
	if h.Flags != 0 {
		t.Errorf("Flags = 0x%02X, want 0x00", h.Flags)
	}
	if h.Stream != 7 {
		t.Errorf("Stream = %d, want 7", h.Stream)
	}
	if h.Op != OpQuery {
		t.Errorf("Op = %v, want %v", h.Op, OpQuery)
	}
	if h.Length != 16 {
		t.Errorf("Length = %d, want 16", h.Length)
	}
	if h.Response() {
		t.Error("Response() = true for a request frame")
	}
}

func TestParseHeaderResponseDirection(t *testing.T) {
	raw := []byte{0x81, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x0A}

	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader = %v", err)
	}
	if !h.Response() {
		t.Error("Response() = false for a response frame")
	}
	if h.ProtocolVersion() != 0x01 {
		t.Errorf("ProtocolVersion() = 0x%02X, want 0x01", h.ProtocolVersion())
	}
	if h.Op != OpError {
		t.Errorf("Op = %v, want %v", h.Op, OpError)
	}
}

func TestParseHeaderInvalidVersion(t *testing.T) {
	tests := []struct {
		name    string
		version byte
	}{
		{name: "v2 request", version: 0x02},
		{name: "v2 response", version: 0x82},
		{name: "zero", version: 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte{tt.version, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00}
			_, err := ParseHeader(raw)
			if !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("ParseHeader error = %v, want ErrInvalidVersion", err)
			}
		})
	}
}

func TestParseHeaderShort(t *testing.T) {
	if _, err := ParseHeader([]byte{0x01, 0x00}); err == nil {
		t.Fatal("ParseHeader on 2 bytes succeeded, want error")
	}
}

func TestEncodeHeaderRoundTrip(t *testing.T) {
	in := Header{
		Version: VersionResponse,
		Stream:  -3,
		Op:      OpSupported,
		Length:  42,
	}

	raw := EncodeHeader(in)
	out, err := ParseHeader(raw[:])
	if err != nil {
		t.Fatalf("ParseHeader = %v", err)
	}
	if out != in {
		t.Errorf("header round trip = %+v, want %+v", out, in)
	}
}

func TestReadWriteFrame(t *testing.T) {
	body := []byte("select value from t where key = 'k'")

	var buf bytes.Buffer
	h := Header{Version: VersionRequest, Stream: 12, Op: OpQuery}
	if err := WriteFrame(&buf, h, body); err != nil {
		t.Fatalf("WriteFrame = %v", err)
	}

	if buf.Len() != HeaderSize+len(body) {
		t.Fatalf("frame size = %d, want %d", buf.Len(), HeaderSize+len(body))
	}

	f, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame = %v", err)
	}
	if f.Header.Stream != 12 {
		t.Errorf("Stream = %d, want 12", f.Header.Stream)
	}
	if f.Header.Op != OpQuery {
		t.Errorf("Op = %v, want %v", f.Header.Op, OpQuery)
	}
	if f.Header.Length != uint32(len(body)) {
		t.Errorf("Length = %d, want %d", f.Header.Length, len(body))
	}
	if !bytes.Equal(f.Body, body) {
		t.Errorf("Body = %q, want %q", f.Body, body)
	}
}

func TestWriteFrameEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	h := Header{Version: VersionRequest, Stream: 1, Op: OpOptions}
	if err := WriteFrame(&buf, h, nil); err != nil {
		t.Fatalf("WriteFrame = %v", err)
	}

	f, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame = %v", err)
	}
	if f.Header.Length != 0 {
		t.Errorf("Length = %d, want 0", f.Header.Length)
	}
	if len(f.Body) != 0 {
		t.Errorf("Body = %v, want empty", f.Body)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	// Header announces a 1 MiB body against a 1 KiB limit. The body is
	// never written; ReadFrame must fail on the header alone.
	raw := EncodeHeader(Header{
		Version: VersionRequest,
		Op:      OpQuery,
		Length:  1 << 20,
	})

	_, err := ReadFrame(bytes.NewReader(raw[:]), 1024)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("ReadFrame error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	h := Header{Version: VersionRequest, Op: OpQuery}
	if err := WriteFrame(&buf, h, []byte("select")); err != nil {
		t.Fatalf("WriteFrame = %v", err)
	}

	// Drop the last two body bytes.
	raw := buf.Bytes()[:buf.Len()-2]

	_, err := ReadFrame(bytes.NewReader(raw), 0)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadFrame error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestWriteFrameIgnoresHeaderLength(t *testing.T) {
	var buf bytes.Buffer
	h := Header{Version: VersionRequest, Op: OpQuery, Length: 9999}
	if err := WriteFrame(&buf, h, []byte("ok")); err != nil {
		t.Fatalf("WriteFrame = %v", err)
	}

	f, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame = %v", err)
	}
	if f.Header.Length != 2 {
		t.Errorf("Length = %d, want 2", f.Header.Length)
	}
}

func TestReadHeaderLeavesBodyUnread(t *testing.T) {
	body := []byte("describe tables")

	var buf bytes.Buffer
	h := Header{Version: VersionRequest, Stream: 3, Op: OpQuery}
	if err := WriteFrame(&buf, h, body); err != nil {
		t.Fatalf("WriteFrame = %v", err)
	}

	got, err := ReadHeader(&buf, 0)
	if err != nil {
		t.Fatalf("ReadHeader = %v", err)
	}
	if got.Length != uint32(len(body)) {
		t.Errorf("Length = %d, want %d", got.Length, len(body))
	}
	if buf.Len() != len(body) {
		t.Errorf("unread bytes = %d, want %d", buf.Len(), len(body))
	}
}

func TestReadHeaderTooLarge(t *testing.T) {
	raw := EncodeHeader(Header{
		Version: VersionRequest,
		Op:      OpQuery,
		Length:  1 << 20,
	})

	_, err := ReadHeader(bytes.NewReader(raw[:]), 1024)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("ReadHeader error = %v, want ErrFrameTooLarge", err)
	}
}
