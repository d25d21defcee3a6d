package native

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "startup",
			msg: &Startup{Options: map[string]string{
				OptionNativeVersion: NativeVersion,
			}},
		},
		{name: "ready", msg: &Ready{}},
		{name: "authenticate", msg: &Authenticate{Class: "PasswordAuthenticator"}},
		{name: "auth response", msg: &AuthResponse{Token: []byte("admin\x00secret")}},
		{name: "auth success null token", msg: &AuthSuccess{}},
		{name: "options", msg: &Options{}},
		{
			name: "supported",
			msg: &Supported{Options: map[string][]string{
				OptionNativeVersion: {NativeVersion},
				OptionCompression:   {},
			}},
		},
		{
			name: "query",
			msg: &Query{
				Statement:   "SELECT * FROM system.local",
				Consistency: ConsistencyOne,
			},
		},
		{name: "void result", msg: &VoidResult{}},
		{
			name: "rows result",
			msg: &RowsResult{
				Columns: []string{"key", "value"},
				Rows: [][][]byte{
					{[]byte("k1"), []byte("v1")},
					{[]byte("k2"), nil},
				},
			},
		},
		{name: "error", msg: &Error{Code: CodeSyntaxError, Message: "line 1: unexpected token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := EncodeBody(tt.msg)
			if err != nil {
				t.Fatalf("EncodeBody = %v", err)
			}

			got, err := DecodeBody(tt.msg.Opcode(), body)
			if err != nil {
				t.Fatalf("DecodeBody = %v", err)
			}
			if !reflect.DeepEqual(got, tt.msg) {
				t.Errorf("round trip = %+v, want %+v", got, tt.msg)
			}
		})
	}
}

func TestErrorBodyWireFormat(t *testing.T) {
	body, err := EncodeBody(&Error{Code: CodeReadTimeout, Message: "read timed out"})
	if err != nil {
		t.Fatalf("EncodeBody = %v", err)
	}

	// [int] 120 big-endian, then [string] of length 14.
	wantPrefix := []byte{0x00, 0x00, 0x00, 0x78, 0x00, 0x0E}
	if !bytes.HasPrefix(body, wantPrefix) {
		t.Fatalf("ERROR body = % X, want prefix % X", body, wantPrefix)
	}
	if got := string(body[6:]); got != "read timed out" {
		t.Errorf("ERROR message bytes = %q, want %q", got, "read timed out")
	}
}

func TestDecodeErrorUnknownCode(t *testing.T) {
	w := newWriter(32)
	w.Int(9999)
	if err := w.String("future failure kind"); err != nil {
		t.Fatalf("String = %v", err)
	}

	_, err := DecodeBody(OpError, w.Buffer())
	if err == nil {
		t.Fatal("DecodeBody with code 9999 succeeded, want error")
	}

	var unknown *UnknownCodeError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *UnknownCodeError", err)
	}
	if unknown.Value != 9999 {
		t.Errorf("Value = %d, want 9999", unknown.Value)
	}
	// The message text still reaches the caller for logging.
	if !bytes.Contains([]byte(err.Error()), []byte("future failure kind")) {
		t.Errorf("error %q does not carry the server message", err)
	}
}

func TestErrorImplementsError(t *testing.T) {
	var err error = &Error{Code: CodeUnavailable, Message: "node is draining"}

	want := "server error [Unavailable] node is draining"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDecodeBodyTrailingBytes(t *testing.T) {
	body, err := EncodeBody(&Ready{})
	if err != nil {
		t.Fatalf("EncodeBody = %v", err)
	}
	body = append(body, 0xFF)

	if _, err := DecodeBody(OpReady, body); err == nil {
		t.Fatal("DecodeBody with trailing bytes succeeded, want error")
	}
}

func TestDecodeResultUnknownKind(t *testing.T) {
	w := newWriter(4)
	w.Int(0x0099)

	if _, err := DecodeBody(OpResult, w.Buffer()); err == nil {
		t.Fatal("DecodeBody with unknown result kind succeeded, want error")
	}
}

func TestDecodeRowsOversizedCounts(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *writer)
	}{
		{
			name: "column count",
			build: func(w *writer) {
				w.Int(resultKindRows)
				w.Int(0x7FFFFFFF)
			},
		},
		{
			name: "row count",
			build: func(w *writer) {
				w.Int(resultKindRows)
				w.Int(1)
				_ = w.String("key")
				w.Int(0x7FFFFFFF)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWriter(16)
			tt.build(w)
			if _, err := DecodeBody(OpResult, w.Buffer()); err == nil {
				t.Error("DecodeBody with oversized count succeeded, want error")
			}
		})
	}
}

func TestEncodeRowsMismatchedCells(t *testing.T) {
	msg := &RowsResult{
		Columns: []string{"key", "value"},
		Rows:    [][][]byte{{[]byte("only-one-cell")}},
	}

	if _, err := EncodeBody(msg); err == nil {
		t.Fatal("EncodeBody with short row succeeded, want error")
	}
}

func TestDecodeBodyUnknownOpcode(t *testing.T) {
	if _, err := DecodeBody(Opcode(0x42), nil); err == nil {
		t.Fatal("DecodeBody with unknown opcode succeeded, want error")
	}
}

func TestWriteMessageDirection(t *testing.T) {
	tests := []struct {
		name        string
		msg         Message
		wantVersion byte
	}{
		{name: "query is a request", msg: &Query{Statement: "x"}, wantVersion: VersionRequest},
		{name: "ready is a response", msg: &Ready{}, wantVersion: VersionResponse},
		{name: "error is a response", msg: &Error{Code: CodeServerError}, wantVersion: VersionResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteMessage(&buf, 5, tt.msg); err != nil {
				t.Fatalf("WriteMessage = %v", err)
			}

			f, err := ReadFrame(&buf, 0)
			if err != nil {
				t.Fatalf("ReadFrame = %v", err)
			}
			if f.Header.Version != tt.wantVersion {
				t.Errorf("Version = 0x%02X, want 0x%02X", f.Header.Version, tt.wantVersion)
			}
			if f.Header.Stream != 5 {
				t.Errorf("Stream = %d, want 5", f.Header.Stream)
			}
			if f.Header.Op != tt.msg.Opcode() {
				t.Errorf("Op = %v, want %v", f.Header.Op, tt.msg.Opcode())
			}
		})
	}
}

func TestWriteMessageReadBack(t *testing.T) {
	var buf bytes.Buffer
	in := &Error{Code: CodeAlreadyExists, Message: "table users already exists"}
	if err := WriteMessage(&buf, 9, in); err != nil {
		t.Fatalf("WriteMessage = %v", err)
	}

	f, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame = %v", err)
	}
	got, err := DecodeBody(f.Header.Op, f.Body)
	if err != nil {
		t.Fatalf("DecodeBody = %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("decoded = %+v, want %+v", got, in)
	}
}
