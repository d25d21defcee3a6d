package client

import (
	"errors"
	"fmt"

	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// ErrClientClosed is returned by requests on a closed client.
var ErrClientClosed = errors.New("client: connection closed")

// ServerError is an ERROR frame surfaced as a Go error. Code is the wire
// error code resolved through the protocol registry; Message is the
// human-readable text sent by the server.
type ServerError struct {
	Code    native.ErrorCode
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAuthError returns true if the server rejected credentials or required
// authentication.
func (e *ServerError) IsAuthError() bool {
	return e.Code == native.CodeUnauthorized
}

// IsSyntaxError returns true if the statement failed to parse.
func (e *ServerError) IsSyntaxError() bool {
	return e.Code == native.CodeSyntaxError
}

// IsTimeout returns true if the statement missed its read or write deadline.
func (e *ServerError) IsTimeout() bool {
	return e.Code == native.CodeReadTimeout || e.Code == native.CodeWriteTimeout
}

// IsUnavailable returns true if the node cannot take the request right now:
// it is starting up, draining, or over its in-flight limit.
func (e *ServerError) IsUnavailable() bool {
	return e.Code == native.CodeUnavailable ||
		e.Code == native.CodeIsBootstrapping ||
		e.Code == native.CodeOverloaded
}

// IsAlreadyExists returns true if the statement tried to create a table
// that exists.
func (e *ServerError) IsAlreadyExists() bool {
	return e.Code == native.CodeAlreadyExists
}
