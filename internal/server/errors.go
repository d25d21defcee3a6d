package server

import (
	"errors"
	"fmt"

	"github.com/colonnadedb/colonnade/internal/auth"
	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/internal/query"
	"github.com/colonnadedb/colonnade/pkg/protocol/native"
	"github.com/colonnadedb/colonnade/pkg/storage"
)

// Sentinel errors for server lifecycle rejections. Dispatch raises these and
// WireError translates them to wire codes.
var (
	errNotReady     = errors.New("node is starting up")
	errDraining     = errors.New("node is draining")
	errOverloaded   = errors.New("too many in-flight requests")
	errAuthRequired = errors.New("authentication required before queries")
)

// protocolError marks a native protocol violation: bad framing, an
// unexpected opcode, or a message sent in the wrong connection state.
type protocolError struct {
	reason string
}

func (e *protocolError) Error() string {
	return e.reason
}

func protocolViolation(format string, args ...any) error {
	return &protocolError{reason: fmt.Sprintf(format, args...)}
}

// ============================================================================
// Error Mapping - server errors → wire error codes
// ============================================================================

// WireError maps any error raised while serving a request to the wire error
// code and message carried by an ERROR response.
//
// Error Mapping:
//   - query.ParseError → CodeSyntaxError (statement failed to parse)
//   - query.OptionError → CodeConfigError (unusable table option value)
//   - query.SemanticError → CodeInvalid (parsed but semantically wrong)
//   - query.TimeoutError → CodeReadTimeout / CodeWriteTimeout by kind
//   - query.TruncationError → CodeTruncateError
//   - storage TableExists → CodeAlreadyExists
//   - storage TableNotFound / InvalidArgument → CodeInvalid
//   - storage Closed → CodeUnavailable
//   - protocol violations → CodeProtocolError
//   - lifecycle rejections → CodeIsBootstrapping / CodeUnavailable / CodeOverloaded
//   - auth failures → CodeUnauthorized
//   - anything else → CodeServerError
//
// This function also handles logging at appropriate levels: client errors
// are logged as warnings, server-side failures as errors.
func WireError(err error, clientAddr string, opcode string) (native.ErrorCode, string) {
	var (
		parseErr *query.ParseError
		optErr   *query.OptionError
		semErr   *query.SemanticError
		timeout  *query.TimeoutError
		truncErr *query.TruncationError
		protoErr *protocolError
		storeErr *storage.StoreError
	)

	switch {
	case errors.As(err, &parseErr):
		logger.Warn("Statement rejected", "opcode", opcode, "error", parseErr.Message, "client", clientAddr)
		return native.CodeSyntaxError, parseErr.Error()

	case errors.As(err, &optErr):
		logger.Warn("Statement rejected", "opcode", opcode, "error", err, "client", clientAddr)
		return native.CodeConfigError, optErr.Error()

	case errors.As(err, &semErr):
		logger.Warn("Statement rejected", "opcode", opcode, "error", err, "client", clientAddr)
		return native.CodeInvalid, semErr.Error()

	case errors.As(err, &timeout):
		logger.Warn("Request timed out", "opcode", opcode, "error", err, "client", clientAddr)
		if timeout.Kind == query.TimeoutWrite {
			return native.CodeWriteTimeout, timeout.Error()
		}
		return native.CodeReadTimeout, timeout.Error()

	case errors.As(err, &truncErr):
		logger.Error("Truncate failed", "table", truncErr.Table, "error", err, "client", clientAddr)
		return native.CodeTruncateError, truncErr.Error()

	case errors.As(err, &protoErr):
		logger.Warn("Protocol violation", "opcode", opcode, "error", err, "client", clientAddr)
		return native.CodeProtocolError, protoErr.Error()

	case errors.Is(err, errNotReady):
		logger.Warn("Request rejected: node starting", "opcode", opcode, "client", clientAddr)
		return native.CodeIsBootstrapping, err.Error()

	case errors.Is(err, errDraining):
		logger.Warn("Request rejected: node draining", "opcode", opcode, "client", clientAddr)
		return native.CodeUnavailable, err.Error()

	case errors.Is(err, errOverloaded):
		logger.Warn("Request rejected: overloaded", "opcode", opcode, "client", clientAddr)
		return native.CodeOverloaded, err.Error()

	case errors.Is(err, errAuthRequired), errors.Is(err, auth.ErrInvalidCredentials):
		logger.Warn("Authentication failure", "opcode", opcode, "client", clientAddr)
		return native.CodeUnauthorized, err.Error()

	case errors.As(err, &storeErr):
		switch storeErr.Code {
		case storage.ErrTableExists:
			logger.Warn("Statement rejected: table exists", "table", storeErr.Table, "client", clientAddr)
			return native.CodeAlreadyExists, storeErr.Error()
		case storage.ErrTableNotFound:
			logger.Warn("Statement rejected: unknown table", "table", storeErr.Table, "client", clientAddr)
			return native.CodeInvalid, storeErr.Error()
		case storage.ErrInvalidArgument:
			logger.Warn("Statement rejected: invalid argument", "error", storeErr.Message, "client", clientAddr)
			return native.CodeInvalid, storeErr.Error()
		case storage.ErrClosed:
			logger.Error("Store unavailable", "opcode", opcode, "client", clientAddr)
			return native.CodeUnavailable, storeErr.Error()
		default:
			logger.Error("Store failure", "opcode", opcode, "error", err, "client", clientAddr)
			return native.CodeServerError, storeErr.Error()
		}

	default:
		logger.Error("Request failed", "opcode", opcode, "error", err, "client", clientAddr)
		return native.CodeServerError, err.Error()
	}
}
