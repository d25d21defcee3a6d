package native

import "fmt"

// ============================================================================
// Error Codes
// ============================================================================

// ErrorCode identifies the failure category of an ERROR response. The numeric
// value of an ErrorCode is its wire representation: a 32-bit big-endian
// integer at the start of the ERROR body.
//
// Codes are grouped by numeric range: general failures below 100, failures
// while executing a request in 100-199, failures while validating a request
// in 200-299. The assignment is a compatibility contract shared with every
// peer implementation: changing an existing value breaks cross-version
// interop, while adding codes in unused sub-ranges does not.
type ErrorCode uint32

const (
	// CodeServerError reports an unexpected server-side failure; the
	// request may or may not have been applied.
	CodeServerError ErrorCode = 0

	// CodeProtocolError reports a malformed or ill-sequenced request frame.
	CodeProtocolError ErrorCode = 10

	// Execution errors (100-199): the request was valid but could not be
	// completed.
	CodeUnavailable     ErrorCode = 100 // node is draining and refuses new work
	CodeOverloaded      ErrorCode = 101 // in-flight request limit exceeded
	CodeIsBootstrapping ErrorCode = 102 // node has not finished starting up
	CodeTruncateError   ErrorCode = 103 // truncation did not complete
	CodeWriteTimeout    ErrorCode = 110 // write missed the write deadline
	CodeReadTimeout     ErrorCode = 120 // read missed the read deadline

	// Validation errors (200-299): the request itself was rejected.
	CodeSyntaxError   ErrorCode = 200 // statement could not be parsed
	CodeUnauthorized  ErrorCode = 210 // missing or rejected credentials
	CodeInvalid       ErrorCode = 220 // well-formed but semantically wrong
	CodeConfigError   ErrorCode = 230 // invalid schema or table option
	CodeAlreadyExists ErrorCode = 240 // table already exists
)

// errorCodes is the closed set of codes assigned in protocol v1. The wire
// index is derived from it at package init; keep it in sync with the const
// block above.
var errorCodes = []ErrorCode{
	CodeServerError,
	CodeProtocolError,
	CodeUnavailable,
	CodeOverloaded,
	CodeIsBootstrapping,
	CodeTruncateError,
	CodeWriteTimeout,
	CodeReadTimeout,
	CodeSyntaxError,
	CodeUnauthorized,
	CodeInvalid,
	CodeConfigError,
	CodeAlreadyExists,
}

// wireIndex resolves raw wire values back to error codes. Built once by
// init, read-only afterwards, so lookups need no locking.
var wireIndex map[uint32]ErrorCode

func init() {
	idx, err := indexErrorCodes(errorCodes)
	if err != nil {
		panic("native: " + err.Error())
	}
	wireIndex = idx
}

// indexErrorCodes builds the wire-value index for a code set. It rejects a
// set in which two codes share a wire value, so a bad assignment fails at
// process start rather than at first decode.
func indexErrorCodes(codes []ErrorCode) (map[uint32]ErrorCode, error) {
	idx := make(map[uint32]ErrorCode, len(codes))
	for _, c := range codes {
		if prev, ok := idx[uint32(c)]; ok {
			return nil, fmt.Errorf("duplicate error code %d (already assigned to %s)", uint32(c), prev)
		}
		idx[uint32(c)] = c
	}
	return idx, nil
}

// ErrorCodes returns the closed set of assigned codes, in wire-value order.
// The returned slice is a copy and may be modified by the caller.
func ErrorCodes() []ErrorCode {
	out := make([]ErrorCode, len(errorCodes))
	copy(out, errorCodes)
	return out
}

// UnknownCodeError reports an ERROR body carrying a wire value outside the
// assigned code set. The raw value is preserved for logging and diagnostics;
// the caller decides whether to degrade or drop the connection.
type UnknownCodeError struct {
	Value uint32
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown error code %d", e.Value)
}

// ErrorCodeFromWire resolves a raw 32-bit wire value to its ErrorCode.
// It returns an *UnknownCodeError for any value outside the assigned set.
// The ErrorCode result is meaningless when err is non-nil; no known code is
// ever substituted for an unknown value.
func ErrorCodeFromWire(v uint32) (ErrorCode, error) {
	c, ok := wireIndex[v]
	if !ok {
		return 0, &UnknownCodeError{Value: v}
	}
	return c, nil
}

// String returns the canonical category name, or "ErrorCode(N)" for a value
// outside the assigned set. String never fails; ErrorCodeFromWire is the
// validating lookup.
func (c ErrorCode) String() string {
	switch c {
	case CodeServerError:
		return "ServerError"
	case CodeProtocolError:
		return "ProtocolError"
	case CodeUnavailable:
		return "Unavailable"
	case CodeOverloaded:
		return "Overloaded"
	case CodeIsBootstrapping:
		return "IsBootstrapping"
	case CodeTruncateError:
		return "TruncateError"
	case CodeWriteTimeout:
		return "WriteTimeout"
	case CodeReadTimeout:
		return "ReadTimeout"
	case CodeSyntaxError:
		return "SyntaxError"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeInvalid:
		return "Invalid"
	case CodeConfigError:
		return "ConfigError"
	case CodeAlreadyExists:
		return "AlreadyExists"
	default:
		return fmt.Sprintf("ErrorCode(%d)", uint32(c))
	}
}
