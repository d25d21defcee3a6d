package storage

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of storage error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested key does not exist or has expired.
	ErrNotFound ErrorCode = iota + 1

	// ErrTableNotFound indicates the addressed table does not exist.
	ErrTableNotFound

	// ErrTableExists indicates a table with the same name already exists.
	ErrTableExists

	// ErrInvalidArgument indicates an invalid table name, key, or option.
	ErrInvalidArgument

	// ErrClosed indicates the store has been closed.
	ErrClosed

	// ErrInternal indicates an engine-level failure such as a corrupted
	// record or an I/O error.
	ErrInternal
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrTableNotFound:
		return "TableNotFound"
	case ErrTableExists:
		return "TableExists"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrClosed:
		return "Closed"
	case ErrInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// StoreError represents a storage error with an error code. Table names the
// table involved and is empty for store-wide failures.
type StoreError struct {
	Code    ErrorCode
	Message string
	Table   string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table: %s)", e.Code, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNotFoundError creates a NotFound error for a missing or expired key.
func NewNotFoundError(table string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: "key not found",
		Table:   table,
	}
}

// NewTableNotFoundError creates a TableNotFound error.
func NewTableNotFoundError(table string) *StoreError {
	return &StoreError{
		Code:    ErrTableNotFound,
		Message: "table does not exist",
		Table:   table,
	}
}

// NewTableExistsError creates a TableExists error.
func NewTableExistsError(table string) *StoreError {
	return &StoreError{
		Code:    ErrTableExists,
		Message: "table already exists",
		Table:   table,
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewClosedError creates a Closed error.
func NewClosedError() *StoreError {
	return &StoreError{
		Code:    ErrClosed,
		Message: "store is closed",
	}
}

// NewInternalError creates an Internal error wrapping an engine failure.
func NewInternalError(table string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrInternal,
		Message: cause.Error(),
		Table:   table,
	}
}

// ============================================================================
// Predicate Helpers
// ============================================================================

// IsNotFoundError returns true if the error reports a missing key.
func IsNotFoundError(err error) bool {
	return hasCode(err, ErrNotFound)
}

// IsTableNotFoundError returns true if the error reports a missing table.
func IsTableNotFoundError(err error) bool {
	return hasCode(err, ErrTableNotFound)
}

// IsTableExistsError returns true if the error reports a duplicate table.
func IsTableExistsError(err error) bool {
	return hasCode(err, ErrTableExists)
}

// IsInvalidArgumentError returns true if the error reports a bad argument.
func IsInvalidArgumentError(err error) bool {
	return hasCode(err, ErrInvalidArgument)
}

// IsClosedError returns true if the error reports a closed store.
func IsClosedError(err error) bool {
	return hasCode(err, ErrClosed)
}

// IsInternalError returns true if the error reports an engine failure.
func IsInternalError(err error) bool {
	return hasCode(err, ErrInternal)
}

func hasCode(err error, code ErrorCode) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == code
	}
	return false
}
