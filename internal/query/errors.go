package query

import (
	"context"
	"fmt"
	"time"
)

// ParseError reports a malformed statement with the position of the
// offending token.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d %s", e.Line, e.Column, e.Message)
}

// OptionError reports a table option that is unknown or carries an unusable
// value.
type OptionError struct {
	Option  string
	Value   string
	Message string
}

func (e *OptionError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid value %q for table option %s: %s", e.Value, e.Option, e.Message)
	}
	return fmt.Sprintf("table option %s: %s", e.Option, e.Message)
}

// SemanticError reports a statement that parses but names something that
// does not make sense, such as an undefined column or a write to a virtual
// table.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string {
	return e.Message
}

// TimeoutKind distinguishes read from write deadline overruns.
type TimeoutKind int

const (
	TimeoutRead TimeoutKind = iota
	TimeoutWrite
)

// TimeoutError reports that a statement hit its read or write deadline.
type TimeoutError struct {
	Kind    TimeoutKind
	Table   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	op := "read"
	if e.Kind == TimeoutWrite {
		op = "write"
	}
	if e.Table != "" {
		return fmt.Sprintf("%s timed out after %s on table %s", op, e.Timeout, e.Table)
	}
	return fmt.Sprintf("%s timed out after %s", op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// TruncationError reports a TRUNCATE that reached the store but did not
// complete.
type TruncationError struct {
	Table string
	Err   error
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("truncate failed on table %s: %v", e.Table, e.Err)
}

func (e *TruncationError) Unwrap() error {
	return e.Err
}
