// Package storage defines the table-oriented key-value store behind a
// colonnade node. A store holds named tables; each table maps opaque binary
// keys to opaque binary values and carries per-table options such as a
// default TTL. Engines live in subpackages (memory, badger) and are verified
// against the same behavioral contract by the storagetest conformance suite.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// MaxTableNameLength bounds table identifiers. Engines embed table names in
// their key namespace, so the bound also caps key overhead.
const MaxTableNameLength = 48

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TableOptions holds per-table settings fixed at creation time.
type TableOptions struct {
	// DefaultTTL expires every row written to the table after the given
	// duration. Zero means rows never expire.
	DefaultTTL time.Duration `json:"default_ttl"`
}

// TableInfo describes one existing table.
type TableInfo struct {
	Name    string       `json:"name"`
	Options TableOptions `json:"options"`
}

// Row is one key-value pair returned by Scan.
type Row struct {
	Key   []byte
	Value []byte
}

// Store is the behavioral contract shared by all storage engines.
//
// Operations on a missing table fail with a TableNotFound-coded StoreError;
// Get on a missing or expired key fails with a NotFound-coded StoreError.
// Delete is idempotent: removing an absent key succeeds. After Close every
// operation fails with a Closed-coded StoreError; Close itself is idempotent.
type Store interface {
	// CreateTable registers a new table. Fails with a TableExists-coded
	// error when a table with the same name is present.
	CreateTable(ctx context.Context, name string, opts TableOptions) error

	// DropTable removes a table and all of its rows.
	DropTable(ctx context.Context, name string) error

	// Truncate removes every row of a table but keeps the table and its
	// options.
	Truncate(ctx context.Context, name string) error

	// Tables lists existing tables sorted by name.
	Tables(ctx context.Context) ([]TableInfo, error)

	Put(ctx context.Context, table string, key, value []byte) error
	Get(ctx context.Context, table string, key []byte) ([]byte, error)
	Delete(ctx context.Context, table string, key []byte) error

	// Scan returns up to limit rows in ascending key order. A limit <= 0
	// means no limit. Expired rows are never returned.
	Scan(ctx context.Context, table string, limit int) ([]Row, error)

	Close() error
}

// ValidateTableName checks that a name is usable as a table identifier.
// Engines call this before touching their key namespace.
func ValidateTableName(name string) error {
	if name == "" {
		return NewInvalidArgumentError("table name cannot be empty")
	}
	if len(name) > MaxTableNameLength {
		return NewInvalidArgumentError(fmt.Sprintf("table name exceeds %d characters", MaxTableNameLength))
	}
	if !tableNamePattern.MatchString(name) {
		return NewInvalidArgumentError(fmt.Sprintf("invalid table name %q: must match %s", name, tableNamePattern))
	}
	return nil
}
