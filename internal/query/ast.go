// Package query parses and executes the v1 statement set: table DDL, single
// row reads and writes keyed by a text key, and DESCRIBE TABLES. Statements
// are parsed into typed values by Parse and run against a storage.Store by
// Executor.
package query

import "time"

// Statement is one parsed statement. Implementations are the statement
// structs below.
type Statement interface {
	stmt()
}

// CreateTable is CREATE TABLE <name> [WITH default_ttl = <seconds>].
type CreateTable struct {
	Table      string
	DefaultTTL time.Duration
}

// DropTable is DROP TABLE <name>.
type DropTable struct {
	Table string
}

// TruncateTable is TRUNCATE [TABLE] <name>.
type TruncateTable struct {
	Table string
}

// Insert is INSERT INTO <t> (key, value) VALUES ('<k>', '<v>').
type Insert struct {
	Table string
	Key   string
	Value string
}

// Select covers SELECT * | value FROM <t> [WHERE key = '<k>'] [LIMIT <n>].
type Select struct {
	Table string
	// Star selects the key and value columns; otherwise only value.
	Star   bool
	Key    string
	HasKey bool
	// Limit caps the row count; 0 means no limit.
	Limit int
}

// Delete is DELETE FROM <t> WHERE key = '<k>'.
type Delete struct {
	Table string
	Key   string
}

// DescribeTables is DESCRIBE TABLES.
type DescribeTables struct{}

func (*CreateTable) stmt()    {}
func (*DropTable) stmt()      {}
func (*TruncateTable) stmt()  {}
func (*Insert) stmt()         {}
func (*Select) stmt()         {}
func (*Delete) stmt()         {}
func (*DescribeTables) stmt() {}

// IsWrite reports whether a statement mutates the store. The server uses
// the split to pick the read or write deadline and the matching timeout
// error code.
func IsWrite(s Statement) bool {
	switch s.(type) {
	case *CreateTable, *DropTable, *TruncateTable, *Insert, *Delete:
		return true
	default:
		return false
	}
}

// KindOf returns the statement kind as a lowercase word, used in span names
// and logs.
func KindOf(s Statement) string {
	switch s.(type) {
	case *CreateTable:
		return "create_table"
	case *DropTable:
		return "drop_table"
	case *TruncateTable:
		return "truncate"
	case *Insert:
		return "insert"
	case *Select:
		return "select"
	case *Delete:
		return "delete"
	case *DescribeTables:
		return "describe_tables"
	default:
		return "unknown"
	}
}

// TableOf returns the table a statement addresses, or "" for statements
// that address none.
func TableOf(s Statement) string {
	switch t := s.(type) {
	case *CreateTable:
		return t.Table
	case *DropTable:
		return t.Table
	case *TruncateTable:
		return t.Table
	case *Insert:
		return t.Table
	case *Select:
		return t.Table
	case *Delete:
		return t.Table
	default:
		return ""
	}
}
