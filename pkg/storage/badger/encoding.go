package badger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a flat key-value store, so tables are carved out of the key
// space with prefixes. Row keys embed the table name, which keeps one
// table's rows contiguous and makes Scan and Truncate a prefix operation.
// Table names are validated against ":" so prefixes cannot collide.
//
// Data Type        Prefix   Key Format         Value Type
// ============================================================
// Rows             "t:"     t:<table>:<key>    raw value bytes
// Table Manifests  "m:"     m:<table>          tableManifest (JSON)

const (
	prefixRow      = "t:"
	prefixManifest = "m:"
)

// keyRow generates the key for one row: "t:<table>:<key>"
func keyRow(table string, key []byte) []byte {
	k := make([]byte, 0, len(prefixRow)+len(table)+1+len(key))
	k = append(k, prefixRow...)
	k = append(k, table...)
	k = append(k, ':')
	return append(k, key...)
}

// keyRowPrefix generates the prefix for range scanning a table: "t:<table>:"
func keyRowPrefix(table string) []byte {
	return []byte(prefixRow + table + ":")
}

// keyManifest generates the key for a table manifest: "m:<table>"
func keyManifest(table string) []byte {
	return []byte(prefixManifest + table)
}

// tableManifest records a table's existence and options. One manifest is
// written per table; the set of manifests is the authoritative table list
// rebuilt into the in-memory cache on open.
type tableManifest struct {
	Name      string               `json:"name"`
	Options   storage.TableOptions `json:"options"`
	CreatedAt time.Time            `json:"created_at"`
}

func encodeManifest(m *tableManifest) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode table manifest: %w", err)
	}
	return data, nil
}

func decodeManifest(data []byte) (*tableManifest, error) {
	var m tableManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode table manifest: %w", err)
	}
	return &m, nil
}
