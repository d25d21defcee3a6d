// Package memory provides an in-memory storage engine. It is the default
// engine for tests and for nodes that do not need persistence; all state is
// lost when the store is closed or the process exits.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

// entry is one stored row. A zero expiresAt means the row never expires.
type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// table holds the rows and creation options of one table.
type table struct {
	options storage.TableOptions
	rows    map[string]entry
}

// MemoryStore is an in-memory implementation of storage.Store.
//
// All state sits behind a single RWMutex; reads take the read lock, writes
// the write lock. Expired rows are skipped on read and reclaimed when the
// table is written, truncated, or dropped.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*table
	closed bool

	// now is replaced in tests to control row expiry.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]*table),
		now:    time.Now,
	}
}

// CreateTable registers a new table.
func (s *MemoryStore) CreateTable(ctx context.Context, name string, opts storage.TableOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateTableName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.NewClosedError()
	}
	if _, exists := s.tables[name]; exists {
		return storage.NewTableExistsError(name)
	}

	s.tables[name] = &table{
		options: opts,
		rows:    make(map[string]entry),
	}
	return nil
}

// DropTable removes a table and all of its rows.
func (s *MemoryStore) DropTable(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.NewClosedError()
	}
	if _, exists := s.tables[name]; !exists {
		return storage.NewTableNotFoundError(name)
	}

	delete(s.tables, name)
	return nil
}

// Truncate removes every row of a table but keeps the table.
func (s *MemoryStore) Truncate(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.NewClosedError()
	}
	tbl, exists := s.tables[name]
	if !exists {
		return storage.NewTableNotFoundError(name)
	}

	tbl.rows = make(map[string]entry)
	return nil
}

// Tables lists existing tables sorted by name.
func (s *MemoryStore) Tables(ctx context.Context) ([]storage.TableInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.NewClosedError()
	}

	infos := make([]storage.TableInfo, 0, len(s.tables))
	for name, tbl := range s.tables {
		infos = append(infos, storage.TableInfo{
			Name:    name,
			Options: tbl.options,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Put stores a row, replacing any previous value for the key.
func (s *MemoryStore) Put(ctx context.Context, tableName string, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(key) == 0 {
		return storage.NewInvalidArgumentError("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.NewClosedError()
	}
	tbl, exists := s.tables[tableName]
	if !exists {
		return storage.NewTableNotFoundError(tableName)
	}

	var expiresAt time.Time
	if tbl.options.DefaultTTL > 0 {
		expiresAt = s.now().Add(tbl.options.DefaultTTL)
	}

	// Copy so callers can reuse their buffers.
	stored := make([]byte, len(value))
	copy(stored, value)

	tbl.rows[string(key)] = entry{value: stored, expiresAt: expiresAt}
	return nil
}

// Get returns the value stored for a key.
func (s *MemoryStore) Get(ctx context.Context, tableName string, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.NewClosedError()
	}
	tbl, exists := s.tables[tableName]
	if !exists {
		return nil, storage.NewTableNotFoundError(tableName)
	}

	e, ok := tbl.rows[string(key)]
	if !ok || e.expired(s.now()) {
		return nil, storage.NewNotFoundError(tableName)
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Delete removes a row. Deleting an absent key succeeds.
func (s *MemoryStore) Delete(ctx context.Context, tableName string, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.NewClosedError()
	}
	tbl, exists := s.tables[tableName]
	if !exists {
		return storage.NewTableNotFoundError(tableName)
	}

	delete(tbl.rows, string(key))
	return nil
}

// Scan returns up to limit rows in ascending key order.
func (s *MemoryStore) Scan(ctx context.Context, tableName string, limit int) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.NewClosedError()
	}
	tbl, exists := s.tables[tableName]
	if !exists {
		return nil, storage.NewTableNotFoundError(tableName)
	}

	now := s.now()
	rows := make([]storage.Row, 0, len(tbl.rows))
	for key, e := range tbl.rows {
		if e.expired(now) {
			continue
		}
		k := []byte(key)
		v := make([]byte, len(e.value))
		copy(v, e.value)
		rows = append(rows, storage.Row{Key: k, Value: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		return bytes.Compare(rows[i].Key, rows[j].Key) < 0
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Close marks the store closed and releases its tables. Close is idempotent.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.tables = nil
	return nil
}
