// Package badger provides a BadgerDB-backed storage engine. Tables and rows
// survive restarts; row TTLs ride on badger's native entry TTL.
package badger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

// BadgerStore is a BadgerDB-backed implementation of storage.Store.
//
// Table manifests are cached in memory so row operations never re-read them
// from disk; the cache is rebuilt from the manifest prefix when the store
// opens. Cache and disk are mutated under the same lock, so row operations
// always observe a consistent table set.
type BadgerStore struct {
	db *badgerdb.DB

	mu     sync.RWMutex
	tables map[string]storage.TableOptions
	closed bool
}

// NewBadgerStore opens or creates a BadgerDB-backed store at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badgerdb.DefaultOptions(path)
	opts.Logger = nil

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", path, err)
	}

	s := &BadgerStore{
		db:     db,
		tables: make(map[string]storage.TableOptions),
	}
	if err := s.loadManifests(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// loadManifests rebuilds the table cache from the manifest prefix.
func (s *BadgerStore) loadManifests() error {
	return s.db.View(func(txn *badgerdb.Txn) error {
		iopts := badgerdb.DefaultIteratorOptions
		iopts.Prefix = []byte(prefixManifest)
		it := txn.NewIterator(iopts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				manifest, err := decodeManifest(val)
				if err != nil {
					return err
				}
				s.tables[manifest.Name] = manifest.Options
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to load table manifests: %w", err)
			}
		}
		return nil
	})
}

// CreateTable registers a new table.
func (s *BadgerStore) CreateTable(ctx context.Context, name string, opts storage.TableOptions) error {
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

	manifest := &tableManifest{
		Name:      name,
		Options:   opts,
		CreatedAt: time.Now().UTC(),
	}
	data, err := encodeManifest(manifest)
	if err != nil {
		return storage.NewInternalError(name, err)
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(keyManifest(name), data)
	})
	if err != nil {
		return storage.NewInternalError(name, err)
	}

	// A drop interrupted between manifest delete and row sweep can leave
	// rows behind; clear them before the table becomes visible.
	if stale, err := s.hasRows(name); err != nil {
		return storage.NewInternalError(name, err)
	} else if stale {
		if err := s.db.DropPrefix(keyRowPrefix(name)); err != nil {
			return storage.NewInternalError(name, err)
		}
	}

	s.tables[name] = opts
	return nil
}

// hasRows reports whether any row exists under the table's prefix.
func (s *BadgerStore) hasRows(name string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		iopts := badgerdb.DefaultIteratorOptions
		iopts.Prefix = keyRowPrefix(name)
		iopts.PrefetchValues = false
		it := txn.NewIterator(iopts)
		defer it.Close()

		it.Rewind()
		found = it.Valid()
		return nil
	})
	return found, err
}

// DropTable removes a table and all of its rows.
func (s *BadgerStore) DropTable(ctx context.Context, name string) error {
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

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(keyManifest(name))
	})
	if err != nil {
		return storage.NewInternalError(name, err)
	}
	if err := s.db.DropPrefix(keyRowPrefix(name)); err != nil {
		return storage.NewInternalError(name, err)
	}

	delete(s.tables, name)
	return nil
}

// Truncate removes every row of a table but keeps its manifest.
func (s *BadgerStore) Truncate(ctx context.Context, name string) error {
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

	if err := s.db.DropPrefix(keyRowPrefix(name)); err != nil {
		return storage.NewInternalError(name, err)
	}
	return nil
}

// Tables lists existing tables sorted by name.
func (s *BadgerStore) Tables(ctx context.Context) ([]storage.TableInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.NewClosedError()
	}

	infos := make([]storage.TableInfo, 0, len(s.tables))
	for name, opts := range s.tables {
		infos = append(infos, storage.TableInfo{Name: name, Options: opts})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Put stores a row, replacing any previous value for the key. When the
// table carries a TTL the row is written with a matching badger entry TTL.
func (s *BadgerStore) Put(ctx context.Context, tableName string, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(key) == 0 {
		return storage.NewInvalidArgumentError("key cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.NewClosedError()
	}
	opts, exists := s.tables[tableName]
	if !exists {
		return storage.NewTableNotFoundError(tableName)
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		e := badgerdb.NewEntry(keyRow(tableName, key), value)
		if opts.DefaultTTL > 0 {
			e = e.WithTTL(opts.DefaultTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return storage.NewInternalError(tableName, err)
	}
	return nil
}

// Get returns the value stored for a key. Expired rows read as missing.
func (s *BadgerStore) Get(ctx context.Context, tableName string, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.NewClosedError()
	}
	if _, exists := s.tables[tableName]; !exists {
		return nil, storage.NewTableNotFoundError(tableName)
	}

	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyRow(tableName, key))
		if err == badgerdb.ErrKeyNotFound {
			return storage.NewNotFoundError(tableName)
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if storage.IsNotFoundError(err) {
			return nil, err
		}
		return nil, storage.NewInternalError(tableName, err)
	}
	return value, nil
}

// Delete removes a row. Deleting an absent key succeeds.
func (s *BadgerStore) Delete(ctx context.Context, tableName string, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.NewClosedError()
	}
	if _, exists := s.tables[tableName]; !exists {
		return storage.NewTableNotFoundError(tableName)
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(keyRow(tableName, key))
	})
	if err != nil {
		return storage.NewInternalError(tableName, err)
	}
	return nil
}

// Scan returns up to limit rows in ascending key order. Badger iterates in
// byte order and skips expired entries, so the engine contract falls out of
// a plain prefix iteration.
func (s *BadgerStore) Scan(ctx context.Context, tableName string, limit int) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.NewClosedError()
	}
	if _, exists := s.tables[tableName]; !exists {
		return nil, storage.NewTableNotFoundError(tableName)
	}

	prefix := keyRowPrefix(tableName)
	rows := make([]storage.Row, 0)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		iopts := badgerdb.DefaultIteratorOptions
		iopts.Prefix = prefix
		it := txn.NewIterator(iopts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(rows) >= limit {
				break
			}
			item := it.Item()

			key := append([]byte(nil), item.Key()[len(prefix):]...)
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rows = append(rows, storage.Row{Key: key, Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, storage.NewInternalError(tableName, err)
	}
	return rows, nil
}

// CacheHitRatios returns the hit ratios of badger's block and index caches.
// A disabled cache reports 0.
func (s *BadgerStore) CacheHitRatios() (block, index float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, 0
	}
	return s.db.BlockCacheMetrics().Ratio(), s.db.IndexCacheMetrics().Ratio()
}

// DiskSize returns the on-disk size of the LSM tree and the value log in
// bytes.
func (s *BadgerStore) DiskSize() (lsmBytes, vlogBytes int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, 0
	}
	return s.db.Size()
}

// Close flushes and closes the underlying database. Close is idempotent.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.tables = nil

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger store: %w", err)
	}
	return nil
}
