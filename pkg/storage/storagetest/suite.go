package storagetest

import (
	"testing"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

// StoreFactory creates a fresh Store instance for each test. The factory
// receives *testing.T so it can use t.TempDir() for stores that need
// filesystem paths and t.Cleanup() for teardown.
type StoreFactory func(t *testing.T) storage.Store

// RunConformanceSuite runs the full conformance test suite against the
// provided store factory. Each test gets a fresh store instance to ensure
// isolation.
//
// The suite covers three categories:
//   - TableOps: create, drop, truncate, listing, name validation, lifecycle
//   - RowOps: put/get/delete semantics, scan ordering and limits
//   - Expiry: TTL-backed row expiry with wall-clock TTLs
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("TableOps", func(t *testing.T) {
		runTableOpsTests(t, factory)
	})

	t.Run("RowOps", func(t *testing.T) {
		runRowOpsTests(t, factory)
	})

	t.Run("Expiry", func(t *testing.T) {
		runExpiryTests(t, factory)
	})
}

// createTestTable creates a table with default options, failing the test on
// error.
func createTestTable(t *testing.T, store storage.Store, name string) {
	t.Helper()

	if err := store.CreateTable(t.Context(), name, storage.TableOptions{}); err != nil {
		t.Fatalf("CreateTable(%q) failed: %v", name, err)
	}
}

// mustPut stores a row, failing the test on error.
func mustPut(t *testing.T, store storage.Store, table string, key, value []byte) {
	t.Helper()

	if err := store.Put(t.Context(), table, key, value); err != nil {
		t.Fatalf("Put(%q, %q) failed: %v", table, key, err)
	}
}
