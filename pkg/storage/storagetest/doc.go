// Package storagetest provides a conformance test suite for storage engine
// implementations.
//
// All storage backends (memory, badger) should pass these tests. The suite
// verifies that every engine satisfies the storage.Store behavioral
// contract, catching regressions when engine code changes.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storagetest.RunConformanceSuite(t, func(t *testing.T) storage.Store {
//	        return memory.NewMemoryStore()
//	    })
//	}
//
// The factory function receives *testing.T so it can call t.TempDir() for
// engines that need filesystem paths (e.g., BadgerDB) and t.Cleanup for
// teardown.
package storagetest
