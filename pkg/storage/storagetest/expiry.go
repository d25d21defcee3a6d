package storagetest

import (
	"bytes"
	"testing"
	"time"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

func runExpiryTests(t *testing.T, factory StoreFactory) {
	t.Run("RowsExpireAfterTTL", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		// Engines may track expiry with second granularity, so the TTL is
		// a full second and the wait comfortably overshoots it.
		if err := store.CreateTable(ctx, "sessions", storage.TableOptions{DefaultTTL: time.Second}); err != nil {
			t.Fatalf("CreateTable() failed: %v", err)
		}
		createTestTable(t, store, "users")

		mustPut(t, store, "sessions", []byte("token"), []byte("alice"))
		mustPut(t, store, "users", []byte("alice"), []byte("admin"))

		value, err := store.Get(ctx, "sessions", []byte("token"))
		if err != nil {
			t.Fatalf("Get() before expiry failed: %v", err)
		}
		if !bytes.Equal(value, []byte("alice")) {
			t.Errorf("Get() = %q, want %q", value, "alice")
		}

		time.Sleep(1300 * time.Millisecond)

		if _, err := store.Get(ctx, "sessions", []byte("token")); !storage.IsNotFoundError(err) {
			t.Errorf("Get() after expiry error = %v, want NotFound", err)
		}
		rows, err := store.Scan(ctx, "sessions", 0)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("Scan() after expiry returned %d rows, want 0", len(rows))
		}

		// Rows in a table without a TTL are untouched.
		if _, err := store.Get(ctx, "users", []byte("alice")); err != nil {
			t.Errorf("Get() on TTL-free table failed: %v", err)
		}
	})
}
