package storagetest

import (
	"bytes"
	"testing"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

func runRowOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("PutGetRoundTrip", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "blobs")

		// Keys and values are opaque bytes, embedded NULs included.
		key := []byte{0x00, 0x01, 'k', 0xFF}
		value := []byte{0xDE, 0x00, 0xAD}
		mustPut(t, store, "blobs", key, value)

		got, err := store.Get(ctx, "blobs", key)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if !bytes.Equal(got, value) {
			t.Errorf("Get() = %v, want %v", got, value)
		}
	})

	t.Run("GetMissingKey", func(t *testing.T) {
		store := factory(t)

		createTestTable(t, store, "users")

		_, err := store.Get(t.Context(), "users", []byte("ghost"))
		if !storage.IsNotFoundError(err) {
			t.Errorf("Get(ghost) error = %v, want NotFound", err)
		}
		if storage.IsTableNotFoundError(err) {
			t.Error("Get(ghost) reported TableNotFound for an existing table")
		}
	})

	t.Run("OverwriteReplacesValue", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		mustPut(t, store, "users", []byte("k"), []byte("v1"))
		mustPut(t, store, "users", []byte("k"), []byte("v2"))

		got, err := store.Get(ctx, "users", []byte("k"))
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if !bytes.Equal(got, []byte("v2")) {
			t.Errorf("Get() after overwrite = %q, want %q", got, "v2")
		}
	})

	t.Run("DeleteRemovesRow", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		mustPut(t, store, "users", []byte("k"), []byte("v"))

		if err := store.Delete(ctx, "users", []byte("k")); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, err := store.Get(ctx, "users", []byte("k")); !storage.IsNotFoundError(err) {
			t.Errorf("Get() after delete error = %v, want NotFound", err)
		}

		// Deleting an absent key is not an error.
		if err := store.Delete(ctx, "users", []byte("k")); err != nil {
			t.Errorf("Delete() of absent key failed: %v", err)
		}
	})

	t.Run("MissingTableRejected", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		if err := store.Put(ctx, "ghost", []byte("k"), []byte("v")); !storage.IsTableNotFoundError(err) {
			t.Errorf("Put() error = %v, want TableNotFound", err)
		}
		if _, err := store.Get(ctx, "ghost", []byte("k")); !storage.IsTableNotFoundError(err) {
			t.Errorf("Get() error = %v, want TableNotFound", err)
		}
		if err := store.Delete(ctx, "ghost", []byte("k")); !storage.IsTableNotFoundError(err) {
			t.Errorf("Delete() error = %v, want TableNotFound", err)
		}
		if _, err := store.Scan(ctx, "ghost", 0); !storage.IsTableNotFoundError(err) {
			t.Errorf("Scan() error = %v, want TableNotFound", err)
		}
	})

	t.Run("EmptyKeyRejected", func(t *testing.T) {
		store := factory(t)

		createTestTable(t, store, "users")

		err := store.Put(t.Context(), "users", nil, []byte("v"))
		if !storage.IsInvalidArgumentError(err) {
			t.Errorf("Put(nil key) error = %v, want InvalidArgument", err)
		}
	})

	t.Run("ScanReturnsKeyOrder", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		mustPut(t, store, "users", []byte("charlie"), []byte("3"))
		mustPut(t, store, "users", []byte("alice"), []byte("1"))
		mustPut(t, store, "users", []byte("bob"), []byte("2"))

		rows, err := store.Scan(ctx, "users", 0)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("Scan() returned %d rows, want 3", len(rows))
		}
		wantKeys := []string{"alice", "bob", "charlie"}
		for i, want := range wantKeys {
			if string(rows[i].Key) != want {
				t.Errorf("rows[%d].Key = %q, want %q", i, rows[i].Key, want)
			}
		}
	})

	t.Run("ScanHonorsLimit", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		for _, k := range []string{"a", "b", "c", "d", "e"} {
			mustPut(t, store, "users", []byte(k), []byte("v"))
		}

		rows, err := store.Scan(ctx, "users", 2)
		if err != nil {
			t.Fatalf("Scan(limit=2) failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Scan(limit=2) returned %d rows, want 2", len(rows))
		}
		if string(rows[0].Key) != "a" || string(rows[1].Key) != "b" {
			t.Errorf("Scan(limit=2) keys = [%s %s], want [a b]", rows[0].Key, rows[1].Key)
		}

		rows, err = store.Scan(ctx, "users", 100)
		if err != nil {
			t.Fatalf("Scan(limit=100) failed: %v", err)
		}
		if len(rows) != 5 {
			t.Errorf("Scan(limit=100) returned %d rows, want 5", len(rows))
		}
	})
}
