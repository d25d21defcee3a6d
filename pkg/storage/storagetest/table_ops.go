package storagetest

import (
	"testing"
	"time"

	"github.com/colonnadedb/colonnade/pkg/storage"
)

func runTableOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndList", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		if err := store.CreateTable(ctx, "events", storage.TableOptions{DefaultTTL: time.Hour}); err != nil {
			t.Fatalf("CreateTable(events) failed: %v", err)
		}

		infos, err := store.Tables(ctx)
		if err != nil {
			t.Fatalf("Tables() failed: %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("Tables() returned %d tables, want 2", len(infos))
		}
		if infos[0].Name != "events" || infos[1].Name != "users" {
			t.Errorf("Tables() order = [%s %s], want [events users]", infos[0].Name, infos[1].Name)
		}
		if infos[0].Options.DefaultTTL != time.Hour {
			t.Errorf("events DefaultTTL = %v, want 1h", infos[0].Options.DefaultTTL)
		}
	})

	t.Run("DuplicateCreateFails", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")

		err := store.CreateTable(ctx, "users", storage.TableOptions{})
		if !storage.IsTableExistsError(err) {
			t.Errorf("duplicate CreateTable error = %v, want TableExists", err)
		}
	})

	t.Run("DropRemovesTable", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		mustPut(t, store, "users", []byte("k"), []byte("v"))

		if err := store.DropTable(ctx, "users"); err != nil {
			t.Fatalf("DropTable() failed: %v", err)
		}

		infos, err := store.Tables(ctx)
		if err != nil {
			t.Fatalf("Tables() failed: %v", err)
		}
		if len(infos) != 0 {
			t.Errorf("Tables() after drop returned %d tables, want 0", len(infos))
		}

		_, err = store.Get(ctx, "users", []byte("k"))
		if !storage.IsTableNotFoundError(err) {
			t.Errorf("Get() after drop error = %v, want TableNotFound", err)
		}
	})

	t.Run("DropMissingFails", func(t *testing.T) {
		store := factory(t)

		err := store.DropTable(t.Context(), "ghost")
		if !storage.IsTableNotFoundError(err) {
			t.Errorf("DropTable(ghost) error = %v, want TableNotFound", err)
		}
	})

	t.Run("TruncateClearsRowsKeepsTable", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		if err := store.CreateTable(ctx, "events", storage.TableOptions{DefaultTTL: time.Hour}); err != nil {
			t.Fatalf("CreateTable() failed: %v", err)
		}
		mustPut(t, store, "events", []byte("a"), []byte("1"))
		mustPut(t, store, "events", []byte("b"), []byte("2"))

		if err := store.Truncate(ctx, "events"); err != nil {
			t.Fatalf("Truncate() failed: %v", err)
		}

		rows, err := store.Scan(ctx, "events", 0)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("Scan() after truncate returned %d rows, want 0", len(rows))
		}

		infos, err := store.Tables(ctx)
		if err != nil {
			t.Fatalf("Tables() failed: %v", err)
		}
		if len(infos) != 1 || infos[0].Name != "events" {
			t.Fatalf("Tables() after truncate = %v, want [events]", infos)
		}
		if infos[0].Options.DefaultTTL != time.Hour {
			t.Errorf("truncate lost table options: DefaultTTL = %v, want 1h", infos[0].Options.DefaultTTL)
		}
	})

	t.Run("TruncateMissingFails", func(t *testing.T) {
		store := factory(t)

		err := store.Truncate(t.Context(), "ghost")
		if !storage.IsTableNotFoundError(err) {
			t.Errorf("Truncate(ghost) error = %v, want TableNotFound", err)
		}
	})

	t.Run("RecreateAfterDropStartsEmpty", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		mustPut(t, store, "users", []byte("k"), []byte("old"))

		if err := store.DropTable(ctx, "users"); err != nil {
			t.Fatalf("DropTable() failed: %v", err)
		}
		createTestTable(t, store, "users")

		rows, err := store.Scan(ctx, "users", 0)
		if err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("recreated table has %d rows, want 0", len(rows))
		}
	})

	t.Run("InvalidNamesRejected", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		for _, name := range []string{"", "1users", "user-data", "a:b", "a b"} {
			err := store.CreateTable(ctx, name, storage.TableOptions{})
			if !storage.IsInvalidArgumentError(err) {
				t.Errorf("CreateTable(%q) error = %v, want InvalidArgument", name, err)
			}
		}
	})

	t.Run("ClosedStoreRejectsOperations", func(t *testing.T) {
		store := factory(t)
		ctx := t.Context()

		createTestTable(t, store, "users")
		if err := store.Close(); err != nil {
			t.Fatalf("Close() failed: %v", err)
		}

		if err := store.CreateTable(ctx, "more", storage.TableOptions{}); !storage.IsClosedError(err) {
			t.Errorf("CreateTable() after close error = %v, want Closed", err)
		}
		if _, err := store.Get(ctx, "users", []byte("k")); !storage.IsClosedError(err) {
			t.Errorf("Get() after close error = %v, want Closed", err)
		}
		if err := store.Put(ctx, "users", []byte("k"), []byte("v")); !storage.IsClosedError(err) {
			t.Errorf("Put() after close error = %v, want Closed", err)
		}

		// Close is idempotent.
		if err := store.Close(); err != nil {
			t.Errorf("second Close() failed: %v", err)
		}
	})
}
