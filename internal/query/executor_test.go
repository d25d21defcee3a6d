package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colonnadedb/colonnade/pkg/storage"
	"github.com/colonnadedb/colonnade/pkg/storage/memory"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewExecutor(store, Options{
		Local: LocalInfo{
			HostID:         "5b945d7a-0f8e-4c93-9b54-3d1d08b0c547",
			ClusterName:    "Test Cluster",
			ReleaseVersion: "1.0.0",
			ListenAddress:  "127.0.0.1",
		},
	})
}

func exec(t *testing.T, e *Executor, input string) (*Result, error) {
	t.Helper()
	stmt, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return e.Execute(t.Context(), stmt)
}

func mustExec(t *testing.T, e *Executor, input string) *Result {
	t.Helper()
	res, err := exec(t, e, input)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", input, err)
	}
	return res
}

func TestExecutorCreateInsertSelect(t *testing.T) {
	e := newTestExecutor(t)

	if res := mustExec(t, e, "CREATE TABLE users"); !res.Void() {
		t.Fatalf("expected void result, got %+v", res)
	}
	if res := mustExec(t, e, "INSERT INTO users (key, value) VALUES ('alice', 'admin')"); !res.Void() {
		t.Fatalf("expected void result, got %+v", res)
	}

	res := mustExec(t, e, "SELECT value FROM users WHERE key = 'alice'")
	if len(res.Columns) != 1 || res.Columns[0] != "value" {
		t.Fatalf("unexpected columns: %v", res.Columns)
	}
	if len(res.Rows) != 1 || string(res.Rows[0][0]) != "admin" {
		t.Fatalf("unexpected rows: %v", res.Rows)
	}
}

func TestExecutorSelectStarIncludesKey(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE users")
	mustExec(t, e, "INSERT INTO users (key, value) VALUES ('alice', 'admin')")

	res := mustExec(t, e, "SELECT * FROM users WHERE key = 'alice'")
	if len(res.Columns) != 2 || res.Columns[0] != "key" || res.Columns[1] != "value" {
		t.Fatalf("unexpected columns: %v", res.Columns)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if string(res.Rows[0][0]) != "alice" || string(res.Rows[0][1]) != "admin" {
		t.Fatalf("unexpected row: %v", res.Rows[0])
	}
}

func TestExecutorSelectMissingKey(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE users")

	res := mustExec(t, e, "SELECT value FROM users WHERE key = 'ghost'")
	if len(res.Rows) != 0 {
		t.Fatalf("expected empty result, got %v", res.Rows)
	}
	if len(res.Columns) != 1 || res.Columns[0] != "value" {
		t.Fatalf("unexpected columns: %v", res.Columns)
	}
}

func TestExecutorScanOrderAndLimit(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE users")
	mustExec(t, e, "INSERT INTO users (key, value) VALUES ('charlie', '3')")
	mustExec(t, e, "INSERT INTO users (key, value) VALUES ('alice', '1')")
	mustExec(t, e, "INSERT INTO users (key, value) VALUES ('bob', '2')")

	res := mustExec(t, e, "SELECT * FROM users")
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	for i, want := range []string{"alice", "bob", "charlie"} {
		if string(res.Rows[i][0]) != want {
			t.Fatalf("row %d key = %q, want %q", i, res.Rows[i][0], want)
		}
	}

	res = mustExec(t, e, "SELECT * FROM users LIMIT 2")
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
}

func TestExecutorDeleteIsIdempotent(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE users")
	mustExec(t, e, "INSERT INTO users (key, value) VALUES ('alice', 'admin')")

	mustExec(t, e, "DELETE FROM users WHERE key = 'alice'")
	mustExec(t, e, "DELETE FROM users WHERE key = 'alice'")

	res := mustExec(t, e, "SELECT * FROM users")
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %v", res.Rows)
	}
}

func TestExecutorDuplicateCreate(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE users")

	_, err := exec(t, e, "CREATE TABLE users")
	if !storage.IsTableExistsError(err) {
		t.Fatalf("expected table exists error, got %v", err)
	}
}

func TestExecutorMissingTable(t *testing.T) {
	e := newTestExecutor(t)

	for _, input := range []string{
		"SELECT * FROM ghosts",
		"INSERT INTO ghosts (key, value) VALUES ('a', 'b')",
		"DELETE FROM ghosts WHERE key = 'a'",
		"DROP TABLE ghosts",
		"TRUNCATE ghosts",
	} {
		_, err := exec(t, e, input)
		if !storage.IsTableNotFoundError(err) {
			t.Fatalf("Execute(%q): expected table not found, got %v", input, err)
		}
	}
}

func TestExecutorTruncate(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE users")
	mustExec(t, e, "INSERT INTO users (key, value) VALUES ('alice', 'admin')")

	mustExec(t, e, "TRUNCATE TABLE users")

	res := mustExec(t, e, "SELECT * FROM users")
	if len(res.Rows) != 0 {
		t.Fatalf("expected empty table, got %v", res.Rows)
	}
}

// brokenTruncateStore fails every truncate with an internal error.
type brokenTruncateStore struct {
	storage.Store
}

func (s brokenTruncateStore) Truncate(ctx context.Context, table string) error {
	return storage.NewInternalError(table, errors.New("compaction in progress"))
}

func TestExecutorTruncateFailure(t *testing.T) {
	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	if err := store.CreateTable(t.Context(), "users", storage.TableOptions{}); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	e := NewExecutor(brokenTruncateStore{Store: store}, Options{})
	_, err := exec(t, e, "TRUNCATE users")

	var truncErr *TruncationError
	if !errors.As(err, &truncErr) {
		t.Fatalf("expected TruncationError, got %v", err)
	}
	if truncErr.Table != "users" {
		t.Fatalf("unexpected table: %+v", truncErr)
	}
	if !storage.IsInternalError(errors.Unwrap(truncErr)) {
		t.Fatalf("cause not preserved: %v", errors.Unwrap(truncErr))
	}
}

// stalledStore blocks reads and writes until the statement deadline fires.
type stalledStore struct {
	storage.Store
}

func (s stalledStore) Put(ctx context.Context, table string, key, value []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s stalledStore) Get(ctx context.Context, table string, key []byte) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExecutorWriteTimeout(t *testing.T) {
	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	e := NewExecutor(stalledStore{Store: store}, Options{WriteTimeout: 20 * time.Millisecond})
	_, err := exec(t, e, "INSERT INTO users (key, value) VALUES ('a', 'b')")

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Kind != TimeoutWrite || timeoutErr.Table != "users" {
		t.Fatalf("unexpected timeout error: %+v", timeoutErr)
	}
	if timeoutErr.Timeout != 20*time.Millisecond {
		t.Fatalf("unexpected timeout duration: %v", timeoutErr.Timeout)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("timeout error should unwrap to deadline exceeded")
	}
}

func TestExecutorReadTimeout(t *testing.T) {
	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	e := NewExecutor(stalledStore{Store: store}, Options{ReadTimeout: 20 * time.Millisecond})
	_, err := exec(t, e, "SELECT value FROM users WHERE key = 'a'")

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Kind != TimeoutRead {
		t.Fatalf("unexpected kind: %+v", timeoutErr)
	}
}

func TestExecutorSystemLocal(t *testing.T) {
	e := newTestExecutor(t)

	res := mustExec(t, e, "SELECT * FROM system.local")
	wantColumns := []string{"key", "cluster_name", "host_id", "listen_address", "release_version"}
	if len(res.Columns) != len(wantColumns) {
		t.Fatalf("unexpected columns: %v", res.Columns)
	}
	for i, want := range wantColumns {
		if res.Columns[i] != want {
			t.Fatalf("column %d = %q, want %q", i, res.Columns[i], want)
		}
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if string(res.Rows[0][0]) != "local" || string(res.Rows[0][1]) != "Test Cluster" {
		t.Fatalf("unexpected row: %v", res.Rows[0])
	}

	res = mustExec(t, e, "SELECT * FROM system.local WHERE key = 'local'")
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row for key local, got %d", len(res.Rows))
	}
	res = mustExec(t, e, "SELECT * FROM system.local WHERE key = 'other'")
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows for foreign key, got %d", len(res.Rows))
	}
}

func TestExecutorSystemLocalReadOnly(t *testing.T) {
	e := newTestExecutor(t)

	for _, input := range []string{
		"INSERT INTO system.local (key, value) VALUES ('local', 'x')",
		"DELETE FROM system.local WHERE key = 'local'",
		"DROP TABLE system.local",
		"TRUNCATE system.local",
	} {
		_, err := exec(t, e, input)
		var semErr *SemanticError
		if !errors.As(err, &semErr) {
			t.Fatalf("Execute(%q): expected SemanticError, got %v", input, err)
		}
	}
}

func TestExecutorUnknownKeyspace(t *testing.T) {
	e := newTestExecutor(t)

	_, err := exec(t, e, "SELECT * FROM foo.bar")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
	if semErr.Message != "unknown keyspace foo" {
		t.Fatalf("unexpected message: %q", semErr.Message)
	}
}

func TestExecutorDescribeTables(t *testing.T) {
	e := newTestExecutor(t)
	mustExec(t, e, "CREATE TABLE sessions WITH default_ttl = 60")
	mustExec(t, e, "CREATE TABLE users")

	res := mustExec(t, e, "DESCRIBE TABLES")
	if len(res.Columns) != 2 || res.Columns[0] != "table_name" || res.Columns[1] != "default_ttl" {
		t.Fatalf("unexpected columns: %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if string(res.Rows[0][0]) != "sessions" || string(res.Rows[0][1]) != "60" {
		t.Fatalf("unexpected row: %v", res.Rows[0])
	}
	if string(res.Rows[1][0]) != "users" || string(res.Rows[1][1]) != "0" {
		t.Fatalf("unexpected row: %v", res.Rows[1])
	}
}
