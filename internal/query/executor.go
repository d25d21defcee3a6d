package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/colonnadedb/colonnade/internal/telemetry"
	"github.com/colonnadedb/colonnade/pkg/storage"
)

// virtualLocalTable is answered by the executor without touching the store.
const virtualLocalTable = "system.local"

// LocalInfo is the node identity reported by the system.local virtual
// table.
type LocalInfo struct {
	HostID         string
	ClusterName    string
	ReleaseVersion string
	ListenAddress  string
}

// Options configures an Executor. Zero timeouts disable the per-statement
// deadline for that statement class.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Local        LocalInfo
}

// Executor runs parsed statements against a store, bounding each statement
// with the read or write deadline and translating deadline overruns into
// typed timeout errors.
type Executor struct {
	store        storage.Store
	readTimeout  time.Duration
	writeTimeout time.Duration
	local        LocalInfo
}

// NewExecutor creates an executor over the given store.
func NewExecutor(store storage.Store, opts Options) *Executor {
	return &Executor{
		store:        store,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		local:        opts.Local,
	}
}

// Result is the value a statement evaluates to. A Result with no Columns is
// void: the statement succeeded and there is nothing to return.
type Result struct {
	Columns []string
	Rows    [][][]byte
}

// Void reports whether the result carries no row set.
func (r *Result) Void() bool {
	return len(r.Columns) == 0
}

// Execute runs one statement. Returned errors are either typed query errors
// (*SemanticError, *TimeoutError, *TruncationError) or storage.StoreError
// values passed through for the caller to classify.
func (e *Executor) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	ctx, span := telemetry.StartStatementSpan(ctx, KindOf(stmt), TableOf(stmt))
	defer span.End()

	result, err := e.execute(ctx, stmt)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if !result.Void() {
		span.SetAttributes(telemetry.RowCount(len(result.Rows)))
	}
	return result, nil
}

func (e *Executor) execute(ctx context.Context, stmt Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *CreateTable:
		return e.execCreateTable(ctx, s)
	case *DropTable:
		return e.execDropTable(ctx, s)
	case *TruncateTable:
		return e.execTruncate(ctx, s)
	case *Insert:
		return e.execInsert(ctx, s)
	case *Select:
		return e.execSelect(ctx, s)
	case *Delete:
		return e.execDelete(ctx, s)
	case *DescribeTables:
		return e.execDescribeTables(ctx)
	default:
		return nil, fmt.Errorf("unsupported statement type %T", stmt)
	}
}

func (e *Executor) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// checkWritable rejects writes addressed to virtual or qualified tables.
func checkWritable(table string) error {
	if table == virtualLocalTable {
		return &SemanticError{Message: "table system.local is read-only"}
	}
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return &SemanticError{Message: "unknown keyspace " + table[:i]}
	}
	return nil
}

// wrapTimeout converts a deadline overrun into a typed timeout error and
// passes every other error through.
func (e *Executor) wrapTimeout(err error, kind TimeoutKind, table string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		timeout := e.readTimeout
		if kind == TimeoutWrite {
			timeout = e.writeTimeout
		}
		return &TimeoutError{Kind: kind, Table: table, Timeout: timeout}
	}
	return err
}

func (e *Executor) execCreateTable(ctx context.Context, s *CreateTable) (*Result, error) {
	if err := checkWritable(s.Table); err != nil {
		return nil, err
	}
	ctx, cancel := e.withTimeout(ctx, e.writeTimeout)
	defer cancel()

	err := e.store.CreateTable(ctx, s.Table, storage.TableOptions{DefaultTTL: s.DefaultTTL})
	if err != nil {
		return nil, e.wrapTimeout(err, TimeoutWrite, s.Table)
	}
	return &Result{}, nil
}

func (e *Executor) execDropTable(ctx context.Context, s *DropTable) (*Result, error) {
	if err := checkWritable(s.Table); err != nil {
		return nil, err
	}
	ctx, cancel := e.withTimeout(ctx, e.writeTimeout)
	defer cancel()

	if err := e.store.DropTable(ctx, s.Table); err != nil {
		return nil, e.wrapTimeout(err, TimeoutWrite, s.Table)
	}
	return &Result{}, nil
}

// execTruncate treats every failure past the existence check as a
// truncation failure, deadline overruns included.
func (e *Executor) execTruncate(ctx context.Context, s *TruncateTable) (*Result, error) {
	if err := checkWritable(s.Table); err != nil {
		return nil, err
	}
	ctx, cancel := e.withTimeout(ctx, e.writeTimeout)
	defer cancel()

	if err := e.store.Truncate(ctx, s.Table); err != nil {
		if storage.IsTableNotFoundError(err) {
			return nil, err
		}
		return nil, &TruncationError{Table: s.Table, Err: err}
	}
	return &Result{}, nil
}

func (e *Executor) execInsert(ctx context.Context, s *Insert) (*Result, error) {
	if err := checkWritable(s.Table); err != nil {
		return nil, err
	}
	ctx, cancel := e.withTimeout(ctx, e.writeTimeout)
	defer cancel()

	err := e.store.Put(ctx, s.Table, []byte(s.Key), []byte(s.Value))
	if err != nil {
		return nil, e.wrapTimeout(err, TimeoutWrite, s.Table)
	}
	return &Result{}, nil
}

func (e *Executor) execDelete(ctx context.Context, s *Delete) (*Result, error) {
	if err := checkWritable(s.Table); err != nil {
		return nil, err
	}
	ctx, cancel := e.withTimeout(ctx, e.writeTimeout)
	defer cancel()

	err := e.store.Delete(ctx, s.Table, []byte(s.Key))
	if err != nil {
		return nil, e.wrapTimeout(err, TimeoutWrite, s.Table)
	}
	return &Result{}, nil
}

func (e *Executor) execSelect(ctx context.Context, s *Select) (*Result, error) {
	if s.Table == virtualLocalTable {
		return e.execSelectLocal(s)
	}
	if i := strings.IndexByte(s.Table, '.'); i >= 0 {
		return nil, &SemanticError{Message: "unknown keyspace " + s.Table[:i]}
	}

	ctx, cancel := e.withTimeout(ctx, e.readTimeout)
	defer cancel()

	columns := []string{"key", "value"}
	if !s.Star {
		columns = []string{"value"}
	}

	if s.HasKey {
		value, err := e.store.Get(ctx, s.Table, []byte(s.Key))
		if err != nil {
			// A missing key is an empty result, not a failure.
			if storage.IsNotFoundError(err) {
				return &Result{Columns: columns, Rows: [][][]byte{}}, nil
			}
			return nil, e.wrapTimeout(err, TimeoutRead, s.Table)
		}
		row := [][]byte{[]byte(s.Key), value}
		if !s.Star {
			row = [][]byte{value}
		}
		return &Result{Columns: columns, Rows: [][][]byte{row}}, nil
	}

	rows, err := e.store.Scan(ctx, s.Table, s.Limit)
	if err != nil {
		return nil, e.wrapTimeout(err, TimeoutRead, s.Table)
	}
	out := make([][][]byte, 0, len(rows))
	for _, r := range rows {
		if s.Star {
			out = append(out, [][]byte{r.Key, r.Value})
		} else {
			out = append(out, [][]byte{r.Value})
		}
	}
	return &Result{Columns: columns, Rows: out}, nil
}

// execSelectLocal answers system.local from node identity alone.
func (e *Executor) execSelectLocal(s *Select) (*Result, error) {
	if !s.Star {
		return nil, &SemanticError{Message: "undefined column name value"}
	}

	columns := []string{"key", "cluster_name", "host_id", "listen_address", "release_version"}
	row := [][]byte{
		[]byte("local"),
		[]byte(e.local.ClusterName),
		[]byte(e.local.HostID),
		[]byte(e.local.ListenAddress),
		[]byte(e.local.ReleaseVersion),
	}

	// The single row is keyed "local"; any other key matches nothing.
	if s.HasKey && s.Key != "local" {
		return &Result{Columns: columns, Rows: [][][]byte{}}, nil
	}
	return &Result{Columns: columns, Rows: [][][]byte{row}}, nil
}

func (e *Executor) execDescribeTables(ctx context.Context) (*Result, error) {
	ctx, cancel := e.withTimeout(ctx, e.readTimeout)
	defer cancel()

	infos, err := e.store.Tables(ctx)
	if err != nil {
		return nil, e.wrapTimeout(err, TimeoutRead, "")
	}

	columns := []string{"table_name", "default_ttl"}
	rows := make([][][]byte, 0, len(infos))
	for _, info := range infos {
		seconds := int64(info.Options.DefaultTTL / time.Second)
		rows = append(rows, [][]byte{
			[]byte(info.Name),
			[]byte(strconv.FormatInt(seconds, 10)),
		})
	}
	return &Result{Columns: columns, Rows: rows}, nil
}
