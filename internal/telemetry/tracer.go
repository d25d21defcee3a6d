package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for native protocol and statement spans. Connection keys
// identify who is asking, protocol keys identify the frame, db keys
// identify what the statement did.
const (
	AttrClientAddr = "client.address"
	AttrConnID     = "conn.id"
	AttrUsername   = "user.name"

	AttrOpcode = "protocol.opcode"
	AttrStream = "protocol.stream"

	AttrStatementKind = "db.operation"
	AttrTable         = "db.table"
	AttrConsistency   = "db.consistency"
	AttrRowCount      = "db.rows"
	AttrErrorCode     = "db.error_code"
)

// ClientAddr returns an attribute for the client remote address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// ConnID returns an attribute for the server-assigned connection id.
func ConnID(id string) attribute.KeyValue {
	return attribute.String(AttrConnID, id)
}

// Username returns an attribute for the authenticated user.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Opcode returns an attribute for the frame opcode name.
func Opcode(name string) attribute.KeyValue {
	return attribute.String(AttrOpcode, name)
}

// Stream returns an attribute for the frame stream id.
func Stream(id int16) attribute.KeyValue {
	return attribute.Int(AttrStream, int(id))
}

// StatementKind returns an attribute for the statement kind, one of the
// lowercase names produced by query.KindOf.
func StatementKind(kind string) attribute.KeyValue {
	return attribute.String(AttrStatementKind, kind)
}

// Table returns an attribute for the table a statement addresses.
func Table(name string) attribute.KeyValue {
	return attribute.String(AttrTable, name)
}

// ConsistencyLevel returns an attribute for the requested consistency.
func ConsistencyLevel(level string) attribute.KeyValue {
	return attribute.String(AttrConsistency, level)
}

// RowCount returns an attribute for the number of rows in a result.
func RowCount(n int) attribute.KeyValue {
	return attribute.Int(AttrRowCount, n)
}

// ErrorCode returns an attribute for the wire error code name sent back to
// the client.
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

// StartRequestSpan opens the root span for one native protocol frame, named
// native.<opcode>. Spans started from the returned context nest under it.
func StartRequestSpan(ctx context.Context, opcode string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, 1+len(attrs))
	all = append(all, Opcode(opcode))
	all = append(all, attrs...)
	return StartSpan(ctx, "native."+opcode, trace.WithAttributes(all...))
}

// StartStatementSpan opens a span for one statement execution, named
// query.<kind>. An empty table is omitted from the attributes; DESCRIBE
// TABLES addresses none.
func StartStatementSpan(ctx context.Context, kind, table string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, 2+len(attrs))
	all = append(all, StatementKind(kind))
	if table != "" {
		all = append(all, Table(table))
	}
	all = append(all, attrs...)
	return StartSpan(ctx, "query."+kind, trace.WithAttributes(all...))
}
