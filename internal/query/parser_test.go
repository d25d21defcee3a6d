package query

import (
	"errors"
	"testing"
	"time"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE users;")
	if err != nil {
		t.Fatalf("expected create table, got error: %v", err)
	}
	create, ok := stmt.(*CreateTable)
	if !ok {
		t.Fatalf("unexpected statement type %T", stmt)
	}
	if create.Table != "users" || create.DefaultTTL != 0 {
		t.Fatalf("unexpected statement: %+v", create)
	}
}

func TestParseCreateTableWithTTL(t *testing.T) {
	stmt, err := Parse("create table sessions with default_ttl = 3600")
	if err != nil {
		t.Fatalf("expected create table, got error: %v", err)
	}
	create, ok := stmt.(*CreateTable)
	if !ok {
		t.Fatalf("unexpected statement type %T", stmt)
	}
	if create.Table != "sessions" || create.DefaultTTL != 3600*time.Second {
		t.Fatalf("unexpected statement: %+v", create)
	}
}

func TestParseCreateTableUnknownOption(t *testing.T) {
	_, err := Parse("CREATE TABLE users WITH compaction = 4")
	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptionError, got %v", err)
	}
	if optErr.Option != "compaction" {
		t.Fatalf("unexpected option: %+v", optErr)
	}
}

func TestParseCreateTableBadTTLValue(t *testing.T) {
	_, err := Parse("CREATE TABLE users WITH default_ttl = 'soon'")
	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptionError, got %v", err)
	}
	if optErr.Option != "default_ttl" || optErr.Value != "soon" {
		t.Fatalf("unexpected option error: %+v", optErr)
	}
}

func TestParseDropTable(t *testing.T) {
	stmt, err := Parse("DROP TABLE events")
	if err != nil {
		t.Fatalf("expected drop table, got error: %v", err)
	}
	drop, ok := stmt.(*DropTable)
	if !ok || drop.Table != "events" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestParseTruncate(t *testing.T) {
	for _, input := range []string{"TRUNCATE events", "TRUNCATE TABLE events"} {
		stmt, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		trunc, ok := stmt.(*TruncateTable)
		if !ok || trunc.Table != "events" {
			t.Fatalf("Parse(%q) = %+v, want truncate of events", input, stmt)
		}
	}
}

func TestParseInsert(t *testing.T) {
	stmt, err := Parse("INSERT INTO users (key, value) VALUES ('alice', 'admin');")
	if err != nil {
		t.Fatalf("expected insert, got error: %v", err)
	}
	ins, ok := stmt.(*Insert)
	if !ok {
		t.Fatalf("unexpected statement type %T", stmt)
	}
	if ins.Table != "users" || ins.Key != "alice" || ins.Value != "admin" {
		t.Fatalf("unexpected statement: %+v", ins)
	}
}

func TestParseInsertQuoteEscaping(t *testing.T) {
	stmt, err := Parse("INSERT INTO users (key, value) VALUES ('o''brien', 'it''s fine')")
	if err != nil {
		t.Fatalf("expected insert, got error: %v", err)
	}
	ins := stmt.(*Insert)
	if ins.Key != "o'brien" || ins.Value != "it's fine" {
		t.Fatalf("unexpected unescaping: %+v", ins)
	}
}

func TestParseInsertWrongColumns(t *testing.T) {
	_, err := Parse("INSERT INTO users (id, value) VALUES ('1', 'x')")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
}

func TestParseInsertEmptyKey(t *testing.T) {
	_, err := Parse("INSERT INTO users (key, value) VALUES ('', 'x')")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
}

func TestParseSelectByKey(t *testing.T) {
	stmt, err := Parse("SELECT value FROM users WHERE key = 'alice'")
	if err != nil {
		t.Fatalf("expected select, got error: %v", err)
	}
	sel, ok := stmt.(*Select)
	if !ok {
		t.Fatalf("unexpected statement type %T", stmt)
	}
	if sel.Star || !sel.HasKey || sel.Key != "alice" || sel.Table != "users" {
		t.Fatalf("unexpected statement: %+v", sel)
	}
}

func TestParseSelectStarWithLimit(t *testing.T) {
	stmt, err := Parse("SELECT * FROM users LIMIT 10")
	if err != nil {
		t.Fatalf("expected select, got error: %v", err)
	}
	sel := stmt.(*Select)
	if !sel.Star || sel.HasKey || sel.Limit != 10 {
		t.Fatalf("unexpected statement: %+v", sel)
	}
}

func TestParseSelectSystemLocal(t *testing.T) {
	stmt, err := Parse("SELECT * FROM system.local")
	if err != nil {
		t.Fatalf("expected select, got error: %v", err)
	}
	sel := stmt.(*Select)
	if sel.Table != "system.local" {
		t.Fatalf("unexpected table: %+v", sel)
	}
}

func TestParseSelectUndefinedColumn(t *testing.T) {
	_, err := Parse("SELECT name FROM users")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
}

func TestParseSelectLimitZero(t *testing.T) {
	_, err := Parse("SELECT * FROM users LIMIT 0")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
	if semErr.Message != "LIMIT must be strictly positive" {
		t.Fatalf("unexpected message: %q", semErr.Message)
	}
}

func TestParseDelete(t *testing.T) {
	stmt, err := Parse("DELETE FROM users WHERE key = 'alice'")
	if err != nil {
		t.Fatalf("expected delete, got error: %v", err)
	}
	del, ok := stmt.(*Delete)
	if !ok || del.Table != "users" || del.Key != "alice" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestParseDeleteRequiresWhere(t *testing.T) {
	_, err := Parse("DELETE FROM users")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseDeleteNonKeyPredicate(t *testing.T) {
	_, err := Parse("DELETE FROM users WHERE name = 'alice'")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
}

func TestParseDescribeTables(t *testing.T) {
	stmt, err := Parse("DESCRIBE TABLES")
	if err != nil {
		t.Fatalf("expected describe, got error: %v", err)
	}
	if _, ok := stmt.(*DescribeTables); !ok {
		t.Fatalf("unexpected statement type %T", stmt)
	}
}

func TestParseIdentifiersFoldToLower(t *testing.T) {
	stmt, err := Parse("SELECT * FROM Users")
	if err != nil {
		t.Fatalf("expected select, got error: %v", err)
	}
	if stmt.(*Select).Table != "users" {
		t.Fatalf("table not folded: %+v", stmt)
	}
}

func TestParseErrorPositions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantCol  int
	}{
		{"unknown statement", "SELEC * FROM users", 1, 1},
		{"misspelled from", "SELECT * FRM users", 1, 10},
		{"second line", "SELECT *\nFRM users", 2, 1},
		{"trailing token", "DROP TABLE a b", 1, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if parseErr.Line != tt.wantLine || parseErr.Column != tt.wantCol {
				t.Errorf("position = %d:%d, want %d:%d (%s)",
					parseErr.Line, parseErr.Column, tt.wantLine, tt.wantCol, parseErr.Message)
			}
		})
	}
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse("SELECT * FROM users WHERE key = 'alice")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Message != "unterminated string literal" {
		t.Fatalf("unexpected message: %q", parseErr.Message)
	}
}

func TestParseEmptyStatement(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := Parse(input)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Parse(%q): expected ParseError, got %v", input, err)
		}
	}
}

func TestParseErrorMessageFormat(t *testing.T) {
	_, err := Parse("SELECT * FRM users")
	if err == nil {
		t.Fatal("expected error")
	}
	want := `line 1:10 expected FROM, found "FRM"`
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}
