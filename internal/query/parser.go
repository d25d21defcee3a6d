package query

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse turns one statement into its typed form. Malformed input yields a
// *ParseError; statements that parse but name unusable options or columns
// yield *OptionError or *SemanticError.
func Parse(input string) (Statement, error) {
	tokens, perr := tokenize(input)
	if perr != nil {
		return nil, perr
	}

	p := &parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if perr := p.expectEnd(); perr != nil {
		return nil, perr
	}
	return stmt, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expectKeyword(kw string) *ParseError {
	t := p.advance()
	if !t.isKeyword(kw) {
		return errorAt(t, "expected %s, found %s", kw, t.describe())
	}
	return nil
}

func (p *parser) expectIdent(what string) (token, *ParseError) {
	t := p.advance()
	if t.kind != tokenIdent {
		return token{}, errorAt(t, "expected %s, found %s", what, t.describe())
	}
	return t, nil
}

func (p *parser) expectSymbol(sym string) *ParseError {
	t := p.advance()
	if t.kind != tokenSymbol || t.text != sym {
		return errorAt(t, "expected %q, found %s", sym, t.describe())
	}
	return nil
}

func (p *parser) expectString(what string) (token, *ParseError) {
	t := p.advance()
	if t.kind != tokenString {
		return token{}, errorAt(t, "expected %s, found %s", what, t.describe())
	}
	return t, nil
}

// expectEnd consumes an optional trailing semicolon and requires EOF.
func (p *parser) expectEnd() *ParseError {
	if t := p.peek(); t.kind == tokenSymbol && t.text == ";" {
		p.advance()
	}
	if t := p.peek(); t.kind != tokenEOF {
		return errorAt(t, "unexpected %s after statement", t.describe())
	}
	return nil
}

// parseTableRef reads a table name, optionally qualified with a single dot
// as in system.local.
func (p *parser) parseTableRef() (string, *ParseError) {
	first, err := p.expectIdent("table name")
	if err != nil {
		return "", err
	}
	if t := p.peek(); t.kind == tokenSymbol && t.text == "." {
		p.advance()
		second, err := p.expectIdent("table name")
		if err != nil {
			return "", err
		}
		return strings.ToLower(first.text) + "." + strings.ToLower(second.text), nil
	}
	return strings.ToLower(first.text), nil
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.peek()
	switch {
	case t.isKeyword("CREATE"):
		return p.parseCreateTable()
	case t.isKeyword("DROP"):
		return p.parseDropTable()
	case t.isKeyword("TRUNCATE"):
		return p.parseTruncate()
	case t.isKeyword("INSERT"):
		return p.parseInsert()
	case t.isKeyword("SELECT"):
		return p.parseSelect()
	case t.isKeyword("DELETE"):
		return p.parseDelete()
	case t.isKeyword("DESCRIBE"):
		return p.parseDescribe()
	case t.kind == tokenEOF:
		return nil, errorAt(t, "empty statement")
	default:
		return nil, errorAt(t, "unexpected %s at start of statement", t.describe())
	}
}

func (p *parser) parseCreateTable() (Statement, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}

	stmt := &CreateTable{Table: table}
	if !p.peek().isKeyword("WITH") {
		return stmt, nil
	}
	p.advance()

	option, err := p.expectIdent("table option name")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(option.text, "default_ttl") {
		return nil, &OptionError{
			Option:  strings.ToLower(option.text),
			Message: "unknown table option",
		}
	}
	if err := p.expectSymbol("="); err != nil {
		return nil, err
	}

	value := p.advance()
	if value.kind != tokenNumber {
		return nil, &OptionError{
			Option:  "default_ttl",
			Value:   value.text,
			Message: "expects a number of seconds",
		}
	}
	seconds, convErr := strconv.ParseInt(value.text, 10, 64)
	if convErr != nil || seconds < 0 || seconds > math.MaxInt64/int64(time.Second) {
		return nil, &OptionError{
			Option:  "default_ttl",
			Value:   value.text,
			Message: "seconds out of range",
		}
	}
	stmt.DefaultTTL = time.Duration(seconds) * time.Second
	return stmt, nil
}

func (p *parser) parseDropTable() (Statement, error) {
	if err := p.expectKeyword("DROP"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	return &DropTable{Table: table}, nil
}

func (p *parser) parseTruncate() (Statement, error) {
	if err := p.expectKeyword("TRUNCATE"); err != nil {
		return nil, err
	}
	// TABLE is optional: TRUNCATE t and TRUNCATE TABLE t both work.
	if p.peek().isKeyword("TABLE") {
		p.advance()
	}
	table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	return &TruncateTable{Table: table}, nil
}

func (p *parser) parseInsert() (Statement, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, perr := p.parseTableRef()
	if perr != nil {
		return nil, perr
	}

	columns, perr := p.parseNameList("column name")
	if perr != nil {
		return nil, perr
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	values, perr := p.parseValueList()
	if perr != nil {
		return nil, perr
	}

	if len(columns) != 2 || !strings.EqualFold(columns[0], "key") || !strings.EqualFold(columns[1], "value") {
		return nil, &SemanticError{
			Message: "column list must be (key, value), found (" + strings.Join(columns, ", ") + ")",
		}
	}
	if len(values) != len(columns) {
		return nil, &SemanticError{
			Message: "unmatched column and value counts",
		}
	}
	if values[0] == "" {
		return nil, &SemanticError{Message: "key cannot be empty"}
	}
	return &Insert{Table: table, Key: values[0], Value: values[1]}, nil
}

// parseNameList reads a parenthesized, comma-separated identifier list.
func (p *parser) parseNameList(what string) ([]string, *ParseError) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.expectIdent(what)
		if err != nil {
			return nil, err
		}
		names = append(names, strings.ToLower(name.text))
		if t := p.peek(); t.kind == tokenSymbol && t.text == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return names, nil
}

// parseValueList reads a parenthesized, comma-separated string literal list.
func (p *parser) parseValueList() ([]string, *ParseError) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var values []string
	for {
		value, err := p.expectString("string literal")
		if err != nil {
			return nil, err
		}
		values = append(values, value.text)
		if t := p.peek(); t.kind == tokenSymbol && t.text == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *parser) parseSelect() (Statement, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	stmt := &Select{}
	if t := p.peek(); t.kind == tokenSymbol && t.text == "*" {
		p.advance()
		stmt.Star = true
	} else {
		column, err := p.expectIdent("column name")
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(column.text, "value") {
			return nil, &SemanticError{
				Message: "undefined column name " + strings.ToLower(column.text),
			}
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, perr := p.parseTableRef()
	if perr != nil {
		return nil, perr
	}
	stmt.Table = table

	if p.peek().isKeyword("WHERE") {
		p.advance()
		key, err := p.parseKeyPredicate()
		if err != nil {
			return nil, err
		}
		stmt.Key = key
		stmt.HasKey = true
	}

	if p.peek().isKeyword("LIMIT") {
		p.advance()
		value := p.advance()
		if value.kind != tokenNumber {
			return nil, errorAt(value, "expected row count, found %s", value.describe())
		}
		n, convErr := strconv.Atoi(value.text)
		if convErr != nil {
			return nil, errorAt(value, "row count out of range")
		}
		if n <= 0 {
			return nil, &SemanticError{Message: "LIMIT must be strictly positive"}
		}
		stmt.Limit = n
	}
	return stmt, nil
}

func (p *parser) parseDelete() (Statement, error) {
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, perr := p.parseTableRef()
	if perr != nil {
		return nil, perr
	}
	if err := p.expectKeyword("WHERE"); err != nil {
		return nil, err
	}
	key, err := p.parseKeyPredicate()
	if err != nil {
		return nil, err
	}
	return &Delete{Table: table, Key: key}, nil
}

// parseKeyPredicate reads the only supported predicate: key = '<literal>'.
func (p *parser) parseKeyPredicate() (string, error) {
	column, err := p.expectIdent("column name")
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(column.text, "key") {
		return "", &SemanticError{
			Message: "only key equality predicates are supported, found column " + strings.ToLower(column.text),
		}
	}
	if err := p.expectSymbol("="); err != nil {
		return "", err
	}
	value, perr := p.expectString("key literal")
	if perr != nil {
		return "", perr
	}
	return value.text, nil
}

func (p *parser) parseDescribe() (Statement, error) {
	if err := p.expectKeyword("DESCRIBE"); err != nil {
		return nil, err
	}
	t := p.advance()
	if !t.isKeyword("TABLES") {
		return nil, errorAt(t, "expected TABLES, found %s", t.describe())
	}
	return &DescribeTables{}, nil
}
