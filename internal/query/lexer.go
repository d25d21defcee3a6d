package query

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenSymbol
)

// token is one lexical element. For string literals text holds the
// unescaped value; for everything else it holds the raw input slice.
type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// isKeyword matches an identifier token case-insensitively.
func (t token) isKeyword(kw string) bool {
	return t.kind == tokenIdent && strings.EqualFold(t.text, kw)
}

// describe renders a token for error messages.
func (t token) describe() string {
	if t.kind == tokenEOF {
		return "end of statement"
	}
	return fmt.Sprintf("%q", t.text)
}

func errorAt(t token, format string, args ...any) *ParseError {
	return &ParseError{
		Line:    t.line,
		Column:  t.col,
		Message: fmt.Sprintf(format, args...),
	}
}

// tokenize splits a statement into tokens. The returned slice always ends
// with a tokenEOF carrying the end position.
func tokenize(input string) ([]token, *ParseError) {
	var tokens []token
	line, col := 1, 1

	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]

		if r == '\n' {
			line++
			col = 1
			i++
			continue
		}
		if unicode.IsSpace(r) {
			col++
			i++
			continue
		}

		start := token{line: line, col: col}

		switch {
		case r == '\'':
			value, consumed, err := scanString(runes[i:], start)
			if err != nil {
				return nil, err
			}
			start.kind = tokenString
			start.text = value
			tokens = append(tokens, start)
			// Literals may span lines; keep positions honest.
			for _, cr := range runes[i : i+consumed] {
				if cr == '\n' {
					line++
					col = 1
				} else {
					col++
				}
			}
			i += consumed

		case isIdentStart(r):
			j := i
			for j < len(runes) && isIdentPart(runes[j]) {
				j++
			}
			start.kind = tokenIdent
			start.text = string(runes[i:j])
			tokens = append(tokens, start)
			col += j - i
			i = j

		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			start.kind = tokenNumber
			start.text = string(runes[i:j])
			tokens = append(tokens, start)
			col += j - i
			i = j

		case strings.ContainsRune("(),=*;.", r):
			start.kind = tokenSymbol
			start.text = string(r)
			tokens = append(tokens, start)
			col++
			i++

		default:
			return nil, errorAt(start, "unexpected character %q", string(r))
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, line: line, col: col})
	return tokens, nil
}

// scanString reads a single-quoted literal starting at runes[0] == '\''.
// Doubled quotes escape a literal quote. Returns the unescaped value and
// the number of runes consumed.
func scanString(runes []rune, start token) (string, int, *ParseError) {
	var sb strings.Builder
	i := 1
	for i < len(runes) {
		r := runes[i]
		if r == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				sb.WriteRune('\'')
				i += 2
				continue
			}
			return sb.String(), i + 1, nil
		}
		sb.WriteRune(r)
		i++
	}
	return "", 0, errorAt(start, "unterminated string literal")
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
