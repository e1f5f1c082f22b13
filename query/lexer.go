package query

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenWord
	tokenQuoted
	tokenField
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

// token is one lexical unit of a query string. Field tokens carry the
// split predicate parts alongside the shared fields.
type token struct {
	kind   tokenKind
	text   string
	offset int // byte offset of the token start

	field       string
	op          Operator
	value       string
	valueOffset int
	regex       bool
}

type lexer struct {
	input string
	pos   int
}

// lex tokenizes a query string. The returned slice always ends with a
// tokenEOF entry.
func lex(input string) ([]token, error) {
	lx := &lexer{input: input}
	var tokens []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpaces()
	if lx.pos >= len(lx.input) {
		return token{kind: tokenEOF, offset: lx.pos}, nil
	}

	start := lx.pos
	switch lx.input[lx.pos] {
	case '(':
		lx.pos++
		return token{kind: tokenLParen, text: "(", offset: start}, nil
	case ')':
		lx.pos++
		return token{kind: tokenRParen, text: ")", offset: start}, nil
	case '"':
		text, err := lx.scanQuoted()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokenQuoted, text: text, offset: start}, nil
	}
	return lx.scanWord()
}

func (lx *lexer) skipSpaces() {
	for lx.pos < len(lx.input) && isSpace(lx.input[lx.pos]) {
		lx.pos++
	}
}

// scanWord reads a whitespace-delimited word. A word of the form
// "name:..." where name is letters and underscores becomes a field
// token; a colon anywhere else (URLs, paths) stays part of the word.
func (lx *lexer) scanWord() (token, error) {
	start := lx.pos
	for lx.pos < len(lx.input) {
		c := lx.input[lx.pos]
		if isSpace(c) || c == '(' || c == ')' || c == '"' {
			break
		}
		if c == ':' && isFieldName(lx.input[start:lx.pos]) {
			return lx.scanFieldValue(lx.input[start:lx.pos], start)
		}
		lx.pos++
	}

	word := lx.input[start:lx.pos]
	switch word {
	case "AND":
		return token{kind: tokenAnd, text: word, offset: start}, nil
	case "OR":
		return token{kind: tokenOr, text: word, offset: start}, nil
	case "NOT":
		return token{kind: tokenNot, text: word, offset: start}, nil
	}
	return token{kind: tokenWord, text: word, offset: start}, nil
}

// scanFieldValue reads the operator and value of a field predicate. The
// cursor sits on the colon. Quoted values may contain spaces; regex
// values run to the closing slash.
func (lx *lexer) scanFieldValue(name string, start int) (token, error) {
	lx.pos++ // consume ':'
	tok := token{kind: tokenField, field: name, op: OpEq, offset: start}

	rest := lx.input[lx.pos:]
	switch {
	case strings.HasPrefix(rest, ">="):
		tok.op = OpGe
		lx.pos += 2
	case strings.HasPrefix(rest, "<="):
		tok.op = OpLe
		lx.pos += 2
	case strings.HasPrefix(rest, "!="):
		tok.op = OpNe
		lx.pos += 2
	case strings.HasPrefix(rest, ">"):
		tok.op = OpGt
		lx.pos++
	case strings.HasPrefix(rest, "<"):
		tok.op = OpLt
		lx.pos++
	case strings.HasPrefix(rest, "="):
		lx.pos++
	case strings.HasPrefix(rest, "~"):
		tok.op = OpContains
		lx.pos++
	}

	tok.valueOffset = lx.pos
	if lx.pos < len(lx.input) {
		switch lx.input[lx.pos] {
		case '"':
			text, err := lx.scanQuoted()
			if err != nil {
				return token{}, err
			}
			tok.value = text
			return tok, nil
		case '/':
			pattern, err := lx.scanRegex()
			if err != nil {
				return token{}, err
			}
			tok.value = pattern
			tok.regex = true
			return tok, nil
		}
	}

	valueStart := lx.pos
	for lx.pos < len(lx.input) {
		c := lx.input[lx.pos]
		if isSpace(c) || c == '(' || c == ')' {
			break
		}
		lx.pos++
	}
	tok.value = lx.input[valueStart:lx.pos]
	if tok.value == "" {
		return token{}, &ParseError{
			Kind:   ParseErrUnexpectedToken,
			Offset: tok.valueOffset,
			Detail: fmt.Sprintf("missing value for field %q", name),
		}
	}
	return tok, nil
}

// scanQuoted reads a double-quoted phrase, unescaping backslash escapes.
// The cursor sits on the opening quote.
func (lx *lexer) scanQuoted() (string, error) {
	start := lx.pos
	lx.pos++
	var sb strings.Builder
	for lx.pos < len(lx.input) {
		c := lx.input[lx.pos]
		if c == '\\' && lx.pos+1 < len(lx.input) {
			sb.WriteByte(lx.input[lx.pos+1])
			lx.pos += 2
			continue
		}
		if c == '"' {
			lx.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		lx.pos++
	}
	return "", &ParseError{
		Kind:   ParseErrUnterminatedQuote,
		Offset: start,
		Detail: "missing closing quote",
	}
}

// scanRegex reads a slash-delimited pattern. Escapes are preserved for
// the regexp compiler. The cursor sits on the opening slash.
func (lx *lexer) scanRegex() (string, error) {
	start := lx.pos
	lx.pos++
	var sb strings.Builder
	for lx.pos < len(lx.input) {
		c := lx.input[lx.pos]
		if c == '\\' && lx.pos+1 < len(lx.input) {
			sb.WriteByte(c)
			sb.WriteByte(lx.input[lx.pos+1])
			lx.pos += 2
			continue
		}
		if c == '/' {
			lx.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		lx.pos++
	}
	return "", &ParseError{
		Kind:   ParseErrUnterminatedRegex,
		Offset: start,
		Detail: "missing closing slash",
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isFieldName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && c != '_' {
			return false
		}
	}
	return true
}
