package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parse converts a query string into an AST. Parsing is deterministic:
// the same string always yields a structurally identical tree. Errors
// are *ParseError values carrying the failure kind and byte offset.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Kind: ParseErrEmptyQuery, Offset: 0, Detail: "query has no terms"}
	}

	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokenEOF {
		if tok.kind == tokenRParen {
			return nil, &ParseError{
				Kind:   ParseErrUnbalancedParen,
				Offset: tok.offset,
				Detail: "unmatched closing parenthesis",
			}
		}
		return nil, &ParseError{
			Kind:   ParseErrUnexpectedToken,
			Offset: tok.offset,
			Detail: fmt.Sprintf("unexpected %q", tok.text),
		}
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

// parseExpression handles OR, the loosest-binding connective.
//
//	expression -> andExpr (OR andExpr)*
func (p *parser) parseExpression() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	children := []Node{first}
	for p.peek().kind == tokenOr {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return &Or{Children: children}, nil
}

// parseAnd handles explicit AND and the implicit AND between adjacent
// terms.
//
//	andExpr -> unary (AND? unary)*
func (p *parser) parseAnd() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	children := []Node{first}
	for {
		tok := p.peek()
		if tok.kind == tokenAnd {
			p.advance()
		} else if !startsTerm(tok.kind) {
			break
		}
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return &And{Children: children}, nil
}

// parseUnary handles NOT, the tightest-binding connective.
//
//	unary -> NOT unary | primary
func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokenNot {
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles parenthesized groups and atoms.
//
//	primary -> '(' expression ')' | predicate | phrase | word
func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokenRParen {
			return nil, &ParseError{
				Kind:   ParseErrUnbalancedParen,
				Offset: tok.offset,
				Detail: "missing closing parenthesis",
			}
		}
		p.advance()
		return inner, nil

	case tokenWord:
		p.advance()
		return &FreeText{Text: tok.text}, nil

	case tokenQuoted:
		p.advance()
		return &FreeText{Text: tok.text, Phrase: true}, nil

	case tokenField:
		p.advance()
		return p.buildPredicate(tok)

	case tokenAnd, tokenOr:
		return nil, &ParseError{
			Kind:   ParseErrUnexpectedToken,
			Offset: tok.offset,
			Detail: fmt.Sprintf("%s requires a term on each side", tok.text),
		}

	case tokenRParen:
		return nil, &ParseError{
			Kind:   ParseErrUnbalancedParen,
			Offset: tok.offset,
			Detail: "unmatched closing parenthesis",
		}

	default:
		return nil, &ParseError{
			Kind:   ParseErrUnexpectedToken,
			Offset: tok.offset,
			Detail: "unexpected end of query, expected a term",
		}
	}
}

// buildPredicate turns a field token into a predicate node, resolving
// unit literals for duration and size fields at parse time.
func (p *parser) buildPredicate(tok token) (Node, error) {
	name, kind := CanonicalField(tok.field)

	if tok.regex {
		re, err := regexp.Compile(tok.value)
		if err != nil {
			return nil, &ParseError{
				Kind:   ParseErrUnexpectedToken,
				Offset: tok.valueOffset,
				Detail: fmt.Sprintf("invalid regex: %v", err),
			}
		}
		return &RegexPredicate{Field: name, Kind: kind, Pattern: re, Raw: tok.value}, nil
	}

	lit := Literal{Raw: tok.value}
	switch kind {
	case FieldDuration:
		seconds, err := ResolveDuration(tok.value)
		if err != nil {
			return nil, &ParseError{Kind: ParseErrInvalidUnit, Offset: tok.valueOffset, Detail: err.Error()}
		}
		lit.Num, lit.Dim, lit.Numeric = seconds, DimSeconds, true

	case FieldSize:
		bytes, err := ResolveSize(tok.value)
		if err != nil {
			return nil, &ParseError{Kind: ParseErrInvalidUnit, Offset: tok.valueOffset, Detail: err.Error()}
		}
		lit.Num, lit.Dim, lit.Numeric = bytes, DimBytes, true

	default:
		if v, err := strconv.ParseFloat(tok.value, 64); err == nil {
			lit.Num, lit.Numeric = v, true
		}
	}

	return &FieldPredicate{Field: name, Kind: kind, Op: tok.op, Value: lit}, nil
}

func startsTerm(kind tokenKind) bool {
	switch kind {
	case tokenWord, tokenQuoted, tokenField, tokenNot, tokenLParen:
		return true
	}
	return false
}
