// Copyright 2025 Soundscout Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package query

import (
	"errors"
	"fmt"
)

// Literal resolution errors
var (
	// ErrMalformedLiteral indicates a literal that does not match any
	// accepted numeric form.
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrUnknownUnit indicates an unrecognized unit suffix.
	ErrUnknownUnit = errors.New("unknown unit suffix")
)

// ParseErrorKind discriminates classes of query parse failures.
type ParseErrorKind int

const (
	// ParseErrUnexpectedToken indicates a token that cannot start or
	// continue a term at its position.
	ParseErrUnexpectedToken ParseErrorKind = iota

	// ParseErrUnbalancedParen indicates a missing or unmatched
	// parenthesis.
	ParseErrUnbalancedParen

	// ParseErrUnterminatedQuote indicates a quoted phrase with no
	// closing quote.
	ParseErrUnterminatedQuote

	// ParseErrUnterminatedRegex indicates a regex predicate with no
	// closing slash.
	ParseErrUnterminatedRegex

	// ParseErrInvalidUnit indicates an unresolvable duration or size
	// literal on a unit-bearing field.
	ParseErrInvalidUnit

	// ParseErrEmptyQuery indicates a query with no terms.
	ParseErrEmptyQuery
)

// String returns a short label for the error kind.
func (k ParseErrorKind) String() string {
	switch k {
	case ParseErrUnexpectedToken:
		return "unexpected token"
	case ParseErrUnbalancedParen:
		return "unbalanced parenthesis"
	case ParseErrUnterminatedQuote:
		return "unterminated quote"
	case ParseErrUnterminatedRegex:
		return "unterminated regex"
	case ParseErrInvalidUnit:
		return "invalid unit literal"
	case ParseErrEmptyQuery:
		return "empty query"
	default:
		return "parse error"
	}
}

// ParseError reports a malformed query. Offset is the byte position of
// the offending token in the original query string, so callers can
// highlight the error location.
type ParseError struct {
	Kind   ParseErrorKind
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s: %s", e.Offset, e.Kind, e.Detail)
}
