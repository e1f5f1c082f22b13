// Package query implements the catalog query language: a lexer, a
// recursive descent parser producing an immutable AST, and resolvers for
// unit-bearing literals (durations and sizes).
//
// The language combines field predicates, free text, and boolean
// connectives:
//
//	format:wav AND duration:>5
//	"forest birds" OR tags:ambience
//	filename:/kick_\d+/ NOT format:mp3
//
// Terms are field predicates (field:value with optional comparison
// operator =, !=, <, <=, >, >=, or ~ for substring), regex predicates
// (field:/pattern/), quoted phrases, and bare words. AND binds tighter
// than OR, NOT binds tighter than both, parentheses group, and adjacent
// terms with no connective are implicitly ANDed. Connectives are
// recognized in upper case only, so lowercase "and" stays searchable
// text.
//
// Duration fields accept plain seconds ("90"), clock forms ("3:30",
// "1:02:03"), and suffixed forms ("500ms", "5m", "2 hours"). Size fields
// accept plain bytes and decimal suffixes ("1kb" = 1000 bytes, "2.5gb").
// Suffix matching is case-insensitive. An invalid literal on a known
// unit field is a parse error, never a silent zero.
//
// Unknown field names are accepted by the parser and deferred to
// evaluation, where they match nothing. Malformed queries return a
// *ParseError carrying a distinct kind and the byte offset of the
// offending token.
package query
