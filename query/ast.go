package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Operator is a field predicate comparison operator.
type Operator int

const (
	// OpEq is exact comparison, case-insensitive on text fields.
	OpEq Operator = iota
	// OpNe is the negation of OpEq.
	OpNe
	// OpLt, OpLe, OpGt, OpGe are numeric comparisons.
	OpLt
	OpLe
	OpGt
	OpGe
	// OpContains is case-insensitive substring match on text fields.
	OpContains
)

// String returns the operator's query syntax.
func (o Operator) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpContains:
		return "~"
	default:
		return "?"
	}
}

// Dimension tags the unit a resolved literal is expressed in.
type Dimension int

const (
	DimNone Dimension = iota
	DimSeconds
	DimBytes
)

// Literal is a predicate value. Num and Dim are populated at parse time
// when the field carries a dimension or the raw value is numeric.
type Literal struct {
	Raw     string
	Num     float64
	Dim     Dimension
	Numeric bool
}

// Node is one node of a parsed query AST. Trees are immutable after
// Parse and safe to share across goroutines.
type Node interface {
	node()
	String() string
}

// FieldPredicate compares a catalog field against a literal.
type FieldPredicate struct {
	Field string // canonical name, see CanonicalField
	Kind  FieldKind
	Op    Operator
	Value Literal
}

// RegexPredicate matches a catalog field against a compiled regular
// expression.
type RegexPredicate struct {
	Field   string
	Kind    FieldKind
	Pattern *regexp.Regexp
	Raw     string
}

// FreeText matches filename, tags, and description by case-insensitive
// substring. Phrase marks terms that were written as quoted phrases.
type FreeText struct {
	Text   string
	Phrase bool
}

// And matches when every child matches.
type And struct {
	Children []Node
}

// Or matches when at least one child matches.
type Or struct {
	Children []Node
}

// Not matches when its child does not.
type Not struct {
	Child Node
}

func (*FieldPredicate) node() {}
func (*RegexPredicate) node() {}
func (*FreeText) node()       {}
func (*And) node()            {}
func (*Or) node()             {}
func (*Not) node()            {}

func (p *FieldPredicate) String() string {
	op := p.Op.String()
	if p.Op == OpEq {
		op = ""
	}
	return p.Field + ":" + op + p.Value.Raw
}

func (p *RegexPredicate) String() string {
	return p.Field + ":/" + p.Raw + "/"
}

func (t *FreeText) String() string {
	if t.Phrase {
		return strconv.Quote(t.Text)
	}
	return t.Text
}

func (a *And) String() string {
	return joinChildren(a.Children, " AND ")
}

func (o *Or) String() string {
	return joinChildren(o.Children, " OR ")
}

func (n *Not) String() string {
	return "NOT " + n.Child.String()
}

func joinChildren(children []Node, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
