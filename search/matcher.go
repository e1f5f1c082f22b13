package search

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/query"
)

// RankedEntry is one scored asset from a single ranking source. Both
// the lexical matcher and the semantic index produce these, ordered
// best-first, for the fusion engine to combine.
type RankedEntry struct {
	AssetId core.ID
	Score   float64
}

// AssetSource yields catalog assets for lexical evaluation. It is the
// slice of storage.AssetRepository the matcher needs.
type AssetSource interface {
	IterateAssets(ctx context.Context, fn func(*core.Asset) error) error
}

// Evaluate scores every asset in the source against a parsed query.
// Each matching leaf contributes 1.0; And and Or nodes score the sum of
// their matched children; a Not node scores 1.0 when its child does not
// match. Results are ordered by score descending with ties broken by
// ascending asset ID, truncated to topK (topK <= 0 returns all).
//
// Queries without a positive term are rejected with ErrUnboundedQuery
// before any asset is read.
func Evaluate(ctx context.Context, node query.Node, source AssetSource, topK int) ([]RankedEntry, error) {
	if !Bounded(node) {
		return nil, ErrUnboundedQuery
	}

	var entries []RankedEntry
	err := source.IterateAssets(ctx, func(asset *core.Asset) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if matched, score := evalNode(node, asset); matched {
			entries = append(entries, RankedEntry{AssetId: asset.Id, Score: score})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortEntries(entries)
	if topK > 0 && len(entries) > topK {
		entries = entries[:topK]
	}
	return entries, nil
}

// sortEntries orders entries by score descending, ties by ascending ID.
func sortEntries(entries []RankedEntry) {
	slices.SortFunc(entries, func(a, b RankedEntry) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.AssetId, b.AssetId)
	})
}

// Bounded reports whether a query constrains the result set through at
// least one positive term. A Not node is never bounded; an And is
// bounded by any bounded child; an Or needs every branch bounded.
func Bounded(node query.Node) bool {
	switch n := node.(type) {
	case *query.Not:
		return false
	case *query.And:
		for _, child := range n.Children {
			if Bounded(child) {
				return true
			}
		}
		return false
	case *query.Or:
		for _, child := range n.Children {
			if !Bounded(child) {
				return false
			}
		}
		return len(n.Children) > 0
	default:
		return true
	}
}

// evalNode scores one asset against a query subtree.
func evalNode(node query.Node, asset *core.Asset) (matched bool, score float64) {
	switch n := node.(type) {
	case *query.FieldPredicate:
		if evalFieldPredicate(n, asset) {
			return true, 1.0
		}
		return false, 0

	case *query.RegexPredicate:
		if evalRegexPredicate(n, asset) {
			return true, 1.0
		}
		return false, 0

	case *query.FreeText:
		if matchesFreeText(asset, n.Text) {
			return true, 1.0
		}
		return false, 0

	case *query.And:
		var sum float64
		for _, child := range n.Children {
			childMatched, childScore := evalNode(child, asset)
			if !childMatched {
				return false, 0
			}
			sum += childScore
		}
		return true, sum

	case *query.Or:
		var sum float64
		for _, child := range n.Children {
			if childMatched, childScore := evalNode(child, asset); childMatched {
				matched = true
				sum += childScore
			}
		}
		if !matched {
			return false, 0
		}
		return true, sum

	case *query.Not:
		if childMatched, _ := evalNode(n.Child, asset); !childMatched {
			return true, 1.0
		}
		return false, 0

	default:
		return false, 0
	}
}

func evalFieldPredicate(p *query.FieldPredicate, asset *core.Asset) bool {
	switch p.Kind {
	case query.FieldText:
		return matchText(textField(asset, p.Field), p.Op, p.Value.Raw)

	case query.FieldTags:
		// tags:!=x holds only when NO element equals x.
		if p.Op == query.OpNe {
			for _, tag := range asset.Tags {
				if strings.EqualFold(tag, p.Value.Raw) {
					return false
				}
			}
			return true
		}
		for _, tag := range asset.Tags {
			if matchText(tag, p.Op, p.Value.Raw) {
				return true
			}
		}
		return false

	case query.FieldNumeric, query.FieldDuration, query.FieldSize:
		if !p.Value.Numeric {
			return false
		}
		val, ok := numericField(asset, p.Field)
		if !ok {
			return false
		}
		return compareNumeric(val, p.Op, p.Value.Num)

	default:
		// Unknown fields match nothing.
		return false
	}
}

func evalRegexPredicate(p *query.RegexPredicate, asset *core.Asset) bool {
	if p.Kind == query.FieldTags {
		for _, tag := range asset.Tags {
			if p.Pattern.MatchString(tag) {
				return true
			}
		}
		return false
	}
	s, ok := stringForm(asset, p.Field, p.Kind)
	if !ok {
		return false
	}
	return p.Pattern.MatchString(s)
}

// matchText applies a comparison operator to a text field. Ordering
// operators have no text meaning and never match.
func matchText(fieldValue string, op query.Operator, want string) bool {
	switch op {
	case query.OpEq:
		return strings.EqualFold(fieldValue, want)
	case query.OpNe:
		return !strings.EqualFold(fieldValue, want)
	case query.OpContains:
		return containsFold(fieldValue, want)
	default:
		return false
	}
}

func compareNumeric(val float64, op query.Operator, want float64) bool {
	switch op {
	case query.OpEq:
		return val == want
	case query.OpNe:
		return val != want
	case query.OpLt:
		return val < want
	case query.OpLe:
		return val <= want
	case query.OpGt:
		return val > want
	case query.OpGe:
		return val >= want
	default:
		return false
	}
}

func textField(asset *core.Asset, field string) string {
	switch field {
	case "filename":
		return asset.Filename
	case "path":
		return asset.Path
	case "format":
		return asset.Format
	case "description":
		return asset.Description
	default:
		return ""
	}
}

func numericField(asset *core.Asset, field string) (float64, bool) {
	switch field {
	case "duration":
		return asset.Duration, true
	case "samplerate":
		return float64(asset.SampleRate), true
	case "bitdepth":
		return float64(asset.BitDepth), true
	case "channels":
		return float64(asset.Channels), true
	case "size":
		return float64(asset.SizeBytes), true
	default:
		return 0, false
	}
}

// stringForm renders a field for regex matching. Numeric fields use
// their decimal rendering.
func stringForm(asset *core.Asset, field string, kind query.FieldKind) (string, bool) {
	switch kind {
	case query.FieldText:
		return textField(asset, field), true
	case query.FieldNumeric, query.FieldDuration, query.FieldSize:
		val, ok := numericField(asset, field)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}
