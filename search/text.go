package search

import (
	"strings"

	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/query"
)

// matchesFreeText checks whether a free-text term appears in the
// asset's filename, tags, or description, case-insensitively.
func matchesFreeText(asset *core.Asset, term string) bool {
	if term == "" {
		return false
	}
	if containsFold(asset.Filename, term) {
		return true
	}
	for _, tag := range asset.Tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return containsFold(asset.Description, term)
}

// containsFold reports whether substr occurs in s ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// CollectFreeText gathers the positive free-text terms of a query in
// source order. Terms under a NOT are excluded: embedding them would
// steer the semantic branch toward exactly what the query rejects.
func CollectFreeText(node query.Node) []string {
	var terms []string
	var walk func(n query.Node)
	walk = func(n query.Node) {
		switch t := n.(type) {
		case *query.FreeText:
			terms = append(terms, t.Text)
		case *query.And:
			for _, child := range t.Children {
				walk(child)
			}
		case *query.Or:
			for _, child := range t.Children {
				walk(child)
			}
		}
	}
	walk(node)
	return terms
}
