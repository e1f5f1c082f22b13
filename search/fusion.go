package search

import (
	"cmp"
	"slices"

	"github.com/soundscout/soundscout/core"
)

// defaultRRFK is the standard rank-fusion smoothing constant.
const defaultRRFK = 60

// FusionConfig tunes Reciprocal Rank Fusion. Zero values fall back to
// the defaults, so FusionConfig{} behaves like DefaultFusionConfig().
type FusionConfig struct {
	// K dampens the contribution differences between nearby ranks.
	// Larger values flatten the curve.
	K float64

	// LexicalWeight and SemanticWeight scale each source's rank
	// contributions. Equal weights treat the sources symmetrically.
	LexicalWeight  float64
	SemanticWeight float64
}

// DefaultFusionConfig returns the standard fusion parameters: K of 60
// with both sources weighted equally.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{K: defaultRRFK, LexicalWeight: 1.0, SemanticWeight: 1.0}
}

func (c FusionConfig) withDefaults() FusionConfig {
	if c.K <= 0 {
		c.K = defaultRRFK
	}
	if c.LexicalWeight <= 0 {
		c.LexicalWeight = 1.0
	}
	if c.SemanticWeight <= 0 {
		c.SemanticWeight = 1.0
	}
	return c
}

// Fuse combines two ranked lists with Reciprocal Rank Fusion. An entry
// at 1-based rank r contributes weight/(K+r) per list it appears in;
// the fused score is the sum over both lists, so improving an entry's
// rank in either source never lowers its fused score.
//
// Hits are ordered by fused score descending. Ties rank entries present
// in both sources before single-source entries, then by ascending asset
// ID. Asset pointers are left nil; callers attach them after ranking.
func Fuse(lexical, semantic []RankedEntry, cfg FusionConfig) []*core.SearchHit {
	cfg = cfg.withDefaults()

	byID := make(map[core.ID]*core.SearchHit, len(lexical)+len(semantic))
	hit := func(id core.ID) *core.SearchHit {
		if h, ok := byID[id]; ok {
			return h
		}
		h := &core.SearchHit{AssetId: id}
		byID[id] = h
		return h
	}

	for i, entry := range lexical {
		h := hit(entry.AssetId)
		h.LexicalRank = i + 1
		h.LexicalScore = entry.Score
		h.Score += cfg.LexicalWeight / (cfg.K + float64(i+1))
	}
	for i, entry := range semantic {
		h := hit(entry.AssetId)
		h.SemanticRank = i + 1
		h.SemanticScore = entry.Score
		h.Score += cfg.SemanticWeight / (cfg.K + float64(i+1))
	}

	hits := make([]*core.SearchHit, 0, len(byID))
	for _, h := range byID {
		hits = append(hits, h)
	}
	slices.SortFunc(hits, func(a, b *core.SearchHit) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		aBoth, bBoth := a.InBoth(), b.InBoth()
		if aBoth != bBoth {
			if aBoth {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.AssetId, b.AssetId)
	})
	return hits
}
