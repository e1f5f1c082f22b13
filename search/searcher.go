package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/index"
	"github.com/soundscout/soundscout/query"
	"github.com/soundscout/soundscout/storage"
)

const (
	defaultTopK            = 200
	defaultLexicalTimeout  = 2 * time.Second
	defaultSemanticTimeout = 5 * time.Second
	defaultEmbedCacheSize  = 256
)

// Mode selects which ranking branches a search runs.
type Mode int

const (
	// ModeHybrid runs both branches and fuses their rankings.
	ModeHybrid Mode = iota
	// ModeLexical ranks with the catalog matcher only.
	ModeLexical
	// ModeSemantic ranks with the vector index only.
	ModeSemantic
)

// String returns the mode's flag spelling.
func (m Mode) String() string {
	switch m {
	case ModeLexical:
		return "lexical"
	case ModeSemantic:
		return "semantic"
	default:
		return "hybrid"
	}
}

// ParseMode resolves a mode name. The empty string means ModeHybrid.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hybrid":
		return ModeHybrid, nil
	case "lexical":
		return ModeLexical, nil
	case "semantic":
		return ModeSemantic, nil
	default:
		return ModeHybrid, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// BranchInfo carries the diagnostics of one ranking branch.
type BranchInfo struct {
	// Count is the number of entries the branch produced.
	Count int

	// Elapsed is the branch wall time.
	Elapsed time.Duration

	// TimedOut reports whether the branch hit its deadline.
	TimedOut bool

	// Err is the branch failure, nil on success. A failed branch
	// degrades the result instead of failing the query.
	Err error

	// Skipped reports that the branch never ran, either because the
	// mode excluded it or because the query had no free text to embed.
	Skipped bool
}

// Result is a fused search result with per-stage diagnostics.
type Result struct {
	Hits      []*core.SearchHit
	Degraded  bool
	Lexical   BranchInfo
	Semantic  BranchInfo
	FuseTime  time.Duration
	TotalTime time.Duration
}

// Searcher runs hybrid lexical and semantic search over the catalog.
type Searcher struct {
	assets   storage.AssetRepository
	idx      index.Index
	embedder ai.Embedder
	logger   *slog.Logger

	topK            int
	fusion          FusionConfig
	lexicalTimeout  time.Duration
	semanticTimeout time.Duration
	monitor         Monitor
	embedCacheSize  int
	embedCache      *lru.Cache[core.ID, []float32]
}

// Option adjusts a Searcher at construction time.
type Option func(*Searcher) error

// WithLogger sets the logger; nil falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTopK bounds the number of entries each branch ranks and the
// number of fused hits returned. Default is 200.
func WithTopK(topK int) Option {
	return func(s *Searcher) error {
		if topK > 0 {
			s.topK = topK
		}
		return nil
	}
}

// WithFusionConfig replaces the rank-fusion parameters.
func WithFusionConfig(cfg FusionConfig) Option {
	return func(s *Searcher) error {
		s.fusion = cfg
		return nil
	}
}

// WithBranchTimeouts sets the per-branch deadlines. A branch that
// overruns its deadline is dropped from fusion and marks the result
// degraded. Non-positive values keep the defaults.
func WithBranchTimeouts(lexical, semantic time.Duration) Option {
	return func(s *Searcher) error {
		if lexical > 0 {
			s.lexicalTimeout = lexical
		}
		if semantic > 0 {
			s.semanticTimeout = semantic
		}
		return nil
	}
}

// WithMonitor installs a stage callback monitor.
func WithMonitor(monitor Monitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithEmbedCacheSize bounds the query-embedding LRU cache. Zero or
// negative disables caching. Default is 256 entries.
func WithEmbedCacheSize(size int) Option {
	return func(s *Searcher) error {
		s.embedCacheSize = size
		return nil
	}
}

// NewSearcher creates a new searcher over the given catalog, semantic
// index, and embedding provider.
func NewSearcher(
	assets storage.AssetRepository,
	idx index.Index,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if assets == nil {
		return nil, ErrAssetRepositoryRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		assets:          assets,
		idx:             idx,
		embedder:        provider.Embedder(),
		logger:          slog.Default(),
		topK:            defaultTopK,
		fusion:          DefaultFusionConfig(),
		lexicalTimeout:  defaultLexicalTimeout,
		semanticTimeout: defaultSemanticTimeout,
		monitor:         &noopMonitor{},
		embedCacheSize:  defaultEmbedCacheSize,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.embedCacheSize > 0 {
		cache, err := lru.New[core.ID, []float32](s.embedCacheSize)
		if err != nil {
			return nil, err
		}
		s.embedCache = cache
	}

	return s, nil
}

// SearchOption adjusts a single Search call.
type SearchOption func(*searchPlan)

type searchPlan struct {
	mode Mode
}

// WithMode selects which ranking branches this search runs.
// Default is ModeHybrid.
func WithMode(mode Mode) SearchOption {
	return func(p *searchPlan) {
		p.mode = mode
	}
}

// Search parses the query and ranks the catalog against it. Parse
// failures and unbounded queries are returned synchronously; branch
// failures and timeouts degrade the result instead of failing it.
//
// With a fixed catalog, index, and configuration the same query always
// returns the same ordered hits.
func (s *Searcher) Search(ctx context.Context, rawQuery string, opts ...SearchOption) (*Result, error) {
	start := time.Now()

	plan := searchPlan{mode: ModeHybrid}
	for _, opt := range opts {
		opt(&plan)
	}

	node, err := query.Parse(rawQuery)
	if err != nil {
		return nil, err
	}
	if !Bounded(node) {
		return nil, ErrUnboundedQuery
	}
	s.monitor.Parsed(rawQuery, node)

	embedText := strings.Join(CollectFreeText(node), " ")

	runLexical := plan.mode != ModeSemantic
	wantSemantic := plan.mode != ModeLexical
	runSemantic := wantSemantic && embedText != ""

	result := &Result{}
	if !runLexical {
		result.Lexical.Skipped = true
	}
	if !runSemantic {
		result.Semantic.Skipped = true
	}

	var lexical, semantic []RankedEntry
	var g errgroup.Group

	if runLexical {
		g.Go(func() error {
			branchStart := time.Now()
			bctx, cancel := context.WithTimeout(ctx, s.lexicalTimeout)
			defer cancel()

			entries, err := Evaluate(bctx, node, s.assets, s.topK)
			result.Lexical.Elapsed = time.Since(branchStart)
			if err != nil {
				result.Lexical.Err = err
				result.Lexical.TimedOut = errors.Is(err, context.DeadlineExceeded)
				s.logger.Warn("lexical branch failed", "query", rawQuery, "err", err)
			} else {
				lexical = entries
				result.Lexical.Count = len(entries)
			}
			s.monitor.BranchDone("lexical", result.Lexical)
			return nil
		})
	}

	if runSemantic {
		g.Go(func() error {
			branchStart := time.Now()
			bctx, cancel := context.WithTimeout(ctx, s.semanticTimeout)
			defer cancel()

			vector, err := s.embedQuery(bctx, embedText)
			if err == nil {
				var matches []core.SimilarityMatch
				matches, err = s.idx.Query(vector, s.topK)
				if err == nil {
					semantic = toRanked(matches)
					result.Semantic.Count = len(semantic)
				}
			}
			result.Semantic.Elapsed = time.Since(branchStart)
			if err != nil {
				result.Semantic.Err = err
				result.Semantic.TimedOut = errors.Is(err, context.DeadlineExceeded)
				s.logger.Warn("semantic branch failed", "query", rawQuery, "err", err)
			}
			s.monitor.BranchDone("semantic", result.Semantic)
			return nil
		})
	}

	// Branches record their own failures, so Wait only synchronizes.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Degraded = result.Lexical.Err != nil || result.Semantic.Err != nil

	fuseStart := time.Now()
	hits := Fuse(lexical, semantic, s.fusion)
	if len(hits) > s.topK {
		hits = hits[:s.topK]
	}
	result.FuseTime = time.Since(fuseStart)

	if err := s.attachAssets(ctx, hits, result); err != nil {
		return nil, err
	}

	result.TotalTime = time.Since(start)
	s.monitor.Fused(result)
	return result, nil
}

// attachAssets loads the asset records for the fused hits. Hits whose
// asset vanished between ranking and retrieval are dropped.
func (s *Searcher) attachAssets(ctx context.Context, hits []*core.SearchHit, result *Result) error {
	if len(hits) == 0 {
		result.Hits = []*core.SearchHit{}
		return nil
	}

	ids := make([]core.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.AssetId
	}
	assets, err := s.assets.GetAssets(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving assets for hits", "hitCount", len(hits), "err", err)
		return err
	}

	byID := make(map[core.ID]*core.Asset, len(assets))
	for _, asset := range assets {
		byID[asset.Id] = asset
	}

	attached := make([]*core.SearchHit, 0, len(hits))
	for _, h := range hits {
		asset, ok := byID[h.AssetId]
		if !ok {
			continue
		}
		h.Asset = asset
		attached = append(attached, h)
	}
	result.Hits = attached
	return nil
}

// embedQuery returns the embedding for a query text, serving repeats
// from the LRU cache. Vectors are model-deterministic for a given text,
// so cached entries never go stale within a process. Entries are keyed
// by the text's content hash so the cache holds no query strings.
func (s *Searcher) embedQuery(ctx context.Context, text string) ([]float32, error) {
	key := core.IDFromContent(text)
	if s.embedCache != nil {
		if vec, ok := s.embedCache.Get(key); ok {
			return vec, nil
		}
	}
	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.embedCache != nil {
		s.embedCache.Add(key, vec)
	}
	return vec, nil
}

func toRanked(matches []core.SimilarityMatch) []RankedEntry {
	entries := make([]RankedEntry, len(matches))
	for i, m := range matches {
		entries[i] = RankedEntry{AssetId: m.AssetId, Score: float64(m.Score)}
	}
	return entries
}
