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


package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundscout/soundscout"
	"github.com/soundscout/soundscout/ai/mock"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/search"
)

// HarnessConfig sizes a benchmark run.
type HarnessConfig struct {
	Assets     int
	Queries    int
	Seed       int64
	TopK       int
	Thresholds Thresholds
}

// DefaultHarnessConfig returns a run sized to finish in seconds while
// still producing stable percentiles.
func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		Assets:     500,
		Queries:    60,
		Seed:       42,
		TopK:       50,
		Thresholds: DefaultThresholds(),
	}
}

// Harness runs a query corpus against a synthetic catalog on a full
// in-memory engine with the deterministic mock embedder, so timings
// measure the engine rather than an embedding service.
type Harness struct {
	config HarnessConfig
	logger *slog.Logger
}

// NewHarness creates a harness. A nil logger falls back to the default.
func NewHarness(config HarnessConfig, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Assets <= 0 {
		config.Assets = DefaultHarnessConfig().Assets
	}
	if config.Queries <= 0 {
		config.Queries = DefaultHarnessConfig().Queries
	}
	if config.TopK <= 0 {
		config.TopK = DefaultHarnessConfig().TopK
	}
	return &Harness{config: config, logger: logger}
}

// Run seeds the catalog, executes the query corpus, and returns the
// evaluated report.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	dataset := GenerateDataset(DatasetConfig{
		Assets:  h.config.Assets,
		Queries: h.config.Queries,
		Seed:    h.config.Seed,
	})

	engine, err := soundscout.New("", soundscout.WithInMemory(),
		soundscout.WithProvider(mock.NewMockProvider()),
		soundscout.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	if err := h.seed(ctx, engine, dataset); err != nil {
		return nil, err
	}

	searcher, err := engine.NewSearcher(search.WithTopK(h.config.TopK))
	if err != nil {
		return nil, err
	}

	h.logger.Info("benchmark starting",
		"assets", len(dataset.Assets), "queries", len(dataset.Queries))

	measurements := make([]Measurement, 0, len(dataset.Queries))
	for _, q := range dataset.Queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := h.measure(ctx, searcher, q)
		if err != nil {
			return nil, fmt.Errorf("query %q failed: %w", q, err)
		}
		measurements = append(measurements, m)
	}

	report := &Report{
		GeneratedAt:  time.Now().UTC(),
		AssetCount:   len(dataset.Assets),
		QueryCount:   len(dataset.Queries),
		Seed:         h.config.Seed,
		TopK:         h.config.TopK,
		Thresholds:   h.config.Thresholds,
		Measurements: measurements,
		Summary:      Evaluate(measurements, h.config.Thresholds),
	}

	h.logger.Info("benchmark finished",
		"total_p95_ms", report.Summary.Total.P95MS,
		"mean_overlap", report.Summary.MeanOverlap,
		"passed", report.Summary.Passed)

	return report, nil
}

// seed stores the dataset with precomputed embeddings and mirrors the
// vectors into the index directly: bulk insertion can outrun the event
// subscription, and the run needs a complete index, not an eventually
// complete one.
func (h *Harness) seed(ctx context.Context, engine *soundscout.Engine, dataset *Dataset) error {
	for _, asset := range dataset.Assets {
		asset.Vector = mock.DeterministicVector(asset.EmbeddingText())
	}

	added, err := engine.Assets().AddAssets(ctx, dataset.Assets...)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	for _, asset := range added {
		if err := engine.Index().Upsert(asset.Id, asset.Vector); err != nil {
			return fmt.Errorf("failed to index asset %d: %w", asset.Id, err)
		}
	}
	return nil
}

// measure runs one query in hybrid mode, then again in semantic mode to
// compute ranking overlap.
func (h *Harness) measure(ctx context.Context, searcher *search.Searcher, q string) (Measurement, error) {
	result, err := searcher.Search(ctx, q)
	if err != nil {
		return Measurement{}, err
	}

	overlap := 0.0
	if !result.Semantic.Skipped {
		semantic, err := searcher.Search(ctx, q, search.WithMode(search.ModeSemantic))
		if err != nil {
			return Measurement{}, err
		}
		overlap = rankOverlap(semantic.Hits, result.Hits)
	}

	return Measurement{
		Query:      q,
		LexicalMS:  millis(result.Lexical.Elapsed),
		SemanticMS: millis(result.Semantic.Elapsed),
		FuseMS:     millis(result.FuseTime),
		TotalMS:    millis(result.TotalTime),
		Overlap:    overlap,
		Degraded:   result.Degraded,
	}, nil
}

// rankOverlap is the shared fraction of the two hit lists, normalized
// by the shorter list so a small semantic return cannot inflate it.
func rankOverlap(semantic, hybrid []*core.SearchHit) float64 {
	if len(semantic) == 0 || len(hybrid) == 0 {
		return 0
	}

	ids := make(map[core.ID]struct{}, len(semantic))
	for _, hit := range semantic {
		ids[hit.AssetId] = struct{}{}
	}
	shared := 0
	for _, hit := range hybrid {
		if _, ok := ids[hit.AssetId]; ok {
			shared++
		}
	}

	denom := min(len(semantic), len(hybrid))
	if denom < 1 {
		denom = 1
	}
	return float64(shared) / float64(denom)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
