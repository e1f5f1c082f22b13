package bench

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"
)

// Measurement is the record of one benchmark query. Stage times come
// from the searcher's own diagnostics; overlap compares the semantic
// ranking against the fused one.
type Measurement struct {
	Query      string  `json:"query"`
	LexicalMS  float64 `json:"lexical_ms"`
	SemanticMS float64 `json:"semantic_ms"`
	FuseMS     float64 `json:"fuse_ms"`
	TotalMS    float64 `json:"total_ms"`
	Overlap    float64 `json:"overlap"`
	Degraded   bool    `json:"degraded"`
}

// StageStats are latency percentiles for one pipeline stage.
type StageStats struct {
	P50MS float64 `json:"p50_ms"`
	P95MS float64 `json:"p95_ms"`
}

// Summary is the evaluated verdict of a run. It is derived entirely
// from the measurements and thresholds, so a stored summary can always
// be audited by recomputing it.
type Summary struct {
	Queries     int        `json:"queries"`
	Lexical     StageStats `json:"lexical"`
	Semantic    StageStats `json:"semantic"`
	Fuse        StageStats `json:"fuse"`
	Total       StageStats `json:"total"`
	MeanOverlap float64    `json:"mean_overlap"`
	Degraded    int        `json:"degraded"`

	TotalPass   bool `json:"total_pass"`
	FusePass    bool `json:"fuse_pass"`
	OverlapPass bool `json:"overlap_pass"`
	Passed      bool `json:"passed"`
}

// Report is a complete benchmark run: inputs, raw measurements, the
// thresholds in force, and the summary they produced.
type Report struct {
	GeneratedAt  time.Time     `json:"generated_at"`
	AssetCount   int           `json:"asset_count"`
	QueryCount   int           `json:"query_count"`
	Seed         int64         `json:"seed"`
	TopK         int           `json:"top_k"`
	Thresholds   Thresholds    `json:"thresholds"`
	Measurements []Measurement `json:"measurements"`
	Summary      Summary       `json:"summary"`
}

// Evaluate derives the summary verdict from raw measurements.
func Evaluate(measurements []Measurement, thresholds Thresholds) Summary {
	s := Summary{Queries: len(measurements)}

	lexical := make([]float64, 0, len(measurements))
	semantic := make([]float64, 0, len(measurements))
	fuse := make([]float64, 0, len(measurements))
	total := make([]float64, 0, len(measurements))
	overlapSum := 0.0

	for _, m := range measurements {
		lexical = append(lexical, m.LexicalMS)
		semantic = append(semantic, m.SemanticMS)
		fuse = append(fuse, m.FuseMS)
		total = append(total, m.TotalMS)
		overlapSum += m.Overlap
		if m.Degraded {
			s.Degraded++
		}
	}

	s.Lexical = stageStats(lexical)
	s.Semantic = stageStats(semantic)
	s.Fuse = stageStats(fuse)
	s.Total = stageStats(total)
	if len(measurements) > 0 {
		s.MeanOverlap = overlapSum / float64(len(measurements))
	}

	s.TotalPass = s.Total.P95MS <= thresholds.TotalP95MS
	s.FusePass = s.Fuse.P95MS <= thresholds.FuseP95MS
	s.OverlapPass = s.MeanOverlap >= thresholds.MinMeanOverlap
	s.Passed = s.TotalPass && s.FusePass && s.OverlapPass

	return s
}

func stageStats(values []float64) StageStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return StageStats{
		P50MS: percentile(sorted, 0.50),
		P95MS: percentile(sorted, 0.95),
	}
}

// percentile reads quantile q from an ascending slice using
// nearest-rank on the rounded index.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Round(float64(len(sorted)-1) * q))
	return sorted[idx]
}

// Recompute re-derives the summary from the report's own measurements
// and thresholds, for auditing a stored verdict.
func (r *Report) Recompute() Summary {
	return Evaluate(r.Measurements, r.Thresholds)
}

// Write marshals the report to a JSON file.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// LoadReport reads a report back from a JSON file.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
