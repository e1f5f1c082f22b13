package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds are the gate limits a benchmark run is judged against.
// They are configuration: ship defaults, override per environment.
type Thresholds struct {
	// TotalP95MS bounds the 95th percentile of end-to-end query time.
	TotalP95MS float64 `json:"total_p95_ms" yaml:"total_p95_ms"`

	// FuseP95MS bounds the 95th percentile of the fusion stage alone.
	FuseP95MS float64 `json:"fuse_p95_ms" yaml:"fuse_p95_ms"`

	// MinMeanOverlap is the floor for mean semantic/hybrid agreement.
	MinMeanOverlap float64 `json:"min_mean_overlap" yaml:"min_mean_overlap"`
}

// DefaultThresholds returns the stock gate limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TotalP95MS:     220,
		FuseP95MS:      60,
		MinMeanOverlap: 0.45,
	}
}

// LoadThresholds reads threshold overrides from a YAML file. Keys left
// out of the file keep their default values.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds: %w", err)
	}
	return t, nil
}
