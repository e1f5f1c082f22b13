package search

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning is the file-configurable slice of searcher behavior: result
// count, fusion parameters, and branch time budgets. Timeouts are
// expressed in milliseconds to keep the file format plain numbers.
type Tuning struct {
	TopK              int     `yaml:"top_k"`
	RRFK              float64 `yaml:"rrf_k"`
	LexicalWeight     float64 `yaml:"lexical_weight"`
	SemanticWeight    float64 `yaml:"semantic_weight"`
	LexicalTimeoutMS  int     `yaml:"lexical_timeout_ms"`
	SemanticTimeoutMS int     `yaml:"semantic_timeout_ms"`
}

// DefaultTuning returns the searcher's stock settings.
func DefaultTuning() Tuning {
	return Tuning{
		TopK:              defaultTopK,
		RRFK:              defaultRRFK,
		LexicalWeight:     1.0,
		SemanticWeight:    1.0,
		LexicalTimeoutMS:  int(defaultLexicalTimeout / time.Millisecond),
		SemanticTimeoutMS: int(defaultSemanticTimeout / time.Millisecond),
	}
}

// LoadTuning reads tuning overrides from a YAML file. Keys left out of
// the file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects values the searcher options would refuse.
func (t Tuning) Validate() error {
	if t.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidTuning)
	}
	if t.RRFK <= 0 {
		return fmt.Errorf("%w: rrf_k must be positive", ErrInvalidTuning)
	}
	if t.LexicalWeight <= 0 || t.SemanticWeight <= 0 {
		return fmt.Errorf("%w: weights must be positive", ErrInvalidTuning)
	}
	if t.LexicalTimeoutMS <= 0 || t.SemanticTimeoutMS <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidTuning)
	}
	return nil
}

// Options expands the tuning into searcher options.
func (t Tuning) Options() []Option {
	return []Option{
		WithTopK(t.TopK),
		WithFusionConfig(FusionConfig{
			K:              t.RRFK,
			LexicalWeight:  t.LexicalWeight,
			SemanticWeight: t.SemanticWeight,
		}),
		WithBranchTimeouts(
			time.Duration(t.LexicalTimeoutMS)*time.Millisecond,
			time.Duration(t.SemanticTimeoutMS)*time.Millisecond,
		),
	}
}
