package index

import (
	"fmt"
	"slices"
	"sync"

	"github.com/soundscout/soundscout/core"
)

// Flat is the exact brute-force index. Every query scans all stored
// vectors, so it is the correctness baseline the approximate forms are
// measured against.
type Flat struct {
	mu      sync.RWMutex
	dim     int
	vectors map[core.ID][]float32
}

var _ Index = (*Flat)(nil)

func newFlat(cfg config) *Flat {
	return &Flat{
		dim:     cfg.dim,
		vectors: make(map[core.ID][]float32),
	}
}

// Upsert stores a unit-normalized copy of the vector under the ID.
func (f *Flat) Upsert(id core.ID, vector []float32) error {
	normalized, err := core.NormalizeVector(vector)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dim == 0 {
		f.dim = len(normalized)
	}
	if len(normalized) != f.dim {
		return fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(normalized), f.dim)
	}

	f.vectors[id] = normalized
	return nil
}

// Delete removes a vector by ID. Unknown IDs are ignored.
func (f *Flat) Delete(id core.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vectors, id)
}

// Query scans every stored vector and returns the topK most similar.
func (f *Flat) Query(vector []float32, topK int) ([]core.SimilarityMatch, error) {
	if topK <= 0 {
		return nil, nil
	}
	query, err := core.NormalizeVector(vector)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	if f.dim != 0 && len(query) != f.dim {
		f.mu.RUnlock()
		return nil, fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(query), f.dim)
	}
	matches := make([]core.SimilarityMatch, 0, len(f.vectors))
	for id, stored := range f.vectors {
		matches = append(matches, core.SimilarityMatch{
			AssetId: id,
			Score:   core.DotProduct(query, stored),
		})
	}
	f.mu.RUnlock()

	sortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Dim returns the vector dimension, or 0 before the first Upsert.
func (f *Flat) Dim() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dim
}

// sortMatches orders by similarity descending, ties by ascending ID.
func sortMatches(matches []core.SimilarityMatch) {
	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.AssetId < b.AssetId {
			return -1
		}
		if a.AssetId > b.AssetId {
			return 1
		}
		return 0
	})
}
