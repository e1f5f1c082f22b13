package index

import (
	"github.com/soundscout/soundscout/core"
)

// Index is the vector search surface shared by the flat and IVF forms.
// Implementations are safe for concurrent use.
type Index interface {
	// Upsert stores a vector under an ID, replacing any previous one.
	// The vector is unit-normalized before storage; the caller's slice
	// is never retained. Returns core.ErrInvalidVector for vectors that
	// cannot be normalized and ErrDimensionMismatch when the length
	// disagrees with vectors already stored.
	Upsert(id core.ID, vector []float32) error

	// Delete removes a vector by ID. Unknown IDs are ignored.
	Delete(id core.ID)

	// Query returns up to topK matches ordered by similarity descending,
	// ties by ascending ID. The query vector is normalized first and
	// validated like Upsert input.
	Query(vector []float32, topK int) ([]core.SimilarityMatch, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dim returns the vector dimension, or 0 before the first Upsert
	// when no fixed dimension was configured.
	Dim() int
}

type config struct {
	dim    int
	ivf    bool
	nlist  int
	nprobe int
	seed   int64
}

// Option configures an index at construction.
type Option func(*config)

// WithDim fixes the vector dimension up front. Without it the index
// adopts the dimension of the first stored vector.
func WithDim(dim int) Option {
	return func(c *config) {
		c.dim = dim
	}
}

// WithIVF switches the index to approximate inverted-file search with
// the given number of k-means centroids, probing nprobe lists per
// query. Until enough vectors accumulate to train the centroids the
// index answers queries exactly.
func WithIVF(centroids, nprobe int) Option {
	return func(c *config) {
		c.ivf = true
		c.nlist = centroids
		c.nprobe = nprobe
	}
}

// WithSeed fixes the random seed used by IVF k-means training so runs
// are reproducible. Ignored by the flat index.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// New builds an index. The default is the exact flat index; pass
// WithIVF to opt in to approximate search.
func New(opts ...Option) Index {
	cfg := config{seed: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dim < 0 {
		cfg.dim = 0
	}
	if cfg.ivf {
		return newIVF(cfg)
	}
	return newFlat(cfg)
}
