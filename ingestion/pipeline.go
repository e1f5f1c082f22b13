package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// Pipeline registers assets in the catalog and enriches them with
// embeddings on a worker pool. Persistence is synchronous; embedding
// is not.
type Pipeline struct {
	assets    storage.AssetRepository
	embedPool *ants.Pool
	embedProc processor
	logger    *slog.Logger
}

// Option adjusts a Pipeline at construction time.
type Option func(*Pipeline) error

// WithPoolSize resizes the embedding worker pool. Sizes below one are
// rounded up; the default is half the CPU count.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if p.embedPool != nil {
			p.embedPool.Release()
		}

		pool, err := ants.NewPool(max(size, 1))
		if err != nil {
			return err
		}
		p.embedPool = pool
		return nil
	}
}

// WithLogger replaces slog.Default() for pipeline and processor
// logging. A nil logger restores the default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline wires a pipeline to the asset repository and embedding
// provider.
func NewPipeline(
	assets storage.AssetRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if assets == nil {
		return nil, ErrAssetRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	embedPool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		assets:    assets,
		embedPool: embedPool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied so it sees the
	// final logger.
	embedProc, err := newEmbeddingProcessor(assets, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embedProc = embedProc

	return p, nil
}

// Ingest validates and persists assets, then schedules embedding for
// the ones that arrived without a vector. It returns once the assets
// are durable, with their assigned IDs; embedding failures are logged
// and left for a later reembed run to repair.
func (p *Pipeline) Ingest(ctx context.Context, assets ...*core.Asset) ([]*core.Asset, error) {
	if len(assets) == 0 {
		return nil, nil
	}

	for _, asset := range assets {
		asset.Format = core.NormalizeFormat(asset.Format)
		if err := core.ValidateAsset(asset); err != nil {
			return nil, err
		}
	}

	added, err := p.assets.AddAssets(ctx, assets...)
	if err != nil {
		return nil, err
	}

	var pending []core.ID
	for _, asset := range added {
		if len(asset.Vector) == 0 {
			pending = append(pending, asset.Id)
		}
	}
	if len(pending) == 0 {
		return added, nil
	}

	err = p.embedPool.Submit(func() {
		if procErr := p.embedProc.process(context.Background(), pending...); procErr != nil {
			p.logger.Error("embedding enrichment failed", "err", procErr)
		}
	})
	if err != nil {
		p.logger.Error("error scheduling embedding work", "assets", len(pending), "err", err)
	}

	return added, nil
}

// Release shuts down the worker pool. The pipeline cannot be used
// afterwards.
func (p *Pipeline) Release() {
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
