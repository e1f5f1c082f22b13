package reembed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// BatchProcessor embeds one batch of assets at a time and writes the
// vectors back to the catalog.
type BatchProcessor struct {
	repo       storage.AssetRepository
	embedder   ai.Embedder
	maxRetries int
	baseDelay  time.Duration
}

// NewBatchProcessor configures batch embedding with retry: up to
// maxRetries attempts per batch, backing off exponentially from
// baseDelay.
func NewBatchProcessor(repo storage.AssetRepository, embedder ai.Embedder, maxRetries int, baseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:       repo,
		embedder:   embedder,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Process embeds a batch of assets and stores the vectors. Vectors are
// unit-normalized before storage so they are ready for cosine ranking.
// Assets deleted while the batch was in flight are skipped.
func (bp *BatchProcessor) Process(ctx context.Context, assets []*core.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	texts := make([]string, len(assets))
	for i, asset := range assets {
		texts[i] = asset.EmbeddingText()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = bp.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, bp.maxRetries, bp.baseDelay)
	if err != nil {
		// A dead context aborts the retry loop early, so the attempt
		// count would be wrong there.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("embedding batch failed after %d attempts: %w", bp.maxRetries, err)
	}
	if len(embeddings) != len(assets) {
		return fmt.Errorf("embedding count mismatch: want %d, got %d", len(assets), len(embeddings))
	}

	for i, asset := range assets {
		vector, err := core.NormalizeVector(embeddings[i])
		if err != nil {
			return fmt.Errorf("unusable embedding for asset %d: %w", asset.Id, err)
		}
		if err := bp.repo.UpdateVector(ctx, asset.Id, vector); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to update asset %d: %w", asset.Id, err)
		}
	}

	return nil
}
