package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// embeddingProcessor generates embeddings for stored assets.
type embeddingProcessor struct {
	assets   storage.AssetRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor wires the enrichment step that embeds stored
// assets and writes their vectors back.
func newEmbeddingProcessor(assets storage.AssetRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if assets == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		assets:   assets,
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the specified assets and stores the vectors. Assets
// deleted between persistence and embedding are skipped.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing assets for embeddings", "assets", len(ids))

	slices.Sort(ids)

	assets, err := ep.assets.GetAssets(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving assets", "err", err)
		return err
	}
	if len(assets) == 0 {
		return nil
	}

	texts := make([]string, len(assets))
	for i, asset := range assets {
		texts[i] = asset.EmbeddingText()
	}

	ep.logger.Debug("generating embeddings for assets", "assets", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(assets) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(assets), len(embeddings))
	}

	for i, asset := range assets {
		if err := ep.assets.UpdateVector(ctx, asset.Id, embeddings[i]); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				ep.logger.Debug("asset deleted before embedding landed", "id", asset.Id)
				continue
			}
			return err
		}
	}

	return nil
}
