package ai

import (
	"context"

	"github.com/soundscout/soundscout/core"
)

// Embedder turns text into vectors for semantic search.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText embeds one text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch in one request. Vector i corresponds
	// to texts[i].
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider owns the embedding service lifecycle so all callers share
// one configured client.
type Provider interface {
	// Embedder returns the shared embedding service.
	Embedder() Embedder

	// Close releases the provider and its services.
	Close() error
}

// EmbedAsset embeds a catalog asset. The filename, tags, and
// description are joined into one text form so any of them can anchor
// a semantic match.
func EmbedAsset(ctx context.Context, embedder Embedder, asset *core.Asset) ([]float32, error) {
	return embedder.EmbedText(ctx, asset.EmbeddingText())
}
