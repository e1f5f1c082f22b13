package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/core"
)

// Embedder produces embedding vectors from an OpenAI-compatible API.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// newEmbedder returns the concrete type for use inside the package.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder connects to the configured embedding endpoint and hands
// back the ai.Embedder interface.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a single text. The returned vector is
// unit-normalized.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("embedding text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("embedding request failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrEmbeddingFailed, err)
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedding service returned no vector")
		return nil, ai.ErrEmptyEmbedding
	}

	return e.normalize(vectors[0])
}

// EmbedTexts embeds a batch of texts. Each returned vector is
// unit-normalized and positions match the input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding text batch", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("batch embedding request failed", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(texts) {
		e.logger.Warn("embedding service returned wrong vector count",
			"want", len(texts), "got", len(vectors))
		return nil, ai.ErrEmptyEmbedding
	}

	for i, vec := range vectors {
		normalized, err := e.normalize(vec)
		if err != nil {
			return nil, err
		}
		vectors[i] = normalized
	}
	return vectors, nil
}

// normalize brings a service vector to unit length so similarity math
// downstream can rely on plain dot products.
func (e *Embedder) normalize(vector []float32) ([]float32, error) {
	normalized, err := core.NormalizeVector(vector)
	if err != nil {
		e.logger.Error("embedding service returned an unusable vector", "err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrEmbeddingFailed, err)
	}
	return normalized, nil
}
