package mock

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/soundscout/soundscout/core"
)

// mockDim is the dimension of vectors produced by the default generator.
const mockDim = 384

// MockEmbedder stands in for ai.Embedder in tests and benchmarks.
// Leave the function fields nil for deterministic vectors, or set them
// before handing the embedder out to inject failures or fixed results.
// Embedding calls arrive from worker goroutines, so the call counter
// is locked.
type MockEmbedder struct {
	// EmbedTextFunc, when set, handles EmbedText calls.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc, when set, handles EmbedTexts calls.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu        sync.Mutex
	callCount int
}

// NewMockEmbedder returns an embedder that produces deterministic
// vectors until a function field overrides it.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding from the text's tokens.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.count()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return DeterministicVector(text), nil
}

// EmbedTexts embeds each text independently; positions match the
// input order.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.count()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = DeterministicVector(text)
	}
	return vectors, nil
}

func (m *MockEmbedder) count() {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
}

// CallCount reports how many embedding calls this mock has served.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	m.callCount = 0
	m.mu.Unlock()
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// DeterministicVector creates a stable unit embedding for a text by
// mean-pooling per-token hash vectors. Texts sharing tokens get similar
// vectors, so lexical and semantic agreement in tests and benchmarks
// behaves like it does with a real model.
func DeterministicVector(text string) []float32 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		tokens = []string{text}
	}

	sum := make([]float32, mockDim)
	for _, token := range tokens {
		tokenVec := tokenVector(token, mockDim)
		for i, v := range tokenVec {
			sum[i] += v
		}
	}

	normalized, err := core.NormalizeVector(sum)
	if err != nil {
		return sum
	}
	return normalized
}

// tokenVector derives a pseudo-random vector from a token hash. The same
// token always produces the same vector.
func tokenVector(token string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(token))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // Numerical Recipes LCG
		// Center on zero so unrelated tokens stay near-orthogonal
		vector[i] = float32(seed%2000)/1000.0 - 1.0
	}
	return vector
}
