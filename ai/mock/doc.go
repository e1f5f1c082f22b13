// Package mock provides deterministic stand-ins for the ai interfaces.
//
// The embedder needs no external service: by default it derives a
// stable unit vector from the text itself, mean-pooling per-token hash
// vectors, so identical texts embed identically and texts sharing
// tokens land near each other. Semantic ranking in tests and in the
// benchmark harness therefore correlates with lexical overlap roughly
// the way it does under a real model.
//
// Failures and fixed outputs are injected through function fields:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//	provider := mock.NewMockProviderWithEmbedder(embedder)
//
// CallCount reports how much traffic reached the embedder, which cache
// and retry tests lean on.
package mock
