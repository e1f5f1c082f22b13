// Copyright 2025 Soundscout Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai abstracts the embedding service behind two interfaces so
// search and ingestion never see a concrete client:
//
//   - Embedder: turns text into vectors
//   - Provider: owns the embedder lifecycle
//
// EmbedAsset is the asset-side contract: it builds the text form of a
// catalog asset (filename, tags, description) and embeds it, so every
// caller embeds assets the same way.
//
// Two subpackages implement the interfaces. ai/openai speaks to any
// OpenAI-compatible endpoint, local or hosted:
//
//	cfg := ai.DefaultConfig()
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "dark ambient drone pad")
//
// ai/mock embeds deterministically with no network for tests. Its
// constructors return concrete types where tests need to reach the
// call counters and injection hooks (EmbedTextFunc, CallCount, Reset):
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//		return nil, errors.New("service down")
//	}
//	provider := mock.NewMockProviderWithEmbedder(embedder)
package ai
