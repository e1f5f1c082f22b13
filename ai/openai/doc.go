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


// Package openai implements ai.Provider against any OpenAI-compatible
// embedding endpoint.
//
// The langchaingo client does the wire work, which keeps the package
// compatible with OpenAI itself as well as local servers like Ollama,
// LocalAI, and vLLM. Vectors coming back from the service are
// unit-normalized before they are handed up, so downstream similarity
// math can use plain dot products.
//
// ai.DefaultConfig covers a stock local Ollama; anything else is a
// couple of options away:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"), // /v1 appended automatically
//	    ai.WithModel("embeddinggemma"),
//	)
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "distant thunder rumble")
package openai
