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


package ai

import "errors"

var (
	// ErrEmbeddingFailed wraps provider and transport failures from the
	// embedding service. Callers match it with errors.Is to distinguish
	// provider outages from their own errors.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmptyEmbedding is returned when the service answers without a
	// vector for a requested text.
	ErrEmptyEmbedding = errors.New("provider returned no embedding")
)
