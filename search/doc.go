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


// Package search provides hybrid lexical and semantic retrieval over the
// asset catalog.
//
// The Searcher type runs a parsed query through two concurrent branches:
//   - Lexical: Evaluate walks every catalog asset against the query AST
//   - Semantic: the query's free text is embedded and ranked by the
//     vector index
//
// The branch rankings are combined with Reciprocal Rank Fusion (Fuse),
// which rewards assets that rank well in either source and assets found
// by both. A branch that fails or times out degrades to an empty list
// and flags the result as degraded; it never fails the whole query.
package search
