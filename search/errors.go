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


package search

import "errors"

var (
	// ErrAssetRepositoryRequired is returned when an asset repository is not provided.
	ErrAssetRepositoryRequired = errors.New("asset repository required")

	// ErrIndexRequired is returned when a semantic index is not provided.
	ErrIndexRequired = errors.New("semantic index required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrUnboundedQuery is returned for queries whose every term is
	// negated. Such a query would match almost the whole catalog, so it
	// is rejected before evaluation.
	ErrUnboundedQuery = errors.New("query needs at least one positive term")

	// ErrUnknownMode is returned by ParseMode for an unrecognized mode name.
	ErrUnknownMode = errors.New("unknown search mode")

	// ErrInvalidTuning is returned for tuning files with out-of-range values.
	ErrInvalidTuning = errors.New("invalid search tuning")
)
