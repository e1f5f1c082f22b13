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


package core

import "errors"

// Validation sentinels. Field-level errors are wrapped in the matching
// record-level sentinel, so errors.Is matches on either.
var (
	// ErrInvalidAsset indicates an Asset failed validation.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrInvalidSavedSearch indicates a SavedSearch failed validation.
	ErrInvalidSavedSearch = errors.New("invalid saved search")

	// ErrInvalidTimestamp indicates a timestamp from the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("asset path cannot be empty")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("asset filename cannot be empty")

	// ErrInvalidDuration indicates a duration that is negative or not finite.
	ErrInvalidDuration = errors.New("duration must be a finite non-negative number")

	// ErrEmptySearchName indicates the saved search Name field is empty.
	ErrEmptySearchName = errors.New("saved search name cannot be empty")

	// ErrEmptySearchQuery indicates the saved search Query field is empty.
	ErrEmptySearchQuery = errors.New("saved search query cannot be empty")

	// ErrInvalidVector indicates a vector that cannot be normalized:
	// empty, all zeros, or containing NaN/Inf components.
	ErrInvalidVector = errors.New("invalid vector")
)
