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

import (
	"fmt"
	"math"
	"time"
)

// ValidateAsset enforces the domain rules for a catalog asset: a
// non-empty Path and Filename, a finite non-negative Duration, and an
// InsertedAt no later than now. A zero InsertedAt passes; the
// repository stamps it on insert. Vector and Id stay unchecked because
// the embedding processor and database sequences fill them in later.
func ValidateAsset(asset *Asset) error {
	if asset == nil {
		return fmt.Errorf("%w: asset is nil", ErrInvalidAsset)
	}

	if asset.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrEmptyPath)
	}

	if asset.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrEmptyFilename)
	}

	if asset.Duration < 0 || math.IsNaN(asset.Duration) || math.IsInf(asset.Duration, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrInvalidDuration)
	}

	if !asset.InsertedAt.IsZero() && !IsValidTimestamp(asset.InsertedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSavedSearch requires a non-empty Name and Query. The query
// string is not parsed here; callers that need a well-formed query
// parse it before saving.
func ValidateSavedSearch(search *SavedSearch) error {
	if search == nil {
		return fmt.Errorf("%w: saved search is nil", ErrInvalidSavedSearch)
	}

	if search.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSavedSearch, ErrEmptySearchName)
	}

	if search.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSavedSearch, ErrEmptySearchQuery)
	}

	return nil
}

// IsValidTimestamp reports whether ts is no later than the current
// time.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
