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


package storage

import "errors"

var (
	// ErrNotFound is returned when no record exists for the given key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePath is returned when a second asset claims a path
	// already present in the catalog.
	ErrDuplicatePath = errors.New("duplicate asset path")

	// ErrSerializationFailed is returned when a stored record cannot
	// be decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData is returned when a stored record is empty or
	// cut short.
	ErrTruncatedData = errors.New("truncated data")
)
