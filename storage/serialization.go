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

import (
	"fmt"

	"github.com/soundscout/soundscout/core"
)

// serializer is the slice of the generated MUS surface the helpers
// below need.
type serializer[T any] interface {
	Size(v T) int
	Marshal(v T, bs []byte) int
	Unmarshal(bs []byte) (T, int, error)
}

func encode[T any](ser serializer[T], v T) []byte {
	buf := make([]byte, ser.Size(v))
	ser.Marshal(v, buf)
	return buf
}

func decode[T any](ser serializer[T], data []byte) (T, error) {
	var zero T
	if len(data) == 0 {
		return zero, ErrTruncatedData
	}
	v, _, err := ser.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return v, nil
}

// MarshalID encodes an ID for use as a key or value.
func MarshalID(id core.ID) []byte {
	return encode(core.IDMUS, id)
}

// UnmarshalID decodes an ID produced by MarshalID.
func UnmarshalID(data []byte) (core.ID, error) {
	return decode(core.IDMUS, data)
}

// MarshalAsset encodes an Asset record.
func MarshalAsset(asset *core.Asset) []byte {
	return encode(core.AssetMUS, *asset)
}

// UnmarshalAsset decodes an Asset record.
func UnmarshalAsset(data []byte) (*core.Asset, error) {
	asset, err := decode(core.AssetMUS, data)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// MarshalSavedSearch encodes a SavedSearch record.
func MarshalSavedSearch(search *core.SavedSearch) []byte {
	return encode(core.SavedSearchMUS, *search)
}

// UnmarshalSavedSearch decodes a SavedSearch record.
func UnmarshalSavedSearch(data []byte) (*core.SavedSearch, error) {
	search, err := decode(core.SavedSearchMUS, data)
	if err != nil {
		return nil, err
	}
	return &search, nil
}

// MarshalCheckpoint encodes a Checkpoint record.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	return encode(core.CheckpointMUS, *checkpoint)
}

// UnmarshalCheckpoint decodes a Checkpoint record.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	cp, err := decode(core.CheckpointMUS, data)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}
