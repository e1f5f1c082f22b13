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


package reembed

import (
	"context"

	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// DefaultBatchSize applies when a caller passes no usable batch size.
const DefaultBatchSize = 100

// AssetIterator walks the catalog in ascending ID order and hands out
// batches, which is the order checkpoints are written in.
type AssetIterator struct {
	repo      storage.AssetRepository
	batchSize int
}

// NewAssetIterator batches assets from repo. Sizes at or below zero
// fall back to DefaultBatchSize.
func NewAssetIterator(repo storage.AssetRepository, batchSize int) *AssetIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &AssetIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn with batches of eligible assets. Assets with IDs at
// or below after are skipped, so a resumed run continues where its
// checkpoint left off; keep filters eligibility (nil keeps every
// asset). Iteration stops on the first error from fn. Context
// cancellation is checked between batches.
func (it *AssetIterator) ForEach(ctx context.Context, after core.ID, keep func(*core.Asset) bool, fn func([]*core.Asset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]*core.Asset, 0, it.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		full := batch
		batch = make([]*core.Asset, 0, it.batchSize)
		if err := fn(full); err != nil {
			return err
		}
		return ctx.Err()
	}

	err := it.repo.IterateAssets(ctx, func(asset *core.Asset) error {
		if asset.Id <= after {
			return nil
		}
		if keep != nil && !keep(asset) {
			return nil
		}
		batch = append(batch, asset)
		if len(batch) == it.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	return flush()
}
