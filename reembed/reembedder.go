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
	"fmt"
	"io"
	"time"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// Config tunes a reembedding run.
type Config struct {
	// BatchSize is how many assets each embedding request carries.
	BatchSize int

	// ReportInterval is the number of assets between progress lines.
	ReportInterval int

	// MaxRetries caps embedding attempts per failing batch.
	MaxRetries int

	// RetryDelay is the wait after the first failed attempt; each
	// further retry doubles it.
	RetryDelay time.Duration

	// All reembeds every asset in the catalog, not just the ones with
	// missing vectors. Use it after switching embedding models.
	All bool

	// JobName keys the resume checkpoint. Runs with the same name resume
	// each other; runs with different names track progress independently.
	JobName string
}

// DefaultConfig returns the tuning the reembed command ships with.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		JobName:        "reembed",
	}
}

// Reembedder walks the catalog in ID order and repairs embeddings, either
// filling in missing vectors or regenerating every vector when Config.All
// is set. Progress survives interruption through a stored checkpoint.
type Reembedder struct {
	repo        storage.AssetRepository
	checkpoints storage.CheckpointRepository
	embedder    ai.Embedder
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *AssetIterator
}

// NewReembedder assembles a catalog walker that embeds through
// embedder and checkpoints into checkpoints. A nil config takes
// DefaultConfig; a nil progress writer silences reporting.
func NewReembedder(repo storage.AssetRepository, checkpoints storage.CheckpointRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.JobName == "" {
		config.JobName = "reembed"
	}
	if progress == nil {
		progress = io.Discard
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewAssetIterator(repo, config.BatchSize)

	return &Reembedder{
		repo:        repo,
		checkpoints: checkpoints,
		embedder:    embedder,
		config:      config,
		progress:    progress,
		processor:   processor,
		iterator:    iterator,
	}
}

// Run executes the reembedding operation. Assets are processed in ID order
// in batches; after each committed batch the checkpoint advances, so an
// interrupted run picks up where it stopped instead of starting over.
// A run that finishes cleanly clears its checkpoint.
func (r *Reembedder) Run(ctx context.Context) error {
	after, err := r.loadResumePoint(ctx)
	if err != nil {
		return err
	}
	if after > 0 {
		fmt.Fprintf(r.progress, "Resuming after asset %d\n", after)
	}

	keep := func(asset *core.Asset) bool {
		return r.config.All || len(asset.Vector) == 0
	}

	total, err := r.countEligible(ctx, after, keep)
	if err != nil {
		return fmt.Errorf("failed to count assets: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No assets need reembedding\n")
		return r.clearCheckpoint(ctx)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d assets (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, after, keep, func(assets []*core.Asset) error {
		if err := r.processor.Process(ctx, assets); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		// The checkpoint only advances past a fully stored batch, so a
		// crash mid-batch redoes that batch and nothing before it.
		if err := r.saveResumePoint(ctx, assets[len(assets)-1].Id); err != nil {
			return err
		}

		processed += len(assets)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	if err := r.clearCheckpoint(ctx); err != nil {
		return err
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d assets in %v (%.1f assets/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}

// loadResumePoint returns the asset ID the previous run committed through,
// or zero when there is nothing to resume.
func (r *Reembedder) loadResumePoint(ctx context.Context) (core.ID, error) {
	if r.checkpoints == nil {
		return 0, nil
	}
	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, r.config.JobName)
	if err != nil {
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint == nil {
		return 0, nil
	}
	return checkpoint.LastID, nil
}

func (r *Reembedder) saveResumePoint(ctx context.Context, lastID core.ID) error {
	if r.checkpoints == nil {
		return nil
	}
	err := r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: r.config.JobName,
		LastID:        lastID,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

func (r *Reembedder) clearCheckpoint(ctx context.Context) error {
	if r.checkpoints == nil {
		return nil
	}
	if err := r.checkpoints.DeleteCheckpoint(ctx, r.config.JobName); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}

// countEligible walks the catalog once to size the job for progress
// reporting before any embedding work starts.
func (r *Reembedder) countEligible(ctx context.Context, after core.ID, keep func(*core.Asset) bool) (int, error) {
	total := 0
	err := r.iterator.ForEach(ctx, after, keep, func(assets []*core.Asset) error {
		total += len(assets)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
