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


package soundscout

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/ai/openai"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/index"
	"github.com/soundscout/soundscout/ingestion"
	"github.com/soundscout/soundscout/reembed"
	"github.com/soundscout/soundscout/search"
	"github.com/soundscout/soundscout/storage"
	"github.com/soundscout/soundscout/storage/badger"
)

// eventBuffer sizes the catalog event subscription. Writers drop events
// past this, which the pending-vector markers absorb: a dropped update
// leaves the catalog correct and only the index briefly behind.
const eventBuffer = 256

// Engine wires the catalog storage, the semantic index, and the AI
// provider into one handle. The index mirrors the catalog: it is warmed
// from stored vectors at open and kept in step with catalog changes for
// the life of the engine.
type Engine struct {
	backend     *badger.Backend
	assetRepo   storage.AssetRepository
	searchRepo  storage.SavedSearchRepository
	checkpoints storage.CheckpointRepository
	provider    ai.Provider
	idx         index.Index
	logger      *slog.Logger

	unsubscribe func()
	loopDone    chan struct{}
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	inMemory bool
	logger   *slog.Logger
	provider ai.Provider
	aiConfig *ai.Config
	indexOpt []index.Option
}

// WithInMemory keeps the whole catalog in memory, discarded on Close.
// The path argument to New is ignored.
func WithInMemory() Option {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger used by the engine and as the default for
// components it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProvider injects an AI provider, replacing the default
// OpenAI-compatible client. The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithAIConfig configures the default OpenAI-compatible provider.
// Ignored when WithProvider injects one.
func WithAIConfig(config *ai.Config) Option {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithIVF switches the semantic index to approximate inverted-file
// search. Worth it from tens of thousands of assets up; below that the
// exact default is both faster and simpler.
func WithIVF(centroids, nprobe int) Option {
	return func(o *engineOptions) {
		o.indexOpt = append(o.indexOpt, index.WithIVF(centroids, nprobe))
	}
}

// New opens the catalog at path and returns a ready engine: storage
// open, stored vectors loaded into the semantic index, and the index
// subscribed to catalog changes.
func New(path string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		logger:   slog.Default(),
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(path, options.inMemory)
	if err != nil {
		return nil, err
	}

	assetRepo, err := badger.NewAssetRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	searchRepo, err := badger.NewSavedSearchRepository(backend)
	if err != nil {
		assetRepo.Close()
		backend.Close()
		return nil, err
	}

	checkpoints := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			searchRepo.Close()
			assetRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	e := &Engine{
		backend:     backend,
		assetRepo:   assetRepo,
		searchRepo:  searchRepo,
		checkpoints: checkpoints,
		provider:    provider,
		idx:         index.New(options.indexOpt...),
		logger:      options.logger,
		loopDone:    make(chan struct{}),
	}

	// Subscribe before warming so changes committed mid-warm are
	// replayed afterwards. Re-upserting a warmed vector is harmless.
	events, unsubscribe := assetRepo.Subscribe(eventBuffer)
	e.unsubscribe = unsubscribe

	if err := e.warmIndex(context.Background()); err != nil {
		// The follow goroutine never started, so tear down directly.
		unsubscribe()
		e.unsubscribe = nil
		e.Close()
		return nil, err
	}

	go e.followCatalog(events)

	return e, nil
}

// warmIndex loads every stored embedding into the semantic index.
// Vectors the index rejects are logged and skipped so one bad record
// cannot keep the catalog from opening.
func (e *Engine) warmIndex(ctx context.Context) error {
	loaded := 0
	err := e.assetRepo.IterateAssets(ctx, func(asset *core.Asset) error {
		if len(asset.Vector) == 0 {
			return nil
		}
		if err := e.idx.Upsert(asset.Id, asset.Vector); err != nil {
			e.logger.Warn("skipping unusable stored vector", "asset", asset.Id, "err", err)
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Debug("semantic index warmed", "vectors", loaded)
	return nil
}

// followCatalog mirrors catalog changes into the semantic index until
// the subscription is cancelled.
func (e *Engine) followCatalog(events <-chan storage.AssetEvent) {
	defer close(e.loopDone)

	ctx := context.Background()
	for event := range events {
		switch event.Type {
		case storage.EventRemoved:
			e.idx.Delete(event.Id)

		case storage.EventAdded, storage.EventUpdated:
			asset, err := e.assetRepo.GetAsset(ctx, event.Id)
			if errors.Is(err, storage.ErrNotFound) {
				// Deleted between the event and the lookup
				e.idx.Delete(event.Id)
				continue
			}
			if err != nil {
				e.logger.Warn("error reading changed asset", "asset", event.Id, "err", err)
				continue
			}
			if len(asset.Vector) == 0 {
				// Not embedded yet; the pending marker queues it for
				// the pipeline or a reembed run.
				e.idx.Delete(event.Id)
				continue
			}
			if err := e.idx.Upsert(asset.Id, asset.Vector); err != nil {
				e.logger.Warn("error indexing changed asset", "asset", event.Id, "err", err)
			}
		}
	}
}

// Close stops the index subscription and releases the provider and
// storage. The engine and anything built from it must not be used
// afterwards.
func (e *Engine) Close() error {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
		<-e.loopDone
	}

	// Provider first, repositories next, backend last.
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.searchRepo.Close(); err != nil {
		e.logger.Error("error closing saved search repository", "err", err)
		return err
	}
	if err := e.assetRepo.Close(); err != nil {
		e.logger.Error("error closing asset repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Assets exposes the asset catalog.
func (e *Engine) Assets() storage.AssetRepository {
	return e.assetRepo
}

// SavedSearches exposes stored queries.
func (e *Engine) SavedSearches() storage.SavedSearchRepository {
	return e.searchRepo
}

// Checkpoints exposes batch job resume state.
func (e *Engine) Checkpoints() storage.CheckpointRepository {
	return e.checkpoints
}

// Index exposes the live semantic index.
func (e *Engine) Index() index.Index {
	return e.idx
}

// NewSearcher builds a searcher over this engine's catalog and index.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	merged := append([]search.Option{search.WithLogger(e.logger)}, opts...)
	return search.NewSearcher(e.assetRepo, e.idx, e.provider, merged...)
}

// NewIngestionPipeline builds a pipeline that adds assets to this
// engine's catalog.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	merged := append([]ingestion.Option{ingestion.WithLogger(e.logger)}, opts...)
	return ingestion.NewPipeline(e.assetRepo, e.provider, merged...)
}

// NewReembedder builds a reembedder over this engine's catalog using
// its provider's embedder.
func (e *Engine) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(e.assetRepo, e.checkpoints, e.provider.Embedder(), config, progress)
}
