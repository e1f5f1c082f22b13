package badger

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// AssetRepository implements storage.AssetRepository for BadgerDB.
type AssetRepository struct {
	backend *Backend
	idSeq   *badger.Sequence

	mu      sync.Mutex
	subs    map[int]chan storage.AssetEvent
	nextSub int
}

var _ storage.AssetRepository = (*AssetRepository)(nil)

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(backend *Backend) (*AssetRepository, error) {
	idSeq, err := backend.GetSequence(assetIDSeq)
	if err != nil {
		return nil, err
	}

	return &AssetRepository{
		backend: backend,
		idSeq:   idSeq,
		subs:    make(map[int]chan storage.AssetEvent),
	}, nil
}

// Close releases the ID sequence and closes all subscriber channels.
func (r *AssetRepository) Close() error {
	r.mu.Lock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()
	return r.idSeq.Release()
}

// WithTransaction runs fn inside the backend's transaction scope.
func (r *AssetRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Subscribe registers a listener for catalog change events.
// Events are published after the originating write has committed and
// are dropped rather than blocking writers when the buffer is full.
func (r *AssetRepository) Subscribe(buffer int) (<-chan storage.AssetEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan storage.AssetEvent, buffer)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish fans an event out to all subscribers after a commit.
func (r *AssetRepository) publish(events ...storage.AssetEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		for _, event := range events {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// AddAssets adds one or more assets to the catalog.
func (r *AssetRepository) AddAssets(ctx context.Context, assets ...*core.Asset) ([]*core.Asset, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, asset := range assets {
			// Reject a second asset at the same path. The check sees
			// writes from earlier in this batch, so intra-batch
			// duplicates are caught too.
			if _, err := tx.Get(makeAssetPathKey(asset.Path)); err == nil {
				return fmt.Errorf("%w: %s", storage.ErrDuplicatePath, asset.Path)
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// A fresh sequence hands out 0 first, which collides
			// with the unassigned ID, so draw again.
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			asset.Id = core.ID(nextID)

			asset.InsertedAt = time.Now().UTC()
			asset.UpdatedAt = asset.InsertedAt

			key := makeAssetKey(asset.Id)
			value := storage.MarshalAsset(asset)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update path index
			if err := tx.Set(makeAssetPathKey(asset.Path), storage.MarshalID(asset.Id)); err != nil {
				return err
			}

			// Track assets that still need an embedding
			if len(asset.Vector) == 0 {
				if err := tx.Set(makeAssetPendingKey(asset.Id), storage.MarshalID(asset.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err == nil {
		for _, asset := range assets {
			r.publish(storage.AssetEvent{Type: storage.EventAdded, Id: asset.Id})
		}
	}
	return assets, err
}

// UpdateAssets updates existing assets.
func (r *AssetRepository) UpdateAssets(ctx context.Context, assets ...*core.Asset) ([]*core.Asset, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, asset := range assets {
			key := makeAssetKey(asset.Id)

			// Read old asset to detect changes
			old, err := r.readAsset(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			asset.UpdatedAt = time.Now().UTC()

			value := storage.MarshalAsset(asset)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Move the path index if the file moved
			if old.Path != asset.Path {
				if _, err := tx.Get(makeAssetPathKey(asset.Path)); err == nil {
					return fmt.Errorf("%w: %s", storage.ErrDuplicatePath, asset.Path)
				} else if err != badger.ErrKeyNotFound {
					return err
				}
				if err := tx.Delete(makeAssetPathKey(old.Path)); err != nil {
					return err
				}
				if err := tx.Set(makeAssetPathKey(asset.Path), storage.MarshalID(asset.Id)); err != nil {
					return err
				}
			}

			// Keep the pending-vector index in step with vector presence
			hadVector := len(old.Vector) > 0
			hasVector := len(asset.Vector) > 0
			if hadVector != hasVector {
				if hasVector {
					if err := tx.Delete(makeAssetPendingKey(asset.Id)); err != nil {
						return err
					}
				} else {
					if err := tx.Set(makeAssetPendingKey(asset.Id), storage.MarshalID(asset.Id)); err != nil {
						return err
					}
				}
			}
		}
		return tx.Commit()
	}, true)

	if err == nil {
		for _, asset := range assets {
			r.publish(storage.AssetEvent{Type: storage.EventUpdated, Id: asset.Id})
		}
	}
	return assets, err
}

// DeleteAssets removes assets by their IDs.
func (r *AssetRepository) DeleteAssets(ctx context.Context, ids ...core.ID) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeAssetKey(id)

			// Read asset to get metadata for index cleanup
			asset, err := r.readAsset(tx, key)
			if err != nil {
				return err
			}
			if asset == nil {
				return storage.ErrNotFound
			}

			// Index entries first, then the record they point at.
			if err := tx.Delete(makeAssetPathKey(asset.Path)); err != nil {
				return err
			}
			if len(asset.Vector) == 0 {
				if err := tx.Delete(makeAssetPendingKey(id)); err != nil {
					return err
				}
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err == nil {
		for _, id := range ids {
			r.publish(storage.AssetEvent{Type: storage.EventRemoved, Id: id})
		}
	}
	return err
}

// GetAsset retrieves a single asset by ID.
func (r *AssetRepository) GetAsset(ctx context.Context, id core.ID) (*core.Asset, error) {
	var result *core.Asset
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAssetKey(id)
		var err error
		result, err = r.readAsset(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetAssets retrieves multiple assets by their IDs.
func (r *AssetRepository) GetAssets(ctx context.Context, ids ...core.ID) ([]*core.Asset, error) {
	var result []*core.Asset
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeAssetKey(id)
			asset, err := r.readAsset(tx, key)
			if err != nil {
				return err
			}
			if asset != nil {
				result = append(result, asset)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAssetByPath retrieves the asset stored at a filesystem path.
func (r *AssetRepository) GetAssetByPath(ctx context.Context, path string) (*core.Asset, error) {
	var result *core.Asset
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from path index
		item, err := tx.Get(makeAssetPathKey(path))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var assetID core.ID
		err = item.Value(func(val []byte) error {
			assetID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full asset
		result, err = r.readAsset(tx, makeAssetKey(assetID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// IterateAssets walks the whole catalog in ascending ID order.
// Iteration stops at the first error returned by fn.
func (r *AssetRepository) IterateAssets(ctx context.Context, fn func(*core.Asset) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(assetRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var asset *core.Asset
			err := item.Value(func(val []byte) error {
				var err error
				asset, err = storage.UnmarshalAsset(val)
				return err
			})
			if err != nil {
				return err
			}
			if asset == nil {
				continue
			}

			if err := fn(asset); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// UpdateVector replaces the embedding vector of a single asset.
func (r *AssetRepository) UpdateVector(ctx context.Context, id core.ID, vector []float32) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAssetKey(id)
		asset, err := r.readAsset(tx, key)
		if err != nil {
			return err
		}
		if asset == nil {
			return storage.ErrNotFound
		}

		hadVector := len(asset.Vector) > 0
		asset.Vector = vector
		asset.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalAsset(asset)); err != nil {
			return err
		}

		hasVector := len(vector) > 0
		if hadVector != hasVector {
			if hasVector {
				if err := tx.Delete(makeAssetPendingKey(id)); err != nil {
					return err
				}
			} else {
				if err := tx.Set(makeAssetPendingKey(id), storage.MarshalID(id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err == nil {
		r.publish(storage.AssetEvent{Type: storage.EventUpdated, Id: id})
	}
	return err
}

// GetAssetsMissingVectors retrieves assets that have no embedding yet,
// in ascending ID order. A limit <= 0 returns all.
func (r *AssetRepository) GetAssetsMissingVectors(ctx context.Context, limit int) ([]*core.Asset, error) {
	var results []*core.Asset
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		prefix := []byte(assetPendingPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			// The index value is the asset ID; chase it to the record.
			var assetID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				assetID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			asset, err := r.readAsset(tx, makeAssetKey(assetID))
			if err != nil {
				return err
			}
			if asset != nil {
				results = append(results, asset)
			}
		}
		return nil
	}, false)

	return results, err
}

// CountAssets returns the number of assets in the catalog.
func (r *AssetRepository) CountAssets(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(assetRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// readAsset reads an asset from the transaction.
func (r *AssetRepository) readAsset(tx *badger.Txn, key []byte) (*core.Asset, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var asset *core.Asset
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		asset, unmarshalErr = storage.UnmarshalAsset(val)
		return unmarshalErr
	})
	return asset, err
}
