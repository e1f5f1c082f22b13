package badger

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/storage"
)

// SavedSearchRepository implements storage.SavedSearchRepository for BadgerDB.
type SavedSearchRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SavedSearchRepository = (*SavedSearchRepository)(nil)

// NewSavedSearchRepository creates a new SavedSearchRepository.
func NewSavedSearchRepository(backend *Backend) (*SavedSearchRepository, error) {
	idSeq, err := backend.GetSequence(savedSearchIDSeq)
	if err != nil {
		return nil, err
	}

	return &SavedSearchRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close hands unused sequence IDs back to the store.
func (r *SavedSearchRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction runs fn inside the backend's transaction scope.
func (r *SavedSearchRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveSearch stores a saved search, upserting by name. Saving over an
// existing name replaces the query while keeping the original ID,
// CreatedAt, LastUsed and UseCount.
func (r *SavedSearchRepository) SaveSearch(ctx context.Context, search *core.SavedSearch) (*core.SavedSearch, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		old, err := r.findByName(tx, search.Name)
		if err != nil {
			return err
		}

		if old != nil {
			search.Id = old.Id
			search.CreatedAt = old.CreatedAt
			search.LastUsed = old.LastUsed
			search.UseCount = old.UseCount
		} else {
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
			search.Id = core.ID(nextID)
			search.CreatedAt = time.Now().UTC()
		}

		key := makeSavedSearchKey(search.Id)
		value := storage.MarshalSavedSearch(search)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Store name index
		nameKey := makeSavedSearchNameKey(search.Name)
		if err := tx.Set(nameKey, storage.MarshalID(search.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return search, err
}

// GetSavedSearch retrieves a single saved search by ID.
func (r *SavedSearchRepository) GetSavedSearch(ctx context.Context, id core.ID) (*core.SavedSearch, error) {
	var result *core.SavedSearch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSavedSearchKey(id)
		var err error
		result, err = readSavedSearch(tx, key)
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

// GetSavedSearchByName finds a saved search by its unique name.
func (r *SavedSearchRepository) GetSavedSearchByName(ctx context.Context, name string) (*core.SavedSearch, error) {
	var result *core.SavedSearch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.findByName(tx, name)
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

// ListSavedSearches retrieves all saved searches, ordered by name.
func (r *SavedSearchRepository) ListSavedSearches(ctx context.Context) ([]*core.SavedSearch, error) {
	var results []*core.SavedSearch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(savedSearchPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var search *core.SavedSearch
			err := item.Value(func(val []byte) error {
				var err error
				search, err = storage.UnmarshalSavedSearch(val)
				return err
			})
			if err != nil {
				return err
			}

			if search != nil {
				results = append(results, search)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.SavedSearch) int {
		return strings.Compare(a.Name, b.Name)
	})
	return results, nil
}

// DeleteSavedSearch removes a saved search by ID.
func (r *SavedSearchRepository) DeleteSavedSearch(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSavedSearchKey(id)

		// Read record to get the name for index cleanup
		search, err := readSavedSearch(tx, key)
		if err != nil {
			return err
		}
		if search == nil {
			return storage.ErrNotFound
		}

		// Name index first, then the record it pointed at.
		if err := tx.Delete(makeSavedSearchNameKey(search.Name)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// TouchSavedSearch records a use of a saved search, bumping its
// UseCount and LastUsed timestamp.
func (r *SavedSearchRepository) TouchSavedSearch(ctx context.Context, id core.ID) (*core.SavedSearch, error) {
	var result *core.SavedSearch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSavedSearchKey(id)
		search, err := readSavedSearch(tx, key)
		if err != nil {
			return err
		}
		if search == nil {
			return storage.ErrNotFound
		}

		search.UseCount++
		search.LastUsed = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalSavedSearch(search)); err != nil {
			return err
		}
		result = search
		return tx.Commit()
	}, true)
	return result, err
}

// findByName resolves a name through the index to the full record.
// Returns nil, nil when the name is unknown.
func (r *SavedSearchRepository) findByName(tx *badger.Txn, name string) (*core.SavedSearch, error) {
	item, err := tx.Get(makeSavedSearchNameKey(name))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var searchID core.ID
	err = item.Value(func(val []byte) error {
		searchID, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return readSavedSearch(tx, makeSavedSearchKey(searchID))
}

// readSavedSearch reads a saved search from the transaction.
func readSavedSearch(tx *badger.Txn, key []byte) (*core.SavedSearch, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var search *core.SavedSearch
	err = item.Value(func(val []byte) error {
		var err error
		search, err = storage.UnmarshalSavedSearch(val)
		return err
	})
	return search, err
}
