package storage

import (
	"context"

	"github.com/soundscout/soundscout/core"
)

// Repository is the surface every concrete repository shares.
// Implementations must be safe for concurrent use.
type Repository interface {
	// WithTransaction runs fn atomically: a nil return commits, any
	// error rolls the transaction back and is returned to the caller.
	// Implementations may thread transaction state through ctx.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases repository resources. The backing store is owned
	// elsewhere and closed separately.
	Close() error
}

// AssetRepository provides operations for managing catalog assets.
type AssetRepository interface {
	Repository
	// AddAssets adds one or more assets to the catalog.
	// Generates new IDs from sequence and sets InsertedAt/UpdatedAt.
	// Returns ErrDuplicatePath if an asset already exists at the same path.
	// Returns the assets with generated IDs and timestamps populated.
	AddAssets(ctx context.Context, assets ...*core.Asset) ([]*core.Asset, error)

	// UpdateAssets updates existing assets.
	// Updates the UpdatedAt timestamp automatically and keeps the path
	// and pending-vector indices in step with the new field values.
	// Returns ErrNotFound if any asset doesn't exist.
	UpdateAssets(ctx context.Context, assets ...*core.Asset) ([]*core.Asset, error)

	// DeleteAssets removes assets by their IDs, along with their path
	// and pending-vector index entries.
	// Returns ErrNotFound if any asset doesn't exist.
	DeleteAssets(ctx context.Context, ids ...core.ID) error

	// GetAsset retrieves a single asset by ID.
	// Returns ErrNotFound if the asset doesn't exist.
	GetAsset(ctx context.Context, id core.ID) (*core.Asset, error)

	// GetAssets retrieves multiple assets by their IDs.
	// Returns only the assets that exist (no error for missing assets).
	GetAssets(ctx context.Context, ids ...core.ID) ([]*core.Asset, error)

	// GetAssetByPath retrieves the asset stored at a filesystem path.
	// Returns ErrNotFound if no asset exists at the path.
	GetAssetByPath(ctx context.Context, path string) (*core.Asset, error)

	// IterateAssets walks the whole catalog in ascending ID order,
	// calling fn for each asset. Iteration stops at the first error
	// returned by fn, which is passed through to the caller.
	IterateAssets(ctx context.Context, fn func(*core.Asset) error) error

	// UpdateVector replaces the embedding vector of a single asset
	// without touching its other fields.
	// Returns ErrNotFound if the asset doesn't exist.
	UpdateVector(ctx context.Context, id core.ID, vector []float32) error

	// GetAssetsMissingVectors retrieves assets that have no embedding
	// vector yet, in ascending ID order. A limit <= 0 returns all.
	GetAssetsMissingVectors(ctx context.Context, limit int) ([]*core.Asset, error)

	// CountAssets returns the number of assets in the catalog.
	CountAssets(ctx context.Context) (int, error)

	// Subscribe registers a listener for catalog change events.
	// Events are published after the originating write has committed.
	// The channel is buffered to the given size; events are dropped
	// rather than blocking writers when the buffer is full. The
	// returned cancel function unregisters the listener and closes
	// the channel.
	Subscribe(buffer int) (<-chan AssetEvent, func())
}

// SavedSearchRepository provides operations for managing saved searches.
type SavedSearchRepository interface {
	Repository
	// SaveSearch stores a saved search, upserting by name.
	// A new search gets a sequence ID and CreatedAt timestamp; saving
	// over an existing name replaces the query while keeping the
	// original ID, CreatedAt, LastUsed and UseCount.
	SaveSearch(ctx context.Context, search *core.SavedSearch) (*core.SavedSearch, error)

	// GetSavedSearch retrieves a single saved search by ID.
	// Returns ErrNotFound if the search doesn't exist.
	GetSavedSearch(ctx context.Context, id core.ID) (*core.SavedSearch, error)

	// GetSavedSearchByName finds a saved search by its unique name.
	// Returns ErrNotFound if no matching search exists.
	GetSavedSearchByName(ctx context.Context, name string) (*core.SavedSearch, error)

	// ListSavedSearches retrieves all saved searches, ordered by name.
	ListSavedSearches(ctx context.Context) ([]*core.SavedSearch, error)

	// DeleteSavedSearch removes a saved search by ID.
	// Returns ErrNotFound if the search doesn't exist.
	DeleteSavedSearch(ctx context.Context, id core.ID) error

	// TouchSavedSearch records a use of a saved search, bumping its
	// UseCount and LastUsed timestamp. Returns the updated search.
	// Returns ErrNotFound if the search doesn't exist.
	TouchSavedSearch(ctx context.Context, id core.ID) (*core.SavedSearch, error)
}

// CheckpointRepository provides persistence for processor checkpoints,
// letting long-running batch jobs resume where they left off.
type CheckpointRepository interface {
	// SaveCheckpoint stores a resume point under its processor type,
	// replacing any earlier one.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint fetches the resume point stored under
	// processorType, or nil, nil when none has been saved.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// DeleteCheckpoint discards the resume point stored under
	// processorType. Deleting one that doesn't exist is not an error.
	DeleteCheckpoint(ctx context.Context, processorType string) error
}
