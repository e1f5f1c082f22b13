package storage

import "github.com/soundscout/soundscout/core"

// EventType identifies the kind of catalog change an AssetEvent reports.
type EventType int

const (
	// EventAdded signals a newly added asset.
	EventAdded EventType = iota
	// EventUpdated signals a change to an existing asset, including
	// vector updates.
	EventUpdated
	// EventRemoved signals a deleted asset.
	EventRemoved
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// AssetEvent describes a committed change to the asset catalog.
// Consumers that need the asset contents look it up by ID, so a
// stale event for a since-deleted asset resolves to ErrNotFound
// rather than carrying stale fields.
type AssetEvent struct {
	Type EventType
	Id   core.ID
}
