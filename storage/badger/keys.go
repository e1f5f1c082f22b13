package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/soundscout/soundscout/core"
)

// Keyspace prefixes. Records, lookup indexes, and ID sequences each
// get their own.
const (
	assetRecordPrefix     = "astrec"
	assetPathPrefix       = "astpth"
	assetPendingPrefix    = "astpnd"
	assetIDSeq            = "astrecseq"
	savedSearchPrefix     = "savrec"
	savedSearchNamePrefix = "savnam"
	savedSearchIDSeq      = "savrecseq"
)

// makeAssetKey generates a key for an asset record by ID.
// The ID is written in BigEndian order so lexicographic iteration
// over the prefix walks assets in ascending ID order.
func makeAssetKey(id core.ID) []byte {
	prefix := assetRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeAssetPathKey generates a key for the path index.
// Format: prefix:path
func makeAssetPathKey(path string) []byte {
	return []byte(assetPathPrefix + ":" + path)
}

// makeAssetPendingKey generates a key for the pending-vector index,
// which tracks assets that have not been embedded yet.
// Written in BigEndian order so iteration follows ascending ID order.
func makeAssetPendingKey(id core.ID) []byte {
	prefix := assetPendingPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSavedSearchKey generates a key for a saved search by ID.
func makeSavedSearchKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", savedSearchPrefix, id))
}

// makeSavedSearchNameKey generates a key for saved search lookup by name.
// Format: prefix:name
func makeSavedSearchNameKey(name string) []byte {
	return []byte(savedSearchNamePrefix + ":" + name)
}

// makeCheckpointKey names the stored resume point of a batch processor.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", processorType))
}
