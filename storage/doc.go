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


// Package storage defines the persistence contracts for the asset
// catalog, keeping callers independent of the backing store.
//
// # Repositories
//
// Each record family gets its own repository interface:
//
//   - AssetRepository: catalog assets, their path and pending-vector
//     indices, and change event subscriptions
//   - SavedSearchRepository: named, reusable queries
//   - CheckpointRepository: resume points for batch processors
//
// Repository collects the lifecycle and transaction operations the
// record repositories share.
//
// The badger subpackage is the only implementation. Consumers should
// hold its repositories through these interfaces rather than the
// concrete types:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer backend.Close()
//
//	assets, err := badger.NewAssetRepository(backend)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer assets.Close()
//
// Tests use badger.NewMemoryRepositories for a throwaway in-memory
// catalog.
//
// # Serialization
//
// Records are stored in the MUS binary format via the generated
// serializers in the core package. The Marshal/Unmarshal helpers in
// this package wrap them and classify decode failures as
// ErrTruncatedData or ErrSerializationFailed.
//
// # Concurrency and contexts
//
// Implementations must tolerate concurrent use from multiple
// goroutines. Every repository method takes a context.Context for
// cancellation.
package storage
