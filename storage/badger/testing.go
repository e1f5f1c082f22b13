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


package badger

import "github.com/soundscout/soundscout/storage"

// NewMemoryRepositories opens a throwaway in-memory catalog and hands
// back asset and saved search repositories for tests. Close the
// repositories before the backend.
func NewMemoryRepositories() (storage.AssetRepository, storage.SavedSearchRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	assetRepo, err := NewAssetRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	searchRepo, err := NewSavedSearchRepository(backend)
	if err != nil {
		assetRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return assetRepo, searchRepo, backend, nil
}
