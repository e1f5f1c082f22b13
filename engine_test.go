package soundscout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundscout/soundscout/ai/mock"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/search"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	e, err := New("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func testAsset(path, filename string) *core.Asset {
	return &core.Asset{
		Path:        path,
		Filename:    filename,
		Format:      "wav",
		Duration:    3.5,
		SampleRate:  44100,
		Tags:        []string{"drum"},
		Description: "a test sound",
	}
}

func TestNew(t *testing.T) {
	t.Run("create catalog on disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "catalog")
		e, err := New(dir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, e)
		defer e.Close()

		assert.NotNil(t, e.Assets())
		assert.NotNil(t, e.SavedSearches())
		assert.NotNil(t, e.Checkpoints())
		assert.NotNil(t, e.Index())
	})

	t.Run("in memory", func(t *testing.T) {
		e, err := New("ignored", WithInMemory(), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.NoError(t, e.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the catalog directory should be
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		e, err := New(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, e)
	})
}

func TestEngine_Close(t *testing.T) {
	e, err := New("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, e.Close())
}

func TestEngine_FactoryMethods(t *testing.T) {
	e := newTestEngine(t)

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := e.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := e.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder := e.NewReembedder(nil, nil)
		require.NotNil(t, reembedder)
	})
}

func TestEngine_IndexFollowsCatalog(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// An asset arriving with a vector shows up in the index
	withVector := testAsset("/samples/kick.wav", "kick.wav")
	withVector.Vector = mock.DeterministicVector("kick drum")
	added, err := e.Assets().AddAssets(ctx, withVector)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e.Index().Len() == 1
	}, 2*time.Second, 10*time.Millisecond, "added vector should reach the index")

	// One without a vector stays out of the index
	pending, err := e.Assets().AddAssets(ctx, testAsset("/samples/snare.wav", "snare.wav"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, e.Index().Len(), "unembedded asset should not be indexed")

	// Filling in its vector brings it in
	err = e.Assets().UpdateVector(ctx, pending[0].Id, mock.DeterministicVector("snare hit"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return e.Index().Len() == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Deleting removes it again
	require.NoError(t, e.Assets().DeleteAssets(ctx, added[0].Id))
	require.Eventually(t, func() bool {
		return e.Index().Len() == 1
	}, 2*time.Second, 10*time.Millisecond, "removed asset should leave the index")
}

func TestEngine_WarmIndexLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog")
	ctx := context.Background()

	first, err := New(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	assets := []*core.Asset{
		testAsset("/samples/kick.wav", "kick.wav"),
		testAsset("/samples/snare.wav", "snare.wav"),
		testAsset("/samples/hat.wav", "hat.wav"),
	}
	for _, a := range assets {
		a.Vector = mock.DeterministicVector(a.Filename)
	}
	_, err = first.Assets().AddAssets(ctx, assets...)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// A fresh engine over the same path rebuilds the index from storage
	second, err := New(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 3, second.Index().Len(), "stored vectors should be loaded at open")
}

func TestEngine_SearchEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	pipeline, err := e.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	ingested, err := pipeline.Ingest(ctx,
		&core.Asset{
			Path:        "/samples/kick_808.wav",
			Filename:    "kick_808.wav",
			Format:      "wav",
			Duration:    1.5,
			Tags:        []string{"drum", "kick"},
			Description: "Booming 808 kick drum",
		},
		&core.Asset{
			Path:        "/samples/rain_roof.flac",
			Filename:    "rain_roof.flac",
			Format:      "flac",
			Duration:    120,
			Tags:        []string{"field-recording", "rain"},
			Description: "Steady rain on a tin roof",
		},
	)
	require.NoError(t, err)
	require.Len(t, ingested, 2)

	// Embedding runs async; the searcher needs the vectors indexed
	require.Eventually(t, func() bool {
		return e.Index().Len() == 2
	}, 2*time.Second, 10*time.Millisecond, "ingested assets should be embedded and indexed")

	searcher, err := e.NewSearcher()
	require.NoError(t, err)

	result, err := searcher.Search(ctx, "booming kick drum")
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, ingested[0].Id, result.Hits[0].AssetId)
	assert.False(t, result.Degraded)

	fieldResult, err := searcher.Search(ctx, "format:flac AND duration:>1min")
	require.NoError(t, err)
	require.Len(t, fieldResult.Hits, 1)
	assert.Equal(t, ingested[1].Id, fieldResult.Hits[0].AssetId)
}

func TestEngine_ReembedRepairsMissingVectors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Assets().AddAssets(ctx,
		testAsset("/samples/one.wav", "one.wav"),
		testAsset("/samples/two.wav", "two.wav"),
	)
	require.NoError(t, err)

	reembedder := e.NewReembedder(nil, nil)
	require.NoError(t, reembedder.Run(ctx))

	missing, err := e.Assets().GetAssetsMissingVectors(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.Eventually(t, func() bool {
		return e.Index().Len() == 2
	}, 2*time.Second, 10*time.Millisecond, "repaired vectors should reach the index")
}

func TestEngine_SavedSearches(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	saved, err := e.SavedSearches().SaveSearch(ctx, &core.SavedSearch{
		Name:  "drums",
		Query: "tags:drum AND duration:<10s",
	})
	require.NoError(t, err)
	require.NotZero(t, saved.Id)

	loaded, err := e.SavedSearches().GetSavedSearchByName(ctx, "drums")
	require.NoError(t, err)
	assert.Equal(t, "tags:drum AND duration:<10s", loaded.Query)
}

func TestEngine_SearcherOptionsPassThrough(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	asset := testAsset("/samples/kick.wav", "kick.wav")
	asset.Vector = mock.DeterministicVector("kick drum")
	_, err := e.Assets().AddAssets(ctx, asset)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e.Index().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	searcher, err := e.NewSearcher(search.WithTopK(1))
	require.NoError(t, err)

	result, err := searcher.Search(ctx, "duration:>0s")
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
}
