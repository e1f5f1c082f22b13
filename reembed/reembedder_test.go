package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundscout/soundscout/ai/mock"
)

func fastConfig(batchSize int) *Config {
	return &Config{
		BatchSize:      batchSize,
		ReportInterval: batchSize,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		JobName:        "reembed-test",
	}
}

func TestReembedder_Run(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	added := seedAssets(ctx, t, repo, 10, false)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	reembedder := NewReembedder(repo, checkpoints, embedder, fastConfig(3), &buf)

	err := reembedder.Run(ctx)
	require.NoError(t, err)

	// Verify all assets now carry unit-length embeddings
	for _, a := range added {
		updated, err := repo.GetAsset(ctx, a.Id)
		require.NoError(t, err)
		require.NotEmpty(t, updated.Vector, "asset %d should have embedding", a.Id)

		var magnitude float32
		for _, v := range updated.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}

	missing, err := repo.GetAssetsMissingVectors(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, missing)

	// A clean finish clears the resume checkpoint
	checkpoint, err := checkpoints.LoadCheckpoint(ctx, "reembed-test")
	require.NoError(t, err)
	assert.Nil(t, checkpoint, "completed run should delete its checkpoint")

	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 10 assets")
	assert.Contains(t, output, "10/10", "should show completion")
	assert.Contains(t, output, "Reembedding complete")
}

func TestReembedder_MissingOnly(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	embedded := seedAssets(ctx, t, repo, 3, true)
	missing := seedAssets(ctx, t, repo, 2, false)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		result := make([][]float32, len(texts))
		for i := range result {
			result[i] = []float32{0.0, 1.0, 0.0}
		}
		return result, nil
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, checkpoints, embedder, fastConfig(10), &buf)

	err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Starting reembedding of 2 assets")

	// Assets that already had vectors are untouched
	for _, a := range embedded {
		updated, err := repo.GetAsset(ctx, a.Id)
		require.NoError(t, err)
		assert.Equal(t, mock.DeterministicVector(a.Filename), updated.Vector,
			"existing embeddings should be preserved")
	}

	// The missing ones got the new embedder's output
	for _, a := range missing {
		updated, err := repo.GetAsset(ctx, a.Id)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.0, 1.0, 0.0}, updated.Vector)
	}
}

func TestReembedder_All(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	embedded := seedAssets(ctx, t, repo, 3, true)
	missing := seedAssets(ctx, t, repo, 2, false)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		result := make([][]float32, len(texts))
		for i := range result {
			result[i] = []float32{0.0, 1.0, 0.0}
		}
		return result, nil
	}

	config := fastConfig(10)
	config.All = true

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, checkpoints, embedder, config, &buf)

	err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Starting reembedding of 5 assets")

	// Every asset gets regenerated, including ones that had vectors
	for _, a := range append(embedded, missing...) {
		updated, err := repo.GetAsset(ctx, a.Id)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.0, 1.0, 0.0}, updated.Vector)
	}
}

func TestReembedder_EmptyCatalog(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	reembedder := NewReembedder(repo, checkpoints, embedder, nil, &buf)

	err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No assets need reembedding")
	assert.Equal(t, 0, embedder.CallCount())
}

func TestReembedder_NothingMissing(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedAssets(ctx, t, repo, 4, true)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	reembedder := NewReembedder(repo, checkpoints, embedder, fastConfig(10), &buf)

	err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No assets need reembedding")
	assert.Equal(t, 0, embedder.CallCount(), "fully embedded catalog should not call the embedder")
}

func TestReembedder_ResumesFromCheckpoint(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	added := seedAssets(ctx, t, repo, 6, false)

	// First run dies after committing one batch
	calls := 0
	failing := mock.NewMockEmbedder()
	failing.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("provider went away")
		}
		result := make([][]float32, len(texts))
		for i := range result {
			result[i] = []float32{1.0, 0.0, 0.0}
		}
		return result, nil
	}

	config := fastConfig(2)
	config.MaxRetries = 1

	var firstOut bytes.Buffer
	first := NewReembedder(repo, checkpoints, failing, config, &firstOut)
	err := first.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider went away")

	// The committed batch left a checkpoint behind
	checkpoint, err := checkpoints.LoadCheckpoint(ctx, "reembed-test")
	require.NoError(t, err)
	require.NotNil(t, checkpoint, "interrupted run should leave its checkpoint")
	assert.Equal(t, added[1].Id, checkpoint.LastID, "checkpoint should mark the last committed batch")

	firstBatch, err := repo.GetAsset(ctx, added[0].Id)
	require.NoError(t, err)
	assert.NotEmpty(t, firstBatch.Vector, "committed batch should be stored")

	// Second run resumes past the checkpoint and finishes the job
	var secondOut bytes.Buffer
	second := NewReembedder(repo, checkpoints, mock.NewMockEmbedder(), config, &secondOut)
	err = second.Run(ctx)
	require.NoError(t, err)

	output := secondOut.String()
	assert.Contains(t, output, fmt.Sprintf("Resuming after asset %d", added[1].Id))
	assert.Contains(t, output, "Starting reembedding of 4 assets")

	missing, err := repo.GetAssetsMissingVectors(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, missing, "resumed run should finish the remaining assets")

	checkpoint, err = checkpoints.LoadCheckpoint(ctx, "reembed-test")
	require.NoError(t, err)
	assert.Nil(t, checkpoint, "completed run should delete the checkpoint")
}

func TestReembedder_NilCheckpointRepository(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedAssets(ctx, t, repo, 3, false)

	// Runs without checkpointing still work, they just restart from scratch
	reembedder := NewReembedder(repo, nil, mock.NewMockEmbedder(), fastConfig(2), nil)
	err := reembedder.Run(ctx)
	require.NoError(t, err)

	missing, err := repo.GetAssetsMissingVectors(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestReembedder_ContextCancellation(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedAssets(context.Background(), t, repo, 10, false)

	// The second batch pulls the plug mid-run.
	callCount := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		callCount++
		if callCount == 2 {
			cancel()
		}
		result := make([][]float32, len(texts))
		for i := range result {
			result[i] = []float32{1.0, 0.0, 0.0}
		}
		return result, nil
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, checkpoints, embedder, fastConfig(3), &buf)

	err := reembedder.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReembedder_EmbeddingError(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedAssets(ctx, t, repo, 1, false)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("persistent error")
	}

	config := fastConfig(1)
	config.MaxRetries = 2

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, checkpoints, embedder, config, &buf)

	err := reembedder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent error")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Greater(t, config.BatchSize, 0, "batch size should be positive")
	assert.Greater(t, config.ReportInterval, 0, "report interval should be positive")
	assert.Greater(t, config.MaxRetries, 0, "max retries should be positive")
	assert.Greater(t, config.RetryDelay, time.Duration(0), "retry delay should be positive")
	assert.NotEmpty(t, config.JobName, "job name keys the checkpoint")
	assert.False(t, config.All, "default scope is missing vectors only")
}

func TestReembedder_ProgressTracking(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedAssets(ctx, t, repo, 25, false)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	config := fastConfig(5)
	config.ReportInterval = 10 // Report every 10 assets

	reembedder := NewReembedder(repo, checkpoints, embedder, config, &buf)
	err := reembedder.Run(ctx)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Progress:", "should show progress")
	assert.Contains(t, output, "25/25", "should show final count")
}
