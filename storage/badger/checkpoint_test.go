package badger

import (
	"context"
	"testing"

	"github.com/soundscout/soundscout/core"
)

func TestCheckpointRoundTrip(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	defer backend.Close()

	repo := NewCheckpointRepository(backend)
	ctx := context.Background()

	// No checkpoint yet
	loaded, err := repo.LoadCheckpoint(ctx, "reembed")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded != nil {
		t.Fatalf("Expected no checkpoint, got %+v", loaded)
	}

	// Save and reload
	err = repo.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: "reembed",
		LastID:        core.ID(120),
	})
	if err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	loaded, err = repo.LoadCheckpoint(ctx, "reembed")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected checkpoint, got nil")
	}
	if loaded.LastID != core.ID(120) {
		t.Fatalf("Expected LastID 120, got %d", loaded.LastID)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Fatal("Expected UpdatedAt to be set on save")
	}

	// A later save overwrites
	err = repo.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: "reembed",
		LastID:        core.ID(240),
	})
	if err != nil {
		t.Fatalf("Failed to overwrite checkpoint: %v", err)
	}
	loaded, err = repo.LoadCheckpoint(ctx, "reembed")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded.LastID != core.ID(240) {
		t.Fatalf("Expected LastID 240, got %d", loaded.LastID)
	}

	// Checkpoints are per processor type
	other, err := repo.LoadCheckpoint(ctx, "reindex")
	if err != nil {
		t.Fatalf("Failed to load other checkpoint: %v", err)
	}
	if other != nil {
		t.Fatalf("Expected no checkpoint for other type, got %+v", other)
	}
}

func TestDeleteCheckpoint(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	defer backend.Close()

	repo := NewCheckpointRepository(backend)
	ctx := context.Background()

	err = repo.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: "reembed",
		LastID:        core.ID(10),
	})
	if err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	if err := repo.DeleteCheckpoint(ctx, "reembed"); err != nil {
		t.Fatalf("Failed to delete checkpoint: %v", err)
	}

	loaded, err := repo.LoadCheckpoint(ctx, "reembed")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded != nil {
		t.Fatalf("Expected no checkpoint after delete, got %+v", loaded)
	}

	// Deleting a missing checkpoint is a no-op
	if err := repo.DeleteCheckpoint(ctx, "reembed"); err != nil {
		t.Fatalf("Expected delete of missing checkpoint to succeed, got %v", err)
	}
}
