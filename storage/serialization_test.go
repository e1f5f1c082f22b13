package storage

import (
	"testing"
	"time"

	"github.com/soundscout/soundscout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // math.MaxUint64
		{"content-based ID", core.IDFromContent("samples/kick_01.wav")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalAsset(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		asset *core.Asset
	}{
		{
			name: "minimal asset",
			asset: &core.Asset{
				Id:         core.ID(1),
				Path:       "/samples/kick_01.wav",
				Filename:   "kick_01.wav",
				Format:     "wav",
				Duration:   1.25,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "asset with tags and description",
			asset: &core.Asset{
				Id:          core.ID(2),
				Path:        "/samples/ambient/rain_loop.flac",
				Filename:    "rain_loop.flac",
				Format:      "flac",
				Duration:    32.5,
				SampleRate:  48000,
				BitDepth:    24,
				Channels:    2,
				SizeBytes:   9_360_000,
				Tags:        []string{"ambient", "rain", "loop"},
				Description: "Steady rain on a tin roof, loopable",
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
		{
			name: "asset with vector",
			asset: &core.Asset{
				Id:         core.ID(3),
				Path:       "/samples/snare.wav",
				Filename:   "snare.wav",
				Format:     "wav",
				Duration:   0.8,
				Vector:     []float32{0.1, 0.2, 0.3, 0.4, 0.5},
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "unicode filename",
			asset: &core.Asset{
				Id:         core.ID(4),
				Path:       "/samples/太鼓.wav",
				Filename:   "太鼓.wav",
				Format:     "wav",
				Duration:   2.0,
				Tags:       []string{"percussion", "太鼓"},
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalAsset(tt.asset)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalAsset(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.asset.Id, decoded.Id)
			assert.Equal(t, tt.asset.Path, decoded.Path)
			assert.Equal(t, tt.asset.Filename, decoded.Filename)
			assert.Equal(t, tt.asset.Format, decoded.Format)
			assert.Equal(t, tt.asset.Duration, decoded.Duration)
			assert.Equal(t, tt.asset.SampleRate, decoded.SampleRate)
			assert.Equal(t, tt.asset.BitDepth, decoded.BitDepth)
			assert.Equal(t, tt.asset.Channels, decoded.Channels)
			assert.Equal(t, tt.asset.SizeBytes, decoded.SizeBytes)
			assert.Equal(t, tt.asset.Description, decoded.Description)
			assert.True(t, tt.asset.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.asset.UpdatedAt.Equal(decoded.UpdatedAt))
			// The codec may hand back nil where the input held an
			// empty slice.
			if len(tt.asset.Tags) == 0 {
				assert.Empty(t, decoded.Tags)
			} else {
				assert.Equal(t, tt.asset.Tags, decoded.Tags)
			}
			if len(tt.asset.Vector) == 0 {
				assert.Empty(t, decoded.Vector)
			} else {
				assert.Equal(t, tt.asset.Vector, decoded.Vector)
			}
		})
	}
}

func TestUnmarshalAsset_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty data", []byte{}, ErrTruncatedData},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}, ErrSerializationFailed},
		{"partial data", []byte{1, 2, 3}, ErrSerializationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAsset(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMarshalUnmarshalSavedSearch(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	search := &core.SavedSearch{
		Id:        core.ID(7),
		Name:      "long-wavs",
		Query:     "format:wav AND duration:>5",
		CreatedAt: now,
		LastUsed:  now,
		UseCount:  3,
	}

	data := MarshalSavedSearch(search)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalSavedSearch(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, search.Id, decoded.Id)
	assert.Equal(t, search.Name, decoded.Name)
	assert.Equal(t, search.Query, decoded.Query)
	assert.True(t, search.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, search.LastUsed.Equal(decoded.LastUsed))
	assert.Equal(t, search.UseCount, decoded.UseCount)
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	checkpoint := &core.Checkpoint{
		ProcessorType: "reembed",
		LastID:        core.ID(120),
		UpdatedAt:     now,
	}

	data := MarshalCheckpoint(checkpoint)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, checkpoint.ProcessorType, decoded.ProcessorType)
	assert.Equal(t, checkpoint.LastID, decoded.LastID)
	assert.True(t, checkpoint.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		original := &core.Asset{
			Id:          core.ID(999),
			Path:        "/samples/hat_closed.aiff",
			Filename:    "hat_closed.aiff",
			Format:      "aiff",
			Duration:    0.3,
			SampleRate:  44100,
			Channels:    1,
			Tags:        []string{"hat", "closed"},
			Description: "Tight closed hi-hat",
			Vector:      []float32{0.1, 0.2, 0.3},
			InsertedAt:  now,
			UpdatedAt:   now,
		}

		current := original
		for i := 0; i < 3; i++ {
			data := MarshalAsset(current)
			decoded, err := UnmarshalAsset(data)
			require.NoError(t, err)
			current = decoded
		}

		assert.Equal(t, original.Id, current.Id)
		assert.Equal(t, original.Path, current.Path)
		assert.Equal(t, original.Tags, current.Tags)
		assert.Equal(t, original.Vector, current.Vector)
	})
}
