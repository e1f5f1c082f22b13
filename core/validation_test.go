package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

// wantValidationError fails unless err matches want (nil means no
// error expected).
func wantValidationError(t *testing.T, err, want error) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func TestValidateAsset(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		asset   *Asset
		wantErr error
	}{
		{
			name: "complete asset",
			asset: &Asset{
				Id:         1,
				Path:       "/samples/kick.wav",
				Filename:   "kick.wav",
				Format:     "wav",
				Duration:   1.5,
				InsertedAt: validTime,
			},
		},
		{
			name: "no vector yet",
			asset: &Asset{
				Id:         1,
				Path:       "/samples/snare.wav",
				Filename:   "snare.wav",
				Duration:   0.3,
				InsertedAt: validTime,
				Vector:     nil,
			},
		},
		{
			name: "unassigned ID",
			asset: &Asset{
				Path:       "/samples/hat.wav",
				Filename:   "hat.wav",
				InsertedAt: validTime,
			},
		},
		{
			name: "zero inserted time",
			asset: &Asset{
				Id:       1,
				Path:     "/samples/ride.wav",
				Filename: "ride.wav",
			},
		},
		{
			name:    "nil asset",
			asset:   nil,
			wantErr: ErrInvalidAsset,
		},
		{
			name: "empty path",
			asset: &Asset{
				Filename:   "kick.wav",
				InsertedAt: validTime,
			},
			wantErr: ErrEmptyPath,
		},
		{
			name: "empty filename",
			asset: &Asset{
				Path:       "/samples/kick.wav",
				InsertedAt: validTime,
			},
			wantErr: ErrEmptyFilename,
		},
		{
			name: "negative duration",
			asset: &Asset{
				Path:       "/samples/kick.wav",
				Filename:   "kick.wav",
				Duration:   -1,
				InsertedAt: validTime,
			},
			wantErr: ErrInvalidDuration,
		},
		{
			name: "NaN duration",
			asset: &Asset{
				Path:       "/samples/kick.wav",
				Filename:   "kick.wav",
				Duration:   math.NaN(),
				InsertedAt: validTime,
			},
			wantErr: ErrInvalidDuration,
		},
		{
			name: "infinite duration",
			asset: &Asset{
				Path:       "/samples/kick.wav",
				Filename:   "kick.wav",
				Duration:   math.Inf(1),
				InsertedAt: validTime,
			},
			wantErr: ErrInvalidDuration,
		},
		{
			name: "future inserted time",
			asset: &Asset{
				Path:       "/samples/kick.wav",
				Filename:   "kick.wav",
				InsertedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValidationError(t, ValidateAsset(tt.asset), tt.wantErr)
		})
	}
}

func TestValidateAssetWrapsSentinel(t *testing.T) {
	err := ValidateAsset(&Asset{Filename: "kick.wav"})
	if !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("field errors must also match ErrInvalidAsset, got %v", err)
	}
}

func TestValidateSavedSearch(t *testing.T) {
	tests := []struct {
		name    string
		search  *SavedSearch
		wantErr error
	}{
		{
			name: "complete saved search",
			search: &SavedSearch{
				Id:    IDFromContent("drums"),
				Name:  "drums",
				Query: "format:wav AND tags:drum",
			},
		},
		{
			name:    "nil saved search",
			search:  nil,
			wantErr: ErrInvalidSavedSearch,
		},
		{
			name:    "empty name",
			search:  &SavedSearch{Query: "format:wav"},
			wantErr: ErrEmptySearchName,
		},
		{
			name:    "empty query",
			search:  &SavedSearch{Name: "drums"},
			wantErr: ErrEmptySearchQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValidationError(t, ValidateSavedSearch(tt.search), tt.wantErr)
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	cases := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"an hour ago", time.Now().Add(-1 * time.Hour), true},
		{"right now", time.Now(), true},
		{"an hour ahead", time.Now().Add(1 * time.Hour), false},
		{"zero time", time.Time{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidTimestamp(tc.ts); got != tc.want {
				t.Fatalf("IsValidTimestamp(%v) = %v, want %v", tc.ts, got, tc.want)
			}
		})
	}
}
