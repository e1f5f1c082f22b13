package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDuration(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  float64
	}{
		{"plain seconds", "300", 300},
		{"fractional seconds", "5.5", 5.5},
		{"minute suffix", "5m", 300},
		{"minute word", "5 minutes", 300},
		{"single minute word", "1 minute", 60},
		{"hour suffix", "2h", 7200},
		{"hour word", "2 hours", 7200},
		{"hr suffix", "1.5hr", 5400},
		{"milliseconds", "500ms", 0.5},
		{"seconds suffix", "90s", 90},
		{"sec suffix", "90sec", 90},
		{"uppercase suffix", "5M", 300},
		{"mixed case", "2H", 7200},
		{"clock mm:ss", "3:30", 210},
		{"clock h:mm:ss", "1:02:03", 3723},
		{"clock with fractional seconds", "0:01.5", 1.5},
		{"clock unchecked seconds", "5:90", 390},
		{"surrounding whitespace", " 45 ", 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDuration(tt.token)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestResolveDuration_Equivalence(t *testing.T) {
	suffixed, err := ResolveDuration("5m")
	require.NoError(t, err)
	plain, err := ResolveDuration("300")
	require.NoError(t, err)
	assert.Equal(t, plain, suffixed)
}

func TestResolveDuration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrMalformedLiteral},
		{"bare suffix", "minutes", ErrMalformedLiteral},
		{"unknown suffix", "5 fortnights", ErrUnknownUnit},
		{"size suffix", "5mb", ErrUnknownUnit},
		{"negative", "-5", ErrMalformedLiteral},
		{"too many clock parts", "1:2:3:4", ErrMalformedLiteral},
		{"empty clock part", "5:", ErrMalformedLiteral},
		{"non-numeric clock part", "a:30", ErrMalformedLiteral},
		{"fractional minutes in clock", "1.5:00", ErrMalformedLiteral},
		{"garbage", "abc", ErrMalformedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveDuration(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveSize(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  float64
	}{
		{"plain bytes", "1024", 1024},
		{"byte suffix", "512b", 512},
		{"kilobytes decimal", "1kb", 1000},
		{"megabytes decimal", "1mb", 1e6},
		{"gigabytes fractional", "2.5gb", 2.5e9},
		{"terabytes", "1tb", 1e12},
		{"uppercase suffix", "1MB", 1e6},
		{"space before suffix", "10 kb", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSize(tt.token)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestResolveSize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrMalformedLiteral},
		{"bare suffix", "mb", ErrMalformedLiteral},
		{"unknown suffix", "5 stone", ErrUnknownUnit},
		{"binary suffix not exposed", "1kib", ErrUnknownUnit},
		{"duration suffix", "5m", ErrUnknownUnit},
		{"negative", "-1kb", ErrMalformedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSize(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
