package bench

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/soundscout/soundscout/core"
)

// vocabulary is the token pool synthetic assets and queries draw from.
// Queries built from it hit real assets, so lexical and semantic
// agreement in a run reflects ranking behavior rather than luck.
var vocabulary = []string{
	"kick", "snare", "hat", "clap", "tom", "cymbal", "ride", "shaker",
	"bass", "sub", "drone", "pad", "pluck", "stab", "chord", "arp",
	"rain", "wind", "thunder", "river", "forest", "traffic", "crowd",
	"vinyl", "tape", "glitch", "static", "hum", "crackle", "noise",
	"bright", "dark", "warm", "cold", "soft", "hard", "long", "short",
	"metallic", "wooden", "hollow", "airy", "gritty", "clean",
}

var formats = []string{"wav", "mp3", "flac", "aiff", "ogg"}

var sampleRates = []uint32{44100, 48000, 96000}

// DatasetConfig controls synthetic dataset generation. The same config
// always yields the same dataset.
type DatasetConfig struct {
	Assets  int
	Queries int
	Seed    int64
}

// Dataset is a generated catalog plus a query corpus over it.
type Dataset struct {
	Assets  []*core.Asset
	Queries []string
}

// GenerateDataset builds a seeded synthetic catalog. Each asset is
// composed from a few vocabulary tokens spread across filename, tags,
// and description, with plausible audio metadata.
func GenerateDataset(cfg DatasetConfig) *Dataset {
	rng := rand.New(rand.NewSource(cfg.Seed))

	d := &Dataset{
		Assets:  make([]*core.Asset, 0, cfg.Assets),
		Queries: make([]string, 0, cfg.Queries),
	}

	for i := 0; i < cfg.Assets; i++ {
		d.Assets = append(d.Assets, generateAsset(rng, i))
	}
	for i := 0; i < cfg.Queries; i++ {
		d.Queries = append(d.Queries, generateQuery(rng))
	}

	return d
}

func generateAsset(rng *rand.Rand, n int) *core.Asset {
	tokens := pickTokens(rng, 3+rng.Intn(3)) // 3 to 5 tokens
	format := formats[rng.Intn(len(formats))]

	duration := 0.5 + rng.Float64()*120
	sampleRate := sampleRates[rng.Intn(len(sampleRates))]
	channels := uint16(1 + rng.Intn(2))
	bitDepth := uint16(16)
	if rng.Intn(2) == 1 {
		bitDepth = 24
	}

	filename := fmt.Sprintf("%s_%s_%03d.%s", tokens[0], tokens[1], n, format)

	// Rough PCM size keeps size predicates meaningful
	size := uint64(duration * float64(sampleRate) * float64(channels) * float64(bitDepth) / 8)

	return &core.Asset{
		Path:        "/library/" + filename,
		Filename:    filename,
		Format:      format,
		Duration:    duration,
		SampleRate:  sampleRate,
		BitDepth:    bitDepth,
		Channels:    channels,
		SizeBytes:   size,
		Tags:        tokens[:2],
		Description: strings.Join(tokens, " ") + " sample",
	}
}

// generateQuery produces a mix of free-text, field-only, and hybrid
// queries. Field-only queries skip the semantic branch entirely, which
// keeps the corpus honest about that path too.
func generateQuery(rng *rand.Rand) string {
	tokens := pickTokens(rng, 2)

	switch rng.Intn(10) {
	case 0, 1:
		// Field-only
		return fieldPredicate(rng)
	case 2, 3, 4:
		// Hybrid: free text plus a field filter
		return tokens[0] + " " + fieldPredicate(rng)
	case 5:
		// Boolean composition
		return tokens[0] + " OR " + tokens[1]
	default:
		// Plain free text, one or two tokens
		if rng.Intn(2) == 0 {
			return tokens[0]
		}
		return tokens[0] + " " + tokens[1]
	}
}

func fieldPredicate(rng *rand.Rand) string {
	switch rng.Intn(5) {
	case 0:
		return "format:" + formats[rng.Intn(len(formats))]
	case 1:
		return fmt.Sprintf("duration:>%ds", 5+rng.Intn(60))
	case 2:
		return fmt.Sprintf("duration:<%ds", 10+rng.Intn(100))
	case 3:
		return fmt.Sprintf("samplerate:=%d", sampleRates[rng.Intn(len(sampleRates))])
	default:
		return "tags:" + vocabulary[rng.Intn(len(vocabulary))]
	}
}

// pickTokens draws n distinct vocabulary tokens.
func pickTokens(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(vocabulary))
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		tokens[i] = vocabulary[perm[i]]
	}
	return tokens
}
