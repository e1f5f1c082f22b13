package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies a domain record. Catalog records draw IDs from
// database sequences; content-derived IDs come from IDFromContent.
type ID uint64

// IDFromContent hashes text into a stable ID: the same text always
// maps to the same value, on any platform.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 64-bit digest
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Asset is a single catalog entry for a media file. Scalar metadata is
// captured at ingestion; the embedding vector is populated asynchronously
// by processors and stays empty until then.
type Asset struct {
	Id          ID
	Path        string
	Filename    string
	Format      string  // lowercase extension without the dot, e.g. "wav"
	Duration    float64 // seconds
	SampleRate  uint32  // Hz
	BitDepth    uint16
	Channels    uint16
	SizeBytes   uint64
	Tags        []string
	Description string
	Vector      []float32 // Embedding vector for semantic search (populated by processors)
	InsertedAt  time.Time // When the asset was inserted into the catalog
	UpdatedAt   time.Time // When the asset was last updated
}

// EmbeddingText returns the text form of the asset fed to the embedding
// model. Filename, tags, and description are joined so any of them can
// anchor a semantic match.
func (a *Asset) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if a.Filename != "" {
		parts = append(parts, a.Filename)
	}
	if len(a.Tags) > 0 {
		parts = append(parts, strings.Join(a.Tags, " "))
	}
	if a.Description != "" {
		parts = append(parts, a.Description)
	}
	return strings.Join(parts, " ")
}

// NormalizeFormat canonicalizes a format label to a lowercase extension
// without the leading dot ("WAV", ".wav" -> "wav").
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

// SavedSearch is a named, reusable query string.
type SavedSearch struct {
	Id        ID // assigned by the repository
	Name      string
	Query     string
	CreatedAt time.Time
	LastUsed  time.Time
	UseCount  uint32
}

// Checkpoint records how far a batch processor has progressed, so an
// interrupted run can resume without reprocessing earlier records.
type Checkpoint struct {
	ProcessorType string
	LastID        ID
	UpdatedAt     time.Time
}

// SimilarityMatch is an asset match from vector similarity search.
type SimilarityMatch struct {
	AssetId ID
	Score   float32
}

// SearchHit is one entry of a fused result list. Ranks are 1-based
// positions in the source lists; 0 means the asset was absent from that
// source. Asset is attached after ranking, so it can be nil when the
// asset was deleted between ranking and retrieval.
type SearchHit struct {
	AssetId       ID
	Asset         *Asset
	Score         float64
	LexicalRank   int
	SemanticRank  int
	LexicalScore  float64
	SemanticScore float64
}

// InBoth reports whether the hit was contributed by both ranking sources.
func (h *SearchHit) InBoth() bool {
	return h.LexicalRank > 0 && h.SemanticRank > 0
}
