// Package reembed repairs and regenerates the embedding vectors stored
// alongside catalog assets, filling in vectors that failed to generate at
// ingest time or rebuilding every vector after an embedding model change.
//
// Assets are processed in ID order in batches with retry and progress
// reporting. A checkpoint records the last fully processed batch, so an
// interrupted run resumes instead of starting over.
package reembed
