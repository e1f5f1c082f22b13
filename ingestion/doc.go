// Package ingestion provides pipeline orchestration for registering
// catalog assets.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Validating and persisting asset records
//   - Generating embeddings asynchronously on a worker pool
//
// Ingest returns once assets are durable. Embedding errors are logged
// but do not fail the ingestion operation; assets without vectors stay
// marked pending so a reembed run can pick them up.
package ingestion
