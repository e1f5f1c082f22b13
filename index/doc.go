// Package index provides the in-memory vector index behind semantic
// search.
//
// The default Flat form compares a query against every stored vector
// and is exact. The opt-in IVF form partitions vectors into k-means
// clusters and probes only the nearest few at query time, trading
// recall for speed on large catalogs:
//
//	idx := index.New(index.WithIVF(64, 8))
//
// All vectors are unit-normalized on the way in, so cosine similarity
// reduces to a dot product. Scores are in [-1, 1]; ties are broken by
// ascending asset ID so results are stable across runs.
package index
