// Package bench measures retrieval latency and ranking agreement over a
// seeded synthetic catalog, and turns the measurements into a
// pass/fail verdict against configurable thresholds.
//
// A run produces a JSON report carrying the raw per-query measurements
// alongside the summary, so the verdict can be recomputed and audited
// later without rerunning the benchmark.
package bench
