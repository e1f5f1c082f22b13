package search

import "github.com/soundscout/soundscout/query"

// Monitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate stages during a search.
// BranchDone fires from the branch goroutines, so implementations must
// be safe for concurrent use.
type Monitor interface {
	// Parsed is called once the raw query has a valid AST.
	Parsed(raw string, node query.Node)

	// BranchDone is called when a ranking branch finishes, with the
	// branch name ("lexical" or "semantic") and its diagnostics.
	BranchDone(branch string, info BranchInfo)

	// Fused is called with the final result before it is returned.
	Fused(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Parsed(_ string, _ query.Node)     {}
func (n *noopMonitor) BranchDone(_ string, _ BranchInfo) {}
func (n *noopMonitor) Fused(_ *Result)                   {}
