package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints periodic progress lines for long reembedding
// runs. All methods are safe for concurrent use.
type ProgressTracker struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	interval int

	running   bool
	done      int
	reported  int
	startedAt time.Time
}

// NewProgressTracker reports on w every interval processed items out
// of total. Stderr is the usual destination.
func NewProgressTracker(w io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{w: w, total: total, interval: interval}
}

// Start resets the counters and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = true
	p.done = 0
	p.reported = 0
	p.startedAt = time.Now()
}

// Update sets the absolute number of processed items.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(current)
}

// Increment adds delta to the number of processed items.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(p.done + delta)
}

// Finish forces a final report and terminates the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.startedAt)
}

func (p *ProgressTracker) advance(current int) {
	if !p.running {
		return
	}
	p.done = min(current, p.total)
	if p.done-p.reported >= p.interval {
		p.report()
		p.reported = p.done
	}
}

// report assumes p.mu is held.
func (p *ProgressTracker) report() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := float64(p.done) / time.Since(p.startedAt).Seconds()
	fmt.Fprintf(p.w, "\rProgress: %d/%d (%.1f%%) - %.1f assets/s",
		p.done, p.total, pct, rate)
}
