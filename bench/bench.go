// Package bench provides an optional instrument recording per-slice wall
// times and operation counters of a resolution run.
package bench

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/montanaflynn/stats"
)

// Instrument collects timing samples and counters. The zero value is ready
// to use; a nil *Instrument is a valid no-op sink.
type Instrument struct {
	mu      sync.Mutex
	seconds []float64

	// Reductions counts Gröbner reduction steps and is updated from worker
	// goroutines. Products is a counter for full Milnor products; no code in
	// this module increments it, so it stays at zero.
	Reductions atomic.Int64
	Products   atomic.Int64
}

// New instantiates an Instrument.
func New() *Instrument {
	return &Instrument{}
}

// ObserveSlice records the wall time of one committed (s, t) slice.
func (b *Instrument) ObserveSlice(seconds float64) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.seconds = append(b.seconds, seconds)
	b.mu.Unlock()
}

// AddReductions adds n to the reduction-step counter.
func (b *Instrument) AddReductions(n int64) {
	if b == nil {
		return
	}
	b.Reductions.Add(n)
}

// Summary returns a one-line digest of the recorded slice times.
func (b *Instrument) Summary() string {
	if b == nil {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.seconds) == 0 {
		return "no slices recorded"
	}
	mean, _ := stats.Mean(b.seconds)
	median, _ := stats.Median(b.seconds)
	p90, _ := stats.Percentile(b.seconds, 90)
	total, _ := stats.Sum(b.seconds)
	return fmt.Sprintf("slices=%d total=%.3fs mean=%.4fs median=%.4fs p90=%.4fs reductions=%d",
		len(b.seconds), total, mean, median, p90, b.Reductions.Load())
}
