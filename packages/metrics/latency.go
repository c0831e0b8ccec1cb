// Package metrics records per-call latency for an orchestration run.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Latency collects call durations in a histogram (in microseconds for precision)
type Latency struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	calls     int64
	errors    int64
}

// LatencySnapshot is a point-in-time view of the recorded calls
type LatencySnapshot struct {
	Calls  int64         `json:"calls"`
	Errors int64         `json:"errors"`
	P50    time.Duration `json:"p50"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Max    time.Duration `json:"max"`
}

// NewLatency creates a recorder covering 1us to 60s with 3 significant digits
func NewLatency() *Latency {
	return &Latency{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

// Record adds one call. Calls that failed before a status still count toward
// the latency distribution.
func (l *Latency) Record(d time.Duration, failed bool) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if failed {
		l.errors++
	}
	_ = l.histogram.RecordValue(us)
}

// Snapshot returns the current percentiles
func (l *Latency) Snapshot() LatencySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.calls == 0 {
		return LatencySnapshot{}
	}

	return LatencySnapshot{
		Calls:  l.calls,
		Errors: l.errors,
		P50:    usToDuration(l.histogram.ValueAtQuantile(50)),
		P95:    usToDuration(l.histogram.ValueAtQuantile(95)),
		P99:    usToDuration(l.histogram.ValueAtQuantile(99)),
		Max:    usToDuration(l.histogram.Max()),
	}
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
