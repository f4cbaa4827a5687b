package pebblestore

import (
	"sync/atomic"
	"time"
)

// MetricsHook observes storage operations.
type MetricsHook interface {
	ObserveWrite(elapsed time.Duration, bytes int)
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int)
}

// NoopMetrics is used when no hook is configured.
type NoopMetrics struct{}

func (NoopMetrics) ObserveWrite(time.Duration, int)            {}
func (NoopMetrics) ObserveRead(time.Duration, int)             {}
func (NoopMetrics) ObserveBatchCommit(time.Duration, int, int) {}

// Counters is a MetricsHook that accumulates totals, reported by the
// health endpoint.
type Counters struct {
	commits     atomic.Uint64
	ops         atomic.Uint64
	bytes       atomic.Uint64
	reads       atomic.Uint64
	commitNanos atomic.Int64
}

// Stats is a point-in-time copy of Counters.
type Stats struct {
	Commits          uint64 `json:"commits"`
	Ops              uint64 `json:"ops"`
	BytesWritten     uint64 `json:"bytes_written"`
	Reads            uint64 `json:"reads"`
	MeanCommitMicros int64  `json:"mean_commit_us"`
}

func (c *Counters) ObserveWrite(time.Duration, int) {}

func (c *Counters) ObserveRead(_ time.Duration, _ int) { c.reads.Add(1) }

func (c *Counters) ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int) {
	c.commits.Add(1)
	c.ops.Add(uint64(numOps))
	c.bytes.Add(uint64(bytes))
	c.commitNanos.Add(int64(elapsed))
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() Stats {
	s := Stats{
		Commits:      c.commits.Load(),
		Ops:          c.ops.Load(),
		BytesWritten: c.bytes.Load(),
		Reads:        c.reads.Load(),
	}
	if s.Commits > 0 {
		s.MeanCommitMicros = c.commitNanos.Load() / int64(s.Commits) / int64(time.Microsecond)
	}
	return s
}
