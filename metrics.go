package compacthash

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each Insert or InsertOrReplace.
	// replaced is true when an existing record was superseded.
	RecordInsert(duration time.Duration, replaced bool, err error)

	// RecordProbe is called after each Prober.GetMatchFor.
	RecordProbe(duration time.Duration, found bool, err error)

	// RecordCompaction is called after a partition was compacted.
	// freed is the number of segments returned to the free list.
	RecordCompaction(duration time.Duration, freed int)

	// RecordResize is called after each resize attempt.
	RecordResize(duration time.Duration, ok bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordProbe(time.Duration, bool, error)  {}
func (NoopMetricsCollector) RecordCompaction(time.Duration, int)     {}
func (NoopMetricsCollector) RecordResize(time.Duration, bool)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	ReplaceCount     atomic.Int64
	ProbeCount       atomic.Int64
	ProbeHits        atomic.Int64
	ProbeErrors      atomic.Int64
	ProbeTotalNanos  atomic.Int64
	CompactionCount  atomic.Int64
	CompactionFreed  atomic.Int64
	CompactionNanos  atomic.Int64
	ResizeCount      atomic.Int64
	ResizeFailures   atomic.Int64
	ResizeTotalNanos atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, replaced bool, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if replaced {
		b.ReplaceCount.Add(1)
	}
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordProbe implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProbe(duration time.Duration, found bool, err error) {
	b.ProbeCount.Add(1)
	b.ProbeTotalNanos.Add(duration.Nanoseconds())
	if found {
		b.ProbeHits.Add(1)
	}
	if err != nil {
		b.ProbeErrors.Add(1)
	}
}

// RecordCompaction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompaction(duration time.Duration, freed int) {
	b.CompactionCount.Add(1)
	b.CompactionFreed.Add(int64(freed))
	b.CompactionNanos.Add(duration.Nanoseconds())
}

// RecordResize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(duration time.Duration, ok bool) {
	b.ResizeCount.Add(1)
	b.ResizeTotalNanos.Add(duration.Nanoseconds())
	if !ok {
		b.ResizeFailures.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertErrors:    b.InsertErrors.Load(),
		InsertAvgNanos:  avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		ReplaceCount:    b.ReplaceCount.Load(),
		ProbeCount:      b.ProbeCount.Load(),
		ProbeHits:       b.ProbeHits.Load(),
		ProbeErrors:     b.ProbeErrors.Load(),
		ProbeAvgNanos:   avg(b.ProbeTotalNanos.Load(), b.ProbeCount.Load()),
		CompactionCount: b.CompactionCount.Load(),
		CompactionFreed: b.CompactionFreed.Load(),
		ResizeCount:     b.ResizeCount.Load(),
		ResizeFailures:  b.ResizeFailures.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount     int64
	InsertErrors    int64
	InsertAvgNanos  int64
	ReplaceCount    int64
	ProbeCount      int64
	ProbeHits       int64
	ProbeErrors     int64
	ProbeAvgNanos   int64
	CompactionCount int64
	CompactionFreed int64
	ResizeCount     int64
	ResizeFailures  int64
}
