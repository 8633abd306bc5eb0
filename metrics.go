package bayespart

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    subspaceCounter   prometheus.Counter
//	    subspaceHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSubspace(id, samples int, duration time.Duration, err error) {
//	    p.subspaceCounter.Inc()
//	    p.subspaceHistogram.Observe(duration.Seconds())
//	}
//
// Methods may be called concurrently.
type MetricsCollector interface {
	// RecordExploration is called after the exploration pass.
	RecordExploration(samples int, duration time.Duration, err error)

	// RecordPartition is called after partitioning with the number of leaves produced.
	RecordPartition(leaves int, duration time.Duration, err error)

	// RecordSubspace is called when a subspace task finishes.
	RecordSubspace(id, samples int, duration time.Duration, err error)

	// RecordRun is called once per run.
	RecordRun(subspaces, samples int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordExploration(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordPartition(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordSubspace(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ExplorationCount   atomic.Int64
	ExplorationErrors  atomic.Int64
	ExplorationSamples atomic.Int64
	PartitionCount     atomic.Int64
	PartitionErrors    atomic.Int64
	PartitionLeaves    atomic.Int64
	SubspaceCount      atomic.Int64
	SubspaceErrors     atomic.Int64
	SubspaceSamples    atomic.Int64
	SubspaceTotalNanos atomic.Int64
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunTotalNanos      atomic.Int64
}

// RecordExploration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExploration(samples int, _ time.Duration, err error) {
	b.ExplorationCount.Add(1)
	b.ExplorationSamples.Add(int64(samples))
	if err != nil {
		b.ExplorationErrors.Add(1)
	}
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(leaves int, _ time.Duration, err error) {
	b.PartitionCount.Add(1)
	b.PartitionLeaves.Add(int64(leaves))
	if err != nil {
		b.PartitionErrors.Add(1)
	}
}

// RecordSubspace implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSubspace(_ int, samples int, duration time.Duration, err error) {
	b.SubspaceCount.Add(1)
	b.SubspaceSamples.Add(int64(samples))
	b.SubspaceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SubspaceErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_, _ int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ExplorationCount:   b.ExplorationCount.Load(),
		ExplorationErrors:  b.ExplorationErrors.Load(),
		ExplorationSamples: b.ExplorationSamples.Load(),
		PartitionCount:     b.PartitionCount.Load(),
		PartitionErrors:    b.PartitionErrors.Load(),
		PartitionLeaves:    b.PartitionLeaves.Load(),
		SubspaceCount:      b.SubspaceCount.Load(),
		SubspaceErrors:     b.SubspaceErrors.Load(),
		SubspaceSamples:    b.SubspaceSamples.Load(),
		SubspaceAvgNanos:   avg(b.SubspaceTotalNanos.Load(), b.SubspaceCount.Load()),
		RunCount:           b.RunCount.Load(),
		RunErrors:          b.RunErrors.Load(),
		RunAvgNanos:        avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of metrics from BasicMetricsCollector.
type BasicMetricsStats struct {
	ExplorationCount   int64
	ExplorationErrors  int64
	ExplorationSamples int64
	PartitionCount     int64
	PartitionErrors    int64
	PartitionLeaves    int64
	SubspaceCount      int64
	SubspaceErrors     int64
	SubspaceSamples    int64
	SubspaceAvgNanos   int64
	RunCount           int64
	RunErrors          int64
	RunAvgNanos        int64
}
