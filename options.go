package bayespart

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/integrator"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sampler"
)

// DefaultPartitions is the number of partitions used when WithPartitions is not given.
const DefaultPartitions = 4

type options struct {
	partitions         int
	explorationSampler sampler.Sampler
	subspaceSampler    sampler.Sampler
	partitioner        partition.Partitioner
	integrator         integrator.Integrator
	transform          density.TransformSpec
	extendBounds       bool
	workers            int
	memoryLimit        int64
	dispatchRate       float64
	seed               int64
	seedSet            bool
	metricsCollector   MetricsCollector
	logger             *Logger
	observer           Observer
}

// Option configures an Orchestrator.
type Option func(*options)

// WithPartitions sets the number of partitions the exploration samples are split into.
// Values below one make Run fail in the partitioning phase.
func WithPartitions(n int) Option {
	return func(o *options) {
		o.partitions = n
	}
}

// WithExplorationSampler sets the sampler used for the exploration pass.
//
// If nil is passed, a Metropolis sampler with sampler.DefaultConfig is used.
func WithExplorationSampler(s sampler.Sampler) Option {
	return func(o *options) {
		if s != nil {
			o.explorationSampler = s
		}
	}
}

// WithSubspaceSampler sets the sampler run on every truncated posterior.
//
// If nil is passed, a Metropolis sampler with sampler.DefaultConfig is used.
func WithSubspaceSampler(s sampler.Sampler) Option {
	return func(o *options) {
		if s != nil {
			o.subspaceSampler = s
		}
	}
}

// WithPartitioner sets the space partitioner.
//
// If nil is passed, a KD-tree partitioner with partition.DefaultConfig is used.
func WithPartitioner(p partition.Partitioner) Option {
	return func(o *options) {
		if p != nil {
			o.partitioner = p
		}
	}
}

// WithIntegrator sets the integrator run on every truncated posterior.
//
// If nil is passed, the cubature integrator with integrator.DefaultConfig is used.
func WithIntegrator(i integrator.Integrator) Option {
	return func(o *options) {
		if i != nil {
			o.integrator = i
		}
	}
}

// WithTransform sets the transform applied to the posterior before exploration.
// Merged samples are mapped back through its inverse.
func WithTransform(spec density.TransformSpec) Option {
	return func(o *options) {
		o.transform = spec
	}
}

// WithExtendBounds makes the outer leaves reach the posterior's support bounds
// instead of the bounding box of the exploration samples.
//
// With unbounded support the outer leaves become infinite, which rules out
// integrators that need finite bounds.
func WithExtendBounds(extend bool) Option {
	return func(o *options) {
		o.extendBounds = extend
	}
}

// WithWorkers bounds the number of subspace tasks that run at once.
// Tasks beyond the limit queue. Defaults to runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMemoryLimit bounds the memory held by subspace results awaiting merge.
// A run whose results outgrow the limit fails with ErrMemoryLimitExceeded.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithDispatchRate limits how many subspace tasks are started per second.
// 0 means unlimited.
func WithDispatchRate(perSec float64) Option {
	return func(o *options) {
		o.dispatchRate = perSec
	}
}

// WithSeed makes a run reproducible. Every task derives its own random stream from
// the seed and its leaf id, so results do not depend on scheduling.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &bayespart.BasicMetricsCollector{}
//	res, _ := bayespart.Sample(ctx, posterior, bayespart.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Subspaces: %d, Avg latency: %dns\n", stats.SubspaceCount, stats.SubspaceAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := bayespart.NewJSONLogger(slog.LevelInfo)
//	res, _ := bayespart.Sample(ctx, posterior, bayespart.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithObserver registers a callback for phase transitions.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		partitions:       DefaultPartitions,
		transform:        density.NoTransform,
		workers:          runtime.GOMAXPROCS(0),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.explorationSampler == nil {
		o.explorationSampler = sampler.MustNew(sampler.DefaultConfig())
	}
	if o.subspaceSampler == nil {
		o.subspaceSampler = sampler.MustNew(sampler.DefaultConfig())
	}
	if o.partitioner == nil {
		o.partitioner = partition.MustNew(partition.DefaultConfig())
	}
	if o.integrator == nil {
		o.integrator = integrator.MustNew(integrator.DefaultConfig())
	}
	if o.workers <= 0 {
		o.workers = 1
	}
	return o
}
