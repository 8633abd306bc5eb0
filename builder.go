package bayespart

import (
	"fmt"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/integrator"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sampler"
)

// Builder is an immutable fluent builder for Orchestrators that use the built-in
// samplers, partitioners and integrators. Each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	o, err := bayespart.Partitioned(8).
//	    Explore(sampler.Config{Steps: 500}).
//	    Metropolis(4, 2000).
//	    Median().
//	    Cubature(1 << 18).
//	    UnitCube().
//	    Workers(4).
//	    Build()
type Builder struct {
	partitions   int
	explore      sampler.Config
	subspace     sampler.Config
	partition    partition.Config
	integrator   integrator.Config
	transform    density.TransformSpec
	extendBounds bool
	workers      int
	memoryLimit  int64
	dispatchRate float64
	seed         *int64
	logger       *Logger
	metrics      MetricsCollector
	observer     Observer
}

// Partitioned creates a builder for a run with n partitions.
func Partitioned(n int) Builder {
	return Builder{
		partitions: n,
		explore:    sampler.DefaultConfig(),
		subspace:   sampler.DefaultConfig(),
		partition:  partition.DefaultConfig(),
		integrator: integrator.DefaultConfig(),
	}
}

// Explore sets the exploration sampler configuration.
func (b Builder) Explore(cfg sampler.Config) Builder {
	b.explore = cfg
	return b
}

// Subspace sets the subspace sampler configuration.
func (b Builder) Subspace(cfg sampler.Config) Builder {
	b.subspace = cfg
	return b
}

// Partition sets the partitioner configuration.
func (b Builder) Partition(cfg partition.Config) Builder {
	b.partition = cfg
	return b
}

// Integrate sets the integrator configuration.
func (b Builder) Integrate(cfg integrator.Config) Builder {
	b.integrator = cfg
	return b
}

// Transform sets the sampling-space transform.
func (b Builder) Transform(spec density.TransformSpec) Builder {
	b.transform = spec
	return b
}

// Metropolis samples every subspace with chains random-walk Metropolis chains of the
// given length.
func (b Builder) Metropolis(chains, steps int) Builder {
	b.subspace.Algorithm = sampler.Metropolis
	b.subspace.Chains = chains
	b.subspace.Steps = steps
	return b
}

// Importance samples every subspace with uniform importance draws.
func (b Builder) Importance(draws int) Builder {
	b.subspace.Algorithm = sampler.Importance
	b.subspace.Draws = draws
	return b
}

// KDTree partitions by cost-minimising splits. This is the default.
func (b Builder) KDTree() Builder {
	b.partition.Method = partition.KDTree
	return b
}

// Median partitions the widest dimension at the weighted median.
func (b Builder) Median() Builder {
	b.partition.Method = partition.Median
	return b
}

// SplitCost sets the cost functional minimised by the KD-tree partitioner.
func (b Builder) SplitCost(c partition.Cost) Builder {
	b.partition.Cost = c
	return b
}

// MinLeafSamples sets the smallest sample count a leaf must hold to be split.
func (b Builder) MinLeafSamples(n int) Builder {
	b.partition.MinLeafSamples = n
	return b
}

// SplitDims restricts splits to the given dimensions.
func (b Builder) SplitDims(dims ...int) Builder {
	b.partition.Dims = append([]int(nil), dims...)
	return b
}

// Cubature integrates every subspace with the midpoint rule within maxEvals
// density evaluations.
func (b Builder) Cubature(maxEvals int) Builder {
	b.integrator.Algorithm = integrator.Cubature
	b.integrator.MaxEvals = maxEvals
	return b
}

// HarmonicMean integrates every subspace from its samples.
func (b Builder) HarmonicMean() Builder {
	b.integrator.Algorithm = integrator.HarmonicMean
	return b
}

// UnitCube samples in the unit cube instead of the original space.
func (b Builder) UnitCube() Builder {
	b.transform = density.UnitCube
	return b
}

// ExtendBounds makes the outer leaves reach the posterior's support bounds.
func (b Builder) ExtendBounds() Builder {
	return b.SetExtendBounds(true)
}

// SetExtendBounds sets whether the outer leaves reach the posterior's support bounds.
func (b Builder) SetExtendBounds(extend bool) Builder {
	b.extendBounds = extend
	return b
}

// Workers bounds the number of subspace tasks that run at once.
func (b Builder) Workers(n int) Builder {
	b.workers = n
	return b
}

// MemoryLimit bounds the memory held by subspace results awaiting merge.
func (b Builder) MemoryLimit(bytes int64) Builder {
	b.memoryLimit = bytes
	return b
}

// DispatchRate limits how many subspace tasks are started per second.
func (b Builder) DispatchRate(perSec float64) Builder {
	b.dispatchRate = perSec
	return b
}

// Seed makes runs reproducible.
func (b Builder) Seed(seed int64) Builder {
	b.seed = &seed
	return b
}

// Logger sets the logger.
func (b Builder) Logger(l *Logger) Builder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

// Observer sets the phase observer.
func (b Builder) Observer(fn Observer) Builder {
	b.observer = fn
	return b
}

// Options returns the builder's configuration as options for New.
func (b Builder) Options() ([]Option, error) {
	explore, err := sampler.New(b.explore)
	if err != nil {
		return nil, fmt.Errorf("exploration sampler: %w", err)
	}
	sub, err := sampler.New(b.subspace)
	if err != nil {
		return nil, fmt.Errorf("subspace sampler: %w", err)
	}
	part, err := partition.New(b.partition)
	if err != nil {
		return nil, translateError(err)
	}
	integ, err := integrator.New(b.integrator)
	if err != nil {
		return nil, fmt.Errorf("integrator: %w", err)
	}
	if b.partitions < 1 {
		return nil, fmt.Errorf("%w: partition count %d < 1", ErrInvalidPartitionConfig, b.partitions)
	}

	opts := []Option{
		WithPartitions(b.partitions),
		WithExplorationSampler(explore),
		WithSubspaceSampler(sub),
		WithPartitioner(part),
		WithIntegrator(integ),
		WithTransform(b.transform),
		WithExtendBounds(b.extendBounds),
		WithMemoryLimit(b.memoryLimit),
		WithDispatchRate(b.dispatchRate),
	}
	if b.workers > 0 {
		opts = append(opts, WithWorkers(b.workers))
	}
	if b.seed != nil {
		opts = append(opts, WithSeed(*b.seed))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	if b.observer != nil {
		opts = append(opts, WithObserver(b.observer))
	}
	return opts, nil
}

// Build validates the configuration and creates the Orchestrator.
func (b Builder) Build() (*Orchestrator, error) {
	opts, err := b.Options()
	if err != nil {
		return nil, err
	}
	return New(opts...), nil
}
