package bayespart

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/internal/resource"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/subspace"
)

// Orchestrator runs partitioned sampling. It is safe to call Run concurrently;
// runs share nothing but the configured collaborators.
type Orchestrator struct {
	opts options
}

// New creates an Orchestrator.
func New(optFns ...Option) *Orchestrator {
	return &Orchestrator{opts: applyOptions(optFns)}
}

// Sample is shorthand for New(optFns...).Run(ctx, posterior).
func Sample(ctx context.Context, posterior density.Density, optFns ...Option) (*Result, error) {
	return New(optFns...).Run(ctx, posterior)
}

// run holds the state of one call to Run.
type run struct {
	o      *options
	id     string
	seed   int64
	start   time.Time
	phase   Phase
	started bool
	logger  *Logger
}

// Run explores posterior, partitions the space, samples and integrates every leaf in
// parallel and merges the results. It returns either a complete Result or a *RunError
// naming the phase that failed.
func (o *Orchestrator) Run(ctx context.Context, posterior density.Density) (*Result, error) {
	r := &run{
		o:     &o.opts,
		id:    uuid.NewString(),
		seed:  o.opts.seed,
		start: time.Now(),
	}
	if !o.opts.seedSet {
		r.seed = time.Now().UnixNano()
	}
	r.logger = o.opts.logger.WithRunID(r.id)

	res, err := r.execute(ctx, posterior)

	var subspaces, samples int
	if res != nil {
		subspaces, samples = res.NumSubspaces(), res.Samples.Len()
	}
	o.opts.metricsCollector.RecordRun(subspaces, samples, time.Since(r.start), err)
	r.logger.LogRun(ctx, subspaces, samples, err)

	if err != nil {
		r.enter(ctx, PhaseFailed, err)
		return nil, err
	}
	r.enter(ctx, PhaseDone, nil)
	res.Phase = PhaseDone
	res.Elapsed = time.Since(r.start)
	return res, nil
}

func (r *run) enter(ctx context.Context, p Phase, err error) {
	if r.started && !r.phase.CanTransition(p) {
		panic(fmt.Sprintf("bayespart: invalid phase transition %s -> %s", r.phase, p))
	}
	if !r.started && p != PhaseExploring {
		panic(fmt.Sprintf("bayespart: run must start in %s, not %s", PhaseExploring, p))
	}
	r.started = true
	r.phase = p
	r.logger.LogPhase(ctx, p)
	if r.o.observer != nil {
		r.o.observer(PhaseEvent{RunID: r.id, Phase: p, Time: time.Now(), Err: err})
	}
}

func (r *run) fail(err error) error {
	return &RunError{Phase: r.phase, Err: translateError(err)}
}

func (r *run) execute(ctx context.Context, posterior density.Density) (*Result, error) {
	r.enter(ctx, PhaseExploring, nil)
	if posterior == nil {
		return nil, r.fail(ErrNilPosterior)
	}

	target, tf, err := density.ApplyTransform(r.o.transform, posterior)
	if err != nil {
		return nil, r.fail(err)
	}

	explore, err := r.explore(ctx, target)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(ctx, PhasePartitioning, nil)
	tree, costs, err := r.partition(ctx, target, explore)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(ctx, PhaseTruncating, nil)
	posts, err := truncateLeaves(target, tree)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(ctx, PhaseSamplingSubspaces, nil)
	rc := resource.NewController(resource.Config{
		MaxWorkers:       r.o.workers,
		MemoryLimitBytes: r.o.memoryLimit,
		DispatchPerSec:   r.o.dispatchRate,
	})
	results, err := r.dispatch(ctx, rc, posts)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(ctx, PhaseMerging, nil)
	merged, table, integral, err := Merge(results)
	// Results are no longer held once they are merged.
	rc.ReleaseMemory(rc.MemoryUsage())
	if err != nil {
		return nil, r.fail(err)
	}

	original := merged
	if r.o.transform != density.NoTransform {
		original, err = inverseTransform(merged, tf)
		if err != nil {
			return nil, r.fail(err)
		}
	}

	return &Result{
		RunID:              r.id,
		Samples:            original,
		TransformedSamples: merged,
		Exploration:        explore,
		Info:               table,
		Tree:               tree,
		Costs:              costs,
		Integral:           integral,
	}, nil
}

func (r *run) explore(ctx context.Context, target density.Density) (*sample.Set, error) {
	start := time.Now()
	s, err := r.o.explorationSampler.Sample(ctx, target, rand.New(rand.NewSource(streamSeed(r.seed, 0))))
	switch {
	case err != nil:
	case s == nil:
		err = fmt.Errorf("%w: exploration sampler returned no samples", ErrDegenerateInput)
	case s.Dim() != target.Dim():
		err = &density.DimensionMismatchError{Expected: target.Dim(), Actual: s.Dim()}
	}
	r.o.metricsCollector.RecordExploration(s.Len(), time.Since(start), err)
	r.logger.LogExploration(ctx, s.Len(), err)
	return s, err
}

func (r *run) partition(ctx context.Context, target density.Density, explore *sample.Set) (*partition.Tree, []float64, error) {
	start := time.Now()
	tree, costs, err := r.buildTree(ctx, target, explore)

	var leaves int
	if tree != nil {
		leaves = tree.NumLeaves()
	}
	r.o.metricsCollector.RecordPartition(leaves, time.Since(start), err)
	r.logger.LogPartition(ctx, r.o.partitions, leaves, err)
	return tree, costs, err
}

func (r *run) buildTree(ctx context.Context, target density.Density, explore *sample.Set) (*partition.Tree, []float64, error) {
	if r.o.partitions < 1 {
		return nil, nil, fmt.Errorf("%w: partition count %d < 1", ErrInvalidPartitionConfig, r.o.partitions)
	}
	tree, costs, err := r.o.partitioner.Partition(ctx, explore, r.o.partitions)
	if err != nil {
		return nil, nil, err
	}
	if r.o.extendBounds {
		if err := partition.ExtendBounds(tree, target.Bounds()); err != nil {
			return nil, nil, err
		}
	}
	return tree, costs, nil
}

func truncateLeaves(target density.Density, tree *partition.Tree) ([]*density.Truncated, error) {
	leaves := tree.Leaves()
	posts := make([]*density.Truncated, len(leaves))
	for i, leaf := range leaves {
		p, err := density.Truncate(target, leaf.Bounds)
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", leaf.ID, err)
		}
		posts[i] = p
	}
	return posts, nil
}

// dispatch runs one task per truncated posterior and waits for all of them.
// posts[i] belongs to leaf i+1 and its result is written to results[i] only.
// The first failure cancels the remaining tasks.
func (r *run) dispatch(ctx context.Context, rc *resource.Controller, posts []*density.Truncated) ([]*subspace.Result, error) {
	worker := subspace.NewWorker(r.o.subspaceSampler, r.o.integrator)
	results := make([]*subspace.Result, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	for i, post := range posts {
		id := i + 1
		g.Go(func() error {
			if err := rc.WaitDispatch(gctx); err != nil {
				return err
			}
			wid, err := rc.AcquireWorker(gctx)
			if err != nil {
				return err
			}
			defer rc.ReleaseWorker(wid)

			start := time.Now()
			rng := rand.New(rand.NewSource(streamSeed(r.seed, id)))
			res, err := worker.Run(gctx, id, wid, post, rng)

			var n int
			if res != nil {
				n = res.Samples.Len()
			}
			r.o.metricsCollector.RecordSubspace(id, n, time.Since(start), err)
			r.logger.LogSubspace(gctx, id, wid, n, err)
			if err != nil {
				return err
			}

			if !rc.TryAcquireMemory(setBytes(res.Samples)) {
				return fmt.Errorf("subspace %d: %w", id, resource.ErrMemoryLimitExceeded)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// inverseTransform maps sampling-space draws back to the original space. Weights are
// kept; the log-density picks up the Jacobian of the forward map.
func inverseTransform(s *sample.Set, tf density.Transform) (*sample.Set, error) {
	return s.Map(s.Dim(), func(_ int, x sample.Sample) (sample.Sample, error) {
		v := tf.Inverse(x.V)
		x.LogD += tf.LogAbsDetJacobian(v)
		x.V = v
		return x, nil
	})
}

// setBytes approximates the memory held by s.
func setBytes(s *sample.Set) int64 {
	const infoBytes = 3 * 8
	return int64(s.Len()) * int64((s.Dim()+2)*8+infoBytes)
}

// streamSeed derives the seed of random stream k from the run seed (splitmix64).
func streamSeed(seed int64, k int) int64 {
	z := uint64(seed) + uint64(k+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
