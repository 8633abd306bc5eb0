package bayespart

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/integrator"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/sampler"
	"github.com/hupe1980/bayespart/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stdNormal(t *testing.T, dim int) *density.Normal {
	t.Helper()
	mu := make([]float64, dim)
	sigma := make([]float64, dim)
	for i := range sigma {
		sigma[i] = 1
	}
	n, err := density.NewNormal(mu, sigma)
	require.NoError(t, err)
	return n
}

// fixedExplorer returns a clone of s on every call and counts the calls.
func fixedExplorer(s *sample.Set, calls *atomic.Int64) testutil.SamplerFunc {
	return func(ctx context.Context, _ density.Density, _ *rand.Rand) (*sample.Set, error) {
		calls.Add(1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return s.Clone(), nil
	}
}

func phaseRecorder(phases *[]Phase) Option {
	return WithObserver(func(ev PhaseEvent) {
		*phases = append(*phases, ev.Phase)
	})
}

func TestRun_FourPartitions(t *testing.T) {
	explore := testutil.NewRNG(1).GaussianSet(1000, 2)
	var explorerCalls atomic.Int64
	grid := &testutil.GridSampler{N: 50}

	res, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(4),
		WithExplorationSampler(fixedExplorer(explore, &explorerCalls)),
		WithSubspaceSampler(grid),
		WithIntegrator(&testutil.VolumeIntegrator{}),
		WithSeed(7),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(1), explorerCalls.Load())
	assert.Equal(t, 4, grid.Calls())
	assert.Equal(t, PhaseDone, res.Phase)
	assert.NotEmpty(t, res.RunID)

	// Leaves tile the bounding box of the exploration samples.
	require.Equal(t, 4, res.Tree.NumLeaves())
	lo, hi := explore.BoundingBox()
	box := density.NewBounds(lo, hi)
	assert.True(t, res.Tree.Bounds().Equal(box))

	var vol float64
	leaves := res.Tree.Leaves()
	for i, a := range leaves {
		vol += a.Bounds.Volume()
		for _, b := range leaves[i+1:] {
			assert.False(t, a.Bounds.Overlaps(b.Bounds))
		}
	}
	assert.InDelta(t, box.Volume(), vol, 1e-9*box.Volume())

	// Sample count is the sum of the subspace counts.
	require.Equal(t, 4, res.NumSubspaces())
	total := 0
	for _, p := range res.Info {
		total += p.NumSamples
	}
	assert.Equal(t, 200, total)
	assert.Equal(t, total, res.Samples.Len())

	// The integral is the sum of the leaf volumes.
	assert.InDelta(t, vol, res.Integral.Value, 1e-9*vol)
	assert.Same(t, res.Samples, res.TransformedSamples)
	assert.Equal(t, explore.Len(), res.Exploration.Len())
}

func TestRun_SubspaceProvenance(t *testing.T) {
	explore := testutil.NewRNG(2).GaussianSet(500, 2)
	var calls atomic.Int64

	res, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(5),
		WithExplorationSampler(fixedExplorer(explore, &calls)),
		WithSubspaceSampler(&testutil.GridSampler{N: 30}),
		WithIntegrator(&testutil.VolumeIntegrator{}),
		WithWorkers(2),
		WithSeed(1),
	)
	require.NoError(t, err)

	next := 0
	for i, p := range res.Info {
		id := i + 1
		assert.Equal(t, id, p.ID)
		assert.GreaterOrEqual(t, p.WorkerID, 1)
		assert.LessOrEqual(t, p.WorkerID, 2)
		assert.Equal(t, [2]int{next, next + p.NumSamples}, p.IndexRange)
		next = p.IndexRange[1]

		sub, err := res.SubspaceSamples(id)
		require.NoError(t, err)
		assert.InDelta(t, p.Integral.Value, sub.WeightSum(), 1e-9*p.Integral.Value)

		leaf := res.Tree.Leaf(id)
		for k := 0; k < sub.Len(); k++ {
			assert.Equal(t, id, sub.Info(k).Subspace)
			assert.True(t, leaf.Bounds.Contains(sub.Vector(k)))
		}
	}
	assert.Equal(t, res.Samples.Len(), next)

	_, ok := res.Subspace(0)
	assert.False(t, ok)
	_, err = res.SubspaceSamples(6)
	assert.ErrorIs(t, err, sample.ErrIndexOutOfRange)
}

func TestRun_SubspaceFailure(t *testing.T) {
	explore := testutil.NewRNG(3).GaussianSet(800, 2)

	// The partitioner is deterministic: build the same tree to learn leaf 3's bounds.
	tree, _, err := partition.MustNew(partition.DefaultConfig()).Partition(t.Context(), explore, 5)
	require.NoError(t, err)
	require.Equal(t, 5, tree.NumLeaves())
	third := tree.Leaf(3).Bounds

	failing := testutil.IntegratorFunc(func(ctx context.Context, d density.Density, s *sample.Set) (sample.Measurement, error) {
		if d.(*density.Truncated).Truncation().Equal(third) {
			return sample.Measurement{}, testutil.ErrStub
		}
		return (&testutil.VolumeIntegrator{}).Integrate(ctx, d, s)
	})

	var (
		calls  atomic.Int64
		phases []Phase
	)
	res, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(5),
		WithExplorationSampler(fixedExplorer(explore, &calls)),
		WithSubspaceSampler(&testutil.GridSampler{N: 20}),
		WithIntegrator(failing),
		WithSeed(3),
		phaseRecorder(&phases),
	)
	require.Error(t, err)
	assert.Nil(t, res)

	var se *SubspaceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.ID)
	assert.ErrorIs(t, err, testutil.ErrStub)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, PhaseSamplingSubspaces, re.Phase)

	assert.Equal(t, []Phase{PhaseExploring, PhasePartitioning, PhaseTruncating, PhaseSamplingSubspaces, PhaseFailed}, phases)
}

func TestRun_ZeroPartitions(t *testing.T) {
	explore := testutil.NewRNG(4).GaussianSet(100, 2)
	var (
		calls  atomic.Int64
		phases []Phase
	)
	grid := &testutil.GridSampler{N: 10}
	integ := &testutil.VolumeIntegrator{}

	res, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(0),
		WithExplorationSampler(fixedExplorer(explore, &calls)),
		WithSubspaceSampler(grid),
		WithIntegrator(integ),
		phaseRecorder(&phases),
	)
	require.Error(t, err)
	assert.Nil(t, res)

	assert.ErrorIs(t, err, ErrInvalidPartitionConfig)
	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, PhasePartitioning, re.Phase)

	// Exploration ran; nothing was dispatched.
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 0, grid.Calls())
	assert.Equal(t, 0, integ.Calls())
	assert.Equal(t, []Phase{PhaseExploring, PhasePartitioning, PhaseFailed}, phases)
}

func TestRun_DegenerateExploration(t *testing.T) {
	var calls atomic.Int64
	_, err := Sample(t.Context(), stdNormal(t, 2),
		WithExplorationSampler(fixedExplorer(sample.NewSet(2), &calls)),
	)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	explore := testutil.NewRNG(5).GaussianSet(600, 2)

	run := func(workers int) *Result {
		var calls atomic.Int64
		res, err := Sample(t.Context(), stdNormal(t, 2),
			WithPartitions(6),
			WithExplorationSampler(fixedExplorer(explore, &calls)),
			WithSubspaceSampler(&testutil.GridSampler{N: 25}),
			WithIntegrator(&testutil.VolumeIntegrator{}),
			WithWorkers(workers),
			WithSeed(99),
		)
		require.NoError(t, err)
		return res
	}

	a, b := run(1), run(6)

	require.Equal(t, a.Samples.Len(), b.Samples.Len())
	for i := 0; i < a.Samples.Len(); i++ {
		assert.Equal(t, a.Samples.Vector(i), b.Samples.Vector(i))
		assert.Equal(t, a.Samples.Weight(i), b.Samples.Weight(i))
	}
	for i := range a.Info {
		assert.Equal(t, a.Info[i].IndexRange, b.Info[i].IndexRange)
	}
	assert.Equal(t, a.Integral, b.Integral)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRun_UnitCubeTransform(t *testing.T) {
	post := stdNormal(t, 2)
	post.Region = density.NewBounds([]float64{-5, -5}, []float64{5, 5})

	res, err := Sample(t.Context(), post,
		WithPartitions(4),
		WithTransform(density.UnitCube),
		WithExplorationSampler(&testutil.GridSampler{N: 400}),
		WithSubspaceSampler(&testutil.GridSampler{N: 20}),
		WithIntegrator(&testutil.VolumeIntegrator{}),
		WithSeed(11),
	)
	require.NoError(t, err)

	unit := density.NewBounds([]float64{0, 0}, []float64{1, 1})
	require.Equal(t, res.Samples.Len(), res.TransformedSamples.Len())
	for i := 0; i < res.Samples.Len(); i++ {
		u, x := res.TransformedSamples.Vector(i), res.Samples.Vector(i)
		assert.True(t, unit.Contains(u))
		assert.True(t, post.Region.Contains(x))
		assert.InDelta(t, -5+10*u[0], x[0], 1e-9)
		assert.InDelta(t, post.LogDensity(x), res.Samples.LogD(i), 1e-9)
		assert.Equal(t, res.TransformedSamples.Weight(i), res.Samples.Weight(i))
	}
}

func TestRun_ExtendBounds(t *testing.T) {
	support := density.NewBounds([]float64{-10, -10}, []float64{10, 10})
	post, err := density.NewUniform(support)
	require.NoError(t, err)

	var calls atomic.Int64
	res, err := Sample(t.Context(), post,
		WithPartitions(3),
		WithExtendBounds(true),
		WithExplorationSampler(fixedExplorer(testutil.NewRNG(6).GaussianSet(300, 2), &calls)),
		WithSubspaceSampler(&testutil.GridSampler{N: 10}),
		WithIntegrator(&testutil.VolumeIntegrator{}),
	)
	require.NoError(t, err)

	assert.True(t, res.Tree.Bounds().Equal(support))
	assert.InDelta(t, 400, res.Integral.Value, 1e-9)
}

func TestRun_UnsupportedDensity(t *testing.T) {
	var calls atomic.Int64
	_, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(2),
		WithExtendBounds(true),
		WithExplorationSampler(fixedExplorer(testutil.NewRNG(7).GaussianSet(200, 2), &calls)),
		WithSubspaceSampler(testutil.SamplerFunc(func(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error) {
			return testutil.NewRNG(1).GaussianSet(10, 2), nil
		})),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDensity)

	var se *SubspaceError
	assert.ErrorAs(t, err, &se)
}

func TestRun_TransformNeedsFiniteBounds(t *testing.T) {
	_, err := Sample(t.Context(), stdNormal(t, 1), WithTransform(density.UnitCube))
	assert.ErrorIs(t, err, ErrUnsupportedDensity)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, PhaseExploring, re.Phase)
}

func TestRun_NilPosterior(t *testing.T) {
	_, err := Sample(t.Context(), nil)
	assert.ErrorIs(t, err, ErrNilPosterior)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var calls atomic.Int64
	_, err := Sample(ctx, stdNormal(t, 2),
		WithExplorationSampler(fixedExplorer(testutil.NewRNG(1).GaussianSet(10, 2), &calls)),
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MemoryLimit(t *testing.T) {
	var calls atomic.Int64
	_, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(2),
		WithExplorationSampler(fixedExplorer(testutil.NewRNG(8).GaussianSet(200, 2), &calls)),
		WithSubspaceSampler(&testutil.GridSampler{N: 100}),
		WithIntegrator(&testutil.VolumeIntegrator{}),
		WithMemoryLimit(1024),
	)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
}

func TestRun_DispatchRate(t *testing.T) {
	var calls atomic.Int64
	res, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(3),
		WithExplorationSampler(fixedExplorer(testutil.NewRNG(9).GaussianSet(200, 2), &calls)),
		WithSubspaceSampler(&testutil.GridSampler{N: 5}),
		WithIntegrator(&testutil.VolumeIntegrator{}),
		WithDispatchRate(1000),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumSubspaces())
}

func TestRun_MetricsAndLogging(t *testing.T) {
	var (
		buf     bytes.Buffer
		calls   atomic.Int64
		metrics = &BasicMetricsCollector{}
	)
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Sample(t.Context(), stdNormal(t, 2),
		WithPartitions(4),
		WithExplorationSampler(fixedExplorer(testutil.NewRNG(10).GaussianSet(400, 2), &calls)),
		WithSubspaceSampler(&testutil.GridSampler{N: 5}),
		WithIntegrator(&testutil.VolumeIntegrator{}),
		WithMetricsCollector(metrics),
		WithLogger(logger),
	)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ExplorationCount)
	assert.Equal(t, int64(400), stats.ExplorationSamples)
	assert.Equal(t, int64(1), stats.PartitionCount)
	assert.Equal(t, int64(4), stats.PartitionLeaves)
	assert.Equal(t, int64(4), stats.SubspaceCount)
	assert.Equal(t, int64(20), stats.SubspaceSamples)
	assert.Equal(t, int64(0), stats.SubspaceErrors)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunErrors)

	out := buf.String()
	assert.Contains(t, out, `"msg":"run completed"`)
	assert.Contains(t, out, `"msg":"subspace completed"`)
	assert.Contains(t, out, `"run_id"`)
}

func TestRun_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end run in short mode")
	}

	post := stdNormal(t, 2)
	post.Region = density.NewBounds([]float64{-4, -4}, []float64{4, 4})

	mcmc := sampler.MustNew(sampler.Config{Chains: 2, Steps: 500, Burnin: 200})
	res, err := Sample(t.Context(), post,
		WithPartitions(4),
		WithExtendBounds(true),
		WithExplorationSampler(mcmc),
		WithSubspaceSampler(mcmc),
		WithIntegrator(integrator.MustNew(integrator.Config{Algorithm: integrator.Cubature})),
		WithSeed(2024),
	)
	require.NoError(t, err)

	// Mass of the standard normal inside [-4, 4]^2.
	want := math.Pow(math.Erf(4/math.Sqrt2), 2)
	assert.InDelta(t, want, res.Integral.Value, 1e-3)
	assert.InDelta(t, want, res.Samples.WeightSum(), 1e-3)

	for _, p := range res.Info {
		sub, err := res.SubspaceSamples(p.ID)
		require.NoError(t, err)
		assert.InDelta(t, p.Integral.Value, sub.WeightSum(), 1e-9)
	}

	mean := res.Samples.Mean()
	assert.InDelta(t, 0, mean[0], 0.2)
	assert.InDelta(t, 0, mean[1], 0.2)
}
