package sampler

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/bayespart/density"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundedNormal(t *testing.T) density.Density {
	t.Helper()
	n, err := density.NewNormal([]float64{1, -1}, []float64{0.5, 1})
	require.NoError(t, err)
	n.Region = density.NewBounds([]float64{-5, -6}, []float64{6, 4})
	return n
}

func TestNew(t *testing.T) {
	s, err := New(Config{Algorithm: Metropolis})
	require.NoError(t, err)
	assert.IsType(t, &MetropolisSampler{}, s)

	s, err = New(Config{Algorithm: Importance})
	require.NoError(t, err)
	assert.IsType(t, &ImportanceSampler{}, s)

	_, err = New(Config{Algorithm: Algorithm(42)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	a, err := ParseAlgorithm("importance")
	require.NoError(t, err)
	assert.Equal(t, Importance, a)
	assert.Equal(t, "importance", a.String())
}

func TestMetropolis(t *testing.T) {
	cfg := Config{Algorithm: Metropolis, Chains: 4, Steps: 4000, Burnin: 1000}
	s := MustNew(cfg)

	set, err := s.Sample(context.Background(), boundedNormal(t), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.InDelta(t, float64(cfg.Chains*cfg.Steps), set.WeightSum(), 1e-9, "weights are step multiplicities")

	mean := set.Mean()
	assert.InDelta(t, 1.0, mean[0], 0.15)
	assert.InDelta(t, -1.0, mean[1], 0.25)

	std := set.Std()
	assert.InDelta(t, 0.5, std[0], 0.15)
	assert.InDelta(t, 1.0, std[1], 0.25)

	for i := 0; i < set.Len(); i++ {
		assert.False(t, math.IsInf(set.LogD(i), 0))
	}
}

func TestMetropolis_Deterministic(t *testing.T) {
	s := MustNew(Config{Chains: 2, Steps: 200, Burnin: 100})
	d := boundedNormal(t)

	a, err := s.Sample(context.Background(), d, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	b, err := s.Sample(context.Background(), d, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestMetropolis_StaysInTruncation(t *testing.T) {
	tr, err := density.Truncate(boundedNormal(t), density.NewBounds([]float64{0, 0}, []float64{0.5, 0.5}))
	require.NoError(t, err)

	set, err := MustNew(Config{Chains: 2, Steps: 500}).Sample(context.Background(), tr, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	b := tr.Bounds()
	for i := 0; i < set.Len(); i++ {
		require.True(t, b.Contains(set.Vector(i)))
	}
}

func TestMetropolis_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MustNew(Config{}).Sample(ctx, boundedNormal(t), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetropolis_InitFailed(t *testing.T) {
	d := &density.Func{
		Region: density.NewBounds([]float64{0}, []float64{1}),
		Fn:     func([]float64) float64 { return math.Inf(-1) },
	}

	_, err := MustNew(Config{}).Sample(context.Background(), d, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInitFailed)
}

func TestImportance(t *testing.T) {
	s := MustNew(Config{Algorithm: Importance, Draws: 20000})

	set, err := s.Sample(context.Background(), boundedNormal(t), rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	assert.Equal(t, 20000, set.Len())
	mean := set.Mean()
	assert.InDelta(t, 1.0, mean[0], 0.1)
	assert.InDelta(t, -1.0, mean[1], 0.1)

	for i := 0; i < set.Len(); i++ {
		w := set.Weight(i)
		assert.True(t, w >= 0 && w <= 1)
	}
}

func TestImportance_Unbounded(t *testing.T) {
	n, err := density.NewNormal([]float64{0}, []float64{1})
	require.NoError(t, err)

	_, err = MustNew(Config{Algorithm: Importance}).Sample(context.Background(), n, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, density.ErrUnsupportedDensity)
}
