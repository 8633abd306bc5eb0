package integrator

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scaledNormal(t *testing.T, logZ float64) density.Density {
	t.Helper()
	n, err := density.NewNormal([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	return &density.Func{
		Region: density.NewBounds([]float64{-8, -8}, []float64{8, 8}),
		Fn:     func(v []float64) float64 { return n.LogDensity(v) + logZ },
	}
}

func TestNew(t *testing.T) {
	i, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &CubatureIntegrator{}, i)

	i, err = New(Config{Algorithm: HarmonicMean})
	require.NoError(t, err)
	assert.IsType(t, &HarmonicMeanIntegrator{}, i)

	_, err = New(Config{Algorithm: Algorithm(9)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	a, err := ParseAlgorithm("hm")
	require.NoError(t, err)
	assert.Equal(t, HarmonicMean, a)
}

func TestCubature(t *testing.T) {
	tests := []struct {
		name string
		logZ float64
	}{
		{"unit", 0},
		{"large", 500},
		{"small", -300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MustNew(Config{}).Integrate(context.Background(), scaledNormal(t, tt.logZ), nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.logZ, math.Log(m.Value), 1e-3)
			assert.Less(t, m.Err/m.Value, 1e-2)
		})
	}
}

func TestCubature_Truncated(t *testing.T) {
	tr, err := density.Truncate(scaledNormal(t, 0), density.NewBounds([]float64{0, 0}, []float64{8, 8}))
	require.NoError(t, err)

	m, err := MustNew(Config{}).Integrate(context.Background(), tr, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, m.Value, 1e-3)
}

func TestCubature_Unsupported(t *testing.T) {
	n, err := density.NewNormal([]float64{0}, []float64{1})
	require.NoError(t, err)

	_, err = MustNew(Config{}).Integrate(context.Background(), n, nil)
	assert.ErrorIs(t, err, density.ErrUnsupportedDensity)

	wide, err := density.NewUniform(density.NewBounds(make([]float64, 20), onesN(20)))
	require.NoError(t, err)
	_, err = MustNew(Config{MaxEvals: 1000}).Integrate(context.Background(), wide, nil)
	assert.ErrorIs(t, err, density.ErrUnsupportedDensity)
}

func TestCubature_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MustNew(Config{}).Integrate(ctx, scaledNormal(t, 0), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHarmonicMean(t *testing.T) {
	d := scaledNormal(t, 3)
	s, err := sampler.MustNew(sampler.Config{Algorithm: sampler.Importance, Draws: 50000}).
		Sample(context.Background(), d, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	m, err := MustNew(Config{Algorithm: HarmonicMean}).Integrate(context.Background(), d, s)
	require.NoError(t, err)

	assert.InDelta(t, math.Exp(3), m.Value, 0.1*math.Exp(3))
	assert.Greater(t, m.Err, 0.0)
}

func TestHarmonicMean_NoSamples(t *testing.T) {
	_, err := MustNew(Config{Algorithm: HarmonicMean}).Integrate(context.Background(), scaledNormal(t, 0), sample.NewSet(2))
	assert.ErrorIs(t, err, ErrNoSamples)
}

func onesN(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
