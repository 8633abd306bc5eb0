package subspace

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func truncatedNormal(t *testing.T) *density.Truncated {
	t.Helper()
	n, err := density.NewNormal([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	tr, err := density.Truncate(n, density.NewBounds([]float64{0, 0}, []float64{2, 2}))
	require.NoError(t, err)
	return tr
}

func TestWorker_Run(t *testing.T) {
	w := NewWorker(&testutil.GridSampler{N: 50}, &testutil.VolumeIntegrator{})

	res, err := w.Run(t.Context(), 3, 2, truncatedNormal(t), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 50, res.Samples.Len())
	assert.InDelta(t, 4.0, res.Integral.Value, 1e-12)
	assert.InDelta(t, res.Integral.Value, res.Samples.WeightSum(), 1e-9)

	for i := 0; i < res.Samples.Len(); i++ {
		assert.Equal(t, 3, res.Samples.Info(i).Subspace)
		assert.InDelta(t, 4.0/50, res.Samples.Weight(i), 1e-12)
	}

	p := res.Provenance
	assert.Equal(t, 3, p.ID)
	assert.Equal(t, 2, p.WorkerID)
	assert.Positive(t, p.Threads)
	assert.Equal(t, 50, p.NumSamples)
	assert.InDelta(t, 50.0, p.WeightSum, 1e-12)
	assert.Equal(t, res.Integral, p.Integral)
	assert.False(t, p.SamplingWall.End.Before(p.SamplingWall.Start))
	assert.False(t, p.IntegrationWall.Start.Before(p.SamplingWall.End))
	assert.GreaterOrEqual(t, p.IntegrationWall.Duration(), time.Duration(0))
}

func TestWorker_SamplingFailure(t *testing.T) {
	w := NewWorker(testutil.FailingSampler{}, &testutil.VolumeIntegrator{})

	_, err := w.Run(t.Context(), 5, 1, truncatedNormal(t), rand.New(rand.NewSource(1)))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 5, se.ID)
	assert.Equal(t, StageSampling, se.Stage)
	assert.ErrorIs(t, err, testutil.ErrStub)
}

func TestWorker_IntegrationFailure(t *testing.T) {
	w := NewWorker(&testutil.GridSampler{N: 10}, testutil.FailingIntegrator{})

	_, err := w.Run(t.Context(), 2, 1, truncatedNormal(t), rand.New(rand.NewSource(1)))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageIntegration, se.Stage)
	assert.Contains(t, err.Error(), "subspace 2: integration")
}

func TestWorker_ZeroWeight(t *testing.T) {
	zero := testutil.SamplerFunc(func(_ context.Context, d density.Density, _ *rand.Rand) (*sample.Set, error) {
		s := sample.NewSet(d.Dim())
		if err := s.Push(sample.Sample{V: []float64{1, 1}, Weight: 0}); err != nil {
			return nil, err
		}
		return s, nil
	})
	w := NewWorker(zero, testutil.ConstIntegrator{M: sample.Measurement{Value: 1}})

	_, err := w.Run(t.Context(), 1, 1, truncatedNormal(t), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEmptySubspace)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageReweighting, se.Stage)
}

func TestWorker_Incomplete(t *testing.T) {
	_, err := (&Worker{}).Run(t.Context(), 1, 1, truncatedNormal(t), rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestReweight(t *testing.T) {
	s := sample.NewSet(1)
	for i, w := range []float64{1, 2, 3, 4} {
		require.NoError(t, s.Push(sample.Sample{V: []float64{float64(i)}, Weight: w}))
	}

	out, sum, err := Reweight(s, 7, sample.Measurement{Value: 5})
	require.NoError(t, err)

	assert.Equal(t, 10.0, sum)
	assert.InDelta(t, 5.0, out.WeightSum(), 1e-12)
	assert.InDelta(t, 2.0, out.Weight(3), 1e-12)
	assert.Equal(t, 7, out.Info(0).Subspace)

	// Input is untouched.
	assert.Equal(t, 10.0, s.WeightSum())
	assert.Equal(t, 0, s.Info(0).Subspace)
}
