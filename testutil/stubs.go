package testutil

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

// ErrStub is the default error returned by failing stubs.
var ErrStub = errors.New("stub failure")

// GridSampler draws N points uniformly inside the bounds of the density it samples.
// Every point has weight 1 and the density's log-density. The bounds must be finite.
type GridSampler struct {
	N int

	calls atomic.Int64
}

// Sample implements sampler.Sampler.
func (g *GridSampler) Sample(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error) {
	g.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := d.Bounds()
	if !b.Finite() {
		return nil, density.ErrUnsupportedDensity
	}

	n := g.N
	if n <= 0 {
		n = 100
	}
	s := sample.NewSetWithCapacity(d.Dim(), n)
	for i := 0; i < n; i++ {
		v := make([]float64, d.Dim())
		for k := range v {
			v[k] = b.Lo[k] + rng.Float64()*(b.Hi[k]-b.Lo[k])
		}
		if err := s.Push(sample.Sample{V: v, LogD: d.LogDensity(v), Weight: 1, Info: sample.Info{Step: i}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Calls returns how many times Sample was called.
func (g *GridSampler) Calls() int { return int(g.calls.Load()) }

// VolumeIntegrator returns the volume of the density's bounds with a 1% error.
type VolumeIntegrator struct {
	calls atomic.Int64
}

// Integrate implements integrator.Integrator.
func (v *VolumeIntegrator) Integrate(ctx context.Context, d density.Density, _ *sample.Set) (sample.Measurement, error) {
	v.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return sample.Measurement{}, err
	}
	vol := d.Bounds().Volume()
	if math.IsInf(vol, 0) {
		return sample.Measurement{}, density.ErrUnsupportedDensity
	}
	return sample.Measurement{Value: vol, Err: vol / 100}, nil
}

// Calls returns how many times Integrate was called.
func (v *VolumeIntegrator) Calls() int { return int(v.calls.Load()) }

// SamplerFunc adapts a function to the sampler.Sampler interface.
type SamplerFunc func(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error)

// Sample implements sampler.Sampler.
func (f SamplerFunc) Sample(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error) {
	return f(ctx, d, rng)
}

// IntegratorFunc adapts a function to the integrator.Integrator interface.
type IntegratorFunc func(ctx context.Context, d density.Density, s *sample.Set) (sample.Measurement, error)

// Integrate implements integrator.Integrator.
func (f IntegratorFunc) Integrate(ctx context.Context, d density.Density, s *sample.Set) (sample.Measurement, error) {
	return f(ctx, d, s)
}

// ConstIntegrator always returns M.
type ConstIntegrator struct {
	M sample.Measurement
}

// Integrate implements integrator.Integrator.
func (c ConstIntegrator) Integrate(context.Context, density.Density, *sample.Set) (sample.Measurement, error) {
	return c.M, nil
}

// FailingSampler always fails with Err (ErrStub if nil).
type FailingSampler struct {
	Err error
}

// Sample implements sampler.Sampler.
func (f FailingSampler) Sample(context.Context, density.Density, *rand.Rand) (*sample.Set, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, ErrStub
}

// FailingIntegrator always fails with Err (ErrStub if nil).
type FailingIntegrator struct {
	Err error
}

// Integrate implements integrator.Integrator.
func (f FailingIntegrator) Integrate(context.Context, density.Density, *sample.Set) (sample.Measurement, error) {
	if f.Err != nil {
		return sample.Measurement{}, f.Err
	}
	return sample.Measurement{}, ErrStub
}
