package sampler

import (
	"context"
	"math"
	"math/rand"
	"slices"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

const (
	maxInitTries    = 1000
	tuneInterval    = 50
	targetAcceptLo  = 0.15
	targetAcceptHi  = 0.35
	tuneFactor      = 1.25
	ctxCheckEvery   = 256
	unboundedSpread = 1.0
)

// MetropolisSampler is a random-walk Metropolis sampler with a diagonal Gaussian
// proposal whose width is tuned during burn-in.
//
// Repeated states are collapsed into a single sample whose weight is the number of
// consecutive steps the chain stayed there.
type MetropolisSampler struct {
	cfg Config
}

var _ Sampler = (*MetropolisSampler)(nil)

// Sample implements Sampler.
func (m *MetropolisSampler) Sample(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error) {
	dim := d.Dim()
	b := d.Bounds()
	out := sample.NewSetWithCapacity(dim, m.cfg.Chains*m.cfg.Steps/4)

	scale := make([]float64, dim)
	for i := range scale {
		w := b.Hi[i] - b.Lo[i]
		if math.IsInf(w, 0) {
			scale[i] = m.cfg.Scale * unboundedSpread
		} else {
			scale[i] = m.cfg.Scale * w
		}
	}

	for chain := 0; chain < m.cfg.Chains; chain++ {
		if err := m.runChain(ctx, d, b, rng, chain, slices.Clone(scale), out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *MetropolisSampler) runChain(ctx context.Context, d density.Density, b density.Bounds, rng *rand.Rand, chain int, scale []float64, out *sample.Set) error {
	x, logd, err := initialPoint(d, b, rng)
	if err != nil {
		return err
	}

	dim := len(x)
	prop := make([]float64, dim)
	factor := 1.0
	accepted := 0

	weight := 0.0
	first := 0
	flush := func() error {
		if weight == 0 {
			return nil
		}
		return out.Push(sample.Sample{
			V:      x,
			LogD:   logd,
			Weight: weight,
			Info:   sample.Info{Chain: chain, Step: first},
		})
	}

	total := m.cfg.Burnin + m.cfg.Steps
	for step := 0; step < total; step++ {
		if step%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		for i := range prop {
			prop[i] = x[i] + factor*scale[i]*rng.NormFloat64()
		}
		propLogD := d.LogDensity(prop)

		accept := !math.IsInf(propLogD, -1) && !math.IsNaN(propLogD) &&
			(propLogD >= logd || rng.Float64() < math.Exp(propLogD-logd))

		if step < m.cfg.Burnin {
			if accept {
				x, logd = slices.Clone(prop), propLogD
				accepted++
			}
			if (step+1)%tuneInterval == 0 {
				rate := float64(accepted) / tuneInterval
				switch {
				case rate < targetAcceptLo:
					factor /= tuneFactor
				case rate > targetAcceptHi:
					factor *= tuneFactor
				}
				accepted = 0
			}
			continue
		}

		if accept {
			if err := flush(); err != nil {
				return err
			}
			x, logd = slices.Clone(prop), propLogD
			weight = 1
			first = step - m.cfg.Burnin
		} else {
			weight++
		}
	}
	return flush()
}

// initialPoint draws a start point with finite log-density, uniformly inside finite
// bounds and around the origin (clamped into the support) otherwise.
func initialPoint(d density.Density, b density.Bounds, rng *rand.Rand) ([]float64, float64, error) {
	x := make([]float64, d.Dim())
	for try := 0; try < maxInitTries; try++ {
		for i := range x {
			lo, hi := b.Lo[i], b.Hi[i]
			switch {
			case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
				x[i] = lo + rng.Float64()*(hi-lo)
			default:
				x[i] = math.Min(math.Max(rng.NormFloat64()*unboundedSpread, lo), hi)
			}
		}
		logd := d.LogDensity(x)
		if !math.IsInf(logd, 0) && !math.IsNaN(logd) {
			return x, logd, nil
		}
	}
	return nil, 0, ErrInitFailed
}
