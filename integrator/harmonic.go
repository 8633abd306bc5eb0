package integrator

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

// HarmonicMeanIntegrator estimates Z from samples of f/Z using 1/Z = E[g/f], where g
// is the uniform density on a box of +-boxWidth standard deviations around the
// weighted sample mean, clipped to the density's bounds.
type HarmonicMeanIntegrator struct {
	boxWidth float64
}

var _ Integrator = (*HarmonicMeanIntegrator)(nil)

// Integrate implements Integrator.
func (h *HarmonicMeanIntegrator) Integrate(ctx context.Context, d density.Density, s *sample.Set) (sample.Measurement, error) {
	if s.Len() == 0 || s.WeightSum() == 0 {
		return sample.Measurement{}, ErrNoSamples
	}
	if err := ctx.Err(); err != nil {
		return sample.Measurement{}, err
	}

	mean, std := s.Mean(), s.Std()
	box := density.Bounds{Lo: make([]float64, len(mean)), Hi: make([]float64, len(mean))}
	for i := range mean {
		box.Lo[i] = mean[i] - h.boxWidth*std[i]
		box.Hi[i] = mean[i] + h.boxWidth*std[i]
	}
	box = box.Intersect(d.Bounds())
	logVol := math.Log(box.Volume())
	if math.IsInf(logVol, 0) || math.IsNaN(logVol) {
		return sample.Measurement{}, fmt.Errorf("%w: degenerate reference box %s", ErrNoSamples, box)
	}

	// lt_i = log(g(x_i) / f(x_i)) for samples inside the box.
	lts := make([]float64, s.Len())
	lmax := math.Inf(-1)
	inside := 0
	for i := range lts {
		lts[i] = math.Inf(-1)
		logd := s.LogD(i)
		if s.Weight(i) == 0 || math.IsInf(logd, 0) || math.IsNaN(logd) || !box.Contains(s.Vector(i)) {
			continue
		}
		lts[i] = -logVol - logd
		lmax = math.Max(lmax, lts[i])
		inside++
	}
	if inside == 0 {
		return sample.Measurement{}, ErrNoSamples
	}

	wsum := s.WeightSum()
	var m float64
	for i, lt := range lts {
		if !math.IsInf(lt, -1) {
			m += s.Weight(i) * math.Exp(lt-lmax)
		}
	}
	m /= wsum

	var v float64
	for i, lt := range lts {
		t := 0.0
		if !math.IsInf(lt, -1) {
			t = math.Exp(lt - lmax)
		}
		v += s.Weight(i) * (t - m) * (t - m)
	}
	v /= wsum

	z := math.Exp(-(math.Log(m) + lmax))
	rel := math.Sqrt(v/s.EffectiveSize()) / m
	return sample.Measurement{Value: z, Err: z * rel}, nil
}
