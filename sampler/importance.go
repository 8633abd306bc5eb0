package sampler

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

// ImportanceSampler draws uniformly over the density's bounds and weights each draw
// by its density relative to the best draw. Draws with zero density are dropped.
type ImportanceSampler struct {
	draws int
}

var _ Sampler = (*ImportanceSampler)(nil)

// Sample implements Sampler.
func (s *ImportanceSampler) Sample(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error) {
	b := d.Bounds()
	if !b.Finite() {
		return nil, fmt.Errorf("%w: importance sampling needs finite bounds, got %s", density.ErrUnsupportedDensity, b)
	}

	dim := d.Dim()
	xs := make([]float64, 0, s.draws*dim)
	logds := make([]float64, 0, s.draws)
	maxLogD := math.Inf(-1)

	for i := 0; i < s.draws; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := make([]float64, dim)
		for j := range x {
			x[j] = b.Lo[j] + rng.Float64()*(b.Hi[j]-b.Lo[j])
		}
		logd := d.LogDensity(x)
		if math.IsInf(logd, -1) || math.IsNaN(logd) {
			continue
		}
		xs = append(xs, x...)
		logds = append(logds, logd)
		maxLogD = math.Max(maxLogD, logd)
	}

	out := sample.NewSetWithCapacity(dim, len(logds))
	for i, logd := range logds {
		err := out.Push(sample.Sample{
			V:      xs[i*dim : (i+1)*dim],
			LogD:   logd,
			Weight: math.Exp(logd - maxLogD),
			Info:   sample.Info{Step: i},
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
