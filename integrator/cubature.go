package integrator

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

const ctxCheckEvery = 1024

// CubatureIntegrator integrates with the composite midpoint rule on n^d and (2n)^d
// grids. The finer estimate is returned; the error is |I(2n) - I(n)| / 3.
type CubatureIntegrator struct {
	maxEvals int
}

var _ Integrator = (*CubatureIntegrator)(nil)

// Integrate implements Integrator. The samples are not used.
func (c *CubatureIntegrator) Integrate(ctx context.Context, d density.Density, _ *sample.Set) (sample.Measurement, error) {
	b := d.Bounds()
	if !b.Finite() {
		return sample.Measurement{}, fmt.Errorf("%w: cubature needs finite bounds, got %s", density.ErrUnsupportedDensity, b)
	}
	if b.Volume() == 0 {
		return sample.Measurement{}, nil
	}

	n, err := c.resolution(d.Dim())
	if err != nil {
		return sample.Measurement{}, err
	}

	coarse, err := midpoint(ctx, d, b, n)
	if err != nil {
		return sample.Measurement{}, err
	}
	fine, err := midpoint(ctx, d, b, 2*n)
	if err != nil {
		return sample.Measurement{}, err
	}

	return sample.Measurement{Value: fine, Err: math.Abs(fine-coarse) / 3}, nil
}

// resolution returns the coarse grid size per dimension that keeps both grids within
// the evaluation budget.
func (c *CubatureIntegrator) resolution(dim int) (int, error) {
	per := float64(c.maxEvals) / (1 + math.Pow(2, float64(dim)))
	if per < 1 {
		return 0, fmt.Errorf("%w: %d dimensions exceed a cubature budget of %d evaluations", density.ErrUnsupportedDensity, dim, c.maxEvals)
	}
	n := int(math.Floor(math.Pow(per, 1/float64(dim)) + 1e-9))
	return max(n, 1), nil
}

func midpoint(ctx context.Context, d density.Density, b density.Bounds, n int) (float64, error) {
	dim := b.Dim()
	h := make([]float64, dim)
	logCell := 0.0
	for i := range h {
		h[i] = (b.Hi[i] - b.Lo[i]) / float64(n)
		logCell += math.Log(h[i])
	}

	idx := make([]int, dim)
	x := make([]float64, dim)
	var acc lse
	for count := 0; ; count++ {
		if count%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		for i := range x {
			x[i] = b.Lo[i] + (float64(idx[i])+0.5)*h[i]
		}
		acc.add(d.LogDensity(x))

		// Odometer increment over the grid.
		k := 0
		for ; k < dim; k++ {
			idx[k]++
			if idx[k] < n {
				break
			}
			idx[k] = 0
		}
		if k == dim {
			break
		}
	}
	return math.Exp(acc.value() + logCell), nil
}

// lse accumulates log(sum(exp(x))) in a single pass.
type lse struct {
	max float64
	sum float64
	set bool
}

func (a *lse) add(x float64) {
	if math.IsNaN(x) || math.IsInf(x, -1) {
		return
	}
	if !a.set {
		a.max, a.sum, a.set = x, 1, true
		return
	}
	if x <= a.max {
		a.sum += math.Exp(x - a.max)
		return
	}
	a.sum = a.sum*math.Exp(a.max-x) + 1
	a.max = x
}

func (a *lse) value() float64 {
	if !a.set {
		return math.Inf(-1)
	}
	return a.max + math.Log(a.sum)
}
