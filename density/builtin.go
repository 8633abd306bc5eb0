package density

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var log2Pi = math.Log(2 * math.Pi)

// Normal is a multivariate normal with diagonal covariance.
type Normal struct {
	Mu     []float64
	Sigma  []float64
	Region Bounds // support; zero value means unbounded
}

var _ Density = (*Normal)(nil)

// NewNormal creates an unbounded diagonal normal.
func NewNormal(mu, sigma []float64) (*Normal, error) {
	if len(mu) != len(sigma) {
		return nil, &DimensionMismatchError{Expected: len(mu), Actual: len(sigma)}
	}
	for _, s := range sigma {
		if !(s > 0) {
			return nil, fmt.Errorf("normal: sigma must be positive, got %v", s)
		}
	}
	return &Normal{Mu: slices.Clone(mu), Sigma: slices.Clone(sigma)}, nil
}

// Dim implements Density.
func (n *Normal) Dim() int { return len(n.Mu) }

// LogDensity implements Density. The density is normalised on R^Dim.
func (n *Normal) LogDensity(v []float64) float64 {
	if n.Region.Dim() > 0 && !n.Region.Contains(v) {
		return math.Inf(-1)
	}
	var l float64
	for d, x := range v {
		z := (x - n.Mu[d]) / n.Sigma[d]
		l -= 0.5*z*z + math.Log(n.Sigma[d]) + 0.5*log2Pi
	}
	return l
}

// Bounds implements Density.
func (n *Normal) Bounds() Bounds {
	if n.Region.Dim() > 0 {
		return n.Region.Clone()
	}
	return Unbounded(n.Dim())
}

// Uniform is the normalised uniform density on a finite rectangle.
type Uniform struct {
	Region Bounds
}

var _ Density = (*Uniform)(nil)

// NewUniform creates a uniform density on b.
func NewUniform(b Bounds) (*Uniform, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !b.Finite() {
		return nil, fmt.Errorf("%w: uniform density needs finite bounds", ErrUnsupportedDensity)
	}
	return &Uniform{Region: b.Clone()}, nil
}

// Dim implements Density.
func (u *Uniform) Dim() int { return u.Region.Dim() }

// LogDensity implements Density.
func (u *Uniform) LogDensity(v []float64) float64 {
	if !u.Region.Contains(v) {
		return math.Inf(-1)
	}
	return -math.Log(u.Region.Volume())
}

// Bounds implements Density.
func (u *Uniform) Bounds() Bounds { return u.Region.Clone() }

// Mixture is a weighted sum of component densities sharing one dimension.
// The mixture support is the smallest rectangle covering all component supports.
type Mixture struct {
	components []Density
	logw       []float64
	dim        int
}

var _ Density = (*Mixture)(nil)

// NewMixture creates a mixture. Weights are normalised to sum to one.
func NewMixture(components []Density, weights []float64) (*Mixture, error) {
	if len(components) == 0 {
		return nil, errors.New("mixture: no components")
	}
	if len(weights) != len(components) {
		return nil, fmt.Errorf("mixture: %d components but %d weights", len(components), len(weights))
	}
	dim := components[0].Dim()
	var total float64
	for i, c := range components {
		if c.Dim() != dim {
			return nil, &DimensionMismatchError{Expected: dim, Actual: c.Dim()}
		}
		if !(weights[i] > 0) {
			return nil, fmt.Errorf("mixture: weight %d must be positive, got %v", i, weights[i])
		}
		total += weights[i]
	}
	m := &Mixture{components: slices.Clone(components), logw: make([]float64, len(weights)), dim: dim}
	for i, w := range weights {
		m.logw[i] = math.Log(w / total)
	}
	return m, nil
}

// Dim implements Density.
func (m *Mixture) Dim() int { return m.dim }

// LogDensity implements Density.
func (m *Mixture) LogDensity(v []float64) float64 {
	terms := make([]float64, len(m.components))
	for i, c := range m.components {
		terms[i] = m.logw[i] + c.LogDensity(v)
	}
	return LogSumExp(terms)
}

// Bounds implements Density.
func (m *Mixture) Bounds() Bounds {
	out := m.components[0].Bounds()
	for _, c := range m.components[1:] {
		b := c.Bounds()
		for d := range out.Lo {
			out.Lo[d] = math.Min(out.Lo[d], b.Lo[d])
			out.Hi[d] = math.Max(out.Hi[d], b.Hi[d])
		}
	}
	return out
}

// Func adapts a closure to the Density interface.
type Func struct {
	Region Bounds
	Fn     func(v []float64) float64
}

var _ Density = (*Func)(nil)

// Dim implements Density.
func (f *Func) Dim() int { return f.Region.Dim() }

// LogDensity implements Density. Points outside Region evaluate to -Inf.
func (f *Func) LogDensity(v []float64) float64 {
	if !f.Region.Contains(v) {
		return math.Inf(-1)
	}
	return f.Fn(v)
}

// Bounds implements Density.
func (f *Func) Bounds() Bounds { return f.Region.Clone() }

// LogSumExp returns log(sum(exp(xs))) without overflow. Returns -Inf for an empty
// slice or when all terms are -Inf.
func LogSumExp(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	if math.IsInf(m, 0) {
		return m
	}
	var s float64
	for _, x := range xs {
		s += math.Exp(x - m)
	}
	return m + math.Log(s)
}
