package density

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedDensity is returned when an operation needs properties the density
// does not have, e.g. finite support bounds.
var ErrUnsupportedDensity = errors.New("unsupported density")

// DimensionMismatchError indicates that bounds or a point disagree with a density's
// dimensionality.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Density is an unnormalised log-density over R^Dim with rectangular support.
//
// Implementations must be safe for concurrent evaluation: the same posterior is read
// by every subspace worker at once.
type Density interface {
	// Dim returns the number of parameters.
	Dim() int
	// LogDensity returns the log-density at v, or -Inf where the density is zero.
	LogDensity(v []float64) float64
	// Bounds returns the support of the density.
	Bounds() Bounds
}

// Truncated is a density restricted to a rectangle. Outside the rectangle it
// evaluates to -Inf (zero probability).
type Truncated struct {
	base   Density
	bounds Bounds
}

var _ Density = (*Truncated)(nil)

// Truncate restricts d to b. It does not modify d.
func Truncate(d Density, b Bounds) (*Truncated, error) {
	if b.Dim() != d.Dim() {
		return nil, &DimensionMismatchError{Expected: d.Dim(), Actual: b.Dim()}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Truncated{base: d, bounds: b.Clone()}, nil
}

// Dim implements Density.
func (t *Truncated) Dim() int { return t.base.Dim() }

// LogDensity implements Density.
func (t *Truncated) LogDensity(v []float64) float64 {
	if !t.bounds.Contains(v) {
		return math.Inf(-1)
	}
	return t.base.LogDensity(v)
}

// Bounds returns the intersection of the base support and the truncation rectangle.
func (t *Truncated) Bounds() Bounds {
	return t.base.Bounds().Intersect(t.bounds)
}

// Truncation returns the truncation rectangle as given to Truncate.
func (t *Truncated) Truncation() Bounds { return t.bounds.Clone() }

// Base returns the untruncated density.
func (t *Truncated) Base() Density { return t.base }
