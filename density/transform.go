package density

import (
	"fmt"
	"math"
)

// TransformSpec selects the parameter space in which sampling takes place.
type TransformSpec int

const (
	// NoTransform samples in the original parameter space.
	NoTransform TransformSpec = iota
	// UnitCube maps finite support bounds affinely onto [0, 1]^Dim.
	UnitCube
)

func (s TransformSpec) String() string {
	switch s {
	case NoTransform:
		return "none"
	case UnitCube:
		return "unit-cube"
	default:
		return fmt.Sprintf("TransformSpec(%d)", int(s))
	}
}

// ParseTransformSpec parses the String form of a TransformSpec.
func ParseTransformSpec(s string) (TransformSpec, error) {
	switch s {
	case "", "none":
		return NoTransform, nil
	case "unit-cube", "unitcube":
		return UnitCube, nil
	}
	return 0, fmt.Errorf("unknown transform %q", s)
}

// Transform is an invertible map from the original space to a sampling space.
type Transform interface {
	// Forward maps an original-space point to sampling space.
	Forward(x []float64) []float64
	// Inverse maps a sampling-space point back to original space.
	Inverse(u []float64) []float64
	// LogAbsDetJacobian returns log|det dForward/dx| at x.
	LogAbsDetJacobian(x []float64) float64
}

// ApplyTransform returns d expressed in the space selected by spec together with the
// transform used. For NoTransform the density is returned unchanged.
func ApplyTransform(spec TransformSpec, d Density) (Density, Transform, error) {
	switch spec {
	case NoTransform:
		return d, Identity{}, nil
	case UnitCube:
		b := d.Bounds()
		if !b.Finite() {
			return nil, nil, fmt.Errorf("%w: unit-cube transform needs finite bounds, got %s", ErrUnsupportedDensity, b)
		}
		if !(b.Volume() > 0) {
			return nil, nil, fmt.Errorf("%w: unit-cube transform needs non-empty bounds, got %s", ErrUnsupportedDensity, b)
		}
		t := NewAffine(b)
		return &Transformed{base: d, t: t, bounds: t.ImageBounds()}, t, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown transform %s", ErrUnsupportedDensity, spec)
	}
}

// Identity is the identity transform.
type Identity struct{}

// Forward implements Transform.
func (Identity) Forward(x []float64) []float64 { return append([]float64(nil), x...) }

// Inverse implements Transform.
func (Identity) Inverse(u []float64) []float64 { return append([]float64(nil), u...) }

// LogAbsDetJacobian implements Transform.
func (Identity) LogAbsDetJacobian([]float64) float64 { return 0 }

// Affine maps a finite rectangle onto the unit cube.
type Affine struct {
	lo, width []float64
	ladj      float64
}

// NewAffine creates the affine map from b onto [0, 1]^Dim. b must be finite.
func NewAffine(b Bounds) *Affine {
	a := &Affine{lo: make([]float64, b.Dim()), width: make([]float64, b.Dim())}
	for d := range b.Lo {
		a.lo[d] = b.Lo[d]
		a.width[d] = b.Hi[d] - b.Lo[d]
		a.ladj -= math.Log(a.width[d])
	}
	return a
}

// Forward implements Transform.
func (a *Affine) Forward(x []float64) []float64 {
	u := make([]float64, len(x))
	for d := range x {
		u[d] = (x[d] - a.lo[d]) / a.width[d]
	}
	return u
}

// Inverse implements Transform.
func (a *Affine) Inverse(u []float64) []float64 {
	x := make([]float64, len(u))
	for d := range u {
		x[d] = a.lo[d] + u[d]*a.width[d]
	}
	return x
}

// LogAbsDetJacobian implements Transform. The Jacobian is constant.
func (a *Affine) LogAbsDetJacobian([]float64) float64 { return a.ladj }

// ImageBounds returns the unit cube.
func (a *Affine) ImageBounds() Bounds {
	b := Bounds{Lo: make([]float64, len(a.lo)), Hi: make([]float64, len(a.lo))}
	for d := range b.Hi {
		b.Hi[d] = 1
	}
	return b
}

// Transformed is a density pushed forward through a Transform.
type Transformed struct {
	base   Density
	t      Transform
	bounds Bounds
}

var _ Density = (*Transformed)(nil)

// Dim implements Density.
func (t *Transformed) Dim() int { return t.base.Dim() }

// LogDensity implements Density: p_u(u) = p_x(x) / |det dForward/dx|.
func (t *Transformed) LogDensity(u []float64) float64 {
	if !t.bounds.Contains(u) {
		return math.Inf(-1)
	}
	x := t.t.Inverse(u)
	return t.base.LogDensity(x) - t.t.LogAbsDetJacobian(x)
}

// Bounds implements Density.
func (t *Transformed) Bounds() Bounds { return t.bounds.Clone() }
