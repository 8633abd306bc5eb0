package density

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/bayespart/sample"
)

// Bounds is an axis-aligned hyper-rectangle [Lo, Hi] per dimension.
// Entries may be ±Inf for unbounded directions.
type Bounds struct {
	Lo []float64 `json:"lo"`
	Hi []float64 `json:"hi"`
}

// NewBounds creates bounds from copies of lo and hi.
func NewBounds(lo, hi []float64) Bounds {
	return Bounds{Lo: slices.Clone(lo), Hi: slices.Clone(hi)}
}

// Unbounded returns (-Inf, +Inf) in every dimension.
func Unbounded(dim int) Bounds {
	b := Bounds{Lo: make([]float64, dim), Hi: make([]float64, dim)}
	for d := 0; d < dim; d++ {
		b.Lo[d] = math.Inf(-1)
		b.Hi[d] = math.Inf(1)
	}
	return b
}

// Dim returns the number of dimensions.
func (b Bounds) Dim() int { return len(b.Lo) }

// Validate checks that Lo and Hi have the same length and Lo <= Hi everywhere.
func (b Bounds) Validate() error {
	if len(b.Lo) != len(b.Hi) {
		return fmt.Errorf("bounds: lo has %d entries, hi has %d", len(b.Lo), len(b.Hi))
	}
	for d := range b.Lo {
		if math.IsNaN(b.Lo[d]) || math.IsNaN(b.Hi[d]) || b.Lo[d] > b.Hi[d] {
			return fmt.Errorf("bounds: invalid interval [%v, %v] in dimension %d", b.Lo[d], b.Hi[d], d)
		}
	}
	return nil
}

// Contains reports whether v lies in the closed rectangle.
func (b Bounds) Contains(v []float64) bool {
	if len(v) != len(b.Lo) {
		return false
	}
	for d, x := range v {
		if x < b.Lo[d] || x > b.Hi[d] {
			return false
		}
	}
	return true
}

// Finite reports whether every edge is finite.
func (b Bounds) Finite() bool {
	for d := range b.Lo {
		if math.IsInf(b.Lo[d], 0) || math.IsInf(b.Hi[d], 0) {
			return false
		}
	}
	return true
}

// Volume returns the product of the edge lengths. Infinite bounds yield +Inf.
func (b Bounds) Volume() float64 {
	v := 1.0
	for d := range b.Lo {
		v *= b.Hi[d] - b.Lo[d]
	}
	return v
}

// Intersect returns the intersection of b and o. Empty intersections yield
// degenerate intervals with Lo == Hi.
func (b Bounds) Intersect(o Bounds) Bounds {
	out := Bounds{Lo: make([]float64, len(b.Lo)), Hi: make([]float64, len(b.Hi))}
	for d := range b.Lo {
		out.Lo[d] = math.Max(b.Lo[d], o.Lo[d])
		out.Hi[d] = math.Min(b.Hi[d], o.Hi[d])
		if out.Hi[d] < out.Lo[d] {
			out.Hi[d] = out.Lo[d]
		}
	}
	return out
}

// Overlaps reports whether the intersection of b and o has positive volume.
func (b Bounds) Overlaps(o Bounds) bool {
	for d := range b.Lo {
		if math.Min(b.Hi[d], o.Hi[d]) <= math.Max(b.Lo[d], o.Lo[d]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (b Bounds) Clone() Bounds {
	return NewBounds(b.Lo, b.Hi)
}

// Equal reports whether both rectangles have identical edges.
func (b Bounds) Equal(o Bounds) bool {
	return slices.Equal(b.Lo, o.Lo) && slices.Equal(b.Hi, o.Hi)
}

func (b Bounds) String() string {
	return fmt.Sprintf("lo=%v hi=%v", b.Lo, b.Hi)
}

type boundsJSON struct {
	Lo []sample.Float `json:"lo"`
	Hi []sample.Float `json:"hi"`
}

// MarshalJSON implements json.Marshaler; infinite edges are encoded as strings.
func (b Bounds) MarshalJSON() ([]byte, error) {
	w := boundsJSON{Lo: make([]sample.Float, len(b.Lo)), Hi: make([]sample.Float, len(b.Hi))}
	for d := range b.Lo {
		w.Lo[d] = sample.Float(b.Lo[d])
	}
	for d := range b.Hi {
		w.Hi[d] = sample.Float(b.Hi[d])
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	var w boundsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Lo = make([]float64, len(w.Lo))
	b.Hi = make([]float64, len(w.Hi))
	for d := range w.Lo {
		b.Lo[d] = float64(w.Lo[d])
	}
	for d := range w.Hi {
		b.Hi[d] = float64(w.Hi[d])
	}
	return nil
}
