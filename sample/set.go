package sample

import (
	"fmt"
	"math"
)

// Set is a column-oriented collection of weighted samples.
//
// A Set is not safe for concurrent mutation. Workers build their own Set and hand it
// off; from then on it is read-only.
type Set struct {
	dim    int
	v      []float64
	logd   []float64
	weight []float64
	info   []Info
	aux    []any
}

// NewSet creates an empty set of the given dimension.
func NewSet(dim int) *Set {
	return &Set{dim: dim}
}

// NewSetWithCapacity creates an empty set with room for n samples.
func NewSetWithCapacity(dim, n int) *Set {
	return &Set{
		dim:    dim,
		v:      make([]float64, 0, n*dim),
		logd:   make([]float64, 0, n),
		weight: make([]float64, 0, n),
		info:   make([]Info, 0, n),
		aux:    make([]any, 0, n),
	}
}

// Dim returns the dimension of the samples in the set.
func (s *Set) Dim() int { return s.dim }

// Len returns the number of samples.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.logd)
}

// Push appends a sample. The vector is copied.
func (s *Set) Push(x Sample) error {
	if len(x.V) != s.dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, s.dim, len(x.V))
	}
	if err := checkWeight(x.Weight); err != nil {
		return err
	}
	s.v = append(s.v, x.V...)
	s.logd = append(s.logd, x.LogD)
	s.weight = append(s.weight, x.Weight)
	s.info = append(s.info, x.Info)
	s.aux = append(s.aux, x.Aux)
	return nil
}

// At returns the i-th sample. The returned vector aliases the set's storage and must
// not be modified.
func (s *Set) At(i int) Sample {
	return Sample{
		V:      s.Vector(i),
		LogD:   s.logd[i],
		Weight: s.weight[i],
		Info:   s.info[i],
		Aux:    s.aux[i],
	}
}

// Vector returns the i-th vector without copying.
func (s *Set) Vector(i int) []float64 {
	return s.v[i*s.dim : (i+1)*s.dim : (i+1)*s.dim]
}

// LogD returns the log-density of the i-th sample.
func (s *Set) LogD(i int) float64 { return s.logd[i] }

// Weight returns the weight of the i-th sample.
func (s *Set) Weight(i int) float64 { return s.weight[i] }

// Info returns the provenance info of the i-th sample.
func (s *Set) Info(i int) Info { return s.info[i] }

// Weights returns a copy of the weight column.
func (s *Set) Weights() []float64 {
	out := make([]float64, len(s.weight))
	copy(out, s.weight)
	return out
}

// WeightSum returns the sum of all weights.
func (s *Set) WeightSum() float64 {
	if s == nil {
		return 0
	}
	var sum float64
	for _, w := range s.weight {
		sum += w
	}
	return sum
}

// Clone returns a deep copy of the set. Aux values are copied by reference.
func (s *Set) Clone() *Set {
	out := NewSetWithCapacity(s.dim, s.Len())
	out.v = append(out.v, s.v...)
	out.logd = append(out.logd, s.logd...)
	out.weight = append(out.weight, s.weight...)
	out.info = append(out.info, s.info...)
	out.aux = append(out.aux, s.aux...)
	return out
}

// Slice returns a copy of rows [lo, hi).
func (s *Set) Slice(lo, hi int) (*Set, error) {
	if lo < 0 || hi > s.Len() || lo > hi {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrIndexOutOfRange, lo, hi, s.Len())
	}
	out := NewSetWithCapacity(s.dim, hi-lo)
	out.v = append(out.v, s.v[lo*s.dim:hi*s.dim]...)
	out.logd = append(out.logd, s.logd[lo:hi]...)
	out.weight = append(out.weight, s.weight[lo:hi]...)
	out.info = append(out.info, s.info[lo:hi]...)
	out.aux = append(out.aux, s.aux[lo:hi]...)
	return out, nil
}

// Append returns a new set holding the rows of s followed by the rows of other.
// Neither input is modified.
func (s *Set) Append(other *Set) (*Set, error) {
	return Concat(s.dim, s, other)
}

// Map returns a new set of dimension dim where every row is rewritten by fn.
// fn receives a copy of the sample and may change any field.
func (s *Set) Map(dim int, fn func(i int, x Sample) (Sample, error)) (*Set, error) {
	out := NewSetWithCapacity(dim, s.Len())
	for i := 0; i < s.Len(); i++ {
		x := s.At(i)
		x.V = append([]float64(nil), x.V...)
		y, err := fn(i, x)
		if err != nil {
			return nil, err
		}
		if err := out.Push(y); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return out, nil
}

// Concat concatenates sets in order into a new set of dimension dim.
// Nil sets are skipped.
func Concat(dim int, sets ...*Set) (*Set, error) {
	n := 0
	for _, x := range sets {
		if x == nil {
			continue
		}
		if x.dim != dim {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, x.dim)
		}
		n += x.Len()
	}

	out := NewSetWithCapacity(dim, n)
	for _, x := range sets {
		if x == nil {
			continue
		}
		out.v = append(out.v, x.v...)
		out.logd = append(out.logd, x.logd...)
		out.weight = append(out.weight, x.weight...)
		out.info = append(out.info, x.info...)
		out.aux = append(out.aux, x.aux...)
	}
	return out, nil
}

// BoundingBox returns per-dimension min and max over all samples.
// Returns nil slices for an empty set.
func (s *Set) BoundingBox() (lo, hi []float64) {
	if s.Len() == 0 {
		return nil, nil
	}
	lo = make([]float64, s.dim)
	hi = make([]float64, s.dim)
	for d := range lo {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for i := 0; i < s.Len(); i++ {
		for d, x := range s.Vector(i) {
			lo[d] = math.Min(lo[d], x)
			hi[d] = math.Max(hi[d], x)
		}
	}
	return lo, hi
}
