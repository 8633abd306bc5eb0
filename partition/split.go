package partition

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/bayespart/sample"
)

// coster evaluates the cost functional on subsets of a sample set.
// Rows with a non-finite log-density carry zero weight for cost purposes.
type coster struct {
	w    []float64
	cols [][]float64 // cols[c][i]
}

func newCoster(s *sample.Set, kind Cost) *coster {
	n := s.Len()
	c := &coster{w: make([]float64, n)}
	for i := 0; i < n; i++ {
		l := s.LogD(i)
		if !math.IsInf(l, 0) && !math.IsNaN(l) {
			c.w[i] = s.Weight(i)
		}
	}

	switch kind {
	case CostCoordinateVariance:
		c.cols = make([][]float64, s.Dim())
		for d := range c.cols {
			col := make([]float64, n)
			for i := 0; i < n; i++ {
				col[i] = s.Vector(i)[d]
			}
			c.cols[d] = col
		}
	default:
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			if c.w[i] > 0 {
				col[i] = s.LogD(i)
			}
		}
		c.cols = [][]float64{col}
	}
	return c
}

// cost returns the weighted sum of squared deviations over idx (two-pass).
func (c *coster) cost(idx []uint32) float64 {
	var wsum float64
	for _, i := range idx {
		wsum += c.w[i]
	}
	if wsum == 0 {
		return 0
	}
	var total float64
	for _, col := range c.cols {
		var mean float64
		for _, i := range idx {
			mean += c.w[i] * col[i]
		}
		mean /= wsum
		for _, i := range idx {
			d := col[i] - mean
			total += c.w[i] * d * d
		}
	}
	return total
}

// moments accumulates weighted first and second moments per cost column.
type moments struct {
	w  float64
	s  []float64
	ss []float64
}

func newMoments(n int) moments {
	return moments{s: make([]float64, n), ss: make([]float64, n)}
}

func (m *moments) add(c *coster, i uint32, sign float64) {
	w := sign * c.w[i]
	m.w += w
	for k, col := range c.cols {
		m.s[k] += w * col[i]
		m.ss[k] += w * col[i] * col[i]
	}
}

func (m *moments) sse() float64 {
	if m.w <= 0 {
		return 0
	}
	var total float64
	for k := range m.s {
		total += max(m.ss[k]-m.s[k]*m.s[k]/m.w, 0)
	}
	return total
}

func sortByDim(s *sample.Set, idx []uint32, d int) []uint32 {
	order := slices.Clone(idx)
	slices.SortFunc(order, func(a, b uint32) int {
		if c := cmp.Compare(s.Vector(int(a))[d], s.Vector(int(b))[d]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return order
}

func coord(s *sample.Set, i uint32, d int) float64 {
	return s.Vector(int(i))[d]
}

func midpoint(a, b float64) float64 {
	return a + (b-a)/2
}

// cut returns the split point between consecutive coordinates a < b. It fails when no
// float lies strictly between them, which happens for adjacent floats: a cut on
// either coordinate would give one child zero width.
func cut(a, b float64) (float64, bool) {
	at := midpoint(a, b)
	return at, a < at && at < b
}

// bestSplit searches every eligible dimension and every boundary between distinct
// coordinates for the lowest summed child cost. Ties go to the lower dimension and
// then to the lower coordinate. Returns nil if no boundary can be cut.
func bestSplit(s *sample.Set, idx []uint32, dims []int, c *coster) *split {
	var best *split
	for _, d := range dims {
		order := sortByDim(s, idx, d)

		total := newMoments(len(c.cols))
		for _, i := range order {
			total.add(c, i, 1)
		}
		left := newMoments(len(c.cols))
		right := total
		right.s = slices.Clone(total.s)
		right.ss = slices.Clone(total.ss)

		for k := 1; k < len(order); k++ {
			left.add(c, order[k-1], 1)
			right.add(c, order[k-1], -1)

			at, ok := cut(coord(s, order[k-1], d), coord(s, order[k], d))
			if !ok {
				continue
			}
			cost := left.sse() + right.sse()
			if best == nil || cost < best.cost-1e-12*max(1, math.Abs(best.cost)) {
				best = &split{dim: d, at: at, left: order[:k], right: order[k:], cost: cost}
			}
		}
	}
	return best
}

// medianSplit cuts the dimension with the widest sample spread at the weighted
// median. Returns nil if all samples coincide in every eligible dimension.
func medianSplit(s *sample.Set, idx []uint32, dims []int, c *coster) *split {
	bestDim, bestWidth := -1, 0.0
	for _, d := range dims {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			x := coord(s, i, d)
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
		if hi-lo > bestWidth {
			bestDim, bestWidth = d, hi-lo
		}
	}
	if bestDim < 0 {
		return nil
	}

	order := sortByDim(s, idx, bestDim)
	m := len(order)

	var wsum float64
	for _, i := range order {
		wsum += c.w[i]
	}
	k := m / 2
	if wsum > 0 {
		var cum float64
		for j, i := range order {
			cum += c.w[i]
			if cum >= wsum/2 {
				k = j + 1
				break
			}
		}
	}
	k = min(max(k, 1), m-1)

	// Move to the nearest boundary that can be cut.
	for off := 0; off < m; off++ {
		for _, cand := range []int{k - off, k + off} {
			if cand < 1 || cand > m-1 {
				continue
			}
			if at, ok := cut(coord(s, order[cand-1], bestDim), coord(s, order[cand], bestDim)); ok {
				return &split{
					dim:   bestDim,
					at:    at,
					left:  order[:cand],
					right: order[cand:],
					cost:  c.cost(order[:cand]) + c.cost(order[cand:]),
				}
			}
		}
	}
	return nil
}
