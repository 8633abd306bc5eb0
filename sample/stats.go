package sample

import "math"

// Mean returns the weighted mean vector. Returns NaN entries if the weight sum is zero.
func (s *Set) Mean() []float64 {
	mean := make([]float64, s.dim)
	wsum := s.WeightSum()
	for i := 0; i < s.Len(); i++ {
		w := s.weight[i]
		if w == 0 {
			continue
		}
		for d, x := range s.Vector(i) {
			mean[d] += w * x
		}
	}
	for d := range mean {
		mean[d] /= wsum
	}
	return mean
}

// Var returns the weighted per-dimension variance (frequency weights, biased).
func (s *Set) Var() []float64 {
	mean := s.Mean()
	out := make([]float64, s.dim)
	wsum := s.WeightSum()
	for i := 0; i < s.Len(); i++ {
		w := s.weight[i]
		if w == 0 {
			continue
		}
		for d, x := range s.Vector(i) {
			dx := x - mean[d]
			out[d] += w * dx * dx
		}
	}
	for d := range out {
		out[d] /= wsum
	}
	return out
}

// Std returns the weighted per-dimension standard deviation.
func (s *Set) Std() []float64 {
	v := s.Var()
	for d := range v {
		v[d] = math.Sqrt(v[d])
	}
	return v
}

// Cov returns the weighted covariance matrix as dim rows.
func (s *Set) Cov() [][]float64 {
	mean := s.Mean()
	wsum := s.WeightSum()
	cov := make([][]float64, s.dim)
	for r := range cov {
		cov[r] = make([]float64, s.dim)
	}
	dx := make([]float64, s.dim)
	for i := 0; i < s.Len(); i++ {
		w := s.weight[i]
		if w == 0 {
			continue
		}
		for d, x := range s.Vector(i) {
			dx[d] = x - mean[d]
		}
		for r := 0; r < s.dim; r++ {
			for c := r; c < s.dim; c++ {
				cov[r][c] += w * dx[r] * dx[c]
			}
		}
	}
	for r := 0; r < s.dim; r++ {
		for c := r; c < s.dim; c++ {
			cov[r][c] /= wsum
			cov[c][r] = cov[r][c]
		}
	}
	return cov
}

// Mode returns the index of the sample with the highest log-density, or -1 if the set
// has no valid sample.
func (s *Set) Mode() int {
	best := -1
	bestLogD := math.Inf(-1)
	for i, l := range s.logd {
		if math.IsNaN(l) || s.weight[i] == 0 {
			continue
		}
		if best == -1 || l > bestLogD {
			best = i
			bestLogD = l
		}
	}
	return best
}

// EffectiveSize returns Kish's effective sample size (sum w)^2 / sum w^2.
func (s *Set) EffectiveSize() float64 {
	var sum, sq float64
	for _, w := range s.weight {
		sum += w
		sq += w * w
	}
	if sq == 0 {
		return 0
	}
	return sum * sum / sq
}
