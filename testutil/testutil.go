package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/bayespart/sample"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Rand returns a new *rand.Rand seeded from r. Use it to hand an independent
// stream to code that takes a *rand.Rand.
func (r *RNG) Rand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewSource(r.rand.Int63()))
}

// UniformVectors generates random vectors with values in range [lo, hi).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dimensions int, lo, hi float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)
	span := hi - lo

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = lo + r.rand.Float64()*span
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.NormFloat64()
		}
		vectors[i] = vec
	}

	return vectors
}

// ClusteredVectors generates vectors around the given centers with Gaussian noise.
// Vector i belongs to center i % len(centers).
func (r *RNG) ClusteredVectors(num int, centers [][]float64, spread float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float64, num)
	for i := range num {
		c := centers[i%len(centers)]
		vec := make([]float64, len(c))
		for j := range vec {
			vec[j] = c[j] + r.rand.NormFloat64()*spread
		}
		vectors[i] = vec
	}
	return vectors
}

// GaussianSet draws num standard normal points with unit weights and the standard
// normal log-density.
func (r *RNG) GaussianSet(num, dimensions int) *sample.Set {
	vecs := r.GaussianVectors(num, dimensions)
	s := sample.NewSetWithCapacity(dimensions, num)
	for i, v := range vecs {
		_ = s.Push(sample.Sample{
			V:      v,
			LogD:   StdNormalLogDensity(v),
			Weight: 1,
			Info:   sample.Info{Step: i},
		})
	}
	return s
}

// StdNormalLogDensity returns the log-density of the standard normal at v.
func StdNormalLogDensity(v []float64) float64 {
	var ss float64
	for _, x := range v {
		ss += x * x
	}
	return -0.5*ss - 0.5*float64(len(v))*math.Log(2*math.Pi)
}
