// Package sampler provides the samplers used for exploration and per-subspace
// sampling.
//
// A Sampler draws a weighted sample set from a density. The algorithm is chosen by an
// explicit Config rather than by the density type:
//
//	s, err := sampler.New(sampler.Config{Algorithm: sampler.Metropolis, Chains: 4, Steps: 2000})
//	set, err := s.Sample(ctx, posterior, rand.New(rand.NewSource(seed)))
//
// Samplers are stateless; all randomness comes from the *rand.Rand passed in, so a
// fixed seed reproduces the same draws.
package sampler
