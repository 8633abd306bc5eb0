// Package testutil provides testing utilities for bayespart.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG, synthetic sample sets, and stub samplers and
// integrators whose output is easy to predict.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformVectors(100, 2, -1, 1)
//	set := rng.GaussianSet(1000, 2)
//
// # Stubs
//
//	s := &testutil.GridSampler{N: 50}
//	i := &testutil.VolumeIntegrator{}
//
// GridSampler draws N points uniformly inside the (finite) bounds of the density it is
// given, and VolumeIntegrator returns the volume of those bounds, so a run that uses both
// reports an integral equal to the volume of the region that was sampled.
package testutil
