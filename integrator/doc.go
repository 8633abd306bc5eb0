// Package integrator estimates the integral of a (truncated) density.
//
// Two estimators are provided, selected through Config.Algorithm:
//
//   - Cubature: a deterministic composite midpoint rule on a tensor grid over the
//     density's finite bounds, evaluated at two resolutions for an error estimate.
//   - HarmonicMean: a Gelfand-Dey style estimator that only uses the weighted
//     samples (uniform reference density on a central box around the sample mean).
//
// Both return a sample.Measurement. Cubature rejects densities with infinite bounds
// with density.ErrUnsupportedDensity.
package integrator
