// Package density defines the density contract used by the partitioned sampler,
// rectangular bounds, posterior truncation and coordinate transforms.
//
// A Density evaluates an unnormalised log-density and declares its support as a
// hyper-rectangle (entries may be infinite). Truncate restricts a density to a
// rectangle without copying or modifying it:
//
//	t, err := density.Truncate(posterior, density.NewBounds(lo, hi))
//	t.LogDensity(v) // posterior.LogDensity(v) inside, -Inf outside
//
// The package also ships a handful of simple densities (Normal, Mixture, Uniform,
// Func) used by tests, examples and the command line tool.
package density
