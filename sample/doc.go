// Package sample provides the weighted sample container used throughout bayespart.
//
// A Set is a column store: vectors are kept in one flat slice (n*dim), with parallel
// columns for log-density, weight, provenance info and an opaque aux value. Sets are
// built by a single owner via Push and are treated as immutable once handed off.
// Combining sets never mutates the inputs:
//
//	a := sample.NewSet(2)
//	_ = a.Push(sample.Sample{V: []float64{0, 1}, LogD: -1.2, Weight: 1})
//	merged, _ := sample.Concat(2, a, b, c) // order-preserving, associative
//
// Weighted statistics (Mean, Var, Cov, EffectiveSize) treat weights as frequency
// weights; zero-weight rows contribute nothing.
package sample
