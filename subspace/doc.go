// Package subspace samples and integrates a posterior truncated to one partition leaf.
//
// A Worker runs the configured sampler on the truncated density, integrates it, and
// rescales the sample weights so that their sum equals the integral estimate:
//
//	w' = w * integral / sum(w)
//
// Every sample is tagged with the subspace id, and the run is recorded in a
// Provenance entry (wall-clock intervals, CPU time, worker id, integral).
package subspace
