// Package bayespart provides adaptive partitioned sampling and integration of
// Bayesian posteriors.
//
// A run explores the posterior with a cheap sampler, splits the parameter space into
// axis-aligned rectangles with a space-partitioning tree, truncates the posterior to
// each rectangle, and samples and integrates every rectangle independently and in
// parallel. The per-rectangle samples are reweighted so that their weights sum to the
// rectangle's integral, then merged into a single weighted sample set together with
// an estimate of the overall integral.
//
// # Quick Start
//
//	post, _ := density.NewNormal([]float64{0, 0}, []float64{1, 1})
//	post.Region = density.NewBounds([]float64{-5, -5}, []float64{5, 5})
//
//	res, err := bayespart.Sample(ctx, post,
//	    bayespart.WithPartitions(8),
//	    bayespart.WithExtendBounds(true),
//	    bayespart.WithSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Samples.Len(), res.Integral)
//
// # Phases
//
// A run moves through Exploring, Partitioning, Truncating, SamplingSubspaces and
// Merging to Done. A failure in any phase ends the run in Failed and returns a
// *RunError; no partial result is returned. Use WithObserver to follow transitions.
//
// # Collaborators
//
// Samplers, the partitioner and the integrator are interfaces (sampler.Sampler,
// partition.Partitioner, integrator.Integrator). Built-in variants are selected with
// an enumerated Algorithm or Method in their Config:
//
//	mcmc := sampler.MustNew(sampler.Config{Algorithm: sampler.Metropolis, Steps: 2000})
//	cub := integrator.MustNew(integrator.Config{Algorithm: integrator.Cubature})
//
//	res, err := bayespart.Sample(ctx, post,
//	    bayespart.WithSubspaceSampler(mcmc),
//	    bayespart.WithIntegrator(cub),
//	)
//
// # Concurrency
//
// Subspace tasks share nothing but the read-only posterior. They run on a bounded
// worker pool (WithWorkers) and the merge starts only after every task has
// finished. The merged layout follows subspace ids, never completion order, and
// with WithSeed the output does not depend on scheduling.
package bayespart
