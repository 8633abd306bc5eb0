package subspace

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"time"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/integrator"
	"github.com/hupe1980/bayespart/internal/cputime"
	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/sampler"
)

// Worker samples and integrates truncated posteriors.
// A Worker holds no per-task state and may run many tasks concurrently.
type Worker struct {
	Sampler    sampler.Sampler
	Integrator integrator.Integrator
}

// NewWorker returns a worker using s and i.
func NewWorker(s sampler.Sampler, i integrator.Integrator) *Worker {
	return &Worker{Sampler: s, Integrator: i}
}

// Run samples post, integrates it and rescales the weights so that they sum to the
// integral. id tags every returned sample; workerID is recorded in the provenance.
//
// The task runs locked to its OS thread so the CPU time it reports belongs to it alone.
func (w *Worker) Run(ctx context.Context, id, workerID int, post *density.Truncated, rng *rand.Rand) (*Result, error) {
	if w.Sampler == nil || w.Integrator == nil {
		return nil, &Error{ID: id, Stage: StageSampling, Err: errors.New("worker is missing a sampler or integrator")}
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	prov := Provenance{
		ID:       id,
		WorkerID: workerID,
		Threads:  runtime.GOMAXPROCS(0),
	}

	prov.SamplingWall.Start = time.Now()
	cpu := cputime.Thread()
	set, err := w.Sampler.Sample(ctx, post, rng)
	prov.SamplingCPU = cputime.Thread() - cpu
	prov.SamplingWall.End = time.Now()
	if err != nil {
		return nil, &Error{ID: id, Stage: StageSampling, Err: err}
	}

	prov.IntegrationWall.Start = time.Now()
	cpu = cputime.Thread()
	integral, err := w.Integrator.Integrate(ctx, post, set)
	prov.IntegrationCPU = cputime.Thread() - cpu
	prov.IntegrationWall.End = time.Now()
	if err != nil {
		return nil, &Error{ID: id, Stage: StageIntegration, Err: err}
	}

	out, sum, err := Reweight(set, id, integral)
	if err != nil {
		return nil, &Error{ID: id, Stage: StageReweighting, Err: err}
	}

	prov.WeightSum = sum
	prov.Integral = integral
	prov.NumSamples = out.Len()

	return &Result{
		Samples:    out,
		Integral:   integral,
		Provenance: prov,
	}, nil
}

// Reweight returns a copy of s whose weights are scaled by integral.Value / sum(w) and
// whose samples carry Info.Subspace = id. It also returns the original weight sum.
func Reweight(s *sample.Set, id int, integral sample.Measurement) (*sample.Set, float64, error) {
	sum := s.WeightSum()
	if !(sum > 0) {
		return nil, sum, ErrEmptySubspace
	}
	scale := integral.Value / sum

	out, err := s.Map(s.Dim(), func(_ int, x sample.Sample) (sample.Sample, error) {
		x.Weight *= scale
		x.Info.Subspace = id
		return x, nil
	})
	if err != nil {
		return nil, sum, err
	}
	return out, sum, nil
}
