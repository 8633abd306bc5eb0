package bayespart

import (
	"fmt"
	"time"

	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/subspace"
)

// Result is the output of a successful run.
type Result struct {
	RunID string `json:"run_id"`

	// Samples holds the merged draws in the original parameter space.
	Samples *sample.Set `json:"samples"`
	// TransformedSamples holds the same draws in the sampling space. It is the same
	// set as Samples when no transform was applied.
	TransformedSamples *sample.Set `json:"transformed_samples"`
	// Exploration holds the exploration draws in the sampling space.
	Exploration *sample.Set `json:"exploration"`

	// Info is the provenance table, one entry per subspace in id order.
	Info []subspace.Provenance `json:"info"`

	Tree  *partition.Tree `json:"tree"`
	Costs []float64       `json:"costs"`

	// Integral is the sum of the subspace integrals; errors add in quadrature.
	Integral sample.Measurement `json:"integral"`

	Phase   Phase         `json:"phase"`
	Elapsed time.Duration `json:"elapsed"`
}

// NumSubspaces returns the number of subspaces that were sampled.
func (r *Result) NumSubspaces() int {
	return len(r.Info)
}

// Subspace returns the provenance entry of subspace id.
func (r *Result) Subspace(id int) (subspace.Provenance, bool) {
	if id < 1 || id > len(r.Info) {
		return subspace.Provenance{}, false
	}
	return r.Info[id-1], true
}

// SubspaceSamples returns the original-space draws of subspace id.
func (r *Result) SubspaceSamples(id int) (*sample.Set, error) {
	p, ok := r.Subspace(id)
	if !ok {
		return nil, fmt.Errorf("%w: subspace %d of %d", sample.ErrIndexOutOfRange, id, len(r.Info))
	}
	return r.Samples.Slice(p.IndexRange[0], p.IndexRange[1])
}
