package bayespart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/bayespart/sample"
	"github.com/hupe1980/bayespart/subspace"
)

var (
	errNothingToMerge    = errors.New("no subspace results to merge")
	errInvalidSubspaceID = errors.New("invalid subspace id")
)

// Merge concatenates subspace results in ascending subspace id order, whatever the
// order of results. Ids must be positive and unique. It returns the merged set, the
// provenance table with every IndexRange filled in, and the sum of the subspace
// integrals.
//
// The inputs are not modified.
func Merge(results []*subspace.Result) (*sample.Set, []subspace.Provenance, sample.Measurement, error) {
	if len(results) == 0 {
		return nil, nil, sample.Measurement{}, errNothingToMerge
	}
	for i, r := range results {
		if r == nil || r.Samples == nil {
			return nil, nil, sample.Measurement{}, fmt.Errorf("subspace result %d is missing", i)
		}
	}

	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b *subspace.Result) int {
		return a.Provenance.ID - b.Provenance.ID
	})
	for i, r := range ordered {
		id := r.Provenance.ID
		if id < 1 {
			return nil, nil, sample.Measurement{}, fmt.Errorf("%w: %d", errInvalidSubspaceID, id)
		}
		if i > 0 && ordered[i-1].Provenance.ID == id {
			return nil, nil, sample.Measurement{}, fmt.Errorf("%w: %d appears more than once", errInvalidSubspaceID, id)
		}
	}

	dim := ordered[0].Samples.Dim()
	sets := make([]*sample.Set, 0, len(ordered))
	table := make([]subspace.Provenance, 0, len(ordered))

	var (
		offset   int
		integral sample.Measurement
	)
	for _, r := range ordered {
		p := r.Provenance
		p.IndexRange = [2]int{offset, offset + r.Samples.Len()}
		offset += r.Samples.Len()

		integral = integral.Add(r.Integral)
		sets = append(sets, r.Samples)
		table = append(table, p)
	}

	merged, err := sample.Concat(dim, sets...)
	if err != nil {
		return nil, nil, sample.Measurement{}, err
	}
	return merged, table, integral, nil
}
