package subspace

import (
	"time"

	"github.com/hupe1980/bayespart/sample"
)

// Interval is a wall-clock time span.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Provenance records how a subspace result was produced.
type Provenance struct {
	ID       int `json:"id"`
	WorkerID int `json:"worker_id"`
	Threads  int `json:"threads"`

	SamplingWall    Interval      `json:"sampling_wall"`
	IntegrationWall Interval      `json:"integration_wall"`
	SamplingCPU     time.Duration `json:"sampling_cpu"`
	IntegrationCPU  time.Duration `json:"integration_cpu"`

	// IndexRange is the half-open row range [start, end) of this subspace in the
	// merged sample set. Zero until the result is merged.
	IndexRange [2]int `json:"index_range"`

	// WeightSum is the sum of the sampler weights before rescaling.
	WeightSum  float64            `json:"weight_sum"`
	Integral   sample.Measurement `json:"integral"`
	NumSamples int                `json:"num_samples"`
}

// Result is the output of one subspace task.
type Result struct {
	Samples    *sample.Set
	Integral   sample.Measurement
	Provenance Provenance
}
