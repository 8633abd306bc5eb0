package subspace

import (
	"errors"
	"fmt"
)

// ErrEmptySubspace is returned when the sampler yields no weight to rescale.
var ErrEmptySubspace = errors.New("subspace has zero total weight")

// Stage names the step of a subspace task that failed.
type Stage string

const (
	StageSampling    Stage = "sampling"
	StageIntegration Stage = "integration"
	StageReweighting Stage = "reweighting"
)

// Error reports a failed subspace task.
type Error struct {
	ID    int
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("subspace %d: %s: %v", e.ID, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
