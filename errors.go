package bayespart

import (
	"errors"
	"fmt"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/internal/resource"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/subspace"
)

var (
	// ErrInvalidPartitionConfig is returned for a partition count below one or an
	// unusable partitioner configuration.
	ErrInvalidPartitionConfig = errors.New("invalid partition config")

	// ErrDegenerateInput is returned when the exploration set is empty or carries no weight.
	ErrDegenerateInput = errors.New("degenerate exploration input")

	// ErrUnsupportedDensity is returned when a collaborator cannot handle the density,
	// e.g. an integrator that needs finite bounds.
	ErrUnsupportedDensity = errors.New("unsupported density")

	// ErrMemoryLimitExceeded is returned when subspace results outgrow the memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrNilPosterior is returned when Run is called without a posterior.
	ErrNilPosterior = errors.New("posterior is nil")
)

// DimensionMismatchError indicates that bounds and posterior disagree in dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DimensionMismatchError struct {
	Expected int
	Actual   int
	cause    error
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return e.cause }

// SubspaceError reports the failure of the task for one partition leaf.
type SubspaceError struct {
	// ID is the 1-based leaf id.
	ID    int
	Stage subspace.Stage
	Err   error
}

func (e *SubspaceError) Error() string {
	return fmt.Sprintf("subspace %d failed during %s: %v", e.ID, e.Stage, e.Err)
}

func (e *SubspaceError) Unwrap() error { return e.Err }

// RunError is the error returned by a failed run. Phase is the phase that failed.
type RunError struct {
	Phase Phase
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("bayespart: %s: %v", e.Phase, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Subspace failures keep their id; the cause is normalised as well.
	var se *subspace.Error
	if errors.As(err, &se) {
		return &SubspaceError{ID: se.ID, Stage: se.Stage, Err: translateError(se.Err)}
	}

	if errors.Is(err, partition.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrInvalidPartitionConfig, err)
	}
	if errors.Is(err, partition.ErrDegenerateInput) {
		return fmt.Errorf("%w: %w", ErrDegenerateInput, err)
	}
	if errors.Is(err, density.ErrUnsupportedDensity) {
		return fmt.Errorf("%w: %w", ErrUnsupportedDensity, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	var dm *density.DimensionMismatchError
	if errors.As(err, &dm) {
		return &DimensionMismatchError{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	return err
}
