package bayespart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/internal/resource"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/subspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"partition config", fmt.Errorf("x: %w", partition.ErrInvalidConfig), ErrInvalidPartitionConfig},
		{"degenerate", partition.ErrDegenerateInput, ErrDegenerateInput},
		{"unsupported", density.ErrUnsupportedDensity, ErrUnsupportedDensity},
		{"memory", resource.ErrMemoryLimitExceeded, ErrMemoryLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.in)
		})
	}

	plain := errors.New("plain")
	assert.Equal(t, plain, translateError(plain))
}

func TestTranslateError_DimensionMismatch(t *testing.T) {
	in := &density.DimensionMismatchError{Expected: 2, Actual: 3}
	err := translateError(fmt.Errorf("leaf 1: %w", in))

	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
	assert.ErrorIs(t, err, in)
	assert.Equal(t, "dimension mismatch: expected 2, got 3", dm.Error())
}

func TestTranslateError_Subspace(t *testing.T) {
	in := &subspace.Error{ID: 3, Stage: subspace.StageIntegration, Err: density.ErrUnsupportedDensity}
	err := translateError(in)

	var se *SubspaceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.ID)
	assert.Equal(t, subspace.StageIntegration, se.Stage)
	assert.ErrorIs(t, err, ErrUnsupportedDensity)
	assert.Contains(t, err.Error(), "subspace 3 failed during integration")
}

func TestRunError(t *testing.T) {
	err := error(&RunError{Phase: PhasePartitioning, Err: ErrInvalidPartitionConfig})

	assert.Equal(t, "bayespart: partitioning: invalid partition config", err.Error())
	assert.ErrorIs(t, err, ErrInvalidPartitionConfig)
}

func TestPhase(t *testing.T) {
	phases := []Phase{PhaseExploring, PhasePartitioning, PhaseTruncating, PhaseSamplingSubspaces, PhaseMerging, PhaseDone, PhaseFailed}
	names := []string{"exploring", "partitioning", "truncating", "sampling-subspaces", "merging", "done", "failed"}

	for i, p := range phases {
		assert.Equal(t, names[i], p.String())
		assert.Equal(t, p == PhaseDone || p == PhaseFailed, p.Terminal())

		text, err := p.MarshalText()
		require.NoError(t, err)
		var got Phase
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, p, got)
	}
	assert.Equal(t, "Phase(42)", Phase(42).String())

	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("idle")))
}

func TestPhase_CanTransition(t *testing.T) {
	path := []Phase{PhaseExploring, PhasePartitioning, PhaseTruncating, PhaseSamplingSubspaces, PhaseMerging, PhaseDone}
	for i, p := range path[:len(path)-1] {
		assert.True(t, p.CanTransition(path[i+1]), "%s -> %s", p, path[i+1])
		assert.True(t, p.CanTransition(PhaseFailed), "%s -> failed", p)
		assert.False(t, p.CanTransition(p), "%s -> %s", p, p)
		if i > 0 {
			assert.False(t, p.CanTransition(path[i-1]), "%s -> %s", p, path[i-1])
		}
		if i+2 < len(path) {
			assert.False(t, p.CanTransition(path[i+2]), "%s skips %s", p, path[i+1])
		}
	}

	for _, p := range []Phase{PhaseDone, PhaseFailed} {
		for _, q := range append(path, PhaseFailed) {
			assert.False(t, p.CanTransition(q), "%s -> %s", p, q)
		}
	}
}

func TestRun_EnterRejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()

	var seen []Phase
	newRun := func() *run {
		return &run{
			o:      &options{observer: func(ev PhaseEvent) { seen = append(seen, ev.Phase) }},
			logger: NoopLogger(),
		}
	}

	r := newRun()
	assert.Panics(t, func() { r.enter(ctx, PhasePartitioning, nil) })

	r = newRun()
	r.enter(ctx, PhaseExploring, nil)
	r.enter(ctx, PhasePartitioning, nil)
	assert.Panics(t, func() { r.enter(ctx, PhaseMerging, nil) })
	assert.Panics(t, func() { r.enter(ctx, PhaseExploring, nil) })

	r.enter(ctx, PhaseFailed, errors.New("boom"))
	assert.Panics(t, func() { r.enter(ctx, PhaseDone, nil) })

	assert.Equal(t, []Phase{PhaseExploring, PhasePartitioning, PhaseFailed}, seen)
}

func TestStreamSeed(t *testing.T) {
	seen := map[int64]bool{}
	for k := 0; k < 100; k++ {
		s := streamSeed(1, k)
		assert.False(t, seen[s], "stream %d collides", k)
		seen[s] = true
		assert.Equal(t, s, streamSeed(1, k))
	}
	assert.NotEqual(t, streamSeed(1, 0), streamSeed(2, 0))
}
