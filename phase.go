package bayespart

import (
	"fmt"
	"time"
)

// Phase is a state of the run state machine. A run only moves forward:
//
//	Exploring -> Partitioning -> Truncating -> SamplingSubspaces -> Merging -> Done
//
// Any failure moves the run to Failed.
type Phase int

const (
	PhaseExploring Phase = iota
	PhasePartitioning
	PhaseTruncating
	PhaseSamplingSubspaces
	PhaseMerging
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseExploring:
		return "exploring"
	case PhasePartitioning:
		return "partitioning"
	case PhaseTruncating:
		return "truncating"
	case PhaseSamplingSubspaces:
		return "sampling-subspaces"
	case PhaseMerging:
		return "merging"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for q := PhaseExploring; q <= PhaseFailed; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("bayespart: unknown phase %q", text)
}

// Terminal reports whether no further transition can follow p.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// successor maps every non-terminal phase to the next one on the success path.
var successor = map[Phase]Phase{
	PhaseExploring:         PhasePartitioning,
	PhasePartitioning:      PhaseTruncating,
	PhaseTruncating:        PhaseSamplingSubspaces,
	PhaseSamplingSubspaces: PhaseMerging,
	PhaseMerging:           PhaseDone,
}

// CanTransition reports whether a run in phase p may move to q. Every non-terminal
// phase may fail; otherwise only the successor is allowed.
func (p Phase) CanTransition(q Phase) bool {
	if p.Terminal() {
		return false
	}
	if q == PhaseFailed {
		return true
	}
	succ, ok := successor[p]
	return ok && succ == q
}

// PhaseEvent describes a phase transition.
type PhaseEvent struct {
	RunID string
	Phase Phase
	Time  time.Time
	// Err is set when Phase is PhaseFailed.
	Err error
}

// Observer is notified of every phase transition of a run, in order, from the
// goroutine that called Run.
type Observer func(PhaseEvent)
