package sample

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidWeight is returned when a weight is negative, NaN or infinite.
	ErrInvalidWeight = errors.New("invalid sample weight")

	// ErrDimensionMismatch is returned when a sample or set has a different dimension.
	ErrDimensionMismatch = errors.New("sample dimension mismatch")

	// ErrIndexOutOfRange is returned when a row index is outside the set.
	ErrIndexOutOfRange = errors.New("sample index out of range")
)

// Info records where a draw came from.
type Info struct {
	Chain    int `json:"chain"`
	Step     int `json:"step"`
	Subspace int `json:"subspace"`
}

// Sample is a single weighted draw.
//
// LogD is the log-density at V. A NaN LogD marks the draw as invalid.
type Sample struct {
	V      []float64
	LogD   float64
	Weight float64
	Info   Info
	Aux    any
}

// Valid reports whether the sample carries a usable log-density and weight.
func (s Sample) Valid() bool {
	return !math.IsNaN(s.LogD) && validWeight(s.Weight)
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

func checkWeight(w float64) error {
	if !validWeight(w) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, w)
	}
	return nil
}
