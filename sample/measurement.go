package sample

import (
	"fmt"
	"math"
)

// Measurement is a value with a one-sigma uncertainty.
type Measurement struct {
	Value float64 `json:"value"`
	Err   float64 `json:"err"`
}

// Add returns the sum of two independent measurements; errors add in quadrature.
func (m Measurement) Add(o Measurement) Measurement {
	return Measurement{
		Value: m.Value + o.Value,
		Err:   math.Hypot(m.Err, o.Err),
	}
}

// Rel returns the relative uncertainty |Err/Value|.
func (m Measurement) Rel() float64 {
	if m.Value == 0 {
		return math.Inf(1)
	}
	return math.Abs(m.Err / m.Value)
}

func (m Measurement) String() string {
	return fmt.Sprintf("%g ± %g", m.Value, m.Err)
}
