package sample

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// setJSON is the wire form of a Set. Aux values are not persisted.
type setJSON struct {
	Dim    int     `json:"dim"`
	V      []Float `json:"v"`
	LogD   []Float `json:"logd"`
	Weight []Float `json:"weight"`
	Info   []Info  `json:"info"`
}

// MarshalJSON implements json.Marshaler.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(setJSON{
		Dim:    s.dim,
		V:      floats(s.v),
		LogD:   floats(s.logd),
		Weight: floats(s.weight),
		Info:   s.info,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Set) UnmarshalJSON(data []byte) error {
	var w setJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n := len(w.LogD)
	if len(w.Weight) != n || len(w.Info) != n || len(w.V) != n*w.Dim {
		return fmt.Errorf("sample: inconsistent column lengths in encoded set")
	}
	*s = Set{
		dim:    w.Dim,
		v:      unfloats(w.V),
		logd:   unfloats(w.LogD),
		weight: unfloats(w.Weight),
		info:   w.Info,
		aux:    make([]any, n),
	}
	return nil
}

// Float is a float64 that survives JSON round trips for NaN and ±Inf.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	x := float64(f)
	switch {
	case math.IsNaN(x):
		return []byte(`"NaN"`), nil
	case math.IsInf(x, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(x, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, x, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(x)
		return nil
	}
	var x float64
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*f = Float(x)
	return nil
}

func floats(xs []float64) []Float {
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

func unfloats(xs []Float) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
