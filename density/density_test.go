package density

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMixture(t *testing.T) Density {
	t.Helper()
	a, err := NewNormal([]float64{-2, 0}, []float64{0.5, 1})
	require.NoError(t, err)
	b, err := NewNormal([]float64{2, 1}, []float64{0.5, 0.5})
	require.NoError(t, err)
	m, err := NewMixture([]Density{a, b}, []float64{1, 3})
	require.NoError(t, err)
	return m
}

func TestTruncate(t *testing.T) {
	base := newMixture(t)
	b := NewBounds([]float64{-1, -1}, []float64{1, 1})

	tr, err := Truncate(base, b)
	require.NoError(t, err)

	assert.Equal(t, base.LogDensity([]float64{0.5, 0.5}), tr.LogDensity([]float64{0.5, 0.5}))
	assert.Equal(t, base.LogDensity([]float64{1, -1}), tr.LogDensity([]float64{1, -1}), "edges are inside")
	assert.True(t, math.IsInf(tr.LogDensity([]float64{1.5, 0}), -1))
	assert.True(t, math.IsInf(tr.LogDensity([]float64{0, -3}), -1))

	assert.True(t, tr.Bounds().Equal(b), "intersection with unbounded support is the truncation")
	assert.Same(t, base, tr.Base())
}

func TestTruncate_FullSupportIsNoop(t *testing.T) {
	n, err := NewNormal([]float64{0, 0}, []float64{1, 2})
	require.NoError(t, err)
	n.Region = NewBounds([]float64{-5, -5}, []float64{5, 5})

	tr, err := Truncate(n, n.Bounds())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := []float64{rng.Float64()*10 - 5, rng.Float64()*10 - 5}
		assert.Equal(t, n.LogDensity(v), tr.LogDensity(v))
	}
}

func TestTruncate_DimensionMismatch(t *testing.T) {
	_, err := Truncate(newMixture(t), NewBounds([]float64{0}, []float64{1}))

	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 1, dm.Actual)
}

func TestTruncate_InvalidBounds(t *testing.T) {
	_, err := Truncate(newMixture(t), NewBounds([]float64{0, 1}, []float64{1, 0}))
	assert.Error(t, err)
}

func TestBounds(t *testing.T) {
	a := NewBounds([]float64{0, 0}, []float64{2, 2})
	b := NewBounds([]float64{2, 0}, []float64{4, 2})
	c := NewBounds([]float64{1, 1}, []float64{3, 3})

	assert.False(t, a.Overlaps(b), "shared faces are not overlaps")
	assert.True(t, a.Overlaps(c))
	assert.Equal(t, 4.0, a.Volume())
	assert.True(t, a.Finite())
	assert.False(t, Unbounded(2).Finite())
	assert.True(t, math.IsInf(Unbounded(1).Volume(), 1))

	in := a.Intersect(c)
	assert.Equal(t, []float64{1, 1}, in.Lo)
	assert.Equal(t, []float64{2, 2}, in.Hi)

	assert.False(t, a.Contains([]float64{1}))
}

func TestBounds_JSON(t *testing.T) {
	b := NewBounds([]float64{math.Inf(-1), 0}, []float64{1, math.Inf(1)})

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var got Bounds
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, b.Equal(got))
}

func TestUnitCubeTransform(t *testing.T) {
	n, err := NewNormal([]float64{1, -1}, []float64{1, 2})
	require.NoError(t, err)
	n.Region = NewBounds([]float64{-4, -10}, []float64{6, 10})

	td, tr, err := ApplyTransform(UnitCube, n)
	require.NoError(t, err)

	assert.True(t, td.Bounds().Equal(NewBounds([]float64{0, 0}, []float64{1, 1})))

	x := []float64{0.5, 2}
	u := tr.Forward(x)
	assert.InDeltaSlice(t, x, tr.Inverse(u), 1e-12)

	// p_u(u) = p_x(x) * volume
	assert.InDelta(t, n.LogDensity(x)+math.Log(200), td.LogDensity(u), 1e-12)
	assert.True(t, math.IsInf(td.LogDensity([]float64{1.5, 0.5}), -1))
}

func TestApplyTransform(t *testing.T) {
	n, err := NewNormal([]float64{0}, []float64{1})
	require.NoError(t, err)

	d, tr, err := ApplyTransform(NoTransform, n)
	require.NoError(t, err)
	assert.Same(t, Density(n), d)
	assert.Equal(t, 0.0, tr.LogAbsDetJacobian([]float64{3}))

	_, _, err = ApplyTransform(UnitCube, n)
	assert.ErrorIs(t, err, ErrUnsupportedDensity)

	spec, err := ParseTransformSpec("unit-cube")
	require.NoError(t, err)
	assert.Equal(t, UnitCube, spec)
	_, err = ParseTransformSpec("spherical")
	assert.Error(t, err)
}

func TestBuiltinDensities(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		n, err := NewNormal([]float64{0}, []float64{1})
		require.NoError(t, err)
		assert.InDelta(t, -0.5*math.Log(2*math.Pi), n.LogDensity([]float64{0}), 1e-12)

		_, err = NewNormal([]float64{0}, []float64{0})
		assert.Error(t, err)
	})

	t.Run("uniform", func(t *testing.T) {
		u, err := NewUniform(NewBounds([]float64{0, 0}, []float64{2, 4}))
		require.NoError(t, err)
		assert.InDelta(t, -math.Log(8), u.LogDensity([]float64{1, 1}), 1e-12)
		assert.True(t, math.IsInf(u.LogDensity([]float64{3, 1}), -1))

		_, err = NewUniform(Unbounded(1))
		assert.ErrorIs(t, err, ErrUnsupportedDensity)
	})

	t.Run("mixture", func(t *testing.T) {
		a, _ := NewNormal([]float64{0}, []float64{1})
		m, err := NewMixture([]Density{a, a}, []float64{2, 2})
		require.NoError(t, err)
		assert.InDelta(t, a.LogDensity([]float64{0.3}), m.LogDensity([]float64{0.3}), 1e-12)

		_, err = NewMixture(nil, nil)
		assert.Error(t, err)
	})

	t.Run("func", func(t *testing.T) {
		f := &Func{Region: NewBounds([]float64{0}, []float64{1}), Fn: func(v []float64) float64 { return v[0] }}
		assert.Equal(t, 0.5, f.LogDensity([]float64{0.5}))
		assert.True(t, math.IsInf(f.LogDensity([]float64{2}), -1))
	})
}

func TestLogSumExp(t *testing.T) {
	assert.InDelta(t, math.Log(3), LogSumExp([]float64{0, 0, 0}), 1e-12)
	assert.InDelta(t, 1000+math.Log(2), LogSumExp([]float64{1000, 1000}), 1e-9)
	assert.True(t, math.IsInf(LogSumExp([]float64{math.Inf(-1)}), -1))
	assert.True(t, math.IsInf(LogSumExp(nil), -1))
}
