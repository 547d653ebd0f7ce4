package colorscale

import (
	"math"
	"testing"
)

func newTestMapper(t *testing.T, p Params, values []float64) *Mapper {
	t.Helper()
	m, err := NewMapper(p, values)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDerivedBounds(t *testing.T) {
	m := newTestMapper(t, Params{Scale: "ColdHot"}, []float64{-1.0, 0.0, 1.0})
	if m.Min != -1.0 || m.Max != 1.0 {
		t.Errorf("bounds = [%v, %v], want [-1, 1]", m.Min, m.Max)
	}
}

func TestExplicitBounds(t *testing.T) {
	lo, hi := -0.5, 0.5
	m := newTestMapper(t, Params{Scale: "ColdHot", Min: &lo, Max: &hi}, nil)
	if m.Min != lo || m.Max != hi {
		t.Errorf("bounds = [%v, %v], want [%v, %v]", m.Min, m.Max, lo, hi)
	}
}

func TestNormalizeClampsAndIsMonotonic(t *testing.T) {
	m := newTestMapper(t, Params{Scale: "ColdHot"}, []float64{-1.0, 1.0})

	if got := m.Normalize(-100); got != 0 {
		t.Errorf("Normalize(-100) = %v, want 0", got)
	}
	if got := m.Normalize(100); got != 1 {
		t.Errorf("Normalize(100) = %v, want 1", got)
	}

	prev := math.Inf(-1)
	for v := -1.5; v <= 1.5; v += 0.01 {
		n := m.Normalize(v)
		if n < prev {
			t.Fatalf("Normalize not monotonic at %v: %v < %v", v, n, prev)
		}
		prev = n
	}
}

func TestClampedColorsMatchBoundaryColors(t *testing.T) {
	m := newTestMapper(t, Params{Scale: "ColdHot"}, []float64{-1.0, 1.0})
	if m.Color(-50) != m.Color(-1.0) {
		t.Error("color below min differs from color at min")
	}
	if m.Color(50) != m.Color(1.0) {
		t.Error("color above max differs from color at max")
	}
	for _, v := range []float64{-2, -1, 0, 0.5, 1, 2} {
		c := m.Color(v)
		for i := 0; i < 3; i++ {
			if c[i] < 0 || c[i] > 1 {
				t.Fatalf("component %d of Color(%v) = %v outside [0,1]", i, v, c[i])
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	values := []float64{-0.3, 0.1, 0.25, 0.9}
	m1 := newTestMapper(t, Params{Scale: "ColdHot"}, values)
	m2 := newTestMapper(t, Params{Scale: "ColdHot"}, values)
	c1 := m1.Colors(values)
	c2 := m2.Colors(values)
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("color %d differs between identical runs: %v vs %v", i, c1[i], c2[i])
		}
	}
}

func TestScaleLookup(t *testing.T) {
	m := newTestMapper(t, Params{Scale: "coldhot"}, []float64{0, 1})
	if m.Name != "ColdHot" {
		t.Errorf("resolved name = %q, want ColdHot", m.Name)
	}

	if _, err := NewMapper(Params{Scale: "no-such-scale"}, []float64{0, 1}); err == nil {
		t.Error("unknown scale did not error")
	}
}

func TestRobustBounds(t *testing.T) {
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i)
	}
	m := newTestMapper(t, Params{Scale: "ColdHot", Robust: true, RobustPct: 10}, values)
	if math.Abs(m.Min-10) > 1e-9 || math.Abs(m.Max-90) > 1e-9 {
		t.Errorf("robust bounds = [%v, %v], want [10, 90]", m.Min, m.Max)
	}
}

func TestDegenerateRange(t *testing.T) {
	m := newTestMapper(t, Params{Scale: "ColdHot"}, []float64{0.5, 0.5, 0.5})
	if n := m.Normalize(0.5); math.IsNaN(n) || n < 0 || n > 1 {
		t.Errorf("Normalize on flat data = %v", n)
	}
}
