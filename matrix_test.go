package compositor

import (
	"math"
	"testing"
)

func TestMatrixTransformRect(t *testing.T) {
	m := Scale(2, 2)
	got := m.TransformRect(RectLTRB(0, 0, 300.2, 300.3))
	want := RectLTRB(0, 0, 600.4, 600.6)
	const eps = 1e-9
	if math.Abs(got.MaxX-want.MaxX) > eps || math.Abs(got.MaxY-want.MaxY) > eps ||
		got.MinX != 0 || got.MinY != 0 {
		t.Errorf("TransformRect = %v, want %v", got, want)
	}
}

func TestMatrixTransformRectRotation(t *testing.T) {
	// A quarter turn maps the unit square to [-1,0]x[0,1].
	m := Rotate(math.Pi / 2)
	got := m.TransformRect(RectLTRB(0, 0, 1, 1))
	const eps = 1e-9
	if math.Abs(got.MinX+1) > eps || math.Abs(got.MinY) > eps ||
		math.Abs(got.MaxX) > eps || math.Abs(got.MaxY-1) > eps {
		t.Errorf("TransformRect under rotation = %v", got)
	}
}

func TestMatrixInvertible(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want bool
	}{
		{"identity", Identity(), true},
		{"scale", Scale(2, 3), true},
		{"translate", Translate(10, 20), true},
		{"zero scale", Scale(0, 0), false},
		{"collapsed x", Scale(0, 1), false},
		{"degenerate", Matrix{A: 1, B: 1, D: 1, E: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Invertible(); got != tt.want {
				t.Errorf("Invertible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatrixIntegerTranslation(t *testing.T) {
	m := Translate(10.4, 20.6)
	snapped := m.WithIntegerTranslation()
	if snapped.C != 10 || snapped.F != 21 {
		t.Errorf("WithIntegerTranslation = (%v, %v), want (10, 21)", snapped.C, snapped.F)
	}
	if !snapped.HasIntegerTranslation() {
		t.Error("snapped matrix should have integer translation")
	}

	frac := m.WithFractionalTranslation()
	const eps = 1e-9
	if math.Abs(frac.C-0.4) > eps || math.Abs(frac.F-0.6) > eps {
		t.Errorf("WithFractionalTranslation = (%v, %v), want (0.4, 0.6)", frac.C, frac.F)
	}

	// Transforms differing by whole pixels reduce to the same key form.
	a := Translate(100.25, 200.5).WithFractionalTranslation()
	b := Translate(3.25, 7.5).WithFractionalTranslation()
	if math.Abs(a.C-b.C) > eps || math.Abs(a.F-b.F) > eps {
		t.Errorf("fractional forms differ: %v vs %v", a, b)
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Translate(5, 7).Multiply(Scale(2, 4)).Multiply(Rotate(0.3))
	p := Point{X: 11, Y: -3}
	q := m.Invert().TransformPoint(m.TransformPoint(p))
	const eps = 1e-9
	if math.Abs(q.X-p.X) > eps || math.Abs(q.Y-p.Y) > eps {
		t.Errorf("round trip = %v, want %v", q, p)
	}
}
