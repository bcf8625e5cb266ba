package compositor

import "testing"

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		name  string
		rect  Rect
		empty bool
	}{
		{"zero value", Rect{}, true},
		{"inverted", RectLTRB(10, 10, 0, 0), true},
		{"zero width", RectLTRB(5, 0, 5, 10), true},
		{"normal", RectLTRB(0, 0, 10, 10), false},
		{"fractional", RectLTRB(0, 0, 0.5, 0.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := RectLTRB(0, 0, 10, 10)
	b := RectLTRB(5, 5, 20, 15)

	got := a.Union(b)
	want := RectLTRB(0, 0, 20, 15)
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}

	// Empty operands contribute nothing.
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %v, want %v", got, a)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union = %v, want %v", got, b)
	}
}

func TestRectIntersect(t *testing.T) {
	a := RectLTRB(0, 0, 10, 10)
	b := RectLTRB(5, 5, 20, 15)

	got := a.Intersect(b)
	want := RectLTRB(5, 5, 10, 10)
	if got != want {
		t.Errorf("Intersect = %v, want %v", got, want)
	}

	// Disjoint rects produce the canonical empty rect.
	c := RectLTRB(100, 100, 110, 110)
	if got := a.Intersect(c); got != (Rect{}) {
		t.Errorf("disjoint Intersect = %v, want zero", got)
	}
}

func TestRectIntersects(t *testing.T) {
	a := RectLTRB(0, 0, 10, 10)

	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", RectLTRB(5, 5, 15, 15), true},
		{"touching edge", RectLTRB(10, 0, 20, 10), false},
		{"disjoint", RectLTRB(20, 20, 30, 30), false},
		{"contained", RectLTRB(2, 2, 8, 8), true},
		{"empty", Rect{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestRectRoundOut(t *testing.T) {
	got := RectLTRB(0.2, 0.7, 9.1, 9.9).RoundOut()
	want := RectLTRB(0, 0, 10, 10)
	if got != want {
		t.Errorf("RoundOut = %v, want %v", got, want)
	}

	neg := RectLTRB(-1.5, -0.1, 2.5, 3.0).RoundOut()
	if neg != RectLTRB(-2, -1, 3, 3) {
		t.Errorf("RoundOut negative = %v", neg)
	}
}
