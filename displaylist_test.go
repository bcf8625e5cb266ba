package compositor

import "testing"

func buildRectList(t *testing.T, r Rect) *DisplayList {
	t.Helper()
	b := NewBuilder(RectWH(500, 500))
	b.DrawRect(r, NewPaint())
	return b.Build()
}

func TestDisplayListUniqueIDs(t *testing.T) {
	a := buildRectList(t, RectWH(10, 10))
	b := buildRectList(t, RectWH(10, 10))
	if a.UniqueID() == b.UniqueID() {
		t.Errorf("two recordings share id %d", a.UniqueID())
	}
	if a.UniqueID() == 0 || b.UniqueID() == 0 {
		t.Error("ids must be nonzero")
	}
}

func TestDisplayListBounds(t *testing.T) {
	b := NewBuilder(RectWH(500, 500))
	b.DrawRect(RectLTRB(10, 10, 60, 40), nil)
	b.DrawRect(RectLTRB(100, 5, 120, 50), nil)
	dl := b.Build()

	want := RectLTRB(10, 5, 120, 50)
	if dl.Bounds() != want {
		t.Errorf("Bounds = %v, want %v", dl.Bounds(), want)
	}
}

func TestDisplayListBoundsTransformed(t *testing.T) {
	b := NewBuilder(RectWH(500, 500))
	b.Save()
	b.Translate(100, 50)
	b.DrawRect(RectWH(10, 10), nil)
	b.Restore()
	dl := b.Build()

	want := RectLTRB(100, 50, 110, 60)
	if dl.Bounds() != want {
		t.Errorf("Bounds = %v, want %v", dl.Bounds(), want)
	}
}

func TestDisplayListOpCount(t *testing.T) {
	inner := buildRectList(t, RectWH(10, 10))

	b := NewBuilder(RectWH(500, 500))
	b.DrawRect(RectWH(5, 5), nil)
	b.DrawDisplayList(inner, nil)
	dl := b.Build()

	if got := dl.OpCount(false); got != 2 {
		t.Errorf("OpCount(false) = %d, want 2", got)
	}
	if got := dl.OpCount(true); got != 3 {
		t.Errorf("OpCount(true) = %d, want 3", got)
	}
}

func TestDisplayListReplayEquals(t *testing.T) {
	b := NewBuilder(RectWH(500, 500))
	b.Save()
	b.Translate(7, 9)
	b.ClipRect(RectWH(50, 50), true)
	b.DrawRect(RectWH(20, 20), NewPaint())
	b.Restore()
	dl := b.Build()

	// Replaying into a fresh builder reproduces the recording.
	b2 := NewBuilder(RectWH(500, 500))
	dl.RenderTo(b2)
	if !dl.Equals(b2.Build()) {
		t.Error("replayed recording differs from original")
	}
}

func TestBuilderMatrixAndClip(t *testing.T) {
	b := NewBuilder(RectWH(100, 100))
	b.Save()
	b.Translate(10, 10)
	b.ClipRect(RectWH(50, 50), false)

	if got := b.Matrix(); got != Translate(10, 10) {
		t.Errorf("Matrix = %v", got)
	}
	if got := b.DeviceCullRect(); got != RectLTRB(10, 10, 60, 60) {
		t.Errorf("DeviceCullRect = %v", got)
	}

	b.Restore()
	if got := b.DeviceCullRect(); got != RectWH(100, 100) {
		t.Errorf("DeviceCullRect after restore = %v", got)
	}
	if got := b.SaveCount(); got != 1 {
		t.Errorf("SaveCount = %d, want 1", got)
	}
}
