package scene

import (
	"testing"

	"github.com/gogpu/compositor"
)

func TestDiffContextCleanSubtreeAddsNoDamage(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.AddLayerBounds(compositor.RectXYWH(10, 10, 20, 20))
	sub.End()

	d := ctx.ComputeDamage(compositor.Rect{})
	if !d.FrameDamage.IsEmpty() {
		t.Errorf("clean subtree produced damage %v", d.FrameDamage)
	}
}

func TestDiffContextDirtySubtreeDamagesItsBounds(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.MarkSubtreeDirty(PaintRegion{})
	ctx.AddLayerBounds(compositor.RectXYWH(10, 10, 20, 20))
	sub.End()

	d := ctx.ComputeDamage(compositor.Rect{})
	want := compositor.RectXYWH(10, 10, 20, 20)
	if d.FrameDamage != want {
		t.Errorf("FrameDamage = %v, want %v", d.FrameDamage, want)
	}
}

func TestDiffContextDirtyFlagDoesNotEscapeSubtree(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.MarkSubtreeDirty(PaintRegion{})
	sub.End()
	if ctx.IsSubtreeDirty() {
		t.Error("dirty flag leaked out of the subtree scope")
	}
}

func TestDiffContextDevicePixelRatioScalesBounds(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 2, nil)
	sub := ctx.BeginSubtree()
	ctx.AddLayerBounds(compositor.RectWH(50, 50))
	region := ctx.CurrentSubtreeRegion()
	sub.End()

	want := compositor.RectWH(100, 100)
	if region.Bounds() != want {
		t.Errorf("region bounds = %v, want %v", region.Bounds(), want)
	}
}

func TestDiffContextBoundsClippedToCull(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(100, 100), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.PushTransform(compositor.Translate(80, 0))
	ctx.AddLayerBounds(compositor.RectWH(40, 40))
	region := ctx.CurrentSubtreeRegion()
	sub.End()

	want := compositor.RectLTRB(80, 0, 100, 40)
	if region.Bounds() != want {
		t.Errorf("region bounds = %v, want %v", region.Bounds(), want)
	}
}

func TestDiffContextCullRectDropsInvisibleBounds(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(100, 100), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.PushCullRect(compositor.RectWH(50, 50))
	ctx.AddLayerBounds(compositor.RectXYWH(60, 60, 10, 10))
	region := ctx.CurrentSubtreeRegion()
	sub.End()

	if len(region.Rects()) != 0 {
		t.Errorf("culled bounds were recorded: %v", region.Rects())
	}
}

func TestDiffContextFilterBoundsAdjustment(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(400, 400), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.PushFilterBoundsAdjustment(func(r compositor.Rect) compositor.Rect {
		return r.Outset(10, 10)
	})
	ctx.AddLayerBounds(compositor.RectXYWH(100, 100, 50, 50))
	region := ctx.CurrentSubtreeRegion()

	want := compositor.RectLTRB(90, 90, 160, 160)
	if region.Bounds() != want {
		t.Errorf("adjusted bounds = %v, want %v", region.Bounds(), want)
	}
	sub.End()

	// The adjustment is scoped to the subtree.
	sub2 := ctx.BeginSubtree()
	ctx.AddLayerBounds(compositor.RectXYWH(100, 100, 50, 50))
	region2 := ctx.CurrentSubtreeRegion()
	sub2.End()
	if region2.Bounds() != compositor.RectXYWH(100, 100, 50, 50) {
		t.Errorf("adjustment leaked out of the subtree: %v", region2.Bounds())
	}
}

func TestDiffContextNestedFilterAdjustmentsCompose(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(400, 400), 1, nil)
	sub := ctx.BeginSubtree()
	ctx.PushFilterBoundsAdjustment(func(r compositor.Rect) compositor.Rect {
		return r.Outset(10, 10)
	})
	ctx.PushFilterBoundsAdjustment(func(r compositor.Rect) compositor.Rect {
		return r.Offset(5, 0)
	})
	ctx.AddLayerBounds(compositor.RectXYWH(100, 100, 50, 50))
	region := ctx.CurrentSubtreeRegion()
	sub.End()

	// Inner offset first, then outer outset.
	want := compositor.RectLTRB(95, 90, 165, 160)
	if region.Bounds() != want {
		t.Errorf("composed bounds = %v, want %v", region.Bounds(), want)
	}
}

func TestDiffContextReadbackWidensDamage(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	ctx.AddReadbackRegion(compositor.RectWH(100, 100))
	ctx.MarkSubtreeDirtyRect(compositor.RectXYWH(90, 90, 20, 20))

	d := ctx.ComputeDamage(compositor.Rect{})
	want := compositor.RectLTRB(0, 0, 110, 110)
	if d.FrameDamage != want {
		t.Errorf("FrameDamage = %v, want %v (damage widened over readback)", d.FrameDamage, want)
	}
}

func TestDiffContextReadbackChainsIteratively(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	ctx.AddReadbackRegion(compositor.RectWH(50, 50))
	ctx.AddReadbackRegion(compositor.RectXYWH(40, 40, 60, 60))
	ctx.MarkSubtreeDirtyRect(compositor.RectXYWH(95, 95, 5, 5))

	// Damage touches the second readback, whose widened extent then
	// touches the first.
	d := ctx.ComputeDamage(compositor.Rect{})
	want := compositor.RectLTRB(0, 0, 100, 100)
	if d.FrameDamage != want {
		t.Errorf("FrameDamage = %v, want %v", d.FrameDamage, want)
	}
}

func TestDiffContextReadbackUntouchedByDamage(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	ctx.AddReadbackRegion(compositor.RectWH(50, 50))
	ctx.MarkSubtreeDirtyRect(compositor.RectXYWH(100, 100, 10, 10))

	d := ctx.ComputeDamage(compositor.Rect{})
	want := compositor.RectXYWH(100, 100, 10, 10)
	if d.FrameDamage != want {
		t.Errorf("FrameDamage = %v, want %v (readback untouched)", d.FrameDamage, want)
	}
}

func TestDiffContextDamageRoundsOutAndClips(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(100, 100), 1, nil)
	ctx.MarkSubtreeDirtyRect(compositor.RectLTRB(10.3, 10.7, 120.2, 20.9))

	d := ctx.ComputeDamage(compositor.Rect{})
	want := compositor.RectLTRB(10, 10, 100, 21)
	if d.FrameDamage != want {
		t.Errorf("FrameDamage = %v, want %v", d.FrameDamage, want)
	}
	if d.BufferDamage != d.FrameDamage {
		t.Errorf("BufferDamage = %v, want same as frame damage", d.BufferDamage)
	}
}

func TestDiffContextPaintRegionsCarryAcrossFrames(t *testing.T) {
	layer := NewContainerLayer()

	first := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	sub := first.BeginSubtree()
	first.AddLayerBounds(compositor.RectXYWH(10, 10, 30, 30))
	first.SetLayerPaintRegion(layer, first.CurrentSubtreeRegion())
	sub.End()

	second := NewDiffContext(compositor.RectWH(200, 200), 1, first.PaintRegions())
	old := second.GetOldLayerPaintRegion(layer)
	if !old.IsValid() {
		t.Fatal("old paint region not found")
	}
	if old.Bounds() != compositor.RectXYWH(10, 10, 30, 30) {
		t.Errorf("old region bounds = %v", old.Bounds())
	}
	if second.GetOldLayerPaintRegion(NewContainerLayer()).IsValid() {
		t.Error("unknown layer should have no old region")
	}
}

func TestDiffContextSubtreeFlagsPropagate(t *testing.T) {
	ctx := NewDiffContext(compositor.RectWH(200, 200), 1, nil)
	outer := ctx.BeginSubtree()
	inner := ctx.BeginSubtree()
	ctx.AddReadbackRegion(compositor.RectWH(50, 50))
	ctx.MarkSubtreeHasTexture()
	innerRegion := ctx.CurrentSubtreeRegion()
	inner.End()
	outerRegion := ctx.CurrentSubtreeRegion()
	outer.End()

	if !innerRegion.HasReadback() || !innerRegion.HasTexture() {
		t.Error("inner region should carry its own flags")
	}
	if !outerRegion.HasReadback() || !outerRegion.HasTexture() {
		t.Error("subtree flags should propagate to the enclosing region")
	}
}
