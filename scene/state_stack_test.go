package scene

import (
	"testing"

	"github.com/gogpu/compositor"
)

// countingCanvas wraps a recording Builder and tallies the structural
// calls the state stack emits, so tests can assert how many offscreen
// groups a walk opened and with what paint.
type countingCanvas struct {
	*compositor.Builder
	saves          int
	saveLayers     int
	backdropLayers int
	restores       int
	clipRects      []compositor.Rect
	layerPaints    []*compositor.Paint
	backdropPaints []*compositor.Paint
	listPaints     []*compositor.Paint
	pixmapRects    []compositor.Rect
}

func newCountingCanvas(bounds compositor.Rect) *countingCanvas {
	return &countingCanvas{Builder: compositor.NewBuilder(bounds)}
}

func clonePaint(p *compositor.Paint) *compositor.Paint {
	if p == nil {
		return nil
	}
	return p.Clone()
}

func (c *countingCanvas) Save() {
	c.saves++
	c.Builder.Save()
}

func (c *countingCanvas) SaveLayer(bounds compositor.Rect, paint *compositor.Paint) {
	c.saveLayers++
	c.layerPaints = append(c.layerPaints, clonePaint(paint))
	c.Builder.SaveLayer(bounds, paint)
}

func (c *countingCanvas) SaveLayerBackdrop(bounds compositor.Rect, paint *compositor.Paint, backdrop compositor.ImageFilter) {
	c.backdropLayers++
	c.backdropPaints = append(c.backdropPaints, clonePaint(paint))
	c.Builder.SaveLayerBackdrop(bounds, paint, backdrop)
}

func (c *countingCanvas) Restore() {
	c.restores++
	c.Builder.Restore()
}

func (c *countingCanvas) ClipRect(r compositor.Rect, antiAlias bool) {
	c.clipRects = append(c.clipRects, r)
	c.Builder.ClipRect(r, antiAlias)
}

func (c *countingCanvas) DrawDisplayList(dl *compositor.DisplayList, paint *compositor.Paint) {
	c.listPaints = append(c.listPaints, clonePaint(paint))
	c.Builder.DrawDisplayList(dl, paint)
}

func (c *countingCanvas) DrawPixmap(pm *compositor.Pixmap, dst compositor.Rect, paint *compositor.Paint) {
	c.pixmapRects = append(c.pixmapRects, dst)
	c.Builder.DrawPixmap(pm, dst, paint)
}

// commutingColorFilter returns a color filter that commutes with
// opacity: identity color rows, identity alpha row, no bias.
func commutingColorFilter() compositor.ColorFilter {
	var m [20]float64
	m[0], m[6], m[12], m[18] = 0.5, 0.5, 0.5, 1
	return &compositor.MatrixColorFilter{M: m}
}

func nonCommutingColorFilter() compositor.ColorFilter {
	return &compositor.BlendColorFilter{Color: compositor.Red, Mode: compositor.BlendMultiply}
}

func TestStateStackOpacityNesting(t *testing.T) {
	stack := NewStateStack()
	bounds := compositor.RectWH(100, 100)

	outer := stack.Save()
	outer.ApplyOpacity(bounds, 0.5)
	if got := stack.OutstandingOpacity(); got != 0.5 {
		t.Fatalf("outstanding opacity = %v, want 0.5", got)
	}

	inner := stack.Save()
	inner.ApplyOpacity(bounds, 0.5)
	if got := stack.OutstandingOpacity(); got != 0.25 {
		t.Fatalf("nested outstanding opacity = %v, want 0.25", got)
	}

	inner.Restore()
	if got := stack.OutstandingOpacity(); got != 0.5 {
		t.Errorf("opacity after inner restore = %v, want 0.5", got)
	}
	outer.Restore()
	if got := stack.OutstandingOpacity(); got != 1 {
		t.Errorf("opacity after outer restore = %v, want 1", got)
	}
}

func TestStateStackApplyStateResolvesOpacity(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)

	m := stack.Save()
	m.ApplyOpacity(bounds, 0.5)

	restore := stack.ApplyState(bounds, 0)
	if canvas.saveLayers != 1 {
		t.Fatalf("saveLayers = %d, want 1", canvas.saveLayers)
	}
	if p := canvas.layerPaints[0]; p == nil || p.Opacity != 0.5 {
		t.Errorf("group paint = %+v, want opacity 0.5", p)
	}
	if got := stack.OutstandingOpacity(); got != 1 {
		t.Errorf("opacity inside group = %v, want 1 (consumed)", got)
	}

	restore.Restore()
	if got := stack.OutstandingOpacity(); got != 0.5 {
		t.Errorf("opacity after group close = %v, want 0.5", got)
	}
	m.Restore()
}

func TestStateStackApplyStateDefersToCapableCaller(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)

	m := stack.Save()
	m.ApplyOpacity(bounds, 0.5)

	restore := stack.ApplyState(bounds, CallerCanApplyOpacity)
	if canvas.saveLayers != 0 {
		t.Errorf("saveLayers = %d, want 0 for capable caller", canvas.saveLayers)
	}
	if got := stack.OutstandingOpacity(); got != 0.5 {
		t.Errorf("opacity = %v, want 0.5 still outstanding", got)
	}
	restore.Restore()
	m.Restore()
}

func TestStateStackCommutingColorFilterStaysDeferred(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)
	cf := commutingColorFilter()

	m := stack.Save()
	defer m.Restore()
	m.ApplyOpacity(bounds, 0.5)
	m.ApplyColorFilter(bounds, cf)

	if canvas.saveLayers != 0 {
		t.Errorf("saveLayers = %d, want 0 for commuting filter", canvas.saveLayers)
	}
	if stack.OutstandingOpacity() != 0.5 || stack.OutstandingColorFilter() != cf {
		t.Error("opacity and color filter should both stay outstanding")
	}
}

func TestStateStackNonCommutingColorFilterResolvesOpacity(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)
	cf := nonCommutingColorFilter()

	m := stack.Save()
	defer m.Restore()
	m.ApplyOpacity(bounds, 0.5)
	m.ApplyColorFilter(bounds, cf)

	if canvas.saveLayers != 1 {
		t.Fatalf("saveLayers = %d, want 1 committing the opacity", canvas.saveLayers)
	}
	if p := canvas.layerPaints[0]; p == nil || p.Opacity != 0.5 {
		t.Errorf("group paint = %+v, want opacity 0.5", p)
	}
	if stack.OutstandingOpacity() != 1 {
		t.Errorf("opacity = %v, want 1 after commit", stack.OutstandingOpacity())
	}
	if stack.OutstandingColorFilter() != cf {
		t.Error("color filter should be outstanding after opacity resolved")
	}
}

func TestStateStackSecondColorFilterResolvesFirst(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)
	cf1 := commutingColorFilter()
	cf2 := nonCommutingColorFilter()

	m := stack.Save()
	defer m.Restore()
	m.ApplyColorFilter(bounds, cf1)
	m.ApplyColorFilter(bounds, cf2)

	if canvas.saveLayers != 1 {
		t.Fatalf("saveLayers = %d, want exactly 1", canvas.saveLayers)
	}
	if p := canvas.layerPaints[0]; p == nil || p.ColorFilter != cf1 {
		t.Error("group paint should carry the first filter")
	}
	if stack.OutstandingColorFilter() != cf2 {
		t.Error("second filter should be outstanding")
	}
}

func TestStateStackColorFilterThenImageFilterStayDeferred(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)
	cf := nonCommutingColorFilter()
	filter := &compositor.BlurImageFilter{SigmaX: 2, SigmaY: 2}

	outer := stack.Save()
	outer.ApplyColorFilter(bounds, cf)
	inner := stack.Save()
	inner.ApplyImageFilter(bounds, filter)

	if canvas.saveLayers != 0 {
		t.Fatalf("saveLayers = %d, want 0: the filters compose in one group", canvas.saveLayers)
	}
	if stack.OutstandingColorFilter() != cf {
		t.Error("color filter should stay outstanding under the image filter")
	}
	if stack.OutstandingImageFilter() != compositor.ImageFilter(filter) {
		t.Error("image filter should be outstanding")
	}

	paint := compositor.NewPaint()
	stack.Fill(paint)
	if paint.ColorFilter != cf || paint.ImageFilter != compositor.ImageFilter(filter) {
		t.Errorf("filled paint = %+v, want both filters carried", paint)
	}

	inner.Restore()
	outer.Restore()
}

func TestStateStackImageFilterResolvesBeforeOpacity(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)
	filter := &compositor.BlurImageFilter{SigmaX: 2, SigmaY: 2}

	m := stack.Save()
	defer m.Restore()
	m.ApplyImageFilter(bounds, filter)
	m.ApplyOpacity(bounds, 0.5)

	if canvas.saveLayers != 1 {
		t.Fatalf("saveLayers = %d, want 1 committing the image filter", canvas.saveLayers)
	}
	if p := canvas.layerPaints[0]; p == nil || p.ImageFilter != compositor.ImageFilter(filter) {
		t.Error("group paint should carry the image filter")
	}
	if stack.OutstandingImageFilter() != nil {
		t.Error("image filter should be consumed")
	}
	if stack.OutstandingOpacity() != 0.5 {
		t.Errorf("opacity = %v, want 0.5 outstanding", stack.OutstandingOpacity())
	}
}

func TestStateStackReplayOnSetDelegate(t *testing.T) {
	stack := NewStateStack()
	bounds := compositor.RectWH(50, 50)

	// Recorded with no delegate bound, the way preroll runs.
	m := stack.Save()
	m.Translate(10, 20)
	m.ApplyOpacity(bounds, 0.5)
	restore := stack.ApplyState(bounds, 0)

	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack.SetDelegate(canvas)

	if canvas.saves != 1 || canvas.saveLayers != 1 {
		t.Fatalf("replay emitted saves=%d saveLayers=%d, want 1 and 1",
			canvas.saves, canvas.saveLayers)
	}
	if p := canvas.layerPaints[0]; p == nil || p.Opacity != 0.5 {
		t.Errorf("replayed group paint = %+v, want opacity 0.5", p)
	}
	if got := canvas.Matrix(); got != compositor.Translate(10, 20) {
		t.Errorf("replayed matrix = %v, want translation", got)
	}
	if stack.OutstandingOpacity() != 1 {
		t.Error("opacity should be consumed by the replayed group")
	}

	restore.Restore()
	m.Restore()
	if canvas.restores != 2 {
		t.Errorf("restores = %d, want 2", canvas.restores)
	}
}

func TestStateStackOutOfOrderRestorePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-order restore")
		}
	}()
	stack := NewStateStack()
	outer := stack.Save()
	stack.Save()
	outer.Restore()
}

func TestStateStackSecondDelegatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic binding a second delegate")
		}
	}()
	stack := NewStateStack()
	stack.SetDelegate(newCountingCanvas(compositor.RectWH(10, 10)))
	stack.SetMutatorsDelegate(&MutatorStack{})
}

func TestStateStackClearDelegateClosesOpenScopes(t *testing.T) {
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)

	m := stack.Save()
	m.ApplyOpacity(bounds, 0.5)
	stack.ApplyState(bounds, 0)
	if got := canvas.SaveCount(); got != 3 {
		t.Fatalf("SaveCount = %d, want 3", got)
	}

	stack.ClearDelegate()
	if canvas.restores != 2 {
		t.Errorf("restores = %d, want 2 closing the open scopes", canvas.restores)
	}
	if got := canvas.SaveCount(); got != 1 {
		t.Errorf("SaveCount after clear = %d, want 1", got)
	}

	// The stack keeps its entries; a new delegate gets the same state.
	canvas2 := newCountingCanvas(compositor.RectWH(200, 200))
	stack.SetDelegate(canvas2)
	if canvas2.saves != 1 || canvas2.saveLayers != 1 {
		t.Errorf("rebind emitted saves=%d saveLayers=%d, want 1 and 1",
			canvas2.saves, canvas2.saveLayers)
	}
}

func TestStateStackMutatorsDelegateRecords(t *testing.T) {
	ms := &MutatorStack{}
	stack := NewStateStack()
	stack.SetMutatorsDelegate(ms)

	m := stack.Save()
	m.Translate(5, 6)
	m.ClipRect(compositor.RectWH(50, 50), false)

	if ms.Len() != 2 {
		t.Fatalf("recorded %d mutators, want 2", ms.Len())
	}
	muts := ms.Mutators()
	if muts[0].Kind != MutatorTransform || muts[0].Matrix != compositor.Translate(5, 6) {
		t.Errorf("first mutator = %+v, want the translation", muts[0])
	}
	if muts[1].Kind != MutatorClipRect || muts[1].Rect != compositor.RectWH(50, 50) {
		t.Errorf("second mutator = %+v, want the clip", muts[1])
	}

	m.Restore()
	if ms.Len() != 0 {
		t.Errorf("mutators after restore = %d, want 0", ms.Len())
	}
}

func TestStateStackCheckerboardOnGroupClose(t *testing.T) {
	var marked []compositor.Rect
	stack := NewStateStack()
	stack.SetCheckerboardFunc(func(c compositor.Canvas, r compositor.Rect) {
		marked = append(marked, r)
	})
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	stack.SetDelegate(canvas)
	bounds := compositor.RectWH(50, 50)

	m := stack.Save()
	m.ApplyOpacity(bounds, 0.5)
	restore := stack.ApplyState(bounds, 0)
	restore.Restore()
	m.Restore()

	if len(marked) != 1 || marked[0] != bounds {
		t.Errorf("checkerboard calls = %v, want one over %v", marked, bounds)
	}
}

func TestStateStackCulling(t *testing.T) {
	stack := NewStateStack()
	stack.SetPrerollDelegate(compositor.RectWH(100, 100), compositor.Identity())

	if !stack.ContentCulled(compositor.RectXYWH(150, 0, 10, 10)) {
		t.Error("content outside the frame should be culled")
	}

	m := stack.Save()
	m.ClipRect(compositor.RectWH(50, 50), false)
	if !stack.ContentCulled(compositor.RectXYWH(60, 60, 10, 10)) {
		t.Error("content outside the clip should be culled")
	}
	if stack.ContentCulled(compositor.RectXYWH(10, 10, 10, 10)) {
		t.Error("content inside the clip should not be culled")
	}

	m.Translate(40, 40)
	if !stack.ContentCulled(compositor.RectXYWH(15, 15, 20, 20)) {
		t.Error("translated content outside the clip should be culled")
	}
	m.Restore()
}

func TestStateStackZeroOpacityIsNop(t *testing.T) {
	stack := NewStateStack()
	m := stack.Save()
	defer m.Restore()
	m.ApplyOpacity(compositor.RectWH(10, 10), 0)
	if !stack.PaintingIsNop() {
		t.Error("zero opacity should make painting a nop")
	}
}
