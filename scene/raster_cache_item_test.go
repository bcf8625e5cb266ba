package scene

import (
	"testing"

	"github.com/gogpu/compositor"
)

func newPrerollStack(cull compositor.Rect) *StateStack {
	stack := NewStateStack()
	stack.SetPrerollDelegate(cull, compositor.Identity())
	return stack
}

// prerollDisplayListItem runs one frame's preroll protocol for a
// standalone display list item and returns its resulting state.
func prerollDisplayListItem(rc *RasterCache, item *DisplayListRasterCacheItem, cull compositor.Rect) CacheState {
	stack := newPrerollStack(cull)
	ctx := &PrerollContext{RasterCache: rc, StateStack: stack}
	item.PrerollSetup(ctx, stack.TransformMatrix())
	item.PrerollFinalize(ctx, stack.TransformMatrix())
	rc.EvictUnusedCacheEntries()
	rc.EndFrame()
	return item.CacheState()
}

func TestDisplayListItemEarnsPromotion(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	dl := buildCacheableList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, false, false)
	cull := compositor.RectWH(500, 500)

	if got := prerollDisplayListItem(rc, item, cull); got != CacheStateNone {
		t.Fatalf("first frame state = %v, want none (count equals threshold)", got)
	}
	if got := prerollDisplayListItem(rc, item, cull); got != CacheStateCurrent {
		t.Fatalf("second frame state = %v, want current", got)
	}

	pctx := &PaintContext{StateStack: NewStateStack(), RasterCache: rc}
	if !item.TryToPrepareRasterCache(pctx, false) {
		t.Fatal("promoted item failed to populate")
	}

	canvas := newCountingCanvas(compositor.RectWH(500, 500))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	paintCtx := &PaintContext{StateStack: stack, RasterCache: rc}
	if !item.Draw(paintCtx, compositor.NewPaint()) {
		t.Fatal("populated item did not draw")
	}
	if len(canvas.pixmapRects) != 1 {
		t.Errorf("pixmap draws = %d, want 1", len(canvas.pixmapRects))
	}
}

func TestDisplayListItemWillChangeNeverCaches(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	dl := buildCacheableList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, false, true)
	cull := compositor.RectWH(500, 500)

	stack := newPrerollStack(cull)
	ctx := &PrerollContext{RasterCache: rc, StateStack: stack}
	item.PrerollSetup(ctx, stack.TransformMatrix())
	if len(ctx.RasterCachedEntries) != 0 {
		t.Error("changing content must not register as a cache candidate")
	}
	for i := 0; i < 5; i++ {
		if got := prerollDisplayListItem(rc, item, cull); got != CacheStateNone {
			t.Fatalf("frame %d state = %v, want none", i, got)
		}
	}
}

func TestDisplayListItemTrivialContentNotWorthCaching(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	dl := buildTrivialList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, false, false)
	cull := compositor.RectWH(500, 500)

	for i := 0; i < 5; i++ {
		if got := prerollDisplayListItem(rc, item, cull); got != CacheStateNone {
			t.Fatalf("frame %d state = %v, want none for trivial content", i, got)
		}
	}
}

func TestDisplayListItemComplexHintOverridesEstimate(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	dl := buildTrivialList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, true, false)
	cull := compositor.RectWH(500, 500)

	prerollDisplayListItem(rc, item, cull)
	if got := prerollDisplayListItem(rc, item, cull); got != CacheStateCurrent {
		t.Errorf("state = %v, want current under the complex hint", got)
	}
}

func TestDisplayListItemCulledContentNotPromoted(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	dl := buildCacheableList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{X: 900, Y: 900}, false, false)
	cull := compositor.RectWH(500, 500)

	for i := 0; i < 5; i++ {
		if got := prerollDisplayListItem(rc, item, cull); got != CacheStateNone {
			t.Fatalf("frame %d state = %v, offscreen content must not promote", i, got)
		}
	}
}

func TestDisplayListItemZeroThresholdDisablesCaching(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(0))
	dl := buildCacheableList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, false, false)
	cull := compositor.RectWH(500, 500)

	for i := 0; i < 5; i++ {
		if got := prerollDisplayListItem(rc, item, cull); got != CacheStateNone {
			t.Fatalf("frame %d state = %v, threshold zero must never cache", i, got)
		}
	}
	if rc.EntryCount() != 0 {
		t.Errorf("EntryCount = %d, want 0 with caching disabled", rc.EntryCount())
	}
}

func TestDisplayListItemBudgetDefersPopulation(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1), WithDisplayListCacheLimitPerFrame(0))
	dl := buildCacheableList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, false, false)
	cull := compositor.RectWH(500, 500)

	prerollDisplayListItem(rc, item, cull)
	if got := prerollDisplayListItem(rc, item, cull); got != CacheStateCurrent {
		t.Fatalf("state = %v, want current", got)
	}
	pctx := &PaintContext{StateStack: NewStateStack(), RasterCache: rc}
	if item.TryToPrepareRasterCache(pctx, false) {
		t.Error("population over budget should be deferred")
	}
}

// prerollLayerItem runs one frame's preroll protocol for a container
// wrapped by a layer cache item.
func prerollLayerItem(rc *RasterCache, item *LayerRasterCacheItem, cont *ContainerLayer, cull compositor.Rect) (*PrerollContext, CacheState) {
	stack := newPrerollStack(cull)
	ctx := &PrerollContext{RasterCache: rc, StateStack: stack}
	item.PrerollSetup(ctx, stack.TransformMatrix())
	cont.Preroll(ctx)
	item.PrerollFinalize(ctx, stack.TransformMatrix())
	rc.EvictUnusedCacheEntries()
	rc.EndFrame()
	return ctx, item.CacheState()
}

func TestLayerItemCachesChildrenWhileEarningPromotion(t *testing.T) {
	rc := NewRasterCache()
	cont := NewContainerLayer()
	cont.Add(newLeafLayer(t, compositor.Point{}, compositor.RectWH(20, 20)))
	item := NewLayerRasterCacheItem(cont, cont, 2, true)
	cull := compositor.RectWH(500, 500)

	for frame := 1; frame <= 2; frame++ {
		ctx, state := prerollLayerItem(rc, item, cont, cull)
		if state != CacheStateChildren {
			t.Fatalf("frame %d state = %v, want children", frame, state)
		}
		if ctx.RenderableStateFlags&CallerCanApplyOpacity == 0 {
			t.Errorf("frame %d: caching layer should accept ancestor opacity", frame)
		}
		id, ok := item.ID()
		if !ok || id.Kind() != RasterCacheKeyKindLayerChildren {
			t.Errorf("frame %d id kind = %v, want layer children", frame, id.Kind())
		}
	}

	_, state := prerollLayerItem(rc, item, cont, cull)
	if state != CacheStateCurrent {
		t.Fatalf("state after threshold = %v, want current", state)
	}
	id, ok := item.ID()
	if !ok || !id.Equals(cont.CachingKeyID()) {
		t.Error("current state should use the layer's own key")
	}
}

func TestLayerItemPlatformViewBlocksCaching(t *testing.T) {
	rc := NewRasterCache()
	cont := NewContainerLayer()
	cont.Add(newLeafLayer(t, compositor.Point{}, compositor.RectWH(20, 20)))
	item := NewLayerRasterCacheItem(cont, cont, 1, true)

	stack := newPrerollStack(compositor.RectWH(500, 500))
	ctx := &PrerollContext{RasterCache: rc, StateStack: stack}
	item.PrerollSetup(ctx, stack.TransformMatrix())
	cont.Preroll(ctx)
	ctx.HasPlatformView = true
	item.PrerollFinalize(ctx, stack.TransformMatrix())

	if item.CacheState() != CacheStateNone {
		t.Error("a subtree holding a platform view must not cache")
	}
}

func TestLayerItemCulledLayerNotCached(t *testing.T) {
	rc := NewRasterCache()
	cont := NewContainerLayer()
	cont.Add(newLeafLayer(t, compositor.Point{X: 900, Y: 900}, compositor.RectWH(20, 20)))
	item := NewLayerRasterCacheItem(cont, cont, 1, true)

	_, state := prerollLayerItem(rc, item, cont, compositor.RectWH(500, 500))
	if state != CacheStateNone {
		t.Errorf("state = %v, offscreen layer must not cache", state)
	}
}

func TestLayerItemPopulateAndDraw(t *testing.T) {
	rc := NewRasterCache()
	cont := NewContainerLayer()
	cont.Add(newLeafLayer(t, compositor.Point{}, compositor.RectWH(20, 20)))
	item := NewLayerRasterCacheItem(cont, cont, 1, true)
	cull := compositor.RectWH(500, 500)

	if _, state := prerollLayerItem(rc, item, cont, cull); state != CacheStateChildren {
		t.Fatal("expected children state on the first frame")
	}
	pctx := &PaintContext{StateStack: NewStateStack(), RasterCache: rc}
	if !item.TryToPrepareRasterCache(pctx, false) {
		t.Fatal("population failed")
	}

	canvas := newCountingCanvas(compositor.RectWH(500, 500))
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	paintCtx := &PaintContext{StateStack: stack, RasterCache: rc}
	if !item.Draw(paintCtx, compositor.NewPaint()) {
		t.Fatal("populated item did not draw")
	}
	if len(canvas.pixmapRects) != 1 || len(canvas.listPaints) != 0 {
		t.Errorf("pixmap=%d list=%d, want the cached pixels only",
			len(canvas.pixmapRects), len(canvas.listPaints))
	}
}

func TestAutoCacheInactiveWithoutCache(t *testing.T) {
	dl := buildCacheableList(t, compositor.RectWH(10, 10))
	item := NewDisplayListRasterCacheItem(dl, compositor.Point{}, false, false)
	stack := newPrerollStack(compositor.RectWH(100, 100))
	ctx := &PrerollContext{StateStack: stack}

	ac := NewAutoCache(item, ctx, stack.TransformMatrix())
	ac.Finish()
	if len(ctx.RasterCachedEntries) != 0 {
		t.Error("item registered although caching is disabled for the frame")
	}
}
