package scene

import "github.com/gogpu/compositor"

// CacheState describes what a cache item intends to cache this frame.
type CacheState uint8

const (
	// CacheStateNone means the item is not caching.
	CacheStateNone CacheState = iota
	// CacheStateCurrent means the item caches its own full rendering.
	CacheStateCurrent
	// CacheStateChildren means a container caches its children's
	// combined rendering, leaving its own effect applied live.
	CacheStateChildren
)

// filterLayerCacheThreshold is the promotion threshold for layers whose
// effect is expensive to evaluate. Filters earn caching sooner.
const filterLayerCacheThreshold = 3

// RasterCacheItem is the caching agent of a layer or display list. The
// frame driver runs PrerollSetup before a subtree prerolls and
// PrerollFinalize after, then offers TryToPrepareRasterCache once the
// whole tree has prerolled, and the owner consults Draw while painting.
type RasterCacheItem interface {
	// PrerollSetup runs before the owner's subtree prerolls, under the
	// transform the owner will paint with.
	PrerollSetup(ctx *PrerollContext, matrix compositor.Matrix)

	// PrerollFinalize runs after the subtree prerolls and decides the
	// cache state for this frame.
	PrerollFinalize(ctx *PrerollContext, matrix compositor.Matrix)

	// NeedCaching reports whether the item wants its pixels in the
	// cache this frame.
	NeedCaching() bool

	// TryToPrepareRasterCache populates the cache entry. parentCached
	// suppresses population when an ancestor already caches this
	// content.
	TryToPrepareRasterCache(ctx *PaintContext, parentCached bool) bool

	// Draw replays the cached pixels, false on a miss.
	Draw(ctx *PaintContext, paint *compositor.Paint) bool

	// ID returns the cache identity for the current state, ok false
	// when the item is not caching.
	ID() (RasterCacheKeyID, bool)

	// CacheState returns the decision made by the last
	// PrerollFinalize.
	CacheState() CacheState

	// ChildItems returns how many cache items registered inside this
	// item's subtree, so a tree walk can skip them when this item's
	// entry covers them.
	ChildItems() int
}

// AutoCache brackets a subtree's preroll for its cache item. Create it
// on entry and defer Finish; both are no-ops when the item or the
// frame's cache is nil.
type AutoCache struct {
	item   RasterCacheItem
	ctx    *PrerollContext
	matrix compositor.Matrix
}

// NewAutoCache runs the item's PrerollSetup and returns the bracket.
func NewAutoCache(item RasterCacheItem, ctx *PrerollContext, matrix compositor.Matrix) *AutoCache {
	ac := &AutoCache{item: item, ctx: ctx, matrix: matrix}
	if ac.active() {
		item.PrerollSetup(ctx, matrix)
	}
	return ac
}

func (ac *AutoCache) active() bool {
	return ac.item != nil && ac.ctx.RasterCache != nil
}

// Finish runs the item's PrerollFinalize.
func (ac *AutoCache) Finish() {
	if ac.active() {
		ac.item.PrerollFinalize(ac.ctx, ac.matrix)
	}
}

// DisplayListRasterCacheItem caches a display list's replay.
type DisplayListRasterCacheItem struct {
	displayList *compositor.DisplayList
	offset      compositor.Point
	isComplex   bool
	willChange  bool

	keyID      RasterCacheKeyID
	matrix     compositor.Matrix
	cacheState CacheState
}

// NewDisplayListRasterCacheItem creates the caching agent for a display
// list drawn at offset. isComplex and willChange are caller hints:
// content that will change never caches, content flagged complex caches
// without consulting the complexity estimate.
func NewDisplayListRasterCacheItem(dl *compositor.DisplayList, offset compositor.Point, isComplex, willChange bool) *DisplayListRasterCacheItem {
	return &DisplayListRasterCacheItem{
		displayList: dl,
		offset:      offset,
		isComplex:   isComplex,
		willChange:  willChange,
		keyID:       NewRasterCacheKeyID(dl.UniqueID(), RasterCacheKeyKindDisplayList),
	}
}

// isWorthRasterizing weighs the caller hints and the complexity
// estimate.
func (i *DisplayListRasterCacheItem) isWorthRasterizing() bool {
	if i.willChange {
		return false
	}
	if i.isComplex {
		return true
	}
	calc := NaiveComplexityCalculator()
	return calc.ShouldBeCached(calc.Compute(i.displayList))
}

// PrerollSetup implements RasterCacheItem. The stored matrix has its
// translation snapped to whole pixels; the paint walk snaps the same
// way before consulting the cache, so the two walks agree on the key
// even when an ancestor moved by a fraction of a pixel between them.
func (i *DisplayListRasterCacheItem) PrerollSetup(ctx *PrerollContext, matrix compositor.Matrix) {
	i.cacheState = CacheStateNone
	i.matrix = matrix.Multiply(compositor.Translate(i.offset.X, i.offset.Y)).WithIntegerTranslation()
	if !i.matrix.Invertible() {
		return
	}
	if !i.isWorthRasterizing() {
		return
	}
	ctx.RasterCachedEntries = append(ctx.RasterCachedEntries, i)
}

// PrerollFinalize implements RasterCacheItem. The access count advances
// even for culled content that has been seen before, so scrolling
// content keeps its standing, but promotion needs visibility.
func (i *DisplayListRasterCacheItem) PrerollFinalize(ctx *PrerollContext, matrix compositor.Matrix) {
	cache := ctx.RasterCache
	if cache == nil || cache.AccessThreshold() == 0 || !i.isWorthRasterizing() {
		return
	}
	if !i.matrix.Invertible() {
		return
	}
	bounds := i.displayList.Bounds().Offset(i.offset.X, i.offset.Y)
	visible := !ctx.StateStack.ContentCulled(bounds)
	accesses := cache.MarkSeen(i.keyID, i.matrix, visible)
	if visible && accesses > cache.AccessThreshold() {
		i.cacheState = CacheStateCurrent
	}
}

// NeedCaching implements RasterCacheItem.
func (i *DisplayListRasterCacheItem) NeedCaching() bool { return i.cacheState != CacheStateNone }

// CacheState implements RasterCacheItem.
func (i *DisplayListRasterCacheItem) CacheState() CacheState { return i.cacheState }

// ChildItems implements RasterCacheItem. Display lists are leaves.
func (i *DisplayListRasterCacheItem) ChildItems() int { return 0 }

// ID implements RasterCacheItem.
func (i *DisplayListRasterCacheItem) ID() (RasterCacheKeyID, bool) {
	if i.cacheState == CacheStateNone {
		return RasterCacheKeyID{}, false
	}
	return i.keyID, true
}

// TryToPrepareRasterCache implements RasterCacheItem. Display list
// population is bounded per frame; an item over budget stays promoted
// and tries again next frame.
func (i *DisplayListRasterCacheItem) TryToPrepareRasterCache(ctx *PaintContext, parentCached bool) bool {
	if i.cacheState == CacheStateNone || parentCached || ctx.RasterCache == nil {
		return false
	}
	if !ctx.RasterCache.GenerateNewCacheInThisFrame() {
		return false
	}
	rctx := RasterizeContext{
		GPUContext:  ctx.GPUContext,
		Matrix:      i.matrix,
		LogicalRect: i.displayList.Bounds(),
		FlowType:    "DisplayList",
	}
	dl := i.displayList
	return ctx.RasterCache.UpdateCacheEntry(i.keyID, rctx, func(canvas compositor.Canvas) {
		canvas.DrawDisplayList(dl, nil)
	})
}

// Draw implements RasterCacheItem.
func (i *DisplayListRasterCacheItem) Draw(ctx *PaintContext, paint *compositor.Paint) bool {
	if i.cacheState != CacheStateCurrent || ctx.RasterCache == nil {
		return false
	}
	canvas := ctx.Canvas()
	if canvas == nil {
		return false
	}
	return ctx.RasterCache.Draw(i.keyID, canvas, paint)
}

// LayerRasterCacheItem caches a container layer's rendering, either the
// whole layer or just its children.
type LayerRasterCacheItem struct {
	layer Layer
	cont  *ContainerLayer

	cacheThreshold   int
	canCacheChildren bool
	numCacheAttempts int

	matrix          compositor.Matrix
	cacheState      CacheState
	childrenID      RasterCacheKeyID
	childItemsStart int
	childItems      int
}

// NewLayerRasterCacheItem creates the caching agent for a container
// layer. threshold zero disables caching for the layer; canCacheChildren
// lets the item fall back to caching the children alone while the layer
// earns full promotion.
func NewLayerRasterCacheItem(layer Layer, cont *ContainerLayer, threshold int, canCacheChildren bool) *LayerRasterCacheItem {
	return &LayerRasterCacheItem{
		layer:            layer,
		cont:             cont,
		cacheThreshold:   threshold,
		canCacheChildren: canCacheChildren,
	}
}

// MarkCacheChildren re-enables the children fallback.
func (i *LayerRasterCacheItem) MarkCacheChildren() { i.canCacheChildren = true }

// MarkNotCacheChildren disables the children fallback, used when the
// children can absorb the layer's effect themselves.
func (i *LayerRasterCacheItem) MarkNotCacheChildren() { i.canCacheChildren = false }

// PrerollSetup implements RasterCacheItem. The translation is snapped
// to whole pixels for the same reason as in the display list item.
func (i *LayerRasterCacheItem) PrerollSetup(ctx *PrerollContext, matrix compositor.Matrix) {
	i.cacheState = CacheStateNone
	i.matrix = matrix.WithIntegerTranslation()
	ctx.RasterCachedEntries = append(ctx.RasterCachedEntries, i)
	i.childItemsStart = len(ctx.RasterCachedEntries)
}

// PrerollFinalize implements RasterCacheItem. A subtree holding a
// platform view or an external texture never caches; their content is
// not owned by the compositor.
func (i *LayerRasterCacheItem) PrerollFinalize(ctx *PrerollContext, matrix compositor.Matrix) {
	i.childItems = len(ctx.RasterCachedEntries) - i.childItemsStart
	cache := ctx.RasterCache
	if cache == nil {
		return
	}
	if ctx.HasPlatformView || ctx.HasTextureLayer || i.cacheThreshold == 0 || !i.matrix.Invertible() {
		return
	}
	if ctx.StateStack.ContentCulled(i.layer.PaintBounds()) {
		return
	}
	if i.numCacheAttempts >= i.cacheThreshold {
		i.cacheState = CacheStateCurrent
		cache.MarkSeen(i.layer.CachingKeyID(), i.matrix, true)
	} else {
		i.numCacheAttempts++
		if i.canCacheChildren {
			ids, ok := LayerChildrenIDs(i.cont)
			if ok {
				i.childrenID = NewCompositeRasterCacheKeyID(ids, RasterCacheKeyKindLayerChildren)
				i.cacheState = CacheStateChildren
				cache.MarkSeen(i.childrenID, i.matrix, true)
			}
		}
	}
	if i.cacheState != CacheStateNone {
		ctx.RenderableStateFlags |= CallerCanApplyOpacity
	}
}

// NeedCaching implements RasterCacheItem.
func (i *LayerRasterCacheItem) NeedCaching() bool { return i.cacheState != CacheStateNone }

// CacheState implements RasterCacheItem.
func (i *LayerRasterCacheItem) CacheState() CacheState { return i.cacheState }

// ChildItems implements RasterCacheItem.
func (i *LayerRasterCacheItem) ChildItems() int { return i.childItems }

// ID implements RasterCacheItem.
func (i *LayerRasterCacheItem) ID() (RasterCacheKeyID, bool) {
	switch i.cacheState {
	case CacheStateCurrent:
		return i.layer.CachingKeyID(), true
	case CacheStateChildren:
		return i.childrenID, true
	}
	return RasterCacheKeyID{}, false
}

func (i *LayerRasterCacheItem) logicalRect() compositor.Rect {
	if i.cacheState == CacheStateChildren {
		return i.cont.ChildPaintBounds()
	}
	return i.layer.PaintBounds()
}

// TryToPrepareRasterCache implements RasterCacheItem.
func (i *LayerRasterCacheItem) TryToPrepareRasterCache(ctx *PaintContext, parentCached bool) bool {
	if i.cacheState == CacheStateNone || parentCached || ctx.RasterCache == nil {
		return false
	}
	id, ok := i.ID()
	if !ok {
		return false
	}
	rctx := RasterizeContext{
		GPUContext:  ctx.GPUContext,
		Matrix:      i.matrix,
		LogicalRect: i.logicalRect(),
		FlowType:    "Layer",
	}
	return ctx.RasterCache.UpdateCacheEntry(id, rctx, func(canvas compositor.Canvas) {
		i.rasterize(ctx, canvas)
	})
}

// rasterize paints the cached content into an offscreen canvas through
// a fresh state stack, with caching disabled so nothing recurses into
// the cache being populated.
func (i *LayerRasterCacheItem) rasterize(ctx *PaintContext, canvas compositor.Canvas) {
	stack := NewStateStack()
	stack.SetDelegate(canvas)
	nested := &PaintContext{
		StateStack:       stack,
		GPUContext:       ctx.GPUContext,
		ViewEmbedder:     ctx.ViewEmbedder,
		RasterTime:       ctx.RasterTime,
		UITime:           ctx.UITime,
		TextureRegistry:  ctx.TextureRegistry,
		DevicePixelRatio: ctx.DevicePixelRatio,
	}
	if i.cacheState == CacheStateChildren {
		i.cont.PaintChildren(nested)
		return
	}
	if i.layer.NeedsPainting(nested) {
		i.layer.Paint(nested)
	}
}

// Draw implements RasterCacheItem.
func (i *LayerRasterCacheItem) Draw(ctx *PaintContext, paint *compositor.Paint) bool {
	if i.cacheState == CacheStateNone || ctx.RasterCache == nil {
		return false
	}
	id, ok := i.ID()
	if !ok {
		return false
	}
	canvas := ctx.Canvas()
	if canvas == nil {
		return false
	}
	return ctx.RasterCache.Draw(id, canvas, paint)
}

// CacheableContainerLayer is the embedded core for container layers
// that participate in layer caching. Concrete layers call initCacheItem
// with themselves after construction so the item caches the full layer,
// effect included.
type CacheableContainerLayer struct {
	ContainerLayer
	cacheItem *LayerRasterCacheItem
}

func newCacheableContainerLayer(kind string) CacheableContainerLayer {
	return CacheableContainerLayer{ContainerLayer: newContainerLayer(kind)}
}

func (c *CacheableContainerLayer) initCacheItem(self Layer, threshold int, canCacheChildren bool) {
	c.cacheItem = NewLayerRasterCacheItem(self, &c.ContainerLayer, threshold, canCacheChildren)
}

// CacheItem exposes the layer's caching agent.
func (c *CacheableContainerLayer) CacheItem() *LayerRasterCacheItem { return c.cacheItem }
