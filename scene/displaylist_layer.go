package scene

import "github.com/gogpu/compositor"

// DisplayListLayer is the drawing leaf of the tree: a recorded display
// list replayed at an offset.
type DisplayListLayer struct {
	BaseLayer
	offset      compositor.Point
	displayList *compositor.DisplayList
	cacheItem   *DisplayListRasterCacheItem
}

// NewDisplayListLayer creates a leaf replaying dl at offset. dl must
// not be nil. isComplex and willChange are caching hints forwarded to
// the raster cache.
func NewDisplayListLayer(offset compositor.Point, dl *compositor.DisplayList, isComplex, willChange bool) *DisplayListLayer {
	if dl == nil {
		panic("scene: display list layer requires a display list")
	}
	return &DisplayListLayer{
		BaseLayer:   NewBaseLayer("displayList"),
		offset:      offset,
		displayList: dl,
		cacheItem:   NewDisplayListRasterCacheItem(dl, offset, isComplex, willChange),
	}
}

// DisplayList returns the recorded content.
func (l *DisplayListLayer) DisplayList() *compositor.DisplayList { return l.displayList }

// Offset returns the replay offset.
func (l *DisplayListLayer) Offset() compositor.Point { return l.offset }

// CachingKeyID implements Layer. Display list content is keyed by the
// list's identity, not the layer's, so a rebuilt tree holding the same
// list keeps its cache entry.
func (l *DisplayListLayer) CachingKeyID() RasterCacheKeyID {
	return NewRasterCacheKeyID(l.displayList.UniqueID(), RasterCacheKeyKindDisplayList)
}

// Preroll implements Layer.
func (l *DisplayListLayer) Preroll(ctx *PrerollContext) {
	ac := NewAutoCache(l.cacheItem, ctx, ctx.StateStack.TransformMatrix())
	defer ac.Finish()

	l.SetPaintBounds(l.displayList.Bounds().Offset(l.offset.X, l.offset.Y))
	ctx.RenderableStateFlags = DisplayListRenderFlags
}

// Paint implements Layer.
func (l *DisplayListLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()
	mutator.Translate(l.offset.X, l.offset.Y)
	if ctx.RasterCache != nil {
		mutator.IntegralTransform()
	}

	restore := ctx.StateStack.ApplyState(l.displayList.Bounds(), DisplayListRenderFlags)
	defer restore.Restore()

	paint := compositor.NewPaint()
	ctx.StateStack.Fill(paint)
	if ctx.RasterCache != nil && l.cacheItem.Draw(ctx, paint) {
		return
	}
	ctx.Canvas().DrawDisplayList(l.displayList, paint)
}

// IsReplacing implements Layer. Only a layer replaying identical
// content at the same offset continues an old layer; this lets the
// container walk notice a leaf inserted between two others.
func (l *DisplayListLayer) IsReplacing(ctx *DiffContext, oldLayer Layer) bool {
	old, ok := oldLayer.(*DisplayListLayer)
	if !ok || l.offset != old.offset {
		return false
	}
	if l.displayList.UniqueID() == old.displayList.UniqueID() {
		return true
	}
	return l.displayList.Equals(old.displayList)
}

// Diff implements Layer.
func (l *DisplayListLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	ctx.PushTransform(compositor.Translate(l.offset.X, l.offset.Y))
	ctx.MakeTransformIntegral()
	ctx.AddLayerBounds(l.displayList.Bounds())
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}
