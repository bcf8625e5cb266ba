package scene

import "github.com/gogpu/compositor"

// ImageFilterLayer applies an image filter to its subtree's composited
// output. Filters are expensive to evaluate, so the layer caches
// aggressively: first the raw children while it earns promotion, then
// its own filtered output.
type ImageFilterLayer struct {
	CacheableContainerLayer
	filter compositor.ImageFilter
}

// NewImageFilterLayer creates an image filter layer. A nil filter
// leaves the subtree untouched.
func NewImageFilterLayer(filter compositor.ImageFilter) *ImageFilterLayer {
	l := &ImageFilterLayer{
		CacheableContainerLayer: newCacheableContainerLayer("imageFilter"),
		filter:                  filter,
	}
	l.initCacheItem(l, filterLayerCacheThreshold, true)
	return l
}

// Filter returns the layer's image filter.
func (l *ImageFilterLayer) Filter() compositor.ImageFilter { return l.filter }

// Preroll implements Layer.
func (l *ImageFilterLayer) Preroll(ctx *PrerollContext) {
	ac := NewAutoCache(l.cacheItem, ctx, ctx.StateStack.TransformMatrix())
	defer ac.Finish()

	bounds := l.PrerollChildren(ctx)
	if l.filter != nil {
		bounds = l.filter.MapBounds(bounds)
	}
	l.SetPaintBounds(bounds)
	ctx.RenderableStateFlags = SaveLayerRenderFlags
}

// Paint implements Layer.
func (l *ImageFilterLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()

	if ctx.RasterCache != nil {
		mutator.IntegralTransform()
		// The fully filtered output may be cached; drawing it replaces
		// the whole subtree including the filter.
		if l.cacheItem.CacheState() == CacheStateCurrent && drawLayerFromCache(ctx, l.cacheItem) {
			return
		}
	}

	if l.filter != nil {
		mutator.ApplyImageFilter(l.ChildPaintBounds(), l.filter)
	}

	if ctx.RasterCache != nil && l.cacheItem.CacheState() == CacheStateChildren {
		// The raw children may be cached; the filter just recorded
		// above folds into the cached draw.
		if drawLayerFromCache(ctx, l.cacheItem) {
			return
		}
	}

	l.PaintChildren(ctx)
}

// Diff implements Layer.
func (l *ImageFilterLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		if old, ok := oldLayer.(*ImageFilterLayer); !ok || !imageFiltersMatch(l.filter, old.filter) {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
		}
	}
	ctx.MakeTransformIntegral()
	if l.filter != nil {
		filter := l.filter
		ctx.PushFilterBoundsAdjustment(func(r compositor.Rect) compositor.Rect {
			return filter.MapBounds(r)
		})
	}
	l.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}

// ColorFilterLayer applies a color filter to its subtree's composited
// output.
type ColorFilterLayer struct {
	CacheableContainerLayer
	filter compositor.ColorFilter
}

// NewColorFilterLayer creates a color filter layer.
func NewColorFilterLayer(filter compositor.ColorFilter) *ColorFilterLayer {
	l := &ColorFilterLayer{
		CacheableContainerLayer: newCacheableContainerLayer("colorFilter"),
		filter:                  filter,
	}
	l.initCacheItem(l, filterLayerCacheThreshold, true)
	return l
}

// Filter returns the layer's color filter.
func (l *ColorFilterLayer) Filter() compositor.ColorFilter { return l.filter }

// Preroll implements Layer.
func (l *ColorFilterLayer) Preroll(ctx *PrerollContext) {
	ac := NewAutoCache(l.cacheItem, ctx, ctx.StateStack.TransformMatrix())
	defer ac.Finish()

	l.SetPaintBounds(l.PrerollChildren(ctx))
	ctx.RenderableStateFlags = SaveLayerRenderFlags
}

// Paint implements Layer.
func (l *ColorFilterLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()

	if ctx.RasterCache != nil {
		mutator.IntegralTransform()
		if l.cacheItem.CacheState() == CacheStateCurrent && drawLayerFromCache(ctx, l.cacheItem) {
			return
		}
	}

	if l.filter != nil {
		mutator.ApplyColorFilter(l.ChildPaintBounds(), l.filter)
	}

	if ctx.RasterCache != nil && l.cacheItem.CacheState() == CacheStateChildren {
		if drawLayerFromCache(ctx, l.cacheItem) {
			return
		}
	}

	l.PaintChildren(ctx)
}

// Diff implements Layer.
func (l *ColorFilterLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		if old, ok := oldLayer.(*ColorFilterLayer); !ok || !colorFiltersMatch(l.filter, old.filter) {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
		}
	}
	l.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}

// drawLayerFromCache folds the outstanding attributes into a paint and
// replays the item's cached pixels.
func drawLayerFromCache(ctx *PaintContext, item *LayerRasterCacheItem) bool {
	paint := compositor.NewPaint()
	ctx.StateStack.Fill(paint)
	return item.Draw(ctx, paint)
}
