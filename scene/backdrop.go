package scene

import "github.com/gogpu/compositor"

// BackdropFilterLayer filters everything already painted beneath it,
// then paints its children over the filtered backdrop. It is the one
// layer that must read back from the target surface.
type BackdropFilterLayer struct {
	ContainerLayer
	filter compositor.ImageFilter
	blend  compositor.BlendMode
}

// NewBackdropFilterLayer creates a backdrop filter layer. A nil filter
// still opens the group and applies the blend mode.
func NewBackdropFilterLayer(filter compositor.ImageFilter, blend compositor.BlendMode) *BackdropFilterLayer {
	return &BackdropFilterLayer{
		ContainerLayer: newContainerLayer("backdropFilter"),
		filter:         filter,
		blend:          blend,
	}
}

// Filter returns the backdrop filter.
func (l *BackdropFilterLayer) Filter() compositor.ImageFilter { return l.filter }

// Preroll implements Layer. The layer's own group absorbs descendant
// readbacks; the layer itself needs a surface readback whenever it
// carries a filter.
func (l *BackdropFilterLayer) Preroll(ctx *PrerollContext) {
	done := prerollSaveLayer(ctx, true, l.filter != nil)
	defer done()

	if ctx.ViewEmbedder != nil && l.filter != nil {
		ctx.ViewEmbedder.PushFilterToVisitedPlatformViews(l.filter, ctx.StateStack.LocalCullRect())
	}

	bounds := l.PrerollChildren(ctx)

	// The filtered backdrop covers the whole visible region, not just
	// where the children paint.
	bounds = bounds.Union(ctx.StateStack.LocalCullRect())
	l.SetPaintBounds(bounds)
	ctx.RenderableStateFlags = SaveLayerRenderFlags
}

// Paint implements Layer.
func (l *BackdropFilterLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()
	mutator.ApplyBackdropFilter(l.PaintBounds(), l.filter, l.blend)
	l.PaintChildren(ctx)
}

// Diff implements Layer.
func (l *BackdropFilterLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		old, ok := oldLayer.(*BackdropFilterLayer)
		if !ok || !imageFiltersMatch(l.filter, old.filter) || l.blend != old.blend {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
		}
	}

	// The filter output covers the cull rect.
	cull := ctx.LocalCullRect()
	ctx.AddLayerBounds(cull)

	if l.filter != nil {
		target := ctx.MapRect(cull).RoundOut()
		input := l.filter.InputDeviceBounds(target, ctx.Transform())
		ctx.AddReadbackRegion(input)
	}

	l.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}

func imageFiltersMatch(a, b compositor.ImageFilter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.EqualsImageFilter(b)
}

func colorFiltersMatch(a, b compositor.ColorFilter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.EqualsColorFilter(b)
}
