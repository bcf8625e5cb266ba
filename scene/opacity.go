package scene

import (
	"math"

	"github.com/gogpu/compositor"
)

// OpacityLayer modulates its subtree's alpha. The modulation stays
// deferred on the state stack; when every child declares it can apply
// opacity itself, no offscreen group is ever opened. The layer never
// caches its own rendering, but when the children cannot absorb the
// opacity it becomes a candidate for caching their combined output,
// since that is the content an offscreen group would re-composite
// every frame.
type OpacityLayer struct {
	CacheableContainerLayer
	offset  compositor.Point
	opacity float64

	childrenCanAcceptOpacity bool
}

// NewOpacityLayer creates an opacity layer. opacity is in [0, 1];
// offset translates the subtree.
func NewOpacityLayer(opacity float64, offset compositor.Point) *OpacityLayer {
	l := &OpacityLayer{
		CacheableContainerLayer: newCacheableContainerLayer("opacity"),
		offset:                  offset,
		opacity:                 opacity,
	}
	// The layer itself is never worth caching, its output changes with
	// every opacity animation tick. Only the children fallback is live.
	l.initCacheItem(l, math.MaxInt, true)
	return l
}

// Opacity returns the layer's alpha modulation.
func (l *OpacityLayer) Opacity() float64 { return l.opacity }

// Offset returns the subtree translation.
func (l *OpacityLayer) Offset() compositor.Point { return l.offset }

// ChildrenCanAcceptOpacity reports whether the last Preroll found that
// every child applies opacity itself.
func (l *OpacityLayer) ChildrenCanAcceptOpacity() bool { return l.childrenCanAcceptOpacity }

// Preroll implements Layer.
func (l *OpacityLayer) Preroll(ctx *PrerollContext) {
	mutator := ctx.StateStack.Save()
	mutator.Translate(l.offset.X, l.offset.Y)
	mutator.ApplyOpacity(compositor.Rect{}, l.opacity)

	ac := NewAutoCache(l.cacheItem, ctx, ctx.StateStack.TransformMatrix())
	defer ac.Finish()

	bounds := l.PrerollChildren(ctx)
	l.childrenCanAcceptOpacity = ctx.RenderableStateFlags&CallerCanApplyOpacity != 0

	// Regardless of what the children can do, this layer absorbs an
	// ancestor's opacity by folding it into its own.
	ctx.RenderableStateFlags |= CallerCanApplyOpacity

	if l.childrenCanAcceptOpacity {
		// The children distribute the alpha themselves; caching their
		// combined output would gain nothing over painting them.
		l.cacheItem.MarkNotCacheChildren()
	} else {
		l.cacheItem.MarkCacheChildren()
	}

	mutator.Restore()
	l.SetPaintBounds(bounds.Offset(l.offset.X, l.offset.Y))
}

// Paint implements Layer.
func (l *OpacityLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()
	mutator.Translate(l.offset.X, l.offset.Y)
	if ctx.RasterCache != nil {
		mutator.IntegralTransform()
	}

	mutator.ApplyOpacity(l.ChildPaintBounds(), l.opacity)

	if ctx.RasterCache != nil && l.cacheItem.NeedCaching() {
		paint := compositor.NewPaint()
		ctx.StateStack.Fill(paint)
		if l.cacheItem.Draw(ctx, paint) {
			return
		}
	}

	if !ctx.StateStack.PaintingIsNop() {
		l.PaintChildren(ctx)
	}
}

// Diff implements Layer.
func (l *OpacityLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		if old, ok := oldLayer.(*OpacityLayer); !ok || l.opacity != old.opacity || l.offset != old.offset {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
		}
	}
	ctx.PushTransform(compositor.Translate(l.offset.X, l.offset.Y))
	ctx.MakeTransformIntegral()
	l.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}
