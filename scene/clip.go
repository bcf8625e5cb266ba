package scene

import "github.com/gogpu/compositor"

// ClipBehavior selects how a clip layer applies its shape.
type ClipBehavior uint8

const (
	// ClipHardEdge clips with no edge smoothing.
	ClipHardEdge ClipBehavior = iota
	// ClipAntiAlias clips with smoothed edges.
	ClipAntiAlias
	// ClipAntiAliasWithSaveLayer renders the subtree into an offscreen
	// group and clips the composited result, which avoids bleeding
	// artifacts where anti-aliased clip edges cross child edges.
	ClipAntiAliasWithSaveLayer
)

// clipShape abstracts the geometry of a clip layer over rect, rounded
// rect, and path clips.
type clipShape interface {
	bounds() compositor.Rect
	apply(m *MutatorContext, antiAlias bool)
	equals(o clipShape) bool
}

type rectClip struct{ r compositor.Rect }

func (c rectClip) bounds() compositor.Rect { return c.r }
func (c rectClip) apply(m *MutatorContext, antiAlias bool) {
	m.ClipRect(c.r, antiAlias)
}
func (c rectClip) equals(o clipShape) bool {
	oc, ok := o.(rectClip)
	return ok && c.r == oc.r
}

type rrectClip struct{ rr compositor.RRect }

func (c rrectClip) bounds() compositor.Rect { return c.rr.Rect }
func (c rrectClip) apply(m *MutatorContext, antiAlias bool) {
	m.ClipRRect(c.rr, antiAlias)
}
func (c rrectClip) equals(o clipShape) bool {
	oc, ok := o.(rrectClip)
	return ok && c.rr == oc.rr
}

type pathClip struct{ p *compositor.Path }

func (c pathClip) bounds() compositor.Rect { return c.p.Bounds() }
func (c pathClip) apply(m *MutatorContext, antiAlias bool) {
	m.ClipPath(c.p, antiAlias)
}
func (c pathClip) equals(o clipShape) bool {
	oc, ok := o.(pathClip)
	return ok && c.p.Equals(oc.p)
}

// clipShapeLayer is the shared core of the three clip layers.
type clipShapeLayer struct {
	CacheableContainerLayer
	shape    clipShape
	behavior ClipBehavior
}

func newClipShapeLayer(kind string, shape clipShape, behavior ClipBehavior) clipShapeLayer {
	return clipShapeLayer{
		CacheableContainerLayer: newCacheableContainerLayer(kind),
		shape:                   shape,
		behavior:                behavior,
	}
}

// ClipBehavior returns the layer's clip mode.
func (l *clipShapeLayer) ClipBehavior() ClipBehavior { return l.behavior }

func (l *clipShapeLayer) usesSaveLayer() bool {
	return l.behavior == ClipAntiAliasWithSaveLayer
}

func (l *clipShapeLayer) applyClip(m *MutatorContext) {
	l.shape.apply(m, l.behavior != ClipHardEdge)
}

// Preroll implements Layer.
func (l *clipShapeLayer) Preroll(ctx *PrerollContext) {
	done := prerollSaveLayer(ctx, l.usesSaveLayer(), false)
	defer done()

	if l.usesSaveLayer() {
		// Only the save layer variant re-composites an offscreen group
		// every frame; the cheap clips have nothing worth caching.
		ac := NewAutoCache(l.cacheItem, ctx, ctx.StateStack.TransformMatrix())
		defer ac.Finish()
	}

	mutator := ctx.StateStack.Save()
	l.applyClip(mutator)
	childBounds := l.PrerollChildren(ctx)
	mutator.Restore()

	l.SetPaintBounds(childBounds.Intersect(l.shape.bounds()))

	if l.usesSaveLayer() {
		// The offscreen group isolates the children; any outstanding
		// attribute folds into the group's composite paint.
		ctx.RenderableStateFlags = SaveLayerRenderFlags
	}
}

// Paint implements Layer.
func (l *clipShapeLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()
	l.applyClip(mutator)

	if !l.usesSaveLayer() {
		l.PaintChildren(ctx)
		return
	}

	if ctx.RasterCache != nil {
		mutator.IntegralTransform()
		if l.paintFromCache(ctx) {
			return
		}
	}

	mutator.SaveLayer(l.PaintBounds())
	l.PaintChildren(ctx)
}

func (l *clipShapeLayer) paintFromCache(ctx *PaintContext) bool {
	restore := ctx.StateStack.ApplyState(l.PaintBounds(), CallerCanApplyOpacity)
	defer restore.Restore()
	paint := compositor.NewPaint()
	ctx.StateStack.Fill(paint)
	return l.cacheItem.Draw(ctx, paint)
}

// Diff implements Layer.
func (l *clipShapeLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		if old, ok := oldLayer.(interface{ clipCore() *clipShapeLayer }); !ok ||
			l.behavior != old.clipCore().behavior || !l.shape.equals(old.clipCore().shape) {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
		}
	}
	if l.usesSaveLayer() {
		ctx.MakeTransformIntegral()
	}
	ctx.PushCullRect(l.shape.bounds())
	l.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}

func (l *clipShapeLayer) clipCore() *clipShapeLayer { return l }

// ClipRectLayer clips its subtree to a rectangle.
type ClipRectLayer struct{ clipShapeLayer }

// NewClipRectLayer creates a rectangular clip layer.
func NewClipRectLayer(r compositor.Rect, behavior ClipBehavior) *ClipRectLayer {
	l := &ClipRectLayer{clipShapeLayer: newClipShapeLayer("clipRect", rectClip{r: r}, behavior)}
	l.initCacheItem(l, filterLayerCacheThreshold, true)
	return l
}

// ClipRect returns the clip rectangle.
func (l *ClipRectLayer) ClipRect() compositor.Rect { return l.shape.(rectClip).r }

// ClipRRectLayer clips its subtree to a rounded rectangle.
type ClipRRectLayer struct{ clipShapeLayer }

// NewClipRRectLayer creates a rounded-rectangular clip layer.
func NewClipRRectLayer(rr compositor.RRect, behavior ClipBehavior) *ClipRRectLayer {
	l := &ClipRRectLayer{clipShapeLayer: newClipShapeLayer("clipRRect", rrectClip{rr: rr}, behavior)}
	l.initCacheItem(l, filterLayerCacheThreshold, true)
	return l
}

// ClipRRect returns the clip shape.
func (l *ClipRRectLayer) ClipRRect() compositor.RRect { return l.shape.(rrectClip).rr }

// ClipPathLayer clips its subtree to a path.
type ClipPathLayer struct{ clipShapeLayer }

// NewClipPathLayer creates a path clip layer.
func NewClipPathLayer(p *compositor.Path, behavior ClipBehavior) *ClipPathLayer {
	l := &ClipPathLayer{clipShapeLayer: newClipShapeLayer("clipPath", pathClip{p: p}, behavior)}
	l.initCacheItem(l, filterLayerCacheThreshold, true)
	return l
}

// ClipPath returns the clip path.
func (l *ClipPathLayer) ClipPath() *compositor.Path { return l.shape.(pathClip).p }
