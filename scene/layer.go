// Package scene implements the retained-mode layer tree: the layer
// protocol (Preroll, Paint, Diff), the deferred-resolution state stack,
// and the raster cache that promotes stable subtrees to cached bitmaps.
//
// A frame walks the tree three times. Diff compares the tree against
// the previous frame's tree and computes damage. Preroll descends with
// a PrerollContext to compute paint bounds, readback requirements, and
// raster cache candidacy. Paint descends with a PaintContext bound to a
// backend canvas and emits drawing, replaying cached content where the
// cache holds it.
package scene

import (
	"sync/atomic"

	"github.com/gogpu/compositor"
)

// layerIDs assigns stable unique ids to layers.
var layerIDs atomic.Uint64

// Layer is a node of the retained scene graph.
//
// The protocol is strict: Preroll must run before Paint each frame, and
// Paint must not be called when NeedsPainting reports false. Both
// violations indicate a broken frame driver and panic.
type Layer interface {
	// UniqueID returns the identity of this layer. Ids are unique for
	// the lifetime of the process and never reused.
	UniqueID() uint64

	// Preroll computes paint bounds and per-subtree flags, and
	// registers raster cache candidates. It runs top-down before any
	// painting.
	Preroll(ctx *PrerollContext)

	// Paint emits the layer's content. Callers must check
	// NeedsPainting first.
	Paint(ctx *PaintContext)

	// Diff compares this layer against its predecessor from the
	// previous frame and records paint regions and damage. oldLayer is
	// nil when there is no predecessor.
	Diff(ctx *DiffContext, oldLayer Layer)

	// PaintBounds returns the bounds computed by the last Preroll, in
	// the layer's own coordinate space.
	PaintBounds() compositor.Rect

	// SetPaintBounds overrides the prerolled bounds.
	SetPaintBounds(bounds compositor.Rect)

	// NeedsPainting reports whether the layer has visible content
	// inside the current cull rect.
	NeedsPainting(ctx *PaintContext) bool

	// IsReplacing reports whether this layer continues oldLayer's role
	// in the tree, so Diff can compare them instead of marking the
	// subtree dirty.
	IsReplacing(ctx *DiffContext, oldLayer Layer) bool

	// Kind returns a short name for the layer type, used for matching
	// in Diff and for diagnostics.
	Kind() string

	// CachingKeyID returns the raster cache identity of this layer.
	CachingKeyID() RasterCacheKeyID
}

// BaseLayer carries the bookkeeping every layer shares. Concrete
// layers embed it and implement the tree walks.
type BaseLayer struct {
	id          uint64
	kind        string
	paintBounds compositor.Rect
}

// NewBaseLayer creates the embedded core for a layer of the given kind.
func NewBaseLayer(kind string) BaseLayer {
	return BaseLayer{id: layerIDs.Add(1), kind: kind}
}

// UniqueID implements Layer.
func (b *BaseLayer) UniqueID() uint64 { return b.id }

// Kind implements Layer.
func (b *BaseLayer) Kind() string { return b.kind }

// PaintBounds implements Layer.
func (b *BaseLayer) PaintBounds() compositor.Rect { return b.paintBounds }

// SetPaintBounds implements Layer.
func (b *BaseLayer) SetPaintBounds(bounds compositor.Rect) { b.paintBounds = bounds }

// NeedsPainting implements Layer.
func (b *BaseLayer) NeedsPainting(ctx *PaintContext) bool {
	return !b.paintBounds.IsEmpty() && !ctx.StateStack.ContentCulled(b.paintBounds)
}

// IsReplacing implements Layer. Layers of the same kind occupying the
// same position in the tree are compared in place.
func (b *BaseLayer) IsReplacing(ctx *DiffContext, oldLayer Layer) bool {
	return oldLayer != nil && b.kind == oldLayer.Kind()
}

// CachingKeyID implements Layer.
func (b *BaseLayer) CachingKeyID() RasterCacheKeyID {
	return NewRasterCacheKeyID(b.id, RasterCacheKeyKindLayer)
}

// assertPaintable panics when the frame driver violates the protocol
// by painting a layer that reported no paintable content.
func assertPaintable(l Layer, ctx *PaintContext) {
	if !l.NeedsPainting(ctx) {
		panic("scene: Paint called on layer that does not need painting")
	}
}

// prerollSaveLayer brackets the preroll of a subtree that renders
// through an offscreen group. While the group is active, readbacks of
// descendants are absorbed: they read the group's own buffer, not the
// surface. The returned func must be called when the subtree preroll
// completes; it reinstates the surface readback flag, set when the
// layer itself reads the surface.
func prerollSaveLayer(ctx *PrerollContext, saveLayerActive, layerPerformsReadback bool) func() {
	if !saveLayerActive {
		return func() {}
	}
	prev := ctx.SurfaceNeedsReadback
	ctx.SurfaceNeedsReadback = false
	return func() {
		ctx.SurfaceNeedsReadback = prev || layerPerformsReadback
	}
}
