package scene

import "github.com/gogpu/compositor"

// PlatformViewLayer reserves space in the tree for a view composited
// outside the compositor. The layer itself draws nothing; it hands the
// embedder its placement during preroll and redirects all subsequent
// painting into the embedder's recording canvas.
type PlatformViewLayer struct {
	BaseLayer
	offset compositor.Point
	size   compositor.Size
	viewID int64
}

// NewPlatformViewLayer creates a platform view placeholder.
func NewPlatformViewLayer(offset compositor.Point, size compositor.Size, viewID int64) *PlatformViewLayer {
	return &PlatformViewLayer{
		BaseLayer: NewBaseLayer("platformView"),
		offset:    offset,
		size:      size,
		viewID:    viewID,
	}
}

// ViewID returns the embedder's identity for the view.
func (l *PlatformViewLayer) ViewID() int64 { return l.viewID }

// Preroll implements Layer.
func (l *PlatformViewLayer) Preroll(ctx *PrerollContext) {
	l.SetPaintBounds(compositor.RectXYWH(l.offset.X, l.offset.Y, l.size.Width, l.size.Height))

	if ctx.ViewEmbedder == nil {
		compositor.Logger().Error("scene: platform view prerolled without a view embedder",
			"view_id", l.viewID)
		return
	}
	ctx.HasPlatformView = true

	params := &EmbeddedViewParams{
		Matrix: ctx.StateStack.TransformMatrix(),
		Size:   l.size,
	}
	if ms := ctx.StateStack.Mutators(); ms != nil {
		params.Mutators = ms.Clone()
	}
	ctx.ViewEmbedder.PrerollCompositeEmbeddedView(l.viewID, params)
	ctx.ViewEmbedder.PushVisitedPlatformView(l.viewID)
}

// Paint implements Layer. Painting a platform view rebinds the state
// stack to the embedder's canvas: everything painted after this layer
// lands above the embedded view.
func (l *PlatformViewLayer) Paint(ctx *PaintContext) {
	if ctx.ViewEmbedder == nil {
		compositor.Logger().Error("scene: platform view painted without a view embedder",
			"view_id", l.viewID)
		return
	}
	canvas := ctx.ViewEmbedder.CompositeEmbeddedView(l.viewID)
	ctx.StateStack.ClearDelegate()
	ctx.StateStack.SetDelegate(canvas)
}

// Diff implements Layer. The embedded content is outside the
// compositor's knowledge, so the view's area is always damage.
func (l *PlatformViewLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
	}
	ctx.AddLayerBounds(compositor.RectXYWH(l.offset.X, l.offset.Y, l.size.Width, l.size.Height))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}
