package scene

import "github.com/gogpu/compositor"

// TransformLayer applies a matrix to its subtree.
type TransformLayer struct {
	ContainerLayer
	transform compositor.Matrix
}

// NewTransformLayer creates a layer that transforms its children by m.
func NewTransformLayer(m compositor.Matrix) *TransformLayer {
	return &TransformLayer{
		ContainerLayer: newContainerLayer("transform"),
		transform:      m,
	}
}

// Transform returns the layer's matrix.
func (l *TransformLayer) Transform() compositor.Matrix { return l.transform }

// Preroll implements Layer. A singular transform collapses the subtree
// to nothing: the children cannot be mapped back to the parent's space,
// so they are neither measured nor painted.
func (l *TransformLayer) Preroll(ctx *PrerollContext) {
	if !l.transform.Invertible() {
		compositor.Logger().Debug("scene: transform layer has singular matrix, subtree dropped")
		l.SetPaintBounds(compositor.Rect{})
		return
	}
	mutator := ctx.StateStack.Save()
	mutator.Transform(l.transform)
	bounds := l.PrerollChildren(ctx)
	mutator.Restore()
	l.SetPaintBounds(l.transform.TransformRect(bounds))
}

// Paint implements Layer.
func (l *TransformLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	mutator := ctx.StateStack.Save()
	defer mutator.Restore()
	mutator.Transform(l.transform)
	l.PaintChildren(ctx)
}

// Diff implements Layer.
func (l *TransformLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		if old, ok := oldLayer.(*TransformLayer); !ok || l.transform != old.transform {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
		}
	}
	ctx.PushTransform(l.transform)
	l.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}
