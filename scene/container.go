package scene

import "github.com/gogpu/compositor"

// ContainerLayer composites an ordered list of children.
type ContainerLayer struct {
	BaseLayer
	children         []Layer
	childPaintBounds compositor.Rect
}

// NewContainerLayer creates an empty container.
func NewContainerLayer() *ContainerLayer {
	return &ContainerLayer{BaseLayer: NewBaseLayer("container")}
}

func newContainerLayer(kind string) ContainerLayer {
	return ContainerLayer{BaseLayer: NewBaseLayer(kind)}
}

// Add appends a child.
func (c *ContainerLayer) Add(l Layer) { c.children = append(c.children, l) }

// Children returns the child list in paint order.
func (c *ContainerLayer) Children() []Layer { return c.children }

// ChildPaintBounds returns the union of the children's paint bounds
// computed by the last Preroll, in this container's coordinate space.
func (c *ContainerLayer) ChildPaintBounds() compositor.Rect { return c.childPaintBounds }

// Preroll implements Layer.
func (c *ContainerLayer) Preroll(ctx *PrerollContext) {
	c.SetPaintBounds(c.PrerollChildren(ctx))
}

// PrerollChildren prerolls every child and returns the union of their
// paint bounds. Subtree flags (platform views, texture layers) are
// gathered across children.
//
// The renderable state flags come out as the intersection of the
// children's flags, but only while the children stay disjoint: once a
// child overlaps the content before it, deferred attributes can no
// longer be distributed to the children individually (opacity applied
// per child would double-darken the overlap), so the flags collapse to
// zero and an ancestor must resolve through a group instead.
func (c *ContainerLayer) PrerollChildren(ctx *PrerollContext) compositor.Rect {
	childHasPlatformView := false
	childHasTextureLayer := false
	allFlags := SaveLayerRenderFlags

	bounds := compositor.Rect{}
	for _, child := range c.children {
		ctx.HasPlatformView = false
		ctx.HasTextureLayer = false
		ctx.RenderableStateFlags = 0

		child.Preroll(ctx)

		if child.PaintBounds().Intersects(bounds) {
			allFlags = 0
		} else {
			allFlags &= ctx.RenderableStateFlags
		}
		bounds = bounds.Union(child.PaintBounds())

		childHasPlatformView = childHasPlatformView || ctx.HasPlatformView
		childHasTextureLayer = childHasTextureLayer || ctx.HasTextureLayer
	}

	ctx.HasPlatformView = childHasPlatformView
	ctx.HasTextureLayer = childHasTextureLayer
	ctx.RenderableStateFlags = allFlags
	c.childPaintBounds = bounds
	return bounds
}

// Paint implements Layer.
func (c *ContainerLayer) Paint(ctx *PaintContext) {
	assertPaintable(c, ctx)
	c.PaintChildren(ctx)
}

// PaintChildren paints every child that has visible content.
func (c *ContainerLayer) PaintChildren(ctx *PaintContext) {
	if ctx.StateStack.PaintingIsNop() {
		return
	}
	for _, child := range c.children {
		if child.NeedsPainting(ctx) {
			child.Paint(ctx)
		}
	}
}

// Diff implements Layer.
func (c *ContainerLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	c.DiffChildren(ctx, containerOf(oldLayer))
	ctx.SetLayerPaintRegion(c, ctx.CurrentSubtreeRegion())
}

// DiffChildren compares children positionally against the previous
// frame's children. A structural mismatch (different count, or a child
// that is not a continuation of its counterpart) dirties the rest of
// the subtree.
func (c *ContainerLayer) DiffChildren(ctx *DiffContext, old *ContainerLayer) {
	if ctx.IsSubtreeDirty() || old == nil {
		for _, child := range c.children {
			child.Diff(ctx, nil)
		}
		return
	}
	if len(old.children) != len(c.children) {
		ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(old))
		for _, child := range c.children {
			child.Diff(ctx, nil)
		}
		return
	}
	for i, child := range c.children {
		oldChild := old.children[i]
		if child.IsReplacing(ctx, oldChild) {
			child.Diff(ctx, oldChild)
		} else {
			ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldChild))
			child.Diff(ctx, nil)
		}
	}
}

// containerOf extracts the embedded container from a layer, nil when
// the layer is not container-backed.
func containerOf(l Layer) *ContainerLayer {
	type hasContainer interface{ container() *ContainerLayer }
	if c, ok := l.(hasContainer); ok {
		return c.container()
	}
	return nil
}

// container lets containerOf reach the embedded struct through any
// layer that embeds ContainerLayer.
func (c *ContainerLayer) container() *ContainerLayer { return c }
