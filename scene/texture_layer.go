package scene

import "github.com/gogpu/compositor"

// TextureLayer places an externally produced texture in the tree.
type TextureLayer struct {
	BaseLayer
	offset    compositor.Point
	size      compositor.Size
	textureID int64
	freeze    bool
}

// NewTextureLayer creates a texture leaf. With freeze set the texture
// keeps showing its last frame while the layer is on screen.
func NewTextureLayer(offset compositor.Point, size compositor.Size, textureID int64, freeze bool) *TextureLayer {
	return &TextureLayer{
		BaseLayer: NewBaseLayer("texture"),
		offset:    offset,
		size:      size,
		textureID: textureID,
		freeze:    freeze,
	}
}

// TextureID returns the registry identity the layer resolves at paint.
func (l *TextureLayer) TextureID() int64 { return l.textureID }

// Preroll implements Layer.
func (l *TextureLayer) Preroll(ctx *PrerollContext) {
	l.SetPaintBounds(compositor.RectXYWH(l.offset.X, l.offset.Y, l.size.Width, l.size.Height))
	ctx.HasTextureLayer = true
}

// Paint implements Layer. An unregistered texture id paints nothing;
// producers come and go independently of the tree.
func (l *TextureLayer) Paint(ctx *PaintContext) {
	assertPaintable(l, ctx)
	if ctx.TextureRegistry == nil {
		return
	}
	texture := ctx.TextureRegistry.GetTexture(l.textureID)
	if texture == nil {
		return
	}
	texture.Paint(ctx, l.PaintBounds(), l.freeze)
}

// Diff implements Layer. Texture content changes outside the
// compositor's knowledge, so the layer is always damage.
func (l *TextureLayer) Diff(ctx *DiffContext, oldLayer Layer) {
	sub := ctx.BeginSubtree()
	defer sub.End()
	if !ctx.IsSubtreeDirty() {
		ctx.MarkSubtreeDirty(ctx.GetOldLayerPaintRegion(oldLayer))
	}
	ctx.AddLayerBounds(compositor.RectXYWH(l.offset.X, l.offset.Y, l.size.Width, l.size.Height))
	ctx.MarkSubtreeHasTexture()
	ctx.SetLayerPaintRegion(l, ctx.CurrentSubtreeRegion())
}
