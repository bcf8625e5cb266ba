package scene

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/gpucontext"
)

// PrerollContext carries the state of the preroll walk. It is created
// by the frame driver and threaded through Layer.Preroll.
type PrerollContext struct {
	// RasterCache is nil when caching is disabled for the frame.
	RasterCache *RasterCache

	// GPUContext is the opaque GPU device for backends that rasterize
	// cached content on the GPU. The tree never interprets it.
	GPUContext gpucontext.DeviceProvider

	// ViewEmbedder composites embedded platform views, nil when the
	// frame has none.
	ViewEmbedder ExternalViewEmbedder

	// StateStack tracks transform and cull state during the walk. It
	// has no canvas delegate; during preroll it may carry a mutators
	// delegate to record platform view mutations.
	StateStack *StateStack

	// SurfaceNeedsReadback is set when some prerolled layer reads back
	// the surface it renders onto (backdrop filters, certain blend
	// modes) without an absorbing group above it.
	SurfaceNeedsReadback bool

	// RasterTime and UITime expose frame timing to layers that adapt
	// their behavior to performance.
	RasterTime *Stopwatch
	UITime     *Stopwatch

	// TextureRegistry resolves external texture ids.
	TextureRegistry *TextureRegistry

	// DevicePixelRatio is the scale from logical to physical pixels.
	DevicePixelRatio float64

	// HasPlatformView is set by a prerolled platform view and
	// harvested by its ancestors.
	HasPlatformView bool

	// HasTextureLayer is set by a prerolled texture layer and
	// harvested by its ancestors.
	HasTextureLayer bool

	// RenderableStateFlags reports which outstanding state the
	// just-prerolled layer can apply itself when painting, so
	// ancestors can defer it instead of forcing an offscreen group.
	RenderableStateFlags int

	// RasterCachedEntries collects the raster cache items registered
	// during preroll, in preorder.
	RasterCachedEntries []RasterCacheItem
}

// PaintContext carries the state of the paint walk.
type PaintContext struct {
	// StateStack is bound to the frame's canvas delegate and owns all
	// deferred compositing state.
	StateStack *StateStack

	// GPUContext is the opaque GPU device, forwarded to the cache.
	GPUContext gpucontext.DeviceProvider

	// ViewEmbedder composites embedded platform views.
	ViewEmbedder ExternalViewEmbedder

	RasterTime *Stopwatch
	UITime     *Stopwatch

	// TextureRegistry resolves external texture ids.
	TextureRegistry *TextureRegistry

	// RasterCache is nil when caching is disabled for the frame.
	RasterCache *RasterCache

	// DevicePixelRatio is the scale from logical to physical pixels.
	DevicePixelRatio float64
}

// Canvas returns the canvas currently bound to the state stack.
func (c *PaintContext) Canvas() compositor.Canvas {
	return c.StateStack.Canvas()
}
