package scene

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/raster"
	"github.com/gogpu/gpucontext"
)

// LayerTree is one frame's scene: a root layer plus the frame geometry
// it renders into. Trees are immutable once handed to the frame driver;
// the next frame builds a new tree and diffs it against this one.
type LayerTree struct {
	root      Layer
	frameSize compositor.Size
	dpr       float64

	paintRegionMap PaintRegionMap
	cacheItems     []RasterCacheItem
}

// NewLayerTree creates a tree over root. frameSize is the target
// surface size in physical pixels; dpr scales logical coordinates to
// physical.
func NewLayerTree(root Layer, frameSize compositor.Size, dpr float64) *LayerTree {
	return &LayerTree{root: root, frameSize: frameSize, dpr: dpr}
}

// Root returns the root layer.
func (t *LayerTree) Root() Layer { return t.root }

// FrameSize returns the target surface size in physical pixels.
func (t *LayerTree) FrameSize() compositor.Size { return t.frameSize }

// DevicePixelRatio returns the logical-to-physical scale.
func (t *LayerTree) DevicePixelRatio() float64 { return t.dpr }

func (t *LayerTree) frameBounds() compositor.Rect {
	return compositor.RectWH(t.frameSize.Width, t.frameSize.Height)
}

// Diff compares this tree against the previous frame's tree and
// returns the damage. A nil old tree damages the whole frame. The
// paint regions recorded here feed the next frame's Diff.
func (t *LayerTree) Diff(old *LayerTree) Damage {
	var oldRegions PaintRegionMap
	var extra compositor.Rect
	if old == nil {
		extra = t.frameBounds()
	} else {
		oldRegions = old.paintRegionMap
	}
	ctx := NewDiffContext(t.frameBounds(), t.dpr, oldRegions)
	if old == nil {
		t.root.Diff(ctx, nil)
	} else {
		t.root.Diff(ctx, old.root)
	}
	t.paintRegionMap = ctx.PaintRegions()
	return ctx.ComputeDamage(extra)
}

// Preroll walks the tree computing bounds, flags, and cache candidacy.
// It reports whether some layer must read back the target surface.
func (t *LayerTree) Preroll(frame *ScopedFrame) bool {
	stack := NewStateStack()
	stack.SetPrerollDelegate(t.frameBounds(), frame.rootTransform)
	if frame.embedder != nil {
		stack.SetMutatorsDelegate(&MutatorStack{})
	}

	var cache *RasterCache
	if !frame.ignoreCache {
		cache = frame.context.rasterCache
	}

	ctx := &PrerollContext{
		RasterCache:      cache,
		GPUContext:       frame.gpu,
		ViewEmbedder:     frame.embedder,
		StateStack:       stack,
		RasterTime:       frame.context.rasterTime,
		UITime:           frame.context.uiTime,
		TextureRegistry:  frame.context.textureRegistry,
		DevicePixelRatio: t.dpr,
	}
	t.root.Preroll(ctx)
	t.cacheItems = ctx.RasterCachedEntries
	return ctx.SurfaceNeedsReadback
}

// TryToRasterCache offers every cache candidate registered during
// preroll a chance to populate its entry. Items are in preorder; when
// a parent's entry covers its subtree, the children inside it are
// touched but not populated.
func (t *LayerTree) TryToRasterCache(ctx *PaintContext) {
	for i := 0; i < len(t.cacheItems); {
		item := t.cacheItems[i]
		if item.NeedCaching() && item.TryToPrepareRasterCache(ctx, false) {
			for j := 0; j < item.ChildItems(); j++ {
				child := t.cacheItems[i+j+1]
				if child.NeedCaching() {
					child.TryToPrepareRasterCache(ctx, true)
				}
			}
			i += item.ChildItems() + 1
			continue
		}
		i++
	}
}

// Paint walks the tree emitting drawing into the frame's canvas.
func (t *LayerTree) Paint(frame *ScopedFrame) {
	stack := NewStateStack()
	if frame.context.checkerboardOffscreenLayers {
		stack.SetCheckerboardFunc(raster.Checkerboard)
	}

	canvas := frame.canvas
	canvas.Save()
	canvas.Transform(frame.rootTransform)
	stack.SetDelegate(canvas)
	defer func() {
		stack.ClearDelegate()
		canvas.Restore()
	}()

	var cache *RasterCache
	if !frame.ignoreCache {
		cache = frame.context.rasterCache
	}

	ctx := &PaintContext{
		StateStack:       stack,
		GPUContext:       frame.gpu,
		ViewEmbedder:     frame.embedder,
		RasterTime:       frame.context.rasterTime,
		UITime:           frame.context.uiTime,
		TextureRegistry:  frame.context.textureRegistry,
		RasterCache:      cache,
		DevicePixelRatio: t.dpr,
	}
	if t.root.NeedsPainting(ctx) {
		t.root.Paint(ctx)
	}
}

// CompositorContextOption configures a CompositorContext.
type CompositorContextOption func(*CompositorContext)

// WithRasterCache installs the cache shared across frames.
func WithRasterCache(rc *RasterCache) CompositorContextOption {
	return func(c *CompositorContext) { c.rasterCache = rc }
}

// WithTextureRegistry installs the registry texture layers resolve
// against.
func WithTextureRegistry(tr *TextureRegistry) CompositorContextOption {
	return func(c *CompositorContext) { c.textureRegistry = tr }
}

// WithCheckerboardRasterCacheImages overlays a checker pattern on
// cached content as it is rasterized.
func WithCheckerboardRasterCacheImages(on bool) CompositorContextOption {
	return func(c *CompositorContext) { c.checkerboardCacheImages = on }
}

// WithCheckerboardOffscreenLayers overlays a checker pattern on every
// offscreen group as it is composited back.
func WithCheckerboardOffscreenLayers(on bool) CompositorContextOption {
	return func(c *CompositorContext) { c.checkerboardOffscreenLayers = on }
}

// CompositorContext owns the state that outlives a single frame: the
// raster cache, the texture registry, and frame timing.
type CompositorContext struct {
	rasterCache     *RasterCache
	textureRegistry *TextureRegistry
	rasterTime      *Stopwatch
	uiTime          *Stopwatch

	checkerboardCacheImages     bool
	checkerboardOffscreenLayers bool
}

// NewCompositorContext creates a context. Without options it has no
// raster cache and no texture registry.
func NewCompositorContext(opts ...CompositorContextOption) *CompositorContext {
	c := &CompositorContext{
		rasterTime: NewStopwatch(),
		uiTime:     NewStopwatch(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RasterCache returns the shared cache, nil when caching is disabled.
func (c *CompositorContext) RasterCache() *RasterCache { return c.rasterCache }

// TextureRegistry returns the shared registry, nil when absent.
func (c *CompositorContext) TextureRegistry() *TextureRegistry { return c.textureRegistry }

// RasterTime returns the raster-walk stopwatch.
func (c *CompositorContext) RasterTime() *Stopwatch { return c.rasterTime }

// UITime returns the tree-build stopwatch.
func (c *CompositorContext) UITime() *Stopwatch { return c.uiTime }

// AcquireFrame starts a frame rendering into canvas under
// rootTransform. gpu and embedder may be nil; ignoreRasterCache runs
// the frame with caching off without touching the shared cache.
func (c *CompositorContext) AcquireFrame(canvas compositor.Canvas, gpu gpucontext.DeviceProvider,
	embedder ExternalViewEmbedder, rootTransform compositor.Matrix, ignoreRasterCache bool) *ScopedFrame {
	return &ScopedFrame{
		context:       c,
		canvas:        canvas,
		gpu:           gpu,
		embedder:      embedder,
		rootTransform: rootTransform,
		ignoreCache:   ignoreRasterCache,
	}
}

// ScopedFrame drives one frame through the diff, preroll, cache, and
// paint walks.
type ScopedFrame struct {
	context       *CompositorContext
	canvas        compositor.Canvas
	gpu           gpucontext.DeviceProvider
	embedder      ExternalViewEmbedder
	rootTransform compositor.Matrix
	ignoreCache   bool
}

// Context returns the owning compositor context.
func (f *ScopedFrame) Context() *CompositorContext { return f.context }

// Canvas returns the frame's target canvas.
func (f *ScopedFrame) Canvas() compositor.Canvas { return f.canvas }

// Raster renders tree, diffing it against oldTree to compute the
// returned damage. A nil oldTree damages the whole frame.
func (f *ScopedFrame) Raster(tree *LayerTree, oldTree *LayerTree) Damage {
	f.context.rasterTime.Start()
	defer f.context.rasterTime.Stop()

	damage := tree.Diff(oldTree)

	cache := f.context.rasterCache
	if cache != nil && !f.ignoreCache {
		cache.SetCheckerboardCacheImages(f.context.checkerboardCacheImages)
		cache.BeginFrame()
	}

	if tree.Preroll(f) {
		compositor.Logger().Debug("scene: frame needs surface readback")
	}

	if cache != nil && !f.ignoreCache {
		cache.EvictUnusedCacheEntries()
		cacheCtx := &PaintContext{
			StateStack:       NewStateStack(),
			GPUContext:       f.gpu,
			ViewEmbedder:     f.embedder,
			RasterTime:       f.context.rasterTime,
			UITime:           f.context.uiTime,
			TextureRegistry:  f.context.textureRegistry,
			RasterCache:      cache,
			DevicePixelRatio: tree.dpr,
		}
		tree.TryToRasterCache(cacheCtx)
	}

	tree.Paint(f)

	if cache != nil && !f.ignoreCache {
		cache.EndFrame()
	}
	return damage
}
