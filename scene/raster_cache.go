package scene

import (
	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/raster"
	"github.com/gogpu/gpucontext"
)

// Default raster cache tuning.
const (
	// DefaultAccessThreshold is the number of frames content must be
	// seen before its pixels are cached.
	DefaultAccessThreshold = 3

	// DefaultDisplayListCacheLimitPerFrame bounds how many display
	// lists may be rasterized into the cache in a single frame, so one
	// bad frame does not stall on cache population.
	DefaultDisplayListCacheLimitPerFrame = 3
)

// RasterCacheMetrics summarizes one kind of cached content at the end
// of a frame.
type RasterCacheMetrics struct {
	// InUseCount is the number of populated entries that were drawn or
	// freshly rasterized during the frame.
	InUseCount int

	// InUseBytes is their total pixel storage, RGBA8.
	InUseBytes int64

	// UnusedCount is the number of populated entries the frame tracked
	// but never drew.
	UnusedCount int

	// UnusedBytes is their total pixel storage, RGBA8.
	UnusedBytes int64
}

// RasterizeContext carries what Rasterize needs to render cache
// content offscreen.
type RasterizeContext struct {
	// GPUContext is forwarded untouched for backends that rasterize on
	// the GPU; the software path ignores it.
	GPUContext gpucontext.DeviceProvider

	// Matrix is the device transform the content will be drawn under.
	Matrix compositor.Matrix

	// LogicalRect is the content bounds in its own coordinate space.
	LogicalRect compositor.Rect

	// FlowType labels the content for diagnostics.
	FlowType string
}

// cachedImage is a populated cache entry's pixels plus the logical
// rect they cover.
type cachedImage struct {
	pixmap      *compositor.Pixmap
	logicalRect compositor.Rect
}

// draw replays the cached pixels into canvas. The device placement is
// recomputed from the canvas's current transform with its translation
// snapped to whole pixels, so the pixels land on the same grid they
// were rendered on. Rounding may make the computed rect up to a pixel
// larger than the stored bitmap; the rect is clamped, never rejected.
func (img *cachedImage) draw(canvas compositor.Canvas, paint *compositor.Paint) {
	m := canvas.Matrix().WithIntegerTranslation()
	bounds := m.TransformRect(img.logicalRect).RoundOut()
	w := float64(img.pixmap.Width())
	h := float64(img.pixmap.Height())
	if bounds.Width() > w {
		bounds.MaxX = bounds.MinX + w
	}
	if bounds.Height() > h {
		bounds.MaxY = bounds.MinY + h
	}
	canvas.Save()
	canvas.SetMatrix(compositor.Identity())
	canvas.DrawPixmap(img.pixmap, bounds, paint)
	canvas.Restore()
}

type cacheEntry struct {
	key         RasterCacheKey
	encountered bool
	used        bool
	accessCount int
	image       *cachedImage
}

// RasterCacheOption configures a RasterCache.
type RasterCacheOption func(*RasterCache)

// WithAccessThreshold sets how many frames content must be seen before
// it is cached. Zero disables caching entirely.
func WithAccessThreshold(n int) RasterCacheOption {
	return func(rc *RasterCache) { rc.accessThreshold = n }
}

// WithDisplayListCacheLimitPerFrame bounds per-frame display list
// cache population.
func WithDisplayListCacheLimitPerFrame(n int) RasterCacheOption {
	return func(rc *RasterCache) { rc.displayListCacheLimitPerFrame = n }
}

// RasterCache holds rasterized copies of stable content, keyed by
// content identity and transform. Content earns its way in: each frame
// a candidate is seen increments its access count, and only content
// seen on more frames than the access threshold is rasterized. Entries
// not encountered during a frame's preroll are evicted.
//
// The cache is frame-oriented and not safe for concurrent use.
type RasterCache struct {
	accessThreshold               int
	displayListCacheLimitPerFrame int
	checkerboard                  bool

	// Entries are bucketed by key hash; a bucket holds more than one
	// entry only on a hash collision, so lookups scan at most a couple
	// of candidates.
	cache map[uint64][]*cacheEntry

	displayListsCachedThisFrame int
	pictureMetrics              RasterCacheMetrics
	layerMetrics                RasterCacheMetrics
}

// NewRasterCache creates a cache with default tuning.
func NewRasterCache(opts ...RasterCacheOption) *RasterCache {
	rc := &RasterCache{
		accessThreshold:               DefaultAccessThreshold,
		displayListCacheLimitPerFrame: DefaultDisplayListCacheLimitPerFrame,
		cache:                         make(map[uint64][]*cacheEntry),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// AccessThreshold returns the configured promotion threshold.
func (rc *RasterCache) AccessThreshold() int { return rc.accessThreshold }

// SetCheckerboardCacheImages toggles the diagnostic overlay drawn on
// freshly rasterized cache content.
func (rc *RasterCache) SetCheckerboardCacheImages(on bool) { rc.checkerboard = on }

func (rc *RasterCache) lookup(key RasterCacheKey) *cacheEntry {
	for _, e := range rc.cache[key.Hash()] {
		if e.key.Equals(key) {
			return e
		}
	}
	return nil
}

func (rc *RasterCache) entry(key RasterCacheKey) *cacheEntry {
	h := key.Hash()
	bucket := rc.cache[h]
	for _, e := range bucket {
		if e.key.Equals(key) {
			return e
		}
	}
	if len(bucket) > 0 {
		compositor.Logger().Debug("scene: raster cache key hash collision")
	}
	e := &cacheEntry{key: key}
	rc.cache[h] = append(bucket, e)
	return e
}

// MarkSeen records that content was encountered during preroll and
// returns its updated access count. Invisible content holds its count
// at zero until first seen visible, so offscreen subtrees do not earn
// cache slots.
func (rc *RasterCache) MarkSeen(id RasterCacheKeyID, m compositor.Matrix, visible bool) int {
	e := rc.entry(NewRasterCacheKey(id, m))
	e.encountered = true
	if visible || e.accessCount > 0 {
		e.accessCount++
	}
	return e.accessCount
}

// GetAccessCount returns the access count for content, zero when the
// cache has never seen it.
func (rc *RasterCache) GetAccessCount(id RasterCacheKeyID, m compositor.Matrix) int {
	if e := rc.lookup(NewRasterCacheKey(id, m)); e != nil {
		return e.accessCount
	}
	return 0
}

// HasEntry reports whether the cache tracks content under the given
// transform, populated or not.
func (rc *RasterCache) HasEntry(id RasterCacheKeyID, m compositor.Matrix) bool {
	return rc.lookup(NewRasterCacheKey(id, m)) != nil
}

// Draw replays cached pixels for the content under the canvas's
// current transform. A miss, or an entry that is tracked but not yet
// populated, returns false and the caller paints live.
func (rc *RasterCache) Draw(id RasterCacheKeyID, canvas compositor.Canvas, paint *compositor.Paint) bool {
	e := rc.lookup(NewRasterCacheKey(id, canvas.Matrix()))
	if e == nil {
		return false
	}
	e.used = true
	if e.image == nil {
		return false
	}
	e.image.draw(canvas, paint)
	return true
}

// GenerateNewCacheInThisFrame reports whether the per-frame display
// list population budget still has room.
func (rc *RasterCache) GenerateNewCacheInThisFrame() bool {
	return rc.displayListsCachedThisFrame < rc.displayListCacheLimitPerFrame
}

// UpdateCacheEntry populates the entry for id under ctx.Matrix,
// rendering through render if the entry has no pixels yet. It returns
// whether the entry is populated afterwards.
func (rc *RasterCache) UpdateCacheEntry(id RasterCacheKeyID, ctx RasterizeContext, render func(compositor.Canvas)) bool {
	e := rc.entry(NewRasterCacheKey(id, ctx.Matrix))
	e.encountered = true
	if e.image == nil {
		e.image = rc.Rasterize(ctx, render)
		if e.image == nil {
			return false
		}
		if id.Kind() == RasterCacheKeyKindDisplayList {
			rc.displayListsCachedThisFrame++
		}
	}
	e.used = true
	return true
}

// Rasterize renders content offscreen under ctx.Matrix and returns the
// resulting image, nil when the device bounds are empty or the
// transform is singular.
func (rc *RasterCache) Rasterize(ctx RasterizeContext, render func(compositor.Canvas)) *cachedImage {
	if !ctx.Matrix.Invertible() {
		return nil
	}
	device := ctx.Matrix.TransformRect(ctx.LogicalRect).RoundOut()
	if device.IsEmpty() {
		return nil
	}
	pm := compositor.NewPixmap(int(device.Width()), int(device.Height()))
	canvas := raster.NewCanvas(pm)
	canvas.SetMatrix(compositor.Translate(-device.MinX, -device.MinY).Multiply(ctx.Matrix))
	render(canvas)
	if rc.checkerboard {
		raster.Checkerboard(canvas, ctx.LogicalRect)
	}
	compositor.Logger().Debug("scene: raster cache populated",
		"flow", ctx.FlowType,
		"width", pm.Width(), "height", pm.Height())
	return &cachedImage{pixmap: pm, logicalRect: ctx.LogicalRect}
}

// BeginFrame resets the per-frame population budget.
func (rc *RasterCache) BeginFrame() {
	rc.displayListsCachedThisFrame = 0
}

// EvictUnusedCacheEntries drops every entry that was not encountered
// since the previous eviction sweep.
func (rc *RasterCache) EvictUnusedCacheEntries() {
	for h, bucket := range rc.cache {
		kept := bucket[:0]
		for _, e := range bucket {
			if e.encountered {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(rc.cache, h)
		} else {
			rc.cache[h] = kept
		}
	}
}

// EndFrame snapshots metrics and clears the per-frame flags. Populated
// entries split into in-use (drawn or rasterized this frame) and
// unused (tracked but never drawn).
func (rc *RasterCache) EndFrame() {
	rc.pictureMetrics = RasterCacheMetrics{}
	rc.layerMetrics = RasterCacheMetrics{}
	rc.eachEntry(func(e *cacheEntry) {
		if e.image != nil {
			m := &rc.layerMetrics
			if e.key.ID().Kind() == RasterCacheKeyKindDisplayList {
				m = &rc.pictureMetrics
			}
			if e.used {
				m.InUseCount++
				m.InUseBytes += e.image.pixmap.ByteSize()
			} else {
				m.UnusedCount++
				m.UnusedBytes += e.image.pixmap.ByteSize()
			}
		}
		e.encountered = false
		e.used = false
	})
}

func (rc *RasterCache) eachEntry(f func(*cacheEntry)) {
	for _, bucket := range rc.cache {
		for _, e := range bucket {
			f(e)
		}
	}
}

// PictureMetrics returns the display list metrics snapshotted by the
// last EndFrame.
func (rc *RasterCache) PictureMetrics() RasterCacheMetrics { return rc.pictureMetrics }

// LayerMetrics returns the layer metrics snapshotted by the last
// EndFrame.
func (rc *RasterCache) LayerMetrics() RasterCacheMetrics { return rc.layerMetrics }

// EstimatePictureCacheByteSize sums the pixel storage of populated
// display list entries right now.
func (rc *RasterCache) EstimatePictureCacheByteSize() int64 {
	var n int64
	rc.eachEntry(func(e *cacheEntry) {
		if e.image != nil && e.key.ID().Kind() == RasterCacheKeyKindDisplayList {
			n += e.image.pixmap.ByteSize()
		}
	})
	return n
}

// EstimateLayerCacheByteSize sums the pixel storage of populated layer
// and layer-children entries right now.
func (rc *RasterCache) EstimateLayerCacheByteSize() int64 {
	var n int64
	rc.eachEntry(func(e *cacheEntry) {
		if e.image != nil && e.key.ID().Kind() != RasterCacheKeyKindDisplayList {
			n += e.image.pixmap.ByteSize()
		}
	})
	return n
}

// EntryCount returns the number of tracked entries, populated or not.
func (rc *RasterCache) EntryCount() int {
	n := 0
	rc.eachEntry(func(*cacheEntry) { n++ })
	return n
}

// PictureEntryCount returns the number of tracked display list
// entries.
func (rc *RasterCache) PictureEntryCount() int {
	n := 0
	rc.eachEntry(func(e *cacheEntry) {
		if e.key.ID().Kind() == RasterCacheKeyKindDisplayList {
			n++
		}
	})
	return n
}

// LayerEntryCount returns the number of tracked layer and
// layer-children entries.
func (rc *RasterCache) LayerEntryCount() int {
	n := 0
	rc.eachEntry(func(e *cacheEntry) {
		if e.key.ID().Kind() != RasterCacheKeyKindDisplayList {
			n++
		}
	})
	return n
}
