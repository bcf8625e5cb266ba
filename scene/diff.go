package scene

import "github.com/gogpu/compositor"

// PaintRegion is the set of device-space rectangles a layer subtree
// painted, stored as a slice window over the DiffContext's shared rect
// storage.
type PaintRegion struct {
	rects       *[]compositor.Rect
	from, to    int
	hasReadback bool
	hasTexture  bool
}

// IsValid reports whether the region was recorded.
func (r PaintRegion) IsValid() bool { return r.rects != nil }

// Bounds returns the union of the region's rectangles.
func (r PaintRegion) Bounds() compositor.Rect {
	var b compositor.Rect
	if r.rects == nil {
		return b
	}
	for _, rect := range (*r.rects)[r.from:r.to] {
		b = b.Union(rect)
	}
	return b
}

// Rects returns the region's rectangles.
func (r PaintRegion) Rects() []compositor.Rect {
	if r.rects == nil {
		return nil
	}
	return (*r.rects)[r.from:r.to]
}

// HasReadback reports whether the subtree reads its backdrop.
func (r PaintRegion) HasReadback() bool { return r.hasReadback }

// HasTexture reports whether the subtree contains an external texture.
func (r PaintRegion) HasTexture() bool { return r.hasTexture }

// PaintRegionMap stores the paint region of every layer in a tree,
// keyed by layer unique id. A tree's map from one frame is the "old"
// input to the next frame's diff.
type PaintRegionMap map[uint64]PaintRegion

// Damage is the result of diffing two frames.
type Damage struct {
	// FrameDamage is the area of the new frame that differs from the
	// previous frame.
	FrameDamage compositor.Rect

	// BufferDamage is the area that must be redrawn in the target
	// buffer, which may exceed FrameDamage when the buffer is older
	// than one frame.
	BufferDamage compositor.Rect
}

// diffState is the mutable walk state of a DiffContext.
type diffState struct {
	transform    compositor.Matrix
	cull         compositor.Rect
	dirty        bool
	rectIndex    int
	hasReadback  bool
	hasTexture   bool
	filterBounds func(compositor.Rect) compositor.Rect
}

type readbackRegion struct {
	position int
	rect     compositor.Rect
}

// DiffContext drives the structural comparison of two frames' layer
// trees. Layers report their bounds and parameter changes; the context
// accumulates per-layer paint regions for the next frame's diff and
// the damage rect for this frame.
type DiffContext struct {
	frameBounds compositor.Rect
	dpr         float64

	state diffState
	stack []diffState

	rects      []compositor.Rect
	newRegions PaintRegionMap
	oldRegions PaintRegionMap

	damage    compositor.Rect
	readbacks []readbackRegion
}

// NewDiffContext creates a context for diffing a frame with the given
// device bounds against the frame that produced oldRegions.
func NewDiffContext(frameBounds compositor.Rect, dpr float64, oldRegions PaintRegionMap) *DiffContext {
	return &DiffContext{
		frameBounds: frameBounds,
		dpr:         dpr,
		state: diffState{
			transform: compositor.Scale(dpr, dpr),
			cull:      frameBounds,
		},
		newRegions: make(PaintRegionMap),
		oldRegions: oldRegions,
	}
}

// SubtreeScope restores the walk state when a subtree completes.
type SubtreeScope struct {
	c *DiffContext
}

// BeginSubtree pushes a subtree scope. Rectangles added while the
// scope is open belong to the subtree's paint region.
func (c *DiffContext) BeginSubtree() *SubtreeScope {
	c.stack = append(c.stack, c.state)
	c.state.rectIndex = len(c.rects)
	c.state.hasReadback = false
	c.state.hasTexture = false
	return &SubtreeScope{c: c}
}

// End pops the scope. Subtree flags propagate to the parent; recorded
// rectangles remain, so enclosing regions include them.
func (s *SubtreeScope) End() {
	c := s.c
	child := c.state
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.state.hasReadback = c.state.hasReadback || child.hasReadback
	c.state.hasTexture = c.state.hasTexture || child.hasTexture
}

// PushTransform appends m to the walk transform.
func (c *DiffContext) PushTransform(m compositor.Matrix) {
	c.state.transform = c.state.transform.Multiply(m)
}

// MakeTransformIntegral snaps the walk transform's translation to
// whole pixels, mirroring what paint does when a raster cache is
// active.
func (c *DiffContext) MakeTransformIntegral() {
	c.state.transform = c.state.transform.WithIntegerTranslation()
}

// Transform returns the current walk transform.
func (c *DiffContext) Transform() compositor.Matrix { return c.state.transform }

// PushCullRect intersects the walk cull rect with a local rect.
func (c *DiffContext) PushCullRect(local compositor.Rect) {
	c.state.cull = c.state.cull.Intersect(c.state.transform.TransformRect(local))
}

// LocalCullRect returns the walk cull rect in local coordinates, empty
// when the transform cannot be inverted.
func (c *DiffContext) LocalCullRect() compositor.Rect {
	if !c.state.transform.Invertible() {
		return compositor.Rect{}
	}
	return c.state.transform.Invert().TransformRect(c.state.cull)
}

// MapRect maps a local rect to device space, clipped to the cull rect.
func (c *DiffContext) MapRect(local compositor.Rect) compositor.Rect {
	return c.state.transform.TransformRect(local).Intersect(c.state.cull)
}

// IsSubtreeDirty reports whether the current subtree has already been
// marked dirty.
func (c *DiffContext) IsSubtreeDirty() bool { return c.state.dirty }

// MarkSubtreeDirty dirties the current subtree and records the old
// region it replaces as damage.
func (c *DiffContext) MarkSubtreeDirty(oldRegion PaintRegion) {
	c.AddDamage(oldRegion.Bounds())
	c.state.dirty = true
}

// MarkSubtreeDirtyRect dirties the current subtree and records a
// device-space damage rect directly.
func (c *DiffContext) MarkSubtreeDirtyRect(device compositor.Rect) {
	c.AddDamage(device)
	c.state.dirty = true
}

// PushFilterBoundsAdjustment widens every rect recorded below this
// point in the walk, used by filter layers whose output spills outside
// the content that produced it. Nested adjustments compose innermost
// first.
func (c *DiffContext) PushFilterBoundsAdjustment(f func(compositor.Rect) compositor.Rect) {
	outer := c.state.filterBounds
	if outer == nil {
		c.state.filterBounds = f
		return
	}
	c.state.filterBounds = func(r compositor.Rect) compositor.Rect {
		return outer(f(r))
	}
}

// AddLayerBounds records a local-space rect as painted by the current
// subtree. In a dirty subtree the rect is also damage.
func (c *DiffContext) AddLayerBounds(local compositor.Rect) {
	device := c.state.transform.TransformRect(local)
	if c.state.filterBounds != nil {
		device = c.state.filterBounds(device)
	}
	device = device.Intersect(c.state.cull)
	if device.IsEmpty() {
		return
	}
	c.rects = append(c.rects, device)
	if c.state.dirty {
		c.AddDamage(device)
	}
}

// AddReadbackRegion records that the current subtree reads the given
// device-space rect of its backdrop. Damage that reaches into the rect
// widens to cover it, because redrawing any part of the backdrop
// changes the readback result everywhere the filter writes.
func (c *DiffContext) AddReadbackRegion(device compositor.Rect) {
	c.readbacks = append(c.readbacks, readbackRegion{position: len(c.rects), rect: device})
	c.state.hasReadback = true
}

// AddDamage accumulates a device-space damage rect.
func (c *DiffContext) AddDamage(device compositor.Rect) {
	c.damage = c.damage.Union(device)
}

// CurrentSubtreeRegion returns the region recorded since the current
// subtree scope opened.
func (c *DiffContext) CurrentSubtreeRegion() PaintRegion {
	return PaintRegion{
		rects:       &c.rects,
		from:        c.state.rectIndex,
		to:          len(c.rects),
		hasReadback: c.state.hasReadback,
		hasTexture:  c.state.hasTexture,
	}
}

// MarkSubtreeHasTexture flags the current subtree as containing an
// external texture.
func (c *DiffContext) MarkSubtreeHasTexture() { c.state.hasTexture = true }

// SetLayerPaintRegion records the region for a layer in the new map.
func (c *DiffContext) SetLayerPaintRegion(l Layer, region PaintRegion) {
	c.newRegions[l.UniqueID()] = region
}

// GetOldLayerPaintRegion returns the region a layer painted in the
// previous frame, invalid when the layer was not present.
func (c *DiffContext) GetOldLayerPaintRegion(l Layer) PaintRegion {
	if c.oldRegions == nil || l == nil {
		return PaintRegion{}
	}
	return c.oldRegions[l.UniqueID()]
}

// PaintRegions returns the map recorded for this frame's tree.
func (c *DiffContext) PaintRegions() PaintRegionMap { return c.newRegions }

// ComputeDamage finalizes the damage rect. Readback regions touched by
// damage are folded in iteratively, then the result is clipped to the
// frame and rounded out to whole pixels.
func (c *DiffContext) ComputeDamage(extra compositor.Rect) Damage {
	damage := c.damage.Union(extra)
	for changed := true; changed; {
		changed = false
		for _, rb := range c.readbacks {
			if damage.Intersects(rb.rect) && !damage.Contains(rb.rect) {
				damage = damage.Union(rb.rect)
				changed = true
			}
		}
	}
	frame := damage.Intersect(c.frameBounds).RoundOut()
	return Damage{FrameDamage: frame, BufferDamage: frame}
}
