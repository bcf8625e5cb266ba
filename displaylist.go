package compositor

import (
	"sync/atomic"

	"github.com/gogpu/gpucontext"
)

// displayListIDs assigns stable unique ids to built display lists.
var displayListIDs atomic.Uint64

// opKind identifies a recorded canvas operation.
type opKind uint8

const (
	opSave opKind = iota
	opSaveLayer
	opSaveLayerBackdrop
	opRestore
	opTranslate
	opTransform
	opSetMatrix
	opClipRect
	opClipRRect
	opClipPath
	opDrawRect
	opDrawRRect
	opDrawPath
	opDrawDisplayList
	opDrawPixmap
	opDrawTexture
)

// op is one recorded canvas operation. Which fields are meaningful
// depends on kind.
type op struct {
	kind      opKind
	rect      Rect
	rrect     RRect
	path      *Path
	matrix    Matrix
	dx, dy    float64
	paint     Paint
	hasPaint  bool
	antiAlias bool
	backdrop  ImageFilter
	list      *DisplayList
	pixmap    *Pixmap
	texture   gpucontext.Texture
}

func (o *op) equals(p *op) bool {
	if o.kind != p.kind || o.rect != p.rect || o.rrect != p.rrect ||
		o.matrix != p.matrix || o.dx != p.dx || o.dy != p.dy ||
		o.hasPaint != p.hasPaint || o.antiAlias != p.antiAlias {
		return false
	}
	if o.hasPaint && !o.paint.Equals(&p.paint) {
		return false
	}
	if !o.path.Equals(p.path) {
		return false
	}
	if !imageFiltersEqual(o.backdrop, p.backdrop) {
		return false
	}
	if (o.list == nil) != (p.list == nil) ||
		(o.list != nil && o.list.UniqueID() != p.list.UniqueID()) {
		return false
	}
	return o.pixmap == p.pixmap && o.texture == p.texture
}

// DisplayList is an immutable recording of canvas operations, produced
// by a Builder. Display lists are replayed with RenderTo and identified
// across frames by UniqueID.
type DisplayList struct {
	id     uint64
	ops    []op
	bounds Rect

	opCount       int
	nestedOpCount int
}

// UniqueID returns the identity of the recording. Ids are unique for
// the lifetime of the process and never reused.
func (d *DisplayList) UniqueID() uint64 { return d.id }

// Bounds returns the cull bounds of the recorded content.
func (d *DisplayList) Bounds() Rect { return d.bounds }

// OpCount returns the number of recorded operations. With nested set,
// operations of display lists drawn by this one are included.
func (d *DisplayList) OpCount(nested bool) int {
	if nested {
		return d.opCount + d.nestedOpCount
	}
	return d.opCount
}

// RenderTo replays the recording into c.
func (d *DisplayList) RenderTo(c Canvas) {
	for i := range d.ops {
		o := &d.ops[i]
		var paint *Paint
		if o.hasPaint {
			paint = &o.paint
		}
		switch o.kind {
		case opSave:
			c.Save()
		case opSaveLayer:
			c.SaveLayer(o.rect, paint)
		case opSaveLayerBackdrop:
			c.SaveLayerBackdrop(o.rect, paint, o.backdrop)
		case opRestore:
			c.Restore()
		case opTranslate:
			c.Translate(o.dx, o.dy)
		case opTransform:
			c.Transform(o.matrix)
		case opSetMatrix:
			c.SetMatrix(o.matrix)
		case opClipRect:
			c.ClipRect(o.rect, o.antiAlias)
		case opClipRRect:
			c.ClipRRect(o.rrect, o.antiAlias)
		case opClipPath:
			c.ClipPath(o.path, o.antiAlias)
		case opDrawRect:
			c.DrawRect(o.rect, paint)
		case opDrawRRect:
			c.DrawRRect(o.rrect, paint)
		case opDrawPath:
			c.DrawPath(o.path, paint)
		case opDrawDisplayList:
			c.DrawDisplayList(o.list, paint)
		case opDrawPixmap:
			c.DrawPixmap(o.pixmap, o.rect, paint)
		case opDrawTexture:
			c.DrawTexture(o.texture, o.rect, paint)
		}
	}
}

// Equals reports whether two recordings contain the same operations in
// the same order. Nested display lists compare by identity.
func (d *DisplayList) Equals(other *DisplayList) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.ops) != len(other.ops) {
		return false
	}
	for i := range d.ops {
		if !d.ops[i].equals(&other.ops[i]) {
			return false
		}
	}
	return true
}

// builderState is one entry of the Builder's save stack.
type builderState struct {
	matrix Matrix
	clip   Rect
}

// Builder records canvas operations into a DisplayList. It implements
// Canvas, so anything that draws into a backend can draw into a
// recording instead.
type Builder struct {
	ops           []op
	states        []builderState
	drawn         Rect
	cull          Rect
	nestedOpCount int
	built         bool
}

// NewBuilder creates a builder whose recording is culled to bounds.
func NewBuilder(bounds Rect) *Builder {
	return &Builder{
		states: []builderState{{matrix: Identity(), clip: bounds}},
		cull:   bounds,
	}
}

// Build finalizes the recording. The builder must not be used after
// Build returns.
func (b *Builder) Build() *DisplayList {
	if b.built {
		panic("compositor: Builder.Build called twice")
	}
	b.built = true
	bounds := b.drawn
	if !b.cull.IsEmpty() {
		bounds = bounds.Intersect(b.cull)
	}
	return &DisplayList{
		id:            displayListIDs.Add(1),
		ops:           b.ops,
		bounds:        bounds,
		opCount:       len(b.ops),
		nestedOpCount: b.nestedOpCount,
	}
}

func (b *Builder) top() *builderState { return &b.states[len(b.states)-1] }

func (b *Builder) push(o op) {
	if b.built {
		panic("compositor: Builder used after Build")
	}
	b.ops = append(b.ops, o)
}

func (b *Builder) accumulate(local Rect) {
	device := b.top().matrix.TransformRect(local).Intersect(b.top().clip)
	b.drawn = b.drawn.Union(device)
}

func paintOp(kind opKind, paint *Paint) op {
	o := op{kind: kind}
	if paint != nil {
		o.paint = *paint
		o.hasPaint = true
	}
	return o
}

// Save implements Canvas.
func (b *Builder) Save() {
	b.push(op{kind: opSave})
	b.states = append(b.states, *b.top())
}

// SaveLayer implements Canvas.
func (b *Builder) SaveLayer(bounds Rect, paint *Paint) {
	o := paintOp(opSaveLayer, paint)
	o.rect = bounds
	b.push(o)
	b.states = append(b.states, *b.top())
}

// SaveLayerBackdrop implements Canvas.
func (b *Builder) SaveLayerBackdrop(bounds Rect, paint *Paint, backdrop ImageFilter) {
	o := paintOp(opSaveLayerBackdrop, paint)
	o.rect = bounds
	o.backdrop = backdrop
	b.push(o)
	b.states = append(b.states, *b.top())
	b.accumulate(bounds)
}

// Restore implements Canvas.
func (b *Builder) Restore() {
	if len(b.states) <= 1 {
		panic("compositor: Builder.Restore without matching Save")
	}
	b.push(op{kind: opRestore})
	b.states = b.states[:len(b.states)-1]
}

// SaveCount implements Canvas.
func (b *Builder) SaveCount() int { return len(b.states) }

// Translate implements Canvas.
func (b *Builder) Translate(dx, dy float64) {
	b.push(op{kind: opTranslate, dx: dx, dy: dy})
	s := b.top()
	s.matrix = s.matrix.Multiply(Translate(dx, dy))
}

// Transform implements Canvas.
func (b *Builder) Transform(m Matrix) {
	b.push(op{kind: opTransform, matrix: m})
	s := b.top()
	s.matrix = s.matrix.Multiply(m)
}

// SetMatrix implements Canvas.
func (b *Builder) SetMatrix(m Matrix) {
	b.push(op{kind: opSetMatrix, matrix: m})
	b.top().matrix = m
}

// Matrix implements Canvas.
func (b *Builder) Matrix() Matrix { return b.top().matrix }

// DeviceCullRect implements Canvas.
func (b *Builder) DeviceCullRect() Rect { return b.top().clip }

// ClipRect implements Canvas.
func (b *Builder) ClipRect(r Rect, antiAlias bool) {
	b.push(op{kind: opClipRect, rect: r, antiAlias: antiAlias})
	s := b.top()
	s.clip = s.clip.Intersect(s.matrix.TransformRect(r))
}

// ClipRRect implements Canvas.
func (b *Builder) ClipRRect(rr RRect, antiAlias bool) {
	b.push(op{kind: opClipRRect, rrect: rr, antiAlias: antiAlias})
	s := b.top()
	s.clip = s.clip.Intersect(s.matrix.TransformRect(rr.Rect))
}

// ClipPath implements Canvas.
func (b *Builder) ClipPath(p *Path, antiAlias bool) {
	b.push(op{kind: opClipPath, path: p, antiAlias: antiAlias})
	s := b.top()
	s.clip = s.clip.Intersect(s.matrix.TransformRect(p.Bounds()))
}

// DrawRect implements Canvas.
func (b *Builder) DrawRect(r Rect, paint *Paint) {
	o := paintOp(opDrawRect, paint)
	o.rect = r
	b.push(o)
	b.accumulate(r)
}

// DrawRRect implements Canvas.
func (b *Builder) DrawRRect(rr RRect, paint *Paint) {
	o := paintOp(opDrawRRect, paint)
	o.rrect = rr
	b.push(o)
	b.accumulate(rr.Rect)
}

// DrawPath implements Canvas.
func (b *Builder) DrawPath(p *Path, paint *Paint) {
	o := paintOp(opDrawPath, paint)
	o.path = p
	b.push(o)
	b.accumulate(p.Bounds())
}

// DrawDisplayList implements Canvas.
func (b *Builder) DrawDisplayList(dl *DisplayList, paint *Paint) {
	o := paintOp(opDrawDisplayList, paint)
	o.list = dl
	b.push(o)
	if dl != nil {
		b.nestedOpCount += dl.OpCount(true)
		b.accumulate(dl.Bounds())
	}
}

// DrawPixmap implements Canvas.
func (b *Builder) DrawPixmap(pm *Pixmap, dst Rect, paint *Paint) {
	o := paintOp(opDrawPixmap, paint)
	o.pixmap = pm
	o.rect = dst
	b.push(o)
	b.accumulate(dst)
}

// DrawTexture implements Canvas.
func (b *Builder) DrawTexture(tex gpucontext.Texture, dst Rect, paint *Paint) {
	o := paintOp(opDrawTexture, paint)
	o.texture = tex
	o.rect = dst
	b.push(o)
	b.accumulate(dst)
}
