package scene

import "github.com/gogpu/compositor"

// Renderable state flags. A layer sets these in
// PrerollContext.RenderableStateFlags to declare which outstanding
// attributes it can apply itself while painting, letting ancestors
// defer the attribute instead of opening an offscreen group.
const (
	CallerCanApplyOpacity = 1 << iota
	CallerCanApplyColorFilter
	CallerCanApplyImageFilter

	// SaveLayerRenderFlags is claimed by layers that render through
	// their own offscreen group; any attribute folds into its paint.
	SaveLayerRenderFlags = CallerCanApplyOpacity | CallerCanApplyColorFilter | CallerCanApplyImageFilter

	// DisplayListRenderFlags is claimed by display list leaves, which
	// can fold opacity and color filters into their replay paint.
	DisplayListRenderFlags = CallerCanApplyOpacity | CallerCanApplyColorFilter
)

// outstandingState is the deferred attribute state: accumulated
// opacity and pending filters that have not yet been committed to a
// backend group.
type outstandingState struct {
	opacity     float64
	colorFilter compositor.ColorFilter
	imageFilter compositor.ImageFilter
	bounds      compositor.Rect
}

func clearOutstanding() outstandingState { return outstandingState{opacity: 1} }

// paint exports the outstanding attributes, nil when there are none.
func (o *outstandingState) paint() *compositor.Paint {
	if o.opacity >= 1 && o.colorFilter == nil && o.imageFilter == nil {
		return nil
	}
	p := compositor.NewPaint()
	p.Opacity = o.opacity
	p.ColorFilter = o.colorFilter
	p.ImageFilter = o.imageFilter
	return p
}

// stackDelegate receives the state stack's emissions. The dummy
// delegate only tracks transform and cull geometry; the canvas
// delegate forwards to a backend; the mutators delegate records
// mutations for embedded platform views.
type stackDelegate interface {
	Save()
	SaveLayer(bounds compositor.Rect, paint *compositor.Paint)
	SaveLayerBackdrop(bounds compositor.Rect, paint *compositor.Paint, filter compositor.ImageFilter)
	Restore()
	Translate(dx, dy float64)
	Transform(m compositor.Matrix)
	SetMatrix(m compositor.Matrix)
	ClipRect(r compositor.Rect, antiAlias bool)
	ClipRRect(rr compositor.RRect, antiAlias bool)
	ClipPath(p *compositor.Path, antiAlias bool)
	Matrix() compositor.Matrix
	DeviceCullRect() compositor.Rect
}

// delegateBase is the geometry a delegate starts from.
type delegateBase struct {
	matrix compositor.Matrix
	cull   compositor.Rect
}

// dummyDelegate tracks transform and cull geometry with no backend.
type dummyDelegate struct {
	states []delegateBase
}

func newDummyDelegate(base delegateBase) *dummyDelegate {
	return &dummyDelegate{states: []delegateBase{base}}
}

func (d *dummyDelegate) top() *delegateBase { return &d.states[len(d.states)-1] }

func (d *dummyDelegate) Save()    { d.states = append(d.states, *d.top()) }
func (d *dummyDelegate) Restore() { d.states = d.states[:len(d.states)-1] }
func (d *dummyDelegate) SaveLayer(bounds compositor.Rect, paint *compositor.Paint) {
	d.Save()
}
func (d *dummyDelegate) SaveLayerBackdrop(bounds compositor.Rect, paint *compositor.Paint, filter compositor.ImageFilter) {
	d.Save()
}
func (d *dummyDelegate) Translate(dx, dy float64) {
	s := d.top()
	s.matrix = s.matrix.Multiply(compositor.Translate(dx, dy))
}
func (d *dummyDelegate) Transform(m compositor.Matrix) {
	s := d.top()
	s.matrix = s.matrix.Multiply(m)
}
func (d *dummyDelegate) SetMatrix(m compositor.Matrix) { d.top().matrix = m }
func (d *dummyDelegate) ClipRect(r compositor.Rect, antiAlias bool) {
	s := d.top()
	s.cull = s.cull.Intersect(s.matrix.TransformRect(r))
}
func (d *dummyDelegate) ClipRRect(rr compositor.RRect, antiAlias bool) {
	d.ClipRect(rr.Rect, antiAlias)
}
func (d *dummyDelegate) ClipPath(p *compositor.Path, antiAlias bool) {
	d.ClipRect(p.Bounds(), antiAlias)
}
func (d *dummyDelegate) Matrix() compositor.Matrix        { return d.top().matrix }
func (d *dummyDelegate) DeviceCullRect() compositor.Rect  { return d.top().cull }

// canvasDelegate forwards everything to a backend canvas.
type canvasDelegate struct {
	canvas compositor.Canvas
}

func (d *canvasDelegate) Save()    { d.canvas.Save() }
func (d *canvasDelegate) Restore() { d.canvas.Restore() }
func (d *canvasDelegate) SaveLayer(bounds compositor.Rect, paint *compositor.Paint) {
	d.canvas.SaveLayer(bounds, paint)
}
func (d *canvasDelegate) SaveLayerBackdrop(bounds compositor.Rect, paint *compositor.Paint, filter compositor.ImageFilter) {
	d.canvas.SaveLayerBackdrop(bounds, paint, filter)
}
func (d *canvasDelegate) Translate(dx, dy float64)    { d.canvas.Translate(dx, dy) }
func (d *canvasDelegate) Transform(m compositor.Matrix) { d.canvas.Transform(m) }
func (d *canvasDelegate) SetMatrix(m compositor.Matrix) { d.canvas.SetMatrix(m) }
func (d *canvasDelegate) ClipRect(r compositor.Rect, antiAlias bool) {
	d.canvas.ClipRect(r, antiAlias)
}
func (d *canvasDelegate) ClipRRect(rr compositor.RRect, antiAlias bool) {
	d.canvas.ClipRRect(rr, antiAlias)
}
func (d *canvasDelegate) ClipPath(p *compositor.Path, antiAlias bool) {
	d.canvas.ClipPath(p, antiAlias)
}
func (d *canvasDelegate) Matrix() compositor.Matrix       { return d.canvas.Matrix() }
func (d *canvasDelegate) DeviceCullRect() compositor.Rect { return d.canvas.DeviceCullRect() }

// mutatorsDelegate records mutations for embedded platform views while
// tracking geometry like the dummy delegate.
type mutatorsDelegate struct {
	dummyDelegate
	stack *MutatorStack
	saves []int
}

func newMutatorsDelegate(ms *MutatorStack, base delegateBase) *mutatorsDelegate {
	return &mutatorsDelegate{
		dummyDelegate: *newDummyDelegate(base),
		stack:         ms,
		saves:         []int{0},
	}
}

func (d *mutatorsDelegate) record() { d.saves[len(d.saves)-1]++ }

func (d *mutatorsDelegate) Save() {
	d.dummyDelegate.Save()
	d.saves = append(d.saves, 0)
}
func (d *mutatorsDelegate) SaveLayer(bounds compositor.Rect, paint *compositor.Paint) {
	d.dummyDelegate.SaveLayer(bounds, paint)
	d.saves = append(d.saves, 0)
	if paint != nil && paint.Opacity < 1 {
		d.stack.PushOpacity(paint.Opacity)
		d.record()
	}
}
func (d *mutatorsDelegate) SaveLayerBackdrop(bounds compositor.Rect, paint *compositor.Paint, filter compositor.ImageFilter) {
	d.dummyDelegate.SaveLayerBackdrop(bounds, paint, filter)
	d.saves = append(d.saves, 0)
	d.stack.PushBackdropFilter(filter, bounds)
	d.record()
}
func (d *mutatorsDelegate) Restore() {
	d.dummyDelegate.Restore()
	n := d.saves[len(d.saves)-1]
	d.saves = d.saves[:len(d.saves)-1]
	for ; n > 0; n-- {
		d.stack.Pop()
	}
}
func (d *mutatorsDelegate) Translate(dx, dy float64) {
	d.dummyDelegate.Translate(dx, dy)
	d.stack.PushTransform(compositor.Translate(dx, dy))
	d.record()
}
func (d *mutatorsDelegate) Transform(m compositor.Matrix) {
	d.dummyDelegate.Transform(m)
	d.stack.PushTransform(m)
	d.record()
}
func (d *mutatorsDelegate) SetMatrix(m compositor.Matrix) {
	d.dummyDelegate.SetMatrix(m)
	d.stack.PushTransform(m)
	d.record()
}
func (d *mutatorsDelegate) ClipRect(r compositor.Rect, antiAlias bool) {
	d.dummyDelegate.ClipRect(r, antiAlias)
	d.stack.PushClipRect(r)
	d.record()
}
func (d *mutatorsDelegate) ClipRRect(rr compositor.RRect, antiAlias bool) {
	d.dummyDelegate.ClipRRect(rr, antiAlias)
	d.stack.PushClipRRect(rr)
	d.record()
}
func (d *mutatorsDelegate) ClipPath(p *compositor.Path, antiAlias bool) {
	d.dummyDelegate.ClipPath(p, antiAlias)
	d.stack.PushClipPath(p)
	d.record()
}

// stackEntry is one recorded state mutation. apply runs when the entry
// is pushed and again whenever a new delegate replays the stack;
// restore runs when the entry's scope pops, in LIFO order.
type stackEntry interface {
	apply(s *StateStack)
	restore(s *StateStack)
}

type saveEntry struct{}

func (saveEntry) apply(s *StateStack)   { s.delegate.Save() }
func (saveEntry) restore(s *StateStack) { s.delegate.Restore() }

// saveLayerEntry commits the outstanding attributes to a backend
// group. The consumed state is restored when the group closes.
type saveLayerEntry struct {
	bounds compositor.Rect
	saved  outstandingState
}

func (e *saveLayerEntry) apply(s *StateStack) {
	e.saved = s.outstanding
	s.delegate.SaveLayer(e.bounds, e.saved.paint())
	s.outstanding = clearOutstanding()
}

func (e *saveLayerEntry) restore(s *StateStack) {
	if s.checkerboardFunc != nil {
		if c := s.Canvas(); c != nil {
			s.checkerboardFunc(c, e.bounds)
		}
	}
	s.delegate.Restore()
	s.outstanding = e.saved
}

// backdropFilterEntry opens a group whose backdrop is filtered before
// the group content renders over it.
type backdropFilterEntry struct {
	bounds compositor.Rect
	filter compositor.ImageFilter
	blend  compositor.BlendMode
	saved  outstandingState
}

func (e *backdropFilterEntry) apply(s *StateStack) {
	e.saved = s.outstanding
	p := e.saved.paint()
	if p == nil {
		p = compositor.NewPaint()
	}
	p.BlendMode = e.blend
	s.delegate.SaveLayerBackdrop(e.bounds, p, e.filter)
	s.outstanding = clearOutstanding()
}

func (e *backdropFilterEntry) restore(s *StateStack) {
	s.delegate.Restore()
	s.outstanding = e.saved
}

type translateEntry struct{ dx, dy float64 }

func (e *translateEntry) apply(s *StateStack)   { s.delegate.Translate(e.dx, e.dy) }
func (e *translateEntry) restore(s *StateStack) {}

type transformEntry struct{ m compositor.Matrix }

func (e *transformEntry) apply(s *StateStack)   { s.delegate.Transform(e.m) }
func (e *transformEntry) restore(s *StateStack) {}

// integralTransformEntry snaps the current translation to whole
// pixels. Applied relative to whatever transform the delegate holds,
// so a replay into a different canvas re-snaps in context.
type integralTransformEntry struct{}

func (integralTransformEntry) apply(s *StateStack) {
	m := s.delegate.Matrix()
	if !m.HasIntegerTranslation() {
		s.delegate.SetMatrix(m.WithIntegerTranslation())
	}
}
func (integralTransformEntry) restore(s *StateStack) {}

type clipRectEntry struct {
	r  compositor.Rect
	aa bool
}

func (e *clipRectEntry) apply(s *StateStack)   { s.delegate.ClipRect(e.r, e.aa) }
func (e *clipRectEntry) restore(s *StateStack) {}

type clipRRectEntry struct {
	rr compositor.RRect
	aa bool
}

func (e *clipRRectEntry) apply(s *StateStack)   { s.delegate.ClipRRect(e.rr, e.aa) }
func (e *clipRRectEntry) restore(s *StateStack) {}

type clipPathEntry struct {
	p  *compositor.Path
	aa bool
}

func (e *clipPathEntry) apply(s *StateStack)   { s.delegate.ClipPath(e.p, e.aa) }
func (e *clipPathEntry) restore(s *StateStack) {}

type opacityEntry struct {
	bounds  compositor.Rect
	opacity float64
	prev    outstandingState
}

func (e *opacityEntry) apply(s *StateStack) {
	e.prev = s.outstanding
	s.outstanding.opacity *= e.opacity
	s.outstanding.bounds = e.bounds
}
func (e *opacityEntry) restore(s *StateStack) { s.outstanding = e.prev }

type colorFilterEntry struct {
	bounds compositor.Rect
	filter compositor.ColorFilter
	prev   outstandingState
}

func (e *colorFilterEntry) apply(s *StateStack) {
	e.prev = s.outstanding
	s.outstanding.colorFilter = e.filter
	s.outstanding.bounds = e.bounds
}
func (e *colorFilterEntry) restore(s *StateStack) { s.outstanding = e.prev }

type imageFilterEntry struct {
	bounds compositor.Rect
	filter compositor.ImageFilter
	prev   outstandingState
}

func (e *imageFilterEntry) apply(s *StateStack) {
	e.prev = s.outstanding
	s.outstanding.imageFilter = e.filter
	s.outstanding.bounds = e.bounds
}
func (e *imageFilterEntry) restore(s *StateStack) { s.outstanding = e.prev }

// StateStack accumulates compositing state during tree walks and
// resolves it lazily. Attributes (opacity, color filter, image filter)
// stay outstanding until either a descendant declares it can apply
// them itself or an incompatible attribute arrives, at which point the
// stack commits them to a backend group.
//
// The stack operates with or without a delegate. With no delegate it
// still tracks transform, cull, and outstanding state, so preroll can
// run the identical walk that paint will. Binding a delegate replays
// the recorded entries into it.
type StateStack struct {
	entries []stackEntry
	scopes  []int

	delegate stackDelegate
	bound    bool
	base     delegateBase

	outstanding      outstandingState
	checkerboardFunc func(compositor.Canvas, compositor.Rect)
}

// NewStateStack creates a stack with no delegate and an unbounded cull
// rect.
func NewStateStack() *StateStack {
	base := delegateBase{matrix: compositor.Identity(), cull: compositor.GiantRect}
	return &StateStack{
		delegate:    newDummyDelegate(base),
		base:        base,
		outstanding: clearOutstanding(),
	}
}

// SetDelegate binds a backend canvas and replays the recorded state
// into it. Binding while another delegate is bound is a fatal misuse;
// call ClearDelegate first.
func (s *StateStack) SetDelegate(c compositor.Canvas) {
	if s.bound {
		panic("scene: state stack delegate already bound")
	}
	s.delegate = &canvasDelegate{canvas: c}
	s.bound = true
	s.replay()
}

// SetMutatorsDelegate binds a mutator recorder, used during preroll to
// capture the mutations over embedded platform views.
func (s *StateStack) SetMutatorsDelegate(ms *MutatorStack) {
	if s.bound {
		panic("scene: state stack delegate already bound")
	}
	s.delegate = newMutatorsDelegate(ms, s.base)
	s.bound = true
	s.replay()
}

// SetPrerollDelegate points the stack at a frame's cull rect and root
// transform without binding a backend.
func (s *StateStack) SetPrerollDelegate(cull compositor.Rect, m compositor.Matrix) {
	if s.bound {
		panic("scene: state stack delegate already bound")
	}
	s.base = delegateBase{matrix: m, cull: cull}
	s.delegate = newDummyDelegate(s.base)
	s.replay()
}

// ClearDelegate unbinds the current delegate. Open scopes emitted to a
// canvas delegate are restored on the canvas; the stack itself keeps
// its entries and continues tracking geometry.
func (s *StateStack) ClearDelegate() {
	if !s.bound {
		return
	}
	open := 0
	for _, e := range s.entries {
		switch e.(type) {
		case saveEntry, *saveLayerEntry, *backdropFilterEntry:
			open++
		}
	}
	for ; open > 0; open-- {
		s.delegate.Restore()
	}
	s.delegate = newDummyDelegate(s.base)
	s.bound = false
	s.replay()
}

// replay re-applies every recorded entry against the current delegate,
// recomputing the outstanding state as it goes.
func (s *StateStack) replay() {
	s.outstanding = clearOutstanding()
	for _, e := range s.entries {
		e.apply(s)
	}
}

// Canvas returns the bound backend canvas, nil when the delegate is a
// dummy or a mutator recorder.
func (s *StateStack) Canvas() compositor.Canvas {
	if d, ok := s.delegate.(*canvasDelegate); ok {
		return d.canvas
	}
	return nil
}

// Mutators returns the bound mutator stack, nil when the delegate is
// not a mutator recorder.
func (s *StateStack) Mutators() *MutatorStack {
	if d, ok := s.delegate.(*mutatorsDelegate); ok {
		return d.stack
	}
	return nil
}

// SetCheckerboardFunc installs a diagnostic overlay drawn over every
// committed group when it closes.
func (s *StateStack) SetCheckerboardFunc(f func(compositor.Canvas, compositor.Rect)) {
	s.checkerboardFunc = f
}

// TransformMatrix returns the current transform.
func (s *StateStack) TransformMatrix() compositor.Matrix { return s.delegate.Matrix() }

// DeviceCullRect returns the current clip in device space.
func (s *StateStack) DeviceCullRect() compositor.Rect { return s.delegate.DeviceCullRect() }

// LocalCullRect returns the current clip mapped into local space,
// empty when the transform cannot be inverted.
func (s *StateStack) LocalCullRect() compositor.Rect {
	m := s.delegate.Matrix()
	if !m.Invertible() {
		return compositor.Rect{}
	}
	return m.Invert().TransformRect(s.delegate.DeviceCullRect())
}

// ContentCulled reports whether content with the given local bounds
// falls entirely outside the current cull rect.
func (s *StateStack) ContentCulled(contentBounds compositor.Rect) bool {
	return !s.LocalCullRect().Intersects(contentBounds)
}

// PaintingIsNop reports whether the outstanding attributes make all
// painting invisible.
func (s *StateStack) PaintingIsNop() bool { return s.outstanding.opacity <= 0 }

// OutstandingOpacity returns the accumulated deferred opacity.
func (s *StateStack) OutstandingOpacity() float64 { return s.outstanding.opacity }

// OutstandingColorFilter returns the deferred color filter, if any.
func (s *StateStack) OutstandingColorFilter() compositor.ColorFilter {
	return s.outstanding.colorFilter
}

// OutstandingImageFilter returns the deferred image filter, if any.
func (s *StateStack) OutstandingImageFilter() compositor.ImageFilter {
	return s.outstanding.imageFilter
}

// OutstandingBounds returns the bounds of the deferred attributes.
func (s *StateStack) OutstandingBounds() compositor.Rect { return s.outstanding.bounds }

// Fill exports the outstanding attributes into p so the caller can
// apply them while painting. The attributes remain outstanding.
func (s *StateStack) Fill(p *compositor.Paint) {
	p.Opacity = s.outstanding.opacity
	p.ColorFilter = s.outstanding.colorFilter
	p.ImageFilter = s.outstanding.imageFilter
}

func (s *StateStack) pushEntry(e stackEntry) {
	s.entries = append(s.entries, e)
	e.apply(s)
}

func (s *StateStack) openScope() int {
	count := len(s.entries)
	s.scopes = append(s.scopes, count)
	return count
}

func (s *StateStack) closeScope(count int) {
	if len(s.scopes) == 0 || s.scopes[len(s.scopes)-1] != count {
		panic("scene: out-of-order state stack restore")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	for len(s.entries) > count {
		e := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		e.restore(s)
	}
}

// Save opens a mutation scope. The returned MutatorContext applies
// mutations and must be closed with Restore, strictly LIFO with any
// other open scope.
func (s *StateStack) Save() *MutatorContext {
	m := &MutatorContext{s: s, count: s.openScope()}
	s.pushEntry(saveEntry{})
	return m
}

// ApplyState prepares for painting content with the given local bounds
// by a caller that can itself apply the attributes named in
// canApplyFlags. Outstanding attributes the caller cannot apply are
// committed to a backend group covering bounds; the group stays open
// until the returned token is restored.
func (s *StateStack) ApplyState(bounds compositor.Rect, canApplyFlags int) *StateRestore {
	r := &StateRestore{s: s, count: s.openScope()}
	if s.needsSaveLayer(canApplyFlags) {
		s.pushEntry(&saveLayerEntry{bounds: bounds})
	}
	return r
}

func (s *StateStack) needsSaveLayer(flags int) bool {
	if s.outstanding.opacity < 1 && flags&CallerCanApplyOpacity == 0 {
		return true
	}
	if s.outstanding.colorFilter != nil && flags&CallerCanApplyColorFilter == 0 {
		return true
	}
	if s.outstanding.imageFilter != nil && flags&CallerCanApplyImageFilter == 0 {
		return true
	}
	return false
}

// maybeSaveLayer commits the outstanding attributes when resolve is
// set, because the attribute about to be recorded cannot combine with
// them.
func (s *StateStack) maybeSaveLayer(resolve bool) {
	if resolve {
		s.pushEntry(&saveLayerEntry{bounds: s.outstanding.bounds})
	}
}

// MutatorContext applies mutations within one Save scope.
type MutatorContext struct {
	s     *StateStack
	count int
}

// Restore closes the scope, undoing every mutation applied through it.
func (m *MutatorContext) Restore() { m.s.closeScope(m.count) }

// Translate appends a translation.
func (m *MutatorContext) Translate(dx, dy float64) {
	m.s.pushEntry(&translateEntry{dx: dx, dy: dy})
}

// Transform appends a transform.
func (m *MutatorContext) Transform(mat compositor.Matrix) {
	m.s.pushEntry(&transformEntry{m: mat})
}

// IntegralTransform snaps the current translation to whole pixels.
func (m *MutatorContext) IntegralTransform() {
	m.s.pushEntry(integralTransformEntry{})
}

// ClipRect intersects the cull rect with r.
func (m *MutatorContext) ClipRect(r compositor.Rect, antiAlias bool) {
	m.s.pushEntry(&clipRectEntry{r: r, aa: antiAlias})
}

// ClipRRect intersects the cull rect with rr.
func (m *MutatorContext) ClipRRect(rr compositor.RRect, antiAlias bool) {
	m.s.pushEntry(&clipRRectEntry{rr: rr, aa: antiAlias})
}

// ClipPath intersects the cull rect with p.
func (m *MutatorContext) ClipPath(p *compositor.Path, antiAlias bool) {
	m.s.pushEntry(&clipPathEntry{p: p, aa: antiAlias})
}

// SaveLayer opens an explicit backend group covering bounds,
// committing any outstanding attributes into it.
func (m *MutatorContext) SaveLayer(bounds compositor.Rect) {
	m.s.pushEntry(&saveLayerEntry{bounds: bounds})
}

// ApplyOpacity defers an opacity modulation over bounds. Opacities
// multiply; an outstanding image filter forces resolution first
// because filtering does not commute with alpha.
func (m *MutatorContext) ApplyOpacity(bounds compositor.Rect, opacity float64) {
	if opacity >= 1 {
		return
	}
	m.s.maybeSaveLayer(m.s.outstanding.imageFilter != nil)
	m.s.pushEntry(&opacityEntry{bounds: bounds, opacity: opacity})
}

// ApplyColorFilter defers a color filter over bounds. An outstanding
// filter of either kind forces resolution, as does outstanding opacity
// unless the filter commutes with it.
func (m *MutatorContext) ApplyColorFilter(bounds compositor.Rect, filter compositor.ColorFilter) {
	if filter == nil {
		return
	}
	s := m.s
	resolve := s.outstanding.colorFilter != nil ||
		s.outstanding.imageFilter != nil ||
		(s.outstanding.opacity < 1 && !filter.CanCommuteWithOpacity())
	s.maybeSaveLayer(resolve)
	s.pushEntry(&colorFilterEntry{bounds: bounds, filter: filter})
}

// ApplyImageFilter defers an image filter over bounds. Image filters
// never compose with each other, so an outstanding one resolves first.
func (m *MutatorContext) ApplyImageFilter(bounds compositor.Rect, filter compositor.ImageFilter) {
	if filter == nil {
		return
	}
	m.s.maybeSaveLayer(m.s.outstanding.imageFilter != nil)
	m.s.pushEntry(&imageFilterEntry{bounds: bounds, filter: filter})
}

// ApplyBackdropFilter opens a group whose backdrop is filtered before
// the group's content draws over it.
func (m *MutatorContext) ApplyBackdropFilter(bounds compositor.Rect, filter compositor.ImageFilter, blend compositor.BlendMode) {
	m.s.pushEntry(&backdropFilterEntry{bounds: bounds, filter: filter, blend: blend})
}

// StateRestore closes an ApplyState scope.
type StateRestore struct {
	s     *StateStack
	count int
}

// Restore closes the scope opened by ApplyState.
func (r *StateRestore) Restore() { r.s.closeScope(r.count) }
