package scene

import "github.com/gogpu/compositor"

// MutatorKind identifies the type of a recorded mutation.
type MutatorKind uint8

const (
	MutatorClipRect MutatorKind = iota
	MutatorClipRRect
	MutatorClipPath
	MutatorTransform
	MutatorOpacity
	MutatorBackdropFilter
)

// ViewMutator is one mutation that applies to an embedded platform
// view: a clip, a transform, an opacity, or a backdrop filter pushed
// over it. Which fields are meaningful depends on Kind.
type ViewMutator struct {
	Kind    MutatorKind
	Rect    compositor.Rect
	RRect   compositor.RRect
	Path    *compositor.Path
	Matrix  compositor.Matrix
	Opacity float64
	Filter  compositor.ImageFilter
}

// Equals reports whether two mutators describe the same mutation.
func (m ViewMutator) Equals(o ViewMutator) bool {
	if m.Kind != o.Kind || m.Rect != o.Rect || m.RRect != o.RRect ||
		m.Matrix != o.Matrix || m.Opacity != o.Opacity {
		return false
	}
	if !m.Path.Equals(o.Path) {
		return false
	}
	if m.Filter == nil || o.Filter == nil {
		return m.Filter == nil && o.Filter == nil
	}
	return m.Filter.EqualsImageFilter(o.Filter)
}

// MutatorStack is an ordered record of the mutations between the root
// of the tree and an embedded platform view, outermost first.
type MutatorStack struct {
	mutators []ViewMutator
}

// PushClipRect records a rectangular clip.
func (s *MutatorStack) PushClipRect(r compositor.Rect) {
	s.mutators = append(s.mutators, ViewMutator{Kind: MutatorClipRect, Rect: r})
}

// PushClipRRect records a rounded-rectangular clip.
func (s *MutatorStack) PushClipRRect(rr compositor.RRect) {
	s.mutators = append(s.mutators, ViewMutator{Kind: MutatorClipRRect, RRect: rr})
}

// PushClipPath records a path clip.
func (s *MutatorStack) PushClipPath(p *compositor.Path) {
	s.mutators = append(s.mutators, ViewMutator{Kind: MutatorClipPath, Path: p})
}

// PushTransform records a transform.
func (s *MutatorStack) PushTransform(m compositor.Matrix) {
	s.mutators = append(s.mutators, ViewMutator{Kind: MutatorTransform, Matrix: m})
}

// PushOpacity records an opacity modulation.
func (s *MutatorStack) PushOpacity(opacity float64) {
	s.mutators = append(s.mutators, ViewMutator{Kind: MutatorOpacity, Opacity: opacity})
}

// PushBackdropFilter records a backdrop filter applied over the view.
func (s *MutatorStack) PushBackdropFilter(f compositor.ImageFilter, bounds compositor.Rect) {
	s.mutators = append(s.mutators, ViewMutator{Kind: MutatorBackdropFilter, Filter: f, Rect: bounds})
}

// Pop removes the most recent mutation.
func (s *MutatorStack) Pop() {
	if n := len(s.mutators); n > 0 {
		s.mutators = s.mutators[:n-1]
	}
}

// Len returns the number of recorded mutations.
func (s *MutatorStack) Len() int { return len(s.mutators) }

// Mutators returns the recorded mutations, outermost first.
func (s *MutatorStack) Mutators() []ViewMutator { return s.mutators }

// Clone returns an independent copy of the stack.
func (s *MutatorStack) Clone() MutatorStack {
	out := MutatorStack{mutators: make([]ViewMutator, len(s.mutators))}
	copy(out.mutators, s.mutators)
	return out
}

// Equals reports whether two stacks record the same mutations.
func (s *MutatorStack) Equals(o *MutatorStack) bool {
	if len(s.mutators) != len(o.mutators) {
		return false
	}
	for i, m := range s.mutators {
		if !m.Equals(o.mutators[i]) {
			return false
		}
	}
	return true
}

// EmbeddedViewParams describes how an embedded platform view should be
// placed and mutated for the current frame.
type EmbeddedViewParams struct {
	// Matrix is the full transform from the view's coordinate space to
	// device space.
	Matrix compositor.Matrix

	// Size is the logical size of the view.
	Size compositor.Size

	// Mutators records the clips, transforms, opacities, and backdrop
	// filters between the root and the view.
	Mutators MutatorStack
}

// FinalBoundingRect returns the device-space rect the view occupies.
func (p *EmbeddedViewParams) FinalBoundingRect() compositor.Rect {
	return p.Matrix.TransformRect(compositor.RectWH(p.Size.Width, p.Size.Height))
}

// PushFilter appends a backdrop filter to the recorded mutations.
func (p *EmbeddedViewParams) PushFilter(f compositor.ImageFilter, bounds compositor.Rect) {
	p.Mutators.PushBackdropFilter(f, bounds)
}

// ExternalViewEmbedder composites platform views that live outside the
// layer tree. The compositor hands it placement during preroll and
// asks it for a recording canvas during paint; everything else is the
// embedder's business.
type ExternalViewEmbedder interface {
	// PrerollCompositeEmbeddedView announces that viewID will appear
	// this frame with the given placement.
	PrerollCompositeEmbeddedView(viewID int64, params *EmbeddedViewParams)

	// CompositeEmbeddedView returns the canvas that receives all
	// drawing above viewID for the rest of the frame.
	CompositeEmbeddedView(viewID int64) compositor.Canvas

	// PushFilterToVisitedPlatformViews applies a backdrop filter to
	// every platform view already composited this frame.
	PushFilterToVisitedPlatformViews(f compositor.ImageFilter, bounds compositor.Rect)

	// PushVisitedPlatformView marks viewID as visited so later
	// backdrop filters can reach it.
	PushVisitedPlatformView(viewID int64)
}
