package compositor

// BlendMode specifies how drawn content combines with the destination.
// Only the modes the compositing protocol distinguishes are modeled;
// backends may support more.
type BlendMode int

const (
	// BlendSrcOver composites source over destination (the default).
	BlendSrcOver BlendMode = iota
	// BlendSrc replaces the destination.
	BlendSrc
	// BlendMultiply multiplies source and destination.
	BlendMultiply
	// BlendScreen inverts, multiplies, and inverts again.
	BlendScreen
	// BlendColorBurn darkens the destination to reflect the source.
	BlendColorBurn
)

// Paint represents the styling information for drawing: a solid color,
// an opacity modulation, a blend mode, and optional color and image
// filters. The zero value is not usable; construct with NewPaint.
type Paint struct {
	// Color is the source color for solid fills.
	Color RGBA

	// Opacity modulates the alpha of everything drawn, in [0, 1].
	Opacity float64

	// BlendMode selects how the draw combines with the destination.
	BlendMode BlendMode

	// ColorFilter transforms colors as they are drawn.
	ColorFilter ColorFilter

	// ImageFilter transforms rendered pixels as they are drawn.
	ImageFilter ImageFilter
}

// NewPaint creates a new Paint with default values.
func NewPaint() *Paint {
	return &Paint{
		Color:     Black,
		Opacity:   1.0,
		BlendMode: BlendSrcOver,
	}
}

// Clone creates a copy of the Paint.
func (p *Paint) Clone() *Paint {
	q := *p
	return &q
}

// IsDefault reports whether the paint would draw content unmodified.
func (p *Paint) IsDefault() bool {
	return p.Opacity >= 1.0 && p.BlendMode == BlendSrcOver &&
		p.ColorFilter == nil && p.ImageFilter == nil
}

// Equals reports whether two paints describe the same styling.
// Either operand may be nil; nil compares equal to a default paint.
func (p *Paint) Equals(q *Paint) bool {
	if p == nil {
		p = NewPaint()
	}
	if q == nil {
		q = NewPaint()
	}
	if p.Color != q.Color || p.Opacity != q.Opacity || p.BlendMode != q.BlendMode {
		return false
	}
	if !colorFiltersEqual(p.ColorFilter, q.ColorFilter) {
		return false
	}
	return imageFiltersEqual(p.ImageFilter, q.ImageFilter)
}
