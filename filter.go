package compositor

import "math"

// ColorFilter transforms the color of content as it is drawn.
// Implementations are immutable values.
type ColorFilter interface {
	// EqualsColorFilter reports whether the two filters would produce
	// identical output for every input color.
	EqualsColorFilter(other ColorFilter) bool

	// CanCommuteWithOpacity reports whether applying the filter before
	// or after an opacity modulation yields the same result. Filters
	// that scale alpha linearly and do not mix alpha into the color
	// channels commute.
	CanCommuteWithOpacity() bool
}

// BlendColorFilter blends a constant color into drawn content using a
// blend mode.
type BlendColorFilter struct {
	Color RGBA
	Mode  BlendMode
}

// EqualsColorFilter implements ColorFilter.
func (f *BlendColorFilter) EqualsColorFilter(other ColorFilter) bool {
	o, ok := other.(*BlendColorFilter)
	return ok && f.Color == o.Color && f.Mode == o.Mode
}

// CanCommuteWithOpacity implements ColorFilter. Blending a constant
// color depends on the incoming alpha, so the filter never commutes.
func (f *BlendColorFilter) CanCommuteWithOpacity() bool { return false }

// MatrixColorFilter applies a 4x5 color matrix to drawn content.
// Rows map to output R, G, B, A; the fifth column is a bias.
type MatrixColorFilter struct {
	M [20]float64
}

// EqualsColorFilter implements ColorFilter.
func (f *MatrixColorFilter) EqualsColorFilter(other ColorFilter) bool {
	o, ok := other.(*MatrixColorFilter)
	return ok && f.M == o.M
}

// CanCommuteWithOpacity implements ColorFilter. The filter commutes
// when the alpha row is the identity (output alpha equals input alpha)
// and no color row reads the input alpha or adds a bias, so that
// scaling alpha before or after the matrix is indistinguishable.
func (f *MatrixColorFilter) CanCommuteWithOpacity() bool {
	if f.M[15] != 0 || f.M[16] != 0 || f.M[17] != 0 || f.M[18] != 1 || f.M[19] != 0 {
		return false
	}
	for _, row := range [3]int{0, 1, 2} {
		if f.M[row*5+3] != 0 || f.M[row*5+4] != 0 {
			return false
		}
	}
	return true
}

func colorFiltersEqual(a, b ColorFilter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.EqualsColorFilter(b)
}

// ImageFilter transforms rendered pixels as they are drawn.
// Implementations are immutable values.
type ImageFilter interface {
	// EqualsImageFilter reports whether the two filters would produce
	// identical output for every input.
	EqualsImageFilter(other ImageFilter) bool

	// MapBounds returns the output bounds produced when the filter is
	// applied to content covering the input bounds.
	MapBounds(input Rect) Rect

	// InputDeviceBounds returns the device-space input region the
	// filter reads in order to produce the given device-space output,
	// under the given transform. Used to compute readback regions.
	InputDeviceBounds(output Rect, ctm Matrix) Rect
}

// BlurImageFilter applies a Gaussian blur.
type BlurImageFilter struct {
	SigmaX, SigmaY float64
}

// EqualsImageFilter implements ImageFilter.
func (f *BlurImageFilter) EqualsImageFilter(other ImageFilter) bool {
	o, ok := other.(*BlurImageFilter)
	return ok && f.SigmaX == o.SigmaX && f.SigmaY == o.SigmaY
}

// MapBounds implements ImageFilter. A Gaussian kernel is effectively
// zero beyond three standard deviations.
func (f *BlurImageFilter) MapBounds(input Rect) Rect {
	return input.Outset(3*f.SigmaX, 3*f.SigmaY)
}

// InputDeviceBounds implements ImageFilter.
func (f *BlurImageFilter) InputDeviceBounds(output Rect, ctm Matrix) Rect {
	sx := 3 * f.SigmaX * math.Hypot(ctm.A, ctm.D)
	sy := 3 * f.SigmaY * math.Hypot(ctm.B, ctm.E)
	return output.Outset(sx, sy)
}

// DilateImageFilter grows content by a fixed radius.
type DilateImageFilter struct {
	RadiusX, RadiusY float64
}

// EqualsImageFilter implements ImageFilter.
func (f *DilateImageFilter) EqualsImageFilter(other ImageFilter) bool {
	o, ok := other.(*DilateImageFilter)
	return ok && f.RadiusX == o.RadiusX && f.RadiusY == o.RadiusY
}

// MapBounds implements ImageFilter.
func (f *DilateImageFilter) MapBounds(input Rect) Rect {
	return input.Outset(f.RadiusX, f.RadiusY)
}

// InputDeviceBounds implements ImageFilter.
func (f *DilateImageFilter) InputDeviceBounds(output Rect, ctm Matrix) Rect {
	rx := f.RadiusX * math.Hypot(ctm.A, ctm.D)
	ry := f.RadiusY * math.Hypot(ctm.B, ctm.E)
	return output.Outset(rx, ry)
}

func imageFiltersEqual(a, b ImageFilter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.EqualsImageFilter(b)
}
