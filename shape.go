package compositor

// RRect is a rectangle with uniformly rounded corners.
type RRect struct {
	Rect    Rect
	RadiusX float64
	RadiusY float64
}

// RRectXY constructs a rounded rectangle.
func RRectXY(r Rect, rx, ry float64) RRect {
	return RRect{Rect: r, RadiusX: rx, RadiusY: ry}
}

// IsEmpty reports whether the rounded rectangle encloses no area.
func (rr RRect) IsEmpty() bool { return rr.Rect.IsEmpty() }

// IsRect reports whether the corner radii are zero.
func (rr RRect) IsRect() bool { return rr.RadiusX <= 0 && rr.RadiusY <= 0 }

// pathVerb tags an element of a Path.
type pathVerb uint8

const (
	verbRect pathVerb = iota
	verbRRect
	verbOval
)

type pathElem struct {
	verb  pathVerb
	rect  Rect
	rx    float64
	ry    float64
}

// Path is a compositing shape built from rectangles, rounded
// rectangles, and ovals. It carries enough structure for clipping and
// mutator records; it is not a general curve container.
type Path struct {
	elems []pathElem
}

// NewPath creates an empty path.
func NewPath() *Path { return &Path{} }

// AddRect appends a rectangle to the path.
func (p *Path) AddRect(r Rect) *Path {
	p.elems = append(p.elems, pathElem{verb: verbRect, rect: r})
	return p
}

// AddRRect appends a rounded rectangle to the path.
func (p *Path) AddRRect(rr RRect) *Path {
	p.elems = append(p.elems, pathElem{verb: verbRRect, rect: rr.Rect, rx: rr.RadiusX, ry: rr.RadiusY})
	return p
}

// AddOval appends an oval inscribed in r to the path.
func (p *Path) AddOval(r Rect) *Path {
	p.elems = append(p.elems, pathElem{verb: verbOval, rect: r})
	return p
}

// Bounds returns the union of the element bounds.
func (p *Path) Bounds() Rect {
	var b Rect
	if p == nil {
		return b
	}
	for _, e := range p.elems {
		b = b.Union(e.rect)
	}
	return b
}

// IsEmpty reports whether the path contains no area.
func (p *Path) IsEmpty() bool { return p == nil || p.Bounds().IsEmpty() }

// Equals reports whether two paths contain the same elements in the
// same order.
func (p *Path) Equals(q *Path) bool {
	if p == nil || q == nil {
		return p.IsEmpty() && q.IsEmpty()
	}
	if len(p.elems) != len(q.elems) {
		return false
	}
	for i, e := range p.elems {
		if e != q.elems[i] {
			return false
		}
	}
	return true
}
