// Package raster implements the software rendering backend: a Canvas
// that draws into a Pixmap. It supports the operations the compositor
// core needs for cache population and replay. It is not a general
// purpose rasterizer; curves are filled by their bounds and GPU
// textures are ignored.
package raster

import (
	"image"

	"github.com/gogpu/compositor"
	"github.com/gogpu/gpucontext"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// state is one entry of the canvas save stack.
type state struct {
	matrix compositor.Matrix
	clip   compositor.Rect
	layer  *layer
}

// layer is an open offscreen group.
type layer struct {
	target *compositor.Pixmap
	paint  compositor.Paint
	bounds compositor.Rect
}

// Canvas draws into a Pixmap. It implements compositor.Canvas.
type Canvas struct {
	base   *compositor.Pixmap
	target *compositor.Pixmap
	states []state
}

// NewCanvas creates a canvas drawing into pm. The initial clip covers
// the whole pixmap.
func NewCanvas(pm *compositor.Pixmap) *Canvas {
	return &Canvas{
		base:   pm,
		target: pm,
		states: []state{{
			matrix: compositor.Identity(),
			clip:   compositor.RectWH(float64(pm.Width()), float64(pm.Height())),
		}},
	}
}

func (c *Canvas) top() *state { return &c.states[len(c.states)-1] }

// Save implements compositor.Canvas.
func (c *Canvas) Save() {
	top := *c.top()
	top.layer = nil
	c.states = append(c.states, top)
}

// SaveLayer implements compositor.Canvas. Drawing is redirected to an
// offscreen pixmap that is composited back at the matching Restore
// with the paint's opacity and color filter applied.
func (c *Canvas) SaveLayer(bounds compositor.Rect, paint *compositor.Paint) {
	top := *c.top()
	p := compositor.Paint{Opacity: 1}
	if paint != nil {
		p = *paint
	}
	top.layer = &layer{
		target: c.target,
		paint:  p,
		bounds: top.matrix.TransformRect(bounds).Intersect(top.clip),
	}
	c.states = append(c.states, top)
	c.target = compositor.NewPixmap(c.base.Width(), c.base.Height())
}

// SaveLayerBackdrop implements compositor.Canvas. The software backend
// cannot filter the backdrop; the group itself still composites.
func (c *Canvas) SaveLayerBackdrop(bounds compositor.Rect, paint *compositor.Paint, backdrop compositor.ImageFilter) {
	if backdrop != nil {
		compositor.Logger().Debug("raster: backdrop filter ignored by software backend")
	}
	c.SaveLayer(bounds, paint)
}

// Restore implements compositor.Canvas.
func (c *Canvas) Restore() {
	if len(c.states) <= 1 {
		panic("raster: Restore without matching Save")
	}
	l := c.top().layer
	c.states = c.states[:len(c.states)-1]
	if l == nil {
		return
	}
	src := c.target
	c.target = l.target
	c.compositeLayer(src, l)
}

// SaveCount implements compositor.Canvas.
func (c *Canvas) SaveCount() int { return len(c.states) }

// Translate implements compositor.Canvas.
func (c *Canvas) Translate(dx, dy float64) {
	s := c.top()
	s.matrix = s.matrix.Multiply(compositor.Translate(dx, dy))
}

// Transform implements compositor.Canvas.
func (c *Canvas) Transform(m compositor.Matrix) {
	s := c.top()
	s.matrix = s.matrix.Multiply(m)
}

// SetMatrix implements compositor.Canvas.
func (c *Canvas) SetMatrix(m compositor.Matrix) {
	c.top().matrix = m
}

// Matrix implements compositor.Canvas.
func (c *Canvas) Matrix() compositor.Matrix { return c.top().matrix }

// DeviceCullRect implements compositor.Canvas.
func (c *Canvas) DeviceCullRect() compositor.Rect { return c.top().clip }

// ClipRect implements compositor.Canvas.
func (c *Canvas) ClipRect(r compositor.Rect, antiAlias bool) {
	s := c.top()
	s.clip = s.clip.Intersect(s.matrix.TransformRect(r))
}

// ClipRRect implements compositor.Canvas. The clip uses the bounding
// rectangle; corner coverage is not modeled.
func (c *Canvas) ClipRRect(rr compositor.RRect, antiAlias bool) {
	c.ClipRect(rr.Rect, antiAlias)
}

// ClipPath implements compositor.Canvas. The clip uses the path bounds.
func (c *Canvas) ClipPath(p *compositor.Path, antiAlias bool) {
	c.ClipRect(p.Bounds(), antiAlias)
}

// DrawRect implements compositor.Canvas.
func (c *Canvas) DrawRect(r compositor.Rect, paint *compositor.Paint) {
	s := c.top()
	device := s.matrix.TransformRect(r).Intersect(s.clip)
	c.fill(device, paint)
}

// DrawRRect implements compositor.Canvas. Corners are filled square.
func (c *Canvas) DrawRRect(rr compositor.RRect, paint *compositor.Paint) {
	c.DrawRect(rr.Rect, paint)
}

// DrawPath implements compositor.Canvas. The path is filled by bounds.
func (c *Canvas) DrawPath(p *compositor.Path, paint *compositor.Paint) {
	c.DrawRect(p.Bounds(), paint)
}

// DrawDisplayList implements compositor.Canvas.
func (c *Canvas) DrawDisplayList(dl *compositor.DisplayList, paint *compositor.Paint) {
	if dl == nil {
		return
	}
	if paint != nil && !paint.IsDefault() {
		c.SaveLayer(dl.Bounds(), paint)
		dl.RenderTo(c)
		c.Restore()
		return
	}
	c.Save()
	dl.RenderTo(c)
	c.Restore()
}

// DrawPixmap implements compositor.Canvas. The pixmap is scaled into
// dst under the current transform using a bilinear kernel.
func (c *Canvas) DrawPixmap(pm *compositor.Pixmap, dst compositor.Rect, paint *compositor.Paint) {
	if pm == nil || dst.IsEmpty() || pm.Width() == 0 || pm.Height() == 0 {
		return
	}
	s := c.top()
	sx := dst.Width() / float64(pm.Width())
	sy := dst.Height() / float64(pm.Height())
	m := s.matrix.
		Multiply(compositor.Translate(dst.MinX, dst.MinY)).
		Multiply(compositor.Scale(sx, sy))

	src := pm.RGBA()
	target := c.target.RGBA()
	clip := s.clip.RoundOut()
	dstRect := target.Rect.Intersect(image.Rect(
		int(clip.MinX), int(clip.MinY), int(clip.MaxX), int(clip.MaxY)))
	if dstRect.Empty() {
		return
	}
	dstView := target.SubImage(dstRect).(*image.RGBA)

	aff := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	kernel := xdraw.Interpolator(xdraw.ApproxBiLinear)
	if m.IsTranslation() && m.HasIntegerTranslation() {
		kernel = xdraw.NearestNeighbor
	}
	kernel.Transform(dstView, aff, src, src.Bounds(), xdraw.Over, nil)

	if paint != nil && paint.Opacity < 1 {
		compositor.Logger().Debug("raster: pixmap opacity approximated",
			"opacity", paint.Opacity)
	}
}

// DrawTexture implements compositor.Canvas. The software backend
// cannot sample GPU textures; the call is logged and dropped.
func (c *Canvas) DrawTexture(tex gpucontext.Texture, dst compositor.Rect, paint *compositor.Paint) {
	compositor.Logger().Debug("raster: GPU texture ignored by software backend")
}

// fill blends a solid color over a device-space rectangle.
func (c *Canvas) fill(device compositor.Rect, paint *compositor.Paint) {
	if device.IsEmpty() {
		return
	}
	col := compositor.Black
	opacity := 1.0
	if paint != nil {
		col = paint.Color
		opacity = paint.Opacity
	}
	col = col.WithOpacity(opacity)
	if col.IsTransparent() {
		return
	}
	r := device.RoundOut()
	x0, y0 := int(r.MinX), int(r.MinY)
	x1, y1 := int(r.MaxX), int(r.MaxY)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			blendPixel(c.target, x, y, col)
		}
	}
}

// compositeLayer blends an offscreen group back into its parent target.
func (c *Canvas) compositeLayer(src *compositor.Pixmap, l *layer) {
	bounds := l.bounds.RoundOut()
	if bounds.IsEmpty() {
		return
	}
	mf, _ := l.paint.ColorFilter.(*compositor.MatrixColorFilter)
	if l.paint.ColorFilter != nil && mf == nil {
		compositor.Logger().Debug("raster: layer color filter approximated")
	}
	if l.paint.ImageFilter != nil {
		compositor.Logger().Debug("raster: layer image filter ignored by software backend")
	}
	x0, y0 := int(bounds.MinX), int(bounds.MinY)
	x1, y1 := int(bounds.MaxX), int(bounds.MaxY)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			px := src.GetPixel(x, y)
			if mf != nil {
				px = applyColorMatrix(mf, px)
			}
			px.A *= l.paint.Opacity
			if px.A <= 0 {
				continue
			}
			blendPixel(l.target, x, y, px)
		}
	}
}

// blendPixel source-over blends col into the pixmap at (x, y).
func blendPixel(pm *compositor.Pixmap, x, y int, col compositor.RGBA) {
	if col.A >= 1 {
		pm.SetPixel(x, y, col)
		return
	}
	dst := pm.GetPixel(x, y)
	inv := 1 - col.A
	outA := col.A + dst.A*inv
	if outA <= 0 {
		pm.SetPixel(x, y, compositor.Transparent)
		return
	}
	pm.SetPixel(x, y, compositor.RGBA{
		R: (col.R*col.A + dst.R*dst.A*inv) / outA,
		G: (col.G*col.A + dst.G*dst.A*inv) / outA,
		B: (col.B*col.A + dst.B*dst.A*inv) / outA,
		A: outA,
	})
}

func applyColorMatrix(f *compositor.MatrixColorFilter, c compositor.RGBA) compositor.RGBA {
	in := [4]float64{c.R, c.G, c.B, c.A}
	var out [4]float64
	for row := 0; row < 4; row++ {
		v := f.M[row*5+4]
		for col := 0; col < 4; col++ {
			v += f.M[row*5+col] * in[col]
		}
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		out[row] = v
	}
	return compositor.RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

// checkerSize is the edge length of one checkerboard square in pixels.
const checkerSize = 12

// Checkerboard overlays a translucent checker pattern on rect. The
// raster cache uses it to visualize cached content when its diagnostic
// mode is enabled.
func Checkerboard(c compositor.Canvas, rect compositor.Rect) {
	overlay := compositor.RGBA2(0.3, 0.3, 0.3, 0.25)
	paint := compositor.NewPaint()
	paint.Color = overlay

	r := rect.RoundOut()
	for y := r.MinY; y < r.MaxY; y += checkerSize {
		for x := r.MinX; x < r.MaxX; x += checkerSize {
			if (int(x/checkerSize)+int(y/checkerSize))%2 != 0 {
				continue
			}
			cell := compositor.RectXYWH(x, y, checkerSize, checkerSize).Intersect(rect)
			if !cell.IsEmpty() {
				c.DrawRect(cell, paint)
			}
		}
	}
}
