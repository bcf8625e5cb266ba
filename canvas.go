package compositor

import "github.com/gogpu/gpucontext"

// Canvas is the sink interface every rendering backend implements.
// The scene package drives frames through it and never interprets what
// the backend does with the calls; the recording Builder implements it
// by capturing ops, and the raster package implements it by drawing
// into a Pixmap.
//
// Save and Restore must pair; SaveLayer and SaveLayerBackdrop open a
// scope closed by Restore like Save does. Transform and clip calls
// mutate the current scope and are undone when it closes.
type Canvas interface {
	// Save pushes the current transform and clip.
	Save()
	// SaveLayer opens an offscreen group. The paint's opacity, color
	// filter, and image filter are applied when the group is composited
	// back at the matching Restore. A nil paint composites unmodified.
	SaveLayer(bounds Rect, paint *Paint)
	// SaveLayerBackdrop is SaveLayer with a filter applied to the
	// backdrop content beneath the group before the group is drawn.
	SaveLayerBackdrop(bounds Rect, paint *Paint, backdrop ImageFilter)
	// Restore closes the most recent Save or SaveLayer scope.
	Restore()
	// SaveCount returns the number of open scopes including the base.
	SaveCount() int

	// Translate prepends a translation to the current transform.
	Translate(dx, dy float64)
	// Transform prepends m to the current transform.
	Transform(m Matrix)
	// SetMatrix replaces the current transform outright.
	SetMatrix(m Matrix)
	// Matrix returns the current transform.
	Matrix() Matrix
	// DeviceCullRect returns the device-space bounds of the current
	// clip. Content outside it cannot affect the output.
	DeviceCullRect() Rect

	// ClipRect intersects the current clip with r.
	ClipRect(r Rect, antiAlias bool)
	// ClipRRect intersects the current clip with rr.
	ClipRRect(rr RRect, antiAlias bool)
	// ClipPath intersects the current clip with p.
	ClipPath(p *Path, antiAlias bool)

	DrawRect(r Rect, paint *Paint)
	DrawRRect(rr RRect, paint *Paint)
	DrawPath(p *Path, paint *Paint)
	// DrawDisplayList replays a recorded display list. The paint's
	// opacity and filters modulate the replayed content as a group.
	DrawDisplayList(dl *DisplayList, paint *Paint)
	// DrawPixmap draws a pixmap scaled into dst.
	DrawPixmap(pm *Pixmap, dst Rect, paint *Paint)
	// DrawTexture draws an external GPU texture into dst. Backends
	// that cannot sample GPU textures may ignore the call.
	DrawTexture(tex gpucontext.Texture, dst Rect, paint *Paint)
}
