// Package compositor provides the shared value types and the backend
// sink surface for a retained-mode scene-graph compositor.
//
// # Overview
//
// The package defines the geometry primitives (Point, Size, Rect), the
// 2D affine Matrix, paint attributes (Paint, ColorFilter, ImageFilter),
// and the Canvas interface implemented by every rendering backend.
// Recorded drawing is captured in an immutable DisplayList through a
// Builder, which itself implements Canvas.
//
// # Architecture
//
// The module is organized into:
//   - compositor: shared types, Canvas, DisplayList recording
//   - compositor/scene: layer tree protocol, state stack, raster cache
//   - compositor/raster: software Canvas drawing into a Pixmap
//
// A frame is produced by building a tree of scene.Layer values and
// driving it through scene.CompositorContext: diff against the previous
// frame's tree, preroll (bounds, visibility, cache probing), raster
// cache population, then paint into a bound Canvas.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package compositor

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
