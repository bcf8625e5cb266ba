package scene

import (
	"math"

	"github.com/gogpu/compositor"
)

// RasterCacheKeyKind distinguishes what a cache entry holds, so a
// layer and a display list with the same numeric id never collide.
type RasterCacheKeyKind uint8

const (
	// RasterCacheKeyKindLayer caches a layer's own rendering.
	RasterCacheKeyKindLayer RasterCacheKeyKind = iota
	// RasterCacheKeyKindDisplayList caches a display list replay.
	RasterCacheKeyKindDisplayList
	// RasterCacheKeyKindLayerChildren caches the combined rendering of
	// a container's children.
	RasterCacheKeyKindLayerChildren
)

// defaultCompositeID is the numeric id carried by composite key ids,
// whose identity lives in their child list instead.
const defaultCompositeID uint64 = 0

// fnv-1a constants, applied per 8-byte word.
const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x100000001b3
)

func hashWord(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= (v >> (8 * i)) & 0xff
		h *= fnvPrime64
	}
	return h
}

// RasterCacheKeyID identifies cacheable content: a single layer or
// display list, or an ordered set of children. The hash is computed
// once at construction; child order matters.
type RasterCacheKeyID struct {
	id       uint64
	kind     RasterCacheKeyKind
	children []RasterCacheKeyID
	hash     uint64
}

// NewRasterCacheKeyID creates the id for a single piece of content.
func NewRasterCacheKeyID(id uint64, kind RasterCacheKeyKind) RasterCacheKeyID {
	h := hashWord(hashWord(fnvOffset64, id), uint64(kind))
	return RasterCacheKeyID{id: id, kind: kind, hash: h}
}

// NewCompositeRasterCacheKeyID creates the id for an ordered set of
// children. Reordering the children produces a different id.
func NewCompositeRasterCacheKeyID(children []RasterCacheKeyID, kind RasterCacheKeyKind) RasterCacheKeyID {
	h := hashWord(hashWord(fnvOffset64, defaultCompositeID), uint64(kind))
	kept := make([]RasterCacheKeyID, len(children))
	copy(kept, children)
	for _, c := range kept {
		h = hashWord(h, c.hash)
	}
	return RasterCacheKeyID{id: defaultCompositeID, kind: kind, children: kept, hash: h}
}

// ID returns the numeric identity.
func (k RasterCacheKeyID) ID() uint64 { return k.id }

// Kind returns the content kind.
func (k RasterCacheKeyID) Kind() RasterCacheKeyKind { return k.kind }

// Hash returns the precomputed hash.
func (k RasterCacheKeyID) Hash() uint64 { return k.hash }

// Equals reports full structural equality, including child order.
func (k RasterCacheKeyID) Equals(o RasterCacheKeyID) bool {
	if k.id != o.id || k.kind != o.kind || len(k.children) != len(o.children) {
		return false
	}
	for i, c := range k.children {
		if !c.Equals(o.children[i]) {
			return false
		}
	}
	return true
}

// LayerChildrenIDs collects the caching key ids of a container's
// children in paint order. ok is false for an empty container.
func LayerChildrenIDs(c *ContainerLayer) ([]RasterCacheKeyID, bool) {
	if c == nil || len(c.Children()) == 0 {
		return nil, false
	}
	ids := make([]RasterCacheKeyID, 0, len(c.Children()))
	for _, child := range c.Children() {
		ids = append(ids, child.CachingKeyID())
	}
	return ids, true
}

// RasterCacheKey pairs content identity with the transform it was
// rendered under. Only the fractional part of the translation is kept:
// cached pixels are valid anywhere on the integer pixel grid, but a
// different sub-pixel phase, scale, or rotation needs a separate
// rendering.
type RasterCacheKey struct {
	id     RasterCacheKeyID
	matrix compositor.Matrix
}

// NewRasterCacheKey creates a key for content rendered under m.
func NewRasterCacheKey(id RasterCacheKeyID, m compositor.Matrix) RasterCacheKey {
	return RasterCacheKey{id: id, matrix: m.WithFractionalTranslation()}
}

// ID returns the content identity.
func (k RasterCacheKey) ID() RasterCacheKeyID { return k.id }

// Matrix returns the reduced transform.
func (k RasterCacheKey) Matrix() compositor.Matrix { return k.matrix }

// Hash combines the id hash with the transform bits.
func (k RasterCacheKey) Hash() uint64 {
	h := k.id.hash
	h = hashWord(h, math.Float64bits(k.matrix.A))
	h = hashWord(h, math.Float64bits(k.matrix.B))
	h = hashWord(h, math.Float64bits(k.matrix.C))
	h = hashWord(h, math.Float64bits(k.matrix.D))
	h = hashWord(h, math.Float64bits(k.matrix.E))
	h = hashWord(h, math.Float64bits(k.matrix.F))
	return h
}

// Equals reports whether two keys address the same entry.
func (k RasterCacheKey) Equals(o RasterCacheKey) bool {
	return k.matrix == o.matrix && k.id.Equals(o.id)
}
