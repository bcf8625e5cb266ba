package scene

import (
	"sync"

	"github.com/gogpu/compositor"
	"github.com/gogpu/gpucontext"
)

// Texture is externally produced content that a TextureLayer can place
// in the tree. Implementations own the pixels; the compositor only
// asks them to paint.
type Texture interface {
	// ID returns the registry identity of the texture.
	ID() int64

	// Paint draws the current contents into bounds. With freeze set,
	// the texture must keep showing the frame it last showed even if a
	// newer one arrived.
	Paint(ctx *PaintContext, bounds compositor.Rect, freeze bool)
}

// TextureRegistry maps texture ids to live textures. It is safe for
// concurrent use; producers register from their own goroutines.
type TextureRegistry struct {
	mu       sync.RWMutex
	textures map[int64]Texture
}

// NewTextureRegistry creates an empty registry.
func NewTextureRegistry() *TextureRegistry {
	return &TextureRegistry{textures: make(map[int64]Texture)}
}

// RegisterTexture adds or replaces a texture.
func (r *TextureRegistry) RegisterTexture(t Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures[t.ID()] = t
}

// UnregisterTexture removes a texture by id.
func (r *TextureRegistry) UnregisterTexture(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.textures, id)
}

// GetTexture returns the texture with the given id, nil if absent.
func (r *TextureRegistry) GetTexture(id int64) Texture {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textures[id]
}

// Count returns the number of registered textures.
func (r *TextureRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.textures)
}

// GPUTexture adapts a gpucontext texture to the Texture interface.
// The underlying handle is forwarded to the canvas, never interpreted.
type GPUTexture struct {
	id      int64
	texture gpucontext.Texture
}

// NewGPUTexture wraps a GPU texture handle under the given id.
func NewGPUTexture(id int64, tex gpucontext.Texture) *GPUTexture {
	return &GPUTexture{id: id, texture: tex}
}

// ID implements Texture.
func (t *GPUTexture) ID() int64 { return t.id }

// Paint implements Texture.
func (t *GPUTexture) Paint(ctx *PaintContext, bounds compositor.Rect, freeze bool) {
	if t.texture == nil {
		return
	}
	paint := compositor.NewPaint()
	ctx.StateStack.Fill(paint)
	ctx.Canvas().DrawTexture(t.texture, bounds, paint)
}
