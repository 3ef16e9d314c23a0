package gpu

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture bundles a GPU texture with its default view and sampler. Cube
// textures carry a cube-dimension default view for sampling; compute passes
// that write individual mips request array views on demand.
type Texture struct {
	label         string
	texture       *wgpu.Texture
	view          *wgpu.TextureView
	sampler       *wgpu.Sampler
	format        wgpu.TextureFormat
	width         uint32
	height        uint32
	layers        uint32
	mipLevelCount uint32
}

// MaxMipLevels returns the number of mip levels in a full chain for a square
// texture of the given edge length.
//
// Parameters:
//   - size: edge length in pixels
//
// Returns:
//   - uint32: mip level count (1 for size <= 1)
func MaxMipLevels(size uint32) uint32 {
	if size <= 1 {
		return 1
	}
	return uint32(math32.Floor(math32.Log2(float32(size)))) + 1
}

// Label returns the debug label.
//
// Returns:
//   - string: the label
func (t *Texture) Label() string {
	return t.label
}

// Handle returns the underlying WebGPU texture.
//
// Returns:
//   - *wgpu.Texture: the texture
func (t *Texture) Handle() *wgpu.Texture {
	return t.texture
}

// View returns the default view (cube view for cube textures).
//
// Returns:
//   - *wgpu.TextureView: the view
func (t *Texture) View() *wgpu.TextureView {
	return t.view
}

// Sampler returns the default sampler.
//
// Returns:
//   - *wgpu.Sampler: the sampler
func (t *Texture) Sampler() *wgpu.Sampler {
	return t.sampler
}

// Format returns the texel format.
//
// Returns:
//   - wgpu.TextureFormat: the format
func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

// Width returns the width in pixels.
//
// Returns:
//   - uint32: the width
func (t *Texture) Width() uint32 {
	return t.width
}

// Height returns the height in pixels.
//
// Returns:
//   - uint32: the height
func (t *Texture) Height() uint32 {
	return t.height
}

// MipLevelCount returns the number of mip levels.
//
// Returns:
//   - uint32: the mip level count
func (t *Texture) MipLevelCount() uint32 {
	return t.mipLevelCount
}

// CreateArrayView creates a 2D-array view of a single mip level across all
// layers. Compute passes use these as storage texture bindings when writing
// cube faces. The caller releases the view when the pass is encoded.
//
// Parameters:
//   - mipLevel: the mip level to view
//
// Returns:
//   - *wgpu.TextureView: the array view
//   - error: error if the mip level is out of range or creation fails
func (t *Texture) CreateArrayView(mipLevel uint32) (*wgpu.TextureView, error) {
	if mipLevel >= t.mipLevelCount {
		return nil, fmt.Errorf("mip level %d out of range for texture %q (%d levels)", mipLevel, t.label, t.mipLevelCount)
	}
	return t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s Mip %d Array View", t.label, mipLevel),
		Format:          t.format,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    mipLevel,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: t.layers,
		Aspect:          wgpu.TextureAspectAll,
	})
}

// CreateCubeView creates a cube view restricted to a range of mip levels.
//
// Parameters:
//   - baseMip: first mip level included in the view
//   - mipCount: number of mip levels in the view
//
// Returns:
//   - *wgpu.TextureView: the cube view
//   - error: error if the range is invalid or creation fails
func (t *Texture) CreateCubeView(baseMip, mipCount uint32) (*wgpu.TextureView, error) {
	if t.layers != 6 {
		return nil, fmt.Errorf("texture %q is not a cube texture", t.label)
	}
	if baseMip+mipCount > t.mipLevelCount {
		return nil, fmt.Errorf("mip range [%d, %d) out of range for texture %q (%d levels)", baseMip, baseMip+mipCount, t.label, t.mipLevelCount)
	}
	return t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s Cube View [%d, %d)", t.label, baseMip, baseMip+mipCount),
		Format:          t.format,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    baseMip,
		MipLevelCount:   mipCount,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
		Aspect:          wgpu.TextureAspectAll,
	})
}

// Release frees the texture, its default view, and its sampler. Safe to call
// on a nil receiver or a partially constructed texture.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
