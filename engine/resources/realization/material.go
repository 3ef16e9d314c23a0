package realization

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/cache"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// Material is a realized PBR material: the factor uniform, the bind group
// over its texture maps, and the texture cache references it holds. Textures
// themselves live in the texture cache; the material only records their
// hashes so the world can cascade releases.
type Material struct {
	name          string
	uniform       *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	textureHashes []uint64
}

// Fallback 1x1 textures bound where a material descriptor has no map. The
// factors multiply with the sampled values, so white means "factor only";
// the flat normal (128, 128, 255) is the tangent-space up vector.
var (
	fallbackWhite  = [4]uint8{255, 255, 255, 255}
	fallbackNormal = [4]uint8{128, 128, 255, 255}
)

// RealizeMaterial turns a material descriptor into its GPU resources. All
// referenced textures are acquired through the texture cache, so identical
// maps shared between materials upload once. On failure every texture
// reference taken so far is returned before the error propagates.
//
// Parameters:
//   - desc: the material descriptor
//   - ctx: GPU capability surface
//   - layouts: shared bind group layouts
//   - textures: the texture cache
//   - frame: current frame number
//
// Returns:
//   - *Material: the realized material
//   - error: error if a texture fails to resolve or GPU creation fails
func RealizeMaterial(desc descriptor.MaterialDescriptor, ctx gpu.Context, layouts *Layouts, textures *cache.Cache[*gpu.Texture], frame uint64) (*Material, error) {
	slots := []struct {
		tex      *descriptor.TextureDescriptor
		fallback descriptor.TextureDescriptor
	}{
		{desc.BaseColorTexture, descriptor.SolidColorTexture(desc.Name+" Default Base Color", fallbackWhite)},
		{desc.NormalTexture, linearSolidColor(desc.Name+" Default Normal", fallbackNormal)},
		{desc.MetallicRoughnessTexture, linearSolidColor(desc.Name+" Default Metallic Roughness", fallbackWhite)},
		{desc.EmissiveTexture, descriptor.SolidColorTexture(desc.Name+" Default Emissive", fallbackWhite)},
	}

	var acquired []uint64
	releaseAcquired := func() {
		for _, h := range acquired {
			textures.Release(h)
		}
	}

	views := make([]*gpu.Texture, len(slots))
	for i, slot := range slots {
		texDesc := slot.fallback
		if slot.tex != nil {
			texDesc = *slot.tex
		}
		hash := texDesc.Hash()
		texture, err := textures.GetOrRealize(hash, frame, func() (*gpu.Texture, error) {
			return RealizeTexture(texDesc, ctx)
		})
		if err != nil {
			releaseAcquired()
			return nil, err
		}
		acquired = append(acquired, hash)
		views[i] = texture
	}

	uniformData := GPUMaterialUniform{
		BaseColor: desc.BaseColor,
		Emissive:  desc.EmissiveColor,
		Metallic:  desc.Metallic,
		Roughness: desc.Roughness,
	}
	uniform, err := ctx.CreateBufferInit(desc.Name+" Material Uniform", uniformData.Marshal(), wgpu.BufferUsageUniform)
	if err != nil {
		releaseAcquired()
		return nil, &resources.RealizationError{Kind: "material", Label: desc.Name, Err: err}
	}

	sampler := views[0].Sampler()
	bindGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  desc.Name + " Material Bind Group",
		Layout: layouts.Material,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniform, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: views[0].View()},
			{Binding: 2, TextureView: views[1].View()},
			{Binding: 3, TextureView: views[2].View()},
			{Binding: 4, TextureView: views[3].View()},
			{Binding: 5, Sampler: sampler},
		},
	})
	if err != nil {
		uniform.Release()
		releaseAcquired()
		return nil, &resources.RealizationError{Kind: "material", Label: desc.Name, Err: err}
	}

	return &Material{
		name:          desc.Name,
		uniform:       uniform,
		bindGroup:     bindGroup,
		textureHashes: acquired,
	}, nil
}

// linearSolidColor is SolidColorTexture without the sRGB flag, for data maps.
func linearSolidColor(label string, rgba [4]uint8) descriptor.TextureDescriptor {
	d := descriptor.SolidColorTexture(label, rgba)
	d.SRGB = false
	return d
}

// Name returns the material name.
//
// Returns:
//   - string: the name
func (m *Material) Name() string {
	return m.name
}

// BindGroup returns the material bind group (group 3).
//
// Returns:
//   - *wgpu.BindGroup: the bind group
func (m *Material) BindGroup() *wgpu.BindGroup {
	return m.bindGroup
}

// TextureHashes returns the texture cache references held by this material.
// The world releases these when the material is freed.
//
// Returns:
//   - []uint64: texture content hashes
func (m *Material) TextureHashes() []uint64 {
	return m.textureHashes
}

// Release frees the material's own GPU objects. Texture cache references
// are NOT released here; the owner returns those via TextureHashes.
func (m *Material) Release() {
	if m == nil {
		return
	}
	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.uniform != nil {
		m.uniform.Release()
		m.uniform = nil
	}
}
