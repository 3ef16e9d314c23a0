package realization

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/ibl"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/cache"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// BRDFLUTCacheKey is the fixed texture cache key of the BRDF lookup table.
// The LUT is view and environment independent, so every environment shares
// one cache entry under this key and the table is computed at most once.
const BRDFLUTCacheKey uint64 = 0x62726466_6c757431

// WorldEnvironment is a realized image-based lighting environment: the
// precomputed cubemaps, a reference to the shared BRDF lookup table, and the
// bind group at group 2 that render pipelines consume.
type WorldEnvironment struct {
	output              *ibl.Output
	brdfLUTHash         uint64
	nonFilteringSampler *wgpu.Sampler
	bindGroup           *wgpu.BindGroup
}

// RealizeWorldEnvironment decodes the equirectangular source, runs the
// environment precompute pipeline, and binds the results together with the
// cache-shared BRDF lookup table.
//
// Parameters:
//   - desc: the environment descriptor
//   - ctx: GPU capability surface
//   - layouts: shared bind group layouts
//   - textures: the texture cache holding the BRDF LUT entry
//   - frame: current frame number
//
// Returns:
//   - *WorldEnvironment: the realized environment
//   - error: error if decoding, precompute, or GPU creation fails
func RealizeWorldEnvironment(desc descriptor.WorldEnvironmentDescriptor, ctx gpu.Context, layouts *Layouts, textures *cache.Cache[*gpu.Texture], frame uint64) (*WorldEnvironment, error) {
	pixels := desc.Pixels
	width, height := desc.Size[0], desc.Size[1]
	if desc.Path != "" {
		imported := common.ImportedTexture{Name: desc.Path, Path: desc.Path}
		decoded, w, h, err := imported.DecodeFloat()
		if err != nil {
			return nil, &resources.AssetResolutionError{Ref: desc.Path, Err: err}
		}
		pixels, width, height = decoded, w, h
	}

	faceSize := common.Coalesce(desc.CubeFaceSize, descriptor.SkyboxDefaultSize)
	output, err := ibl.Precompute(ctx, pixels, width, height, ibl.Config{
		CubeFaceSize: faceSize,
		SamplingType: uint32(desc.Sampling),
	})
	if err != nil {
		return nil, &resources.RealizationError{Kind: "world environment", Label: desc.Path, Err: err}
	}

	lut, err := textures.GetOrRealize(BRDFLUTCacheKey, frame, func() (*gpu.Texture, error) {
		return ibl.GenerateBRDFLUT(ctx)
	})
	if err != nil {
		output.Release()
		return nil, err
	}
	releaseLUT := func() { textures.Release(BRDFLUTCacheKey) }

	// The LUT is Rgba32Float and bound as unfilterable, so it needs a
	// dedicated non-filtering sampler.
	nonFiltering, err := ctx.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "Environment Non-Filtering Sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  32.0,
	})
	if err != nil {
		releaseLUT()
		output.Release()
		return nil, &resources.RealizationError{Kind: "world environment", Label: desc.Path, Err: err}
	}

	bindGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Environment Bind Group",
		Layout: layouts.Environment,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: output.Skybox.View()},
			{Binding: 1, TextureView: output.Irradiance.View()},
			{Binding: 2, TextureView: output.Specular.View()},
			{Binding: 3, TextureView: lut.View()},
			{Binding: 4, Sampler: output.Skybox.Sampler()},
			{Binding: 5, Sampler: nonFiltering},
		},
	})
	if err != nil {
		nonFiltering.Release()
		releaseLUT()
		output.Release()
		return nil, &resources.RealizationError{Kind: "world environment", Label: desc.Path, Err: err}
	}

	return &WorldEnvironment{
		output:              output,
		brdfLUTHash:         BRDFLUTCacheKey,
		nonFilteringSampler: nonFiltering,
		bindGroup:           bindGroup,
	}, nil
}

// BindGroup returns the environment bind group (group 2).
//
// Returns:
//   - *wgpu.BindGroup: the bind group
func (w *WorldEnvironment) BindGroup() *wgpu.BindGroup {
	return w.bindGroup
}

// Skybox returns the base environment cubemap.
//
// Returns:
//   - *gpu.Texture: the skybox cubemap
func (w *WorldEnvironment) Skybox() *gpu.Texture {
	return w.output.Skybox
}

// SpecularMipCount returns the number of mips in the specular chain, which
// shaders use to map roughness onto a mip level.
//
// Returns:
//   - uint32: the mip count
func (w *WorldEnvironment) SpecularMipCount() uint32 {
	return w.output.SpecularMipCount
}

// BRDFLUTHash returns the texture cache reference held for the BRDF lookup
// table. The world releases it when the environment is freed.
//
// Returns:
//   - uint64: the cache key
func (w *WorldEnvironment) BRDFLUTHash() uint64 {
	return w.brdfLUTHash
}

// Release frees the environment's own GPU objects. The BRDF LUT cache
// reference is NOT released here; the owner returns it via BRDFLUTHash.
func (w *WorldEnvironment) Release() {
	if w == nil {
		return
	}
	if w.bindGroup != nil {
		w.bindGroup.Release()
		w.bindGroup = nil
	}
	if w.nonFilteringSampler != nil {
		w.nonFilteringSampler.Release()
		w.nonFilteringSampler = nil
	}
	w.output.Release()
	w.output = nil
}
