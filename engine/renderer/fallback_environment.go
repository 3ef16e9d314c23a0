package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources/realization"
)

// fallbackEnvironment is a black 1x1 environment bound at group 2 whenever
// no world environment is set. It keeps the PBR pipeline's bind group
// layout satisfied without a second pipeline variant; ambient lighting
// contributes zero.
type fallbackEnvironment struct {
	skybox              *gpu.Texture
	irradiance          *gpu.Texture
	specular            *gpu.Texture
	brdfLUT             *gpu.Texture
	nonFilteringSampler *wgpu.Sampler
	bindGroup           *wgpu.BindGroup
}

func newFallbackEnvironment(ctx gpu.Context, layouts *realization.Layouts) (*fallbackEnvironment, error) {
	f := &fallbackEnvironment{}

	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	blackCube := make([]byte, 6*4) // 6 faces of one Rgba8Unorm texel

	for _, cube := range []struct {
		label  string
		target **gpu.Texture
	}{
		{"Fallback Skybox", &f.skybox},
		{"Fallback Irradiance", &f.irradiance},
		{"Fallback Specular", &f.specular},
	} {
		tex, err := ctx.CreateCubeTexture(cube.label, 1, wgpu.TextureFormatRGBA8Unorm, usage, 1)
		if err != nil {
			f.Release()
			return nil, err
		}
		ctx.WriteTexture(tex, blackCube, 4)
		*cube.target = tex
	}

	lut, err := ctx.CreateTexture2D("Fallback BRDF LUT", 1, 1, wgpu.TextureFormatRGBA32Float, usage)
	if err != nil {
		f.Release()
		return nil, err
	}
	ctx.WriteTexture(lut, make([]byte, 16), 16)
	f.brdfLUT = lut

	// The LUT binding is unfilterable, so the sampler must not filter.
	nonFiltering, err := ctx.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "Fallback Non-Filtering Sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  32.0,
	})
	if err != nil {
		f.Release()
		return nil, err
	}
	f.nonFilteringSampler = nonFiltering

	bindGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Fallback Environment Bind Group",
		Layout: layouts.Environment,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: f.skybox.View()},
			{Binding: 1, TextureView: f.irradiance.View()},
			{Binding: 2, TextureView: f.specular.View()},
			{Binding: 3, TextureView: f.brdfLUT.View()},
			{Binding: 4, Sampler: f.skybox.Sampler()},
			{Binding: 5, Sampler: f.nonFilteringSampler},
		},
	})
	if err != nil {
		f.Release()
		return nil, err
	}
	f.bindGroup = bindGroup

	return f, nil
}

func (f *fallbackEnvironment) Release() {
	if f == nil {
		return
	}
	if f.bindGroup != nil {
		f.bindGroup.Release()
		f.bindGroup = nil
	}
	if f.nonFilteringSampler != nil {
		f.nonFilteringSampler.Release()
		f.nonFilteringSampler = nil
	}
	for _, tex := range []*gpu.Texture{f.skybox, f.irradiance, f.specular, f.brdfLUT} {
		if tex != nil {
			tex.Release()
		}
	}
	f.skybox, f.irradiance, f.specular, f.brdfLUT = nil, nil, nil, nil
}
