package ibl

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/gpu"
)

//go:embed assets/equirect_to_cubemap.wgsl
var equirectToCubemapTemplate string

//go:embed assets/irradiance.wgsl
var irradianceTemplate string

//go:embed assets/specular_prefilter.wgsl
var specularPrefilterTemplate string

//go:embed assets/brdf_lut.wgsl
var brdfLUTSource string

// EquirectToCubemapSource returns the fully assembled WGSL source of the
// equirectangular projection stage.
//
// Returns:
//   - string: the WGSL source
func EquirectToCubemapSource() string {
	return injectFaceBasis(equirectToCubemapTemplate)
}

// IrradianceSource returns the fully assembled WGSL source of the diffuse
// irradiance convolution stage.
//
// Returns:
//   - string: the WGSL source
func IrradianceSource() string {
	return injectFaceBasis(irradianceTemplate)
}

// SpecularPrefilterSource returns the fully assembled WGSL source of the
// specular prefilter stage.
//
// Returns:
//   - string: the WGSL source
func SpecularPrefilterSource() string {
	return injectFaceBasis(specularPrefilterTemplate)
}

// BRDFLUTSource returns the WGSL source of the BRDF integration stage. The
// LUT is a flat 2D target, so no face basis is involved.
//
// Returns:
//   - string: the WGSL source
func BRDFLUTSource() string {
	return brdfLUTSource
}

const (
	// DefaultSpecularSamples is the importance sample count per texel of the
	// specular prefilter.
	DefaultSpecularSamples uint32 = 1024

	// BRDFLUTSize is the edge length in pixels of the BRDF lookup table.
	BRDFLUTSize uint32 = 512

	// workgroupSize matches @workgroup_size in every stage shader.
	workgroupSize uint32 = 16
)

// Config parameterizes a precompute run.
type Config struct {
	// CubeFaceSize is the edge length in pixels of each produced cube face.
	CubeFaceSize uint32

	// SpecularSamples is the importance sample count per specular texel
	// (0 selects DefaultSpecularSamples).
	SpecularSamples uint32

	// SamplingType is the strategy selector carried in the per-mip uniform.
	SamplingType uint32
}

// Output holds the cubemaps produced by one precompute run. All textures
// are Rgba16Float. The specular chain has MaxMipLevels(CubeFaceSize) mips,
// roughness increasing with the level.
type Output struct {
	// Skybox is the base environment cubemap, rendered as the background.
	Skybox *gpu.Texture

	// Irradiance is the diffuse irradiance cubemap.
	Irradiance *gpu.Texture

	// Specular is the prefiltered specular reflection mip chain.
	Specular *gpu.Texture

	// SpecularMipCount is the number of mips in the specular chain.
	SpecularMipCount uint32
}

// Release frees all produced textures. Safe on a nil receiver.
func (o *Output) Release() {
	if o == nil {
		return
	}
	o.Skybox.Release()
	o.Irradiance.Release()
	o.Specular.Release()
}

// workgroups returns the dispatch count covering size invocations per axis.
func workgroups(size uint32) uint32 {
	return (size + workgroupSize - 1) / workgroupSize
}

// Precompute runs the environment pipeline: the equirectangular source is
// projected onto the base cubemap, then convolved into the irradiance map
// and prefiltered into the specular mip chain. All passes are encoded into
// one command buffer; queue ordering makes the projection visible to the
// dependent stages. The output is usable once the submission completes.
//
// Parameters:
//   - ctx: GPU capability surface
//   - pixels: linear RGBA float32 equirectangular pixels (4 floats per pixel)
//   - width, height: dimensions of the source data
//   - cfg: run configuration
//
// Returns:
//   - *Output: the produced cubemaps
//   - error: error if any GPU object creation or submission fails
func Precompute(ctx gpu.Context, pixels []float32, width, height uint32, cfg Config) (*Output, error) {
	if len(pixels) != int(width*height*4) {
		return nil, fmt.Errorf("equirectangular pixel count %d does not match %dx%d", len(pixels), width, height)
	}
	if cfg.CubeFaceSize == 0 {
		return nil, fmt.Errorf("cube face size must be non-zero")
	}
	samples := common.Coalesce(cfg.SpecularSamples, DefaultSpecularSamples)

	src, err := ctx.CreateTexture2D(
		"Environment Equirect Source",
		width, height,
		wgpu.TextureFormatRGBA32Float,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst,
	)
	if err != nil {
		return nil, err
	}
	defer src.Release()
	ctx.WriteTexture(src, common.SliceToBytes(pixels), 16)

	faceSize := cfg.CubeFaceSize
	cubeUsage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding
	out := &Output{SpecularMipCount: gpu.MaxMipLevels(faceSize)}

	out.Skybox, err = ctx.CreateCubeTexture("Environment Skybox", faceSize, wgpu.TextureFormatRGBA16Float, cubeUsage, 1)
	if err != nil {
		return nil, err
	}
	out.Irradiance, err = ctx.CreateCubeTexture("Environment Irradiance", faceSize, wgpu.TextureFormatRGBA16Float, cubeUsage, 1)
	if err != nil {
		out.Release()
		return nil, err
	}
	out.Specular, err = ctx.CreateCubeTexture("Environment Specular", faceSize, wgpu.TextureFormatRGBA16Float, cubeUsage, out.SpecularMipCount)
	if err != nil {
		out.Release()
		return nil, err
	}

	if err := encodePasses(ctx, src, out, samples, cfg.SamplingType); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// encodePasses builds the three compute passes and submits them as a single
// command buffer.
func encodePasses(ctx gpu.Context, src *gpu.Texture, out *Output, samples, samplingType uint32) error {
	projectLayout, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Equirect Projection Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        wgpu.TextureFormatRGBA16Float,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	defer projectLayout.Release()

	convolveLayout, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Environment Convolution Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimensionCube,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        wgpu.TextureFormatRGBA16Float,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	defer convolveLayout.Release()

	mipLayout, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Specular Mip Uniform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 16,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	defer mipLayout.Release()

	projectPipeline, err := ctx.CreateComputePipeline("Equirect Projection", EquirectToCubemapSource(), "main", []*wgpu.BindGroupLayout{projectLayout})
	if err != nil {
		return err
	}
	defer projectPipeline.Release()

	irradiancePipeline, err := ctx.CreateComputePipeline("Irradiance Convolution", IrradianceSource(), "main", []*wgpu.BindGroupLayout{convolveLayout})
	if err != nil {
		return err
	}
	defer irradiancePipeline.Release()

	specularPipeline, err := ctx.CreateComputePipeline("Specular Prefilter", SpecularPrefilterSource(), "main", []*wgpu.BindGroupLayout{convolveLayout, mipLayout})
	if err != nil {
		return err
	}
	defer specularPipeline.Release()

	skyboxStoreView, err := out.Skybox.CreateArrayView(0)
	if err != nil {
		return err
	}
	defer skyboxStoreView.Release()

	irradianceStoreView, err := out.Irradiance.CreateArrayView(0)
	if err != nil {
		return err
	}
	defer irradianceStoreView.Release()

	projectGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Equirect Projection Bind Group",
		Layout: projectLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: src.View()},
			{Binding: 1, TextureView: skyboxStoreView},
		},
	})
	if err != nil {
		return err
	}
	defer projectGroup.Release()

	irradianceGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Irradiance Bind Group",
		Layout: convolveLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: out.Skybox.View()},
			{Binding: 1, Sampler: out.Skybox.Sampler()},
			{Binding: 2, TextureView: irradianceStoreView},
		},
	})
	if err != nil {
		return err
	}
	defer irradianceGroup.Release()

	// Per-mip storage views, bind groups, and uniform buffers for the
	// specular chain.
	type mipPass struct {
		storeView *wgpu.TextureView
		group     *wgpu.BindGroup
		uniform   *wgpu.Buffer
		size      uint32
	}
	mips := make([]mipPass, 0, out.SpecularMipCount)
	defer func() {
		for _, m := range mips {
			m.group.Release()
			m.storeView.Release()
			m.uniform.Release()
		}
	}()

	faceSize := out.Skybox.Width()
	for level := uint32(0); level < out.SpecularMipCount; level++ {
		storeView, err := out.Specular.CreateArrayView(level)
		if err != nil {
			return err
		}

		uniformData := GPUMipUniform{
			MipLevel:     level,
			MaxMipLevel:  out.SpecularMipCount,
			SampleCount:  samples,
			SamplingType: samplingType,
		}
		uniform, err := ctx.CreateBufferInit(
			fmt.Sprintf("Specular Mip %d Uniform", level),
			uniformData.Marshal(),
			wgpu.BufferUsageUniform,
		)
		if err != nil {
			storeView.Release()
			return err
		}

		group, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Specular Mip %d Bind Group", level),
			Layout: convolveLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: out.Skybox.View()},
				{Binding: 1, Sampler: out.Skybox.Sampler()},
				{Binding: 2, TextureView: storeView},
			},
		})
		if err != nil {
			storeView.Release()
			uniform.Release()
			return err
		}

		mips = append(mips, mipPass{
			storeView: storeView,
			group:     group,
			uniform:   uniform,
			size:      max(faceSize>>level, 1),
		})
	}

	mipGroups := make([]*wgpu.BindGroup, len(mips))
	for i, m := range mips {
		group, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Specular Mip %d Uniform Bind Group", i),
			Layout: mipLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: m.uniform, Offset: 0, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			for _, g := range mipGroups[:i] {
				g.Release()
			}
			return err
		}
		mipGroups[i] = group
	}
	defer func() {
		for _, g := range mipGroups {
			if g != nil {
				g.Release()
			}
		}
	}()

	encoder, err := ctx.CreateEncoder()
	if err != nil {
		return err
	}

	// Pass 1: equirect projection. Encoded first so queue ordering makes the
	// skybox visible to the dependent passes below.
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(projectPipeline)
	pass.SetBindGroup(0, projectGroup, nil)
	pass.DispatchWorkgroups(workgroups(faceSize), workgroups(faceSize), 6)
	pass.End()

	// Pass 2: diffuse irradiance convolution.
	pass = encoder.BeginComputePass(nil)
	pass.SetPipeline(irradiancePipeline)
	pass.SetBindGroup(0, irradianceGroup, nil)
	pass.DispatchWorkgroups(workgroups(faceSize), workgroups(faceSize), 6)
	pass.End()

	// Pass 3: specular prefilter, one pass per mip level.
	for i, m := range mips {
		pass = encoder.BeginComputePass(nil)
		pass.SetPipeline(specularPipeline)
		pass.SetBindGroup(0, m.group, nil)
		pass.SetBindGroup(1, mipGroups[i], nil)
		pass.DispatchWorkgroups(workgroups(m.size), workgroups(m.size), 6)
		pass.End()
	}

	return ctx.Submit(encoder)
}

// GenerateBRDFLUT computes the split-sum BRDF lookup table. The result is
// view and environment independent, so callers cache it under a fixed key
// and realize it at most once per engine lifetime.
//
// Parameters:
//   - ctx: GPU capability surface
//
// Returns:
//   - *gpu.Texture: the 512x512 Rgba32Float lookup table
//   - error: error if any GPU object creation or submission fails
func GenerateBRDFLUT(ctx gpu.Context) (*gpu.Texture, error) {
	lut, err := ctx.CreateTexture2D(
		"BRDF Integration LUT",
		BRDFLUTSize, BRDFLUTSize,
		wgpu.TextureFormatRGBA32Float,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageStorageBinding,
	)
	if err != nil {
		return nil, err
	}

	layout, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "BRDF LUT Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        wgpu.TextureFormatRGBA32Float,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		lut.Release()
		return nil, err
	}
	defer layout.Release()

	pipeline, err := ctx.CreateComputePipeline("BRDF LUT", BRDFLUTSource(), "main", []*wgpu.BindGroupLayout{layout})
	if err != nil {
		lut.Release()
		return nil, err
	}
	defer pipeline.Release()

	group, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "BRDF LUT Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: lut.View()},
		},
	})
	if err != nil {
		lut.Release()
		return nil, err
	}
	defer group.Release()

	encoder, err := ctx.CreateEncoder()
	if err != nil {
		lut.Release()
		return nil, err
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.DispatchWorkgroups(workgroups(BRDFLUTSize), workgroups(BRDFLUTSize), 1)
	pass.End()

	if err := ctx.Submit(encoder); err != nil {
		lut.Release()
		return nil, err
	}
	return lut, nil
}
