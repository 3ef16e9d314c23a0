// package realization turns descriptors into live GPU resources. Every
// realized type owns its GPU objects and exposes a Release method; sharing
// and deduplication are the caches' job, not the realizers'.
package realization

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/engine/gpu"
)

// Bind group indices used by the render pipelines. Realized resources build
// their bind groups against the matching layout in Layouts.
const (
	BindGroupCamera      = 0
	BindGroupLights      = 1
	BindGroupEnvironment = 2
	BindGroupMaterial    = 3
)

// Layouts holds the shared bind group layouts realized resources bind
// against. Created once per device; render pipelines reference the same
// objects so bind groups and pipelines always agree.
type Layouts struct {
	// Camera is group 0: the camera uniform buffer.
	Camera *wgpu.BindGroupLayout

	// Lights is group 1: the point light storage buffer.
	Lights *wgpu.BindGroupLayout

	// Environment is group 2: skybox, irradiance, and specular cubemaps,
	// the BRDF LUT, and their samplers.
	Environment *wgpu.BindGroupLayout

	// Material is group 3: material factors, texture maps, and sampler.
	Material *wgpu.BindGroupLayout
}

// NewLayouts creates the shared bind group layouts.
//
// Parameters:
//   - ctx: GPU capability surface
//
// Returns:
//   - *Layouts: the layout set
//   - error: error if any layout creation fails
func NewLayouts(ctx gpu.Context) (*Layouts, error) {
	camera, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 80,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	lights, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Lights Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: lightStorageHeaderSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	environment, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Environment Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimensionCube,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimensionCube,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimensionCube,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    4,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			{
				Binding:    5,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeNonFiltering},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	material, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Material Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 48,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    4,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    5,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &Layouts{
		Camera:      camera,
		Lights:      lights,
		Environment: environment,
		Material:    material,
	}, nil
}

// All returns the layouts in bind group index order, as consumed by render
// pipeline creation.
//
// Returns:
//   - []*wgpu.BindGroupLayout: layouts for groups 0 through 3
func (l *Layouts) All() []*wgpu.BindGroupLayout {
	return []*wgpu.BindGroupLayout{l.Camera, l.Lights, l.Environment, l.Material}
}

// Release frees all layouts.
func (l *Layouts) Release() {
	if l == nil {
		return
	}
	for _, layout := range l.All() {
		if layout != nil {
			layout.Release()
		}
	}
}
