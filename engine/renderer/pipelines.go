package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex buffer slot 0 carries per-vertex data, slot 1 per-instance model
// matrices. Strides and offsets follow the realized mesh and instance
// buffer layouts.
var vertexBufferLayouts = []wgpu.VertexBufferLayout{
	{
		ArrayStride: 48,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
		},
	},
	{
		ArrayStride: 64,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 4},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 7},
		},
	},
}

// createPipelines builds the forward PBR pipeline and the skybox pipeline
// against the shared bind group layouts. Requires a configured surface so
// the color target format is known.
func (r *renderer) createPipelines() error {
	pbrModule, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "PBR Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: pbrShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile PBR shader: %w", err)
	}
	defer pbrModule.Release()

	pbrLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "PBR Pipeline Layout",
		BindGroupLayouts: r.layouts.All(),
	})
	if err != nil {
		return fmt.Errorf("failed to create PBR pipeline layout: %w", err)
	}
	defer pbrLayout.Release()

	pbrPipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "PBR Render Pipeline",
		Layout: pbrLayout,
		Vertex: wgpu.VertexState{
			Module:     pbrModule,
			EntryPoint: "vs_main",
			Buffers:    vertexBufferLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     pbrModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: r.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create PBR pipeline: %w", err)
	}

	skyboxModule, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Skybox Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: skyboxShaderSource,
		},
	})
	if err != nil {
		pbrPipeline.Release()
		return fmt.Errorf("failed to compile skybox shader: %w", err)
	}
	defer skyboxModule.Release()

	// The skybox shader only references groups 0 and 2, but uses the same
	// layout prefix so camera and environment bind groups stay compatible.
	skyboxLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Skybox Pipeline Layout",
		BindGroupLayouts: r.layouts.All()[:3],
	})
	if err != nil {
		pbrPipeline.Release()
		return fmt.Errorf("failed to create skybox pipeline layout: %w", err)
	}
	defer skyboxLayout.Release()

	skyboxPipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Skybox Render Pipeline",
		Layout: skyboxLayout,
		Vertex: wgpu.VertexState{
			Module:     skyboxModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     skyboxModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: r.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		// Drawn at the far plane after all models: depth test less-equal
		// passes only where the depth buffer still holds the clear value.
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		pbrPipeline.Release()
		return fmt.Errorf("failed to create skybox pipeline: %w", err)
	}

	r.pbrPipeline = pbrPipeline
	r.skyboxPipeline = skyboxPipeline
	return nil
}
