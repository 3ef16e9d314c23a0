// package renderer owns the presentation side of the engine: surface and
// device acquisition, the MSAA and depth targets, the forward PBR and skybox
// pipelines, and per-frame submission of the world's prepared bindings.
package renderer

import (
	_ "embed"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
	"github.com/SakulFlee/Orbital/engine/resources/realization"
	"github.com/SakulFlee/Orbital/engine/world"
)

//go:embed assets/pbr.wgsl
var pbrShaderSource string

//go:embed assets/skybox.wgsl
var skyboxShaderSource string

// Renderer presents prepared frame bindings to a window surface.
type Renderer interface {
	// Context returns the GPU capability surface shared with the world and
	// the environment precompute pipeline.
	//
	// Returns:
	//   - gpu.Context: the capability surface
	Context() gpu.Context

	// Resize reconfigures the surface and its MSAA and depth targets. Call
	// when the window size changes; zero sizes are ignored.
	//
	// Parameters:
	//   - width, height: new surface size in pixels
	Resize(width, height uint32)

	// AspectRatio returns the surface aspect ratio (width divided by
	// height).
	//
	// Returns:
	//   - float32: the aspect ratio
	AspectRatio() float32

	// RenderFrame draws and presents one frame: every model in the draw
	// list whose bounding sphere intersects the view frustum, then the
	// skybox when an environment is bound.
	//
	// Parameters:
	//   - bindings: the frame bindings built by the world
	//
	// Returns:
	//   - error: error if the surface texture cannot be acquired or the
	//     frame cannot be submitted
	RenderFrame(bindings *world.FrameBindings) error

	// Release frees the renderer's GPU objects. Call after the last frame.
	Release()
}

type renderer struct {
	mu sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	ctx      gpu.Context
	layouts  *realization.Layouts

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   uint32
	clearColor    wgpu.Color
	forceFallback bool

	width, height  uint32
	msaaTexture    *wgpu.Texture
	msaaView       *wgpu.TextureView
	depthTexture   *wgpu.Texture
	depthView      *wgpu.TextureView
	passDescriptor *wgpu.RenderPassDescriptor

	pbrPipeline    *wgpu.RenderPipeline
	skyboxPipeline *wgpu.RenderPipeline

	fallbackEnvironment *fallbackEnvironment
}

var _ Renderer = &renderer{}

// NewRenderer acquires the GPU device for a window surface, configures the
// swapchain, and builds the render pipelines.
//
// Parameters:
//   - surfaceDescriptor: the window's surface descriptor
//   - width, height: initial surface size in pixels
//   - options: functional options to further configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if device acquisition or pipeline creation fails
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height uint32, options ...RendererBuilderOption) (Renderer, error) {
	runtime.LockOSThread()

	r := &renderer{
		presentMode: wgpu.PresentModeFifo,
		sampleCount: 4,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}
	for _, option := range options {
		option(r)
	}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface:    r.surface,
		ForceFallbackAdapter: r.forceFallback,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire adapter: %w", err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire device: %w", err)
	}
	r.device = device
	r.queue = device.GetQueue()
	r.ctx = gpu.NewContext(r.device, r.queue)

	layouts, err := realization.NewLayouts(r.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layouts: %w", err)
	}
	r.layouts = layouts

	if err := r.configureSurface(width, height); err != nil {
		return nil, err
	}
	if err := r.createPipelines(); err != nil {
		return nil, err
	}

	fallback, err := newFallbackEnvironment(r.ctx, r.layouts)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback environment: %w", err)
	}
	r.fallbackEnvironment = fallback

	return r, nil
}

func (r *renderer) Context() gpu.Context {
	return r.ctx
}

func (r *renderer) Resize(width, height uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width == 0 || height == 0 {
		return
	}
	if err := r.configureSurface(width, height); err != nil {
		// Keep the previous configuration; the next resize retries.
		log.Printf("renderer: surface reconfiguration failed: %v", err)
	}
}

func (r *renderer) AspectRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// configureSurface configures the swapchain and rebuilds the MSAA and depth
// attachments plus the cached render pass descriptor for the new size.
func (r *renderer) configureSurface(width, height uint32) error {
	capabilities := r.surface.GetCapabilities(r.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("surface reports no supported formats")
	}
	r.surfaceFormat = capabilities.Formats[0]

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: r.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	r.width, r.height = width, height

	r.releaseTargets()

	if r.sampleCount > 1 {
		// With MSAA the pass draws into the multisampled texture and
		// resolves into the swapchain view, set per frame as ResolveTarget.
		msaaTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   r.sampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        r.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("failed to create MSAA texture: %w", err)
		}
		msaaView, err := msaaTexture.CreateView(nil)
		if err != nil {
			msaaTexture.Release()
			return fmt.Errorf("failed to create MSAA view: %w", err)
		}
		r.msaaTexture = msaaTexture
		r.msaaView = msaaView
	}

	depthTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   r.sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("failed to create depth view: %w", err)
	}
	r.depthTexture = depthTexture
	r.depthView = depthView

	storeOp := wgpu.StoreOpStore
	if r.sampleCount > 1 {
		storeOp = wgpu.StoreOpDiscard
	}
	r.passDescriptor = &wgpu.RenderPassDescriptor{
		Label: "Main Render Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       r.msaaView, // nil without MSAA; set per frame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: r.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (r *renderer) releaseTargets() {
	if r.msaaView != nil {
		r.msaaView.Release()
		r.msaaView = nil
	}
	if r.msaaTexture != nil {
		r.msaaTexture.Release()
		r.msaaTexture = nil
	}
	if r.depthView != nil {
		r.depthView.Release()
		r.depthView = nil
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
		r.depthTexture = nil
	}
}

func (r *renderer) RenderFrame(bindings *world.FrameBindings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("failed to create surface view: %w", err)
	}
	defer func() {
		view.Release()
		surfaceTexture.Release()
	}()

	if r.sampleCount > 1 {
		r.passDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		r.passDescriptor.ColorAttachments[0].View = view
	}

	encoder, err := r.ctx.CreateEncoder()
	if err != nil {
		return fmt.Errorf("failed to create frame encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(r.passDescriptor)
	pass.SetBindGroup(realization.BindGroupCamera, bindings.CameraBindGroup, nil)
	pass.SetBindGroup(realization.BindGroupLights, bindings.LightsBindGroup, nil)

	environment := bindings.EnvironmentBindGroup
	if environment == nil {
		environment = r.fallbackEnvironment.bindGroup
	}
	pass.SetBindGroup(realization.BindGroupEnvironment, environment, nil)

	frustum := common.ExtractFrustum(bindings.ViewProjection)
	pass.SetPipeline(r.pbrPipeline)
	for _, model := range bindings.Draws {
		if !modelVisible(&frustum, model) {
			continue
		}
		pass.SetBindGroup(realization.BindGroupMaterial, model.Material().BindGroup(), nil)
		pass.SetVertexBuffer(0, model.Mesh().VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, model.InstanceBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(model.Mesh().IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(model.Mesh().IndexCount(), model.InstanceCount(), 0, 0, 0)
	}

	// The skybox fills the background last so it only shades pixels no
	// model covered. Without an environment the clear color stays.
	if bindings.EnvironmentBindGroup != nil {
		pass.SetPipeline(r.skyboxPipeline)
		pass.Draw(36, 1, 0, 0)
	}

	pass.End()
	pass.Release()

	if err := r.ctx.Submit(encoder); err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	r.surface.Present()
	return nil
}

// modelVisible reports whether any instance's bounding sphere intersects the
// view frustum. Models with no transforms are conservatively kept.
func modelVisible(frustum *common.Frustum, model *realization.Model) bool {
	transforms := model.Transforms()
	if len(transforms) == 0 {
		return true
	}
	radius := model.Mesh().BoundingRadius()
	for i := range transforms {
		if instanceVisible(frustum, transforms[i], radius) {
			return true
		}
	}
	return false
}

// instanceVisible tests one instance's bounding sphere, inflated by the
// largest axis scale.
func instanceVisible(frustum *common.Frustum, transform descriptor.Transform, radius float32) bool {
	scale := transform.Scale
	maxScale := max(abs32(scale.X()), abs32(scale.Y()), abs32(scale.Z()))
	return frustum.ContainsSphere(transform.Position, radius*maxScale)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pbrPipeline != nil {
		r.pbrPipeline.Release()
		r.pbrPipeline = nil
	}
	if r.skyboxPipeline != nil {
		r.skyboxPipeline.Release()
		r.skyboxPipeline = nil
	}
	r.fallbackEnvironment.Release()
	r.fallbackEnvironment = nil
	r.releaseTargets()
	r.layouts.Release()
	r.layouts = nil
}
