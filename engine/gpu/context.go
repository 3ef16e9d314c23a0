// package gpu provides the device capability surface consumed by resource
// realization and the environment precompute pipeline: buffer and texture
// allocation, compute pipeline compilation, command encoding, and the frame
// counter that drives deferred garbage collection.
package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/common"
)

// Context is the GPU capability surface. Realizers receive a Context instead
// of a raw device so resource creation, upload, and submission stay in one
// place.
type Context interface {
	// Device returns the underlying WebGPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device's default queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// CreateBuffer allocates an empty GPU buffer.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: buffer size in bytes
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: error if allocation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// CreateBufferInit allocates a GPU buffer and uploads data into it.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: initial contents
	//   - usage: buffer usage flags (CopyDst is added automatically)
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: error if allocation fails
	CreateBufferInit(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// CreateTexture2D allocates a 2D texture with a default view and sampler.
	//
	// Parameters:
	//   - label: debug label
	//   - width, height: texture dimensions in pixels
	//   - format: texel format
	//   - usage: texture usage flags
	//
	// Returns:
	//   - *Texture: the texture wrapper
	//   - error: error if allocation fails
	CreateTexture2D(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*Texture, error)

	// CreateCubeTexture allocates a 6-layer cube texture. The default view is
	// a cube view for sampling; per-face and per-mip array views are created
	// on demand via the Texture methods.
	//
	// Parameters:
	//   - label: debug label
	//   - faceSize: edge length of each face in pixels
	//   - format: texel format
	//   - usage: texture usage flags
	//   - mipLevelCount: number of mip levels (1 for no mip chain)
	//
	// Returns:
	//   - *Texture: the texture wrapper
	//   - error: error if allocation fails
	CreateCubeTexture(label string, faceSize uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage, mipLevelCount uint32) (*Texture, error)

	// WriteBuffer uploads data into an existing buffer at the given offset.
	//
	// Parameters:
	//   - buffer: target buffer
	//   - offset: byte offset into the buffer
	//   - data: bytes to upload
	WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte)

	// WriteTexture uploads pixel data to mip level 0 of a texture.
	//
	// Parameters:
	//   - t: target texture
	//   - data: tightly packed pixel bytes
	//   - bytesPerPixel: bytes per texel in data
	WriteTexture(t *Texture, data []byte, bytesPerPixel uint32)

	// CreateComputePipeline compiles a WGSL compute shader and builds a
	// pipeline over the given bind group layouts.
	//
	// Parameters:
	//   - label: debug label
	//   - source: WGSL source text
	//   - entryPoint: name of the @compute entry point
	//   - layouts: bind group layouts in group order
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the pipeline
	//   - error: error if compilation fails
	CreateComputePipeline(label, source, entryPoint string, layouts []*wgpu.BindGroupLayout) (*wgpu.ComputePipeline, error)

	// CreateBindGroupLayout creates a bind group layout.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	//   - error: error if creation fails
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBindGroup creates a bind group.
	//
	// Parameters:
	//   - desc: the bind group descriptor
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	//   - error: error if creation fails
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)

	// CreateSampler creates a sampler, filling unset fields with linear
	// filtering and repeat addressing defaults.
	//
	// Parameters:
	//   - label: debug label
	//   - staging: sampler configuration (zero values select defaults)
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: error if creation fails
	CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error)

	// CreateEncoder creates a command encoder.
	//
	// Returns:
	//   - *wgpu.CommandEncoder: the encoder
	//   - error: error if creation fails
	CreateEncoder() (*wgpu.CommandEncoder, error)

	// Submit finishes an encoder and submits its command buffer to the queue.
	//
	// Parameters:
	//   - encoder: the encoder to finish and submit
	//
	// Returns:
	//   - error: error if finishing the encoder fails
	Submit(encoder *wgpu.CommandEncoder) error

	// Frame returns the current frame number.
	//
	// Returns:
	//   - uint64: the frame number
	Frame() uint64

	// AdvanceFrame increments and returns the frame number. Called once per
	// rendered frame after submission.
	//
	// Returns:
	//   - uint64: the new frame number
	AdvanceFrame() uint64
}

// context is the implementation of the Context interface over a WebGPU
// device and queue.
type context struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	frame  atomic.Uint64
}

var _ Context = &context{}

// NewContext wraps an existing device and queue in a Context. The renderer
// backend owns adapter and device acquisition; this keeps precompute and
// realization independent of surface handling.
//
// Parameters:
//   - device: the WebGPU device
//   - queue: the device's queue
//
// Returns:
//   - Context: the capability surface
func NewContext(device *wgpu.Device, queue *wgpu.Queue) Context {
	return &context{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
	}
}

func (c *context) Device() *wgpu.Device {
	return c.device
}

func (c *context) Queue() *wgpu.Queue {
	return c.queue
}

func (c *context) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	return buf, nil
}

func (c *context) CreateBufferInit(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := c.CreateBuffer(label, uint64(len(data)), usage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	c.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (c *context) CreateTexture2D(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*Texture, error) {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view for texture %q: %w", label, err)
	}
	sampler, err := c.CreateSampler(label, common.SamplerStagingData{})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}
	return &Texture{
		label:         label,
		texture:       tex,
		view:          view,
		sampler:       sampler,
		format:        format,
		width:         width,
		height:        height,
		layers:        1,
		mipLevelCount: 1,
	}, nil
}

func (c *context) CreateCubeTexture(label string, faceSize uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage, mipLevelCount uint32) (*Texture, error) {
	if mipLevelCount == 0 {
		mipLevelCount = 1
	}
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              faceSize,
			Height:             faceSize,
			DepthOrArrayLayers: 6,
		},
		Format:        format,
		MipLevelCount: mipLevelCount,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cube texture %q: %w", label, err)
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " Cube View",
		Format:          format,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   mipLevelCount,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create cube view for texture %q: %w", label, err)
	}
	sampler, err := c.CreateSampler(label, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}
	return &Texture{
		label:         label,
		texture:       tex,
		view:          view,
		sampler:       sampler,
		format:        format,
		width:         faceSize,
		height:        faceSize,
		layers:        6,
		mipLevelCount: mipLevelCount,
	}, nil
}

func (c *context) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) {
	c.queue.WriteBuffer(buffer, offset, data)
}

func (c *context) WriteTexture(t *Texture, data []byte, bytesPerPixel uint32) {
	c.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  t.width * bytesPerPixel,
			RowsPerImage: t.height,
		},
		&wgpu.Extent3D{
			Width:              t.width,
			Height:             t.height,
			DepthOrArrayLayers: t.layers,
		},
	)
}

func (c *context) CreateComputePipeline(label, source, entryPoint string, layouts []*wgpu.BindGroupLayout) (*wgpu.ComputePipeline, error) {
	module, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader %q: %w", label, err)
	}
	defer module.Release()

	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + " Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", label, err)
	}
	defer pipelineLayout.Release()

	pipeline, err := c.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label + " Compute Pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create compute pipeline %q: %w", label, err)
	}
	return pipeline, nil
}

func (c *context) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return c.device.CreateBindGroupLayout(desc)
}

func (c *context) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return c.device.CreateBindGroup(desc)
}

func (c *context) CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error) {
	samp, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(staging.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(staging.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(staging.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
		Compare:       staging.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", label, err)
	}
	return samp, nil
}

func (c *context) CreateEncoder() (*wgpu.CommandEncoder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateCommandEncoder(nil)
}

func (c *context) Submit(encoder *wgpu.CommandEncoder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	c.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

func (c *context) Frame() uint64 {
	return c.frame.Load()
}

func (c *context) AdvanceFrame() uint64 {
	return c.frame.Add(1)
}
