package realization

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// Camera is a realized camera: its pose descriptor plus the uniform buffer
// and bind group consumed by render pipelines. Pose changes mutate the
// buffer in place during frame preparation.
type Camera struct {
	desc      descriptor.CameraDescriptor
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	viewProj  mgl32.Mat4
	dirty     bool
}

// RealizeCamera creates the uniform buffer and bind group for a camera.
//
// Parameters:
//   - desc: the camera descriptor
//   - ctx: GPU capability surface
//   - layouts: shared bind group layouts
//
// Returns:
//   - *Camera: the realized camera
//   - error: error if GPU creation fails
func RealizeCamera(desc descriptor.CameraDescriptor, ctx gpu.Context, layouts *Layouts) (*Camera, error) {
	uniform := GPUCameraUniform{}
	buffer, err := ctx.CreateBufferInit(desc.Label+" Camera Uniform", uniform.Marshal(), wgpu.BufferUsageUniform)
	if err != nil {
		return nil, &resources.RealizationError{Kind: "camera", Label: desc.Label, Err: err}
	}

	bindGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  desc.Label + " Camera Bind Group",
		Layout: layouts.Camera,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		buffer.Release()
		return nil, &resources.RealizationError{Kind: "camera", Label: desc.Label, Err: err}
	}

	return &Camera{
		desc:      desc,
		buffer:    buffer,
		bindGroup: bindGroup,
		dirty:     true,
	}, nil
}

// Descriptor returns the current pose descriptor.
//
// Returns:
//   - descriptor.CameraDescriptor: the descriptor
func (c *Camera) Descriptor() descriptor.CameraDescriptor {
	return c.desc
}

// SetDescriptor replaces the pose and marks the uniform dirty.
//
// Parameters:
//   - desc: the new pose descriptor (label must match)
func (c *Camera) SetDescriptor(desc descriptor.CameraDescriptor) {
	c.desc = desc
	c.dirty = true
}

// BindGroup returns the camera bind group (group 0).
//
// Returns:
//   - *wgpu.BindGroup: the bind group
func (c *Camera) BindGroup() *wgpu.BindGroup {
	return c.bindGroup
}

// ViewProjection returns the matrix uploaded by the last Write call.
//
// Returns:
//   - mgl32.Mat4: the combined view-projection matrix
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.viewProj
}

// Write recomputes the view-projection matrix and uploads the uniform when
// the pose or aspect ratio changed.
//
// Parameters:
//   - ctx: GPU capability surface
//   - aspect: viewport aspect ratio (width / height)
func (c *Camera) Write(ctx gpu.Context, aspect float32) {
	proj := common.Perspective(c.desc.FovY, aspect, c.desc.Near, c.desc.Far)
	view := common.LookAt(c.desc.Position, c.desc.Position.Add(c.desc.Forward()), mgl32.Vec3{0, 1, 0})
	viewProj := proj.Mul4(view)
	if !c.dirty && viewProj == c.viewProj {
		return
	}
	c.viewProj = viewProj

	uniform := GPUCameraUniform{
		ViewProj:       [16]float32(viewProj),
		CameraPosition: [3]float32{c.desc.Position.X(), c.desc.Position.Y(), c.desc.Position.Z()},
	}
	ctx.WriteBuffer(c.buffer, 0, uniform.Marshal())
	c.dirty = false
}

// Release frees the camera's GPU objects. Safe on a nil receiver.
func (c *Camera) Release() {
	if c == nil {
		return
	}
	if c.bindGroup != nil {
		c.bindGroup.Release()
		c.bindGroup = nil
	}
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}
