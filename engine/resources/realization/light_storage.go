package realization

import (
	"encoding/binary"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// initialLightCapacity is the light count the storage buffer is sized for
// before the first grow.
const initialLightCapacity = 16

// LightStorage owns the point light storage buffer bound at group 1. The
// buffer layout is a 16-byte count header followed by a tightly packed
// GPULight array. Growing past capacity recreates both the buffer and its
// bind group; same-size updates re-upload in place.
type LightStorage struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	capacity  uint32
	lights    []descriptor.PointLightDescriptor
	dirty     bool
}

// NewLightStorage creates an empty light storage buffer and its bind group.
//
// Parameters:
//   - ctx: GPU capability surface
//   - layouts: shared bind group layouts
//
// Returns:
//   - *LightStorage: the light storage
//   - error: error if GPU creation fails
func NewLightStorage(ctx gpu.Context, layouts *Layouts) (*LightStorage, error) {
	s := &LightStorage{dirty: true}
	if err := s.recreate(ctx, layouts, initialLightCapacity); err != nil {
		return nil, err
	}
	return s, nil
}

// recreate allocates the buffer for the given capacity and rebuilds the bind
// group, releasing any previous objects.
func (s *LightStorage) recreate(ctx gpu.Context, layouts *Layouts, capacity uint32) error {
	size := uint64(lightStorageHeaderSize) + uint64(capacity)*32
	buffer, err := ctx.CreateBuffer(
		"Light Storage",
		size,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst,
	)
	if err != nil {
		return &resources.RealizationError{Kind: "lights", Label: "Light Storage", Err: err}
	}

	bindGroup, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Light Storage Bind Group",
		Layout: layouts.Lights,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		buffer.Release()
		return &resources.RealizationError{Kind: "lights", Label: "Light Storage", Err: err}
	}

	if s.bindGroup != nil {
		s.bindGroup.Release()
	}
	if s.buffer != nil {
		s.buffer.Release()
	}
	s.buffer = buffer
	s.bindGroup = bindGroup
	s.capacity = capacity
	return nil
}

// SetLights replaces the light set and marks the buffer dirty. The upload
// happens on the next Write call.
//
// Parameters:
//   - lights: the new light set
func (s *LightStorage) SetLights(lights []descriptor.PointLightDescriptor) {
	s.lights = append(s.lights[:0], lights...)
	s.dirty = true
}

// LightCount returns the number of lights in the set.
//
// Returns:
//   - uint32: the light count
func (s *LightStorage) LightCount() uint32 {
	return uint32(len(s.lights))
}

// BindGroup returns the light bind group (group 1). The pointer changes when
// the buffer grows, so callers must re-fetch it every frame.
//
// Returns:
//   - *wgpu.BindGroup: the bind group
func (s *LightStorage) BindGroup() *wgpu.BindGroup {
	return s.bindGroup
}

// Write uploads the light set if it changed since the last call, growing the
// buffer first when the set no longer fits.
//
// Parameters:
//   - ctx: GPU capability surface
//   - layouts: shared bind group layouts
//
// Returns:
//   - error: error if a grow-triggered recreation fails
func (s *LightStorage) Write(ctx gpu.Context, layouts *Layouts) error {
	if !s.dirty {
		return nil
	}

	count := uint32(len(s.lights))
	if count > s.capacity {
		capacity := max(s.capacity*2, initialLightCapacity)
		for capacity < count {
			capacity *= 2
		}
		if err := s.recreate(ctx, layouts, capacity); err != nil {
			return err
		}
	}

	data := make([]byte, lightStorageHeaderSize, lightStorageHeaderSize+int(count)*32)
	binary.LittleEndian.PutUint32(data[0:4], count)
	for i := range s.lights {
		l := &s.lights[i]
		light := GPULight{
			Position:  [3]float32{l.Position.X(), l.Position.Y(), l.Position.Z()},
			Radius:    l.Radius,
			Color:     [3]float32{l.Color.X(), l.Color.Y(), l.Color.Z()},
			Intensity: l.Intensity,
		}
		data = append(data, light.Marshal()...)
	}
	ctx.WriteBuffer(s.buffer, 0, data)
	s.dirty = false
	return nil
}

// Release frees the storage buffer and bind group. Safe on a nil receiver.
func (s *LightStorage) Release() {
	if s == nil {
		return
	}
	if s.bindGroup != nil {
		s.bindGroup.Release()
		s.bindGroup = nil
	}
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
	}
}
