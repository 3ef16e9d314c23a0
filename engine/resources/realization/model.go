package realization

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// Model combines cache-held mesh and material references with its own
// per-instance transform buffer. Transform updates mark the model dirty and
// re-upload the instance data in place; they never re-realize the mesh or
// material.
type Model struct {
	label            string
	meshHash         uint64
	materialHash     uint64
	mesh             *Mesh
	material         *Material
	transforms       []descriptor.Transform
	instanceBuffer   *wgpu.Buffer
	instanceCapacity uint32
	dirty            bool
}

// NewModel creates a model over already-realized mesh and material values.
// The caller (the world) holds the cache references recorded by meshHash and
// materialHash and releases them when the model despawns.
//
// Parameters:
//   - label: model label inside the world
//   - mesh: realized mesh (cache-owned)
//   - meshHash: mesh cache reference held for this model
//   - material: realized material (cache-owned)
//   - materialHash: material cache reference held for this model
//   - transforms: initial instance transforms (empty spawns one identity instance)
//
// Returns:
//   - *Model: the model
func NewModel(label string, mesh *Mesh, meshHash uint64, material *Material, materialHash uint64, transforms []descriptor.Transform) *Model {
	if len(transforms) == 0 {
		transforms = []descriptor.Transform{descriptor.DefaultTransform()}
	}
	return &Model{
		label:        label,
		meshHash:     meshHash,
		materialHash: materialHash,
		mesh:         mesh,
		material:     material,
		transforms:   append([]descriptor.Transform(nil), transforms...),
		dirty:        true,
	}
}

// Label returns the model label.
//
// Returns:
//   - string: the label
func (m *Model) Label() string {
	return m.label
}

// MeshHash returns the mesh cache reference held for this model.
//
// Returns:
//   - uint64: the mesh content hash
func (m *Model) MeshHash() uint64 {
	return m.meshHash
}

// MaterialHash returns the material cache reference held for this model.
//
// Returns:
//   - uint64: the material content hash
func (m *Model) MaterialHash() uint64 {
	return m.materialHash
}

// Mesh returns the realized mesh.
//
// Returns:
//   - *Mesh: the mesh
func (m *Model) Mesh() *Mesh {
	return m.mesh
}

// Material returns the realized material.
//
// Returns:
//   - *Material: the material
func (m *Model) Material() *Material {
	return m.material
}

// Transforms returns the current instance transforms.
//
// Returns:
//   - []descriptor.Transform: the transforms (do not mutate)
func (m *Model) Transforms() []descriptor.Transform {
	return m.transforms
}

// InstanceCount returns the number of instances.
//
// Returns:
//   - uint32: the instance count
func (m *Model) InstanceCount() uint32 {
	return uint32(len(m.transforms))
}

// InstanceBuffer returns the per-instance matrix buffer. Valid only after
// PrepareInstances succeeded for the current transform set.
//
// Returns:
//   - *wgpu.Buffer: the instance buffer
func (m *Model) InstanceBuffer() *wgpu.Buffer {
	return m.instanceBuffer
}

// SetTransforms replaces all instance transforms.
//
// Parameters:
//   - transforms: the new transforms
func (m *Model) SetTransforms(transforms []descriptor.Transform) {
	m.transforms = append(m.transforms[:0], transforms...)
	m.dirty = true
}

// ApplyTransform appends one instance transform.
//
// Parameters:
//   - transform: the transform to add
func (m *Model) ApplyTransform(transform descriptor.Transform) {
	m.transforms = append(m.transforms, transform)
	m.dirty = true
}

// PrepareInstances uploads the instance matrices if they changed since the
// last call. The buffer is grown when the instance count exceeds its
// capacity and reused otherwise.
//
// Parameters:
//   - ctx: GPU capability surface
//
// Returns:
//   - error: error if buffer creation fails
func (m *Model) PrepareInstances(ctx gpu.Context) error {
	if !m.dirty && m.instanceBuffer != nil {
		return nil
	}

	count := uint32(len(m.transforms))
	if count > m.instanceCapacity || m.instanceBuffer == nil {
		if m.instanceBuffer != nil {
			m.instanceBuffer.Release()
			m.instanceBuffer = nil
		}
		buffer, err := ctx.CreateBuffer(
			m.label+" Instance Buffer",
			uint64(count)*64,
			wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst,
		)
		if err != nil {
			return &resources.RealizationError{Kind: "model", Label: m.label, Err: err}
		}
		m.instanceBuffer = buffer
		m.instanceCapacity = count
	}

	data := make([]byte, 0, count*64)
	for _, t := range m.transforms {
		matrix := t.Matrix()
		instance := GPUInstance{Model: [16]float32(matrix)}
		data = append(data, instance.Marshal()...)
	}
	ctx.WriteBuffer(m.instanceBuffer, 0, data)
	m.dirty = false
	return nil
}

// Release frees the instance buffer. Mesh and material are cache-owned and
// released by the world through MeshHash and MaterialHash.
func (m *Model) Release() {
	if m == nil {
		return
	}
	if m.instanceBuffer != nil {
		m.instanceBuffer.Release()
		m.instanceBuffer = nil
	}
}
