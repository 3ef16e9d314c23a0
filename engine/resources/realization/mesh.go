package realization

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// Mesh is realized indexed geometry: vertex and index buffers plus the
// bounding radius used for frustum culling.
type Mesh struct {
	label          string
	vertexBuffer   *wgpu.Buffer
	indexBuffer    *wgpu.Buffer
	indexCount     uint32
	boundingRadius float32
}

// RealizeMesh uploads a mesh descriptor's geometry to the GPU.
//
// Parameters:
//   - desc: the mesh descriptor
//   - ctx: GPU capability surface
//
// Returns:
//   - *Mesh: the realized mesh
//   - error: error if the descriptor is empty or buffer creation fails
func RealizeMesh(desc descriptor.MeshDescriptor, ctx gpu.Context) (*Mesh, error) {
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return nil, &resources.RealizationError{
			Kind:  "mesh",
			Label: desc.Label,
			Err:   fmt.Errorf("mesh has no geometry (%d vertices, %d indices)", len(desc.Vertices), len(desc.Indices)),
		}
	}

	vertexData := make([]byte, 0, len(desc.Vertices)*48)
	for i := range desc.Vertices {
		v := newGPUVertex(&desc.Vertices[i])
		vertexData = append(vertexData, v.Marshal()...)
	}

	vertexBuffer, err := ctx.CreateBufferInit(desc.Label+" Vertex Buffer", vertexData, wgpu.BufferUsageVertex)
	if err != nil {
		return nil, &resources.RealizationError{Kind: "mesh", Label: desc.Label, Err: err}
	}

	indexData := make([]byte, 0, len(desc.Indices)*4)
	for _, idx := range desc.Indices {
		indexData = append(indexData, byte(idx), byte(idx>>8), byte(idx>>16), byte(idx>>24))
	}
	indexBuffer, err := ctx.CreateBufferInit(desc.Label+" Index Buffer", indexData, wgpu.BufferUsageIndex)
	if err != nil {
		vertexBuffer.Release()
		return nil, &resources.RealizationError{Kind: "mesh", Label: desc.Label, Err: err}
	}

	return &Mesh{
		label:          desc.Label,
		vertexBuffer:   vertexBuffer,
		indexBuffer:    indexBuffer,
		indexCount:     uint32(len(desc.Indices)),
		boundingRadius: computeBoundingRadius(desc.Vertices),
	}, nil
}

// Label returns the mesh label.
//
// Returns:
//   - string: the label
func (m *Mesh) Label() string {
	return m.label
}

// VertexBuffer returns the vertex buffer.
//
// Returns:
//   - *wgpu.Buffer: the vertex buffer
func (m *Mesh) VertexBuffer() *wgpu.Buffer {
	return m.vertexBuffer
}

// IndexBuffer returns the index buffer (uint32 indices).
//
// Returns:
//   - *wgpu.Buffer: the index buffer
func (m *Mesh) IndexBuffer() *wgpu.Buffer {
	return m.indexBuffer
}

// IndexCount returns the number of indices.
//
// Returns:
//   - uint32: the index count
func (m *Mesh) IndexCount() uint32 {
	return m.indexCount
}

// BoundingRadius returns the model-space bounding sphere radius.
//
// Returns:
//   - float32: the radius
func (m *Mesh) BoundingRadius() float32 {
	return m.boundingRadius
}

// Release frees the GPU buffers. Safe on a nil receiver.
func (m *Mesh) Release() {
	if m == nil {
		return
	}
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}
