package descriptor

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the CPU-side vertex attribute set used by mesh descriptors.
type Vertex struct {
	// Position is the vertex position in model space.
	Position mgl32.Vec3

	// Normal is the vertex normal for lighting.
	Normal mgl32.Vec3

	// TexCoord is the UV texture coordinate.
	TexCoord mgl32.Vec2

	// Tangent holds the tangent vector (xyz) and handedness (w) for normal mapping.
	Tangent mgl32.Vec4
}

// MeshDescriptor describes indexed triangle geometry.
type MeshDescriptor struct {
	// Label identifies the mesh for logs and GPU object labels.
	Label string

	// Vertices is the vertex data.
	Vertices []Vertex

	// Indices is the triangle index data (three indices per triangle).
	Indices []uint32
}

// Hash returns the stable content hash of the descriptor, covering label,
// every vertex attribute, and the index data.
//
// Returns:
//   - uint64: FNV-1a content hash
func (d *MeshDescriptor) Hash() uint64 {
	h := newHasher(kindMesh)
	h.writeString(d.Label)
	h.writeUint64(uint64(len(d.Vertices)))
	for i := range d.Vertices {
		v := &d.Vertices[i]
		h.writeVec3(v.Position)
		h.writeVec3(v.Normal)
		h.writeFloat32(v.TexCoord.X())
		h.writeFloat32(v.TexCoord.Y())
		for j := range 4 {
			h.writeFloat32(v.Tangent[j])
		}
	}
	h.writeUint64(uint64(len(d.Indices)))
	for _, idx := range d.Indices {
		h.writeUint32(idx)
	}
	return h.sum()
}

// Cube creates a unit-style cube mesh centered at the origin.
//
// Parameters:
//   - label: mesh identifier
//   - halfExtent: half the edge length
//
// Returns:
//   - MeshDescriptor: the cube mesh with per-face normals, UVs, and tangents
func Cube(label string, halfExtent float32) MeshDescriptor {
	e := halfExtent
	faces := []struct {
		normal  mgl32.Vec3
		tangent mgl32.Vec4
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec4{1, 0, 0, 1}, [4]mgl32.Vec3{{-e, -e, e}, {e, -e, e}, {e, e, e}, {-e, e, e}}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec4{-1, 0, 0, 1}, [4]mgl32.Vec3{{e, -e, -e}, {-e, -e, -e}, {-e, e, -e}, {e, e, -e}}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec4{0, 0, -1, 1}, [4]mgl32.Vec3{{e, -e, e}, {e, -e, -e}, {e, e, -e}, {e, e, e}}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec4{0, 0, 1, 1}, [4]mgl32.Vec3{{-e, -e, -e}, {-e, -e, e}, {-e, e, e}, {-e, e, -e}}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec4{1, 0, 0, 1}, [4]mgl32.Vec3{{-e, e, e}, {e, e, e}, {e, e, -e}, {-e, e, -e}}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec4{1, 0, 0, 1}, [4]mgl32.Vec3{{-e, -e, -e}, {e, -e, -e}, {e, -e, e}, {-e, -e, e}}},
	}

	uvs := [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	mesh := MeshDescriptor{Label: label}
	for _, face := range faces {
		base := uint32(len(mesh.Vertices))
		for i, corner := range face.corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: corner,
				Normal:   face.normal,
				TexCoord: uvs[i],
				Tangent:  face.tangent,
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}
