package loader

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// generateNormals computes smooth vertex normals from triangle geometry for
// files that omit the NORMAL attribute. Face normals are accumulated
// area-weighted onto each vertex and normalized at the end, producing smooth
// shading across shared vertices.
//
// Parameters:
//   - vertices: vertex slice to write normals into
//   - indices: triangle index buffer
func generateNormals(vertices []descriptor.Vertex, indices []uint32) {
	n := len(vertices)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0 := vertices[i0].Position
		edge1 := vertices[i1].Position.Sub(p0)
		edge2 := vertices[i2].Position.Sub(p0)

		// Cross product length is proportional to triangle area.
		face := edge1.Cross(edge2)
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i := range vertices {
		if accum[i].Len() < 1e-6 {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
			continue
		}
		vertices[i].Normal = accum[i].Normalize()
	}
}

// generateTangents computes per-vertex tangents from UV gradients for files
// that omit the TANGENT attribute. Per-triangle tangent and bitangent
// directions are accumulated per vertex, then orthonormalized against the
// vertex normal; the W component stores handedness.
//
// Parameters:
//   - vertices: vertex slice to write tangents into
//   - indices: triangle index buffer
func generateTangents(vertices []descriptor.Vertex, indices []uint32) {
	n := len(vertices)
	tan := make([]mgl32.Vec3, n)
	btan := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0 := vertices[i0].Position
		edge1 := vertices[i1].Position.Sub(p0)
		edge2 := vertices[i2].Position.Sub(p0)

		uv0 := vertices[i0].TexCoord
		duv1 := vertices[i1].TexCoord.Sub(uv0)
		duv2 := vertices[i2].TexCoord.Sub(uv0)

		det := duv1.X()*duv2.Y() - duv1.Y()*duv2.X()
		if det == 0 {
			continue
		}
		invDet := 1 / det

		t := edge1.Mul(duv2.Y()).Sub(edge2.Mul(duv1.Y())).Mul(invDet)
		b := edge2.Mul(duv1.X()).Sub(edge1.Mul(duv2.X())).Mul(invDet)

		tan[i0] = tan[i0].Add(t)
		tan[i1] = tan[i1].Add(t)
		tan[i2] = tan[i2].Add(t)
		btan[i0] = btan[i0].Add(b)
		btan[i1] = btan[i1].Add(b)
		btan[i2] = btan[i2].Add(b)
	}

	for i := range vertices {
		normal := vertices[i].Normal

		// Gram-Schmidt: T' = normalize(T - N * dot(N, T))
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			vertices[i].Tangent = mgl32.Vec4{1, 0, 0, 1}
			continue
		}
		ortho = ortho.Normalize()

		// The sign of dot(cross(N, T), B) decides whether the bitangent is
		// flipped.
		w := float32(1)
		if normal.Cross(ortho).Dot(btan[i]) < 0 {
			w = -1
		}
		vertices[i].Tangent = mgl32.Vec4{ortho.X(), ortho.Y(), ortho.Z(), w}
	}
}
