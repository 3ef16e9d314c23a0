package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a combined view-projection
// matrix using the Gribb/Hartmann method.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined View * Projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	// mgl32.Mat4 is column-major: M[row][col] sits at index col*4 + row.
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	setPlane := func(index int, v mgl32.Vec4) {
		normal := mgl32.Vec3{v.X(), v.Y(), v.Z()}
		length := normal.Len()
		if length > 0 {
			f.Planes[index].Normal = normal.Mul(1.0 / length)
			f.Planes[index].Distance = v.W() / length
		}
	}

	setPlane(FrustumLeft, r3.Add(r0))
	setPlane(FrustumRight, r3.Sub(r0))
	setPlane(FrustumBottom, r3.Add(r1))
	setPlane(FrustumTop, r3.Sub(r1))
	setPlane(FrustumNear, r3.Add(r2))
	setPlane(FrustumFar, r3.Sub(r2))

	return f
}

// ContainsSphere reports whether a bounding sphere intersects the frustum.
// A sphere touching any plane is treated as inside.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: true if any part of the sphere is inside the frustum
func (f *Frustum) ContainsSphere(center mgl32.Vec3, radius float32) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		if p.Normal.Dot(center)+p.Distance < -radius {
			return false
		}
	}
	return true
}
