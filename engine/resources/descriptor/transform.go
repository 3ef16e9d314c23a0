package descriptor

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/SakulFlee/Orbital/common"
)

// Transform places one instance of a model in world space.
// Transforms are mutable per-frame state and are deliberately excluded from
// model content hashes: moving an instance must never force re-realization.
type Transform struct {
	// Position is the translation in world space.
	Position mgl32.Vec3

	// Rotation holds Euler angles in radians, applied in Y * X * Z order.
	Rotation mgl32.Vec3

	// Scale holds per-axis scale factors.
	Scale mgl32.Vec3
}

// DefaultTransform returns an identity transform (no translation, no
// rotation, unit scale).
//
// Returns:
//   - Transform: the identity transform
func DefaultTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes the transform into a model-to-world matrix.
//
// Returns:
//   - mgl32.Mat4: the composed matrix (column-major)
func (t Transform) Matrix() mgl32.Mat4 {
	return common.TransformMatrix(t.Position, t.Rotation, t.Scale)
}
