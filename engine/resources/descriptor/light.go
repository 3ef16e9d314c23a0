package descriptor

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PointLightDescriptor describes a point light. Lights live in the world's
// light store keyed by label; spawning a light with an existing label
// replaces it.
type PointLightDescriptor struct {
	// Label identifies the light inside the world.
	Label string

	// Position is the light position in world space.
	Position mgl32.Vec3

	// Color is the linear RGB light color.
	Color mgl32.Vec3

	// Intensity scales the light output.
	Intensity float32

	// Radius is the falloff distance beyond which the light contributes nothing.
	Radius float32
}

// Hash returns the stable content hash of the descriptor.
//
// Returns:
//   - uint64: FNV-1a content hash
func (d *PointLightDescriptor) Hash() uint64 {
	h := newHasher(kindPointLight)
	h.writeString(d.Label)
	h.writeVec3(d.Position)
	h.writeVec3(d.Color)
	h.writeFloat32(d.Intensity)
	h.writeFloat32(d.Radius)
	return h.sum()
}
