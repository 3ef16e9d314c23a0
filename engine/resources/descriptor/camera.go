package descriptor

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCameraLabel is the label of the camera the world spawns
// automatically when no camera has been activated.
const DefaultCameraLabel = "Default"

// CameraDescriptor describes a perspective camera. Cameras are identified by
// label: pose updates mutate the realized camera's uniform buffer in place
// rather than realizing a new one, so the content hash covers the label only.
type CameraDescriptor struct {
	// Label identifies the camera inside the world.
	Label string

	// Position is the camera position in world space.
	Position mgl32.Vec3

	// Yaw is the rotation around the Y axis in radians.
	Yaw float32

	// Pitch is the rotation around the X axis in radians.
	Pitch float32

	// FovY is the vertical field of view in radians.
	FovY float32

	// Near and Far are the clipping plane distances.
	Near float32
	Far  float32
}

// DefaultCamera returns the camera the world falls back to when no camera is
// active: origin, looking down -Z, 45 degree vertical field of view.
//
// Returns:
//   - CameraDescriptor: the default camera
func DefaultCamera() CameraDescriptor {
	return CameraDescriptor{
		Label: DefaultCameraLabel,
		Yaw:   -mgl32.DegToRad(90),
		FovY:  mgl32.DegToRad(45),
		Near:  0.1,
		Far:   1000.0,
	}
}

// Forward computes the camera's view direction from yaw and pitch.
//
// Returns:
//   - mgl32.Vec3: normalized view direction
func (d *CameraDescriptor) Forward() mgl32.Vec3 {
	cosPitch := math32.Cos(d.Pitch)
	return mgl32.Vec3{
		math32.Cos(d.Yaw) * cosPitch,
		math32.Sin(d.Pitch),
		math32.Sin(d.Yaw) * cosPitch,
	}.Normalize()
}

// Hash returns the identity hash of the camera.
//
// Returns:
//   - uint64: FNV-1a hash of the label
func (d *CameraDescriptor) Hash() uint64 {
	h := newHasher(kindCamera)
	h.writeString(d.Label)
	return h.sum()
}
