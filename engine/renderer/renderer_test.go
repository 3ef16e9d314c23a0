package renderer

import (
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
	"github.com/SakulFlee/Orbital/engine/resources/realization"
)

// testFrustum builds a frustum for a camera at the origin looking down -Z
// with a 90 degree vertical field of view.
func testFrustum() common.Frustum {
	projection := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return common.ExtractFrustum(projection.Mul4(view))
}

func TestInstanceVisibleInsideFrustum(t *testing.T) {
	frustum := testFrustum()

	transform := descriptor.Transform{
		Position: mgl32.Vec3{0, 0, -10},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	assert.True(t, instanceVisible(&frustum, transform, 1))
}

func TestInstanceVisibleBehindCamera(t *testing.T) {
	frustum := testFrustum()

	transform := descriptor.Transform{
		Position: mgl32.Vec3{0, 0, 10},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	assert.False(t, instanceVisible(&frustum, transform, 1))
}

func TestInstanceVisibleBeyondFarPlane(t *testing.T) {
	frustum := testFrustum()

	transform := descriptor.Transform{
		Position: mgl32.Vec3{0, 0, -200},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	assert.False(t, instanceVisible(&frustum, transform, 1))
}

func TestInstanceVisibleSphereOverlapsPlane(t *testing.T) {
	frustum := testFrustum()

	// Center sits past the far plane but the sphere reaches back across it.
	transform := descriptor.Transform{
		Position: mgl32.Vec3{0, 0, -105},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	assert.False(t, instanceVisible(&frustum, transform, 1))
	assert.True(t, instanceVisible(&frustum, transform, 10))
}

func TestInstanceVisibleScaleInflatesRadius(t *testing.T) {
	frustum := testFrustum()

	// Well off to the side: invisible at unit scale, visible once the
	// largest axis scale inflates the bounding sphere far enough.
	transform := descriptor.Transform{
		Position: mgl32.Vec3{50, 0, -10},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	assert.False(t, instanceVisible(&frustum, transform, 1))

	transform.Scale = mgl32.Vec3{1, 60, 1}
	assert.True(t, instanceVisible(&frustum, transform, 1))
}

func TestInstanceVisibleNegativeScale(t *testing.T) {
	frustum := testFrustum()

	transform := descriptor.Transform{
		Position: mgl32.Vec3{0, 0, -10},
		Scale:    mgl32.Vec3{-1, -1, -1},
	}
	assert.True(t, instanceVisible(&frustum, transform, 1))
}

func TestVertexBufferLayoutsMatchGPUTypes(t *testing.T) {
	assert.Equal(t, uint64(unsafe.Sizeof(realization.GPUVertex{})), vertexBufferLayouts[0].ArrayStride)
	assert.Equal(t, uint64(unsafe.Sizeof(realization.GPUInstance{})), vertexBufferLayouts[1].ArrayStride)

	assert.Equal(t, []uint64{0, 12, 24, 32}, attributeOffsets(vertexBufferLayouts[0]))
	assert.Equal(t, []uint64{0, 16, 32, 48}, attributeOffsets(vertexBufferLayouts[1]))
}

func attributeOffsets(layout wgpu.VertexBufferLayout) []uint64 {
	offsets := make([]uint64, 0, len(layout.Attributes))
	for _, attr := range layout.Attributes {
		offsets = append(offsets, attr.Offset)
	}
	return offsets
}

func TestBuilderOptions(t *testing.T) {
	r := &renderer{sampleCount: 4}

	WithMSAA(MSAAOff)(r)
	assert.Equal(t, uint32(1), r.sampleCount)

	WithPresentMode(PresentModeUncapped)(r)
	assert.NotZero(t, r.presentMode)

	WithForceSoftwareRenderer(true)(r)
	assert.True(t, r.forceFallback)
}
