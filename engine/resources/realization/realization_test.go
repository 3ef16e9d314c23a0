package realization

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

func readFloat32(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(buf))
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestGPUVertexMarshalOffsets(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.25, 0.75},
		Tangent:  [4]float32{1, 0, 0, -1},
	}
	buf := v.Marshal()

	assert.Equal(t, 48, v.Size())
	assert.Len(t, buf, 48)
	assert.Equal(t, float32(3), readFloat32(t, buf, 8))
	assert.Equal(t, float32(1), readFloat32(t, buf, 16))
	assert.Equal(t, float32(0.25), readFloat32(t, buf, 24))
	assert.Equal(t, float32(-1), readFloat32(t, buf, 44))
}

func TestGPUCameraUniformMarshalOffsets(t *testing.T) {
	u := GPUCameraUniform{
		CameraPosition: [3]float32{4, 5, 6},
	}
	for i := range u.ViewProj {
		u.ViewProj[i] = float32(i)
	}
	buf := u.Marshal()

	assert.Equal(t, 80, u.Size())
	assert.Len(t, buf, 80)
	assert.Equal(t, float32(15), readFloat32(t, buf, 60))
	assert.Equal(t, float32(4), readFloat32(t, buf, 64))
	assert.Equal(t, float32(6), readFloat32(t, buf, 72))
	assert.Equal(t, float32(0), readFloat32(t, buf, 76))
}

func TestGPUMaterialUniformMarshalOffsets(t *testing.T) {
	u := GPUMaterialUniform{
		BaseColor: [4]float32{0.1, 0.2, 0.3, 1},
		Emissive:  [3]float32{1, 2, 3},
		Metallic:  0.5,
		Roughness: 0.25,
	}
	buf := u.Marshal()

	assert.Equal(t, 48, u.Size())
	assert.Len(t, buf, 48)
	assert.Equal(t, float32(0.1), readFloat32(t, buf, 0))
	assert.Equal(t, float32(1), readFloat32(t, buf, 16))
	assert.Equal(t, float32(0.5), readFloat32(t, buf, 28))
	assert.Equal(t, float32(0.25), readFloat32(t, buf, 32))
}

func TestGPULightMarshalOffsets(t *testing.T) {
	l := GPULight{
		Position:  [3]float32{1, 2, 3},
		Radius:    10,
		Color:     [3]float32{0.9, 0.8, 0.7},
		Intensity: 4,
	}
	buf := l.Marshal()

	assert.Equal(t, 32, l.Size())
	assert.Len(t, buf, 32)
	assert.Equal(t, float32(10), readFloat32(t, buf, 12))
	assert.Equal(t, float32(0.9), readFloat32(t, buf, 16))
	assert.Equal(t, float32(4), readFloat32(t, buf, 28))
}

func TestGPUInstanceMarshalIsColumnOrder(t *testing.T) {
	var i GPUInstance
	for n := range i.Model {
		i.Model[n] = float32(n + 1)
	}
	buf := i.Marshal()

	assert.Equal(t, 64, i.Size())
	assert.Equal(t, float32(1), readFloat32(t, buf, 0))
	assert.Equal(t, float32(16), readFloat32(t, buf, 60))
}

func TestComputeBoundingRadius(t *testing.T) {
	vertices := []descriptor.Vertex{
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, -3, 0}},
		{Position: mgl32.Vec3{0, 0, 2}},
	}
	assert.InDelta(t, 3.0, computeBoundingRadius(vertices), 1e-6)
	assert.Equal(t, float32(0), computeBoundingRadius(nil))
}

func TestCubeMeshBoundingRadius(t *testing.T) {
	cube := descriptor.Cube("Test Cube", 1)
	radius := computeBoundingRadius(cube.Vertices)
	assert.InDelta(t, math.Sqrt(3), float64(radius), 1e-5)
}

func TestNewModelDefaultsToOneIdentityInstance(t *testing.T) {
	model := NewModel("Test Model", nil, 1, nil, 2, nil)

	require.Equal(t, uint32(1), model.InstanceCount())
	assert.Equal(t, descriptor.DefaultTransform(), model.Transforms()[0])
	assert.Equal(t, uint64(1), model.MeshHash())
	assert.Equal(t, uint64(2), model.MaterialHash())
}

func TestModelTransformUpdates(t *testing.T) {
	initial := []descriptor.Transform{
		{Position: mgl32.Vec3{1, 0, 0}, Scale: mgl32.Vec3{1, 1, 1}},
	}
	model := NewModel("Test Model", nil, 0, nil, 0, initial)

	// NewModel copies: mutating the input slice must not leak through.
	initial[0].Position = mgl32.Vec3{99, 0, 0}
	assert.Equal(t, float32(1), model.Transforms()[0].Position.X())

	model.ApplyTransform(descriptor.Transform{Position: mgl32.Vec3{0, 2, 0}, Scale: mgl32.Vec3{1, 1, 1}})
	assert.Equal(t, uint32(2), model.InstanceCount())

	model.SetTransforms([]descriptor.Transform{descriptor.DefaultTransform()})
	assert.Equal(t, uint32(1), model.InstanceCount())
}

func TestModelReleaseWithoutBufferIsSafe(t *testing.T) {
	model := NewModel("Test Model", nil, 0, nil, 0, nil)
	assert.NotPanics(t, func() {
		model.Release()
		model.Release()
	})
	var nilModel *Model
	assert.NotPanics(t, func() { nilModel.Release() })
}

func TestLightStorageSetLightsCopies(t *testing.T) {
	s := &LightStorage{}
	lights := []descriptor.PointLightDescriptor{
		{Label: "A", Intensity: 1},
	}
	s.SetLights(lights)
	lights[0].Intensity = 99

	require.Equal(t, uint32(1), s.LightCount())
	assert.Equal(t, float32(1), s.lights[0].Intensity)
	assert.True(t, s.dirty)
}

func TestCameraSetDescriptorMarksDirty(t *testing.T) {
	c := &Camera{desc: descriptor.DefaultCamera()}
	c.dirty = false

	moved := c.desc
	moved.Position = mgl32.Vec3{0, 5, 0}
	c.SetDescriptor(moved)

	assert.True(t, c.dirty)
	assert.Equal(t, float32(5), c.Descriptor().Position.Y())
}

func TestLinearSolidColorDisablesSRGB(t *testing.T) {
	d := linearSolidColor("Flat Normal", fallbackNormal)
	require.NotNil(t, d.SolidColor)
	assert.False(t, d.SRGB)
	assert.Equal(t, fallbackNormal, *d.SolidColor)
}
