package ibl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceBasesAreOrthonormal(t *testing.T) {
	for i, basis := range CubeFaceBases {
		assert.InDelta(t, 1.0, basis.Forward.Len(), 1e-6, "face %d forward", i)
		assert.InDelta(t, 1.0, basis.Up.Len(), 1e-6, "face %d up", i)
		assert.InDelta(t, 1.0, basis.Right.Len(), 1e-6, "face %d right", i)

		assert.InDelta(t, 0.0, basis.Forward.Dot(basis.Up), 1e-6, "face %d forward/up", i)
		assert.InDelta(t, 0.0, basis.Forward.Dot(basis.Right), 1e-6, "face %d forward/right", i)
		assert.InDelta(t, 0.0, basis.Up.Dot(basis.Right), 1e-6, "face %d up/right", i)

		// Consistent handedness across all faces.
		cross := basis.Up.Cross(basis.Forward)
		assert.Equal(t, basis.Right, cross, "face %d right must equal up x forward", i)
	}
}

func TestFaceCentersPointOutward(t *testing.T) {
	for i, basis := range CubeFaceBases {
		dir := DirectionForTexel(i, 0.5, 0.5)
		assert.InDelta(t, basis.Forward.X(), dir.X(), 1e-6, "face %d", i)
		assert.InDelta(t, basis.Forward.Y(), dir.Y(), 1e-6, "face %d", i)
		assert.InDelta(t, basis.Forward.Z(), dir.Z(), 1e-6, "face %d", i)
	}
}

func TestAllStagesEmbedTheSameBasis(t *testing.T) {
	block := FaceBasisWGSL()
	require.Contains(t, block, "FACE_FORWARD")
	require.Contains(t, block, "fn face_direction")

	// Every cube-writing stage must contain the generated block verbatim.
	// A stage with its own basis copy could silently diverge.
	for name, source := range map[string]string{
		"equirect":   EquirectToCubemapSource(),
		"irradiance": IrradianceSource(),
		"specular":   SpecularPrefilterSource(),
	} {
		assert.Contains(t, source, block, "stage %s must embed the shared basis block", name)
		assert.NotContains(t, source, faceBasisMarker, "stage %s still contains the raw marker", name)
	}
}

func TestEquirectUVMapping(t *testing.T) {
	// +X maps to the horizontal center of the panorama.
	u, v := EquirectUV(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0.5, u, 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)

	// Straight up maps to the top edge.
	_, v = EquirectUV(mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, 0.0, v, 1e-6)

	// Straight down maps to the bottom edge.
	_, v = EquirectUV(mgl32.Vec3{0, -1, 0})
	assert.InDelta(t, 1.0, v, 1e-6)
}

func TestRoughnessForMipIsMonotone(t *testing.T) {
	const mipCount = 11

	previous := float32(-1)
	for level := uint32(0); level < mipCount; level++ {
		r := RoughnessForMip(level, mipCount)
		assert.Greater(t, r, previous, "roughness must strictly increase with mip level")
		assert.GreaterOrEqual(t, r, MinRoughness)
		assert.LessOrEqual(t, r, float32(1))
		previous = r
	}

	assert.Equal(t, MinRoughness, RoughnessForMip(0, mipCount))
	assert.Equal(t, float32(1), RoughnessForMip(mipCount-1, mipCount))
}

func TestConstantRadianceIntegratesToItself(t *testing.T) {
	radiance := mgl32.Vec3{0.25, 0.5, 0.75}
	sample := func(mgl32.Vec3) mgl32.Vec3 { return radiance }

	for _, normal := range []mgl32.Vec3{
		{0, 0, 1},
		{1, 0, 0},
		{0, 1, 0},
		mgl32.Vec3{1, 1, 1}.Normalize(),
	} {
		result := IntegrateIrradiance(normal, sample)
		assert.InDelta(t, radiance.X(), result.X(), 0.02, "normal %v", normal)
		assert.InDelta(t, radiance.Y(), result.Y(), 0.02, "normal %v", normal)
		assert.InDelta(t, radiance.Z(), result.Z(), 0.02, "normal %v", normal)
	}
}

func TestHammersleySequence(t *testing.T) {
	x, y := Hammersley(0, 1024)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)

	x, y = Hammersley(1, 2)
	assert.Equal(t, float32(0.5), x)
	assert.Equal(t, float32(0.5), y)

	// Radical inverse of 2 (binary 10) is 0.01 binary = 0.25.
	_, y = Hammersley(2, 4)
	assert.Equal(t, float32(0.25), y)
}

func TestFaceBasisWGSLRoundTrips(t *testing.T) {
	block := FaceBasisWGSL()
	for _, basis := range CubeFaceBases {
		for _, v := range []mgl32.Vec3{basis.Forward, basis.Up, basis.Right} {
			assert.Contains(t, block, formatVec3(v))
		}
	}
}

func formatVec3(v mgl32.Vec3) string {
	return "vec3<f32>(" +
		formatComponent(v.X()) + ", " +
		formatComponent(v.Y()) + ", " +
		formatComponent(v.Z()) + ")"
}

func formatComponent(f float32) string {
	switch f {
	case 1:
		return "1.0"
	case -1:
		return "-1.0"
	default:
		return "0.0"
	}
}
