package descriptor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureHashStability(t *testing.T) {
	a := FileTexture("wood", "assets/wood.png", true)
	b := FileTexture("wood", "assets/wood.png", true)
	assert.Equal(t, a.Hash(), b.Hash())

	c := FileTexture("wood", "assets/wood.png", false)
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := FileTexture("stone", "assets/wood.png", true)
	assert.NotEqual(t, a.Hash(), d.Hash())
}

func TestSolidColorTextureHash(t *testing.T) {
	a := SolidColorTexture("white", [4]uint8{255, 255, 255, 255})
	b := SolidColorTexture("white", [4]uint8{255, 255, 255, 255})
	c := SolidColorTexture("white", [4]uint8{255, 255, 255, 0})
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestMaterialHashCoversNestedTextures(t *testing.T) {
	base := DefaultMaterial("mat")
	withTex := DefaultMaterial("mat")
	tex := FileTexture("albedo", "assets/albedo.png", true)
	withTex.BaseColorTexture = &tex

	assert.NotEqual(t, base.Hash(), withTex.Hash())

	other := FileTexture("albedo", "assets/other.png", true)
	withOther := DefaultMaterial("mat")
	withOther.BaseColorTexture = &other
	assert.NotEqual(t, withTex.Hash(), withOther.Hash())
}

func TestModelHashIgnoresTransforms(t *testing.T) {
	a := ModelDescriptor{
		Label:    "crate",
		Mesh:     Cube("crate-mesh", 0.5),
		Material: DefaultMaterial("crate-mat"),
	}
	b := ModelDescriptor{
		Label:    "crate",
		Mesh:     Cube("crate-mesh", 0.5),
		Material: DefaultMaterial("crate-mat"),
		Transforms: []Transform{
			{Position: mgl32.Vec3{10, 0, 0}, Scale: mgl32.Vec3{2, 2, 2}},
		},
	}
	assert.Equal(t, a.Hash(), b.Hash(), "instance transforms must not affect model identity")

	c := a
	c.Label = "barrel"
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestMeshHashCoversGeometry(t *testing.T) {
	a := Cube("cube", 0.5)
	b := Cube("cube", 0.5)
	require.Equal(t, a.Hash(), b.Hash())

	bigger := Cube("cube", 1.0)
	assert.NotEqual(t, a.Hash(), bigger.Hash())
}

func TestDescriptorKindsDoNotCollide(t *testing.T) {
	// Identical encodable content under different kinds must hash apart.
	tex := TextureDescriptor{Label: "same"}
	cam := CameraDescriptor{Label: "same"}
	assert.NotEqual(t, tex.Hash(), cam.Hash())
}

func TestWorldEnvironmentHash(t *testing.T) {
	a := WorldEnvironmentFromFile("sky.hdr", 0)
	assert.Equal(t, SkyboxDefaultSize, a.CubeFaceSize)

	b := WorldEnvironmentFromFile("sky.hdr", 0)
	assert.Equal(t, a.Hash(), b.Hash())

	c := WorldEnvironmentFromFile("sky.hdr", 512)
	assert.NotEqual(t, a.Hash(), c.Hash())

	pixels := []float32{1, 0, 0, 1}
	d := WorldEnvironmentFromPixels(pixels, 1, 1, 512)
	e := WorldEnvironmentFromPixels(pixels, 1, 1, 512)
	assert.Equal(t, d.Hash(), e.Hash())
	assert.NotEqual(t, c.Hash(), d.Hash())
}

func TestDefaultTransformMatrixIsIdentity(t *testing.T) {
	m := DefaultTransform().Matrix()
	assert.Equal(t, mgl32.Ident4(), m)
}
