package loader

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// triangleBuffer packs three XY-plane positions followed by three uint16
// indices, the geometry used by most tests here.
func triangleBuffer() []byte {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	buf := make([]byte, 0, len(positions)*4+6)
	for _, f := range positions {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	for _, idx := range []uint16{0, 1, 2} {
		buf = binary.LittleEndian.AppendUint16(buf, idx)
	}
	return buf
}

// triangleJSON builds a single-triangle glTF document with the buffer
// embedded as a data URI.
func triangleJSON() string {
	buf := triangleBuffer()
	return fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"mesh": 0, "translation": [1, 2, 3]}],
		"meshes": [{"name": "Tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
		"materials": [{"name": "Red", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "metallicFactor": 0, "roughnessFactor": 0.5}}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"uri": "data:application/octet-stream;base64,%s", "byteLength": %d}]
	}`, base64.StdEncoding.EncodeToString(buf), len(buf))
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportTriangle(t *testing.T) {
	path := writeTempFile(t, "tri.gltf", triangleJSON())

	asset, err := Import(path)
	require.NoError(t, err)
	require.Len(t, asset.Models, 1)

	model := asset.Models[0]
	assert.Equal(t, "tri/Tri", model.Label)
	assert.Len(t, model.Mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, model.Mesh.Indices)

	assert.Equal(t, "tri/Red", model.Material.Name)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, model.Material.BaseColor)
	assert.Equal(t, float32(0), model.Material.Metallic)
	assert.Equal(t, float32(0.5), model.Material.Roughness)

	require.Len(t, model.Transforms, 1)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, model.Transforms[0].Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, model.Transforms[0].Scale)
}

func TestImportGeneratesNormalsAndTangents(t *testing.T) {
	path := writeTempFile(t, "tri.gltf", triangleJSON())

	asset, err := Import(path)
	require.NoError(t, err)
	require.Len(t, asset.Models, 1)

	// The triangle lies in the XY plane with counter-clockwise winding, so
	// the generated normal points along +Z.
	for _, v := range asset.Models[0].Mesh.Vertices {
		assert.InDelta(t, 0, v.Normal.X(), 1e-6)
		assert.InDelta(t, 0, v.Normal.Y(), 1e-6)
		assert.InDelta(t, 1, v.Normal.Z(), 1e-6)

		// Without texture coordinates the UV gradient degenerates and the
		// tangent falls back to +X with positive handedness.
		assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, v.Tangent)
	}
}

func TestImportGLB(t *testing.T) {
	buf := triangleBuffer()
	jsonDoc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scenes": [{"nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"name": "Tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d}]
	}`, len(buf))

	// Chunks must be 4-byte aligned: JSON pads with spaces, BIN with zeros.
	jsonChunk := []byte(jsonDoc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := append([]byte(nil), buf...)
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	glb := make([]byte, 0, 12+8+len(jsonChunk)+8+len(binChunk))
	glb = binary.LittleEndian.AppendUint32(glb, gltfGLBMagic)
	glb = binary.LittleEndian.AppendUint32(glb, gltfGLBVersion)
	glb = binary.LittleEndian.AppendUint32(glb, uint32(12+8+len(jsonChunk)+8+len(binChunk)))
	glb = binary.LittleEndian.AppendUint32(glb, uint32(len(jsonChunk)))
	glb = binary.LittleEndian.AppendUint32(glb, gltfGLBChunkJSON)
	glb = append(glb, jsonChunk...)
	glb = binary.LittleEndian.AppendUint32(glb, uint32(len(binChunk)))
	glb = binary.LittleEndian.AppendUint32(glb, gltfGLBChunkBIN)
	glb = append(glb, binChunk...)

	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, glb, 0o644))

	asset, err := Import(path)
	require.NoError(t, err)
	require.Len(t, asset.Models, 1)
	assert.Len(t, asset.Models[0].Mesh.Vertices, 3)
	assert.Equal(t, "tri/Default Material", asset.Models[0].Material.Name)
}

func TestImportMalformedFileResolutionError(t *testing.T) {
	path := writeTempFile(t, "broken.gltf", `{"asset": {"version": "2.0"`)

	_, err := Import(path)
	require.Error(t, err)

	var resErr *resources.AssetResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, path, resErr.Ref)
}

func TestImportMissingFileResolutionError(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.gltf"))

	var resErr *resources.AssetResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestImportRejectsUnsupportedVersion(t *testing.T) {
	path := writeTempFile(t, "old.gltf", `{"asset": {"version": "1.0"}}`)

	_, err := Import(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnsupportedVersion)
}

func TestDecomposeMatrixRoundTrip(t *testing.T) {
	original := descriptor.Transform{
		Position: mgl32.Vec3{4, -2, 7},
		Rotation: mgl32.Vec3{0.3, 0.7, -0.4},
		Scale:    mgl32.Vec3{2, 3, 0.5},
	}

	decomposed := decomposeMatrix(original.Matrix())

	for i := range 3 {
		assert.InDelta(t, original.Position[i], decomposed.Position[i], 1e-4)
		assert.InDelta(t, original.Rotation[i], decomposed.Rotation[i], 1e-4)
		assert.InDelta(t, original.Scale[i], decomposed.Scale[i], 1e-4)
	}
}

func TestNodeMatrixComposesTRS(t *testing.T) {
	translation := [3]float32{1, 2, 3}
	scale := [3]float32{2, 2, 2}
	node := &gltfNode{Translation: &translation, Scale: &scale}

	m := nodeMatrix(node)
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})

	assert.InDelta(t, 3, p.X(), 1e-6)
	assert.InDelta(t, 2, p.Y(), 1e-6)
	assert.InDelta(t, 3, p.Z(), 1e-6)
}

func TestDataURIDecoding(t *testing.T) {
	data, mime, err := decodeDataURI("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
	assert.Equal(t, "application/octet-stream", mime)

	_, _, err = decodeDataURI("data:nope")
	assert.Error(t, err)

	_, _, err = decodeDataURI("data:text/plain,notbase64")
	assert.Error(t, err)
}

func TestIndexWidening(t *testing.T) {
	// 8-bit indices.
	buf := []byte{2, 1, 0}
	doc := &gltfDocument{
		Accessors: []gltfAccessor{
			{BufferView: intPtr(0), ComponentType: gltfComponentTypeUnsignedByte, Count: 3, Type: gltfAccessorTypeScalar},
		},
		BufferViews: []gltfBufferView{{Buffer: 0, ByteLength: 3}},
		Buffers:     []gltfBuffer{{ByteLength: 3, Data: buf}},
	}
	p := &gltfParser{doc: doc}

	indices, err := p.readIndices(0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 1, 0}, indices)
}

func TestStridedAccessorDeinterleaves(t *testing.T) {
	// Two vec3 positions interleaved with 4 bytes of padding each.
	stride := 16
	raw := make([]byte, 2*stride)
	for i, f := range []float32{1, 2, 3} {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	for i, f := range []float32{4, 5, 6} {
		binary.LittleEndian.PutUint32(raw[stride+i*4:], math.Float32bits(f))
	}

	doc := &gltfDocument{
		Accessors: []gltfAccessor{
			{BufferView: intPtr(0), ComponentType: gltfComponentTypeFloat, Count: 2, Type: gltfAccessorTypeVec3},
		},
		BufferViews: []gltfBufferView{{Buffer: 0, ByteLength: len(raw), ByteStride: &stride}},
		Buffers:     []gltfBuffer{{ByteLength: len(raw), Data: raw}},
	}
	p := &gltfParser{doc: doc}

	floats, err := p.readFloatAccessor(0, gltfAccessorTypeVec3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, floats)
}

func intPtr(v int) *int { return &v }
