package ibl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SakulFlee/Orbital/engine/gpu"
)

func TestMipUniformMarshal(t *testing.T) {
	u := GPUMipUniform{
		MipLevel:     3,
		MaxMipLevel:  11,
		SampleCount:  1024,
		SamplingType: 0,
	}
	require.Equal(t, 16, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 16)
	assert.Equal(t, byte(3), buf[0])
	assert.Equal(t, byte(11), buf[4])
	assert.Equal(t, byte(0), buf[8])
	assert.Equal(t, byte(4), buf[9], "1024 little-endian")
}

func TestWorkgroupCoverage(t *testing.T) {
	assert.Equal(t, uint32(1), workgroups(1))
	assert.Equal(t, uint32(1), workgroups(16))
	assert.Equal(t, uint32(2), workgroups(17))
	assert.Equal(t, uint32(64), workgroups(1024))
}

func TestSpecularChainMipMath(t *testing.T) {
	assert.Equal(t, uint32(11), gpu.MaxMipLevels(1024))
	assert.Equal(t, uint32(10), gpu.MaxMipLevels(512))
	assert.Equal(t, uint32(1), gpu.MaxMipLevels(1))

	// The coarsest mip of a full chain is 1x1 and maps to roughness 1.
	mipCount := gpu.MaxMipLevels(1024)
	assert.Equal(t, float32(1), RoughnessForMip(mipCount-1, mipCount))
}

func TestStageSourcesAreWellFormed(t *testing.T) {
	for name, source := range map[string]string{
		"equirect":   EquirectToCubemapSource(),
		"irradiance": IrradianceSource(),
		"specular":   SpecularPrefilterSource(),
		"brdf":       BRDFLUTSource(),
	} {
		assert.Contains(t, source, "@compute @workgroup_size(16, 16, 1)", "stage %s", name)
		assert.Contains(t, source, "fn main", "stage %s", name)
	}

	// The specular stage consumes the per-mip uniform; the layout there must
	// match GPUMipUniform field for field.
	specular := SpecularPrefilterSource()
	for _, field := range []string{"mip_level", "max_mip_level", "sample_count", "sampling_type"} {
		assert.Contains(t, specular, field)
	}
}

func TestPrecomputeRejectsBadInput(t *testing.T) {
	// Input validation happens before any GPU work, so a nil context is fine.
	_, err := Precompute(nil, []float32{1, 2, 3}, 2, 2, Config{CubeFaceSize: 64})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixel count")

	pixels := make([]float32, 2*2*4)
	_, err = Precompute(nil, pixels, 2, 2, Config{CubeFaceSize: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cube face size")
}
