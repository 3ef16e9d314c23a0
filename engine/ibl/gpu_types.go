package ibl

import (
	"encoding/binary"
	"unsafe"
)

// GPUMipUniform is the GPU-aligned representation of the per-mip uniform
// consumed by the specular prefilter stage.
// Matches the WGSL MipUniform struct layout exactly (16 bytes).
type GPUMipUniform struct {
	MipLevel     uint32 // offset  0: mip level being written
	MaxMipLevel  uint32 // offset  4: total mip levels in the chain
	SampleCount  uint32 // offset  8: importance samples per texel
	SamplingType uint32 // offset 12: sampling strategy selector
}

// Size returns the size of the GPUMipUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUMipUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMipUniform struct into a byte buffer suitable
// for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMipUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], g.MipLevel)
	binary.LittleEndian.PutUint32(buf[4:8], g.MaxMipLevel)
	binary.LittleEndian.PutUint32(buf[8:12], g.SampleCount)
	binary.LittleEndian.PutUint32(buf[12:16], g.SamplingType)
	return buf
}
