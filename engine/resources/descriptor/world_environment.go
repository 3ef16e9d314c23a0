package descriptor

import (
	"github.com/SakulFlee/Orbital/common"
)

// SkyboxDefaultSize is the default cube face edge length in pixels for
// realized world environments.
const SkyboxDefaultSize uint32 = 1024

// SamplingType selects the specular prefiltering strategy carried in the
// per-mip uniform of the environment precompute pipeline.
type SamplingType uint32

const (
	// SamplingImportance is GGX importance sampling with a Hammersley
	// sequence. This is the validated default.
	SamplingImportance SamplingType = iota
)

// WorldEnvironmentDescriptor describes an image-based lighting environment
// sourced from an equirectangular projection, either a file on disk or raw
// linear RGBA float pixels. Realization produces the skybox cubemap, the
// diffuse irradiance cubemap, and the specular reflection mip chain.
type WorldEnvironmentDescriptor struct {
	// CubeFaceSize is the edge length in pixels of each realized cube face.
	CubeFaceSize uint32

	// Path is the equirectangular source image path (file source).
	Path string

	// Pixels holds raw linear RGBA float32 equirectangular pixels (data source).
	Pixels []float32

	// Size is the pixel dimensions of Pixels (width, height). Ignored for
	// file sources.
	Size [2]uint32

	// Sampling selects the specular prefiltering strategy.
	Sampling SamplingType
}

// WorldEnvironmentFromFile creates a file-sourced environment descriptor.
//
// Parameters:
//   - path: equirectangular image path (.hdr or any supported LDR format)
//   - cubeFaceSize: realized cube face edge length (0 selects SkyboxDefaultSize)
//
// Returns:
//   - WorldEnvironmentDescriptor: the descriptor
func WorldEnvironmentFromFile(path string, cubeFaceSize uint32) WorldEnvironmentDescriptor {
	return WorldEnvironmentDescriptor{
		CubeFaceSize: common.Coalesce(cubeFaceSize, SkyboxDefaultSize),
		Path:         path,
		Sampling:     SamplingImportance,
	}
}

// WorldEnvironmentFromPixels creates a data-sourced environment descriptor.
//
// Parameters:
//   - pixels: linear RGBA float32 equirectangular pixels (4 floats per pixel)
//   - width, height: pixel dimensions of the data
//   - cubeFaceSize: realized cube face edge length (0 selects SkyboxDefaultSize)
//
// Returns:
//   - WorldEnvironmentDescriptor: the descriptor
func WorldEnvironmentFromPixels(pixels []float32, width, height, cubeFaceSize uint32) WorldEnvironmentDescriptor {
	return WorldEnvironmentDescriptor{
		CubeFaceSize: common.Coalesce(cubeFaceSize, SkyboxDefaultSize),
		Pixels:       pixels,
		Size:         [2]uint32{width, height},
		Sampling:     SamplingImportance,
	}
}

// Hash returns the stable content hash of the descriptor.
//
// Returns:
//   - uint64: FNV-1a content hash
func (d *WorldEnvironmentDescriptor) Hash() uint64 {
	h := newHasher(kindWorldEnvironment)
	h.writeUint32(d.CubeFaceSize)
	h.writeUint32(uint32(d.Sampling))
	h.writeString(d.Path)
	h.writeUint32(d.Size[0])
	h.writeUint32(d.Size[1])
	h.writeUint64(uint64(len(d.Pixels)))
	for _, p := range d.Pixels {
		h.writeFloat32(p)
	}
	return h.sum()
}
