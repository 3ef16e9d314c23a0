package descriptor

// TextureDescriptor describes a 2D texture from one of three sources: a file
// on disk, embedded image bytes, or a uniform solid color. Exactly one source
// should be set; realization checks them in that order.
type TextureDescriptor struct {
	// Label is a human-readable identifier used for GPU object labels and logs.
	Label string

	// Path is the file path for textures loaded from disk.
	Path string

	// Data contains raw encoded image bytes for embedded textures.
	Data []byte

	// SolidColor, when non-nil, produces a 1x1 texture of this RGBA color.
	SolidColor *[4]uint8

	// SRGB selects sRGB storage for color data. Normal maps and
	// metallic/roughness maps must leave this false.
	SRGB bool
}

// FileTexture creates a descriptor for a texture loaded from disk.
//
// Parameters:
//   - label: human-readable identifier
//   - path: image file path
//   - srgb: true for color data, false for linear data (normals, roughness)
//
// Returns:
//   - TextureDescriptor: the descriptor
func FileTexture(label, path string, srgb bool) TextureDescriptor {
	return TextureDescriptor{Label: label, Path: path, SRGB: srgb}
}

// SolidColorTexture creates a descriptor for a 1x1 uniform color texture.
//
// Parameters:
//   - label: human-readable identifier
//   - rgba: the color, 8 bits per channel
//
// Returns:
//   - TextureDescriptor: the descriptor
func SolidColorTexture(label string, rgba [4]uint8) TextureDescriptor {
	return TextureDescriptor{Label: label, SolidColor: &rgba, SRGB: true}
}

// Hash returns the stable content hash of the descriptor.
//
// Returns:
//   - uint64: FNV-1a content hash
func (d *TextureDescriptor) Hash() uint64 {
	h := newHasher(kindTexture)
	h.writeString(d.Label)
	h.writeString(d.Path)
	h.writeBytes(d.Data)
	h.writeBool(d.SolidColor != nil)
	if d.SolidColor != nil {
		h.h.Write(d.SolidColor[:])
	}
	h.writeBool(d.SRGB)
	return h.sum()
}
