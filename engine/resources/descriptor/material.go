package descriptor

// MaterialDescriptor describes a PBR metallic-roughness material: scalar
// factors plus optional texture maps. Absent textures fall back to 1x1
// defaults during realization so every material binds the same layout.
type MaterialDescriptor struct {
	// Name identifies the material for logs and GPU object labels.
	Name string

	// BaseColor is the albedo factor (RGBA), multiplied with the base color texture.
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// EmissiveColor is the emissive factor (RGB).
	EmissiveColor [3]float32

	// BaseColorTexture is the albedo map (sRGB), or nil.
	BaseColorTexture *TextureDescriptor

	// NormalTexture is the tangent-space normal map (linear), or nil.
	NormalTexture *TextureDescriptor

	// MetallicRoughnessTexture packs metallic (B) and roughness (G) channels
	// (linear), or nil.
	MetallicRoughnessTexture *TextureDescriptor

	// EmissiveTexture is the emissive map (sRGB), or nil.
	EmissiveTexture *TextureDescriptor
}

// DefaultMaterial returns a neutral gray dielectric material.
//
// Parameters:
//   - name: material identifier
//
// Returns:
//   - MaterialDescriptor: the descriptor
func DefaultMaterial(name string) MaterialDescriptor {
	return MaterialDescriptor{
		Name:      name,
		BaseColor: [4]float32{0.5, 0.5, 0.5, 1.0},
		Metallic:  0.0,
		Roughness: 0.5,
	}
}

// Hash returns the stable content hash of the descriptor, covering the
// factors and the content hashes of all referenced textures.
//
// Returns:
//   - uint64: FNV-1a content hash
func (d *MaterialDescriptor) Hash() uint64 {
	h := newHasher(kindMaterial)
	h.writeString(d.Name)
	for _, c := range d.BaseColor {
		h.writeFloat32(c)
	}
	h.writeFloat32(d.Metallic)
	h.writeFloat32(d.Roughness)
	for _, c := range d.EmissiveColor {
		h.writeFloat32(c)
	}
	for _, tex := range []*TextureDescriptor{d.BaseColorTexture, d.NormalTexture, d.MetallicRoughnessTexture, d.EmissiveTexture} {
		h.writeBool(tex != nil)
		if tex != nil {
			h.writeUint64(tex.Hash())
		}
	}
	return h.sum()
}
