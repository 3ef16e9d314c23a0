package descriptor

// ModelDescriptor ties a mesh and a material together with a set of instance
// transforms. The content hash covers label, mesh, and material only:
// instance transforms are per-frame state and mutate without forcing
// re-realization.
type ModelDescriptor struct {
	// Label identifies the model inside the world. Despawns and transform
	// updates address models by this label.
	Label string

	// Mesh is the geometry.
	Mesh MeshDescriptor

	// Material is the surface description.
	Material MaterialDescriptor

	// Transforms places one instance per entry. An empty slice spawns a
	// single instance at the identity transform.
	Transforms []Transform
}

// Hash returns the stable content hash of the descriptor. Transforms are
// excluded on purpose.
//
// Returns:
//   - uint64: FNV-1a content hash
func (d *ModelDescriptor) Hash() uint64 {
	h := newHasher(kindModel)
	h.writeString(d.Label)
	h.writeUint64(d.Mesh.Hash())
	h.writeUint64(d.Material.Hash())
	return h.sum()
}
