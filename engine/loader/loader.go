package loader

import (
	"github.com/SakulFlee/Orbital/engine/world"
)

// SpawnChanges converts an imported asset into world changes: one model
// spawn per imported model. Owner ties the spawned models to an element
// label so despawning the element despawns them; pass an empty string for
// free-standing models.
//
// Parameters:
//   - asset: the imported asset
//   - owner: element label owning the spawned models, or ""
//
// Returns:
//   - []world.Change: the spawn changes in import order
func SpawnChanges(asset *Asset, owner string) []world.Change {
	changes := make([]world.Change, 0, len(asset.Models))
	for _, model := range asset.Models {
		changes = append(changes, world.SpawnModel{Descriptor: model, Owner: owner})
	}
	return changes
}

// LoadModels returns a change that imports the file on the world's loader
// pool and spawns its models once parsing finishes. Import failures are
// logged by the world and spawn nothing.
//
// Parameters:
//   - path: path to the .gltf or .glb file
//   - owner: element label owning the spawned models, or ""
//
// Returns:
//   - world.Change: the deferred load
func LoadModels(path, owner string) world.Change {
	return world.EnqueueLoader{
		Load: func() ([]world.Change, error) {
			asset, err := Import(path)
			if err != nil {
				return nil, err
			}
			return SpawnChanges(asset, owner), nil
		},
	}
}
