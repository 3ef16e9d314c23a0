package world

import (
	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources/cache"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
	"github.com/SakulFlee/Orbital/engine/resources/realization"
)

// Realizers is the lookup table of per-kind realizer functions the world
// drives through its caches. The default set delegates to the realization
// package; tests substitute counting or failing functions to exercise the
// orchestration without a GPU.
type Realizers struct {
	Mesh         func(desc descriptor.MeshDescriptor, ctx gpu.Context) (*realization.Mesh, error)
	Material     func(desc descriptor.MaterialDescriptor, ctx gpu.Context, layouts *realization.Layouts, textures *cache.Cache[*gpu.Texture], frame uint64) (*realization.Material, error)
	Camera       func(desc descriptor.CameraDescriptor, ctx gpu.Context, layouts *realization.Layouts) (*realization.Camera, error)
	Environment  func(desc descriptor.WorldEnvironmentDescriptor, ctx gpu.Context, layouts *realization.Layouts, textures *cache.Cache[*gpu.Texture], frame uint64) (*realization.WorldEnvironment, error)
	LightStorage func(ctx gpu.Context, layouts *realization.Layouts) (*realization.LightStorage, error)
}

// DefaultRealizers returns the production realizer set.
//
// Returns:
//   - Realizers: realizers backed by the realization package
func DefaultRealizers() Realizers {
	return Realizers{
		Mesh:         realization.RealizeMesh,
		Material:     realization.RealizeMaterial,
		Camera:       realization.RealizeCamera,
		Environment:  realization.RealizeWorldEnvironment,
		LightStorage: realization.NewLightStorage,
	}
}
