package world

import (
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// Change is one unit of world mutation. Changes are enqueued from any hook
// or goroutine and applied in FIFO order once per update; the world is never
// mutated from outside the queue. Variants are the concrete types below.
type Change interface {
	isChange()
}

// SpawnElement registers an element under a label with its subscription
// tags. Spawning over an existing label despawns the old element first.
type SpawnElement struct {
	Label   string
	Element Element
	Tags    []string
}

// DespawnElement removes an element and releases every resource it spawned.
type DespawnElement struct {
	Label string
}

// SpawnModel adds a model to the world. Owner ties the model to an element
// label so despawning the element despawns the model; an empty Owner leaves
// the model free-standing.
type SpawnModel struct {
	Descriptor descriptor.ModelDescriptor
	Owner      string
}

// DespawnModel removes a model by label and releases its mesh and material
// references.
type DespawnModel struct {
	Label string
}

// SetModelTransforms replaces all instance transforms of a model.
type SetModelTransforms struct {
	Label      string
	Transforms []descriptor.Transform
}

// ApplyModelTransform appends one instance transform to a model.
type ApplyModelTransform struct {
	Label     string
	Transform descriptor.Transform
}

// SpawnCamera adds a camera. MakeActive switches rendering to it on the
// next frame.
type SpawnCamera struct {
	Descriptor descriptor.CameraDescriptor
	MakeActive bool
}

// ChangeActiveCamera switches rendering to an already spawned camera.
type ChangeActiveCamera struct {
	Label string
}

// UpdateCamera replaces the pose of an existing camera. Spawns the camera
// when the label is unknown.
type UpdateCamera struct {
	Descriptor descriptor.CameraDescriptor
}

// SpawnLight adds a point light, replacing any light with the same label.
type SpawnLight struct {
	Descriptor descriptor.PointLightDescriptor
}

// DespawnLight removes a point light by label.
type DespawnLight struct {
	Label string
}

// SetWorldEnvironment replaces the image-based lighting environment.
type SetWorldEnvironment struct {
	Descriptor descriptor.WorldEnvironmentDescriptor
}

// ClearWorldEnvironment removes the environment; rendering falls back to
// unlit ambient until a new one is set.
type ClearWorldEnvironment struct{}

// SendMessage broadcasts a message to every element subscribed to Tag.
// Delivery happens in the same update the change is drained in.
type SendMessage struct {
	Tag     string
	Message Message
}

// CleanWorld despawns everything: elements, models, cameras, lights, and
// the environment.
type CleanWorld struct{}

// EnqueueLoader runs Load on the world's background worker pool. The
// returned changes are enqueued when the loader finishes; a returned error
// is logged and produces no changes.
type EnqueueLoader struct {
	Load func() ([]Change, error)
}

func (SpawnElement) isChange()          {}
func (DespawnElement) isChange()        {}
func (SpawnModel) isChange()            {}
func (DespawnModel) isChange()          {}
func (SetModelTransforms) isChange()    {}
func (ApplyModelTransform) isChange()   {}
func (SpawnCamera) isChange()           {}
func (ChangeActiveCamera) isChange()    {}
func (UpdateCamera) isChange()          {}
func (SpawnLight) isChange()            {}
func (DespawnLight) isChange()          {}
func (SetWorldEnvironment) isChange()   {}
func (ClearWorldEnvironment) isChange() {}
func (SendMessage) isChange()           {}
func (CleanWorld) isChange()            {}
func (EnqueueLoader) isChange()         {}
