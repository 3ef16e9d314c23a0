// package world owns the live scene: elements, models, cameras, lights, and
// the image-based lighting environment. All mutation flows through a FIFO
// change queue drained once per update, and all GPU resources flow through
// hash-keyed reference-counted caches with frame-deferred release.
package world

import (
	"log"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/input"
	"github.com/SakulFlee/Orbital/engine/resources/cache"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
	"github.com/SakulFlee/Orbital/engine/resources/realization"
)

// DefaultInFlightFrames is how many frames a submitted command buffer is
// assumed to stay in flight. Nothing freed by garbage collection can still
// be referenced by a command buffer older than this.
const DefaultInFlightFrames uint64 = 2

// FrameBindings is the render-ready view of one frame: the shared bind
// groups and the draw list. Built by PrepareFrame and consumed by the
// renderer; valid until the next PrepareFrame call.
type FrameBindings struct {
	// CameraBindGroup is the active camera uniform (group 0).
	CameraBindGroup *wgpu.BindGroup

	// ViewProjection is the active camera's combined matrix, used for
	// CPU-side frustum culling.
	ViewProjection mgl32.Mat4

	// LightsBindGroup is the point light storage (group 1).
	LightsBindGroup *wgpu.BindGroup

	// EnvironmentBindGroup is the IBL environment (group 2), nil when no
	// environment is set or its realization failed.
	EnvironmentBindGroup *wgpu.BindGroup

	// Draws lists the renderable models in deterministic label order.
	Draws []*realization.Model
}

// World drives the scene. Update applies queued changes and runs element
// hooks on the tick goroutine; PrepareFrame realizes resources and builds
// bindings on the render goroutine; GarbageCollect frees what is no longer
// referenced and safely out of flight.
type World interface {
	// Enqueue appends changes to the change queue. Safe from any goroutine.
	//
	// Parameters:
	//   - changes: the changes to apply on the next update
	Enqueue(changes ...Change)

	// Update drains the change queue in FIFO order, delivers messages, and
	// runs every element's OnUpdate hook.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous update
	Update(deltaTime float64)

	// DeliverInputEvents runs OnInputEvent on every element for each event.
	//
	// Parameters:
	//   - events: the drained input events in arrival order
	DeliverInputEvents(events []input.Event)

	// NotifyFocusChange runs OnFocusChange on every element.
	//
	// Parameters:
	//   - focused: true when the window gained focus
	NotifyFocusChange(focused bool)

	// PrepareFrame realizes pending resources through the caches and builds
	// the frame's bindings. A default camera is spawned when none is active.
	// Per-element realization failures are logged and skip the element; only
	// conditions that make the whole frame unbuildable return an error.
	//
	// Parameters:
	//   - frame: current frame number
	//   - aspect: viewport aspect ratio (width / height)
	//
	// Returns:
	//   - *FrameBindings: the frame's bindings
	//   - error: error if the camera or light storage cannot be realized
	PrepareFrame(frame uint64, aspect float32) (*FrameBindings, error)

	// GarbageCollect frees unreferenced cache entries and retired world
	// resources whose last use is older than the in-flight window.
	//
	// Parameters:
	//   - frame: current frame number
	//
	// Returns:
	//   - int: number of freed resources
	GarbageCollect(frame uint64) int

	// HasElement reports whether an element with the label exists.
	//
	// Parameters:
	//   - label: the element label
	//
	// Returns:
	//   - bool: true if present
	HasElement(label string) bool

	// ElementCount returns the number of spawned elements.
	//
	// Returns:
	//   - int: the element count
	ElementCount() int

	// ModelCount returns the number of spawned models.
	//
	// Returns:
	//   - int: the model count
	ModelCount() int

	// LightCount returns the number of spawned point lights.
	//
	// Returns:
	//   - int: the light count
	LightCount() int

	// ActiveCamera returns the active camera's descriptor.
	//
	// Returns:
	//   - descriptor.CameraDescriptor: the descriptor
	//   - bool: false if no camera has been activated yet
	ActiveCamera() (descriptor.CameraDescriptor, bool)

	// Release frees every GPU resource the world still holds, bypassing the
	// in-flight window. Call only after the device is idle.
	Release()
}

type elementEntry struct {
	element Element
	tags    []string
	// ownedModels holds the labels of models spawned with this element as
	// owner, despawned together with it.
	ownedModels map[string]struct{}
}

type modelEntry struct {
	desc       descriptor.ModelDescriptor
	owner      string
	transforms []descriptor.Transform
	realized   *realization.Model
}

type cameraEntry struct {
	desc     descriptor.CameraDescriptor
	realized *realization.Camera
	dirty    bool
}

// retiredResource is a release deferred past the in-flight window.
type retiredResource struct {
	release func()
	frame   uint64
}

type world struct {
	// queueMu guards only the change queue so hooks may Enqueue while the
	// state lock is held.
	queueMu sync.Mutex
	changes []Change

	// mu guards all world state below.
	mu *sync.Mutex

	ctx            gpu.Context
	realizers      Realizers
	layouts        *realization.Layouts
	inFlightFrames uint64
	lastFrame      uint64

	elements map[string]*elementEntry
	tagIndex map[string]map[string]struct{}

	models  map[string]*modelEntry
	cameras map[string]*cameraEntry
	active  string

	lights      map[string]descriptor.PointLightDescriptor
	lightsDirty bool
	lightStore  *realization.LightStorage

	environmentDesc *descriptor.WorldEnvironmentDescriptor
	environmentHash uint64
	environment     *realization.WorldEnvironment

	meshes       *cache.Cache[*realization.Mesh]
	materials    *cache.Cache[*realization.Material]
	textures     *cache.Cache[*gpu.Texture]
	environments *cache.Cache[*realization.WorldEnvironment]

	retired []retiredResource

	loaderPool    worker.DynamicWorkerPool
	loaderWorkers int
	loaderSeq     atomic.Int64
}

var _ World = &world{}

// WorldBuilderOption is a functional option for configuring a world.
type WorldBuilderOption func(*world)

// WithRealizers replaces the realizer lookup table.
//
// Parameters:
//   - r: the realizer set
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithRealizers(r Realizers) WorldBuilderOption {
	return func(w *world) {
		w.realizers = r
	}
}

// WithInFlightFrames sets the in-flight frame depth used by deferred
// garbage collection.
//
// Parameters:
//   - frames: in-flight depth, minimum 1
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithInFlightFrames(frames uint64) WorldBuilderOption {
	return func(w *world) {
		w.inFlightFrames = max(frames, 1)
	}
}

// WithLoaderWorkers sets the background loader pool size.
//
// Parameters:
//   - workers: worker count, minimum 1
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithLoaderWorkers(workers int) WorldBuilderOption {
	return func(w *world) {
		w.loaderWorkers = max(workers, 1)
	}
}

// NewWorld creates an empty world over the given GPU context.
//
// Parameters:
//   - ctx: GPU capability surface
//   - options: functional options to further configure the world
//
// Returns:
//   - World: the world
func NewWorld(ctx gpu.Context, options ...WorldBuilderOption) World {
	w := &world{
		mu:             &sync.Mutex{},
		ctx:            ctx,
		realizers:      DefaultRealizers(),
		inFlightFrames: DefaultInFlightFrames,
		elements:       make(map[string]*elementEntry),
		tagIndex:       make(map[string]map[string]struct{}),
		models:         make(map[string]*modelEntry),
		cameras:        make(map[string]*cameraEntry),
		lights:         make(map[string]descriptor.PointLightDescriptor),
		loaderWorkers:  max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(w)
	}
	w.meshes = cache.New[*realization.Mesh](w.inFlightFrames)
	w.materials = cache.New[*realization.Material](w.inFlightFrames)
	w.textures = cache.New[*gpu.Texture](w.inFlightFrames)
	w.environments = cache.New[*realization.WorldEnvironment](w.inFlightFrames)
	w.loaderPool = worker.NewDynamicWorkerPool(w.loaderWorkers, 64, 1*time.Second)
	return w
}

func (w *world) Enqueue(changes ...Change) {
	if len(changes) == 0 {
		return
	}
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	w.changes = append(w.changes, changes...)
}

func (w *world) Update(deltaTime float64) {
	w.queueMu.Lock()
	queue := w.changes
	w.changes = nil
	w.queueMu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	// FIFO drain. Changes produced by hooks during the drain (registration,
	// message delivery) are appended and applied in the same update.
	for len(queue) > 0 {
		change := queue[0]
		queue = queue[1:]
		queue = append(queue, w.apply(change)...)
	}

	var followUps []Change
	for _, label := range w.sortedElementLabels() {
		followUps = append(followUps, w.elements[label].element.OnUpdate(deltaTime)...)
	}
	w.Enqueue(followUps...)
}

func (w *world) DeliverInputEvents(events []input.Event) {
	if len(events) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var followUps []Change
	for _, event := range events {
		for _, label := range w.sortedElementLabels() {
			followUps = append(followUps, w.elements[label].element.OnInputEvent(event)...)
		}
	}
	w.Enqueue(followUps...)
}

func (w *world) NotifyFocusChange(focused bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var followUps []Change
	for _, label := range w.sortedElementLabels() {
		followUps = append(followUps, w.elements[label].element.OnFocusChange(focused)...)
	}
	w.Enqueue(followUps...)
}

// apply mutates world state for one change and returns follow-up changes
// produced by element hooks. Caller holds w.mu.
func (w *world) apply(change Change) []Change {
	switch c := change.(type) {
	case SpawnElement:
		return w.spawnElement(c)
	case DespawnElement:
		w.despawnElement(c.Label)
	case SpawnModel:
		w.spawnModel(c)
	case DespawnModel:
		w.despawnModel(c.Label)
	case SetModelTransforms:
		if entry, ok := w.models[c.Label]; ok {
			entry.transforms = append([]descriptor.Transform(nil), c.Transforms...)
			if entry.realized != nil {
				entry.realized.SetTransforms(entry.transforms)
			}
		}
	case ApplyModelTransform:
		if entry, ok := w.models[c.Label]; ok {
			entry.transforms = append(entry.transforms, c.Transform)
			if entry.realized != nil {
				entry.realized.ApplyTransform(c.Transform)
			}
		}
	case SpawnCamera:
		w.spawnCamera(c.Descriptor)
		if c.MakeActive {
			w.active = c.Descriptor.Label
		}
	case ChangeActiveCamera:
		if _, ok := w.cameras[c.Label]; ok {
			w.active = c.Label
		} else {
			log.Printf("world: cannot activate unknown camera %q", c.Label)
		}
	case UpdateCamera:
		w.spawnCamera(c.Descriptor)
	case SpawnLight:
		w.lights[c.Descriptor.Label] = c.Descriptor
		w.lightsDirty = true
	case DespawnLight:
		if _, ok := w.lights[c.Label]; ok {
			delete(w.lights, c.Label)
			w.lightsDirty = true
		}
	case SetWorldEnvironment:
		w.setEnvironment(c.Descriptor)
	case ClearWorldEnvironment:
		w.clearEnvironment()
	case SendMessage:
		return w.deliverMessage(c)
	case CleanWorld:
		w.clean()
	case EnqueueLoader:
		w.submitLoader(c.Load)
	}
	return nil
}

func (w *world) spawnElement(c SpawnElement) []Change {
	if c.Element == nil {
		log.Printf("world: ignoring spawn of nil element %q", c.Label)
		return nil
	}
	if _, exists := w.elements[c.Label]; exists {
		w.despawnElement(c.Label)
	}
	entry := &elementEntry{
		element:     c.Element,
		tags:        append([]string(nil), c.Tags...),
		ownedModels: make(map[string]struct{}),
	}
	w.elements[c.Label] = entry
	for _, tag := range entry.tags {
		if w.tagIndex[tag] == nil {
			w.tagIndex[tag] = make(map[string]struct{})
		}
		w.tagIndex[tag][c.Label] = struct{}{}
	}

	// Tag spawned models with the element as owner so a despawn cascades.
	followUps := c.Element.OnRegistration()
	for i, fc := range followUps {
		if spawn, ok := fc.(SpawnModel); ok && spawn.Owner == "" {
			spawn.Owner = c.Label
			followUps[i] = spawn
		}
	}
	return followUps
}

func (w *world) despawnElement(label string) {
	entry, ok := w.elements[label]
	if !ok {
		return
	}
	for modelLabel := range entry.ownedModels {
		w.despawnModel(modelLabel)
	}
	for _, tag := range entry.tags {
		delete(w.tagIndex[tag], label)
		if len(w.tagIndex[tag]) == 0 {
			delete(w.tagIndex, tag)
		}
	}
	delete(w.elements, label)
}

func (w *world) spawnModel(c SpawnModel) {
	label := c.Descriptor.Label
	if _, exists := w.models[label]; exists {
		w.despawnModel(label)
	}
	w.models[label] = &modelEntry{
		desc:       c.Descriptor,
		owner:      c.Owner,
		transforms: append([]descriptor.Transform(nil), c.Descriptor.Transforms...),
	}
	if c.Owner != "" {
		if owner, ok := w.elements[c.Owner]; ok {
			owner.ownedModels[label] = struct{}{}
		}
	}
}

func (w *world) despawnModel(label string) {
	entry, ok := w.models[label]
	if !ok {
		return
	}
	if entry.realized != nil {
		w.meshes.Release(entry.realized.MeshHash())
		w.materials.Release(entry.realized.MaterialHash())
		w.retire(entry.realized.Release)
	}
	if entry.owner != "" {
		if owner, ok := w.elements[entry.owner]; ok {
			delete(owner.ownedModels, label)
		}
	}
	delete(w.models, label)
}

func (w *world) spawnCamera(desc descriptor.CameraDescriptor) {
	if entry, ok := w.cameras[desc.Label]; ok {
		entry.desc = desc
		entry.dirty = true
		return
	}
	w.cameras[desc.Label] = &cameraEntry{desc: desc}
}

func (w *world) setEnvironment(desc descriptor.WorldEnvironmentDescriptor) {
	hash := desc.Hash()
	if w.environmentDesc != nil && w.environmentDesc.Hash() == hash {
		return
	}
	w.clearEnvironment()
	w.environmentDesc = &desc
}

func (w *world) clearEnvironment() {
	if w.environment != nil {
		w.environments.Release(w.environmentHash)
		w.environment = nil
		w.environmentHash = 0
	}
	w.environmentDesc = nil
}

func (w *world) deliverMessage(c SendMessage) []Change {
	subscribers := w.tagIndex[c.Tag]
	if len(subscribers) == 0 {
		return nil
	}
	labels := make([]string, 0, len(subscribers))
	for label := range subscribers {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	var followUps []Change
	for _, label := range labels {
		if entry, ok := w.elements[label]; ok {
			followUps = append(followUps, entry.element.OnMessage(c.Message)...)
		}
	}
	return followUps
}

func (w *world) clean() {
	for label := range w.elements {
		w.despawnElement(label)
	}
	for label := range w.models {
		w.despawnModel(label)
	}
	for _, entry := range w.cameras {
		if entry.realized != nil {
			w.retire(entry.realized.Release)
		}
	}
	w.cameras = make(map[string]*cameraEntry)
	w.active = ""
	w.lights = make(map[string]descriptor.PointLightDescriptor)
	w.lightsDirty = true
	w.clearEnvironment()
}

func (w *world) submitLoader(load func() ([]Change, error)) {
	if load == nil {
		return
	}
	w.loaderPool.SubmitTask(worker.Task{
		ID: int(w.loaderSeq.Add(1)),
		Do: func() (any, error) {
			changes, err := load()
			if err != nil {
				log.Printf("world: loader failed: %v", err)
				return nil, err
			}
			w.Enqueue(changes...)
			return nil, nil
		},
	})
}

// retire defers a release past the in-flight window. Caller holds w.mu.
func (w *world) retire(release func()) {
	w.retired = append(w.retired, retiredResource{release: release, frame: w.lastFrame})
}

func (w *world) sortedElementLabels() []string {
	labels := make([]string, 0, len(w.elements))
	for label := range w.elements {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

func (w *world) PrepareFrame(frame uint64, aspect float32) (*FrameBindings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastFrame = frame

	if w.layouts == nil && w.ctx != nil {
		layouts, err := realization.NewLayouts(w.ctx)
		if err != nil {
			return nil, err
		}
		w.layouts = layouts
	}

	camera, err := w.prepareCamera(aspect)
	if err != nil {
		return nil, err
	}

	if err := w.prepareLights(); err != nil {
		return nil, err
	}

	w.prepareEnvironment(frame)

	bindings := &FrameBindings{
		CameraBindGroup: camera.BindGroup(),
		ViewProjection:  camera.ViewProjection(),
		LightsBindGroup: w.lightStore.BindGroup(),
	}
	if w.environment != nil {
		bindings.EnvironmentBindGroup = w.environment.BindGroup()
	}
	bindings.Draws = w.prepareModels(frame)
	return bindings, nil
}

// prepareCamera realizes and updates the active camera, spawning the default
// camera when none is active. Caller holds w.mu.
func (w *world) prepareCamera(aspect float32) (*realization.Camera, error) {
	if w.active == "" {
		if _, ok := w.cameras[descriptor.DefaultCameraLabel]; !ok {
			w.spawnCamera(descriptor.DefaultCamera())
		}
		w.active = descriptor.DefaultCameraLabel
	}
	entry := w.cameras[w.active]
	if entry.realized == nil {
		realized, err := w.realizers.Camera(entry.desc, w.ctx, w.layouts)
		if err != nil {
			return nil, err
		}
		entry.realized = realized
		entry.dirty = false
	} else if entry.dirty {
		entry.realized.SetDescriptor(entry.desc)
		entry.dirty = false
	}
	entry.realized.Write(w.ctx, aspect)
	return entry.realized, nil
}

// prepareLights realizes the light storage and re-uploads it when the light
// set changed. Caller holds w.mu.
func (w *world) prepareLights() error {
	if w.lightStore == nil {
		store, err := w.realizers.LightStorage(w.ctx, w.layouts)
		if err != nil {
			return err
		}
		w.lightStore = store
		w.lightsDirty = true
	}
	if w.lightsDirty {
		labels := make([]string, 0, len(w.lights))
		for label := range w.lights {
			labels = append(labels, label)
		}
		slices.Sort(labels)
		lights := make([]descriptor.PointLightDescriptor, 0, len(labels))
		for _, label := range labels {
			lights = append(lights, w.lights[label])
		}
		w.lightStore.SetLights(lights)
		w.lightsDirty = false
	}
	return w.lightStore.Write(w.ctx, w.layouts)
}

// prepareEnvironment realizes a pending environment descriptor and records
// the frame as the last use of an already realized one, so a clear cannot
// free it while its bind group is still in flight. Failure is logged and
// rendering continues without an environment. Caller holds w.mu.
func (w *world) prepareEnvironment(frame uint64) {
	if w.environment != nil {
		w.environments.Touch(w.environmentHash, frame)
		if hash := w.environment.BRDFLUTHash(); hash != 0 {
			w.textures.Touch(hash, frame)
		}
		return
	}
	if w.environmentDesc == nil {
		return
	}
	desc := *w.environmentDesc
	hash := desc.Hash()
	env, err := w.environments.GetOrRealize(hash, frame, func() (*realization.WorldEnvironment, error) {
		return w.realizers.Environment(desc, w.ctx, w.layouts, w.textures, frame)
	})
	if err != nil {
		log.Printf("world: environment realization failed, rendering without it: %v", err)
		w.environmentDesc = nil
		return
	}
	w.environment = env
	w.environmentHash = hash
}

// prepareModels realizes missing models through the mesh and material caches
// and uploads pending instance data. A model whose realization fails is
// skipped for the frame and retried on the next one. Caller holds w.mu.
func (w *world) prepareModels(frame uint64) []*realization.Model {
	labels := make([]string, 0, len(w.models))
	for label := range w.models {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	draws := make([]*realization.Model, 0, len(labels))
	for _, label := range labels {
		entry := w.models[label]
		if entry.realized == nil {
			meshHash := entry.desc.Mesh.Hash()
			mesh, err := w.meshes.GetOrRealize(meshHash, frame, func() (*realization.Mesh, error) {
				return w.realizers.Mesh(entry.desc.Mesh, w.ctx)
			})
			if err != nil {
				log.Printf("world: skipping model %q this frame: %v", label, err)
				continue
			}
			materialHash := entry.desc.Material.Hash()
			material, err := w.materials.GetOrRealize(materialHash, frame, func() (*realization.Material, error) {
				return w.realizers.Material(entry.desc.Material, w.ctx, w.layouts, w.textures, frame)
			})
			if err != nil {
				w.meshes.Release(meshHash)
				log.Printf("world: skipping model %q this frame: %v", label, err)
				continue
			}
			entry.realized = realization.NewModel(label, mesh, meshHash, material, materialHash, entry.transforms)
		} else {
			// Record the frame on everything bound for this draw; otherwise a
			// despawn could free a resource whose last recorded use is its
			// realization frame while a newer command buffer still holds it.
			w.meshes.Touch(entry.realized.MeshHash(), frame)
			w.materials.Touch(entry.realized.MaterialHash(), frame)
			for _, hash := range entry.realized.Material().TextureHashes() {
				w.textures.Touch(hash, frame)
			}
		}
		if err := entry.realized.PrepareInstances(w.ctx); err != nil {
			log.Printf("world: skipping model %q this frame: %v", label, err)
			continue
		}
		draws = append(draws, entry.realized)
	}
	return draws
}

func (w *world) GarbageCollect(frame uint64) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	freed := 0
	kept := w.retired[:0]
	for _, r := range w.retired {
		if frame > r.frame+w.inFlightFrames {
			r.release()
			freed++
		} else {
			kept = append(kept, r)
		}
	}
	w.retired = kept

	// Materials and environments release their texture references on free,
	// so the texture cache is collected last.
	freed += w.materials.GarbageCollect(frame, func(m *realization.Material) {
		for _, hash := range m.TextureHashes() {
			w.textures.Release(hash)
		}
		m.Release()
	})
	freed += w.environments.GarbageCollect(frame, func(e *realization.WorldEnvironment) {
		if hash := e.BRDFLUTHash(); hash != 0 {
			w.textures.Release(hash)
		}
		e.Release()
	})
	freed += w.meshes.GarbageCollect(frame, func(m *realization.Mesh) { m.Release() })
	freed += w.textures.GarbageCollect(frame, func(t *gpu.Texture) { t.Release() })
	return freed
}

func (w *world) HasElement(label string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.elements[label]
	return ok
}

func (w *world) ElementCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.elements)
}

func (w *world) ModelCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.models)
}

func (w *world) LightCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.lights)
}

func (w *world) ActiveCamera() (descriptor.CameraDescriptor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.cameras[w.active]
	if !ok {
		return descriptor.CameraDescriptor{}, false
	}
	return entry.desc, true
}

func (w *world) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.clean()
	for _, r := range w.retired {
		r.release()
	}
	w.retired = nil

	// Past the device's lifetime every frame is complete, so collect with a
	// frame far beyond the in-flight window.
	releaseFrame := w.lastFrame + w.inFlightFrames + 2
	w.materials.GarbageCollect(releaseFrame, func(m *realization.Material) {
		for _, hash := range m.TextureHashes() {
			w.textures.Release(hash)
		}
		m.Release()
	})
	w.environments.GarbageCollect(releaseFrame, func(e *realization.WorldEnvironment) {
		if hash := e.BRDFLUTHash(); hash != 0 {
			w.textures.Release(hash)
		}
		e.Release()
	})
	w.meshes.GarbageCollect(releaseFrame, func(m *realization.Mesh) { m.Release() })
	w.textures.GarbageCollect(releaseFrame, func(t *gpu.Texture) { t.Release() })

	if w.lightStore != nil {
		w.lightStore.Release()
		w.lightStore = nil
	}
	if w.layouts != nil {
		w.layouts.Release()
		w.layouts = nil
	}
}
