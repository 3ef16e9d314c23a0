package world

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/input"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/cache"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
	"github.com/SakulFlee/Orbital/engine/resources/realization"
)

// nullContext satisfies gpu.Context without a device so orchestration tests
// run without a GPU. Creation calls hand back empty values and uploads are
// dropped.
type nullContext struct {
	frame atomic.Uint64
}

var _ gpu.Context = &nullContext{}

func (n *nullContext) Device() *wgpu.Device { return nil }
func (n *nullContext) Queue() *wgpu.Queue   { return nil }
func (n *nullContext) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return nil, nil
}
func (n *nullContext) CreateBufferInit(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return nil, nil
}
func (n *nullContext) CreateTexture2D(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*gpu.Texture, error) {
	return &gpu.Texture{}, nil
}
func (n *nullContext) CreateCubeTexture(label string, faceSize uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage, mipLevelCount uint32) (*gpu.Texture, error) {
	return &gpu.Texture{}, nil
}
func (n *nullContext) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) {}
func (n *nullContext) WriteTexture(t *gpu.Texture, data []byte, bytesPerPixel uint32) {}
func (n *nullContext) CreateComputePipeline(label, source, entryPoint string, layouts []*wgpu.BindGroupLayout) (*wgpu.ComputePipeline, error) {
	return nil, nil
}
func (n *nullContext) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return nil, nil
}
func (n *nullContext) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return nil, nil
}
func (n *nullContext) CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error) {
	return nil, nil
}
func (n *nullContext) CreateEncoder() (*wgpu.CommandEncoder, error) { return nil, nil }
func (n *nullContext) Submit(encoder *wgpu.CommandEncoder) error    { return nil }
func (n *nullContext) Frame() uint64                                { return n.frame.Load() }
func (n *nullContext) AdvanceFrame() uint64                         { return n.frame.Add(1) }

// realizeCounts tracks realizer invocations for dedup assertions.
type realizeCounts struct {
	mesh     int
	material int
	lut      int
}

// countingRealizers is a GPU-free realizer set. Materials whose base color
// texture has a file path fail with an asset resolution error, standing in
// for missing files on disk.
func countingRealizers(counts *realizeCounts) Realizers {
	return Realizers{
		Mesh: func(desc descriptor.MeshDescriptor, ctx gpu.Context) (*realization.Mesh, error) {
			counts.mesh++
			return &realization.Mesh{}, nil
		},
		Material: func(desc descriptor.MaterialDescriptor, ctx gpu.Context, layouts *realization.Layouts, textures *cache.Cache[*gpu.Texture], frame uint64) (*realization.Material, error) {
			if desc.BaseColorTexture != nil && desc.BaseColorTexture.Path != "" {
				return nil, &resources.AssetResolutionError{
					Ref: desc.BaseColorTexture.Path,
					Err: fmt.Errorf("no such file"),
				}
			}
			counts.material++
			return &realization.Material{}, nil
		},
		Camera: func(desc descriptor.CameraDescriptor, ctx gpu.Context, layouts *realization.Layouts) (*realization.Camera, error) {
			return &realization.Camera{}, nil
		},
		Environment: func(desc descriptor.WorldEnvironmentDescriptor, ctx gpu.Context, layouts *realization.Layouts, textures *cache.Cache[*gpu.Texture], frame uint64) (*realization.WorldEnvironment, error) {
			_, err := textures.GetOrRealize(realization.BRDFLUTCacheKey, frame, func() (*gpu.Texture, error) {
				counts.lut++
				return &gpu.Texture{}, nil
			})
			if err != nil {
				return nil, err
			}
			return &realization.WorldEnvironment{}, nil
		},
		LightStorage: func(ctx gpu.Context, layouts *realization.Layouts) (*realization.LightStorage, error) {
			return &realization.LightStorage{}, nil
		},
	}
}

func newTestWorld(t *testing.T) (World, *realizeCounts) {
	t.Helper()
	counts := &realizeCounts{}
	w := NewWorld(&nullContext{}, WithRealizers(countingRealizers(counts)), WithLoaderWorkers(1))
	return w, counts
}

func cubeModel(label string) descriptor.ModelDescriptor {
	return descriptor.ModelDescriptor{
		Label:    label,
		Mesh:     descriptor.Cube("Shared Cube", 1),
		Material: descriptor.MaterialDescriptor{Name: "Shared Material"},
	}
}

// recorderElement records the hook calls it receives.
type recorderElement struct {
	BaseElement
	onSpawn  []Change
	messages []Message
	events   []input.Event
	updates  int
}

func (e *recorderElement) OnRegistration() []Change { return e.onSpawn }
func (e *recorderElement) OnUpdate(deltaTime float64) []Change {
	e.updates++
	return nil
}
func (e *recorderElement) OnMessage(message Message) []Change {
	e.messages = append(e.messages, message)
	return nil
}
func (e *recorderElement) OnInputEvent(event input.Event) []Change {
	e.events = append(e.events, event)
	return nil
}

func TestSpawnElementRunsRegistrationAndOwnsModels(t *testing.T) {
	w, _ := newTestWorld(t)
	element := &recorderElement{
		onSpawn: []Change{SpawnModel{Descriptor: cubeModel("Cube")}},
	}
	w.Enqueue(SpawnElement{Label: "Spinner", Element: element, Tags: []string{"props"}})
	w.Update(0.016)

	assert.True(t, w.HasElement("Spinner"))
	assert.Equal(t, 1, w.ModelCount())
	assert.Equal(t, 1, element.updates)

	w.Enqueue(DespawnElement{Label: "Spinner"})
	w.Update(0.016)

	assert.False(t, w.HasElement("Spinner"))
	assert.Equal(t, 0, w.ModelCount(), "despawning an element despawns its models")
}

func TestMessageDeliveryByTag(t *testing.T) {
	w, _ := newTestWorld(t)
	listener := &recorderElement{}
	bystander := &recorderElement{}
	w.Enqueue(
		SpawnElement{Label: "Listener", Element: listener, Tags: []string{"audio"}},
		SpawnElement{Label: "Bystander", Element: bystander, Tags: []string{"props"}},
		SendMessage{Tag: "audio", Message: Message{"volume": 0.5}},
	)
	w.Update(0.016)

	require.Len(t, listener.messages, 1)
	assert.Equal(t, Message{"volume": 0.5}, listener.messages[0])
	assert.Empty(t, bystander.messages)

	// Messages are drained within the update they were enqueued in, not held.
	w.Update(0.016)
	assert.Len(t, listener.messages, 1)
}

func TestChangeQueueIsFIFO(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Enqueue(
		SpawnLight{Descriptor: descriptor.PointLightDescriptor{Label: "A", Intensity: 1}},
		DespawnLight{Label: "A"},
		SpawnLight{Descriptor: descriptor.PointLightDescriptor{Label: "A", Intensity: 2}},
	)
	w.Update(0.016)

	assert.Equal(t, 1, w.LightCount())
}

func TestInputEventsReachElements(t *testing.T) {
	w, _ := newTestWorld(t)
	element := &recorderElement{}
	w.Enqueue(SpawnElement{Label: "Player", Element: element})
	w.Update(0.016)

	w.DeliverInputEvents([]input.Event{
		input.KeyEvent{KeyCode: 32, State: input.Pressed},
		input.KeyEvent{KeyCode: 32, State: input.Released},
	})

	require.Len(t, element.events, 2)
	assert.Equal(t, input.KeyEvent{KeyCode: 32, State: input.Pressed}, element.events[0])
}

func TestPrepareFrameDedupsSharedResources(t *testing.T) {
	w, counts := newTestWorld(t)
	w.Enqueue(
		SpawnModel{Descriptor: cubeModel("Left")},
		SpawnModel{Descriptor: cubeModel("Right")},
	)
	w.Update(0.016)

	bindings, err := w.PrepareFrame(1, 16.0/9.0)
	require.NoError(t, err)

	assert.Len(t, bindings.Draws, 2)
	assert.Equal(t, 1, counts.mesh, "shared mesh realized once")
	assert.Equal(t, 1, counts.material, "shared material realized once")
}

func TestPrepareFrameSpawnsDefaultCamera(t *testing.T) {
	w, _ := newTestWorld(t)
	_, active := w.ActiveCamera()
	assert.False(t, active)

	_, err := w.PrepareFrame(1, 1.0)
	require.NoError(t, err)

	desc, active := w.ActiveCamera()
	require.True(t, active)
	assert.Equal(t, descriptor.DefaultCameraLabel, desc.Label)
}

func TestMalformedMaterialSkipsModelNotFrame(t *testing.T) {
	w, _ := newTestWorld(t)
	broken := cubeModel("Broken")
	broken.Material = descriptor.MaterialDescriptor{
		Name:             "Missing Texture",
		BaseColorTexture: &descriptor.TextureDescriptor{Label: "bad", Path: "/missing/file.png"},
	}
	w.Enqueue(
		SpawnModel{Descriptor: cubeModel("Good")},
		SpawnModel{Descriptor: broken},
	)
	w.Update(0.016)

	bindings, err := w.PrepareFrame(1, 1.0)
	require.NoError(t, err, "a bad asset must never fail the frame")

	require.Len(t, bindings.Draws, 1)
	assert.Equal(t, "Good", bindings.Draws[0].Label())
	assert.Equal(t, 2, w.ModelCount(), "the broken model stays spawned and is retried")
}

func TestDespawnReleasesAndGarbageCollects(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Enqueue(SpawnModel{Descriptor: cubeModel("Cube")})
	w.Update(0.016)

	_, err := w.PrepareFrame(1, 1.0)
	require.NoError(t, err)

	w.Enqueue(DespawnModel{Label: "Cube"})
	w.Update(0.016)
	assert.Equal(t, 0, w.ModelCount())

	// Within the in-flight window nothing is freed.
	assert.Equal(t, 0, w.GarbageCollect(2))

	// Past it, the retired instance buffer plus the mesh and material cache
	// entries are freed.
	freed := w.GarbageCollect(5)
	assert.Equal(t, 3, freed)
}

func TestLongLivedModelStaysInFlightAfterDespawn(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Enqueue(SpawnModel{Descriptor: cubeModel("Cube")})
	w.Update(0.016)

	// Render far past the in-flight depth, so bookkeeping done only at
	// realization time would long have gone stale.
	for frame := uint64(1); frame <= 100; frame++ {
		_, err := w.PrepareFrame(frame, 1.0)
		require.NoError(t, err)
	}

	w.Enqueue(DespawnModel{Label: "Cube"})
	w.Update(0.016)

	// Frame 100's command buffer may still be in flight; nothing bound into
	// it may be freed yet.
	assert.Equal(t, 0, w.GarbageCollect(101))
	assert.Equal(t, 0, w.GarbageCollect(102))

	// Past the window the retired instance buffer, the mesh, and the
	// material all go.
	assert.Equal(t, 3, w.GarbageCollect(103))
}

func TestEnvironmentStaysInFlightAfterClear(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Enqueue(SetWorldEnvironment{
		Descriptor: descriptor.WorldEnvironmentFromPixels([]float32{1, 1, 1, 1}, 1, 1, 64),
	})
	w.Update(0.016)

	for frame := uint64(1); frame <= 50; frame++ {
		_, err := w.PrepareFrame(frame, 1.0)
		require.NoError(t, err)
	}

	w.Enqueue(ClearWorldEnvironment{})
	w.Update(0.016)

	assert.Equal(t, 0, w.GarbageCollect(51))
	assert.Equal(t, 0, w.GarbageCollect(52))
	assert.Equal(t, 1, w.GarbageCollect(53))
}

func TestBRDFLUTIsSingletonAcrossEnvironments(t *testing.T) {
	w, counts := newTestWorld(t)

	w.Enqueue(SetWorldEnvironment{
		Descriptor: descriptor.WorldEnvironmentFromPixels([]float32{1, 1, 1, 1}, 1, 1, 64),
	})
	w.Update(0.016)
	_, err := w.PrepareFrame(1, 1.0)
	require.NoError(t, err)

	w.Enqueue(SetWorldEnvironment{
		Descriptor: descriptor.WorldEnvironmentFromPixels([]float32{0, 0, 1, 1}, 1, 1, 64),
	})
	w.Update(0.016)
	_, err = w.PrepareFrame(2, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 1, counts.lut, "the lookup table is environment independent")
}

func TestUpdateCameraMutatesActivePose(t *testing.T) {
	w, _ := newTestWorld(t)
	cam := descriptor.DefaultCamera()
	cam.Label = "Main"
	w.Enqueue(SpawnCamera{Descriptor: cam, MakeActive: true})
	w.Update(0.016)

	moved := cam
	moved.Position[1] = 10
	w.Enqueue(UpdateCamera{Descriptor: moved})
	w.Update(0.016)

	desc, active := w.ActiveCamera()
	require.True(t, active)
	assert.Equal(t, "Main", desc.Label)
	assert.Equal(t, float32(10), desc.Position.Y())
}

func TestCleanWorldDespawnsEverything(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Enqueue(
		SpawnElement{Label: "Spinner", Element: &recorderElement{
			onSpawn: []Change{SpawnModel{Descriptor: cubeModel("Cube")}},
		}},
		SpawnLight{Descriptor: descriptor.PointLightDescriptor{Label: "Sun"}},
	)
	w.Update(0.016)
	require.Equal(t, 1, w.ModelCount())

	w.Enqueue(CleanWorld{})
	w.Update(0.016)

	assert.Equal(t, 0, w.ElementCount())
	assert.Equal(t, 0, w.ModelCount())
	assert.Equal(t, 0, w.LightCount())
}

func TestSetModelTransformsBeforeRealization(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Enqueue(
		SpawnModel{Descriptor: cubeModel("Cube")},
		SetModelTransforms{Label: "Cube", Transforms: []descriptor.Transform{
			descriptor.DefaultTransform(),
			descriptor.DefaultTransform(),
			descriptor.DefaultTransform(),
		}},
	)
	w.Update(0.016)

	bindings, err := w.PrepareFrame(1, 1.0)
	require.NoError(t, err)

	require.Len(t, bindings.Draws, 1)
	assert.Equal(t, uint32(3), bindings.Draws[0].InstanceCount())
}
