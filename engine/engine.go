// package engine ties the window, renderer, and world together and drives
// the two-goroutine loop: a fixed-rate tick that applies world changes and
// an uncapped render loop that prepares and presents frames.
package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/SakulFlee/Orbital/engine/input"
	"github.com/SakulFlee/Orbital/engine/profiler"
	"github.com/SakulFlee/Orbital/engine/renderer"
	"github.com/SakulFlee/Orbital/engine/window"
	"github.com/SakulFlee/Orbital/engine/world"
)

// Engine is the main entry point. It orchestrates the tick loop, render
// loop, and window message pump.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// World returns the world driven by the engine tick.
	//
	// Returns:
	//   - world.World: the world
	World() world.World

	// Renderer returns the renderer presenting the world.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the world tick rate in ticks per second. Takes
	// effect on the next tick.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called each tick after world
	// updates, for game logic living outside elements.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called each render frame after
	// presentation.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames
	// per second. Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the engine loop and blocks until the window closes or
	// Quit is called. Releases all resources before returning.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple
	// times; subsequent calls are no-ops.
	Quit()
}

// engine implements the Engine interface. Coordinates the tick, render, and
// window threads.
type engine struct {
	tickRateChannel chan time.Duration

	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer renderer.Renderer
	world    world.World

	events        *input.Queue
	gamepadPoller *input.GamepadPoller

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate       time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	windowOptions   []window.WindowBuilderOption
	rendererOptions []renderer.RendererBuilderOption
	worldOptions    []world.WorldBuilderOption
}

var _ Engine = &engine{}

// NewEngine creates the window, renderer, and world and wires them together.
// The engine owns all three; Run releases them when the loop ends.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if window or renderer creation fails
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		events:          input.NewQueue(),
		profiler:        profiler.NewProfiler(),
		tickRate:        time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	win, err := window.NewWindow(e.events, e.windowOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	e.window = win

	r, err := renderer.NewRenderer(win.SurfaceDescriptor(), uint32(win.Width()), uint32(win.Height()), e.rendererOptions...)
	if err != nil {
		_ = win.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	e.renderer = r

	e.world = world.NewWorld(r.Context(), e.worldOptions...)
	e.gamepadPoller = input.NewGamepadPoller(e.events)

	win.SetResizeCallback(func(width, height int) {
		r.Resize(uint32(width), uint32(height))
	})
	win.SetFocusCallback(func(focused bool) {
		e.world.NotifyFocusChange(focused)
	})

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) World() world.World {
	return e.world
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

// Run starts the tick and render goroutines and pumps window messages on
// the calling goroutine until the window closes or Quit is called.
func (e *engine) Run() {
	e.gamepadPoller.Start()

	e.wg.Add(2)
	go e.handleTick()
	go e.handleRender()

	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.gamepadPoller.Stop()

	// The render goroutine has stopped, so the device is idle and the
	// in-flight window no longer applies.
	e.world.Release()
	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		log.Printf("engine: window close failed: %v", err)
	}
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// sync.Once ensures the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleTick runs the fixed-rate world tick loop in its own goroutine.
// Each tick drains the input queue into the world, applies queued changes,
// and fires the tick callback. Listens for dynamic rate changes via
// tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			if events := e.events.Drain(); len(events) > 0 {
				e.world.DeliverInputEvents(events)
			}
			e.world.Update(dt)

			if e.tickCallback != nil {
				e.tickCallback(float32(dt))
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.tickRate = newRate
		}
	}
}

// handleRender runs the render loop in its own goroutine: prepare the
// frame's bindings, draw and present, advance the frame counter, then
// collect garbage that has left the in-flight window. Recovers from panics
// to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ctx := e.renderer.Context()
	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			frame := ctx.Frame()
			bindings, err := e.world.PrepareFrame(frame, e.renderer.AspectRatio())
			if err != nil {
				log.Printf("engine: frame %d preparation failed: %v", frame, err)
				continue
			}

			if err := e.renderer.RenderFrame(bindings); err != nil {
				// Usually a transient surface loss (resize, minimize);
				// the next frame reacquires.
				log.Printf("engine: frame %d render failed: %v", frame, err)
				continue
			}

			next := ctx.AdvanceFrame()
			e.world.GarbageCollect(next)

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60.0
	}
	select {
	case e.tickRateChannel <- time.Second / time.Duration(fps):
	default:
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
