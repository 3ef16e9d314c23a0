package engine

import (
	"time"

	"github.com/SakulFlee/Orbital/engine/renderer"
	"github.com/SakulFlee/Orbital/engine/window"
	"github.com/SakulFlee/Orbital/engine/world"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options applied during NewEngine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the world tick rate in ticks per second. Values <= 0
// are treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.tickRate = time.Second / time.Duration(fps)
	}
}

// WithRenderFrameLimit caps the render loop at the given frames per second.
// Pass 0 for uncapped (default).
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindowOptions forwards options to the window created by NewEngine.
//
// Parameters:
//   - options: window builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithRendererOptions forwards options to the renderer created by NewEngine.
//
// Parameters:
//   - options: renderer builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithWorldOptions forwards options to the world created by NewEngine.
//
// Parameters:
//   - options: world builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorldOptions(options ...world.WorldBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.worldOptions = append(e.worldOptions, options...)
	}
}
