package engine

import (
	"github.com/SakulFlee/Orbital-sub000/engine/config"
	"github.com/SakulFlee/Orbital-sub000/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig applies the runtime-relevant parts of the configuration file:
// window vsync, gamepad polling and the fallback adapter switch.
//
// Parameters:
//   - cfg: the loaded configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.vsync = cfg.Window.VSync
		e.gamepadPolling = cfg.Input.GamepadPolling
		e.forceFallbackAdapter = cfg.Renderer.ForceFallbackAdapter
	}
}

// WithEventSource sets the platform event source. The engine closes it when Run returns.
//
// Parameters:
//   - src: an open EventSource, usually from window.NewWindow
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEventSource(src window.EventSource) EngineBuilderOption {
	return func(e *engine) {
		e.source = src
	}
}

// WithSurfaceFactory replaces the wgpu surface creation, e.g. for headless runs.
//
// Parameters:
//   - factory: called on every resume that has no GPU context
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSurfaceFactory(factory SurfaceFactory) EngineBuilderOption {
	return func(e *engine) {
		e.newSurface = factory
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, logs frame and memory statistics once per second at debug level
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithVSync selects the present mode used whenever the surface is configured.
func WithVSync(vsync bool) EngineBuilderOption {
	return func(e *engine) {
		e.vsync = vsync
	}
}

// WithGamepadPolling polls connected gamepads into the input state every frame.
func WithGamepadPolling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.gamepadPolling = enabled
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) EngineBuilderOption {
	return func(e *engine) {
		e.forceFallbackAdapter = force
	}
}

// WithExitFunc replaces os.Exit for ForceAppClosure.
func WithExitFunc(exit func(code int)) EngineBuilderOption {
	return func(e *engine) {
		e.exit = exit
	}
}
