package window

import "github.com/SakulFlee/Orbital-sub000/engine/config"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithConfig applies the window section of the engine configuration.
//
// Parameters:
//   - cfg: the window configuration
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithConfig(cfg config.WindowConfig) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = cfg.Title
		w.width = cfg.Width
		w.height = cfg.Height
		w.fullscreen = cfg.Fullscreen
	}
}

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size.
//
// Parameters:
//   - width, height: initial size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithMinSize sets the minimum allowed window size.
//
// Parameters:
//   - minWidth, minHeight: minimum size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(minWidth, minHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = minWidth
		w.minHeight = minHeight
	}
}

// WithFullscreen opens the window fullscreen on the primary monitor.
func WithFullscreen(fullscreen bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.fullscreen = fullscreen
	}
}

// WithContinuousRedraw controls whether every poll requests a frame. When disabled,
// frames are only produced after RequestRedraw.
func WithContinuousRedraw(continuous bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.continuous = continuous
	}
}

// WithGamepadDeadzone sets the stick magnitude below which axes read zero.
func WithGamepadDeadzone(deadzone float32) WindowBuilderOption {
	return func(w *engineWindow) {
		w.gamepadDeadzone = deadzone
	}
}
