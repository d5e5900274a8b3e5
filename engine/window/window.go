package window

import (
	"fmt"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// EventSource is the platform side of the runtime: it produces window and input
// events, provides the surface and applies cursor requests.
type EventSource interface {
	// PollEvents processes pending platform events without blocking.
	//
	// Returns:
	//   - []Event: the events since the last call, in the order they happened
	PollEvents() []Event

	// PollGamepads writes the state of every connected gamepad into in.
	//
	// Parameters:
	//   - in: the input snapshot of the current frame
	PollGamepads(in *input.InputState)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the current framebuffer size in pixels.
	Size() (int, int)

	SetCursorVisible(visible bool)

	// SetCursorGrabbed confines and hides the cursor and switches to raw motion when supported.
	SetCursorGrabbed(grabbed bool)

	SetCursorPosition(position mgl32.Vec2)

	SetCursorIcon(icon event.CursorIcon)

	// RequestRedraw queues a RedrawRequested event for the next PollEvents.
	RequestRedraw()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was not open
	Close() error
}

// engineWindow is the GLFW implementation of the EventSource interface.
// Holds window configuration, the pending event queue and the GLFW state.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth and minHeight limit resizing, zero means unlimited.
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// fullscreen opens the window on the primary monitor.
	fullscreen bool

	// continuous queues a RedrawRequested after every poll.
	continuous bool

	// gamepadDeadzone zeroes stick values below this magnitude.
	gamepadDeadzone float32

	// events are queued by the GLFW callbacks and drained by PollEvents.
	mu     *sync.Mutex
	events []Event

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any
}

var _ EventSource = &engineWindow{}

// NewWindow creates and opens a GLFW window. It must be called from the main goroutine.
// The first PollEvents reports Resumed followed by the initial Resized.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - EventSource: the open window
//   - error: if GLFW or the window could not be initialized
func NewWindow(options ...WindowBuilderOption) (EventSource, error) {
	w := &engineWindow{
		title:           "Orbital",
		width:           1280,
		height:          720,
		continuous:      true,
		gamepadDeadzone: 0.05,
		mu:              &sync.Mutex{},
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.push(Resumed{}, Resized{Width: w.width, Height: w.height})
	return w, nil
}

func (w *engineWindow) push(events ...Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, events...)
}

func (w *engineWindow) drain() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.events
	w.events = nil
	return out
}

func (w *engineWindow) PollEvents() []Event {
	platformProcessMessages(w)
	if w.continuous {
		w.push(RedrawRequested{})
	}
	return w.drain()
}

func (w *engineWindow) PollGamepads(in *input.InputState) {
	platformPollGamepads(w, in)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) SetCursorVisible(visible bool) {
	platformSetCursorVisible(w, visible)
}

func (w *engineWindow) SetCursorGrabbed(grabbed bool) {
	platformSetCursorGrabbed(w, grabbed)
}

func (w *engineWindow) SetCursorPosition(position mgl32.Vec2) {
	platformSetCursorPosition(w, position)
}

func (w *engineWindow) SetCursorIcon(icon event.CursorIcon) {
	platformSetCursorIcon(w, icon)
}

func (w *engineWindow) RequestRedraw() {
	w.push(RedrawRequested{})
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

// applyDeadzone zeroes v when its magnitude is below deadzone.
func applyDeadzone(v, deadzone float32) float32 {
	if v > -deadzone && v < deadzone {
		return 0
	}
	return v
}
