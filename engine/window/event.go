package window

import (
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

// Event is a signal from the platform event source to the runtime.
type Event interface {
	isEvent()
}

// Resumed is sent once the surface can be created, and again after a suspension ends.
type Resumed struct{}

// Suspended is sent when the surface must not be rendered to, e.g. while minimized.
type Suspended struct{}

// Resized carries the new framebuffer size in pixels.
type Resized struct {
	Width  int
	Height int
}

// RedrawRequested asks the runtime to produce a frame.
type RedrawRequested struct{}

// CloseRequested is sent when the user closes the window.
type CloseRequested struct{}

// ButtonInput reports a keyboard key or mouse button changing state.
type ButtonInput struct {
	Button  input.Button
	Pressed bool
}

// CursorMoved carries the absolute cursor position in pixels.
type CursorMoved struct {
	Position mgl32.Vec2
}

// Scrolled carries the vertical scroll offset of one wheel event.
type Scrolled struct {
	Delta float32
}

// FocusChanged reports the window gaining or losing keyboard focus.
type FocusChanged struct {
	Focused bool
}

func (Resumed) isEvent()         {}
func (Suspended) isEvent()       {}
func (Resized) isEvent()         {}
func (RedrawRequested) isEvent() {}
func (CloseRequested) isEvent()  {}
func (ButtonInput) isEvent()     {}
func (CursorMoved) isEvent()     {}
func (Scrolled) isEvent()        {}
func (FocusChanged) isEvent()    {}

// Apply updates in with the input carried by ev.
//
// Returns:
//   - bool: false when ev carries no input
func Apply(in *input.InputState, ev Event) bool {
	switch e := ev.(type) {
	case ButtonInput:
		in.SetButton(e.Button, e.Pressed)
	case CursorMoved:
		in.SetCursorPosition(e.Position)
	case Scrolled:
		in.AddScroll(e.Delta)
	case FocusChanged:
		if !e.Focused {
			in.ReleaseAll()
		}
	case Resized:
		in.SetSurfaceSize(e.Width, e.Height)
	default:
		return false
	}
	return true
}
