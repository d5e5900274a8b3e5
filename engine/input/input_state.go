package input

import "github.com/go-gl/mathgl/mgl32"

// InputState is the per-frame input snapshot handed to the application and world.
// Persistent state (held buttons, axes, cursor position) survives ResetDeltas;
// per-frame accumulators (cursor delta, scroll) are zeroed by it.
type InputState struct {
	buttons map[Button]bool
	axes    map[Axis]float32

	cursorPosition mgl32.Vec2
	cursorKnown    bool
	cursorDelta    mgl32.Vec2
	scrollDelta    float32

	surfaceWidth  int
	surfaceHeight int
}

// NewInputState creates an empty snapshot.
func NewInputState() *InputState {
	return &InputState{
		buttons: make(map[Button]bool),
		axes:    make(map[Axis]float32),
	}
}

// ButtonPressed reports whether b is currently held.
func (s *InputState) ButtonPressed(b Button) bool {
	return s.buttons[b]
}

// Axis returns the last value reported for a, zero if never reported.
func (s *InputState) Axis(a Axis) float32 {
	return s.axes[a]
}

func (s *InputState) CursorPosition() mgl32.Vec2 {
	return s.cursorPosition
}

// CursorDelta is the cursor movement accumulated since the last ResetDeltas.
func (s *InputState) CursorDelta() mgl32.Vec2 {
	return s.cursorDelta
}

// ScrollDelta is the vertical scroll accumulated since the last ResetDeltas.
func (s *InputState) ScrollDelta() float32 {
	return s.scrollDelta
}

// SurfaceSize is the last known framebuffer size.
func (s *InputState) SurfaceSize() (int, int) {
	return s.surfaceWidth, s.surfaceHeight
}

func (s *InputState) SetButton(b Button, pressed bool) {
	if pressed {
		s.buttons[b] = true
		return
	}
	delete(s.buttons, b)
}

func (s *InputState) SetAxis(a Axis, v float32) {
	s.axes[a] = v
}

// SetCursorPosition records an absolute cursor position and accumulates the
// movement relative to the previous one. The first sample adds no delta.
func (s *InputState) SetCursorPosition(p mgl32.Vec2) {
	if s.cursorKnown {
		s.cursorDelta = s.cursorDelta.Add(p.Sub(s.cursorPosition))
	}
	s.cursorPosition = p
	s.cursorKnown = true
}

// AddCursorDelta accumulates raw motion, used while the cursor is grabbed.
func (s *InputState) AddCursorDelta(d mgl32.Vec2) {
	s.cursorDelta = s.cursorDelta.Add(d)
}

func (s *InputState) AddScroll(d float32) {
	s.scrollDelta += d
}

func (s *InputState) SetSurfaceSize(width, height int) {
	s.surfaceWidth, s.surfaceHeight = width, height
}

// ResetDeltas zeroes the per-frame accumulators.
func (s *InputState) ResetDeltas() {
	s.cursorDelta = mgl32.Vec2{}
	s.scrollDelta = 0
}

// ReleaseAll clears held buttons and axes, used when the window loses focus.
func (s *InputState) ReleaseAll() {
	clear(s.buttons)
	clear(s.axes)
}
