package input

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestButtons(t *testing.T) {
	s := NewInputState()
	assert.False(t, s.ButtonPressed(KeyW))

	s.SetButton(KeyW, true)
	s.SetButton(MouseButton(1), true)
	assert.True(t, s.ButtonPressed(KeyW))
	assert.True(t, s.ButtonPressed(MouseButtonRight))

	s.SetButton(KeyW, false)
	assert.False(t, s.ButtonPressed(KeyW))
}

func TestCursorDeltaAccumulatesAndResets(t *testing.T) {
	s := NewInputState()

	s.SetCursorPosition(mgl32.Vec2{10, 10})
	assert.Equal(t, mgl32.Vec2{}, s.CursorDelta())

	s.SetCursorPosition(mgl32.Vec2{15, 8})
	s.SetCursorPosition(mgl32.Vec2{20, 8})
	assert.Equal(t, mgl32.Vec2{10, -2}, s.CursorDelta())
	assert.Equal(t, mgl32.Vec2{20, 8}, s.CursorPosition())

	s.AddScroll(1.5)
	s.AddScroll(-0.5)
	assert.Equal(t, float32(1), s.ScrollDelta())

	s.SetButton(KeySpace, true)
	s.SetAxis(GamepadAxisLeftX, 0.25)
	s.ResetDeltas()

	assert.Equal(t, mgl32.Vec2{}, s.CursorDelta())
	assert.Zero(t, s.ScrollDelta())
	assert.True(t, s.ButtonPressed(KeySpace))
	assert.Equal(t, float32(0.25), s.Axis(GamepadAxisLeftX))
	assert.Equal(t, mgl32.Vec2{20, 8}, s.CursorPosition())
}

func TestReleaseAll(t *testing.T) {
	s := NewInputState()
	s.SetButton(GamepadButton(0), true)
	s.SetAxis(GamepadAxisRightTrigger, 1)
	s.SetSurfaceSize(800, 600)

	s.ReleaseAll()
	assert.False(t, s.ButtonPressed(GamepadButtonA))
	assert.Zero(t, s.Axis(GamepadAxisRightTrigger))

	w, h := s.SurfaceSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}
