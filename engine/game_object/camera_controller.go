package game_object

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// gamepadDeadZone is the stick deflection below which gamepad axes are ignored.
const gamepadDeadZone = 0.15

// cameraController is a free-fly controller: WASD and the left stick move along the
// view, Space and Shift move up and down, the mouse (while the look button is held)
// and the right stick turn the camera.
type cameraController struct {
	label       string
	cameraLabel string
	spawn       *camera.Descriptor

	moveSpeed           float32
	mouseSensitivity    float32
	gamepadSensitivity  float32
	lookButton          input.Button
	lookRequiresPressed bool
}

var _ world.Element = &cameraController{}

// NewCameraController creates a camera controller element with sensible defaults.
// Without WithControlledCamera it steers the active camera.
//
// Parameters:
//   - label: the element label
//   - options: functional options to configure the controller
//
// Returns:
//   - world.Element: the controller, ready to be spawned
func NewCameraController(label string, options ...CameraControllerOption) world.Element {
	cc := &cameraController{
		label:               label,
		moveSpeed:           5.0,
		mouseSensitivity:    0.005,
		gamepadSensitivity:  2.0,
		lookButton:          input.MouseButtonRight,
		lookRequiresPressed: true,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraController) OnRegistration(uuid.UUID) world.ElementRegistration {
	reg := world.NewRegistration(cc.label)
	if cc.spawn != nil {
		reg = reg.WithChanges(world.SpawnCameraAndMakeActive{Descriptor: *cc.spawn})
	}
	return reg
}

func (cc *cameraController) OnMessage(event.Message) []world.WorldChange {
	return nil
}

func (cc *cameraController) OnUpdate(deltaTime float64, in *input.InputState) []world.WorldChange {
	if in == nil {
		return nil
	}
	t, ok := cc.transform(float32(deltaTime), in)
	if !ok {
		return nil
	}
	return []world.WorldChange{world.UpdateCamera{Transform: t}}
}

// transform turns this frame's input into a camera transform. Position offsets are
// view aligned: x forward, y up, z right.
func (cc *cameraController) transform(dt float32, in *input.InputState) (camera.Transform, bool) {
	var move mgl32.Vec3
	if in.ButtonPressed(input.KeyW) {
		move[0]++
	}
	if in.ButtonPressed(input.KeyS) {
		move[0]--
	}
	if in.ButtonPressed(input.KeyD) {
		move[2]++
	}
	if in.ButtonPressed(input.KeyA) {
		move[2]--
	}
	if in.ButtonPressed(input.KeySpace) {
		move[1]++
	}
	if in.ButtonPressed(input.KeyLeftShift) {
		move[1]--
	}
	move[0] -= deadZone(in.Axis(input.GamepadAxisLeftY))
	move[2] += deadZone(in.Axis(input.GamepadAxisLeftX))
	if move.Len() > 1 {
		move = move.Normalize()
	}
	move = move.Mul(cc.moveSpeed * dt)

	var yaw, pitch float32
	if !cc.lookRequiresPressed || in.ButtonPressed(cc.lookButton) {
		d := in.CursorDelta()
		yaw += d[0] * cc.mouseSensitivity
		pitch -= d[1] * cc.mouseSensitivity
	}
	yaw += deadZone(in.Axis(input.GamepadAxisRightX)) * cc.gamepadSensitivity * dt
	pitch -= deadZone(in.Axis(input.GamepadAxisRightY)) * cc.gamepadSensitivity * dt

	t := camera.Transform{
		Label:    cc.cameraLabel,
		Position: common.OffsetViewAligned(move),
		Yaw:      common.Offset(yaw),
		Pitch:    common.Offset(pitch),
	}
	return t, t.IsIntroducingChange()
}

func deadZone(v float32) float32 {
	if math32.Abs(v) < gamepadDeadZone {
		return 0
	}
	return v
}
