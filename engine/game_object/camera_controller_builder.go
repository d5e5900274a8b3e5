package game_object

import (
	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
)

// CameraControllerOption is a functional option for configuring the camera controller.
type CameraControllerOption func(*cameraController)

// WithControlledCamera makes the controller steer the camera with the given label
// instead of the active one.
//
// Parameters:
//   - label: the camera label
//
// Returns:
//   - CameraControllerOption: functional option to set the camera
func WithControlledCamera(label string) CameraControllerOption {
	return func(cc *cameraController) {
		cc.cameraLabel = label
	}
}

// WithSpawnedCamera spawns desc as the active camera on registration and steers it.
//
// Parameters:
//   - desc: the camera to spawn
//
// Returns:
//   - CameraControllerOption: functional option to spawn the camera
func WithSpawnedCamera(desc camera.Descriptor) CameraControllerOption {
	return func(cc *cameraController) {
		cc.spawn = &desc
		cc.cameraLabel = desc.Label
	}
}

// WithMoveSpeed sets the movement speed in units per second.
//
// Parameters:
//   - speed: the movement speed
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraController) {
		cc.moveSpeed = speed
	}
}

// WithMouseSensitivity sets radians turned per pixel of cursor movement.
//
// Parameters:
//   - sensitivity: the mouse sensitivity
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraController) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithGamepadSensitivity sets radians per second turned at full right stick deflection.
func WithGamepadSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraController) {
		cc.gamepadSensitivity = sensitivity
	}
}

// WithLookButton sets the button that must be held for mouse look. Pass false for
// required to look whenever the cursor moves, as with a grabbed cursor.
//
// Parameters:
//   - button: the look button
//   - required: whether the button has to be held
//
// Returns:
//   - CameraControllerOption: functional option to set the look button
func WithLookButton(button input.Button, required bool) CameraControllerOption {
	return func(cc *cameraController) {
		cc.lookButton = button
		cc.lookRequiresPressed = required
	}
}
