package game_object

import (
	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithLabels adds labels the object is also reachable under, for messages and despawning.
//
// Parameters:
//   - labels: additional labels
//
// Returns:
//   - GameObjectBuilderOption: functional option to add the labels
func WithLabels(labels ...string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.labels = append(obj.labels, labels...)
	}
}

// WithEnabled sets whether the GameObject starts enabled. Defaults to true.
//
// Parameters:
//   - enabled: true to run callbacks, false to skip them
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel spawns desc when the object is registered. The model's label is what
// WithRotationSpeed spins.
//
// Parameters:
//   - desc: the model to spawn
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(desc *model.Descriptor) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if desc == nil {
			return
		}
		obj.modelLabel = desc.Label
		obj.initial = append(obj.initial, world.SpawnModel{Descriptor: desc})
	}
}

// WithLight spawns a light when the object is registered.
//
// Parameters:
//   - desc: the light to spawn
//
// Returns:
//   - GameObjectBuilderOption: functional option to attach the light
func WithLight(desc light.Descriptor) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.initial = append(obj.initial, world.SpawnLight{Descriptor: desc})
	}
}

// WithCamera spawns a camera when the object is registered.
//
// Parameters:
//   - desc: the camera to spawn
//   - active: true to make it the active camera
//
// Returns:
//   - GameObjectBuilderOption: functional option to attach the camera
func WithCamera(desc camera.Descriptor, active bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if active {
			obj.initial = append(obj.initial, world.SpawnCameraAndMakeActive{Descriptor: desc})
			return
		}
		obj.initial = append(obj.initial, world.SpawnCamera{Descriptor: desc})
	}
}

// WithInitialChanges queues arbitrary changes on registration, after the ones added by
// WithModel, WithLight and WithCamera that precede this option.
func WithInitialChanges(changes ...world.WorldChange) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.initial = append(obj.initial, changes...)
	}
}

// WithRotationSpeed spins the object's model every frame.
//
// Parameters:
//   - speed: Euler angles per second in radians, applied in XYZ order
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(speed mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = speed
	}
}

// WithUpdate sets the per-frame callback.
func WithUpdate(fn UpdateFunc) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.onUpdate = fn
	}
}

// WithMessageHandler sets the callback for messages addressed to the object.
func WithMessageHandler(fn MessageFunc) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.onMessage = fn
	}
}
