package game_object

import (
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameObject_Registration(t *testing.T) {
	cube := model.NewDescriptor("cube", model.Cube(1))
	cam := camera.DefaultDescriptor()
	obj := NewGameObject("player",
		WithLabels("hero"),
		WithModel(cube),
		WithLight(light.Point("lamp", mgl32.Vec3{0, 2, 0})),
		WithCamera(cam, true),
		WithInitialChanges(world.CleanWorld{}),
	)

	id := uuid.New()
	reg := obj.OnRegistration(id)

	assert.Equal(t, id, obj.ID())
	assert.Equal(t, "cube", obj.ModelLabel())
	assert.Equal(t, []string{"player", "hero"}, reg.Labels)
	require.Len(t, reg.Changes, 4)
	assert.Equal(t, world.SpawnModel{Descriptor: cube}, reg.Changes[0])
	assert.IsType(t, world.SpawnLight{}, reg.Changes[1])
	assert.Equal(t, world.SpawnCameraAndMakeActive{Descriptor: cam}, reg.Changes[2])
	assert.Equal(t, world.CleanWorld{}, reg.Changes[3])
}

func TestGameObject_Spin(t *testing.T) {
	obj := NewGameObject("spinner",
		WithModel(model.NewDescriptor("cube", model.Cube(1))),
		WithRotationSpeed(mgl32.Vec3{0, 2, 0}),
	)

	changes := obj.OnUpdate(0.5, input.NewInputState())
	require.Len(t, changes, 1)
	apply, ok := changes[0].(world.ApplyTransformModel)
	require.True(t, ok)
	assert.Equal(t, "cube", apply.Label)
	assert.Equal(t, common.ModeOffset, apply.Mode.Kind)

	expected := mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0})
	assert.True(t, expected.ApproxEqualThreshold(apply.Mode.Value.Rotation, 1e-5) ||
		expected.Scale(-1).ApproxEqualThreshold(apply.Mode.Value.Rotation, 1e-5))
	assert.Equal(t, mgl32.Vec3{}, apply.Mode.Value.Position)

	assert.Empty(t, obj.OnUpdate(0, input.NewInputState()), "no time, no spin")
}

func TestGameObject_Callbacks(t *testing.T) {
	var updates int
	obj := NewGameObject("logic",
		WithUpdate(func(obj GameObject, dt float64, in *input.InputState) []world.WorldChange {
			updates++
			return []world.WorldChange{world.DespawnLight{Label: obj.Label()}}
		}),
		WithMessageHandler(func(obj GameObject, msg event.Message) []world.WorldChange {
			if v, _ := msg.Bool("quit"); v {
				return []world.WorldChange{world.AppChange{Event: event.RequestAppClosure{}}}
			}
			return nil
		}),
	)

	assert.Equal(t, []world.WorldChange{world.DespawnLight{Label: "logic"}}, obj.OnUpdate(0.1, input.NewInputState()))
	assert.Equal(t,
		[]world.WorldChange{world.AppChange{Event: event.RequestAppClosure{}}},
		obj.OnMessage(event.NewMessage("test", "logic").With("quit", true)))

	obj.SetEnabled(false)
	assert.Nil(t, obj.OnUpdate(0.1, input.NewInputState()))
	assert.Nil(t, obj.OnMessage(event.NewMessage("test", "logic").With("quit", true)))
	assert.Equal(t, 1, updates)
	assert.False(t, NewGameObject("off", WithEnabled(false)).Enabled())
}

func TestCameraController_Keyboard(t *testing.T) {
	cc := NewCameraController("controller", WithMoveSpeed(2), WithControlledCamera("main"))
	in := input.NewInputState()

	assert.Nil(t, cc.OnUpdate(0.5, in), "no input, no change")

	in.SetButton(input.KeyW, true)
	changes := cc.OnUpdate(0.5, in)
	require.Len(t, changes, 1)
	update := changes[0].(world.UpdateCamera)
	assert.Equal(t, "main", update.Transform.Label)
	require.NotNil(t, update.Transform.Position)
	assert.Equal(t, common.ModeOffsetViewAligned, update.Transform.Position.Kind)
	assert.InDelta(t, 1.0, update.Transform.Position.Value[0], 1e-6)

	in.SetButton(input.KeyD, true)
	update = cc.OnUpdate(1, in)[0].(world.UpdateCamera)
	assert.InDelta(t, 2.0, update.Transform.Position.Value.Len(), 1e-5, "diagonal movement is not faster")
}

func TestCameraController_MouseLook(t *testing.T) {
	cc := NewCameraController("controller", WithMouseSensitivity(0.01))
	in := input.NewInputState()
	in.AddCursorDelta(mgl32.Vec2{10, -20})

	assert.Nil(t, cc.OnUpdate(0.016, in), "look button not held")

	in.SetButton(input.MouseButtonRight, true)
	update := cc.OnUpdate(0.016, in)[0].(world.UpdateCamera)
	assert.Equal(t, "", update.Transform.Label, "steers the active camera by default")
	assert.InDelta(t, 0.1, update.Transform.Yaw.Value, 1e-6)
	assert.InDelta(t, 0.2, update.Transform.Pitch.Value, 1e-6)

	free := NewCameraController("free", WithLookButton(input.MouseButtonLeft, false))
	assert.Len(t, free.OnUpdate(0.016, in), 1)
}

func TestCameraController_GamepadDeadZone(t *testing.T) {
	cc := NewCameraController("controller")
	in := input.NewInputState()
	in.SetAxis(input.GamepadAxisLeftY, 0.1)
	assert.Nil(t, cc.OnUpdate(1, in))

	in.SetAxis(input.GamepadAxisLeftY, -1)
	update := cc.OnUpdate(1, in)[0].(world.UpdateCamera)
	assert.InDelta(t, 5.0, update.Transform.Position.Value[0], 1e-5, "pushing the stick up moves forward")
}

func TestCameraController_SpawnedCamera(t *testing.T) {
	desc := camera.DefaultDescriptor()
	desc.Label = "fly"
	cc := NewCameraController("controller", WithSpawnedCamera(desc))
	reg := cc.OnRegistration(uuid.New())
	assert.Equal(t, []world.WorldChange{world.SpawnCameraAndMakeActive{Descriptor: desc}}, reg.Changes)

	in := input.NewInputState()
	in.SetButton(input.KeySpace, true)
	update := cc.OnUpdate(1, in)[0].(world.UpdateCamera)
	assert.Equal(t, "fly", update.Transform.Label)
	assert.InDelta(t, 5.0, update.Transform.Position.Value[1], 1e-5)
}
