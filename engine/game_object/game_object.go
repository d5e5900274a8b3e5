package game_object

import (
	"sync/atomic"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// UpdateFunc is the per-frame behavior of a GameObject.
type UpdateFunc func(obj GameObject, deltaTime float64, in *input.InputState) []world.WorldChange

// MessageFunc handles one message addressed to a GameObject.
type MessageFunc func(obj GameObject, msg event.Message) []world.WorldChange

type gameObject struct {
	id      uuid.UUID
	label   string
	labels  []string
	enabled atomic.Bool

	modelLabel    string
	rotationSpeed mgl32.Vec3
	initial       []world.WorldChange

	onUpdate  UpdateFunc
	onMessage MessageFunc
}

// GameObject is a world element assembled from options instead of a dedicated type:
// the entities it spawns on registration, an optional constant spin of its model and
// optional update and message callbacks.
type GameObject interface {
	world.Element

	// ID returns the id assigned on registration, uuid.Nil before.
	ID() uuid.UUID

	// Label returns the main label the object is reachable under.
	Label() string

	// ModelLabel returns the label of the model spawned with WithModel, or "".
	ModelLabel() string

	// Enabled reports whether OnUpdate and OnMessage run.
	Enabled() bool

	// SetEnabled pauses or resumes the object. Messages received while disabled are dropped.
	SetEnabled(enabled bool)

	// RotationSpeed returns the spin applied to the model each frame, in radians per second.
	RotationSpeed() mgl32.Vec3
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - label: the main label of the object
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(label string, options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{label: label}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uuid.UUID {
	return g.id
}

func (g *gameObject) Label() string {
	return g.label
}

func (g *gameObject) ModelLabel() string {
	return g.modelLabel
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) RotationSpeed() mgl32.Vec3 {
	return g.rotationSpeed
}

func (g *gameObject) OnRegistration(id uuid.UUID) world.ElementRegistration {
	g.id = id
	return world.NewRegistration(g.label).
		WithLabels(g.labels...).
		WithChanges(g.initial...)
}

func (g *gameObject) OnMessage(msg event.Message) []world.WorldChange {
	if !g.Enabled() || g.onMessage == nil {
		return nil
	}
	return g.onMessage(g, msg)
}

func (g *gameObject) OnUpdate(deltaTime float64, in *input.InputState) []world.WorldChange {
	if !g.Enabled() {
		return nil
	}
	var changes []world.WorldChange
	if spin := g.spin(deltaTime); spin != nil {
		changes = append(changes, spin)
	}
	if g.onUpdate != nil {
		changes = append(changes, g.onUpdate(g, deltaTime, in)...)
	}
	return changes
}

// spin returns the change rotating the model by rotationSpeed*deltaTime, or nil when
// there is nothing to rotate.
func (g *gameObject) spin(deltaTime float64) world.WorldChange {
	if g.modelLabel == "" || g.rotationSpeed.Len() == 0 || deltaTime <= 0 {
		return nil
	}
	step := g.rotationSpeed.Mul(float32(deltaTime))
	delta := mgl32.AnglesToQuat(step[0], step[1], step[2], mgl32.XYZ)
	return world.ApplyTransformModel{
		Label: g.modelLabel,
		Mode:  *common.Offset(model.Transform{Rotation: delta}),
	}
}
