package model

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Transform places one instance of a model in the world.
type Transform struct {
	// Position is the translation in world space.
	Position mgl32.Vec3

	// Rotation is the orientation quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform is the transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// At is the identity transform moved to position.
func At(position mgl32.Vec3) Transform {
	t := IdentityTransform()
	t.Position = position
	return t
}

// Matrix composes Translation * Rotation * Scale as a column-major model matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	rotation := t.Rotation
	if rotation.Len() == 0 {
		rotation = mgl32.QuatIdent()
	}
	return common.ComposeTRS(t.Position, rotation, t.Scale)
}

// Offset adds delta to t: positions and scales are summed and a non-zero delta
// rotation is applied on top of the current one. A zero quaternion leaves the
// rotation unchanged, so a delta built from only a position moves without turning.
func (t Transform) Offset(delta Transform) Transform {
	t.Position = t.Position.Add(delta.Position)
	t.Scale = t.Scale.Add(delta.Scale)
	if delta.Rotation.Len() != 0 {
		if t.Rotation.Len() == 0 {
			t.Rotation = mgl32.QuatIdent()
		}
		t.Rotation = delta.Rotation.Normalize().Mul(t.Rotation).Normalize()
	}
	return t
}

// Apply applies a mode to t. Every offset kind behaves like Offset since model transforms
// have no view to align with.
func (t Transform) Apply(mode common.Mode[Transform]) Transform {
	if mode.Kind == common.ModeOverwrite {
		return mode.Value
	}
	return t.Offset(mode.Value)
}

// InstanceTransform is one entry of a model's transform table. The ID stays stable while
// entries before it are added or removed.
type InstanceTransform struct {
	ID        uuid.UUID
	Transform Transform
}

// NewInstance assigns a fresh ID to t.
func NewInstance(t Transform) InstanceTransform {
	return InstanceTransform{ID: uuid.New(), Transform: t}
}
