package camera

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultLabel names the camera created by DefaultDescriptor.
	DefaultLabel = "Default"
	// SafeFracPi2 is the pitch limit; looking straight up or down would make the view degenerate.
	SafeFracPi2 = math32.Pi/2 - 0.0001

	// UniformSize is the byte size of the camera uniform block.
	UniformSize = 288
)

// Byte offsets inside the camera uniform block.
const (
	offsetPosition                     = 0
	offsetView                         = 16
	offsetPerspectiveViewProjection    = 80
	offsetViewTransposed               = 144
	offsetInversePerspectiveProjection = 208
	offsetGlobalGamma                  = 272
)

// Descriptor is the CPU-side state of a camera. Angles are in radians, FovY in degrees.
type Descriptor struct {
	Label       string
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Aspect      float32
	FovY        float32
	Near        float32
	Far         float32
	GlobalGamma float32
}

// DefaultDescriptor returns the camera used when a world has none of its own.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Label:       DefaultLabel,
		Aspect:      16.0 / 9.0,
		FovY:        45,
		Near:        0.1,
		Far:         10000,
		GlobalGamma: 2.2,
	}
}

// ApplyTransform applies t to the descriptor in the order pitch, yaw, position.
// Pitch is clamped to ±SafeFracPi2.
func (d *Descriptor) ApplyTransform(t Transform) {
	if t.Pitch != nil {
		if t.Pitch.Kind == common.ModeOverwrite {
			d.Pitch = t.Pitch.Value
		} else {
			d.Pitch += t.Pitch.Value
		}
		d.Pitch = common.Clamp(d.Pitch, -SafeFracPi2, SafeFracPi2)
	}

	if t.Yaw != nil {
		if t.Yaw.Kind == common.ModeOverwrite {
			d.Yaw = t.Yaw.Value
		} else {
			d.Yaw += t.Yaw.Value
		}
	}

	if t.Position == nil {
		return
	}
	v := t.Position.Value
	switch t.Position.Kind {
	case common.ModeOverwrite:
		d.Position = v
	case common.ModeOffset:
		d.Position = d.Position.Add(v)
	case common.ModeOffsetViewAligned:
		yawSin, yawCos := math32.Sincos(d.Yaw)
		forward := mgl32.Vec3{yawCos, 0, yawSin}.Normalize()
		right := mgl32.Vec3{-yawSin, 0, yawCos}.Normalize()
		d.Position = d.Position.Add(forward.Mul(v[0])).Add(right.Mul(v[2]))
		d.Position[1] += v[1]
	case common.ModeOffsetViewAlignedWithY:
		forward := d.Forward()
		yawSin, yawCos := math32.Sincos(d.Yaw)
		right := mgl32.Vec3{-yawSin, 0, yawCos}.Normalize()
		up := right.Cross(forward).Normalize()
		d.Position = d.Position.Add(forward.Mul(v[0])).Add(right.Mul(v[2])).Add(up.Mul(v[1]))
	}
}

// Forward is the unit view direction derived from yaw and pitch.
func (d Descriptor) Forward() mgl32.Vec3 {
	yawSin, yawCos := math32.Sincos(d.Yaw)
	pitchSin, pitchCos := math32.Sincos(d.Pitch)
	return mgl32.Vec3{pitchCos * yawCos, pitchSin, pitchCos * yawSin}.Normalize()
}

// ViewMatrix is a right-handed look-to matrix with +Y up.
func (d Descriptor) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(d.Position, d.Position.Add(d.Forward()), mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix is a right-handed perspective projection with clip depth in [-1, 1].
func (d Descriptor) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(d.FovY), d.Aspect, d.Near, d.Far)
}

// ViewProjection is ProjectionMatrix * ViewMatrix.
func (d Descriptor) ViewProjection() mgl32.Mat4 {
	return d.ProjectionMatrix().Mul4(d.ViewMatrix())
}

// Frustum extracts the six culling planes of the camera.
func (d Descriptor) Frustum() common.Frustum {
	return common.ExtractFrustum(d.ViewProjection())
}

// UniformBlock serializes the 288-byte camera uniform: position, view, projection * view,
// transposed view, inverse projection and global gamma, all column-major.
func (d Descriptor) UniformBlock() []byte {
	view := d.ViewMatrix()
	projection := d.ProjectionMatrix()

	buf := make([]byte, UniformSize)
	common.PutVec4(buf[offsetPosition:], d.Position.Vec4(0))
	common.PutMat4(buf[offsetView:], view)
	common.PutMat4(buf[offsetPerspectiveViewProjection:], projection.Mul4(view))
	common.PutMat4(buf[offsetViewTransposed:], view.Transpose())
	common.PutMat4(buf[offsetInversePerspectiveProjection:], projection.Inv())
	common.PutFloat32(buf[offsetGlobalGamma:], d.GlobalGamma)
	return buf
}

// FrustumBlock serializes the 96-byte frustum uniform.
func (d Descriptor) FrustumBlock() []byte {
	return d.Frustum().Marshal()
}
