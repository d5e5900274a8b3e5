package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp limits v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AlignUp rounds v up to the next multiple of align. align must be greater than zero.
func AlignUp[T constraints.Unsigned](v, align T) T {
	return (v + align - 1) / align * align
}

// ComposeTRS builds a column-major model matrix as Translation * Rotation * Scale.
//
// Parameters:
//   - position: translation in world space
//   - rotation: orientation quaternion, normalized before use
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func ComposeTRS(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position[0], position[1], position[2])
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(r).Mul4(s)
}

// DecomposeTRS splits an affine matrix into translation, rotation and scale.
// A negative determinant is folded into the X scale. Shear is discarded.
func DecomposeTRS(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	position := m.Col(3).Vec3()
	scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if m.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}

	var r mgl32.Mat4
	for c := 0; c < 3; c++ {
		if scale[c] == 0 {
			return position, mgl32.QuatIdent(), scale
		}
		r.SetCol(c, m.Col(c).Vec3().Mul(1/scale[c]).Vec4(0))
	}
	r.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return position, mgl32.Mat4ToQuat(r).Normalize(), scale
}

// PutFloat32 writes f little-endian at dst[0:4].
func PutFloat32(dst []byte, f float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(f))
}

// PutVec3 writes v as three little-endian floats (12 bytes). Callers handle vec4 padding.
func PutVec3(dst []byte, v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		PutFloat32(dst[i*4:], v[i])
	}
}

// PutVec4 writes v as four little-endian floats (16 bytes).
func PutVec4(dst []byte, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		PutFloat32(dst[i*4:], v[i])
	}
}

// PutMat4 writes m column-major as sixteen little-endian floats (64 bytes).
func PutMat4(dst []byte, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		PutFloat32(dst[i*4:], m[i])
	}
}

// TransformAABB returns the axis-aligned bounds of the box (min, max) after applying m.
func TransformAABB(m mgl32.Mat4, min, max mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	outMin := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	outMax := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, c := range AABBCorners(min, max) {
		p := m.Mul4x1(c.Vec4(1)).Vec3()
		for i := 0; i < 3; i++ {
			outMin[i] = float32(math.Min(float64(outMin[i]), float64(p[i])))
			outMax[i] = float32(math.Max(float64(outMax[i]), float64(p[i])))
		}
	}
	return outMin, outMax
}

// AABBCorners lists the eight corners of the box spanned by min and max.
func AABBCorners(min, max mgl32.Vec3) [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{min[0], max[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{min[0], max[1], max[2]},
		{max[0], max[1], max[2]},
	}
}
