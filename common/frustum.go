package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FrustumBlockSize is the byte size of the frustum uniform: six vec4f planes.
const FrustumBlockSize = 6 * 16

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the signed distance term.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance evaluates the plane equation at p.
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Vec4 returns the plane as (normal.xyz, distance).
func (p Plane) Vec4() mgl32.Vec4 {
	return p.Normal.Vec4(p.Distance)
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices in buffer order.
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum derives the six normalized frustum planes from a combined
// projection * view matrix using row combinations of m:
// left = w+x, right = w-x, bottom = w+y, top = w-y, near = w+z, far = w-z.
//
// Parameters:
//   - m: the combined projection-view matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with unit-length plane normals
func ExtractFrustum(m mgl32.Mat4) Frustum {
	rx, ry, rz, rw := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	rows := [6]mgl32.Vec4{
		rw.Add(rx),
		rw.Sub(rx),
		rw.Add(ry),
		rw.Sub(ry),
		rw.Add(rz),
		rw.Sub(rz),
	}

	var f Frustum
	for i, r := range rows {
		f.Planes[i] = normalizePlane(r)
	}
	return f
}

func normalizePlane(r mgl32.Vec4) Plane {
	p := Plane{Normal: r.Vec3(), Distance: r[3]}
	length := p.Normal.Len()
	if length > 0 {
		p.Normal = p.Normal.Mul(1 / length)
		p.Distance /= length
	}
	return p
}

// IntersectsAABB reports whether the box may be visible: for every plane at least
// one corner lies on the positive side. Boxes fully behind any plane are culled.
func (f Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	corners := AABBCorners(min, max)
	for _, p := range f.Planes {
		inside := false
		for _, c := range corners {
			if p.SignedDistance(c) >= 0 {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	return true
}

// Marshal serializes the planes as 96 bytes in left, right, bottom, top, near, far order.
func (f Frustum) Marshal() []byte {
	buf := make([]byte, FrustumBlockSize)
	for i, p := range f.Planes {
		PutVec4(buf[i*16:], p.Vec4())
	}
	return buf
}
