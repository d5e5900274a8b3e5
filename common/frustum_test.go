package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViewProjection() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func TestExtractFrustumUnitNormals(t *testing.T) {
	f := ExtractFrustum(testViewProjection())
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestExtractFrustumNearFar(t *testing.T) {
	f := ExtractFrustum(testViewProjection())

	nearCenter := mgl32.Vec3{0, 0, 3 - 0.1}
	farCenter := mgl32.Vec3{0, 0, 3 - 100}
	assert.InDelta(t, 0, f.Planes[FrustumNear].SignedDistance(nearCenter), 1e-3)
	assert.InDelta(t, 0, f.Planes[FrustumFar].SignedDistance(farCenter), 1e-2)

	// the near plane faces away from the camera
	assert.Greater(t, f.Planes[FrustumNear].SignedDistance(mgl32.Vec3{}), float32(0))
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := ExtractFrustum(testViewProjection())
	half := mgl32.Vec3{0.5, 0.5, 0.5}

	assert.True(t, f.IntersectsAABB(half.Mul(-1), half))

	behind := mgl32.Vec3{0, 0, 10}
	assert.False(t, f.IntersectsAABB(behind.Sub(half), behind.Add(half)))

	farLeft := mgl32.Vec3{-50, 0, 0}
	assert.False(t, f.IntersectsAABB(farLeft.Sub(half), farLeft.Add(half)))
}

func TestFrustumMarshal(t *testing.T) {
	f := ExtractFrustum(testViewProjection())
	b := f.Marshal()
	require.Len(t, b, 96)

	want := make([]byte, 16)
	PutVec4(want, f.Planes[FrustumNear].Vec4())
	assert.Equal(t, want, b[4*16:5*16])
}
