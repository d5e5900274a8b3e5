package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestNewDescriptor_Defaults(t *testing.T) {
	d := NewDescriptor("lamp", LightTypePoint)

	assert.Equal(t, "lamp", d.Label)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, d.Color)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, d.Direction)
	assert.Equal(t, float32(1), d.Intensity)
	assert.True(t, d.Enabled)
	assert.Greater(t, d.InnerCone, d.OuterCone)
}

func TestOptions(t *testing.T) {
	d := Spot("flashlight", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, -4},
		WithSpotCone(30, 20),
		WithRange(-5),
		WithIntensity(8),
		WithColor(mgl32.Vec3{1, 0.5, 0}),
	)

	assert.Equal(t, LightTypeSpot, d.Type)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, d.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, d.Direction)
	assert.Equal(t, float32(0), d.Range)
	assert.InDelta(t, math.Cos(30*math.Pi/180), d.InnerCone, 1e-6)
	assert.Equal(t, d.InnerCone, d.OuterCone, "outer cone is never narrower than the inner cone")

	kept := Directional("sun", mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, kept.Direction)
}

func TestMarshalLights(t *testing.T) {
	lights := []Descriptor{
		Point("a", mgl32.Vec3{1, 2, 3}, WithIntensity(5), WithRange(10)),
		Directional("sun", mgl32.Vec3{0, -1, 0}, WithColor(mgl32.Vec3{1, 0.9, 0.8})),
		Point("b", mgl32.Vec3{4, 5, 6}),
		Point("off", mgl32.Vec3{}, WithEnabled(false)),
		Spot("s", mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, -1, 0}, WithSpotCone(10, 20)),
	}
	g := MarshalLights(lights)

	assert.Equal(t, [3]uint32{2, 1, 1}, g.Counts)
	require.Len(t, g.Point, 2*PointSize)
	require.Len(t, g.Directional, DirectionalSize)
	require.Len(t, g.Spot, SpotSize)

	assert.Equal(t, float32(3), readFloat(g.Point, 8))
	assert.Equal(t, float32(5), readFloat(g.Point, 12))
	assert.Equal(t, float32(10), readFloat(g.Point, 28))
	assert.Equal(t, float32(4), readFloat(g.Point, PointSize))

	assert.Equal(t, float32(-1), readFloat(g.Directional, 4))
	assert.Equal(t, float32(0.8), readFloat(g.Directional, 24))

	assert.Equal(t, float32(3), readFloat(g.Spot, 4))
	assert.Equal(t, float32(-1), readFloat(g.Spot, 20))
	assert.InDelta(t, math.Cos(10*math.Pi/180), readFloat(g.Spot, 44), 1e-6)
	assert.InDelta(t, math.Cos(20*math.Pi/180), readFloat(g.Spot, 48), 1e-6)

	counts := g.MarshalCounts()
	require.Len(t, counts, CountsSize)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(counts[0:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(counts[8:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(counts[12:]))
}

func TestMarshalLights_Empty(t *testing.T) {
	g := MarshalLights(nil)
	assert.Equal(t, [3]uint32{}, g.Counts)
	assert.Empty(t, g.Point)
	assert.Empty(t, g.Directional)
	assert.Empty(t, g.Spot)
}

func TestLightType_String(t *testing.T) {
	assert.Equal(t, "point", LightTypePoint.String())
	assert.Equal(t, "directional", LightTypeDirectional.String())
	assert.Equal(t, "spot", LightTypeSpot.String())
}
