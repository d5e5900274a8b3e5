package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestFactors_Marshal(t *testing.T) {
	f := Factors{
		Albedo:            [4]float32{0.1, 0.2, 0.3, 0.4},
		Emissive:          [3]float32{1, 0.5, 0.25},
		EmissiveStrength:  3,
		Metallic:          0.7,
		Roughness:         0.2,
		NormalScale:       0.5,
		OcclusionStrength: 0.9,
	}
	buf := f.Marshal()

	assert.Len(t, buf, FactorsSize)
	assert.Equal(t, float32(0.4), readFloat(buf, 12))
	assert.Equal(t, float32(0.25), readFloat(buf, 24))
	assert.Equal(t, float32(3), readFloat(buf, 28))
	assert.Equal(t, float32(0.7), readFloat(buf, 32))
	assert.Equal(t, float32(0.2), readFloat(buf, 36))
	assert.Equal(t, float32(0.5), readFloat(buf, 40))
	assert.Equal(t, float32(0.9), readFloat(buf, 44))
}

func TestDescriptor_DefaultTextures(t *testing.T) {
	d := NewDescriptor("plain")

	albedo, ok := d.Texture(SlotAlbedo).(texture.FromData)
	assert.True(t, ok)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, albedo.Format)

	normal := d.Texture(SlotNormal).(texture.FromData)
	assert.Equal(t, []byte{128, 128, 255, 255}, normal.Pixels)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, normal.Format)

	roughness := d.Texture(SlotRoughness).(texture.FromData)
	assert.Equal(t, wgpu.TextureFormatR8Unorm, roughness.Format)
}

func TestDescriptor_Hash(t *testing.T) {
	a := NewDescriptor("a", WithMetallic(0.5))
	b := NewDescriptor("b", WithMetallic(0.5))
	assert.Equal(t, a.Hash(), b.Hash(), "label does not take part in the hash")

	c := NewDescriptor("a", WithMetallic(0.6))
	assert.NotEqual(t, a.Hash(), c.Hash())

	withTexture := NewDescriptor("a", WithMetallic(0.5), WithTexture(SlotAlbedo, texture.FromFile{Path: "albedo.png", Usage: texture.UsageAlbedo}))
	assert.NotEqual(t, a.Hash(), withTexture.Hash())

	explicitDefault := NewDescriptor("a", WithMetallic(0.5), WithTexture(SlotNormal, SlotNormal.DefaultTexture()))
	assert.Equal(t, a.Hash(), explicitDefault.Hash())
}

func TestDescriptor_ShaderOverride(t *testing.T) {
	unlit := &shader.Descriptor{Label: "unlit", Source: "@vertex fn vs_main() {}"}

	plain := NewDescriptor("a")
	custom := NewDescriptor("a", WithShader(unlit))
	assert.Same(t, unlit, custom.Shader)
	assert.NotEqual(t, plain.Hash(), custom.Hash())

	sameSource := NewDescriptor("b", WithShader(&shader.Descriptor{Label: "unlit", Source: "@vertex fn vs_main() {}"}))
	assert.Equal(t, custom.Hash(), sameSource.Hash())

	assert.Equal(t, plain.Hash(), NewDescriptor("a", WithShader(unlit), WithShader(nil)).Hash())
}

func TestDescriptor_Options(t *testing.T) {
	d := NewDescriptor("m",
		WithAlbedo([4]float32{1, 0, 0, 1}),
		WithRoughness(2),
		WithMetallic(-1),
		WithEmissive([3]float32{0, 1, 0}, 4),
	)
	assert.Equal(t, float32(1), d.Factors.Roughness)
	assert.Equal(t, float32(0), d.Factors.Metallic)
	assert.Equal(t, float32(4), d.Factors.EmissiveStrength)
	assert.Equal(t, float32(1), d.Factors.NormalScale)
}

func TestSlot_Usage(t *testing.T) {
	assert.Equal(t, texture.UsageAlbedo, SlotAlbedo.Usage())
	assert.Equal(t, texture.UsageEmissive, SlotEmissive.Usage())
	assert.True(t, SlotEmissive.Usage().IsSRGB())
	assert.False(t, SlotNormal.Usage().IsSRGB())
}
