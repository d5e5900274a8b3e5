package texture

import (
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestUsageSRGB(t *testing.T) {
	assert.True(t, UsageAlbedo.IsSRGB())
	assert.True(t, UsageEmissive.IsSRGB())
	assert.False(t, UsageNormal.IsSRGB())
	assert.False(t, UsageRoughness.IsSRGB())

	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, FormatForUsage(UsageAlbedo))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, FormatForUsage(UsageNormal))
}

func TestUniformTextures(t *testing.T) {
	c := UniformColor([4]uint8{255, 0, 0, 255}, UsageAlbedo)
	assert.Equal(t, []byte{255, 0, 0, 255}, c.Pixels)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, c.Format)
	assert.Equal(t, uint32(1), c.Size.Width)

	l := UniformLuma(128, UsageRoughness)
	assert.Equal(t, []byte{128}, l.Pixels)
	assert.Equal(t, wgpu.TextureFormatR8Unorm, l.Format)

	assert.NotEqual(t, Black().Hash(), White().Hash())
}

func TestDescriptorHash(t *testing.T) {
	a := FromFile{Path: "a.png", Usage: UsageAlbedo}
	assert.Equal(t, a.Hash(), FromFile{Path: "a.png", Usage: UsageAlbedo}.Hash())
	assert.NotEqual(t, a.Hash(), FromFile{Path: "a.png", Usage: UsageNormal}.Hash())
	assert.NotEqual(t, a.Hash(), FromFile{Path: "a.png", Usage: UsageAlbedo, Sampler: &SamplerOptions{AddressModeU: wgpu.AddressModeClampToEdge}}.Hash())

	d1 := FromData{Name: "x", Pixels: []byte{1, 2, 3, 4}, Size: Size{Width: 1, Height: 1}, Format: wgpu.TextureFormatRGBA8Unorm}
	d2 := d1
	d2.Pixels = []byte{1, 2, 3, 5}
	assert.NotEqual(t, d1.Hash(), d2.Hash())

	e := FromEncoded{Name: "x", Data: []byte{1, 2, 3, 4}}
	assert.NotEqual(t, d1.Hash(), e.Hash())
}

func TestSamplerDefaults(t *testing.T) {
	var o *SamplerOptions
	d := o.descriptor("t")
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, d.MagFilter)
	assert.Equal(t, float32(32), d.LodMaxClamp)
	assert.Equal(t, uint16(1), d.MaxAnisotropy)

	d = (&SamplerOptions{AddressModeV: wgpu.AddressModeClampToEdge}).descriptor("t")
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeV)
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeU)
}

func TestSamplerExplicitNearest(t *testing.T) {
	o := &SamplerOptions{
		MagFilter:    common.Ptr(wgpu.FilterModeNearest),
		MinFilter:    common.Ptr(wgpu.FilterModeNearest),
		MipmapFilter: common.Ptr(wgpu.MipmapFilterModeNearest),
	}
	d := o.descriptor("t")
	assert.Equal(t, wgpu.FilterModeNearest, d.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, d.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, d.MipmapFilter)

	linear := FromFile{Path: "a.png", Usage: UsageAlbedo}
	nearest := FromFile{Path: "a.png", Usage: UsageAlbedo, Sampler: o}
	assert.NotEqual(t, linear.Hash(), nearest.Hash())
	assert.Equal(t, wgpu.MipmapFilterModeNearest, (&SamplerOptions{MipmapFilter: common.Ptr(wgpu.MipmapFilterModeNearest)}).descriptor("depth").MipmapFilter)
}
