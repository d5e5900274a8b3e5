package ibl

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/environment"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// sourceSampler clamps lookups so the equirectangular seam does not wrap vertically.
var sourceSampler = &texture.SamplerOptions{
	AddressModeU: wgpu.AddressModeClampToEdge,
	AddressModeV: wgpu.AddressModeClampToEdge,
	AddressModeW: wgpu.AddressModeClampToEdge,
}

// SourceData resolves the equirectangular source of an environment into RGBA32Float texels.
//
// Parameters:
//   - desc: the environment to resolve
//
// Returns:
//   - texture.FromData: the single-mip RGBA32Float source
//   - error: ErrIo or ErrImageDecode for file sources, ErrTextureDataSizeMismatch for raw data
func SourceData(desc environment.Descriptor) (texture.FromData, error) {
	if desc.Path != "" {
		data, err := texture.DecodeFile(desc.Path, texture.UsageGeneric, sourceSampler)
		if err != nil {
			return texture.FromData{}, err
		}
		return ToRGBA32F(data)
	}

	data := texture.FromData{
		Name:   desc.Label(),
		Pixels: desc.Data,
		Size: texture.Size{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
			MipLevels:          1,
		},
		Format:  wgpu.TextureFormatRGBA32Float,
		Usage:   texture.UsageGeneric,
		Sampler: sourceSampler,
	}
	if _, err := texture.ValidateData(data.Pixels, data.Size, data.Format); err != nil {
		return texture.FromData{}, fmt.Errorf("environment %s: %w", desc.Label(), err)
	}
	return data, nil
}

// ToRGBA32F widens tightly packed 8-bit RGBA texels to RGBA32Float. sRGB data is
// linearized. RGBA32Float input is returned unchanged.
func ToRGBA32F(data texture.FromData) (texture.FromData, error) {
	var linearize bool
	switch data.Format {
	case wgpu.TextureFormatRGBA32Float:
		return data, nil
	case wgpu.TextureFormatRGBA8Unorm:
	case wgpu.TextureFormatRGBA8UnormSrgb:
		linearize = true
	default:
		return texture.FromData{}, fmt.Errorf("%w: environment source %q has format %v", common.ErrUnsupportedTextureFormat, data.Name, data.Format)
	}

	out := make([]byte, len(data.Pixels)*4)
	for i, v := range data.Pixels {
		f := float32(v) / 255
		if linearize && i%4 != 3 {
			f = srgbToLinear(f)
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}

	data.Pixels = out
	data.Format = wgpu.TextureFormatRGBA32Float
	return data, nil
}

func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}
