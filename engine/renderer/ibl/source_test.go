package ibl

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/environment"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(pixels []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(pixels[i*4:]))
}

func TestToRGBA32F_Unorm(t *testing.T) {
	data, err := ToRGBA32F(texture.FromData{
		Pixels: []byte{0, 255, 51, 255},
		Size:   texture.Size{Width: 1, Height: 1},
		Format: wgpu.TextureFormatRGBA8Unorm,
	})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, data.Format)
	require.Len(t, data.Pixels, 16)
	assert.InDelta(t, 0.0, floatAt(data.Pixels, 0), 1e-6)
	assert.InDelta(t, 1.0, floatAt(data.Pixels, 1), 1e-6)
	assert.InDelta(t, 0.2, floatAt(data.Pixels, 2), 1e-6)
	assert.InDelta(t, 1.0, floatAt(data.Pixels, 3), 1e-6)
}

func TestToRGBA32F_SRGBLinearizesColourOnly(t *testing.T) {
	data, err := ToRGBA32F(texture.FromData{
		Pixels: []byte{128, 128, 128, 128},
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.2158, floatAt(data.Pixels, 0), 1e-3)
	assert.InDelta(t, 128.0/255, floatAt(data.Pixels, 3), 1e-6)
}

func TestToRGBA32F_Unsupported(t *testing.T) {
	_, err := ToRGBA32F(texture.FromData{Format: wgpu.TextureFormatR8Unorm})
	assert.ErrorIs(t, err, common.ErrUnsupportedTextureFormat)
}

func TestSourceData_Raw(t *testing.T) {
	desc := environment.Descriptor{Data: make([]byte, 4*2*16), Width: 4, Height: 2}
	data, err := SourceData(desc)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, data.Format)
	assert.Equal(t, uint32(4), data.Size.Width)
	assert.Equal(t, wgpu.AddressModeClampToEdge, data.Sampler.AddressModeU)

	desc.Data = desc.Data[:10]
	_, err = SourceData(desc)
	assert.ErrorIs(t, err, common.ErrTextureDataSizeMismatch)
}

func TestSourceData_File(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "sky.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	data, err := SourceData(environment.FromFile(path))
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, data.Format)
	require.Len(t, data.Pixels, 2*16)
	assert.InDelta(t, 1.0, floatAt(data.Pixels, 0), 1e-6)
	assert.InDelta(t, 1.0, floatAt(data.Pixels, 6), 1e-6)

	_, err = SourceData(environment.FromFile(filepath.Join(t.TempDir(), "missing.hdr")))
	assert.ErrorIs(t, err, common.ErrIo)
}
