package texture

import (
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesPerPixel(t *testing.T) {
	cases := map[wgpu.TextureFormat]uint32{
		wgpu.TextureFormatR8Unorm:        1,
		wgpu.TextureFormatRG8Unorm:       2,
		wgpu.TextureFormatRGBA8Unorm:     4,
		wgpu.TextureFormatRGBA8UnormSrgb: 4,
		wgpu.TextureFormatBGRA8UnormSrgb: 4,
		wgpu.TextureFormatRGBA16Float:    8,
		wgpu.TextureFormatRGBA32Float:    16,
		wgpu.TextureFormatDepth32Float:   4,
	}
	for format, want := range cases {
		got, err := BytesPerPixel(format)
		require.NoError(t, err)
		assert.Equal(t, want, got, "format %v", format)
	}

	_, err := BytesPerPixel(wgpu.TextureFormatRGBA8Snorm)
	assert.ErrorIs(t, err, common.ErrUnsupportedTextureFormat)
}

func TestAlignedBytesPerRow(t *testing.T) {
	assert.Equal(t, uint32(256), AlignedBytesPerRow(1, 4))
	assert.Equal(t, uint32(256), AlignedBytesPerRow(64, 4))
	assert.Equal(t, uint32(512), AlignedBytesPerRow(65, 4))
	assert.Equal(t, uint32(4096), AlignedBytesPerRow(512, 8))
}

func TestMipExtent(t *testing.T) {
	w, h := MipExtent(512, 256, 3)
	assert.Equal(t, uint32(64), w)
	assert.Equal(t, uint32(32), h)

	w, h = MipExtent(4, 2, 5)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
}

func TestMippedByteLength(t *testing.T) {
	size := Size{Width: 4, Height: 4, DepthOrArrayLayers: 6, MipLevels: 3}
	got, err := MippedByteLength(size, wgpu.TextureFormatRGBA16Float)
	require.NoError(t, err)
	// every row of every mip rounds up to 256 bytes: (4 + 2 + 1) rows * 6 layers
	assert.Equal(t, uint64(256*(4+2+1)*6), got)

	got, err = MippedByteLength(Size{Width: 64, Height: 2}, wgpu.TextureFormatRGBA8Unorm)
	require.NoError(t, err)
	assert.Equal(t, uint64(512), got)
}

func TestValidateData(t *testing.T) {
	size := Size{Width: 2, Height: 2, DepthOrArrayLayers: 1, MipLevels: 1}

	aligned, err := ValidateData(make([]byte, 16), size, wgpu.TextureFormatRGBA8Unorm)
	require.NoError(t, err)
	assert.False(t, aligned)

	aligned, err = ValidateData(make([]byte, 512), size, wgpu.TextureFormatRGBA8Unorm)
	require.NoError(t, err)
	assert.True(t, aligned)

	_, err = ValidateData(make([]byte, 15), size, wgpu.TextureFormatRGBA8Unorm)
	assert.ErrorIs(t, err, common.ErrTextureDataSizeMismatch)

	mipped := Size{Width: 2, Height: 2, DepthOrArrayLayers: 1, MipLevels: 2}
	_, err = ValidateData(make([]byte, 20), mipped, wgpu.TextureFormatRGBA8Unorm)
	assert.ErrorIs(t, err, common.ErrTextureDataSizeMismatch)

	aligned, err = ValidateData(make([]byte, 256*3), mipped, wgpu.TextureFormatRGBA8Unorm)
	require.NoError(t, err)
	assert.True(t, aligned)
}

func TestReadbackChunks(t *testing.T) {
	size := Size{Width: 64, Height: 64, DepthOrArrayLayers: 6, MipLevels: 2}
	// mip 0 layer: 64*8=512 bytes/row -> 32 KiB; mip 1 layer: 256 bytes/row * 32 -> 8 KiB
	chunks, err := ReadbackChunks(size, wgpu.TextureFormatRGBA16Float, 64<<10)
	require.NoError(t, err)

	require.Len(t, chunks, 4)
	assert.Equal(t, Chunk{MipLevel: 0, FirstLayer: 0, LayerCount: 2, Width: 64, Height: 64, BytesPerRow: 512}, chunks[0])
	assert.Equal(t, Chunk{MipLevel: 0, FirstLayer: 2, LayerCount: 2, Width: 64, Height: 64, BytesPerRow: 512}, chunks[1])
	assert.Equal(t, Chunk{MipLevel: 0, FirstLayer: 4, LayerCount: 2, Width: 64, Height: 64, BytesPerRow: 512}, chunks[2])
	assert.Equal(t, Chunk{MipLevel: 1, FirstLayer: 0, LayerCount: 6, Width: 32, Height: 32, BytesPerRow: 256}, chunks[3])

	var total uint64
	for _, c := range chunks {
		assert.LessOrEqual(t, c.ByteLength(), uint64(64<<10))
		total += c.ByteLength()
	}
	want, _ := MippedByteLength(size, wgpu.TextureFormatRGBA16Float)
	assert.Equal(t, want, total)
}

func TestReadbackChunksOversizedLayer(t *testing.T) {
	chunks, err := ReadbackChunks(Size{Width: 256, Height: 256, DepthOrArrayLayers: 2}, wgpu.TextureFormatRGBA8Unorm, 1024)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, uint32(1), chunks[0].LayerCount)
	assert.Equal(t, uint32(1), chunks[1].FirstLayer)
}
