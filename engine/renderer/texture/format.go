package texture

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// RowAlignment is the byte alignment required for bytes-per-row in buffer/texture copies.
const RowAlignment = 256

// MaxReadbackChunk is the largest staging buffer ReadAsBinary allocates at once.
const MaxReadbackChunk = 256 << 20

var bytesPerPixel = map[wgpu.TextureFormat]uint32{
	wgpu.TextureFormatR8Unorm:        1,
	wgpu.TextureFormatRG8Unorm:       2,
	wgpu.TextureFormatRGBA8Unorm:     4,
	wgpu.TextureFormatRGBA8UnormSrgb: 4,
	wgpu.TextureFormatBGRA8Unorm:     4,
	wgpu.TextureFormatBGRA8UnormSrgb: 4,
	wgpu.TextureFormatR16Float:       2,
	wgpu.TextureFormatRG16Float:      4,
	wgpu.TextureFormatRGBA16Float:    8,
	wgpu.TextureFormatR32Float:       4,
	wgpu.TextureFormatRG32Float:      8,
	wgpu.TextureFormatRGBA32Float:    16,
	wgpu.TextureFormatDepth32Float:   4,
}

// BytesPerPixel returns the texel size of format.
//
// Parameters:
//   - format: the texture format
//
// Returns:
//   - uint32: bytes per texel
//   - error: ErrUnsupportedTextureFormat when the format is not in the table
func BytesPerPixel(format wgpu.TextureFormat) (uint32, error) {
	bpp, ok := bytesPerPixel[format]
	if !ok {
		return 0, fmt.Errorf("%w: %v", common.ErrUnsupportedTextureFormat, format)
	}
	return bpp, nil
}

// AlignedBytesPerRow rounds width*bpp up to the next multiple of 256.
func AlignedBytesPerRow(width, bpp uint32) uint32 {
	return common.AlignUp(width*bpp, RowAlignment)
}

// MipExtent returns the width and height of the given mip level, never smaller than 1x1.
func MipExtent(width, height, level uint32) (uint32, uint32) {
	return max(width>>level, 1), max(height>>level, 1)
}

// MippedByteLength is the size of a row-aligned upload or readback of every mip and layer.
//
// Parameters:
//   - size: the texture size, MipLevels of 0 counts as one level
//   - format: the texture format
//
// Returns:
//   - uint64: sum over mips of aligned_row_bytes * height * layers
//   - error: ErrUnsupportedTextureFormat for unknown formats
func MippedByteLength(size Size, format wgpu.TextureFormat) (uint64, error) {
	bpp, err := BytesPerPixel(format)
	if err != nil {
		return 0, err
	}
	var total uint64
	for level := uint32(0); level < size.mipCount(); level++ {
		w, h := MipExtent(size.Width, size.Height, level)
		total += uint64(AlignedBytesPerRow(w, bpp)) * uint64(h) * uint64(size.layers())
	}
	return total, nil
}

// ValidateData checks pixels against the size and format. A single-mip upload may be
// tightly packed (w*h*layers*bpp); any upload may use the row-aligned layout of
// MippedByteLength.
//
// Returns:
//   - bool: true when pixels use the row-aligned layout
//   - error: ErrTextureDataSizeMismatch or ErrUnsupportedTextureFormat
func ValidateData(pixels []byte, size Size, format wgpu.TextureFormat) (bool, error) {
	bpp, err := BytesPerPixel(format)
	if err != nil {
		return false, err
	}

	if size.mipCount() == 1 {
		tight := uint64(size.Width) * uint64(size.Height) * uint64(size.layers()) * uint64(bpp)
		if uint64(len(pixels)) == tight {
			return false, nil
		}
	}

	aligned, _ := MippedByteLength(size, format)
	if uint64(len(pixels)) == aligned {
		return true, nil
	}

	return false, fmt.Errorf("%w: got %d bytes for %dx%dx%d %v with %d mips",
		common.ErrTextureDataSizeMismatch, len(pixels), size.Width, size.Height, size.layers(), format, size.mipCount())
}

// FormatForUsage picks the 8-bit RGBA format for decoded images; only colour data is sRGB.
func FormatForUsage(usage Usage) wgpu.TextureFormat {
	if usage.IsSRGB() {
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
	return wgpu.TextureFormatRGBA8Unorm
}

// Chunk is one staging copy of a readback: a mip level and a contiguous layer range.
type Chunk struct {
	MipLevel    uint32
	FirstLayer  uint32
	LayerCount  uint32
	Width       uint32
	Height      uint32
	BytesPerRow uint32
}

// ByteLength is the staging buffer size for the chunk.
func (c Chunk) ByteLength() uint64 {
	return uint64(c.BytesPerRow) * uint64(c.Height) * uint64(c.LayerCount)
}

// ReadbackChunks partitions a texture into copies of at most maxBytes each, mip-major and
// layer-minor. A single layer larger than maxBytes still gets its own chunk.
func ReadbackChunks(size Size, format wgpu.TextureFormat, maxBytes uint64) ([]Chunk, error) {
	bpp, err := BytesPerPixel(format)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for level := uint32(0); level < size.mipCount(); level++ {
		w, h := MipExtent(size.Width, size.Height, level)
		row := AlignedBytesPerRow(w, bpp)
		perLayer := uint64(row) * uint64(h)
		per := uint32(max(maxBytes/perLayer, 1))

		for first := uint32(0); first < size.layers(); first += per {
			chunks = append(chunks, Chunk{
				MipLevel:    level,
				FirstLayer:  first,
				LayerCount:  min(per, size.layers()-first),
				Width:       w,
				Height:      h,
				BytesPerRow: row,
			})
		}
	}
	return chunks, nil
}
