package texture

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// radianceMagic starts every Radiance RGBE file.
const radianceMagic = "#?"

// Resolve turns any CPU-side descriptor into raw texels. FromData is returned as is.
//
// Parameters:
//   - desc: FromFile, FromEncoded or FromData
//
// Returns:
//   - FromData: decoded texels ready for upload
//   - error: ErrIo, ErrImageDecode, or an error for Custom descriptors
func Resolve(desc Descriptor) (FromData, error) {
	switch d := desc.(type) {
	case FromData:
		return d, nil
	case FromFile:
		return DecodeFile(d.Path, d.Usage, d.Sampler)
	case FromEncoded:
		data, err := Decode(bytes.NewReader(d.Data), d.Name, d.Usage)
		if err != nil {
			return FromData{}, err
		}
		data.Sampler = d.Sampler
		return data, nil
	default:
		return FromData{}, fmt.Errorf("texture %q has no CPU-side data", desc.Label())
	}
}

// DecodeFile reads and decodes an image file.
func DecodeFile(path string, usage Usage, sampler *SamplerOptions) (FromData, error) {
	file, err := os.Open(path)
	if err != nil {
		return FromData{}, fmt.Errorf("%w: opening texture %s: %v", common.ErrIo, path, err)
	}
	defer file.Close()

	data, err := Decode(file, filepath.Base(path), usage)
	if err != nil {
		return FromData{}, err
	}
	data.Sampler = sampler
	return data, nil
}

// Decode decodes an encoded image. 8-bit images become RGBA8 (sRGB for colour usages),
// Radiance HDR images become RGBA32Float with alpha 1.
//
// Parameters:
//   - r: the encoded image
//   - name: label of the resulting texture
//   - usage: what the texture holds
//
// Returns:
//   - FromData: tightly packed single-mip texels
//   - error: ErrImageDecode on malformed input
func Decode(r io.Reader, name string, usage Usage) (FromData, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(len(radianceMagic)); err == nil && string(magic) == radianceMagic {
		return decodeRadiance(br, name, usage)
	}

	img, format, err := image.Decode(br)
	if err != nil {
		return FromData{}, fmt.Errorf("%w: %s: %v", common.ErrImageDecode, name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	if strings.TrimSpace(name) == "" {
		name = format + " image"
	}

	return FromData{
		Name:   name,
		Pixels: rgba.Pix,
		Size: Size{
			Width:              uint32(bounds.Dx()),
			Height:             uint32(bounds.Dy()),
			DepthOrArrayLayers: 1,
			MipLevels:          1,
		},
		Format: FormatForUsage(usage),
		Usage:  usage,
	}, nil
}

func decodeRadiance(r io.Reader, name string, usage Usage) (FromData, error) {
	img, err := rgbe.Decode(r)
	if err != nil {
		return FromData{}, fmt.Errorf("%w: %s: %v", common.ErrImageDecode, name, err)
	}
	himg, ok := img.(hdr.Image)
	if !ok {
		return FromData{}, fmt.Errorf("%w: %s: radiance decoder returned %T", common.ErrImageDecode, name, img)
	}

	bounds := himg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, w*h*16)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := himg.HDRAt(x, y).HDRRGBA()
			for _, c := range [4]float64{cr, cg, cb, 1} {
				binary.LittleEndian.PutUint32(pixels[i:], math.Float32bits(float32(c)))
				i += 4
			}
		}
	}

	return FromData{
		Name:   name,
		Pixels: pixels,
		Size: Size{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
			MipLevels:          1,
		},
		Format: wgpu.TextureFormatRGBA32Float,
		Usage:  usage,
	}, nil
}
