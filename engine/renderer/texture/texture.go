package texture

import (
	"errors"
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// texture is the implementation of the Texture interface.
type texture struct {
	label   string
	tex     *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	size    Size
	format  wgpu.TextureFormat
	cube    bool
	owned   bool
}

// Texture is a realized GPU texture with its default view and sampler.
type Texture interface {
	// Label returns the debug label of the texture.
	Label() string

	// Texture returns the underlying GPU texture.
	Texture() *wgpu.Texture

	// View returns the default view covering every mip and layer.
	View() *wgpu.TextureView

	// Sampler returns the sampler created for this texture.
	Sampler() *wgpu.Sampler

	// Size returns the extent, layer count and mip count.
	Size() Size

	// Format returns the texel format.
	Format() wgpu.TextureFormat

	// IsCube reports whether the default view is a cube view.
	IsCube() bool

	// ReadAsBinary copies every mip and layer back to the CPU.
	// The result uses the row-aligned layout accepted by FromData, mip-major and layer-minor,
	// in staging copies of at most MaxReadbackChunk bytes. It blocks until the GPU is done.
	//
	// Parameters:
	//   - device: the device that owns the texture
	//   - queue: the queue to submit the copies on
	//
	// Returns:
	//   - []byte: MippedByteLength(Size(), Format()) bytes
	//   - error: if a staging buffer could not be created or mapped
	ReadAsBinary(device *wgpu.Device, queue *wgpu.Queue) ([]byte, error)

	// Release frees the texture, its view and its sampler. Handles wrapped from a
	// Custom descriptor stay with their owner and are only dropped.
	Release()
}

var _ Texture = &texture{}

// New realizes a texture descriptor. File and encoded descriptors are decoded first,
// Custom descriptors are wrapped without copying.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for the upload
//   - desc: the texture to realize
//
// Returns:
//   - Texture: the realized texture
//   - error: decode, validation or GPU failure
func New(device *wgpu.Device, queue *wgpu.Queue, desc Descriptor) (Texture, error) {
	if c, ok := desc.(Custom); ok {
		return &texture{
			label:   c.Name,
			tex:     c.Texture,
			view:    c.View,
			sampler: c.Sampler,
			size:    c.Size,
			format:  c.Format,
			cube:    c.Size.DepthOrArrayLayers == 6,
		}, nil
	}

	data, err := Resolve(desc)
	if err != nil {
		return nil, err
	}
	return create(device, queue, data, 0)
}

// NewCube creates a six-layer cube texture. When pixels is nil the texture is left
// uninitialized, as needed for compute pass targets.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for the upload
//   - name: debug label
//   - faceSize: width and height of every face
//   - mipLevels: number of mips, at least 1
//   - format: texel format
//   - pixels: row-aligned data for every mip and face, or nil
//   - extraUsage: usage flags added to TEXTURE_BINDING | COPY_DST | COPY_SRC
//
// Returns:
//   - Texture: the cube texture with a Cube view
//   - error: validation or GPU failure
func NewCube(device *wgpu.Device, queue *wgpu.Queue, name string, faceSize, mipLevels uint32, format wgpu.TextureFormat, pixels []byte, extraUsage wgpu.TextureUsage) (Texture, error) {
	return create(device, queue, FromData{
		Name:   name,
		Pixels: pixels,
		Size: Size{
			Width:              faceSize,
			Height:             faceSize,
			DepthOrArrayLayers: 6,
			MipLevels:          max(mipLevels, 1),
		},
		Format: format,
		Cube:   true,
	}, extraUsage)
}

// NewDepth creates a single-mip Depth32Float render target that can also be sampled.
func NewDepth(device *wgpu.Device, name string, width, height uint32) (Texture, error) {
	return newDepth(device, name, width, height, &SamplerOptions{
		MipmapFilter: common.Ptr(wgpu.MipmapFilterModeNearest),
	})
}

// NewDepthComparison is NewDepth with a comparison sampler for shadow map lookups.
func NewDepthComparison(device *wgpu.Device, name string, width, height uint32) (Texture, error) {
	return newDepth(device, name, width, height, &SamplerOptions{
		MipmapFilter: common.Ptr(wgpu.MipmapFilterModeNearest),
		Compare:      wgpu.CompareFunctionLessEqual,
	})
}

func newDepth(device *wgpu.Device, name string, width, height uint32, sampler *SamplerOptions) (Texture, error) {
	size := Size{Width: max(width, 1), Height: max(height, 1), DepthOrArrayLayers: 1, MipLevels: 1}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Size:          size.Extent(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture %q: %w", name, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create depth texture view %q: %w", name, err)
	}

	samp, err := device.CreateSampler(sampler.descriptor(name))
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("failed to create depth sampler %q: %w", name, err)
	}

	return &texture{
		label:   name,
		tex:     tex,
		view:    view,
		sampler: samp,
		size:    size,
		format:  wgpu.TextureFormatDepth32Float,
		owned:   true,
	}, nil
}

func create(device *wgpu.Device, queue *wgpu.Queue, d FromData, extraUsage wgpu.TextureUsage) (Texture, error) {
	size := d.Size
	if d.Cube {
		size.DepthOrArrayLayers = 6
	}
	size.MipLevels = size.mipCount()

	aligned := false
	if d.Pixels != nil {
		var err error
		if aligned, err = ValidateData(d.Pixels, size, d.Format); err != nil {
			return nil, fmt.Errorf("texture %q: %w", d.Name, err)
		}
	} else if _, err := BytesPerPixel(d.Format); err != nil {
		return nil, fmt.Errorf("texture %q: %w", d.Name, err)
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         d.Name,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc | extraUsage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size.Extent(),
		Format:        d.Format,
		MipLevelCount: size.MipLevels,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", d.Name, err)
	}

	if d.Pixels != nil {
		upload(queue, tex, d.Pixels, size, d.Format, aligned)
	}

	dimension := wgpu.TextureViewDimension2D
	switch {
	case d.Cube:
		dimension = wgpu.TextureViewDimensionCube
	case size.layers() > 1:
		dimension = wgpu.TextureViewDimension2DArray
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           d.Name + " View",
		Format:          d.Format,
		Dimension:       dimension,
		BaseMipLevel:    0,
		MipLevelCount:   size.MipLevels,
		BaseArrayLayer:  0,
		ArrayLayerCount: size.layers(),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create texture view %q: %w", d.Name, err)
	}

	samp, err := device.CreateSampler(d.Sampler.descriptor(d.Name))
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("failed to create sampler %q: %w", d.Name, err)
	}

	return &texture{
		label:   d.Name,
		tex:     tex,
		view:    view,
		sampler: samp,
		size:    size,
		format:  d.Format,
		cube:    d.Cube,
		owned:   true,
	}, nil
}

// upload writes pixels to tex. Tightly packed data goes in one copy; aligned data is
// written region by region for every (mip, layer).
func upload(queue *wgpu.Queue, tex *wgpu.Texture, pixels []byte, size Size, format wgpu.TextureFormat, aligned bool) {
	bpp, _ := BytesPerPixel(format)

	if !aligned {
		queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  size.Width * bpp,
				RowsPerImage: size.Height,
			},
			&wgpu.Extent3D{
				Width:              size.Width,
				Height:             size.Height,
				DepthOrArrayLayers: size.layers(),
			},
		)
		return
	}

	offset := uint64(0)
	for level := uint32(0); level < size.mipCount(); level++ {
		w, h := MipExtent(size.Width, size.Height, level)
		row := AlignedBytesPerRow(w, bpp)
		region := uint64(row) * uint64(h)

		for layer := uint32(0); layer < size.layers(); layer++ {
			queue.WriteTexture(
				&wgpu.ImageCopyTexture{
					Texture:  tex,
					MipLevel: level,
					Origin:   wgpu.Origin3D{Z: layer},
					Aspect:   wgpu.TextureAspectAll,
				},
				pixels[offset:offset+region],
				&wgpu.TextureDataLayout{
					Offset:       0,
					BytesPerRow:  row,
					RowsPerImage: h,
				},
				&wgpu.Extent3D{
					Width:              w,
					Height:             h,
					DepthOrArrayLayers: 1,
				},
			)
			offset += region
		}
	}
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Texture() *wgpu.Texture {
	return t.tex
}

func (t *texture) View() *wgpu.TextureView {
	return t.view
}

func (t *texture) Sampler() *wgpu.Sampler {
	return t.sampler
}

func (t *texture) Size() Size {
	return t.size
}

func (t *texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *texture) IsCube() bool {
	return t.cube
}

func (t *texture) ReadAsBinary(device *wgpu.Device, queue *wgpu.Queue) ([]byte, error) {
	chunks, err := ReadbackChunks(t.size, t.format, MaxReadbackChunk)
	if err != nil {
		return nil, err
	}
	total, _ := MippedByteLength(t.size, t.format)
	out := make([]byte, 0, total)

	for _, c := range chunks {
		data, err := t.readChunk(device, queue, c)
		if err != nil {
			return nil, fmt.Errorf("reading back %q mip %d layers %d+%d: %w", t.label, c.MipLevel, c.FirstLayer, c.LayerCount, err)
		}
		out = append(out, data...)
	}
	return out, nil
}

func (t *texture) readChunk(device *wgpu.Device, queue *wgpu.Queue, c Chunk) ([]byte, error) {
	size := c.ByteLength()
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: t.label + " Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	defer buf.Release()

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: c.MipLevel,
			Origin:   wgpu.Origin3D{Z: c.FirstLayer},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  c.BytesPerRow,
				RowsPerImage: c.Height,
			},
		},
		&wgpu.Extent3D{
			Width:              c.Width,
			Height:             c.Height,
			DepthOrArrayLayers: c.LayerCount,
		},
	)
	if err != nil {
		encoder.Release()
		return nil, err
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, err
	}
	queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	mapped := false
	if err := buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		mapped = s == wgpu.BufferMapAsyncStatusSuccess
	}); err != nil {
		return nil, err
	}
	device.Poll(true, nil)
	if !mapped {
		return nil, errors.New("readback buffer could not be mapped")
	}

	data := make([]byte, size)
	copy(data, buf.GetMappedRange(0, uint(size)))
	buf.Unmap()
	return data, nil
}

func (t *texture) Release() {
	if !t.owned {
		t.sampler, t.view, t.tex = nil, nil, nil
		return
	}
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}
