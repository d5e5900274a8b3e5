package texture

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Usage describes what a texture holds. Only colour data is stored as sRGB.
type Usage int

const (
	UsageGeneric Usage = iota
	UsageAlbedo
	UsageNormal
	UsageMetallic
	UsageRoughness
	UsageOcclusion
	UsageEmissive
)

// IsSRGB reports whether decoded 8-bit data of this usage is gamma encoded.
func (u Usage) IsSRGB() bool {
	return u == UsageAlbedo || u == UsageEmissive
}

func (u Usage) String() string {
	switch u {
	case UsageAlbedo:
		return "albedo"
	case UsageNormal:
		return "normal"
	case UsageMetallic:
		return "metallic"
	case UsageRoughness:
		return "roughness"
	case UsageOcclusion:
		return "occlusion"
	case UsageEmissive:
		return "emissive"
	default:
		return "generic"
	}
}

// Size is the extent of a texture. MipLevels of 0 is treated as 1 and
// DepthOrArrayLayers of 0 as a single layer.
type Size struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
	BaseMip            uint32
	MipLevels          uint32
}

// Extent returns the size of mip 0 as a wgpu extent.
func (s Size) Extent() wgpu.Extent3D {
	return wgpu.Extent3D{
		Width:              s.Width,
		Height:             s.Height,
		DepthOrArrayLayers: s.layers(),
	}
}

func (s Size) layers() uint32 {
	return max(s.DepthOrArrayLayers, 1)
}

func (s Size) mipCount() uint32 {
	return max(s.MipLevels, 1)
}

// SamplerOptions overrides the default linear, repeating sampler. Zero address modes,
// clamps and anisotropy keep the default. Nil filters keep Linear.
type SamplerOptions struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     *wgpu.FilterMode
	MipmapFilter                             *wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	Compare                                  wgpu.CompareFunction
	MaxAnisotropy                            uint16
}

func (o *SamplerOptions) descriptor(label string) *wgpu.SamplerDescriptor {
	if o == nil {
		o = &SamplerOptions{}
	}
	return &wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(o.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(o.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(o.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     filterOr(o.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     filterOr(o.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  filterOr(o.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(o.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(o.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(o.MaxAnisotropy, 1),
		Compare:       o.Compare,
	}
}

func filterOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func (o *SamplerOptions) hash(h *common.Hasher) {
	if o == nil {
		h.WriteBool(false)
		return
	}
	d := o.descriptor("")
	h.WriteBool(true).
		WriteUint32(uint32(d.AddressModeU)).
		WriteUint32(uint32(d.AddressModeV)).
		WriteUint32(uint32(d.AddressModeW)).
		WriteUint32(uint32(d.MagFilter)).
		WriteUint32(uint32(d.MinFilter)).
		WriteUint32(uint32(d.MipmapFilter)).
		WriteFloat32(d.LodMinClamp).
		WriteFloat32(d.LodMaxClamp).
		WriteUint32(uint32(d.Compare)).
		WriteUint32(uint32(d.MaxAnisotropy))
}

// Descriptor is one of FromFile, FromEncoded, FromData or Custom.
type Descriptor interface {
	// Label names the texture in GPU debug output.
	Label() string

	// Hash is the content hash used as the texture cache key.
	Hash() uint64

	isDescriptor()
}

// FromFile loads an image from disk. PNG, JPEG, GIF, BMP, TIFF, WebP and Radiance HDR are supported.
type FromFile struct {
	Path    string
	Usage   Usage
	Sampler *SamplerOptions
}

// FromEncoded decodes an in-memory image file, such as a glTF buffer view.
type FromEncoded struct {
	Name    string
	Data    []byte
	Usage   Usage
	Sampler *SamplerOptions
}

// FromData uploads raw texels. Pixels are either tightly packed (single mip only) or
// use the row-aligned mip-major, layer-minor layout produced by ReadAsBinary.
type FromData struct {
	Name    string
	Pixels  []byte
	Size    Size
	Format  wgpu.TextureFormat
	Usage   Usage
	Cube    bool
	Sampler *SamplerOptions
}

// Custom wraps GPU objects that were created elsewhere, such as IBL cube maps.
type Custom struct {
	Name    string
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Sampler *wgpu.Sampler
	Size    Size
	Format  wgpu.TextureFormat
}

var (
	_ Descriptor = FromFile{}
	_ Descriptor = FromEncoded{}
	_ Descriptor = FromData{}
	_ Descriptor = Custom{}
)

func (FromFile) isDescriptor()    {}
func (FromEncoded) isDescriptor() {}
func (FromData) isDescriptor()    {}
func (Custom) isDescriptor()      {}

func (d FromFile) Label() string {
	return d.Path
}

func (d FromFile) Hash() uint64 {
	h := common.NewHasher().WriteString("file").WriteString(d.Path).WriteUint32(uint32(d.Usage))
	d.Sampler.hash(h)
	return h.Sum64()
}

func (d FromEncoded) Label() string {
	return d.Name
}

func (d FromEncoded) Hash() uint64 {
	h := common.NewHasher().WriteString("encoded").WriteBytes(d.Data).WriteUint32(uint32(d.Usage))
	d.Sampler.hash(h)
	return h.Sum64()
}

func (d FromData) Label() string {
	return d.Name
}

func (d FromData) Hash() uint64 {
	h := common.NewHasher().
		WriteString("data").
		WriteBytes(d.Pixels).
		WriteUint32(d.Size.Width).
		WriteUint32(d.Size.Height).
		WriteUint32(d.Size.DepthOrArrayLayers).
		WriteUint32(d.Size.BaseMip).
		WriteUint32(d.Size.MipLevels).
		WriteUint32(uint32(d.Format)).
		WriteUint32(uint32(d.Usage)).
		WriteBool(d.Cube)
	d.Sampler.hash(h)
	return h.Sum64()
}

func (d Custom) Label() string {
	return d.Name
}

// Hash of a Custom descriptor is the identity of the wrapped texture.
func (d Custom) Hash() uint64 {
	return common.NewHasher().WriteString("custom").WriteString(fmt.Sprintf("%p", d.Texture)).Sum64()
}

// UniformColor is a 1x1 texture of a single colour.
func UniformColor(rgba [4]uint8, usage Usage) FromData {
	return FromData{
		Name:   fmt.Sprintf("uniform %s #%02x%02x%02x%02x", usage, rgba[0], rgba[1], rgba[2], rgba[3]),
		Pixels: rgba[:],
		Size:   Size{Width: 1, Height: 1, DepthOrArrayLayers: 1, MipLevels: 1},
		Format: FormatForUsage(usage),
		Usage:  usage,
	}
}

// UniformLuma is a 1x1 single channel texture, used for metallic, roughness and occlusion defaults.
func UniformLuma(v uint8, usage Usage) FromData {
	return FromData{
		Name:   fmt.Sprintf("uniform %s %d", usage, v),
		Pixels: []byte{v},
		Size:   Size{Width: 1, Height: 1, DepthOrArrayLayers: 1, MipLevels: 1},
		Format: wgpu.TextureFormatR8Unorm,
		Usage:  usage,
	}
}

// Black is an opaque black 1x1 texture.
func Black() FromData {
	return UniformColor([4]uint8{0, 0, 0, 255}, UsageGeneric)
}

// White is an opaque white 1x1 texture.
func White() FromData {
	return UniformColor([4]uint8{255, 255, 255, 255}, UsageGeneric)
}
