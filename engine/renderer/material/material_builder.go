package material

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
)

// Slot identifies one texture input of the PBR material, in binding order.
type Slot int

const (
	SlotAlbedo Slot = iota
	SlotNormal
	SlotMetallic
	SlotRoughness
	SlotOcclusion
	SlotEmissive

	slotCount
)

// Usage returns the texture usage of the slot, which selects the sRGB or linear format.
func (s Slot) Usage() texture.Usage {
	switch s {
	case SlotAlbedo:
		return texture.UsageAlbedo
	case SlotNormal:
		return texture.UsageNormal
	case SlotMetallic:
		return texture.UsageMetallic
	case SlotRoughness:
		return texture.UsageRoughness
	case SlotOcclusion:
		return texture.UsageOcclusion
	case SlotEmissive:
		return texture.UsageEmissive
	default:
		return texture.UsageGeneric
	}
}

// DefaultTexture is the 1x1 texture bound when a slot has no texture: white for
// every scalar and colour input and a flat tangent-space normal.
func (s Slot) DefaultTexture() texture.Descriptor {
	switch s {
	case SlotNormal:
		return texture.UniformColor([4]uint8{128, 128, 255, 255}, texture.UsageNormal)
	case SlotMetallic, SlotRoughness, SlotOcclusion:
		return texture.UniformLuma(255, s.Usage())
	default:
		return texture.UniformColor([4]uint8{255, 255, 255, 255}, s.Usage())
	}
}

// Descriptor describes a PBR material: six optional textures and their factors.
// Descriptors are values; equal content gives an equal Hash and shares one realization.
//
// Shader replaces the built-in PBR shader. It is built against the PBR pipeline layout,
// so it may declare any subset of the PBR bindings of groups 0 to 3 and must provide
// vertex and fragment entry points reading the standard vertex and instance buffers.
type Descriptor struct {
	Label    string
	Textures [slotCount]texture.Descriptor
	Factors  Factors
	Shader   *shader.Descriptor
}

// Hash is the material cache key. The label is excluded so identical materials
// imported under different names share a realization.
func (d Descriptor) Hash() uint64 {
	h := common.NewHasher().WriteString("pbr")
	for s := SlotAlbedo; s < slotCount; s++ {
		h.WriteUint64(d.Texture(s).Hash())
	}
	d.Factors.hash(h)
	if d.Shader != nil {
		h.WriteBool(true).WriteUint64(d.Shader.Hash())
	} else {
		h.WriteBool(false)
	}
	return h.Sum64()
}

// Texture returns the texture of slot s, falling back to the slot default.
func (d Descriptor) Texture(s Slot) texture.Descriptor {
	if t := d.Textures[s]; t != nil {
		return t
	}
	return s.DefaultTexture()
}

// DescriptorOption is a functional option used to configure a Descriptor.
type DescriptorOption func(*Descriptor)

// NewDescriptor creates a PBR material descriptor with default factors and no textures.
//
// Parameters:
//   - label: the material name, used for debug labels
//   - opts: a variadic list of DescriptorOption functions
//
// Returns:
//   - Descriptor: the configured descriptor
func NewDescriptor(label string, opts ...DescriptorOption) Descriptor {
	d := Descriptor{
		Label:   label,
		Factors: DefaultFactors(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithTexture sets the texture bound to a slot.
//
// Parameters:
//   - slot: the material input
//   - desc: the texture, nil restores the default
//
// Returns:
//   - DescriptorOption: a function that sets the slot texture
func WithTexture(slot Slot, desc texture.Descriptor) DescriptorOption {
	return func(d *Descriptor) {
		d.Textures[slot] = desc
	}
}

// WithShader draws the material with a custom shader instead of the PBR shader.
//
// Parameters:
//   - desc: the WGSL module, nil restores the PBR shader
//
// Returns:
//   - DescriptorOption: a function that sets the shader override
func WithShader(desc *shader.Descriptor) DescriptorOption {
	return func(d *Descriptor) {
		d.Shader = desc
	}
}

// WithFactors replaces every factor at once.
func WithFactors(f Factors) DescriptorOption {
	return func(d *Descriptor) {
		d.Factors = f
	}
}

// WithAlbedo sets the base colour factor.
//
// Parameters:
//   - rgba: linear base colour and alpha
//
// Returns:
//   - DescriptorOption: a function that sets the albedo factor
func WithAlbedo(rgba [4]float32) DescriptorOption {
	return func(d *Descriptor) {
		d.Factors.Albedo = rgba
	}
}

// WithMetallic sets the metallic factor (0.0 = dielectric, 1.0 = metal).
func WithMetallic(metallic float32) DescriptorOption {
	return func(d *Descriptor) {
		d.Factors.Metallic = common.Clamp(metallic, 0, 1)
	}
}

// WithRoughness sets the roughness factor (0.0 = mirror, 1.0 = fully rough).
func WithRoughness(roughness float32) DescriptorOption {
	return func(d *Descriptor) {
		d.Factors.Roughness = common.Clamp(roughness, 0, 1)
	}
}

// WithEmissive sets the emitted colour and its strength.
func WithEmissive(rgb [3]float32, strength float32) DescriptorOption {
	return func(d *Descriptor) {
		d.Factors.Emissive = rgb
		d.Factors.EmissiveStrength = strength
	}
}
