package material

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureProvider resolves a texture descriptor to a realized texture, usually through
// the renderer's texture cache. Materials do not own the textures they receive.
type TextureProvider func(desc texture.Descriptor) (texture.Texture, error)

// material is the implementation of the Material interface.
type material struct {
	descriptor    Descriptor
	textures      []texture.Texture
	factorsBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
}

// Material is a realized PBR material: its textures and the factors uniform bound as
// group 0 of the PBR pipeline.
type Material interface {
	// Label returns the descriptor label.
	Label() string

	// Descriptor returns the descriptor the material was realized from.
	Descriptor() Descriptor

	// Textures returns the realized texture of every slot in binding order.
	Textures() []texture.Texture

	// BindGroup returns the group 0 bind group of the PBR pipeline.
	BindGroup() *wgpu.BindGroup

	// Release frees the factors buffer and bind group. Textures belong to the provider.
	Release()
}

var _ Material = &material{}

// New realizes a PBR material against the material layout of a PBR pipeline.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used to upload the factors
//   - layout: the group 0 layout of the PBR pipeline
//   - desc: the material to realize
//   - textures: resolves the six slot textures
//
// Returns:
//   - Material: the realized material
//   - error: if a texture or GPU object could not be created
func New(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout, desc Descriptor, textures TextureProvider) (Material, error) {
	m := &material{descriptor: desc}

	entries := make([]wgpu.BindGroupEntry, 0, 2*slotCount+1)
	for s := SlotAlbedo; s < slotCount; s++ {
		tex, err := textures(desc.Texture(s))
		if err != nil {
			return nil, fmt.Errorf("material %q: %s texture: %w", desc.Label, s.Usage(), err)
		}
		m.textures = append(m.textures, tex)
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: uint32(2 * s), TextureView: tex.View()},
			wgpu.BindGroupEntry{Binding: uint32(2*s + 1), Sampler: tex.Sampler()},
		)
	}

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label + " Factors Buffer",
		Size:  FactorsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create factors buffer for material %q: %w", desc.Label, err)
	}
	m.factorsBuffer = buf
	queue.WriteBuffer(buf, 0, desc.Factors.Marshal())

	entries = append(entries, wgpu.BindGroupEntry{
		Binding: uint32(2 * slotCount),
		Buffer:  buf,
		Offset:  0,
		Size:    wgpu.WholeSize,
	})

	m.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label + " Material Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to create bind group for material %q: %w", desc.Label, err)
	}
	return m, nil
}

func (m *material) Label() string {
	return m.descriptor.Label
}

func (m *material) Descriptor() Descriptor {
	return m.descriptor
}

func (m *material) Textures() []texture.Texture {
	return m.textures
}

func (m *material) BindGroup() *wgpu.BindGroup {
	return m.bindGroup
}

func (m *material) Release() {
	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.factorsBuffer != nil {
		m.factorsBuffer.Release()
		m.factorsBuffer = nil
	}
	m.textures = nil
}
