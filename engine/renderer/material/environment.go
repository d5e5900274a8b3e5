package material

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// Environment binds the precomputed IBL cube maps: group 3 of the PBR pipeline
// (diffuse, specular, sampler) and group 0 of the sky box pipeline (specular, sampler).
type Environment struct {
	diffuse  texture.Texture
	specular texture.Texture
	sampler  *wgpu.Sampler

	pbrBindGroup    *wgpu.BindGroup
	skyBoxBindGroup *wgpu.BindGroup
}

// NewEnvironment creates both environment bind groups. The cube textures stay owned by the caller.
//
// Parameters:
//   - device: the GPU device
//   - pbrLayout: the group 3 layout of the PBR pipeline
//   - skyBoxLayout: the group 0 layout of the sky box pipeline
//   - diffuse, specular: the IBL cube maps
//
// Returns:
//   - *Environment: the bind groups
//   - error: if a GPU object could not be created
func NewEnvironment(device *wgpu.Device, pbrLayout, skyBoxLayout *wgpu.BindGroupLayout, diffuse, specular texture.Texture) (*Environment, error) {
	e := &Environment{diffuse: diffuse, specular: specular}

	var err error
	e.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Environment Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create environment sampler: %w", err)
	}

	e.pbrBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Environment Bind Group",
		Layout: pbrLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: diffuse.View()},
			{Binding: 1, TextureView: specular.View()},
			{Binding: 2, Sampler: e.sampler},
		},
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("failed to create environment bind group: %w", err)
	}

	e.skyBoxBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Sky Box Bind Group",
		Layout: skyBoxLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: specular.View()},
			{Binding: 1, Sampler: e.sampler},
		},
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("failed to create sky box bind group: %w", err)
	}
	return e, nil
}

// PBRBindGroup returns group 3 of the PBR pipeline.
func (e *Environment) PBRBindGroup() *wgpu.BindGroup {
	return e.pbrBindGroup
}

// SkyBoxBindGroup returns group 0 of the sky box pipeline.
func (e *Environment) SkyBoxBindGroup() *wgpu.BindGroup {
	return e.skyBoxBindGroup
}

// Release frees the bind groups and sampler.
func (e *Environment) Release() {
	if e.pbrBindGroup != nil {
		e.pbrBindGroup.Release()
		e.pbrBindGroup = nil
	}
	if e.skyBoxBindGroup != nil {
		e.skyBoxBindGroup.Release()
		e.skyBoxBindGroup = nil
	}
	if e.sampler != nil {
		e.sampler.Release()
		e.sampler = nil
	}
}
