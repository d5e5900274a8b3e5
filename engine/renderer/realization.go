package renderer

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/cache"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/pipeline"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// materialEntry is a cached material together with the pipeline it is drawn with and
// the texture references it holds. pipelines is nil when the material uses the core
// PBR pipeline.
type materialEntry struct {
	material    material.Material
	pipeline    pipeline.Pipeline
	pipelineKey uint64
	pipelines   cache.Cache[uint64, pipeline.Pipeline]
	textureKeys []uint64
	textures    cache.Cache[uint64, texture.Texture]
}

func (e *materialEntry) Release() {
	e.material.Release()
	for _, k := range e.textureKeys {
		e.textures.Release(k)
	}
	e.textureKeys = nil
	if e.pipelines != nil {
		e.pipelines.Release(e.pipelineKey)
		e.pipelines = nil
	}
}

// realizedModel is a model cache entry. It holds one reference on its mesh and on
// every material, plus the per-model bind groups of the cull and bounding box passes.
type realizedModel struct {
	model        model.Model
	pipeline     pipeline.Pipeline
	meshKey      uint64
	materialKeys []uint64
	meshes       cache.Cache[uint64, model.Mesh]
	materials    cache.Cache[uint64, *materialEntry]

	params           *wgpu.Buffer
	cullGroup        *wgpu.BindGroup
	cullGeneration   uint64
	cullIndirect     uint64
	boundsGroup      *wgpu.BindGroup
	boundsGeneration uint64
}

// culled reports whether the model takes part in the cull pass.
func (m *realizedModel) culled() bool {
	return m.model.Mesh().BoundsBuffer() != nil
}

// ensureCullGroup (re)creates the params buffer and cull bind group when the instance
// buffer or the indirect buffer were recreated since the last frame.
func (m *realizedModel) ensureCullGroup(device *wgpu.Device, layout *wgpu.BindGroupLayout, indirect *wgpu.Buffer, indirectGeneration uint64) error {
	if m.params == nil {
		params, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: m.model.Label() + " Cull Params",
			Size:  CullParamsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create cull params of %q: %w", m.model.Label(), err)
		}
		m.params = params
	}

	if m.cullGroup != nil && m.cullGeneration == m.model.Generation() && m.cullIndirect == indirectGeneration {
		return nil
	}

	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  m.model.Label() + " Cull Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.model.Mesh().BoundsBuffer(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.model.InstanceBuffer(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: indirect, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: m.params, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create cull bind group of %q: %w", m.model.Label(), err)
	}
	if m.cullGroup != nil {
		m.cullGroup.Release()
	}
	m.cullGroup = group
	m.cullGeneration = m.model.Generation()
	m.cullIndirect = indirectGeneration
	return nil
}

// ensureBoundsGroup (re)creates the bounding box debug bind group.
func (m *realizedModel) ensureBoundsGroup(device *wgpu.Device, layout *wgpu.BindGroupLayout) error {
	if m.boundsGroup != nil && m.boundsGeneration == m.model.Generation() {
		return nil
	}
	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  m.model.Label() + " Bounding Box Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.model.Mesh().BoundsBuffer(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.model.InstanceBuffer(), Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bounding box bind group of %q: %w", m.model.Label(), err)
	}
	if m.boundsGroup != nil {
		m.boundsGroup.Release()
	}
	m.boundsGroup = group
	m.boundsGeneration = m.model.Generation()
	return nil
}

func (m *realizedModel) Release() {
	if m.cullGroup != nil {
		m.cullGroup.Release()
		m.cullGroup = nil
	}
	if m.boundsGroup != nil {
		m.boundsGroup.Release()
		m.boundsGroup = nil
	}
	if m.params != nil {
		m.params.Release()
		m.params = nil
	}
	m.model.Release()
	m.meshes.Release(m.meshKey)
	for _, k := range m.materialKeys {
		m.materials.Release(k)
	}
	m.materialKeys = nil
}

// realizedEnvironment is the current world environment: its IBL cube maps and the
// bind groups of the PBR and sky box pipelines. The fallback environment binds one
// black cube as both maps.
type realizedEnvironment struct {
	hash     uint64
	diffuse  texture.Texture
	specular texture.Texture
	bindings *material.Environment
}

// rebind recreates the bind groups against new pipeline layouts.
func (e *realizedEnvironment) rebind(device *wgpu.Device, pbrLayout, skyBoxLayout *wgpu.BindGroupLayout) error {
	bindings, err := material.NewEnvironment(device, pbrLayout, skyBoxLayout, e.diffuse, e.specular)
	if err != nil {
		return err
	}
	if e.bindings != nil {
		e.bindings.Release()
	}
	e.bindings = bindings
	return nil
}

func (e *realizedEnvironment) Release() {
	if e.bindings != nil {
		e.bindings.Release()
		e.bindings = nil
	}
	if e.specular != nil && e.specular != e.diffuse {
		e.specular.Release()
	}
	if e.diffuse != nil {
		e.diffuse.Release()
	}
	e.diffuse, e.specular = nil, nil
}
