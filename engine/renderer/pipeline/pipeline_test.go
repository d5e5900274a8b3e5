package pipeline

import (
	"testing"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptorDefaults(t *testing.T) {
	d := NewDescriptor("pbr", shader.Descriptor{Label: "pbr", Source: "x"})

	assert.True(t, d.DepthTestEnabled)
	assert.True(t, d.DepthWriteEnabled)
	assert.False(t, d.BlendEnabled)
	assert.Equal(t, wgpu.CullModeNone, d.CullMode)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, d.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, d.FrontFace)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, d.DepthFormat)
	assert.NotNil(t, d.BlendState)
}

func TestDescriptorOptions(t *testing.T) {
	d := NewDescriptor("sky", shader.Descriptor{Label: "sky", Source: "x"},
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithColorFormat(wgpu.TextureFormatBGRA8UnormSrgb),
		WithDepthBias(2, 1.5),
	)
	assert.False(t, d.DepthWriteEnabled)
	assert.Equal(t, wgpu.CullModeBack, d.CullMode)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, d.Topology)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, d.ColorFormat)
	assert.Equal(t, int32(2), d.DepthBias)
	assert.Equal(t, float32(1.5), d.DepthBiasSlopeScale)
}

func TestDescriptorHash(t *testing.T) {
	src := shader.Descriptor{Label: "pbr", Source: "x"}
	a := NewDescriptor("pbr", src, WithColorFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	b := NewDescriptor("pbr", src, WithColorFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.Equal(t, a.Hash(), b.Hash())

	c := NewDescriptor("pbr", src, WithColorFormat(wgpu.TextureFormatRGBA8UnormSrgb))
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := NewDescriptor("pbr", src, WithColorFormat(wgpu.TextureFormatBGRA8UnormSrgb),
		WithVertexLayouts(wgpu.VertexBufferLayout{ArrayStride: 56, StepMode: wgpu.VertexStepModeVertex}))
	assert.NotEqual(t, a.Hash(), d.Hash())

	e := NewDescriptor("pbr", shader.Descriptor{Label: "pbr", Source: "y"}, WithColorFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.NotEqual(t, a.Hash(), e.Hash())
}

type stubShader struct {
	refl   shader.Reflection
	groups int
}

func (s stubShader) Label() string                 { return "stub" }
func (s stubShader) Source() string                { return "" }
func (s stubShader) Module() *wgpu.ShaderModule    { return nil }
func (s stubShader) Reflection() shader.Reflection { return s.refl }
func (s stubShader) Release()                      {}
func (s stubShader) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return make([]wgpu.BindGroupLayoutDescriptor, s.groups)
}

func TestNewShared_Validation(t *testing.T) {
	desc := NewDescriptor("custom", shader.Descriptor{Label: "custom", Source: "x"})
	drawable := shader.Reflection{VertexEntry: "vs_main", FragmentEntry: "fs_main"}
	base := &pipeline{
		pipelineType:   PipelineTypeRender,
		desc:           NewDescriptor("pbr", shader.Descriptor{Label: "pbr", Source: "y"}),
		layouts:        make([]*wgpu.BindGroupLayout, 4),
		pipelineLayout: &wgpu.PipelineLayout{},
	}

	_, err := NewShared(nil, stubShader{refl: drawable}, desc, &pipeline{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no layout to share")

	_, err = NewShared(nil, stubShader{refl: shader.Reflection{ComputeEntry: "main"}}, desc, base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex and fragment")

	_, err = NewShared(nil, stubShader{refl: drawable, groups: 5}, desc, base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 bind groups")
}

func TestShared_ReleaseKeepsBaseLayouts(t *testing.T) {
	layout := &wgpu.PipelineLayout{}
	groups := []*wgpu.BindGroupLayout{{}, {}}
	p := &pipeline{layouts: groups, pipelineLayout: layout, shared: true}

	assert.NotPanics(t, p.Release)
	assert.Nil(t, p.BindGroupLayout(0))
	assert.Equal(t, 0, p.GroupCount())
}
