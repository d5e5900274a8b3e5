package wgsl

import (
	"testing"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, name string) *shader.Compiled {
	t.Helper()
	pp := shader.NewPreProcessor(shader.WithStrictCycles())
	require.NoError(t, Register(pp))
	c, err := shader.Compile(pp, Descriptor(name))
	require.NoError(t, err)
	return c
}

func TestRegister_AllNames(t *testing.T) {
	pp := shader.NewPreProcessor()
	require.NoError(t, Register(pp))

	names := pp.Names()
	for _, want := range []string{"camera", "frustum", "light", "math", "vertex", "pbr/brdf", "ibl/common",
		PBR, SkyBox, Cull, Wireframe, BoundingBox, IBLDiffuse, IBLSpecular, IBLSpecularMip} {
		assert.Contains(t, names, want)
	}
}

func TestSource(t *testing.T) {
	src, err := Source("camera")
	require.NoError(t, err)
	assert.Contains(t, src, "struct CameraUniform")

	_, err = Source("does/not/exist")
	assert.Error(t, err)
}

func TestPBR_Layout(t *testing.T) {
	c := compile(t, PBR)
	r := c.Reflection
	assert.Equal(t, "vs_main", r.VertexEntry)
	assert.Equal(t, "fs_main", r.FragmentEntry)
	require.Equal(t, 4, r.GroupCount())

	groups := r.BindGroupLayoutDescriptors("pbr")
	assert.Len(t, groups[0].Entries, 13)
	assert.Len(t, groups[1].Entries, 1)
	assert.Len(t, groups[2].Entries, 4)
	assert.Len(t, groups[3].Entries, 3)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, groups[2].Entries[1].Buffer.Type)
	assert.Equal(t, wgpu.TextureViewDimensionCube, groups[3].Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, groups[3].Entries[1].Texture.SampleType)

	// every import is expanded exactly once
	assert.NotContains(t, c.Source, "#import")
	assert.Equal(t, 1, countOf(c.Source, "struct CameraUniform"))
	assert.Equal(t, 1, countOf(c.Source, "const PI"))
}

func TestSkyBox_Layout(t *testing.T) {
	r := compile(t, SkyBox).Reflection
	require.Equal(t, 2, r.GroupCount())
	groups := r.BindGroupLayoutDescriptors("sky")
	assert.Len(t, groups[0].Entries, 2)
	assert.Len(t, groups[1].Entries, 1)
}

func TestCull_Layout(t *testing.T) {
	r := compile(t, Cull).Reflection
	assert.Equal(t, "cs_main", r.ComputeEntry)
	groups := r.BindGroupLayoutDescriptors("cull")
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Entries, 1)
	require.Len(t, groups[1].Entries, 4)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, groups[1].Entries[2].Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageCompute, groups[1].Entries[2].Visibility)
}

func TestIBL_Layouts(t *testing.T) {
	for _, name := range []string{IBLDiffuse, IBLSpecular} {
		groups := compile(t, name).Reflection.BindGroupLayoutDescriptors(name)
		require.Len(t, groups, 1, name)
		require.Len(t, groups[0].Entries, 2, name)
		assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, groups[0].Entries[0].Texture.SampleType, name)
		assert.Equal(t, wgpu.TextureFormatRGBA16Float, groups[0].Entries[1].StorageTexture.Format, name)
		assert.Equal(t, wgpu.TextureViewDimension2DArray, groups[0].Entries[1].StorageTexture.ViewDimension, name)
	}

	groups := compile(t, IBLSpecularMip).Reflection.BindGroupLayoutDescriptors("mips")
	require.Len(t, groups, 2)
	require.Len(t, groups[0].Entries, 3)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, groups[0].Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimensionCube, groups[0].Entries[0].Texture.ViewDimension)
	assert.Len(t, groups[1].Entries, 1)
}

func TestDebug_Layouts(t *testing.T) {
	assert.Equal(t, 1, compile(t, Wireframe).Reflection.GroupCount())
	assert.Equal(t, 2, compile(t, BoundingBox).Reflection.GroupCount())
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
