package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// bindingDeclRegex captures group, binding, optional address space, variable name and type from
	// declarations like: @group(1) @binding(0) var<uniform> camera: CameraUniform;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	entryPointRegex = regexp.MustCompile(`(?s)@(vertex|fragment|compute)\b[^{;]*?\bfn\s+(\w+)`)

	lineCommentRegex  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"1d":         wgpu.TextureViewDimension1D,
	"2d":         wgpu.TextureViewDimension2D,
	"2d_array":   wgpu.TextureViewDimension2DArray,
	"3d":         wgpu.TextureViewDimension3D,
	"cube":       wgpu.TextureViewDimensionCube,
	"cube_array": wgpu.TextureViewDimensionCubeArray,
}

var storageTexelFormats = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"r32float":    wgpu.TextureFormatR32Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"rg32float":   wgpu.TextureFormatRG32Float,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
}

var storageAccess = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// Binding is one reflected resource declaration.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
	Entry   wgpu.BindGroupLayoutEntry
}

// Reflection is everything the pipeline builder needs to know about a WGSL module.
type Reflection struct {
	VertexEntry   string
	FragmentEntry string
	ComputeEntry  string
	Bindings      []Binding
}

// Stages returns the union of stages that have an entry point.
func (r Reflection) Stages() wgpu.ShaderStage {
	var s wgpu.ShaderStage
	if r.VertexEntry != "" {
		s |= wgpu.ShaderStageVertex
	}
	if r.FragmentEntry != "" {
		s |= wgpu.ShaderStageFragment
	}
	if r.ComputeEntry != "" {
		s |= wgpu.ShaderStageCompute
	}
	return s
}

// GroupCount is one past the highest group index in use.
func (r Reflection) GroupCount() int {
	n := 0
	for _, b := range r.Bindings {
		n = max(n, int(b.Group)+1)
	}
	return n
}

// BindGroupLayoutDescriptors returns one descriptor per group index in [0, GroupCount),
// entries sorted by binding. Unused group indices get an empty descriptor.
func (r Reflection) BindGroupLayoutDescriptors(label string) []wgpu.BindGroupLayoutDescriptor {
	out := make([]wgpu.BindGroupLayoutDescriptor, r.GroupCount())
	for i := range out {
		out[i].Label = label + " group " + strconv.Itoa(i)
	}
	for _, b := range r.Bindings {
		out[b.Group].Entries = append(out[b.Group].Entries, b.Entry)
	}
	for i := range out {
		entries := out[i].Entries
		sort.Slice(entries, func(a, b int) bool { return entries[a].Binding < entries[b].Binding })
	}
	return out
}

// Reflect scans WGSL source for entry points and @group/@binding resources.
// Sampled float textures that are only ever read with textureLoad are reflected as
// unfilterable, so rgba32float sources can be bound without a filtering sampler.
func Reflect(source string) Reflection {
	cleaned := stripComments(source)

	var r Reflection
	for _, m := range entryPointRegex.FindAllStringSubmatch(cleaned, -1) {
		switch m[1] {
		case "vertex":
			r.VertexEntry = m[2]
		case "fragment":
			r.FragmentEntry = m[2]
		case "compute":
			r.ComputeEntry = m[2]
		}
	}
	stages := r.Stages()

	for _, m := range bindingDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		name := m[4]
		entry := reflectEntry(uint32(binding), stages, strings.TrimSpace(m[3]), strings.TrimSpace(m[5]))

		if entry.Texture.SampleType == wgpu.TextureSampleTypeFloat && !isSampled(cleaned, name) {
			entry.Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
		}

		r.Bindings = append(r.Bindings, Binding{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    name,
			Entry:   entry,
		})
	}
	return r
}

func reflectEntry(binding uint32, stages wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: stages,
	}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
			// writable storage is not allowed in the vertex stage
			entry.Visibility &^= wgpu.ShaderStageVertex
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_storage_"):
		base, params := splitTypeParams(typeName)
		entry.StorageTexture.ViewDimension = textureDimensions[strings.TrimPrefix(base, "texture_storage_")]
		parts := strings.Split(params, ",")
		entry.StorageTexture.Format = storageTexelFormats[strings.TrimSpace(parts[0])]
		if len(parts) > 1 {
			entry.StorageTexture.Access = storageAccess[strings.TrimSpace(parts[1])]
		}
		entry.Visibility &^= wgpu.ShaderStageVertex
	case strings.HasPrefix(typeName, "texture_depth_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = textureDimensions[strings.TrimPrefix(typeName, "texture_depth_")]
	case strings.HasPrefix(typeName, "texture_multisampled_"):
		base, param := splitTypeParams(typeName)
		entry.Texture.ViewDimension = textureDimensions[strings.TrimPrefix(base, "texture_multisampled_")]
		entry.Texture.Multisampled = true
		entry.Texture.SampleType = sampleType(param)
	case strings.HasPrefix(typeName, "texture_"):
		base, param := splitTypeParams(typeName)
		entry.Texture.ViewDimension = textureDimensions[strings.TrimPrefix(base, "texture_")]
		entry.Texture.SampleType = sampleType(param)
	}
	return entry
}

func sampleType(scalar string) wgpu.TextureSampleType {
	switch strings.TrimSpace(scalar) {
	case "i32":
		return wgpu.TextureSampleTypeSint
	case "u32":
		return wgpu.TextureSampleTypeUint
	default:
		return wgpu.TextureSampleTypeFloat
	}
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTypeParams(typeName string) (string, string) {
	open := strings.IndexByte(typeName, '<')
	if open < 0 {
		return typeName, ""
	}
	end := strings.LastIndexByte(typeName, '>')
	if end < open {
		end = len(typeName)
	}
	return strings.TrimSpace(typeName[:open]), typeName[open+1 : end]
}

// isSampled reports whether name is the texture argument of any textureSample* call.
func isSampled(source, name string) bool {
	re := regexp.MustCompile(`textureSample\w*\(\s*` + regexp.QuoteMeta(name) + `\s*,`)
	return re.MatchString(source)
}

func stripComments(source string) string {
	return lineCommentRegex.ReplaceAllString(blockCommentRegex.ReplaceAllString(source, ""), "")
}
