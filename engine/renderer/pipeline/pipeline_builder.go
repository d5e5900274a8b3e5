package pipeline

import (
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DescriptorOption is a functional option used to configure a Descriptor during construction.
type DescriptorOption func(*Descriptor)

// NewDescriptor creates a pipeline descriptor with the default render state: depth test and
// write on, no culling, counter-clockwise triangle lists, all colour channels written,
// alpha blending configured but disabled.
//
// Parameters:
//   - label: the debug label and part of the cache key
//   - shaderDesc: the WGSL module providing every entry point
//   - opts: a variadic list of DescriptorOption functions to configure the pipeline
//
// Returns:
//   - Descriptor: the configured descriptor
func NewDescriptor(label string, shaderDesc shader.Descriptor, opts ...DescriptorOption) Descriptor {
	d := Descriptor{
		Label:             label,
		Shader:            shaderDesc,
		DepthTestEnabled:  true,
		DepthWriteEnabled: true,
		DepthFormat:       wgpu.TextureFormatDepth32Float,
		CullMode:          wgpu.CullModeNone,
		Topology:          wgpu.PrimitiveTopologyTriangleList,
		FrontFace:         wgpu.FrontFaceCCW,
		WriteMask:         wgpu.ColorWriteMaskAll,
		BlendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithVertexLayouts sets the vertex buffer layouts of a render pipeline.
//
// Parameters:
//   - layouts: one layout per vertex buffer slot
//
// Returns:
//   - DescriptorOption: a function that sets the vertex layouts
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) DescriptorOption {
	return func(d *Descriptor) {
		d.VertexLayouts = layouts
	}
}

// WithColorFormat sets the format of the single colour target, usually the surface format.
//
// Parameters:
//   - format: the colour attachment format
//
// Returns:
//   - DescriptorOption: a function that sets the colour format
func WithColorFormat(format wgpu.TextureFormat) DescriptorOption {
	return func(d *Descriptor) {
		d.ColorFormat = format
	}
}

// WithDepthFormat sets the depth attachment format. wgpu.TextureFormatUndefined disables the depth attachment.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - DescriptorOption: a function that sets the depth format
func WithDepthFormat(format wgpu.TextureFormat) DescriptorOption {
	return func(d *Descriptor) {
		d.DepthFormat = format
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - DescriptorOption: a function that sets the depth test enabled state for this pipeline
func WithDepthTestEnabled(enabled bool) DescriptorOption {
	return func(d *Descriptor) {
		d.DepthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - DescriptorOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) DescriptorOption {
	return func(d *Descriptor) {
		d.DepthWriteEnabled = enabled
	}
}

// WithDepthBias sets the depth bias parameters for this pipeline.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - DescriptorOption: a function that sets the depth bias parameters for this pipeline
func WithDepthBias(bias int32, slopeScale float32) DescriptorOption {
	return func(d *Descriptor) {
		d.DepthBias = bias
		d.DepthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled sets whether blending is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - DescriptorOption: a function that sets the blend enabled state for this pipeline
func WithBlendEnabled(enabled bool) DescriptorOption {
	return func(d *Descriptor) {
		d.BlendEnabled = enabled
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - DescriptorOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) DescriptorOption {
	return func(d *Descriptor) {
		d.CullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology to use for this pipeline (e.g., wgpu.PrimitiveTopologyLineList, wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - DescriptorOption: a function that sets the primitive topology for this pipeline
func WithTopology(topology wgpu.PrimitiveTopology) DescriptorOption {
	return func(d *Descriptor) {
		d.Topology = topology
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - DescriptorOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) DescriptorOption {
	return func(d *Descriptor) {
		d.FrontFace = frontFace
	}
}

// WithWriteMask sets the color write mask for this pipeline.
//
// Parameters:
//   - writeMask: the color write mask to use for this pipeline
//
// Returns:
//   - DescriptorOption: a function that sets the color write mask for this pipeline
func WithWriteMask(writeMask wgpu.ColorWriteMask) DescriptorOption {
	return func(d *Descriptor) {
		d.WriteMask = writeMask
	}
}

// WithBlendState sets the blend state used when blending is enabled.
//
// Parameters:
//   - blendState: the blend state to use for this pipeline
//
// Returns:
//   - DescriptorOption: a function that sets the blend state for this pipeline
func WithBlendState(blendState *wgpu.BlendState) DescriptorOption {
	return func(d *Descriptor) {
		d.BlendState = blendState
	}
}
