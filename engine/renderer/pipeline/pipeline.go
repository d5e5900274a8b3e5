package pipeline

import (
	"errors"
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

// Descriptor holds everything needed to create a pipeline. The pipeline type follows from
// the entry points found in the shader. Render state fields are ignored by compute pipelines.
type Descriptor struct {
	Label         string
	Shader        shader.Descriptor
	VertexLayouts []wgpu.VertexBufferLayout
	ColorFormat   wgpu.TextureFormat
	DepthFormat   wgpu.TextureFormat

	DepthTestEnabled    bool
	DepthWriteEnabled   bool
	DepthBias           int32
	DepthBiasSlopeScale float32
	BlendEnabled        bool
	CullMode            wgpu.CullMode
	Topology            wgpu.PrimitiveTopology
	FrontFace           wgpu.FrontFace
	WriteMask           wgpu.ColorWriteMask
	BlendState          *wgpu.BlendState
}

// Hash is the pipeline cache key. It covers the shader descriptor and every state field.
func (d Descriptor) Hash() uint64 {
	h := common.NewHasher().
		WriteString(d.Label).
		WriteUint64(d.Shader.Hash()).
		WriteUint32(uint32(d.ColorFormat)).
		WriteUint32(uint32(d.DepthFormat)).
		WriteBool(d.DepthTestEnabled).
		WriteBool(d.DepthWriteEnabled).
		WriteUint32(uint32(d.DepthBias)).
		WriteFloat32(d.DepthBiasSlopeScale).
		WriteBool(d.BlendEnabled).
		WriteUint32(uint32(d.CullMode)).
		WriteUint32(uint32(d.Topology)).
		WriteUint32(uint32(d.FrontFace)).
		WriteUint32(uint32(d.WriteMask))

	for _, l := range d.VertexLayouts {
		h.WriteUint64(l.ArrayStride).WriteUint32(uint32(l.StepMode)).WriteUint32(uint32(len(l.Attributes)))
		for _, a := range l.Attributes {
			h.WriteUint32(uint32(a.Format)).WriteUint64(a.Offset).WriteUint32(a.ShaderLocation)
		}
	}
	if d.BlendEnabled && d.BlendState != nil {
		for _, c := range []wgpu.BlendComponent{d.BlendState.Color, d.BlendState.Alpha} {
			h.WriteUint32(uint32(c.SrcFactor)).WriteUint32(uint32(c.DstFactor)).WriteUint32(uint32(c.Operation))
		}
	}
	return h.Sum64()
}

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU pipeline objects and related data for both render and compute pipelines.
type pipeline struct {
	pipelineType PipelineType
	desc         Descriptor
	shader       shader.Shader

	layouts        []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	// shared layouts belong to the base pipeline
	shared bool

	// renderPipeline is the render pipeline if this is a render pipeline, nil otherwise
	renderPipeline *wgpu.RenderPipeline
	// computePipeline is the compute pipeline if this is a compute pipeline, nil otherwise
	computePipeline *wgpu.ComputePipeline
}

// Pipeline is a realized render or compute pipeline together with the bind group layouts
// reflected from its shader. Bind groups for the pipeline must be created against these layouts.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// Label returns the descriptor label.
	Label() string

	// Descriptor returns the descriptor this pipeline was created from.
	Descriptor() Descriptor

	// Shader returns the shader the pipeline was built from.
	Shader() shader.Shader

	// Render returns the render pipeline, nil for compute pipelines.
	Render() *wgpu.RenderPipeline

	// Compute returns the compute pipeline, nil for render pipelines.
	Compute() *wgpu.ComputePipeline

	// BindGroupLayout returns the layout of the given group index.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil when out of range
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// GroupCount returns the number of bind group layouts.
	GroupCount() int

	// Release frees the pipeline and its layouts. The shader is owned by the caller.
	Release()
}

var _ Pipeline = &pipeline{}

// New creates the pipeline for desc from an already realized shader.
// A shader with a compute entry point yields a compute pipeline; otherwise vertex and fragment
// entry points are required.
//
// Parameters:
//   - device: the GPU device
//   - sh: the realized shader, usually taken from the shader cache
//   - desc: the pipeline state
//
// Returns:
//   - Pipeline: the realized pipeline
//   - error: if entry points are missing or a GPU object could not be created
func New(device *wgpu.Device, sh shader.Shader, desc Descriptor) (Pipeline, error) {
	refl := sh.Reflection()

	p := &pipeline{desc: desc, shader: sh}
	switch {
	case refl.ComputeEntry != "":
		p.pipelineType = PipelineTypeCompute
	case refl.VertexEntry != "" && refl.FragmentEntry != "":
		p.pipelineType = PipelineTypeRender
	default:
		return nil, fmt.Errorf("pipeline %q: shader has neither a compute entry point nor vertex and fragment entry points", desc.Label)
	}

	for g, layoutDesc := range sh.BindGroupLayoutDescriptors() {
		layout, err := device.CreateBindGroupLayout(&layoutDesc)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("failed to create bind group layout for group %d of %q: %w", g, desc.Label, err)
		}
		p.layouts = append(p.layouts, layout)
	}

	var err error
	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		p.Release()
		return nil, err
	}

	if p.pipelineType == PipelineTypeCompute {
		p.computePipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:  desc.Label + " Compute Pipeline",
			Layout: p.pipelineLayout,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     sh.Module(),
				EntryPoint: refl.ComputeEntry,
			},
		})
	} else {
		p.renderPipeline, err = createRender(device, p.pipelineLayout, sh, desc)
	}
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create pipeline %q: %w", desc.Label, err)
	}
	return p, nil
}

// NewShared creates a render pipeline for desc that reuses the bind group and pipeline
// layouts of base instead of reflecting its own. Bind groups created for base can be
// used with it. The shader may declare any subset of base's bindings; base must stay
// alive until the returned pipeline is released.
//
// Parameters:
//   - device: the GPU device
//   - sh: the realized shader with vertex and fragment entry points
//   - desc: the pipeline state
//   - base: the render pipeline whose layouts are reused
//
// Returns:
//   - Pipeline: the realized pipeline
//   - error: if entry points are missing or the pipeline could not be created
func NewShared(device *wgpu.Device, sh shader.Shader, desc Descriptor, base Pipeline) (Pipeline, error) {
	b, ok := base.(*pipeline)
	if !ok || b.pipelineLayout == nil {
		return nil, fmt.Errorf("pipeline %q: base pipeline has no layout to share", desc.Label)
	}
	refl := sh.Reflection()
	if refl.VertexEntry == "" || refl.FragmentEntry == "" {
		return nil, fmt.Errorf("pipeline %q: shader needs vertex and fragment entry points", desc.Label)
	}
	if n := len(sh.BindGroupLayoutDescriptors()); n > len(b.layouts) {
		return nil, fmt.Errorf("pipeline %q: shader uses %d bind groups, %q has %d", desc.Label, n, b.desc.Label, len(b.layouts))
	}

	render, err := createRender(device, b.pipelineLayout, sh, desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline %q: %w", desc.Label, err)
	}
	return &pipeline{
		pipelineType:   PipelineTypeRender,
		desc:           desc,
		shader:         sh,
		layouts:        b.layouts,
		pipelineLayout: b.pipelineLayout,
		shared:         true,
		renderPipeline: render,
	}, nil
}

func createRender(device *wgpu.Device, layout *wgpu.PipelineLayout, sh shader.Shader, desc Descriptor) (*wgpu.RenderPipeline, error) {
	if desc.ColorFormat == wgpu.TextureFormatUndefined {
		return nil, errors.New("render pipelines need a colour format")
	}
	refl := sh.Reflection()

	target := wgpu.ColorTargetState{
		Format:    desc.ColorFormat,
		WriteMask: desc.WriteMask,
	}
	if desc.BlendEnabled {
		target.Blend = desc.BlendState
	}

	var depthStencil *wgpu.DepthStencilState
	if desc.DepthFormat != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !desc.DepthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              desc.DepthFormat,
			DepthWriteEnabled:   desc.DepthWriteEnabled,
			DepthCompare:        depthCompare,
			DepthBias:           desc.DepthBias,
			DepthBiasSlopeScale: desc.DepthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     sh.Module(),
			EntryPoint: refl.VertexEntry,
			Buffers:    desc.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     sh.Module(),
			EntryPoint: refl.FragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.Topology,
			FrontFace: desc.FrontFace,
			CullMode:  desc.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) Label() string {
	return p.desc.Label
}

func (p *pipeline) Descriptor() Descriptor {
	return p.desc
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Render() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Compute() *wgpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.layouts) {
		return nil
	}
	return p.layouts[group]
}

func (p *pipeline) GroupCount() int {
	return len(p.layouts)
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
	if p.shared {
		p.pipelineLayout, p.layouts = nil, nil
		return
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for _, l := range p.layouts {
		l.Release()
	}
	p.layouts = nil
}
