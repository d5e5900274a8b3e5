package model

import (
	"encoding/binary"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VertexSize is the byte size of one Vertex in the vertex buffer.
	VertexSize = 56
	// InstanceSize is the byte size of one column-major model matrix in the instance buffer.
	InstanceSize = 64
	// BoundingBoxSize is the byte size of the bounding box uniform: min and max as vec4.
	BoundingBoxSize = 32
)

// Vertex is one mesh vertex. Matches the WGSL VertexInput struct at locations 0-4.
type Vertex struct {
	Position  mgl32.Vec3 // offset  0
	Normal    mgl32.Vec3 // offset 12
	Tangent   mgl32.Vec3 // offset 24
	Bitangent mgl32.Vec3 // offset 36
	UV        mgl32.Vec2 // offset 48
}

// Marshal serializes the vertex into a 56 byte buffer suitable for GPU upload.
func (v Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.put(buf)
	return buf
}

func (v Vertex) put(buf []byte) {
	common.PutVec3(buf[0:], v.Position)
	common.PutVec3(buf[12:], v.Normal)
	common.PutVec3(buf[24:], v.Tangent)
	common.PutVec3(buf[36:], v.Bitangent)
	common.PutFloat32(buf[48:], v.UV[0])
	common.PutFloat32(buf[52:], v.UV[1])
}

// MarshalVertices packs vertices back to back.
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i, v := range vertices {
		v.put(buf[i*VertexSize:])
	}
	return buf
}

// MarshalIndices packs indices as little-endian uint32.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// MarshalInstances packs one column-major model matrix per transform.
func MarshalInstances(transforms []InstanceTransform) []byte {
	buf := make([]byte, len(transforms)*InstanceSize)
	for i, t := range transforms {
		common.PutMat4(buf[i*InstanceSize:], t.Transform.Matrix())
	}
	return buf
}

// VertexLayouts returns the two vertex buffer layouts every mesh pipeline uses:
// slot 0 per-vertex attributes and slot 1 the per-instance model matrix columns.
func VertexLayouts() []wgpu.VertexBufferLayout {
	return []wgpu.VertexBufferLayout{
		{
			ArrayStride: VertexSize,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
				{Format: wgpu.VertexFormatFloat32x3, Offset: 24, ShaderLocation: 2},
				{Format: wgpu.VertexFormatFloat32x3, Offset: 36, ShaderLocation: 3},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 48, ShaderLocation: 4},
			},
		},
		{
			ArrayStride: InstanceSize,
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 6},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 7},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 8},
			},
		},
	}
}
