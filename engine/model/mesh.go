package model

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// BoundingBox is an axis-aligned box in model space.
type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Marshal serializes the box as two vec4 (w = 1) matching the WGSL BoundingBox struct.
func (b BoundingBox) Marshal() []byte {
	buf := make([]byte, BoundingBoxSize)
	common.PutVec4(buf[0:], b.Min.Vec4(1))
	common.PutVec4(buf[16:], b.Max.Vec4(1))
	return buf
}

// MeshDescriptor is the CPU geometry of a mesh: a vertex list and a triangle index list.
// Meshes are shared by pointer and must not be modified once hashed.
type MeshDescriptor struct {
	Vertices []Vertex
	Indices  []uint32

	// hash caches Hash; zero until first computed.
	hash atomic.Uint64
}

// Validate checks that the mesh can be drawn as an indexed triangle list.
func (m *MeshDescriptor) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: no vertices", common.ErrInvalidMesh)
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a positive multiple of 3", common.ErrInvalidMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at position %d exceeds %d vertices", common.ErrInvalidMesh, idx, i, len(m.Vertices))
		}
	}
	return nil
}

// BoundingBox returns the min/max of every vertex position. An empty mesh yields a zero box.
func (m *MeshDescriptor) BoundingBox() BoundingBox {
	if len(m.Vertices) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			box.Min[i] = min(box.Min[i], v.Position[i])
			box.Max[i] = max(box.Max[i], v.Position[i])
		}
	}
	return box
}

// Hash is the content hash of the geometry, used as the mesh cache key. It is computed
// once and cached.
func (m *MeshDescriptor) Hash() uint64 {
	if h := m.hash.Load(); h != 0 {
		return h
	}
	h := common.NewHasher().
		WriteBytes(MarshalVertices(m.Vertices)).
		WriteBytes(MarshalIndices(m.Indices)).
		Sum64()
	m.hash.Store(h)
	return h
}

// WireframeIndices converts the triangle list into a line list with every edge once.
func (m *MeshDescriptor) WireframeIndices() []uint32 {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(m.Indices))
	lines := make([]uint32, 0, len(m.Indices)*2)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tri := [3]uint32{m.Indices[t], m.Indices[t+1], m.Indices[t+2]}
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			if _, ok := seen[edge{a, b}]; ok {
				continue
			}
			seen[edge{a, b}] = struct{}{}
			lines = append(lines, a, b)
		}
	}
	return lines
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label           string
	vertexBuffer    *wgpu.Buffer
	indexBuffer     *wgpu.Buffer
	wireframeBuffer *wgpu.Buffer
	boundsBuffer    *wgpu.Buffer
	indexCount      uint32
	wireframeCount  uint32
	bounds          BoundingBox
}

// Mesh is the GPU realization of a MeshDescriptor. Meshes are shared between every
// model whose descriptor has the same geometry.
type Mesh interface {
	// VertexBuffer returns the vertex buffer bound to slot 0.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the uint32 triangle index buffer.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of triangle indices.
	IndexCount() uint32

	// WireframeBuffer returns the uint32 line list index buffer of the unique edges.
	WireframeBuffer() *wgpu.Buffer

	// WireframeCount returns the number of line list indices.
	WireframeCount() uint32

	// BoundsBuffer returns the 32 byte bounding box uniform.
	BoundsBuffer() *wgpu.Buffer

	// Bounds returns the model space bounding box.
	Bounds() BoundingBox

	// Release frees every buffer.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh validates desc and uploads its vertex, index, wireframe and bounding box buffers.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for the uploads
//   - label: debug label prefix
//   - desc: the geometry
//
// Returns:
//   - Mesh: the realized mesh
//   - error: ErrInvalidMesh or a GPU failure
func NewMesh(device *wgpu.Device, queue *wgpu.Queue, label string, desc *MeshDescriptor) (Mesh, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	wireframe := desc.WireframeIndices()
	m := &mesh{
		label:          label,
		indexCount:     uint32(len(desc.Indices)),
		wireframeCount: uint32(len(wireframe)),
		bounds:         desc.BoundingBox(),
	}

	uploads := []struct {
		target **wgpu.Buffer
		name   string
		data   []byte
		usage  wgpu.BufferUsage
	}{
		{&m.vertexBuffer, "Vertex", MarshalVertices(desc.Vertices), wgpu.BufferUsageVertex},
		{&m.indexBuffer, "Index", MarshalIndices(desc.Indices), wgpu.BufferUsageIndex},
		{&m.wireframeBuffer, "Wireframe Index", MarshalIndices(wireframe), wgpu.BufferUsageIndex},
		{&m.boundsBuffer, "Bounding Box", m.bounds.Marshal(), wgpu.BufferUsageUniform},
	}
	for _, u := range uploads {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " " + u.name + " Buffer",
			Size:  common.AlignUp(uint64(len(u.data)), 4),
			Usage: u.usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("failed to create %s buffer for mesh %q: %w", u.name, label, err)
		}
		queue.WriteBuffer(buf, 0, u.data)
		*u.target = buf
	}
	return m, nil
}

func (m *mesh) VertexBuffer() *wgpu.Buffer {
	return m.vertexBuffer
}

func (m *mesh) IndexBuffer() *wgpu.Buffer {
	return m.indexBuffer
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) WireframeBuffer() *wgpu.Buffer {
	return m.wireframeBuffer
}

func (m *mesh) WireframeCount() uint32 {
	return m.wireframeCount
}

func (m *mesh) BoundsBuffer() *wgpu.Buffer {
	return m.boundsBuffer
}

func (m *mesh) Bounds() BoundingBox {
	return m.bounds
}

func (m *mesh) Release() {
	for _, b := range []**wgpu.Buffer{&m.vertexBuffer, &m.indexBuffer, &m.wireframeBuffer, &m.boundsBuffer} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}
