package model

import (
	"fmt"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	label          string
	instanceHash   uint64
	mesh           Mesh
	materials      []material.Material
	instanceBuffer *wgpu.Buffer
	instanceCount  uint32
	capacity       uint32
	generation     uint64
}

// Model is the GPU realization of a Descriptor: a shared Mesh, the realized materials and
// an instance buffer holding one column-major model matrix per transform. The instance
// buffer is bound both as vertex slot 1 and as a read-only storage buffer for culling.
type Model interface {
	// Label returns the descriptor label.
	Label() string

	// InstanceHash returns the instance hash of the descriptor the model was realized from.
	InstanceHash() uint64

	// Mesh returns the shared mesh.
	Mesh() Mesh

	// Materials returns the realized materials in draw order.
	Materials() []material.Material

	// InstanceBuffer returns the instance buffer.
	InstanceBuffer() *wgpu.Buffer

	// InstanceCount returns the number of instances currently uploaded.
	InstanceCount() uint32

	// Generation increases every time the instance buffer is recreated, so holders of
	// bind groups that reference it know to rebuild them.
	Generation() uint64

	// UpdateInstances rewrites the instance buffer from a transform table, growing it when
	// the table no longer fits.
	//
	// Parameters:
	//   - device: the GPU device, used when the buffer must grow
	//   - queue: the queue used for the upload
	//   - transforms: the complete transform table
	//
	// Returns:
	//   - error: if a larger buffer could not be created
	UpdateInstances(device *wgpu.Device, queue *wgpu.Queue, transforms []InstanceTransform) error

	// Release frees the instance buffer. The mesh and materials belong to their caches.
	Release()
}

var _ Model = &model{}

// New realizes a model from a descriptor whose mesh and materials were already realized.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for the instance upload
//   - desc: the model descriptor
//   - mesh: the realized mesh of desc.Mesh
//   - materials: the realized materials of desc.Materials, in order
//
// Returns:
//   - Model: the realized model
//   - error: if the instance buffer could not be created
func New(device *wgpu.Device, queue *wgpu.Queue, desc *Descriptor, mesh Mesh, materials []material.Material) (Model, error) {
	m := &model{
		mu:           &sync.Mutex{},
		label:        desc.Label,
		instanceHash: desc.InstanceHash(),
		mesh:         mesh,
		materials:    materials,
	}
	if err := m.UpdateInstances(device, queue, desc.Transforms); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *model) Label() string {
	return m.label
}

func (m *model) InstanceHash() uint64 {
	return m.instanceHash
}

func (m *model) Mesh() Mesh {
	return m.mesh
}

func (m *model) Materials() []material.Material {
	return m.materials
}

func (m *model) InstanceBuffer() *wgpu.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instanceBuffer
}

func (m *model) InstanceCount() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instanceCount
}

func (m *model) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *model) UpdateInstances(device *wgpu.Device, queue *wgpu.Queue, transforms []InstanceTransform) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := uint32(len(transforms))
	if m.instanceBuffer == nil || count > m.capacity {
		capacity := max(count, 1)
		if m.instanceBuffer != nil {
			capacity = max(capacity, m.capacity*2)
		}
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: m.label + " Instance Buffer",
			Size:  uint64(capacity) * InstanceSize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create instance buffer for model %q: %w", m.label, err)
		}
		if m.instanceBuffer != nil {
			m.instanceBuffer.Release()
		}
		m.instanceBuffer = buf
		m.capacity = capacity
		m.generation++
	}

	if count > 0 {
		queue.WriteBuffer(m.instanceBuffer, 0, MarshalInstances(transforms))
	}
	m.instanceCount = count
	return nil
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.instanceBuffer != nil {
		m.instanceBuffer.Release()
		m.instanceBuffer = nil
	}
	m.instanceCount = 0
	m.capacity = 0
}
