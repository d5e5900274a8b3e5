package light

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// store is the implementation of the Store interface.
type store struct {
	mu *sync.Mutex

	layout    *wgpu.BindGroupLayout
	counts    *wgpu.Buffer
	arrays    [3]*wgpu.Buffer // point, directional, spot
	capacity  [3]uint64
	bindGroup *wgpu.BindGroup
}

// Store holds the light bindings of the PBR pipeline: a counts uniform and one read-only
// storage array per light type. Empty arrays keep a single zeroed element since storage
// bindings cannot be empty.
type Store interface {
	// Update uploads the enabled lights, growing the arrays and rebuilding the bind group
	// when they no longer fit.
	//
	// Parameters:
	//   - device: the GPU device
	//   - queue: the queue used for the uploads
	//   - lights: every light of the world
	//
	// Returns:
	//   - error: if a larger buffer or the bind group could not be created
	Update(device *wgpu.Device, queue *wgpu.Queue, lights []Descriptor) error

	// BindGroup returns the light bind group.
	BindGroup() *wgpu.BindGroup

	// Release frees every buffer and the bind group. The layout belongs to the pipeline.
	Release()
}

var _ Store = &store{}

var elementSizes = [3]uint64{PointSize, DirectionalSize, SpotSize}

// NewStore creates an empty light store.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for the initial upload
//   - layout: the light group layout of the PBR pipeline
//
// Returns:
//   - Store: the store, with zero lights uploaded
//   - error: if a buffer or the bind group could not be created
func NewStore(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) (Store, error) {
	s := &store{mu: &sync.Mutex{}, layout: layout}

	var err error
	s.counts, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Light Counts Buffer",
		Size:  CountsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create light counts buffer: %w", err)
	}
	if err := s.Update(device, queue, nil); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *store) Update(device *wgpu.Device, queue *wgpu.Queue, lights []Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := MarshalLights(lights)
	data := [3][]byte{g.Point, g.Directional, g.Spot}

	rebind := s.bindGroup == nil
	for i, d := range data {
		needed := max(uint64(len(d)), elementSizes[i])
		if s.arrays[i] != nil && needed <= s.capacity[i] {
			continue
		}
		capacity := max(needed, s.capacity[i]*2)
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: LightType(i).String() + " Light Buffer",
			Size:  capacity,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s light buffer: %w", LightType(i), err)
		}
		if s.arrays[i] != nil {
			s.arrays[i].Release()
		}
		s.arrays[i] = buf
		s.capacity[i] = capacity
		rebind = true
	}

	if rebind {
		bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Light Bind Group",
			Layout: s.layout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: s.counts, Offset: 0, Size: wgpu.WholeSize},
				{Binding: 1, Buffer: s.arrays[0], Offset: 0, Size: wgpu.WholeSize},
				{Binding: 2, Buffer: s.arrays[1], Offset: 0, Size: wgpu.WholeSize},
				{Binding: 3, Buffer: s.arrays[2], Offset: 0, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create light bind group: %w", err)
		}
		if s.bindGroup != nil {
			s.bindGroup.Release()
		}
		s.bindGroup = bindGroup
	}

	queue.WriteBuffer(s.counts, 0, g.MarshalCounts())
	for i, d := range data {
		if len(d) > 0 {
			queue.WriteBuffer(s.arrays[i], 0, d)
		}
	}
	return nil
}

func (s *store) BindGroup() *wgpu.BindGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindGroup
}

func (s *store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bindGroup != nil {
		s.bindGroup.Release()
		s.bindGroup = nil
	}
	for i, b := range s.arrays {
		if b != nil {
			b.Release()
			s.arrays[i] = nil
		}
	}
	if s.counts != nil {
		s.counts.Release()
		s.counts = nil
	}
}
