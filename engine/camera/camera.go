package camera

import (
	"fmt"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// CameraLayoutDescriptor is the bind group layout of the camera uniform. It matches the
// layout reflected from shaders that declare the camera block in vertex and fragment stages.
func CameraLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Camera",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}},
	}
}

// FrustumLayoutDescriptor is the bind group layout of the frustum uniform read by the cull pass.
func FrustumLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Frustum",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}},
	}
}

type camera struct {
	mu *sync.Mutex

	descriptor Descriptor

	cameraBuffer     *wgpu.Buffer
	cameraLayout     *wgpu.BindGroupLayout
	cameraBindGroup  *wgpu.BindGroup
	frustumBuffer    *wgpu.Buffer
	frustumLayout    *wgpu.BindGroupLayout
	frustumBindGroup *wgpu.BindGroup
}

// Camera is the GPU realization of a camera Descriptor: a camera uniform and a frustum
// uniform, each with its own bind group.
type Camera interface {
	// Descriptor returns a copy of the current descriptor.
	//
	// Returns:
	//   - Descriptor: the descriptor last uploaded
	Descriptor() Descriptor

	// Update replaces the descriptor and rewrites both uniforms.
	//
	// Parameters:
	//   - queue: the queue used for the buffer writes
	//   - desc: the new camera state
	Update(queue *wgpu.Queue, desc Descriptor)

	// ApplyTransform applies a transform to the descriptor and rewrites both uniforms.
	//
	// Parameters:
	//   - queue: the queue used for the buffer writes
	//   - t: the transform to apply
	ApplyTransform(queue *wgpu.Queue, t Transform)

	// Resize updates the aspect ratio from a surface size. Zero sizes are ignored.
	//
	// Parameters:
	//   - queue: the queue used for the buffer writes
	//   - width, height: the surface size in pixels
	Resize(queue *wgpu.Queue, width, height int)

	// BindGroup returns the camera uniform bind group.
	BindGroup() *wgpu.BindGroup

	// FrustumBindGroup returns the frustum uniform bind group.
	FrustumBindGroup() *wgpu.BindGroup

	// Release frees every GPU object of the camera.
	Release()
}

var _ Camera = &camera{}

// New creates both uniform buffers and bind groups and uploads desc.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for the initial upload
//   - desc: the camera state
//
// Returns:
//   - Camera: the realized camera
//   - error: if a GPU object could not be created
func New(device *wgpu.Device, queue *wgpu.Queue, desc Descriptor) (Camera, error) {
	c := &camera{mu: &sync.Mutex{}, descriptor: desc}

	var err error
	c.cameraBuffer, c.cameraLayout, c.cameraBindGroup, err = uniform(device, desc.Label+" Camera", UniformSize, CameraLayoutDescriptor())
	if err != nil {
		return nil, err
	}
	c.frustumBuffer, c.frustumLayout, c.frustumBindGroup, err = uniform(device, desc.Label+" Frustum", common.FrustumBlockSize, FrustumLayoutDescriptor())
	if err != nil {
		c.Release()
		return nil, err
	}

	c.write(queue)
	return c, nil
}

func uniform(device *wgpu.Device, label string, size uint64, layoutDesc *wgpu.BindGroupLayoutDescriptor) (*wgpu.Buffer, *wgpu.BindGroupLayout, *wgpu.BindGroup, error) {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create %s buffer: %w", label, err)
	}

	layout, err := device.CreateBindGroupLayout(layoutDesc)
	if err != nil {
		buf.Release()
		return nil, nil, nil, fmt.Errorf("failed to create %s bind group layout: %w", label, err)
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		layout.Release()
		buf.Release()
		return nil, nil, nil, fmt.Errorf("failed to create %s bind group: %w", label, err)
	}
	return buf, layout, bindGroup, nil
}

// write uploads both blocks. Caller must hold the mutex or own c exclusively.
func (c *camera) write(queue *wgpu.Queue) {
	queue.WriteBuffer(c.cameraBuffer, 0, c.descriptor.UniformBlock())
	queue.WriteBuffer(c.frustumBuffer, 0, c.descriptor.FrustumBlock())
}

func (c *camera) Descriptor() Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.descriptor
}

func (c *camera) Update(queue *wgpu.Queue, desc Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptor = desc
	c.write(queue)
}

func (c *camera) ApplyTransform(queue *wgpu.Queue, t Transform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptor.ApplyTransform(t)
	c.write(queue)
}

func (c *camera) Resize(queue *wgpu.Queue, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptor.Aspect = float32(width) / float32(height)
	c.write(queue)
}

func (c *camera) BindGroup() *wgpu.BindGroup {
	return c.cameraBindGroup
}

func (c *camera) FrustumBindGroup() *wgpu.BindGroup {
	return c.frustumBindGroup
}

func (c *camera) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, bg := range []*wgpu.BindGroup{c.cameraBindGroup, c.frustumBindGroup} {
		if bg != nil {
			bg.Release()
		}
	}
	for _, l := range []*wgpu.BindGroupLayout{c.cameraLayout, c.frustumLayout} {
		if l != nil {
			l.Release()
		}
	}
	for _, b := range []*wgpu.Buffer{c.cameraBuffer, c.frustumBuffer} {
		if b != nil {
			b.Release()
		}
	}
	c.cameraBindGroup, c.frustumBindGroup = nil, nil
	c.cameraLayout, c.frustumLayout = nil, nil
	c.cameraBuffer, c.frustumBuffer = nil, nil
}
