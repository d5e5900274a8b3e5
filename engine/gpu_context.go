package engine

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// Context is the GPU state handed to the application while the runtime is Ready.
// A new Context is created on every resume after a device loss; the application
// must not keep handles across OnSuspend.
type Context struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	Format wgpu.TextureFormat
	Width  int
	Height int
}

// Frame is one acquired swapchain image.
type Frame struct {
	View *wgpu.TextureView

	texture *wgpu.Texture
}

// Surface owns the device and the presentable surface of one Ready period.
type Surface interface {
	// Context returns the device, queue and format of the surface.
	Context() *Context

	// Configure (re)builds the swapchain for the given framebuffer size.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels, ignored when either is zero
	//   - vsync: selects PresentModeFifo over PresentModeImmediate
	Configure(width, height int, vsync bool)

	// Acquire returns the next swapchain image.
	//
	// Returns:
	//   - *Frame: the frame to render into
	//   - error: wraps common.ErrSurfaceAcquire, or common.ErrDeviceLost when the device is gone
	Acquire() (*Frame, error)

	// Present shows the frame and releases it.
	Present(frame *Frame)

	// Release destroys the surface, device and instance.
	Release()
}

// SurfaceFactory creates the Surface for an event source on resume.
type SurfaceFactory func(src window.EventSource, forceFallbackAdapter bool) (Surface, error)

type wgpuSurface struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	format wgpu.TextureFormat
	width  int
	height int
	vsync  bool
}

var _ Surface = &wgpuSurface{}

// NewWGPUSurface creates an instance, a surface for src, a compatible adapter and a device.
// It locks the calling goroutine to its OS thread, as the window system requires.
//
// Parameters:
//   - src: the event source providing the surface descriptor
//   - forceFallbackAdapter: request the software adapter
//
// Returns:
//   - Surface: the created surface with an unconfigured swapchain
//   - error: wraps common.ErrDeviceLost if no adapter or device could be obtained
func NewWGPUSurface(src window.EventSource, forceFallbackAdapter bool) (Surface, error) {
	runtime.LockOSThread()

	descriptor := src.SurfaceDescriptor()
	if descriptor == nil {
		return nil, fmt.Errorf("event source has no surface: %w", common.ErrDeviceLost)
	}

	s := &wgpuSurface{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
	}
	s.surface = s.instance.CreateSurface(descriptor)

	adapter, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    s.surface,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to request adapter: %w: %v", common.ErrDeviceLost, err)
	}
	s.adapter = adapter

	// The PBR pipeline uses four bind groups; the compute cull pass two.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 4

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to request device: %w: %v", common.ErrDeviceLost, err)
	}
	s.device = device
	s.queue = device.GetQueue()

	capabilities := s.surface.GetCapabilities(s.adapter)
	s.format = capabilities.Formats[0]

	return s, nil
}

func (s *wgpuSurface) Context() *Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Context{
		Device: s.device,
		Queue:  s.queue,
		Format: s.format,
		Width:  s.width,
		Height: s.height,
	}
}

func (s *wgpuSurface) Configure(width, height int, vsync bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height, s.vsync = width, height, vsync
	s.configureLocked()
}

func (s *wgpuSurface) configureLocked() {
	capabilities := s.surface.GetCapabilities(s.adapter)
	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       uint32(s.width),
		Height:      uint32(s.height),
		PresentMode: PresentMode(s.vsync),
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (s *wgpuSurface) Acquire() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	texture, err := s.surface.GetCurrentTexture()
	if err != nil {
		if isDeviceLost(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrDeviceLost, err)
		}
		// Outdated and lost swapchains recover after a reconfigure.
		if s.width > 0 && s.height > 0 {
			s.configureLocked()
		}
		return nil, fmt.Errorf("%w: %v", common.ErrSurfaceAcquire, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("%w: %v", common.ErrSurfaceAcquire, err)
	}
	return &Frame{View: view, texture: texture}, nil
}

func (s *wgpuSurface) Present(frame *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if frame == nil {
		return
	}

	s.surface.Present()

	if frame.View != nil {
		frame.View.Release()
		frame.View = nil
	}
	if frame.texture != nil {
		frame.texture.Release()
		frame.texture = nil
	}
}

func (s *wgpuSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}

// PresentMode maps the vsync setting to a wgpu present mode.
func PresentMode(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// wgpu reports surface and device status only as text.
func isDeviceLost(err error) bool {
	if errors.Is(err, common.ErrDeviceLost) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "device lost")
}
