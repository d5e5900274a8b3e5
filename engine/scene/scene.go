// Package scene binds a world to a renderer and drives both from the runtime.
// A Scene is the engine.App of a typical application: it feeds input into the
// world, forwards messages to the renderer and draws the world every frame.
package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/engine"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/SakulFlee/Orbital-sub000/engine/loader"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/profiler"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoRenderer is returned by OnRender before the first successful resume.
var ErrNoRenderer = errors.New("scene has no renderer")

// RendererFactory creates the renderer for the GPU context of one Ready period.
type RendererFactory func(ctx *engine.Context, options ...renderer.RendererBuilderOption) (renderer.Renderer, error)

// NewWGPURenderer is the default RendererFactory.
func NewWGPURenderer(ctx *engine.Context, options ...renderer.RendererBuilderOption) (renderer.Renderer, error) {
	return renderer.NewRenderer(ctx.Device, ctx.Queue, ctx.Format, ctx.Width, ctx.Height, options...)
}

// Scene is an engine.App that owns a world, its renderer and optionally a glTF loader.
// Thread-safe for concurrent access.
type Scene interface {
	engine.App

	// Name returns the scene's identifier.
	Name() string

	// World returns the world the scene updates and draws.
	World() world.World

	// Renderer returns the current renderer, nil while no GPU context exists.
	Renderer() renderer.Renderer

	// Loader returns the glTF loader, nil if the scene was built without one.
	Loader() loader.Loader
}

type scene struct {
	mu   *sync.Mutex
	name string

	world       world.World
	worldOpts   []world.WorldBuilderOption
	loader      loader.Loader
	ownsLoader  bool
	newRenderer RendererFactory
	rendererOps []renderer.RendererBuilderOption

	renderer renderer.Renderer
	device   *wgpu.Device
	width    int
	height   int

	log *log.Logger
}

var _ Scene = &scene{}

// NewScene creates a scene with a new world.
//
// Parameters:
//   - name: the scene's identifier, used in logs
//   - options: a variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene, ready to be passed to engine.NewEngine
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:          &sync.Mutex{},
		name:        name,
		newRenderer: NewWGPURenderer,
		log:         logger.With("component", "scene", "scene", name),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.world == nil {
		opts := s.worldOpts
		if s.loader != nil {
			opts = append([]world.WorldBuilderOption{world.WithFileLoader(s.loader.FileLoader())}, opts...)
		}
		s.world = world.NewWorld(opts...)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) World() world.World {
	return s.world
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer
}

func (s *scene) Loader() loader.Loader {
	return s.loader
}

func (s *scene) OnStartup(ctx *engine.Context) error {
	s.log.Info("starting", "width", ctx.Width, "height", ctx.Height, "format", ctx.Format)
	return nil
}

// OnResume keeps the renderer while the device is unchanged and rebuilds it
// after a device loss. A new renderer resynchronizes from the world's stores.
func (s *scene) OnResume(ctx *engine.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width, s.height = ctx.Width, ctx.Height
	if s.renderer != nil && s.device == ctx.Device {
		s.renderer.Resize(ctx.Width, ctx.Height)
		return nil
	}
	if s.renderer != nil {
		s.log.Warn("GPU device changed, rebuilding renderer")
		s.renderer.Release()
		s.renderer = nil
	}

	r, err := s.newRenderer(ctx, s.rendererOps...)
	if err != nil {
		return fmt.Errorf("failed to create renderer for scene %q: %w", s.name, err)
	}
	s.renderer = r
	s.device = ctx.Device
	return nil
}

func (s *scene) OnSuspend() {
	s.log.Debug("suspended")
}

func (s *scene) OnResize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	if s.renderer != nil {
		s.renderer.Resize(width, height)
	}
}

func (s *scene) OnUpdate(in *input.InputState, dt float64, cycle *profiler.Cycle) []event.AppEvent {
	events := s.world.Update(dt, in)
	if cycle != nil {
		s.log.Debug("world stats", "models", len(s.world.Models()), "lights", len(s.world.Lights()), "elements", s.world.ElementCount())
	}
	return events
}

func (s *scene) OnMessage(msg event.Message) {
	s.mu.Lock()
	r := s.renderer
	s.mu.Unlock()
	if r != nil {
		r.OnMessage(msg)
	}
}

func (s *scene) OnRender(view *wgpu.TextureView, _ *wgpu.Device, _ *wgpu.Queue) error {
	s.mu.Lock()
	r := s.renderer
	s.mu.Unlock()
	if r == nil {
		return ErrNoRenderer
	}
	return r.Render(view, s.world)
}

// OnShutdown closes the world, the owned loader and releases the renderer.
func (s *scene) OnShutdown() {
	s.world.Close()
	if s.loader != nil && s.ownsLoader {
		s.loader.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer != nil {
		s.renderer.Release()
		s.renderer = nil
	}
	s.device = nil
	s.log.Info("shut down")
}
