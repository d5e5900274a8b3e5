package scene

import (
	"github.com/SakulFlee/Orbital-sub000/engine/config"
	"github.com/SakulFlee/Orbital-sub000/engine/loader"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options that are applied directly to the scene instance.
type SceneBuilderOption func(*scene)

// WithConfig applies the renderer and loader sections of the configuration file.
// A loader owned by the scene is created and closed on shutdown.
//
// Parameters:
//   - cfg: the loaded configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithConfig(cfg config.Config) SceneBuilderOption {
	return func(s *scene) {
		s.rendererOps = append(s.rendererOps, renderer.WithConfig(cfg.Renderer))
		if s.loader == nil {
			s.loader = loader.NewLoader(loader.WithConfig(cfg.Loader))
			s.ownsLoader = true
		}
	}
}

// WithWorld uses an existing world instead of creating one. World options are ignored.
//
// Parameters:
//   - w: the world to drive
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorld(w world.World) SceneBuilderOption {
	return func(s *scene) {
		s.world = w
	}
}

// WithWorldOptions passes options to the world the scene creates.
//
// Parameters:
//   - options: world options, applied after the loader's file loader
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorldOptions(options ...world.WorldBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.worldOpts = append(s.worldOpts, options...)
	}
}

// WithLoader sets the loader whose FileLoader resolves LoadFile changes.
// The caller keeps ownership and closes it.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoader(l loader.Loader) SceneBuilderOption {
	return func(s *scene) {
		if s.loader != nil && s.ownsLoader {
			s.loader.Close()
		}
		s.loader = l
		s.ownsLoader = false
	}
}

// WithRendererOptions passes options to every renderer the scene creates.
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.rendererOps = append(s.rendererOps, options...)
	}
}

// WithRendererFactory replaces NewWGPURenderer.
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRendererFactory(factory RendererFactory) SceneBuilderOption {
	return func(s *scene) {
		if factory != nil {
			s.newRenderer = factory
		}
	}
}
