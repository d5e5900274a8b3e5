package renderer

import (
	"time"

	"github.com/SakulFlee/Orbital-sub000/engine/config"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithConfig applies the renderer section of the engine configuration.
//
// Parameters:
//   - cfg: the renderer configuration
//
// Returns:
//   - RendererBuilderOption: a function that applies every configured field
func WithConfig(cfg config.RendererConfig) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderDir = cfg.ShaderDir
		r.watchShaders = cfg.WatchShaders
		r.grace = cfg.CacheGrace()
		r.debug = DebugFlags{
			Wireframes:    cfg.DebugWireframes,
			BoundingBoxes: cfg.DebugBoundingBoxes,
		}
		dir, err := cfg.IBLCacheDir()
		if err != nil {
			logger.Warnf("IBL disk cache disabled: %v", err)
			dir = ""
		}
		r.cacheDir = dir
	}
}

// WithShaderDir registers every .wgsl file below dir on top of the built-in library.
//
// Parameters:
//   - dir: the shader folder
//   - watch: reload changed files and rebuild every pipeline on the next frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader folder option to a renderer
func WithShaderDir(dir string, watch bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderDir = dir
		r.watchShaders = watch
	}
}

// WithPreProcessor replaces the renderer's preprocessor. The built-in library is still
// registered into it.
func WithPreProcessor(pp shader.PreProcessor) RendererBuilderOption {
	return func(r *renderer) {
		r.pp = pp
	}
}

// WithCacheDir sets the IBL disk cache directory. An empty dir disables the disk cache.
func WithCacheDir(dir string) RendererBuilderOption {
	return func(r *renderer) {
		r.cacheDir = dir
	}
}

// WithCacheGrace sets how long unreferenced meshes, materials and textures stay cached.
func WithCacheGrace(grace time.Duration) RendererBuilderOption {
	return func(r *renderer) {
		r.grace = grace
	}
}

// WithDebugFlags sets the initial debug passes.
func WithDebugFlags(flags DebugFlags) RendererBuilderOption {
	return func(r *renderer) {
		r.debug = flags
	}
}

// WithClearColor sets the colour the model pass clears to when the world has no environment.
func WithClearColor(color wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}
