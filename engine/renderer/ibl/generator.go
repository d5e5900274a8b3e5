// Package ibl precomputes image based lighting cube maps from an equirectangular
// environment and caches the results on disk.
package ibl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/environment"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/pipeline"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/wgsl"
	"github.com/cogentcore/webgpu/wgpu"
)

// OutputFormat is the texel format of both IBL cube maps.
const OutputFormat = wgpu.TextureFormatRGBA16Float

// mipParamsSize is the {mip_level, max_mip_level, sampling_type, pad} uniform.
const mipParamsSize = 16

// Result holds the generated cube maps. Diffuse has a single mip, Specular has
// the descriptor's clamped mip count.
type Result struct {
	Diffuse   texture.Texture
	Specular  texture.Texture
	FromCache bool
}

// Release frees both cube maps.
func (r *Result) Release() {
	if r.Diffuse != nil {
		r.Diffuse.Release()
	}
	if r.Specular != nil {
		r.Specular.Release()
	}
}

type generator struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	pp       shader.PreProcessor
	cacheDir string

	mu        *sync.Mutex
	pipelines map[string]pipeline.Pipeline
}

// Generator turns world environment descriptors into diffuse and specular IBL cube maps.
type Generator interface {
	// Generate returns the IBL cube maps of desc, loading them from the disk cache
	// when a matching file exists and generating (then caching) them otherwise.
	// Corrupt cache files are removed and regenerated. Failing to write the cache
	// is logged and does not fail the call.
	//
	// Parameters:
	//   - desc: the environment to precompute
	//
	// Returns:
	//   - *Result: the cube maps, owned by the caller
	//   - error: source decode failures or GPU errors
	Generate(desc environment.Descriptor) (*Result, error)

	// Release frees the compute pipelines.
	Release()
}

var _ Generator = &generator{}

// GeneratorOption configures a Generator.
type GeneratorOption func(*generator)

// WithCacheDir enables the disk cache below dir/IBLs. An empty dir disables caching.
func WithCacheDir(dir string) GeneratorOption {
	return func(g *generator) {
		g.cacheDir = dir
	}
}

// NewGenerator creates a Generator. Compute pipelines are built on first use.
//
// Parameters:
//   - device: the GPU device
//   - queue: the queue used for uploads, dispatches and readbacks
//   - pp: a preprocessor with the built-in shader library registered
//   - options: optional settings such as WithCacheDir
//
// Returns:
//   - Generator: the new generator
func NewGenerator(device *wgpu.Device, queue *wgpu.Queue, pp shader.PreProcessor, options ...GeneratorOption) Generator {
	g := &generator{
		device:    device,
		queue:     queue,
		pp:        pp,
		mu:        &sync.Mutex{},
		pipelines: make(map[string]pipeline.Pipeline),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *generator) Generate(desc environment.Descriptor) (*Result, error) {
	hash, err := desc.Hash()
	if err != nil {
		return nil, err
	}

	var cachePath string
	if g.cacheDir != "" {
		cachePath = CachePath(g.cacheDir, hash)
		res, err := g.loadCached(desc, cachePath)
		if err == nil {
			logger.Debugf("IBL for %s loaded from %s", desc.Label(), cachePath)
			return res, nil
		}
		switch {
		case errors.Is(err, os.ErrNotExist):
		case errors.Is(err, common.ErrCacheFileCorrupt) || errors.Is(err, common.ErrTextureDataSizeMismatch):
			logger.Warnf("removing corrupt IBL cache file %s: %v", cachePath, err)
			_ = os.Remove(cachePath)
		default:
			logger.Warnf("IBL cache file %s unusable: %v", cachePath, err)
		}
	}

	res, err := g.generate(desc)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := g.store(res, cachePath); err != nil {
			logger.Warnf("failed to write IBL cache for %s: %v", desc.Label(), err)
		}
	}
	return res, nil
}

func (g *generator) loadCached(desc environment.Descriptor, path string) (*Result, error) {
	diffusePixels, specularPixels, err := ReadCacheFile(path)
	if err != nil {
		return nil, err
	}

	faceSize := desc.FaceSize()
	diffuse, err := texture.NewCube(g.device, g.queue, desc.Label()+" Diffuse IBL", faceSize, 1, OutputFormat, diffusePixels, 0)
	if err != nil {
		return nil, err
	}
	specular, err := texture.NewCube(g.device, g.queue, desc.Label()+" Specular IBL", faceSize, desc.MipLevels(), OutputFormat, specularPixels, 0)
	if err != nil {
		diffuse.Release()
		return nil, err
	}
	return &Result{Diffuse: diffuse, Specular: specular, FromCache: true}, nil
}

func (g *generator) store(res *Result, path string) error {
	diffuse, err := res.Diffuse.ReadAsBinary(g.device, g.queue)
	if err != nil {
		return err
	}
	specular, err := res.Specular.ReadAsBinary(g.device, g.queue)
	if err != nil {
		return err
	}
	return WriteCacheFile(path, diffuse, specular)
}

func (g *generator) computePipeline(name string) (pipeline.Pipeline, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.pipelines[name]; ok {
		return p, nil
	}

	desc := pipeline.NewDescriptor(name, wgsl.Descriptor(name))
	sh, err := shader.New(g.device, g.pp, desc.Shader)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(g.device, sh, desc)
	if err != nil {
		sh.Release()
		return nil, err
	}
	g.pipelines[name] = p
	return p, nil
}

// releaser collects transient GPU objects of one generation run.
type releaser []func()

func (r *releaser) add(f func()) {
	*r = append(*r, f)
}

func (r releaser) releaseAll() {
	for i := len(r) - 1; i >= 0; i-- {
		r[i]()
	}
}

func (g *generator) generate(desc environment.Descriptor) (*Result, error) {
	diffusePipeline, err := g.computePipeline(wgsl.IBLDiffuse)
	if err != nil {
		return nil, err
	}
	specularPipeline, err := g.computePipeline(wgsl.IBLSpecular)
	if err != nil {
		return nil, err
	}
	mipPipeline, err := g.computePipeline(wgsl.IBLSpecularMip)
	if err != nil {
		return nil, err
	}

	sourceData, err := SourceData(desc)
	if err != nil {
		return nil, err
	}

	var transient releaser
	defer func() { transient.releaseAll() }()

	source, err := texture.New(g.device, g.queue, sourceData)
	if err != nil {
		return nil, err
	}
	transient.add(source.Release)

	faceSize := desc.FaceSize()
	mipLevels := desc.MipLevels()

	diffuse, err := texture.NewCube(g.device, g.queue, desc.Label()+" Diffuse IBL", faceSize, 1, OutputFormat, nil, wgpu.TextureUsageStorageBinding)
	if err != nil {
		return nil, err
	}
	specular, err := texture.NewCube(g.device, g.queue, desc.Label()+" Specular IBL", faceSize, mipLevels, OutputFormat, nil, wgpu.TextureUsageStorageBinding)
	if err != nil {
		diffuse.Release()
		return nil, err
	}
	res := &Result{Diffuse: diffuse, Specular: specular}

	fail := func(err error) (*Result, error) {
		res.Release()
		return nil, err
	}

	view := func(tex texture.Texture, dimension wgpu.TextureViewDimension, mip, layers uint32) (*wgpu.TextureView, error) {
		v, err := tex.Texture().CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("%s mip %d", tex.Label(), mip),
			Format:          OutputFormat,
			Dimension:       dimension,
			BaseMipLevel:    mip,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: layers,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			return nil, err
		}
		transient.add(v.Release)
		return v, nil
	}

	bindGroup := func(p pipeline.Pipeline, group int, entries ...wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
		bg, err := g.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s group %d", p.Label(), group),
			Layout:  p.BindGroupLayout(group),
			Entries: entries,
		})
		if err != nil {
			return nil, err
		}
		transient.add(bg.Release)
		return bg, nil
	}

	diffuseTarget, err := view(diffuse, wgpu.TextureViewDimension2DArray, 0, 6)
	if err != nil {
		return fail(err)
	}
	diffuseGroup, err := bindGroup(diffusePipeline, 0,
		wgpu.BindGroupEntry{Binding: 0, TextureView: source.View()},
		wgpu.BindGroupEntry{Binding: 1, TextureView: diffuseTarget},
	)
	if err != nil {
		return fail(err)
	}

	specularTargets := make([]*wgpu.TextureView, mipLevels)
	for mip := uint32(0); mip < mipLevels; mip++ {
		if specularTargets[mip], err = view(specular, wgpu.TextureViewDimension2DArray, mip, 6); err != nil {
			return fail(err)
		}
	}
	specularGroup, err := bindGroup(specularPipeline, 0,
		wgpu.BindGroupEntry{Binding: 0, TextureView: source.View()},
		wgpu.BindGroupEntry{Binding: 1, TextureView: specularTargets[0]},
	)
	if err != nil {
		return fail(err)
	}

	mipSource, err := view(specular, wgpu.TextureViewDimensionCube, 0, 6)
	if err != nil {
		return fail(err)
	}
	mipSampler, err := g.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label() + " IBL Mip Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fail(err)
	}
	transient.add(mipSampler.Release)

	type mipPass struct {
		textures, params *wgpu.BindGroup
		size             uint32
	}
	mipPasses := make([]mipPass, 0, mipLevels)
	for mip := uint32(1); mip < mipLevels; mip++ {
		params, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s IBL Mip %d Params", desc.Label(), mip),
			Size:  mipParamsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fail(err)
		}
		transient.add(params.Release)
		g.queue.WriteBuffer(params, 0, MipParams(mip, mipLevels-1, desc.SamplingType))

		textures, err := bindGroup(mipPipeline, 0,
			wgpu.BindGroupEntry{Binding: 0, TextureView: mipSource},
			wgpu.BindGroupEntry{Binding: 1, Sampler: mipSampler},
			wgpu.BindGroupEntry{Binding: 2, TextureView: specularTargets[mip]},
		)
		if err != nil {
			return fail(err)
		}
		paramsGroup, err := bindGroup(mipPipeline, 1,
			wgpu.BindGroupEntry{Binding: 0, Buffer: params, Offset: 0, Size: wgpu.WholeSize},
		)
		if err != nil {
			return fail(err)
		}
		mipPasses = append(mipPasses, mipPass{textures: textures, params: paramsGroup, size: max(faceSize>>mip, 1)})
	}

	encoder, err := g.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: desc.Label() + " IBL Encoder"})
	if err != nil {
		return fail(err)
	}
	transient.add(encoder.Release)

	groups := environment.WorkgroupCount(faceSize)

	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: desc.Label() + " IBL Diffuse"})
	pass.SetPipeline(diffusePipeline.Compute())
	pass.SetBindGroup(0, diffuseGroup, nil)
	pass.DispatchWorkgroups(groups, groups, 6)
	pass.End()

	pass = encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: desc.Label() + " IBL Specular"})
	pass.SetPipeline(specularPipeline.Compute())
	pass.SetBindGroup(0, specularGroup, nil)
	pass.DispatchWorkgroups(groups, groups, 6)
	pass.End()

	// mip 0 must be complete before it is filtered, so the mips get their own pass
	if len(mipPasses) > 0 {
		pass = encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: desc.Label() + " IBL Specular Mips"})
		pass.SetPipeline(mipPipeline.Compute())
		for _, mp := range mipPasses {
			n := environment.WorkgroupCount(mp.size)
			pass.SetBindGroup(0, mp.textures, nil)
			pass.SetBindGroup(1, mp.params, nil)
			pass.DispatchWorkgroups(n, n, 6)
		}
		pass.End()
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fail(err)
	}
	g.queue.Submit(commandBuffer)
	commandBuffer.Release()

	logger.Infof("generated IBL for %s: face %d, %d specular mips", desc.Label(), faceSize, mipLevels)
	return res, nil
}

// MipParams encodes the specular mip uniform {mip_level, max_mip_level, sampling_type, pad}.
func MipParams(mip, maxMip uint32, sampling environment.SamplingType) []byte {
	buf := make([]byte, mipParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], mip)
	binary.LittleEndian.PutUint32(buf[4:8], maxMip)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(sampling))
	return buf
}

func (g *generator) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for name, p := range g.pipelines {
		p.Shader().Release()
		p.Release()
		delete(g.pipelines, name)
	}
}
