package renderer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/cache"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/ibl"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/pipeline"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/wgsl"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultCacheGrace is used when no grace interval is configured.
const DefaultCacheGrace = 5 * time.Second

// corePipelines are the built-in pipelines every frame uses.
type corePipelines struct {
	pbr         pipeline.Pipeline
	skyBox      pipeline.Pipeline
	cull        pipeline.Pipeline
	wireframe   pipeline.Pipeline
	boundingBox pipeline.Pipeline
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue
	format wgpu.TextureFormat
	width  uint32
	height uint32

	// Pre-creation config collected from builder options
	shaderDir    string
	watchShaders bool
	cacheDir     string
	grace        time.Duration
	clearColor   wgpu.Color
	debug        DebugFlags

	pp      shader.PreProcessor
	watcher *shader.Watcher
	reload  atomic.Bool

	textures  cache.Cache[uint64, texture.Texture]
	meshes    cache.Cache[uint64, model.Mesh]
	materials cache.Cache[uint64, *materialEntry]
	shaders   cache.Cache[uint64, shader.Shader]
	pipelines cache.Cache[uint64, pipeline.Pipeline]
	models    cache.Cache[string, *realizedModel]

	core        corePipelines
	coreKeys    []uint64
	camera      camera.Camera
	lights      light.Store
	ibl         ibl.Generator
	environment *realizedEnvironment
	fallback    *realizedEnvironment
	// failedEnvironment is the hash of an environment that failed to realize; it is
	// not retried until the world sets another one.
	failedEnvironment *uint64
	depth             texture.Texture

	indirect           *wgpu.Buffer
	indirectCapacity   uint64
	indirectGeneration uint64

	// resync rebuilds every realization from the world on the next frame.
	resync bool

	log *log.Logger
}

// Renderer draws a World into a surface view every frame.
//
// The renderer mirrors the world through caches: models by label, and meshes, materials,
// textures, shaders and pipelines by descriptor hash. Each frame it folds the world's change
// list into those caches, culls every model against the camera frustum on the GPU and
// draws all models with one indexed indirect draw each.
type Renderer interface {
	// Render draws one frame of w into view.
	//
	// Realization failures are logged and the entity is skipped; the frame continues.
	//
	// Parameters:
	//   - view: the colour target, usually the current swapchain view
	//   - w: the world to draw
	//
	// Returns:
	//   - error: if the frame's command buffer could not be encoded
	Render(view *wgpu.TextureView, w world.World) error

	// Resize recreates the depth texture and updates the camera aspect ratio.
	// Zero sizes, as reported for minimized windows, are ignored.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// OnMessage applies debug toggles addressed to the application.
	//
	// Parameters:
	//   - msg: a message carrying MessageKeyWireframes or MessageKeyBoundingBoxes
	OnMessage(msg event.Message)

	// Debug returns the active debug passes.
	Debug() DebugFlags

	// Release frees every cached realization and GPU object the renderer owns.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer for a surface of the given format and size.
//
// Parameters:
//   - device: the GPU device
//   - queue: the device queue
//   - format: the colour format of the views passed to Render
//   - width, height: the initial surface size
//   - options: functional options to further configure the renderer
//
// Returns:
//   - Renderer: the renderer, ready to draw
//   - error: shader preprocessor errors or GPU failures while creating the built-in pipelines
func NewRenderer(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:         &sync.Mutex{},
		device:     device,
		queue:      queue,
		format:     format,
		width:      uint32(max(width, 1)),
		height:     uint32(max(height, 1)),
		grace:      DefaultCacheGrace,
		clearColor: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		resync:     true,
		log:        logger.With("component", "renderer"),
	}
	for _, opt := range options {
		opt(r)
	}

	if r.pp == nil {
		r.pp = shader.NewPreProcessor()
	}
	if err := wgsl.Register(r.pp); err != nil {
		return nil, fmt.Errorf("failed to register shader library: %w", err)
	}
	if err := r.initShaderDir(); err != nil {
		return nil, err
	}

	r.textures = cache.New[uint64, texture.Texture](r.grace, cache.WithLabel("textures"))
	r.meshes = cache.New[uint64, model.Mesh](r.grace, cache.WithLabel("meshes"))
	r.materials = cache.New[uint64, *materialEntry](r.grace, cache.WithLabel("materials"))
	r.shaders = cache.New[uint64, shader.Shader](r.grace, cache.WithLabel("shaders"))
	r.pipelines = cache.New[uint64, pipeline.Pipeline](r.grace, cache.WithLabel("pipelines"))
	r.models = cache.New[string, *realizedModel](r.grace, cache.WithLabel("models"))

	if err := r.buildCore(); err != nil {
		r.Release()
		return nil, err
	}

	cameraDesc := camera.DefaultDescriptor()
	cameraDesc.Aspect = r.aspect()
	var err error
	if r.camera, err = camera.New(device, queue, cameraDesc); err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}
	if r.lights, err = light.NewStore(device, queue, r.core.pbr.BindGroupLayout(2)); err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to create light store: %w", err)
	}
	if r.fallback, err = r.newFallbackEnvironment(); err != nil {
		r.Release()
		return nil, err
	}
	if r.depth, err = texture.NewDepth(device, "Depth Texture", r.width, r.height); err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to create depth texture: %w", err)
	}
	r.ibl = ibl.NewGenerator(device, queue, r.pp, ibl.WithCacheDir(r.cacheDir))
	return r, nil
}

func (r *renderer) initShaderDir() error {
	if r.shaderDir == "" {
		return nil
	}
	if !r.watchShaders {
		if err := r.pp.RegisterFolder(r.shaderDir); err != nil {
			return fmt.Errorf("failed to register shader folder: %w", err)
		}
		return nil
	}
	watcher, err := shader.NewWatcher(r.shaderDir, r.pp, func(name string) {
		r.log.Infof("Shader %q changed, rebuilding pipelines", name)
		r.reload.Store(true)
	})
	if err != nil {
		return fmt.Errorf("failed to watch shader folder: %w", err)
	}
	r.watcher = watcher
	return nil
}

func (r *renderer) aspect() float32 {
	return float32(r.width) / float32(r.height)
}

// pipeline returns the cached pipeline of desc, creating its shader and pipeline on a miss.
// The caller owns one reference on the returned key.
func (r *renderer) pipeline(desc pipeline.Descriptor) (pipeline.Pipeline, uint64, error) {
	key := desc.Hash()
	p, err := r.pipelines.GetOrCreate(key, func() (pipeline.Pipeline, error) {
		sh, err := r.shaders.GetOrCreate(desc.Shader.Hash(), func() (shader.Shader, error) {
			return shader.New(r.device, r.pp, desc.Shader)
		})
		if err != nil {
			return nil, err
		}
		return pipeline.New(r.device, sh, desc)
	})
	return p, key, err
}

// materialPipeline returns the pipeline of a material shader override. It shares the
// layouts of the core PBR pipeline so camera, light and environment bind groups stay valid.
// The caller owns one reference on the returned key.
func (r *renderer) materialPipeline(sd shader.Descriptor) (pipeline.Pipeline, uint64, error) {
	desc := r.core.pbr.Descriptor()
	desc.Label = wgsl.PBR + "/" + sd.Label
	desc.Shader = sd
	key := desc.Hash()
	p, err := r.pipelines.GetOrCreate(key, func() (pipeline.Pipeline, error) {
		sh, err := r.shaders.GetOrCreate(sd.Hash(), func() (shader.Shader, error) {
			return shader.New(r.device, r.pp, sd)
		})
		if err != nil {
			return nil, err
		}
		return pipeline.NewShared(r.device, sh, desc, r.core.pbr)
	})
	return p, key, err
}

// buildCore creates the built-in pipelines against the current preprocessor contents.
func (r *renderer) buildCore() error {
	descs := []pipeline.Descriptor{
		pipeline.NewDescriptor(wgsl.PBR, wgsl.Descriptor(wgsl.PBR),
			pipeline.WithVertexLayouts(model.VertexLayouts()...),
			pipeline.WithColorFormat(r.format),
			pipeline.WithCullMode(wgpu.CullModeBack),
		),
		pipeline.NewDescriptor(wgsl.SkyBox, wgsl.Descriptor(wgsl.SkyBox),
			pipeline.WithColorFormat(r.format),
			pipeline.WithDepthFormat(wgpu.TextureFormatUndefined),
		),
		pipeline.NewDescriptor(wgsl.Cull, wgsl.Descriptor(wgsl.Cull)),
		pipeline.NewDescriptor(wgsl.Wireframe, wgsl.Descriptor(wgsl.Wireframe),
			pipeline.WithVertexLayouts(model.VertexLayouts()...),
			pipeline.WithColorFormat(r.format),
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		),
		pipeline.NewDescriptor(wgsl.BoundingBox, wgsl.Descriptor(wgsl.BoundingBox),
			pipeline.WithColorFormat(r.format),
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		),
	}

	built := make([]pipeline.Pipeline, len(descs))
	keys := make([]uint64, 0, len(descs))
	for i, d := range descs {
		p, key, err := r.pipeline(d)
		if err != nil {
			for _, k := range keys {
				r.pipelines.Release(k)
			}
			return fmt.Errorf("failed to build %s pipeline: %w", d.Label, err)
		}
		built[i] = p
		keys = append(keys, key)
	}

	for _, k := range r.coreKeys {
		r.pipelines.Release(k)
	}
	r.coreKeys = keys
	r.core = corePipelines{
		pbr:         built[0],
		skyBox:      built[1],
		cull:        built[2],
		wireframe:   built[3],
		boundingBox: built[4],
	}
	return nil
}

// reloadShaders rebuilds every pipeline after a shader file changed. Everything bound
// against the old pipeline layouts is dropped and realized again from the world.
// When the new sources do not compile the old pipelines stay in use.
func (r *renderer) reloadShaders() {
	for _, name := range []string{wgsl.PBR, wgsl.SkyBox, wgsl.Cull, wgsl.Wireframe, wgsl.BoundingBox} {
		if _, err := shader.Compile(r.pp, wgsl.Descriptor(name)); err != nil {
			r.log.Errorf("Shader reload failed, keeping previous pipelines: %v", err)
			return
		}
	}

	r.models.Clear()
	r.materials.Clear()
	r.coreKeys = nil
	r.pipelines.Clear()
	r.shaders.Clear()
	if err := r.buildCore(); err != nil {
		r.log.Errorf("Shader reload failed: %v", err)
		return
	}

	if r.lights != nil {
		r.lights.Release()
	}
	var err error
	if r.lights, err = light.NewStore(r.device, r.queue, r.core.pbr.BindGroupLayout(2)); err != nil {
		r.log.Errorf("Failed to recreate light store: %v", err)
	}
	for _, env := range []*realizedEnvironment{r.fallback, r.environment} {
		if env == nil {
			continue
		}
		if err := env.rebind(r.device, r.core.pbr.BindGroupLayout(3), r.core.skyBox.BindGroupLayout(0)); err != nil {
			r.log.Errorf("Failed to rebind environment: %v", err)
		}
	}
	r.resync = true
}

func (r *renderer) newFallbackEnvironment() (*realizedEnvironment, error) {
	bpp, err := texture.BytesPerPixel(ibl.OutputFormat)
	if err != nil {
		return nil, err
	}
	black, err := texture.NewCube(r.device, r.queue, "Fallback Environment", 1, 1, ibl.OutputFormat, make([]byte, 6*bpp), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback environment: %w", err)
	}
	env := &realizedEnvironment{diffuse: black, specular: black}
	if err := env.rebind(r.device, r.core.pbr.BindGroupLayout(3), r.core.skyBox.BindGroupLayout(0)); err != nil {
		env.Release()
		return nil, fmt.Errorf("failed to bind fallback environment: %w", err)
	}
	return env, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = uint32(width), uint32(height)
	depth, err := texture.NewDepth(r.device, "Depth Texture", r.width, r.height)
	if err != nil {
		r.log.Errorf("Failed to resize depth texture: %v", err)
	} else {
		if r.depth != nil {
			r.depth.Release()
		}
		r.depth = depth
	}
	r.camera.Resize(r.queue, width, height)
}

func (r *renderer) OnMessage(msg event.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debug.Apply(msg) {
		r.log.Debugf("Debug passes: wireframes=%t bounding boxes=%t", r.debug.Wireframes, r.debug.BoundingBoxes)
	}
}

func (r *renderer) Debug() DebugFlags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.debug
}

func (r *renderer) Render(view *wgpu.TextureView, w world.World) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.reload.Swap(false) {
		r.reloadShaders()
	}

	changes := w.TakeChangeList()
	plan := planChanges(changes)
	if r.resync {
		plan = fullPlan(w)
		r.resync = false
	}

	if plan.environment || (r.environment == nil && hasEnvironment(w)) {
		r.realizeEnvironment(w)
	}
	r.applyPlan(plan, w)

	drawn := r.drawable()
	if err := r.prepareIndirect(drawn); err != nil {
		r.log.Errorf("Skipping frame: %v", err)
		return nil
	}

	err := r.encode(view, drawn)

	r.materials.Cycle()
	r.pipelines.Cycle()
	r.meshes.Cycle()
	r.textures.Cycle()
	return err
}

func hasEnvironment(w world.World) bool {
	_, ok := w.Environment()
	return ok
}

// realizeEnvironment generates (or loads) the IBL maps of the world environment.
// Failures keep the previous environment.
func (r *renderer) realizeEnvironment(w world.World) {
	desc, ok := w.Environment()
	if !ok {
		if r.environment != nil {
			r.environment.Release()
			r.environment = nil
		}
		return
	}
	hash, err := desc.Hash()
	if err != nil {
		r.log.Errorf("Failed to hash world environment: %v", err)
		return
	}
	if r.environment != nil && r.environment.hash == hash {
		return
	}
	if r.failedEnvironment != nil && *r.failedEnvironment == hash {
		return
	}

	res, err := r.ibl.Generate(desc)
	if err != nil {
		r.failedEnvironment = &hash
		r.log.Errorf("Failed to realize world environment: %v", err)
		return
	}
	env := &realizedEnvironment{hash: hash, diffuse: res.Diffuse, specular: res.Specular}
	if err := env.rebind(r.device, r.core.pbr.BindGroupLayout(3), r.core.skyBox.BindGroupLayout(0)); err != nil {
		env.Release()
		r.failedEnvironment = &hash
		r.log.Errorf("Failed to bind world environment: %v", err)
		return
	}
	r.failedEnvironment = nil
	if r.environment != nil {
		r.environment.Release()
	}
	r.environment = env
	r.log.Infof("World environment realized (from cache: %t)", res.FromCache)
}

// applyPlan mirrors the planned changes into the caches, light store and camera.
func (r *renderer) applyPlan(plan framePlan, w world.World) {
	if plan.clear {
		r.models.Clear()
	}

	for _, label := range plan.modelOrder {
		switch plan.models[label] {
		case modelDrop:
			r.models.Remove(label)
		case modelRefresh:
			r.refreshModel(label, w)
		}
	}

	if plan.lights && r.lights != nil {
		if err := r.lights.Update(r.device, r.queue, w.Lights()); err != nil {
			r.log.Errorf("Failed to update lights: %v", err)
		}
	}

	if plan.camera {
		desc, ok := w.ActiveCamera()
		if !ok {
			desc = camera.DefaultDescriptor()
		}
		desc.Aspect = r.aspect()
		r.camera.Update(r.queue, desc)
	}
}

// refreshModel realizes the model stored under label, or only rewrites its instances
// when its mesh and materials did not change.
func (r *renderer) refreshModel(label string, w world.World) {
	desc, ok := w.Model(label)
	if !ok {
		r.models.Remove(label)
		return
	}

	if existing, ok := r.models.Get(label); ok && existing.model.InstanceHash() == desc.InstanceHash() {
		if err := existing.model.UpdateInstances(r.device, r.queue, desc.Transforms); err != nil {
			r.log.Errorf("Failed to update instances of %q: %v", label, err)
		}
		return
	}

	rm, err := r.realizeModel(desc)
	if err != nil {
		r.log.Errorf("Failed to realize model %q: %v", label, err)
		return
	}
	r.models.Insert(label, rm)
}

func (r *renderer) realizeModel(desc *model.Descriptor) (*realizedModel, error) {
	meshKey := desc.Mesh.Hash()
	mesh, err := r.meshes.GetOrCreate(meshKey, func() (model.Mesh, error) {
		return model.NewMesh(r.device, r.queue, desc.Label, desc.Mesh)
	})
	if err != nil {
		return nil, err
	}

	rm := &realizedModel{meshKey: meshKey, meshes: r.meshes, materials: r.materials}
	fail := func(err error) (*realizedModel, error) {
		r.meshes.Release(meshKey)
		for _, k := range rm.materialKeys {
			r.materials.Release(k)
		}
		return nil, err
	}

	descs := desc.Materials
	if len(descs) == 0 {
		descs = []material.Descriptor{material.NewDescriptor("Default")}
	}
	materials := make([]material.Material, 0, len(descs))
	for _, md := range descs {
		key := md.Hash()
		entry, err := r.materials.GetOrCreate(key, func() (*materialEntry, error) {
			return r.newMaterial(md)
		})
		if err != nil {
			return fail(err)
		}
		rm.materialKeys = append(rm.materialKeys, key)
		materials = append(materials, entry.material)
		if rm.pipeline == nil {
			rm.pipeline = entry.pipeline
		}
	}

	m, err := model.New(r.device, r.queue, desc, mesh, materials)
	if err != nil {
		return fail(err)
	}
	rm.model = m
	return rm, nil
}

func (r *renderer) newMaterial(desc material.Descriptor) (*materialEntry, error) {
	entry := &materialEntry{textures: r.textures, pipeline: r.core.pbr}
	if desc.Shader != nil {
		p, key, err := r.materialPipeline(*desc.Shader)
		if err != nil {
			return nil, fmt.Errorf("material %q shader: %w", desc.Label, err)
		}
		entry.pipeline, entry.pipelineKey, entry.pipelines = p, key, r.pipelines
	}
	provider := func(td texture.Descriptor) (texture.Texture, error) {
		key := td.Hash()
		t, err := r.textures.GetOrCreate(key, func() (texture.Texture, error) {
			return texture.New(r.device, r.queue, td)
		})
		if err != nil {
			return nil, err
		}
		entry.textureKeys = append(entry.textureKeys, key)
		return t, nil
	}

	m, err := material.New(r.device, r.queue, entry.pipeline.BindGroupLayout(0), desc, provider)
	if err != nil {
		for _, k := range entry.textureKeys {
			r.textures.Release(k)
		}
		if entry.pipelines != nil {
			r.pipelines.Release(entry.pipelineKey)
		}
		return nil, err
	}
	entry.material = m
	return entry, nil
}

// drawable returns the realized models with at least one instance, ordered by label.
func (r *renderer) drawable() []*realizedModel {
	labels := cache.SortedKeys(r.models)
	out := make([]*realizedModel, 0, len(labels))
	for _, label := range labels {
		rm, ok := r.models.Get(label)
		if !ok || rm.model.InstanceCount() == 0 {
			continue
		}
		out = append(out, rm)
	}
	return out
}

// prepareIndirect uploads the draw records and the per-model cull params.
func (r *renderer) prepareIndirect(drawn []*realizedModel) error {
	if len(drawn) == 0 {
		return nil
	}

	models := make([]model.Model, len(drawn))
	for i, rm := range drawn {
		models[i] = rm.model
	}
	data := MarshalDraws(buildDraws(models))

	if needed := uint64(len(data)); r.indirect == nil || needed > r.indirectCapacity {
		capacity := max(needed, r.indirectCapacity*2)
		buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Indirect Draw Buffer",
			Size:  capacity,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("failed to create indirect draw buffer: %w", err)
		}
		if r.indirect != nil {
			r.indirect.Release()
		}
		r.indirect = buf
		r.indirectCapacity = capacity
		r.indirectGeneration++
	}
	r.queue.WriteBuffer(r.indirect, 0, data)

	for i, rm := range drawn {
		if !rm.culled() {
			continue
		}
		if err := rm.ensureCullGroup(r.device, r.core.cull.BindGroupLayout(1), r.indirect, r.indirectGeneration); err != nil {
			r.log.Errorf("Model %q is drawn without culling: %v", rm.model.Label(), err)
			continue
		}
		r.queue.WriteBuffer(rm.params, 0, CullParams{DrawIndex: uint32(i), InstanceCount: rm.model.InstanceCount()}.Marshal())
	}
	return nil
}

// encode records cull, sky box, model and debug passes into one command buffer and submits it.
func (r *renderer) encode(view *wgpu.TextureView, drawn []*realizedModel) error {
	encoder, err := r.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Frame Encoder"})
	if err != nil {
		return fmt.Errorf("failed to create frame encoder: %w", err)
	}
	defer encoder.Release()

	if len(drawn) > 0 {
		pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: "Cull Pass"})
		pass.SetPipeline(r.core.cull.Compute())
		pass.SetBindGroup(0, r.camera.FrustumBindGroup(), nil)
		for _, rm := range drawn {
			if rm.cullGroup == nil || rm.cullIndirect != r.indirectGeneration {
				continue
			}
			pass.SetBindGroup(1, rm.cullGroup, nil)
			pass.DispatchWorkgroups(1, 1, 1)
		}
		pass.End()
	}

	env := r.environment
	colorLoad := wgpu.LoadOpClear
	if env != nil {
		colorLoad = wgpu.LoadOpLoad
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: "Sky Box Pass",
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{View: view, LoadOp: wgpu.LoadOpLoad, StoreOp: wgpu.StoreOpStore},
			},
		})
		pass.SetPipeline(r.core.skyBox.Render())
		pass.SetBindGroup(0, env.bindings.SkyBoxBindGroup(), nil)
		pass.SetBindGroup(1, r.camera.BindGroup(), nil)
		pass.Draw(3, 1, 0, 0)
		pass.End()
	} else {
		env = r.fallback
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Model Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{View: view, LoadOp: colorLoad, StoreOp: wgpu.StoreOpStore, ClearValue: r.clearColor},
		},
		DepthStencilAttachment: r.depthAttachment(),
	})
	if len(drawn) > 0 {
		pass.SetBindGroup(1, r.camera.BindGroup(), nil)
		pass.SetBindGroup(2, r.lights.BindGroup(), nil)
		pass.SetBindGroup(3, env.bindings.PBRBindGroup(), nil)
		var current pipeline.Pipeline
		for i, rm := range drawn {
			if rm.pipeline != current {
				pass.SetPipeline(rm.pipeline.Render())
				current = rm.pipeline
			}
			mesh := rm.model.Mesh()
			pass.SetBindGroup(0, rm.model.Materials()[0].BindGroup(), nil)
			pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
			pass.SetVertexBuffer(1, rm.model.InstanceBuffer(), 0, wgpu.WholeSize)
			pass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexedIndirect(r.indirect, IndirectOffset(i))
		}
	}
	pass.End()

	if r.debug.Wireframes && len(drawn) > 0 {
		pass := r.beginDebugPass(encoder, view, "Wireframe Pass")
		pass.SetPipeline(r.core.wireframe.Render())
		pass.SetBindGroup(0, r.camera.BindGroup(), nil)
		for _, rm := range drawn {
			mesh := rm.model.Mesh()
			pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
			pass.SetVertexBuffer(1, rm.model.InstanceBuffer(), 0, wgpu.WholeSize)
			pass.SetIndexBuffer(mesh.WireframeBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(mesh.WireframeCount(), rm.model.InstanceCount(), 0, 0, 0)
		}
		pass.End()
	}

	if r.debug.BoundingBoxes && len(drawn) > 0 {
		pass := r.beginDebugPass(encoder, view, "Bounding Box Pass")
		pass.SetPipeline(r.core.boundingBox.Render())
		pass.SetBindGroup(0, r.camera.BindGroup(), nil)
		for _, rm := range drawn {
			if !rm.culled() {
				continue
			}
			if err := rm.ensureBoundsGroup(r.device, r.core.boundingBox.BindGroupLayout(1)); err != nil {
				r.log.Errorf("Skipping bounding box of %q: %v", rm.model.Label(), err)
				continue
			}
			pass.SetBindGroup(1, rm.boundsGroup, nil)
			pass.Draw(24, rm.model.InstanceCount(), 0, 0)
		}
		pass.End()
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (r *renderer) depthAttachment() *wgpu.RenderPassDepthStencilAttachment {
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            r.depth.View(),
		DepthLoadOp:     wgpu.LoadOpClear,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}
}

func (r *renderer) beginDebugPass(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, label string) *wgpu.RenderPassEncoder {
	return encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{View: view, LoadOp: wgpu.LoadOpLoad, StoreOp: wgpu.StoreOpStore},
		},
		DepthStencilAttachment: r.depthAttachment(),
	})
}

func (r *renderer) Release() {
	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			r.log.Warnf("Failed to stop shader watcher: %v", err)
		}
		r.watcher = nil
	}
	for _, c := range []interface{ Clear() }{r.models, r.materials, r.meshes, r.textures, r.pipelines, r.shaders} {
		if c != nil {
			c.Clear()
		}
	}
	r.coreKeys = nil
	if r.environment != nil {
		r.environment.Release()
		r.environment = nil
	}
	if r.fallback != nil {
		r.fallback.Release()
		r.fallback = nil
	}
	if r.lights != nil {
		r.lights.Release()
		r.lights = nil
	}
	if r.camera != nil {
		r.camera.Release()
		r.camera = nil
	}
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
	if r.indirect != nil {
		r.indirect.Release()
		r.indirect = nil
	}
	if r.ibl != nil {
		r.ibl.Release()
		r.ibl = nil
	}
}
