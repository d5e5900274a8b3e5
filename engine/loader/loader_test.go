package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/config"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAsset assembles a glTF document and its binary buffer.
type testAsset struct {
	doc gltfDocument
	bin []byte
}

func newTestAsset() *testAsset {
	return &testAsset{doc: gltfDocument{Asset: gltfAsset{Version: "2.0"}}}
}

func (a *testAsset) view(data []byte) int {
	for len(a.bin)%4 != 0 {
		a.bin = append(a.bin, 0)
	}
	a.doc.BufferViews = append(a.doc.BufferViews, gltfBufferView{ByteOffset: len(a.bin), ByteLength: len(data)})
	a.bin = append(a.bin, data...)
	return len(a.doc.BufferViews) - 1
}

func (a *testAsset) floats(accessorType string, values ...float32) int {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	a.doc.Accessors = append(a.doc.Accessors, gltfAccessor{
		BufferView:    common.Ptr(a.view(data)),
		ComponentType: gltfComponentTypeFloat,
		Count:         len(values) / gltfComponentCount(accessorType),
		Type:          accessorType,
	})
	return len(a.doc.Accessors) - 1
}

func (a *testAsset) indices(values ...uint16) int {
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}
	a.doc.Accessors = append(a.doc.Accessors, gltfAccessor{
		BufferView:    common.Ptr(a.view(data)),
		ComponentType: gltfComponentTypeUnsignedShort,
		Count:         len(values),
		Type:          gltfAccessorTypeScalar,
	})
	return len(a.doc.Accessors) - 1
}

// triangle adds a mesh with one right triangle in the XY plane and returns its index.
func (a *testAsset) triangle(name string, materialIndex *int) int {
	prim := gltfPrimitive{
		Attributes: map[string]int{
			"POSITION":   a.floats(gltfAccessorTypeVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0),
			"TEXCOORD_0": a.floats(gltfAccessorTypeVec2, 0, 0, 1, 0, 0, 1),
		},
		Indices:  common.Ptr(a.indices(0, 1, 2)),
		Material: materialIndex,
	}
	a.doc.Meshes = append(a.doc.Meshes, gltfMesh{Name: name, Primitives: []gltfPrimitive{prim}})
	return len(a.doc.Meshes) - 1
}

func (a *testAsset) node(n gltfNode) int {
	a.doc.Nodes = append(a.doc.Nodes, n)
	return len(a.doc.Nodes) - 1
}

func (a *testAsset) pngImage(t *testing.T, pixels ...color.NRGBA) int {
	img := image.NewNRGBA(image.Rect(0, 0, len(pixels), 1))
	for x, p := range pixels {
		img.SetNRGBA(x, 0, p)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	a.doc.Images = append(a.doc.Images, gltfImage{MimeType: "image/png", BufferView: common.Ptr(a.view(buf.Bytes()))})
	return len(a.doc.Images) - 1
}

// gltfJSON embeds the buffer as a base64 data URI.
func (a *testAsset) gltfJSON(t *testing.T) []byte {
	doc := a.doc
	doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(a.bin),
		ByteLength: len(a.bin),
	}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

// glb packs the document and buffer into a GLB container.
func (a *testAsset) glb(t *testing.T) []byte {
	doc := a.doc
	doc.Buffers = []gltfBuffer{{ByteLength: len(a.bin)}}
	jsonData, err := json.Marshal(doc)
	require.NoError(t, err)

	pad := func(b []byte, fill byte) []byte {
		b = append([]byte(nil), b...)
		for len(b)%4 != 0 {
			b = append(b, fill)
		}
		return b
	}
	jsonData = pad(jsonData, ' ')
	bin := pad(a.bin, 0)

	var out bytes.Buffer
	total := gltfGLBHeaderSize + 2*gltfGLBChunkHeader + len(jsonData) + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, [3]uint32{gltfGLBMagic, gltfGLBVersion, uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, [2]uint32{uint32(len(jsonData)), gltfGLBChunkJSON}))
	out.Write(jsonData)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, [2]uint32{uint32(len(bin)), gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}

func testLogger() *log.Logger {
	return logger.With("component", "loader-test")
}

func TestParse_DataURIAndGLB(t *testing.T) {
	a := newTestAsset()
	positions := a.floats(gltfAccessorTypeVec3, 1, 2, 3, 4, 5, 6)

	for name, data := range map[string][]byte{"gltf": a.gltfJSON(t), "glb": a.glb(t)} {
		t.Run(name, func(t *testing.T) {
			f, err := parseGLTFBytes(data, ".")
			require.NoError(t, err)

			values, err := f.readFloats(positions, gltfAccessorTypeVec3)
			require.NoError(t, err)
			assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values)
		})
	}
}

func TestParse_ExternalBuffer(t *testing.T) {
	a := newTestAsset()
	a.floats(gltfAccessorTypeScalar, 7)
	doc := a.doc
	doc.Buffers = []gltfBuffer{{URI: "data.bin", ByteLength: len(a.bin)}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.bin"), a.bin, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "asset.gltf"), data, 0o644))

	f, err := parseGLTFFile(filepath.Join(dir, "asset.gltf"))
	require.NoError(t, err)
	values, err := f.readFloats(0, gltfAccessorTypeScalar)
	require.NoError(t, err)
	assert.Equal(t, []float32{7}, values)

	_, err = parseGLTFFile(filepath.Join(dir, "missing.gltf"))
	assert.ErrorIs(t, err, common.ErrIo)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"invalid json", []byte("{not json")},
		{"wrong version", []byte(`{"asset":{"version":"1.0"}}`)},
		{"unsupported required extension", []byte(`{"asset":{"version":"2.0"},"extensionsRequired":["KHR_draco_mesh_compression"]}`)},
		{"buffer without data", []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4}]}`)},
		{"short buffer", []byte(`{"asset":{"version":"2.0"},"buffers":[{"uri":"data:application/octet-stream;base64,AAAA","byteLength":8}]}`)},
		{"truncated glb", []byte{0x67, 0x6C, 0x54, 0x46, 2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGLTFBytes(tt.data, ".")
			assert.ErrorIs(t, err, common.ErrGltfParse)
		})
	}
}

func TestReadFloats_Validation(t *testing.T) {
	a := newTestAsset()
	vec3 := a.floats(gltfAccessorTypeVec3, 1, 2, 3)
	idx := a.indices(0, 1, 2)

	// normalized unsigned shorts map to [0, 1]
	a.doc.Accessors = append(a.doc.Accessors, gltfAccessor{
		BufferView:    common.Ptr(a.view([]byte{0, 0, 0xFF, 0xFF})),
		ComponentType: gltfComponentTypeUnsignedShort,
		Normalized:    true,
		Count:         1,
		Type:          gltfAccessorTypeVec2,
	})
	normalized := len(a.doc.Accessors) - 1

	f, err := parseGLTFBytes(a.gltfJSON(t), ".")
	require.NoError(t, err)

	_, err = f.readFloats(vec3, gltfAccessorTypeVec2)
	assert.ErrorIs(t, err, common.ErrGltfParse)
	_, err = f.readFloats(99, gltfAccessorTypeVec3)
	assert.ErrorIs(t, err, common.ErrGltfParse)
	_, err = f.readFloats(idx, gltfAccessorTypeScalar)
	assert.ErrorIs(t, err, common.ErrGltfParse, "integer accessors must be normalized")

	values, err := f.readFloats(normalized, gltfAccessorTypeVec2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, values)

	indices, err := f.readIndices(idx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices)
}

func TestExtractMesh_GeneratesNormalsAndTangents(t *testing.T) {
	a := newTestAsset()
	a.triangle("tri", nil)
	f, err := parseGLTFBytes(a.gltfJSON(t), ".")
	require.NoError(t, err)

	mesh, err := extractMesh(f, &f.doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	require.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)

	for _, v := range mesh.Vertices {
		assert.True(t, v.Normal.ApproxEqual(mgl32.Vec3{0, 0, 1}), "normal %v", v.Normal)
		assert.True(t, v.Tangent.ApproxEqual(mgl32.Vec3{1, 0, 0}), "tangent %v", v.Tangent)
		assert.True(t, v.Bitangent.ApproxEqual(mgl32.Vec3{0, 1, 0}), "bitangent %v", v.Bitangent)
	}
	assert.Equal(t, mgl32.Vec2{1, 0}, mesh.Vertices[1].UV)
}

func TestExtractMesh_NonIndexed(t *testing.T) {
	a := newTestAsset()
	prim := gltfPrimitive{Attributes: map[string]int{
		"POSITION": a.floats(gltfAccessorTypeVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0),
		"NORMAL":   a.floats(gltfAccessorTypeVec3, 0, 0, 1, 0, 0, 1, 0, 0, 1),
	}}
	a.doc.Meshes = []gltfMesh{{Primitives: []gltfPrimitive{prim}}}
	f, err := parseGLTFBytes(a.gltfJSON(t), ".")
	require.NoError(t, err)

	mesh, err := extractMesh(f, &f.doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, mesh.Vertices[2].Normal)

	lines := 1
	f.doc.Meshes[0].Primitives[0].Mode = &lines
	_, err = extractMesh(f, &f.doc.Meshes[0].Primitives[0])
	assert.ErrorIs(t, err, common.ErrGltfParse)

	delete(f.doc.Meshes[0].Primitives[0].Attributes, "POSITION")
	f.doc.Meshes[0].Primitives[0].Mode = nil
	_, err = extractMesh(f, &f.doc.Meshes[0].Primitives[0])
	assert.ErrorIs(t, err, common.ErrGltfParse)
}

func TestMaterial_FactorsAndTextures(t *testing.T) {
	a := newTestAsset()
	packed := a.pngImage(t, color.NRGBA{R: 0, G: 10, B: 20, A: 255}, color.NRGBA{R: 0, G: 30, B: 40, A: 255})
	albedo := a.pngImage(t, color.NRGBA{R: 255, A: 255})
	a.doc.Samplers = []gltfSampler{{
		MagFilter: common.Ptr(gltfFilterNearest),
		MinFilter: common.Ptr(gltfFilterNearest),
		WrapS:     common.Ptr(gltfWrapClampToEdge),
	}}
	a.doc.Textures = []gltfTexture{{Source: &packed}, {Source: &albedo, Sampler: common.Ptr(0)}}
	a.doc.Materials = []gltfMaterial{{
		Name: "painted metal",
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorFactor:          &[4]float32{0.5, 0.5, 0.5, 1},
			BaseColorTexture:         &gltfTextureInfo{Index: 1},
			MetallicFactor:           common.Ptr(float32(0.25)),
			RoughnessFactor:          common.Ptr(float32(2)),
			MetallicRoughnessTexture: &gltfTextureInfo{Index: 0},
		},
		EmissiveFactor: &[3]float32{1, 0.5, 0},
	}, {}}

	f, err := parseGLTFBytes(a.gltfJSON(t), ".")
	require.NoError(t, err)
	e := newMaterialExtractor(f)

	m, err := e.Material(common.Ptr(0))
	require.NoError(t, err)
	assert.Equal(t, "painted metal", m.Label)
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0.5, 1}, m.Factors.Albedo)
	assert.Equal(t, float32(0.25), m.Factors.Metallic)
	assert.Equal(t, float32(1), m.Factors.Roughness, "factors are clamped")
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, m.Factors.Emissive)
	assert.Equal(t, float32(1), m.Factors.EmissiveStrength)

	metallic, ok := m.Textures[material.SlotMetallic].(texture.FromData)
	require.True(t, ok)
	assert.Equal(t, wgpu.TextureFormatR8Unorm, metallic.Format)
	assert.Equal(t, []byte{20, 40}, metallic.Pixels)
	assert.Equal(t, uint32(2), metallic.Size.Width)

	roughness := m.Textures[material.SlotRoughness].(texture.FromData)
	assert.Equal(t, []byte{10, 30}, roughness.Pixels)
	assert.Equal(t, texture.UsageRoughness, roughness.Usage)

	base := m.Textures[material.SlotAlbedo].(texture.FromData)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, base.Format)
	require.NotNil(t, base.Sampler)
	require.NotNil(t, base.Sampler.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, *base.Sampler.MagFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, base.Sampler.AddressModeU)
	require.NotNil(t, base.Sampler.MipmapFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, *base.Sampler.MipmapFilter)

	assert.Nil(t, m.Textures[material.SlotNormal])

	plain, err := e.Material(common.Ptr(1))
	require.NoError(t, err)
	assert.Equal(t, "glTF material 1", plain.Label)
	assert.Equal(t, material.DefaultFactors(), plain.Factors)

	def, err := e.Material(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMaterialLabel, def.Label)

	_, err = e.Material(common.Ptr(5))
	assert.ErrorIs(t, err, common.ErrGltfParse)
}

// sceneAsset has a parent node offsetting a mesh child, a camera and a spot light.
func sceneAsset(t *testing.T) []byte {
	a := newTestAsset()
	mesh := a.triangle("triangle mesh", nil)

	child := a.node(gltfNode{Name: "child", Mesh: &mesh, Translation: &[3]float32{0, 2, 0}})
	unnamed := a.node(gltfNode{Mesh: &mesh, Scale: &[3]float32{2, 2, 2}})
	parent := a.node(gltfNode{Name: "parent", Children: []int{child}, Translation: &[3]float32{1, 0, 0}})

	a.doc.Cameras = []gltfCamera{{Type: gltfCameraTypePerspective, Perspective: &gltfCameraPerspective{
		AspectRatio: common.Ptr(float32(1.5)),
		Yfov:        math32.Pi / 2,
		Znear:       0.5,
		Zfar:        common.Ptr(float32(100)),
	}}}
	cam := a.node(gltfNode{Name: "eye", Camera: common.Ptr(0), Translation: &[3]float32{0, 1, 5}})

	a.doc.Extensions = &gltfDocumentExtensions{LightsPunctual: &gltfLightsPunctual{Lights: []gltfLight{{
		Name:      "lamp",
		Type:      gltfLightTypeSpot,
		Color:     &[3]float32{1, 0, 0},
		Intensity: common.Ptr(float32(3)),
		Spot:      &gltfSpot{OuterConeAngle: common.Ptr(float32(math32.Pi / 3))},
	}}}}
	lamp := a.node(gltfNode{Extensions: &gltfNodeExtensions{LightsPunctual: &gltfNodeLight{Light: 0}}})

	a.doc.Scenes = []gltfScene{{Nodes: []int{parent, unnamed, cam, lamp}}}
	a.doc.Scene = common.Ptr(0)
	return a.gltfJSON(t)
}

func TestBuildChanges(t *testing.T) {
	f, err := parseGLTFBytes(sceneAsset(t), ".")
	require.NoError(t, err)

	changes, err := buildChanges(f, nil, testLogger())
	require.NoError(t, err)
	require.Len(t, changes, 4)

	child, ok := changes[0].(world.SpawnModel)
	require.True(t, ok)
	assert.Equal(t, "child", child.Descriptor.Label)
	pos := child.Descriptor.Transforms[0].Transform.Position
	assert.True(t, pos.ApproxEqual(mgl32.Vec3{1, 2, 0}), "position %v", pos)
	assert.Equal(t, defaultMaterialLabel, child.Descriptor.Materials[0].Label)

	unnamed := changes[1].(world.SpawnModel)
	assert.Equal(t, "triangle mesh", unnamed.Descriptor.Label)
	assert.True(t, unnamed.Descriptor.Transforms[0].Transform.Scale.ApproxEqual(mgl32.Vec3{2, 2, 2}))
	assert.Same(t, child.Descriptor.Mesh, unnamed.Descriptor.Mesh, "primitives are converted once")

	cam := changes[2].(world.SpawnCamera).Descriptor
	assert.Equal(t, "eye", cam.Label)
	assert.True(t, cam.Position.ApproxEqual(mgl32.Vec3{0, 1, 5}))
	assert.InDelta(t, 90, cam.FovY, 1e-3)
	assert.Equal(t, float32(1.5), cam.Aspect)
	assert.Equal(t, float32(0.5), cam.Near)
	assert.Equal(t, float32(100), cam.Far)
	assert.True(t, cam.Forward().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4), "forward %v", cam.Forward())

	lamp := changes[3].(world.SpawnLight).Descriptor
	assert.Equal(t, "lamp", lamp.Label)
	assert.Equal(t, light.LightTypeSpot, lamp.Type)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, lamp.Color)
	assert.Equal(t, float32(3), lamp.Intensity)
	assert.True(t, lamp.Direction.ApproxEqual(mgl32.Vec3{0, 0, -1}))
	assert.InDelta(t, 1, lamp.InnerCone, 1e-5)
	assert.InDelta(t, 0.5, lamp.OuterCone, 1e-5)
}

func TestBuildChanges_LabelFilter(t *testing.T) {
	f, err := parseGLTFBytes(sceneAsset(t), ".")
	require.NoError(t, err)

	changes, err := buildChanges(f, []string{"child", "lamp"}, testLogger())
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "child", changes[0].(world.SpawnModel).Descriptor.Label)
	assert.Equal(t, "lamp", changes[1].(world.SpawnLight).Descriptor.Label)
}

func TestBuildChanges_CyclicNodes(t *testing.T) {
	a := newTestAsset()
	a.node(gltfNode{Children: []int{1}})
	a.node(gltfNode{Children: []int{0}})
	a.doc.Scenes = []gltfScene{{Nodes: []int{0}}}

	f, err := parseGLTFBytes(a.gltfJSON(t), ".")
	require.NoError(t, err)
	_, err = buildChanges(f, nil, testLogger())
	assert.ErrorIs(t, err, common.ErrGltfParse)
}

func TestLocalMatrix(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	arr := [16]float32(m)
	assert.Equal(t, m, localMatrix(&gltfNode{Matrix: &arr}))

	rotated := localMatrix(&gltfNode{Rotation: &[4]float32{0, math32.Sin(math32.Pi / 4), 0, math32.Cos(math32.Pi / 4)}})
	assert.True(t, forward(rotated).ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5))

	yaw, pitch := yawPitch(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, yaw, 1e-6)
	assert.InDelta(t, 0, pitch, 1e-6)
}

func waitDone(t *testing.T, imp world.Importer) {
	t.Helper()
	require.Eventually(t, imp.IsDoneProcessing, 5*time.Second, 5*time.Millisecond)
}

func TestImporter_Lifecycle(t *testing.T) {
	l := NewLoader(WithWorkers(1), WithQueueSize(4))
	defer l.Close()

	imp := l.ImportBytes("scene", sceneAsset(t))
	_, err := imp.FinishProcessing()
	assert.ErrorIs(t, err, common.ErrLoaderNotDone)
	assert.False(t, imp.IsDoneProcessing())

	imp.BeginProcessing()
	imp.BeginProcessing()
	waitDone(t, imp)

	changes, err := imp.FinishProcessing()
	require.NoError(t, err)
	assert.Len(t, changes, 4)

	_, err = imp.FinishProcessing()
	assert.ErrorIs(t, err, common.ErrLoaderChannelClosed)
}

func TestImporter_Failure(t *testing.T) {
	l := NewLoader()
	defer l.Close()

	imp := l.ImportBytes("broken", []byte("{"))
	imp.BeginProcessing()
	waitDone(t, imp)

	changes, err := imp.FinishProcessing()
	assert.Nil(t, changes)
	assert.ErrorIs(t, err, common.ErrGltfParse)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.glb")

	a := newTestAsset()
	mesh := a.triangle("tri", nil)
	a.node(gltfNode{Name: "only", Mesh: &mesh})
	require.NoError(t, os.WriteFile(path, a.glb(t), 0o644))

	l := NewLoader(WithConfig(config.LoaderConfig{Workers: 2, QueueSize: 8}))
	defer l.Close()

	imp := l.FileLoader()(path, []string{"only"})
	imp.BeginProcessing()
	waitDone(t, imp)

	changes, err := imp.FinishProcessing()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "only", changes[0].(world.SpawnModel).Descriptor.Label)
}

func TestLoader_ImportAfterClose(t *testing.T) {
	l := NewLoader()
	l.Close()
	l.Close()

	imp := l.ImportBytes("late", sceneAsset(t))
	imp.BeginProcessing()
	assert.True(t, imp.IsDoneProcessing())
	changes, err := imp.FinishProcessing()
	require.NoError(t, err)
	assert.Len(t, changes, 4)
}

func TestWithConfig_IgnoresInvalidSizes(t *testing.T) {
	l := &loader{workers: defaultWorkers, queueSize: defaultQueueSize}
	WithConfig(config.LoaderConfig{Workers: 0, QueueSize: -1})(l)
	assert.Equal(t, defaultWorkers, l.workers)
	assert.Equal(t, defaultQueueSize, l.queueSize)

	WithWorkers(6)(l)
	assert.Equal(t, 6, l.workers)
}
