package loader

import (
	"fmt"
	"slices"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	unlabelledModel  = "unlabelled glTF model"
	unlabelledCamera = "unlabelled glTF camera"
	unlabelledLight  = "unlabelled glTF light"

	// maxNodeDepth guards against cyclic node hierarchies.
	maxNodeDepth = 256
)

// sceneWalker turns the node hierarchy of an asset into world changes.
type sceneWalker struct {
	file      *gltfFile
	materials *materialExtractor
	labels    []string
	changes   []world.WorldChange
	meshes    map[meshKey]*model.MeshDescriptor
	log       *log.Logger
}

type meshKey struct {
	mesh, primitive int
}

// buildChanges walks the default scene, or every scene when no default is set,
// and returns one SpawnModel per mesh primitive, one SpawnCamera per perspective
// camera and one SpawnLight per punctual light.
//
// Parameters:
//   - f: the parsed asset
//   - labels: when non-empty, only nodes whose resulting label is listed are spawned
//   - logger: receives warnings about skipped cameras and lights
//
// Returns:
//   - []world.WorldChange: the spawn requests in node order
//   - error: the first extraction failure
func buildChanges(f *gltfFile, labels []string, logger *log.Logger) ([]world.WorldChange, error) {
	w := &sceneWalker{
		file:      f,
		materials: newMaterialExtractor(f),
		labels:    labels,
		meshes:    make(map[meshKey]*model.MeshDescriptor),
		log:       logger,
	}

	for _, scene := range w.scenes() {
		for _, root := range scene.Nodes {
			if err := w.walk(root, mgl32.Ident4(), 0); err != nil {
				return nil, err
			}
		}
	}
	return w.changes, nil
}

func (w *sceneWalker) scenes() []gltfScene {
	doc := w.file.doc
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene : *doc.Scene+1]
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes
	}

	// Assets without scenes: every node that is no other node's child is a root.
	children := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			children[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !children[i] {
			roots = append(roots, i)
		}
	}
	return []gltfScene{{Nodes: roots}}
}

func (w *sceneWalker) walk(index int, parent mgl32.Mat4, depth int) error {
	doc := w.file.doc
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("%w: node %d out of range", common.ErrGltfParse, index)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("%w: node hierarchy deeper than %d", common.ErrGltfParse, maxNodeDepth)
	}

	node := &doc.Nodes[index]
	global := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		if err := w.spawnMesh(node, *node.Mesh, global); err != nil {
			return fmt.Errorf("node %d: %w", index, err)
		}
	}
	if node.Camera != nil {
		if err := w.spawnCamera(node, *node.Camera, global); err != nil {
			return fmt.Errorf("node %d: %w", index, err)
		}
	}
	if ext := node.Extensions; ext != nil && ext.LightsPunctual != nil {
		if err := w.spawnLight(node, ext.LightsPunctual.Light, global); err != nil {
			return fmt.Errorf("node %d: %w", index, err)
		}
	}

	for _, child := range node.Children {
		if err := w.walk(child, global, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *sceneWalker) wanted(label string) bool {
	return len(w.labels) == 0 || slices.Contains(w.labels, label)
}

func (w *sceneWalker) spawnMesh(node *gltfNode, index int, global mgl32.Mat4) error {
	doc := w.file.doc
	if index < 0 || index >= len(doc.Meshes) {
		return fmt.Errorf("%w: mesh %d out of range", common.ErrGltfParse, index)
	}
	src := &doc.Meshes[index]

	base := common.Coalesce(node.Name, src.Name, unlabelledModel)
	position, rotation, scale := common.DecomposeTRS(global)
	transform := model.Transform{Position: position, Rotation: rotation, Scale: scale}

	for p := range src.Primitives {
		label := base
		if len(src.Primitives) > 1 {
			label = fmt.Sprintf("%s #%d", base, p)
		}
		if !w.wanted(label) && !w.wanted(base) {
			continue
		}

		key := meshKey{mesh: index, primitive: p}
		mesh, ok := w.meshes[key]
		if !ok {
			var err error
			if mesh, err = extractMesh(w.file, &src.Primitives[p]); err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", base, p, err)
			}
			w.meshes[key] = mesh
		}

		mat, err := w.materials.Material(src.Primitives[p].Material)
		if err != nil {
			return err
		}

		w.changes = append(w.changes, world.SpawnModel{
			Descriptor: model.NewDescriptor(label, mesh,
				model.WithMaterials(mat),
				model.WithTransforms(transform),
			),
		})
	}
	return nil
}

func (w *sceneWalker) spawnCamera(node *gltfNode, index int, global mgl32.Mat4) error {
	doc := w.file.doc
	if index < 0 || index >= len(doc.Cameras) {
		return fmt.Errorf("%w: camera %d out of range", common.ErrGltfParse, index)
	}
	src := &doc.Cameras[index]
	if src.Type != gltfCameraTypePerspective || src.Perspective == nil {
		w.log.Warn("skipping non-perspective glTF camera", "camera", index, "type", src.Type)
		return nil
	}

	label := common.Coalesce(node.Name, src.Name, unlabelledCamera)
	if !w.wanted(label) {
		return nil
	}

	desc := camera.DefaultDescriptor()
	desc.Label = label
	desc.Position = global.Col(3).Vec3()
	desc.Yaw, desc.Pitch = yawPitch(forward(global))
	desc.FovY = mgl32.RadToDeg(src.Perspective.Yfov)
	desc.Near = src.Perspective.Znear
	if src.Perspective.AspectRatio != nil && *src.Perspective.AspectRatio > 0 {
		desc.Aspect = *src.Perspective.AspectRatio
	}
	if src.Perspective.Zfar != nil {
		desc.Far = *src.Perspective.Zfar
	}

	w.changes = append(w.changes, world.SpawnCamera{Descriptor: desc})
	return nil
}

func (w *sceneWalker) spawnLight(node *gltfNode, index int, global mgl32.Mat4) error {
	var lights []gltfLight
	if ext := w.file.doc.Extensions; ext != nil && ext.LightsPunctual != nil {
		lights = ext.LightsPunctual.Lights
	}
	if index < 0 || index >= len(lights) {
		return fmt.Errorf("%w: light %d out of range", common.ErrGltfParse, index)
	}
	src := &lights[index]

	label := common.Coalesce(node.Name, src.Name, unlabelledLight)
	if !w.wanted(label) {
		return nil
	}

	position := global.Col(3).Vec3()
	direction := forward(global)

	opts := []light.LightBuilderOption{}
	if src.Color != nil {
		opts = append(opts, light.WithColor(*src.Color))
	}
	if src.Intensity != nil {
		opts = append(opts, light.WithIntensity(*src.Intensity))
	}
	if src.Range != nil {
		opts = append(opts, light.WithRange(*src.Range))
	}

	var desc light.Descriptor
	switch src.Type {
	case gltfLightTypeDirectional:
		desc = light.Directional(label, direction, opts...)
	case gltfLightTypePoint:
		desc = light.Point(label, position, opts...)
	case gltfLightTypeSpot:
		inner, outer := float32(0), float32(math32.Pi/4)
		if src.Spot != nil {
			if src.Spot.InnerConeAngle != nil {
				inner = *src.Spot.InnerConeAngle
			}
			if src.Spot.OuterConeAngle != nil {
				outer = *src.Spot.OuterConeAngle
			}
		}
		opts = append(opts, light.WithSpotCone(mgl32.RadToDeg(inner), mgl32.RadToDeg(outer)))
		desc = light.Spot(label, position, direction, opts...)
	default:
		w.log.Warn("skipping glTF light of unknown type", "light", index, "type", src.Type)
		return nil
	}

	w.changes = append(w.changes, world.SpawnLight{Descriptor: desc})
	return nil
}

// localMatrix returns the node's matrix, or T * R * S when it is given as components.
func localMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}
	position := mgl32.Vec3{}
	rotation := mgl32.QuatIdent()
	scale := mgl32.Vec3{1, 1, 1}
	if node.Translation != nil {
		position = *node.Translation
	}
	if r := node.Rotation; r != nil {
		rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	}
	if node.Scale != nil {
		scale = *node.Scale
	}
	return common.ComposeTRS(position, rotation, scale)
}

// forward is the world direction of the local -Z axis, along which glTF cameras
// look and lights shine.
func forward(global mgl32.Mat4) mgl32.Vec3 {
	f := global.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if f.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return f.Normalize()
}

// yawPitch inverts camera.Descriptor.Forward.
func yawPitch(f mgl32.Vec3) (float32, float32) {
	pitch := math32.Asin(common.Clamp(f.Y(), -1, 1))
	pitch = common.Clamp(pitch, -camera.SafeFracPi2, camera.SafeFracPi2)
	return math32.Atan2(f.Z(), f.X()), pitch
}
