// gltf_types.go holds the subset of the glTF 2.0 JSON schema the importer reads.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

// gltfDocument is the root object of a glTF asset.
type gltfDocument struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       *int             `json:"scene,omitempty"`
	Scenes      []gltfScene      `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Cameras     []gltfCamera     `json:"cameras,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
	Textures    []gltfTexture    `json:"textures,omitempty"`
	Images      []gltfImage      `json:"images,omitempty"`
	Samplers    []gltfSampler    `json:"samplers,omitempty"`

	Extensions *gltfDocumentExtensions `json:"extensions,omitempty"`

	ExtensionsUsed     []string `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

type gltfAsset struct {
	// Version must be "2.0".
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// gltfNode is one entry of the transform hierarchy. A node carries either Matrix
// or any of Translation, Rotation and Scale.
type gltfNode struct {
	Name     string `json:"name,omitempty"`
	Children []int  `json:"children,omitempty"`
	Mesh     *int   `json:"mesh,omitempty"`
	Camera   *int   `json:"camera,omitempty"`

	// Matrix is column-major.
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	// Rotation is a quaternion in x, y, z, w order.
	Rotation *[4]float32 `json:"rotation,omitempty"`
	Scale    *[3]float32 `json:"scale,omitempty"`

	Extensions *gltfNodeExtensions `json:"extensions,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	// Attributes maps semantics such as POSITION or TEXCOORD_0 to accessor indices.
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

const gltfPrimitiveModeTriangles = 4

// --- Cameras ---

type gltfCamera struct {
	Name        string                 `json:"name,omitempty"`
	Type        string                 `json:"type"`
	Perspective *gltfCameraPerspective `json:"perspective,omitempty"`
}

const gltfCameraTypePerspective = "perspective"

type gltfCameraPerspective struct {
	AspectRatio *float32 `json:"aspectRatio,omitempty"`
	// Yfov is in radians.
	Yfov  float32  `json:"yfov"`
	Znear float32  `json:"znear"`
	Zfar  *float32 `json:"zfar,omitempty"`
}

// --- KHR_lights_punctual ---

const gltfExtensionLightsPunctual = "KHR_lights_punctual"

type gltfDocumentExtensions struct {
	LightsPunctual *gltfLightsPunctual `json:"KHR_lights_punctual,omitempty"`
}

type gltfLightsPunctual struct {
	Lights []gltfLight `json:"lights"`
}

type gltfNodeExtensions struct {
	LightsPunctual *gltfNodeLight `json:"KHR_lights_punctual,omitempty"`
}

type gltfNodeLight struct {
	Light int `json:"light"`
}

// gltfLight is a punctual light. Lights shine along the node's local -Z axis.
type gltfLight struct {
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type"`
	Color     *[3]float32 `json:"color,omitempty"`
	Intensity *float32    `json:"intensity,omitempty"`
	Range     *float32    `json:"range,omitempty"`
	Spot      *gltfSpot   `json:"spot,omitempty"`
}

const (
	gltfLightTypeDirectional = "directional"
	gltfLightTypePoint       = "point"
	gltfLightTypeSpot        = "spot"
)

// gltfSpot cone angles are in radians.
type gltfSpot struct {
	InnerConeAngle *float32 `json:"innerConeAngle,omitempty"`
	OuterConeAngle *float32 `json:"outerConeAngle,omitempty"`
}

// --- Buffers ---

type gltfAccessor struct {
	BufferView    *int   `json:"bufferView,omitempty"`
	ByteOffset    int    `json:"byteOffset,omitempty"`
	ComponentType int    `json:"componentType"`
	Normalized    bool   `json:"normalized,omitempty"`
	Count         int    `json:"count"`
	Type          string `json:"type"`

	// Sparse is only decoded to be rejected.
	Sparse *struct {
		Count int `json:"count"`
	} `json:"sparse,omitempty"`
}

const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
	gltfAccessorTypeMat4   = "MAT4"
)

type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

type gltfBuffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	// data is filled in after parsing from the URI or the GLB BIN chunk.
	data []byte
}

// --- Materials ---

type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *gltfScaledTextureInfo    `json:"normalTexture,omitempty"`
	OcclusionTexture     *gltfScaledTextureInfo    `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *gltfTextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32               `json:"emissiveFactor,omitempty"`
	Extensions           *gltfMaterialExtensions   `json:"extensions,omitempty"`
}

type gltfMaterialExtensions struct {
	EmissiveStrength *struct {
		EmissiveStrength float32 `json:"emissiveStrength"`
	} `json:"KHR_materials_emissive_strength,omitempty"`
}

type gltfPbrMetallicRoughness struct {
	BaseColorFactor  *[4]float32      `json:"baseColorFactor,omitempty"`
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32         `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32         `json:"roughnessFactor,omitempty"`
	// MetallicRoughnessTexture stores roughness in G and metalness in B.
	MetallicRoughnessTexture *gltfTextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

type gltfTextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// gltfScaledTextureInfo covers both normalTexture.scale and occlusionTexture.strength.
type gltfScaledTextureInfo struct {
	gltfTextureInfo

	Scale    *float32 `json:"scale,omitempty"`
	Strength *float32 `json:"strength,omitempty"`
}

type gltfTexture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// gltfImage is stored either behind URI or inside BufferView.
type gltfImage struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

type gltfSampler struct {
	MagFilter *int `json:"magFilter,omitempty"`
	MinFilter *int `json:"minFilter,omitempty"`
	WrapS     *int `json:"wrapS,omitempty"`
	WrapT     *int `json:"wrapT,omitempty"`
}

const (
	gltfFilterNearest              = 9728
	gltfFilterLinear               = 9729
	gltfFilterNearestMipmapNearest = 9984
	gltfFilterLinearMipmapNearest  = 9985
	gltfFilterNearestMipmapLinear  = 9986
	gltfFilterLinearMipmapLinear   = 9987
)

const (
	gltfWrapClampToEdge    = 33071
	gltfWrapMirroredRepeat = 33648
	gltfWrapRepeat         = 10497
)

// --- GLB container ---

// GLB files start with a 12 byte header followed by 8 byte chunk headers.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	gltfGLBMagic       = 0x46546C67 // "glTF"
	gltfGLBVersion     = 2
	gltfGLBChunkJSON   = 0x4E4F534A // "JSON"
	gltfGLBChunkBIN    = 0x004E4942 // "BIN\0"
	gltfGLBHeaderSize  = 12
	gltfGLBChunkHeader = 8
)
