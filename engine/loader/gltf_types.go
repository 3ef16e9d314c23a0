// gltf_types.go holds the glTF 2.0 JSON schema structures the importer
// deserializes into. Internal to the loader package.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

// gltfDocument is the root of a glTF JSON document.
type gltfDocument struct {
	// Asset contains metadata about the glTF asset.
	Asset gltfAsset `json:"asset"`

	// Scene is the index of the default scene.
	Scene *int `json:"scene,omitempty"`

	// Scenes is an array of scenes.
	Scenes []gltfScene `json:"scenes,omitempty"`

	// Nodes is the transform hierarchy.
	Nodes []gltfNode `json:"nodes,omitempty"`

	// Meshes is an array of meshes.
	Meshes []gltfMesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors []gltfAccessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers []gltfBuffer `json:"buffers,omitempty"`

	// Materials is an array of materials.
	Materials []gltfMaterial `json:"materials,omitempty"`

	// Textures is an array of textures.
	Textures []gltfTexture `json:"textures,omitempty"`

	// Images is an array of images.
	Images []gltfImage `json:"images,omitempty"`

	// Cameras is an array of cameras.
	Cameras []gltfCamera `json:"cameras,omitempty"`

	// ExtensionsRequired lists extensions required to load this asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// gltfAsset contains metadata about the glTF asset.
type gltfAsset struct {
	// Version is the glTF version (required, must be "2.x").
	Version string `json:"version"`

	// Generator is the tool that generated this asset.
	Generator string `json:"generator,omitempty"`
}

// gltfScene is a set of root nodes to render.
type gltfScene struct {
	Name string `json:"name,omitempty"`

	// Nodes are the indices of root nodes in this scene.
	Nodes []int `json:"nodes,omitempty"`
}

// gltfNode is a node in the transform hierarchy. Either Matrix or the
// translation/rotation/scale triple is set, never both.
type gltfNode struct {
	Name string `json:"name,omitempty"`

	// Children are indices of child nodes.
	Children []int `json:"children,omitempty"`

	// Mesh is the index of the mesh attached to this node.
	Mesh *int `json:"mesh,omitempty"`

	// Camera is the index of the camera attached to this node.
	Camera *int `json:"camera,omitempty"`

	// Matrix is a 4x4 transformation matrix (column-major).
	Matrix *[16]float32 `json:"matrix,omitempty"`

	// Translation is the node's translation (x, y, z).
	Translation *[3]float32 `json:"translation,omitempty"`

	// Rotation is the node's rotation as a quaternion (x, y, z, w).
	Rotation *[4]float32 `json:"rotation,omitempty"`

	// Scale is the node's scale (x, y, z).
	Scale *[3]float32 `json:"scale,omitempty"`
}

// gltfMesh is a set of primitives sharing a name.
type gltfMesh struct {
	Name string `json:"name,omitempty"`

	// Primitives defines the geometry to render.
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive defines one draw's worth of geometry.
type gltfPrimitive struct {
	// Attributes maps attribute semantics (POSITION, NORMAL, TANGENT,
	// TEXCOORD_0) to accessor indices.
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index for the index buffer.
	Indices *int `json:"indices,omitempty"`

	// Material is the material index.
	Material *int `json:"material,omitempty"`

	// Mode is the primitive topology, defaulting to triangles.
	Mode *int `json:"mode,omitempty"`
}

const gltfPrimitiveModeTriangles = 4

// gltfAccessor defines how to interpret a slice of buffer data.
type gltfAccessor struct {
	Name string `json:"name,omitempty"`

	// BufferView is the index of the bufferView.
	BufferView *int `json:"bufferView,omitempty"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType is the component data type, one of the gltfComponentType
	// constants.
	ComponentType int `json:"componentType"`

	// Count is the number of elements.
	Count int `json:"count"`

	// Type is the element type (SCALAR, VEC2, VEC3, VEC4, MAT4).
	Type string `json:"type"`

	// Sparse substitution is not supported; its presence fails the read.
	Sparse *struct{} `json:"sparse,omitempty"`
}

// Component type constants from the glTF 2.0 schema.
const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

// Accessor element type constants.
const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
	gltfAccessorTypeMat4   = "MAT4"
)

// gltfBufferView is a contiguous slice of a buffer.
type gltfBufferView struct {
	// Buffer is the index of the buffer.
	Buffer int `json:"buffer"`

	// ByteOffset is the offset into the buffer.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the view.
	ByteLength int `json:"byteLength"`

	// ByteStride is the stride between elements, nil for tightly packed.
	ByteStride *int `json:"byteStride,omitempty"`
}

// gltfBuffer is a raw binary data container. Data is filled in after the URI
// (or GLB binary chunk) is resolved.
type gltfBuffer struct {
	// URI is a file path or data URI, empty for the GLB binary chunk.
	URI string `json:"uri,omitempty"`

	// ByteLength is the declared buffer size.
	ByteLength int `json:"byteLength"`

	// Data holds the resolved bytes. Not part of the JSON schema.
	Data []byte `json:"-"`
}

// gltfMaterial is a PBR metallic-roughness material.
type gltfMaterial struct {
	Name string `json:"name,omitempty"`

	// PBRMetallicRoughness holds the core PBR factors and textures.
	PBRMetallicRoughness *gltfPBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`

	// NormalTexture is the tangent-space normal map.
	NormalTexture *gltfTextureRef `json:"normalTexture,omitempty"`

	// EmissiveTexture is the emissive map.
	EmissiveTexture *gltfTextureRef `json:"emissiveTexture,omitempty"`

	// EmissiveFactor is the emissive color (RGB).
	EmissiveFactor *[3]float32 `json:"emissiveFactor,omitempty"`
}

// gltfPBRMetallicRoughness holds the metallic-roughness parameter set.
type gltfPBRMetallicRoughness struct {
	// BaseColorFactor is the albedo factor (RGBA), defaulting to white.
	BaseColorFactor *[4]float32 `json:"baseColorFactor,omitempty"`

	// BaseColorTexture is the albedo map.
	BaseColorTexture *gltfTextureRef `json:"baseColorTexture,omitempty"`

	// MetallicFactor defaults to 1.
	MetallicFactor *float32 `json:"metallicFactor,omitempty"`

	// RoughnessFactor defaults to 1.
	RoughnessFactor *float32 `json:"roughnessFactor,omitempty"`

	// MetallicRoughnessTexture packs metallic (B) and roughness (G).
	MetallicRoughnessTexture *gltfTextureRef `json:"metallicRoughnessTexture,omitempty"`
}

// gltfTextureRef points a material slot at a texture.
type gltfTextureRef struct {
	// Index is the texture index.
	Index int `json:"index"`
}

// gltfTexture pairs an image with a sampler.
type gltfTexture struct {
	Name string `json:"name,omitempty"`

	// Source is the image index.
	Source *int `json:"source,omitempty"`
}

// gltfImage is image data referenced by textures: an external URI, a data
// URI, or a slice of a buffer.
type gltfImage struct {
	Name string `json:"name,omitempty"`

	// URI is a file path or data URI.
	URI string `json:"uri,omitempty"`

	// MimeType identifies the image format for buffer view images.
	MimeType string `json:"mimeType,omitempty"`

	// BufferView is the index of the view holding encoded image bytes.
	BufferView *int `json:"bufferView,omitempty"`
}

// gltfCamera is a camera definition. Only perspective cameras are imported.
type gltfCamera struct {
	Name string `json:"name,omitempty"`

	// Type is "perspective" or "orthographic".
	Type string `json:"type"`

	// Perspective holds the perspective projection parameters.
	Perspective *gltfPerspective `json:"perspective,omitempty"`
}

// gltfPerspective holds perspective projection parameters.
type gltfPerspective struct {
	// YFov is the vertical field of view in radians.
	YFov float32 `json:"yfov"`

	// ZNear is the near clip distance.
	ZNear float32 `json:"znear"`

	// ZFar is the far clip distance, nil for an infinite projection.
	ZFar *float32 `json:"zfar,omitempty"`
}

// GLB container framing.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
type gltfGLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

const (
	gltfGLBMagic     = 0x46546C67 // "glTF"
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON"
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0"
)
