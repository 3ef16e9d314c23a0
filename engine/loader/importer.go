// package loader imports glTF 2.0 assets (.gltf and .glb) into descriptors.
// The importer walks the default scene's node hierarchy, flattens node
// transforms, and emits one model descriptor per mesh primitive; geometry is
// completed with generated normals and tangents when the file omits them.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// Asset is the result of importing one glTF file.
type Asset struct {
	// Models holds one descriptor per mesh primitive instance in the scene.
	Models []descriptor.ModelDescriptor

	// Cameras holds the perspective cameras found in the scene.
	Cameras []descriptor.CameraDescriptor
}

// Import loads a glTF or GLB file and converts its default scene into
// descriptors. Malformed files and unresolvable buffers surface as
// *resources.AssetResolutionError.
//
// Parameters:
//   - path: path to the .gltf or .glb file
//
// Returns:
//   - *Asset: the imported models and cameras
//   - error: error if the file cannot be parsed or converted
func Import(path string) (*Asset, error) {
	p := &gltfParser{}
	if err := p.parse(path); err != nil {
		return nil, &resources.AssetResolutionError{Ref: path, Err: err}
	}

	imp := &importer{parser: p, prefix: assetPrefix(path)}
	asset, err := imp.run()
	if err != nil {
		return nil, &resources.AssetResolutionError{Ref: path, Err: err}
	}
	return asset, nil
}

// assetPrefix derives a label prefix from the file name so two imported
// files never collide on model labels.
func assetPrefix(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type importer struct {
	parser *gltfParser
	prefix string

	// meshes caches converted primitives per glTF mesh index.
	meshes map[int][]primitiveResult

	// materials caches converted materials per glTF material index.
	materials map[int]descriptor.MaterialDescriptor

	asset Asset
	// instanceSeq disambiguates labels when the same mesh appears on
	// multiple nodes.
	instanceSeq map[string]int
}

// primitiveResult pairs a converted mesh with its material index.
type primitiveResult struct {
	mesh          descriptor.MeshDescriptor
	materialIndex int
}

func (imp *importer) run() (*Asset, error) {
	imp.meshes = make(map[int][]primitiveResult)
	imp.materials = make(map[int]descriptor.MaterialDescriptor)
	imp.instanceSeq = make(map[string]int)

	doc := imp.parser.doc
	for _, root := range imp.sceneRoots() {
		if err := imp.walkNode(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}

	// Files without scenes still carry usable meshes; emit them at the
	// origin.
	if len(doc.Scenes) == 0 && len(doc.Nodes) == 0 {
		for meshIndex := range doc.Meshes {
			if err := imp.emitMesh(meshIndex, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	}

	return &imp.asset, nil
}

// sceneRoots returns the root node indices of the default scene, falling
// back to the first scene.
func (imp *importer) sceneRoots() []int {
	doc := imp.parser.doc
	if len(doc.Scenes) == 0 {
		return nil
	}
	sceneIndex := 0
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		sceneIndex = *doc.Scene
	}
	return doc.Scenes[sceneIndex].Nodes
}

// walkNode recurses through the hierarchy accumulating world transforms.
func (imp *importer) walkNode(nodeIndex int, parent mgl32.Mat4) error {
	doc := imp.parser.doc
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}
	node := &doc.Nodes[nodeIndex]
	world := parent.Mul4(nodeMatrix(node))

	if node.Mesh != nil {
		if err := imp.emitMesh(*node.Mesh, world); err != nil {
			return fmt.Errorf("node %q: %w", node.Name, err)
		}
	}
	if node.Camera != nil {
		imp.emitCamera(*node.Camera, node.Name, world)
	}

	for _, child := range node.Children {
		if err := imp.walkNode(child, world); err != nil {
			return err
		}
	}
	return nil
}

// emitMesh converts the mesh's primitives (cached per mesh index) and
// appends one model descriptor per primitive, placed by the node's world
// transform.
func (imp *importer) emitMesh(meshIndex int, world mgl32.Mat4) error {
	doc := imp.parser.doc
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	prims, ok := imp.meshes[meshIndex]
	if !ok {
		var err error
		prims, err = imp.convertMesh(meshIndex)
		if err != nil {
			return err
		}
		imp.meshes[meshIndex] = prims
	}

	transform := decomposeMatrix(world)
	for _, prim := range prims {
		material, err := imp.convertMaterial(prim.materialIndex)
		if err != nil {
			return err
		}

		label := prim.mesh.Label
		imp.instanceSeq[label]++
		if seq := imp.instanceSeq[label]; seq > 1 {
			label = fmt.Sprintf("%s #%d", label, seq)
		}

		imp.asset.Models = append(imp.asset.Models, descriptor.ModelDescriptor{
			Label:      label,
			Mesh:       prim.mesh,
			Material:   material,
			Transforms: []descriptor.Transform{transform},
		})
	}
	return nil
}

// emitCamera converts a perspective camera node. Orthographic cameras are
// skipped.
func (imp *importer) emitCamera(cameraIndex int, nodeName string, world mgl32.Mat4) {
	doc := imp.parser.doc
	if cameraIndex < 0 || cameraIndex >= len(doc.Cameras) {
		return
	}
	cam := &doc.Cameras[cameraIndex]
	if cam.Type != "perspective" || cam.Perspective == nil {
		return
	}

	label := cam.Name
	if label == "" {
		label = nodeName
	}
	if label == "" {
		label = fmt.Sprintf("%s Camera %d", imp.prefix, cameraIndex)
	}

	far := float32(1000)
	if cam.Perspective.ZFar != nil {
		far = *cam.Perspective.ZFar
	}

	// glTF cameras look down -Z in node space; rotate that into world space
	// and express it as yaw and pitch.
	forward := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if forward.Len() > 1e-6 {
		forward = forward.Normalize()
	} else {
		forward = mgl32.Vec3{0, 0, -1}
	}

	imp.asset.Cameras = append(imp.asset.Cameras, descriptor.CameraDescriptor{
		Label:    label,
		Position: world.Col(3).Vec3(),
		Yaw:      math32.Atan2(forward.Z(), forward.X()),
		Pitch:    math32.Asin(clamp(forward.Y(), -1, 1)),
		FovY:     cam.Perspective.YFov,
		Near:     cam.Perspective.ZNear,
		Far:      far,
	})
}

// convertMesh converts every primitive of a glTF mesh into a mesh
// descriptor, generating normals and tangents when absent.
func (imp *importer) convertMesh(meshIndex int) ([]primitiveResult, error) {
	doc := imp.parser.doc
	mesh := &doc.Meshes[meshIndex]

	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("Mesh %d", meshIndex)
	}
	name = imp.prefix + "/" + name

	results := make([]primitiveResult, 0, len(mesh.Primitives))
	for primIndex := range mesh.Primitives {
		prim := &mesh.Primitives[primIndex]
		label := name
		if len(mesh.Primitives) > 1 {
			label = fmt.Sprintf("%s [%d]", name, primIndex)
		}
		converted, err := imp.convertPrimitive(prim, label)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, primIndex, err)
		}

		materialIndex := -1
		if prim.Material != nil {
			materialIndex = *prim.Material
		}
		results = append(results, primitiveResult{mesh: converted, materialIndex: materialIndex})
	}
	return results, nil
}

func (imp *importer) convertPrimitive(prim *gltfPrimitive, label string) (descriptor.MeshDescriptor, error) {
	var out descriptor.MeshDescriptor
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return out, fmt.Errorf("unsupported primitive mode %d: only triangles are supported", *prim.Mode)
	}

	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return out, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := imp.parser.readFloatAccessor(posIndex, gltfAccessorTypeVec3)
	if err != nil {
		return out, fmt.Errorf("failed to read positions: %w", err)
	}

	vertexCount := len(positions) / 3
	vertices := make([]descriptor.Vertex, vertexCount)
	for i := range vertices {
		vertices[i].Position = mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}

	hasNormals := false
	if accIndex, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := imp.parser.readFloatAccessor(accIndex, gltfAccessorTypeVec3)
		if err != nil {
			return out, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := 0; i < min(len(normals)/3, vertexCount); i++ {
			vertices[i].Normal = mgl32.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
		}
		hasNormals = true
	}

	if accIndex, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := imp.parser.readFloatAccessor(accIndex, gltfAccessorTypeVec2)
		if err != nil {
			return out, fmt.Errorf("failed to read texture coordinates: %w", err)
		}
		for i := 0; i < min(len(uvs)/2, vertexCount); i++ {
			vertices[i].TexCoord = mgl32.Vec2{uvs[i*2], uvs[i*2+1]}
		}
	}

	hasTangents := false
	if accIndex, ok := prim.Attributes["TANGENT"]; ok {
		tangents, err := imp.parser.readFloatAccessor(accIndex, gltfAccessorTypeVec4)
		if err != nil {
			return out, fmt.Errorf("failed to read tangents: %w", err)
		}
		for i := 0; i < min(len(tangents)/4, vertexCount); i++ {
			vertices[i].Tangent = mgl32.Vec4{tangents[i*4], tangents[i*4+1], tangents[i*4+2], tangents[i*4+3]}
		}
		hasTangents = true
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = imp.parser.readIndices(*prim.Indices)
		if err != nil {
			return out, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	// Normals must exist before tangent generation orthonormalizes against
	// them.
	if !hasNormals && len(indices) >= 3 {
		generateNormals(vertices, indices)
	}
	if !hasTangents && len(indices) >= 3 {
		generateTangents(vertices, indices)
	}

	out = descriptor.MeshDescriptor{Label: label, Vertices: vertices, Indices: indices}
	return out, nil
}

// convertMaterial converts a glTF material (cached per index). A negative
// index or an index out of range yields the default material.
func (imp *importer) convertMaterial(materialIndex int) (descriptor.MaterialDescriptor, error) {
	doc := imp.parser.doc
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return descriptor.DefaultMaterial(imp.prefix + "/Default Material"), nil
	}
	if cached, ok := imp.materials[materialIndex]; ok {
		return cached, nil
	}

	mat := &doc.Materials[materialIndex]
	name := mat.Name
	if name == "" {
		name = fmt.Sprintf("Material %d", materialIndex)
	}

	out := descriptor.MaterialDescriptor{
		Name:      imp.prefix + "/" + name,
		BaseColor: [4]float32{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}

	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			out.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			out.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			out.Roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			tex, err := imp.convertTexture(pbr.BaseColorTexture.Index, "Base Color", true)
			if err != nil {
				return out, fmt.Errorf("material %q: %w", name, err)
			}
			out.BaseColorTexture = tex
		}
		if pbr.MetallicRoughnessTexture != nil {
			tex, err := imp.convertTexture(pbr.MetallicRoughnessTexture.Index, "Metallic Roughness", false)
			if err != nil {
				return out, fmt.Errorf("material %q: %w", name, err)
			}
			out.MetallicRoughnessTexture = tex
		}
	}
	if mat.NormalTexture != nil {
		tex, err := imp.convertTexture(mat.NormalTexture.Index, "Normal", false)
		if err != nil {
			return out, fmt.Errorf("material %q: %w", name, err)
		}
		out.NormalTexture = tex
	}
	if mat.EmissiveFactor != nil {
		out.EmissiveColor = *mat.EmissiveFactor
	}
	if mat.EmissiveTexture != nil {
		tex, err := imp.convertTexture(mat.EmissiveTexture.Index, "Emissive", true)
		if err != nil {
			return out, fmt.Errorf("material %q: %w", name, err)
		}
		out.EmissiveTexture = tex
	}

	imp.materials[materialIndex] = out
	return out, nil
}

// convertTexture resolves a glTF texture index into a texture descriptor:
// external images become path references, embedded images carry their
// encoded bytes.
func (imp *importer) convertTexture(textureIndex int, slot string, srgb bool) (*descriptor.TextureDescriptor, error) {
	doc := imp.parser.doc
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	imageIndex := *tex.Source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imageIndex)
	}
	img := &doc.Images[imageIndex]

	label := img.Name
	if label == "" {
		label = fmt.Sprintf("%s/%s %d", imp.prefix, slot, imageIndex)
	}

	switch {
	case img.BufferView != nil:
		data, err := imp.parser.readImageBytes(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded image: %w", err)
		}
		return &descriptor.TextureDescriptor{Label: label, Data: data, SRGB: srgb}, nil
	case strings.HasPrefix(img.URI, "data:"):
		data, _, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		return &descriptor.TextureDescriptor{Label: label, Data: data, SRGB: srgb}, nil
	case img.URI != "":
		path := filepath.Join(imp.parser.baseDir, img.URI)
		return &descriptor.TextureDescriptor{Label: label, Path: path, SRGB: srgb}, nil
	}
	return nil, nil
}

// nodeMatrix returns the node's local transform matrix from either its
// matrix or its translation/rotation/scale triple.
func nodeMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		var m mgl32.Mat4
		copy(m[:], node.Matrix[:])
		return m
	}

	m := mgl32.Ident4()
	if node.Translation != nil {
		m = mgl32.Translate3D(node.Translation[0], node.Translation[1], node.Translation[2])
	}
	if node.Rotation != nil {
		q := mgl32.Quat{
			W: node.Rotation[3],
			V: mgl32.Vec3{node.Rotation[0], node.Rotation[1], node.Rotation[2]},
		}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if node.Scale != nil {
		m = m.Mul4(mgl32.Scale3D(node.Scale[0], node.Scale[1], node.Scale[2]))
	}
	return m
}

// decomposeMatrix extracts translation, Y*X*Z Euler rotation, and per-axis
// scale from a world matrix. Shear introduced by non-uniform parent scales
// is not representable and gets absorbed into the nearest rotation.
func decomposeMatrix(m mgl32.Mat4) descriptor.Transform {
	position := m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	// A negative determinant means one axis is mirrored.
	if m.Det() < 0 {
		sx = -sx
	}

	r := mgl32.Ident3()
	if sx != 0 && sy != 0 && sz != 0 {
		r = mgl32.Mat3FromCols(
			m.Col(0).Vec3().Mul(1/sx),
			m.Col(1).Vec3().Mul(1/sy),
			m.Col(2).Vec3().Mul(1/sz),
		)
	}

	// For R = Ry * Rx * Rz: R[1][2] = -sin(x), R[0][2]/R[2][2] = tan(y),
	// R[1][0]/R[1][1] = tan(z).
	var rotation mgl32.Vec3
	sinX := clamp(-r.At(1, 2), -1, 1)
	rotation[0] = math32.Asin(sinX)
	if math32.Abs(sinX) < 0.9999 {
		rotation[1] = math32.Atan2(r.At(0, 2), r.At(2, 2))
		rotation[2] = math32.Atan2(r.At(1, 0), r.At(1, 1))
	} else {
		// Gimbal lock: yaw and roll collapse into one rotation.
		rotation[1] = math32.Atan2(-r.At(2, 0), r.At(0, 0))
		rotation[2] = 0
	}

	return descriptor.Transform{
		Position: position,
		Rotation: rotation,
		Scale:    mgl32.Vec3{sx, sy, sz},
	}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
