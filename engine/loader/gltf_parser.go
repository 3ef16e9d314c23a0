package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errUnsupportedVersion = errors.New("unsupported glTF version: must be 2.x")
	errBadGLBMagic        = errors.New("not a GLB container: bad magic number")
	errBadGLBVersion      = errors.New("unsupported GLB container version: must be 2")
	errNoJSONChunk        = errors.New("GLB container has no JSON chunk")
	errBufferTooShort     = errors.New("buffer shorter than its declared byteLength")
)

// gltfParser loads a glTF or GLB file, resolves its buffers, and reads typed
// data out of accessors. Internal to the loader package.
type gltfParser struct {
	baseDir  string
	doc      *gltfDocument
	glbChunk []byte
}

// parse loads the file at path, detecting GLB by extension or magic number.
func (p *gltfParser) parse(path string) error {
	p.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	isGLB := strings.EqualFold(filepath.Ext(path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic)
	if isGLB {
		return p.parseGLB(data)
	}
	return p.parseJSON(data, nil)
}

// parseJSON deserializes the document and resolves its buffers. binChunk is
// the GLB binary chunk, nil for standalone .gltf files.
func (p *gltfParser) parseJSON(data, binChunk []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errUnsupportedVersion
	}
	if len(doc.ExtensionsRequired) > 0 {
		return fmt.Errorf("required glTF extensions are not supported: %v", doc.ExtensionsRequired)
	}

	p.glbChunk = binChunk
	for i := range doc.Buffers {
		if err := p.resolveBuffer(&doc.Buffers[i], i); err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
	}

	p.doc = &doc
	return nil
}

// parseGLB splits the GLB container into its JSON and binary chunks.
func (p *gltfParser) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errBadGLBMagic
	}
	header := gltfGLBHeader{
		Magic:   binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  binary.LittleEndian.Uint32(data[8:12]),
	}
	if header.Magic != gltfGLBMagic {
		return errBadGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errBadGLBVersion
	}

	var jsonChunk, binChunk []byte
	for offset := 12; offset+8 <= len(data); {
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8
		if offset+length > len(data) {
			return fmt.Errorf("GLB chunk exceeds container: offset=%d length=%d", offset, length)
		}
		switch chunkType {
		case gltfGLBChunkJSON:
			jsonChunk = data[offset : offset+length]
		case gltfGLBChunkBIN:
			binChunk = data[offset : offset+length]
		}
		offset += length
	}
	if jsonChunk == nil {
		return errNoJSONChunk
	}
	return p.parseJSON(jsonChunk, binChunk)
}

// resolveBuffer fills buf.Data from its URI, or from the GLB binary chunk
// for the URI-less first buffer.
func (p *gltfParser) resolveBuffer(buf *gltfBuffer, index int) error {
	switch {
	case buf.URI == "":
		if index != 0 || p.glbChunk == nil {
			return errors.New("buffer has no URI and no GLB binary chunk")
		}
		buf.Data = p.glbChunk
	case strings.HasPrefix(buf.URI, "data:"):
		data, _, err := decodeDataURI(buf.URI)
		if err != nil {
			return err
		}
		buf.Data = data
	default:
		data, err := os.ReadFile(filepath.Join(p.baseDir, buf.URI))
		if err != nil {
			return fmt.Errorf("failed to load buffer file %q: %w", buf.URI, err)
		}
		buf.Data = data
	}

	if len(buf.Data) < buf.ByteLength {
		return errBufferTooShort
	}
	return nil
}

// decodeDataURI decodes a base64 data URI, returning the bytes and the MIME
// type. Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, string, error) {
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, "", errors.New("malformed data URI: no comma")
	}
	header := uri[len("data:"):comma]
	if !strings.Contains(header, "base64") {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %s", header)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 data URI: %w", err)
	}
	return data, strings.TrimSuffix(header, ";base64"), nil
}

// readAccessor returns the accessor's elements as tightly packed bytes,
// de-interleaving strided buffer views.
func (p *gltfParser) readAccessor(index int) ([]byte, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &p.doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, errors.New("sparse accessors are not supported")
	}
	if acc.BufferView == nil {
		return nil, errors.New("accessor has no bufferView")
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", *acc.BufferView)
	}

	bv := &p.doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := &p.doc.Buffers[bv.Buffer]

	elementSize := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elementSize == 0 {
		return nil, fmt.Errorf("unsupported accessor layout: type=%s componentType=%d", acc.Type, acc.ComponentType)
	}
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	base := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && base+(acc.Count-1)*stride+elementSize > len(buf.Data) {
		return nil, fmt.Errorf("accessor %d reads past the end of buffer %d", index, bv.Buffer)
	}

	packed := make([]byte, acc.Count*elementSize)
	for i := range acc.Count {
		copy(packed[i*elementSize:(i+1)*elementSize], buf.Data[base+i*stride:])
	}
	return packed, nil
}

// readFloatAccessor reads an accessor of FLOAT components with the expected
// element type, returning the flat component stream.
func (p *gltfParser) readFloatAccessor(index int, wantType string) ([]float32, error) {
	acc := &p.doc.Accessors[index]
	if acc.Type != wantType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not %s FLOAT: type=%s componentType=%d", wantType, acc.Type, acc.ComponentType)
	}
	data, err := p.readAccessor(index)
	if err != nil {
		return nil, err
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, nil
}

// readIndices reads an index accessor, widening 8- and 16-bit indices to
// uint32.
func (p *gltfParser) readIndices(index int) ([]uint32, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &p.doc.Accessors[index]
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	data, err := p.readAccessor(index)
	if err != nil {
		return nil, err
	}

	indices := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range indices {
			indices[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range indices {
			indices[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range indices {
			indices[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}
	return indices, nil
}

// readImageBytes returns the raw encoded bytes of a buffer view, used for
// images embedded in GLB containers.
func (p *gltfParser) readImageBytes(bufferViewIndex int) ([]byte, error) {
	if bufferViewIndex < 0 || bufferViewIndex >= len(p.doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}
	bv := &p.doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(p.doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := &p.doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if end > len(buf.Data) {
		return nil, fmt.Errorf("bufferView exceeds buffer bounds: offset=%d length=%d size=%d", bv.ByteOffset, bv.ByteLength, len(buf.Data))
	}
	out := make([]byte, bv.ByteLength)
	copy(out, buf.Data[bv.ByteOffset:end])
	return out, nil
}

// componentSize returns the byte size of one component.
func componentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// componentCount returns the number of components per element.
func componentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
