package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/SakulFlee/Orbital-sub000/common"
)

// gltfFile is a parsed glTF asset with all buffers resolved in memory.
type gltfFile struct {
	doc     *gltfDocument
	baseDir string
}

// parseGLTFFile reads a .gltf or .glb file from disk. External buffers and
// images are resolved relative to the file's directory.
//
// Parameters:
//   - path: path to the asset
//
// Returns:
//   - *gltfFile: the parsed asset
//   - error: wraps common.ErrIo if the file cannot be read, common.ErrGltfParse if it is malformed
func parseGLTFFile(path string) (*gltfFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIo, err)
	}
	return parseGLTFBytes(data, filepath.Dir(path))
}

// parseGLTFBytes parses a glTF JSON document or GLB container. The format is
// detected from the GLB magic.
//
// Parameters:
//   - data: the raw asset bytes
//   - baseDir: directory used to resolve relative URIs
//
// Returns:
//   - *gltfFile: the parsed asset
//   - error: wraps common.ErrGltfParse on malformed input
func parseGLTFBytes(data []byte, baseDir string) (*gltfFile, error) {
	f := &gltfFile{baseDir: baseDir}

	jsonData, binChunk := data, []byte(nil)
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == gltfGLBMagic {
		var err error
		jsonData, binChunk, err = splitGLB(data)
		if err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", common.ErrGltfParse, err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: unsupported version %q", common.ErrGltfParse, doc.Asset.Version)
	}
	for _, ext := range doc.ExtensionsRequired {
		if ext != gltfExtensionLightsPunctual {
			return nil, fmt.Errorf("%w: required extension %s is not supported", common.ErrGltfParse, ext)
		}
	}
	f.doc = &doc

	if err := f.loadBuffers(binChunk); err != nil {
		return nil, err
	}
	return f, nil
}

// splitGLB returns the JSON and BIN chunks of a GLB container.
func splitGLB(data []byte) ([]byte, []byte, error) {
	if len(data) < gltfGLBHeaderSize {
		return nil, nil, fmt.Errorf("%w: GLB header truncated", common.ErrGltfParse)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != gltfGLBVersion {
		return nil, nil, fmt.Errorf("%w: unsupported GLB version %d", common.ErrGltfParse, version)
	}
	length := int(binary.LittleEndian.Uint32(data[8:]))
	if length > len(data) {
		return nil, nil, fmt.Errorf("%w: GLB declares %d bytes, got %d", common.ErrGltfParse, length, len(data))
	}

	var jsonChunk, binChunk []byte
	for offset := gltfGLBHeaderSize; offset+gltfGLBChunkHeader <= length; {
		chunkLength := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		start := offset + gltfGLBChunkHeader
		end := start + chunkLength
		if chunkLength < 0 || end > length {
			return nil, nil, fmt.Errorf("%w: GLB chunk exceeds file length", common.ErrGltfParse)
		}

		switch chunkType {
		case gltfGLBChunkJSON:
			jsonChunk = data[start:end]
		case gltfGLBChunkBIN:
			binChunk = data[start:end]
		}
		offset = end
	}

	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: GLB has no JSON chunk", common.ErrGltfParse)
	}
	return jsonChunk, binChunk, nil
}

func (f *gltfFile) loadBuffers(binChunk []byte) error {
	for i := range f.doc.Buffers {
		buf := &f.doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && binChunk != nil:
			buf.data = binChunk
		case buf.URI == "":
			return fmt.Errorf("%w: buffer %d has no data", common.ErrGltfParse, i)
		default:
			data, err := f.readURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.data = data
		}

		if len(buf.data) < buf.ByteLength {
			return fmt.Errorf("%w: buffer %d holds %d bytes, declares %d", common.ErrGltfParse, i, len(buf.data), buf.ByteLength)
		}
	}
	return nil
}

// readURI loads a base64 data URI or a file relative to the asset.
func (f *gltfFile) readURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		comma := strings.IndexByte(uri, ',')
		if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
			return nil, fmt.Errorf("%w: unsupported data URI", common.ErrGltfParse)
		}
		data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 data URI: %v", common.ErrGltfParse, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Join(f.baseDir, filepath.FromSlash(uri)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIo, err)
	}
	return data, nil
}

// bufferView returns the bytes of a buffer view.
func (f *gltfFile) bufferView(index int) ([]byte, *gltfBufferView, error) {
	if index < 0 || index >= len(f.doc.BufferViews) {
		return nil, nil, fmt.Errorf("%w: buffer view %d out of range", common.ErrGltfParse, index)
	}
	bv := &f.doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(f.doc.Buffers) {
		return nil, nil, fmt.Errorf("%w: buffer %d out of range", common.ErrGltfParse, bv.Buffer)
	}
	data := f.doc.Buffers[bv.Buffer].data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, nil, fmt.Errorf("%w: buffer view %d exceeds its buffer", common.ErrGltfParse, index)
	}
	return data[bv.ByteOffset:end], bv, nil
}

// imageBytes returns the encoded bytes of an image.
func (f *gltfFile) imageBytes(index int) ([]byte, error) {
	if index < 0 || index >= len(f.doc.Images) {
		return nil, fmt.Errorf("%w: image %d out of range", common.ErrGltfParse, index)
	}
	img := &f.doc.Images[index]
	if img.BufferView != nil {
		data, _, err := f.bufferView(*img.BufferView)
		return data, err
	}
	if img.URI == "" {
		return nil, fmt.Errorf("%w: image %d has no source", common.ErrGltfParse, index)
	}
	return f.readURI(img.URI)
}

// accessor validates an accessor and returns it with its data, starting at the
// first element, and its stride.
func (f *gltfFile) accessor(index int) (*gltfAccessor, []byte, int, error) {
	if index < 0 || index >= len(f.doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d out of range", common.ErrGltfParse, index)
	}
	acc := &f.doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, 0, fmt.Errorf("%w: sparse accessor %d is not supported", common.ErrGltfParse, index)
	}
	if acc.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d has no buffer view", common.ErrGltfParse, index)
	}

	view, bv, err := f.bufferView(*acc.BufferView)
	if err != nil {
		return nil, nil, 0, err
	}

	elementSize := gltfComponentSize(acc.ComponentType) * gltfComponentCount(acc.Type)
	if elementSize == 0 {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d has type %s/%d", common.ErrGltfParse, index, acc.Type, acc.ComponentType)
	}
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	if acc.ByteOffset < 0 || acc.ByteOffset > len(view) ||
		(acc.Count > 0 && acc.ByteOffset+(acc.Count-1)*stride+elementSize > len(view)) {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d exceeds its buffer view", common.ErrGltfParse, index)
	}
	return acc, view[acc.ByteOffset:], stride, nil
}

// readFloats reads an accessor of the given type as floats, dequantising
// normalized integer components.
//
// Parameters:
//   - index: the accessor index
//   - accessorType: the expected element type, e.g. VEC3
//
// Returns:
//   - []float32: Count*components values
//   - error: wraps common.ErrGltfParse on type mismatch or out of range reads
func (f *gltfFile) readFloats(index int, accessorType string) ([]float32, error) {
	acc, data, stride, err := f.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType {
		return nil, fmt.Errorf("%w: accessor %d is %s, expected %s", common.ErrGltfParse, index, acc.Type, accessorType)
	}
	if acc.ComponentType != gltfComponentTypeFloat && !acc.Normalized {
		return nil, fmt.Errorf("%w: accessor %d has non-normalized integer components", common.ErrGltfParse, index)
	}

	n := gltfComponentCount(acc.Type)
	size := gltfComponentSize(acc.ComponentType)
	out := make([]float32, 0, acc.Count*n)
	for i := 0; i < acc.Count; i++ {
		element := data[i*stride:]
		for c := 0; c < n; c++ {
			out = append(out, readComponent(element[c*size:], acc.ComponentType))
		}
	}
	return out, nil
}

// readIndices reads a SCALAR unsigned integer accessor.
func (f *gltfFile) readIndices(index int) ([]uint32, error) {
	acc, data, stride, err := f.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("%w: index accessor %d is %s", common.ErrGltfParse, index, acc.Type)
	}

	out := make([]uint32, acc.Count)
	for i := range out {
		element := data[i*stride:]
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(element[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(element))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(element)
		default:
			return nil, fmt.Errorf("%w: index accessor %d has component type %d", common.ErrGltfParse, index, acc.ComponentType)
		}
	}
	return out, nil
}

// readComponent decodes one component, normalising integers per the glTF rules.
func readComponent(b []byte, componentType int) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		return float32(b[0]) / 255
	case gltfComponentTypeByte:
		return max(float32(int8(b[0]))/127, -1)
	case gltfComponentTypeUnsignedShort:
		return float32(binary.LittleEndian.Uint16(b)) / 65535
	case gltfComponentTypeShort:
		return max(float32(int16(binary.LittleEndian.Uint16(b)))/32767, -1)
	}
	return 0
}

func gltfComponentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	}
	return 0
}

func gltfComponentCount(accessorType string) int {
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
	}
	return 0
}
