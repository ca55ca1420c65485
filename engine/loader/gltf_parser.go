package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser defines the interface for parsing glTF/GLB payloads.
// It handles format detection, JSON deserialization, buffer loading, and typed
// accessor reads. This is internal to the loader package.
type gltfParser interface {
	// Parse parses a glTF document from an in-memory payload, detecting
	// JSON (.gltf) vs binary (.glb) format from the payload header.
	//
	// Parameters:
	//   - data: the raw glTF or GLB payload
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(data []byte) error

	// ParseReader parses a glTF document from a reader.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader) error

	// Document returns the parsed glTF document.
	// Returns nil if Parse has not been called successfully.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// ReadAccessorData reads raw bytes from an accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []byte: the raw data
	//   - error: error if reading fails
	ReadAccessorData(accessorIndex int) ([]byte, error)

	// ReadScalarAccessor reads an accessor as scalar float data. The loader
	// uses this for animation keyframe times.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []float32: the scalar data
	//   - error: error if reading fails
	ReadScalarAccessor(accessorIndex int) ([]float32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(data []byte) error {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	return p.Parse(data)
}

// parseGLTF parses a glTF JSON payload.
func (p *gltfParserImpl) parseGLTF(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// parseGLB parses a GLB binary payload.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonData []byte
	var binData []byte

	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return errMissingJSONChunk
	}

	p.glbBinaryChunk = binData

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// loadBuffers loads all buffer data (from embedded data URIs or the GLB binary
// chunk). External file references are not resolved; every payload reaching
// the loader is self-contained bytes from the cache.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i == 0 && p.glbBinaryChunk != nil {
				buf.Data = p.glbBinaryChunk
				if len(buf.Data) < buf.ByteLength {
					return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
				}
				continue
			}
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		}

		if !strings.HasPrefix(buf.URI, "data:") {
			return fmt.Errorf("buffer %d references external file %q, expected embedded data", i, buf.URI)
		}

		data, err := p.loadDataURI(buf.URI)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		buf.Data = data

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}

	return nil
}

// loadDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
func (p *gltfParserImpl) loadDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}

	header := uri[5:commaIdx]
	dataStr := uri[commaIdx+1:]

	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	return data, nil
}

// --- Accessor Data Reading ---

func (p *gltfParserImpl) ReadAccessorData(accessorIndex int) ([]byte, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &p.document.Accessors[accessorIndex]

	if acc.BufferView == nil {
		return nil, errors.New("accessor has no bufferView")
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", *acc.BufferView)
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := &p.document.Buffers[bv.Buffer]

	componentSize := gltfComponentTypeSize(acc.ComponentType)
	componentCount := gltfAccessorTypeComponentCount(acc.Type)
	elementSize := componentSize * componentCount
	if elementSize == 0 {
		return nil, fmt.Errorf("unsupported accessor layout: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	bufferOffset := bv.ByteOffset + acc.ByteOffset
	if need := bufferOffset + (acc.Count-1)*stride + elementSize; acc.Count > 0 && need > len(buf.Data) {
		return nil, fmt.Errorf("accessor %d overruns buffer: need %d bytes, have %d", accessorIndex, need, len(buf.Data))
	}

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		srcOffset := bufferOffset + i*stride
		dstOffset := i * elementSize
		copy(result[dstOffset:dstOffset+elementSize], buf.Data[srcOffset:srcOffset+elementSize])
	}

	return result, nil
}

func (p *gltfParserImpl) ReadScalarAccessor(accessorIndex int) ([]float32, error) {
	acc := &p.document.Accessors[accessorIndex]
	if acc.Type != gltfAccessorTypeScalar || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not SCALAR FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]float32, acc.Count)
	r := bytes.NewReader(data)
	for i := 0; i < acc.Count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &result[i]); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// --- Helper Functions ---

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
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

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat2:
		return 4
	case gltfAccessorTypeMat3:
		return 9
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
