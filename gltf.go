package stlmesh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/qmuntal/gltf"
)

const (
	// GLTFVersion 定义GLTF规范版本
	GLTFVersion = "2.0"

	// PaddingChar 用于二进制填充的字符
	PaddingChar = 0x20
)

// 没有材质信息时使用的灰色
var defaultColor = [4]float32{200.0 / 255, 200.0 / 255, 200.0 / 255, 1}

// ChunksToGltf 每个网格块生成一个gltf mesh和node, 索引使用UNSIGNED_SHORT
func ChunksToGltf(chunks []*MeshChunk) (*gltf.Document, error) {
	doc := CreateDoc()
	if err := BuildGltf(doc, chunks); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateDoc 创建一个新的GLTF文档
func CreateDoc() *gltf.Document {
	doc := &gltf.Document{
		Asset: gltf.Asset{
			Version: GLTFVersion,
		},
		Scenes:  []*gltf.Scene{{}},
		Buffers: []*gltf.Buffer{{}},
	}

	sceneIndex := uint32(0)
	doc.Scene = &sceneIndex

	return doc
}

// bufferWriter 用于计算缓冲区大小的写入器
type bufferWriter struct {
	writer io.Writer
	size   int
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.writer.Write(p)
	w.size += n
	return n, nil
}

func (w *bufferWriter) Bytes() []byte {
	return w.writer.(*bytes.Buffer).Bytes()
}

func newBufferWriter() *bufferWriter {
	return &bufferWriter{
		writer: bytes.NewBuffer(nil),
		size:   0,
	}
}

// calcPadding 计算需要的填充字节数
func calcPadding(offset, unit int) int {
	padding := offset % unit
	if padding != 0 {
		padding = unit - padding
	}
	return padding
}

// GetGltfBinary 将GLTF文档编码为二进制格式
func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	writer := newBufferWriter()

	encoder := gltf.NewEncoder(writer)
	encoder.AsBinary = true

	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	padding := calcPadding(writer.size, paddingUnit)
	if padding == 0 {
		return writer.Bytes(), nil
	}

	pad := bytes.Repeat([]byte{PaddingChar}, padding)
	writer.Write(pad)

	return writer.Bytes(), nil
}

// WriteGlb 把网格块写成.glb文件
func WriteGlb(path string, chunks []*MeshChunk) error {
	doc, err := ChunksToGltf(chunks)
	if err != nil {
		return err
	}
	bt, err := GetGltfBinary(doc, 4)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bt, 0o644)
}

// buildContext 单个块的缓冲区视图索引
type buildContext struct {
	mtlIndex uint32

	bvIndex uint32
	bvPos   uint32
	bvNorm  uint32
}

// BuildGltf 把网格块追加到文档, 空块跳过
func BuildGltf(doc *gltf.Document, chunks []*MeshChunk) error {
	ctx := &buildContext{mtlIndex: uint32(len(doc.Materials))}
	built := 0
	for i, chunk := range chunks {
		if chunk.TriangleCount() == 0 {
			continue
		}
		if err := chunk.Validate(); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		doc.BufferViews = buildChunkBufferViews(ctx, doc.Buffers[0], doc.BufferViews, chunk)

		mesh, accessors := buildChunkPrimitive(ctx, doc.Accessors, chunk)
		mesh.Name = fmt.Sprintf("chunk_%d", i)
		meshIndex := uint32(len(doc.Meshes))
		doc.Meshes = append(doc.Meshes, mesh)
		doc.Accessors = accessors

		nodeIndex := uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: &meshIndex})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodeIndex)
		built++
	}
	if built > 0 {
		doc.Materials = append(doc.Materials, defaultMaterial())
	}
	return nil
}

// buildChunkBufferViews 写入索引/位置/法线三段数据, 每段按4字节对齐
func buildChunkBufferViews(ctx *buildContext, buffer *gltf.Buffer, bufferViews []*gltf.BufferView, chunk *MeshChunk) []*gltf.BufferView {
	buf := bytes.NewBuffer(nil)

	ctx.bvIndex = uint32(len(bufferViews))
	indices := make([]uint16, len(chunk.Indices))
	for i, idx := range chunk.Indices {
		indices[i] = uint16(idx)
	}
	binary.Write(buf, binary.LittleEndian, indices)
	indicesView := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(buf.Len()),
		Target:     gltf.TargetElementArrayBuffer,
	}
	bufferViews = append(bufferViews, indicesView)
	buf.Write(make([]byte, calcPadding(buf.Len(), 4)))

	positionsView := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(buf.Len()) + buffer.ByteLength,
		Target:     gltf.TargetArrayBuffer,
	}
	binary.Write(buf, binary.LittleEndian, chunk.Vertices)
	positionsView.ByteLength = uint32(buf.Len()) - positionsView.ByteOffset + buffer.ByteLength
	ctx.bvPos = uint32(len(bufferViews))
	bufferViews = append(bufferViews, positionsView)

	normalsView := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(buf.Len()) + buffer.ByteLength,
		Target:     gltf.TargetArrayBuffer,
	}
	binary.Write(buf, binary.LittleEndian, chunk.Normals)
	normalsView.ByteLength = uint32(buf.Len()) - normalsView.ByteOffset + buffer.ByteLength
	ctx.bvNorm = uint32(len(bufferViews))
	bufferViews = append(bufferViews, normalsView)

	buffer.ByteLength += uint32(buf.Len())
	buffer.Data = append(buffer.Data, buf.Bytes()...)

	return bufferViews
}

func buildChunkPrimitive(ctx *buildContext, accessors []*gltf.Accessor, chunk *MeshChunk) (*gltf.Mesh, []*gltf.Accessor) {
	indexAccessor := uint32(len(accessors))
	mtl := ctx.mtlIndex

	mesh := &gltf.Mesh{
		Primitives: []*gltf.Primitive{{
			Material: &mtl,
			Indices:  uint32Ptr(indexAccessor),
			Mode:     gltf.PrimitiveTriangles,
			Attributes: gltf.Attribute{
				"POSITION": indexAccessor + 1,
				"NORMAL":   indexAccessor + 2,
			},
		}},
	}

	accessors = append(accessors, &gltf.Accessor{
		ComponentType: gltf.ComponentUshort,
		Type:          gltf.AccessorScalar,
		Count:         uint32(len(chunk.Indices)),
		BufferView:    uint32Ptr(ctx.bvIndex),
	})

	bounds := chunk.GetBoundbox()
	accessors = append(accessors, &gltf.Accessor{
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         uint32(len(chunk.Vertices)),
		BufferView:    uint32Ptr(ctx.bvPos),
		Min:           []float32{float32(bounds[0]), float32(bounds[1]), float32(bounds[2])},
		Max:           []float32{float32(bounds[3]), float32(bounds[4]), float32(bounds[5])},
	})

	accessors = append(accessors, &gltf.Accessor{
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         uint32(len(chunk.Normals)),
		BufferView:    uint32Ptr(ctx.bvNorm),
	})

	return mesh, accessors
}

func defaultMaterial() *gltf.Material {
	cl := defaultColor
	return &gltf.Material{
		Name:        "default",
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &cl,
		},
	}
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
