package stlmesh

import "github.com/flywave/go3d/vec3"

const (
	STL_HEADER_SIZE      = 80
	STL_COUNT_SIZE       = 4
	STL_FACET_SIZE       = 50
	STL_MIN_BINARY_BYTES = 130
)

// 单个索引缓冲区可寻址的最大顶点数
const MAX_INDEX_VALUE = 65535

const (
	TRIANGLES_PER_CHUNK    = MAX_INDEX_VALUE / 3
	MAX_VERTICES_PER_CHUNK = TRIANGLES_PER_CHUNK * 3
)

// Format STL编码类型
type Format int

const (
	FormatAscii Format = iota
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatAscii:
		return "ascii"
	}
	return "unknown"
}

// Facet 单个三角面: 法线 + 三个顶点(保持声明的环绕顺序)
type Facet struct {
	Normal vec3.T    `json:"normal"`
	Vertex [3]vec3.T `json:"vertex"`
}

// Solid 一次解码的完整结果
type Solid struct {
	Name   string
	Header [STL_HEADER_SIZE]byte
	Format Format
	Facets []Facet
}
