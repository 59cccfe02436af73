package stlmesh

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/flywave/go3d/vec3"
)

var unitFacet = Facet{
	Normal: vec3.T{0, 0, 1},
	Vertex: [3]vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
}

const unitAscii = "solid s\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid s\n"

// binaryStl 生成binary STL, count可与facets长度不同以构造截断文件
func binaryStl(header [STL_HEADER_SIZE]byte, count uint32, facets []Facet) []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(header[:])
	binary.Write(buf, binary.LittleEndian, count)
	for _, f := range facets {
		binary.Write(buf, binary.LittleEndian, &binaryFacet{Normal: f.Normal, Vertex: f.Vertex})
	}
	return buf.Bytes()
}

// numberedFacets 每个面的坐标唯一, 便于检查顺序
func numberedFacets(n int) []Facet {
	facets := make([]Facet, n)
	for i := range facets {
		x := float32(i)
		facets[i] = Facet{
			Normal: vec3.T{0, 0, 1},
			Vertex: [3]vec3.T{{x, 0, 0}, {x, 1, 0}, {x, 0, 1}},
		}
	}
	return facets
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
