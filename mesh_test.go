package stlmesh

import (
	"errors"
	"math"
	"testing"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
	"github.com/google/go-cmp/cmp"
)

func TestChunkConstants(t *testing.T) {
	if TRIANGLES_PER_CHUNK != 21845 {
		t.Errorf("Expected 21845 triangles per chunk, got %d", TRIANGLES_PER_CHUNK)
	}
	if MAX_VERTICES_PER_CHUNK != 65535 {
		t.Errorf("Expected 65535 vertices per chunk, got %d", MAX_VERTICES_PER_CHUNK)
	}
}

func TestChunkCount(t *testing.T) {
	const T = TRIANGLES_PER_CHUNK
	tests := []struct {
		triangles int
		ceil      int
		legacy    int
	}{
		{0, 1, 1},
		{1, 1, 1},
		{T - 1, 1, 1},
		{T, 1, 2},
		{T + 1, 2, 2},
		{2 * T, 2, 3},
		{2*T + 7, 3, 3},
	}

	for _, tt := range tests {
		if got := ChunkCount(tt.triangles, ChunkPolicyCeil); got != tt.ceil {
			t.Errorf("ceil(%d): expected %d, got %d", tt.triangles, tt.ceil, got)
		}
		if got := ChunkCount(tt.triangles, ChunkPolicyLegacy); got != tt.legacy {
			t.Errorf("legacy(%d): expected %d, got %d", tt.triangles, tt.legacy, got)
		}
	}
}

// TestPartitionCoverage 所有块按顺序拼接后还原输入, 无重复无遗漏
func TestPartitionCoverage(t *testing.T) {
	facets := numberedFacets(2*TRIANGLES_PER_CHUNK + 7)
	chunks := Partition(facets, ChunkPolicyCeil)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	var rebuilt []Facet
	for ci, c := range chunks {
		if err := c.Validate(); err != nil {
			t.Fatalf("chunk %d invalid: %v", ci, err)
		}
		if len(c.Indices) > MAX_INDEX_VALUE || len(c.Indices)%3 != 0 {
			t.Errorf("chunk %d has %d indices", ci, len(c.Indices))
		}
		for i, idx := range c.Indices {
			if idx != uint32(i) {
				t.Fatalf("chunk %d index %d = %d, expected sequential", ci, i, idx)
			}
		}
		for i := 0; i < c.TriangleCount(); i++ {
			rebuilt = append(rebuilt, c.Facet(i))
		}
	}
	if diff := cmp.Diff(facets, rebuilt); diff != "" {
		t.Errorf("rebuilt facets differ (-want +got):\n%s", diff)
	}
	if got := chunks[2].TriangleCount(); got != 7 {
		t.Errorf("Expected 7 triangles in last chunk, got %d", got)
	}

	// 第i个面位于第i/T块的第i%T个三角形
	i := TRIANGLES_PER_CHUNK + 5
	got := chunks[i/TRIANGLES_PER_CHUNK].Facet(i % TRIANGLES_PER_CHUNK)
	if got != facets[i] {
		t.Errorf("facet %d misplaced: %v", i, got)
	}
}

// TestPartitionExactMultiple 恰好一个满块时两种策略的块数
func TestPartitionExactMultiple(t *testing.T) {
	facets := numberedFacets(TRIANGLES_PER_CHUNK)

	chunks := Partition(facets, ChunkPolicyCeil)
	if len(chunks) != 1 {
		t.Fatalf("ceil: expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0].Indices) != MAX_VERTICES_PER_CHUNK {
		t.Errorf("Expected full chunk, got %d indices", len(chunks[0].Indices))
	}

	chunks = Partition(facets, ChunkPolicyLegacy)
	if len(chunks) != 2 {
		t.Fatalf("legacy: expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].TriangleCount() != 0 {
		t.Errorf("legacy: expected trailing empty chunk, got %d triangles", chunks[1].TriangleCount())
	}
}

func TestPartitionEmpty(t *testing.T) {
	for _, policy := range []ChunkPolicy{ChunkPolicyCeil, ChunkPolicyLegacy} {
		chunks := Partition(nil, policy)
		if len(chunks) != 1 {
			t.Fatalf("%s: expected 1 chunk, got %d", policy, len(chunks))
		}
		c := chunks[0]
		if len(c.Vertices) != 0 || len(c.Normals) != 0 || len(c.Indices) != 0 {
			t.Errorf("%s: expected empty chunk", policy)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("%s: empty chunk invalid: %v", policy, err)
		}
	}
}

func TestPartitionerEmitError(t *testing.T) {
	stop := errors.New("stop")
	emitted := 0
	p := NewPartitioner(ChunkPolicyCeil, func(*MeshChunk) error {
		emitted++
		return stop
	})
	facets := numberedFacets(TRIANGLES_PER_CHUNK)
	var err error
	for i := range facets {
		if err = p.Add(&facets[i]); err != nil {
			break
		}
	}
	if !errors.Is(err, stop) {
		t.Fatalf("Expected emit error, got %v", err)
	}
	if emitted != 1 {
		t.Errorf("Expected 1 emitted chunk, got %d", emitted)
	}
}

func TestMeshChunkValidate(t *testing.T) {
	good := Partition([]Facet{unitFacet}, ChunkPolicyCeil)[0]
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	tests := []struct {
		name  string
		chunk *MeshChunk
	}{
		{"LengthMismatch", &MeshChunk{Vertices: good.Vertices, Normals: good.Normals[:2], Indices: good.Indices}},
		{"NotTriangles", &MeshChunk{Vertices: good.Vertices[:2], Normals: good.Normals[:2], Indices: good.Indices[:2]}},
		{"IndexOutOfRange", &MeshChunk{Vertices: good.Vertices, Normals: good.Normals, Indices: []uint32{0, 1, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.chunk.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestMeshChunkBounds(t *testing.T) {
	chunks := Partition(numberedFacets(TRIANGLES_PER_CHUNK+3), ChunkPolicyCeil)

	b := chunks[1].Bounds()
	want := dvec3.Box{
		Min: dvec3.T{TRIANGLES_PER_CHUNK, 0, 0},
		Max: dvec3.T{TRIANGLES_PER_CHUNK + 2, 1, 1},
	}
	if b != want {
		t.Errorf("Expected %v, got %v", want, b)
	}

	all := ComputeBBox(chunks)
	want.Min[0] = 0
	if all != want {
		t.Errorf("Expected %v, got %v", want, all)
	}

	if ComputeBBox([]*MeshChunk{newMeshChunk(0)}) != (dvec3.Box{}) {
		t.Error("Expected zero box for empty chunks")
	}
}

func TestRecomputeNormal(t *testing.T) {
	f := unitFacet
	f.Normal = vec3.T{}
	RecomputeNormal(&f)
	if f.Normal != (vec3.T{0, 0, 1}) {
		t.Errorf("Expected (0,0,1), got %v", f.Normal)
	}

	// 已有法线保持不变
	f.Normal = vec3.T{1, 0, 0}
	RecomputeNormal(&f)
	if f.Normal != (vec3.T{1, 0, 0}) {
		t.Errorf("declared normal changed to %v", f.Normal)
	}

	degenerate := Facet{Vertex: [3]vec3.T{{1, 1, 1}, {1, 1, 1}, {2, 2, 2}}}
	RecomputeNormal(&degenerate)
	if degenerate.Normal != (vec3.T{}) {
		t.Errorf("Expected zero normal for degenerate facet, got %v", degenerate.Normal)
	}
	if math.IsNaN(float64(degenerate.Normal[0])) {
		t.Error("NaN normal")
	}
}
