package stlmesh

import (
	"fmt"
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go3d/vec3"
)

// ChunkPolicy 决定分块数量的计算方式
type ChunkPolicy string

const (
	// ChunkPolicyCeil max(1, ceil(L/T))
	ChunkPolicyCeil ChunkPolicy = "ceil"
	// ChunkPolicyLegacy L/T+1, L为T的整数倍时末尾多一个空块
	ChunkPolicyLegacy ChunkPolicy = "legacy"
)

// MeshChunk 一个可直接提交给渲染端的网格缓冲区.
// 每个三角形独占三个顶点, 索引从0开始顺序递增.
type MeshChunk struct {
	Vertices []vec3.T `json:"vertices"`
	Normals  []vec3.T `json:"normals"`
	Indices  []uint32 `json:"indices"`
}

func newMeshChunk(triangles int) *MeshChunk {
	return &MeshChunk{
		Vertices: make([]vec3.T, 0, triangles*3),
		Normals:  make([]vec3.T, 0, triangles*3),
		Indices:  make([]uint32, 0, triangles*3),
	}
}

func (c *MeshChunk) addFacet(f *Facet) {
	idx := uint32(len(c.Vertices))
	c.Vertices = append(c.Vertices, f.Vertex[0], f.Vertex[1], f.Vertex[2])
	c.Normals = append(c.Normals, f.Normal, f.Normal, f.Normal)
	c.Indices = append(c.Indices, idx, idx+1, idx+2)
}

func (c *MeshChunk) TriangleCount() int {
	return len(c.Indices) / 3
}

// Facet 还原块内第i个三角形
func (c *MeshChunk) Facet(i int) Facet {
	return Facet{
		Normal: c.Normals[c.Indices[i*3]],
		Vertex: [3]vec3.T{
			c.Vertices[c.Indices[i*3]],
			c.Vertices[c.Indices[i*3+1]],
			c.Vertices[c.Indices[i*3+2]],
		},
	}
}

// Validate 检查缓冲区长度与索引范围
func (c *MeshChunk) Validate() error {
	n := len(c.Indices)
	if len(c.Vertices) != n || len(c.Normals) != n {
		return fmt.Errorf("chunk buffers differ in length: vertices=%d normals=%d indices=%d", len(c.Vertices), len(c.Normals), n)
	}
	if n%3 != 0 {
		return fmt.Errorf("chunk index count %d is not a multiple of 3", n)
	}
	if n > MAX_VERTICES_PER_CHUNK {
		return fmt.Errorf("chunk index count %d exceeds %d", n, MAX_VERTICES_PER_CHUNK)
	}
	for i, idx := range c.Indices {
		if int(idx) >= len(c.Vertices) {
			return fmt.Errorf("index %d at %d out of range", idx, i)
		}
	}
	return nil
}

func (c *MeshChunk) GetBoundbox() *[6]float64 {
	minX := math.MaxFloat64
	minY := math.MaxFloat64
	minZ := math.MaxFloat64
	maxX := -math.MaxFloat64
	maxY := -math.MaxFloat64
	maxZ := -math.MaxFloat64
	for i := range c.Vertices {
		minX = math.Min(minX, float64(c.Vertices[i][0]))
		minY = math.Min(minY, float64(c.Vertices[i][1]))
		minZ = math.Min(minZ, float64(c.Vertices[i][2]))

		maxX = math.Max(maxX, float64(c.Vertices[i][0]))
		maxY = math.Max(maxY, float64(c.Vertices[i][1]))
		maxZ = math.Max(maxZ, float64(c.Vertices[i][2]))
	}
	return &[6]float64{minX, minY, minZ, maxX, maxY, maxZ}
}

func (c *MeshChunk) Bounds() dvec3.Box {
	if len(c.Vertices) == 0 {
		return dvec3.Box{}
	}
	bx := c.GetBoundbox()
	return dvec3.Box{
		Min: dvec3.T{bx[0], bx[1], bx[2]},
		Max: dvec3.T{bx[3], bx[4], bx[5]},
	}
}

// ComputeBBox 所有非空块的联合包围盒
func ComputeBBox(chunks []*MeshChunk) dvec3.Box {
	bbox := dvec3.MinBox
	empty := true
	for _, c := range chunks {
		if len(c.Vertices) == 0 {
			continue
		}
		bx := c.Bounds()
		bbox.Join(&bx)
		empty = false
	}
	if empty {
		return dvec3.Box{}
	}
	return bbox
}

// ChunkCount 按策略计算L个三角形需要的块数
func ChunkCount(triangles int, policy ChunkPolicy) int {
	if policy == ChunkPolicyLegacy {
		return triangles/TRIANGLES_PER_CHUNK + 1
	}
	n := (triangles + TRIANGLES_PER_CHUNK - 1) / TRIANGLES_PER_CHUNK
	if n == 0 {
		n = 1
	}
	return n
}

// Partitioner 增量地把面打包进有界的网格块, 块写满即交给emit
type Partitioner struct {
	policy    ChunkPolicy
	emit      func(*MeshChunk) error
	cur       *MeshChunk
	triangles int
	chunks    int
	sizeHint  int
}

func NewPartitioner(policy ChunkPolicy, emit func(*MeshChunk) error) *Partitioner {
	return &Partitioner{policy: policy, emit: emit}
}

func (p *Partitioner) Add(f *Facet) error {
	if p.cur == nil {
		p.cur = newMeshChunk(p.nextCapacity())
	}
	p.cur.addFacet(f)
	p.triangles++
	if p.cur.TriangleCount() == TRIANGLES_PER_CHUNK {
		return p.flushChunk()
	}
	return nil
}

// SetSizeHint 已知面总数时避免按满块预分配
func (p *Partitioner) SetSizeHint(total int) {
	p.sizeHint = total
}

func (p *Partitioner) nextCapacity() int {
	if p.sizeHint <= 0 {
		return TRIANGLES_PER_CHUNK
	}
	rest := p.sizeHint - p.triangles
	if rest < 1 {
		return 1
	}
	if rest > TRIANGLES_PER_CHUNK {
		return TRIANGLES_PER_CHUNK
	}
	return rest
}

func (p *Partitioner) flushChunk() error {
	c := p.cur
	p.cur = nil
	p.chunks++
	return p.emit(c)
}

// Flush 发出最后一个未满的块, 并按策略补齐空块
func (p *Partitioner) Flush() error {
	if p.cur != nil {
		if err := p.flushChunk(); err != nil {
			return err
		}
	}
	want := ChunkCount(p.triangles, p.policy)
	for p.chunks < want {
		p.cur = newMeshChunk(0)
		if err := p.flushChunk(); err != nil {
			return err
		}
	}
	return nil
}

// Partition 把完整的面序列切分成网格块. 第i个面落在第i/T块的第i%T个三角形.
func Partition(facets []Facet, policy ChunkPolicy) []*MeshChunk {
	chunks := make([]*MeshChunk, 0, ChunkCount(len(facets), policy))
	p := NewPartitioner(policy, func(c *MeshChunk) error {
		chunks = append(chunks, c)
		return nil
	})
	p.SetSizeHint(len(facets))
	for i := range facets {
		p.Add(&facets[i])
	}
	p.Flush()
	return chunks
}

// RecomputeNormal 法线长度为0时用顶点叉积补一条单位法线, 退化三角形保持不变
func RecomputeNormal(f *Facet) {
	if f.Normal.Length() != 0 {
		return
	}
	sub1 := vec3.Sub(&f.Vertex[1], &f.Vertex[0])
	sub2 := vec3.Sub(&f.Vertex[2], &f.Vertex[0])
	cro := vec3.Cross(&sub1, &sub2)
	l := cro.Length()
	if l == 0 {
		return
	}
	f.Normal = *cro.Scale(1 / l)
}
