package stlmesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/flywave/go3d/vec3"
)

// 预分配上限, 避免误判文件中的垃圾计数导致超大分配
const maxPreallocFacets = 1 << 20

// binaryFacet 50字节的二进制面记录, 无填充
type binaryFacet struct {
	Normal vec3.T
	Vertex [3]vec3.T
	Attr   uint16
}

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

func binaryFileSize(count uint32) int64 {
	return STL_HEADER_SIZE + STL_COUNT_SIZE + int64(count)*STL_FACET_SIZE
}

// DecodeBinary 读取binary STL, 返回按文件顺序排列的面
func DecodeBinary(rd io.Reader) ([]Facet, error) {
	s, err := DecodeBinarySolid(rd)
	if err != nil {
		return nil, err
	}
	return s.Facets, nil
}

func DecodeBinarySolid(rd io.Reader) (*Solid, error) {
	s := &Solid{Format: FormatBinary}
	err := decodeBinary(rd, -1, &s.Header, func(count uint32) {
		s.Facets = make([]Facet, 0, minCount(count))
	}, func(f *Facet) error {
		s.Facets = append(s.Facets, *f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func minCount(count uint32) int {
	if count > maxPreallocFacets {
		return maxPreallocFacets
	}
	return int(count)
}

// decodeBinary 逐个回调面记录. size为流总长度, 未知时传-1.
func decodeBinary(rd io.Reader, size int64, header *[STL_HEADER_SIZE]byte, onCount func(uint32), visit func(*Facet) error) error {
	br := bufio.NewReader(rd)
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return binaryError(0, "read header", err)
	}
	var count uint32
	if err := readLittleByte(br, &count); err != nil {
		return binaryError(0, "read facet count", err)
	}
	if size >= 0 && size < binaryFileSize(count) {
		msg := fmt.Sprintf("declared %d facets need %d bytes, have %d", count, binaryFileSize(count), size)
		return binaryError(0, msg, ErrMisclassified)
	}
	if onCount != nil {
		onCount(count)
	}

	var rec binaryFacet
	var f Facet
	for i := uint32(0); i < count; i++ {
		if err := readLittleByte(br, &rec); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return binaryError(int(i), fmt.Sprintf("truncated, %d of %d facets read", i, count), err)
		}
		f.Normal = rec.Normal
		f.Vertex = rec.Vertex
		if err := visit(&f); err != nil {
			return err
		}
	}
	return nil
}
