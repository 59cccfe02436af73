package stlmesh

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// Importer 读取STL文件: 判断编码, 解码, 切分为网格块
type Importer struct {
	Options Options
	Logger  *log.Logger
}

func NewImporter(opts Options) *Importer {
	return &Importer{Options: opts, Logger: log.Default()}
}

// Import 使用默认选项导入
func Import(path string) ([]*MeshChunk, error) {
	return NewImporter(DefaultOptions()).Import(path)
}

// Import 完整解码后再切分. 被策略吸收的解码失败会记录日志并返回(nil, nil),
// 调用方应把"没有网格"当作正常结果处理.
func (im *Importer) Import(path string) ([]*MeshChunk, error) {
	var facets []Facet
	format, err := im.decodeFile(path, func(f *Facet) error {
		facets = append(facets, *f)
		return nil
	})
	if err != nil {
		return nil, im.handleFailure(path, format, err)
	}
	return Partition(facets, im.Options.ChunkPolicy), nil
}

// ImportStream 边解码边切分, 每写满一个块就交给fn, 工作内存限于一个块.
// 失败被吸收时, 之前已交给fn的块不会撤回.
func (im *Importer) ImportStream(path string, fn func(*MeshChunk) error) error {
	p := NewPartitioner(im.Options.ChunkPolicy, fn)
	format, err := im.decodeFile(path, p.Add)
	if err != nil {
		return im.handleFailure(path, format, err)
	}
	return p.Flush()
}

func (im *Importer) decodeFile(path string, visit func(*Facet) error) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatAscii, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FormatAscii, fmt.Errorf("stat %s: %w", path, err)
	}
	format, err := DetectFormatReader(f, info.Size())
	if err != nil {
		return format, err
	}

	if im.Options.RecomputeNormals {
		next := visit
		visit = func(f *Facet) error {
			RecomputeNormal(f)
			return next(f)
		}
	}
	return format, im.decode(f, info.Size(), format, visit)
}

func (im *Importer) decode(rd io.Reader, size int64, format Format, visit func(*Facet) error) error {
	switch format {
	case FormatBinary:
		var header [STL_HEADER_SIZE]byte
		return decodeBinary(rd, size, &header, nil, visit)
	case FormatAscii:
		_, err := decodeAscii(rd, visit)
		return err
	}
	return ErrUnknownFormat
}

func (im *Importer) handleFailure(path string, format Format, err error) error {
	var pe *ParseError
	if !errors.As(err, &pe) || !im.Options.containFailure(format) {
		return err
	}
	im.logger().Printf("stlmesh: %s import of %s failed: %v", format, path, err)
	return nil
}

func (im *Importer) logger() *log.Logger {
	if im.Logger == nil {
		return log.Default()
	}
	return im.Logger
}
