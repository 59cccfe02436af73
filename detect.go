package stlmesh

import (
	"fmt"
	"io"
	"os"
)

// DetectFormat 根据文件头判断STL编码.
// 小于130字节的文件按ascii处理; 否则前80字节全为0时判定为binary.
// 这是启发式判断, 非零填充的binary头会被误判为ascii.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatAscii, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FormatAscii, fmt.Errorf("stat %s: %w", path, err)
	}
	return DetectFormatReader(f, info.Size())
}

func DetectFormatReader(r io.ReaderAt, size int64) (Format, error) {
	if size < STL_MIN_BINARY_BYTES {
		return FormatAscii, nil
	}
	var header [STL_HEADER_SIZE]byte
	if _, err := r.ReadAt(header[:], 0); err != nil {
		return FormatAscii, fmt.Errorf("read stl header: %w", err)
	}
	return classifyHeader(header[:]), nil
}

func classifyHeader(header []byte) Format {
	for _, b := range header {
		if b != 0 {
			return FormatAscii
		}
	}
	return FormatBinary
}
