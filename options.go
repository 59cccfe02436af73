package stlmesh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ErrorPolicy 决定导入失败时是记录日志返回空结果还是把错误交给调用方
type ErrorPolicy string

const (
	// ErrorPolicyContainBinary binary解码失败记录日志并返回空结果, ascii失败直接返回
	ErrorPolicyContainBinary ErrorPolicy = "contain-binary"
	ErrorPolicyPropagate     ErrorPolicy = "propagate"
	ErrorPolicyContainAll    ErrorPolicy = "contain-all"
)

const maxOptionsFileSize = 1 * 1024 * 1024

type Options struct {
	ChunkPolicy      ChunkPolicy `json:"chunk_policy,omitempty"`
	ErrorPolicy      ErrorPolicy `json:"error_policy,omitempty"`
	RecomputeNormals bool        `json:"recompute_normals,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		ChunkPolicy: ChunkPolicyCeil,
		ErrorPolicy: ErrorPolicyContainBinary,
	}
}

func (o *Options) Validate() error {
	switch o.ChunkPolicy {
	case ChunkPolicyCeil, ChunkPolicyLegacy:
	default:
		return fmt.Errorf("unknown chunk_policy %q", o.ChunkPolicy)
	}
	switch o.ErrorPolicy {
	case ErrorPolicyContainBinary, ErrorPolicyPropagate, ErrorPolicyContainAll:
	default:
		return fmt.Errorf("unknown error_policy %q", o.ErrorPolicy)
	}
	return nil
}

// containFailure 按策略判断某种编码的解码失败是否只记录日志
func (o *Options) containFailure(format Format) bool {
	switch o.ErrorPolicy {
	case ErrorPolicyContainAll:
		return true
	case ErrorPolicyContainBinary:
		return format == FormatBinary
	}
	return false
}

// LoadOptions 从json文件读取导入选项, 未出现的字段保留默认值.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return opts, fmt.Errorf("options file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return opts, fmt.Errorf("failed to stat options file: %w", err)
	}
	if info.Size() > maxOptionsFileSize {
		return opts, fmt.Errorf("options file too large: %d bytes (max %d)", info.Size(), maxOptionsFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return opts, fmt.Errorf("failed to read options file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return DefaultOptions(), fmt.Errorf("failed to parse options JSON: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return DefaultOptions(), fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}
