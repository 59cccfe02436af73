package stlmesh

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBinary = errors.New("malformed binary stl")
	ErrMalformedAscii  = errors.New("malformed ascii stl")
	ErrMisclassified   = errors.New("stl size does not match declared facet count")
	ErrUnknownFormat   = errors.New("unknown stl format")
)

// ParseError 解码失败时的上下文
type ParseError struct {
	Format Format
	Line   int // ascii only, 1-based
	Facet  int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	kind := ErrMalformedAscii
	if e.Format == FormatBinary {
		kind = ErrMalformedBinary
	}
	var s string
	if e.Format == FormatAscii && e.Line > 0 {
		s = fmt.Sprintf("%v: line %d: %s", kind, e.Line, e.Msg)
	} else {
		s = fmt.Sprintf("%v: facet %d: %s", kind, e.Facet, e.Msg)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() []error {
	kind := ErrMalformedAscii
	if e.Format == FormatBinary {
		kind = ErrMalformedBinary
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

func binaryError(facet int, msg string, err error) error {
	return &ParseError{Format: FormatBinary, Facet: facet, Msg: msg, Err: err}
}

func asciiError(line, facet int, msg string, err error) error {
	return &ParseError{Format: FormatAscii, Line: line, Facet: facet, Msg: msg, Err: err}
}
