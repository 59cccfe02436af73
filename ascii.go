package stlmesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flywave/go3d/vec3"
)

// 单行最大长度, 超过则按I/O错误处理
const maxAsciiLine = 1 << 20

type lineToken int

const (
	tokenUnknown lineToken = iota
	tokenSolid
	tokenFacet
	tokenOuter
	tokenVertex
	tokenEndLoop
	tokenEndFacet
	tokenEndSolid
)

var keywords = map[string]lineToken{
	"solid":    tokenSolid,
	"facet":    tokenFacet,
	"outer":    tokenOuter,
	"vertex":   tokenVertex,
	"endloop":  tokenEndLoop,
	"endfacet": tokenEndFacet,
	"endsolid": tokenEndSolid,
}

// classifyLine 按首个关键字(忽略大小写)给一行打标签, 返回关键字之后的字段
func classifyLine(line string) (lineToken, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return tokenUnknown, nil
	}
	tok, ok := keywords[strings.ToLower(fields[0])]
	if !ok {
		return tokenUnknown, nil
	}
	return tok, fields[1:]
}

type asciiParser struct {
	name    string
	line    int
	count   int
	inFacet bool
	slot    int
	cur     Facet
	done    bool
	visit   func(*Facet) error
}

func (p *asciiParser) fail(msg string, err error) error {
	return asciiError(p.line, p.count, msg, err)
}

func (p *asciiParser) step(tok lineToken, args []string) error {
	switch tok {
	case tokenSolid:
		if p.name == "" && p.count == 0 {
			p.name = strings.Join(args, " ")
		}
	case tokenFacet:
		if len(args) != 4 || !strings.EqualFold(args[0], "normal") {
			return p.fail("expected 'facet normal x y z'", nil)
		}
		n, err := parseTriple(args[1:])
		if err != nil {
			return p.fail("bad normal", err)
		}
		p.cur = Facet{Normal: n}
		p.inFacet = true
		p.slot = 0
	case tokenOuter:
		p.slot = 0
	case tokenVertex:
		if !p.inFacet {
			return p.fail("vertex outside facet", nil)
		}
		if p.slot >= 3 {
			return p.fail("more than 3 vertices in facet", nil)
		}
		if len(args) != 3 {
			return p.fail(fmt.Sprintf("expected 3 vertex coordinates, got %d", len(args)), nil)
		}
		v, err := parseTriple(args)
		if err != nil {
			return p.fail("bad vertex", err)
		}
		p.cur.Vertex[p.slot] = v
		p.slot++
	case tokenEndFacet:
		if !p.inFacet {
			return p.fail("endfacet outside facet", nil)
		}
		if p.slot != 3 {
			return p.fail(fmt.Sprintf("facet has %d vertices", p.slot), nil)
		}
		if err := p.visit(&p.cur); err != nil {
			return err
		}
		p.count++
		p.inFacet = false
	case tokenEndSolid:
		p.done = true
	}
	return nil
}

func parseTriple(tokens []string) (vec3.T, error) {
	var v vec3.T
	if len(tokens) != 3 {
		return v, fmt.Errorf("expected 3 numbers, got %d", len(tokens))
	}
	for i, t := range tokens {
		f, err := strconv.ParseFloat(t, 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// DecodeAscii 解析ascii STL. 遇到endsolid或输入结束时停止, 返回已读取的面.
func DecodeAscii(rd io.Reader) ([]Facet, error) {
	s, err := DecodeAsciiSolid(rd)
	if err != nil {
		return nil, err
	}
	return s.Facets, nil
}

func DecodeAsciiSolid(rd io.Reader) (*Solid, error) {
	s := &Solid{Format: FormatAscii}
	name, err := decodeAscii(rd, func(f *Facet) error {
		s.Facets = append(s.Facets, *f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

func decodeAscii(rd io.Reader, visit func(*Facet) error) (string, error) {
	p := &asciiParser{visit: visit}
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), maxAsciiLine)
	for !p.done && sc.Scan() {
		p.line++
		tok, args := classifyLine(sc.Text())
		if err := p.step(tok, args); err != nil {
			return p.name, err
		}
	}
	if err := sc.Err(); err != nil {
		return p.name, fmt.Errorf("read ascii stl: %w", err)
	}
	return p.name, nil
}
