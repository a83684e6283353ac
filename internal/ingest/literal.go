package ingest

import (
	"bufio"
	"bytes"
	"io"
)

// overflowLiteral：超出 float64 范围的数字，解析后为 ±Inf，最终归入 non_finite
var overflowLiteral = []byte("1e999")

// 文档注释：非标准数值字面量改写
// 背景：Python/NumPy 导出的 JSON 常含 NaN、Infinity、-Infinity，标准解码器遇到即整体失败；逐字节改写为溢出数字后，这些坐标按单条记录拒绝而不是中断整次导入。
// 约束：仅改写字符串外的字面量；负号原样保留，因此 -Infinity 变为 -1e999；其他非法内容原样透传，由解码器报错。
type literalReader struct {
	br       *bufio.Reader
	inString bool
	escaped  bool
	pending  []byte
	err      error
}

func newLiteralReader(r io.Reader) *literalReader {
	return &literalReader{br: bufio.NewReaderSize(r, 64*1024)}
}

func (r *literalReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) > 0 {
			c := copy(p[n:], r.pending)
			r.pending = r.pending[c:]
			n += c
			continue
		}
		if r.err != nil {
			break
		}
		b, err := r.br.ReadByte()
		if err != nil {
			r.err = err
			break
		}
		if r.inString {
			switch {
			case r.escaped:
				r.escaped = false
			case b == '\\':
				r.escaped = true
			case b == '"':
				r.inString = false
			}
			p[n] = b
			n++
			continue
		}
		switch b {
		case '"':
			r.inString = true
		case 'N':
			if r.consume("aN") {
				r.pending = overflowLiteral
				continue
			}
		case 'I':
			if r.consume("nfinity") {
				r.pending = overflowLiteral
				continue
			}
		}
		p[n] = b
		n++
	}
	if n == 0 && r.err != nil {
		return 0, r.err
	}
	return n, nil
}

// consume：后续字节与 rest 相同时跳过并返回 true
func (r *literalReader) consume(rest string) bool {
	peek, _ := r.br.Peek(len(rest))
	if !bytes.Equal(peek, []byte(rest)) {
		return false
	}
	_, _ = r.br.Discard(len(rest))
	return true
}
