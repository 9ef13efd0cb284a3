package gojson

import (
	"fmt"
	"io"
)

// tape keeps the raw input behind the decoder so the bytes between two
// tokens can be checked. For readers it records what the decoder reads and
// drops the prefix that has been scanned.
type tape struct {
	r    io.Reader
	buf  []byte
	base int64 // input offset of buf[0]
	pos  int64 // input offset just past the last token scanned
}

const tapeKeep = 4096

func (t *tape) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.buf = append(t.buf, p[:n]...)
	}
	return n, err
}

// advance scans to the end of the next token. The bytes before it may only
// be whitespace and, when want is not 0, exactly one want separator. On
// failure it returns the offending offset and a message.
func (t *tape) advance(want byte) (int64, string) {
	i := t.space(int(t.pos - t.base))
	if i < len(t.buf) && isSeparator(t.buf[i]) {
		if t.buf[i] != want {
			return t.base + int64(i), fmt.Sprintf("unexpected %q", t.buf[i])
		}
		i = t.space(i + 1)
		if i < len(t.buf) && isSeparator(t.buf[i]) {
			return t.base + int64(i), fmt.Sprintf("unexpected %q", t.buf[i])
		}
	} else if want != 0 {
		return t.base + int64(i), fmt.Sprintf("missing %q", want)
	}
	t.pos = t.base + int64(t.tokenEnd(i))
	t.compact()
	return 0, ""
}

func (t *tape) space(i int) int {
	for i < len(t.buf) {
		switch t.buf[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func (t *tape) tokenEnd(i int) int {
	if i >= len(t.buf) {
		return i
	}
	switch t.buf[i] {
	case '{', '}', '[', ']':
		return i + 1
	case '"':
		for j := i + 1; j < len(t.buf); j++ {
			switch t.buf[j] {
			case '\\':
				j++
			case '"':
				return j + 1
			}
		}
		return len(t.buf)
	}
	j := i
	for j < len(t.buf) && !isDelimiter(t.buf[j]) {
		j++
	}
	return j
}

func (t *tape) compact() {
	if t.r == nil {
		return
	}
	if k := int(t.pos - t.base); k > tapeKeep {
		t.buf = append(t.buf[:0], t.buf[k:]...)
		t.base += int64(k)
	}
}

func isSeparator(c byte) bool { return c == ',' || c == ':' }

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ',', ':', '{', '}', '[', ']', '"':
		return true
	}
	return false
}
