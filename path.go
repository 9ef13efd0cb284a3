package jsonbind

import (
	"strconv"
	"strings"
)

// ArrayMarker is the canonical path segment standing for any element of an
// array. Keys containing '#' are escaped so they never collide with it.
const ArrayMarker = "#"

const anchorMarker = '^'

var (
	keyEscaper   = strings.NewReplacer("~", "~0", "/", "~1", "#", "~2")
	keyUnescaper = strings.NewReplacer("~0", "~", "~1", "/", "~2", "#")
)

// EscapeKey encodes a map key as a canonical path segment.
func EscapeKey(key string) string { return keyEscaper.Replace(key) }

// UnescapeSegment reverses EscapeKey.
func UnescapeSegment(seg string) string { return keyUnescaper.Replace(seg) }

// JoinPath builds a canonical path from raw keys. ArrayMarker is kept as the
// array segment; every other key is escaped.
func JoinPath(keys ...string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteByte('/')
		if k == ArrayMarker {
			b.WriteString(ArrayMarker)
			continue
		}
		b.WriteString(EscapeKey(k))
	}
	return b.String()
}

// SplitPath splits a canonical path into its escaped segments.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// ToPointer converts a canonical path into an RFC 6901 JSON Pointer,
// substituting array markers with the given indices in order. Markers beyond
// len(indices) are rendered as "-".
func ToPointer(path string, indices []int) string {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	next := 0
	for _, seg := range segs {
		b.WriteByte('/')
		if seg == ArrayMarker {
			if next < len(indices) && indices[next] >= 0 {
				b.WriteString(strconv.Itoa(indices[next]))
			} else {
				b.WriteByte('-')
			}
			next++
			continue
		}
		// ~0 and ~1 mean the same thing in a JSON Pointer; only ~2 differs.
		b.WriteString(strings.ReplaceAll(seg, "~2", "#"))
	}
	return b.String()
}

// pathBuffer holds the canonical path of the tokenizer position plus the
// offsets where each open scope began.
type pathBuffer struct {
	buf    []byte
	scopes []int
}

func (p *pathBuffer) String() string { return string(p.buf) }

func (p *pathBuffer) Len() int { return len(p.buf) }

func (p *pathBuffer) depth() int { return len(p.scopes) }

func (p *pathBuffer) pushScope() { p.scopes = append(p.scopes, len(p.buf)) }

// truncate drops everything written since the innermost scope began.
func (p *pathBuffer) truncate() {
	if n := len(p.scopes); n > 0 {
		p.buf = p.buf[:p.scopes[n-1]]
	}
}

func (p *pathBuffer) popScope() {
	p.truncate()
	if n := len(p.scopes); n > 0 {
		p.scopes = p.scopes[:n-1]
	}
}

func (p *pathBuffer) appendKey(key string) {
	p.buf = append(p.buf, '/')
	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case '~':
			p.buf = append(p.buf, '~', '0')
		case '/':
			p.buf = append(p.buf, '~', '1')
		case '#':
			p.buf = append(p.buf, '~', '2')
		default:
			p.buf = append(p.buf, c)
		}
	}
}

func (p *pathBuffer) appendMarker() { p.buf = append(p.buf, '/', '#') }

// inArray reports whether the last segment is the array marker, meaning the
// next value is an array element.
func (p *pathBuffer) inArray() bool {
	n := len(p.buf)
	return n >= 2 && p.buf[n-1] == '#' && p.buf[n-2] == '/'
}

// lastKey returns the unescaped last segment that is not an array marker.
func (p *pathBuffer) lastKey() string {
	segs := SplitPath(string(p.buf))
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != ArrayMarker {
			return UnescapeSegment(segs[i])
		}
	}
	return ""
}

func (p *pathBuffer) reset(path string) {
	p.buf = append(p.buf[:0], path...)
	p.scopes = p.scopes[:0]
}
