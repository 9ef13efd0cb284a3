package jsonbind

import (
	"bytes"
	"io"
	"sort"
)

// lineIndex records the offsets of newlines seen in the input so token
// offsets can be turned into line numbers.
type lineIndex struct {
	newlines []int64
	seen     int64
}

func (l *lineIndex) observe(p []byte) {
	base := l.seen
	for i := 0; ; {
		j := bytes.IndexByte(p[i:], '\n')
		if j < 0 {
			break
		}
		l.newlines = append(l.newlines, base+int64(i+j))
		i += j + 1
	}
	l.seen += int64(len(p))
}

// lineAt returns the 1-based line holding offset off.
func (l *lineIndex) lineAt(off int64) int {
	n := sort.Search(len(l.newlines), func(i int) bool { return l.newlines[i] >= off })
	return n + 1
}

// lineReader feeds everything it reads into a lineIndex.
type lineReader struct {
	r   io.Reader
	idx *lineIndex
}

func (lr *lineReader) Read(p []byte) (int, error) {
	n, err := lr.r.Read(p)
	if n > 0 {
		lr.idx.observe(p[:n])
	}
	return n, err
}
