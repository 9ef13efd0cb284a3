// Package gojson adapts the goccy/go-json streaming decoder to the engine
// token model. It is the default tokenizer used by jsonbind.
package gojson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/jsonbind/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
	// count is the number of keys or elements seen so far.
	count int
}

type source struct {
	dec   *j.Decoder
	raw   *tape
	stack []frame
	done  bool
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	t := &tape{r: r}
	return newSource(j.NewDecoder(t), t)
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource {
	return newSource(j.NewDecoder(bytes.NewReader(b)), &tape{buf: b})
}

func newSource(dec *j.Decoder, t *tape) *source {
	dec.UseNumber()
	return &source{dec: dec, raw: t}
}

// The go-json tokenizer skips ',' and ':' without checking them. The frame
// stack below rejects the structural errors it can observe (mismatched
// closing delimiters, non-string keys, values after a complete top-level
// value) and the raw tape checks the separators between tokens.
func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return eng.Token{}, io.EOF
		}
		var se *j.SyntaxError
		if errors.As(err, &se) {
			return eng.Token{}, &eng.SyntaxError{Offset: se.Offset, Msg: se.Error()}
		}
		return eng.Token{}, err
	}
	off := s.dec.InputOffset()
	d, closing := tok.(j.Delim)
	closing = closing && (d == '}' || d == ']')
	if at, msg := s.raw.advance(s.separator(closing)); msg != "" {
		return eng.Token{}, s.syntaxError(at, msg)
	}
	if s.done && len(s.stack) == 0 {
		return eng.Token{}, s.syntaxError(off, "trailing data after top-level value")
	}

	if v, ok := tok.(j.Delim); ok {
		switch v {
		case '{':
			if err := s.beginValue(off); err != nil {
				return eng.Token{}, err
			}
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
		case '[':
			if err := s.beginValue(off); err != nil {
				return eng.Token{}, err
			}
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
		case '}':
			if err := s.close(kindObject, off); err != nil {
				return eng.Token{}, err
			}
			return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
		case ']':
			if err := s.close(kindArray, off); err != nil {
				return eng.Token{}, err
			}
			return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
		}
	}

	if str, ok := tok.(string); ok {
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				top.count++
				return eng.Token{Kind: eng.KindKey, String: str, Offset: off}, nil
			}
		}
		if err := s.beginValue(off); err != nil {
			return eng.Token{}, err
		}
		s.endValue()
		return eng.Token{Kind: eng.KindString, String: str, Offset: off}, nil
	}

	if err := s.beginValue(off); err != nil {
		return eng.Token{}, err
	}
	s.endValue()
	switch v := tok.(type) {
	case bool:
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		// go-json hands out number text aliasing its read buffer.
		return eng.Token{Kind: eng.KindNumber, Number: strings.Clone(string(v)), Offset: off}, nil
	case float64:
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	case nil:
		return eng.Token{Kind: eng.KindNull, Offset: off}, nil
	}
	return eng.Token{}, s.syntaxError(off, fmt.Sprintf("unexpected token %v", tok))
}

// separator returns the byte that must precede the next token, or 0.
func (s *source) separator(closing bool) byte {
	n := len(s.stack)
	if n == 0 || closing {
		return 0
	}
	top := s.stack[n-1]
	switch {
	case top.kind == kindObject && !top.expectingKey:
		return ':'
	case top.count > 0:
		return ','
	}
	return 0
}

func (s *source) beginValue(off int64) error {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && top.expectingKey {
			return s.syntaxError(off, "object key must be a string")
		}
		if top.kind == kindArray {
			top.count++
		}
	}
	return nil
}

func (s *source) endValue() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
		return
	}
	s.done = true
}

func (s *source) close(kind containerKind, off int64) error {
	n := len(s.stack)
	if n == 0 || s.stack[n-1].kind != kind {
		return s.syntaxError(off, "mismatched closing delimiter")
	}
	if kind == kindObject && !s.stack[n-1].expectingKey {
		return s.syntaxError(off, "object key without value")
	}
	s.stack = s.stack[:n-1]
	s.endValue()
	return nil
}

func (s *source) syntaxError(off int64, msg string) error {
	return &eng.SyntaxError{Offset: off, Msg: fmt.Sprintf("%s at offset %d", msg, off)}
}

func (s *source) Location() int64 { return s.dec.InputOffset() }
