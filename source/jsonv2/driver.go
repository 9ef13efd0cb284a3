// Package jsonv2 provides a jsonbind driver backed by the
// go-json-experiment jsontext decoder. It validates the full JSON grammar,
// so it is stricter than the default go-json driver.
//
//	jsonbind.SetJSONDriver(jsonv2.Driver())
package jsonv2

import (
	"bytes"
	"errors"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	jsonbind "github.com/reoring/jsonbind"
	eng "github.com/reoring/jsonbind/internal/engine"
)

// Driver returns a jsonbind.JSONDriver using jsontext.
func Driver() jsonbind.JSONDriver { return driver{} }

type driver struct{}

func (driver) NewReader(r io.Reader) jsonbind.Source { return jsonbind.SourceFromEngine(NewReader(r)) }
func (driver) NewBytes(b []byte) jsonbind.Source     { return jsonbind.SourceFromEngine(NewBytes(b)) }
func (driver) Name() string                          { return "jsontext" }

type source struct {
	dec  *jsontext.Decoder
	done bool
}

// NewReader wraps r into an engine.TokenSource.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{dec: jsontext.NewDecoder(r)}
}

// NewBytes wraps b into an engine.TokenSource.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.ReadToken()
	if err != nil {
		// Input that stops inside a value is reported as a plain end of
		// stream; the session decides whether the document is complete.
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return eng.Token{}, io.EOF
		}
		var se *jsontext.SyntacticError
		if errors.As(err, &se) {
			return eng.Token{}, &eng.SyntaxError{Offset: se.ByteOffset, Msg: se.Error()}
		}
		return eng.Token{}, err
	}
	off := s.dec.InputOffset()
	if s.done {
		return eng.Token{}, &eng.SyntaxError{Offset: off, Msg: "trailing data after top-level value"}
	}
	depth := s.dec.StackDepth()
	if depth == 0 {
		s.done = true
	}

	switch tok.Kind() {
	case '{':
		return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
	case '}':
		return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
	case '[':
		return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
	case ']':
		return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
	case '"':
		kind := eng.KindString
		if k, n := s.dec.StackIndex(depth); k == '{' && n%2 == 1 {
			kind = eng.KindKey
		}
		return eng.Token{Kind: kind, String: tok.String(), Offset: off}, nil
	case '0':
		return eng.Token{Kind: eng.KindNumber, Number: tok.String(), Offset: off}, nil
	case 't', 'f':
		return eng.Token{Kind: eng.KindBool, Bool: tok.Bool(), Offset: off}, nil
	case 'n':
		return eng.Token{Kind: eng.KindNull, Offset: off}, nil
	}
	return eng.Token{}, &eng.SyntaxError{Offset: off, Msg: "unexpected token " + tok.Kind().String()}
}

func (s *source) Location() int64 { return s.dec.InputOffset() }
