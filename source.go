package jsonbind

import (
	"io"
	"sync"

	eng "github.com/reoring/jsonbind/internal/engine"
	"github.com/reoring/jsonbind/source/gojson"
)

// TokenKind enumerates JSON token kinds. Values mirror engine.Kind.
type TokenKind int

const (
	TokenBeginObject TokenKind = iota
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; the session decides between Int and Float.
	Bool   bool
	Offset int64
}

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is based on goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver reports the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) Source { return SourceFromEngine(gojson.NewReader(r)) }
func (defaultJSONDriver) NewBytes(b []byte) Source     { return SourceFromEngine(gojson.NewBytes(b)) }
func (defaultJSONDriver) Name() string                 { return "go-json" }

// JSONReader wraps an io.Reader as a JSON Source. Sessions started with
// ParseFrom take their line numbers from the bytes it reads.
func JSONReader(r io.Reader) Source {
	lr := &lineReader{r: r, idx: &lineIndex{}}
	return &linedSource{Source: CurrentJSONDriver().NewReader(lr), reader: lr}
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source {
	return &linedSource{Source: CurrentJSONDriver().NewBytes(b), data: b}
}

// linedSource is a driver Source whose raw input can feed a session's line
// index.
type linedSource struct {
	Source
	data   []byte
	reader *lineReader
}

// attach routes line bookkeeping to idx. Newlines already read are carried
// over when idx is fresh.
func (l *linedSource) attach(idx *lineIndex) {
	if l.reader == nil {
		idx.observe(l.data)
		return
	}
	if idx.seen == 0 {
		*idx = *l.reader.idx
	}
	l.reader.idx = idx
}

// SourceFromEngine wraps an engine.TokenSource as a jsonbind.Source.
func SourceFromEngine(inner eng.TokenSource) Source {
	return &engineSourceAdapter{inner: inner}
}

// EnforceSource wraps a Source with runtime enforcement (duplicate keys, depth,
// bytes). Non-fatal issues, such as duplicate keys in warn mode, are forwarded
// to sink when it is non-nil.
func EnforceSource(s Source, opt ParseOpt, sink func(Issue)) Source {
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) {
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: s.Location()})
		}
	}
	eopt := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   forward,
		FailFast:    opt.FailFast,
	}
	if ls, ok := s.(*linedSource); ok {
		s = ls.Source
	}
	// Fast-path: unwrap to avoid public<->engine adapter round-trips.
	if ea, ok := s.(*engineSourceAdapter); ok {
		return SourceFromEngine(eng.WrapWithEnforcement(ea.inner, eopt))
	}
	return SourceFromEngine(eng.WrapWithEnforcement(engineTokenSource{s}, eopt))
}

// EnforceSourceIfNeeded returns the original Source if the options are
// effectively disabled (ignore duplicate keys, zero depth, zero size).
func EnforceSourceIfNeeded(s Source, opt ParseOpt, sink func(Issue)) Source {
	if opt.OnDuplicateKey == Ignore && opt.MaxDepth == 0 && opt.MaxBytes == 0 {
		return s
	}
	return EnforceSource(s, opt, sink)
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

type engineSourceAdapter struct {
	inner eng.TokenSource
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

// engineTokenSource exposes a public Source to the engine.
type engineTokenSource struct{ s Source }

func (e engineTokenSource) NextToken() (eng.Token, error) {
	t, err := e.s.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: eng.Kind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (e engineTokenSource) Location() int64 { return e.s.Location() }

// SyntaxError is returned by drivers for malformed input. Offset is the byte
// position where the problem was detected.
type SyntaxError = eng.SyntaxError
