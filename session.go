package jsonbind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Session binds one JSON document to a schema tree. It is fed tokens in
// order, either one at a time through Feed or from a Source through Parse,
// and finished with Complete. A Session must not be used from several
// goroutines at once.
type Session struct {
	nodes []*Node
	opt   ParseOpt

	path         pathBuffer
	arrayIndex   []int
	handlerStack []*Node
	objs         objStack
	active       activeSet
	current      *Node
	siblings     []*Node
	activePaths  map[string]struct{}

	ctx    context.Context
	lines  lineIndex
	offset int64
	issues Issues
	err    error
}

// NewSession creates a session over nodes. root is the base context handed
// to top-level object providers; the session borrows it and never pops it.
func NewSession(nodes []*Node, root any, opts ...ParseOpt) *Session {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	s := &Session{nodes: nodes, opt: opt, offset: -1}
	s.objs.push(root)
	if len(opt.ActivePaths) > 0 {
		s.activePaths = make(map[string]struct{}, len(opt.ActivePaths))
		for _, p := range opt.ActivePaths {
			s.activePaths[p] = struct{}{}
		}
	}
	return s
}

// ---- accessors ----

// Path returns the canonical path of the current position.
func (s *Session) Path() string { return s.path.String() }

// Pointer returns the current position as a JSON Pointer with array indices.
func (s *Session) Pointer() string { return ToPointer(s.path.String(), s.arrayIndex) }

// Key returns the innermost map key on the current path, unescaped.
func (s *Session) Key() string { return s.path.lastKey() }

// Top returns the context pushed by the innermost matching object provider,
// or the root context.
func (s *Session) Top() any { return s.objs.top() }

// Root returns the base context.
func (s *Session) Root() any { return s.objs.items[0] }

// ArrayIndex returns the running index of the innermost open array, or -1.
func (s *Session) ArrayIndex() int {
	if n := len(s.arrayIndex); n > 0 {
		return s.arrayIndex[n-1]
	}
	return -1
}

// Current returns the leaf matched at the current position, if any.
func (s *Session) Current() *Node { return s.current }

// HandlerStack returns the branch nodes matched on the way to the current
// position; nil entries mark levels where nothing matched.
func (s *Session) HandlerStack() []*Node { return append([]*Node(nil), s.handlerStack...) }

// Source returns the source name used in diagnostics.
func (s *Session) Source() string { return s.opt.Source }

// LineNumber returns the 1-based line of the last token, when known.
func (s *Session) LineNumber() int {
	if s.offset < 0 {
		return 1
	}
	return s.lines.lineAt(s.offset)
}

// Issues returns every diagnostic recorded so far.
func (s *Session) Issues() Issues { return s.issues }

// Context returns the context of the running Parse call, or
// context.Background outside of one.
func (s *Session) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Err returns the error that stopped the session, if any.
func (s *Session) Err() error { return s.err }

// ---- path seeding ----

// SetPath positions the session at a canonical path without feeding tokens.
// Every segment start becomes an open scope and every array marker an open
// array.
func (s *Session) SetPath(path string) *Session {
	s.path.reset(path)
	s.arrayIndex = s.arrayIndex[:0]
	for i := 0; i < len(path); i++ {
		if path[i] != '/' {
			continue
		}
		s.path.scopes = append(s.path.scopes, i)
		if strings.HasPrefix(path[i+1:], ArrayMarker) && (i+2 == len(path) || path[i+2] == '/') {
			s.arrayIndex = append(s.arrayIndex, -1)
		}
	}
	return s
}

// WithObj replaces the base context.
func (s *Session) WithObj(root any) *Session {
	s.objs.release(0)
	s.objs.push(root)
	return s
}

// UpdateCallbacks resolves the current path against the schema.
func (s *Session) UpdateCallbacks() *Session {
	s.updateCallbacks(nil, 0)
	return s
}

// ---- structural events ----

// MapStart handles '{'.
func (s *Session) MapStart() error {
	s.startValue()
	s.path.pushScope()
	if h := s.opt.Hooks.MapStart; h != nil {
		return h(s)
	}
	return nil
}

// MapKey handles an object key.
func (s *Session) MapKey(key string) error {
	s.path.truncate()
	s.path.appendKey(key)
	if h := s.opt.Hooks.MapKey; h != nil {
		if err := h(s, key); err != nil {
			return err
		}
	}
	s.updateCallbacks(nil, 0)
	return nil
}

// MapEnd handles '}'.
func (s *Session) MapEnd() error {
	s.path.popScope()
	if h := s.opt.Hooks.MapEnd; h != nil {
		if err := h(s); err != nil {
			return err
		}
	}
	s.updateCallbacks(nil, 0)
	return nil
}

// ArrayStart handles '['.
func (s *Session) ArrayStart() error {
	s.startValue()
	s.path.pushScope()
	s.path.appendMarker()
	s.arrayIndex = append(s.arrayIndex, -1)
	if h := s.opt.Hooks.ArrayStart; h != nil {
		if err := h(s); err != nil {
			return err
		}
	}
	s.updateCallbacks(nil, 0)
	return nil
}

// ArrayEnd handles ']'.
func (s *Session) ArrayEnd() error {
	s.path.popScope()
	if n := len(s.arrayIndex); n > 0 {
		s.arrayIndex = s.arrayIndex[:n-1]
	}
	if h := s.opt.Hooks.ArrayEnd; h != nil {
		if err := h(s); err != nil {
			return err
		}
	}
	s.updateCallbacks(nil, 0)
	return nil
}

// startValue advances the enclosing array index when the next value is an
// array element.
func (s *Session) startValue() {
	if n := len(s.arrayIndex); n > 0 && s.path.inArray() {
		s.arrayIndex[n-1]++
	}
}

// ---- scalar events ----

// Null handles a null value.
func (s *Session) Null() error {
	s.startValue()
	if s.active.h.Null != nil {
		return s.active.h.Null(s)
	}
	return s.handleUnused()
}

// Bool handles a boolean value.
func (s *Session) Bool(v bool) error {
	s.startValue()
	if s.active.h.Bool != nil {
		return s.active.h.Bool(s, v)
	}
	return s.handleUnused()
}

// Int handles an integral number.
func (s *Session) Int(v int64) error {
	s.startValue()
	if s.active.h.Int != nil {
		return s.active.h.Int(s, v)
	}
	return s.handleUnused()
}

// Float handles a non-integral number.
func (s *Session) Float(v float64) error {
	s.startValue()
	if s.active.h.Float != nil {
		return s.active.h.Float(s, v)
	}
	return s.handleUnused()
}

// String handles a string value.
func (s *Session) String(v string) error {
	s.startValue()
	if s.active.h.String != nil {
		return s.active.h.String(s, v)
	}
	return s.handleUnused()
}

// Number dispatches number text to Int when it fits an int64, else to Float.
func (s *Session) Number(text string) error {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return s.Int(i)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("invalid number %q: %w", text, err)
	}
	return s.Float(f)
}

// ---- token feeding ----

// Feed dispatches one token. Once a token fails, the session is stopped and
// every later call returns the same error.
func (s *Session) Feed(tok Token) error {
	if s.err != nil {
		return s.err
	}
	if tok.Offset >= 0 {
		s.offset = tok.Offset
	}
	var err error
	switch tok.Kind {
	case TokenBeginObject:
		err = s.MapStart()
	case TokenKey:
		err = s.MapKey(tok.String)
	case TokenEndObject:
		err = s.MapEnd()
	case TokenBeginArray:
		err = s.ArrayStart()
	case TokenEndArray:
		err = s.ArrayEnd()
	case TokenString:
		err = s.String(tok.String)
	case TokenNumber:
		err = s.Number(tok.Number)
	case TokenBool:
		err = s.Bool(tok.Bool)
	case TokenNull:
		err = s.Null()
	default:
		err = fmt.Errorf("unknown token kind %d", tok.Kind)
	}
	if err != nil {
		s.fail(err)
	}
	return s.err
}

// fail records err as the terminal error of the session.
func (s *Session) fail(err error) {
	if iss, ok := err.(Issues); ok {
		s.err = iss
		return
	}
	s.err = Issues{s.issueAt(CodeAborted, err.Error(), err)}
}

func (s *Session) issueAt(code, msg string, cause error) Issue {
	return Issue{
		Path:    s.Pointer(),
		Code:    code,
		Message: msg,
		Source:  s.opt.Source,
		Line:    s.LineNumber(),
		Offset:  s.offset,
		Cause:   cause,
	}
}

// ---- diagnostics ----

func (s *Session) report(level Level, msg string) {
	if s.opt.Reporter != nil {
		s.opt.Reporter(s, level, msg)
		return
	}
	logger := s.opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), level.slog(), msg,
		slog.String("source", s.opt.Source),
		slog.Int("line", s.LineNumber()),
		slog.String("path", s.Path()))
}

// warnIssue records a non-fatal enforcement issue.
func (s *Session) warnIssue(it Issue) {
	it.Source = s.opt.Source
	it.Path = ToPointer(it.Path, s.arrayIndex)
	it.Line = s.LineNumber()
	if it.Offset >= 0 {
		it.Line = s.lines.lineAt(it.Offset)
	}
	s.issues = AppendIssues(s.issues, it)
	s.report(LevelWarning, fmt.Sprintf("%s:line %d", s.opt.Source, it.Line))
	s.report(LevelWarning, fmt.Sprintf("  %s -- %s", it.Message, it.Path))
}
