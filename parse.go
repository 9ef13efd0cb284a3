package jsonbind

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/reoring/jsonbind/i18n"
	eng "github.com/reoring/jsonbind/internal/engine"
)

// ParseFrom binds one complete document read from src to nodes and returns
// the finished session. The error is non-nil when the input is malformed or a
// callback aborted; schema mismatches are only reported as warnings and are
// available from Session.Issues.
func ParseFrom(ctx context.Context, nodes []*Node, root any, src Source, opts ...ParseOpt) (*Session, error) {
	s := NewSession(nodes, root, opts...)
	return s, s.parseDocument(ctx, src)
}

// Unmarshal binds data to nodes with root as the base context.
func Unmarshal(data []byte, nodes []*Node, root any, opts ...ParseOpt) error {
	s := NewSession(nodes, root, opts...)
	return s.ParseBytes(context.Background(), data)
}

// ParseBytes feeds a complete document and finishes the session.
func (s *Session) ParseBytes(ctx context.Context, data []byte) error {
	return s.parseDocument(ctx, JSONBytes(data))
}

// ParseReader feeds a complete document read from r and finishes the session.
func (s *Session) ParseReader(ctx context.Context, r io.Reader) error {
	return s.parseDocument(ctx, JSONReader(r))
}

// parseDocument feeds src as one whole document. Sources built by JSONBytes
// and JSONReader also drive the session's line numbers.
func (s *Session) parseDocument(ctx context.Context, src Source) error {
	if ls, ok := src.(*linedSource); ok {
		ls.attach(&s.lines)
	}
	src = EnforceSourceIfNeeded(src, s.opt, s.warnIssue)
	if err := s.Parse(ctx, src); err != nil {
		return err
	}
	return s.Complete()
}

// Parse feeds every token of src to the session. It returns nil at the end
// of the source without checking that the document is complete, so a
// document may be fed from several sources; call Complete after the last one.
func (s *Session) Parse(ctx context.Context, src Source) error {
	if s.err != nil {
		return s.err
	}
	s.ctx = ctx
	defer func() { s.ctx = nil }()
	for n := 0; ; n++ {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				s.fail(err)
				return s.err
			}
		}
		tok, err := src.NextToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if off := src.Location(); off >= 0 {
				s.offset = off
			}
			return s.invalid(err)
		}
		if err := s.Feed(tok); err != nil {
			return err
		}
	}
}

// Complete finishes the document. It fails when scopes are still open.
func (s *Session) Complete() error {
	if s.err != nil {
		return s.err
	}
	if s.path.depth() == 0 {
		return nil
	}
	msg := i18n.T(i18n.PrematureEOF, nil)
	it := s.issueAt(CodePrematureEOF, msg, io.ErrUnexpectedEOF)
	s.issues = AppendIssues(s.issues, it)
	s.report(LevelError, fmt.Sprintf("error:%s:%s -- %s", s.opt.Source, i18n.T(i18n.InvalidJSON, nil), msg))
	s.err = Issues{it}
	return s.err
}

// invalid turns a tokenizer or enforcement error into the terminal error of
// the session and reports it once.
func (s *Session) invalid(err error) error {
	code, msg := CodeParseError, err.Error()
	path := ""
	var se *SyntaxError
	var ie eng.IssueError
	switch {
	case errors.As(err, &se):
		if se.Offset >= 0 {
			s.offset = se.Offset
		}
	case errors.As(err, &ie):
		code, msg, path = ie.Code, ie.Message, ie.Path
	}
	it := s.issueAt(code, msg, err)
	if path != "" {
		it.Path = ToPointer(path, s.arrayIndex)
	}
	s.issues = AppendIssues(s.issues, it)
	s.report(LevelError, fmt.Sprintf("error:%s:%d:%s -- %s", s.opt.Source, it.Line, i18n.T(i18n.InvalidJSON, nil), msg))
	s.err = Issues{it}
	return s.err
}
