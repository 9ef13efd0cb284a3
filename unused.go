package jsonbind

import (
	"fmt"

	"github.com/reoring/jsonbind/i18n"
)

// handleUnused is the fallback for a scalar no active handler accepts. It
// records an Issue and reports a multi-line warning naming the path, the
// types the matched leaf accepts and, when no leaf matched, the patterns of
// the last node list scanned.
func (s *Session) handleUnused() error {
	if s.active.muted || s.opt.Unused == UnusedIgnore {
		return nil
	}
	level := LevelWarning
	if s.opt.Unused == UnusedAbort {
		level = LevelError
	}

	path := s.Path()
	n := s.current
	var it Issue
	var lines []string
	lines = append(lines, fmt.Sprintf("%s:line %d", s.opt.Source, s.LineNumber()))
	switch {
	case n != nil && n.Synopsis != "" && n.Description != "":
		it = s.issueAt(CodeUnexpectedData, i18n.T(i18n.UnexpectedData, map[string]string{"path": path}), nil)
		lines = append(lines,
			"  "+it.Message,
			fmt.Sprintf("    %s %s -- %s", path, n.Synopsis, n.Description))
	case path != "":
		it = s.issueAt(CodeUnexpectedPath, i18n.T(i18n.UnexpectedPath, map[string]string{"path": path}), nil)
		lines = append(lines, "  "+it.Message, "    "+path)
	default:
		it = s.issueAt(CodeUnexpectedPath, i18n.T(i18n.UnexpectedValue, nil), nil)
		lines = append(lines, "  "+it.Message)
	}

	if kinds := expectedKinds(s.active.h); len(kinds) > 0 {
		lines = append(lines, "  "+i18n.T(i18n.ExpectingTypes, nil))
		for _, k := range kinds {
			lines = append(lines, "    "+k.String())
		}
	}
	accepted := s.siblings
	if accepted == nil {
		accepted = s.nodes
	}
	if n == nil && len(accepted) > 0 {
		lines = append(lines, "  "+i18n.T(i18n.AcceptedPaths, nil))
		for _, sib := range accepted {
			if sib.isSentinel() {
				break
			}
			lines = append(lines, fmt.Sprintf("    %s %s -- %s", sib.Pattern, sib.Synopsis, sib.Description))
		}
	}

	s.issues = AppendIssues(s.issues, it)
	for _, l := range lines {
		s.report(level, l)
	}
	if s.opt.Unused == UnusedAbort {
		return Issues{it}
	}
	return nil
}

// expectedKinds lists the value kinds worth citing. A null handler alone is
// not an accepted data type.
func expectedKinds(h Handlers) []ScalarKind {
	var out []ScalarKind
	for _, k := range h.Kinds() {
		if k != KindNull {
			out = append(out, k)
		}
	}
	return out
}

// Reject reports a value the current leaf accepted by type but cannot store.
// The value is dropped and parsing continues.
func (s *Session) Reject(msg string) {
	if s.opt.Unused == UnusedIgnore {
		return
	}
	it := s.issueAt(CodeUnexpectedData, msg, nil)
	s.issues = AppendIssues(s.issues, it)
	s.report(LevelWarning, fmt.Sprintf("%s:line %d", s.opt.Source, it.Line))
	s.report(LevelWarning, fmt.Sprintf("  %s -- %s", msg, s.Path()))
}
