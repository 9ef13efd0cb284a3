package jsonbind

import "log/slog"

// UnusedPolicy controls what happens when a scalar arrives at a path no
// schema leaf accepts.
type UnusedPolicy int

const (
	UnusedWarn   UnusedPolicy = iota // Report a warning and continue.
	UnusedIgnore                     // Drop the value silently.
	UnusedAbort                      // Report and stop the parse.
)

// Severity expresses the severity level for enforcement issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Level is the level of a diagnostic line handed to a Reporter.
type Level int

const (
	LevelWarning Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

func (l Level) slog() slog.Level {
	if l == LevelError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Reporter receives diagnostic lines. Warnings for one value arrive as
// several consecutive calls, one per line.
type Reporter func(s *Session, level Level, msg string)

// Hooks are optional structural callbacks invoked before the session
// resolves the new position. A non-nil error aborts the parse.
type Hooks struct {
	MapStart   func(s *Session) error
	MapKey     func(s *Session, key string) error
	MapEnd     func(s *Session) error
	ArrayStart func(s *Session) error
	ArrayEnd   func(s *Session) error
}

// ParseOpt bundles parsing options.
type ParseOpt struct {
	// Source names the document in diagnostics.
	Source string
	Unused UnusedPolicy
	// ActivePaths restricts resolution to these canonical paths when non-empty.
	ActivePaths []string

	OnDuplicateKey Severity
	MaxDepth       int
	MaxBytes       int64
	FailFast       bool

	Hooks    Hooks
	Reporter Reporter
	// Logger backs the default Reporter; slog.Default() when nil.
	Logger *slog.Logger
}
