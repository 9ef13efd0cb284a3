package jsonbind

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeParseError     = "parse_error"
	CodePrematureEOF   = "premature_eof"
	CodeTruncated      = "truncated"
	CodeDuplicateKey   = "duplicate_key"
	CodeUnexpectedPath = "unexpected_path"
	CodeUnexpectedData = "unexpected_data"
	CodeAborted        = "aborted"
	CodeInvalidFormat  = "invalid_format"
)

// ErrAbort can be returned by a callback to stop the parse without any
// further diagnostics.
var ErrAbort = errors.New("jsonbind: parse aborted by callback")

// Issue represents a single diagnostic produced while binding a document.
type Issue struct {
	Path    string // JSON Pointer with array indices (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Source  string // Source name supplied via ParseOpt.
	Line    int    // 1-based line number (0 when unknown).
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	Cause   error  // Optional: underlying error.
}

func (it Issue) String() string {
	if it.Path == "" {
		return it.Code
	}
	return it.Code + " at " + it.Path
}

// Issues is a collection of diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
		if iss[i].Message != "" {
			fmt.Fprintf(b, ": %s", iss[i].Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is can see callback errors such as
// ErrAbort.
func (iss Issues) Unwrap() []error {
	var errs []error
	for _, it := range iss {
		if it.Cause != nil {
			errs = append(errs, it.Cause)
		}
	}
	return errs
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
