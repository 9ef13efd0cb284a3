package jsonbind

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a compiled node pattern. Unless it starts with the anchor marker
// '^', the pattern is matched right after an implicit '/' delimiter.
type Pattern struct {
	src      string
	re       *regexp.Regexp
	anchored bool
}

// CompilePattern compiles a node pattern.
func CompilePattern(src string) (*Pattern, error) {
	if src == "" {
		return nil, fmt.Errorf("jsonbind: empty pattern")
	}
	p := &Pattern{src: src}
	expr := `^/(?:` + src + `)`
	if src[0] == anchorMarker {
		p.anchored = true
		expr = `^(?:` + src[1:] + `)`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("jsonbind: pattern %q: %w", src, err)
	}
	p.re = re
	return p, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(src string) *Pattern {
	p, err := CompilePattern(src)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) String() string { return p.src }

// Match matches the pattern at the start of input, which is a canonical path
// suffix. It returns the captures and the end offset of the match.
func (p *Pattern) Match(input string) (Captures, int, bool) {
	loc := p.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return Captures{}, 0, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = input[loc[2*i]:loc[2*i+1]]
		}
	}
	return Captures{groups: groups, names: p.re.SubexpNames(), Index: -1}, loc[1], true
}

// Literal returns the concrete segment text the pattern stands for when it is
// used to generate paths: the anchor marker and leading delimiter are dropped
// and regexp escapes are resolved when the pattern is a plain literal.
func (p *Pattern) Literal() string {
	lit, _ := p.literal()
	return lit
}

// IsLiteral reports whether the pattern matches exactly one segment text.
func (p *Pattern) IsLiteral() bool {
	_, ok := p.literal()
	return ok
}

func (p *Pattern) literal() (string, bool) {
	body := p.src
	if p.anchored {
		body = strings.TrimPrefix(body[1:], "/")
	}
	if re, err := regexp.Compile(body); err == nil {
		if prefix, complete := re.LiteralPrefix(); complete {
			return prefix, true
		}
	}
	return body, false
}

// MatchSingle matches n's pattern against one concrete segment (escaped, as
// produced by a PathProvider or by Pattern.Literal). The whole segment must
// be consumed.
func MatchSingle(n *Node, segment string) (Captures, bool) {
	input := "/" + segment
	caps, end, ok := n.pattern().Match(input)
	if !ok || end != len(input) {
		return Captures{}, false
	}
	return caps, true
}

// Captures holds the groups of a pattern match. Group 0 is the whole match.
// Values are returned unescaped.
type Captures struct {
	groups []string
	names  []string
	// Index is the running index of the innermost enclosing array. It is -1
	// outside arrays and while an array is open but none of its elements has
	// started yet.
	Index int
}

// Len returns the number of groups including group 0.
func (c Captures) Len() int { return len(c.groups) }

// At returns group i, or "" when absent.
func (c Captures) At(i int) string {
	if i < 0 || i >= len(c.groups) {
		return ""
	}
	return UnescapeSegment(c.groups[i])
}

// Raw returns group i in its escaped canonical form.
func (c Captures) Raw(i int) string {
	if i < 0 || i >= len(c.groups) {
		return ""
	}
	return c.groups[i]
}

// Named returns the group with the given name.
func (c Captures) Named(name string) (string, bool) {
	for i, n := range c.names {
		if n == name && i < len(c.groups) {
			return UnescapeSegment(c.groups[i]), true
		}
	}
	return "", false
}

// Segment returns the whole match without its leading delimiter, unescaped.
func (c Captures) Segment() string {
	if len(c.groups) == 0 {
		return ""
	}
	return UnescapeSegment(strings.TrimPrefix(c.groups[0], "/"))
}
