package schemadoc

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	jsonbind "github.com/reoring/jsonbind"
	"github.com/reoring/jsonbind/codec"
)

// Record is the binding target of a schema. Values are string, int64,
// float64, bool, time.Time, nil, []any of those for list fields, or nested
// Records for branches.
type Record map[string]any

// Nodes builds the jsonbind tree for s. The context of every node is a
// Record. Nodes only produce paths present in the Record they run on, so
// generation and walks skip absent fields.
func (s *Schema) Nodes() []*jsonbind.Node { return buildNodes(s.Fields) }

// Parse binds the document read from r into a new Record.
func (s *Schema) Parse(ctx context.Context, r io.Reader, opt jsonbind.ParseOpt) (Record, *jsonbind.Session, error) {
	rec := Record{}
	sess := jsonbind.NewSession(s.Nodes(), rec, opt)
	err := sess.ParseReader(ctx, r)
	return rec, sess, err
}

// Generate writes rec in schema order.
func (s *Schema) Generate(w jsonbind.Writer, rec Record) error {
	return jsonbind.Generate(w, s.Nodes(), rec)
}

// Paths lists the concrete paths of rec the schema binds, leaves and
// dynamic containers alike, in schema order.
func (s *Schema) Paths(rec Record) []string {
	var out []string
	seen := map[string]bool{}
	jsonbind.Walk(s.Nodes(), rec, func(_ *jsonbind.Node, path string, _ any) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	})
	return out
}

func buildNodes(fields []Field) []*jsonbind.Node {
	out := make([]*jsonbind.Node, 0, len(fields))
	for _, f := range fields {
		// Keys claimed by an earlier sibling never reach this one while
		// parsing, so generation must not produce them here either.
		earlier := append([]*jsonbind.Node(nil), out...)
		if len(f.Fields) > 0 {
			out = append(out, branchNode(f, earlier))
		} else {
			out = append(out, leafNode(f, earlier))
		}
	}
	return out
}

func branchNode(f Field, earlier []*jsonbind.Node) *jsonbind.Node {
	n := jsonbind.Branch(f.Pattern, buildNodes(f.Fields)...).WithSynopsis(f.Synopsis, f.Description)
	lit, parts, literal := literalParts(f.Pattern)
	if literal {
		n.ObjectProvider = func(_ jsonbind.Captures, parent any) any { return descend(parent, parts) }
		n.PathProvider = func(ctx any) []string {
			if _, ok := lookup(ctx, parts).(Record); ok {
				return []string{lit}
			}
			return nil
		}
		return n
	}
	n.ObjectProvider = func(c jsonbind.Captures, parent any) any {
		return descend(parent, []string{c.Segment()})
	}
	n.PathProvider = func(ctx any) []string {
		return matchingKeys(n, earlier, ctx, func(v any) bool { _, ok := v.(Record); return ok })
	}
	return n
}

func leafNode(f Field, earlier []*jsonbind.Node) *jsonbind.Node {
	pattern := f.Pattern
	if f.List {
		pattern += "/" + jsonbind.ArrayMarker
	}
	lit, parts, literal := literalParts(f.Pattern)

	// slot returns the record and key a value is stored under.
	slot := func(ctx any, key string) (Record, string, error) {
		if literal {
			rec, ok := descend(ctx, parts[:len(parts)-1]).(Record)
			if !ok {
				return nil, "", fmt.Errorf("schemadoc: context is %T under %s", ctx, f.Pattern)
			}
			return rec, parts[len(parts)-1], nil
		}
		rec, ok := ctx.(Record)
		if !ok {
			return nil, "", fmt.Errorf("schemadoc: context is %T under %s", ctx, f.Pattern)
		}
		return rec, key, nil
	}
	set := func(s *jsonbind.Session, v any) error {
		rec, key, err := slot(s.Top(), s.Key())
		if err != nil {
			return err
		}
		if !f.List {
			rec[key] = v
			return nil
		}
		list, _ := rec[key].([]any)
		if s.ArrayIndex() <= 0 {
			list = list[:0]
		}
		rec[key] = append(list, v)
		return nil
	}

	n := jsonbind.Leaf(pattern, typedHandlers(f.Type, set)).WithSynopsis(f.Synopsis, f.Description)
	if literal {
		n.PathProvider = func(ctx any) []string {
			if _, ok := lookupOK(ctx, parts); ok {
				if f.List {
					return []string{lit + "/" + jsonbind.ArrayMarker}
				}
				return []string{lit}
			}
			return nil
		}
	} else {
		n.PathProvider = func(ctx any) []string {
			return matchingKeys(n, earlier, ctx, func(v any) bool {
				switch v.(type) {
				case Record, []any:
					return false
				}
				return true
			})
		}
	}
	n.FieldGetter = func(ctx any, seg string) any {
		if literal {
			return lookup(ctx, parts)
		}
		return lookup(ctx, []string{jsonbind.UnescapeSegment(seg)})
	}
	n.Emit = func(g *jsonbind.GenSession, w jsonbind.Writer, _ *jsonbind.Node) error {
		rec, key, err := slot(g.Top(), g.Key())
		if err != nil {
			return err
		}
		v := rec[key]
		if !f.List {
			return writeValue(w, v)
		}
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("schemadoc: %s holds %T, want a list", f.Pattern, v)
		}
		for _, e := range list {
			if err := writeValue(w, e); err != nil {
				return err
			}
		}
		return nil
	}
	return n
}

func typedHandlers(typ string, set func(*jsonbind.Session, any) error) jsonbind.Handlers {
	h := jsonbind.Handlers{Null: func(s *jsonbind.Session) error { return set(s, nil) }}
	switch typ {
	case TypeString:
		h.String = func(s *jsonbind.Session, v string) error { return set(s, v) }
	case TypeInteger:
		h.Int = func(s *jsonbind.Session, v int64) error { return set(s, v) }
	case TypeNumber:
		h.Int = func(s *jsonbind.Session, v int64) error { return set(s, float64(v)) }
		h.Float = func(s *jsonbind.Session, v float64) error { return set(s, v) }
	case TypeBoolean:
		h.Bool = func(s *jsonbind.Session, v bool) error { return set(s, v) }
	case TypeRFC3339:
		c := codec.TimeRFC3339()
		h.String = func(s *jsonbind.Session, v string) error {
			t, err := c.Decode(s.Context(), v)
			if err != nil {
				s.Reject(fmt.Sprintf("%q is not an RFC 3339 time", v))
				return nil
			}
			return set(s, t)
		}
	}
	return h
}

func writeValue(w jsonbind.Writer, v any) error {
	switch t := v.(type) {
	case nil:
		return w.WriteNull()
	case string:
		return w.WriteString(t)
	case int64:
		return w.WriteInt(t)
	case float64:
		return w.WriteFloat(t)
	case bool:
		return w.WriteBool(t)
	case time.Time:
		text, err := codec.TimeRFC3339().Encode(context.Background(), t)
		if err != nil {
			return err
		}
		return w.WriteString(text)
	}
	return fmt.Errorf("schemadoc: cannot write %T", v)
}

// literalParts splits a literal pattern into unescaped keys. lit is the
// escaped segment text.
func literalParts(pattern string) (lit string, parts []string, ok bool) {
	p := jsonbind.MustCompilePattern(pattern)
	if !p.IsLiteral() {
		return "", nil, false
	}
	lit = p.Literal()
	for _, seg := range strings.Split(lit, "/") {
		parts = append(parts, jsonbind.UnescapeSegment(seg))
	}
	return lit, parts, true
}

// descend returns the Record at parts below ctx, creating missing levels.
func descend(ctx any, parts []string) any {
	rec, ok := ctx.(Record)
	if !ok {
		return nil
	}
	for _, p := range parts {
		child, ok := rec[p].(Record)
		if !ok {
			child = Record{}
			rec[p] = child
		}
		rec = child
	}
	return rec
}

func lookupOK(ctx any, parts []string) (any, bool) {
	var cur any = ctx
	for _, p := range parts {
		rec, ok := cur.(Record)
		if !ok {
			return nil, false
		}
		if cur, ok = rec[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func lookup(ctx any, parts []string) any {
	v, _ := lookupOK(ctx, parts)
	return v
}

// matchingKeys lists the escaped keys of ctx that n matches, that keep
// accepts and that no earlier sibling claims, sorted.
func matchingKeys(n *jsonbind.Node, earlier []*jsonbind.Node, ctx any, keep func(any) bool) []string {
	rec, ok := ctx.(Record)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
next:
	for _, k := range keys {
		seg := jsonbind.EscapeKey(k)
		if !keep(rec[k]) {
			continue
		}
		if _, ok := jsonbind.MatchSingle(n, seg); !ok {
			continue
		}
		for _, e := range earlier {
			if _, ok := jsonbind.MatchSingle(e, seg); ok {
				continue next
			}
		}
		out = append(out, seg)
	}
	return out
}
