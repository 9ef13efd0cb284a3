package jsonbind_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	jsonbind "github.com/reoring/jsonbind"
)

// recorder collects reporter output.
type recorder struct {
	lines  []string
	levels []jsonbind.Level
}

func (r *recorder) report(_ *jsonbind.Session, level jsonbind.Level, msg string) {
	r.lines = append(r.lines, msg)
	r.levels = append(r.levels, level)
}

func (r *recorder) text() string { return strings.Join(r.lines, "\n") }

func stringsInto(dst *[]string) jsonbind.Handlers {
	return jsonbind.Handlers{String: func(_ *jsonbind.Session, v string) error {
		*dst = append(*dst, v)
		return nil
	}}
}

func nameAndTags(names, tags *[]string) []*jsonbind.Node {
	return []*jsonbind.Node{
		jsonbind.Leaf("name", stringsInto(names)),
		jsonbind.Branch("tags", jsonbind.Leaf("#", stringsInto(tags))),
	}
}

func TestSession_ArrayOfStrings(t *testing.T) {
	var names, tags []string
	rec := &recorder{}
	err := jsonbind.Unmarshal([]byte(`{"name":"x","tags":["a","b"]}`), nameAndTags(&names, &tags), nil,
		jsonbind.ParseOpt{Source: "doc.json", Reporter: rec.report})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "x" {
		t.Fatalf("name callback: %v", names)
	}
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("tags callback: %v", tags)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", rec.text())
	}
}

func TestSession_UnexpectedTypeCitesAcceptedTypes(t *testing.T) {
	var names, tags []string
	rec := &recorder{}
	s := jsonbind.NewSession(nameAndTags(&names, &tags), nil, jsonbind.ParseOpt{Source: "doc.json", Reporter: rec.report})
	if err := s.ParseBytes(context.Background(), []byte(`{"name":42}`)); err != nil {
		t.Fatalf("schema mismatches must not fail the parse: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("name callback must not run, got %v", names)
	}
	want := []string{
		"doc.json:line 1",
		"  unexpected path --",
		"    /name",
		"  expecting one of the following data types --",
		"    string",
	}
	if got := rec.text(); got != strings.Join(want, "\n") {
		t.Fatalf("diagnostics:\n%s", got)
	}
	for _, l := range rec.levels {
		if l != jsonbind.LevelWarning {
			t.Fatalf("expected warnings only, got %v", rec.levels)
		}
	}
	iss := s.Issues()
	if len(iss) != 1 || iss[0].Code != jsonbind.CodeUnexpectedPath || iss[0].Path != "/name" {
		t.Fatalf("issues: %v", iss)
	}
}

func TestSession_ObjectProviderCaptures(t *testing.T) {
	type item struct {
		id    string
		value int64
	}
	root := map[string]*item{}
	var gotParent any
	var provided []string
	nodes := []*jsonbind.Node{
		jsonbind.Branch(`item(\d+)`,
			jsonbind.Leaf("value", jsonbind.Handlers{Int: func(s *jsonbind.Session, v int64) error {
				gotParent = s.Top()
				s.Top().(*item).value = v
				return nil
			}}),
		).WithObjectProvider(func(c jsonbind.Captures, parent any) any {
			m := parent.(map[string]*item)
			id := c.At(1)
			provided = append(provided, id)
			if it, ok := m[id]; ok {
				return it
			}
			it := &item{id: id}
			m[id] = it
			return it
		}),
	}
	if err := jsonbind.Unmarshal([]byte(`{"item1":{"value":5}}`), nodes, root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provided) == 0 || provided[0] != "1" {
		t.Fatalf("provider captures: %v", provided)
	}
	it := root["1"]
	if it == nil || it.value != 5 {
		t.Fatalf("value not bound: %+v", root)
	}
	if gotParent != any(it) {
		t.Fatalf("leaf context %v is not the provider's object %v", gotParent, it)
	}
}

func TestSession_TruncatedInputReportsOnce(t *testing.T) {
	var names, tags []string
	rec := &recorder{}
	s := jsonbind.NewSession(nameAndTags(&names, &tags), nil, jsonbind.ParseOpt{Source: "doc.json", Reporter: rec.report})
	err := s.ParseBytes(context.Background(), []byte(`{"name":`))
	if err == nil {
		t.Fatalf("expected failure for truncated input")
	}
	if len(rec.lines) != 1 || rec.levels[0] != jsonbind.LevelError {
		t.Fatalf("expected exactly one error message, got:\n%s", rec.text())
	}
	if !strings.HasPrefix(rec.lines[0], "error:doc.json:") || !strings.Contains(rec.lines[0], "invalid json") {
		t.Fatalf("unexpected error line: %q", rec.lines[0])
	}
	if len(names) != 0 {
		t.Fatalf("no callback may fire, got %v", names)
	}
	// the session stays stopped
	if err2 := s.Feed(jsonbind.Token{Kind: jsonbind.TokenString, String: "late", Offset: -1}); err2 == nil || len(names) != 0 {
		t.Fatalf("feeding after failure must be rejected")
	}
}

func TestSession_SyntaxErrorLine(t *testing.T) {
	rec := &recorder{}
	s := jsonbind.NewSession(nil, nil, jsonbind.ParseOpt{Source: "bad.json", Reporter: rec.report})
	err := s.ParseBytes(context.Background(), []byte("{\n\"a\": 1\n}\n]"))
	if err == nil {
		t.Fatalf("expected syntax error")
	}
	iss, ok := jsonbind.AsIssues(err)
	if !ok || iss[0].Code != jsonbind.CodeParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
	if len(rec.lines) != 1 || !strings.HasPrefix(rec.lines[0], "error:bad.json:4:invalid json -- ") {
		t.Fatalf("unexpected report:\n%s", rec.text())
	}
}

func TestSession_EscapedKeysNeverAlias(t *testing.T) {
	var got []string
	nodes := []*jsonbind.Node{
		jsonbind.Leaf(`a~1b`, stringsInto(&got)),
		jsonbind.Leaf(`#`, stringsInto(&got)),
	}
	s := jsonbind.NewSession(nodes, nil, jsonbind.ParseOpt{Reporter: func(*jsonbind.Session, jsonbind.Level, string) {}})
	if err := s.ParseBytes(context.Background(), []byte(`{"a/b":"slash","a~1b":"tilde","#":"hash"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "slash" {
		t.Fatalf("only the key a/b may match, got %v", got)
	}
	iss := s.Issues()
	if len(iss) != 2 || iss[0].Path != "/a~01b" || iss[1].Path != "/#" {
		t.Fatalf("issues: %v", iss)
	}
}

func TestSession_PathIndependentOfArrayLength(t *testing.T) {
	var paths []string
	nodes := []*jsonbind.Node{
		jsonbind.Leaf(`rows/#/#`, jsonbind.Handlers{Int: func(s *jsonbind.Session, _ int64) error {
			paths = append(paths, s.Path())
			return nil
		}}),
	}
	if err := jsonbind.Unmarshal([]byte(`{"rows":[[1,2],[3],[4,5,6]]}`), nodes, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 6 {
		t.Fatalf("expected 6 values, got %v", paths)
	}
	for _, p := range paths {
		if p != "/rows/#/#" {
			t.Fatalf("unexpected path %q", p)
		}
	}
}

func TestSession_FirstMatchWins(t *testing.T) {
	var first, second []string
	nodes := []*jsonbind.Node{
		jsonbind.Leaf(`a|b`, stringsInto(&first)),
		jsonbind.Leaf(`[a-z]`, stringsInto(&second)),
	}
	if err := jsonbind.Unmarshal([]byte(`{"a":"1","b":"2","c":"3"}`), nodes, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(first, ",") != "1,2" || strings.Join(second, ",") != "3" {
		t.Fatalf("first=%v second=%v", first, second)
	}
}

func TestSession_BranchMustEndOnSegment(t *testing.T) {
	var got []string
	nodes := []*jsonbind.Node{
		jsonbind.Branch(`ab`, jsonbind.Leaf("x", stringsInto(&got))),
	}
	s := jsonbind.NewSession(nodes, nil, jsonbind.ParseOpt{Reporter: func(*jsonbind.Session, jsonbind.Level, string) {}})
	if err := s.ParseBytes(context.Background(), []byte(`{"abc":{"x":"no"},"ab":{"x":"yes"}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "yes" {
		t.Fatalf("prefix branch claimed a longer key: %v", got)
	}
}

func TestSession_ActivePathsRestrictResolution(t *testing.T) {
	var b, c []string
	providerCalls := 0
	rec := &recorder{}
	nodes := []*jsonbind.Node{
		jsonbind.Branch("a",
			jsonbind.Leaf("b", stringsInto(&b)),
			jsonbind.Leaf("c", stringsInto(&c)),
		).WithObjectProvider(func(_ jsonbind.Captures, parent any) any {
			providerCalls++
			return parent
		}),
	}
	err := jsonbind.Unmarshal([]byte(`{"a":{"b":"x","c":"y"}}`), nodes, nil,
		jsonbind.ParseOpt{ActivePaths: []string{"/a/b"}, Reporter: rec.report})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != 1 || len(c) != 0 {
		t.Fatalf("b=%v c=%v", b, c)
	}
	if providerCalls != 1 {
		t.Fatalf("provider may only run for /a/b, ran %d times", providerCalls)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("inactive paths are silent, got:\n%s", rec.text())
	}
}

func TestSession_ArrayIndexIsolation(t *testing.T) {
	type item struct{ value int64 }
	type inventory struct{ items []*item }
	inv := &inventory{}
	var mismatches []string
	nodes := []*jsonbind.Node{
		jsonbind.Branch("items",
			jsonbind.Branch("#",
				jsonbind.Leaf("value", jsonbind.Handlers{Int: func(s *jsonbind.Session, v int64) error {
					it := s.Top().(*item)
					if it != inv.items[s.ArrayIndex()] {
						mismatches = append(mismatches, s.Pointer())
					}
					it.value = v
					return nil
				}}),
			).WithObjectProvider(func(c jsonbind.Captures, parent any) any {
				if c.Index < 0 {
					return nil
				}
				in := parent.(*inventory)
				for len(in.items) <= c.Index {
					in.items = append(in.items, &item{})
				}
				return in.items[c.Index]
			}),
		),
	}
	data := `{"items":[{"value":1},{"value":2},{"value":3}]}`
	if err := jsonbind.Unmarshal([]byte(data), nodes, inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("stale context at %v", mismatches)
	}
	if len(inv.items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(inv.items))
	}
	for i, it := range inv.items {
		if it.value != int64(i+1) {
			t.Fatalf("item %d = %d", i, it.value)
		}
	}
}

func TestSession_NumbersDispatchByKind(t *testing.T) {
	var ints []int64
	var floats []float64
	nodes := []*jsonbind.Node{
		jsonbind.Leaf("n/#", jsonbind.Handlers{
			Int:   func(_ *jsonbind.Session, v int64) error { ints = append(ints, v); return nil },
			Float: func(_ *jsonbind.Session, v float64) error { floats = append(floats, v); return nil },
		}),
	}
	if err := jsonbind.Unmarshal([]byte(`{"n":[1,-2,1.5,1e3,18446744073709551616]}`), nodes, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ints) != 2 || ints[0] != 1 || ints[1] != -2 {
		t.Fatalf("ints: %v", ints)
	}
	if len(floats) != 3 || floats[0] != 1.5 || floats[1] != 1000 {
		t.Fatalf("floats: %v", floats)
	}
}

func TestSession_AcceptedPathsListing(t *testing.T) {
	rec := &recorder{}
	nodes := []*jsonbind.Node{
		jsonbind.Branch("server",
			jsonbind.Leaf("port", jsonbind.Handlers{Int: func(*jsonbind.Session, int64) error { return nil }}).
				WithSynopsis("<port>", "listen port"),
			jsonbind.Leaf("host", jsonbind.Handlers{String: func(*jsonbind.Session, string) error { return nil }}).
				WithSynopsis("<host>", "bind address"),
		),
	}
	data := "{\n  \"server\": {\n    \"prot\": 80\n  }\n}\n"
	if err := jsonbind.Unmarshal([]byte(data), nodes, nil, jsonbind.ParseOpt{Source: "cfg.json", Reporter: rec.report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"cfg.json:line 3",
		"  unexpected path --",
		"    /server/prot",
		"  accepted paths --",
		"    port <port> -- listen port",
		"    host <host> -- bind address",
	}
	if got := rec.text(); got != strings.Join(want, "\n") {
		t.Fatalf("diagnostics:\n%s", got)
	}
}

func TestSession_UnexpectedDataUsesSynopsis(t *testing.T) {
	rec := &recorder{}
	nodes := []*jsonbind.Node{
		jsonbind.Leaf("port", jsonbind.Handlers{Int: func(*jsonbind.Session, int64) error { return nil }}).
			WithSynopsis("<port>", "listen port"),
	}
	if err := jsonbind.Unmarshal([]byte(`{"port":"80"}`), nodes, nil, jsonbind.ParseOpt{Source: "cfg.json", Reporter: rec.report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"cfg.json:line 1",
		"  unexpected data for path",
		"    /port <port> -- listen port",
		"  expecting one of the following data types --",
		"    integer",
	}
	if got := rec.text(); got != strings.Join(want, "\n") {
		t.Fatalf("diagnostics:\n%s", got)
	}
}

func TestSession_TopLevelScalar(t *testing.T) {
	rec := &recorder{}
	if err := jsonbind.Unmarshal([]byte(`42`), nil, nil, jsonbind.ParseOpt{Source: "v.json", Reporter: rec.report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.text(); got != "v.json:line 1\n  unexpected JSON value" {
		t.Fatalf("diagnostics:\n%s", got)
	}
}

func TestSession_UnusedPolicies(t *testing.T) {
	rec := &recorder{}
	if err := jsonbind.Unmarshal([]byte(`{"x":1}`), nil, nil, jsonbind.ParseOpt{Unused: jsonbind.UnusedIgnore, Reporter: rec.report}); err != nil {
		t.Fatalf("ignore: %v", err)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("ignore must be silent:\n%s", rec.text())
	}

	err := jsonbind.Unmarshal([]byte(`{"x":1,"y":2}`), nil, nil, jsonbind.ParseOpt{Unused: jsonbind.UnusedAbort, Reporter: rec.report})
	iss, ok := jsonbind.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != jsonbind.CodeUnexpectedPath || iss[0].Path != "/x" {
		t.Fatalf("abort: %v", err)
	}
	for _, l := range rec.levels {
		if l != jsonbind.LevelError {
			t.Fatalf("abort reports errors, got %v", rec.levels)
		}
	}
}

func TestSession_CallbackErrorStopsParse(t *testing.T) {
	stop := errors.New("stop")
	var seen []string
	nodes := []*jsonbind.Node{
		jsonbind.Leaf("a/#", jsonbind.Handlers{String: func(_ *jsonbind.Session, v string) error {
			seen = append(seen, v)
			if v == "2" {
				return stop
			}
			return nil
		}}),
	}
	err := jsonbind.Unmarshal([]byte(`{"a":["1","2","3"]}`), nodes, nil)
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	iss, _ := jsonbind.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != jsonbind.CodeAborted || iss[0].Path != "/a/1" {
		t.Fatalf("issues: %v", iss)
	}
	if strings.Join(seen, ",") != "1,2" {
		t.Fatalf("values after the abort were dispatched: %v", seen)
	}
}

func TestSession_Hooks(t *testing.T) {
	var events []string
	hooks := jsonbind.Hooks{
		MapStart:   func(s *jsonbind.Session) error { events = append(events, "{"); return nil },
		MapKey:     func(s *jsonbind.Session, k string) error { events = append(events, k+"="+s.Path()); return nil },
		MapEnd:     func(s *jsonbind.Session) error { events = append(events, "}"); return nil },
		ArrayStart: func(s *jsonbind.Session) error { events = append(events, "["); return nil },
		ArrayEnd:   func(s *jsonbind.Session) error { events = append(events, "]"); return nil },
	}
	opt := jsonbind.ParseOpt{Unused: jsonbind.UnusedIgnore, Hooks: hooks}
	if err := jsonbind.Unmarshal([]byte(`{"a":[{"b/c":1}]}`), nil, nil, opt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{ a=/a [ { b/c=/a/#/b~1c } ] }"
	if got := strings.Join(events, " "); got != want {
		t.Fatalf("events %q, want %q", got, want)
	}

	boom := errors.New("boom")
	opt.Hooks = jsonbind.Hooks{ArrayStart: func(*jsonbind.Session) error { return boom }}
	if err := jsonbind.Unmarshal([]byte(`{"a":[1]}`), nil, nil, opt); !errors.Is(err, boom) {
		t.Fatalf("hook error must stop the parse, got %v", err)
	}
}

func TestSession_FeedAndComplete(t *testing.T) {
	var names []string
	rec := &recorder{}
	s := jsonbind.NewSession([]*jsonbind.Node{jsonbind.Leaf("name", stringsInto(&names))}, nil,
		jsonbind.ParseOpt{Source: "feed", Reporter: rec.report})
	toks := []jsonbind.Token{
		{Kind: jsonbind.TokenBeginObject, Offset: -1},
		{Kind: jsonbind.TokenKey, String: "name", Offset: -1},
		{Kind: jsonbind.TokenString, String: "x", Offset: -1},
	}
	for _, tok := range toks {
		if err := s.Feed(tok); err != nil {
			t.Fatalf("feed: %v", err)
		}
	}
	if len(names) != 1 {
		t.Fatalf("value not dispatched: %v", names)
	}
	err := s.Complete()
	iss, ok := jsonbind.AsIssues(err)
	if !ok || iss[0].Code != jsonbind.CodePrematureEOF {
		t.Fatalf("expected premature EOF, got %v", err)
	}
	if rec.text() != "error:feed:invalid json -- premature EOF" {
		t.Fatalf("unexpected report: %q", rec.text())
	}
	// Complete is idempotent once failed
	if s.Complete() == nil || len(rec.lines) != 1 {
		t.Fatalf("completion error must be reported once")
	}
}

func TestSession_ParseReaderLines(t *testing.T) {
	rec := &recorder{}
	s := jsonbind.NewSession(nil, nil, jsonbind.ParseOpt{Source: "r.json", Reporter: rec.report})
	data := "{\n\"a\": 1,\n\n\"b\": 2\n}"
	if err := s.ParseReader(context.Background(), strings.NewReader(data)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iss := s.Issues()
	if len(iss) != 2 || iss[0].Line != 2 || iss[1].Line != 4 {
		t.Fatalf("lines: %+v", iss)
	}
}

func TestSession_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := jsonbind.NewSession(nil, nil)
	err := s.ParseBytes(ctx, []byte(`{}`))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSession_SetPathResolvesWithoutTokens(t *testing.T) {
	nodes := []*jsonbind.Node{
		jsonbind.Branch("a", jsonbind.Leaf(`b\d`, jsonbind.Handlers{Int: func(*jsonbind.Session, int64) error { return nil }})),
	}
	s := jsonbind.NewSession(nodes, "root")
	s.SetPath("/a/b1").UpdateCallbacks()
	if s.Current() == nil || s.Current().Pattern != `b\d` {
		t.Fatalf("expected leaf b\\d, got %v", s.Current())
	}
	if hs := s.HandlerStack(); len(hs) != 1 || hs[0].Pattern != "a" {
		t.Fatalf("handler stack: %v", hs)
	}
	if s.Key() != "b1" {
		t.Fatalf("key: %q", s.Key())
	}
	s.SetPath("/a/zz").UpdateCallbacks()
	if s.Current() != nil {
		t.Fatalf("unexpected match %v", s.Current())
	}
	if hs := s.HandlerStack(); len(hs) != 2 || hs[1] != nil {
		t.Fatalf("unmatched level must be recorded as nil: %v", hs)
	}
	if s.WithObj("other").Root() != "other" {
		t.Fatalf("WithObj must replace the base context")
	}
}

func TestSession_RejectsMisplacedSeparators(t *testing.T) {
	cases := []struct {
		in   string
		want []string // callbacks fired before the bad token
	}{
		{in: `{"a" 1}`},
		{in: `{"a":1,,"b":2}`, want: []string{"a=1"}},
		{in: `[1 2]`, want: []string{"#=1"}},
	}
	for _, c := range cases {
		var got []string
		record := func(s *jsonbind.Session, v int64) error {
			got = append(got, strings.TrimPrefix(s.Path(), "/")+"="+strconv.FormatInt(v, 10))
			return nil
		}
		nodes := []*jsonbind.Node{
			jsonbind.Leaf("a|b", jsonbind.Handlers{Int: record}),
			jsonbind.Leaf("#", jsonbind.Handlers{Int: record}),
		}
		rec := &recorder{}
		s := jsonbind.NewSession(nodes, nil, jsonbind.ParseOpt{Source: "sep.json", Reporter: rec.report})
		err := s.ParseBytes(context.Background(), []byte(c.in))
		iss, ok := jsonbind.AsIssues(err)
		if !ok || iss[0].Code != jsonbind.CodeParseError {
			t.Fatalf("%s: expected parse_error, got %v", c.in, err)
		}
		if len(rec.lines) != 1 || !strings.HasPrefix(rec.lines[0], "error:sep.json:1:invalid json -- ") {
			t.Fatalf("%s: expected one error report, got:\n%s", c.in, rec.text())
		}
		if strings.Join(got, " ") != strings.Join(c.want, " ") {
			t.Fatalf("%s: callbacks %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseFrom_ReportsLineNumbers(t *testing.T) {
	doc := "{\n\"a\": 1,\n\"zz\": 2\n}"
	nodes := []*jsonbind.Node{jsonbind.Leaf("a", jsonbind.Handlers{Int: func(*jsonbind.Session, int64) error { return nil }})}
	sources := map[string]func() jsonbind.Source{
		"bytes":  func() jsonbind.Source { return jsonbind.JSONBytes([]byte(doc)) },
		"reader": func() jsonbind.Source { return jsonbind.JSONReader(strings.NewReader(doc)) },
	}
	for name, src := range sources {
		rec := &recorder{}
		s, err := jsonbind.ParseFrom(context.Background(), nodes, nil, src(), jsonbind.ParseOpt{Source: "d", Reporter: rec.report})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if len(rec.lines) == 0 || rec.lines[0] != "d:line 3" {
			t.Fatalf("%s: diagnostics:\n%s", name, rec.text())
		}
		if iss := s.Issues(); len(iss) != 1 || iss[0].Line != 3 {
			t.Fatalf("%s: issues: %+v", name, iss)
		}
	}

	// With enforcement wrapped around the source.
	rec := &recorder{}
	_, err := jsonbind.ParseFrom(context.Background(), nodes, nil, jsonbind.JSONBytes([]byte(doc)),
		jsonbind.ParseOpt{Source: "d", Reporter: rec.report, MaxDepth: 8})
	if err != nil || len(rec.lines) == 0 || rec.lines[0] != "d:line 3" {
		t.Fatalf("err=%v diagnostics:\n%s", err, rec.text())
	}
}

func TestSession_BranchHandlersOverrideChildren(t *testing.T) {
	var got []string
	branch := jsonbind.Branch("a", jsonbind.Leaf("b", jsonbind.Handlers{String: func(_ *jsonbind.Session, v string) error {
		got = append(got, "leaf:"+v)
		return nil
	}}))
	branch.Handlers = jsonbind.Handlers{String: func(_ *jsonbind.Session, v string) error {
		got = append(got, "branch:"+v)
		return nil
	}}
	if err := jsonbind.Unmarshal([]byte(`{"a":{"b":"v"}}`), []*jsonbind.Node{branch}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, " ") != "branch:v" {
		t.Fatalf("got %v", got)
	}
}

func TestSession_ExpectedTypesOmitNull(t *testing.T) {
	rec := &recorder{}
	nodes := []*jsonbind.Node{jsonbind.Leaf("name", jsonbind.Handlers{
		Null:   func(*jsonbind.Session) error { return nil },
		String: func(*jsonbind.Session, string) error { return nil },
	})}
	if err := jsonbind.Unmarshal([]byte(`{"name":1}`), nodes, nil, jsonbind.ParseOpt{Source: "n.json", Reporter: rec.report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"n.json:line 1",
		"  unexpected path --",
		"    /name",
		"  expecting one of the following data types --",
		"    string",
	}
	if got := rec.text(); got != strings.Join(want, "\n") {
		t.Fatalf("diagnostics:\n%s", got)
	}
}

func TestSession_ScalarOnBranchListsAcceptedPaths(t *testing.T) {
	var names, tags []string
	rec := &recorder{}
	if err := jsonbind.Unmarshal([]byte(`{"tags":"x"}`), nameAndTags(&names, &tags), nil, jsonbind.ParseOpt{Source: "doc.json", Reporter: rec.report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"doc.json:line 1",
		"  unexpected path --",
		"    /tags",
		"  accepted paths --",
		"    name  -- ",
		"    tags  -- ",
	}
	if got := rec.text(); got != strings.Join(want, "\n") {
		t.Fatalf("diagnostics:\n%s", got)
	}
}
