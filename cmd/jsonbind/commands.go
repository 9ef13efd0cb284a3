package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	jsonbind "github.com/reoring/jsonbind"
	"github.com/reoring/jsonbind/jsonschema"
	"github.com/reoring/jsonbind/schemadoc"
)

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *common) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &common{}
	c.register(fs)
	return fs, c
}

// checkCmd validates documents against the schema and prints diagnostics.
func checkCmd(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("check", stderr)
	strict := fs.Bool("strict", false, "fail when any warning is reported")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	s, err := c.setup()
	if err != nil {
		return fatalf(stderr, "check: %v", err)
	}
	rep, err := newReporter(stderr, c.color)
	if err != nil {
		return fatalf(stderr, "check: %v", err)
	}
	status := 0
	for _, name := range fs.Args() {
		opt, err := c.parseOpt(name)
		if err != nil {
			return fatalf(stderr, "check: %v", err)
		}
		opt.Reporter = rep.report
		in, err := openInput(name)
		if err != nil {
			fmt.Fprintf(stderr, "check: %v\n", err)
			status = 1
			continue
		}
		_, sess, err := s.Parse(context.Background(), in, opt)
		in.Close()
		n := len(sess.Issues())
		switch {
		case err != nil:
			status = 1
			fmt.Fprintf(stdout, "%s: invalid\n", name)
		case n > 0:
			if *strict {
				status = 1
			}
			fmt.Fprintf(stdout, "%s: %d issue(s)\n", name, n)
		default:
			fmt.Fprintf(stdout, "%s: ok\n", name)
		}
	}
	return status
}

// pathsCmd lists the bound paths of a document.
func pathsCmd(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("paths", stderr)
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	s, rec, code := loadAndBind(c, fs.Arg(0), stderr)
	if s == nil {
		return code
	}
	for _, p := range s.Paths(rec) {
		fmt.Fprintln(stdout, p)
	}
	return code
}

// genCmd rewrites a document in schema order, dropping unbound values.
func genCmd(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("gen", stderr)
	indent := fs.String("indent", "", "indentation for multi-line output")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	s, rec, code := loadAndBind(c, fs.Arg(0), stderr)
	if s == nil {
		return code
	}
	var opts []jsontext.Options
	if *indent != "" {
		opts = append(opts, jsontext.WithIndent(*indent))
	}
	if err := s.Generate(jsonbind.NewJSONWriter(stdout, opts...), rec); err != nil {
		return fatalf(stderr, "gen: %v", err)
	}
	return code
}

// getCmd prints the raw value at a JSON Pointer bound by the schema.
func getCmd(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("get", stderr)
	ptr := fs.String("path", "", "JSON Pointer of the value")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 || *ptr == "" {
		fs.Usage()
		return 2
	}
	s, err := c.setup()
	if err != nil {
		return fatalf(stderr, "get: %v", err)
	}
	data, err := readInput(fs.Arg(0))
	if err != nil {
		return fatalf(stderr, "get: %v", err)
	}
	q, err := resolvePointer(data, *ptr)
	if err != nil {
		return fatalf(stderr, "get: %v", err)
	}
	if !bound(s, q.canonical) {
		return fatalf(stderr, "get: %s is not bound by %s", *ptr, c.schema)
	}
	v := gjson.GetBytes(data, q.query)
	if !v.Exists() {
		return fatalf(stderr, "get: no value at %s", *ptr)
	}
	fmt.Fprintln(stdout, v.Raw)
	return 0
}

// assignments collects repeated -set pointer=value flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }
func (a *assignments) Set(v string) error {
	if !strings.HasPrefix(v, "/") || !strings.Contains(v, "=") {
		return fmt.Errorf("want /pointer=value, got %q", v)
	}
	*a = append(*a, v)
	return nil
}

// applyCmd patches a document and validates only the patched values.
func applyCmd(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("apply", stderr)
	var sets assignments
	fs.Var(&sets, "set", "assignment /pointer=value; the value is raw JSON or a string (repeatable)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 || len(sets) == 0 {
		fs.Usage()
		return 2
	}
	s, err := c.setup()
	if err != nil {
		return fatalf(stderr, "apply: %v", err)
	}
	rep, err := newReporter(stderr, c.color)
	if err != nil {
		return fatalf(stderr, "apply: %v", err)
	}
	data, err := readInput(fs.Arg(0))
	if err != nil {
		return fatalf(stderr, "apply: %v", err)
	}

	var touched []string
	for _, set := range sets {
		ptr, value, _ := strings.Cut(set, "=")
		q, err := resolvePointer(data, ptr)
		if err != nil {
			return fatalf(stderr, "apply: %v", err)
		}
		if !bound(s, q.canonical) {
			return fatalf(stderr, "apply: %s is not bound by %s", ptr, c.schema)
		}
		if gjson.Valid(value) {
			data, err = sjson.SetRawBytes(data, q.query, []byte(value))
		} else {
			data, err = sjson.SetBytes(data, q.query, value)
		}
		if err != nil {
			return fatalf(stderr, "apply: %s: %v", ptr, err)
		}
		touched = append(touched, q.canonical)
	}

	opt, err := c.parseOpt(fs.Arg(0))
	if err != nil {
		return fatalf(stderr, "apply: %v", err)
	}
	opt.Reporter = rep.report
	opt.ActivePaths = touched
	_, sess, err := s.Parse(context.Background(), strings.NewReader(string(data)), opt)
	if err != nil || len(sess.Issues()) > 0 {
		return fatalf(stderr, "apply: patched document does not match %s", c.schema)
	}
	if _, err := stdout.Write(data); err != nil {
		return fatalf(stderr, "apply: %v", err)
	}
	return 0
}

// schemaCmd exports the schema as JSON Schema.
func schemaCmd(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("schema", stderr)
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		fs.Usage()
		return 2
	}
	s, err := c.setup()
	if err != nil {
		return fatalf(stderr, "schema: %v", err)
	}
	js, err := jsonschema.FromNodes(s.Nodes())
	if err != nil {
		return fatalf(stderr, "schema: %v", err)
	}
	js.Title = s.Name
	js.Description = s.Description
	out, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return fatalf(stderr, "schema: %v", err)
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

// loadAndBind loads the schema and binds one document. It returns a nil
// schema when the caller should stop with code.
func loadAndBind(c *common, name string, stderr io.Writer) (*schemadoc.Schema, schemadoc.Record, int) {
	s, err := c.setup()
	if err != nil {
		return nil, nil, fatalf(stderr, "%v", err)
	}
	rep, err := newReporter(stderr, c.color)
	if err != nil {
		return nil, nil, fatalf(stderr, "%v", err)
	}
	data, err := readInput(name)
	if err != nil {
		return nil, nil, fatalf(stderr, "%v", err)
	}
	rec, _, err := bind(s, c, rep, name, data)
	if err != nil {
		var iss jsonbind.Issues
		if !errors.As(err, &iss) {
			fmt.Fprintln(stderr, err)
		}
		return nil, nil, 1
	}
	return s, rec, 0
}
