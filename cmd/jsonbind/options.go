package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	jsonbind "github.com/reoring/jsonbind"
	"github.com/reoring/jsonbind/i18n"
	"github.com/reoring/jsonbind/schemadoc"
	"github.com/reoring/jsonbind/source/jsonv2"
)

// common holds the flags every subcommand shares.
type common struct {
	schema   string
	unused   string
	dup      string
	maxDepth int
	maxBytes int64
	driver   string
	lang     string
	color    string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.schema, "schema", "", "YAML schema file")
	fs.StringVar(&c.unused, "unused", "warn", "unbound values: warn, ignore, abort")
	fs.StringVar(&c.dup, "dup", "ignore", "duplicate keys: ignore, warn, error")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	fs.Int64Var(&c.maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	fs.StringVar(&c.driver, "driver", "go-json", "tokenizer: go-json, jsontext")
	fs.StringVar(&c.lang, "lang", "en", "diagnostic language: en, ja")
	fs.StringVar(&c.color, "color", "auto", "colorize diagnostics: auto, always, never")
}

// setup applies the process-wide settings and loads the schema.
func (c *common) setup() (*schemadoc.Schema, error) {
	switch c.driver {
	case "go-json":
		jsonbind.UseDefaultJSONDriver()
	case "jsontext":
		jsonbind.SetJSONDriver(jsonv2.Driver())
	default:
		return nil, fmt.Errorf("invalid -driver value: %q (use go-json or jsontext)", c.driver)
	}
	i18n.SetLanguage(c.lang)
	if c.schema == "" {
		return nil, fmt.Errorf("-schema is required")
	}
	return schemadoc.LoadFile(c.schema)
}

func (c *common) parseOpt(source string) (jsonbind.ParseOpt, error) {
	opt := jsonbind.ParseOpt{Source: source, MaxDepth: c.maxDepth, MaxBytes: c.maxBytes}
	switch c.unused {
	case "warn":
		opt.Unused = jsonbind.UnusedWarn
	case "ignore":
		opt.Unused = jsonbind.UnusedIgnore
	case "abort":
		opt.Unused = jsonbind.UnusedAbort
	default:
		return opt, fmt.Errorf("invalid -unused value: %q (use warn, ignore or abort)", c.unused)
	}
	switch c.dup {
	case "ignore":
		opt.OnDuplicateKey = jsonbind.Ignore
	case "warn":
		opt.OnDuplicateKey = jsonbind.Warn
	case "error":
		opt.OnDuplicateKey = jsonbind.Error
	default:
		return opt, fmt.Errorf("invalid -dup value: %q (use ignore, warn or error)", c.dup)
	}
	return opt, nil
}

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// reporter prints session diagnostics, coloring the header line of each
// message block.
type reporter struct {
	w     io.Writer
	color bool
	warns int
	errs  int
}

func newReporter(stderr io.Writer, mode string) (*reporter, error) {
	r := &reporter{w: stderr}
	f, isFile := stderr.(*os.File)
	switch mode {
	case "auto":
		r.color = isFile && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	case "always":
		r.color = true
	case "never":
	default:
		return nil, fmt.Errorf("invalid -color value: %q (use auto, always or never)", mode)
	}
	if r.color && isFile {
		r.w = colorable.NewColorable(f)
	}
	return r, nil
}

func (r *reporter) report(_ *jsonbind.Session, level jsonbind.Level, msg string) {
	header := !strings.HasPrefix(msg, " ")
	if header {
		if level == jsonbind.LevelError {
			r.errs++
		} else {
			r.warns++
		}
	}
	if !r.color || !header {
		fmt.Fprintln(r.w, msg)
		return
	}
	c := colorYellow
	if level == jsonbind.LevelError {
		c = colorRed
	}
	fmt.Fprintln(r.w, c+msg+colorReset)
}

// readInput returns the contents of name, or of stdin for "-".
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// openInput streams name, or stdin for "-".
func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// bind parses data with the schema and returns the record. Diagnostics go
// to rep.
func bind(s *schemadoc.Schema, c *common, rep *reporter, name string, data []byte) (schemadoc.Record, *jsonbind.Session, error) {
	opt, err := c.parseOpt(name)
	if err != nil {
		return nil, nil, err
	}
	opt.Reporter = rep.report
	return s.Parse(context.Background(), bytes.NewReader(data), opt)
}
