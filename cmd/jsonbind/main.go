package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	var run func(args []string, stdout, stderr io.Writer) int
	switch os.Args[1] {
	case "check":
		run = checkCmd
	case "paths":
		run = pathsCmd
	case "gen":
		run = genCmd
	case "get":
		run = getCmd
	case "apply":
		run = applyCmd
	case "schema":
		run = schemaCmd
	case "help", "-h", "-help", "--help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	os.Exit(run(os.Args[2:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `jsonbind CLI

Usage:
  jsonbind check  -schema s.yaml [flags] file.json...
  jsonbind paths  -schema s.yaml file.json
  jsonbind gen    -schema s.yaml [-indent "  "] file.json
  jsonbind get    -schema s.yaml -path /a/b file.json
  jsonbind apply  -schema s.yaml -set /a/b=value [-set ...] file.json
  jsonbind schema -schema s.yaml

Files named "-" are read from standard input.`)
}

func fatalf(stderr io.Writer, format string, a ...any) int {
	fmt.Fprintf(stderr, format+"\n", a...)
	return 1
}
