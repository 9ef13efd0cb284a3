// Package schemadoc declares jsonbind schemas in YAML and binds documents
// into a generic Record tree.
//
// A schema file lists fields in match order:
//
//	name: service
//	fields:
//	  - pattern: name
//	    type: string
//	    synopsis: <name>
//	    description: service name
//	  - pattern: labels
//	    fields:
//	      - pattern: '[a-z][a-z0-9-]*'
//	        type: string
//	  - pattern: ports
//	    type: integer
//	    list: true
//
// Fields with nested fields are branches and become nested Records. Fields
// with a type are leaves. A literal pattern names one key; any other pattern
// matches many keys, and each matched key is stored under its own name.
package schemadoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	jsonbind "github.com/reoring/jsonbind"
)

// Leaf value types.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeRFC3339 = "rfc3339"
)

// Field declares one schema node.
type Field struct {
	Pattern     string  `yaml:"pattern"`
	Type        string  `yaml:"type,omitempty"`
	List        bool    `yaml:"list,omitempty"`
	Synopsis    string  `yaml:"synopsis,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Fields      []Field `yaml:"fields,omitempty"`
}

// Schema is a parsed schema file.
type Schema struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Fields      []Field `yaml:"fields"`
}

// Load reads one schema document from r. Unknown keys and duplicate keys are
// errors.
func Load(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Schema
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schemadoc: empty schema")
		}
		return nil, fmt.Errorf("schemadoc: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadBytes is Load over an in-memory document.
func LoadBytes(data []byte) (*Schema, error) { return Load(bytes.NewReader(data)) }

// LoadFile reads a schema from a file.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks every field declaration.
func (s *Schema) Validate() error {
	var errs []error
	validateFields(s.Fields, "", &errs)
	return errors.Join(errs...)
}

func validateFields(fields []Field, at string, errs *[]error) {
	for i := range fields {
		f := &fields[i]
		where := fmt.Sprintf("%s/%s", at, f.Pattern)
		fail := func(format string, args ...any) {
			*errs = append(*errs, fmt.Errorf("schemadoc: field %s: "+format, append([]any{where}, args...)...))
		}
		if f.Pattern == "" {
			fail("empty pattern")
			continue
		}
		p, err := jsonbind.CompilePattern(f.Pattern)
		if err != nil {
			fail("%v", err)
			continue
		}
		hasArrayPart := false
		for _, part := range strings.Split(p.Literal(), "/") {
			if part == jsonbind.ArrayMarker {
				hasArrayPart = true
			}
		}
		switch {
		case hasArrayPart:
			fail("array segments are not supported; use list: true on a leaf")
		case len(f.Fields) > 0 && f.Type != "":
			fail("a field with nested fields cannot have a type")
		case len(f.Fields) > 0 && f.List:
			fail("list applies to leaves only")
		case len(f.Fields) == 0 && !knownType(f.Type):
			fail("unknown type %q", f.Type)
		case f.List && !p.IsLiteral():
			fail("list fields need a literal pattern")
		}
		if len(f.Fields) > 0 {
			validateFields(f.Fields, where, errs)
		}
	}
}

func knownType(t string) bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeRFC3339:
		return true
	}
	return false
}
