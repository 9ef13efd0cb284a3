package jsonschema

import (
	"strings"

	jsonbind "github.com/reoring/jsonbind"
)

// FromNodes projects a schema tree into a JSON Schema document. Literal
// patterns become properties, other patterns become patternProperties and
// array markers become items. Leaf types come from the handlers the leaf
// sets.
func FromNodes(nodes []*jsonbind.Node) (*Schema, error) {
	if err := jsonbind.Compile(nodes); err != nil {
		return nil, err
	}
	root := &Schema{Schema: Draft, Type: "object"}
	addNodes(root, nodes)
	return root, nil
}

func addNodes(parent *Schema, nodes []*jsonbind.Node) {
	for _, n := range nodes {
		if n == nil || n.Pattern == "" {
			return
		}
		addNode(parent, n)
	}
}

func addNode(parent *Schema, n *jsonbind.Node) {
	p, _ := n.Compiled()
	target := parent
	if p.IsLiteral() {
		for _, part := range strings.Split(p.Literal(), "/") {
			target = descend(target, part)
		}
	} else {
		if target.Type == "" {
			target.Type = "object"
		}
		key := "^(?:" + p.Literal() + ")$"
		target = child(&target.PatternProperties, key)
	}
	if n.Synopsis != "" && target.Title == "" {
		target.Title = n.Synopsis
	}
	if n.Description != "" && target.Description == "" {
		target.Description = n.Description
	}
	if n.IsBranch() {
		addNodes(target, n.Children)
		if target.Type == "" {
			target.Type = "object"
		}
		return
	}
	setTypes(target, n.Handlers.Kinds())
}

func descend(s *Schema, part string) *Schema {
	if part == jsonbind.ArrayMarker {
		s.Type = "array"
		s.Properties = nil
		if s.Items == nil {
			s.Items = &Schema{}
		}
		return s.Items
	}
	if s.Type == "" {
		s.Type = "object"
	}
	return child(&s.Properties, jsonbind.UnescapeSegment(part))
}

func child(m *map[string]*Schema, key string) *Schema {
	if *m == nil {
		*m = map[string]*Schema{}
	}
	c, ok := (*m)[key]
	if !ok {
		c = &Schema{}
		(*m)[key] = c
	}
	return c
}

func setTypes(s *Schema, kinds []jsonbind.ScalarKind) {
	var types []string
	seen := map[string]bool{}
	for _, k := range kinds {
		t := jsonType(k)
		// integer is subsumed by number
		if t == "integer" && hasKind(kinds, jsonbind.KindFloat) {
			continue
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	switch len(types) {
	case 0:
	case 1:
		s.Type = types[0]
	default:
		for _, t := range types {
			s.AnyOf = append(s.AnyOf, &Schema{Type: t})
		}
	}
}

func hasKind(kinds []jsonbind.ScalarKind, k jsonbind.ScalarKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

func jsonType(k jsonbind.ScalarKind) string {
	switch k {
	case jsonbind.KindNull:
		return "null"
	case jsonbind.KindBool:
		return "boolean"
	case jsonbind.KindInt:
		return "integer"
	case jsonbind.KindFloat:
		return "number"
	}
	return "string"
}
