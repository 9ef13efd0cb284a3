// Package jsonbind binds streaming JSON to application state through a tree
// of path patterns.
//
// A schema is an ordered list of Nodes. Each node carries a regular
// expression matched against one segment of the canonical path of the
// tokenizer position, and either children (a branch) or scalar handlers (a
// leaf). While a document is fed token by token, the Session re-resolves the
// path after every structural event and dispatches scalars to the handlers
// of the first matching leaf. Branches may derive a context object from
// their captures with an ObjectProvider; leaves see it as Session.Top.
//
// Canonical paths escape '~', '/' and '#' in keys as "~0", "~1" and "~2".
// Array elements are written as the single segment "#", so every element of
// an array resolves to the same node; the running index is available from
// Session.ArrayIndex and Captures.Index.
//
// The same tree drives generation (GenSession, Generate) and introspection
// (Walk), so one declaration serves parsing, output and documentation.
//
// Design policy:
//   - Keep only public APIs in the root package; put tokenizer plumbing under internal/.
//   - Tokenizer drivers live under source/, codecs under codec/, YAML-declared schemas
//     under schemadoc/ and the CLI under cmd/jsonbind.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	type config struct{ Name string; Tags []string }
//	nodes := []*jsonbind.Node{
//		jsonbind.Field("name", func(c *config) *string { return &c.Name }),
//		jsonbind.Branch("tags", jsonbind.Leaf("#", jsonbind.Handlers{
//			String: func(s *jsonbind.Session, v string) error {
//				c := s.Top().(*config)
//				c.Tags = append(c.Tags, v)
//				return nil
//			},
//		})),
//	}
//	var c config
//	err := jsonbind.Unmarshal(data, nodes, &c, jsonbind.ParseOpt{Source: "config.json"})
package jsonbind
