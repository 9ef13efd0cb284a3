package jsonbind

import "fmt"

// VisitFunc receives one concrete path of a schema walk. field is the value
// returned by the leaf's FieldGetter, or nil for containers and leaves
// without a getter.
type VisitFunc func(n *Node, path string, field any)

// Walk enumerates every concrete path the schema admits under root without
// reading any input. Nodes with a PathProvider are visited once per segment
// as containers; branch contexts are built with the node's ObjectProvider
// applied to the captures of its own concrete segment.
//
// Walk panics when a provided segment does not match the pattern of the node
// that produced it: the schema and its path providers disagree.
func Walk(nodes []*Node, root any, visit VisitFunc) {
	walk(nodes, root, "", visit)
}

func walk(nodes []*Node, ctx any, base string, visit VisitFunc) {
	for _, n := range nodes {
		if n.isSentinel() {
			return
		}
		segs := n.concreteSegments(ctx)
		if n.PathProvider != nil {
			for _, seg := range segs {
				visit(n, base+"/"+seg, nil)
			}
		}
		if n.IsBranch() {
			for _, seg := range segs {
				child := ctx
				if n.ObjectProvider != nil {
					caps, ok := MatchSingle(n, seg)
					if !ok {
						panic(fmt.Sprintf("jsonbind.Walk: pattern %q does not match generated path %q", n.Pattern, seg))
					}
					child = n.ObjectProvider(caps, ctx)
				}
				walk(n.Children, child, base+"/"+seg, visit)
			}
			continue
		}
		for _, seg := range segs {
			var field any
			if n.FieldGetter != nil {
				field = n.FieldGetter(ctx, seg)
			}
			visit(n, base+"/"+seg, field)
		}
	}
}
