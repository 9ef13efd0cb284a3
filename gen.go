package jsonbind

import (
	"fmt"
	"strings"
)

// GenSession emits a JSON document whose structure mirrors a schema tree.
// Branches open nested maps (or an array when the next segment is the array
// marker) and leaves write their value through Node.Emit.
type GenSession struct {
	w        Writer
	nodes    []*Node
	ctx      objStack
	defaults objStack
	depth    int
	key      string
}

// NewGenSession returns a generator writing nodes to w with root as the base
// context.
func NewGenSession(w Writer, nodes []*Node, root any) *GenSession {
	g := &GenSession{w: w, nodes: nodes}
	g.ctx.push(root)
	return g
}

// Generate writes the whole tree as one JSON object and flushes the writer.
func Generate(w Writer, nodes []*Node, root any) error {
	return NewGenSession(w, nodes, root).Generate()
}

// WithDefaults seeds the default context stack. Object providers are applied
// to it in parallel with the main stack so emitters can compare a value with
// its default.
func (g *GenSession) WithDefaults(root any) *GenSession {
	g.defaults.release(0)
	g.defaults.push(root)
	return g
}

// WithContext continues from the position of a parse session: its contexts
// become the generation contexts and, when the session sits on a branch
// rather than a leaf, only that branch's children are generated.
func (g *GenSession) WithContext(s *Session) *GenSession {
	g.ctx.items = s.objs.snapshot()
	if s.current == nil && len(s.handlerStack) > 0 {
		if last := s.handlerStack[len(s.handlerStack)-1]; last != nil {
			g.nodes = last.Children
			g.depth++
		}
	}
	return g
}

// Top returns the innermost context.
func (g *GenSession) Top() any { return g.ctx.top() }

// Default returns the innermost default context, or nil without defaults.
func (g *GenSession) Default() any { return g.defaults.top() }

// Depth returns the number of containers currently open.
func (g *GenSession) Depth() int { return g.depth }

// Key returns the key of the value being emitted, unescaped. It is empty for
// array elements.
func (g *GenSession) Key() string { return g.key }

// Writer returns the output writer.
func (g *GenSession) Writer() Writer { return g.w }

func (g *GenSession) Generate() error {
	if err := g.w.OpenMap(); err != nil {
		return err
	}
	g.depth++
	if err := g.EmitNodes(g.nodes); err != nil {
		return err
	}
	g.depth--
	if err := g.w.CloseMap(); err != nil {
		return err
	}
	return g.w.Flush()
}

// EmitNodes emits a sibling list in declared order. Custom EmitFuncs may use
// it to generate a nested tree.
func (g *GenSession) EmitNodes(nodes []*Node) error {
	for _, n := range nodes {
		if n.isSentinel() {
			break
		}
		if err := g.emitNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *GenSession) emitNode(n *Node) error {
	branch := n.IsBranch()
	if !branch && n.Emit == nil {
		return nil
	}
	for _, seg := range n.concreteSegments(g.ctx.top()) {
		if err := g.emitSegment(n, seg, branch); err != nil {
			return err
		}
	}
	return nil
}

// emitSegment writes one concrete segment of n. Every part of the segment
// except array markers becomes a key; the containers opened for it are
// closed again before returning.
func (g *GenSession) emitSegment(n *Node, seg string, branch bool) error {
	parts := strings.Split(seg, "/")
	var closers []func() error
	for i, part := range parts {
		last := i == len(parts)-1
		g.key = ""
		if part != ArrayMarker {
			g.key = UnescapeSegment(part)
			if err := g.w.WriteKey(g.key); err != nil {
				return err
			}
		}
		if last && !branch {
			break
		}
		next := ""
		if !last {
			next = parts[i+1]
		} else {
			next = firstPart(n.Children)
		}
		if next == ArrayMarker {
			if err := g.w.OpenArray(); err != nil {
				return err
			}
			closers = append(closers, g.w.CloseArray)
		} else {
			if err := g.w.OpenMap(); err != nil {
				return err
			}
			closers = append(closers, g.w.CloseMap)
		}
		g.depth++
	}

	if branch {
		if err := g.emitBranch(n, seg); err != nil {
			return err
		}
	} else if err := n.Emit(g, g.w, n); err != nil {
		return err
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			return err
		}
		g.depth--
	}
	return nil
}

func (g *GenSession) emitBranch(n *Node, seg string) error {
	if n.ObjectProvider != nil {
		caps, ok := MatchSingle(n, seg)
		if !ok {
			return fmt.Errorf("jsonbind: pattern %q does not match generated segment %q", n.Pattern, seg)
		}
		defer g.ctx.release(g.ctx.push(n.ObjectProvider(caps, g.ctx.top())))
		if g.defaults.len() > 0 {
			defer g.defaults.release(g.defaults.push(n.ObjectProvider(caps, g.defaults.top())))
		}
	}
	return g.EmitNodes(n.Children)
}

// firstPart returns the first static part of the first node in nodes.
func firstPart(nodes []*Node) string {
	if len(nodes) == 0 || nodes[0].isSentinel() {
		return ""
	}
	lit := nodes[0].pattern().Literal()
	if i := strings.IndexByte(lit, '/'); i >= 0 {
		return lit[:i]
	}
	return lit
}
