package jsonbind

import (
	"errors"
	"fmt"
	"sync"
)

// ObjectProvider derives the context for a node's subtree from the pattern
// captures and the parent context. Providers run every time the resolver
// re-matches the node, so they should look up or lazily create the object
// rather than allocate a fresh one on each call.
type ObjectProvider func(c Captures, parent any) any

// PathProvider enumerates the concrete segments (escaped, canonical form) a
// node stands for under the given context.
type PathProvider func(ctx any) []string

// FieldGetter returns a reference to the storage a leaf binds to.
type FieldGetter func(ctx any, path string) any

// EmitFunc writes a leaf's value during generation. The key has already been
// written (see GenSession.Key). A leaf whose pattern ends in the array marker
// is emitted inside an open array and may write any number of values.
type EmitFunc func(g *GenSession, w Writer, n *Node) error

// Node is one entry of a schema tree. A node with children is a branch,
// otherwise it is a leaf. A node with an empty Pattern terminates its
// sibling list.
type Node struct {
	Pattern  string
	Children []*Node
	Handlers Handlers

	ObjectProvider ObjectProvider
	PathProvider   PathProvider
	FieldGetter    FieldGetter
	Emit           EmitFunc

	Synopsis    string
	Description string

	once     sync.Once
	compiled *Pattern
	err      error
}

// Leaf returns a leaf node with the given handlers.
func Leaf(pattern string, h Handlers) *Node {
	return &Node{Pattern: pattern, Handlers: h}
}

// Branch returns a branch node.
func Branch(pattern string, children ...*Node) *Node {
	return &Node{Pattern: pattern, Children: children}
}

// WithSynopsis sets the diagnostic text.
func (n *Node) WithSynopsis(synopsis, description string) *Node {
	n.Synopsis = synopsis
	n.Description = description
	return n
}

func (n *Node) WithObjectProvider(p ObjectProvider) *Node {
	n.ObjectProvider = p
	return n
}

func (n *Node) WithPathProvider(p PathProvider) *Node {
	n.PathProvider = p
	return n
}

func (n *Node) WithFieldGetter(g FieldGetter) *Node {
	n.FieldGetter = g
	return n
}

func (n *Node) WithEmit(e EmitFunc) *Node {
	n.Emit = e
	return n
}

// IsBranch reports whether n has children.
func (n *Node) IsBranch() bool { return len(n.Children) > 0 && !n.Children[0].isSentinel() }

func (n *Node) isSentinel() bool { return n == nil || n.Pattern == "" }

// Compiled returns the compiled pattern, or the compilation error.
func (n *Node) Compiled() (*Pattern, error) {
	n.once.Do(func() {
		n.compiled, n.err = CompilePattern(n.Pattern)
	})
	return n.compiled, n.err
}

// pattern panics on an invalid pattern: a broken schema is a programming
// error. Use Compile to validate a tree up front.
func (n *Node) pattern() *Pattern {
	p, err := n.Compiled()
	if err != nil {
		panic(err)
	}
	return p
}

// concreteSegments resolves the segments n stands for under ctx.
func (n *Node) concreteSegments(ctx any) []string {
	if n.PathProvider != nil {
		return n.PathProvider(ctx)
	}
	return []string{n.pattern().Literal()}
}

// Compile validates every pattern in the tree.
func Compile(nodes []*Node) error {
	var errs []error
	forEachNode(nodes, func(n *Node) {
		if _, err := n.Compiled(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// MustCompile is like Compile but panics on error.
func MustCompile(nodes ...*Node) []*Node {
	if err := Compile(nodes); err != nil {
		panic(fmt.Sprintf("jsonbind.MustCompile: %v", err))
	}
	return nodes
}

func forEachNode(nodes []*Node, fn func(n *Node)) {
	for _, n := range nodes {
		if n.isSentinel() {
			return
		}
		fn(n)
		forEachNode(n.Children, fn)
	}
}
