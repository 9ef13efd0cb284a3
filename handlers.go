package jsonbind

// ScalarKind identifies the scalar event a handler consumes.
type ScalarKind int

const (
	KindNull ScalarKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	numScalarKinds
)

func (k ScalarKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Handlers is the sparse set of scalar callbacks carried by a node. Nil
// entries are "not set" and never override a handler already active.
type Handlers struct {
	Null   func(s *Session) error
	Bool   func(s *Session, v bool) error
	Int    func(s *Session, v int64) error
	Float  func(s *Session, v float64) error
	String func(s *Session, v string) error
}

// Has reports whether the handler for k is set.
func (h Handlers) Has(k ScalarKind) bool {
	switch k {
	case KindNull:
		return h.Null != nil
	case KindBool:
		return h.Bool != nil
	case KindInt:
		return h.Int != nil
	case KindFloat:
		return h.Float != nil
	case KindString:
		return h.String != nil
	}
	return false
}

// Kinds lists the scalar kinds with a handler set, in ScalarKind order.
func (h Handlers) Kinds() []ScalarKind {
	var out []ScalarKind
	for k := KindNull; k < numScalarKinds; k++ {
		if h.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// activeSet is the merged handler table the tokenizer dispatches to. An unset
// slot routes the value to the unused fallback.
type activeSet struct {
	h Handlers
	// muted is set when ActivePaths excludes the current path: values are
	// dropped without diagnostics.
	muted bool
}

func (a *activeSet) reset() { *a = activeSet{} }

// merge overrides the slots set in h.
func (a *activeSet) merge(h Handlers) {
	if h.Null != nil {
		a.h.Null = h.Null
	}
	if h.Bool != nil {
		a.h.Bool = h.Bool
	}
	if h.Int != nil {
		a.h.Int = h.Int
	}
	if h.Float != nil {
		a.h.Float = h.Float
	}
	if h.String != nil {
		a.h.String = h.String
	}
}
