package jsonbind

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Scalar lists the Go types Field can bind.
type Scalar interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Field returns a leaf bound to the *V returned by get for the current
// context, which must be a C. The leaf parses, generates and walks the field.
// Float fields also accept integral numbers.
func Field[C any, V Scalar](pattern string, get func(C) *V) *Node {
	var zero V
	kind := reflect.TypeOf(zero).Kind()
	want := reflect.TypeOf((*C)(nil)).Elem()
	at := func(ctx any) (reflect.Value, error) {
		c, ok := ctx.(C)
		if !ok {
			return reflect.Value{}, fmt.Errorf("jsonbind: context is %T, want %s", ctx, want)
		}
		p := get(c)
		if p == nil {
			return reflect.Value{}, fmt.Errorf("jsonbind: no field for %s under %T", pattern, ctx)
		}
		return reflect.ValueOf(p).Elem(), nil
	}
	n := Leaf(pattern, scalarHandlers(kind, func(s *Session) (reflect.Value, error) { return at(s.Top()) }))
	n.FieldGetter = func(ctx any, _ string) any {
		if c, ok := ctx.(C); ok {
			return get(c)
		}
		return nil
	}
	n.Emit = func(g *GenSession, w Writer, _ *Node) error {
		v, err := at(g.Top())
		if err != nil {
			return err
		}
		return emitValue(w, v)
	}
	return n
}

// StructFields derives a schema from the exported fields of T. The context
// for the returned nodes is a *T. Nested structs become branches whose
// context is a pointer to the nested field, and slices of scalars become
// array leaves. Fields of other types are skipped.
func StructFields[T any]() []*Node {
	return structNodes(reflect.TypeOf((*T)(nil)).Elem())
}

// ResolveStructKey resolves a struct field's external key.
// Priority: jsonbind:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("jsonbind"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return sf.Name
}

func structNodes(t reflect.Type) []*Node {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []*Node
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		pat := regexp.QuoteMeta(EscapeKey(key))
		field := structField(t, sf.Index)
		ft := sf.Type
		switch {
		case ft.Kind() == reflect.Struct:
			children := structNodes(ft)
			if len(children) == 0 {
				continue
			}
			out = append(out, Branch(pat, children...).WithObjectProvider(func(_ Captures, parent any) any {
				v, err := field(parent)
				if err != nil {
					return nil
				}
				return v.Addr().Interface()
			}))
		case ft.Kind() == reflect.Slice && isScalarKind(ft.Elem().Kind()):
			out = append(out, sliceLeaf(pat+"/"+ArrayMarker, ft.Elem().Kind(), field))
		case isScalarKind(ft.Kind()):
			out = append(out, reflectLeaf(pat, ft.Kind(), field))
		}
	}
	return out
}

// structField returns an accessor for the field at index of a *t context.
func structField(t reflect.Type, index []int) func(ctx any) (reflect.Value, error) {
	return func(ctx any) (reflect.Value, error) {
		rv := reflect.ValueOf(ctx)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != t {
			return reflect.Value{}, fmt.Errorf("jsonbind: context is %T, want *%s", ctx, t)
		}
		return rv.Elem().FieldByIndex(index), nil
	}
}

func reflectLeaf(pat string, kind reflect.Kind, field func(any) (reflect.Value, error)) *Node {
	n := Leaf(pat, scalarHandlers(kind, func(s *Session) (reflect.Value, error) { return field(s.Top()) }))
	n.FieldGetter = func(ctx any, _ string) any {
		v, err := field(ctx)
		if err != nil {
			return nil
		}
		return v.Addr().Interface()
	}
	n.Emit = func(g *GenSession, w Writer, _ *Node) error {
		v, err := field(g.Top())
		if err != nil {
			return err
		}
		return emitValue(w, v)
	}
	return n
}

// sliceLeaf binds the elements of a slice field. Element i is written when
// the i-th array element is parsed; the first element resets the slice.
func sliceLeaf(pat string, kind reflect.Kind, field func(any) (reflect.Value, error)) *Node {
	elem := func(s *Session) (reflect.Value, error) {
		rv, err := field(s.Top())
		if err != nil {
			return reflect.Value{}, err
		}
		idx := s.ArrayIndex()
		if idx < 0 {
			return reflect.Value{}, fmt.Errorf("jsonbind: %s is not inside an array", s.Path())
		}
		if idx == 0 {
			rv.Set(rv.Slice(0, 0))
		}
		for rv.Len() <= idx {
			rv.Set(reflect.Append(rv, reflect.Zero(rv.Type().Elem())))
		}
		return rv.Index(idx), nil
	}
	n := Leaf(pat, scalarHandlers(kind, elem))
	n.FieldGetter = func(ctx any, _ string) any {
		v, err := field(ctx)
		if err != nil {
			return nil
		}
		return v.Addr().Interface()
	}
	n.Emit = func(g *GenSession, w Writer, _ *Node) error {
		v, err := field(g.Top())
		if err != nil {
			return err
		}
		for i := 0; i < v.Len(); i++ {
			if err := emitValue(w, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return n
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// scalarHandlers builds the handlers storing into the value returned by at.
// Values that do not fit the field are reported as warnings and dropped.
func scalarHandlers(kind reflect.Kind, at func(s *Session) (reflect.Value, error)) Handlers {
	switch kind {
	case reflect.String:
		return Handlers{String: func(s *Session, v string) error {
			rv, err := at(s)
			if err != nil {
				return err
			}
			rv.SetString(v)
			return nil
		}}
	case reflect.Bool:
		return Handlers{Bool: func(s *Session, v bool) error {
			rv, err := at(s)
			if err != nil {
				return err
			}
			rv.SetBool(v)
			return nil
		}}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Handlers{Int: func(s *Session, v int64) error {
			rv, err := at(s)
			if err != nil {
				return err
			}
			if rv.OverflowInt(v) {
				s.Reject(fmt.Sprintf("%d overflows %s", v, rv.Type()))
				return nil
			}
			rv.SetInt(v)
			return nil
		}}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Handlers{Int: func(s *Session, v int64) error {
			rv, err := at(s)
			if err != nil {
				return err
			}
			if v < 0 || rv.OverflowUint(uint64(v)) {
				s.Reject(fmt.Sprintf("%d overflows %s", v, rv.Type()))
				return nil
			}
			rv.SetUint(uint64(v))
			return nil
		}}
	case reflect.Float32, reflect.Float64:
		set := func(s *Session, v float64) error {
			rv, err := at(s)
			if err != nil {
				return err
			}
			rv.SetFloat(v)
			return nil
		}
		return Handlers{
			Int:   func(s *Session, v int64) error { return set(s, float64(v)) },
			Float: set,
		}
	}
	return Handlers{}
}

func emitValue(w Writer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		return w.WriteString(v.String())
	case reflect.Bool:
		return w.WriteBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.WriteInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.WriteInt(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return w.WriteFloat(v.Float())
	}
	return fmt.Errorf("jsonbind: cannot emit %s", v.Type())
}
