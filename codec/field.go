package codec

import (
	"context"
	"fmt"

	jsonbind "github.com/reoring/jsonbind"
)

// Field returns a leaf storing string values through c into the *D returned
// by get for the current context, which must be a C. Values c cannot decode
// are reported with Session.Reject and dropped.
func Field[C any, D any](pattern string, get func(C) *D, c Codec[string, D]) *jsonbind.Node {
	target := func(ctx any) (*D, error) {
		cv, ok := ctx.(C)
		if !ok {
			return nil, fmt.Errorf("codec: context is %T under %s", ctx, pattern)
		}
		p := get(cv)
		if p == nil {
			return nil, fmt.Errorf("codec: no field for %s under %T", pattern, ctx)
		}
		return p, nil
	}
	n := jsonbind.Leaf(pattern, jsonbind.Handlers{
		String: func(s *jsonbind.Session, v string) error {
			p, err := target(s.Top())
			if err != nil {
				return err
			}
			d, err := c.Decode(s.Context(), v)
			if err != nil {
				s.Reject(err.Error())
				return nil
			}
			*p = d
			return nil
		},
	})
	n.FieldGetter = func(ctx any, _ string) any {
		p, err := target(ctx)
		if err != nil {
			return nil
		}
		return p
	}
	n.Emit = func(g *jsonbind.GenSession, w jsonbind.Writer, _ *jsonbind.Node) error {
		p, err := target(g.Top())
		if err != nil {
			return err
		}
		v, err := c.Encode(context.Background(), *p)
		if err != nil {
			return err
		}
		return w.WriteString(v)
	}
	return n
}
