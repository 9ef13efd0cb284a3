// Package codec converts leaf values between their JSON wire form and a
// domain type, and binds such leaves into jsonbind schemas.
package codec

import "context"

// Codec converts between a wire value W and a domain value D.
type Codec[W, D any] interface {
	Decode(ctx context.Context, w W) (D, error)
	Encode(ctx context.Context, d D) (W, error)
}

// Func builds a Codec from a pair of functions.
func Func[W, D any](decode func(W) (D, error), encode func(D) (W, error)) Codec[W, D] {
	return funcCodec[W, D]{dec: decode, enc: encode}
}

type funcCodec[W, D any] struct {
	dec func(W) (D, error)
	enc func(D) (W, error)
}

func (c funcCodec[W, D]) Decode(_ context.Context, w W) (D, error) { return c.dec(w) }
func (c funcCodec[W, D]) Encode(_ context.Context, d D) (W, error) { return c.enc(d) }
