package codec

import "context"

// Identity returns a Codec[T,T] that passes values through unchanged. Every
// validate function runs in both directions; the first error wins.
func Identity[T any](validate ...func(T) error) Codec[T, T] {
	return &identityCodec[T]{validate: validate}
}

type identityCodec[T any] struct {
	validate []func(T) error
}

func (c *identityCodec[T]) check(v T) error {
	for _, fn := range c.validate {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func (c *identityCodec[T]) Decode(_ context.Context, a T) (T, error) {
	if err := c.check(a); err != nil {
		var zero T
		return zero, err
	}
	return a, nil
}

func (c *identityCodec[T]) Encode(_ context.Context, b T) (T, error) {
	if err := c.check(b); err != nil {
		var zero T
		return zero, err
	}
	return b, nil
}
