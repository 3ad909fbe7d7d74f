package jsonify

import (
	"context"
	"io"
)

// Stringify serializes v to a single string by draining a Stream eagerly. It
// exists for callers who do not need incremental output; embedded pending
// values and sources are still honored.
func Stringify(ctx context.Context, v any, opts ...EncodeOpt) (string, error) {
	b, err := Append(ctx, nil, v, opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Append serializes v and appends the output to dst.
func Append(ctx context.Context, dst []byte, v any, opts ...EncodeOpt) ([]byte, error) {
	s := New(v, opts...)
	for {
		frag, err := s.Next(ctx)
		if err == io.EOF {
			return dst, nil
		}
		if err != nil {
			return dst, err
		}
		dst = append(dst, frag...)
	}
}
