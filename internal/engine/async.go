package engine

import (
	"context"
	"io"
	"reflect"
	"sync"
)

// Pending is a value that is not available yet. Await blocks until the value
// resolves or fails; it must return the same outcome on every call.
type Pending interface {
	Await(ctx context.Context) (any, error)
}

// ItemSource produces discrete values in order. It reports io.EOF after the
// last item; any other error aborts the serialization.
type ItemSource interface {
	NextItem(ctx context.Context) (any, error)
}

// future is the built-in Pending implementation. The result is memoized so
// Await is repeatable.
type future struct {
	done chan struct{}
	v    any
	err  error
}

func (f *future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.v, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Go runs fn in a new goroutine and returns a Pending for its result.
func Go(fn func() (any, error)) Pending {
	f := &future{done: make(chan struct{})}
	go func() {
		f.v, f.err = fn()
		close(f.done)
	}()
	return f
}

// Resolved returns an already-resolved Pending.
func Resolved(v any) Pending {
	f := &future{done: make(chan struct{}), v: v}
	close(f.done)
	return f
}

// Failed returns an already-failed Pending.
func Failed(err error) Pending {
	f := &future{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// SliceItems adapts a fixed set of values into an ItemSource.
func SliceItems(vals ...any) ItemSource {
	return &sliceSource{vals: vals}
}

type sliceSource struct {
	mu   sync.Mutex
	vals []any
	idx  int
}

func (s *sliceSource) NextItem(ctx context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.idx >= len(s.vals) {
		return nil, io.EOF
	}
	v := s.vals[s.idx]
	s.idx++
	return v, nil
}

// FuncItems adapts a pull function into an ItemSource. The function follows
// the NextItem contract directly.
func FuncItems(fn func(ctx context.Context) (any, error)) ItemSource {
	return funcSource(fn)
}

type funcSource func(ctx context.Context) (any, error)

func (f funcSource) NextItem(ctx context.Context) (any, error) { return f(ctx) }

// chanSource adapts a receive-capable channel of any element type. A closed
// channel ends the stream.
type chanSource struct {
	ch reflect.Value
}

func (c chanSource) NextItem(ctx context.Context) (any, error) {
	chosen, recv, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		{Dir: reflect.SelectRecv, Chan: c.ch},
	})
	if chosen == 0 {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, io.EOF
	}
	return recv.Interface(), nil
}
