package jsonify

import (
	"context"

	eng "github.com/jsonify-go/jsonify/internal/engine"
)

// Pending is a value that is not available yet. The engine suspends emission
// at its position until Await returns. Await must report the same outcome on
// every call.
type Pending = eng.Pending

// ItemSource produces discrete values in order; it serializes as a JSON
// array whose elements are the serializations of its items. NextItem reports
// io.EOF after the last item; any other error aborts the serialization.
//
// Receive-capable channels anywhere in the value tree adapt to an ItemSource
// automatically. Byte streams are different: any io.Reader in the tree
// serializes as a single JSON string made of its chunks.
type ItemSource = eng.ItemSource

// JSONValuer is the custom-conversion hook: when a value implements it, the
// hook result is serialized in its place. Applied once per value, never
// re-applied to the hook's own result.
type JSONValuer = eng.JSONValuer

// Member is one key/value pair of an ordered object literal.
type Member = eng.Member

// Members is an object literal whose key order is preserved verbatim. Plain
// maps serialize with sorted keys instead.
type Members = eng.Members

// Undefined marks a value as absent: omitted inside objects, null inside
// arrays, zero output at the root.
var Undefined = eng.Undefined

// Go runs fn in a new goroutine and returns a Pending for its result.
func Go(fn func() (any, error)) Pending { return eng.Go(fn) }

// Resolved returns an already-resolved Pending.
func Resolved(v any) Pending { return eng.Resolved(v) }

// Failed returns an already-failed Pending.
func Failed(err error) Pending { return eng.Failed(err) }

// Items adapts a fixed set of values into an ItemSource.
func Items(vals ...any) ItemSource { return eng.SliceItems(vals...) }

// ItemsFunc adapts a pull function into an ItemSource. The function follows
// the NextItem contract directly (io.EOF ends the stream).
func ItemsFunc(fn func(ctx context.Context) (any, error)) ItemSource { return eng.FuncItems(fn) }
