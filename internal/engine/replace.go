package engine

import (
	"reflect"
	"strconv"
)

// ScalarFunc encodes one primitive value as JSON text appended to dst. The
// public package supplies it from the active scalar driver.
type ScalarFunc func(dst []byte, v any) ([]byte, error)

// Options configures a Generator. Exactly one of Transform/Allow is honored:
// when Transform is set the allowlist is ignored.
type Options struct {
	// Transform is the JSON.stringify-compatible replacer function. It is
	// called once with an empty key for the root (and for every item of an
	// item source, which serializes as an independent sub-root), then once
	// per member with that member's key or stringified index. Returning
	// Undefined or a func value removes the member from an object and maps
	// it to null inside an array. Only the true root is shape-checked: a
	// transform of a sequence root must return a sequence, while items and
	// members may change shape freely.
	Transform func(key string, v any) any
	// Allow retains only the listed keys of every object at every nesting
	// level. It never filters array elements.
	Allow []string
	// Indent enables pretty output using JSON.stringify gap semantics.
	Indent string
	// Scalar encodes primitive leaves.
	Scalar ScalarFunc
}

type options struct {
	transform func(key string, v any) any
	allow     map[string]struct{}
	indent    string
	scalar    ScalarFunc
}

func newOptions(o Options) *options {
	opt := &options{transform: o.Transform, indent: o.Indent, scalar: o.Scalar}
	if opt.transform == nil && len(o.Allow) > 0 {
		opt.allow = make(map[string]struct{}, len(o.Allow))
		for _, k := range o.Allow {
			opt.allow[k] = struct{}{}
		}
	}
	return opt
}

// pipe applies the conversion hook and the transform for one position.
// The transform result is classified as-is; the hook never re-fires on it.
func (o *options) pipe(key string, v any) any {
	v = applyValuer(v)
	if o.transform != nil {
		v = o.transform(key, v)
	}
	return v
}

// pipeRoot pipes the true root value. A transform that turns a sequence root
// into a non-sequence is rejected rather than silently coerced. Item-source
// items are piped with the root key but skip this check; like any positional
// member they may change shape.
func (o *options) pipeRoot(v any) (any, error) {
	v = applyValuer(v)
	if o.transform == nil {
		return v, nil
	}
	wasSeq := classify(v).kind == KindSequence
	out := o.transform("", v)
	if wasSeq && classify(out).kind != KindSequence {
		return nil, IssueError{SimpleIssue{
			Path:    "",
			Code:    CodeMalformedTransform,
			Message: "transform of a sequence root returned a non-sequence",
		}}
	}
	return out, nil
}

// keyed computes the filtered, transformed member list for an object. Members
// whose piped value is absent are omitted; the allowlist drops keys outside
// the set. Source order is preserved and the input is never mutated.
func (o *options) keyed(raw []Member) []Member {
	out := make([]Member, 0, len(raw))
	for _, m := range raw {
		if o.allow != nil {
			if _, ok := o.allow[m.Key]; !ok {
				continue
			}
		}
		v := o.pipe(m.Key, m.Value)
		if isAbsent(v) {
			continue
		}
		out = append(out, Member{Key: m.Key, Value: v})
	}
	return out
}

// sequence computes the transformed element list for an array. Absent results
// become null; positions are never dropped.
func (o *options) sequence(raw []any) []any {
	out := make([]any, len(raw))
	for i, v := range raw {
		v = o.pipe(strconv.Itoa(i), v)
		if isAbsent(v) {
			v = nil
		}
		out[i] = v
	}
	return out
}

func isAbsent(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case undefinedValue:
		return true
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}
