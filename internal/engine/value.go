package engine

import (
	"encoding/json"
	"io"
	"reflect"
	"sort"
	"strings"
)

// Kind classifies a value into the shape the generator knows how to emit.
type Kind int

const (
	KindAbsent Kind = iota // undefined sentinel and func values; omitted or nulled depending on position
	KindPrimitive
	KindSequence
	KindKeyed
	KindPending
	KindTextSource
	KindItemSource
)

// JSONValuer is the custom-conversion hook. When a value implements it, the
// hook result is serialized in place of the value. The hook is applied once
// per value and never re-applied to its own result.
type JSONValuer interface {
	JSONValue() any
}

// undefinedValue is the sentinel type behind Undefined.
type undefinedValue struct{}

// Undefined marks a value as absent: omitted inside objects, null inside
// arrays, zero output at the root. Replacer functions return it to drop a
// member.
var Undefined undefinedValue

// Member is one key/value pair of an ordered object literal.
type Member struct {
	Key   string
	Value any
}

// Members is an object literal whose key order is preserved verbatim.
// Plain maps serialize with sorted keys instead.
type Members []Member

// classified is the tagged result of classify. Exactly one payload field is
// meaningful for a given kind.
type classified struct {
	kind    Kind
	prim    any
	seq     []any
	pairs   []Member
	text    io.Reader
	items   ItemSource
	pending Pending
}

// applyValuer runs the custom-conversion hook when present.
func applyValuer(v any) any {
	if jv, ok := v.(JSONValuer); ok {
		return jv.JSONValue()
	}
	return v
}

// classify inspects one value and assigns its emission shape. It never
// invokes the conversion hook; callers pipe values through applyValuer (and
// the replacer) before classification so the hook fires exactly once.
func classify(v any) classified {
	switch t := v.(type) {
	case nil:
		return classified{kind: KindPrimitive, prim: nil}
	case undefinedValue:
		return classified{kind: KindAbsent}
	case Pending:
		return classified{kind: KindPending, pending: t}
	case ItemSource:
		return classified{kind: KindItemSource, items: t}
	case io.Reader:
		return classified{kind: KindTextSource, text: t}
	case Members:
		return classified{kind: KindKeyed, pairs: t}
	case json.Marshaler:
		return classified{kind: KindPrimitive, prim: t}
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return classified{kind: KindPrimitive, prim: t}
	case []byte:
		// matches encoding/json: byte slices become base64 strings
		return classified{kind: KindPrimitive, prim: t}
	case []any:
		return classified{kind: KindSequence, seq: t}
	case map[string]any:
		return classified{kind: KindKeyed, pairs: sortedPairs(t)}
	}
	return classifyReflect(reflect.ValueOf(v))
}

func classifyReflect(rv reflect.Value) classified {
	switch rv.Kind() {
	case reflect.Func:
		return classified{kind: KindAbsent}
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return classified{kind: KindAbsent}
		}
		return classified{kind: KindItemSource, items: chanSource{ch: rv}}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return classified{kind: KindPrimitive, prim: nil}
		}
		return classify(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return classified{kind: KindPrimitive, prim: rv.Interface()}
		}
		seq := make([]any, rv.Len())
		for i := range seq {
			seq[i] = rv.Index(i).Interface()
		}
		return classified{kind: KindSequence, seq: seq}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			// non-string keys are delegated wholesale to the scalar driver
			return classified{kind: KindPrimitive, prim: rv.Interface()}
		}
		return classified{kind: KindKeyed, pairs: sortedReflectPairs(rv)}
	case reflect.Struct:
		return classified{kind: KindKeyed, pairs: structPairs(rv)}
	}
	return classified{kind: KindPrimitive, prim: rv.Interface()}
}

func sortedPairs(m map[string]any) []Member {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]Member, len(keys))
	for i, k := range keys {
		pairs[i] = Member{Key: k, Value: m[k]}
	}
	return pairs
}

func sortedReflectPairs(rv reflect.Value) []Member {
	keys := rv.MapKeys()
	pairs := make([]Member, len(keys))
	for i, k := range keys {
		pairs[i] = Member{Key: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs
}

// structPairs decomposes a struct into ordered members following declaration
// order. Untagged anonymous struct fields are flattened in place.
func structPairs(rv reflect.Value) []Member {
	rt := rv.Type()
	var pairs []Member
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		fv := rv.Field(i)
		if sf.Anonymous && sf.Tag.Get("json") == "" {
			ev := fv
			if ev.Kind() == reflect.Pointer {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if ev.Kind() == reflect.Struct {
				pairs = append(pairs, structPairs(ev)...)
				continue
			}
		}
		key, omitEmpty := resolveStructKey(sf)
		if key == "-" {
			continue
		}
		if omitEmpty && isEmptyValue(fv) {
			continue
		}
		pairs = append(pairs, Member{Key: key, Value: fv.Interface()})
	}
	return pairs
}

// resolveStructKey resolves a struct field's external key: json tag name when
// present, field name otherwise. "-" disables the field.
func resolveStructKey(sf reflect.StructField) (key string, omitEmpty bool) {
	jt := sf.Tag.Get("json")
	if jt == "" {
		return sf.Name, false
	}
	if jt == "-" {
		return "-", false
	}
	parts := strings.Split(jt, ",")
	key = parts[0]
	if key == "" {
		key = sf.Name
	}
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "omitempty" {
			omitEmpty = true
		}
	}
	return key, omitEmpty
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
