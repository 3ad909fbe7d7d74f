package jsonify_test

import (
	"context"
	"math"
	"strings"
	"testing"

	jsonify "github.com/jsonify-go/jsonify"
)

func TestStringify_Scalars(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{3.5, "3.5"},
		{"hi", `"hi"`},
		{"a\"b\nc", `"a\"b\nc"`},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
		{float32(math.NaN()), "null"},
	}
	for _, tc := range cases {
		got, err := jsonify.Stringify(ctx, tc.in)
		if err != nil {
			t.Fatalf("Stringify(%v): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Stringify(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStringify_Containers(t *testing.T) {
	ctx := context.Background()
	got, err := jsonify.Stringify(ctx, map[string]any{
		"x": 1,
		"y": []any{true, nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"x":1,"y":[true,null]}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if got, _ := jsonify.Stringify(ctx, []any{}); got != "[]" {
		t.Fatalf("empty array: got %q", got)
	}
	if got, _ := jsonify.Stringify(ctx, map[string]any{}); got != "{}" {
		t.Fatalf("empty object: got %q", got)
	}
}

func TestStringify_MapKeysSorted(t *testing.T) {
	ctx := context.Background()
	got, err := jsonify.Stringify(ctx, map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"a":1,"b":2,"c":3}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringify_MembersPreserveOrder(t *testing.T) {
	ctx := context.Background()
	got, err := jsonify.Stringify(ctx, jsonify.Members{
		{Key: "z", Value: 1},
		{Key: "a", Value: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"z":1,"a":2}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringify_AbsentValues(t *testing.T) {
	ctx := context.Background()

	// absent at root serializes to nothing
	if got, err := jsonify.Stringify(ctx, jsonify.Undefined); err != nil || got != "" {
		t.Fatalf("undefined root: got %q, err %v", got, err)
	}
	if got, err := jsonify.Stringify(ctx, func() {}); err != nil || got != "" {
		t.Fatalf("func root: got %q, err %v", got, err)
	}

	// inside arrays absent maps to null, positions are never dropped
	got, err := jsonify.Stringify(ctx, []any{1, jsonify.Undefined, func() {}, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `[1,null,null,2]`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// inside objects absent members are omitted entirely
	got, err = jsonify.Stringify(ctx, map[string]any{"a": 1, "b": jsonify.Undefined, "c": func() {}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"a":1}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

type hooked struct {
	Ignored string
}

func (hooked) JSONValue() any {
	return map[string]any{"a": 1, "b": 2}
}

type hookedChain struct{}

// JSONValue returns a value that itself implements the hook; the result must
// be serialized as-is without re-triggering.
func (hookedChain) JSONValue() any { return tagged{X: 5} }

type tagged struct {
	X int `json:"x"`
}

func (tagged) JSONValue() any { return "should not fire on a hook result" }

func TestStringify_JSONValuer(t *testing.T) {
	ctx := context.Background()
	got, err := jsonify.Stringify(ctx, hooked{Ignored: "zzz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"a":1,"b":2}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringify_JSONValuer_NotReappliedToResult(t *testing.T) {
	ctx := context.Background()
	got, err := jsonify.Stringify(ctx, hookedChain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"x":5}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringify_StructTags(t *testing.T) {
	ctx := context.Background()
	type Inner struct {
		N int `json:"n"`
	}
	type Base struct {
		ID string `json:"id"`
	}
	type Rec struct {
		Base
		Name   string `json:"name"`
		Omit   string `json:"omit,omitempty"`
		Hidden string `json:"-"`
		Plain  int
		In     Inner `json:"in"`
	}
	got, err := jsonify.Stringify(ctx, Rec{
		Base:   Base{ID: "r1"},
		Name:   "x",
		Hidden: "secret",
		Plain:  7,
		In:     Inner{N: 9},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"id":"r1","name":"x","Plain":7,"in":{"n":9}}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringify_Indent(t *testing.T) {
	ctx := context.Background()
	got, err := jsonify.Stringify(ctx, map[string]any{
		"a": 1,
		"b": []any{true},
	}, jsonify.EncodeOpt{Indent: "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		`{`,
		`  "a": 1,`,
		`  "b": [`,
		`    true`,
		`  ]`,
		`}`,
	}, "\n")
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	// empty containers stay compact
	got, err = jsonify.Stringify(ctx, []any{}, jsonify.EncodeOpt{Indent: "  "})
	if err != nil || got != "[]" {
		t.Fatalf("empty array with indent: got %q, err %v", got, err)
	}
}

func TestStringify_Idempotent(t *testing.T) {
	ctx := context.Background()
	mk := func() any {
		return map[string]any{"a": []any{1, "x", nil}, "b": map[string]any{"c": true}}
	}
	first, err := jsonify.Stringify(ctx, mk())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := jsonify.Stringify(ctx, mk())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("outputs differ: %q vs %q", first, second)
	}
}
