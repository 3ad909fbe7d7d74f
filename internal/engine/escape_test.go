package engine

import (
	"encoding/json"
	"testing"
)

func stdScalar(dst []byte, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

func TestEscaper_StripsDelimitingQuotes(t *testing.T) {
	var e escaper
	got, err := e.escape(stdScalar, []byte(`a"b`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `a\"b` {
		t.Fatalf("got %q", got)
	}
}

func TestEscaper_CarriesPartialRune(t *testing.T) {
	var e escaper
	raw := []byte("é") // 0xC3 0xA9

	got, err := e.escape(stdScalar, raw[:1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected held-back output, got %q", got)
	}

	got, err = e.escape(stdScalar, raw[1:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "é" {
		t.Fatalf("got %q", got)
	}

	tail, err := e.flush(stdScalar)
	if err != nil || len(tail) != 0 {
		t.Fatalf("flush: got %q, err %v", tail, err)
	}
}

func TestTrailingPartial(t *testing.T) {
	cases := []struct {
		in   []byte
		want int
	}{
		{[]byte("abc"), 0},
		{[]byte("é"), 0},
		{[]byte{0xC3}, 1},
		{[]byte{'a', 0xE2, 0x82}, 2},     // first two bytes of €
		{[]byte{0xF0, 0x9F, 0x98}, 3},    // three bytes of a 4-byte rune
		{[]byte{0x80, 0x80, 0x80, 0x80}, 0}, // malformed, left to the driver
	}
	for _, tc := range cases {
		if got := trailingPartial(tc.in); got != tc.want {
			t.Fatalf("trailingPartial(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
