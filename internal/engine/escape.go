package engine

// escaper turns raw text-source chunks into JSON string-literal content. The
// surrounding quotes belong to the generator, so only the inner escaped text
// is returned. A trailing partial UTF-8 rune is held back so escaping never
// sees a rune split across chunk boundaries.
type escaper struct {
	carry []byte
}

func (e *escaper) escape(scalar ScalarFunc, chunk []byte) ([]byte, error) {
	data := chunk
	if len(e.carry) > 0 {
		data = append(e.carry, chunk...)
		e.carry = nil
	}
	if n := trailingPartial(data); n > 0 {
		e.carry = append([]byte(nil), data[len(data)-n:]...)
		data = data[:len(data)-n]
	}
	return escapeInner(scalar, data)
}

// flush escapes whatever carry remains at end of stream. Invalid bytes fall
// through to the driver, which substitutes U+FFFD like encoding/json.
func (e *escaper) flush(scalar ScalarFunc) ([]byte, error) {
	if len(e.carry) == 0 {
		return nil, nil
	}
	data := e.carry
	e.carry = nil
	return escapeInner(scalar, data)
}

func escapeInner(scalar ScalarFunc, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	enc, err := scalar(nil, string(data))
	if err != nil {
		return nil, err
	}
	if len(enc) < 2 {
		return nil, nil
	}
	return enc[1 : len(enc)-1], nil
}

// trailingPartial reports how many bytes at the end of b form an incomplete
// UTF-8 sequence. Malformed tails report zero and are left to the driver.
func trailingPartial(b []byte) int {
	n := len(b)
	for i := 1; i <= 4 && i <= n; i++ {
		c := b[n-i]
		if c < 0x80 {
			return 0
		}
		if c&0xC0 == 0xC0 { // lead byte
			want := 1
			switch {
			case c&0xE0 == 0xC0:
				want = 2
			case c&0xF0 == 0xE0:
				want = 3
			case c&0xF8 == 0xF0:
				want = 4
			}
			if i < want {
				return i
			}
			return 0
		}
	}
	return 0
}
