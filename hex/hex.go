// Package hex turns needles given as hexadecimal text into bytes, e.g.
// "DEADbeef" into {0xde, 0xad, 0xbe, 0xef}.
package hex

import (
	"errors"
	"fmt"
)

// ErrOddLength is returned when the input has an odd number of digits.
var ErrOddLength = errors.New("hex: odd length input")

// InvalidCharError reports a byte that is not a hex digit.
type InvalidCharError struct {
	Char  byte
	Index int
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("hex: invalid character %q at index %d", e.Char, e.Index)
}

// Decode parses pairs of case-insensitive hex digits. An empty string decodes
// to an empty, non-nil slice.
func Decode(s string) ([]byte, error) {
	return DecodeBytes([]byte(s))
}

// DecodeBytes is Decode for byte input.
func DecodeBytes(src []byte) ([]byte, error) {
	if len(src)%2 != 0 {
		return nil, fmt.Errorf("%w: %d digits", ErrOddLength, len(src))
	}

	dst := make([]byte, len(src)/2)
	for i := range dst {
		hi, ok := fromHexChar(src[2*i])
		if !ok {
			return nil, &InvalidCharError{Char: src[2*i], Index: 2 * i}
		}
		lo, ok := fromHexChar(src[2*i+1])
		if !ok {
			return nil, &InvalidCharError{Char: src[2*i+1], Index: 2*i + 1}
		}
		dst[i] = hi<<4 | lo
	}
	return dst, nil
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
