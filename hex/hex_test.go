package hex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in       string
		expected []byte
	}{
		{"", []byte{}},
		{"00", []byte{0}},
		{"DEADbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"48656c6c6f", []byte("Hello")},
		{"fF0a", []byte{0xff, 0x0a}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			out, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)

			out, err = DecodeBytes([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestDecodeOddLength(t *testing.T) {
	_, err := Decode("abc")
	assert.ErrorIs(t, err, ErrOddLength)
}

func TestDecodeInvalidChar(t *testing.T) {
	_, err := Decode("0g12")
	var charErr *InvalidCharError
	require.True(t, errors.As(err, &charErr))
	assert.Equal(t, byte('g'), charErr.Char)
	assert.Equal(t, 1, charErr.Index)
	assert.Equal(t, `hex: invalid character 'g' at index 1`, err.Error())

	// the length is checked before the digits
	_, err = Decode("zz1")
	assert.ErrorIs(t, err, ErrOddLength)

	_, err = Decode("0x00")
	require.True(t, errors.As(err, &charErr))
	assert.Equal(t, byte('x'), charErr.Char)
}
