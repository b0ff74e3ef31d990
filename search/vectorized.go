package search

import (
	"bytes"
	"math/bits"
)

// Vectorized looks for the needle's first byte one lane at a time, eight bytes
// per word, and only verifies the full needle at candidate positions. The lane
// width is picked from the running hardware, see LaneWidth.
func Vectorized(window, needle []byte) int {
	m := len(needle)
	if m == 0 || len(window) < m {
		return -1
	}
	return vectorized(window, needle, laneWidth)
}

// vectorized runs the lane scan with an explicit lane width, which must be a
// multiple of eight.
func vectorized(window, needle []byte, lane int) int {
	m := len(needle)
	// candidate start offsets are [0, starts)
	starts := len(window) - m + 1
	first := broadcast(needle[0])
	rest := needle[1:]

	i := 0
	for ; i+lane <= starts; i += lane {
		for w := i; w < i+lane; w += 8 {
			mask := equalBytes(load(window[w:]), first)
			for mask != 0 {
				pos := w + bits.TrailingZeros64(mask)>>3
				if m == 1 || bytes.Equal(window[pos+1:pos+m], rest) {
					return pos
				}
				mask &= mask - 1
			}
		}
	}

	// tail shorter than a lane
	for ; i < starts; i++ {
		if window[i] == needle[0] && bytes.Equal(window[i+1:i+m], rest) {
			return i
		}
	}
	return -1
}

// VectorizedArch handles needles of up to 16 bytes with a single 128-bit
// compare per start offset: the needle is zero padded into two words, each
// 16-byte window is compared byte for byte and the match is accepted when the
// low len(needle) bits of the equality mask are set. Longer needles, and CPUs
// without a 128-bit unit, use Vectorized.
func VectorizedArch(window, needle []byte) int {
	m := len(needle)
	if m == 0 || len(window) < m {
		return -1
	}
	if m > archMaxNeedle || !hasArch {
		return Vectorized(window, needle)
	}
	return vectorized128(window, needle)
}

func vectorized128(window, needle []byte) int {
	m := len(needle)
	n := len(window)

	var padded [archMaxNeedle]byte
	copy(padded[:], needle)
	nlo, nhi := load(padded[:8]), load(padded[8:])
	want := uint32(1)<<m - 1

	i := 0
	for ; i+archMaxNeedle <= n; i++ {
		mask := movemask(equalBytes(load(window[i:]), nlo))
		if m > 8 {
			mask |= movemask(equalBytes(load(window[i+8:]), nhi)) << 8
		}
		if mask&want == want {
			return i
		}
	}

	for ; i+m <= n; i++ {
		if bytes.Equal(window[i:i+m], needle) {
			return i
		}
	}
	return -1
}
