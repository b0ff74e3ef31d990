package search

import (
	"fmt"
	"strings"
)

// Algorithm names one of the matching strategies. It carries no state; the
// zero value is Naive.
type Algorithm int

const (
	// never reorder, always append
	Naive Algorithm = iota
	BMH
	KMP
	SIMD
	SIMDArch
)

// Algorithms lists every strategy in declaration order.
var Algorithms = []Algorithm{Naive, BMH, KMP, SIMD, SIMDArch}

// MatchFunc returns the smallest offset at which needle occurs in window in
// full, or -1 if it does not occur.
type MatchFunc func(window, needle []byte) int

func (a Algorithm) String() string {
	switch a {
	case Naive:
		return "naive"
	case BMH:
		return "bmh"
	case KMP:
		return "kmp"
	case SIMD:
		return "simd"
	case SIMDArch:
		return "simd-arch"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// Valid reports whether a is one of the known strategies.
func (a Algorithm) Valid() bool {
	return a >= Naive && a <= SIMDArch
}

// Matcher returns the match function backing a. Unknown values resolve to Naive.
func (a Algorithm) Matcher() MatchFunc {
	switch a {
	case BMH:
		return BoyerMooreHorspool
	case KMP:
		return KnuthMorrisPratt
	case SIMD:
		return Vectorized
	case SIMDArch:
		return VectorizedArch
	default:
		return BruteForce
	}
}

// Searcher finds one fixed needle in a window, see MatchFunc.
type Searcher func(window []byte) int

// Prepare binds needle to a and builds its tables once, so repeated searches
// for the same needle do not rebuild them per call. needle must not be
// modified while the Searcher is in use.
func (a Algorithm) Prepare(needle []byte) Searcher {
	switch a {
	case BMH:
		shift := shiftTable(needle)
		return func(window []byte) int {
			return horspool(window, needle, shift)
		}
	case KMP:
		prefix := failureTable(needle)
		return func(window []byte) int {
			return kmp(window, needle, prefix)
		}
	default:
		match := a.Matcher()
		return func(window []byte) int {
			return match(window, needle)
		}
	}
}

// ParseAlgorithm maps a case-insensitive name to an Algorithm. Besides the
// String() names it accepts a couple of common aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive", "brute", "bruteforce":
		return Naive, nil
	case "bmh", "horspool":
		return BMH, nil
	case "kmp":
		return KMP, nil
	case "simd", "vector":
		return SIMD, nil
	case "simd-arch", "simdarch", "simd_x86_64", "simdx8664":
		return SIMDArch, nil
	default:
		return Naive, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Index runs the matcher selected by algo over window.
func Index(algo Algorithm, window, needle []byte) int {
	return algo.Matcher()(window, needle)
}
