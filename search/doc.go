// Package search holds the single-window matchers: every function takes a
// window and a needle and returns the first offset where the needle occurs in
// full, or -1. They are pure and keep no state between calls, so the same
// needle can be matched against arbitrary disjoint windows.
//
// The strategies are interchangeable and must agree on every input:
//
//   - BruteForce: byte by byte at every start offset, the reference
//   - BoyerMooreHorspool: bad-character skip table, right to left compares
//   - KnuthMorrisPratt: failure table, never backtracks in the window
//   - Vectorized: first-byte scan over hardware sized lanes, then verification
//   - VectorizedArch: 128-bit equality mask for needles up to 16 bytes
//
// The vector matchers are written with SWAR (eight bytes per uint64) so the
// same code runs everywhere; golang.org/x/sys/cpu only decides the lane width
// and whether the 128-bit path is taken. Setting NEEDLE_SIMD=generic pins the
// baseline.
package search
