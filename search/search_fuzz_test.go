package search_test

import (
	"testing"

	"github.com/thomasjungblut/go-needle/search"
)

func FuzzMatchersAgree(f *testing.F) {
	f.Add([]byte("this is a test string"), []byte("test"))
	f.Add([]byte("aaaaa"), []byte("aa"))
	f.Add(make([]byte, 100), []byte{0, 0, 0})
	f.Add([]byte("ababab"), []byte("abab"))

	f.Fuzz(func(t *testing.T, window, needle []byte) {
		expected := search.BruteForce(window, needle)
		for _, algo := range search.Algorithms {
			if got := search.Index(algo, window, needle); got != expected {
				t.Fatalf("%s returned %d, brute force %d (window %q, needle %q)", algo, got, expected, window, needle)
			}
		}
	})
}
