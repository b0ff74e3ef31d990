package search

// failureTable returns, for every prefix length i+1 of needle, the length of
// its longest proper prefix that is also a suffix.
func failureTable(needle []byte) []int {
	prefix := make([]int, len(needle))
	k := 0
	for i := 1; i < len(needle); i++ {
		for k > 0 && needle[i] != needle[k] {
			k = prefix[k-1]
		}
		if needle[i] == needle[k] {
			k++
		}
		prefix[i] = k
	}
	return prefix
}

// KnuthMorrisPratt scans left to right and never moves backwards in the
// window, which bounds the work at O(len(window) + len(needle)).
func KnuthMorrisPratt(window, needle []byte) int {
	if len(needle) == 0 || len(window) < len(needle) {
		return -1
	}
	return kmp(window, needle, failureTable(needle))
}

func kmp(window, needle []byte, prefix []int) int {
	m := len(needle)
	n := len(window)
	if m == 0 || n < m {
		return -1
	}

	k := 0
	for i := 0; i < n; i++ {
		for k > 0 && window[i] != needle[k] {
			k = prefix[k-1]
		}
		if window[i] == needle[k] {
			k++
		}
		if k == m {
			return i - m + 1
		}
	}
	return -1
}
