package search

// BruteForce compares the needle at every start offset of the window, left to
// right. It is the reference every other strategy is tested against.
func BruteForce(window, needle []byte) int {
	m := len(needle)
	if m == 0 || len(window) < m {
		return -1
	}

	last := len(window) - m
	for i := 0; i <= last; i++ {
		j := 0
		for j < m && window[i+j] == needle[j] {
			j++
		}
		if j == m {
			return i
		}
	}
	return -1
}
