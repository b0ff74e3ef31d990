package search

// shiftTable builds the Horspool bad-character table. Every byte defaults to a
// shift of len(needle); bytes of the needle except the last get the distance
// from their right-most occurrence to the end of the needle.
func shiftTable(needle []byte) *[256]int {
	m := len(needle)
	var shift [256]int
	for i := range shift {
		shift[i] = m
	}
	for i := 0; i < m-1; i++ {
		shift[needle[i]] = m - 1 - i
	}
	return &shift
}

// BoyerMooreHorspool compares right to left inside each candidate window and
// skips ahead by the shift of the byte aligned with the needle's last position.
func BoyerMooreHorspool(window, needle []byte) int {
	if len(needle) == 0 || len(window) < len(needle) {
		return -1
	}
	return horspool(window, needle, shiftTable(needle))
}

func horspool(window, needle []byte, shift *[256]int) int {
	m := len(needle)
	n := len(window)
	if m == 0 || n < m {
		return -1
	}

	i := 0
	for i+m <= n {
		j := m - 1
		for j >= 0 && window[i+j] == needle[j] {
			j--
		}
		if j < 0 {
			return i
		}
		i += shift[window[i+m-1]]
	}
	return -1
}
