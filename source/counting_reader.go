package source

import "io"

// CountingReader counts the bytes read through it.
type CountingReader struct {
	r     io.Reader
	count uint64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// Read reads from the wrapped reader. Bytes returned together with an error
// are counted as well.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.count += uint64(n)
	}
	return n, err
}

// Reset switches to r and zeroes the count.
func (c *CountingReader) Reset(r io.Reader) {
	c.r = r
	c.count = 0
}

// Count returns the number of bytes read so far.
func (c *CountingReader) Count() uint64 {
	return c.count
}
