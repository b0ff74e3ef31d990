package source

import (
	"bufio"
	"io"
	"os"
)

// BufferedFactory reads through the page cache with a bufio.Reader.
type BufferedFactory struct{}

func (BufferedFactory) Open(path string, bufSize int) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if bufSize <= 0 {
		bufSize = 4096
	}
	return newCountingReadCloser(bufio.NewReaderSize(f, bufSize), f), nil
}
