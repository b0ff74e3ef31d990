package source

import (
	"io"

	"golang.org/x/exp/mmap"
)

// MMapFactory maps the file and reads it sequentially out of the mapping.
// The zero-copy finder in package mmapfinder avoids even that copy; this
// factory exists so the streaming finder can be benchmarked on mapped memory.
type MMapFactory struct{}

func (MMapFactory) Open(path string, _ int) (io.ReadCloser, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	return newCountingReadCloser(io.NewSectionReader(ra, 0, int64(ra.Len())), ra), nil
}
