//go:build !unix

package mmapfinder

import (
	"io"
	"os"
)

// osMap reads the whole file on platforms without mmap(2). The region is
// still fully resident, so the finder semantics are unchanged.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func([]byte) error { return nil }, nil
}

func osAdvise([]byte, AccessPattern) error {
	return nil
}
