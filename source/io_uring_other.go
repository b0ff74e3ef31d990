//go:build !linux

package source

import "io"

// DefaultRingEntries is the submission queue size of the io_uring factory.
const DefaultRingEntries = 8

// IOUringFactory is only functional on linux.
type IOUringFactory struct{}

func NewIOUringFactory(uint32) *IOUringFactory {
	return &IOUringFactory{}
}

func (f *IOUringFactory) Open(string, int) (io.ReadCloser, error) {
	return nil, ErrUnsupported
}

// IsIOUringAvailable always reports false outside of linux.
func IsIOUringAvailable() (bool, error) {
	return false, nil
}
