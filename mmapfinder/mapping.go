package mmapfinder

import (
	"fmt"
	"os"
	"sync/atomic"
)

// AccessPattern provides hints to the kernel about how a mapping is read.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be read front to back, which is what find_all does.
	AccessSequential
	// AccessRandom expects scattered reads, e.g. when inspecting context around matches.
	AccessRandom
	// AccessWillNeed asks the kernel to read ahead the whole mapping.
	AccessWillNeed
)

// mapping owns a read-only view of a file. Regions that were handed in by the
// caller have no unmap function and are never released by us.
type mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

func mapFile(path string) (*mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMap, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMap, err)
	}

	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("%w: invalid file size %d for %s", ErrMap, size, path)
	}
	if size == 0 {
		// mmap(2) refuses zero length mappings, an empty file is an empty haystack
		return &mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMap, path, err)
	}

	return &mapping{data: data, unmap: unmap}, nil
}

func (m *mapping) bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

func (m *mapping) advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 || m.unmap == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// close unmaps the memory. It is idempotent.
func (m *mapping) close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}
