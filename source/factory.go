package source

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrUnknownIO is returned when parsing an unsupported I/O mode.
	ErrUnknownIO = errors.New("unknown io mode")

	// ErrUnsupported is returned when an I/O mode is not available on this platform.
	ErrUnsupported = errors.New("io mode not supported on this platform")
)

// Factory opens a haystack file for sequential reading. bufSize is the
// preferred read size, implementations may round it up to their alignment.
type Factory interface {
	Open(path string, bufSize int) (io.ReadCloser, error)
}

// IO selects how haystack files are read.
type IO int

const (
	Buffered IO = iota
	Direct
	IOUring
	MMap
)

func (i IO) String() string {
	switch i {
	case Buffered:
		return "buffered"
	case Direct:
		return "direct"
	case IOUring:
		return "uring"
	case MMap:
		return "mmap"
	default:
		return fmt.Sprintf("IO(%d)", int(i))
	}
}

// ParseIO parses the names returned by IO.String.
func ParseIO(s string) (IO, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buffered", "":
		return Buffered, nil
	case "direct", "directio":
		return Direct, nil
	case "uring", "iouring", "io_uring":
		return IOUring, nil
	case "mmap":
		return MMap, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownIO, s)
	}
}

// NewFactory returns the factory for the given mode.
func NewFactory(mode IO) (Factory, error) {
	switch mode {
	case Buffered:
		return BufferedFactory{}, nil
	case Direct:
		return DirectIOFactory{}, nil
	case IOUring:
		return NewIOUringFactory(DefaultRingEntries), nil
	case MMap:
		return MMapFactory{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownIO, int(mode))
	}
}

// Counter is implemented by every reader a Factory returns.
type Counter interface {
	Count() uint64
}

// countingReadCloser counts what was read from a file and closes it.
type countingReadCloser struct {
	*CountingReader
	io.Closer
}

func newCountingReadCloser(r io.Reader, c io.Closer) *countingReadCloser {
	return &countingReadCloser{CountingReader: NewCountingReader(r), Closer: c}
}
