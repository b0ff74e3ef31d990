//go:build linux

package source

import (
	"io"
	"os"

	"github.com/godzie44/go-uring/uring"
)

// DefaultRingEntries is the submission queue size of the io_uring factory.
const DefaultRingEntries = 8

// IOUringFactory reads files with positional reads submitted through an io_uring.
type IOUringFactory struct {
	numRingEntries uint32
	opts           []uring.SetupOption
}

func NewIOUringFactory(numRingEntries uint32, opts ...uring.SetupOption) *IOUringFactory {
	return &IOUringFactory{
		numRingEntries: numRingEntries,
		opts:           opts,
	}
}

func (f *IOUringFactory) Open(path string, _ int) (io.ReadCloser, error) {
	ring, err := uring.New(f.numRingEntries, f.opts...)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		_ = ring.Close()
		return nil, err
	}

	r := &ringReader{ring: ring, file: file}
	return newCountingReadCloser(r, r), nil
}

// ringReader submits one read at a time and waits for its completion.
type ringReader struct {
	ring   *uring.Ring
	file   *os.File
	offset uint64
	eof    bool
}

func (r *ringReader) Read(p []byte) (int, error) {
	if r.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	err := r.ring.QueueSQE(uring.Read(r.file.Fd(), p, r.offset), 0, 0)
	if err != nil {
		return 0, err
	}

	cqe, err := r.ring.SubmitAndWaitCQEvents(1)
	if err != nil {
		return 0, err
	}

	res := cqe.Res
	r.ring.SeenCQE(cqe)

	err = cqe.Error()
	if err != nil {
		return 0, err
	}

	if res == 0 {
		r.eof = true
		return 0, io.EOF
	}

	r.offset += uint64(res)
	return int(res), nil
}

func (r *ringReader) Close() error {
	ringErr := r.ring.Close()
	fileErr := r.file.Close()
	if ringErr != nil {
		return ringErr
	}
	return fileErr
}

// IsIOUringAvailable tests whether io_uring is supported by the kernel.
// It will return (true, nil) if that's the case, if it's not available it will be (false, nil).
// Any other error will be indicated by the error (either true/false).
func IsIOUringAvailable() (available bool, err error) {
	ring, err := uring.New(1)
	if err != nil {
		// seccomp or an old kernel, both just mean "not here"
		return false, nil
	}

	return true, ring.Close()
}
