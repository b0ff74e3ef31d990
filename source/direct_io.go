package source

import (
	"io"
	"os"

	"github.com/ncw/directio"
)

// DirectIOFactory bypasses the page cache with O_DIRECT. Reads always fill
// whole aligned blocks, so the file offset stays aligned until the end.
type DirectIOFactory struct{}

func (DirectIOFactory) Open(path string, bufSize int) (io.ReadCloser, error) {
	f, err := directio.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}

	return newCountingReadCloser(&directReader{file: f, block: directio.AlignedBlock(alignedSize(bufSize))}, f), nil
}

// alignedSize rounds size up to a positive multiple of directio.BlockSize.
func alignedSize(size int) int {
	if size <= 0 {
		return directio.BlockSize
	}
	return (size + directio.BlockSize - 1) / directio.BlockSize * directio.BlockSize
}

type directReader struct {
	file       *os.File
	block      []byte
	start, end int
	err        error
}

func (d *directReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if d.start == d.end {
		if d.err != nil {
			return 0, d.err
		}

		n, err := d.file.Read(d.block)
		// a short read can only happen at the end of the file
		if err == nil && n < len(d.block) {
			err = io.EOF
		}
		d.start, d.end, d.err = 0, n, err
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			d.err = err
			return 0, err
		}
	}

	n := copy(p, d.block[d.start:d.end])
	d.start += n
	return n, nil
}

// IsDirectIOAvailable tests whether DirectIO is available (on the OS / filesystem).
// It will return (true, nil) if that's the case, if it's not available it will be (false, nil).
// Any other error will be indicated by the error (either true/false).
func IsDirectIOAvailable() (available bool, err error) {
	// the only way to check is to create a tmp file and open it with the DirectIO flags
	tmpFile, err := os.CreateTemp("", "directio-test")
	if err != nil {
		return
	}

	err = tmpFile.Close()
	if err != nil {
		return
	}

	defer func(name string) {
		_ = os.Remove(name)
	}(tmpFile.Name())

	f, openErr := directio.OpenFile(tmpFile.Name(), os.O_RDONLY, 0)
	if openErr != nil {
		// usually EINVAL, the filesystem (e.g. tmpfs) rejects O_DIRECT
		return false, nil
	}

	available = true
	err = f.Close()
	return
}
