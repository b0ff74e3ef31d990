package mmapfinder

import (
	"errors"

	"github.com/thomasjungblut/go-needle/finder"
)

var (
	// ErrEmptyNeedle is returned when the needle has no bytes. It is the same
	// value as finder.ErrEmptyNeedle.
	ErrEmptyNeedle = finder.ErrEmptyNeedle

	// ErrMap wraps every failure to open or map the haystack file.
	ErrMap = errors.New("mmap: cannot map haystack")

	// ErrClosed is returned when using a finder whose mapping was released.
	ErrClosed = errors.New("mmap: mapping is closed")

	// Done indicates an iterator has returned all matches, same value as finder.Done.
	Done = finder.Done
)
