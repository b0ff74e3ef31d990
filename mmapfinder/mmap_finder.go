package mmapfinder

import (
	"iter"

	"github.com/thomasjungblut/go-needle/search"
)

// MMapFinder searches a fully resident region, usually a memory mapped file,
// without any intermediate buffer: the matchers run directly on the mapped
// bytes. The mapping lives until Close; iterators and slices obtained from
// the finder must not be used after that. Iterators notice Close and
// return ErrClosed, a slice from Bytes or Context does not.
type MMapFinder struct {
	region *mapping
	needle []byte
}

// Open maps the file at path read-only and binds it to needle.
func Open(path string, needle []byte) (*MMapFinder, error) {
	if len(needle) == 0 {
		return nil, ErrEmptyNeedle
	}

	region, err := mapFile(path)
	if err != nil {
		return nil, err
	}

	return &MMapFinder{region: region, needle: clone(needle)}, nil
}

// NewFromBytes binds needle to a region that is already resident, for example
// one mapped by the caller. The region is not copied and Close does not
// release it.
func NewFromBytes(region []byte, needle []byte) (*MMapFinder, error) {
	if len(needle) == 0 {
		return nil, ErrEmptyNeedle
	}

	return &MMapFinder{region: &mapping{data: region}, needle: clone(needle)}, nil
}

func clone(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// FindFirst returns the offset of the first match, or -1.
func (f *MMapFinder) FindFirst(algo search.Algorithm) int {
	return search.Index(algo, f.region.bytes(), f.needle)
}

// FindAll returns a fresh iterator over all matches, overlapping ones
// included. Every call starts again at offset zero.
func (f *MMapFinder) FindAll(algo search.Algorithm) *Iterator {
	return newIterator(f.region, f.region.bytes(), f.needle, algo)
}

// All is FindAll as a range-over-func sequence.
func (f *MMapFinder) All(algo search.Algorithm) iter.Seq[int] {
	return func(yield func(int) bool) {
		it := f.FindAll(algo)
		for {
			pos, err := it.Next()
			if err != nil || !yield(pos) {
				return
			}
		}
	}
}

// Collect returns all match offsets.
func (f *MMapFinder) Collect(algo search.Algorithm) []int {
	return f.FindAll(algo).Collect()
}

// Bytes exposes the mapped haystack read-only, e.g. to look at the context of
// a match. It returns nil after Close.
func (f *MMapFinder) Bytes() []byte {
	return f.region.bytes()
}

// Context returns up to radius bytes on either side of the match at pos,
// clamped to the region.
func (f *MMapFinder) Context(pos, radius int) []byte {
	data := f.region.bytes()
	if pos < 0 || pos > len(data) || radius < 0 {
		return nil
	}
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + len(f.needle) + radius
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}

// Len returns the size of the haystack in bytes.
func (f *MMapFinder) Len() int {
	return len(f.region.bytes())
}

// Needle returns the needle this finder searches for.
func (f *MMapFinder) Needle() []byte {
	return f.needle
}

// Advise passes an access pattern hint to the kernel. It is a no-op for
// regions handed in through NewFromBytes.
func (f *MMapFinder) Advise(pattern AccessPattern) error {
	return f.region.advise(pattern)
}

// Close unmaps the file. It is idempotent.
func (f *MMapFinder) Close() error {
	return f.region.close()
}

// Iterator walks the matches of one FindAll call.
type Iterator struct {
	region   *mapping
	haystack []byte
	needle   []byte
	match    search.Searcher
	pos      int
}

func newIterator(region *mapping, haystack, needle []byte, algo search.Algorithm) *Iterator {
	return &Iterator{region: region, haystack: haystack, needle: needle, match: algo.Prepare(needle)}
}

// Next returns the next match offset, or Done once the rest of the region is
// shorter than the needle. It returns ErrClosed once the finder that created
// the iterator was closed.
func (it *Iterator) Next() (int, error) {
	if it.region != nil && it.region.closed.Load() {
		it.haystack = nil
		return 0, ErrClosed
	}
	if len(it.haystack)-it.pos < len(it.needle) {
		return 0, Done
	}

	i := it.match(it.haystack[it.pos:])
	if i < 0 {
		it.pos = len(it.haystack)
		return 0, Done
	}

	pos := it.pos + i
	it.pos = pos + 1
	return pos, nil
}

// Collect drains the iterator.
func (it *Iterator) Collect() []int {
	var positions []int
	for {
		pos, err := it.Next()
		if err != nil {
			return positions
		}
		positions = append(positions, pos)
	}
}

// FindInFile maps path, collects every match and unmaps it again.
func FindInFile(path string, needle []byte, algo search.Algorithm) ([]int, error) {
	f, err := Open(path, needle)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.Advise(AccessSequential); err != nil {
		return nil, err
	}
	return f.Collect(algo), nil
}

// FindInBytes iterates the matches of needle in an already resident region
// without taking ownership of it.
func FindInBytes(region, needle []byte, algo search.Algorithm) (*Iterator, error) {
	if len(needle) == 0 {
		return nil, ErrEmptyNeedle
	}
	return newIterator(nil, region, clone(needle), algo), nil
}
