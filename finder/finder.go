package finder

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/thomasjungblut/go-needle/search"
)

// maxConsecutiveEmptyReads bounds how often a reader may return (0, nil)
// before the finder gives up with io.ErrNoProgress, same as bufio.
const maxConsecutiveEmptyReads = 100

var bufferPool = new(pool.BufferPool)

type state int

const (
	stateFilling state = iota
	stateScanning
	stateExhausted
)

// Stats counts the work a Finder has done so far.
type Stats struct {
	Reads       uint64 // calls into the underlying reader
	BytesRead   uint64 // bytes returned by the reader
	Compactions uint64 // times a carried tail was moved to the buffer start
	Matches     uint64 // positions returned by Next
}

// Finder searches an io.Reader for every occurrence of a needle while holding
// at most one fixed size buffer of the stream in memory.
//
// The buffer is indexed by three values: base is the absolute stream offset of
// buf[0], cursor is the first start offset that was not ruled out yet and fill
// is the number of valid bytes. Before every read the unscanned tail
// buf[cursor:fill] (never more than len(needle)-1 bytes) is moved to the front,
// so a match that straddles two reads is always fully resident.
//
// A Finder is not safe for concurrent use.
type Finder struct {
	reader io.Reader
	needle []byte
	algo   search.Algorithm
	match  search.Searcher
	logger *slog.Logger

	buf      []byte
	capacity int
	cursor   int
	fill     int
	base     int64
	state    state

	// error that came back together with data, returned on the next refill
	pendingErr error

	stats Stats
}

// New creates a Finder over r for the given needle. Without options it uses
// search.Naive and DefaultBufferSize; the needle is copied.
func New(r io.Reader, needle []byte, opts ...Option) (*Finder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(needle); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	owned := make([]byte, len(needle))
	copy(owned, needle)

	capacity := cfg.capacity(len(needle))
	f := &Finder{
		reader:   r,
		needle:   owned,
		algo:     cfg.algorithm,
		match:    cfg.algorithm.Prepare(owned),
		logger:   logger,
		buf:      bufferPool.Get(capacity),
		capacity: capacity,
		state:    stateFilling,
	}

	f.logger.Debug("finder created",
		slog.String("algorithm", f.algo.String()),
		slog.Int("needle_len", len(f.needle)),
		slog.Int("capacity", len(f.buf)))

	return f, nil
}

// NewWithBufferSize creates a Finder that reads at most bufferSize bytes per
// refill. bufferSize must be at least len(needle).
func NewWithBufferSize(r io.Reader, needle []byte, bufferSize int, opts ...Option) (*Finder, error) {
	return New(r, needle, append([]Option{WithBufferSize(bufferSize)}, opts...)...)
}

// NewWithAlgorithm creates a Finder using algo and the default buffer size.
func NewWithAlgorithm(r io.Reader, needle []byte, algo search.Algorithm) (*Finder, error) {
	return New(r, needle, WithAlgorithm(algo))
}

// Next returns the absolute offset of the next match. It returns Done once
// the reader is drained. A read error is returned once, after all matches in
// the data read before it; the finder is exhausted afterwards.
func (f *Finder) Next() (int64, error) {
	m := len(f.needle)
	for {
		switch f.state {
		case stateExhausted:
			return 0, Done

		case stateFilling:
			if err := f.refill(); err != nil {
				f.exhaust(err)
				if errors.Is(err, io.EOF) {
					return 0, Done
				}
				return 0, err
			}

		case stateScanning:
			window := f.buf[f.cursor:f.fill]
			if len(window) < m {
				f.state = stateFilling
				continue
			}

			if i := f.match(window); i >= 0 {
				pos := f.cursor + i
				// resume right after the match start, matches may overlap
				f.cursor = pos + 1
				f.stats.Matches++
				return f.base + int64(pos), nil
			}

			// every start offset before fill-m+1 is ruled out, the rest is the
			// tail a boundary straddling match could begin in
			f.cursor = f.fill - m + 1
			f.state = stateFilling
		}
	}
}

// refill moves the unscanned tail to the start of the buffer and appends the
// next read after it.
func (f *Finder) refill() error {
	if f.cursor > 0 {
		tail := f.fill - f.cursor
		if tail > 0 {
			copy(f.buf, f.buf[f.cursor:f.fill])
			f.stats.Compactions++
		}
		f.base += int64(f.cursor)
		f.cursor = 0
		f.fill = tail
	}

	if f.pendingErr != nil {
		err := f.pendingErr
		f.pendingErr = nil
		return err
	}

	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := f.reader.Read(f.buf[f.fill:])
		f.stats.Reads++
		if n < 0 || n > len(f.buf)-f.fill {
			return errInvalidRead
		}

		if n > 0 {
			f.fill += n
			f.stats.BytesRead += uint64(n)
			f.pendingErr = err
			f.state = stateScanning
			return nil
		}

		if err != nil {
			return err
		}
	}

	return io.ErrNoProgress
}

var errInvalidRead = errors.New("finder: reader returned invalid count from Read")

func (f *Finder) exhaust(err error) {
	f.state = stateExhausted
	if !f.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.Int64("offset", f.Offset()),
		slog.Uint64("reads", f.stats.Reads),
		slog.Uint64("compactions", f.stats.Compactions),
		slog.Uint64("matches", f.stats.Matches),
	}
	if err != nil && !errors.Is(err, io.EOF) {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	f.logger.LogAttrs(context.Background(), slog.LevelDebug, "finder exhausted", attrs...)
}

// All returns an iterator over the remaining matches. Iteration ends after
// the reader is drained or after the first error was yielded.
func (f *Finder) All() iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		for {
			pos, err := f.Next()
			if errors.Is(err, Done) {
				return
			}
			if !yield(pos, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the finder and returns all remaining match offsets. On a read
// error it returns the offsets found so far together with the error.
func (f *Finder) Collect() ([]int64, error) {
	var positions []int64
	for pos, err := range f.All() {
		if err != nil {
			return positions, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// Reset makes the finder search r from offset zero with the same needle,
// algorithm and buffer.
func (f *Finder) Reset(r io.Reader) {
	if f.buf == nil {
		f.buf = bufferPool.Get(f.capacity)
	}
	f.reader = r
	f.cursor = 0
	f.fill = 0
	f.base = 0
	f.pendingErr = nil
	f.stats = Stats{}
	f.state = stateFilling
}

// Close releases the buffer back to the pool. The finder returns Done from
// then on; Reset makes it usable again.
func (f *Finder) Close() error {
	if f.buf != nil {
		bufferPool.Put(f.buf)
		f.buf = nil
	}
	f.state = stateExhausted
	return nil
}

// Offset returns the absolute stream offset of the first byte that may still
// start a match.
func (f *Finder) Offset() int64 {
	return f.base + int64(f.cursor)
}

// Needle returns the needle this finder searches for.
func (f *Finder) Needle() []byte {
	return f.needle
}

// Algorithm returns the matcher in use.
func (f *Finder) Algorithm() search.Algorithm {
	return f.algo
}

// BufferCapacity returns the size of the internal buffer in bytes.
func (f *Finder) BufferCapacity() int {
	return f.capacity
}

// Stats returns counters about the work done so far.
func (f *Finder) Stats() Stats {
	return f.stats
}
