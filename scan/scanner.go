package scan

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/thomasjungblut/go-needle/finder"
	"github.com/thomasjungblut/go-needle/mmapfinder"
	"github.com/thomasjungblut/go-needle/pq"
	"github.com/thomasjungblut/go-needle/search"
	"github.com/thomasjungblut/go-needle/source"
	"golang.org/x/sync/errgroup"
)

// Hit is a match in a file, or a failure to search it when Err is set. For
// failures Offset is how far the file was searched.
type Hit struct {
	Path   string
	Offset int64
	Err    error
}

// Summary counts the work of one Run.
type Summary struct {
	Files     int
	Failed    int
	Matches   uint64
	BytesRead uint64
}

// Scanner searches many files for one needle with a bounded pool of workers.
// Every file gets its own finder; finders share nothing but the needle.
type Scanner struct {
	needle    []byte
	cfg       config
	logger    *slog.Logger
	workers   int
	perWorker int
}

// New creates a Scanner. The worker count and per worker buffer size are
// derived from the memory limit with Budget.
func New(needle []byte, opts ...Option) (*Scanner, error) {
	if len(needle) == 0 {
		return nil, ErrEmptyNeedle
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers, perWorker := Budget(cfg.memoryLimit, cfg.maxWorkers)
	owned := make([]byte, len(needle))
	copy(owned, needle)

	return &Scanner{
		needle:    owned,
		cfg:       cfg,
		logger:    logger,
		workers:   workers,
		perWorker: perWorker,
	}, nil
}

// Workers returns how many files are searched concurrently at most.
func (s *Scanner) Workers() int {
	return s.workers
}

// BufferSize returns the per worker buffer budget.
func (s *Scanner) BufferSize() int {
	return s.perWorker
}

// Run searches paths and calls emit for every hit and every file that could
// not be searched. emit is never called concurrently. Unless the scanner is
// sorted, hits of different files interleave but hits of one file are in
// ascending order. A per file failure does not stop the other files; an
// error returned by emit or a cancelled ctx stops the whole run.
func (s *Scanner) Run(ctx context.Context, paths []string, emit func(Hit) error) (Summary, error) {
	var (
		mu      sync.Mutex
		summary Summary
		perFile [][]Hit
	)
	if s.cfg.sorted {
		perFile = make([][]Hit, len(paths))
	}

	deliver := func(h Hit) error {
		mu.Lock()
		defer mu.Unlock()
		return emit(h)
	}

	type job struct {
		index int
		path  string
	}

	workers := min(s.workers, max(len(paths), 1))
	jobs := make(chan job)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				out := deliver
				var hits []Hit
				if s.cfg.sorted {
					out = func(h Hit) error {
						hits = append(hits, h)
						return nil
					}
				}

				res, err := s.scanFile(gctx, w, j.path, out)

				mu.Lock()
				summary.Files++
				summary.Matches += res.matches
				summary.BytesRead += res.bytes
				if res.failed {
					summary.Failed++
				}
				if s.cfg.sorted {
					perFile[j.index] = hits
				}
				mu.Unlock()

				if err != nil {
					return err
				}
			}
			return nil
		})
	}

feed:
	for i, p := range paths {
		select {
		case jobs <- job{index: i, path: p}:
		case <-gctx.Done():
			break feed
		}
	}
	close(jobs)

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if s.cfg.sorted {
		return summary, mergeSorted(perFile, emit)
	}
	return summary, nil
}

// mergeSorted emits the per file hit lists ordered by path and offset.
func mergeSorted(perFile [][]Hit, emit func(Hit) error) error {
	sources := make([]pq.Source[Hit, int], 0, len(perFile))
	for i, hits := range perFile {
		sources = append(sources, pq.NewSliceSource(hits, i))
	}

	q, err := pq.New(compareHits, sources)
	if err != nil {
		return err
	}

	for {
		h, _, err := q.Next()
		if errors.Is(err, pq.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := emit(h); err != nil {
			return err
		}
	}
}

// compareHits orders by path, then offset; a failure sorts after the hits of
// its file.
func compareHits(a, b Hit) int {
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if (a.Err != nil) != (b.Err != nil) {
		if a.Err != nil {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.Offset, b.Offset)
}

type fileResult struct {
	matches uint64
	bytes   uint64
	failed  bool
}

func (s *Scanner) scanFile(ctx context.Context, worker int, path string, out func(Hit) error) (fileResult, error) {
	if err := ctx.Err(); err != nil {
		return fileResult{}, err
	}

	algo := s.cfg.assigner.Assign(filepath.Base(path), worker)
	compression := s.cfg.compression
	if compression == source.Auto {
		compression = source.DetectCompression(path)
	}

	logger := s.logger.With(
		slog.String("path", path),
		slog.String("algorithm", algo.String()),
		slog.Int("worker", worker))

	var (
		res fileResult
		err error
	)
	// a compressed file has no resident plain text to map
	if s.cfg.mode == MMap && compression == source.None {
		res, err = s.mapFile(ctx, path, algo, out)
	} else {
		res, err = s.streamFile(ctx, path, algo, compression, logger, out)
	}

	logger.Debug("file scanned",
		slog.Uint64("matches", res.matches),
		slog.Uint64("bytes", res.bytes),
		slog.Bool("failed", res.failed))
	return res, err
}

// fail marks res as failed and reports it through out.
func fail(res *fileResult, hit Hit, out func(Hit) error) error {
	res.failed = true
	return out(hit)
}

func (s *Scanner) streamFile(ctx context.Context, path string, algo search.Algorithm, compression source.Compression, logger *slog.Logger, out func(Hit) error) (res fileResult, err error) {
	bufSize := s.bufferSize(path, compression)

	rc, err := source.Open(s.cfg.factory, path, bufSize, compression)
	if err != nil {
		err = fail(&res, Hit{Path: path, Err: err}, out)
		return res, err
	}
	defer func() {
		if c, ok := rc.(source.Counter); ok {
			res.bytes = c.Count()
		}
		_ = rc.Close()
	}()

	r := &contextReader{ctx: ctx, r: source.Throttle(ctx, rc, s.cfg.rateLimit)}
	f, err := finder.NewWithBufferSize(r, s.needle, bufSize, finder.WithAlgorithm(algo), finder.WithLogger(logger))
	if err != nil {
		err = fail(&res, Hit{Path: path, Err: err}, out)
		return res, err
	}
	defer f.Close()

	for pos, err := range f.All() {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			err = fail(&res, Hit{Path: path, Offset: f.Offset(), Err: err}, out)
			return res, err
		}

		res.matches++
		if err := out(Hit{Path: path, Offset: pos}); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (s *Scanner) mapFile(ctx context.Context, path string, algo search.Algorithm, out func(Hit) error) (res fileResult, err error) {
	mf, err := mmapfinder.Open(path, s.needle)
	if err != nil {
		err = fail(&res, Hit{Path: path, Err: err}, out)
		return res, err
	}
	defer mf.Close()

	if err := mf.Advise(mmapfinder.AccessSequential); err != nil {
		err = fail(&res, Hit{Path: path, Err: err}, out)
		return res, err
	}
	res.bytes = uint64(mf.Len())

	it := mf.FindAll(algo)
	for {
		pos, err := it.Next()
		if errors.Is(err, mmapfinder.Done) {
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.matches++
		if err := out(Hit{Path: path, Offset: int64(pos)}); err != nil {
			return res, err
		}
	}
}

// bufferSize is the per worker budget, capped at MaxBufferSize and shrunk to
// the file size for small uncompressed files.
func (s *Scanner) bufferSize(path string, compression source.Compression) int {
	m := len(s.needle)
	size := s.perWorker
	if size > MaxBufferSize && MaxBufferSize >= m {
		size = MaxBufferSize
	}

	if compression != source.None || size < m {
		return size
	}

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return size
	}
	if fi.Size() < int64(size) {
		size = max(int(fi.Size()), m)
	}
	return size
}

// contextReader stops reading once ctx is done, so cancelling a run does not
// wait for large files without matches.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
