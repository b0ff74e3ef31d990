package scan

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/thomasjungblut/go-needle/source"
)

var (
	// ErrEmptyNeedle is returned when the needle has no bytes.
	ErrEmptyNeedle = errors.New("needle must not be empty")

	// ErrUnknownMode is returned when parsing an unsupported scan mode.
	ErrUnknownMode = errors.New("unknown scan mode")
)

// DefaultMemoryLimit is the total buffer budget across all workers (1 GB).
const DefaultMemoryLimit = 1_000_000_000

// MaxBufferSize caps the buffer of a single streaming finder no matter how
// large the per worker budget is.
const MaxBufferSize = 64 << 20

// Mode selects how files are searched.
type Mode int

const (
	// Stream reads files through a source.Factory into a bounded buffer.
	Stream Mode = iota
	// MMap maps each file and searches it in place.
	MMap
)

func (m Mode) String() string {
	switch m {
	case Stream:
		return "stream"
	case MMap:
		return "mmap"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "":
		return Stream, nil
	case "mmap", "zerocopy":
		return MMap, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Option is a function that configures a Scanner.
type Option func(*config) error

type config struct {
	memoryLimit int
	maxWorkers  int
	assigner    Assigner
	mode        Mode
	factory     source.Factory
	compression source.Compression
	rateLimit   int
	sorted      bool
	logger      *slog.Logger
}

func defaultConfig() config {
	return config{
		memoryLimit: DefaultMemoryLimit,
		maxWorkers:  runtime.GOMAXPROCS(0),
		assigner:    Assigner{List: AlgorithmList{}},
		mode:        Stream,
		factory:     source.BufferedFactory{},
		compression: source.None,
	}
}

// WithMemoryLimit sets the total buffer budget in bytes, see Budget.
func WithMemoryLimit(limit int) Option {
	return func(c *config) error {
		if limit < 0 {
			return fmt.Errorf("memory limit must not be negative, was %d", limit)
		}
		c.memoryLimit = limit
		return nil
	}
}

// WithMaxWorkers bounds the number of files searched concurrently. Defaults
// to GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("max workers must be greater than 0, was %d", n)
		}
		c.maxWorkers = n
		return nil
	}
}

// WithAlgorithms sets the round-robin list of algorithms per worker.
func WithAlgorithms(list AlgorithmList) Option {
	return func(c *config) error {
		for _, a := range list {
			if !a.Valid() {
				return fmt.Errorf("invalid algorithm %s", a)
			}
		}
		c.assigner.List = list
		return nil
	}
}

// WithAlgorithmMap picks algorithms by file name before the round-robin list applies.
func WithAlgorithmMap(m *AlgorithmMap) Option {
	return func(c *config) error {
		c.assigner.Map = m
		return nil
	}
}

// WithMode switches between streaming and memory mapped search.
func WithMode(m Mode) Option {
	return func(c *config) error {
		if m != Stream && m != MMap {
			return fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
		}
		c.mode = m
		return nil
	}
}

// WithFactory sets how files are opened in Stream mode.
func WithFactory(f source.Factory) Option {
	return func(c *config) error {
		if f == nil {
			return errors.New("factory must not be nil")
		}
		c.factory = f
		return nil
	}
}

// WithCompression sets the codec of the haystack files, source.Auto detects
// it per file.
func WithCompression(comp source.Compression) Option {
	return func(c *config) error {
		c.compression = comp
		return nil
	}
}

// WithRateLimit caps the read bandwidth of every worker in bytes per second.
// Zero disables throttling.
func WithRateLimit(bytesPerSec int) Option {
	return func(c *config) error {
		if bytesPerSec < 0 {
			return fmt.Errorf("rate limit must not be negative, was %d", bytesPerSec)
		}
		c.rateLimit = bytesPerSec
		return nil
	}
}

// WithSorted holds back all hits until every file is searched and emits them
// ordered by path and offset.
func WithSorted(sorted bool) Option {
	return func(c *config) error {
		c.sorted = sorted
		return nil
	}
}

// WithLogger sets the logger for per file progress and errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
