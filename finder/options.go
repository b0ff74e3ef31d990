package finder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/thomasjungblut/go-needle/search"
)

var (
	// ErrEmptyNeedle is returned when the needle has no bytes.
	ErrEmptyNeedle = errors.New("needle must not be empty")

	// ErrBufferTooSmall is returned when the buffer size, default or explicit, is smaller than the needle.
	ErrBufferTooSmall = errors.New("buffer size must be at least the needle length")

	// ErrInvalidBufferSize is returned when bufferSize is 0 or negative.
	ErrInvalidBufferSize = errors.New("bufferSize must be greater than 0")

	// ErrUnknownAlgorithm is returned when the algorithm is not one of search.Algorithms.
	ErrUnknownAlgorithm = search.ErrUnknownAlgorithm

	// Done indicates the finder has returned all matches.
	// https://github.com/GoogleCloudPlatform/google-cloud-go/wiki/Iterator-Guidelines
	Done = errors.New("no more matches in finder")
)

// DefaultBufferSize is the default amount of haystack held in memory (8 KiB).
const DefaultBufferSize = 8 * 1024

// Option is a function that configures a Finder.
type Option func(*config) error

type config struct {
	algorithm  search.Algorithm
	bufferSize int
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		algorithm:  search.Naive,
		bufferSize: DefaultBufferSize,
	}
}

// validate checks the configuration against the needle it will be used with.
func (c *config) validate(needle []byte) error {
	if len(needle) == 0 {
		return ErrEmptyNeedle
	}

	if c.bufferSize < len(needle) {
		return fmt.Errorf("%w: bufferSize (%d), needle (%d)", ErrBufferTooSmall, c.bufferSize, len(needle))
	}

	return nil
}

// capacity is the real buffer size: room for the requested amount plus the
// needle minus one byte carried over from the previous read.
func (c *config) capacity(needleLen int) int {
	return c.bufferSize + needleLen - 1
}

// WithAlgorithm selects the matcher. Defaults to search.Naive.
func WithAlgorithm(algo search.Algorithm) Option {
	return func(c *config) error {
		if !algo.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(algo))
		}

		c.algorithm = algo

		return nil
	}
}

// WithBufferSize sets how many bytes of haystack are read at most per refill.
// It must not be smaller than the needle.
func WithBufferSize(size int) Option {
	return func(c *config) error {
		if size <= 0 {
			return ErrInvalidBufferSize
		}

		c.bufferSize = size

		return nil
	}
}

// WithLogger sets a logger for debug output about refills and exhaustion.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		c.logger = logger

		return nil
	}
}
