// Command needle prints the offsets of every occurrence of a byte sequence in
// a file, a stream or all files of a directory.
//
//	needle [flags] NEEDLE [HAYSTACK]
//
// A single haystack prints one offset per line, "-" reads standard input.
// With -dir every hit is printed as path:offset.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/thomasjungblut/go-needle/finder"
	"github.com/thomasjungblut/go-needle/hex"
	"github.com/thomasjungblut/go-needle/scan"
	"github.com/thomasjungblut/go-needle/search"
	"github.com/thomasjungblut/go-needle/source"
)

// EnvLogLevel sets the log level when -log-level is not given.
const EnvLogLevel = "NEEDLE_LOG_LEVEL"

type options struct {
	hex         bool
	dir         string
	maxDepth    int
	memoryLimit int
	algos       scan.AlgorithmList
	algoMap     scan.AlgorithmMap
	mode        string
	io          string
	compression string
	rate        int
	sorted      bool
	logLevel    string
	logFormat   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("needle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.hex, "x", false, "Treat the needle as a hex string")
	fs.BoolVar(&opts.hex, "hex", false, "Treat the needle as a hex string")
	fs.StringVar(&opts.dir, "dir", "", "Directory of haystack files to search in parallel")
	fs.IntVar(&opts.maxDepth, "max-depth", -1, "Maximum recursion depth below -dir (0 = only that dir, -1 = unlimited)")
	fs.IntVar(&opts.memoryLimit, "memory-limit", scan.DefaultMemoryLimit, "Total buffer budget in bytes across all workers")
	fs.Var(&opts.algos, "algos", `Comma separated algorithms assigned to workers round-robin, e.g. "naive,bmh"`)
	fs.Var(&opts.algoMap, "algo-map", `Comma separated PATTERN=ALGO mappings, e.g. "*.log=bmh,*.bin=naive"`)
	fs.StringVar(&opts.mode, "mode", "stream", "Search mode: stream or mmap")
	fs.StringVar(&opts.io, "io", "buffered", "How files are read in stream mode: buffered, direct, uring or mmap")
	fs.StringVar(&opts.compression, "compression", "auto", "Haystack compression: auto, none, gzip, snappy, zstd or lz4")
	fs.IntVar(&opts.rate, "rate", 0, "Read bandwidth limit per worker in bytes per second (0 = unlimited)")
	fs.BoolVar(&opts.sorted, "sorted", false, "Print directory hits ordered by path and offset")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default $"+EnvLogLevel+" or warn)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: needle [flags] NEEDLE [HAYSTACK]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if fs.NArg() < 1 || (opts.dir == "" && fs.NArg() < 2) {
		fs.Usage()
		return 2
	}

	needle := []byte(fs.Arg(0))
	if opts.hex {
		needle, err = hex.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Error decoding hex needle: %v\n", err)
			return 1
		}
	}
	if len(needle) == 0 {
		fmt.Fprintf(stderr, "Error: %v\n", finder.ErrEmptyNeedle)
		return 1
	}

	scanOpts, err := scanOptions(&opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	fromStdin := opts.dir == "" && fs.Arg(1) == "-"
	if fromStdin && opts.algoMap.Len() > 0 {
		fmt.Fprintf(stderr, "Error: -algo-map needs file names and cannot be used with standard input\n")
		return 2
	}

	out := bufio.NewWriter(stdout)
	var code int
	switch {
	case opts.dir != "":
		code = searchDir(ctx, out, stderr, needle, &opts, scanOpts, logger)
	case fromStdin:
		code = searchStdin(ctx, stdin, out, stderr, needle, &opts, logger)
	default:
		code = searchFile(ctx, out, stderr, needle, fs.Arg(1), scanOpts)
	}

	if err := out.Flush(); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return code
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	if level == "" {
		level = "warn"
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func scanOptions(opts *options, logger *slog.Logger) ([]scan.Option, error) {
	mode, err := scan.ParseMode(opts.mode)
	if err != nil {
		return nil, err
	}

	ioMode, err := source.ParseIO(opts.io)
	if err != nil {
		return nil, err
	}
	factory, err := source.NewFactory(ioMode)
	if err != nil {
		return nil, err
	}

	compression, err := source.ParseCompression(opts.compression)
	if err != nil {
		return nil, err
	}

	return []scan.Option{
		scan.WithMemoryLimit(opts.memoryLimit),
		scan.WithAlgorithms(opts.algos),
		scan.WithAlgorithmMap(&opts.algoMap),
		scan.WithMode(mode),
		scan.WithFactory(factory),
		scan.WithCompression(compression),
		scan.WithRateLimit(opts.rate),
		scan.WithSorted(opts.sorted),
		scan.WithLogger(logger),
	}, nil
}

// searchFile searches one haystack with a single worker that gets the whole
// memory budget.
func searchFile(ctx context.Context, out *bufio.Writer, stderr io.Writer, needle []byte, path string, scanOpts []scan.Option) int {
	s, err := scan.New(needle, append(scanOpts, scan.WithMaxWorkers(1))...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	code := 0
	_, err = s.Run(ctx, []string{path}, func(h scan.Hit) error {
		if h.Err != nil {
			fmt.Fprintf(stderr, "Error reading haystack: %v\n", h.Err)
			code = 1
			return nil
		}
		_, err := fmt.Fprintln(out, h.Offset)
		return err
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

func searchDir(ctx context.Context, out *bufio.Writer, stderr io.Writer, needle []byte, opts *options, scanOpts []scan.Option, logger *slog.Logger) int {
	files, err := scan.Walk(opts.dir, opts.maxDepth, func(path string, err error) {
		logger.Warn("skipping unreadable entry", slog.String("path", path), slog.String("error", err.Error()))
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error reading directory: %v\n", err)
		return 1
	}

	s, err := scan.New(needle, append(scanOpts, scan.WithMaxWorkers(runtime.GOMAXPROCS(0)))...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("scanning directory",
		slog.String("dir", opts.dir),
		slog.Int("files", len(files)),
		slog.Int("workers", s.Workers()),
		slog.Int("buffer_size", s.BufferSize()))

	summary, err := s.Run(ctx, files, func(h scan.Hit) error {
		if h.Err != nil {
			fmt.Fprintf(stderr, "Error reading %s: %v\n", h.Path, h.Err)
			return nil
		}
		_, err := fmt.Fprintf(out, "%s:%d\n", h.Path, h.Offset)
		return err
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger.Info("scan finished",
		slog.Int("files", summary.Files),
		slog.Int("failed", summary.Failed),
		slog.Uint64("matches", summary.Matches),
		slog.Uint64("bytes", summary.BytesRead))
	return 0
}

// searchStdin streams standard input through a single finder. Without a file
// name -compression auto means the input is not compressed.
func searchStdin(ctx context.Context, stdin io.Reader, out *bufio.Writer, stderr io.Writer, needle []byte, opts *options, logger *slog.Logger) int {
	algo := search.Naive
	if len(opts.algos) > 0 {
		algo = opts.algos[0]
	}

	compression, err := source.ParseCompression(opts.compression)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if compression == source.Auto {
		compression = source.None
	}

	decoded, err := source.Decompress(source.Throttle(ctx, stdin, opts.rate), compression)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading haystack: %v\n", err)
		return 1
	}
	defer decoded.Close()

	size := min(max(opts.memoryLimit, 1), scan.MaxBufferSize)
	f, err := finder.NewWithBufferSize(decoded, needle, size, finder.WithAlgorithm(algo), finder.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	for pos, err := range f.All() {
		if err != nil {
			fmt.Fprintf(stderr, "Error reading haystack: %v\n", err)
			return 1
		}
		if _, err := fmt.Fprintln(out, pos); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}
