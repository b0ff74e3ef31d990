package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrUnknownCompression is returned when parsing an unsupported compression name.
var ErrUnknownCompression = errors.New("unknown compression")

// Compression is the codec a haystack file is stored with. Match offsets are
// always reported in the decompressed stream.
type Compression int

const (
	None Compression = iota
	Gzip
	Snappy
	Zstd
	LZ4
	// Auto picks the codec from the file extension, see DetectCompression.
	Auto
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// ParseCompression parses the names returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "snappy", "sz":
		return Snappy, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	case "auto":
		return Auto, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// DetectCompression maps well known file extensions to their codec.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".sz", ".snappy":
		return Snappy
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

// Decompress wraps r with a decoder for c. Closing the result releases the
// decoder but not r.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case Snappy:
		// framed stream format, as written by snappy.NewBufferedWriter
		return io.NopCloser(snappy.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, c)
	}
}

// Open opens path with factory and decodes it according to c, resolving Auto
// through the file extension. Close releases the decoder and the file.
func Open(factory Factory, path string, bufSize int, c Compression) (io.ReadCloser, error) {
	if c == Auto {
		c = DetectCompression(path)
	}

	raw, err := factory.Open(path, bufSize)
	if err != nil {
		return nil, err
	}

	if c == None {
		return raw, nil
	}

	dec, err := Decompress(raw, c)
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &decodedFile{ReadCloser: dec, raw: raw}, nil
}

type decodedFile struct {
	io.ReadCloser
	raw io.ReadCloser
}

// Count reports the compressed bytes read from disk.
func (d *decodedFile) Count() uint64 {
	if c, ok := d.raw.(Counter); ok {
		return c.Count()
	}
	return 0
}

func (d *decodedFile) Close() error {
	return errors.Join(d.ReadCloser.Close(), d.raw.Close())
}
