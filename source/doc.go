// Package source opens haystack files for the streaming finder. A Factory
// decides how bytes come off the disk (buffered, O_DIRECT, io_uring or a
// mapping), Decompress decodes gzip, snappy, zstd and lz4 streams on the fly
// and Throttle caps the read bandwidth.
package source
