package benchmark

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thomasjungblut/go-needle/finder"
	"github.com/thomasjungblut/go-needle/search"
)

// pattern appears in the generated data only where the tests plant it
const pattern = "Hello World!"

// generateTestData produces slowly changing byte runs so every matcher has
// to do real work instead of skipping through a single repeated byte.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte((i / 64) % 256)
	}
	return data
}

func withPlantedPattern(size, every int) []byte {
	data := generateTestData(size)
	for i := every; i+len(pattern) <= size; i += every {
		copy(data[i:], pattern)
	}
	return data
}

var sizes = []struct {
	name string
	size int
}{
	{"1kb", 1024},
	{"1mb", 1024 * 1024},
	{"16mb", 16 * 1024 * 1024},
}

func BenchmarkMatchers(b *testing.B) {
	for _, sz := range sizes {
		haystack := withPlantedPattern(sz.size, 4096)
		needle := []byte(pattern)

		for _, algo := range search.Algorithms {
			b.Run(sz.name+"/"+algo.String(), func(b *testing.B) {
				match := algo.Matcher()
				b.SetBytes(int64(len(haystack)))
				b.ResetTimer()
				for n := 0; n < b.N; n++ {
					for i := 0; ; {
						p := match(haystack[i:], needle)
						if p < 0 {
							break
						}
						i += p + 1
					}
				}
			})
		}

		b.Run(sz.name+"/bytes.Index", func(b *testing.B) {
			b.SetBytes(int64(len(haystack)))
			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				for i := 0; ; {
					p := bytes.Index(haystack[i:], needle)
					if p < 0 {
						break
					}
					i += p + 1
				}
			}
		})
	}
}

func BenchmarkStreamingFinder(b *testing.B) {
	haystack := withPlantedPattern(16*1024*1024, 4096)
	bufferSizes := []int{4 * 1024, 64 * 1024, 1024 * 1024}

	for _, algo := range search.Algorithms {
		for _, bufSize := range bufferSizes {
			b.Run(algo.String()+"/"+byteSize(bufSize), func(b *testing.B) {
				b.SetBytes(int64(len(haystack)))
				b.ResetTimer()
				for n := 0; n < b.N; n++ {
					f, err := finder.NewWithBufferSize(bytes.NewReader(haystack), []byte(pattern), bufSize, finder.WithAlgorithm(algo))
					require.NoError(b, err)
					positions, err := f.Collect()
					require.NoError(b, err)
					require.NotEmpty(b, positions)
					require.NoError(b, f.Close())
				}
			})
		}
	}
}

func BenchmarkFinderPool(b *testing.B) {
	haystack := withPlantedPattern(8*1024, 1024)
	pool, err := finder.NewPool([]byte(pattern), finder.WithAlgorithm(search.BMH), finder.WithBufferSize(4096))
	require.NoError(b, err)

	b.SetBytes(int64(len(haystack)))
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		f, err := pool.Get(bytes.NewReader(haystack))
		require.NoError(b, err)
		_, err = f.Collect()
		require.NoError(b, err)
		pool.Put(f)
	}
}

func byteSize(n int) string {
	switch {
	case n >= 1024*1024:
		return itoa(n/(1024*1024)) + "mb"
	case n >= 1024:
		return itoa(n/1024) + "kb"
	default:
		return itoa(n) + "b"
	}
}
