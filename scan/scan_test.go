package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasjungblut/go-needle/search"
	"github.com/thomasjungblut/go-needle/source"
)

func TestBudget(t *testing.T) {
	tests := []struct {
		limit, maxWorkers  int
		workers, perWorker int
	}{
		{0, 8, 1, 1},
		{1, 8, 1, 1},
		{5, 8, 5, 1},
		{8, 8, 8, 1},
		{1_000_000_000, 8, 8, 125_000_000},
		{100, 3, 3, 33},
		{100, 0, 1, 100},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.limit, tt.maxWorkers), func(t *testing.T) {
			workers, perWorker := Budget(tt.limit, tt.maxWorkers)
			assert.Equal(t, tt.workers, workers)
			assert.Equal(t, tt.perWorker, perWorker)
			if tt.limit >= workers {
				assert.LessOrEqual(t, workers*perWorker, tt.limit)
			}
		})
	}
}

func TestParseAlgorithmList(t *testing.T) {
	l, err := ParseAlgorithmList("naive, BMH,simd")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmList{search.Naive, search.BMH, search.SIMD}, l)
	assert.Equal(t, "naive,bmh,simd", l.String())
	assert.Equal(t, search.Naive, l.ForWorker(0))
	assert.Equal(t, search.BMH, l.ForWorker(1))
	assert.Equal(t, search.Naive, l.ForWorker(3))

	l, err = ParseAlgorithmList("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmList{search.Naive}, l)

	_, err = ParseAlgorithmList("naive,fast")
	assert.ErrorIs(t, err, search.ErrUnknownAlgorithm)

	assert.Equal(t, search.Naive, AlgorithmList(nil).ForWorker(5))
}

func TestParseAlgorithmMap(t *testing.T) {
	m, err := ParseAlgorithmMap("*.txt=naive,*.bin=bmh")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "*.txt=naive,*.bin=bmh", m.String())

	algo, ok := m.Lookup("test.txt")
	assert.True(t, ok)
	assert.Equal(t, search.Naive, algo)

	algo, ok = m.Lookup("data.bin")
	assert.True(t, ok)
	assert.Equal(t, search.BMH, algo)

	_, ok = m.Lookup("image.png")
	assert.False(t, ok)

	_, err = ParseAlgorithmMap("*.txt:naive")
	assert.ErrorIs(t, err, ErrInvalidMapping)

	_, err = ParseAlgorithmMap("[=naive")
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = ParseAlgorithmMap("*.txt=fast")
	assert.ErrorIs(t, err, search.ErrUnknownAlgorithm)
}

func TestAlgorithmMapFirstMatchWins(t *testing.T) {
	m, err := ParseAlgorithmMap("access*.log=kmp,*.log=bmh")
	require.NoError(t, err)

	algo, _ := m.Lookup("access-2024.log")
	assert.Equal(t, search.KMP, algo)
	algo, _ = m.Lookup("error.log")
	assert.Equal(t, search.BMH, algo)
}

func TestAssigner(t *testing.T) {
	m, err := ParseAlgorithmMap("*.log=simd")
	require.NoError(t, err)

	a := Assigner{Map: m, List: AlgorithmList{search.Naive, search.KMP}}
	assert.Equal(t, search.SIMD, a.Assign("x.log", 1))
	assert.Equal(t, search.Naive, a.Assign("x.bin", 0))
	assert.Equal(t, search.KMP, a.Assign("x.bin", 1))

	// no map at all
	assert.Equal(t, search.KMP, Assigner{List: AlgorithmList{search.KMP}}.Assign("x.log", 7))
}

func makeTree(t *testing.T) string {
	root := t.TempDir()
	files := map[string]string{
		"a.txt":          "needle in a",
		"b.log":          "no match here",
		"sub/c.txt":      "needle needle",
		"sub/deep/d.txt": "needle",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func relPaths(t *testing.T, root string, files []string) []string {
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalk(t *testing.T) {
	root := makeTree(t)

	tests := []struct {
		maxDepth int
		expected []string
	}{
		{-1, []string{"a.txt", "b.log", "sub/c.txt", "sub/deep/d.txt"}},
		{0, []string{"a.txt", "b.log"}},
		{1, []string{"a.txt", "b.log", "sub/c.txt"}},
		{5, []string{"a.txt", "b.log", "sub/c.txt", "sub/deep/d.txt"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.maxDepth), func(t *testing.T) {
			files, err := Walk(root, tt.maxDepth, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, relPaths(t, root, files))
		})
	}

	_, err := Walk(filepath.Join(root, "missing"), -1, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func collect(t *testing.T, s *Scanner, paths []string) ([]Hit, Summary) {
	var hits []Hit
	summary, err := s.Run(context.Background(), paths, func(h Hit) error {
		hits = append(hits, h)
		return nil
	})
	require.NoError(t, err)
	return hits, summary
}

func TestRunStreamAndMMapAgree(t *testing.T) {
	root := makeTree(t)
	files, err := Walk(root, -1, nil)
	require.NoError(t, err)

	expected := map[string][]int64{
		"a.txt":          {0},
		"sub/c.txt":      {0, 7},
		"sub/deep/d.txt": {0},
	}

	for _, mode := range []Mode{Stream, MMap} {
		for _, algo := range search.Algorithms {
			t.Run(mode.String()+"/"+algo.String(), func(t *testing.T) {
				s, err := New([]byte("needle"),
					WithMode(mode),
					WithAlgorithms(AlgorithmList{algo}),
					WithMaxWorkers(3),
					WithMemoryLimit(1<<20))
				require.NoError(t, err)

				hits, summary := collect(t, s, files)
				actual := map[string][]int64{}
				for _, h := range hits {
					require.NoError(t, h.Err)
					rel, err := filepath.Rel(root, h.Path)
					require.NoError(t, err)
					actual[filepath.ToSlash(rel)] = append(actual[filepath.ToSlash(rel)], h.Offset)
				}
				assert.Equal(t, expected, actual)
				assert.Equal(t, 4, summary.Files)
				assert.Equal(t, 0, summary.Failed)
				assert.Equal(t, uint64(4), summary.Matches)
				assert.Equal(t, uint64(11+13+13+6), summary.BytesRead)
			})
		}
	}
}

func TestRunSorted(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i := 9; i >= 0; i-- {
		p := filepath.Join(root, fmt.Sprintf("f%02d.bin", i))
		require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte("ab"), 50+i), 0644))
		paths = append(paths, p)
	}
	missing := filepath.Join(root, "f05-missing.bin")
	paths = append(paths, missing)

	s, err := New([]byte("ab"), WithSorted(true), WithMaxWorkers(4))
	require.NoError(t, err)

	hits, summary := collect(t, s, paths)
	assert.True(t, sort.SliceIsSorted(hits, func(i, j int) bool {
		return compareHits(hits[i], hits[j]) < 0
	}))
	assert.Equal(t, 11, summary.Files)
	assert.Equal(t, 1, summary.Failed)

	var failures []Hit
	for _, h := range hits {
		if h.Err != nil {
			failures = append(failures, h)
		}
	}
	require.Len(t, failures, 1)
	assert.Equal(t, missing, failures[0].Path)
	assert.ErrorIs(t, failures[0].Err, os.ErrNotExist)
	assert.Len(t, hits, 1+(50*10+45))
}

func TestRunReportsFileErrorsAndContinues(t *testing.T) {
	root := makeTree(t)
	paths := []string{
		filepath.Join(root, "missing.txt"),
		filepath.Join(root, "a.txt"),
	}

	for _, mode := range []Mode{Stream, MMap} {
		s, err := New([]byte("needle"), WithMode(mode))
		require.NoError(t, err)

		hits, summary := collect(t, s, paths)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, uint64(1), summary.Matches)
		require.Len(t, hits, 2)
	}
}

func TestRunBufferTooSmallIsAFileError(t *testing.T) {
	root := makeTree(t)
	s, err := New([]byte("needle"), WithMemoryLimit(4), WithMaxWorkers(1))
	require.NoError(t, err)
	assert.Equal(t, 4, s.BufferSize())

	hits, summary := collect(t, s, []string{filepath.Join(root, "a.txt")})
	require.Len(t, hits, 1)
	assert.Error(t, hits[0].Err)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunCompressed(t *testing.T) {
	root := t.TempDir()
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	_, err := w.Write([]byte("xxneedlexxneedle"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(root, "data.sz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	for _, mode := range []Mode{Stream, MMap} {
		s, err := New([]byte("needle"), WithCompression(source.Auto), WithMode(mode))
		require.NoError(t, err)

		hits, _ := collect(t, s, []string{path})
		require.Len(t, hits, 2)
		assert.Equal(t, int64(2), hits[0].Offset)
		assert.Equal(t, int64(10), hits[1].Offset)
	}
}

func TestRunStopsOnEmitError(t *testing.T) {
	root := makeTree(t)
	files, err := Walk(root, -1, nil)
	require.NoError(t, err)

	s, err := New([]byte("needle"), WithMaxWorkers(1))
	require.NoError(t, err)

	stop := errors.New("stop")
	_, err = s.Run(context.Background(), files, func(Hit) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestRunCancelled(t *testing.T) {
	root := makeTree(t)
	files, err := Walk(root, -1, nil)
	require.NoError(t, err)

	s, err := New([]byte("needle"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx, files, func(Hit) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyNeedle)

	_, err = New([]byte("x"), WithMode(Mode(7)))
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = New([]byte("x"), WithMaxWorkers(0))
	assert.Error(t, err)

	_, err = New([]byte("x"), WithMemoryLimit(-1))
	assert.Error(t, err)

	_, err = New([]byte("x"), WithFactory(nil))
	assert.Error(t, err)

	_, err = New([]byte("x"), WithAlgorithms(AlgorithmList{search.Algorithm(42)}))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Stream, MMap} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err := ParseMode("carrier-pigeon")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestBufferSizeShrinksToFile(t *testing.T) {
	root := makeTree(t)
	s, err := New([]byte("needle"), WithMemoryLimit(1<<30), WithMaxWorkers(1))
	require.NoError(t, err)

	assert.Equal(t, 11, s.bufferSize(filepath.Join(root, "a.txt"), source.None))
	assert.Equal(t, MaxBufferSize, s.bufferSize(filepath.Join(root, "a.txt"), source.Gzip))
	assert.Equal(t, MaxBufferSize, s.bufferSize(filepath.Join(root, "missing"), source.None))
}
