package pq

import (
	"cmp"
	"errors"
	"fmt"
)

// Done indicates an iterator has returned all items.
// https://github.com/GoogleCloudPlatform/google-cloud-go/wiki/Iterator-Guidelines
var Done = errors.New("no more items in iterator")

// Compare returns a negative number when a sorts before b, zero when they are
// equal and a positive number otherwise, like cmp.Compare.
type Compare[K any] func(a, b K) int

// Ordered is the Compare for the builtin ordered types.
func Ordered[K cmp.Ordered]() Compare[K] {
	return cmp.Compare[K]
}

// Source yields keys in ascending order. Every source of a queue is tagged
// with an origin, e.g. the file its keys were found in.
type Source[K any, O any] interface {
	// Next returns the next key in sequence.
	// Returns Done as the error when the source is exhausted.
	Next() (K, error)
	// Origin identifies the source.
	Origin() O
}

type element[K any, O any] struct {
	key    K
	source Source[K, O]
}

// PriorityQueue merges already sorted sources into one ascending sequence.
// Keys that compare equal are returned in source order.
type PriorityQueue[K any, O any] struct {
	// binary heap with index 0 unused, the minimum lives at heap[1]
	heap    []*element[K, O]
	size    int
	compare Compare[K]
	// position of each source in the constructor arguments, breaks ties
	rank map[*element[K, O]]int
}

// New builds a queue over sources. It reads the first key of every source
// and fails on the first error that is not Done.
func New[K any, O any](compare Compare[K], sources []Source[K, O]) (*PriorityQueue[K, O], error) {
	q := &PriorityQueue[K, O]{
		heap:    []*element[K, O]{nil},
		compare: compare,
		rank:    make(map[*element[K, O]]int, len(sources)),
	}

	for i, s := range sources {
		e := &element[K, O]{source: s}
		err := q.fill(e)
		if errors.Is(err, Done) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("pq: cannot read first key of source %d: %w", i, err)
		}

		q.rank[e] = i
		q.heap = append(q.heap, e)
		q.size++
		q.up(q.size)
	}

	return q, nil
}

// Len returns how many sources still have keys.
func (q *PriorityQueue[K, O]) Len() int {
	return q.size
}

// Next returns the smallest key across all sources together with the origin
// it came from, or Done once every source is exhausted.
func (q *PriorityQueue[K, O]) Next() (key K, origin O, err error) {
	if q.size == 0 {
		err = Done
		return
	}

	top := q.heap[1]
	key = top.key
	origin = top.source.Origin()

	ferr := q.fill(top)
	if ferr != nil && !errors.Is(ferr, Done) {
		err = fmt.Errorf("pq: cannot read next key: %w", ferr)
		return
	}

	if errors.Is(ferr, Done) {
		// drop the exhausted source: swap it to the last leaf and cut it off
		q.heap[1], q.heap[q.size] = q.heap[q.size], q.heap[1]
		q.heap = q.heap[:q.size]
		q.size--
		delete(q.rank, top)
	}

	q.down(1)
	return key, origin, nil
}

func (q *PriorityQueue[K, O]) fill(e *element[K, O]) error {
	k, err := e.source.Next()
	e.key = k
	return err
}

func (q *PriorityQueue[K, O]) less(a, b *element[K, O]) bool {
	if c := q.compare(a.key, b.key); c != 0 {
		return c < 0
	}
	return q.rank[a] < q.rank[b]
}

func (q *PriorityQueue[K, O]) up(i int) {
	e := q.heap[i]
	for j := i >> 1; j > 0 && q.less(e, q.heap[j]); j = i >> 1 {
		q.heap[i] = q.heap[j]
		i = j
	}
	q.heap[i] = e
}

func (q *PriorityQueue[K, O]) down(i int) {
	if q.size == 0 {
		return
	}

	e := q.heap[i]
	for {
		j := i << 1
		if j > q.size {
			break
		}
		if k := j + 1; k <= q.size && q.less(q.heap[k], q.heap[j]) {
			j = k
		}
		if !q.less(q.heap[j], e) {
			break
		}
		q.heap[i] = q.heap[j]
		i = j
	}
	q.heap[i] = e
}

// SliceSource is a Source over an already sorted slice.
type SliceSource[K any, O any] struct {
	keys   []K
	origin O
}

// NewSliceSource wraps keys, which must be sorted by the queue's Compare.
func NewSliceSource[K any, O any](keys []K, origin O) *SliceSource[K, O] {
	return &SliceSource[K, O]{keys: keys, origin: origin}
}

func (s *SliceSource[K, O]) Next() (K, error) {
	if len(s.keys) == 0 {
		var zero K
		return zero, Done
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, nil
}

func (s *SliceSource[K, O]) Origin() O {
	return s.origin
}
