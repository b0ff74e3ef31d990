package scan

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/thomasjungblut/go-needle/search"
)

var (
	// ErrInvalidMapping is returned for an algorithm map entry without '='.
	ErrInvalidMapping = errors.New("invalid mapping (expected PATTERN=ALGO)")

	// ErrInvalidPattern is returned for a malformed glob pattern.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// AlgorithmList assigns algorithms to workers round-robin by worker index.
// It implements flag.Value.
type AlgorithmList []search.Algorithm

// ParseAlgorithmList parses a comma separated list like "naive,bmh". An
// empty string yields search.Naive.
func ParseAlgorithmList(s string) (AlgorithmList, error) {
	var l AlgorithmList
	if err := l.Set(s); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *AlgorithmList) Set(s string) error {
	var out AlgorithmList
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		algo, err := search.ParseAlgorithm(part)
		if err != nil {
			return err
		}
		out = append(out, algo)
	}
	if len(out) == 0 {
		out = AlgorithmList{search.Naive}
	}
	*l = out
	return nil
}

func (l *AlgorithmList) String() string {
	if l == nil {
		return ""
	}
	names := make([]string, len(*l))
	for i, a := range *l {
		names[i] = a.String()
	}
	return strings.Join(names, ",")
}

// ForWorker returns the algorithm of the given worker, search.Naive for an
// empty list.
func (l AlgorithmList) ForWorker(worker int) search.Algorithm {
	if len(l) == 0 {
		return search.Naive
	}
	if worker < 0 {
		worker = -worker
	}
	return l[worker%len(l)]
}

type mapping struct {
	pattern string
	algo    search.Algorithm
}

// AlgorithmMap picks an algorithm by glob pattern on the file name. The first
// matching pattern wins. It implements flag.Value.
type AlgorithmMap struct {
	mappings []mapping
}

// ParseAlgorithmMap parses mappings like "*.log=bmh,*.bin=naive".
func ParseAlgorithmMap(s string) (*AlgorithmMap, error) {
	m := &AlgorithmMap{}
	if err := m.Set(s); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AlgorithmMap) Set(s string) error {
	var out []mapping
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}

		pattern, name, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidMapping, part)
		}

		pattern = strings.TrimSpace(pattern)
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
		}

		algo, err := search.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		out = append(out, mapping{pattern: pattern, algo: algo})
	}
	m.mappings = append(m.mappings, out...)
	return nil
}

func (m *AlgorithmMap) String() string {
	if m == nil {
		return ""
	}
	parts := make([]string, len(m.mappings))
	for i, e := range m.mappings {
		parts[i] = e.pattern + "=" + e.algo.String()
	}
	return strings.Join(parts, ",")
}

// Len returns the number of mappings.
func (m *AlgorithmMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.mappings)
}

// Lookup returns the algorithm of the first pattern that matches name.
func (m *AlgorithmMap) Lookup(name string) (search.Algorithm, bool) {
	if m == nil {
		return 0, false
	}
	for _, e := range m.mappings {
		if ok, _ := path.Match(e.pattern, name); ok {
			return e.algo, true
		}
	}
	return 0, false
}

// Assigner resolves the algorithm for a file: a pattern hit in Map first,
// otherwise round-robin over List by worker index.
type Assigner struct {
	Map  *AlgorithmMap
	List AlgorithmList
}

// Assign returns the algorithm for the file name handled by worker.
func (a Assigner) Assign(name string, worker int) search.Algorithm {
	if algo, ok := a.Map.Lookup(name); ok {
		return algo
	}
	return a.List.ForWorker(worker)
}
