package finder

import (
	"io"
	"sync"
)

// Pool recycles finders for one needle and option set, useful when the same
// needle is searched in many small streams.
type Pool struct {
	pool   sync.Pool
	needle []byte
	opts   []Option
}

// NewPool creates a Pool whose finders all search for needle with opts.
func NewPool(needle []byte, opts ...Option) (*Pool, error) {
	// validate once up front so Get only fails for the same reasons New does
	f, err := New(nil, needle, opts...)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		needle: f.needle,
		opts:   opts,
	}
	p.Put(f)

	return p, nil
}

// Get returns a finder positioned at the start of r.
func (p *Pool) Get(r io.Reader) (*Finder, error) {
	if v := p.pool.Get(); v != nil {
		f := v.(*Finder)
		f.Reset(r)
		return f, nil
	}

	return New(r, p.needle, p.opts...)
}

// Put returns a finder to the pool. It must not be used afterwards.
func (p *Pool) Put(f *Finder) {
	f.reader = nil
	f.pendingErr = nil
	f.state = stateExhausted
	p.pool.Put(f)
}
