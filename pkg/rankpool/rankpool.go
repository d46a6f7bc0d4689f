// Package rankpool pools slice allocations behind a generic sync.Pool
// wrapper. The segmented top-K collector (pkg/collector) draws its
// per-segment harvest buffer and its final merged pointer slice from
// pools; harvest buffers are returned after the merge, so their backing
// arrays are reused, while the merged slice goes to the caller and is not
// returned.
package rankpool

import "sync"

// Config controls whether pooling is active and how large a slice is
// still worth returning to a pool.
type Config struct {
	// Enabled controls whether Get/Put actually pool anything.
	Enabled bool
	// MaxCap is the largest slice capacity kept in a pool; anything
	// bigger is dropped to avoid pinning a one-off large allocation in
	// memory indefinitely.
	MaxCap int
}

var global = Config{Enabled: true, MaxCap: 4096}

// Configure sets the global pooling behavior shared by every Pool. Call
// early, before the first query runs.
func Configure(cfg Config) {
	global = cfg
}

// Pool is a capacity-bounded sync.Pool of zero-length slices of T.
type Pool[T any] struct {
	pool   sync.Pool
	newCap int
}

// NewPool returns a pool whose freshly allocated slices start with
// capacity newCap.
func NewPool[T any](newCap int) *Pool[T] {
	p := &Pool[T]{newCap: newCap}
	p.pool.New = func() any {
		s := make([]T, 0, newCap)
		return &s
	}
	return p
}

// Get returns a zero-length slice, reused from the pool when pooling is
// enabled.
func (p *Pool[T]) Get() []T {
	if !global.Enabled {
		return make([]T, 0, p.newCap)
	}
	s := p.pool.Get().(*[]T)
	return (*s)[:0]
}

// Put returns a slice to the pool for reuse. Oversized slices are
// dropped rather than pooled. Callers must not retain references into s
// after calling Put, since a later Get may hand the same backing array
// back out.
func (p *Pool[T]) Put(s []T) {
	if !global.Enabled || cap(s) > global.MaxCap {
		return
	}
	s = s[:0]
	p.pool.Put(&s)
}
