package fastfield

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// SegmentID identifies an index segment (section 3: "a pair (segment_id,
// local_doc_id) uniquely identifies a scored hit").
type SegmentID uint32

// CacheRegistry hands out SegmentCache handles to per-segment collectors
// and bounds how many stay resident at once. Section 4.1 says a handle is
// obtained once per segment and held for that segment's collection
// lifetime; on a large index with many segments collecting concurrently,
// an unbounded set of handles would defeat the point of a segment-scoped
// cache, so the registry evicts the least-recently-used handle once it is
// full, closing it if it supports io.Closer-like cleanup.
type CacheRegistry struct {
	cache *lru.Cache[SegmentID, SegmentCache]
}

// NewCacheRegistry returns a registry that keeps at most capacity live
// segment handles.
func NewCacheRegistry(capacity int) (*CacheRegistry, error) {
	c, err := lru.NewWithEvict[SegmentID, SegmentCache](capacity, func(_ SegmentID, handle SegmentCache) {
		if closer, ok := handle.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	})
	if err != nil {
		return nil, err
	}
	return &CacheRegistry{cache: c}, nil
}

// GetOrOpen returns the cached handle for id, opening a fresh one via open
// if none is resident.
func (r *CacheRegistry) GetOrOpen(id SegmentID, open func() (SegmentCache, error)) (SegmentCache, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached, nil
	}
	handle, err := open()
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, handle)
	return handle, nil
}

// Evict drops a segment's handle, closing it first if it implements a
// Close() error method.
func (r *CacheRegistry) Evict(id SegmentID) {
	// Remove runs the eviction callback set up in NewCacheRegistry, which
	// does the closing.
	r.cache.Remove(id)
}

// Len reports how many segment handles are currently resident.
func (r *CacheRegistry) Len() int {
	return r.cache.Len()
}
