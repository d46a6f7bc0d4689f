package fastfield

import "github.com/webrank/rankcore/pkg/schema"

// MemorySegmentCache is an in-memory SegmentCache, used by tests and by
// the demo CLI in place of a real segment reader.
type MemorySegmentCache struct {
	scalars map[schema.FastField]map[uint32]uint64
	hashes  map[schema.FastField]map[uint32][2]uint64
}

// NewMemorySegmentCache returns an empty cache ready to be populated with
// SetU64/SetU64s.
func NewMemorySegmentCache() *MemorySegmentCache {
	return &MemorySegmentCache{
		scalars: make(map[schema.FastField]map[uint32]uint64),
		hashes:  make(map[schema.FastField]map[uint32][2]uint64),
	}
}

// SetU64 stores a scalar fast-field value for a document.
func (c *MemorySegmentCache) SetU64(field schema.FastField, docID uint32, value uint64) error {
	m, ok := c.scalars[field]
	if !ok {
		m = make(map[uint32]uint64)
		c.scalars[field] = m
	}
	m[docID] = value
	return nil
}

// SetU64s stores a two-word fast-field value (a hash field) for a document.
func (c *MemorySegmentCache) SetU64s(field schema.FastField, docID uint32, values [2]uint64) error {
	m, ok := c.hashes[field]
	if !ok {
		m = make(map[uint32][2]uint64)
		c.hashes[field] = m
	}
	m[docID] = values
	return nil
}

func (c *MemorySegmentCache) GetU64(field schema.FastField, docID uint32) (uint64, bool) {
	m, ok := c.scalars[field]
	if !ok {
		return 0, false
	}
	v, ok := m[docID]
	return v, ok
}

func (c *MemorySegmentCache) GetU64s(field schema.FastField, docID uint32) ([2]uint64, bool) {
	m, ok := c.hashes[field]
	if !ok {
		return [2]uint64{}, false
	}
	v, ok := m[docID]
	return v, ok
}

var _ SegmentCache = (*MemorySegmentCache)(nil)
var _ FastFieldWriter = (*MemorySegmentCache)(nil)
