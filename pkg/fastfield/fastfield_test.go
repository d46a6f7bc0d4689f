package fastfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrank/rankcore/pkg/schema"
)

func TestMemorySegmentCacheMissingIsNotOK(t *testing.T) {
	cache := NewMemorySegmentCache()

	_, ok := cache.GetU64(schema.FastFieldHostCentrality, 42)
	assert.False(t, ok)

	_, ok = cache.GetU64s(schema.FastFieldSiteHash, 42)
	assert.False(t, ok)
}

func TestMemorySegmentCacheRoundTrip(t *testing.T) {
	cache := NewMemorySegmentCache()
	cache.SetU64(schema.FastFieldHostCentrality, 1, 123456)
	cache.SetU64s(schema.FastFieldSiteHash, 1, [2]uint64{11, 22})

	v, ok := cache.GetU64(schema.FastFieldHostCentrality, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(123456), v)

	hashes, ok := cache.GetU64s(schema.FastFieldSiteHash, 1)
	require.True(t, ok)
	assert.Equal(t, [2]uint64{11, 22}, hashes)
}

func TestCombineU64sIsDeterministicAndSensitive(t *testing.T) {
	a := CombineU64s([2]uint64{1, 2})
	b := CombineU64s([2]uint64{1, 2})
	assert.Equal(t, a, b, "combining the same halves twice must be deterministic")

	c := CombineU64s([2]uint64{1, 3})
	assert.NotEqual(t, a, c, "changing one half must change the fingerprint")
}

func TestReadHashesMissingFieldErrors(t *testing.T) {
	cache := NewMemorySegmentCache()
	cache.SetU64s(schema.FastFieldSiteHash, 1, [2]uint64{1, 1})
	// TitleHash and UrlHash are left unset.

	_, err := ReadHashes(cache, 1)
	assert.Error(t, err)
}

func TestReadHashesComplete(t *testing.T) {
	cache := NewMemorySegmentCache()
	cache.SetU64s(schema.FastFieldSiteHash, 1, [2]uint64{1, 1})
	cache.SetU64s(schema.FastFieldTitleHash, 1, [2]uint64{2, 2})
	cache.SetU64s(schema.FastFieldUrlHash, 1, [2]uint64{3, 3})

	hashes, err := ReadHashes(cache, 1)
	require.NoError(t, err)
	assert.Equal(t, CombineU64s([2]uint64{1, 1}), hashes.Site)
	assert.Equal(t, CombineU64s([2]uint64{2, 2}), hashes.Title)
	assert.Equal(t, CombineU64s([2]uint64{3, 3}), hashes.URL)
}

func TestCacheRegistryEvictsViaLRU(t *testing.T) {
	reg, err := NewCacheRegistry(1)
	require.NoError(t, err)

	opens := 0
	open := func() (SegmentCache, error) {
		opens++
		return NewMemorySegmentCache(), nil
	}

	_, err = reg.GetOrOpen(1, open)
	require.NoError(t, err)
	_, err = reg.GetOrOpen(1, open)
	require.NoError(t, err)
	assert.Equal(t, 1, opens, "second GetOrOpen for the same segment must hit the cache")

	_, err = reg.GetOrOpen(2, open)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len(), "capacity-1 registry must evict segment 1 once segment 2 is added")
}
