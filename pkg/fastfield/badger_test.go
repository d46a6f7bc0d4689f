package fastfield

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrank/rankcore/pkg/schema"
)

func TestBadgerSegmentCacheRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "segment-0")
	cache, err := OpenBadgerSegmentCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.SetU64(schema.FastFieldHostCentrality, 1, 123456))
	require.NoError(t, cache.SetU64s(schema.FastFieldSiteHash, 1, [2]uint64{11, 22}))

	v, ok := cache.GetU64(schema.FastFieldHostCentrality, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(123456), v)

	hashes, ok := cache.GetU64s(schema.FastFieldSiteHash, 1)
	require.True(t, ok)
	assert.Equal(t, [2]uint64{11, 22}, hashes)
}

func TestBadgerSegmentCacheMissingIsNotOK(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "segment-0")
	cache, err := OpenBadgerSegmentCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.GetU64(schema.FastFieldHostCentrality, 42)
	assert.False(t, ok)
	_, ok = cache.GetU64s(schema.FastFieldSiteHash, 42)
	assert.False(t, ok)
}

func TestBadgerSegmentCacheSatisfiesReadHashes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "segment-0")
	cache, err := OpenBadgerSegmentCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.SetU64s(schema.FastFieldSiteHash, 1, [2]uint64{1, 1}))
	require.NoError(t, cache.SetU64s(schema.FastFieldTitleHash, 1, [2]uint64{2, 2}))
	require.NoError(t, cache.SetU64s(schema.FastFieldUrlHash, 1, [2]uint64{3, 3}))

	hashes, err := ReadHashes(cache, 1)
	require.NoError(t, err)
	assert.Equal(t, CombineU64s([2]uint64{1, 1}), hashes.Site)
	assert.Equal(t, CombineU64s([2]uint64{2, 2}), hashes.Title)
	assert.Equal(t, CombineU64s([2]uint64{3, 3}), hashes.URL)
}

func TestCacheRegistryOpensBadgerSegmentCacheViaOpenFunc(t *testing.T) {
	root := t.TempDir()
	reg, err := NewCacheRegistry(2)
	require.NoError(t, err)

	opened := 0
	open := func() (SegmentCache, error) {
		opened++
		return OpenBadgerSegmentCache(filepath.Join(root, "segment-0"))
	}

	handle, err := reg.GetOrOpen(0, open)
	require.NoError(t, err)
	require.NoError(t, handle.(FastFieldWriter).SetU64(schema.FastFieldHostCentrality, 1, 42))

	again, err := reg.GetOrOpen(0, open)
	require.NoError(t, err)
	assert.Equal(t, 1, opened, "second GetOrOpen for the same segment must reuse the open handle")

	v, ok := again.GetU64(schema.FastFieldHostCentrality, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(42), v)

	reg.Evict(0)
}
