package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrank/rankcore/pkg/fastfield"
	"github.com/webrank/rankcore/pkg/schema"
)

func memCacheWithHashes(docsToHash map[uint32]uint64) *fastfield.MemorySegmentCache {
	cache := fastfield.NewMemorySegmentCache()
	for doc, h := range docsToHash {
		cache.SetU64s(schema.FastFieldSiteHash, doc, [2]uint64{h, h})
		cache.SetU64s(schema.FastFieldTitleHash, doc, [2]uint64{h, h})
		cache.SetU64s(schema.FastFieldUrlHash, doc, [2]uint64{h, h})
	}
	return cache
}

func TestTopKSegmentCollectorHarvestIsSortedNoDemotion(t *testing.T) {
	cache := memCacheWithHashes(map[uint32]uint64{1: 1, 2: 2, 3: 3})
	c := NewTopKSegmentCollector(0, cache, 10, nil)

	require.NoError(t, c.Collect(1, 1.0))
	require.NoError(t, c.Collect(2, 3.0))
	require.NoError(t, c.Collect(3, 2.0))

	got := c.Harvest()
	require.Len(t, got, 3)
	assert.Equal(t, uint32(2), got[0].DocID)
	assert.Equal(t, uint32(3), got[1].DocID)
	assert.Equal(t, uint32(1), got[2].DocID)
}

func TestTopKSegmentCollectorMissingHashErrors(t *testing.T) {
	cache := fastfield.NewMemorySegmentCache()
	c := NewTopKSegmentCollector(0, cache, 10, nil)
	err := c.Collect(1, 1.0)
	require.Error(t, err)
}

func TestTopKSegmentCollectorRespectsMaxDocs(t *testing.T) {
	cache := memCacheWithHashes(map[uint32]uint64{1: 1, 2: 2, 3: 3, 4: 4})
	max := &MaxDocsConsidered{TotalDocs: 4, Segments: 2} // 2 per segment
	c := NewTopKSegmentCollector(0, cache, 10, max)

	for docID := uint32(1); docID <= 4; docID++ {
		require.NoError(t, c.Collect(docID, float64(docID)))
	}

	got := c.Harvest()
	assert.Len(t, got, 2, "only the first 2 docs (per-segment cap) should be considered")
}

func TestMergeFruitsAppliesDiversityAcrossSegments(t *testing.T) {
	site1 := fastfield.CombineU64s([2]uint64{1, 1})
	site2 := fastfield.CombineU64s([2]uint64{2, 2})

	seg0 := []SegmentDoc{
		{DocID: 1, Segment: 0, RawScore: 5.0, Hashes: fastfield.Hashes{Site: site1, Title: site1, URL: site1}},
	}
	seg1 := []SegmentDoc{
		// same site as seg0's doc, slightly lower score: should be demoted
		// below the distinct-site doc once diversity kicks in.
		{DocID: 2, Segment: 1, RawScore: 4.9, Hashes: fastfield.Hashes{Site: site1, Title: site1, URL: site1}},
		{DocID: 3, Segment: 1, RawScore: 4.0, Hashes: fastfield.Hashes{Site: site2, Title: site2, URL: site2}},
	}

	res := MergeFruits(2, 0, [][]SegmentDoc{seg0, seg1})
	require.Len(t, res, 2)
	assert.Equal(t, uint32(1), res[0].Address.DocID, "highest raw score wins the top slot")
	assert.Equal(t, uint32(3), res[1].Address.DocID, "distinct-site doc outranks the demoted same-site doc")
}

func TestMergeFruitsOffsetPaginates(t *testing.T) {
	mk := func(id uint32, score float64) SegmentDoc {
		h := fastfield.CombineU64s([2]uint64{uint64(id), uint64(id)})
		return SegmentDoc{DocID: id, Segment: 0, RawScore: score, Hashes: fastfield.Hashes{Site: h, Title: h, URL: h}}
	}
	docs := []SegmentDoc{mk(1, 1), mk(2, 2), mk(3, 3), mk(4, 4)}

	full := MergeFruits(4, 0, [][]SegmentDoc{docs})
	paged := MergeFruits(2, 2, [][]SegmentDoc{docs})

	require.Len(t, full, 4)
	require.Len(t, paged, 2)
	assert.Equal(t, full[2].Address.DocID, paged[0].Address.DocID)
	assert.Equal(t, full[3].Address.DocID, paged[1].Address.DocID)
}

func TestMergeFruitsOffsetBeyondResultsIsEmpty(t *testing.T) {
	h := fastfield.CombineU64s([2]uint64{1, 1})
	docs := []SegmentDoc{{DocID: 1, Segment: 0, RawScore: 1, Hashes: fastfield.Hashes{Site: h, Title: h, URL: h}}}
	res := MergeFruits(5, 10, [][]SegmentDoc{docs})
	assert.Empty(t, res)
}

type fakeScanner struct {
	docs []uint32
	fail bool
}

func (f fakeScanner) Scan(ctx context.Context, collect func(docID uint32, rawScore float64) error) error {
	if f.fail {
		return errors.New("boom")
	}
	for _, id := range f.docs {
		if err := collect(id, float64(id)); err != nil {
			return err
		}
	}
	return nil
}

func TestCollectSegmentsMergesAcrossSegmentsConcurrently(t *testing.T) {
	cache0 := memCacheWithHashes(map[uint32]uint64{1: 1, 2: 2})
	cache1 := memCacheWithHashes(map[uint32]uint64{3: 3, 4: 4})

	segments := []SegmentScanner{
		fakeScanner{docs: []uint32{1, 2}},
		fakeScanner{docs: []uint32{3, 4}},
	}
	caches := []fastfield.SegmentCache{cache0, cache1}
	tweakers := []ScoreTweaker{IdentityTweaker{}, IdentityTweaker{}}

	res, err := CollectSegments(context.Background(), 4, 0, nil, segments, caches, tweakers)
	require.NoError(t, err)
	require.Len(t, res, 4)
	assert.Equal(t, uint32(4), res[0].Address.DocID)
	assert.Equal(t, uint32(1), res[3].Address.DocID)
}

func TestCollectSegmentsPropagatesSegmentScanError(t *testing.T) {
	cache0 := memCacheWithHashes(map[uint32]uint64{1: 1})
	segments := []SegmentScanner{fakeScanner{fail: true}}
	caches := []fastfield.SegmentCache{cache0}
	tweakers := []ScoreTweaker{IdentityTweaker{}}

	_, err := CollectSegments(context.Background(), 4, 0, nil, segments, caches, tweakers)
	require.Error(t, err)
}
