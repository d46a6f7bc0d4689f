package collector

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/webrank/rankcore/pkg/fastfield"
	"github.com/webrank/rankcore/pkg/rankpool"
)

// segmentDocPool and websitePointerPool back Harvest's per-segment
// buffer and MergeFruits' final merged slice respectively. MergeFruits
// returns every consumed harvest buffer to segmentDocPool, so those
// backing arrays are reused across queries; the merged slice is handed to
// the caller and never returned to websitePointerPool, so that pool's Get
// allocates a fresh slice each time.
var (
	segmentDocPool     = rankpool.NewPool[SegmentDoc](256)
	websitePointerPool = rankpool.NewPool[WebsitePointer](64)
)

// SegmentOrdinal identifies one index segment among those scanned for a
// query.
type SegmentOrdinal uint32

// DocAddress uniquely identifies a scored hit across the index: a
// segment plus a document ID local to that segment (section 3).
type DocAddress struct {
	Segment SegmentOrdinal
	DocID   uint32
}

// WebsitePointer is the unit returned from the collector to downstream
// result enrichment (section 3).
type WebsitePointer struct {
	Address DocAddress
	Hashes  fastfield.Hashes
	Score   float64
}

// SegmentDoc is the unit flowing between the segment collector and the
// bucket collector (section 3).
type SegmentDoc struct {
	Hashes  fastfield.Hashes
	DocID   uint32
	Segment SegmentOrdinal
	RawScore float64
}

func (d SegmentDoc) Score() float64              { return d.RawScore }
func (d SegmentDoc) HashesValue() fastfield.Hashes { return d.Hashes }

// collector.Doc requires Hashes(); SegmentDoc's field is also named
// Hashes, so it gets its own accessor method via embedding below.
var _ Doc = segmentDocAdapter{}

type segmentDocAdapter struct{ SegmentDoc }

func (d segmentDocAdapter) Hashes() fastfield.Hashes { return d.SegmentDoc.Hashes }

// MaxDocsConsidered bounds how many documents a segment collector will
// examine in total across all segments, divided evenly among them
// (section 4.4).
type MaxDocsConsidered struct {
	TotalDocs int
	Segments  int
}

func (m MaxDocsConsidered) perSegment() int {
	if m.Segments <= 0 {
		return 0
	}
	return m.TotalDocs / m.Segments
}

// TopKSegmentCollector accumulates the best candidates within a single
// segment before that segment's results are merged with every other
// segment's (section 4.4). It owns its BucketCollector exclusively; no
// locking is needed because no other goroutine touches it.
type TopKSegmentCollector struct {
	segmentOrdinal SegmentOrdinal
	cache          fastfield.SegmentCache
	maxDocs        int
	hasMaxDocs     bool
	docsTaken      int
	bucket         *BucketCollector[segmentDocAdapter]
}

// NewTopKSegmentCollector builds a per-segment collector bound to a
// segment's fast-field cache, with working capacity topN (already
// inclusive of any pagination offset).
func NewTopKSegmentCollector(segmentOrdinal SegmentOrdinal, cache fastfield.SegmentCache, topN int, maxDocs *MaxDocsConsidered) *TopKSegmentCollector {
	c := &TopKSegmentCollector{
		segmentOrdinal: segmentOrdinal,
		cache:          cache,
		bucket:         NewBucketCollector[segmentDocAdapter](topN),
	}
	if maxDocs != nil {
		c.maxDocs = maxDocs.perSegment()
		c.hasMaxDocs = true
	}
	return c
}

// Collect ingests one scanned document's raw (already score-tweaked, see
// C5) score. Once the per-segment document cap is reached, further calls
// are no-ops (section 4.4).
func (c *TopKSegmentCollector) Collect(docID uint32, rawScore float64) error {
	if c.hasMaxDocs {
		if c.docsTaken >= c.maxDocs {
			return nil
		}
		c.docsTaken++
	}

	hashes, err := fastfield.ReadHashes(c.cache, docID)
	if err != nil {
		return fmt.Errorf("collector: segment %d: %w", c.segmentOrdinal, err)
	}

	c.bucket.Insert(segmentDocAdapter{SegmentDoc{
		Hashes:   hashes,
		DocID:    docID,
		Segment:  c.segmentOrdinal,
		RawScore: rawScore,
	}})
	return nil
}

// Harvest drains this segment's collector. No diversity demotion happens
// at this stage: duplicates across segments can only be detected once
// every segment's fruit is merged (section 4.4).
func (c *TopKSegmentCollector) Harvest() []SegmentDoc {
	adapted := c.bucket.IntoSortedSlice(false)
	docs := segmentDocPool.Get()
	for _, a := range adapted {
		docs = append(docs, a.SegmentDoc)
	}
	return docs
}

// MergeFruits is the single-threaded fan-in barrier (section 4.4, section
// 5): every segment's harvested documents are inserted into one global
// bucket collector, diversity-adjusted, and the requested page sliced
// out.
func MergeFruits(topN int, offset int, perSegment [][]SegmentDoc) []WebsitePointer {
	collector := NewBucketCollector[segmentDocAdapter](topN + offset)
	for _, docs := range perSegment {
		for _, doc := range docs {
			collector.Insert(segmentDocAdapter{doc})
		}
		// Every doc has been copied into collector's own bucket; the
		// per-segment harvest buffer Harvest drew from the pool is done.
		segmentDocPool.Put(docs)
	}

	sorted := collector.IntoSortedSlice(true)
	if offset >= len(sorted) {
		return nil
	}
	sorted = sorted[offset:]

	res := websitePointerPool.Get()
	for _, a := range sorted {
		res = append(res, WebsitePointer{
			Score:  a.RawScore,
			Hashes: a.SegmentDoc.Hashes,
			Address: DocAddress{
				Segment: a.Segment,
				DocID:   a.DocID,
			},
		})
	}
	return res
}

// SegmentScanner is consumed from the inverted index: it drives one
// segment's scan, invoking collect for each matching document (section
// 6).
type SegmentScanner interface {
	// Scan runs the segment's query evaluation, calling collect once per
	// matching document with its raw (pre-tweak) score.
	Scan(ctx context.Context, collect func(docID uint32, rawScore float64) error) error
}

// CollectSegments runs one TopKSegmentCollector per segment concurrently
// (section 5: "parallel worker threads, one per index segment"), then
// merges every harvested segment through MergeFruits on the calling
// goroutine once all segments finish. If any segment's scan errors, the
// whole query is aborted and partial fruit discarded (section 7:
// IndexIOFailure propagates, no partial result).
func CollectSegments(
	ctx context.Context,
	topN, offset int,
	maxDocs *MaxDocsConsidered,
	segments []SegmentScanner,
	caches []fastfield.SegmentCache,
	tweakers []ScoreTweaker,
) ([]WebsitePointer, error) {
	if len(segments) != len(caches) || len(segments) != len(tweakers) {
		return nil, fmt.Errorf("collector: segments/caches/tweakers length mismatch")
	}

	fruits := make([][]SegmentDoc, len(segments))

	g, ctx := errgroup.WithContext(ctx)
	for i := range segments {
		i := i
		g.Go(func() error {
			segCollector := NewTopKSegmentCollector(SegmentOrdinal(i), caches[i], topN+offset, maxDocs)
			tweaker := tweakers[i]
			err := segments[i].Scan(ctx, func(docID uint32, rawScore float64) error {
				score := rawScore
				if tweaker != nil {
					score = tweaker.Score(docID, rawScore)
				}
				return segCollector.Collect(docID, score)
			})
			if err != nil {
				return fmt.Errorf("collector: segment %d scan: %w", i, err)
			}
			fruits[i] = segCollector.Harvest()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeFruits(topN, offset, fruits), nil
}
