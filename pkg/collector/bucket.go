// Package collector implements the diversity-aware bucket collector and
// the segmented top-K collector described in spec.md sections 4.3 and
// 4.4: a fixed-capacity working set that keeps the best-scoring documents
// while demoting near-duplicates (same site, same URL, same title) so a
// result page isn't dominated by one host.
package collector

import (
	"github.com/webrank/rankcore/pkg/fastfield"
	"github.com/webrank/rankcore/pkg/schema"
)

// Doc is anything the bucket collector can rank: a raw score plus the
// three fingerprints used for duplicate demotion.
type Doc interface {
	Score() float64
	Hashes() fastfield.Hashes
}

type scoredDoc[T Doc] struct {
	doc           T
	adjustedScore float64
}

// bucketCount tracks how many documents already taken from the collector
// share each fingerprint, and turns that into the demotion multiplier
// from section 4.3:
//
//	adjuster = SiteScale/(SiteScale+taken_sites) *
//	           URLScale/(URLScale+taken_urls) *
//	           TitleScale/(TitleScale+taken_titles)
type bucketCount struct {
	buckets map[fastfield.Prehashed]int
}

func newBucketCount() bucketCount {
	return bucketCount{buckets: make(map[fastfield.Prehashed]int)}
}

func (bc bucketCount) adjustedScore(doc Doc) float64 {
	h := doc.Hashes()
	adjuster := 1.0
	adjuster *= schema.SiteScale / (schema.SiteScale + float64(bc.buckets[h.Site]))
	adjuster *= schema.URLScale / (schema.URLScale + float64(bc.buckets[h.URL]))
	adjuster *= schema.TitleScale / (schema.TitleScale + float64(bc.buckets[h.Title]))
	return doc.Score() * adjuster
}

func (bc bucketCount) updateCounts(doc Doc) {
	h := doc.Hashes()
	bc.buckets[h.Site]++
	bc.buckets[h.URL]++
	bc.buckets[h.Title]++
}

// BucketCollector holds at most topN+1 candidate documents at a time,
// pruning the lowest-scoring one on overflow, and produces a final
// de-duplicated top-N ordering on demand (section 4.3).
type BucketCollector[T Doc] struct {
	count     bucketCount
	documents []scoredDoc[T]
	topN      int
}

// NewBucketCollector builds a collector that will keep at most topN
// documents. topN must be positive.
func NewBucketCollector[T Doc](topN int) *BucketCollector[T] {
	if topN <= 0 {
		panic("collector: topN must be positive")
	}
	return &BucketCollector[T]{
		count:     newBucketCount(),
		documents: make([]scoredDoc[T], 0, topN+1),
		topN:      topN,
	}
}

// Insert adds a document, evaluated at its raw (undemoted) score, and
// prunes the working set back down to topN+1 entries if it overflowed.
func (bc *BucketCollector[T]) Insert(doc T) {
	bc.documents = append(bc.documents, scoredDoc[T]{doc: doc, adjustedScore: doc.Score()})
	bc.pruneToCapacity()
}

// Len reports how many candidates are currently held.
func (bc *BucketCollector[T]) Len() int {
	return len(bc.documents)
}

func (bc *BucketCollector[T]) pruneToCapacity() {
	for len(bc.documents) > bc.topN+1 {
		bc.removeAt(bc.indexOfMin())
	}
}

// indexOfMax and indexOfMin scan linearly rather than maintain a heap:
// the working set is bounded to topN+1 entries. Ties resolve to the first
// candidate encountered. A NaN adjustedScore compares false against
// everything, so a NaN never displaces the current pick, and a NaN in the
// first slot is never displaced by anything.
func (bc *BucketCollector[T]) indexOfMax() int {
	best := 0
	for i := 1; i < len(bc.documents); i++ {
		if bc.documents[i].adjustedScore > bc.documents[best].adjustedScore {
			best = i
		}
	}
	return best
}

func (bc *BucketCollector[T]) indexOfMin() int {
	worst := 0
	for i := 1; i < len(bc.documents); i++ {
		if bc.documents[i].adjustedScore < bc.documents[worst].adjustedScore {
			worst = i
		}
	}
	return worst
}

func (bc *BucketCollector[T]) removeAt(i int) scoredDoc[T] {
	doc := bc.documents[i]
	last := len(bc.documents) - 1
	bc.documents[i] = bc.documents[last]
	bc.documents = bc.documents[:last]
	return doc
}

// updateBestDoc re-scores the current highest-adjusted-score candidate
// against the latest bucket counts, and repeats against whichever
// candidate is now on top until a re-score leaves the top score
// unchanged. This converges quickly in practice: each recomputation only
// ever lowers a score (more fingerprints have been taken), so the loop
// terminates once the true post-demotion maximum surfaces.
func (bc *BucketCollector[T]) updateBestDoc() {
	if len(bc.documents) <= 1 {
		return
	}
	for {
		i := bc.indexOfMax()
		current := bc.documents[i].adjustedScore
		bc.documents[i].adjustedScore = bc.count.adjustedScore(bc.documents[i].doc)
		if bc.documents[i].adjustedScore == current {
			return
		}
	}
}

// IntoSortedSlice drains the collector into its final top-N ordering,
// highest score first. When deRankSimilar is true, every emitted document
// updates the bucket counts before the next one is chosen, so later
// documents sharing a site, URL, or title with an already-emitted one are
// demoted (section 4.3). The collector is empty after this call.
func (bc *BucketCollector[T]) IntoSortedSlice(deRankSimilar bool) []T {
	var res []T
	for len(bc.documents) > 0 {
		best := bc.removeAt(bc.indexOfMax())
		if deRankSimilar {
			bc.count.updateCounts(best.doc)
			bc.updateBestDoc()
		}
		res = append(res, best.doc)
		if len(res) == bc.topN {
			break
		}
	}
	return res
}
