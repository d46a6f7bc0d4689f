package signal

import "github.com/webrank/rankcore/pkg/collector"

// Tweaker adapts an Aggregator bound to a segment into the narrow
// single-method shape the collector package's ScoreTweaker interface
// expects (section 4.5, C5): it is the hook by which this package turns a
// raw BM25 score into the full weighted-signal score before the bucket
// collector ever sees it.
type Tweaker struct {
	aggregator *Aggregator
	opts       ScoreOptions
}

var _ collector.ScoreTweaker = (*Tweaker)(nil)

// NewTweaker builds a Tweaker around a segment-bound aggregator.
func NewTweaker(aggregator *Aggregator, opts ScoreOptions) *Tweaker {
	return &Tweaker{aggregator: aggregator, opts: opts}
}

// Score implements collector.ScoreTweaker.
func (t *Tweaker) Score(docID uint32, rawScore float64) float64 {
	return t.aggregator.Score(docID, rawScore, t.opts)
}
