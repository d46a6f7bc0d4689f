package collector

// ScoreTweaker wraps a raw-score source so a per-query scoring model can
// mutate each document's score before it reaches the segment collector
// (section 4.5). pkg/signal.Tweaker adapts a SignalAggregator to this
// interface, turning a raw BM25 score into the full weighted-signal
// score.
type ScoreTweaker interface {
	Score(docID uint32, rawScore float64) float64
}

// IdentityTweaker forwards the raw score unchanged; useful for callers
// that only want the bucket-collector/diversity machinery without C2's
// signal weighting (e.g. similarity-only callers, or tests).
type IdentityTweaker struct{}

func (IdentityTweaker) Score(_ uint32, rawScore float64) float64 { return rawScore }

var _ ScoreTweaker = IdentityTweaker{}
