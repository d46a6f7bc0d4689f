package signal

import (
	"fmt"
	"math"
	"time"

	"github.com/webrank/rankcore/pkg/fastfield"
	"github.com/webrank/rankcore/pkg/schema"
)

// Aggregator is the per-query immutable configuration plus the two
// precomputed monotone lookup tables described in section 3. It is cheap
// to copy by value per segment (section 9: "Shared aggregator" — here the
// two cache arrays hold 1,000 + 26,280 float64s, about 218KB), and is safe
// to share read-only across
// concurrently-collecting segments.
type Aggregator struct {
	coefficients SignalCoefficient
	fieldBoosts  FieldBoost

	fetchTimeCache  [schema.FetchTimeWindowMs]float64
	updateTimeCache [schema.UpdateTimeWindowHours]float64

	// segmentCache is bound once per segment via BindSegment and is the
	// only mutable field; it is never shared across segments.
	segmentCache fastfield.SegmentCache
}

// NewAggregator builds an Aggregator from parsed per-signal coefficient
// overrides and per-field boost overrides.
func NewAggregator(coefficients SignalCoefficient, fieldBoosts FieldBoost) *Aggregator {
	a := &Aggregator{
		coefficients: coefficients,
		fieldBoosts:  fieldBoosts,
	}
	for i := 0; i < schema.FetchTimeWindowMs; i++ {
		a.fetchTimeCache[i] = 1.0 / float64(i+1)
	}
	for h := 0; h < schema.UpdateTimeWindowHours; h++ {
		a.updateTimeCache[h] = 1.0 / math.Log2(float64(h)+2)
	}
	return a
}

// DefaultAggregator returns an Aggregator with every coefficient and
// boost at its catalogue default — equivalent to a query with no
// alterations applied.
func DefaultAggregator() *Aggregator {
	return NewAggregator(NewSignalCoefficients(nil), NewFieldBoosts(nil))
}

// Clone returns a copy of the aggregator suitable for binding to a
// different segment; the two lookup tables are read-only and are shared
// by value, matching section 9's "cloning per segment is cheap" note.
func (a *Aggregator) Clone() *Aggregator {
	clone := *a
	clone.segmentCache = nil
	return &clone
}

// BindSegment attaches a per-segment fast-field cache handle. Must be
// called once before Score is used for that segment (section 4.2,
// "register_segment").
func (a *Aggregator) BindSegment(cache fastfield.SegmentCache) {
	a.segmentCache = cache
}

// Coefficients exposes the aggregator's signal-coefficient table.
func (a *Aggregator) Coefficients() SignalCoefficient {
	return a.coefficients
}

// FieldBoosts exposes the aggregator's field-boost table.
func (a *Aggregator) FieldBoosts() FieldBoost {
	return a.fieldBoosts
}

func (a *Aggregator) fastFieldValue(s Signal, docID uint32) (uint64, bool) {
	field, ok := s.AsFastField()
	if !ok || a.segmentCache == nil {
		return 0, false
	}
	return a.segmentCache.GetU64(field, docID)
}

// value evaluates a single signal's contribution per the table in
// section 4.2. A missing fast-field value contributes 0, never an error
// (section 7: MissingData).
func (a *Aggregator) value(
	s Signal,
	bm25 float64,
	fastFieldValue uint64,
	haveFastField bool,
	regionCount *RegionCount,
	currentTimestamp int64,
	selectedRegion schema.Region,
	hasSelectedRegion bool,
) float64 {
	switch s {
	case SignalBm25:
		return bm25
	case SignalHostCentrality, SignalPageCentrality:
		if !haveFastField {
			return 0
		}
		return float64(fastFieldValue) / float64(schema.CentralityScaling)
	case SignalIsHomepage:
		if !haveFastField {
			return 0
		}
		return float64(fastFieldValue)
	case SignalFetchTimeMs:
		if !haveFastField {
			return 0
		}
		v := fastFieldValue
		if v >= uint64(len(a.fetchTimeCache)) {
			return 0
		}
		return a.fetchTimeCache[v]
	case SignalUpdateTimestamp:
		if !haveFastField {
			return 0
		}
		updated := int64(fastFieldValue)
		if currentTimestamp <= updated {
			return 0
		}
		hoursSinceUpdate := (currentTimestamp - updated)
		if hoursSinceUpdate < 1 {
			hoursSinceUpdate = 1
		}
		hoursSinceUpdate /= 3600
		if int(hoursSinceUpdate) < len(a.updateTimeCache) {
			return a.updateTimeCache[hoursSinceUpdate]
		}
		return 0
	case SignalNumTrackers:
		if !haveFastField {
			return 0
		}
		return 1.0 / (float64(fastFieldValue) + 1.0)
	case SignalRegion:
		if !haveFastField {
			return 0
		}
		region := schema.RegionOf(fastFieldValue)
		boost := 0.0
		if hasSelectedRegion && selectedRegion == region {
			boost = schema.RegionSelectedBoost
		}
		return boost + regionCount.Score(region)
	default:
		return 0
	}
}

// ScoreOptions carries the per-query context the signal value function
// needs beyond the raw fast-field reads (section 4.2).
type ScoreOptions struct {
	RegionCount      *RegionCount
	CurrentTimestamp int64 // seconds since epoch; zero means time.Now()
	SelectedRegion   schema.Region
	HasSelectedRegion bool
}

func (o ScoreOptions) now() int64 {
	if o.CurrentTimestamp != 0 {
		return o.CurrentTimestamp
	}
	return time.Now().Unix()
}

// Score combines every signal's weighted contribution into the document's
// final ranking score (section 4.2, "Score combination"):
//
//	score(doc) = Σ_signal coefficient(signal) · value(signal, doc)
//
// bm25 is the raw score emitted by the index scan for this document;
// docID is used only to read fast-field values from the bound segment
// cache.
func (a *Aggregator) Score(docID uint32, bm25 float64, opts ScoreOptions) float64 {
	total := 0.0
	for _, s := range AllSignals {
		fv, ok := a.fastFieldValue(s, docID)
		total += a.coefficients.Get(s) * a.value(
			s, bm25, fv, ok,
			opts.RegionCount, opts.now(), opts.SelectedRegion, opts.HasSelectedRegion,
		)
	}
	return total
}

// Webpage is the subset of indexing-time document fields the
// precomputation path reads directly, bypassing the fast-field cache
// (section 4.2, "Precomputation path").
type Webpage struct {
	HostCentrality float64
	PageCentrality float64
	IsHomepage     bool
	FetchTimeMs    uint64
	UpdatedAt      *time.Time
	NumTrackers    int
	Region         schema.Region
	HasRegion      bool
}

// PrecomputeScore evaluates every signal computable before a query is
// issued (every signal except Bm25), reading straight from a Webpage
// record rather than a segment's fast-field cache. It is used to
// materialize a base score at indexing time (section 4.2).
//
// There is no selected region at index time — a query's selected region
// is only known at search time — so the Region signal's per-query boost
// never applies here; only its region_count contribution does.
func (a *Aggregator) PrecomputeScore(w Webpage, regionCount *RegionCount) float64 {
	now := time.Now().Unix()
	total := 0.0
	for _, s := range AllSignals {
		if !s.IsComputableBeforeSearch() {
			continue
		}
		fv, hasFv := precomputeFastFieldValue(s, w)
		total += a.coefficients.Get(s) * a.value(
			s, 0, fv, hasFv, regionCount, now, schema.RegionAll, false,
		)
	}
	return total
}

func precomputeFastFieldValue(s Signal, w Webpage) (value uint64, ok bool) {
	switch s {
	case SignalHostCentrality:
		return uint64(w.HostCentrality * float64(schema.CentralityScaling)), true
	case SignalPageCentrality:
		return uint64(w.PageCentrality * float64(schema.CentralityScaling)), true
	case SignalIsHomepage:
		if w.IsHomepage {
			return 1, true
		}
		return 0, true
	case SignalFetchTimeMs:
		return w.FetchTimeMs, true
	case SignalUpdateTimestamp:
		if w.UpdatedAt == nil {
			return 0, true
		}
		ts := w.UpdatedAt.Unix()
		if ts < 0 {
			ts = 0
		}
		return uint64(ts), true
	case SignalNumTrackers:
		return uint64(w.NumTrackers), true
	case SignalRegion:
		if !w.HasRegion {
			return 0, false
		}
		return uint64(w.Region), true
	default:
		return 0, false
	}
}

// ScoreError is returned when an alteration cannot be parsed into a
// coefficient or boost override (section 7: ConfigurationParseError).
type ScoreError struct {
	Target string
	Raw    string
	Err    error
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("signal: invalid score %q for %s: %v", e.Raw, e.Target, e.Err)
}

func (e *ScoreError) Unwrap() error { return e.Err }
