// Package signal implements the ranking-signal catalogue and aggregator
// described in spec.md section 4.2 (C2): the value function for each
// signal, the dense per-signal/per-field coefficient tables, and the
// weighted-sum score combination that turns a raw BM25 score into the
// document's final ranking score.
package signal

import "github.com/webrank/rankcore/pkg/schema"

// Signal is the fixed, ordinal-indexed catalogue from section 3. Order is
// significant: Signal is used as a dense array index on the hot path, so
// new signals must be appended, never inserted.
type Signal int

const (
	SignalBm25 Signal = iota
	SignalHostCentrality
	SignalPageCentrality
	SignalIsHomepage
	SignalFetchTimeMs
	SignalUpdateTimestamp
	SignalNumTrackers
	SignalRegion

	numSignals
)

// NumSignals is the size a dense [N]T array must have to be indexed by
// every Signal ordinal.
const NumSignals = int(numSignals)

// AllSignals enumerates the full catalogue in evaluation order.
var AllSignals = [numSignals]Signal{
	SignalBm25,
	SignalHostCentrality,
	SignalPageCentrality,
	SignalIsHomepage,
	SignalFetchTimeMs,
	SignalUpdateTimestamp,
	SignalNumTrackers,
	SignalRegion,
}

// IsComputableBeforeSearch reports whether a signal can be evaluated at
// indexing time (every signal except Bm25 — section 3's invariant).
func (s Signal) IsComputableBeforeSearch() bool {
	return s != SignalBm25
}

// DefaultCoefficient returns the catalogue's default weight for a signal
// (section 4.2, "Default coefficients").
func (s Signal) DefaultCoefficient() float64 {
	switch s {
	case SignalBm25:
		return 1.0
	case SignalHostCentrality:
		return 2048.0
	case SignalPageCentrality:
		return 4096.0
	case SignalIsHomepage:
		return 0.1
	case SignalFetchTimeMs:
		return 0.1
	case SignalUpdateTimestamp:
		return 80.0
	case SignalNumTrackers:
		return 20.0
	case SignalRegion:
		return 60.0
	default:
		return 0.0
	}
}

// AsFastField returns the fast-field a signal reads from, or ok=false for
// Bm25, which has no fast-field (it comes from the index scan itself).
func (s Signal) AsFastField() (schema.FastField, bool) {
	switch s {
	case SignalHostCentrality:
		return schema.FastFieldHostCentrality, true
	case SignalPageCentrality:
		return schema.FastFieldPageCentrality, true
	case SignalIsHomepage:
		return schema.FastFieldIsHomepage, true
	case SignalFetchTimeMs:
		return schema.FastFieldFetchTimeMs, true
	case SignalUpdateTimestamp:
		return schema.FastFieldLastUpdated, true
	case SignalNumTrackers:
		return schema.FastFieldNumTrackers, true
	case SignalRegion:
		return schema.FastFieldRegion, true
	default:
		return 0, false
	}
}

// SignalFromName resolves a signal by the name accepted in a query-side
// alteration (section 6). Only "bm25" and "host_centrality" are
// recognized; every other name must be silently skipped by the caller
// (section 9's open question — this is deliberately not broadened).
func SignalFromName(name string) (Signal, bool) {
	switch name {
	case "bm25":
		return SignalBm25, true
	case "host_centrality":
		return SignalHostCentrality, true
	default:
		return 0, false
	}
}
