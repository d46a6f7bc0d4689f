// Package schema defines the dense enumerations shared across the ranking
// pipeline: the fast-field catalogue, the ranking-signal catalogue, and the
// handful of project-wide scaling constants that both must agree on.
//
// Signal and FastField are used as array indices on the hot path (see
// pkg/signal), so their ordinals must stay stable once published.
package schema

// FastField identifies a per-document column stored by the index's
// fast-field store. Hash fields are stored as two consecutive u64s.
type FastField int

const (
	FastFieldHostCentrality FastField = iota
	FastFieldPageCentrality
	FastFieldIsHomepage
	FastFieldFetchTimeMs
	FastFieldLastUpdated
	FastFieldNumTrackers
	FastFieldRegion
	FastFieldSiteHash
	FastFieldTitleHash
	FastFieldUrlHash

	numFastFields
)

// NumFastFields is the size a dense [N]T array must have to be indexed by
// every FastField ordinal.
const NumFastFields = int(numFastFields)

func (f FastField) String() string {
	switch f {
	case FastFieldHostCentrality:
		return "host_centrality"
	case FastFieldPageCentrality:
		return "page_centrality"
	case FastFieldIsHomepage:
		return "is_homepage"
	case FastFieldFetchTimeMs:
		return "fetch_time_ms"
	case FastFieldLastUpdated:
		return "last_updated"
	case FastFieldNumTrackers:
		return "num_trackers"
	case FastFieldRegion:
		return "region"
	case FastFieldSiteHash:
		return "site_hash"
	case FastFieldTitleHash:
		return "title_hash"
	case FastFieldUrlHash:
		return "url_hash"
	default:
		return "unknown_fast_field"
	}
}

// TextField identifies a text field eligible for a BM25 field boost
// override (section 4.2, "Field boosts"). The catalogue is small and fixed;
// add new fields at the end to keep existing ordinals stable.
type TextField int

const (
	TextFieldTitle TextField = iota
	TextFieldBody
	TextFieldUrl
	TextFieldDomain
	TextFieldSite

	numTextFields
)

// NumTextFields is the size a dense [N]T array must have to be indexed by
// every TextField ordinal.
const NumTextFields = int(numTextFields)

// defaultBoost is the static per-field boost used when no alteration
// overrides a field (section 4.2: "Missing entries fall back to a field's
// static default boost (or 1.0)").
var defaultBoost = [numTextFields]float64{
	TextFieldTitle:  2.0,
	TextFieldBody:   1.0,
	TextFieldUrl:    1.0,
	TextFieldDomain: 1.0,
	TextFieldSite:   1.0,
}

// DefaultBoost returns the static default boost for a text field.
func DefaultBoost(f TextField) float64 {
	if f < 0 || int(f) >= NumTextFields {
		return 1.0
	}
	return defaultBoost[f]
}

// TextFieldFromName resolves a text field by its external alteration name.
// Unknown names return ok=false and must be silently skipped by the caller
// (section 7: UnknownFieldName).
func TextFieldFromName(name string) (TextField, bool) {
	switch name {
	case "title":
		return TextFieldTitle, true
	case "body":
		return TextFieldBody, true
	case "url":
		return TextFieldUrl, true
	case "domain":
		return TextFieldDomain, true
	case "site":
		return TextFieldSite, true
	default:
		return 0, false
	}
}

// CentralityScaling is the integer multiplier used to persist centrality
// scores as u64 fast-field values; it must be used identically wherever a
// centrality score is written to, or read from, a fast field (section 4.2).
const CentralityScaling = 1_000_000

// Tuning constants from section 6, part of the external contract.
const (
	SiteScale             = 14.0
	TitleScale            = 6.0
	URLScale              = 0.1
	MaxSimilarSites       = 1000
	RegionSelectedBoost   = 50.0
	UpdateTimeWindowHours = 3 * 365 * 24
	FetchTimeWindowMs     = 1000
)

// Region is a coarse geo/language classification attached to a document.
// The catalogue mirrors a handful of major regions plus an "All" fallback;
// RegionOf derives one from a raw fast-field value.
type Region int

const (
	RegionAll Region = iota
	RegionUS
	RegionEU
	RegionAsia
	RegionOther
)

// RegionOf maps a raw fast-field value to a Region. Unknown values fall
// back to RegionAll, matching the "missing data contributes 0" posture of
// the rest of the signal catalogue.
func RegionOf(v uint64) Region {
	r := Region(v)
	if r < RegionAll || r > RegionOther {
		return RegionAll
	}
	return r
}
