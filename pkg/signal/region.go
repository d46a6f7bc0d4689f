package signal

import "github.com/webrank/rankcore/pkg/schema"

// RegionCount is a frequency table of detected languages/regions across
// the index (section 4.2, the Region signal's "region_counts" input). It
// is read-only and shared across every segment collector (section 5).
type RegionCount struct {
	counts map[schema.Region]int
	total  int
}

// NewRegionCount builds a RegionCount from raw per-region occurrence
// counts.
func NewRegionCount(counts map[schema.Region]int) *RegionCount {
	total := 0
	for _, c := range counts {
		total += c
	}
	return &RegionCount{counts: counts, total: total}
}

// Score returns a region's relative frequency within the index, scaled to
// a small additive boost range. A region never seen in the index scores 0.
func (rc *RegionCount) Score(r schema.Region) float64 {
	if rc == nil || rc.total == 0 {
		return 0
	}
	return float64(rc.counts[r]) / float64(rc.total) * schema.RegionSelectedBoost
}
