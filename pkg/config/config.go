// Package config loads and validates the tunable knobs the ranking core
// exposes: the tuning constants, the signal coefficient overrides that
// cmd/rankcore passes to pkg/signal, and the collector behavior (top N,
// offset, per-query doc cap) that cmd/rankcore passes to pkg/collector.
// The Tuning values and Collector.DeRankSimilar are loaded and validated
// but not read by any other package.
//
// Configuration layers in the same order the original environment-variable
// config did, but starts from an optional YAML file instead: defaults,
// then an optional file via LoadFile, then RANKCORE_-prefixed environment
// variables via ApplyEnv. Call Validate before using a Config.
//
// Example:
//
//	cfg, err := config.Default().LoadFile("rankcore.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg, err = cfg.ApplyEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/webrank/rankcore/pkg/schema"
)

// Tuning holds the demotion-scale and miscellaneous constants, defaulting
// to the pkg/schema constants of the same names. pkg/collector,
// pkg/signal and pkg/similarity use those pkg/schema constants directly
// and do not read these fields.
type Tuning struct {
	// SiteScale, TitleScale and URLScale mirror the scales the bucket
	// collector uses to demote documents that share a site, title or
	// URL fingerprint with a higher-ranked document already kept.
	SiteScale  float64 `yaml:"site_scale"`
	TitleScale float64 `yaml:"title_scale"`
	URLScale   float64 `yaml:"url_scale"`

	// CentralityScaling is the fixed-point multiplier used to pack a
	// floating point centrality score into a fast-field integer lane.
	CentralityScaling int64 `yaml:"centrality_scaling"`

	// MaxSimilarSites bounds the similar-hosts finder's result count
	// regardless of what a caller asks for.
	MaxSimilarSites int `yaml:"max_similar_sites"`

	// RegionSelectedBoost is the flat score contribution granted when a
	// webpage's region matches the query's selected region.
	RegionSelectedBoost float64 `yaml:"region_selected_boost"`
}

// Collector holds the segmented top-K collector's behavior.
type Collector struct {
	// TopN is the number of results requested per query.
	TopN int `yaml:"top_n"`
	// Offset skips this many top-ranked results before returning TopN,
	// for pagination.
	Offset int `yaml:"offset"`
	// MaxDocsPerQuery caps the total number of documents examined
	// across all segments before a query gives up early. Zero means
	// unlimited.
	MaxDocsPerQuery int `yaml:"max_docs_per_query"`
	// DeRankSimilar is not read by pkg/collector: MergeFruits always
	// applies the diversity de-ranking pass in the final merge, and
	// segment-local collection never de-ranks.
	DeRankSimilar bool `yaml:"de_rank_similar"`
}

// Signals holds per-signal coefficient overrides. A nil pointer means
// "use the signal's built-in default coefficient".
type Signals struct {
	Bm25Coefficient           *float64 `yaml:"bm25_coefficient"`
	HostCentralityCoefficient *float64 `yaml:"host_centrality_coefficient"`
	PageCentralityCoefficient *float64 `yaml:"page_centrality_coefficient"`
}

// Config is the root configuration object.
type Config struct {
	Tuning    Tuning    `yaml:"tuning"`
	Collector Collector `yaml:"collector"`
	Signals   Signals   `yaml:"signals"`
}

// Default returns a Config populated with the built-in defaults, the
// same values pkg/signal and pkg/collector fall back to when no
// configuration is supplied at all.
func Default() Config {
	return Config{
		Tuning: Tuning{
			SiteScale:           schema.SiteScale,
			TitleScale:          schema.TitleScale,
			URLScale:            schema.URLScale,
			CentralityScaling:   schema.CentralityScaling,
			MaxSimilarSites:     schema.MaxSimilarSites,
			RegionSelectedBoost: schema.RegionSelectedBoost,
		},
		Collector: Collector{
			TopN:            10,
			Offset:          0,
			MaxDocsPerQuery: 0,
			DeRankSimilar:   true,
		},
	}
}

// LoadFile overlays YAML-encoded fields from path onto c. A missing
// file is not an error: it means "use what's already in c".
func (c Config) LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return c, nil
}

const (
	envSiteScale       = "RANKCORE_SITE_SCALE"
	envTitleScale      = "RANKCORE_TITLE_SCALE"
	envURLScale        = "RANKCORE_URL_SCALE"
	envCentralityScale = "RANKCORE_CENTRALITY_SCALING"
	envMaxSimilarSites = "RANKCORE_MAX_SIMILAR_SITES"
	envRegionBoost     = "RANKCORE_REGION_SELECTED_BOOST"

	envTopN          = "RANKCORE_TOP_N"
	envOffset        = "RANKCORE_OFFSET"
	envMaxDocs       = "RANKCORE_MAX_DOCS_PER_QUERY"
	envDeRankSimilar = "RANKCORE_DE_RANK_SIMILAR"
	envBm25Coeff     = "RANKCORE_BM25_COEFFICIENT"
	envHostCentCoeff = "RANKCORE_HOST_CENTRALITY_COEFFICIENT"
	envPageCentCoeff = "RANKCORE_PAGE_CENTRALITY_COEFFICIENT"
)

// ApplyEnv layers RANKCORE_-prefixed environment variable overrides
// onto c, highest priority last. Unset variables leave the
// corresponding field untouched.
func (c Config) ApplyEnv() (Config, error) {
	var err error
	c.Tuning.SiteScale, err = overrideFloat(c.Tuning.SiteScale, envSiteScale, err)
	c.Tuning.TitleScale, err = overrideFloat(c.Tuning.TitleScale, envTitleScale, err)
	c.Tuning.URLScale, err = overrideFloat(c.Tuning.URLScale, envURLScale, err)
	c.Tuning.RegionSelectedBoost, err = overrideFloat(c.Tuning.RegionSelectedBoost, envRegionBoost, err)
	c.Tuning.CentralityScaling, err = overrideInt64(c.Tuning.CentralityScaling, envCentralityScale, err)
	c.Tuning.MaxSimilarSites, err = overrideInt(c.Tuning.MaxSimilarSites, envMaxSimilarSites, err)

	c.Collector.TopN, err = overrideInt(c.Collector.TopN, envTopN, err)
	c.Collector.Offset, err = overrideInt(c.Collector.Offset, envOffset, err)
	c.Collector.MaxDocsPerQuery, err = overrideInt(c.Collector.MaxDocsPerQuery, envMaxDocs, err)
	c.Collector.DeRankSimilar, err = overrideBool(c.Collector.DeRankSimilar, envDeRankSimilar, err)

	c.Signals.Bm25Coefficient, err = overrideFloatPtr(c.Signals.Bm25Coefficient, envBm25Coeff, err)
	c.Signals.HostCentralityCoefficient, err = overrideFloatPtr(c.Signals.HostCentralityCoefficient, envHostCentCoeff, err)
	c.Signals.PageCentralityCoefficient, err = overrideFloatPtr(c.Signals.PageCentralityCoefficient, envPageCentCoeff, err)

	if err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects a Config that would make pkg/signal or pkg/collector
// misbehave: non-positive top N, negative offset, non-positive demotion
// scales, or a non-positive centrality scaling/similar-sites bound.
func (c Config) Validate() error {
	if c.Collector.TopN <= 0 {
		return fmt.Errorf("config: top_n must be positive, got %d", c.Collector.TopN)
	}
	if c.Collector.Offset < 0 {
		return fmt.Errorf("config: offset must not be negative, got %d", c.Collector.Offset)
	}
	if c.Collector.MaxDocsPerQuery < 0 {
		return fmt.Errorf("config: max_docs_per_query must not be negative, got %d", c.Collector.MaxDocsPerQuery)
	}
	if c.Tuning.SiteScale <= 0 {
		return fmt.Errorf("config: site_scale must be positive, got %v", c.Tuning.SiteScale)
	}
	if c.Tuning.TitleScale <= 0 {
		return fmt.Errorf("config: title_scale must be positive, got %v", c.Tuning.TitleScale)
	}
	if c.Tuning.URLScale <= 0 {
		return fmt.Errorf("config: url_scale must be positive, got %v", c.Tuning.URLScale)
	}
	if c.Tuning.CentralityScaling <= 0 {
		return fmt.Errorf("config: centrality_scaling must be positive, got %d", c.Tuning.CentralityScaling)
	}
	if c.Tuning.MaxSimilarSites <= 0 {
		return fmt.Errorf("config: max_similar_sites must be positive, got %d", c.Tuning.MaxSimilarSites)
	}
	return nil
}

func overrideFloat(cur float64, key string, prevErr error) (float64, error) {
	if prevErr != nil {
		return cur, prevErr
	}
	val := os.Getenv(key)
	if val == "" {
		return cur, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return cur, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func overrideFloatPtr(cur *float64, key string, prevErr error) (*float64, error) {
	if prevErr != nil {
		return cur, prevErr
	}
	val := os.Getenv(key)
	if val == "" {
		return cur, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return cur, fmt.Errorf("config: %s: %w", key, err)
	}
	return &f, nil
}

func overrideInt(cur int, key string, prevErr error) (int, error) {
	if prevErr != nil {
		return cur, prevErr
	}
	val := os.Getenv(key)
	if val == "" {
		return cur, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return cur, fmt.Errorf("config: %s: %w", key, err)
	}
	return i, nil
}

func overrideInt64(cur int64, key string, prevErr error) (int64, error) {
	if prevErr != nil {
		return cur, prevErr
	}
	val := os.Getenv(key)
	if val == "" {
		return cur, nil
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return cur, fmt.Errorf("config: %s: %w", key, err)
	}
	return i, nil
}

func overrideBool(cur bool, key string, prevErr error) (bool, error) {
	if prevErr != nil {
		return cur, prevErr
	}
	val := os.Getenv(key)
	if val == "" {
		return cur, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return cur, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
