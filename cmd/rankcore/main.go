// Package main provides the rankcore CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"

	"github.com/webrank/rankcore/pkg/collector"
	"github.com/webrank/rankcore/pkg/config"
	"github.com/webrank/rankcore/pkg/fastfield"
	"github.com/webrank/rankcore/pkg/inbound"
	"github.com/webrank/rankcore/pkg/rankpool"
	"github.com/webrank/rankcore/pkg/schema"
	"github.com/webrank/rankcore/pkg/signal"
	"github.com/webrank/rankcore/pkg/similarity"
	"github.com/webrank/rankcore/pkg/webgraph"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rankcore",
		Short: "rankcore - ranking and result-selection core for a web search engine",
		Long: `rankcore implements the scoring, collection and similar-site
lookup stages of a web search engine's ranking pipeline:

  - fast-field accessor over per-document precomputed features
  - a weighted signal catalogue and aggregator
  - a diversity-aware bucket collector
  - a segmented top-K collector merged across segments
  - a score-tweaking hook between segment scan and collector
  - a co-citation similar-hosts finder over a web graph`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rankcore v%s (%s)\n", version, commit)
		},
	})

	rankCmd := &cobra.Command{
		Use:   "rank",
		Short: "Run the scoring and collection pipeline against a demo fixture index",
		RunE:  runRank,
	}
	rankCmd.Flags().String("config", "", "path to a rankcore.yaml config file")
	rankCmd.Flags().Int("top-n", 0, "override the configured top N result count")
	rankCmd.Flags().String("index-dir", "", "directory to hold Badger-backed segment caches (defaults to in-memory segments)")
	rootCmd.AddCommand(rankCmd)

	similarCmd := &cobra.Command{
		Use:   "similar [seed-url...]",
		Short: "Find similar hosts for one or more seed URLs against a demo fixture web graph",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSimilar,
	}
	similarCmd.Flags().Int("limit", 10, "maximum number of similar hosts to return")
	rootCmd.AddCommand(similarCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Default().LoadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	cfg, err = cfg.ApplyEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// demoScanner is a fixture collector.SegmentScanner backed by an
// in-memory set of raw (bm25-shaped) scores, standing in for a real
// index segment's query evaluation.
type demoScanner struct {
	rawScores map[uint32]float64
}

func (s demoScanner) Scan(ctx context.Context, collect func(docID uint32, rawScore float64) error) error {
	for docID, score := range s.rawScores {
		if err := collect(docID, score); err != nil {
			return err
		}
	}
	return nil
}

type demoDoc struct {
	id        uint32
	title     string
	site      string
	url       string
	bm25      float64
	host      float64
	page      float64
	homepage  bool
}

func demoDocs() []demoDoc {
	return []demoDoc{
		{id: 0, title: "Go concurrency patterns", site: "go.dev", url: "go.dev/blog/concurrency", bm25: 8.5, host: 0.9, page: 0.8, homepage: false},
		{id: 1, title: "Go concurrency guide", site: "go.dev", url: "go.dev/doc/concurrency", bm25: 8.1, host: 0.9, page: 0.7, homepage: false},
		{id: 2, title: "Understanding goroutines", site: "example.org", url: "example.org/goroutines", bm25: 6.0, host: 0.4, page: 0.3, homepage: false},
		{id: 3, title: "Channels and select", site: "example.org", url: "example.org/channels", bm25: 5.8, host: 0.4, page: 0.3, homepage: false},
		{id: 4, title: "Home", site: "golang-weekly.com", url: "golang-weekly.com", bm25: 3.2, host: 0.5, page: 0.6, homepage: true},
	}
}

// buildSegment is the in-memory fixture path used by tests; the default
// (no --index-dir) rank invocation builds its in-memory segments through
// populateSegment inside the cache registry's open func instead.
func buildSegment(docs []demoDoc) (*fastfield.MemorySegmentCache, map[uint32]float64) {
	cache := fastfield.NewMemorySegmentCache()
	rawScores, err := populateSegment(cache, docs)
	if err != nil {
		// MemorySegmentCache.SetU64/SetU64s never fail.
		panic(err)
	}
	return cache, rawScores
}

// populateSegment writes every demo doc's fast fields into writer, which
// may be backed by memory or by a BadgerSegmentCache opened under
// --index-dir.
func populateSegment(writer fastfield.FastFieldWriter, docs []demoDoc) (map[uint32]float64, error) {
	rawScores := make(map[uint32]float64, len(docs))
	for _, d := range docs {
		if err := writer.SetU64(schema.FastFieldHostCentrality, d.id, uint64(d.host*float64(schema.CentralityScaling))); err != nil {
			return nil, err
		}
		if err := writer.SetU64(schema.FastFieldPageCentrality, d.id, uint64(d.page*float64(schema.CentralityScaling))); err != nil {
			return nil, err
		}
		homepage := uint64(0)
		if d.homepage {
			homepage = 1
		}
		if err := writer.SetU64(schema.FastFieldIsHomepage, d.id, homepage); err != nil {
			return nil, err
		}
		if err := writer.SetU64s(schema.FastFieldSiteHash, d.id, hashString(d.site)); err != nil {
			return nil, err
		}
		if err := writer.SetU64s(schema.FastFieldTitleHash, d.id, hashString(d.title)); err != nil {
			return nil, err
		}
		if err := writer.SetU64s(schema.FastFieldUrlHash, d.id, hashString(d.url)); err != nil {
			return nil, err
		}
		rawScores[d.id] = d.bm25
	}
	return rawScores, nil
}

func hashString(s string) [2]uint64 {
	h := xxhash.Sum64String(s)
	return [2]uint64{h, h ^ 0x9e3779b97f4a7c15}
}

func runRank(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	topNOverride, _ := cmd.Flags().GetInt("top-n")
	indexDir, _ := cmd.Flags().GetString("index-dir")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	topN := cfg.Collector.TopN
	if topNOverride > 0 {
		topN = topNOverride
	}

	rankpool.Configure(rankpool.Config{Enabled: true, MaxCap: 4096})

	docs := demoDocs()
	// Split the fixture documents across two segments to exercise the
	// concurrent segment collection and cross-segment merge.
	segmentDocs := [][]demoDoc{docs[:3], docs[3:]}

	segments := make([]collector.SegmentScanner, len(segmentDocs))
	caches := make([]fastfield.SegmentCache, len(segmentDocs))
	tweakers := make([]collector.ScoreTweaker, len(segmentDocs))

	overrides := make(map[signal.Signal]float64)
	if cfg.Signals.Bm25Coefficient != nil {
		overrides[signal.SignalBm25] = *cfg.Signals.Bm25Coefficient
	}
	if cfg.Signals.HostCentralityCoefficient != nil {
		overrides[signal.SignalHostCentrality] = *cfg.Signals.HostCentralityCoefficient
	}
	if cfg.Signals.PageCentralityCoefficient != nil {
		overrides[signal.SignalPageCentrality] = *cfg.Signals.PageCentralityCoefficient
	}
	coefficients := signal.NewSignalCoefficients(overrides)
	fieldBoosts := signal.NewFieldBoosts(nil)

	// Every segment's handle is obtained through the same CacheRegistry a
	// real multi-segment collection run would use to bound how many
	// handles stay resident at once (section 4.1).
	registry, err := fastfield.NewCacheRegistry(len(segmentDocs))
	if err != nil {
		return fmt.Errorf("building cache registry: %w", err)
	}
	defer func() {
		for i := range segmentDocs {
			registry.Evict(fastfield.SegmentID(i))
		}
	}()

	rawScoresBySegment := make([]map[uint32]float64, len(segmentDocs))
	for i, ds := range segmentDocs {
		segID := fastfield.SegmentID(i)
		ds := ds
		i := i
		cache, err := registry.GetOrOpen(segID, func() (fastfield.SegmentCache, error) {
			if indexDir == "" {
				mem := fastfield.NewMemorySegmentCache()
				rawScores, err := populateSegment(mem, ds)
				if err != nil {
					return nil, err
				}
				rawScoresBySegment[i] = rawScores
				return mem, nil
			}
			dir := filepath.Join(indexDir, fmt.Sprintf("segment-%d", i))
			bc, err := fastfield.OpenBadgerSegmentCache(dir)
			if err != nil {
				return nil, fmt.Errorf("opening badger segment cache %s: %w", dir, err)
			}
			rawScores, err := populateSegment(bc, ds)
			if err != nil {
				return nil, err
			}
			rawScoresBySegment[i] = rawScores
			return bc, nil
		})
		if err != nil {
			return fmt.Errorf("opening segment %d: %w", i, err)
		}
		caches[i] = cache
		segments[i] = demoScanner{rawScores: rawScoresBySegment[i]}

		agg := signal.NewAggregator(coefficients, fieldBoosts)
		agg.BindSegment(cache)
		tweakers[i] = signal.NewTweaker(agg, signal.ScoreOptions{})
	}

	var maxDocs *collector.MaxDocsConsidered
	if cfg.Collector.MaxDocsPerQuery > 0 {
		maxDocs = &collector.MaxDocsConsidered{TotalDocs: cfg.Collector.MaxDocsPerQuery, Segments: len(segments)}
	}

	ctx := context.Background()
	results, err := collector.CollectSegments(ctx, topN, cfg.Collector.Offset, maxDocs, segments, caches, tweakers)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	byID := make(map[uint32]demoDoc)
	for _, ds := range segmentDocs {
		for _, d := range ds {
			byID[d.id] = d
		}
	}

	fmt.Printf("top %d results (offset %d):\n", topN, cfg.Collector.Offset)
	for i, r := range results {
		d := byID[r.Address.DocID]
		fmt.Printf("%2d. score=%.3f  segment=%d  doc=%d  %s  (%s)\n",
			i+1, r.Score, r.Address.Segment, r.Address.DocID, d.title, d.url)
	}
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	g := webgraph.NewMemGraph()
	hub1 := webgraph.NewNode("awesome-go-links.com")
	hub2 := webgraph.NewNode("gopher-digest.com")
	seed := webgraph.NewNode(args[0])
	candidateA := webgraph.NewNode("effective-go-tips.com")
	candidateB := webgraph.NewNode("go-by-example.com")

	g.AddEdge(hub1, seed)
	g.AddEdge(hub2, seed)
	g.AddEdge(hub1, candidateA)
	g.AddEdge(hub1, candidateB)
	g.AddEdge(hub2, candidateA)

	model := inbound.NewCoCitationModel(g)
	finder := similarity.NewFinder(g, model)

	results := finder.FindSimilarSites(args, limit)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	fmt.Printf("similar hosts for %v:\n", args)
	for i, r := range results {
		fmt.Printf("%2d. score=%.1f  %s\n", i+1, r.Score, r.Node.Name)
	}
	return nil
}
