package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrank/rankcore/pkg/collector"
	"github.com/webrank/rankcore/pkg/fastfield"
	"github.com/webrank/rankcore/pkg/signal"
)

func TestDemoScannerInvokesCollectForEveryDoc(t *testing.T) {
	s := demoScanner{rawScores: map[uint32]float64{1: 1.0, 2: 2.0, 3: 3.0}}

	seen := make(map[uint32]float64)
	err := s.Scan(context.Background(), func(docID uint32, rawScore float64) error {
		seen[docID] = rawScore
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, s.rawScores, seen)
}

func TestBuildSegmentPopulatesEveryDemoDoc(t *testing.T) {
	docs := demoDocs()
	cache, rawScores := buildSegment(docs)

	assert.Len(t, rawScores, len(docs))
	for _, d := range docs {
		_, err := fastfield.ReadHashes(cache, d.id)
		require.NoError(t, err)
	}
}

func TestRunRankPipelineProducesResultsAcrossSegments(t *testing.T) {
	docs := demoDocs()
	segmentDocs := [][]demoDoc{docs[:3], docs[3:]}

	segments := make([]collector.SegmentScanner, len(segmentDocs))
	caches := make([]fastfield.SegmentCache, len(segmentDocs))
	tweakers := make([]collector.ScoreTweaker, len(segmentDocs))

	for i, ds := range segmentDocs {
		cache, rawScores := buildSegment(ds)
		caches[i] = cache
		segments[i] = demoScanner{rawScores: rawScores}

		agg := signal.NewAggregator(signal.NewSignalCoefficients(nil), signal.NewFieldBoosts(nil))
		agg.BindSegment(cache)
		tweakers[i] = signal.NewTweaker(agg, signal.ScoreOptions{})
	}

	results, err := collector.CollectSegments(context.Background(), 3, 0, nil, segments, caches, tweakers)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score, "results must be sorted highest score first")
	}
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rank", RunE: runRank}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Int("top-n", 0, "")
	cmd.Flags().String("index-dir", "", "")
	return cmd
}

func TestRunRankDefaultsToInMemorySegments(t *testing.T) {
	cmd := newRankCmd()
	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestRunRankWithIndexDirUsesBadgerSegmentCaches(t *testing.T) {
	dir := t.TempDir()
	cmd := newRankCmd()
	require.NoError(t, cmd.Flags().Set("index-dir", dir))

	require.NoError(t, cmd.RunE(cmd, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one Badger directory per segment")
	for i := 0; i < 2; i++ {
		assert.DirExists(t, filepath.Join(dir, fmt.Sprintf("segment-%d", i)))
	}
}
